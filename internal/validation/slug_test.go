package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"  Hello,  World!  ", "hello-world"},
		{"Go 1.22 Released", "go-122-released"},
		{"UPPER case Title", "upper-case-title"},
		{"already-slugged", "already-slugged"},
		{"!!!", ""},
		{"", ""},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.title))
		})
	}
}

func TestSlugify_TruncatesLongTitles(t *testing.T) {
	slug := Slugify(strings.Repeat("word ", 50))
	assert.LessOrEqual(t, len(slug), 120)
	assert.False(t, strings.HasSuffix(slug, "-"))
}

func TestValidateSlug(t *testing.T) {
	tests := []struct {
		slug    string
		wantErr bool
	}{
		{"hello-world", false},
		{"post-123", false},
		{"Hello-World", true},
		{"hello world", true},
		{"", true},
		{"admin", true},
		{"search", true},
		{"posts", true},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			err := ValidateSlug(tt.slug)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
