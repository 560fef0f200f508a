// Package notifications publishes engagement events into Redis channels
// so downstream consumers (feed fanout, email digests) can react to them.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event types published on user channels.
const (
	EventPostLiked    = "post.liked"
	EventNewFollower  = "user.followed"
	EventNewComment   = "post.commented"
	EventCommentReply = "comment.replied"
)

// Event is the payload published for every engagement notification.
type Event struct {
	Type      string    `json:"type"`
	ActorID   uint      `json:"actor_id"`
	ActorName string    `json:"actor_name"`
	PostSlug  string    `json:"post_slug,omitempty"`
	CommentID uint      `json:"comment_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client yields a no-op notifier.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := marshalEvent(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// PublishBroadcast sends an event to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, event Event) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := marshalEvent(event)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, "notifications:broadcast", payload).Err()
}

func marshalEvent(event Event) (string, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}
	return string(payload), nil
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and the
// broadcast channel, calling onMessage for each incoming message.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "notifications:user:*", "notifications:broadcast")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in PatternSubscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "notifications:user:" + strconv.FormatUint(uint64(userID), 10)
}
