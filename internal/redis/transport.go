package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"carpool/internal/domain"
)

// NotificationTransport fans freshly published notifications out to live
// subscribers through Redis pub/sub, one channel per recipient. Delivery
// here is push-only and best effort; durability comes from the
// notification repository, which subscribers drain on (re)connect.
type NotificationTransport struct {
	client *redis.Client
}

// NewNotificationTransport creates a new Redis-backed transport.
func NewNotificationTransport(client *redis.Client) *NotificationTransport {
	return &NotificationTransport{client: client}
}

func channelFor(userID string) string {
	return fmt.Sprintf("notify:user:%s", userID)
}

// Publish pushes the notification to the recipient's channel.
func (t *NotificationTransport) Publish(ctx context.Context, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}

	return t.client.Publish(ctx, channelFor(n.ToUserID), payload).Err()
}

// Subscribe returns a channel of live notifications for the recipient.
// The cancel function tears down the underlying Redis subscription and
// closes the channel. Messages that fail to decode are dropped.
func (t *NotificationTransport) Subscribe(ctx context.Context, userID string) (<-chan *domain.Notification, func(), error) {
	pubsub := t.client.Subscribe(ctx, channelFor(userID))

	// Force the subscription onto the wire before returning so callers
	// cannot miss notifications published right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	out := make(chan *domain.Notification, 16)
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var n domain.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				continue
			}
			select {
			case out <- &n:
			case <-ctx.Done():
				return
			}
		}
	}()

	cancel := func() {
		_ = pubsub.Close()
	}
	return out, cancel, nil
}
