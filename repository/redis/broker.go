package redis

import (
	"context"
	"encoding/json"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fleetgen/backend/usecase"
)

type broker struct {
	client *redislib.Client
}

// NewBroker creates a Redis pub/sub backed fanout broker. Subscribers
// that are offline at publish time miss the message; the contract is
// at-least-once toward connected consumers with no cross-topic ordering.
func NewBroker(client *redislib.Client) usecase.Broker {
	return &broker{client: client}
}

func (b *broker) Publish(ctx context.Context, topic string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, topic, body).Err()
}
