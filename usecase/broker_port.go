package usecase

import "context"

// FanoutChannel topic names. The gateway bridge and external consumers
// key on these literally.
const (
	TopicMaterializedView = "generator-ui-gateway-materialized-view-updates"
	TopicVehicleGenerated = "fleet/vehicles/generated"
	TopicWebsocketUpdates = "generator-ui-gateway-websocket-updates"
)

// Broker abstracts the fanout publish capability. Delivery is
// at-least-once with no ordering guarantee across topics; payloads are
// marshalled to JSON by the implementation.
type Broker interface {
	Publish(ctx context.Context, topic string, payload any) error
}
