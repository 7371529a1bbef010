package domain

import (
	"encoding/json"
	"time"
)

// ModType tags the kind of mutation a VehicleEvent describes.
type ModType string

const (
	ModTypeCreate        ModType = "CREATE"
	ModTypeUpdateMerge   ModType = "UPDATE_MERGE"
	ModTypeUpdateReplace ModType = "UPDATE_REPLACE"
	ModTypeDelete        ModType = "DELETE"
)

const (
	// AggregateTypeVehicle is the only aggregate type this service owns.
	AggregateTypeVehicle = "Vehicle"
	// EventTypeVehicleModified is emitted once per successful mutation.
	EventTypeVehicleModified = "VehicleModified"
	// EventTypeVersion is the current snapshot schema version.
	EventTypeVersion = 1
)

// VehicleEvent is an immutable fact describing one past mutation of a vehicle.
// Ordering within one AggregateID is significant; ordering across ids is not.
type VehicleEvent struct {
	ID               string          `json:"id"`
	EventType        string          `json:"eventType"`
	EventTypeVersion int             `json:"eventTypeVersion"`
	AggregateType    string          `json:"aggregateType"`
	AggregateID      string          `json:"aggregateId"`
	Data             json.RawMessage `json:"data"`
	User             string          `json:"user"`
	Timestamp        time.Time       `json:"timestamp"`
}

// EventPayload is the wire shape of VehicleEvent.Data: the mutation tag
// plus the post-mutation snapshot, flattened into one object. DELETE
// events carry the tag alone.
type EventPayload struct {
	ModType ModType `json:"modType"`
	Vehicle
}

// NewVehicleEvent builds the single domain event for a successful mutation.
// The snapshot may be nil for DELETE.
func NewVehicleEvent(id string, modType ModType, aggregateID, user string, snapshot *Vehicle) (VehicleEvent, error) {
	var data []byte
	var err error
	if snapshot == nil {
		data, err = json.Marshal(struct {
			ModType ModType `json:"modType"`
		}{modType})
	} else {
		data, err = json.Marshal(EventPayload{ModType: modType, Vehicle: *snapshot})
	}
	if err != nil {
		return VehicleEvent{}, err
	}
	return VehicleEvent{
		ID:               id,
		EventType:        EventTypeVehicleModified,
		EventTypeVersion: EventTypeVersion,
		AggregateType:    AggregateTypeVehicle,
		AggregateID:      aggregateID,
		Data:             data,
		User:             user,
		Timestamp:        time.Now().UTC(),
	}, nil
}
