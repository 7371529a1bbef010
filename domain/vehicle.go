package domain

import "time"

// Vehicle is the canonical current-state record for one fleet vehicle.
type Vehicle struct {
	ID             string           `json:"id"`
	OrganizationID string           `json:"organizationId,omitempty"`
	Name           string           `json:"name"`
	Description    string           `json:"description,omitempty"`
	Active         bool             `json:"active"`
	Metadata       *VehicleMetadata `json:"metadata,omitempty"`
}

// VehicleMetadata records who touched the aggregate and when.
type VehicleMetadata struct {
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedBy string    `json:"updatedBy,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Touch stamps the update metadata, initializing creation metadata on first use.
func (v *Vehicle) Touch(actor string) {
	if v == nil {
		return
	}
	now := time.Now().UTC()
	if v.Metadata == nil {
		v.Metadata = &VehicleMetadata{}
	}
	if v.Metadata.CreatedAt.IsZero() {
		v.Metadata.CreatedAt = now
		v.Metadata.CreatedBy = actor
	}
	v.Metadata.UpdatedAt = now
	v.Metadata.UpdatedBy = actor
}
