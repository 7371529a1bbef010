package transport

// VehicleRequest is the create/update body. Pointer fields distinguish
// "absent" from zero values so merge updates only touch what was sent.
type VehicleRequest struct {
	OrganizationID string  `json:"organizationId"`
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	Active         *bool   `json:"active"`
}

// DeleteVehiclesRequest carries the bulk-delete id set.
type DeleteVehiclesRequest struct {
	IDs []string `json:"ids"`
}
