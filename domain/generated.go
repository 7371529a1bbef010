package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Categorical sets and numeric ranges for synthetic vehicles.
var (
	VehicleTypes        = []string{"SUV", "PickUp", "Sedan"}
	VehiclePowerSources = []string{"Electric", "Hybrid", "Gas"}
)

const (
	HPMin       = 75
	HPMax       = 300
	YearMin     = 1980
	YearMax     = 2025
	TopSpeedMin = 120
	TopSpeedMax = 320
)

// GeneratedVehicle is a synthetic fleet-vehicle record. It is never
// persisted; its identity is derived from its content.
type GeneratedVehicle struct {
	Type        string `json:"type"`
	PowerSource string `json:"powerSource"`
	HP          int    `json:"hp"`
	Year        int    `json:"year"`
	TopSpeed    int    `json:"topSpeed"`
}

// Canonical returns the fixed-order, pipe-delimited encoding of exactly
// the five semantic fields. No other field may influence it.
func (g GeneratedVehicle) Canonical() string {
	return fmt.Sprintf("%s|%s|%d|%d|%d", g.Type, g.PowerSource, g.HP, g.Year, g.TopSpeed)
}

// Aid returns the content-addressed identifier: hex-encoded SHA-256 of
// the canonical string. Identical field values always yield an identical
// aid, which lets downstream consumers deduplicate retransmissions.
func (g GeneratedVehicle) Aid() string {
	sum := sha256.Sum256([]byte(g.Canonical()))
	return hex.EncodeToString(sum[:])
}
