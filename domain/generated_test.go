package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalFieldOrderIsFixed(t *testing.T) {
	record := GeneratedVehicle{
		Type:        "SUV",
		PowerSource: "Electric",
		HP:          150,
		Year:        2020,
		TopSpeed:    200,
	}
	assert.Equal(t, "SUV|Electric|150|2020|200", record.Canonical())
}

func TestAidIsDeterministic(t *testing.T) {
	a := GeneratedVehicle{Type: "Sedan", PowerSource: "Gas", HP: 90, Year: 1999, TopSpeed: 160}
	b := GeneratedVehicle{Type: "Sedan", PowerSource: "Gas", HP: 90, Year: 1999, TopSpeed: 160}

	assert.Equal(t, a.Aid(), b.Aid())
	assert.Len(t, a.Aid(), 64)
}

func TestAidChangesWithEveryField(t *testing.T) {
	base := GeneratedVehicle{Type: "SUV", PowerSource: "Electric", HP: 150, Year: 2020, TopSpeed: 200}

	variants := []GeneratedVehicle{
		{Type: "Sedan", PowerSource: "Electric", HP: 150, Year: 2020, TopSpeed: 200},
		{Type: "SUV", PowerSource: "Gas", HP: 150, Year: 2020, TopSpeed: 200},
		{Type: "SUV", PowerSource: "Electric", HP: 151, Year: 2020, TopSpeed: 200},
		{Type: "SUV", PowerSource: "Electric", HP: 150, Year: 2021, TopSpeed: 200},
		{Type: "SUV", PowerSource: "Electric", HP: 150, Year: 2020, TopSpeed: 201},
	}
	for _, variant := range variants {
		assert.NotEqual(t, base.Aid(), variant.Aid(), "variant %s", variant.Canonical())
	}
}
