package rebalance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

func TestDefaultTargets(t *testing.T) {
	targets := DefaultTargets()

	assert.Equal(t, 40.0, targets.Target(contracts.SectorGrowth))
	assert.Equal(t, 40.0, targets.Target(contracts.SectorDividend))
	assert.Equal(t, 10.0, targets.Target(contracts.SectorBond))
	assert.Equal(t, 5.0, targets.Target(contracts.SectorGold))
	assert.Equal(t, 5.0, targets.Target(contracts.SectorCrypto))
	assert.Equal(t, 100.0, targets.Sum())
}

func TestTargetTable_MapIsCopy(t *testing.T) {
	targets := DefaultTargets()

	m := targets.Map()
	m[contracts.SectorGrowth] = 99

	assert.Equal(t, 40.0, targets.Target(contracts.SectorGrowth))
}

func TestNewTargetTable(t *testing.T) {
	tests := []struct {
		name    string
		weights map[contracts.Sector]float64
		wantErr bool
	}{
		{
			name: "valid",
			weights: map[contracts.Sector]float64{
				"growth": 30, "dividend": 30, "bond": 20, "gold": 10, "crypto": 10,
			},
		},
		{
			name: "missing sector",
			weights: map[contracts.Sector]float64{
				"growth": 50, "dividend": 30, "bond": 20, "gold": 0,
			},
			wantErr: true,
		},
		{
			name: "unknown sector",
			weights: map[contracts.Sector]float64{
				"growth": 40, "dividend": 40, "bond": 10, "gold": 5, "crypto": 5, "reit": 0,
			},
			wantErr: true,
		},
		{
			name: "negative",
			weights: map[contracts.Sector]float64{
				"growth": 110, "dividend": -10, "bond": 0, "gold": 0, "crypto": 0,
			},
			wantErr: true,
		},
		{
			name: "does not sum to 100",
			weights: map[contracts.Sector]float64{
				"growth": 40, "dividend": 40, "bond": 10, "gold": 5, "crypto": 4,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := NewTargetTable(tt.weights)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, 100, table.Sum(), 1e-9)
		})
	}
}
