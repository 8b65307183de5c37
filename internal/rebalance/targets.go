package rebalance

import (
	"fmt"
	"math"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// HoldThreshold is the drift (percentage points) below which a sector is held.
// 사용자 설정 대상이 아님
const HoldThreshold = 1.0

// sumTolerance absorbs float noise when checking that targets sum to 100
const sumTolerance = 1e-9

// TargetTable is the immutable sector → target percentage table
// ⭐ SSOT: 목표 비중은 이 테이블을 통해서만 조회
type TargetTable struct {
	weights map[contracts.Sector]float64
}

// DefaultTargets returns the standard 40/40/10/5/5 mix
func DefaultTargets() TargetTable {
	return TargetTable{weights: map[contracts.Sector]float64{
		contracts.SectorGrowth:   40,
		contracts.SectorDividend: 40,
		contracts.SectorBond:     10,
		contracts.SectorGold:     5,
		contracts.SectorCrypto:   5,
	}}
}

// NewTargetTable builds a validated table.
// Every sector must be present, each within [0, 100], summing to 100.
func NewTargetTable(weights map[contracts.Sector]float64) (TargetTable, error) {
	copied := make(map[contracts.Sector]float64, len(weights))
	for s, w := range weights {
		if !s.IsValid() {
			return TargetTable{}, fmt.Errorf("unknown sector %q", s)
		}
		copied[s] = w
	}

	var sum float64
	for _, s := range contracts.AllSectors() {
		w, ok := copied[s]
		if !ok {
			return TargetTable{}, fmt.Errorf("missing target for sector %q", s)
		}
		if w < 0 || w > 100 || math.IsNaN(w) {
			return TargetTable{}, fmt.Errorf("target for sector %q must be within [0, 100], got %v", s, w)
		}
		sum += w
	}

	if math.Abs(sum-100) > sumTolerance {
		return TargetTable{}, fmt.Errorf("targets must sum to 100, got %v", sum)
	}

	return TargetTable{weights: copied}, nil
}

// Target returns the target percentage of a sector (0 for unknown sectors)
func (t TargetTable) Target(s contracts.Sector) float64 {
	return t.weights[s]
}

// Sum returns the total of all targets
func (t TargetTable) Sum() float64 {
	var sum float64
	for _, w := range t.weights {
		sum += w
	}
	return sum
}

// Map returns a copy of the table keyed by sector
func (t TargetTable) Map() map[contracts.Sector]float64 {
	out := make(map[contracts.Sector]float64, len(t.weights))
	for s, w := range t.weights {
		out[s] = w
	}
	return out
}
