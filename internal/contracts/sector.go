package contracts

import (
	"fmt"
	"strings"
)

// Sector is one of the five fixed asset-class buckets
// ⭐ SSOT: 섹터 열거형과 표시용 테이블은 여기서만 정의
type Sector string

const (
	SectorGrowth   Sector = "growth"
	SectorDividend Sector = "dividend"
	SectorBond     Sector = "bond"
	SectorGold     Sector = "gold"
	SectorCrypto   Sector = "crypto"
)

// sectorOrder is the fixed enumeration order used by every output
var sectorOrder = [...]Sector{
	SectorGrowth,
	SectorDividend,
	SectorBond,
	SectorGold,
	SectorCrypto,
}

var sectorNames = map[Sector]string{
	SectorGrowth:   "성장주 ETF",
	SectorDividend: "배당주 ETF",
	SectorBond:     "채권 ETF",
	SectorGold:     "금 ETF",
	SectorCrypto:   "비트코인",
}

// 차트 색상
var sectorColors = map[Sector]string{
	SectorGrowth:   "#3B82F6",
	SectorDividend: "#10B981",
	SectorBond:     "#F59E0B",
	SectorGold:     "#EF4444",
	SectorCrypto:   "#8B5CF6",
}

// AllSectors returns the sectors in enumeration order.
// A fresh slice is returned on every call.
func AllSectors() []Sector {
	out := make([]Sector, len(sectorOrder))
	copy(out, sectorOrder[:])
	return out
}

// IsValid reports whether s is a known sector
func (s Sector) IsValid() bool {
	_, ok := sectorNames[s]
	return ok
}

// DisplayName returns the Korean display name
func (s Sector) DisplayName() string {
	if name, ok := sectorNames[s]; ok {
		return name
	}
	return string(s)
}

// Color returns the chart color for the sector
func (s Sector) Color() string {
	return sectorColors[s]
}

// ParseSector parses a sector name case-insensitively
func ParseSector(raw string) (Sector, error) {
	s := Sector(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", fmt.Errorf("unknown sector %q", raw)
	}
	return s, nil
}
