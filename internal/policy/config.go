package policy

import "github.com/wonny/etf-rebalancer/internal/contracts"

// Config is the rebalance policy file
// ⭐ SSOT: 목표 비중 YAML 구조
type Config struct {
	Meta    MetaConfig    `yaml:"meta" json:"meta"`
	Targets TargetsConfig `yaml:"targets" json:"targets"`
}

// MetaConfig identifies the policy
type MetaConfig struct {
	PolicyID    string `yaml:"policy_id" json:"policy_id"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// TargetsConfig holds per-sector target percentages.
// 포인터로 선언해서 누락된 섹터를 0과 구분
type TargetsConfig struct {
	Growth   *float64 `yaml:"growth" json:"growth"`
	Dividend *float64 `yaml:"dividend" json:"dividend"`
	Bond     *float64 `yaml:"bond" json:"bond"`
	Gold     *float64 `yaml:"gold" json:"gold"`
	Crypto   *float64 `yaml:"crypto" json:"crypto"`
}

// bySector maps the fields to sectors, nil for missing entries
func (t TargetsConfig) bySector() map[contracts.Sector]*float64 {
	return map[contracts.Sector]*float64{
		contracts.SectorGrowth:   t.Growth,
		contracts.SectorDividend: t.Dividend,
		contracts.SectorBond:     t.Bond,
		contracts.SectorGold:     t.Gold,
		contracts.SectorCrypto:   t.Crypto,
	}
}
