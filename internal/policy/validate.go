package policy

import (
	"fmt"
	"math"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

// ValidationError 검증 실패 (로드 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints
func Validate(cfg *Config) error {
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	var sum float64
	targets := cfg.Targets.bySector()
	for _, s := range contracts.AllSectors() {
		field := "targets." + string(s)
		w := targets[s]
		if w == nil {
			return ValidationError{field, "required"}
		}
		if math.IsNaN(*w) || *w < 0 || *w > 100 {
			return ValidationError{field, "must be in [0, 100]"}
		}
		sum += *w
	}

	if math.Abs(sum-100) > 1e-9 {
		return ValidationError{"targets", fmt.Sprintf("must sum to 100, got %v", sum)}
	}

	return nil
}
