package policy

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/etf-rebalancer/internal/contracts"
	"github.com/wonny/etf-rebalancer/internal/rebalance"
)

// Load reads YAML file and returns Config with raw bytes
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Parse decodes and validates policy YAML
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true) // 알 수 없는 필드 발견 시 에러 반환
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode policy: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Hash generates SHA256 hash from Config (canonical JSON)
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// TargetTable converts a validated Config into the engine's table
func (c *Config) TargetTable() (rebalance.TargetTable, error) {
	weights := make(map[contracts.Sector]float64)
	for s, w := range c.Targets.bySector() {
		if w == nil {
			return rebalance.TargetTable{}, ValidationError{"targets." + string(s), "required"}
		}
		weights[s] = *w
	}
	return rebalance.NewTargetTable(weights)
}

// Resolve returns the target table for path; empty path → defaults.
// The second value is the policy id ("default" when no file is set).
func Resolve(path string) (rebalance.TargetTable, string, error) {
	if path == "" {
		return rebalance.DefaultTargets(), "default", nil
	}

	cfg, _, err := Load(path)
	if err != nil {
		return rebalance.TargetTable{}, "", err
	}

	table, err := cfg.TargetTable()
	if err != nil {
		return rebalance.TargetTable{}, "", err
	}

	return table, cfg.Meta.PolicyID, nil
}
