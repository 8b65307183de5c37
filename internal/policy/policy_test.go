package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/etf-rebalancer/internal/contracts"
)

const validPolicy = `
meta:
  policy_id: conservative_v1
  description: 채권 비중 확대
targets:
  growth: 30
  dividend: 35
  bond: 25
  gold: 5
  crypto: 5
`

func writePolicy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, data, err := Load(writePolicy(t, validPolicy))
	require.NoError(t, err)

	assert.Equal(t, "conservative_v1", cfg.Meta.PolicyID)
	assert.NotEmpty(t, data)

	table, err := cfg.TargetTable()
	require.NoError(t, err)
	assert.Equal(t, 25.0, table.Target(contracts.SectorBond))
	assert.Equal(t, 100.0, table.Sum())
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse([]byte(validPolicy + "  reit: 0\n"))
	assert.Error(t, err)
}

func TestParse_MissingSector(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  policy_id: broken
targets:
  growth: 40
  dividend: 40
  bond: 10
  gold: 10
`))
	var vErr ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	assert.Equal(t, "targets.crypto", vErr.Field)
}

func TestParse_SumNot100(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  policy_id: broken
targets:
  growth: 40
  dividend: 40
  bond: 10
  gold: 5
  crypto: 10
`))
	var vErr ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "targets", vErr.Field)
}

func TestParse_OutOfRange(t *testing.T) {
	_, err := Parse([]byte(`
meta:
  policy_id: broken
targets:
  growth: 120
  dividend: -20
  bond: 0
  gold: 0
  crypto: 0
`))
	assert.Error(t, err)
}

func TestParse_MissingPolicyID(t *testing.T) {
	_, err := Parse([]byte(`
targets:
  growth: 40
  dividend: 40
  bond: 10
  gold: 5
  crypto: 5
`))
	var vErr ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "meta.policy_id", vErr.Field)
}

func TestHash_Deterministic(t *testing.T) {
	cfg, err := Parse([]byte(validPolicy))
	require.NoError(t, err)

	h1, err := Hash(cfg)
	require.NoError(t, err)
	h2, _ := Hash(cfg)

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2)
}

func TestResolve_Default(t *testing.T) {
	table, id, err := Resolve("")
	require.NoError(t, err)

	assert.Equal(t, "default", id)
	assert.Equal(t, 40.0, table.Target(contracts.SectorGrowth))
}

func TestResolve_File(t *testing.T) {
	table, id, err := Resolve(writePolicy(t, validPolicy))
	require.NoError(t, err)

	assert.Equal(t, "conservative_v1", id)
	assert.Equal(t, 30.0, table.Target(contracts.SectorGrowth))
}

func TestResolve_MissingFile(t *testing.T) {
	_, _, err := Resolve(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
