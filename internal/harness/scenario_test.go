package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: basic
description: "basic scenario"
start: 10
accounts:
  alice: 5
steps:
  - op: open
    owner: alice
  - op: deposit
    owner: alice
    caller: alice
    amount: 5
    at: 20
    expect:
      staked_amount: 5
assertions:
  - type: journal
    owner: alice
    count: 2
`))
	require.NoError(t, err)

	assert.Equal(t, "basic", s.Name)
	assert.Equal(t, int64(10), s.Start)
	assert.Equal(t, uint64(5), s.Accounts["alice"])
	require.Len(t, s.Steps, 2)
	require.NotNil(t, s.Steps[1].At)
	assert.Equal(t, int64(20), *s.Steps[1].At)
	require.NotNil(t, s.Steps[1].Expect)
	assert.Equal(t, uint64(5), *s.Steps[1].Expect.StakedAmount)
	assert.Nil(t, s.Steps[0].At)
	assert.Equal(t, 2, *s.Assertions[0].Count)
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "name: x\ndescription: y\nsteps:\n  - op: open\n    owner: a\n    ammount: 1\n", "failed to parse YAML"},
		{"missing name", "description: y\nsteps:\n  - op: open\n    owner: a\n", "name is required"},
		{"missing description", "name: x\nsteps:\n  - op: open\n    owner: a\n", "description is required"},
		{"no steps", "name: x\ndescription: y\n", "at least one step"},
		{"unknown op", "name: x\ndescription: y\nsteps:\n  - op: stake\n    owner: a\n", `unknown op "stake"`},
		{"missing owner", "name: x\ndescription: y\nsteps:\n  - op: open\n", "owner is required"},
		{"unknown assertion", "name: x\ndescription: y\nsteps:\n  - op: open\n    owner: a\nassertions:\n  - type: vibes\n", `unknown type "vibes"`},
		{"journal without count", "name: x\ndescription: y\nsteps:\n  - op: open\n    owner: a\nassertions:\n  - type: journal\n    owner: a\n", "requires count"},
		{"balance without account", "name: x\ndescription: y\nsteps:\n  - op: open\n    owner: a\nassertions:\n  - type: balance\n", "requires account"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: x\ndescription: y\nsteps:\n  - op: open\n    owner: a\n"), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "x", s.Name)

	_, err = LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}
