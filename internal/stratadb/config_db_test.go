package stratadb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigGet_Defaults(t *testing.T) {
	s := newStore(t)
	out := mustExec(t, s, ConfigGet{}).(ConfigOut)
	assert.Equal(t, "full", out.Config.Durability)
	assert.False(t, out.Config.AutoEmbed)
	assert.Nil(t, out.Config.Model)
}

func TestConfigSetDurability(t *testing.T) {
	s := newStore(t)
	mustExec(t, s, ConfigSetDurability{Mode: "relaxed"})

	out := mustExec(t, s, ConfigGet{}).(ConfigOut)
	assert.Equal(t, "relaxed", out.Config.Durability)

	_, err := s.Execute(ConfigSetDurability{Mode: "turbo"})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*StoreError).Code)
}

func TestConfigSetModel_RequiresEndpoint(t *testing.T) {
	s := newStore(t)

	_, err := s.Execute(ConfigSetModel{})
	require.Error(t, err)
	assert.Equal(t, CodeInvalidArgument, err.(*StoreError).Code)

	mustExec(t, s, ConfigSetModel{Endpoint: "http://localhost:8080", Model: "tiny", TimeoutMs: 500})
	out := mustExec(t, s, ConfigGet{}).(ConfigOut)
	require.NotNil(t, out.Config.Model)
	assert.Equal(t, "http://localhost:8080", out.Config.Model.Endpoint)
	assert.Equal(t, "tiny", out.Config.Model.Model)
	assert.Equal(t, uint64(500), out.Config.Model.TimeoutMs)
}

func TestConfig_AutoEmbedSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strata.db")
	s, err := Open(path, Options{})
	require.NoError(t, err)
	mustExec(t, s, ConfigSetAutoEmbed{Enabled: true})
	require.NoError(t, s.Close())

	reopened, err := Open(path, Options{})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	out := mustExec(t, reopened, ConfigGet{}).(ConfigOut)
	assert.True(t, out.Config.AutoEmbed)
}
