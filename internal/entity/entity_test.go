package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/expgrid/internal/settings"
)

func TestModelDefaults(t *testing.T) {
	m := NewModel("exp_0", nil, "/scratch/exp", settings.NewBase("python"))

	assert.Equal(t, "exp_0", m.Name())
	assert.Equal(t, "/scratch/exp", m.Path())
	require.NotNil(t, m.Params())
	assert.Empty(t, m.Params())
	assert.False(t, m.QueryKeyPrefixing())
}

func TestModelKeyPrefixing(t *testing.T) {
	m := NewModel("exp_0", nil, "", nil)

	m.EnableKeyPrefixing()
	assert.True(t, m.QueryKeyPrefixing())
	m.DisableKeyPrefixing()
	assert.False(t, m.QueryKeyPrefixing())
}

func TestModelIncomingEntitiesAccumulate(t *testing.T) {
	m := NewModel("consumer_0", nil, "", nil)

	m.RegisterIncomingEntity("producer_0")
	m.RegisterIncomingEntity("producer_1")
	assert.Equal(t, []string{"producer_0", "producer_1"}, m.IncomingEntities())
}

func TestDBNodeLateBoundHost(t *testing.T) {
	n := NewDBNode("orc_0", "/scratch/orc", settings.NewAprun("redis-server"), []int{6379})

	assert.Equal(t, "orc_0", n.Name())
	assert.Empty(t, n.Host())
	n.SetHost("nid0001")
	assert.Equal(t, "nid0001", n.Host())
	assert.Equal(t, []int{6379}, n.Ports())
}
