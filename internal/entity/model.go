// Package entity defines the concrete runnable units the composers produce:
// parameterized ensemble members and database node placements. Both are plain
// mutable values owned by their composing collection; identity (the name) is
// what makes two of them "the same" entity.
package entity

import (
	"github.com/vk/expgrid/internal/settings"
	"github.com/vk/expgrid/internal/strategy"
)

// Model is one independently launchable ensemble member with a fixed
// parameter assignment.
type Model struct {
	name        string
	params      strategy.Assignment
	path        string
	runSettings settings.RunSettings

	keyPrefixing bool
	incoming     []string
}

// NewModel creates a model. The run settings are taken as-is; callers
// expanding a shared template must clone it first.
func NewModel(name string, params strategy.Assignment, path string, rs settings.RunSettings) *Model {
	if params == nil {
		params = strategy.Assignment{}
	}
	return &Model{name: name, params: params, path: path, runSettings: rs}
}

// Name returns the model's identity within its ensemble.
func (m *Model) Name() string { return m.name }

// Params returns the model's parameter assignment. Empty for replicas.
func (m *Model) Params() strategy.Assignment { return m.params }

// Path returns the model's working directory.
func (m *Model) Path() string { return m.path }

// RunSettings returns the model's own launch settings.
func (m *Model) RunSettings() settings.RunSettings { return m.runSettings }

// EnableKeyPrefixing makes the model prefix its keys in shared storage with
// its own name, so concurrent members never collide.
func (m *Model) EnableKeyPrefixing() { m.keyPrefixing = true }

// DisableKeyPrefixing turns key prefixing back off.
func (m *Model) DisableKeyPrefixing() { m.keyPrefixing = false }

// QueryKeyPrefixing reports whether this model prefixes its keys.
func (m *Model) QueryKeyPrefixing() bool { return m.keyPrefixing }

// RegisterIncomingEntity records a peer the model will receive data from, by
// that peer's key prefix, for later address resolution. Peers accumulate.
func (m *Model) RegisterIncomingEntity(name string) {
	m.incoming = append(m.incoming, name)
}

// IncomingEntities returns the registered peer names in registration order.
func (m *Model) IncomingEntities() []string { return m.incoming }
