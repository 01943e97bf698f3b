package entity

import "github.com/vk/expgrid/internal/settings"

// DBNode is a single database process placement within a topology. The host
// is late-bound: it stays empty until the owning orchestrator assigns hosts,
// which may happen independently of batch submission.
type DBNode struct {
	name        string
	path        string
	host        string
	ports       []int
	runSettings settings.RunSettings
}

// NewDBNode creates a database node placement.
func NewDBNode(name, path string, rs settings.RunSettings, ports []int) *DBNode {
	return &DBNode{name: name, path: path, ports: ports, runSettings: rs}
}

// Name returns the node's identity within its topology.
func (n *DBNode) Name() string { return n.name }

// Path returns the node's working directory.
func (n *DBNode) Path() string { return n.path }

// Host returns the assigned host, empty until SetHost is called.
func (n *DBNode) Host() string { return n.host }

// SetHost assigns the compute host this node runs on.
func (n *DBNode) SetHost(host string) { n.host = host }

// Ports returns the ports the node binds.
func (n *DBNode) Ports() []int { return n.ports }

// RunSettings returns the node's own launch settings.
func (n *DBNode) RunSettings() settings.RunSettings { return n.runSettings }
