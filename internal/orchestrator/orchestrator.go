// Package orchestrator composes the topology of a distributed key-value
// store: for a requested node count it decides cluster mode, builds per-node
// launch settings for the chosen run command, and assigns hosts and ports.
// The result is handed, structurally unchanged, to an external process
// launcher; nothing here spawns or polls processes.
package orchestrator

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/expgrid/internal/config"
	"github.com/vk/expgrid/internal/ctxlog"
	"github.com/vk/expgrid/internal/entity"
	"github.com/vk/expgrid/internal/errs"
	"github.com/vk/expgrid/internal/settings"
)

// RunCommand selects the launcher family a topology's nodes start under.
type RunCommand string

// The supported run-command families on PBS systems.
const (
	RunCommandAprun  RunCommand = "aprun"
	RunCommandMpirun RunCommand = "mpirun"
)

// DefaultPort is the database port used when the spec leaves it unset.
const DefaultPort = 6379

// familyPolicy captures the per-family branching in one place instead of
// scattering conditionals through the composer.
type familyPolicy struct {
	build func(exe string, exeArgs []string) settings.RunSettings

	// requiresHosts marks a launcher that cannot self-discover placement and
	// therefore needs an explicit host list up front.
	requiresHosts bool

	// hostlistPerNodeInBatch controls whether SetHosts also writes the host
	// into each node's run settings while the topology launches as a batch.
	// aprun rejects explicit host lists inside a batch job, so its per-node
	// assignment is skipped there and the batch layer places the nodes.
	hostlistPerNodeInBatch bool
}

var families = map[RunCommand]familyPolicy{
	RunCommandAprun: {
		build: func(exe string, exeArgs []string) settings.RunSettings {
			return settings.NewAprun(exe, exeArgs...)
		},
		hostlistPerNodeInBatch: false,
	},
	RunCommandMpirun: {
		build: func(exe string, exeArgs []string) settings.RunSettings {
			return settings.NewMpirun(exe, exeArgs...)
		},
		requiresHosts:          true,
		hostlistPerNodeInBatch: true,
	},
}

func runCommandNames() []string {
	return []string{string(RunCommandAprun), string(RunCommandMpirun)}
}

// Config is the declarative input to topology composition.
type Config struct {
	Name string
	Path string

	// Port the database binds on every node. Defaults to DefaultPort.
	Port int

	// DBNodes is the node count. Defaults to 1. Exactly 2 is rejected: the
	// clustering protocol needs at least three primaries.
	DBNodes int

	// Batch submits the whole topology as one workload-manager job.
	Batch bool

	// RunCommand selects the launcher family. Defaults to aprun.
	RunCommand RunCommand

	// Hosts pins nodes to compute hosts. Required for mpirun.
	Hosts []string

	// Batch-only passthrough fields; each may be empty.
	Account  string
	Queue    string
	Walltime string
}

// PBS composes and owns a database topology for PBSPro-scheduled systems.
type PBS struct {
	name    string
	path    string
	port    int
	cluster bool
	batch   bool
	family  RunCommand

	nodes         []*entity.DBNode
	ports         []int
	batchSettings *settings.Qsub
}

// New composes a PBS topology from cfg. All constraint violations surface
// here, before any node exists, so a caller never holds a partially
// composed topology.
func New(ctx context.Context, cfg Config) (*PBS, error) {
	logger := ctxlog.FromContext(ctx)

	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	dbNodes := cfg.DBNodes
	if dbNodes == 0 {
		dbNodes = 1
	}
	family := cfg.RunCommand
	if family == "" {
		family = RunCommandAprun
	}

	if dbNodes == 2 {
		return nil, errs.Topologyf(
			"topology %q: clusters of size 2 are not supported, use 1 or >= 3 nodes", cfg.Name)
	}
	cluster := dbNodes >= 3

	policy, ok := families[family]
	if !ok {
		return nil, &errs.UnsupportedError{
			Kind:  "run command",
			Given: string(family),
			Valid: runCommandNames(),
		}
	}
	if policy.requiresHosts && len(cfg.Hosts) == 0 {
		return nil, errs.Topologyf(
			"topology %q: a host list is required when launching with %s", cfg.Name, family)
	}

	o := &PBS{
		name:    cfg.Name,
		path:    cfg.Path,
		port:    port,
		cluster: cluster,
		batch:   cfg.Batch,
		family:  family,
		ports:   []int{port},
	}
	if cfg.Batch {
		o.batchSettings = settings.NewQsub(dbNodes, 1, cfg.Walltime, cfg.Queue, cfg.Account)
	}

	exe := config.DatabaseExe()
	conf := config.DatabaseConf()
	for i := 0; i < dbNodes; i++ {
		nodeName := fmt.Sprintf("%s_%d", cfg.Name, i)
		exeArgs := []string{conf, "--port", strconv.Itoa(port)}
		if cluster {
			exeArgs = append(exeArgs, clusterArgs(nodeName, port)...)
		}
		rs := policy.build(exe, exeArgs)
		rs.SetTasks(1)
		rs.SetTasksPerNode(1)
		o.nodes = append(o.nodes, entity.NewDBNode(nodeName, cfg.Path, rs, []int{port}))
	}
	logger.Debug("Composed database topology.",
		"topology", cfg.Name, "nodes", dbNodes, "cluster", cluster,
		"run_command", string(family), "batch", cfg.Batch)

	if len(cfg.Hosts) > 0 {
		if err := o.SetHosts(cfg.Hosts); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// clusterArgs derives the cluster-bootstrap arguments for one node from its
// identity and port.
func clusterArgs(nodeName string, port int) []string {
	conf := fmt.Sprintf("nodes-%s-%d.conf", nodeName, port)
	return []string{"--cluster-enabled", "yes", "--cluster-config-file", conf}
}

// SetHosts assigns compute hosts to the nodes, in order. A single string is
// treated as a one-element list; anything else that is not a list of strings
// is a type error.
//
// In batch mode the hosts also flow into the batch settings, and for the
// aprun family the per-node run-settings host list is intentionally left
// unset there (see familyPolicy); the node's own Host field is always set.
func (o *PBS) SetHosts(hostList any) error {
	hosts, err := normalizeHosts(hostList)
	if err != nil {
		return err
	}
	if o.batch {
		o.batchSettings.SetHostlist(hosts)
	}
	policy := families[o.family]
	for i, node := range o.nodes {
		if i >= len(hosts) {
			break
		}
		node.SetHost(hosts[i])
		if !o.batch || policy.hostlistPerNodeInBatch {
			node.RunSettings().SetHostlist([]string{hosts[i]})
		}
	}
	return nil
}

func normalizeHosts(hostList any) ([]string, error) {
	switch v := hostList.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return v, nil
	case []any:
		hosts := make([]string, 0, len(v))
		for _, elem := range v {
			host, ok := elem.(string)
			if !ok {
				return nil, errs.Typef("host list must contain only strings, got %T", elem)
			}
			hosts = append(hosts, host)
		}
		return hosts, nil
	default:
		return nil, errs.Typef("host list must be a string or a list of strings, got %T", hostList)
	}
}

// SetCpus sets the cpus available to each database node. In batch mode the
// aggregate request on the batch settings is raised to match.
func (o *PBS) SetCpus(numCpus int) {
	if o.batch {
		o.batchSettings.SetNcpus(numCpus)
	}
	for _, node := range o.nodes {
		node.RunSettings().SetCpusPerTask(numCpus)
	}
}

// SetWalltime sets the batch walltime. Only a batch topology can declare one.
func (o *PBS) SetWalltime(walltime string) error {
	if !o.batch {
		return errs.Configf("topology %q is not launching as batch, cannot set walltime", o.name)
	}
	o.batchSettings.SetWalltime(walltime)
	return nil
}

// SetBatchArg stores a qsub argument override. Only valid in batch mode.
func (o *PBS) SetBatchArg(arg, value string) error {
	if !o.batch {
		return errs.Configf("topology %q is not launching as batch, cannot set batch arg %q", o.name, arg)
	}
	o.batchSettings.BatchArgs[arg] = value
	return nil
}

// Name returns the topology's name.
func (o *PBS) Name() string { return o.name }

// Path returns the working directory shared by the nodes.
func (o *PBS) Path() string { return o.path }

// Nodes returns the node placements in index order.
func (o *PBS) Nodes() []*entity.DBNode { return o.nodes }

// Ports returns the ports in use, currently always a single element.
func (o *PBS) Ports() []int { return o.ports }

// ClusterMode reports whether the nodes bootstrap as a cluster.
func (o *PBS) ClusterMode() bool { return o.cluster }

// Batch reports whether the topology launches as one batch job.
func (o *PBS) Batch() bool { return o.batch }

// RunCommand returns the launcher family the nodes start under.
func (o *PBS) RunCommand() RunCommand { return o.family }

// BatchSettings returns the batch submission settings, nil unless composed
// with batch mode on.
func (o *PBS) BatchSettings() *settings.Qsub { return o.batchSettings }
