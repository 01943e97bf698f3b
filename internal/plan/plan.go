// Package plan renders composed ensembles and topologies into the flat,
// JSON-serializable form handed to an external process launcher. The
// structures mirror what a launcher needs to invoke each unit: identity,
// working path, executable, arguments, and placement.
package plan

import (
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/expgrid/internal/ensemble"
	"github.com/vk/expgrid/internal/orchestrator"
	"github.com/vk/expgrid/internal/settings"
)

// Plan is the fully resolved experiment: every runnable unit and the shared
// database topology, ready for submission.
type Plan struct {
	Experiment string         `json:"experiment,omitempty"`
	Ensembles  []EnsemblePlan `json:"ensembles,omitempty"`
	Topology   *TopologyPlan  `json:"topology,omitempty"`
}

// EnsemblePlan is one composed ensemble.
type EnsemblePlan struct {
	Name  string    `json:"name"`
	Batch *BatchJob `json:"batch,omitempty"`
	Units []Unit    `json:"units"`
}

// Unit is one launchable ensemble member.
type Unit struct {
	Name         string            `json:"name"`
	Path         string            `json:"path,omitempty"`
	Params       map[string]string `json:"params,omitempty"`
	Exe          string            `json:"exe"`
	ExeArgs      []string          `json:"exe_args,omitempty"`
	RunArgs      []string          `json:"run_args,omitempty"`
	KeyPrefixing bool              `json:"key_prefixing"`
}

// TopologyPlan is the resolved database topology.
type TopologyPlan struct {
	Name    string    `json:"name"`
	Cluster bool      `json:"cluster"`
	Ports   []int     `json:"ports"`
	Batch   *BatchJob `json:"batch,omitempty"`
	Nodes   []Node    `json:"nodes"`
}

// Node is one database node placement.
type Node struct {
	Name    string   `json:"name"`
	Path    string   `json:"path,omitempty"`
	Host    string   `json:"host,omitempty"`
	Ports   []int    `json:"ports"`
	Exe     string   `json:"exe"`
	ExeArgs []string `json:"exe_args,omitempty"`
	RunArgs []string `json:"run_args,omitempty"`
}

// BatchJob carries the workload-manager submission settings.
type BatchJob struct {
	Nodes    int      `json:"nodes"`
	Ncpus    int      `json:"ncpus"`
	Walltime string   `json:"walltime,omitempty"`
	Queue    string   `json:"queue,omitempty"`
	Account  string   `json:"account,omitempty"`
	Hosts    []string `json:"hosts,omitempty"`
	Args     []string `json:"args,omitempty"`
}

// FromEnsemble flattens a composed ensemble.
func FromEnsemble(e *ensemble.Ensemble) EnsemblePlan {
	out := EnsemblePlan{
		Name:  e.Name(),
		Batch: fromQsub(e.BatchSettings()),
		Units: []Unit{},
	}
	for _, model := range e.Models() {
		params := make(map[string]string, len(model.Params()))
		for name, val := range model.Params() {
			params[name] = valueString(val)
		}
		if len(params) == 0 {
			params = nil
		}
		rs := model.RunSettings()
		out.Units = append(out.Units, Unit{
			Name:         model.Name(),
			Path:         model.Path(),
			Params:       params,
			Exe:          rs.Exe(),
			ExeArgs:      rs.ExeArgs(),
			RunArgs:      rs.FormatRunArgs(),
			KeyPrefixing: model.QueryKeyPrefixing(),
		})
	}
	return out
}

// FromTopology flattens a composed topology.
func FromTopology(o *orchestrator.PBS) *TopologyPlan {
	out := &TopologyPlan{
		Name:    o.Name(),
		Cluster: o.ClusterMode(),
		Ports:   o.Ports(),
		Batch:   fromQsub(o.BatchSettings()),
		Nodes:   []Node{},
	}
	for _, node := range o.Nodes() {
		rs := node.RunSettings()
		out.Nodes = append(out.Nodes, Node{
			Name:    node.Name(),
			Path:    node.Path(),
			Host:    node.Host(),
			Ports:   node.Ports(),
			Exe:     rs.Exe(),
			ExeArgs: rs.ExeArgs(),
			RunArgs: rs.FormatRunArgs(),
		})
	}
	return out
}

func fromQsub(q *settings.Qsub) *BatchJob {
	if q == nil {
		return nil
	}
	return &BatchJob{
		Nodes:    q.Nodes,
		Ncpus:    q.Ncpus,
		Walltime: q.Walltime,
		Queue:    q.Queue,
		Account:  q.Account,
		Hosts:    q.Hostlist,
		Args:     q.FormatBatchArgs(),
	}
}

// valueString renders a scalar parameter value the way it appears in a
// generated input file: strings verbatim, numbers in decimal.
func valueString(val cty.Value) string {
	switch val.Type() {
	case cty.String:
		return val.AsString()
	case cty.Number:
		return val.AsBigFloat().Text('f', -1)
	default:
		return val.GoString()
	}
}
