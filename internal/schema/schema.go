// Package schema defines the HCL shapes of an experiment spec file. A spec
// declares ensembles of parameterized model runs and, optionally, one
// database topology they share state through.
package schema

import "github.com/hashicorp/hcl/v2"

// Experiment names the experiment and sets the working directory inherited
// by every composed unit.
type Experiment struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path,optional"`
}

// RunSettingsBlock describes how each member of an ensemble is executed.
type RunSettingsBlock struct {
	Exe     string   `hcl:"exe"`
	ExeArgs []string `hcl:"exe_args,optional"`
}

// BatchSettingsBlock describes a batch submission for a whole ensemble.
type BatchSettingsBlock struct {
	Nodes    int    `hcl:"nodes,optional"`
	Ncpus    int    `hcl:"ncpus,optional"`
	Walltime string `hcl:"walltime,optional"`
	Queue    string `hcl:"queue,optional"`
	Account  string `hcl:"account,optional"`
}

// EnsembleBlock is one `ensemble "name" { ... }` block. Params stays an
// expression rather than a decoded map so the loader can recover the
// declaration order of the parameters, which drives member naming.
type EnsembleBlock struct {
	Name          string              `hcl:"name,label"`
	Params        hcl.Expression      `hcl:"params,optional"`
	Strategy      string              `hcl:"strategy,optional"`
	Replicas      int                 `hcl:"replicas,optional"`
	Samples       int                 `hcl:"samples,optional"`
	RunSettings   *RunSettingsBlock   `hcl:"run_settings,block"`
	BatchSettings *BatchSettingsBlock `hcl:"batch_settings,block"`
}

// OrchestratorBlock is the `orchestrator { ... }` block describing the
// shared database topology. Batch is a pointer so "unset" can default to
// true, matching a PBS deployment's usual launch mode.
type OrchestratorBlock struct {
	Port       int      `hcl:"port,optional"`
	DBNodes    int      `hcl:"db_nodes,optional"`
	Batch      *bool    `hcl:"batch,optional"`
	RunCommand string   `hcl:"run_command,optional"`
	Hosts      []string `hcl:"hosts,optional"`
	Account    string   `hcl:"account,optional"`
	Queue      string   `hcl:"queue,optional"`
	Walltime   string   `hcl:"walltime,optional"`
}

// File is the top-level structure of one spec file.
type File struct {
	Experiment   *Experiment        `hcl:"experiment,block"`
	Ensembles    []*EnsembleBlock   `hcl:"ensemble,block"`
	Orchestrator *OrchestratorBlock `hcl:"orchestrator,block"`
}

// Spec is the merged view of all loaded spec files.
type Spec struct {
	Experiment   *Experiment
	Ensembles    []*EnsembleBlock
	Orchestrator *OrchestratorBlock
}
