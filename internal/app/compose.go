package app

import (
	"context"
	"fmt"
	"os"

	"github.com/vk/expgrid/internal/ctxlog"
	"github.com/vk/expgrid/internal/ensemble"
	"github.com/vk/expgrid/internal/hcl"
	"github.com/vk/expgrid/internal/orchestrator"
	"github.com/vk/expgrid/internal/plan"
	"github.com/vk/expgrid/internal/schema"
	"github.com/vk/expgrid/internal/settings"
	"github.com/vk/expgrid/internal/strategy"
)

// Compose turns a loaded spec into a fully resolved plan: every ensemble is
// expanded into members and the orchestrator block, if present, into a node
// topology. Any constraint violation aborts the whole composition.
func Compose(ctx context.Context, spec *schema.Spec) (*plan.Plan, error) {
	logger := ctxlog.FromContext(ctx)

	expName := ""
	path := ""
	if spec.Experiment != nil {
		expName = spec.Experiment.Name
		path = spec.Experiment.Path
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		path = cwd
	}

	out := &plan.Plan{Experiment: expName}
	for _, block := range spec.Ensembles {
		e, err := composeEnsemble(ctx, block, path)
		if err != nil {
			return nil, err
		}
		out.Ensembles = append(out.Ensembles, plan.FromEnsemble(e))
	}

	if spec.Orchestrator != nil {
		o, err := composeTopology(ctx, spec.Orchestrator, path)
		if err != nil {
			return nil, err
		}
		out.Topology = plan.FromTopology(o)
	}

	logger.Info("Experiment composed.",
		"experiment", expName, "ensembles", len(out.Ensembles), "topology", out.Topology != nil)
	return out, nil
}

func composeEnsemble(ctx context.Context, block *schema.EnsembleBlock, path string) (*ensemble.Ensemble, error) {
	entries, err := hcl.ParamEntries(block.Params)
	if err != nil {
		return nil, fmt.Errorf("ensemble %q: %w", block.Name, err)
	}

	cfg := ensemble.Config{
		Name:     block.Name,
		Path:     path,
		Params:   entries,
		Strategy: block.Strategy,
		Replicas: block.Replicas,
		Options:  strategy.Options{N: block.Samples},
	}
	if block.RunSettings != nil {
		cfg.RunSettings = settings.NewBase(block.RunSettings.Exe, block.RunSettings.ExeArgs...)
	}
	if block.BatchSettings != nil {
		b := block.BatchSettings
		cfg.BatchSettings = settings.NewQsub(b.Nodes, b.Ncpus, b.Walltime, b.Queue, b.Account)
	}
	return ensemble.New(ctx, cfg)
}

func composeTopology(ctx context.Context, block *schema.OrchestratorBlock, path string) (*orchestrator.PBS, error) {
	batch := true
	if block.Batch != nil {
		batch = *block.Batch
	}
	return orchestrator.New(ctx, orchestrator.Config{
		Name:       "orchestrator",
		Path:       path,
		Port:       block.Port,
		DBNodes:    block.DBNodes,
		Batch:      batch,
		RunCommand: orchestrator.RunCommand(block.RunCommand),
		Hosts:      block.Hosts,
		Account:    block.Account,
		Queue:      block.Queue,
		Walltime:   block.Walltime,
	})
}
