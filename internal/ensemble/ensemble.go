// Package ensemble composes a named collection of parameterized models from
// a declarative specification: a parameter space, a permutation strategy, and
// a shared run-settings template.
//
// The collection is ordered, and order matters: member names carry the index
// the expansion produced (`{ensemble}_{i}`), so downstream consumers can map
// a member back to its assignment deterministically.
package ensemble

import (
	"context"
	"fmt"

	"github.com/vk/expgrid/internal/ctxlog"
	"github.com/vk/expgrid/internal/entity"
	"github.com/vk/expgrid/internal/errs"
	"github.com/vk/expgrid/internal/paramspace"
	"github.com/vk/expgrid/internal/settings"
	"github.com/vk/expgrid/internal/strategy"
)

// Config is the declarative input to ensemble composition.
type Config struct {
	Name string
	Path string

	// Params is the raw parameter space, in declaration order. May be empty.
	Params []paramspace.Entry

	// RunSettings is the per-member launch template. Required whenever Params
	// or Replicas drive member creation; each member gets its own clone.
	RunSettings settings.RunSettings

	// BatchSettings, when set without run settings or params, produces an
	// empty ensemble reserved for batch launch.
	BatchSettings *settings.Qsub

	// Strategy selects a built-in permutation strategy by name. Defaults to
	// "all_perm". Ignored when StrategyFunc is set.
	Strategy string

	// StrategyFunc plugs in a user-supplied strategy. Its output is validated
	// against the same contract as the built-ins.
	StrategyFunc strategy.Func

	// Replicas expands a parameterless ensemble into identical members.
	Replicas int

	// Options is passed through to the strategy.
	Options strategy.Options
}

// Ensemble is an ordered collection of models sharing one composition policy.
type Ensemble struct {
	name          string
	path          string
	batchSettings *settings.Qsub
	runSettings   settings.RunSettings

	models []*entity.Model
	byName map[string]struct{}
}

// New composes an ensemble from cfg. Exactly one expansion mode must apply:
// parameterized expansion, replica expansion, or batch-only placeholder
// composition; anything else is a configuration error.
func New(ctx context.Context, cfg Config) (*Ensemble, error) {
	logger := ctxlog.FromContext(ctx)

	name, fn, err := resolveStrategy(cfg)
	if err != nil {
		return nil, err
	}

	space, err := paramspace.Normalize(cfg.Params)
	if err != nil {
		return nil, err
	}

	e := &Ensemble{
		name:          cfg.Name,
		path:          cfg.Path,
		batchSettings: cfg.BatchSettings,
		runSettings:   cfg.RunSettings,
		byName:        make(map[string]struct{}),
	}

	switch {
	case !space.Empty():
		if cfg.RunSettings == nil {
			return nil, errs.Configf(
				"ensemble %q: parameterized ensembles must be provided run settings", cfg.Name)
		}
		assignments, err := strategy.Expand(name, fn, space, cfg.Options)
		if err != nil {
			return nil, err
		}
		for i, asg := range assignments {
			model := entity.NewModel(memberName(cfg.Name, i), asg, cfg.Path, cfg.RunSettings.Clone())
			model.EnableKeyPrefixing()
			if err := e.AddModel(model); err != nil {
				return nil, err
			}
		}
		logger.Debug("Expanded parameterized ensemble.",
			"ensemble", cfg.Name, "strategy", name, "members", len(assignments))

	case cfg.RunSettings != nil && cfg.Replicas > 0:
		for i := 0; i < cfg.Replicas; i++ {
			model := entity.NewModel(memberName(cfg.Name, i), nil, cfg.Path, cfg.RunSettings.Clone())
			model.EnableKeyPrefixing()
			if err := e.AddModel(model); err != nil {
				return nil, err
			}
		}
		logger.Debug("Created replica ensemble.", "ensemble", cfg.Name, "replicas", cfg.Replicas)

	case cfg.RunSettings != nil:
		return nil, errs.Configf(
			"ensemble %q: run settings without params or replicas cannot be expanded into members",
			cfg.Name)

	case cfg.BatchSettings == nil:
		return nil, errs.Configf(
			"ensemble %q: must be provided batch settings or run settings", cfg.Name)

	default:
		logger.Info("Empty ensemble created for batch launch.", "ensemble", cfg.Name)
	}

	return e, nil
}

func resolveStrategy(cfg Config) (string, strategy.Func, error) {
	if cfg.StrategyFunc != nil {
		name := cfg.Strategy
		if name == "" {
			name = "custom"
		}
		return name, cfg.StrategyFunc, nil
	}
	name := cfg.Strategy
	if name == "" {
		name = strategy.NameAllPerm
	}
	fn, err := strategy.Lookup(name)
	if err != nil {
		return "", nil, err
	}
	return name, fn, nil
}

func memberName(ensemble string, i int) string {
	return fmt.Sprintf("%s_%d", ensemble, i)
}

// Name returns the ensemble's name.
func (e *Ensemble) Name() string { return e.name }

// Path returns the working directory shared by the members.
func (e *Ensemble) Path() string { return e.path }

// Models returns the members in creation order.
func (e *Ensemble) Models() []*entity.Model { return e.models }

// Len returns the member count.
func (e *Ensemble) Len() int { return len(e.models) }

// BatchSettings returns the batch template, nil when not composed for batch.
func (e *Ensemble) BatchSettings() *settings.Qsub { return e.batchSettings }

// AddModel appends a model to the ensemble. Identity equality governs
// duplicate detection: a second model with an already-used name is rejected
// and the collection is left untouched.
func (e *Ensemble) AddModel(model *entity.Model) error {
	if model == nil {
		return errs.Typef("ensemble %q: cannot add a nil model", e.name)
	}
	if _, exists := e.byName[model.Name()]; exists {
		return &errs.ExistsError{Name: model.Name(), In: "ensemble " + e.name}
	}
	e.byName[model.Name()] = struct{}{}
	e.models = append(e.models, model)
	return nil
}

// EnableKeyPrefixing turns key prefixing on for every member.
func (e *Ensemble) EnableKeyPrefixing() {
	for _, model := range e.models {
		model.EnableKeyPrefixing()
	}
}

// QueryKeyPrefixing reports whether EVERY member prefixes its keys.
func (e *Ensemble) QueryKeyPrefixing() bool {
	for _, model := range e.models {
		if !model.QueryKeyPrefixing() {
			return false
		}
	}
	return true
}

// RegisterIncomingEntity registers a peer data source with every member.
func (e *Ensemble) RegisterIncomingEntity(name string) {
	for _, model := range e.models {
		model.RegisterIncomingEntity(name)
	}
}
