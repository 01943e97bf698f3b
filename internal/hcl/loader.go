// Package hcl loads experiment spec files from disk and decodes them into
// the schema structures the composition layer consumes.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/expgrid/internal/ctxlog"
	"github.com/vk/expgrid/internal/fsutil"
	"github.com/vk/expgrid/internal/schema"
)

// Extension is the file suffix spec files are discovered by.
const Extension = ".hcl"

// Loader parses experiment spec files.
type Loader struct {
	parser *hclparse.Parser
}

// NewLoader creates a Loader with a fresh parser.
func NewLoader() *Loader {
	return &Loader{parser: hclparse.NewParser()}
}

// Load resolves path (a file or a directory) and merges every spec file
// found into a single Spec. At most one experiment block and one
// orchestrator block may appear across all files.
func (l *Loader) Load(ctx context.Context, path string) (*schema.Spec, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindSpecFiles(path, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered spec files.", "count", len(files))

	spec := &schema.Spec{}
	for _, file := range files {
		parsed, err := l.loadFile(file)
		if err != nil {
			return nil, err
		}
		if parsed.Experiment != nil {
			if spec.Experiment != nil {
				return nil, fmt.Errorf("duplicate experiment block in %s", file)
			}
			spec.Experiment = parsed.Experiment
		}
		if parsed.Orchestrator != nil {
			if spec.Orchestrator != nil {
				return nil, fmt.Errorf("duplicate orchestrator block in %s", file)
			}
			spec.Orchestrator = parsed.Orchestrator
		}
		spec.Ensembles = append(spec.Ensembles, parsed.Ensembles...)
	}
	logger.Debug("Spec files merged.",
		"ensembles", len(spec.Ensembles), "has_orchestrator", spec.Orchestrator != nil)
	return spec, nil
}

func (l *Loader) loadFile(path string) (*schema.File, error) {
	hclFile, diags := l.parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse spec file %s: %w", path, diags)
	}
	var file schema.File
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &file); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode spec file %s: %w", path, diags)
	}
	return &file, nil
}

// exprIsSet reports whether an optional expression attribute was present.
func exprIsSet(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		// A non-evaluable expression is still "set"; the caller surfaces the
		// evaluation error with context.
		return true
	}
	return !val.IsNull()
}
