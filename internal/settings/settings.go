// Package settings holds the launch-settings value objects consumed by the
// composition layers and, eventually, by an external process launcher.
//
// Every composed run unit and database node owns its OWN settings value.
// Clone is the mechanism that guarantees it: templates are cloned per unit,
// never aliased, so tuning one member can never leak into its siblings.
package settings

import (
	"sort"
	"strconv"
	"strings"
)

// RunSettings describes how a single process is launched: the executable,
// its arguments, and launcher-specific run arguments.
type RunSettings interface {
	Exe() string
	ExeArgs() []string
	AddExeArgs(args ...string)
	SetTasks(n int)
	SetTasksPerNode(n int)
	SetCpusPerTask(n int)
	SetHostlist(hosts []string)
	RunArgs() map[string]string
	FormatRunArgs() []string
	Clone() RunSettings
}

// Base is a launcher-agnostic RunSettings implementation, used as the run
// template for ensemble members and embedded by the launcher-specific types.
type Base struct {
	exe     string
	exeArgs []string
	runArgs map[string]string
}

// NewBase builds generic run settings for an executable and its arguments.
// Each exe arg may contain spaces and is split into separate tokens.
func NewBase(exe string, exeArgs ...string) *Base {
	b := &Base{exe: exe, runArgs: make(map[string]string)}
	b.AddExeArgs(exeArgs...)
	return b
}

func (b *Base) Exe() string       { return b.exe }
func (b *Base) ExeArgs() []string { return b.exeArgs }

// AddExeArgs appends arguments to the executable's argument list, splitting
// each on whitespace.
func (b *Base) AddExeArgs(args ...string) {
	for _, arg := range args {
		b.exeArgs = append(b.exeArgs, strings.Fields(arg)...)
	}
}

func (b *Base) SetTasks(n int)        { b.set("tasks", strconv.Itoa(n)) }
func (b *Base) SetTasksPerNode(n int) { b.set("tasks-per-node", strconv.Itoa(n)) }
func (b *Base) SetCpusPerTask(n int)  { b.set("cpus-per-task", strconv.Itoa(n)) }

func (b *Base) SetHostlist(hosts []string) { b.set("hostlist", strings.Join(hosts, ",")) }

// RunArgs exposes the launcher argument table. Mutations through the returned
// map are visible to the settings value.
func (b *Base) RunArgs() map[string]string { return b.runArgs }

// FormatRunArgs renders the run arguments as a flag list, sorted by name for
// stable output. Single-letter names get a single dash.
func (b *Base) FormatRunArgs() []string {
	keys := make([]string, 0, len(b.runArgs))
	for k := range b.runArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []string
	for _, k := range keys {
		prefix := "--"
		if len(k) == 1 {
			prefix = "-"
		}
		out = append(out, prefix+k)
		if v := b.runArgs[k]; v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent deep copy.
func (b *Base) Clone() RunSettings {
	return &Base{exe: b.exe, exeArgs: cloneSlice(b.exeArgs), runArgs: cloneMap(b.runArgs)}
}

func (b *Base) set(key, val string) { b.runArgs[key] = val }

func cloneSlice(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

