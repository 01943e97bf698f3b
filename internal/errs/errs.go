// Package errs defines the error taxonomy shared by the composition layers.
// All of these are raised synchronously while a topology or ensemble is being
// composed or mutated, never at launch time, so a caller can rely on a
// successfully constructed composer being internally consistent.
package errs

import (
	"fmt"
	"strings"
)

// ConfigError reports a declarative input that is internally inconsistent,
// such as parameters supplied without run settings.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// UnsupportedError reports an enumerated choice (strategy name, run command)
// that is not recognized. Valid always carries the full set of accepted
// values so the message can enumerate them.
type UnsupportedError struct {
	Kind  string
	Given string
	Valid []string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s %q is not supported, valid options are: %s",
		e.Kind, e.Given, strings.Join(e.Valid, ", "))
}

// StrategyError reports a permutation strategy, built-in or user supplied,
// whose return value violated the list-of-assignments contract. It names the
// strategy so an operator can tell a broken plug-in apart from bad params.
type StrategyError struct {
	Strategy string
	Reason   string
}

func (e *StrategyError) Error() string {
	return fmt.Sprintf("permutation strategy %q violated its contract: %s", e.Strategy, e.Reason)
}

// ExistsError reports an entity added to a collection whose identity is
// already taken.
type ExistsError struct {
	Name string
	In   string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("entity %q already exists in %s", e.Name, e.In)
}

// TypeError reports an argument of the wrong shape, such as a host list that
// is neither a string nor a list of strings.
type TypeError struct {
	Msg string
}

func (e *TypeError) Error() string { return e.Msg }

// Typef builds a TypeError from a format string.
func Typef(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

// TopologyError reports a database topology constraint violation, such as a
// two-node cluster request or a missing host list for a launcher that cannot
// self-discover placement.
type TopologyError struct {
	Msg string
}

func (e *TopologyError) Error() string { return e.Msg }

// Topologyf builds a TopologyError from a format string.
func Topologyf(format string, args ...any) *TopologyError {
	return &TopologyError{Msg: fmt.Sprintf(format, args...)}
}
