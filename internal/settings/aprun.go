package settings

import (
	"strconv"
	"strings"
)

// Aprun holds run settings for the ALPS `aprun` launcher.
type Aprun struct {
	Base
}

// NewAprun builds aprun settings for an executable and its arguments.
func NewAprun(exe string, exeArgs ...string) *Aprun {
	a := &Aprun{}
	a.exe = exe
	a.runArgs = make(map[string]string)
	a.AddExeArgs(exeArgs...)
	return a
}

// SetTasks sets the total number of processing elements.
func (a *Aprun) SetTasks(n int) { a.set("pes", strconv.Itoa(n)) }

// SetTasksPerNode sets the number of processing elements per compute node.
func (a *Aprun) SetTasksPerNode(n int) { a.set("pes-per-node", strconv.Itoa(n)) }

// SetCpusPerTask sets the number of cpus per processing element.
func (a *Aprun) SetCpusPerTask(n int) { a.set("cpus-per-pe", strconv.Itoa(n)) }

// SetHostlist constrains the launch to the given compute nodes.
func (a *Aprun) SetHostlist(hosts []string) { a.set("node-list", strings.Join(hosts, ",")) }

// Clone returns an independent deep copy.
func (a *Aprun) Clone() RunSettings {
	out := &Aprun{}
	out.exe = a.exe
	out.exeArgs = cloneSlice(a.exeArgs)
	out.runArgs = cloneMap(a.runArgs)
	return out
}
