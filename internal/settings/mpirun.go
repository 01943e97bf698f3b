package settings

import (
	"strconv"
	"strings"
)

// Mpirun holds run settings for the OpenMPI `mpirun` launcher.
type Mpirun struct {
	Base
}

// NewMpirun builds mpirun settings for an executable and its arguments.
func NewMpirun(exe string, exeArgs ...string) *Mpirun {
	m := &Mpirun{}
	m.exe = exe
	m.runArgs = make(map[string]string)
	m.AddExeArgs(exeArgs...)
	return m
}

// SetTasks sets the total process count.
func (m *Mpirun) SetTasks(n int) { m.set("np", strconv.Itoa(n)) }

// SetTasksPerNode sets the process count per node.
func (m *Mpirun) SetTasksPerNode(n int) { m.set("npernode", strconv.Itoa(n)) }

// SetCpusPerTask sets the cpus bound to each process.
func (m *Mpirun) SetCpusPerTask(n int) { m.set("cpus-per-proc", strconv.Itoa(n)) }

// SetHostlist constrains the launch to the given hosts.
func (m *Mpirun) SetHostlist(hosts []string) { m.set("host", strings.Join(hosts, ",")) }

// Clone returns an independent deep copy.
func (m *Mpirun) Clone() RunSettings {
	out := &Mpirun{}
	out.exe = m.exe
	out.exeArgs = cloneSlice(m.exeArgs)
	out.runArgs = cloneMap(m.runArgs)
	return out
}
