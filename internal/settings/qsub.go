package settings

import (
	"fmt"
	"sort"
	"strings"
)

// Qsub holds PBS batch submission settings for a whole topology or ensemble
// submitted as one workload-manager job.
type Qsub struct {
	Nodes    int
	Ncpus    int
	Walltime string
	Queue    string
	Account  string
	Hostlist []string

	// BatchArgs carries arbitrary qsub argument overrides keyed by flag name.
	BatchArgs map[string]string
}

// NewQsub builds batch settings for a job spanning the given node count.
// Walltime, queue, and account are passed through verbatim and may be empty.
func NewQsub(nodes, ncpus int, walltime, queue, account string) *Qsub {
	return &Qsub{
		Nodes:     nodes,
		Ncpus:     ncpus,
		Walltime:  walltime,
		Queue:     queue,
		Account:   account,
		BatchArgs: make(map[string]string),
	}
}

// SetNcpus sets the cpu count requested per node.
func (q *Qsub) SetNcpus(n int) { q.Ncpus = n }

// SetWalltime sets the job walltime, e.g. "10:00:00".
func (q *Qsub) SetWalltime(walltime string) { q.Walltime = walltime }

// SetHostlist pins the batch job to specific hosts.
func (q *Qsub) SetHostlist(hosts []string) { q.Hostlist = cloneSlice(hosts) }

// FormatBatchArgs renders the submission arguments as a qsub flag list.
func (q *Qsub) FormatBatchArgs() []string {
	var out []string

	sel := fmt.Sprintf("select=%d", q.Nodes)
	if q.Ncpus > 0 {
		sel += fmt.Sprintf(":ncpus=%d", q.Ncpus)
	}
	if len(q.Hostlist) > 0 {
		sel += ":host=" + strings.Join(q.Hostlist, "+")
	}
	out = append(out, "-l", sel)

	if q.Walltime != "" {
		out = append(out, "-l", "walltime="+q.Walltime)
	}
	if q.Queue != "" {
		out = append(out, "-q", q.Queue)
	}
	if q.Account != "" {
		out = append(out, "-A", q.Account)
	}

	keys := make([]string, 0, len(q.BatchArgs))
	for k := range q.BatchArgs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		prefix := "--"
		if len(k) == 1 {
			prefix = "-"
		}
		out = append(out, prefix+k)
		if v := q.BatchArgs[k]; v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Clone returns an independent deep copy.
func (q *Qsub) Clone() *Qsub {
	out := *q
	out.Hostlist = cloneSlice(q.Hostlist)
	out.BatchArgs = cloneMap(q.BatchArgs)
	return &out
}
