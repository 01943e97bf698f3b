package settings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseExeArgs(t *testing.T) {
	t.Run("constructor splits on whitespace", func(t *testing.T) {
		listArgs := NewBase("python", "sleep.py", "--time=5")
		strArgs := NewBase("python", "sleep.py --time=5")

		want := []string{"sleep.py", "--time=5"}
		assert.Equal(t, want, listArgs.ExeArgs())
		assert.Equal(t, want, strArgs.ExeArgs())
	})

	t.Run("AddExeArgs appends", func(t *testing.T) {
		rs := NewBase("python")
		rs.AddExeArgs("--time 5")
		rs.AddExeArgs("--add", "--list")
		assert.Equal(t, []string{"--time", "5", "--add", "--list"}, rs.ExeArgs())
	})
}

func TestFormatRunArgs(t *testing.T) {
	rs := NewBase("echo", "test")
	rs.SetTasks(2)
	rs.RunArgs()["n"] = "4"

	got := rs.FormatRunArgs()
	want := []string{"-n", "4", "--tasks", "2"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("run args mismatch (-want +got):\n%s", diff)
	}
}

func TestAprunFlagNames(t *testing.T) {
	rs := NewAprun("redis-server", "redis.conf")
	rs.SetTasks(1)
	rs.SetTasksPerNode(1)
	rs.SetCpusPerTask(4)
	rs.SetHostlist([]string{"nid0001", "nid0002"})

	args := rs.RunArgs()
	assert.Equal(t, "1", args["pes"])
	assert.Equal(t, "1", args["pes-per-node"])
	assert.Equal(t, "4", args["cpus-per-pe"])
	assert.Equal(t, "nid0001,nid0002", args["node-list"])
}

func TestMpirunFlagNames(t *testing.T) {
	rs := NewMpirun("redis-server", "redis.conf")
	rs.SetTasks(1)
	rs.SetTasksPerNode(1)
	rs.SetCpusPerTask(4)
	rs.SetHostlist([]string{"nid0001"})

	args := rs.RunArgs()
	assert.Equal(t, "1", args["np"])
	assert.Equal(t, "1", args["npernode"])
	assert.Equal(t, "4", args["cpus-per-proc"])
	assert.Equal(t, "nid0001", args["host"])
}

func TestCloneIsDeep(t *testing.T) {
	check := func(t *testing.T, template, clone RunSettings) {
		t.Helper()
		require.NotSame(t, template, clone)

		clone.AddExeArgs("--cloned-only")
		clone.SetCpusPerTask(16)

		assert.NotContains(t, template.ExeArgs(), "--cloned-only")
		for key := range clone.RunArgs() {
			if _, shared := template.RunArgs()[key]; shared {
				assert.NotEqual(t, clone.RunArgs()[key], "16",
					"mutating a clone must not reach the template")
			}
		}
		_, ok := template.RunArgs()["cpus-per-pe"]
		assert.False(t, ok)
		_, ok = template.RunArgs()["cpus-per-proc"]
		assert.False(t, ok)
		_, ok = template.RunArgs()["cpus-per-task"]
		assert.False(t, ok)
	}

	t.Run("base", func(t *testing.T) {
		rs := NewBase("python", "sim.py")
		check(t, rs, rs.Clone())
	})
	t.Run("aprun", func(t *testing.T) {
		rs := NewAprun("redis-server")
		clone := rs.Clone()
		_, isAprun := clone.(*Aprun)
		require.True(t, isAprun, "clone must keep the concrete family type")
		check(t, rs, clone)
	})
	t.Run("mpirun", func(t *testing.T) {
		rs := NewMpirun("redis-server")
		clone := rs.Clone()
		_, isMpirun := clone.(*Mpirun)
		require.True(t, isMpirun, "clone must keep the concrete family type")
		check(t, rs, clone)
	})
}

func TestQsubFormatBatchArgs(t *testing.T) {
	q := NewQsub(3, 2, "10:00:00", "debug", "proj-123")
	q.SetHostlist([]string{"nid0001", "nid0002", "nid0003"})
	q.BatchArgs["J"] = "orc"

	got := q.FormatBatchArgs()
	want := []string{
		"-l", "select=3:ncpus=2:host=nid0001+nid0002+nid0003",
		"-l", "walltime=10:00:00",
		"-q", "debug",
		"-A", "proj-123",
		"-J", "orc",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("batch args mismatch (-want +got):\n%s", diff)
	}
}

func TestQsubClone(t *testing.T) {
	q := NewQsub(3, 1, "", "", "")
	q.BatchArgs["A"] = "first"

	clone := q.Clone()
	clone.BatchArgs["A"] = "second"
	clone.SetHostlist([]string{"nid0001"})

	assert.Equal(t, "first", q.BatchArgs["A"])
	assert.Empty(t, q.Hostlist)
}
