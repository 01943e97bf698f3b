package ensemble

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/expgrid/internal/entity"
	"github.com/vk/expgrid/internal/errs"
	"github.com/vk/expgrid/internal/paramspace"
	"github.com/vk/expgrid/internal/settings"
	"github.com/vk/expgrid/internal/strategy"
)

func runSettings() settings.RunSettings {
	return settings.NewBase("python", "sleep.py")
}

func entries(t *testing.T, pairs ...any) []paramspace.Entry {
	t.Helper()
	require.Zero(t, len(pairs)%2)
	var out []paramspace.Entry
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, paramspace.Entry{
			Name:  pairs[i].(string),
			Value: pairs[i+1].(cty.Value),
		})
	}
	return out
}

func tuple(vals ...int64) cty.Value {
	elems := make([]cty.Value, len(vals))
	for i, v := range vals {
		elems[i] = cty.NumberIntVal(v)
	}
	return cty.TupleVal(elems)
}

func TestAllPermExpansion(t *testing.T) {
	e, err := New(context.Background(), Config{
		Name:        "exp",
		Params:      entries(t, "h", tuple(5, 6)),
		RunSettings: runSettings(),
		Strategy:    strategy.NameAllPerm,
	})
	require.NoError(t, err)
	require.Equal(t, 2, e.Len())

	models := e.Models()
	assert.Equal(t, "exp_0", models[0].Name())
	assert.Equal(t, "exp_1", models[1].Name())
	assert.True(t, models[0].Params()["h"].RawEquals(cty.NumberIntVal(5)))
	assert.True(t, models[1].Params()["h"].RawEquals(cty.NumberIntVal(6)))
	assert.True(t, models[0].QueryKeyPrefixing())
	assert.True(t, models[1].QueryKeyPrefixing())
}

func TestStepExpansion(t *testing.T) {
	e, err := New(context.Background(), Config{
		Name:        "exp",
		Params:      entries(t, "h", tuple(5, 6), "g", tuple(7, 8)),
		RunSettings: runSettings(),
		Strategy:    strategy.NameStep,
	})
	require.NoError(t, err)
	require.Equal(t, 2, e.Len())

	first := e.Models()[0].Params()
	assert.True(t, first["h"].RawEquals(cty.NumberIntVal(5)))
	assert.True(t, first["g"].RawEquals(cty.NumberIntVal(7)))

	second := e.Models()[1].Params()
	assert.True(t, second["h"].RawEquals(cty.NumberIntVal(6)))
	assert.True(t, second["g"].RawEquals(cty.NumberIntVal(8)))
}

func TestRandomExpansion(t *testing.T) {
	pool := []int64{4, 5, 6, 7, 8}
	e, err := New(context.Background(), Config{
		Name:        "random_test",
		Params:      entries(t, "h", tuple(pool...)),
		RunSettings: runSettings(),
		Strategy:    strategy.NameRandom,
		Options:     strategy.Options{N: len(pool)},
	})
	require.NoError(t, err)
	require.Equal(t, len(pool), e.Len())

	for _, model := range e.Models() {
		val := model.Params()["h"]
		found := false
		for _, candidate := range pool {
			if val.RawEquals(cty.NumberIntVal(candidate)) {
				found = true
				break
			}
		}
		assert.True(t, found, "member value %#v not drawn from the pool", val)
	}
}

func TestUserStrategy(t *testing.T) {
	stepped := func(names []string, values [][]cty.Value, _ strategy.Options) ([]strategy.Assignment, error) {
		steps := len(values[0])
		for _, list := range values {
			if len(list) < steps {
				steps = len(list)
			}
		}
		out := make([]strategy.Assignment, 0, steps)
		for i := 0; i < steps; i++ {
			asg := strategy.Assignment{}
			for j, name := range names {
				asg[name] = values[j][i]
			}
			out = append(out, asg)
		}
		return out, nil
	}

	e, err := New(context.Background(), Config{
		Name:         "exp",
		Params:       entries(t, "h", tuple(5, 6), "g", tuple(7, 8)),
		RunSettings:  runSettings(),
		StrategyFunc: stepped,
	})
	require.NoError(t, err)
	require.Equal(t, 2, e.Len())
	assert.True(t, e.Models()[0].Params()["g"].RawEquals(cty.NumberIntVal(7)))
}

func TestUnknownStrategy(t *testing.T) {
	_, err := New(context.Background(), Config{
		Name:        "ensemble",
		RunSettings: runSettings(),
		Strategy:    "not-a-strategy",
	})
	require.Error(t, err)
	var unsupported *errs.UnsupportedError
	assert.ErrorAs(t, err, &unsupported)
}

func TestBrokenUserStrategy(t *testing.T) {
	t.Run("no assignment sequence", func(t *testing.T) {
		bad := func([]string, [][]cty.Value, strategy.Options) ([]strategy.Assignment, error) {
			return nil, nil
		}
		_, err := New(context.Background(), Config{
			Name:         "ensemble",
			Params:       entries(t, "h", tuple(2, 3)),
			RunSettings:  runSettings(),
			StrategyFunc: bad,
		})
		var stratErr *errs.StrategyError
		require.ErrorAs(t, err, &stratErr)
	})

	t.Run("assignment is not a mapping", func(t *testing.T) {
		bad := func([]string, [][]cty.Value, strategy.Options) ([]strategy.Assignment, error) {
			return []strategy.Assignment{nil}, nil
		}
		_, err := New(context.Background(), Config{
			Name:         "ensemble",
			Params:       entries(t, "h", tuple(2, 3)),
			RunSettings:  runSettings(),
			StrategyFunc: bad,
		})
		var stratErr *errs.StrategyError
		require.ErrorAs(t, err, &stratErr)
	})
}

func TestIncorrectParamType(t *testing.T) {
	_, err := New(context.Background(), Config{
		Name: "ensemble",
		Params: []paramspace.Entry{
			{Name: "h", Value: cty.ObjectVal(map[string]cty.Value{"h": cty.NumberIntVal(5)})},
		},
		RunSettings: runSettings(),
	})
	require.Error(t, err)
	var typeErr *errs.TypeError
	assert.ErrorAs(t, err, &typeErr)
}

func TestDecisionTable(t *testing.T) {
	t.Run("params without run settings fail", func(t *testing.T) {
		_, err := New(context.Background(), Config{
			Name:   "ensemble",
			Params: entries(t, "h", tuple(5)),
		})
		var cfgErr *errs.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("run settings without params or replicas fail", func(t *testing.T) {
		_, err := New(context.Background(), Config{
			Name:        "ensemble",
			RunSettings: runSettings(),
		})
		var cfgErr *errs.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("nothing to launch fails", func(t *testing.T) {
		_, err := New(context.Background(), Config{Name: "ensemble"})
		var cfgErr *errs.ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("replicas expand into identical members", func(t *testing.T) {
		e, err := New(context.Background(), Config{
			Name:        "replicated",
			RunSettings: runSettings(),
			Replicas:    4,
		})
		require.NoError(t, err)
		require.Equal(t, 4, e.Len())
		assert.Equal(t, "replicated_3", e.Models()[3].Name())
		assert.Empty(t, e.Models()[0].Params())
		assert.True(t, e.QueryKeyPrefixing())
	})

	t.Run("batch settings alone compose an empty ensemble", func(t *testing.T) {
		e, err := New(context.Background(), Config{
			Name:          "batch_only",
			BatchSettings: settings.NewQsub(4, 1, "01:00:00", "", ""),
		})
		require.NoError(t, err)
		assert.Zero(t, e.Len())
		require.NotNil(t, e.BatchSettings())
	})
}

func TestAddModel(t *testing.T) {
	e, err := New(context.Background(), Config{
		Name:        "ensemble",
		Params:      entries(t, "h", cty.NumberIntVal(5)),
		RunSettings: runSettings(),
	})
	require.NoError(t, err)
	require.Equal(t, 1, e.Len())

	t.Run("nil model is rejected", func(t *testing.T) {
		err := e.AddModel(nil)
		var typeErr *errs.TypeError
		require.ErrorAs(t, err, &typeErr)
	})

	t.Run("duplicate identity is rejected and collection unchanged", func(t *testing.T) {
		first := entity.NewModel("identical_name", strategy.Assignment{"h": cty.NumberIntVal(5)}, "", runSettings())
		second := entity.NewModel("identical_name", strategy.Assignment{"z": cty.NumberIntVal(6)}, "", runSettings())

		require.NoError(t, e.AddModel(first))
		before := e.Len()

		err := e.AddModel(second)
		var existsErr *errs.ExistsError
		require.ErrorAs(t, err, &existsErr)
		assert.Equal(t, "identical_name", existsErr.Name)
		assert.Equal(t, before, e.Len())
	})
}

func TestKeyPrefixing(t *testing.T) {
	e, err := New(context.Background(), Config{
		Name:        "test",
		Params:      entries(t, "h", tuple(5, 6, 7, 8)),
		RunSettings: runSettings(),
	})
	require.NoError(t, err)

	// A manually added model starts with prefixing off, dragging the
	// aggregate down until it is broadcast back on.
	model := entity.NewModel("model", strategy.Assignment{"z": cty.NumberIntVal(6)}, "", runSettings())
	require.NoError(t, e.AddModel(model))

	assert.False(t, e.QueryKeyPrefixing())
	e.EnableKeyPrefixing()
	assert.True(t, e.QueryKeyPrefixing())
}

func TestRegisterIncomingEntity(t *testing.T) {
	e, err := New(context.Background(), Config{
		Name:        "consumers",
		RunSettings: runSettings(),
		Replicas:    2,
	})
	require.NoError(t, err)

	e.RegisterIncomingEntity("producer_0")
	e.RegisterIncomingEntity("producer_1")

	for _, model := range e.Models() {
		assert.Equal(t, []string{"producer_0", "producer_1"}, model.IncomingEntities())
	}
}

func TestMembersGetIndependentSettings(t *testing.T) {
	template := runSettings()
	e, err := New(context.Background(), Config{
		Name:        "exp",
		Params:      entries(t, "h", tuple(5, 6)),
		RunSettings: template,
	})
	require.NoError(t, err)

	first := e.Models()[0].RunSettings()
	second := e.Models()[1].RunSettings()
	require.NotSame(t, first, second)

	first.SetCpusPerTask(8)
	first.AddExeArgs("--only-first")

	assert.NotContains(t, second.ExeArgs(), "--only-first")
	_, ok := second.RunArgs()["cpus-per-task"]
	assert.False(t, ok)
	_, ok = template.RunArgs()["cpus-per-task"]
	assert.False(t, ok, "template must not be mutated through a member")
}
