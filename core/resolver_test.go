package core

import (
	"context"
	"pagewidth/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGlobalSettings(t *testing.T) {
	defaults := models.DefaultGlobalSettings()

	tests := []struct {
		name string
		raw  string
		want models.GlobalSettings
	}{
		{name: "missing record", raw: "", want: defaults},
		{name: "not json", raw: "{oops", want: defaults},
		{name: "not an object", raw: `[1,2]`, want: defaults},
		{
			name: "complete record",
			raw:  `{"activated":true,"width":900,"method":"margin"}`,
			want: models.GlobalSettings{Activated: true, Width: 900, Method: models.MethodMargin},
		},
		{
			name: "missing fields default individually",
			raw:  `{"width":900}`,
			want: models.GlobalSettings{Activated: false, Width: 900, Method: models.MethodAutomatic},
		},
		{
			name: "wrong-typed fields default individually",
			raw:  `{"activated":"yes","width":"wide","method":"sideways"}`,
			want: defaults,
		},
		{
			name: "non-integral and negative widths are ignored",
			raw:  `{"activated":true,"width":-5}`,
			want: models.GlobalSettings{Activated: true, Width: models.DefaultWidth, Method: models.MethodAutomatic},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGlobalSettings([]byte(tt.raw)))
		})
	}
}

func TestParseOverride(t *testing.T) {
	t.Run("empty object is absent", func(t *testing.T) {
		_, ok := ParseOverride([]byte(`{}`))
		assert.False(t, ok)
	})

	t.Run("non-object is absent", func(t *testing.T) {
		for _, raw := range []string{``, `null`, `"x"`, `[{"width":800}]`, `{"width":`} {
			_, ok := ParseOverride([]byte(raw))
			assert.Falsef(t, ok, "ParseOverride(%q) should be absent", raw)
		}
	})

	t.Run("unknown fields still make it present", func(t *testing.T) {
		o, ok := ParseOverride([]byte(`{"note":"hi"}`))
		require.True(t, ok)
		assert.True(t, o.IsEmpty())
	})

	t.Run("typed fields are read", func(t *testing.T) {
		o, ok := ParseOverride([]byte(`{"width":800,"method":"relative","disabled":true,"pattern":"domain","pathLevel":2}`))
		require.True(t, ok)
		require.NotNil(t, o.Width)
		require.NotNil(t, o.Method)
		require.NotNil(t, o.Disabled)
		require.NotNil(t, o.Pattern)
		require.NotNil(t, o.PathLevel)
		assert.Equal(t, 800, *o.Width)
		assert.Equal(t, models.MethodRelative, *o.Method)
		assert.True(t, *o.Disabled)
		assert.Equal(t, models.PatternDomain, *o.Pattern)
		assert.Equal(t, 2, *o.PathLevel)
	})

	t.Run("wrong-typed fields are unset", func(t *testing.T) {
		o, ok := ParseOverride([]byte(`{"width":"800","disabled":1,"pathLevel":3}`))
		require.True(t, ok)
		assert.Nil(t, o.Width)
		assert.Nil(t, o.Disabled)
		assert.Nil(t, o.PathLevel)
	})
}

func TestResolveSpecificityOrder(t *testing.T) {
	u := mustURL(t, "https://example.com/blog/post1?x=1")
	keys := DeriveKeys(u)
	global := activeGlobal(1200, models.MethodAutomatic)

	overrides := map[string][]byte{
		keys.Domain:     []byte(`{"width":500}`),
		keys.PathLevel1: []byte(`{"width":600}`),
		keys.PathLevel2: []byte(`{"width":700}`),
		keys.Exact:      []byte(`{"width":800}`),
	}

	steps := []struct {
		drop  string
		width int
		level models.Level
	}{
		{drop: "", width: 800, level: models.LevelExact},
		{drop: keys.Exact, width: 700, level: models.LevelPath2},
		{drop: keys.PathLevel2, width: 600, level: models.LevelPath1},
		{drop: keys.PathLevel1, width: 500, level: models.LevelDomain},
		{drop: keys.Domain, width: 1200, level: models.LevelNone},
	}
	for _, step := range steps {
		delete(overrides, step.drop)
		eff := Resolve(u, global, overrides)
		assert.Equal(t, step.width, eff.Width)
		assert.Equal(t, step.level, eff.MatchedLevel)
	}
}

func TestResolveSkipsMalformedOverrides(t *testing.T) {
	u := mustURL(t, "https://example.com/blog/post1")
	keys := DeriveKeys(u)

	eff := Resolve(u, activeGlobal(1200, models.MethodAutomatic), map[string][]byte{
		keys.Exact:      []byte(`{}`),
		keys.PathLevel2: []byte(`not json`),
		keys.PathLevel1: []byte(`[]`),
		keys.Domain:     []byte(`{"width":640,"method":"margin"}`),
	})
	assert.Equal(t, 640, eff.Width)
	assert.Equal(t, models.MethodMargin, eff.Method)
	assert.Equal(t, keys.Domain, eff.MatchedKey)
}

func TestResolveActivationComesFromGlobal(t *testing.T) {
	u := mustURL(t, "https://example.com/")
	keys := DeriveKeys(u)
	global := models.DefaultGlobalSettings()

	eff := Resolve(u, global, map[string][]byte{
		keys.Domain: []byte(`{"activated":true,"width":700,"disabled":false}`),
	})
	assert.False(t, eff.Activated)
	assert.Equal(t, 700, eff.Width)
	assert.False(t, eff.Disabled)
}

func TestResolveOverrideFieldsFallBackToGlobal(t *testing.T) {
	u := mustURL(t, "https://example.com/a")
	keys := DeriveKeys(u)

	eff := Resolve(u, activeGlobal(1000, models.MethodRelative), map[string][]byte{
		keys.PathLevel1: []byte(`{"disabled":true}`),
	})
	assert.True(t, eff.Activated)
	assert.Equal(t, 1000, eff.Width)
	assert.Equal(t, models.MethodRelative, eff.Method)
	assert.True(t, eff.Disabled)
}

func TestEngineResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store yields defaults", func(t *testing.T) {
		e := NewEngine(newMemStore(), nil)
		eff, err := e.Resolve(ctx, mustURL(t, "https://example.com/"))
		require.NoError(t, err)
		assert.False(t, eff.Activated)
		assert.Equal(t, models.DefaultWidth, eff.Width)
		assert.Equal(t, models.MethodAutomatic, eff.Method)
	})

	t.Run("reads global before overrides", func(t *testing.T) {
		store := newMemStore()
		store.put(t, models.GlobalSettingsKey, activeGlobal(900, models.MethodMargin))
		store.putRaw("example.com", `{"width":700}`)
		e := NewEngine(store, nil)

		eff, err := e.Resolve(ctx, mustURL(t, "https://example.com/x"))
		require.NoError(t, err)
		assert.Equal(t, 700, eff.Width)
		assert.Equal(t, models.MethodMargin, eff.Method)

		require.Len(t, store.gets, 2)
		assert.Equal(t, []string{models.GlobalSettingsKey}, store.gets[0])
		assert.ElementsMatch(t, DeriveKeys(mustURL(t, "https://example.com/x")).List(), store.gets[1])
	})

	t.Run("store failure is returned", func(t *testing.T) {
		store := newMemStore()
		store.failGet = true
		_, err := NewEngine(store, nil).Resolve(ctx, mustURL(t, "https://example.com/"))
		assert.ErrorIs(t, err, errStoreDown)
	})

	t.Run("evaluate clears on store failure", func(t *testing.T) {
		store := newMemStore()
		store.failGet = true
		_, d, err := NewEngine(store, nil).Evaluate(ctx, mustURL(t, "https://example.com/"), 1600)
		assert.Error(t, err)
		assert.True(t, d.IsClear())
	})
}
