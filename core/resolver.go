package core

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"pagewidth/logger"
	"pagewidth/models"

	"github.com/tidwall/gjson"
)

// ParseGlobalSettings reads a stored global record. A missing record, or any
// missing or wrong-typed field, falls back to the defaults field by field.
func ParseGlobalSettings(raw []byte) models.GlobalSettings {
	gs := models.DefaultGlobalSettings()
	rec, ok := parseRecord(raw)
	if !ok {
		return gs
	}
	if v := rec.Get("activated"); v.IsBool() {
		gs.Activated = v.Bool()
	}
	if w, ok := positiveInt(rec.Get("width")); ok {
		gs.Width = w
	}
	if m, ok := method(rec.Get("method")); ok {
		gs.Method = m
	}
	return gs
}

// ParseOverride reads a stored site override. present is false when raw is
// missing, not a JSON object, or an empty object. Wrong-typed fields are
// left unset.
func ParseOverride(raw []byte) (o models.SiteOverride, present bool) {
	rec, ok := parseRecord(raw)
	if !ok {
		return o, false
	}
	rec.ForEach(func(_, _ gjson.Result) bool {
		present = true
		return false
	})
	if !present {
		return o, false
	}

	if w, ok := positiveInt(rec.Get("width")); ok {
		o.Width = &w
	}
	if m, ok := method(rec.Get("method")); ok {
		o.Method = &m
	}
	if v := rec.Get("disabled"); v.IsBool() {
		d := v.Bool()
		o.Disabled = &d
	}
	if v := rec.Get("pattern"); v.Type == gjson.String {
		if p := models.Pattern(v.Str); p.Valid() {
			o.Pattern = &p
		}
	}
	if lvl, ok := positiveInt(rec.Get("pathLevel")); ok && (lvl == 1 || lvl == 2) {
		o.PathLevel = &lvl
	}
	return o, true
}

func parseRecord(raw []byte) (gjson.Result, bool) {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return gjson.Result{}, false
	}
	rec := gjson.ParseBytes(raw)
	if !rec.IsObject() {
		return gjson.Result{}, false
	}
	return rec, true
}

func positiveInt(v gjson.Result) (int, bool) {
	if v.Type != gjson.Number {
		return 0, false
	}
	if v.Num <= 0 || v.Num != math.Trunc(v.Num) || v.Num > math.MaxInt32 {
		return 0, false
	}
	return int(v.Num), true
}

func method(v gjson.Result) (models.Method, bool) {
	if v.Type != gjson.String {
		return "", false
	}
	m := models.Method(v.Str)
	return m, m.Valid()
}

// SelectOverride returns the most specific present override among the keys
// derived for u, in the order exact > path(2) > path(1) > domain.
func SelectOverride(u *url.URL, overrides map[string][]byte) (models.SiteOverride, LevelKey, bool) {
	for _, lk := range DeriveKeys(u).Ordered() {
		if o, ok := ParseOverride(overrides[lk.Key]); ok {
			return o, lk, true
		}
	}
	return models.SiteOverride{}, LevelKey{}, false
}

// Resolve merges global settings with the best matching override.
// Activation always comes from global: an override can only disable its scope.
func Resolve(u *url.URL, global models.GlobalSettings, overrides map[string][]byte) models.EffectiveSettings {
	eff := models.EffectiveSettings{
		Activated: global.Activated,
		Width:     global.Width,
		Method:    global.Method,
	}

	o, lk, ok := SelectOverride(u, overrides)
	if !ok {
		return eff
	}
	eff.MatchedLevel = lk.Level
	eff.MatchedKey = lk.Key
	eff.Override = o
	if o.Width != nil {
		eff.Width = *o.Width
	}
	if o.Method != nil {
		eff.Method = *o.Method
	}
	if o.Disabled != nil {
		eff.Disabled = *o.Disabled
	}
	return eff
}

// Engine runs resolution and decisions against a store and a catalog.
type Engine struct {
	store   Store
	catalog Catalog
}

// NewEngine returns an Engine. catalog may be nil.
func NewEngine(store Store, catalog Catalog) *Engine {
	return &Engine{store: store, catalog: catalog}
}

// Store returns the engine's settings store.
func (e *Engine) Store() Store {
	return e.store
}

// Catalog returns the engine's rule catalog, which may be nil.
func (e *Engine) Catalog() Catalog {
	return e.catalog
}

// LoadGlobal reads the global settings record, falling back to defaults.
func (e *Engine) LoadGlobal(ctx context.Context) (models.GlobalSettings, error) {
	return LoadGlobal(ctx, e.store)
}

// Resolve reads global settings and then the four override keys for u.
// The reads are sequential: the override query is only issued once the
// global read has completed.
func (e *Engine) Resolve(ctx context.Context, u *url.URL) (models.EffectiveSettings, error) {
	global, err := e.LoadGlobal(ctx)
	if err != nil {
		return models.EffectiveSettings{}, err
	}

	keys := DeriveKeys(u)
	overrides, err := e.store.Get(ctx, keys.List())
	if err != nil {
		return models.EffectiveSettings{}, fmt.Errorf("reading site overrides for %s: %w", u.Host, err)
	}

	eff := Resolve(u, global, overrides)
	logger.Debug("Resolve: %s -> activated=%t width=%d method=%s disabled=%t matched=%q",
		keys.Exact, eff.Activated, eff.Width, eff.Method, eff.Disabled, eff.MatchedKey)
	return eff, nil
}

// Evaluate resolves settings for u and decides what to do at viewportWidth.
func (e *Engine) Evaluate(ctx context.Context, u *url.URL, viewportWidth int) (models.EffectiveSettings, models.Decision, error) {
	eff, err := e.Resolve(ctx, u)
	if err != nil {
		return eff, models.ClearDecision(""), err
	}
	return eff, Decide(u, eff, viewportWidth, e.catalog), nil
}
