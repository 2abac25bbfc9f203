package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"pagewidth/logger"
	"pagewidth/models"
)

// ErrInvalidSettings is returned when a save request carries values the
// settings form could never produce.
var ErrInvalidSettings = errors.New("invalid settings")

// ClampWidth enforces the minimum width of the width field.
func ClampWidth(w int) int {
	if w < models.MinWidth {
		return models.MinWidth
	}
	return w
}

// StepWidth applies a +/- step to w and clamps the result.
func StepWidth(w, delta int) int {
	return ClampWidth(w + delta)
}

// LoadGlobal reads the global settings record from store.
func LoadGlobal(ctx context.Context, store Store) (models.GlobalSettings, error) {
	res, err := store.Get(ctx, []string{models.GlobalSettingsKey})
	if err != nil {
		return models.DefaultGlobalSettings(), fmt.Errorf("reading global settings: %w", err)
	}
	return ParseGlobalSettings(res[models.GlobalSettingsKey]), nil
}

// SaveGlobal overwrites the global settings record wholesale.
func SaveGlobal(ctx context.Context, store Store, gs models.GlobalSettings) error {
	if !gs.Method.Valid() {
		return fmt.Errorf("%w: unknown method %q", ErrInvalidSettings, gs.Method)
	}
	gs.Width = ClampWidth(gs.Width)
	raw, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("encoding global settings: %w", err)
	}
	if err := store.Set(ctx, map[string][]byte{models.GlobalSettingsKey: raw}); err != nil {
		return fmt.Errorf("saving global settings: %w", err)
	}
	return nil
}

// LoadForm fills the settings form for u: global values merged with the best
// override, plus the pattern and path level to preselect.
func LoadForm(ctx context.Context, store Store, u *url.URL) (models.SettingsForm, error) {
	global, err := LoadGlobal(ctx, store)
	if err != nil {
		return models.SettingsForm{}, err
	}
	overrides, err := store.Get(ctx, DeriveKeys(u).List())
	if err != nil {
		return models.SettingsForm{}, fmt.Errorf("reading site overrides for %s: %w", u.Host, err)
	}

	form := models.SettingsForm{
		URL:       HostKey(u) + pathname(u),
		Activated: global.Activated,
		Width:     global.Width,
		Method:    global.Method,
		Pattern:   models.PatternPath,
		PathLevel: 1,
	}

	o, lk, ok := SelectOverride(u, overrides)
	if !ok {
		return form, nil
	}
	switch lk.Level {
	case models.LevelExact:
		form.Pattern = models.PatternExact
	case models.LevelPath2:
		form.PathLevel = 2
	case models.LevelDomain:
		form.Pattern = models.PatternDomain
	}
	if o.Width != nil {
		form.Width = *o.Width
	}
	if o.Method != nil {
		form.Method = *o.Method
	}
	if o.Disabled != nil {
		form.Disabled = *o.Disabled
	}
	if o.Pattern != nil {
		form.Pattern = *o.Pattern
	}
	if o.PathLevel != nil {
		form.PathLevel = *o.PathLevel
	}
	return form, nil
}

// SaveForm writes the global half of req wholesale, then either stores a
// site override for the chosen scope or removes every override for u.
// An override is only kept when the site is disabled or differs from global.
// Keys for the other scopes of u are removed so that one logical site never
// carries two conflicting overrides.
func SaveForm(ctx context.Context, store Store, u *url.URL, req models.SaveRequest) (models.SaveResult, error) {
	site := req.Site
	if !site.Method.Valid() {
		return models.SaveResult{}, fmt.Errorf("%w: unknown site method %q", ErrInvalidSettings, site.Method)
	}
	if !site.Pattern.Valid() {
		return models.SaveResult{}, fmt.Errorf("%w: unknown pattern %q", ErrInvalidSettings, site.Pattern)
	}
	if site.PathLevel != 1 && site.PathLevel != 2 {
		if site.Pattern == models.PatternPath {
			return models.SaveResult{}, fmt.Errorf("%w: path level must be 1 or 2, got %d", ErrInvalidSettings, site.PathLevel)
		}
		site.PathLevel = 1
	}
	site.Width = ClampWidth(site.Width)

	global := req.Global
	global.Width = ClampWidth(global.Width)
	if err := SaveGlobal(ctx, store, global); err != nil {
		return models.SaveResult{}, err
	}

	keys := DeriveKeys(u)
	var result models.SaveResult

	if site.Disabled || site.Width != global.Width || site.Method != global.Method {
		key := KeyFor(u, site.Pattern, site.PathLevel)
		record := models.SiteOverride{
			Width:     &site.Width,
			Method:    &site.Method,
			Disabled:  &site.Disabled,
			Pattern:   &site.Pattern,
			PathLevel: &site.PathLevel,
		}
		raw, err := json.Marshal(record)
		if err != nil {
			return result, fmt.Errorf("encoding site override: %w", err)
		}
		if err := store.Set(ctx, map[string][]byte{key: raw}); err != nil {
			return result, fmt.Errorf("saving site override %s: %w", key, err)
		}
		result.OverrideKey = key

		var stale []string
		if site.Pattern != models.PatternExact {
			stale = append(stale, keys.Exact)
		}
		if site.Pattern != models.PatternPath || site.PathLevel != 1 {
			stale = append(stale, keys.PathLevel1)
		}
		if site.Pattern != models.PatternPath || site.PathLevel != 2 {
			stale = append(stale, keys.PathLevel2)
		}
		if site.Pattern != models.PatternDomain {
			stale = append(stale, keys.Domain)
		}
		// Short paths make levels collide; never remove the key just written.
		result.RemovedKeys = uniqueExcept(stale, key)
	} else {
		result.RemovedKeys = uniqueExcept(keys.List(), "")
	}

	if len(result.RemovedKeys) > 0 {
		if err := store.Remove(ctx, result.RemovedKeys); err != nil {
			return result, fmt.Errorf("removing stale site overrides: %w", err)
		}
	}
	logger.Info("SaveForm: %s saved (override key %q, removed %d keys)", keys.Exact, result.OverrideKey, len(result.RemovedKeys))
	return result, nil
}

func uniqueExcept(keys []string, except string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == except || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}

// ClearSite removes every override key derived for u.
func ClearSite(ctx context.Context, store Store, u *url.URL) ([]string, error) {
	keys := uniqueExcept(DeriveKeys(u).List(), "")
	if err := store.Remove(ctx, keys); err != nil {
		return nil, fmt.Errorf("removing site overrides for %s: %w", u.Host, err)
	}
	logger.Info("ClearSite: removed overrides for %s", HostKey(u)+pathname(u))
	return keys, nil
}
