package models

// Method is the CSS technique used to constrain the page width.
type Method string

const (
	MethodAutomatic Method = "automatic"
	MethodAbsolute  Method = "absolute"
	MethodRelative  Method = "relative"
	MethodMargin    Method = "margin"
)

// Valid reports whether m is one of the user-selectable methods.
func (m Method) Valid() bool {
	switch m {
	case MethodAutomatic, MethodAbsolute, MethodRelative, MethodMargin:
		return true
	}
	return false
}

// Pattern is the URL scope a site override was saved for.
type Pattern string

const (
	PatternExact  Pattern = "exact"
	PatternPath   Pattern = "path"
	PatternDomain Pattern = "domain"
)

func (p Pattern) Valid() bool {
	return p == PatternExact || p == PatternPath || p == PatternDomain
}

// Width limits for the numeric width field.
const (
	DefaultWidth = 1200
	MinWidth     = 100
	WidthStep    = 100
)

// GlobalSettings is the singleton record stored under GlobalSettingsKey.
type GlobalSettings struct {
	Activated bool   `json:"activated" example:"true"`
	Width     int    `json:"width" example:"1200"`
	Method    Method `json:"method" example:"automatic" enum:"automatic,absolute,relative,margin"`
}

// DefaultGlobalSettings is used whenever no stored global record exists.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		Activated: false,
		Width:     DefaultWidth,
		Method:    MethodAutomatic,
	}
}

// SiteOverride is an optional per-scope record keyed by a specificity key.
// Nil fields are unset and fall back to the global value.
type SiteOverride struct {
	Width     *int     `json:"width,omitempty" example:"800"`
	Method    *Method  `json:"method,omitempty" example:"margin"`
	Disabled  *bool    `json:"disabled,omitempty" example:"false"`
	Pattern   *Pattern `json:"pattern,omitempty" example:"path" enum:"exact,path,domain"`
	PathLevel *int     `json:"pathLevel,omitempty" example:"1" enum:"1,2"`
}

// IsEmpty reports whether no field of the override is set.
func (o SiteOverride) IsEmpty() bool {
	return o.Width == nil && o.Method == nil && o.Disabled == nil && o.Pattern == nil && o.PathLevel == nil
}

// Level names the specificity level a key was derived for.
type Level string

const (
	LevelNone   Level = ""
	LevelExact  Level = "exact"
	LevelPath2  Level = "path2"
	LevelPath1  Level = "path1"
	LevelDomain Level = "domain"
)

// EffectiveSettings is the merged record used for one decision cycle.
// It is derived on every evaluation and never stored.
type EffectiveSettings struct {
	Activated bool   `json:"activated"`
	Width     int    `json:"width"`
	Method    Method `json:"method"`
	Disabled  bool   `json:"disabled"`

	// MatchedLevel and MatchedKey describe which stored override won, if any.
	MatchedLevel Level        `json:"matched_level,omitempty"`
	MatchedKey   string       `json:"matched_key,omitempty"`
	Override     SiteOverride `json:"-"`
}

// SettingsForm mirrors the fields of the settings form for one URL.
type SettingsForm struct {
	URL       string  `json:"url" example:"example.com/blog/post1"`
	Activated bool    `json:"activated"`
	Width     int     `json:"width" example:"1200"`
	Method    Method  `json:"method" example:"automatic"`
	Disabled  bool    `json:"disabled"`
	Pattern   Pattern `json:"pattern" example:"path"`
	PathLevel int     `json:"pathLevel" example:"1"`
}

// SiteChoice is the per-site half of a save request.
type SiteChoice struct {
	Width     int     `json:"width" example:"800"`
	Method    Method  `json:"method" example:"margin"`
	Disabled  bool    `json:"disabled"`
	Pattern   Pattern `json:"pattern" example:"domain"`
	PathLevel int     `json:"pathLevel" example:"1"`
}

// SaveRequest carries both halves of a settings save.
// A form that edits a single set of fields passes the same values to both.
type SaveRequest struct {
	Global GlobalSettings `json:"global"`
	Site   SiteChoice     `json:"site"`
}

// SaveResult reports what a save wrote and removed.
type SaveResult struct {
	OverrideKey string   `json:"override_key,omitempty"`
	RemovedKeys []string `json:"removed_keys"`
}
