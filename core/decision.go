package core

import (
	"net/url"
	"pagewidth/logger"
	"pagewidth/models"
	"strconv"
)

// Decide turns effective settings into a Clear or Apply decision for a page
// of the given viewport width. The order of checks matters: the per-scope
// disable flag vetoes before the catalog is consulted, and a catalog "none"
// preference vetoes before activation and width are looked at.
func Decide(u *url.URL, eff models.EffectiveSettings, viewportWidth int, catalog Catalog) models.Decision {
	if eff.Disabled {
		return models.ClearDecision(models.ReasonDisabled)
	}

	rawURL := u.String()
	entries := lookup(catalog, rawURL, eff.Width)
	for _, e := range entries {
		if e.Preferred() == models.PreferredNone {
			logger.Debug("Decide: catalog entry %q forbids width constraint for %s", e.Name, rawURL)
			return models.ClearDecision(models.ReasonCatalogNone)
		}
	}

	if !eff.Activated {
		return models.ClearDecision(models.ReasonInactive)
	}
	if eff.Width >= viewportWidth {
		return models.ClearDecision(models.ReasonNotNeeded)
	}

	var technique models.Method
	var blocks []models.RuleBlock
	if eff.Method == models.MethodAutomatic {
		technique = models.MethodAbsolute
		for _, e := range entries {
			if p := models.Method(e.Preferred()); p != "" {
				technique = p
				break
			}
		}
		for _, e := range entries {
			blocks = append(blocks, e.Rules)
		}
	} else {
		technique = eff.Method
	}

	base, ok := BaseRules(technique, eff.Width, viewportWidth)
	if ok {
		blocks = append(blocks, base)
	} else {
		logger.Debug("Decide: unknown technique %q for %s, applying custom rules only", technique, rawURL)
	}

	return models.Decision{
		Kind:   models.DecisionApply,
		Method: technique,
		Blocks: blocks,
		CSS:    Compile(blocks),
		Reason: models.ReasonApplied,
	}
}

// BaseRules builds the html rule for a technique. ok is false for methods
// that have no base rule, including automatic.
func BaseRules(technique models.Method, width, viewportWidth int) (models.RuleBlock, bool) {
	w := strconv.Itoa(width) + "px"
	left := formatPx(float64(viewportWidth-width) / 2)

	var decls []models.Declaration
	switch technique {
	case models.MethodAbsolute:
		decls = []models.Declaration{
			{Property: "position", Value: "absolute"},
			{Property: "width", Value: w},
			{Property: "left", Value: left},
		}
	case models.MethodRelative:
		decls = []models.Declaration{
			{Property: "position", Value: "relative"},
			{Property: "width", Value: w},
			{Property: "left", Value: left},
		}
	case models.MethodMargin:
		decls = []models.Declaration{
			{Property: "width", Value: w},
			{Property: "margin-left", Value: "auto"},
			{Property: "margin-right", Value: "auto"},
		}
	default:
		return nil, false
	}
	return models.RuleBlock{{Selector: "html", Declarations: decls}}, true
}

// formatPx renders a pixel length the way JavaScript number-to-string does
// for halves: 400 -> "400px", 400.5 -> "400.5px".
func formatPx(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "px"
}
