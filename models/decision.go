package models

// DecisionKind says whether the managed style is cleared or (re)applied.
type DecisionKind string

const (
	DecisionClear DecisionKind = "clear"
	DecisionApply DecisionKind = "apply"
)

// Reasons recorded on a Decision, mostly for logs and the evaluate endpoint.
const (
	ReasonDisabled    = "disabled"
	ReasonCatalogNone = "catalog_none"
	ReasonInactive    = "inactive"
	ReasonNotNeeded   = "not_needed"
	ReasonFullscreen  = "fullscreen"
	ReasonApplied     = "applied"
)

// Decision is the outcome of one evaluation. Blocks and CSS are only set for
// DecisionApply; CSS is the compiled form of Blocks.
type Decision struct {
	Kind   DecisionKind `json:"kind" example:"apply" enum:"clear,apply"`
	Method Method       `json:"method,omitempty" example:"absolute"`
	Blocks []RuleBlock  `json:"blocks,omitempty" swaggertype:"array,object"`
	CSS    string       `json:"css,omitempty" example:"html {position: absolute; width: 800px; left: 400px; } "`
	Reason string       `json:"reason" example:"applied"`
}

// ClearDecision returns a Clear decision carrying reason.
func ClearDecision(reason string) Decision {
	return Decision{Kind: DecisionClear, Reason: reason}
}

// IsClear reports whether the decision removes the managed style.
func (d Decision) IsClear() bool {
	return d.Kind != DecisionApply
}
