package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"pagewidth/core"
	"pagewidth/models"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Warning is a non-fatal problem found in a catalog entry.
type Warning struct {
	Entry   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Entry, w.Message)
}

// Lint renders every entry at sampleWidth and checks the compiled stylesheet
// with a CSS parser.
func (c *Catalog) Lint(sampleWidth int) []Warning {
	var warnings []Warning
	for _, e := range c.Entries() {
		warn := func(format string, args ...interface{}) {
			warnings = append(warnings, Warning{Entry: e.Name, Message: fmt.Sprintf(format, args...)})
		}

		ce, errs := e.render(sampleWidth)
		for _, err := range errs {
			warn("template: %v", err)
		}
		if len(ce.Rules) == 0 && ce.PreferredMethod == nil {
			warn("entry has neither rules nor a preferred method")
			continue
		}
		if ce.Preferred() == models.PreferredNone && len(ce.Rules) > 0 {
			warn("rules are never applied because the preferred method is %q", models.PreferredNone)
		}

		for _, msg := range lintCSS(core.Compile([]models.RuleBlock{ce.Rules})) {
			warn("%s", msg)
		}
	}
	return warnings
}

func lintCSS(stylesheet string) []string {
	var out []string
	p := css.NewParser(parse.NewInput(bytes.NewReader([]byte(stylesheet))), false)
	var selector, lastErr string
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			err := p.Err()
			if err == nil || errors.Is(err, io.EOF) {
				return out
			}
			msg := fmt.Sprintf("css: %v", err)
			// the parser recovers after grammar errors; a repeat means no progress
			if msg == lastErr {
				return out
			}
			lastErr = msg
			out = append(out, msg)
			continue
		case css.BeginRulesetGrammar:
			selector = tokensText(p.Values())
		case css.DeclarationGrammar:
			if tokensText(p.Values()) == "" {
				out = append(out, fmt.Sprintf("css: %s { %s } has an empty value", selector, string(data)))
			}
		case css.QualifiedRuleGrammar, css.BeginAtRuleGrammar, css.AtRuleGrammar:
			out = append(out, fmt.Sprintf("css: unexpected %s", gt))
		}
	}
}

func tokensText(tokens []css.Token) string {
	var buf bytes.Buffer
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			continue
		}
		buf.Write(t.Data)
	}
	return buf.String()
}
