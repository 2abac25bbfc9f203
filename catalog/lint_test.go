package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintCleanCatalog(t *testing.T) {
	c := mustParse(t, sampleCatalog)
	warnings := c.Lint(1000)
	assert.Empty(t, warnings)
}

func TestLintFindsProblems(t *testing.T) {
	c := mustParse(t, `
sites:
  - name: empty
    match: {type: domain, pattern: a.example}
  - name: vetoed
    match: {type: domain, pattern: b.example}
    preferred: none
    rules:
      body: {width: 10px}
  - name: template
    match: {type: domain, pattern: c.example}
    rules:
      body:
        width: "{{ .Nope }}"
`)
	warnings := c.Lint(1000)
	require.Len(t, warnings, 3)

	assert.Equal(t, "empty", warnings[0].Entry)
	assert.Contains(t, warnings[0].Message, "neither rules nor a preferred method")
	assert.Equal(t, "vetoed", warnings[1].Entry)
	assert.Contains(t, warnings[1].String(), `vetoed: rules are never applied`)
	assert.Equal(t, "template", warnings[2].Entry)
	assert.Contains(t, warnings[2].Message, "template:")
}

func TestLintKeepsCheckingAfterGrammarError(t *testing.T) {
	c := mustParse(t, `
sites:
  - name: broken
    match: {type: domain, pattern: d.example}
    rules:
      "body }{":
        width: 10px
      p:
        color: ""
`)
	warnings := c.Lint(1000)
	require.GreaterOrEqual(t, len(warnings), 2)
	for _, w := range warnings {
		assert.Equal(t, "broken", w.Entry)
		assert.Contains(t, w.Message, "css:")
	}
}
