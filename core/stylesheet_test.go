package core

import (
	"pagewidth/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	assert.Equal(t, "", Compile(nil))

	blocks := []models.RuleBlock{
		{
			{Selector: "body", Declarations: []models.Declaration{
				{Property: "margin", Value: "0"},
				{Property: "overflow-x", Value: "hidden"},
			}},
			{Selector: "#nav"},
		},
		customBlock("html", "width", "800px"),
	}
	assert.Equal(t, "body {margin: 0; overflow-x: hidden; } #nav {} html {width: 800px; } ", Compile(blocks))
}

func TestCompileKeepsDuplicates(t *testing.T) {
	blocks := []models.RuleBlock{
		customBlock("html", "width", "900px"),
		customBlock("html", "width", "800px"),
	}
	assert.Equal(t, "html {width: 900px; } html {width: 800px; } ", Compile(blocks))
}
