package core

import (
	"pagewidth/models"
	"strings"
)

// Compile renders rule blocks as CSS text. Blocks, selectors and properties
// are emitted in order; nothing is deduplicated or validated.
func Compile(blocks []models.RuleBlock) string {
	var sb strings.Builder
	for _, block := range blocks {
		for _, rs := range block {
			sb.WriteString(rs.Selector)
			sb.WriteString(" {")
			for _, d := range rs.Declarations {
				sb.WriteString(d.Property)
				sb.WriteString(": ")
				sb.WriteString(d.Value)
				sb.WriteString("; ")
			}
			sb.WriteString("} ")
		}
	}
	return sb.String()
}
