package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Ruleset is one selector with its declarations in source order.
type Ruleset struct {
	Selector     string
	Declarations []Declaration
}

// RuleBlock maps selectors to ordered property/value lists.
// Selector and property order is significant and survives JSON round trips.
type RuleBlock []Ruleset

// Get returns the value of prop under selector, searching the last matching
// declaration first so later declarations win the way the CSS cascade does.
func (b RuleBlock) Get(selector, prop string) (string, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		if b[i].Selector != selector {
			continue
		}
		decls := b[i].Declarations
		for j := len(decls) - 1; j >= 0; j-- {
			if decls[j].Property == prop {
				return decls[j].Value, true
			}
		}
	}
	return "", false
}

// MarshalJSON encodes the block as a JSON object, keeping insertion order.
func (b RuleBlock) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rs := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, rs.Selector); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for j, d := range rs.Declarations {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, d.Property); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSONString(&buf, d.Value); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(enc)
	return nil
}

// UnmarshalJSON decodes a JSON object into the block. gjson walks object
// members in document order, which encoding/json maps cannot do.
// Non-object property lists produce a selector with no declarations.
func (b *RuleBlock) UnmarshalJSON(data []byte) error {
	if !gjson.ValidBytes(data) {
		return errors.New("rule block: invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if res.Type == gjson.Null {
		*b = nil
		return nil
	}
	if !res.IsObject() {
		return fmt.Errorf("rule block: expected object, got %s", res.Type)
	}

	var out RuleBlock
	res.ForEach(func(selector, props gjson.Result) bool {
		rs := Ruleset{Selector: selector.String()}
		if props.IsObject() {
			props.ForEach(func(prop, value gjson.Result) bool {
				rs.Declarations = append(rs.Declarations, Declaration{Property: prop.String(), Value: value.String()})
				return true
			})
		}
		out = append(out, rs)
		return true
	})
	*b = out
	return nil
}

// PreferredNone is the catalog preference that forbids any width constraint.
const PreferredNone = "none"

// CatalogEntry is one rule catalog match for a URL and target width.
type CatalogEntry struct {
	Name            string    `json:"name,omitempty" example:"wikipedia"`
	PreferredMethod *string   `json:"preferredMethod,omitempty" example:"margin" enum:"absolute,relative,margin,none"`
	Rules           RuleBlock `json:"rules" swaggertype:"object"`
}

// Preferred returns the preferred method or "" when unset.
func (e CatalogEntry) Preferred() string {
	if e.PreferredMethod == nil {
		return ""
	}
	return *e.PreferredMethod
}
