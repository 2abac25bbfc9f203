package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"pagewidth/logger"
	"pagewidth/models"
	"regexp"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// ErrInvalidEntry marks a catalog entry that was skipped while loading.
var ErrInvalidEntry = errors.New("invalid catalog entry")

type MatchType string

const (
	MatchDomain    MatchType = "domain"
	MatchURLPrefix MatchType = "url_prefix"
	MatchURLRegex  MatchType = "url_regex"
)

type Match struct {
	Type    MatchType `yaml:"type"`
	Pattern string    `yaml:"pattern"`
}

type fileEntry struct {
	Name      string    `yaml:"name"`
	Match     Match     `yaml:"match"`
	Preferred *string   `yaml:"preferred"`
	Rules     yaml.Node `yaml:"rules"`
}

type catalogFile struct {
	Sites []fileEntry `yaml:"sites"`
}

type templateData struct {
	Width int
}

type value struct {
	property string
	raw      string
	tmpl     *template.Template
}

type ruleset struct {
	selector string
	values   []value
}

// Entry is one compiled catalog site.
type Entry struct {
	Name      string
	Match     Match
	Preferred *string
	rules     []ruleset
	re        *regexp.Regexp
}

// Catalog is an ordered list of site entries.
type Catalog struct {
	entries []*Entry
}

// Load reads a catalog file. A missing file yields an empty catalog. Broken
// entries are skipped; the returned error aggregates every skipped entry and
// is non-nil alongside a usable catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info("Catalog: %s not found, using an empty catalog", path)
			return &Catalog{}, nil
		}
		return &Catalog{}, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	logger.Info("Catalog: loaded %d entries from %s", c.Len(), path)
	return c, err
}

// Parse decodes catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return &Catalog{}, fmt.Errorf("decoding catalog: %w", err)
	}

	c := &Catalog{}
	var errs error
	for i, fe := range f.Sites {
		e, err := compileEntry(fe)
		if err != nil {
			name := fe.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			errs = multierr.Append(errs, fmt.Errorf("%w %s: %v", ErrInvalidEntry, name, err))
			continue
		}
		c.entries = append(c.entries, e)
	}
	return c, errs
}

func compileEntry(fe fileEntry) (*Entry, error) {
	e := &Entry{Name: fe.Name, Match: fe.Match, Preferred: fe.Preferred}
	if e.Name == "" {
		return nil, errors.New("missing name")
	}
	if fe.Match.Pattern == "" {
		return nil, errors.New("missing match pattern")
	}
	switch fe.Match.Type {
	case MatchDomain, MatchURLPrefix:
	case MatchURLRegex:
		re, err := regexp.Compile(fe.Match.Pattern)
		if err != nil {
			return nil, fmt.Errorf("bad url_regex: %w", err)
		}
		e.re = re
	default:
		return nil, fmt.Errorf("unknown match type %q", fe.Match.Type)
	}

	if p := fe.Preferred; p != nil && *p != models.PreferredNone {
		m := models.Method(*p)
		if !m.Valid() || m == models.MethodAutomatic {
			return nil, fmt.Errorf("unknown preferred method %q", *p)
		}
	}

	rules, err := compileRules(&fe.Rules)
	if err != nil {
		return nil, err
	}
	e.rules = rules
	return e, nil
}

// compileRules walks the rules mapping node so selector and property order
// follow the file.
func compileRules(n *yaml.Node) ([]ruleset, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, errors.New("rules must be a mapping of selectors")
	}
	var out []ruleset
	for i := 0; i+1 < len(n.Content); i += 2 {
		sel, props := n.Content[i], n.Content[i+1]
		if sel.Kind != yaml.ScalarNode || sel.Value == "" {
			return nil, fmt.Errorf("line %d: selector must be a non-empty string", sel.Line)
		}
		if props.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: properties of %q must be a mapping", props.Line, sel.Value)
		}
		rs := ruleset{selector: sel.Value}
		for j := 0; j+1 < len(props.Content); j += 2 {
			k, v := props.Content[j], props.Content[j+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: property of %q must be a scalar pair", k.Line, sel.Value)
			}
			tmpl, err := template.New(sel.Value + " " + k.Value).Funcs(sprig.FuncMap()).Parse(v.Value)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", v.Line, err)
			}
			rs.values = append(rs.values, value{property: k.Value, raw: v.Value, tmpl: tmpl})
		}
		out = append(out, rs)
	}
	return out, nil
}

// Len returns the number of usable entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns the compiled entries in file order.
func (c *Catalog) Entries() []*Entry {
	if c == nil {
		return nil
	}
	return c.entries
}

// LookupSiteRules returns every entry matching rawURL, in file order, with
// rule values rendered for width.
func (c *Catalog) LookupSiteRules(rawURL string, width int) []models.CatalogEntry {
	if c.Len() == 0 {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		logger.Debug("Catalog: cannot parse %q: %v", rawURL, err)
		return nil
	}
	var out []models.CatalogEntry
	for _, e := range c.entries {
		if !e.Matches(u) {
			continue
		}
		ce, errs := e.render(width)
		for _, err := range errs {
			logger.Warn("Catalog: entry %q: %v", e.Name, err)
		}
		out = append(out, ce)
	}
	return out
}

// Matches reports whether the entry applies to u.
func (e *Entry) Matches(u *url.URL) bool {
	pattern := e.Match.Pattern
	switch e.Match.Type {
	case MatchDomain:
		host := strings.ToLower(u.Hostname())
		pattern = strings.ToLower(pattern)
		if strings.HasPrefix(pattern, "*.") {
			domain := strings.TrimPrefix(pattern, "*.")
			return host == domain || strings.HasSuffix(host, "."+domain)
		}
		return host == pattern
	case MatchURLPrefix:
		return strings.HasPrefix(u.String(), pattern)
	case MatchURLRegex:
		return e.re != nil && e.re.MatchString(u.String())
	}
	return false
}

// Render evaluates the entry's rule templates for width. Values that fail to
// render are dropped.
func (e *Entry) Render(width int) models.CatalogEntry {
	ce, _ := e.render(width)
	return ce
}

func (e *Entry) render(width int) (models.CatalogEntry, []error) {
	ce := models.CatalogEntry{Name: e.Name, PreferredMethod: e.Preferred}
	var errs []error
	data := templateData{Width: width}
	for _, rs := range e.rules {
		out := models.Ruleset{Selector: rs.selector}
		for _, v := range rs.values {
			var buf bytes.Buffer
			if err := v.tmpl.Execute(&buf, data); err != nil {
				errs = append(errs, fmt.Errorf("%s { %s: %s }: %w", rs.selector, v.property, v.raw, err))
				continue
			}
			out.Declarations = append(out.Declarations, models.Declaration{Property: v.property, Value: buf.String()})
		}
		ce.Rules = append(ce.Rules, out)
	}
	return ce, errs
}
