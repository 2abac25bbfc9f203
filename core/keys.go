package core

import (
	"net/url"
	"pagewidth/models"
	"strings"
)

// Keys holds the specificity keys derived from one URL.
type Keys struct {
	Exact      string
	PathLevel1 string
	PathLevel2 string
	Domain     string
}

// LevelKey pairs a specificity level with its key.
type LevelKey struct {
	Level models.Level
	Key   string
}

// Ordered returns the keys from most to least specific:
// exact, path(2), path(1), domain.
func (k Keys) Ordered() []LevelKey {
	return []LevelKey{
		{Level: models.LevelExact, Key: k.Exact},
		{Level: models.LevelPath2, Key: k.PathLevel2},
		{Level: models.LevelPath1, Key: k.PathLevel1},
		{Level: models.LevelDomain, Key: k.Domain},
	}
}

// List returns the four keys in specificity order, duplicates included.
func (k Keys) List() []string {
	return []string{k.Exact, k.PathLevel2, k.PathLevel1, k.Domain}
}

// DeriveKeys computes all four specificity keys for u.
func DeriveKeys(u *url.URL) Keys {
	return Keys{
		Exact:      KeyFor(u, models.PatternExact, 0),
		PathLevel1: KeyFor(u, models.PatternPath, 1),
		PathLevel2: KeyFor(u, models.PatternPath, 2),
		Domain:     KeyFor(u, models.PatternDomain, 0),
	}
}

// KeyFor computes the key for a single pattern. pathLevel is only read for
// PatternPath. Unknown patterns fall back to host + pathname.
func KeyFor(u *url.URL, pattern models.Pattern, pathLevel int) string {
	host := HostKey(u)
	switch pattern {
	case models.PatternExact:
		return host + pathname(u) + search(u) + hash(u)
	case models.PatternPath:
		return host + "/" + strings.Join(firstSegments(pathname(u), pathLevel), "/")
	case models.PatternDomain:
		return host
	default:
		return host + pathname(u)
	}
}

// HostKey returns the host the way a browser reports location.host:
// lowercased and without the scheme's default port.
func HostKey(u *url.URL) string {
	host := strings.ToLower(u.Host)
	switch strings.ToLower(u.Scheme) {
	case "https":
		return strings.TrimSuffix(host, ":443")
	case "http":
		return strings.TrimSuffix(host, ":80")
	}
	return host
}

// firstSegments returns up to n non-empty path segments.
func firstSegments(p string, n int) []string {
	if n < 0 {
		n = 0
	}
	segs := make([]string, 0, n)
	for _, part := range strings.Split(p, "/") {
		if len(segs) == n {
			break
		}
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}

// pathname follows the browser's URL.pathname: hierarchical URLs always have
// at least "/".
func pathname(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" && u.Host != "" {
		return "/"
	}
	return p
}

func search(u *url.URL) string {
	if u.RawQuery == "" {
		return ""
	}
	return "?" + u.RawQuery
}

func hash(u *url.URL) string {
	if u.Fragment == "" {
		return ""
	}
	return "#" + u.EscapedFragment()
}
