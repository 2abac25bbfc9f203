package core

import (
	"pagewidth/models"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKeys(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want Keys
	}{
		{
			name: "deep path with query and fragment",
			url:  "https://example.com/blog/post1/comments?page=2#top",
			want: Keys{
				Exact:      "example.com/blog/post1/comments?page=2#top",
				PathLevel1: "example.com/blog",
				PathLevel2: "example.com/blog/post1",
				Domain:     "example.com",
			},
		},
		{
			name: "root path collapses path levels",
			url:  "https://example.com/",
			want: Keys{
				Exact:      "example.com/",
				PathLevel1: "example.com/",
				PathLevel2: "example.com/",
				Domain:     "example.com",
			},
		},
		{
			name: "missing path behaves like root",
			url:  "https://example.com",
			want: Keys{
				Exact:      "example.com/",
				PathLevel1: "example.com/",
				PathLevel2: "example.com/",
				Domain:     "example.com",
			},
		},
		{
			name: "host keeps its port and empty segments are skipped",
			url:  "http://localhost:8080//docs//intro/",
			want: Keys{
				Exact:      "localhost:8080//docs//intro/",
				PathLevel1: "localhost:8080/docs",
				PathLevel2: "localhost:8080/docs/intro",
				Domain:     "localhost:8080",
			},
		},
		{
			name: "host is lowercased and the default https port dropped",
			url:  "https://Example.COM:443/Blog/post1",
			want: Keys{
				Exact:      "example.com/Blog/post1",
				PathLevel1: "example.com/Blog",
				PathLevel2: "example.com/Blog/post1",
				Domain:     "example.com",
			},
		},
		{
			name: "default http port dropped",
			url:  "http://example.com:80/a",
			want: Keys{
				Exact:      "example.com/a",
				PathLevel1: "example.com/a",
				PathLevel2: "example.com/a",
				Domain:     "example.com",
			},
		},
		{
			name: "single segment",
			url:  "https://news.example.org/today",
			want: Keys{
				Exact:      "news.example.org/today",
				PathLevel1: "news.example.org/today",
				PathLevel2: "news.example.org/today",
				Domain:     "news.example.org",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveKeys(mustURL(t, tt.url)))
		})
	}
}

func TestKeysOrdered(t *testing.T) {
	k := DeriveKeys(mustURL(t, "https://example.com/a/b/c"))

	ordered := k.Ordered()
	levels := make([]models.Level, 0, len(ordered))
	for _, lk := range ordered {
		levels = append(levels, lk.Level)
	}
	assert.Equal(t, []models.Level{models.LevelExact, models.LevelPath2, models.LevelPath1, models.LevelDomain}, levels)
	assert.Equal(t, []string{"example.com/a/b/c", "example.com/a/b", "example.com/a", "example.com"}, k.List())
}

func TestKeyForUnknownPattern(t *testing.T) {
	u := mustURL(t, "https://example.com/a/b?q=1")
	assert.Equal(t, "example.com/a/b", KeyFor(u, models.Pattern("bogus"), 0))
}

func TestHostKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{url: "https://example.com:443/", want: "example.com"},
		{url: "https://example.com:80/", want: "example.com:80"},
		{url: "http://example.com:443/", want: "example.com:443"},
		{url: "https://example.com:8443/", want: "example.com:8443"},
		{url: "https://[::1]:443/", want: "[::1]"},
		{url: "HTTP://WWW.Example.com/", want: "www.example.com"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HostKey(mustURL(t, tt.url)), tt.url)
	}
}
