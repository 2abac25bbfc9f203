package core

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"pagewidth/models"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

var errStoreDown = errors.New("store down")

// memStore is an in-memory Store. When failGet is set every Get fails.
type memStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
	gets    [][]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, keys []string) (map[string][]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = append(s.gets, append([]string(nil), keys...))
	if s.failGet {
		return nil, errStoreDown
	}
	out := make(map[string][]byte)
	for _, k := range keys {
		if v, ok := s.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (s *memStore) Set(_ context.Context, records map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range records {
		s.data[k] = v
	}
	return nil
}

func (s *memStore) Remove(_ context.Context, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func (s *memStore) put(t *testing.T, key string, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	s.data[key] = raw
}

func (s *memStore) putRaw(key, raw string) {
	s.data[key] = []byte(raw)
}

func (s *memStore) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	return ok
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func activeGlobal(width int, method models.Method) models.GlobalSettings {
	return models.GlobalSettings{Activated: true, Width: width, Method: method}
}

func strPtr(s string) *string { return &s }

func staticCatalog(entries ...models.CatalogEntry) Catalog {
	return CatalogFunc(func(string, int) []models.CatalogEntry { return entries })
}
