package core

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"pagewidth/logger"
	"pagewidth/models"
	"regexp"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNotApplicable is returned when a document's content type is not
	// text-like; nothing is resolved and the document is left untouched.
	ErrNotApplicable = errors.New("content type not applicable")
	ErrPageNotFound  = errors.New("page not found")
	ErrInvalidPage   = errors.New("invalid page")
)

var textContentType = regexp.MustCompile(`text/.*`)

// IsTextContent reports whether a document of contentType gets width handling.
func IsTextContent(contentType string) bool {
	return textContentType.MatchString(contentType)
}

// ParsePageURL parses an absolute page URL.
func ParsePageURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPage, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: url %q has no host", ErrInvalidPage, raw)
	}
	u.Host = HostKey(u)
	return u, nil
}

// Page is one live document with a managed style element. Every trigger
// (load, update message, resize, fullscreen change) re-derives the decision
// from scratch; the last completed cycle wins.
type Page struct {
	mu          sync.Mutex
	id          string
	u           *url.URL
	contentType string
	viewport    int
	fullscreen  bool
	reloads     int
	engine      *Engine
	sink        StyleSink
	last        models.Decision
}

// NewPage returns a page that writes its style through sink.
func NewPage(engine *Engine, u *url.URL, contentType string, viewportWidth int, sink StyleSink) *Page {
	return &Page{
		u:           u,
		contentType: contentType,
		viewport:    viewportWidth,
		engine:      engine,
		sink:        sink,
	}
}

// Apply runs one resolve, decide and apply cycle.
func (p *Page) Apply(ctx context.Context) (models.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applyLocked(ctx)
}

func (p *Page) applyLocked(ctx context.Context) (models.Decision, error) {
	if !IsTextContent(p.contentType) {
		return models.Decision{}, ErrNotApplicable
	}

	var d models.Decision
	var evalErr error
	if p.fullscreen {
		d = models.ClearDecision(models.ReasonFullscreen)
	} else {
		_, d, evalErr = p.engine.Evaluate(ctx, p.u, p.viewport)
		if evalErr != nil {
			logger.Error("Page %s: evaluation failed, clearing style: %v", p.id, evalErr)
			d = models.ClearDecision("")
		}
	}

	if err := ApplyDecision(p.sink, d); err != nil {
		return d, fmt.Errorf("applying style to page %s: %w", p.id, err)
	}
	p.last = d
	logger.Debug("Page %s: %s (%s) at viewport %d", p.id, d.Kind, d.Reason, p.viewport)
	return d, evalErr
}

// Receive handles a notification message. It always acknowledges so the
// sender knows the page is alive.
func (p *Page) Receive(msg models.Message) models.Ack {
	if msg.Action == models.ActionUpdate {
		if _, err := p.Apply(context.Background()); err != nil && !errors.Is(err, ErrNotApplicable) {
			logger.Error("Page %s: update failed: %v", p.id, err)
		}
	}
	return models.Ack{Response: models.AckRoger}
}

// Resize records a new viewport width and re-applies.
func (p *Page) Resize(ctx context.Context, viewportWidth int) (models.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.viewport = viewportWidth
	return p.applyLocked(ctx)
}

// SetFullscreen records a fullscreen change. Entering fullscreen clears the
// style; leaving it re-applies the user's settings.
func (p *Page) SetFullscreen(ctx context.Context, fullscreen bool) (models.Decision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fullscreen = fullscreen
	return p.applyLocked(ctx)
}

// LastDecision returns the decision applied by the most recent cycle.
func (p *Page) LastDecision() models.Decision {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// State snapshots the page for the API.
func (p *Page) State() models.PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := models.PageState{
		ID:            p.id,
		URL:           p.u.String(),
		ContentType:   p.contentType,
		ViewportWidth: p.viewport,
		Fullscreen:    p.fullscreen,
		Reloads:       p.reloads,
	}
	if ms, ok := p.sink.(*MemorySink); ok {
		st.CSS, st.StyleApplied = ms.CSS()
	} else {
		st.StyleApplied = !p.last.IsClear()
		st.CSS = p.last.CSS
	}
	return st
}

// PageRegistry owns the live page sessions and their hub listeners.
type PageRegistry struct {
	mu     sync.RWMutex
	pages  map[string]*Page
	hub    *Hub
	engine *Engine
}

func NewPageRegistry(engine *Engine, hub *Hub) *PageRegistry {
	return &PageRegistry{
		pages:  make(map[string]*Page),
		hub:    hub,
		engine: engine,
	}
}

// Hub returns the registry's notification hub.
func (r *PageRegistry) Hub() *Hub {
	return r.hub
}

// Open creates a page, attaches it to the hub and runs the initial cycle.
// An empty content type is treated as text/html.
func (r *PageRegistry) Open(ctx context.Context, req models.PageCreateRequest) (*Page, error) {
	u, err := ParsePageURL(req.URL)
	if err != nil {
		return nil, err
	}
	if req.ViewportWidth <= 0 {
		return nil, fmt.Errorf("%w: viewport width must be positive, got %d", ErrInvalidPage, req.ViewportWidth)
	}
	contentType := req.ContentType
	if contentType == "" {
		contentType = "text/html"
	}

	page := NewPage(r.engine, u, contentType, req.ViewportWidth, &MemorySink{})
	page.id = uuid.New().String()
	r.hub.Attach(page.id, page)

	r.mu.Lock()
	r.pages[page.id] = page
	r.mu.Unlock()

	if _, err := page.Apply(ctx); err != nil && !errors.Is(err, ErrNotApplicable) {
		logger.Error("PageRegistry: initial apply for %s failed: %v", page.id, err)
	}
	logger.Info("PageRegistry: opened page %s for %s", page.id, u.String())
	return page, nil
}

// Get returns the page registered under id.
func (r *PageRegistry) Get(id string) (*Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pages[id]
	return p, ok
}

// Close detaches and forgets the page under id.
func (r *PageRegistry) Close(id string) bool {
	r.mu.Lock()
	_, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()
	r.hub.Unregister(id)
	return ok
}

// Reload re-attaches the page's listener and runs a fresh cycle, the way a
// browser reload re-injects the page script.
func (r *PageRegistry) Reload(ctx context.Context, id string) error {
	page, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrPageNotFound, id)
	}
	page.mu.Lock()
	page.reloads++
	page.mu.Unlock()

	r.hub.Attach(id, page)
	if _, err := page.Apply(ctx); err != nil && !errors.Is(err, ErrNotApplicable) {
		return err
	}
	return nil
}

// Notify asks the page under id to re-evaluate, reloading it when its
// listener does not acknowledge.
func (r *PageRegistry) Notify(ctx context.Context, id string) (models.NotifyResponse, error) {
	reloaded, err := r.hub.Update(id, func() error { return r.Reload(ctx, id) })
	if err != nil {
		return models.NotifyResponse{Reloaded: reloaded}, err
	}
	return models.NotifyResponse{Delivered: !reloaded, Reloaded: reloaded}, nil
}

// NotifyAll sends an update to every open page, e.g. after settings change.
func (r *PageRegistry) NotifyAll(ctx context.Context) int {
	r.mu.RLock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	n := 0
	for _, id := range ids {
		if _, err := r.Notify(ctx, id); err != nil {
			logger.Error("PageRegistry: notifying %s failed: %v", id, err)
			continue
		}
		n++
	}
	return n
}
