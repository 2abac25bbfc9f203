package handlers

import (
	"pagewidth/core"
)

// Handlers carries the services the API handlers work against.
type Handlers struct {
	engine          *core.Engine
	pages           *core.PageRegistry
	defaultViewport int
}

// New returns Handlers. defaultViewport is used by /evaluate when the request
// does not carry a viewport width.
func New(engine *core.Engine, pages *core.PageRegistry, defaultViewport int) *Handlers {
	return &Handlers{engine: engine, pages: pages, defaultViewport: defaultViewport}
}
