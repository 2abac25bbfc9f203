package models

// ActionUpdate is the only message action pages act on.
const ActionUpdate = "update"

// AckRoger is the acknowledgement a loaded page sends for every message.
const AckRoger = "roger"

// Message is delivered to a live page through the notification hub.
type Message struct {
	Action string `json:"action" example:"update"`
}

// Ack is the synchronous reply to a Message.
type Ack struct {
	Response string `json:"response" example:"roger"`
}

// EvaluateRequest asks for a one-off decision without opening a page session.
type EvaluateRequest struct {
	URL           string `json:"url" example:"https://example.com/blog/post1" binding:"required"`
	ViewportWidth int    `json:"viewport_width" example:"1600" binding:"required"`
	ContentType   string `json:"content_type,omitempty" example:"text/html"`
}

// EvaluateResponse carries the effective settings and the decision.
// Skipped is true when the content type is not text-like and nothing ran.
type EvaluateResponse struct {
	Effective *EffectiveSettings `json:"effective,omitempty"`
	Decision  *Decision          `json:"decision,omitempty"`
	Skipped   bool               `json:"skipped"`
}

// PageCreateRequest opens a live page session.
type PageCreateRequest struct {
	URL           string `json:"url" example:"https://example.com/blog/post1" binding:"required"`
	ViewportWidth int    `json:"viewport_width" example:"1600" binding:"required"`
	ContentType   string `json:"content_type,omitempty" example:"text/html"`
}

// PageState is the observable state of a page session.
type PageState struct {
	ID            string `json:"id" example:"5b0c8e0e-8a3f-4c1e-9d53-0f7f3f0f2a11"`
	URL           string `json:"url" example:"https://example.com/blog/post1"`
	ContentType   string `json:"content_type" example:"text/html"`
	ViewportWidth int    `json:"viewport_width" example:"1600"`
	Fullscreen    bool   `json:"fullscreen"`
	StyleApplied  bool   `json:"style_applied"`
	CSS           string `json:"css,omitempty"`
	Reloads       int    `json:"reloads"`
}

// ResizeRequest reports a new viewport width for a page.
type ResizeRequest struct {
	ViewportWidth int `json:"viewport_width" example:"1280" binding:"required"`
}

// FullscreenRequest reports a fullscreen change for a page.
type FullscreenRequest struct {
	Fullscreen bool `json:"fullscreen"`
}

// NotifyResponse reports how an update notification was delivered.
type NotifyResponse struct {
	Delivered bool `json:"delivered"`
	Reloaded  bool `json:"reloaded"`
}
