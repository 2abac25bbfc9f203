package core

import (
	"errors"
	"fmt"
	"pagewidth/logger"
	"pagewidth/models"
	"sync"

	"github.com/google/uuid"
)

// ErrNotLoaded is returned by Hub.Send when nothing is listening under the
// id, e.g. a page that was opened before the listener was attached.
var ErrNotLoaded = errors.New("receiver not loaded")

// Receiver handles messages and must acknowledge before returning.
type Receiver interface {
	Receive(msg models.Message) models.Ack
}

// Hub routes notification messages to live receivers.
type Hub struct {
	mu        sync.RWMutex
	receivers map[string]Receiver
}

func NewHub() *Hub {
	return &Hub{receivers: make(map[string]Receiver)}
}

// Register attaches r under a new id.
func (h *Hub) Register(r Receiver) string {
	id := uuid.New().String()
	h.Attach(id, r)
	return id
}

// Attach attaches r under a caller-chosen id, replacing any previous receiver.
func (h *Hub) Attach(id string, r Receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.receivers[id] = r
}

// Unregister detaches the receiver under id. Unknown ids are ignored.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.receivers, id)
}

// Loaded reports whether a receiver is attached under id.
func (h *Hub) Loaded(id string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.receivers[id]
	return ok
}

// Send delivers msg and returns the receiver's acknowledgement.
func (h *Hub) Send(id string, msg models.Message) (models.Ack, error) {
	h.mu.RLock()
	r, ok := h.receivers[id]
	h.mu.RUnlock()
	if !ok {
		return models.Ack{}, fmt.Errorf("sending %q to %s: %w", msg.Action, id, ErrNotLoaded)
	}
	return r.Receive(msg), nil
}

// Update sends an update message to id. When nothing acknowledges, reload
// is called instead; the message itself is never retried.
func (h *Hub) Update(id string, reload func() error) (reloaded bool, err error) {
	ack, err := h.Send(id, models.Message{Action: models.ActionUpdate})
	if err == nil {
		logger.Debug("Hub: update for %s acknowledged (%q)", id, ack.Response)
		return false, nil
	}
	if !errors.Is(err, ErrNotLoaded) || reload == nil {
		return false, err
	}
	logger.Info("Hub: %s did not acknowledge update, reloading", id)
	if err := reload(); err != nil {
		return true, fmt.Errorf("reloading %s: %w", id, err)
	}
	return true, nil
}
