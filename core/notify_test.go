package core

import (
	"errors"
	"pagewidth/models"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingReceiver struct {
	got []models.Message
}

func (r *countingReceiver) Receive(msg models.Message) models.Ack {
	r.got = append(r.got, msg)
	return models.Ack{Response: models.AckRoger}
}

func TestHubSend(t *testing.T) {
	hub := NewHub()
	r := &countingReceiver{}
	id := hub.Register(r)
	require.NotEmpty(t, id)
	assert.True(t, hub.Loaded(id))

	ack, err := hub.Send(id, models.Message{Action: models.ActionUpdate})
	require.NoError(t, err)
	assert.Equal(t, models.AckRoger, ack.Response)
	assert.Len(t, r.got, 1)

	hub.Unregister(id)
	assert.False(t, hub.Loaded(id))
	_, err = hub.Send(id, models.Message{Action: models.ActionUpdate})
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestHubRegisterIssuesDistinctIDs(t *testing.T) {
	hub := NewHub()
	a := hub.Register(&countingReceiver{})
	b := hub.Register(&countingReceiver{})
	assert.NotEqual(t, a, b)
}

func TestHubUpdate(t *testing.T) {
	t.Run("delivered without reload", func(t *testing.T) {
		hub := NewHub()
		r := &countingReceiver{}
		id := hub.Register(r)
		reloads := 0

		reloaded, err := hub.Update(id, func() error { reloads++; return nil })
		require.NoError(t, err)
		assert.False(t, reloaded)
		assert.Zero(t, reloads)
		assert.Equal(t, []models.Message{{Action: models.ActionUpdate}}, r.got)
	})

	t.Run("reloads an unloaded target once", func(t *testing.T) {
		hub := NewHub()
		reloads := 0

		reloaded, err := hub.Update("missing", func() error { reloads++; return nil })
		require.NoError(t, err)
		assert.True(t, reloaded)
		assert.Equal(t, 1, reloads)
	})

	t.Run("reload failure is wrapped", func(t *testing.T) {
		hub := NewHub()
		boom := errors.New("boom")

		reloaded, err := hub.Update("missing", func() error { return boom })
		assert.True(t, reloaded)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no reload func", func(t *testing.T) {
		reloaded, err := NewHub().Update("missing", nil)
		assert.False(t, reloaded)
		assert.ErrorIs(t, err, ErrNotLoaded)
	})
}
