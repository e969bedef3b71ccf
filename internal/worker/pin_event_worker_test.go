package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinmap/internal/model"
)

type countingWarmer struct {
	calls int
	err   error
}

func (w *countingWarmer) WarmCache(context.Context) error {
	w.calls++
	return w.err
}

func encode(t *testing.T, event model.Event) []byte {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return raw
}

func TestHandle_PinCreatedWarmsCache(t *testing.T) {
	warmer := &countingWarmer{}
	w := NewPinEventWorker(nil, warmer, "pins")

	err := w.handle(context.Background(), encode(t, model.Event{
		Type: model.EventPinCreated,
		Pin:  &model.Pin{ID: "p-1", Username: "alice"},
	}))
	require.NoError(t, err)
	assert.Equal(t, 1, warmer.calls)
}

func TestHandle_UserRegisteredIsIgnored(t *testing.T) {
	warmer := &countingWarmer{}
	w := NewPinEventWorker(nil, warmer, "pins")

	err := w.handle(context.Background(), encode(t, model.Event{
		Type: model.EventUserRegistered,
		User: &model.UserPublicView{ID: "u-1", Username: "alice"},
	}))
	require.NoError(t, err)
	assert.Zero(t, warmer.calls)
}

func TestHandle_Malformed(t *testing.T) {
	w := NewPinEventWorker(nil, &countingWarmer{}, "pins")

	err := w.handle(context.Background(), []byte("{oops"))
	assert.ErrorIs(t, err, errMalformedEvent)

	err = w.handle(context.Background(), encode(t, model.Event{Type: model.EventPinCreated}))
	assert.ErrorIs(t, err, errMalformedEvent)
}

func TestHandle_WarmFailureIsRetryable(t *testing.T) {
	w := NewPinEventWorker(nil, &countingWarmer{err: errors.New("redis down")}, "pins")

	err := w.handle(context.Background(), encode(t, model.Event{
		Type: model.EventPinCreated,
		Pin:  &model.Pin{ID: "p-1"},
	}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errMalformedEvent)
}

func TestClose_WithoutStart(t *testing.T) {
	w := NewPinEventWorker(nil, &countingWarmer{}, "pins")
	w.Close()
}
