package dispatch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	recipient, image, body string
	at                     time.Time
}

type fakeTransport struct {
	mu    sync.Mutex
	calls []call
	fail  map[string]error
}

func (f *fakeTransport) record(recipient, image, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{recipient: recipient, image: image, body: body, at: time.Now()})
	return f.fail[recipient]
}

func (f *fakeTransport) SendText(_ context.Context, recipient, body string) error {
	return f.record(recipient, "", body)
}

func (f *fakeTransport) SendPhoto(_ context.Context, recipient, imageRef, caption string) error {
	return f.record(recipient, imageRef, caption)
}

func TestDispatchContinuesAfterFailure(t *testing.T) {
	tr := &fakeTransport{fail: map[string]error{"2": errors.New("chat not found")}}
	d := New(tr, 20*time.Millisecond)

	results := d.Dispatch(context.Background(), "<b>hi</b>", []string{"1", "2", "3"}, "")
	require.Len(t, results, 3)
	require.Len(t, tr.calls, 3)

	assert.True(t, results[0].Delivered())
	assert.False(t, results[1].Delivered())
	assert.Equal(t, "chat not found", results[1].Error)
	assert.True(t, results[2].Delivered())
	assert.Equal(t, 1, Failed(results))

	for i, c := range tr.calls {
		assert.Equal(t, results[i].Recipient, c.recipient)
		assert.Equal(t, "<b>hi</b>", c.body)
		assert.Equal(t, ModeText, results[i].Mode)
	}
	// Sends are spaced by the pause.
	assert.GreaterOrEqual(t, tr.calls[2].at.Sub(tr.calls[0].at), 30*time.Millisecond)
}

func TestDispatchPhotoBatch(t *testing.T) {
	tr := &fakeTransport{}
	results := New(tr, 0).Dispatch(context.Background(), "caption", []string{"a", "b"}, "https://example.com/x.jpg")

	require.Len(t, tr.calls, 2)
	for i, c := range tr.calls {
		assert.Equal(t, "https://example.com/x.jpg", c.image)
		assert.Equal(t, "caption", c.body)
		assert.Equal(t, ModePhoto, results[i].Mode)
	}
	assert.Zero(t, Failed(results))
}

func TestDispatchCancelledContext(t *testing.T) {
	tr := &fakeTransport{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := New(tr, time.Hour).Dispatch(ctx, "x", []string{"a", "b"}, "")
	assert.Equal(t, 2, Failed(results))
	assert.Empty(t, tr.calls)
}

func TestDispatchNoRecipients(t *testing.T) {
	assert.Empty(t, New(&fakeTransport{}, 0).Dispatch(context.Background(), "x", nil, ""))
}
