package dispatch

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/i474232898/weather-bulletin/internal/logging"
)

// Transport delivers a message to one recipient. Bodies and captions carry inline HTML bold markup.
type Transport interface {
	SendText(ctx context.Context, recipient, body string) error
	SendPhoto(ctx context.Context, recipient, imageRef, caption string) error
}

// Mode is how a batch was delivered.
type Mode string

const (
	ModeText  Mode = "text"
	ModePhoto Mode = "photo"
)

// DeliveryResult is the outcome for one recipient.
type DeliveryResult struct {
	Recipient string    `json:"recipient"`
	Mode      Mode      `json:"mode"`
	At        time.Time `json:"at"`
	Err       error     `json:"-"`
	Error     string    `json:"error,omitempty"`
}

// Delivered reports whether the recipient got the message.
func (r DeliveryResult) Delivered() bool {
	return r.Err == nil
}

// Dispatcher sends one report to many recipients sequentially, pausing a fixed interval between sends.
type Dispatcher struct {
	transport Transport
	pause     time.Duration
	now       func() time.Time
}

// New creates a Dispatcher. A zero pause disables pacing.
func New(transport Transport, pause time.Duration) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		pause:     pause,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Dispatch delivers body to every recipient. A non-empty imageRef sends the whole batch as
// captioned photos. Failures are recorded and never stop the loop; cancelling ctx marks the
// remaining recipients as failed.
func (d *Dispatcher) Dispatch(ctx context.Context, body string, recipients []string, imageRef string) []DeliveryResult {
	mode := ModeText
	if imageRef != "" {
		mode = ModePhoto
	}

	limit := rate.Inf
	if d.pause > 0 {
		limit = rate.Every(d.pause)
	}
	limiter := rate.NewLimiter(limit, 1)

	results := make([]DeliveryResult, 0, len(recipients))
	for _, recipient := range recipients {
		res := DeliveryResult{Recipient: recipient, Mode: mode}

		if err := limiter.Wait(ctx); err != nil {
			res.Err = err
		} else if mode == ModePhoto {
			res.Err = d.transport.SendPhoto(ctx, recipient, imageRef, body)
		} else {
			res.Err = d.transport.SendText(ctx, recipient, body)
		}

		res.At = d.now()
		if res.Err != nil {
			res.Error = res.Err.Error()
			logging.Errorw("delivery failed", "recipient", recipient, "mode", string(mode), "error", res.Err)
		}
		results = append(results, res)
	}
	return results
}

// Failed counts the recipients that did not get the message.
func Failed(results []DeliveryResult) int {
	n := 0
	for _, r := range results {
		if !r.Delivered() {
			n++
		}
	}
	return n
}
