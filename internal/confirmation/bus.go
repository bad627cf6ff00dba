// Package confirmation implements the rendezvous between code that needs a
// tool call approved and whoever approves it (a terminal prompt, an automatic
// approver, a guardian model).
package confirmation

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// Subscription identifies a registered handler. The zero value is not a
// valid subscription and unsubscribing it is a no-op.
type Subscription struct {
	id uint64
}

type requestHandler struct {
	id uint64
	fn func(Request)
}

type responseHandler struct {
	id uint64
	fn func(Response)
}

// Bus is a typed publish/subscribe channel for confirmation messages.
// Handlers run synchronously on the publishing goroutine, in subscription
// order, without the bus lock held, so a handler may publish or unsubscribe.
// Handlers that block should hand the message off to their own goroutine.
type Bus struct {
	mu        sync.Mutex
	nextID    uint64
	requests  []requestHandler
	responses []responseHandler
	logger    *slog.Logger
}

// NewBus creates an empty bus. logger may be nil.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{logger: logger}
}

// SubscribeRequests registers an approver.
func (b *Bus) SubscribeRequests(fn func(Request)) Subscription {
	if fn == nil {
		panic("confirmation: nil request handler")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.requests = append(b.requests, requestHandler{id: b.nextID, fn: fn})
	return Subscription{id: b.nextID}
}

// SubscribeResponses registers fn for every published response.
func (b *Bus) SubscribeResponses(fn func(Response)) Subscription {
	if fn == nil {
		panic("confirmation: nil response handler")
	}
	sub := b.reserve()
	b.addResponseHandler(sub, fn)
	return sub
}

// SubscribeResponseOnce registers fn for the first response carrying token.
// The handler removes itself before fn runs, so later responses with the
// same token are ignored.
func (b *Bus) SubscribeResponseOnce(token string, fn func(Response)) Subscription {
	if fn == nil {
		panic("confirmation: nil response handler")
	}
	sub := b.reserve()
	var once sync.Once
	b.addResponseHandler(sub, func(r Response) {
		if r.CorrelationID != token {
			return
		}
		once.Do(func() {
			b.Unsubscribe(sub)
			fn(r)
		})
	})
	return sub
}

// Unsubscribe removes the handler registered under sub. Unknown or
// already-removed subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = slices.DeleteFunc(b.requests, func(h requestHandler) bool { return h.id == sub.id })
	b.responses = slices.DeleteFunc(b.responses, func(h responseHandler) bool { return h.id == sub.id })
}

// Publish delivers msg to the matching handlers.
// Publishing a Request with no request subscribers returns ErrNoApprover.
// A request handler that panics is reported as a *PublishError.
func (b *Bus) Publish(msg Message) error {
	switch m := msg.(type) {
	case Request:
		return b.publishRequest(m)
	case Response:
		b.publishResponse(m)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMessage, msg)
	}
}

// Subscribers reports how many request and response handlers are registered.
func (b *Bus) Subscribers() (requests, responses int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests), len(b.responses)
}

func (b *Bus) publishRequest(req Request) (err error) {
	b.mu.Lock()
	handlers := slices.Clone(b.requests)
	b.mu.Unlock()

	if len(handlers) == 0 {
		b.logger.Warn("confirmation request has no approver", "tool", req.ToolName, "token", req.CorrelationID)
		return ErrNoApprover
	}

	b.logger.Debug("confirmation requested", "tool", req.ToolName, "token", req.CorrelationID)
	defer func() {
		if r := recover(); r != nil {
			err = &PublishError{Token: req.CorrelationID, Cause: fmt.Errorf("request handler panicked: %v", r)}
		}
	}()
	for _, h := range handlers {
		h.fn(req)
	}
	return nil
}

func (b *Bus) publishResponse(resp Response) {
	b.mu.Lock()
	handlers := slices.Clone(b.responses)
	b.mu.Unlock()

	b.logger.Debug("confirmation answered", "token", resp.CorrelationID, "approved", resp.Approved)
	for _, h := range handlers {
		h.fn(resp)
	}
}

func (b *Bus) reserve() Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	return Subscription{id: b.nextID}
}

func (b *Bus) addResponseHandler(sub Subscription, fn func(Response)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responses = append(b.responses, responseHandler{id: sub.id, fn: fn})
}
