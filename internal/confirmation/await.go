package confirmation

import (
	"context"

	"github.com/google/uuid"
)

// NewToken returns a fresh correlation token.
func NewToken() string {
	return uuid.NewString()
}

// Await publishes req and blocks until the matching response arrives or ctx
// is done. A token is generated when req has none. The response handler is
// registered before the request is published, so an approver that answers
// synchronously is never missed. req.Done is closed when Await returns.
//
// Errors:
//   - *RefusedError when the approver declined (the response is returned too)
//   - ErrNoApprover or *PublishError when the request could not be delivered
//   - ctx.Err() when ctx ends first
func (b *Bus) Await(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if req.CorrelationID == "" {
		req.CorrelationID = NewToken()
	}
	done := make(chan struct{})
	defer close(done)
	req.Done = done

	ch := make(chan Response, 1)
	sub := b.SubscribeResponseOnce(req.CorrelationID, func(r Response) {
		ch <- r
	})

	if err := b.Publish(req); err != nil {
		b.Unsubscribe(sub)
		return Response{}, err
	}

	select {
	case resp := <-ch:
		if !resp.Approved {
			return resp, &RefusedError{ToolName: req.ToolName, Reason: resp.Reason}
		}
		return resp, nil
	case <-ctx.Done():
		b.Unsubscribe(sub)
		return Response{}, ctx.Err()
	}
}
