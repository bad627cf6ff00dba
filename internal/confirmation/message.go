package confirmation

import "encoding/json"

// Message is the interface for everything that travels on the bus.
// Consumers handle messages via type switch.
type Message interface {
	isMessage()
	// Token returns the correlation token pairing a request with its response.
	Token() string
}

// Request asks an approver to decide on a proposed tool call.
type Request struct {
	CorrelationID string
	CallID        string
	ToolName      string
	Args          json.RawMessage
	Description   string // e.g., "Running: rm -rf build"
	// Done is closed once the requester stops waiting. Await sets it.
	Done <-chan struct{}
}

func (Request) isMessage() {}
func (r Request) Token() string { return r.CorrelationID }

// Pending reports whether the requester is still waiting for an answer.
// A request without a Done channel is always pending.
func (r Request) Pending() bool {
	if r.Done == nil {
		return true
	}
	select {
	case <-r.Done:
		return false
	default:
		return true
	}
}

// Response is an approver's answer to a Request with the same token.
type Response struct {
	CorrelationID string
	Approved      bool
	Reason        string
}

func (Response) isMessage() {}
func (r Response) Token() string { return r.CorrelationID }

// Approve builds an approving response for req.
func Approve(req Request) Response {
	return Response{CorrelationID: req.CorrelationID, Approved: true}
}

// Refuse builds a refusing response for req. reason may be empty.
func Refuse(req Request, reason string) Response {
	return Response{CorrelationID: req.CorrelationID, Reason: reason}
}
