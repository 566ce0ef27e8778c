package messaging

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// MessagingError is a cross-context send failure, such as the receiving end
// not being attached yet. It is always caught at the call site; pushes that
// fail are dropped, never retried.
type MessagingError struct {
	Endpoint string
	Reason   string
}

func (e *MessagingError) Error() string {
	return fmt.Sprintf("could not establish connection to %s: %s", e.Endpoint, e.Reason)
}

// Handler processes a request inside an endpoint's own goroutine and returns
// a tagged response. Handlers never return errors; failures are responses.
type Handler func(req *Request) *Response

// Bus routes messages between execution contexts. Each attached endpoint
// runs a single goroutine, preserving the single-threaded event-loop
// semantics of a browser context: requests delivered to one endpoint are
// processed one at a time, but nothing orders sends across endpoints.
//
// Delivery is at most once. Send is an awaited round trip; Notify is
// fire-and-forget and swallows failures after logging them.
type Bus struct {
	mu        sync.RWMutex
	endpoints map[string]*endpoint
	logger    *zap.Logger
}

type endpoint struct {
	name    string
	handler Handler
	queue   chan delivery
	done    chan struct{}
}

type delivery struct {
	req   *Request
	reply chan *Response
}

// NewBus creates a bus. The logger doubles as the observability seam for
// dropped best-effort sends.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{
		endpoints: make(map[string]*endpoint),
		logger:    logger,
	}
}

// TabEndpoint names the content-script endpoint for a tab.
func TabEndpoint(tabID int) string {
	return fmt.Sprintf("tab:%d", tabID)
}

// Attach registers an endpoint and starts its event loop. Attaching a name
// twice replaces the previous endpoint, mirroring a page reload re-injecting
// its script.
func (b *Bus) Attach(name string, handler Handler) {
	ep := &endpoint{
		name:    name,
		handler: handler,
		queue:   make(chan delivery, 16),
		done:    make(chan struct{}),
	}
	go ep.run()

	b.mu.Lock()
	if old, ok := b.endpoints[name]; ok {
		close(old.done)
	}
	b.endpoints[name] = ep
	b.mu.Unlock()
}

// Detach removes an endpoint and stops its loop. In-flight sends to the
// endpoint fail with a MessagingError.
func (b *Bus) Detach(name string) {
	b.mu.Lock()
	ep, ok := b.endpoints[name]
	if ok {
		delete(b.endpoints, name)
	}
	b.mu.Unlock()
	if ok {
		close(ep.done)
	}
}

func (ep *endpoint) run() {
	for {
		select {
		case d := <-ep.queue:
			resp := ep.handler(d.req)
			select {
			case d.reply <- resp:
			case <-ep.done:
				return
			}
		case <-ep.done:
			return
		}
	}
}

// Send delivers a request to an endpoint and awaits its response. It fails
// with a *MessagingError when the endpoint is not attached or goes away
// before responding, and with the context error on cancellation.
func (b *Bus) Send(ctx context.Context, name string, req *Request) (*Response, error) {
	b.mu.RLock()
	ep, ok := b.endpoints[name]
	b.mu.RUnlock()
	if !ok {
		return nil, &MessagingError{Endpoint: name, Reason: "receiving end does not exist"}
	}

	d := delivery{req: req, reply: make(chan *Response, 1)}
	select {
	case ep.queue <- d:
	case <-ep.done:
		return nil, &MessagingError{Endpoint: name, Reason: "receiving end closed"}
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case resp := <-d.reply:
		return resp, nil
	case <-ep.done:
		return nil, &MessagingError{Endpoint: name, Reason: "receiving end closed"}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Notify delivers a request best-effort: the send happens asynchronously,
// the response is discarded, and failures are logged and dropped. This is
// intentionally at-most-once; callers must not depend on delivery.
func (b *Bus) Notify(name string, req *Request) {
	go func() {
		if _, err := b.Send(context.Background(), name, req); err != nil {
			b.logger.Debug("best-effort message dropped",
				zap.String("endpoint", name),
				zap.String("action", string(req.Action)),
				zap.String("request_id", req.ID.String()),
				zap.Error(err))
		}
	}()
}
