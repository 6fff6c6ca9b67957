// Package session implements the per-editing-surface navigation session:
// the content bridge to the live editor, the group navigation stack, and
// the debounced persistence path.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/starford/perthro/internal/apperr"
)

// ContentBridge is the asynchronous boundary to the live editor surface.
// Reading and writing the surface are both round trips; every navigation
// transition suspends at these two points.
type ContentBridge interface {
	// GetContent returns the surface's current full Markdown content.
	GetContent(ctx context.Context) (string, error)
	// SetContent replaces the surface's content wholesale.
	SetContent(ctx context.Context, content string) error
}

// BridgeRequest is one correlated request sent to the editor host. The host
// answers by calling Deliver with the same id.
type BridgeRequest struct {
	ID      string `json:"id"`
	Op      string `json:"op"` // "get" or "set"
	Content string `json:"content,omitempty"`
}

type bridgeReply struct {
	content string
	err     error
}

// ChannelBridge implements ContentBridge as an explicit request/response
// channel with request correlation. The host consumes Requests (typically
// forwarding them to the editor over SSE) and posts the editor's answers
// back through Deliver.
type ChannelBridge struct {
	requests chan BridgeRequest

	mu      sync.Mutex
	pending map[string]chan bridgeReply
	closed  bool
}

// NewChannelBridge creates a bridge whose request channel holds up to
// buffer undelivered requests.
func NewChannelBridge(buffer int) *ChannelBridge {
	if buffer <= 0 {
		buffer = 16
	}
	return &ChannelBridge{
		requests: make(chan BridgeRequest, buffer),
		pending:  make(map[string]chan bridgeReply),
	}
}

// Requests returns the channel the host consumes.
func (b *ChannelBridge) Requests() <-chan BridgeRequest { return b.requests }

// GetContent requests the surface's current content and waits for the
// correlated reply or context cancellation.
func (b *ChannelBridge) GetContent(ctx context.Context) (string, error) {
	return b.roundTrip(ctx, BridgeRequest{ID: uuid.NewString(), Op: "get"})
}

// SetContent asks the surface to replace its content and waits for the ack.
func (b *ChannelBridge) SetContent(ctx context.Context, content string) error {
	_, err := b.roundTrip(ctx, BridgeRequest{ID: uuid.NewString(), Op: "set", Content: content})
	return err
}

func (b *ChannelBridge) roundTrip(ctx context.Context, req BridgeRequest) (string, error) {
	reply := make(chan bridgeReply, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return "", apperr.ErrBridgeClosed
	}
	b.pending[req.ID] = reply
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.pending, req.ID)
		b.mu.Unlock()
	}()

	select {
	case b.requests <- req:
	case <-ctx.Done():
		return "", fmt.Errorf("bridge: send %s: %w", req.Op, ctx.Err())
	}

	select {
	case r := <-reply:
		return r.content, r.err
	case <-ctx.Done():
		return "", fmt.Errorf("bridge: await %s reply: %w", req.Op, ctx.Err())
	}
}

// Deliver posts the editor's answer for the request with the given id.
// It reports whether a request was waiting for it.
func (b *ChannelBridge) Deliver(id, content string, deliverErr error) bool {
	b.mu.Lock()
	reply, ok := b.pending[id]
	delete(b.pending, id)
	b.mu.Unlock()
	if !ok {
		return false
	}
	reply <- bridgeReply{content: content, err: deliverErr}
	return true
}

// Close fails all pending and future round trips with ErrBridgeClosed.
func (b *ChannelBridge) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, reply := range b.pending {
		reply <- bridgeReply{err: apperr.ErrBridgeClosed}
		delete(b.pending, id)
	}
}

// MemoryBridge is an in-process editor surface holding its content in
// memory. It backs tests and embedded (non-bridged) editors.
type MemoryBridge struct {
	mu      sync.Mutex
	content string
}

// NewMemoryBridge creates a surface preloaded with content.
func NewMemoryBridge(content string) *MemoryBridge {
	return &MemoryBridge{content: content}
}

func (b *MemoryBridge) GetContent(_ context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.content, nil
}

func (b *MemoryBridge) SetContent(_ context.Context, content string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.content = content
	return nil
}
