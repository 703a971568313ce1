// Package abort issues cancellation tokens for in-flight renderer requests.
//
// A Manager hands out one live Token at a time. Beginning a new operation
// aborts the previous token, which cancels its context (so the HTTP transfer
// stops) and flips the flag that continuations poll before applying a result.
package abort

import (
	"context"
	"sync/atomic"
)

// Token marks one asynchronous operation. Once aborted it never becomes live again.
type Token struct {
	id      uint64
	ctx     context.Context
	cancel  context.CancelFunc
	aborted atomic.Bool
}

// ID is unique per Manager and increases with every Begin.
func (t *Token) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Context is cancelled when the token is aborted.
func (t *Token) Context() context.Context {
	return t.ctx
}

// Aborted reports whether the token has been superseded or cancelled.
// A nil token counts as aborted.
func (t *Token) Aborted() bool {
	if t == nil {
		return true
	}
	return t.aborted.Load()
}

// Abort is idempotent.
func (t *Token) Abort() {
	if t == nil {
		return
	}
	if t.aborted.CompareAndSwap(false, true) {
		t.cancel()
	}
}

// Manager guarantees at most one unaborted token.
type Manager struct {
	parent  context.Context
	current *Token
	nextID  uint64
}

// NewManager creates a manager whose tokens derive from parent.
func NewManager(parent context.Context) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{parent: parent}
}

// Begin aborts the current token, if any, and returns a fresh one.
func (m *Manager) Begin() *Token {
	if m.current != nil {
		m.current.Abort()
	}
	m.nextID++
	ctx, cancel := context.WithCancel(m.parent)
	m.current = &Token{id: m.nextID, ctx: ctx, cancel: cancel}
	return m.current
}

// Current returns the most recently issued token, which may already be aborted.
func (m *Manager) Current() *Token {
	return m.current
}

// IsCurrent reports whether t is the latest token and still live.
func (m *Manager) IsCurrent(t *Token) bool {
	return t != nil && t == m.current && !t.Aborted()
}

// Close aborts the live token. Begin may still be called afterwards.
func (m *Manager) Close() {
	if m.current != nil {
		m.current.Abort()
	}
}
