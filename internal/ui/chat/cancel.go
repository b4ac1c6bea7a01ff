// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"
)

// =============================================================================
// CANCELLATION MANAGER
// =============================================================================

// cancelManager provides thread-safe access to the in-flight turn's cancel
// function. The submit goroutine registers a cancel func when a turn starts;
// the update loop may invoke it from a different goroutine when the user
// presses Escape.
type cancelManager struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// begin derives a cancellable context for a new turn and registers its cancel
// func, replacing any stale registration.
func (cm *cancelManager) begin(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	cm.mu.Lock()
	cm.cancel = cancel
	cm.mu.Unlock()
	return ctx
}

// abort cancels the in-flight turn, if any. Returns true if a turn was
// actually cancelled.
func (cm *cancelManager) abort() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel == nil {
		return false
	}
	cm.cancel()
	cm.cancel = nil
	return true
}

// clear drops the registration without cancelling. Called when a turn
// finishes on its own.
func (cm *cancelManager) clear() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel != nil {
		// Release the context's resources; the turn already settled.
		cm.cancel()
		cm.cancel = nil
	}
}

// active reports whether a cancel func is registered.
func (cm *cancelManager) active() bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	return cm.cancel != nil
}
