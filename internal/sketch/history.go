package sketch

import "sync"

// History is the linear list of committed drawables plus the redo stack.
// It is safe for concurrent use; listeners run after the lock is released.
// While notifications are held they are collected and fire once on release.
type History struct {
	mu        sync.RWMutex
	committed []Drawable
	redo      []Drawable

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
	held        int
	pending     bool
}

// NewHistory returns an empty history.
func NewHistory() *History {
	return &History{}
}

// Subscribe registers fn to run after every content change. The returned
// function removes it.
func (h *History) Subscribe(fn func()) (unsubscribe func()) {
	h.listenersMu.Lock()
	if h.listeners == nil {
		h.listeners = make(map[int]func())
	}
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.listenersMu.Unlock()
	return func() {
		h.listenersMu.Lock()
		delete(h.listeners, id)
		h.listenersMu.Unlock()
	}
}

// hold defers notifications until the matching release.
func (h *History) hold() {
	h.listenersMu.Lock()
	h.held++
	h.listenersMu.Unlock()
}

// release ends a hold and delivers one notification if anything changed
// while it was in effect.
func (h *History) release() {
	h.listenersMu.Lock()
	h.held--
	fire := h.held == 0 && h.pending
	if fire {
		h.pending = false
	}
	h.listenersMu.Unlock()
	if fire {
		h.notify()
	}
}

func (h *History) notify() {
	h.listenersMu.Lock()
	if h.held > 0 {
		h.pending = true
		h.listenersMu.Unlock()
		return
	}
	fns := make([]func(), 0, len(h.listeners))
	for _, fn := range h.listeners {
		fns = append(fns, fn)
	}
	h.listenersMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Commit appends d and discards the redo stack.
func (h *History) Commit(d Drawable) {
	if d == nil {
		return
	}
	h.mu.Lock()
	h.committed = append(h.committed, d)
	h.redo = nil
	h.mu.Unlock()
	h.notify()
}

// Undo moves the newest committed drawable onto the redo stack. It reports
// false and does nothing when there is nothing to undo.
func (h *History) Undo() bool {
	h.mu.Lock()
	n := len(h.committed)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	d := h.committed[n-1]
	h.committed[n-1] = nil
	h.committed = h.committed[:n-1]
	h.redo = append(h.redo, d)
	h.mu.Unlock()
	h.notify()
	return true
}

// Redo moves the top of the redo stack back onto the committed list.
func (h *History) Redo() bool {
	h.mu.Lock()
	n := len(h.redo)
	if n == 0 {
		h.mu.Unlock()
		return false
	}
	d := h.redo[n-1]
	h.redo[n-1] = nil
	h.redo = h.redo[:n-1]
	h.committed = append(h.committed, d)
	h.mu.Unlock()
	h.notify()
	return true
}

// Clear empties both lists. It always notifies.
func (h *History) Clear() {
	h.mu.Lock()
	h.committed = nil
	h.redo = nil
	h.mu.Unlock()
	h.notify()
}

// Snapshot returns a copy of the committed list, oldest first.
func (h *History) Snapshot() []Drawable {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Drawable, len(h.committed))
	copy(out, h.committed)
	return out
}

// RedoSnapshot returns a copy of the redo stack, bottom first.
func (h *History) RedoSnapshot() []Drawable {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Drawable, len(h.redo))
	copy(out, h.redo)
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.committed)
}

func (h *History) RedoLen() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.redo)
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool { return h.Len() > 0 }

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool { return h.RedoLen() > 0 }
