package socket

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/gamelink/rtapi"
)

// subscription is one registered push callback.
type subscription struct {
	handle  uuid.UUID
	class   rtapi.MessageClass
	fn      func(*rtapi.Envelope)
	removed atomic.Bool
}

// registry routes pushed envelopes to subscribed callbacks.
//
// Callbacks for one class run in subscription order. Unsubscribing during a
// dispatch marks the entry; it is compacted after the dispatch finishes, so
// a callback can safely remove itself or its neighbours. A panicking callback
// is logged and does not disturb the remaining callbacks.
type registry struct {
	mu          sync.Mutex
	classes     map[rtapi.MessageClass][]*subscription
	byHandle    map[uuid.UUID]*subscription
	dispatching bool
	dirty       []rtapi.MessageClass
	logger      *zap.Logger
}

func newRegistry(logger *zap.Logger) *registry {
	return &registry{
		classes:  make(map[rtapi.MessageClass][]*subscription),
		byHandle: make(map[uuid.UUID]*subscription),
		logger:   logger,
	}
}

// subscribe registers a callback for a message class and returns its handle.
func (r *registry) subscribe(class rtapi.MessageClass, fn func(*rtapi.Envelope)) uuid.UUID {
	sub := &subscription{
		handle: uuid.New(),
		class:  class,
		fn:     fn,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[class] = append(r.classes[class], sub)
	r.byHandle[sub.handle] = sub
	return sub.handle
}

// unsubscribe removes a callback. Removal during a dispatch is deferred
// until the dispatch completes.
func (r *registry) unsubscribe(handle uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.byHandle[handle]
	if !ok {
		return
	}
	sub.removed.Store(true)
	delete(r.byHandle, handle)
	if r.dispatching {
		r.dirty = append(r.dirty, sub.class)
		return
	}
	r.compactLocked(sub.class)
}

func (r *registry) compactLocked(class rtapi.MessageClass) {
	subs := r.classes[class]
	kept := subs[:0]
	for _, sub := range subs {
		if !sub.removed.Load() {
			kept = append(kept, sub)
		}
	}
	if len(kept) == 0 {
		delete(r.classes, class)
		return
	}
	r.classes[class] = kept
}

// dispatch delivers one pushed envelope to every live subscription of its
// class, in subscription order. Callbacks run without the registry lock, so
// they may subscribe and unsubscribe freely.
func (r *registry) dispatch(env *rtapi.Envelope) {
	class := env.Class()

	r.mu.Lock()
	subs := make([]*subscription, len(r.classes[class]))
	copy(subs, r.classes[class])
	r.dispatching = true
	r.mu.Unlock()

	if len(subs) == 0 {
		r.logger.Debug("dropping push with no subscribers", zap.Stringer("class", class))
	}
	for _, sub := range subs {
		if sub.removed.Load() {
			continue
		}
		r.invoke(sub, env)
	}

	r.mu.Lock()
	r.dispatching = false
	for _, dirty := range r.dirty {
		r.compactLocked(dirty)
	}
	r.dirty = r.dirty[:0]
	r.mu.Unlock()
}

func (r *registry) invoke(sub *subscription, env *rtapi.Envelope) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("push callback panicked",
				zap.Stringer("class", sub.class),
				zap.String("handle", sub.handle.String()),
				zap.Any("panic", rec),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	sub.fn(env)
}
