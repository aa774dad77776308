// Package socket implements the realtime channel: a correlated
// request/response engine and push dispatcher over a frame transport.
//
// All inbound processing happens inside Tick. The owner drives Tick from a
// pump goroutine or from its own main loop; callbacks and request
// resolutions only ever run on the ticking goroutine. Requests may be issued
// and awaited from any goroutine.
package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/config"
	"github.com/cory-johannsen/gamelink/rtapi"
	"github.com/cory-johannsen/gamelink/session"
)

type outcome struct {
	env *rtapi.Envelope
	err error
}

// Call is one in-flight correlated request or connect attempt. A Call
// completes exactly once, during some Tick, and may be awaited or polled
// from any number of goroutines.
type Call struct {
	cid  string
	done chan struct{}

	mu       sync.Mutex
	resolved bool
	result   outcome
}

func newCall(cid string) *Call {
	return &Call{cid: cid, done: make(chan struct{})}
}

// resolve completes the call. Later resolutions are dropped.
func (c *Call) resolve(env *rtapi.Envelope, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return
	}
	c.resolved = true
	c.result = outcome{env: env, err: err}
	close(c.done)
}

// Wait blocks until the call completes or ctx ends. Abandoning a Call does
// not cancel the request; a response arriving after the engine's timeout
// sweep removed it is discarded.
func (c *Call) Wait(ctx context.Context) (*rtapi.Envelope, error) {
	select {
	case <-c.done:
		return c.Result()
	case <-ctx.Done():
		return nil, gamelink.NewError(gamelink.KindTimeout, "abandoned waiting for response", ctx.Err())
	}
}

// Poll reports whether the call has completed, without blocking. Use Result
// to read the outcome once Poll returns true.
func (c *Call) Poll() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Result returns the outcome of a completed call.
//
// Precondition: Poll returned true or Wait returned.
func (c *Call) Result() (*rtapi.Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result.env, c.result.err
}

type pendingCall struct {
	call      *Call
	ticksLeft int
}

type lifecycleSub struct {
	handle uuid.UUID
	fn     func(error)
}

// Socket is the realtime channel over one Adapter. It is safe for
// concurrent use; see the package comment for the threading model.
type Socket struct {
	adapter Adapter
	cfg     config.SocketConfig
	host    string
	logger  *zap.Logger

	mu          sync.Mutex
	state       State
	nextCid     uint64
	pending     map[string]*pendingCall
	waiters     []*Call
	onConnected []lifecycleSub
	onClosed    []lifecycleSub

	registry *registry

	ticking atomic.Bool
}

// New builds a Socket over the given adapter. The host is the server name
// used when the socket configuration does not override it.
//
// Precondition: cfg must have passed config.Validate.
func New(adapter Adapter, cfg config.SocketConfig, host string, logger *zap.Logger) *Socket {
	log := logger.Named("socket")
	return &Socket{
		adapter:  adapter,
		cfg:      cfg,
		host:     host,
		logger:   log,
		state:    Disconnected,
		pending:  make(map[string]*pendingCall),
		registry: newRegistry(log.Named("push")),
	}
}

// State returns the current lifecycle state.
func (s *Socket) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Connect starts connecting with the session's token. The returned Call
// completes during a Tick: successfully once the transport is established,
// or with a transport error if the dial fails.
//
// Precondition: the socket must be Disconnected.
func (s *Socket) Connect(ctx context.Context, sess *session.Session, appearOnline bool) (*Call, error) {
	s.mu.Lock()
	if !canTransition(s.state, Connecting) {
		state := s.state
		s.mu.Unlock()
		return nil, gamelink.NewError(gamelink.KindInternal, fmt.Sprintf("connect in state %s", state), nil)
	}
	s.state = Connecting
	call := newCall("")
	s.waiters = append(s.waiters, call)
	s.mu.Unlock()

	url := fmt.Sprintf("%s?lang=en&status=%t&token=%s", s.cfg.URL(s.host), appearOnline, sess.AuthToken())
	s.logger.Info("connecting", zap.String("host", s.host))

	if err := s.adapter.Connect(ctx, url); err != nil {
		wrapped := gamelink.NewError(gamelink.KindTransport, fmt.Sprintf("starting dial: %v", err), err)
		s.mu.Lock()
		s.state = Disconnected
		s.waiters = nil
		s.mu.Unlock()
		call.resolve(nil, wrapped)
		return nil, wrapped
	}
	return call, nil
}

// Close requests a deliberate shutdown. The transition to Disconnected, and
// the failure of any in-flight requests, surface in a later Tick.
func (s *Socket) Close() error {
	s.mu.Lock()
	if s.state == Disconnected || s.state == Closing {
		s.mu.Unlock()
		return nil
	}
	s.state = Closing
	s.mu.Unlock()
	s.logger.Info("closing")
	return s.adapter.Close()
}

// OnConnected registers a callback for the moment the socket becomes
// Connected. Runs during Tick.
func (s *Socket) OnConnected(fn func()) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := lifecycleSub{handle: uuid.New(), fn: func(error) { fn() }}
	s.onConnected = append(s.onConnected, sub)
	return sub.handle
}

// OnClosed registers a callback for the moment the socket becomes
// Disconnected. The error is nil after a deliberate close. Runs during Tick.
func (s *Socket) OnClosed(fn func(error)) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := lifecycleSub{handle: uuid.New(), fn: fn}
	s.onClosed = append(s.onClosed, sub)
	return sub.handle
}

// Subscribe registers a push callback for one message class. Subscriptions
// survive disconnects and reconnects until unsubscribed.
func (s *Socket) Subscribe(class rtapi.MessageClass, fn func(*rtapi.Envelope)) uuid.UUID {
	return s.registry.subscribe(class, fn)
}

// Unsubscribe removes a push or lifecycle callback by handle.
func (s *Socket) Unsubscribe(handle uuid.UUID) {
	s.registry.unsubscribe(handle)
	s.mu.Lock()
	s.onConnected = removeLifecycleSub(s.onConnected, handle)
	s.onClosed = removeLifecycleSub(s.onClosed, handle)
	s.mu.Unlock()
}

func removeLifecycleSub(subs []lifecycleSub, handle uuid.UUID) []lifecycleSub {
	for i, sub := range subs {
		if sub.handle == handle {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}

// Tick drains the adapter's event queue, dispatching responses and pushes,
// then expires stale requests. Every callback and Call resolution happens
// here. Tick must not be re-entered from a callback.
func (s *Socket) Tick() error {
	if !s.ticking.CompareAndSwap(false, true) {
		return gamelink.NewError(gamelink.KindInternal, "tick re-entered", nil)
	}
	defer s.ticking.Store(false)

	for {
		ev, ok := s.adapter.Poll()
		if !ok {
			break
		}
		switch ev.Kind {
		case EventConnected:
			s.handleConnected()
		case EventDisconnected:
			s.handleDisconnected(ev.Err)
		case EventMessage:
			s.handleFrame(ev.Data)
		}
	}

	s.sweepExpired()
	return nil
}

func (s *Socket) handleConnected() {
	s.mu.Lock()
	if !canTransition(s.state, Connected) {
		s.logger.Warn("ignoring connected event", zap.Stringer("state", s.state))
		s.mu.Unlock()
		return
	}
	s.state = Connected
	waiters := s.waiters
	s.waiters = nil
	subs := make([]lifecycleSub, len(s.onConnected))
	copy(subs, s.onConnected)
	s.mu.Unlock()

	s.logger.Info("connected")
	for _, w := range waiters {
		w.resolve(nil, nil)
	}
	for _, sub := range subs {
		s.invokeLifecycle(sub, nil)
	}
}

func (s *Socket) handleDisconnected(cause error) {
	s.mu.Lock()
	if s.state == Disconnected {
		s.mu.Unlock()
		return
	}
	deliberate := s.state == Closing
	s.state = Disconnected
	waiters := s.waiters
	s.waiters = nil
	expired := make([]*pendingCall, 0, len(s.pending))
	for cid, p := range s.pending {
		expired = append(expired, p)
		delete(s.pending, cid)
	}
	subs := make([]lifecycleSub, len(s.onClosed))
	copy(subs, s.onClosed)
	s.mu.Unlock()

	if deliberate {
		cause = nil
	}
	s.logger.Info("disconnected", zap.Error(cause))

	connectErr := gamelink.NewError(gamelink.KindTransport, "connection failed", cause)
	for _, w := range waiters {
		w.resolve(nil, connectErr)
	}
	pendingErr := gamelink.NewError(gamelink.KindNotConnected, "disconnected before response", cause)
	for _, p := range expired {
		p.call.resolve(nil, pendingErr)
	}
	for _, sub := range subs {
		s.invokeLifecycle(sub, cause)
	}
}

func (s *Socket) invokeLifecycle(sub lifecycleSub, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("lifecycle callback panicked",
				zap.String("handle", sub.handle.String()),
				zap.Any("panic", rec),
			)
		}
	}()
	sub.fn(err)
}

func (s *Socket) handleFrame(data []byte) {
	var env rtapi.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.recoverHeader(data, err)
		return
	}

	if env.Cid != "" {
		s.mu.Lock()
		p, ok := s.pending[env.Cid]
		if ok {
			delete(s.pending, env.Cid)
		}
		s.mu.Unlock()
		if !ok {
			// Response for a request that already timed out.
			s.logger.Debug("discarding stale response", zap.String("cid", env.Cid))
			return
		}
		if env.Error != nil {
			p.call.resolve(nil, gamelink.NewServerError(env.Error.Code, env.Error.Message))
			return
		}
		p.call.resolve(&env, nil)
		return
	}

	s.registry.dispatch(&env)
}

// recoverHeader extracts the cid from an undecodable frame so the waiting
// request fails with the decode error instead of timing out.
func (s *Socket) recoverHeader(data []byte, cause error) {
	var header rtapi.EnvelopeHeader
	if err := json.Unmarshal(data, &header); err != nil || header.Cid == "" {
		s.logger.Error("dropping undecodable frame", zap.Error(cause), zap.Int("bytes", len(data)))
		return
	}
	s.mu.Lock()
	p, ok := s.pending[header.Cid]
	if ok {
		delete(s.pending, header.Cid)
	}
	s.mu.Unlock()
	if !ok {
		s.logger.Error("dropping undecodable frame", zap.Error(cause), zap.String("cid", header.Cid))
		return
	}
	p.call.resolve(nil, gamelink.NewError(gamelink.KindDecode, fmt.Sprintf("decoding response: %v", cause), cause))
}

func (s *Socket) sweepExpired() {
	s.mu.Lock()
	var expired []*pendingCall
	for cid, p := range s.pending {
		p.ticksLeft--
		if p.ticksLeft <= 0 {
			expired = append(expired, p)
			delete(s.pending, cid)
		}
	}
	s.mu.Unlock()

	for _, p := range expired {
		s.logger.Debug("request timed out", zap.String("cid", p.call.cid))
		p.call.resolve(nil, gamelink.NewError(gamelink.KindTimeout, "no response before deadline", nil))
	}
}

// send writes one envelope. Correlated sends allocate a cid and register the
// returned Call; uncorrelated sends return a nil Call.
func (s *Socket) send(ctx context.Context, env *rtapi.Envelope, correlated bool) (*Call, error) {
	s.mu.Lock()
	if s.state != Connected {
		state := s.state
		s.mu.Unlock()
		return nil, gamelink.NewError(gamelink.KindNotConnected, fmt.Sprintf("send in state %s", state), nil)
	}
	var call *Call
	var cid string
	if correlated {
		s.nextCid++
		cid = strconv.FormatUint(s.nextCid, 10)
		if _, exists := s.pending[cid]; exists {
			s.mu.Unlock()
			return nil, gamelink.NewError(gamelink.KindInternal, fmt.Sprintf("correlation id %s already in flight", cid), nil)
		}
		env.Cid = cid
		call = newCall(cid)
		s.pending[cid] = &pendingCall{call: call, ticksLeft: s.cfg.RequestTimeoutTicks}
	}
	s.mu.Unlock()

	data, err := json.Marshal(env)
	if err != nil {
		s.dropPending(cid)
		return nil, gamelink.NewError(gamelink.KindInternal, fmt.Sprintf("encoding request: %v", err), err)
	}
	if err := s.adapter.Send(ctx, data); err != nil {
		s.dropPending(cid)
		if gamelink.IsKind(err, gamelink.KindTransport) {
			return nil, err
		}
		return nil, gamelink.NewError(gamelink.KindTransport, fmt.Sprintf("writing frame: %v", err), err)
	}
	return call, nil
}

func (s *Socket) dropPending(cid string) {
	if cid == "" {
		return
	}
	s.mu.Lock()
	delete(s.pending, cid)
	s.mu.Unlock()
}
