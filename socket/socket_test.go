package socket_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/config"
	"github.com/cory-johannsen/gamelink/internal/testutil"
	"github.com/cory-johannsen/gamelink/rtapi"
	"github.com/cory-johannsen/gamelink/session"
	"github.com/cory-johannsen/gamelink/socket"
)

const timeoutTicks = 3

func newTestSocket(t *testing.T) (*socket.Socket, *testutil.FakeAdapter) {
	t.Helper()
	adapter := testutil.NewFakeAdapter()
	cfg := config.SocketConfig{
		Port:                7350,
		WriteTimeout:        time.Second,
		ConnectTimeout:      time.Second,
		RequestTimeoutTicks: timeoutTicks,
		InboundQueueSize:    16,
	}
	sock := socket.New(adapter, cfg, "127.0.0.1", zaptest.NewLogger(t))
	return sock, adapter
}

func testSession(t *testing.T) *session.Session {
	t.Helper()
	token := testutil.MakeToken(t, testutil.TokenClaims{
		UserID:   "user-1",
		Username: "alice",
		ExpireAt: time.Now().Add(time.Hour),
	})
	sess, err := session.New(token, "", false)
	require.NoError(t, err)
	return sess
}

func connectSocket(t *testing.T, sock *socket.Socket, adapter *testutil.FakeAdapter) {
	t.Helper()
	call, err := sock.Connect(context.Background(), testSession(t), true)
	require.NoError(t, err)
	require.Equal(t, socket.Connecting, sock.State())

	adapter.QueueConnected()
	require.NoError(t, sock.Tick())

	require.True(t, call.Poll())
	_, err = call.Result()
	require.NoError(t, err)
	require.Equal(t, socket.Connected, sock.State())
}

// waitSent blocks until the adapter captured n outbound frames.
func waitSent(t *testing.T, adapter *testutil.FakeAdapter, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return adapter.SentCount() >= n }, time.Second, time.Millisecond)
}

func TestConnectResolvesDuringTick(t *testing.T) {
	sock, adapter := newTestSocket(t)
	call, err := sock.Connect(context.Background(), testSession(t), true)
	require.NoError(t, err)

	// Nothing resolves until the connected event is ticked in.
	require.NoError(t, sock.Tick())
	assert.False(t, call.Poll())
	assert.Equal(t, socket.Connecting, sock.State())

	adapter.QueueConnected()
	require.NoError(t, sock.Tick())
	assert.True(t, call.Poll())
	assert.Equal(t, socket.Connected, sock.State())
}

func TestConnectRejectedWhileConnected(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	_, err := sock.Connect(context.Background(), testSession(t), true)
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindInternal))
}

func TestSendWhileDisconnected(t *testing.T) {
	sock, adapter := newTestSocket(t)

	_, err := sock.JoinChat(context.Background(), "lobby", rtapi.ChannelTypeRoom, false, false)
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindNotConnected))
	// The transport must never be touched.
	assert.Zero(t, adapter.SentCount())
}

func TestRequestResponseCorrelation(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	type result struct {
		channel *rtapi.Channel
		err     error
	}
	results := make(chan result, 1)
	go func() {
		ch, err := sock.JoinChat(context.Background(), "lobby", rtapi.ChannelTypeRoom, true, false)
		results <- result{channel: ch, err: err}
	}()

	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)
	require.NotEmpty(t, sent.Cid)
	require.NotNil(t, sent.ChannelJoin)
	assert.Equal(t, "lobby", sent.ChannelJoin.Target)

	adapter.QueueEnvelope(t, &rtapi.Envelope{Cid: sent.Cid, Channel: &rtapi.Channel{ID: "chan-1"}})
	require.NoError(t, sock.Tick())

	res := <-results
	require.NoError(t, res.err)
	assert.Equal(t, "chan-1", res.channel.ID)
}

func TestOutOfOrderResponses(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	type result struct {
		channel *rtapi.Channel
		err     error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)
	go func() {
		ch, err := sock.JoinChat(context.Background(), "room-a", rtapi.ChannelTypeRoom, false, false)
		first <- result{channel: ch, err: err}
	}()
	go func() {
		ch, err := sock.JoinChat(context.Background(), "room-b", rtapi.ChannelTypeRoom, false, false)
		second <- result{channel: ch, err: err}
	}()
	waitSent(t, adapter, 2)

	// Respond in reverse order of sending, naming each channel after the
	// request's target so correlation is observable.
	envs := decodeAll(t, adapter)
	for i := len(envs) - 1; i >= 0; i-- {
		adapter.QueueEnvelope(t, &rtapi.Envelope{
			Cid:     envs[i].Cid,
			Channel: &rtapi.Channel{ID: envs[i].ChannelJoin.Target},
		})
	}
	require.NoError(t, sock.Tick())

	resA := <-first
	resB := <-second
	require.NoError(t, resA.err)
	require.NoError(t, resB.err)
	assert.Equal(t, "room-a", resA.channel.ID)
	assert.Equal(t, "room-b", resB.channel.ID)
}

func decodeAll(t *testing.T, adapter *testutil.FakeAdapter) []*rtapi.Envelope {
	t.Helper()
	var envs []*rtapi.Envelope
	for _, frame := range adapter.Sent() {
		var env rtapi.Envelope
		require.NoError(t, json.Unmarshal(frame, &env))
		envs = append(envs, &env)
	}
	return envs
}

func TestServerErrorResolvesRequest(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	errs := make(chan error, 1)
	go func() {
		_, err := sock.CreateMatch(context.Background())
		errs <- err
	}()
	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)

	adapter.QueueEnvelope(t, &rtapi.Envelope{
		Cid:   sent.Cid,
		Error: &rtapi.Error{Code: 4, Message: "match not found"},
	})
	require.NoError(t, sock.Tick())

	err := <-errs
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindServer))
	var glErr *gamelink.Error
	require.ErrorAs(t, err, &glErr)
	assert.Equal(t, 4, glErr.Code)
	assert.Contains(t, glErr.Message, "match not found")
}

func TestRequestTimesOutAfterTicks(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	errs := make(chan error, 1)
	go func() {
		_, err := sock.CreateMatch(context.Background())
		errs <- err
	}()
	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)

	for i := 0; i < timeoutTicks; i++ {
		select {
		case err := <-errs:
			t.Fatalf("request resolved after %d ticks: %v", i, err)
		default:
		}
		require.NoError(t, sock.Tick())
	}

	err := <-errs
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindTimeout))

	// A response arriving after the timeout is discarded without effect.
	adapter.QueueEnvelope(t, &rtapi.Envelope{Cid: sent.Cid, Match: &rtapi.Match{MatchID: "late"}})
	require.NoError(t, sock.Tick())
}

func TestInboundDispatchedBeforeExpiry(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	results := make(chan error, 1)
	go func() {
		_, err := sock.CreateMatch(context.Background())
		results <- err
	}()
	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)

	// Burn all but the last tick, then deliver the response on the tick
	// that would otherwise expire the request: delivery wins.
	for i := 0; i < timeoutTicks-1; i++ {
		require.NoError(t, sock.Tick())
	}
	adapter.QueueEnvelope(t, &rtapi.Envelope{Cid: sent.Cid, Match: &rtapi.Match{MatchID: "m1"}})
	require.NoError(t, sock.Tick())

	require.NoError(t, <-results)
}

func TestDisconnectFailsPendingRequests(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	errs := make(chan error, 1)
	go func() {
		_, err := sock.CreateMatch(context.Background())
		errs <- err
	}()
	waitSent(t, adapter, 1)

	adapter.QueueDisconnect(errors.New("connection reset"))
	require.NoError(t, sock.Tick())

	err := <-errs
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindNotConnected))
	assert.Equal(t, socket.Disconnected, sock.State())
}

func TestStaleResponseDiscarded(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	adapter.QueueEnvelope(t, &rtapi.Envelope{Cid: "999", Match: &rtapi.Match{MatchID: "ghost"}})
	require.NoError(t, sock.Tick())
	// Nothing to assert beyond the tick completing; the frame is dropped.
}

func TestEmptyTickIsNoop(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	for i := 0; i < 10; i++ {
		require.NoError(t, sock.Tick())
	}
	assert.Equal(t, socket.Connected, sock.State())
	assert.Zero(t, adapter.SentCount())
}

func TestTickReentrancyRejected(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var nested error
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) {
		nested = sock.Tick()
	})
	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m1"}})
	require.NoError(t, sock.Tick())

	require.Error(t, nested)
	assert.True(t, gamelink.IsKind(nested, gamelink.KindInternal))
}

func TestDecodeFailureResolvesPendingByHeader(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	errs := make(chan error, 1)
	go func() {
		_, err := sock.JoinChat(context.Background(), "lobby", rtapi.ChannelTypeRoom, false, false)
		errs <- err
	}()
	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)

	// A frame whose payload does not decode, with a recoverable cid header.
	adapter.QueueFrame([]byte(`{"cid":"` + sent.Cid + `","channel":{"id":123}}`))
	require.NoError(t, sock.Tick())

	err := <-errs
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindDecode))
}

func TestUndecodableFrameWithoutHeaderDropped(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	adapter.QueueFrame([]byte(`not json at all`))
	require.NoError(t, sock.Tick())
}

func TestCloseIsDeliberate(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var closedErr error
	closed := false
	sock.OnClosed(func(err error) {
		closed = true
		closedErr = err
	})

	require.NoError(t, sock.Close())
	assert.Equal(t, socket.Closing, sock.State())

	require.NoError(t, sock.Tick())
	assert.Equal(t, socket.Disconnected, sock.State())
	assert.True(t, closed)
	assert.NoError(t, closedErr)
	assert.Equal(t, 1, adapter.CloseCount())
}

func TestSubscriptionsSurviveReconnect(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var got []string
	sock.Subscribe(rtapi.ClassMatchData, func(env *rtapi.Envelope) {
		got = append(got, env.MatchData.MatchID)
	})

	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "before"}})
	require.NoError(t, sock.Tick())

	adapter.QueueDisconnect(errors.New("gone"))
	require.NoError(t, sock.Tick())
	require.Equal(t, socket.Disconnected, sock.State())

	connectSocket(t, sock, adapter)
	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "after"}})
	require.NoError(t, sock.Tick())

	assert.Equal(t, []string{"before", "after"}, got)
}

func TestPushDispatchOrder(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var order []int
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) { order = append(order, 1) })
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) { order = append(order, 2) })
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) { order = append(order, 3) })

	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m1"}})
	require.NoError(t, sock.Tick())

	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestUnsubscribeDuringDispatch(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var calls []string
	var removeSelf, victim uuid.UUID
	removeSelf = sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) {
		calls = append(calls, "first")
		sock.Unsubscribe(removeSelf)
		sock.Unsubscribe(victim)
	})
	victim = sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) {
		calls = append(calls, "victim")
	})

	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m1"}})
	require.NoError(t, sock.Tick())
	// The victim was removed mid-dispatch and must not run.
	assert.Equal(t, []string{"first"}, calls)

	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m2"}})
	require.NoError(t, sock.Tick())
	// Both are gone now.
	assert.Equal(t, []string{"first"}, calls)
}

func TestCallbackPanicIsolated(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var survived bool
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) {
		panic("broken handler")
	})
	sock.Subscribe(rtapi.ClassMatchData, func(*rtapi.Envelope) {
		survived = true
	})

	adapter.QueueEnvelope(t, &rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m1"}})
	require.NoError(t, sock.Tick())
	assert.True(t, survived)
}

func TestUncorrelatedSendsCarryNoCid(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	ctx := context.Background()
	require.NoError(t, sock.LeaveMatch(ctx, "m1"))
	require.NoError(t, sock.SendMatchState(ctx, "m1", 7, []byte("state"), nil))
	require.NoError(t, sock.UpdateStatus(ctx, "here"))
	require.NoError(t, sock.UnfollowUsers(ctx, []string{"u1"}))
	require.NoError(t, sock.RemoveMatchmaker(ctx, "ticket-1"))
	require.NoError(t, sock.LeaveChat(ctx, "chan-1"))
	require.NoError(t, sock.SendPartyData(ctx, "p1", 9, []byte("data")))

	for _, env := range decodeAll(t, adapter) {
		assert.Empty(t, env.Cid)
	}
	assert.Equal(t, 7, adapter.SentCount())
}

func TestAbandonedWaitDoesNotCancelRequest(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sock.CreateMatch(ctx)
	require.Error(t, err)
	assert.True(t, gamelink.IsKind(err, gamelink.KindTimeout))

	// The request is still pending; a response for it is consumed silently.
	waitSent(t, adapter, 1)
	sent := adapter.LastSent(t)
	adapter.QueueEnvelope(t, &rtapi.Envelope{Cid: sent.Cid, Match: &rtapi.Match{MatchID: "m1"}})
	require.NoError(t, sock.Tick())
}

func TestPropertyCidsAreUnique(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 30).Draw(rt, "requests")

		sock, adapter := newTestSocket(t)
		connectSocket(t, sock, adapter)

		done := make(chan struct{}, n)
		for i := 0; i < n; i++ {
			go func() {
				_, _ = sock.CreateMatch(context.Background())
				done <- struct{}{}
			}()
		}
		require.Eventually(t, func() bool { return adapter.SentCount() == n }, time.Second, time.Millisecond)

		seen := make(map[string]bool)
		for _, env := range decodeAll(t, adapter) {
			if env.Cid == "" {
				rt.Fatalf("request sent without cid")
			}
			if seen[env.Cid] {
				rt.Fatalf("duplicate cid %s", env.Cid)
			}
			seen[env.Cid] = true
		}

		// Unblock the waiters.
		adapter.QueueDisconnect(errors.New("test over"))
		require.NoError(t, sock.Tick())
		for i := 0; i < n; i++ {
			<-done
		}
	})
}

func TestTypedSubscriptionsDecodePayload(t *testing.T) {
	sock, adapter := newTestSocket(t)
	connectSocket(t, sock, adapter)

	var messages []string
	sock.OnChannelMessage(func(msg *api.ChannelMessage) {
		messages = append(messages, msg.Content)
	})
	var partyData []byte
	handle := sock.OnPartyData(func(pd *rtapi.PartyData) {
		partyData = pd.Data
	})

	adapter.QueueEnvelope(t, &rtapi.Envelope{
		ChannelMessage: &api.ChannelMessage{MessageID: "m1", Content: `{"message":"hi"}`},
	})
	adapter.QueueEnvelope(t, &rtapi.Envelope{
		PartyData: &rtapi.PartyData{PartyID: "p1", OpCode: 7, Data: []byte("state")},
	})
	require.NoError(t, sock.Tick())

	assert.Equal(t, []string{`{"message":"hi"}`}, messages)
	assert.Equal(t, []byte("state"), partyData)

	sock.Unsubscribe(handle)
	adapter.QueueEnvelope(t, &rtapi.Envelope{
		PartyData: &rtapi.PartyData{PartyID: "p1", OpCode: 8, Data: []byte("late")},
	})
	require.NoError(t, sock.Tick())
	assert.Equal(t, []byte("state"), partyData)
}
