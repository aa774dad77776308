package socket

import (
	"github.com/google/uuid"

	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/rtapi"
)

// Typed push subscriptions. Each helper registers for one message class and
// hands the callback the decoded payload. All run during Tick; the returned
// handle feeds Unsubscribe.

// OnChannelMessage subscribes to incoming chat messages.
func (s *Socket) OnChannelMessage(fn func(*api.ChannelMessage)) uuid.UUID {
	return s.Subscribe(rtapi.ClassChannelMessage, func(env *rtapi.Envelope) {
		fn(env.ChannelMessage)
	})
}

// OnChannelPresence subscribes to chat channel join and leave events.
func (s *Socket) OnChannelPresence(fn func(*rtapi.ChannelPresenceEvent)) uuid.UUID {
	return s.Subscribe(rtapi.ClassChannelPresenceEvent, func(env *rtapi.Envelope) {
		fn(env.ChannelPresenceEvent)
	})
}

// OnMatchData subscribes to match state relayed by other presences.
func (s *Socket) OnMatchData(fn func(*rtapi.MatchData)) uuid.UUID {
	return s.Subscribe(rtapi.ClassMatchData, func(env *rtapi.Envelope) {
		fn(env.MatchData)
	})
}

// OnMatchPresence subscribes to match join and leave events.
func (s *Socket) OnMatchPresence(fn func(*rtapi.MatchPresenceEvent)) uuid.UUID {
	return s.Subscribe(rtapi.ClassMatchPresenceEvent, func(env *rtapi.Envelope) {
		fn(env.MatchPresenceEvent)
	})
}

// OnMatchmakerMatched subscribes to matchmaker results.
func (s *Socket) OnMatchmakerMatched(fn func(*rtapi.MatchmakerMatched)) uuid.UUID {
	return s.Subscribe(rtapi.ClassMatchmakerMatched, func(env *rtapi.Envelope) {
		fn(env.MatchmakerMatched)
	})
}

// OnNotifications subscribes to server notifications.
func (s *Socket) OnNotifications(fn func(*rtapi.Notifications)) uuid.UUID {
	return s.Subscribe(rtapi.ClassNotifications, func(env *rtapi.Envelope) {
		fn(env.Notifications)
	})
}

// OnStatusPresence subscribes to online status changes of followed users.
func (s *Socket) OnStatusPresence(fn func(*rtapi.StatusPresenceEvent)) uuid.UUID {
	return s.Subscribe(rtapi.ClassStatusPresenceEvent, func(env *rtapi.Envelope) {
		fn(env.StatusPresenceEvent)
	})
}

// OnStreamData subscribes to raw stream data.
func (s *Socket) OnStreamData(fn func(*rtapi.StreamData)) uuid.UUID {
	return s.Subscribe(rtapi.ClassStreamData, func(env *rtapi.Envelope) {
		fn(env.StreamData)
	})
}

// OnStreamPresence subscribes to stream join and leave events.
func (s *Socket) OnStreamPresence(fn func(*rtapi.StreamPresenceEvent)) uuid.UUID {
	return s.Subscribe(rtapi.ClassStreamPresenceEvent, func(env *rtapi.Envelope) {
		fn(env.StreamPresenceEvent)
	})
}

// OnPartyData subscribes to party state relayed by other members.
func (s *Socket) OnPartyData(fn func(*rtapi.PartyData)) uuid.UUID {
	return s.Subscribe(rtapi.ClassPartyData, func(env *rtapi.Envelope) {
		fn(env.PartyData)
	})
}

// OnPartyPresence subscribes to party join and leave events.
func (s *Socket) OnPartyPresence(fn func(*rtapi.PartyPresenceEvent)) uuid.UUID {
	return s.Subscribe(rtapi.ClassPartyPresenceEvent, func(env *rtapi.Envelope) {
		fn(env.PartyPresenceEvent)
	})
}

// OnPartyJoinRequest subscribes to join requests for parties this user leads.
func (s *Socket) OnPartyJoinRequest(fn func(*rtapi.PartyJoinRequest)) uuid.UUID {
	return s.Subscribe(rtapi.ClassPartyJoinRequest, func(env *rtapi.Envelope) {
		fn(env.PartyJoinRequest)
	})
}

// OnPartyLeader subscribes to party leadership changes.
func (s *Socket) OnPartyLeader(fn func(*rtapi.PartyLeader)) uuid.UUID {
	return s.Subscribe(rtapi.ClassPartyLeader, func(env *rtapi.Envelope) {
		fn(env.PartyLeader)
	})
}

// OnPartyClose subscribes to parties being closed by their leader.
func (s *Socket) OnPartyClose(fn func(*rtapi.PartyClose)) uuid.UUID {
	return s.Subscribe(rtapi.ClassPartyClose, func(env *rtapi.Envelope) {
		fn(env.PartyClose)
	})
}

// OnError subscribes to server errors that arrive without a correlation id.
// Errors answering a request resolve that request instead.
func (s *Socket) OnError(fn func(*rtapi.Error)) uuid.UUID {
	return s.Subscribe(rtapi.ClassError, func(env *rtapi.Envelope) {
		fn(env.Error)
	})
}
