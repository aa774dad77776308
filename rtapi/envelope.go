package rtapi

import "github.com/cory-johannsen/gamelink/api"

// Envelope is the realtime wire frame. Exactly one payload field is set per
// frame; a non-empty Cid correlates a response with its request, while frames
// without a Cid are server pushes.
type Envelope struct {
	Cid string `json:"cid,omitempty"`

	Channel              *Channel              `json:"channel,omitempty"`
	ChannelJoin          *ChannelJoin          `json:"channel_join,omitempty"`
	ChannelLeave         *ChannelLeave         `json:"channel_leave,omitempty"`
	ChannelMessage       *api.ChannelMessage   `json:"channel_message,omitempty"`
	ChannelMessageAck    *ChannelMessageAck    `json:"channel_message_ack,omitempty"`
	ChannelMessageSend   *ChannelMessageSend   `json:"channel_message_send,omitempty"`
	ChannelMessageUpdate *ChannelMessageUpdate `json:"channel_message_update,omitempty"`
	ChannelMessageRemove *ChannelMessageRemove `json:"channel_message_remove,omitempty"`
	ChannelPresenceEvent *ChannelPresenceEvent `json:"channel_presence_event,omitempty"`

	Error *Error `json:"error,omitempty"`

	Match              *Match              `json:"match,omitempty"`
	MatchCreate        *MatchCreate        `json:"match_create,omitempty"`
	MatchJoin          *MatchJoin          `json:"match_join,omitempty"`
	MatchLeave         *MatchLeave         `json:"match_leave,omitempty"`
	MatchData          *MatchData          `json:"match_data,omitempty"`
	MatchDataSend      *MatchDataSend      `json:"match_data_send,omitempty"`
	MatchPresenceEvent *MatchPresenceEvent `json:"match_presence_event,omitempty"`

	MatchmakerAdd     *MatchmakerAdd     `json:"matchmaker_add,omitempty"`
	MatchmakerMatched *MatchmakerMatched `json:"matchmaker_matched,omitempty"`
	MatchmakerRemove  *MatchmakerRemove  `json:"matchmaker_remove,omitempty"`
	MatchmakerTicket  *MatchmakerTicket  `json:"matchmaker_ticket,omitempty"`

	Notifications *Notifications `json:"notifications,omitempty"`
	Rpc           *api.Rpc       `json:"rpc,omitempty"`

	Status              *Status              `json:"status,omitempty"`
	StatusFollow        *StatusFollow        `json:"status_follow,omitempty"`
	StatusPresenceEvent *StatusPresenceEvent `json:"status_presence_event,omitempty"`
	StatusUnfollow      *StatusUnfollow      `json:"status_unfollow,omitempty"`
	StatusUpdate        *StatusUpdate        `json:"status_update,omitempty"`

	StreamData          *StreamData          `json:"stream_data,omitempty"`
	StreamPresenceEvent *StreamPresenceEvent `json:"stream_presence_event,omitempty"`

	Party                 *Party                 `json:"party,omitempty"`
	PartyCreate           *PartyCreate           `json:"party_create,omitempty"`
	PartyJoin             *PartyJoin             `json:"party_join,omitempty"`
	PartyLeave            *PartyLeave            `json:"party_leave,omitempty"`
	PartyPromote          *PartyPromote          `json:"party_promote,omitempty"`
	PartyLeader           *PartyLeader           `json:"party_leader,omitempty"`
	PartyAccept           *PartyAccept           `json:"party_accept,omitempty"`
	PartyRemove           *PartyRemove           `json:"party_remove,omitempty"`
	PartyClose            *PartyClose            `json:"party_close,omitempty"`
	PartyJoinRequestList  *PartyJoinRequestList  `json:"party_join_request_list,omitempty"`
	PartyJoinRequest      *PartyJoinRequest      `json:"party_join_request,omitempty"`
	PartyMatchmakerAdd    *PartyMatchmakerAdd    `json:"party_matchmaker_add,omitempty"`
	PartyMatchmakerRemove *PartyMatchmakerRemove `json:"party_matchmaker_remove,omitempty"`
	PartyMatchmakerTicket *PartyMatchmakerTicket `json:"party_matchmaker_ticket,omitempty"`
	PartyData             *PartyData             `json:"party_data,omitempty"`
	PartyDataSend         *PartyDataSend         `json:"party_data_send,omitempty"`
	PartyPresenceEvent    *PartyPresenceEvent    `json:"party_presence_event,omitempty"`

	Ping *Ping `json:"ping,omitempty"`
	Pong *Pong `json:"pong,omitempty"`
}

// EnvelopeHeader decodes only the correlation id. Used to recover the cid of
// a frame whose payload failed to decode, so the waiting request can still be
// resolved with the decode error.
type EnvelopeHeader struct {
	Cid string `json:"cid,omitempty"`
}

// MessageClass identifies which payload an envelope carries. Push
// subscriptions are registered per class.
type MessageClass int

const (
	ClassNone MessageClass = iota
	ClassChannel
	ClassChannelMessage
	ClassChannelMessageAck
	ClassChannelPresenceEvent
	ClassError
	ClassMatch
	ClassMatchData
	ClassMatchPresenceEvent
	ClassMatchmakerMatched
	ClassMatchmakerTicket
	ClassNotifications
	ClassRpc
	ClassStatus
	ClassStatusPresenceEvent
	ClassStreamData
	ClassStreamPresenceEvent
	ClassParty
	ClassPartyClose
	ClassPartyData
	ClassPartyJoinRequest
	ClassPartyLeader
	ClassPartyPresenceEvent
	ClassPartyMatchmakerTicket
	ClassPing
	ClassPong
)

// String returns the wire field name of the class.
func (c MessageClass) String() string {
	switch c {
	case ClassChannel:
		return "channel"
	case ClassChannelMessage:
		return "channel_message"
	case ClassChannelMessageAck:
		return "channel_message_ack"
	case ClassChannelPresenceEvent:
		return "channel_presence_event"
	case ClassError:
		return "error"
	case ClassMatch:
		return "match"
	case ClassMatchData:
		return "match_data"
	case ClassMatchPresenceEvent:
		return "match_presence_event"
	case ClassMatchmakerMatched:
		return "matchmaker_matched"
	case ClassMatchmakerTicket:
		return "matchmaker_ticket"
	case ClassNotifications:
		return "notifications"
	case ClassRpc:
		return "rpc"
	case ClassStatus:
		return "status"
	case ClassStatusPresenceEvent:
		return "status_presence_event"
	case ClassStreamData:
		return "stream_data"
	case ClassStreamPresenceEvent:
		return "stream_presence_event"
	case ClassParty:
		return "party"
	case ClassPartyClose:
		return "party_close"
	case ClassPartyData:
		return "party_data"
	case ClassPartyJoinRequest:
		return "party_join_request"
	case ClassPartyLeader:
		return "party_leader"
	case ClassPartyPresenceEvent:
		return "party_presence_event"
	case ClassPartyMatchmakerTicket:
		return "party_matchmaker_ticket"
	case ClassPing:
		return "ping"
	case ClassPong:
		return "pong"
	default:
		return "none"
	}
}

// Class reports which inbound payload the envelope carries. Outbound-only
// fields are not classified.
func (e *Envelope) Class() MessageClass {
	switch {
	case e.Error != nil:
		return ClassError
	case e.Channel != nil:
		return ClassChannel
	case e.ChannelMessage != nil:
		return ClassChannelMessage
	case e.ChannelMessageAck != nil:
		return ClassChannelMessageAck
	case e.ChannelPresenceEvent != nil:
		return ClassChannelPresenceEvent
	case e.Match != nil:
		return ClassMatch
	case e.MatchData != nil:
		return ClassMatchData
	case e.MatchPresenceEvent != nil:
		return ClassMatchPresenceEvent
	case e.MatchmakerMatched != nil:
		return ClassMatchmakerMatched
	case e.MatchmakerTicket != nil:
		return ClassMatchmakerTicket
	case e.Notifications != nil:
		return ClassNotifications
	case e.Rpc != nil:
		return ClassRpc
	case e.Status != nil:
		return ClassStatus
	case e.StatusPresenceEvent != nil:
		return ClassStatusPresenceEvent
	case e.StreamData != nil:
		return ClassStreamData
	case e.StreamPresenceEvent != nil:
		return ClassStreamPresenceEvent
	case e.Party != nil:
		return ClassParty
	case e.PartyClose != nil:
		return ClassPartyClose
	case e.PartyData != nil:
		return ClassPartyData
	case e.PartyJoinRequest != nil:
		return ClassPartyJoinRequest
	case e.PartyLeader != nil:
		return ClassPartyLeader
	case e.PartyPresenceEvent != nil:
		return ClassPartyPresenceEvent
	case e.PartyMatchmakerTicket != nil:
		return ClassPartyMatchmakerTicket
	case e.Ping != nil:
		return ClassPing
	case e.Pong != nil:
		return ClassPong
	default:
		return ClassNone
	}
}
