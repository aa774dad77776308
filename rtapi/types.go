// Package rtapi defines the realtime wire protocol: the message envelope and
// every payload that travels over the socket, correlated or pushed.
package rtapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cory-johannsen/gamelink/api"
)

// UserPresence identifies one connected user on a stream, match, channel or
// party.
type UserPresence struct {
	UserID      string `json:"user_id,omitempty"`
	SessionID   string `json:"session_id,omitempty"`
	Username    string `json:"username,omitempty"`
	Persistence bool   `json:"persistence,omitempty"`
	Status      string `json:"status,omitempty"`
}

// ChannelType selects what a chat channel is attached to.
type ChannelType int

const (
	ChannelTypeUnspecified ChannelType = iota
	ChannelTypeRoom
	ChannelTypeDirectMessage
	ChannelTypeGroup
)

// Channel is a joined chat channel.
type Channel struct {
	ID        string         `json:"id,omitempty"`
	Presences []UserPresence `json:"presences,omitempty"`
	Self      UserPresence   `json:"self,omitempty"`
	RoomName  string         `json:"room_name,omitempty"`
	GroupID   string         `json:"group_id,omitempty"`
	UserIDOne string         `json:"user_id_one,omitempty"`
	UserIDTwo string         `json:"user_id_two,omitempty"`
}

// ChannelJoin asks the server to join a chat channel.
type ChannelJoin struct {
	Target      string      `json:"target,omitempty"`
	Type        ChannelType `json:"type,omitempty"`
	Persistence bool        `json:"persistence,omitempty"`
	Hidden      bool        `json:"hidden,omitempty"`
}

// ChannelLeave asks the server to leave a chat channel.
type ChannelLeave struct {
	ChannelID string `json:"channel_id,omitempty"`
}

// ChannelMessageAck acknowledges a sent, updated or removed chat message.
type ChannelMessageAck struct {
	ChannelID  string `json:"channel_id,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Code       int    `json:"code,omitempty"`
	Username   string `json:"username,omitempty"`
	CreateTime string `json:"create_time,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
	RoomName   string `json:"room_name,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	UserIDOne  string `json:"user_id_one,omitempty"`
	UserIDTwo  string `json:"user_id_two,omitempty"`
}

// ChannelMessageSend writes a new chat message.
type ChannelMessageSend struct {
	ChannelID string `json:"channel_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ChannelMessageUpdate edits an existing chat message.
type ChannelMessageUpdate struct {
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ChannelMessageRemove deletes an existing chat message.
type ChannelMessageRemove struct {
	ChannelID string `json:"channel_id,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// ChannelPresenceEvent announces joins and leaves on a chat channel.
type ChannelPresenceEvent struct {
	ChannelID string         `json:"channel_id,omitempty"`
	Joins     []UserPresence `json:"joins,omitempty"`
	Leaves    []UserPresence `json:"leaves,omitempty"`
	RoomName  string         `json:"room_name,omitempty"`
	GroupID   string         `json:"group_id,omitempty"`
	UserIDOne string         `json:"user_id_one,omitempty"`
	UserIDTwo string         `json:"user_id_two,omitempty"`
}

// Error is a server-reported realtime error. Correlated errors resolve the
// matching request; uncorrelated ones are pushed.
type Error struct {
	Code    int               `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

// Match is a joined realtime match.
type Match struct {
	MatchID       string         `json:"match_id,omitempty"`
	Authoritative bool           `json:"authoritative,omitempty"`
	Label         string         `json:"label,omitempty"`
	Size          int            `json:"size,omitempty"`
	Presences     []UserPresence `json:"presences,omitempty"`
	Self          UserPresence   `json:"self,omitempty"`
}

// MatchCreate asks the server to create a relayed match.
type MatchCreate struct{}

// MatchData is match state relayed from another presence. Data travels
// base64-encoded on the wire.
type MatchData struct {
	MatchID  string       `json:"match_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
	OpCode   int64        `json:"op_code,string,omitempty"`
	Data     []byte       `json:"data,omitempty"`
	Reliable bool         `json:"reliable,omitempty"`
}

// MatchDataSend relays match state to other presences. An empty presence
// list broadcasts to the whole match.
type MatchDataSend struct {
	MatchID   string         `json:"match_id,omitempty"`
	OpCode    int64          `json:"op_code,string,omitempty"`
	Data      []byte         `json:"data,omitempty"`
	Presences []UserPresence `json:"presences,omitempty"`
	Reliable  bool           `json:"reliable,omitempty"`
}

// MatchJoin joins a match by id or by matchmaker token.
type MatchJoin struct {
	MatchID  string            `json:"match_id,omitempty"`
	Token    string            `json:"token,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// MatchLeave leaves a match.
type MatchLeave struct {
	MatchID string `json:"match_id,omitempty"`
}

// MatchPresenceEvent announces joins and leaves in a match.
type MatchPresenceEvent struct {
	MatchID string         `json:"match_id,omitempty"`
	Joins   []UserPresence `json:"joins,omitempty"`
	Leaves  []UserPresence `json:"leaves,omitempty"`
}

// MatchmakerAdd enters the matchmaker pool.
type MatchmakerAdd struct {
	MinCount          int                `json:"min_count,omitempty"`
	MaxCount          int                `json:"max_count,omitempty"`
	Query             string             `json:"query,omitempty"`
	StringProperties  map[string]string  `json:"string_properties,omitempty"`
	NumericProperties map[string]float64 `json:"numeric_properties,omitempty"`
}

// MatchmakerUser is one matched user with the properties they registered.
type MatchmakerUser struct {
	Presence          UserPresence       `json:"presence,omitempty"`
	PartyID           string             `json:"party_id,omitempty"`
	StringProperties  map[string]string  `json:"string_properties,omitempty"`
	NumericProperties map[string]float64 `json:"numeric_properties,omitempty"`
}

// MatchmakerMatched announces a completed matchmaking. Exactly one of
// MatchID and Token is set, depending on whether the match is authoritative.
type MatchmakerMatched struct {
	Ticket  string           `json:"ticket,omitempty"`
	MatchID string           `json:"match_id,omitempty"`
	Token   string           `json:"token,omitempty"`
	Users   []MatchmakerUser `json:"users,omitempty"`
	Self    MatchmakerUser   `json:"self,omitempty"`
}

// MatchmakerRemove withdraws a matchmaker ticket.
type MatchmakerRemove struct {
	Ticket string `json:"ticket,omitempty"`
}

// MatchmakerTicket acknowledges entry into the matchmaker pool.
type MatchmakerTicket struct {
	Ticket string `json:"ticket,omitempty"`
}

// Notifications is a batch of pushed notifications.
type Notifications struct {
	Notifications []api.Notification `json:"notifications,omitempty"`
}

// Status reports the online status of followed users.
type Status struct {
	Presences []UserPresence `json:"presences,omitempty"`
}

// StatusFollow subscribes to status updates for the given users.
type StatusFollow struct {
	UserIDs   []string `json:"user_ids,omitempty"`
	Usernames []string `json:"usernames,omitempty"`
}

// StatusPresenceEvent announces status changes of followed users.
type StatusPresenceEvent struct {
	Joins  []UserPresence `json:"joins,omitempty"`
	Leaves []UserPresence `json:"leaves,omitempty"`
}

// StatusUnfollow unsubscribes from status updates.
type StatusUnfollow struct {
	UserIDs []string `json:"user_ids,omitempty"`
}

// StatusUpdate publishes the caller's own status message.
type StatusUpdate struct {
	Status string `json:"status,omitempty"`
}

// Stream identifies a data stream on the server.
type Stream struct {
	Mode       int    `json:"mode,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Subcontext string `json:"subcontext,omitempty"`
	Label      string `json:"label,omitempty"`
}

// StreamData is state pushed on a stream.
type StreamData struct {
	Stream   Stream       `json:"stream,omitempty"`
	Sender   UserPresence `json:"sender,omitempty"`
	Data     string       `json:"data,omitempty"`
	Reliable bool         `json:"reliable,omitempty"`
}

// StreamPresenceEvent announces joins and leaves on a stream.
type StreamPresenceEvent struct {
	Stream Stream         `json:"stream,omitempty"`
	Joins  []UserPresence `json:"joins,omitempty"`
	Leaves []UserPresence `json:"leaves,omitempty"`
}

// Party is a joined realtime party.
type Party struct {
	PartyID   string         `json:"party_id,omitempty"`
	Open      bool           `json:"open,omitempty"`
	MaxSize   int            `json:"max_size,omitempty"`
	Self      UserPresence   `json:"self,omitempty"`
	Leader    UserPresence   `json:"leader,omitempty"`
	Presences []UserPresence `json:"presences,omitempty"`
}

// PartyCreate creates a party.
type PartyCreate struct {
	Open    bool `json:"open"`
	MaxSize int  `json:"max_size,omitempty"`
}

// PartyJoin joins a party.
type PartyJoin struct {
	PartyID string `json:"party_id,omitempty"`
}

// PartyLeave leaves a party.
type PartyLeave struct {
	PartyID string `json:"party_id,omitempty"`
}

// PartyPromote promotes a member to party leader.
type PartyPromote struct {
	PartyID  string       `json:"party_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
}

// PartyLeader announces the current party leader.
type PartyLeader struct {
	PartyID  string       `json:"party_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
}

// PartyAccept admits a join request into a closed party.
type PartyAccept struct {
	PartyID  string       `json:"party_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
}

// PartyRemove kicks a member or rejects a join request.
type PartyRemove struct {
	PartyID  string       `json:"party_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
}

// PartyClose disbands a party. Also pushed when the party ends.
type PartyClose struct {
	PartyID string `json:"party_id,omitempty"`
}

// PartyJoinRequestList asks for the pending join requests of a party.
type PartyJoinRequestList struct {
	PartyID string `json:"party_id,omitempty"`
}

// PartyJoinRequest lists pending join requests. Also pushed to the leader
// when a user asks to join.
type PartyJoinRequest struct {
	PartyID   string         `json:"party_id,omitempty"`
	Presences []UserPresence `json:"presences,omitempty"`
}

// PartyMatchmakerAdd enters the whole party into the matchmaker pool.
type PartyMatchmakerAdd struct {
	PartyID           string             `json:"party_id,omitempty"`
	MinCount          int                `json:"min_count,omitempty"`
	MaxCount          int                `json:"max_count,omitempty"`
	Query             string             `json:"query,omitempty"`
	StringProperties  map[string]string  `json:"string_properties,omitempty"`
	NumericProperties map[string]float64 `json:"numeric_properties,omitempty"`
}

// PartyMatchmakerRemove withdraws a party matchmaker ticket.
type PartyMatchmakerRemove struct {
	PartyID string `json:"party_id,omitempty"`
	Ticket  string `json:"ticket,omitempty"`
}

// PartyMatchmakerTicket acknowledges a party matchmaker entry.
type PartyMatchmakerTicket struct {
	PartyID string `json:"party_id,omitempty"`
	Ticket  string `json:"ticket,omitempty"`
}

// PartyData is party state relayed from another member. The server sends the
// op code as a decimal string and the data base64-encoded.
type PartyData struct {
	PartyID  string       `json:"party_id,omitempty"`
	Presence UserPresence `json:"presence,omitempty"`
	OpCode   int64        `json:"op_code,omitempty"`
	Data     []byte       `json:"data,omitempty"`
}

type partyDataWire struct {
	PartyID  string        `json:"party_id,omitempty"`
	Presence *UserPresence `json:"presence,omitempty"`
	OpCode   string        `json:"op_code,omitempty"`
	Data     string        `json:"data,omitempty"`
}

// UnmarshalJSON decodes the wire form: string op code, base64 data.
func (p *PartyData) UnmarshalJSON(b []byte) error {
	var wire partyDataWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	var opCode int64
	if wire.OpCode != "" {
		parsed, err := strconv.ParseInt(wire.OpCode, 10, 64)
		if err != nil {
			return fmt.Errorf("parsing party data op code %q: %w", wire.OpCode, err)
		}
		opCode = parsed
	}
	var data []byte
	if wire.Data != "" {
		decoded, err := base64.StdEncoding.DecodeString(wire.Data)
		if err != nil {
			return fmt.Errorf("decoding party data payload: %w", err)
		}
		data = decoded
	}
	p.PartyID = wire.PartyID
	p.Presence = UserPresence{}
	if wire.Presence != nil {
		p.Presence = *wire.Presence
	}
	p.OpCode = opCode
	p.Data = data
	return nil
}

// MarshalJSON encodes the wire form symmetric to UnmarshalJSON.
func (p PartyData) MarshalJSON() ([]byte, error) {
	wire := partyDataWire{
		PartyID: p.PartyID,
		OpCode:  strconv.FormatInt(p.OpCode, 10),
		Data:    base64.StdEncoding.EncodeToString(p.Data),
	}
	if p.Presence != (UserPresence{}) {
		presence := p.Presence
		wire.Presence = &presence
	}
	return json.Marshal(wire)
}

// PartyDataSend relays party state to the other members.
type PartyDataSend struct {
	PartyID string `json:"party_id,omitempty"`
	OpCode  int64  `json:"op_code,string,omitempty"`
	Data    []byte `json:"data,omitempty"`
}

// PartyPresenceEvent announces joins and leaves in a party.
type PartyPresenceEvent struct {
	PartyID string         `json:"party_id,omitempty"`
	Joins   []UserPresence `json:"joins,omitempty"`
	Leaves  []UserPresence `json:"leaves,omitempty"`
}

// Ping is a liveness probe.
type Ping struct{}

// Pong answers a ping.
type Pong struct{}
