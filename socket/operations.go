package socket

import (
	"context"
	"fmt"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/matchmaker"
	"github.com/cory-johannsen/gamelink/rtapi"
)

// awaitPayload waits for the response and extracts its payload. A response
// without the expected payload is a decode failure.
func awaitPayload[T any](ctx context.Context, call *Call, field string, extract func(*rtapi.Envelope) *T) (*T, error) {
	env, err := call.Wait(ctx)
	if err != nil {
		return nil, err
	}
	v := extract(env)
	if v == nil {
		return nil, gamelink.NewError(gamelink.KindDecode, fmt.Sprintf("response missing %s payload", field), nil)
	}
	return v, nil
}

// awaitAck waits for a response whose payload does not matter.
func awaitAck(ctx context.Context, call *Call) error {
	_, err := call.Wait(ctx)
	return err
}

// JoinChat joins a chat channel: a room by name, a group by id, or a direct
// conversation by user id, selected by channelType.
func (s *Socket) JoinChat(ctx context.Context, target string, channelType rtapi.ChannelType, persistence, hidden bool) (*rtapi.Channel, error) {
	call, err := s.send(ctx, &rtapi.Envelope{ChannelJoin: &rtapi.ChannelJoin{
		Target:      target,
		Type:        channelType,
		Persistence: persistence,
		Hidden:      hidden,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "channel", func(e *rtapi.Envelope) *rtapi.Channel { return e.Channel })
}

// LeaveChat leaves a chat channel. The server sends no acknowledgement.
func (s *Socket) LeaveChat(ctx context.Context, channelID string) error {
	_, err := s.send(ctx, &rtapi.Envelope{ChannelLeave: &rtapi.ChannelLeave{ChannelID: channelID}}, false)
	return err
}

// WriteChatMessage sends a chat message. Content must be a JSON object.
func (s *Socket) WriteChatMessage(ctx context.Context, channelID, content string) (*rtapi.ChannelMessageAck, error) {
	call, err := s.send(ctx, &rtapi.Envelope{ChannelMessageSend: &rtapi.ChannelMessageSend{
		ChannelID: channelID,
		Content:   content,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "channel_message_ack", func(e *rtapi.Envelope) *rtapi.ChannelMessageAck { return e.ChannelMessageAck })
}

// UpdateChatMessage edits a previously sent chat message.
func (s *Socket) UpdateChatMessage(ctx context.Context, channelID, messageID, content string) (*rtapi.ChannelMessageAck, error) {
	call, err := s.send(ctx, &rtapi.Envelope{ChannelMessageUpdate: &rtapi.ChannelMessageUpdate{
		ChannelID: channelID,
		MessageID: messageID,
		Content:   content,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "channel_message_ack", func(e *rtapi.Envelope) *rtapi.ChannelMessageAck { return e.ChannelMessageAck })
}

// RemoveChatMessage deletes a previously sent chat message.
func (s *Socket) RemoveChatMessage(ctx context.Context, channelID, messageID string) (*rtapi.ChannelMessageAck, error) {
	call, err := s.send(ctx, &rtapi.Envelope{ChannelMessageRemove: &rtapi.ChannelMessageRemove{
		ChannelID: channelID,
		MessageID: messageID,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "channel_message_ack", func(e *rtapi.Envelope) *rtapi.ChannelMessageAck { return e.ChannelMessageAck })
}

// CreateMatch creates a relayed multiplayer match.
func (s *Socket) CreateMatch(ctx context.Context) (*rtapi.Match, error) {
	call, err := s.send(ctx, &rtapi.Envelope{MatchCreate: &rtapi.MatchCreate{}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "match", func(e *rtapi.Envelope) *rtapi.Match { return e.Match })
}

// JoinMatch joins the match announced by a matchmaker result, using the
// token for authoritative matches and the match id otherwise.
func (s *Socket) JoinMatch(ctx context.Context, matched *rtapi.MatchmakerMatched) (*rtapi.Match, error) {
	join := &rtapi.MatchJoin{}
	if matched.Token != "" {
		join.Token = matched.Token
	} else {
		join.MatchID = matched.MatchID
	}
	call, err := s.send(ctx, &rtapi.Envelope{MatchJoin: join}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "match", func(e *rtapi.Envelope) *rtapi.Match { return e.Match })
}

// JoinMatchByID joins a match by its id.
func (s *Socket) JoinMatchByID(ctx context.Context, matchID string, metadata map[string]string) (*rtapi.Match, error) {
	call, err := s.send(ctx, &rtapi.Envelope{MatchJoin: &rtapi.MatchJoin{
		MatchID:  matchID,
		Metadata: metadata,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "match", func(e *rtapi.Envelope) *rtapi.Match { return e.Match })
}

// LeaveMatch leaves a match. The server sends no acknowledgement.
func (s *Socket) LeaveMatch(ctx context.Context, matchID string) error {
	_, err := s.send(ctx, &rtapi.Envelope{MatchLeave: &rtapi.MatchLeave{MatchID: matchID}}, false)
	return err
}

// SendMatchState relays state to other match presences. An empty presence
// list broadcasts to the whole match. Fire and forget.
func (s *Socket) SendMatchState(ctx context.Context, matchID string, opCode int64, state []byte, presences []rtapi.UserPresence) error {
	_, err := s.send(ctx, &rtapi.Envelope{MatchDataSend: &rtapi.MatchDataSend{
		MatchID:   matchID,
		OpCode:    opCode,
		Data:      state,
		Presences: presences,
	}}, false)
	return err
}

// AddMatchmaker enters the matchmaker pool with a built query.
func (s *Socket) AddMatchmaker(ctx context.Context, m *matchmaker.Matchmaker) (*rtapi.MatchmakerTicket, error) {
	return s.AddMatchmakerManual(ctx, m.Query(), m.MinCount(), m.MaxCount(), m.StringProperties(), m.NumericProperties())
}

// AddMatchmakerManual enters the matchmaker pool with a raw query string.
func (s *Socket) AddMatchmakerManual(ctx context.Context, query string, minCount, maxCount int, stringProps map[string]string, numericProps map[string]float64) (*rtapi.MatchmakerTicket, error) {
	call, err := s.send(ctx, &rtapi.Envelope{MatchmakerAdd: &rtapi.MatchmakerAdd{
		MinCount:          minCount,
		MaxCount:          maxCount,
		Query:             query,
		StringProperties:  stringProps,
		NumericProperties: numericProps,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "matchmaker_ticket", func(e *rtapi.Envelope) *rtapi.MatchmakerTicket { return e.MatchmakerTicket })
}

// RemoveMatchmaker withdraws a matchmaker ticket. Fire and forget.
func (s *Socket) RemoveMatchmaker(ctx context.Context, ticket string) error {
	_, err := s.send(ctx, &rtapi.Envelope{MatchmakerRemove: &rtapi.MatchmakerRemove{Ticket: ticket}}, false)
	return err
}

// CreateParty creates a party. A closed party admits members through
// AcceptPartyMember.
func (s *Socket) CreateParty(ctx context.Context, open bool, maxSize int) (*rtapi.Party, error) {
	call, err := s.send(ctx, &rtapi.Envelope{PartyCreate: &rtapi.PartyCreate{Open: open, MaxSize: maxSize}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "party", func(e *rtapi.Envelope) *rtapi.Party { return e.Party })
}

// JoinParty asks to join a party. For closed parties the leader must accept
// the request before the party push arrives.
func (s *Socket) JoinParty(ctx context.Context, partyID string) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyJoin: &rtapi.PartyJoin{PartyID: partyID}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// LeaveParty leaves a party.
func (s *Socket) LeaveParty(ctx context.Context, partyID string) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyLeave: &rtapi.PartyLeave{PartyID: partyID}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// AcceptPartyMember admits a pending join request.
//
// Precondition: the caller must be the party leader.
func (s *Socket) AcceptPartyMember(ctx context.Context, partyID string, presence rtapi.UserPresence) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyAccept: &rtapi.PartyAccept{PartyID: partyID, Presence: presence}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// PromotePartyMember transfers party leadership.
//
// Precondition: the caller must be the party leader.
func (s *Socket) PromotePartyMember(ctx context.Context, partyID string, presence rtapi.UserPresence) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyPromote: &rtapi.PartyPromote{PartyID: partyID, Presence: presence}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// RemovePartyMember kicks a member or rejects a join request.
//
// Precondition: the caller must be the party leader.
func (s *Socket) RemovePartyMember(ctx context.Context, partyID string, presence rtapi.UserPresence) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyRemove: &rtapi.PartyRemove{PartyID: partyID, Presence: presence}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// CloseParty disbands a party.
//
// Precondition: the caller must be the party leader.
func (s *Socket) CloseParty(ctx context.Context, partyID string) error {
	call, err := s.send(ctx, &rtapi.Envelope{PartyClose: &rtapi.PartyClose{PartyID: partyID}}, true)
	if err != nil {
		return err
	}
	return awaitAck(ctx, call)
}

// ListPartyJoinRequests lists the pending join requests of a party.
func (s *Socket) ListPartyJoinRequests(ctx context.Context, partyID string) (*rtapi.PartyJoinRequest, error) {
	call, err := s.send(ctx, &rtapi.Envelope{PartyJoinRequestList: &rtapi.PartyJoinRequestList{PartyID: partyID}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "party_join_request", func(e *rtapi.Envelope) *rtapi.PartyJoinRequest { return e.PartyJoinRequest })
}

// AddMatchmakerParty enters the whole party into the matchmaker pool.
func (s *Socket) AddMatchmakerParty(ctx context.Context, partyID, query string, minCount, maxCount int, stringProps map[string]string, numericProps map[string]float64) (*rtapi.PartyMatchmakerTicket, error) {
	call, err := s.send(ctx, &rtapi.Envelope{PartyMatchmakerAdd: &rtapi.PartyMatchmakerAdd{
		PartyID:           partyID,
		MinCount:          minCount,
		MaxCount:          maxCount,
		Query:             query,
		StringProperties:  stringProps,
		NumericProperties: numericProps,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "party_matchmaker_ticket", func(e *rtapi.Envelope) *rtapi.PartyMatchmakerTicket { return e.PartyMatchmakerTicket })
}

// RemoveMatchmakerParty withdraws a party matchmaker ticket. Fire and forget.
func (s *Socket) RemoveMatchmakerParty(ctx context.Context, partyID, ticket string) error {
	_, err := s.send(ctx, &rtapi.Envelope{PartyMatchmakerRemove: &rtapi.PartyMatchmakerRemove{PartyID: partyID, Ticket: ticket}}, false)
	return err
}

// SendPartyData relays data to the other party members. Fire and forget.
func (s *Socket) SendPartyData(ctx context.Context, partyID string, opCode int64, data []byte) error {
	_, err := s.send(ctx, &rtapi.Envelope{PartyDataSend: &rtapi.PartyDataSend{
		PartyID: partyID,
		OpCode:  opCode,
		Data:    data,
	}}, false)
	return err
}

// FollowUsers subscribes to status updates for the given users and returns
// their current status.
func (s *Socket) FollowUsers(ctx context.Context, userIDs, usernames []string) (*rtapi.Status, error) {
	call, err := s.send(ctx, &rtapi.Envelope{StatusFollow: &rtapi.StatusFollow{
		UserIDs:   userIDs,
		Usernames: usernames,
	}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "status", func(e *rtapi.Envelope) *rtapi.Status { return e.Status })
}

// UnfollowUsers stops status updates for the given users. Fire and forget.
func (s *Socket) UnfollowUsers(ctx context.Context, userIDs []string) error {
	_, err := s.send(ctx, &rtapi.Envelope{StatusUnfollow: &rtapi.StatusUnfollow{UserIDs: userIDs}}, false)
	return err
}

// UpdateStatus publishes the caller's status message to followers. Fire and
// forget.
func (s *Socket) UpdateStatus(ctx context.Context, status string) error {
	_, err := s.send(ctx, &rtapi.Envelope{StatusUpdate: &rtapi.StatusUpdate{Status: status}}, false)
	return err
}

// Rpc calls a server RPC function over the socket.
func (s *Socket) Rpc(ctx context.Context, funcID, payload string) (*api.Rpc, error) {
	call, err := s.send(ctx, &rtapi.Envelope{Rpc: &api.Rpc{ID: funcID, Payload: payload}}, true)
	if err != nil {
		return nil, err
	}
	return awaitPayload(ctx, call, "rpc", func(e *rtapi.Envelope) *api.Rpc { return e.Rpc })
}
