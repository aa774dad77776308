package rtapi_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/rtapi"
)

func TestEnvelopeClass(t *testing.T) {
	cases := []struct {
		name string
		env  rtapi.Envelope
		want rtapi.MessageClass
	}{
		{"empty", rtapi.Envelope{}, rtapi.ClassNone},
		{"cid only", rtapi.Envelope{Cid: "42"}, rtapi.ClassNone},
		{"channel", rtapi.Envelope{Channel: &rtapi.Channel{ID: "c1"}}, rtapi.ClassChannel},
		{"channel message", rtapi.Envelope{ChannelMessage: &api.ChannelMessage{MessageID: "m1"}}, rtapi.ClassChannelMessage},
		{"match data", rtapi.Envelope{MatchData: &rtapi.MatchData{MatchID: "m1"}}, rtapi.ClassMatchData},
		{"notifications", rtapi.Envelope{Notifications: &rtapi.Notifications{}}, rtapi.ClassNotifications},
		{"party data", rtapi.Envelope{PartyData: &rtapi.PartyData{PartyID: "p1"}}, rtapi.ClassPartyData},
		{"error", rtapi.Envelope{Error: &rtapi.Error{Code: 4}}, rtapi.ClassError},
		{"pong", rtapi.Envelope{Pong: &rtapi.Pong{}}, rtapi.ClassPong},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.env.Class())
		})
	}
}

func TestEnvelopeClassErrorWins(t *testing.T) {
	// A frame carrying an error payload classifies as the error even if other
	// fields are set.
	env := rtapi.Envelope{
		Error:   &rtapi.Error{Code: 4, Message: "match not found"},
		Channel: &rtapi.Channel{ID: "c1"},
	}
	assert.Equal(t, rtapi.ClassError, env.Class())
}

func TestMessageClassStrings(t *testing.T) {
	assert.Equal(t, "channel_message", rtapi.ClassChannelMessage.String())
	assert.Equal(t, "party_data", rtapi.ClassPartyData.String())
	assert.Equal(t, "none", rtapi.ClassNone.String())
}

func TestEnvelopeHeaderRecoversCid(t *testing.T) {
	// The payload is malformed but the header still decodes.
	frame := []byte(`{"cid":"17","match_data":{"op_code":17}}`)

	var env rtapi.Envelope
	require.Error(t, json.Unmarshal(frame, &env))

	var header rtapi.EnvelopeHeader
	require.NoError(t, json.Unmarshal(frame, &header))
	assert.Equal(t, "17", header.Cid)
}

func TestPartyDataWireFormat(t *testing.T) {
	frame := []byte(`{"party_data":{"party_id":"p1","op_code":"7","data":"aGVsbG8="}}`)

	var env rtapi.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	require.NotNil(t, env.PartyData)
	assert.Equal(t, "p1", env.PartyData.PartyID)
	assert.Equal(t, int64(7), env.PartyData.OpCode)
	assert.Equal(t, []byte("hello"), env.PartyData.Data)

	out, err := json.Marshal(env.PartyData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"party_id":"p1","op_code":"7","data":"aGVsbG8="}`, string(out))
}

func TestPartyDataRejectsBadOpCode(t *testing.T) {
	var pd rtapi.PartyData
	err := json.Unmarshal([]byte(`{"op_code":"not-a-number"}`), &pd)
	require.Error(t, err)
}

func TestMatchDataWireFormat(t *testing.T) {
	frame := []byte(`{"match_data":{"match_id":"m1","op_code":"3","data":"cGluZw=="}}`)

	var env rtapi.Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	require.NotNil(t, env.MatchData)
	assert.Equal(t, int64(3), env.MatchData.OpCode)
	assert.Equal(t, []byte("ping"), env.MatchData.Data)
}

func TestOutboundEnvelopeOmitsEmptyFields(t *testing.T) {
	env := rtapi.Envelope{
		Cid:         "1",
		MatchCreate: &rtapi.MatchCreate{},
	}
	out, err := json.Marshal(&env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cid":"1","match_create":{}}`, string(out))
}
