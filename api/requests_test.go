package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gamelink/api"
)

func TestAuthenticateEmailRequest(t *testing.T) {
	req, err := api.AuthenticateEmail("serverkey", &api.AccountEmail{
		Email:    "alice@example.com",
		Password: "hunter2",
	}, true, "alice")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/v2/account/authenticate/email", req.Path)
	assert.Equal(t, api.AuthBasic, req.Auth.Scheme)
	assert.Equal(t, "serverkey", req.Auth.Username)
	assert.Empty(t, req.Auth.Password)
	assert.Equal(t, "true", req.Query.Get("create"))
	assert.Equal(t, "alice", req.Query.Get("username"))

	var body api.AccountEmail
	require.NoError(t, json.Unmarshal(req.Body, &body))
	assert.Equal(t, "alice@example.com", body.Email)
}

func TestAuthenticateDeviceOmitsEmptyUsername(t *testing.T) {
	req, err := api.AuthenticateDevice("serverkey", &api.AccountDevice{ID: "device-1"}, false, "")
	require.NoError(t, err)
	assert.Equal(t, "false", req.Query.Get("create"))
	assert.False(t, req.Query.Has("username"))
}

func TestSessionLogoutRequest(t *testing.T) {
	req, err := api.SessionLogout("bearer", "session-token", "refresh-token")
	require.NoError(t, err)

	assert.Equal(t, "/v2/session/logout", req.Path)
	assert.Equal(t, api.AuthBearer, req.Auth.Scheme)
	assert.Equal(t, "bearer", req.Auth.Token)
	assert.JSONEq(t, `{"token":"session-token","refresh_token":"refresh-token"}`, string(req.Body))
}

func TestStorageRequests(t *testing.T) {
	read, err := api.ReadStorageObjects("bearer", []api.ReadStorageObjectID{
		{Collection: "saves", Key: "slot1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, read.Method)
	assert.Equal(t, "/v2/storage", read.Path)
	assert.JSONEq(t, `{"object_ids":[{"collection":"saves","key":"slot1"}]}`, string(read.Body))

	write, err := api.WriteStorageObjects("bearer", []api.WriteStorageObject{
		{Collection: "saves", Key: "slot1", Value: `{"level":3}`},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, write.Method)
	assert.Equal(t, "/v2/storage", write.Path)

	del, err := api.DeleteStorageObjects("bearer", []api.DeleteStorageObjectID{
		{Collection: "saves", Key: "slot1"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, del.Method)
	assert.Equal(t, "/v2/storage/delete", del.Path)
}

func TestListStorageObjectsQuery(t *testing.T) {
	req, err := api.ListStorageObjects("bearer", "player saves", "user-1", 20, "cursor-a")
	require.NoError(t, err)

	assert.Equal(t, "/v2/storage/player%20saves", req.Path)
	assert.Equal(t, "user-1", req.Query.Get("user_id"))
	assert.Equal(t, "20", req.Query.Get("limit"))
	assert.Equal(t, "cursor-a", req.Query.Get("cursor"))
}

func TestRpcCarriesRawPayload(t *testing.T) {
	req, err := api.RpcFunc("bearer", "grant_reward", `{"item":"sword"}`)
	require.NoError(t, err)

	assert.Equal(t, "/v2/rpc/grant_reward", req.Path)
	assert.Equal(t, `{"item":"sword"}`, string(req.Body))

	empty, err := api.RpcFunc("bearer", "heartbeat", "")
	require.NoError(t, err)
	assert.Empty(t, empty.Body)
}

func TestFriendRequestsRepeatQueryValues(t *testing.T) {
	req, err := api.AddFriends("bearer", []string{"u1", "u2"}, []string{"alice"})
	require.NoError(t, err)

	assert.Equal(t, []string{"u1", "u2"}, req.Query["ids"])
	assert.Equal(t, []string{"alice"}, req.Query["usernames"])
}

func TestListFriendsStateFilter(t *testing.T) {
	all, err := api.ListFriends("bearer", 10, -1, "")
	require.NoError(t, err)
	assert.False(t, all.Query.Has("state"))

	banned, err := api.ListFriends("bearer", 10, 3, "")
	require.NoError(t, err)
	assert.Equal(t, "3", banned.Query.Get("state"))
}

func TestListMatchesAuthoritativeFilter(t *testing.T) {
	any, err := api.ListMatches("bearer", 10, nil, "", 0, 0, "")
	require.NoError(t, err)
	assert.False(t, any.Query.Has("authoritative"))

	authoritative := false
	relayed, err := api.ListMatches("bearer", 10, &authoritative, "", 2, 4, "")
	require.NoError(t, err)
	assert.Equal(t, "false", relayed.Query.Get("authoritative"))
	assert.Equal(t, "2", relayed.Query.Get("min_size"))
	assert.Equal(t, "4", relayed.Query.Get("max_size"))
}

func TestLeaderboardPathEscaping(t *testing.T) {
	req, err := api.WriteLeaderboardRecordRequest("bearer", "weekly/top", &api.WriteLeaderboardRecord{Score: 100})
	require.NoError(t, err)
	assert.Equal(t, "/v2/leaderboard/weekly%2Ftop", req.Path)
}
