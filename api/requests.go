package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// AuthenticateEmail builds a request against the email authentication
// endpoint. The server key travels as basic auth.
func AuthenticateEmail(serverKey string, account *AccountEmail, create bool, username string) (*Request, error) {
	req, err := newRequest(http.MethodPost, "/v2/account/authenticate/email", BasicAuth(serverKey, ""), account)
	if err != nil {
		return nil, err
	}
	req.Query.Set("create", strconv.FormatBool(create))
	if username != "" {
		req.Query.Set("username", username)
	}
	return req, nil
}

// AuthenticateDevice builds a request against the device authentication
// endpoint.
func AuthenticateDevice(serverKey string, account *AccountDevice, create bool, username string) (*Request, error) {
	req, err := newRequest(http.MethodPost, "/v2/account/authenticate/device", BasicAuth(serverKey, ""), account)
	if err != nil {
		return nil, err
	}
	req.Query.Set("create", strconv.FormatBool(create))
	if username != "" {
		req.Query.Set("username", username)
	}
	return req, nil
}

// AuthenticateCustom builds a request against the custom-id authentication
// endpoint.
func AuthenticateCustom(serverKey string, account *AccountCustom, create bool, username string) (*Request, error) {
	req, err := newRequest(http.MethodPost, "/v2/account/authenticate/custom", BasicAuth(serverKey, ""), account)
	if err != nil {
		return nil, err
	}
	req.Query.Set("create", strconv.FormatBool(create))
	if username != "" {
		req.Query.Set("username", username)
	}
	return req, nil
}

// SessionRefresh exchanges a refresh token for a fresh session token pair.
func SessionRefresh(serverKey, refreshToken string) (*Request, error) {
	body := map[string]string{"token": refreshToken}
	return newRequest(http.MethodPost, "/v2/account/session/refresh", BasicAuth(serverKey, ""), body)
}

// SessionLogout invalidates both tokens of a session on the server.
func SessionLogout(token, sessionToken, refreshToken string) (*Request, error) {
	body := map[string]string{"token": sessionToken, "refresh_token": refreshToken}
	return newRequest(http.MethodPost, "/v2/session/logout", BearerAuth(token), body)
}

// GetAccount fetches the authenticated user's own account.
func GetAccount(token string) (*Request, error) {
	return newRequest(http.MethodGet, "/v2/account", BearerAuth(token), nil)
}

// UpdateAccount applies a partial update to the authenticated account.
func UpdateAccount(token string, update *UpdateAccountRequest) (*Request, error) {
	return newRequest(http.MethodPut, "/v2/account", BearerAuth(token), update)
}

// ReadStorageObjects fetches a batch of objects by collection, key and owner.
func ReadStorageObjects(token string, ids []ReadStorageObjectID) (*Request, error) {
	body := map[string]any{"object_ids": ids}
	return newRequest(http.MethodPost, "/v2/storage", BearerAuth(token), body)
}

// WriteStorageObjects writes a batch of objects in one round trip.
func WriteStorageObjects(token string, objects []WriteStorageObject) (*Request, error) {
	body := map[string]any{"objects": objects}
	return newRequest(http.MethodPut, "/v2/storage", BearerAuth(token), body)
}

// DeleteStorageObjects removes a batch of objects.
func DeleteStorageObjects(token string, ids []DeleteStorageObjectID) (*Request, error) {
	body := map[string]any{"object_ids": ids}
	return newRequest(http.MethodPut, "/v2/storage/delete", BearerAuth(token), body)
}

// ListStorageObjects pages through a collection. An empty userID lists
// publicly readable objects.
func ListStorageObjects(token, collection, userID string, limit int, cursor string) (*Request, error) {
	req, err := newRequest(http.MethodGet, "/v2/storage/"+url.PathEscape(collection), BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		req.Query.Set("user_id", userID)
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		req.Query.Set("cursor", cursor)
	}
	return req, nil
}

// RpcFunc calls a server RPC function with a JSON payload.
func RpcFunc(token, id, payload string) (*Request, error) {
	req, err := newRequest(http.MethodPost, "/v2/rpc/"+url.PathEscape(id), BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	if payload != "" {
		req.Body = []byte(payload)
	}
	return req, nil
}

// AddFriends sends friend invites by id and/or username.
func AddFriends(token string, ids, usernames []string) (*Request, error) {
	req, err := newRequest(http.MethodPost, "/v2/friend", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		req.Query.Add("ids", id)
	}
	for _, u := range usernames {
		req.Query.Add("usernames", u)
	}
	return req, nil
}

// DeleteFriends removes friends or cancels invites by id and/or username.
func DeleteFriends(token string, ids, usernames []string) (*Request, error) {
	req, err := newRequest(http.MethodDelete, "/v2/friend", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		req.Query.Add("ids", id)
	}
	for _, u := range usernames {
		req.Query.Add("usernames", u)
	}
	return req, nil
}

// ListFriends pages through the friend list, optionally filtered by state.
func ListFriends(token string, limit int, state int, cursor string) (*Request, error) {
	req, err := newRequest(http.MethodGet, "/v2/friend", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}
	if state >= 0 {
		req.Query.Set("state", strconv.Itoa(state))
	}
	if cursor != "" {
		req.Query.Set("cursor", cursor)
	}
	return req, nil
}

// WriteLeaderboardRecordRequest submits a score to a leaderboard.
func WriteLeaderboardRecordRequest(token, leaderboardID string, record *WriteLeaderboardRecord) (*Request, error) {
	path := fmt.Sprintf("/v2/leaderboard/%s", url.PathEscape(leaderboardID))
	return newRequest(http.MethodPost, path, BearerAuth(token), record)
}

// ListLeaderboardRecords pages through a leaderboard, optionally restricted
// to the given owner ids.
func ListLeaderboardRecords(token, leaderboardID string, ownerIDs []string, limit int, cursor string) (*Request, error) {
	path := fmt.Sprintf("/v2/leaderboard/%s", url.PathEscape(leaderboardID))
	req, err := newRequest(http.MethodGet, path, BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	for _, id := range ownerIDs {
		req.Query.Add("owner_ids", id)
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		req.Query.Set("cursor", cursor)
	}
	return req, nil
}

// ListMatches lists running matches filtered by size and label.
func ListMatches(token string, limit int, authoritative *bool, label string, minSize, maxSize int, query string) (*Request, error) {
	req, err := newRequest(http.MethodGet, "/v2/match", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}
	if authoritative != nil {
		req.Query.Set("authoritative", strconv.FormatBool(*authoritative))
	}
	if label != "" {
		req.Query.Set("label", label)
	}
	if minSize > 0 {
		req.Query.Set("min_size", strconv.Itoa(minSize))
	}
	if maxSize > 0 {
		req.Query.Set("max_size", strconv.Itoa(maxSize))
	}
	if query != "" {
		req.Query.Set("query", query)
	}
	return req, nil
}

// ListNotifications pages through pending notifications.
func ListNotifications(token string, limit int, cacheableCursor string) (*Request, error) {
	req, err := newRequest(http.MethodGet, "/v2/notification", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}
	if cacheableCursor != "" {
		req.Query.Set("cacheable_cursor", cacheableCursor)
	}
	return req, nil
}

// DeleteNotifications acknowledges and removes notifications by id.
func DeleteNotifications(token string, ids []string) (*Request, error) {
	req, err := newRequest(http.MethodDelete, "/v2/notification", BearerAuth(token), nil)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		req.Query.Add("ids", id)
	}
	return req, nil
}
