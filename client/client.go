// Package client implements the request channel: a stateless HTTP client for
// authentication, accounts, storage, friends, leaderboards and RPC.
//
// Every operation is one round trip through an Adapter. Authenticated
// operations refresh the session ahead of token expiry when a refresh token
// is available.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	gamelink "github.com/cory-johannsen/gamelink"
	"github.com/cory-johannsen/gamelink/api"
	"github.com/cory-johannsen/gamelink/config"
	"github.com/cory-johannsen/gamelink/session"
)

// refreshWindow is how far ahead of token expiry a session is refreshed.
const refreshWindow = 5 * time.Minute

// RestClient issues request-channel operations against one server.
// It is safe for concurrent use.
type RestClient struct {
	adapter   Adapter
	serverKey string
	logger    *zap.Logger
}

// New builds a RestClient over the given adapter.
//
// Precondition: adapter must be non-nil and serverKey non-empty.
func New(adapter Adapter, serverKey string, logger *zap.Logger) *RestClient {
	return &RestClient{
		adapter:   adapter,
		serverKey: serverKey,
		logger:    logger.Named("client"),
	}
}

// NewFromConfig assembles the default adapter chain: HTTP transport wrapped
// with the configured retry policy.
func NewFromConfig(cfg config.Config, logger *zap.Logger) *RestClient {
	var adapter Adapter = NewHTTPAdapter(cfg.Server, logger)
	if cfg.Retry.MaxRetries > 0 {
		adapter = NewRetryAdapter(adapter, cfg.Retry, logger)
	}
	return New(adapter, cfg.Server.ServerKey, logger)
}

// send performs one round trip and decodes the response body into T.
func send[T any](ctx context.Context, c *RestClient, req *api.Request) (*T, error) {
	resp, err := c.adapter.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Status < 200 || resp.Status > 299 {
		return nil, decodeServerError(resp)
	}
	out := new(T)
	if len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return nil, gamelink.NewError(gamelink.KindDecode, fmt.Sprintf("decoding %s %s response: %v", req.Method, req.Path, err), err)
		}
	}
	return out, nil
}

func decodeServerError(resp *api.Response) error {
	var payload api.ServerError
	message := string(resp.Body)
	if err := json.Unmarshal(resp.Body, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	return gamelink.NewServerError(resp.Status, message)
}

// ensureFresh refreshes the session ahead of expiry when possible. It is a
// no-op for sessions without a refresh token.
func (c *RestClient) ensureFresh(ctx context.Context, s *session.Session) error {
	now := time.Now()
	if !s.WillExpire(now.Add(refreshWindow)) {
		return nil
	}
	if s.RefreshToken() == "" || s.RefreshExpired(now) {
		if s.Expired(now) {
			return gamelink.NewError(gamelink.KindNotConnected, "session expired and no usable refresh token", nil)
		}
		return nil
	}
	return c.SessionRefresh(ctx, s)
}

// AuthenticateEmail authenticates with email and password, creating the
// account when create is true.
func (c *RestClient) AuthenticateEmail(ctx context.Context, email, password string, create bool, username string, vars map[string]string) (*session.Session, error) {
	req, err := api.AuthenticateEmail(c.serverKey, &api.AccountEmail{Email: email, Password: password, Vars: vars}, create, username)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, req)
}

// AuthenticateDevice authenticates with a device id.
func (c *RestClient) AuthenticateDevice(ctx context.Context, deviceID string, create bool, username string, vars map[string]string) (*session.Session, error) {
	req, err := api.AuthenticateDevice(c.serverKey, &api.AccountDevice{ID: deviceID, Vars: vars}, create, username)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, req)
}

// AuthenticateCustom authenticates with a custom id.
func (c *RestClient) AuthenticateCustom(ctx context.Context, customID string, create bool, username string, vars map[string]string) (*session.Session, error) {
	req, err := api.AuthenticateCustom(c.serverKey, &api.AccountCustom{ID: customID, Vars: vars}, create, username)
	if err != nil {
		return nil, err
	}
	return c.authenticate(ctx, req)
}

func (c *RestClient) authenticate(ctx context.Context, req *api.Request) (*session.Session, error) {
	resp, err := send[api.Session](ctx, c, req)
	if err != nil {
		return nil, err
	}
	s, err := session.New(resp.Token, resp.RefreshToken, resp.Created)
	if err != nil {
		return nil, err
	}
	c.logger.Info("authenticated",
		zap.String("user_id", s.UserID()),
		zap.String("username", s.Username()),
		zap.Bool("created", s.Created()),
	)
	return s, nil
}

// SessionRefresh exchanges the refresh token for a new token pair and swaps
// it into the session.
func (c *RestClient) SessionRefresh(ctx context.Context, s *session.Session) error {
	req, err := api.SessionRefresh(c.serverKey, s.RefreshToken())
	if err != nil {
		return err
	}
	resp, err := send[api.Session](ctx, c, req)
	if err != nil {
		return err
	}
	if err := s.Replace(resp.Token, resp.RefreshToken); err != nil {
		return err
	}
	c.logger.Debug("session refreshed", zap.String("user_id", s.UserID()))
	return nil
}

// SessionLogout invalidates the session's tokens on the server.
func (c *RestClient) SessionLogout(ctx context.Context, s *session.Session) error {
	req, err := api.SessionLogout(s.AuthToken(), s.AuthToken(), s.RefreshToken())
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}

// GetAccount fetches the authenticated user's own account.
func (c *RestClient) GetAccount(ctx context.Context, s *session.Session) (*api.Account, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.GetAccount(s.AuthToken())
	if err != nil {
		return nil, err
	}
	return send[api.Account](ctx, c, req)
}

// UpdateAccount applies a partial update to the authenticated account.
func (c *RestClient) UpdateAccount(ctx context.Context, s *session.Session, update *api.UpdateAccountRequest) error {
	if err := c.ensureFresh(ctx, s); err != nil {
		return err
	}
	req, err := api.UpdateAccount(s.AuthToken(), update)
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}

// ReadStorageObjects fetches a batch of storage objects.
func (c *RestClient) ReadStorageObjects(ctx context.Context, s *session.Session, ids []api.ReadStorageObjectID) (*api.StorageObjects, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ReadStorageObjects(s.AuthToken(), ids)
	if err != nil {
		return nil, err
	}
	return send[api.StorageObjects](ctx, c, req)
}

// WriteStorageObjects writes a batch of storage objects.
func (c *RestClient) WriteStorageObjects(ctx context.Context, s *session.Session, objects []api.WriteStorageObject) (*api.StorageObjectAcks, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.WriteStorageObjects(s.AuthToken(), objects)
	if err != nil {
		return nil, err
	}
	return send[api.StorageObjectAcks](ctx, c, req)
}

// DeleteStorageObjects removes a batch of storage objects.
func (c *RestClient) DeleteStorageObjects(ctx context.Context, s *session.Session, ids []api.DeleteStorageObjectID) error {
	if err := c.ensureFresh(ctx, s); err != nil {
		return err
	}
	req, err := api.DeleteStorageObjects(s.AuthToken(), ids)
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}

// ListStorageObjects pages through a storage collection.
func (c *RestClient) ListStorageObjects(ctx context.Context, s *session.Session, collection, userID string, limit int, cursor string) (*api.StorageObjectList, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ListStorageObjects(s.AuthToken(), collection, userID, limit, cursor)
	if err != nil {
		return nil, err
	}
	return send[api.StorageObjectList](ctx, c, req)
}

// Rpc calls a server RPC function. The payload and result are raw JSON.
func (c *RestClient) Rpc(ctx context.Context, s *session.Session, id, payload string) (*api.Rpc, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.RpcFunc(s.AuthToken(), id, payload)
	if err != nil {
		return nil, err
	}
	return send[api.Rpc](ctx, c, req)
}

// AddFriends sends friend invites by id and/or username.
func (c *RestClient) AddFriends(ctx context.Context, s *session.Session, ids, usernames []string) error {
	if err := c.ensureFresh(ctx, s); err != nil {
		return err
	}
	req, err := api.AddFriends(s.AuthToken(), ids, usernames)
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}

// DeleteFriends removes friends or cancels invites.
func (c *RestClient) DeleteFriends(ctx context.Context, s *session.Session, ids, usernames []string) error {
	if err := c.ensureFresh(ctx, s); err != nil {
		return err
	}
	req, err := api.DeleteFriends(s.AuthToken(), ids, usernames)
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}

// ListFriends pages through the friend list. A negative state lists all
// friendship states.
func (c *RestClient) ListFriends(ctx context.Context, s *session.Session, limit, state int, cursor string) (*api.FriendList, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ListFriends(s.AuthToken(), limit, state, cursor)
	if err != nil {
		return nil, err
	}
	return send[api.FriendList](ctx, c, req)
}

// WriteLeaderboardRecord submits a score to a leaderboard.
func (c *RestClient) WriteLeaderboardRecord(ctx context.Context, s *session.Session, leaderboardID string, record *api.WriteLeaderboardRecord) (*api.LeaderboardRecord, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.WriteLeaderboardRecordRequest(s.AuthToken(), leaderboardID, record)
	if err != nil {
		return nil, err
	}
	return send[api.LeaderboardRecord](ctx, c, req)
}

// ListLeaderboardRecords pages through a leaderboard.
func (c *RestClient) ListLeaderboardRecords(ctx context.Context, s *session.Session, leaderboardID string, ownerIDs []string, limit int, cursor string) (*api.LeaderboardRecordList, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ListLeaderboardRecords(s.AuthToken(), leaderboardID, ownerIDs, limit, cursor)
	if err != nil {
		return nil, err
	}
	return send[api.LeaderboardRecordList](ctx, c, req)
}

// ListMatches lists running matches.
func (c *RestClient) ListMatches(ctx context.Context, s *session.Session, limit int, authoritative *bool, label string, minSize, maxSize int, query string) (*api.MatchList, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ListMatches(s.AuthToken(), limit, authoritative, label, minSize, maxSize, query)
	if err != nil {
		return nil, err
	}
	return send[api.MatchList](ctx, c, req)
}

// ListNotifications pages through pending notifications.
func (c *RestClient) ListNotifications(ctx context.Context, s *session.Session, limit int, cacheableCursor string) (*api.NotificationList, error) {
	if err := c.ensureFresh(ctx, s); err != nil {
		return nil, err
	}
	req, err := api.ListNotifications(s.AuthToken(), limit, cacheableCursor)
	if err != nil {
		return nil, err
	}
	return send[api.NotificationList](ctx, c, req)
}

// DeleteNotifications acknowledges and removes notifications by id.
func (c *RestClient) DeleteNotifications(ctx context.Context, s *session.Session, ids []string) error {
	if err := c.ensureFresh(ctx, s); err != nil {
		return err
	}
	req, err := api.DeleteNotifications(s.AuthToken(), ids)
	if err != nil {
		return err
	}
	_, err = send[struct{}](ctx, c, req)
	return err
}
