package api

// Session is returned by the authenticate and session refresh endpoints.
type Session struct {
	Created      bool   `json:"created,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AccountEmail carries email authentication arguments.
type AccountEmail struct {
	Email    string            `json:"email,omitempty"`
	Password string            `json:"password,omitempty"`
	Vars     map[string]string `json:"vars,omitempty"`
}

// AccountDevice carries device-id authentication arguments.
type AccountDevice struct {
	ID   string            `json:"id,omitempty"`
	Vars map[string]string `json:"vars,omitempty"`
}

// AccountCustom carries custom-id authentication arguments.
type AccountCustom struct {
	ID   string            `json:"id,omitempty"`
	Vars map[string]string `json:"vars,omitempty"`
}

// User is the public profile of a user.
type User struct {
	ID          string `json:"id,omitempty"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	LangTag     string `json:"lang_tag,omitempty"`
	Location    string `json:"location,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	Metadata    string `json:"metadata,omitempty"`
	Online      bool   `json:"online,omitempty"`
	CreateTime  string `json:"create_time,omitempty"`
	UpdateTime  string `json:"update_time,omitempty"`
}

// Account is the authenticated user's own account.
type Account struct {
	User        *User    `json:"user,omitempty"`
	Wallet      string   `json:"wallet,omitempty"`
	Email       string   `json:"email,omitempty"`
	Devices     []Device `json:"devices,omitempty"`
	CustomID    string   `json:"custom_id,omitempty"`
	VerifyTime  string   `json:"verify_time,omitempty"`
	DisableTime string   `json:"disable_time,omitempty"`
}

// Device is a device identity bound to an account.
type Device struct {
	ID   string            `json:"id,omitempty"`
	Vars map[string]string `json:"vars,omitempty"`
}

// UpdateAccountRequest carries partial account updates; empty fields are left
// untouched by the server.
type UpdateAccountRequest struct {
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	LangTag     string `json:"lang_tag,omitempty"`
	Location    string `json:"location,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// Rpc is a server RPC call and its result payload.
type Rpc struct {
	ID      string `json:"id,omitempty"`
	Payload string `json:"payload,omitempty"`
	HTTPKey string `json:"http_key,omitempty"`
}

// StorageObject is one stored object with ownership and version metadata.
type StorageObject struct {
	Collection      string `json:"collection,omitempty"`
	Key             string `json:"key,omitempty"`
	UserID          string `json:"user_id,omitempty"`
	Value           string `json:"value,omitempty"`
	Version         string `json:"version,omitempty"`
	PermissionRead  int    `json:"permission_read,omitempty"`
	PermissionWrite int    `json:"permission_write,omitempty"`
	CreateTime      string `json:"create_time,omitempty"`
	UpdateTime      string `json:"update_time,omitempty"`
}

// StorageObjects is a batch of stored objects.
type StorageObjects struct {
	Objects []StorageObject `json:"objects,omitempty"`
}

// StorageObjectList is a paged listing of stored objects.
type StorageObjectList struct {
	Objects []StorageObject `json:"objects,omitempty"`
	Cursor  string          `json:"cursor,omitempty"`
}

// WriteStorageObject describes one object write.
type WriteStorageObject struct {
	Collection      string `json:"collection,omitempty"`
	Key             string `json:"key,omitempty"`
	Value           string `json:"value,omitempty"`
	Version         string `json:"version,omitempty"`
	PermissionRead  int    `json:"permission_read,omitempty"`
	PermissionWrite int    `json:"permission_write,omitempty"`
}

// StorageObjectAck acknowledges one accepted write.
type StorageObjectAck struct {
	Collection string `json:"collection,omitempty"`
	Key        string `json:"key,omitempty"`
	UserID     string `json:"user_id,omitempty"`
	Version    string `json:"version,omitempty"`
}

// StorageObjectAcks acknowledges a batch of writes.
type StorageObjectAcks struct {
	Acks []StorageObjectAck `json:"acks,omitempty"`
}

// ReadStorageObjectID addresses one object to read.
type ReadStorageObjectID struct {
	Collection string `json:"collection,omitempty"`
	Key        string `json:"key,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// DeleteStorageObjectID addresses one object to delete, optionally guarded by
// a version for optimistic concurrency.
type DeleteStorageObjectID struct {
	Collection string `json:"collection,omitempty"`
	Key        string `json:"key,omitempty"`
	Version    string `json:"version,omitempty"`
}

// Friend is a user plus the friendship state (0 friend, 1 invite sent,
// 2 invite received, 3 blocked).
type Friend struct {
	User  *User `json:"user,omitempty"`
	State int   `json:"state,omitempty"`
}

// FriendList is a paged friend listing.
type FriendList struct {
	Friends []Friend `json:"friends,omitempty"`
	Cursor  string   `json:"cursor,omitempty"`
}

// Match is one running match visible to listings.
type Match struct {
	MatchID       string `json:"match_id,omitempty"`
	Authoritative bool   `json:"authoritative,omitempty"`
	Label         string `json:"label,omitempty"`
	Size          int    `json:"size,omitempty"`
}

// MatchList is the result of a match listing.
type MatchList struct {
	Matches []Match `json:"matches,omitempty"`
}

// ChannelMessage is one persisted chat message. It appears both in history
// listings and as a realtime push.
type ChannelMessage struct {
	ChannelID  string `json:"channel_id,omitempty"`
	MessageID  string `json:"message_id,omitempty"`
	Code       int    `json:"code,omitempty"`
	SenderID   string `json:"sender_id,omitempty"`
	Username   string `json:"username,omitempty"`
	Content    string `json:"content,omitempty"`
	CreateTime string `json:"create_time,omitempty"`
	UpdateTime string `json:"update_time,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
	RoomName   string `json:"room_name,omitempty"`
	GroupID    string `json:"group_id,omitempty"`
	UserIDOne  string `json:"user_id_one,omitempty"`
	UserIDTwo  string `json:"user_id_two,omitempty"`
}

// Notification is one in-app notification.
type Notification struct {
	ID         string `json:"id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content,omitempty"`
	Code       int    `json:"code,omitempty"`
	SenderID   string `json:"sender_id,omitempty"`
	CreateTime string `json:"create_time,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
}

// NotificationList is a paged notification listing.
type NotificationList struct {
	Notifications   []Notification `json:"notifications,omitempty"`
	CacheableCursor string         `json:"cacheable_cursor,omitempty"`
}

// LeaderboardRecord is one score entry on a leaderboard.
type LeaderboardRecord struct {
	LeaderboardID string `json:"leaderboard_id,omitempty"`
	OwnerID       string `json:"owner_id,omitempty"`
	Username      string `json:"username,omitempty"`
	Score         int64  `json:"score,string,omitempty"`
	Subscore      int64  `json:"subscore,string,omitempty"`
	NumScore      int    `json:"num_score,omitempty"`
	Metadata      string `json:"metadata,omitempty"`
	Rank          int64  `json:"rank,string,omitempty"`
	CreateTime    string `json:"create_time,omitempty"`
	UpdateTime    string `json:"update_time,omitempty"`
}

// LeaderboardRecordList is a paged leaderboard listing.
type LeaderboardRecordList struct {
	Records      []LeaderboardRecord `json:"records,omitempty"`
	OwnerRecords []LeaderboardRecord `json:"owner_records,omitempty"`
	NextCursor   string              `json:"next_cursor,omitempty"`
	PrevCursor   string              `json:"prev_cursor,omitempty"`
}

// WriteLeaderboardRecord carries one score submission.
type WriteLeaderboardRecord struct {
	Score    int64  `json:"score,string"`
	Subscore int64  `json:"subscore,string,omitempty"`
	Metadata string `json:"metadata,omitempty"`
}
