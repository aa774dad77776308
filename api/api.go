// Package api defines the REST wire contract of the Gunchete backend: the
// opaque request/response unit exchanged with a client.Adapter, the typed
// payloads it carries, and builder functions for every endpoint the client
// exposes. Payload encoding is JSON; the adapter never interprets it.
package api

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// AuthScheme selects how a request authenticates against the server.
type AuthScheme int

const (
	// AuthBasic authenticates with the server key and password. Used by the
	// authenticate endpoints before a session exists.
	AuthBasic AuthScheme = iota
	// AuthBearer authenticates with a session token.
	AuthBearer
)

// Authentication is the opaque credential bundle attached to a request.
type Authentication struct {
	Scheme   AuthScheme
	Username string
	Password string
	Token    string
}

// BasicAuth builds server-key credentials.
func BasicAuth(username, password string) Authentication {
	return Authentication{Scheme: AuthBasic, Username: username, Password: password}
}

// BearerAuth builds session-token credentials.
func BearerAuth(token string) Authentication {
	return Authentication{Scheme: AuthBearer, Token: token}
}

// Request is one opaque REST request: a method identifier, an encoded
// argument payload, and an authentication token. The adapter moves it as-is.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Auth   Authentication
}

// Response is one opaque REST response: a status and an encoded result or
// error payload. Interpreting the payload is the caller's job.
type Response struct {
	Status int
	Body   []byte
}

// ServerError is the error payload the server embeds in non-2xx response
// bodies.
type ServerError struct {
	Error   string `json:"error,omitempty"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func newRequest(method, path string, auth Authentication, body any) (*Request, error) {
	req := &Request{
		Method: method,
		Path:   path,
		Query:  url.Values{},
		Auth:   auth,
	}
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding %s %s body: %w", method, path, err)
		}
		req.Body = encoded
	}
	return req, nil
}
