package client

import (
	"context"

	"github.com/cory-johannsen/gamelink/api"
)

// Adapter performs one HTTP round trip for the request channel. Implementations
// must return a non-nil Response whenever the server produced a status line,
// regardless of the status code; transport failures return a nil Response and
// an error.
type Adapter interface {
	Send(ctx context.Context, req *api.Request) (*api.Response, error)
}
