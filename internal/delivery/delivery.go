// Package delivery defines the transports that expose the application.
package delivery

import "context"

// Delivery is a transport server whose lifecycle is managed by Fx. Serve
// blocks until the server stops or fails.
type Delivery interface {
	Serve(ctx context.Context) error
}
