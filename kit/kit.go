// Package kit holds small transport glue shared by the MCP surface.
package kit

import "context"

// Endpoint is a transport-agnostic handler: typed request in, typed
// response out.
type Endpoint func(ctx context.Context, req any) (any, error)
