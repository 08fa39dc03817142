// Package datasource declares where table bytes come from and go to.
package datasource

import (
	"context"
	"io"
)

// Source yields the raw bytes of one input.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// Sink accepts the raw bytes of one output.
type Sink interface {
	Create(ctx context.Context) (io.WriteCloser, error)
}
