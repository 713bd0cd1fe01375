package interfaces

import "context"

// BackendInterface stores one opaque snapshot blob. Read returns nil data and
// a nil error when nothing has been stored yet. Write replaces the previous
// blob atomically: a failed write leaves the old one readable.
type BackendInterface interface {
	Name() string
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Close() error
}
