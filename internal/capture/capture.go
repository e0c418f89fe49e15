// Package capture provides frame sources for attendance sessions.
//
// A Device is opened once per session and yields a Source. Next blocks until
// a frame is available and returns io.EOF once the source is exhausted.
// Callers must Close the source on every exit path.
package capture

import (
	"context"
	"time"
)

type Frame struct {
	Seq        int
	Data       []byte
	CapturedAt time.Time
	Origin     string
}

type Device interface {
	Open(ctx context.Context) (Source, error)
}

type Source interface {
	Next(ctx context.Context) (Frame, error)
	Close() error
}
