package capture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// Locker claims a key shared by every instance pointed at the same device.
// cache.PGCache satisfies it.
type Locker interface {
	Claim(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type ExclusiveOption func(*ExclusiveDevice)

// WithLocker extends the claim beyond this process. ttl bounds how long a
// crashed holder keeps the device.
func WithLocker(l Locker, key string, ttl time.Duration) ExclusiveOption {
	return func(d *ExclusiveDevice) {
		d.locker = l
		d.key = key
		d.ttl = ttl
	}
}

// ExclusiveDevice lets one source be open at a time. A second Open fails with
// ErrCaptureUnavailable until the first source is closed.
type ExclusiveDevice struct {
	inner  Device
	slot   chan struct{}
	locker Locker
	key    string
	ttl    time.Duration
}

func Exclusive(d Device, opts ...ExclusiveOption) *ExclusiveDevice {
	e := &ExclusiveDevice{inner: d, slot: make(chan struct{}, 1)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *ExclusiveDevice) Open(ctx context.Context) (Source, error) {
	select {
	case e.slot <- struct{}{}:
	default:
		return nil, domain.ErrCaptureUnavailable.WithMessage("Capture device is in use by another session")
	}

	if e.locker != nil {
		ok, err := e.locker.Claim(ctx, e.key, []byte(time.Now().UTC().Format(time.RFC3339)), e.ttl)
		if err != nil {
			<-e.slot
			return nil, domain.ErrCaptureUnavailable.WithError(fmt.Errorf("claim capture device: %w", err))
		}
		if !ok {
			<-e.slot
			return nil, domain.ErrCaptureUnavailable.WithMessage("Capture device is in use by another session")
		}
	}

	src, err := e.inner.Open(ctx)
	if err != nil {
		e.release(ctx)
		return nil, err
	}
	return &exclusiveSource{Source: src, release: func() { e.release(context.WithoutCancel(ctx)) }}, nil
}

func (e *ExclusiveDevice) release(ctx context.Context) {
	if e.locker != nil {
		// the ttl frees the key if this fails
		_ = e.locker.Delete(ctx, e.key)
	}
	<-e.slot
}

type exclusiveSource struct {
	Source
	once    sync.Once
	release func()
}

func (s *exclusiveSource) Close() error {
	err := s.Source.Close()
	s.once.Do(s.release)
	return err
}
