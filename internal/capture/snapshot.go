package capture

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

const maxSnapshotSize = 10 * 1024 * 1024

// SnapshotDevice polls a camera that serves its current picture as a JPEG
// over HTTP, such as IP webcam apps.
type SnapshotDevice struct {
	URL       string
	Interval  time.Duration
	MaxFrames int
	Client    *http.Client
}

func NewSnapshotDevice(url string, interval time.Duration, maxFrames int) *SnapshotDevice {
	return &SnapshotDevice{
		URL:       url,
		Interval:  interval,
		MaxFrames: maxFrames,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Open fetches one snapshot to verify the camera answers before the session starts.
func (d *SnapshotDevice) Open(ctx context.Context) (Source, error) {
	src := &snapshotSource{dev: d}
	if _, err := src.fetch(ctx); err != nil {
		return nil, domain.ErrCaptureUnavailable.WithError(err)
	}

	interval := d.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	src.ticker = time.NewTicker(interval)

	return src, nil
}

type snapshotSource struct {
	dev    *SnapshotDevice
	ticker *time.Ticker
	seq    int
}

func (s *snapshotSource) Next(ctx context.Context) (Frame, error) {
	if s.dev.MaxFrames > 0 && s.seq >= s.dev.MaxFrames {
		return Frame{}, io.EOF
	}

	select {
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	case <-s.ticker.C:
	}

	data, err := s.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return Frame{}, ctx.Err()
		}
		return Frame{}, domain.ErrCaptureFailed.WithError(err)
	}

	s.seq++
	return Frame{
		Seq:        s.seq,
		Data:       data,
		CapturedAt: time.Now(),
		Origin:     s.dev.URL,
	}, nil
}

func (s *snapshotSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.dev.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.dev.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize))
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("camera returned an empty snapshot")
	}

	return data, nil
}

func (s *snapshotSource) Close() error {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	return nil
}
