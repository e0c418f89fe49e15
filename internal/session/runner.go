package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/chamada/internal/capture"
	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/recognition"
)

// Marker persists a first sighting.
type Marker interface {
	MarkPresent(ctx context.Context, sess *domain.Session, id domain.Identity, at time.Time) (domain.AttendanceRecord, error)
}

type RunnerConfig struct {
	// MaxDuration bounds a session. Zero means no bound.
	MaxDuration time.Duration
	// MaxConsecutiveEncodeErrors aborts the loop after this many failing frames in a row.
	MaxConsecutiveEncodeErrors int
}

// Outcome summarizes one pass of the capture loop.
type Outcome struct {
	Marked          map[domain.IdentityKey]time.Time
	Records         []domain.AttendanceRecord
	FramesProcessed int
	FacesSeen       int
	UnknownFaces    int
	StopReason      domain.StopReason
}

type Runner struct {
	device   capture.Device
	encoder  provider.FaceEncoder
	matcher  *recognition.Matcher
	marker   Marker
	notifier Notifier
	observer Observer
	logger   *slog.Logger
	cfg      RunnerConfig
	now      func() time.Time
}

type Option func(*Runner)

func WithNotifier(n Notifier) Option {
	return func(r *Runner) {
		if n != nil {
			r.notifier = n
		}
	}
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		if o != nil {
			r.observer = o
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

func NewRunner(device capture.Device, encoder provider.FaceEncoder, matcher *recognition.Matcher, marker Marker, logger *slog.Logger, cfg RunnerConfig, opts ...Option) *Runner {
	if cfg.MaxConsecutiveEncodeErrors <= 0 {
		cfg.MaxConsecutiveEncodeErrors = 5
	}
	r := &Runner{
		device:   device,
		encoder:  encoder,
		matcher:  matcher,
		marker:   marker,
		notifier: noopNotifier{},
		observer: noopObserver{},
		logger:   logger.With("component", "session_runner"),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives the capture loop until every identity of index is marked, the
// source runs dry, ctx is cancelled or the session times out. The capture
// source is opened once and always closed before Run returns.
func (r *Runner) Run(ctx context.Context, sess *domain.Session, index []domain.Identity) (*Outcome, error) {
	runCtx := ctx
	if r.cfg.MaxDuration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.cfg.MaxDuration)
		defer cancel()
	}

	src, err := r.device.Open(runCtx)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			r.logger.Warn("failed to release capture device", "error", cerr)
		}
	}()

	log := r.logger.With("session_id", sess.ID, "subject", sess.SubjectCode)
	room := Room(sess.SubjectCode, sess.Semester, sess.Branch)
	tracker := NewTracker(len(index))
	out := &Outcome{Marked: make(map[domain.IdentityKey]time.Time)}
	sess.Roster = make([]domain.IdentityKey, len(index))
	for i, id := range index {
		sess.Roster[i] = id.Key
	}
	sess.Marked = out.Marked
	encodeFailures := 0

	log.Info("capture loop started", "identities", len(index))

	for !tracker.IsComplete() {
		frame, err := src.Next(runCtx)
		if errors.Is(err, io.EOF) {
			out.StopReason = domain.StopExhausted
			break
		}
		if err != nil {
			if runCtx.Err() != nil {
				out.StopReason = stopReason(ctx)
				break
			}
			return out, fmt.Errorf("read frame: %w", err)
		}

		out.FramesProcessed++
		r.observer.FrameProcessed()

		faces, err := r.encoder.Encode(runCtx, frame.Data)
		if err != nil {
			if runCtx.Err() != nil {
				out.StopReason = stopReason(ctx)
				break
			}
			encodeFailures++
			r.observer.EncodeFailed()
			log.Warn("skipping frame", "seq", frame.Seq, "error", err, "consecutive_failures", encodeFailures)
			if encodeFailures >= r.cfg.MaxConsecutiveEncodeErrors {
				return out, fmt.Errorf("encode frame %d: %w", frame.Seq, err)
			}
			continue
		}
		encodeFailures = 0

		if len(faces) == 0 {
			continue
		}
		out.FacesSeen += len(faces)
		r.observer.FacesEncoded(len(faces))

		queries := make([][]float64, len(faces))
		for i, f := range faces {
			queries[i] = f.Encoding
		}

		matches, err := r.matcher.MatchAll(runCtx, queries, index)
		if err != nil {
			if runCtx.Err() != nil {
				out.StopReason = stopReason(ctx)
				break
			}
			return out, err
		}

		for _, m := range matches {
			if !m.Known {
				out.UnknownFaces++
				r.observer.UnknownFace()
				continue
			}
			if !tracker.Observe(m.Identity.Key) {
				continue
			}

			at := r.now()
			rec, err := r.marker.MarkPresent(ctx, sess, m.Identity, at)
			if err != nil {
				return out, fmt.Errorf("mark %s present: %w", m.Identity.Key, err)
			}

			out.Marked[m.Identity.Key] = at
			out.Records = append(out.Records, rec)
			r.observer.IdentityMarked(sess.SubjectCode)

			log.Info("attendance marked",
				"roll_no", m.Identity.Parts.RollNo,
				"distance", m.Distance,
				"marked", tracker.Len(),
				"expected", len(index),
			)

			r.notifier.Broadcast(room, EventAttendanceMarked, MarkedEvent{
				SessionID: sess.ID,
				Key:       m.Identity.Key,
				RollNo:    m.Identity.Parts.RollNo,
				Name:      m.Identity.Parts.Name,
				Distance:  m.Distance,
				MarkedAt:  at,
				Marked:    tracker.Len(),
				Expected:  len(index),
			})
		}
	}

	if out.StopReason == "" {
		out.StopReason = domain.StopComplete
	}

	log.Info("capture loop finished",
		"stop_reason", out.StopReason,
		"frames", out.FramesProcessed,
		"faces", out.FacesSeen,
		"unknown", out.UnknownFaces,
		"marked", len(out.Marked),
	)

	return out, nil
}

func stopReason(parent context.Context) domain.StopReason {
	if parent.Err() != nil {
		return domain.StopCancelled
	}
	return domain.StopTimeout
}
