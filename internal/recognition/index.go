package recognition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

// FaceLister scans every stored face encoding.
type FaceLister interface {
	ListFaces(ctx context.Context) ([]domain.Face, error)
}

type IndexBuilder struct {
	faces  FaceLister
	logger *slog.Logger
}

func NewIndexBuilder(faces FaceLister, logger *slog.Logger) *IndexBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBuilder{
		faces:  faces,
		logger: logger.With("component", "identity_index"),
	}
}

// Build loads the identities of one class, ordered by key. Entries with an
// unparsable key or no encoding are skipped and logged.
func (b *IndexBuilder) Build(ctx context.Context, scope domain.Scope) ([]domain.Identity, error) {
	faces, err := b.faces.ListFaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list faces: %w", err)
	}

	index := make([]domain.Identity, 0, len(faces))
	skipped := 0

	for _, f := range faces {
		parts, err := domain.ParseIdentityKey(f.IdentityKey.String())
		if err != nil {
			if errors.Is(err, domain.ErrInvalidIdentityKey) {
				b.logger.Warn("skipping face with invalid key", "key", f.IdentityKey, "error", err)
				skipped++
				continue
			}
			return nil, err
		}

		if len(f.Encoding) == 0 {
			b.logger.Warn("skipping face without encoding", "key", f.IdentityKey)
			skipped++
			continue
		}

		if !scope.Matches(parts) {
			continue
		}

		index = append(index, domain.Identity{
			Key:      f.IdentityKey,
			Parts:    parts,
			Encoding: f.Encoding,
		})
	}

	sort.SliceStable(index, func(i, j int) bool {
		return index[i].Key < index[j].Key
	})

	if len(index) == 0 {
		return nil, domain.ErrNoIdentitiesForScope
	}

	b.logger.Debug("identity index built",
		"semester", scope.Semester,
		"branch", scope.Branch,
		"identities", len(index),
		"skipped", skipped,
	)

	return index, nil
}
