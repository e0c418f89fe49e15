package recognition

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
)

type MockFaceLister struct {
	mock.Mock
}

func (m *MockFaceLister) ListFaces(ctx context.Context) ([]domain.Face, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Face), args.Error(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func storedFaces() []domain.Face {
	return []domain.Face{
		{IdentityKey: "102_3_Bruno_CSE", Encoding: []float64{0.2, 0.1}},
		{IdentityKey: "101_3_JaneDoe_cse", Encoding: []float64{0.1, 0.1}},
		{IdentityKey: "201_3_Carla_ECE", Encoding: []float64{0.3, 0.1}},
		{IdentityKey: "301_4_Davi_CSE", Encoding: []float64{0.4, 0.1}},
		{IdentityKey: "broken_key", Encoding: []float64{0.5, 0.1}},
		{IdentityKey: "103_3_Eva_CSE", Encoding: nil},
	}
}

func TestIndexBuilder_Build(t *testing.T) {
	lister := new(MockFaceLister)
	lister.On("ListFaces", mock.Anything).Return(storedFaces(), nil)

	b := NewIndexBuilder(lister, discardLogger())
	index, err := b.Build(context.Background(), domain.Scope{Semester: 3, Branch: "CSE"})

	require.NoError(t, err)
	require.Len(t, index, 2)
	assert.Equal(t, domain.IdentityKey("101_3_JaneDoe_cse"), index[0].Key)
	assert.Equal(t, "JaneDoe", index[0].Parts.Name)
	assert.Equal(t, domain.IdentityKey("102_3_Bruno_CSE"), index[1].Key)
}

func TestIndexBuilder_BuildIsDeterministic(t *testing.T) {
	lister := new(MockFaceLister)
	lister.On("ListFaces", mock.Anything).Return(storedFaces(), nil)

	b := NewIndexBuilder(lister, discardLogger())
	first, err := b.Build(context.Background(), domain.Scope{Semester: 3})
	require.NoError(t, err)
	second, err := b.Build(context.Background(), domain.Scope{Semester: 3})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	lister.AssertNumberOfCalls(t, "ListFaces", 2)
}

func TestIndexBuilder_EmptyScope(t *testing.T) {
	lister := new(MockFaceLister)
	lister.On("ListFaces", mock.Anything).Return(storedFaces(), nil)

	b := NewIndexBuilder(lister, discardLogger())
	_, err := b.Build(context.Background(), domain.Scope{Semester: 8, Branch: "CSE"})

	assert.ErrorIs(t, err, domain.ErrNoIdentitiesForScope)
}

func TestIndexBuilder_ListError(t *testing.T) {
	lister := new(MockFaceLister)
	lister.On("ListFaces", mock.Anything).Return(nil, errors.New("connection refused"))

	b := NewIndexBuilder(lister, discardLogger())
	_, err := b.Build(context.Background(), domain.Scope{Semester: 3})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "list faces")
}
