package mock

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	encodingDimension = 128
	minImageSize      = 64
)

// Provider implementa provider.FaceEncoder para testes e desenvolvimento.
// Every image holds exactly one face whose encoding derives from the image hash,
// so the same photo always matches itself.
type Provider struct{}

func New() *Provider {
	return &Provider{}
}

func (p *Provider) Encode(ctx context.Context, image []byte) ([]provider.EncodedFace, error) {
	if len(image) < minImageSize {
		return nil, domain.ErrInvalidImage
	}

	return []provider.EncodedFace{
		{
			Box:      provider.BoundingBox{X: 0.1, Y: 0.1, Width: 0.8, Height: 0.8},
			Encoding: generateEncoding(image),
		},
	}, nil
}

func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	faces, err := p.Encode(ctx, image)
	if err != nil {
		return nil, err
	}

	return []provider.DetectedFace{
		{BoundingBox: faces[0].Box, Confidence: 0.99, QualityScore: 0.95},
	}, nil
}

// generateEncoding gera encoding determinístico baseado no hash da imagem
func generateEncoding(image []byte) []float64 {
	hash := sha256.Sum256(image)
	encoding := make([]float64, encodingDimension)
	hashLen := len(hash)

	for i := 0; i < encodingDimension; i++ {
		idx := (i * 7) % hashLen
		//nolint:gosec // idx is always < hashLen due to modulo operation
		encoding[i] = (float64(hash[idx])/255.0)*2 - 1
	}

	norm := 0.0
	for _, v := range encoding {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	for i := range encoding {
		encoding[i] /= norm
	}

	return encoding
}

var (
	_ provider.FaceEncoder  = (*Provider)(nil)
	_ provider.FaceDetector = (*Provider)(nil)
)
