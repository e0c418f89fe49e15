package deepface

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/saturnino-fabrica-de-software/chamada/internal/domain"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	// minFaceArea is the minimum face area (in pixels²) for reliable detection
	minFaceArea = 2500 // 50x50 pixels
	// maxFaceArea is used for confidence scaling
	maxFaceArea = 250000 // 500x500 pixels
)

// Provider implements provider.FaceEncoder and provider.FaceDetector on top of
// a DeepFace API server.
type Provider struct {
	client *Client
}

func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// Encode returns every face of the image with its encoding. A frame with no
// face is not an error.
func (p *Provider) Encode(ctx context.Context, image []byte) ([]provider.EncodedFace, error) {
	if len(image) == 0 {
		return nil, domain.ErrInvalidImage
	}

	resp, err := p.client.Represent(ctx, base64.StdEncoding.EncodeToString(image))
	if err != nil {
		if isNoFace(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("encode faces: %w", mapError(err))
	}

	faces := make([]provider.EncodedFace, 0, len(resp.Results))
	for _, r := range resp.Results {
		if len(r.Embedding) == 0 {
			continue
		}
		faces = append(faces, provider.EncodedFace{
			Box:      toBox(r.FacialArea),
			Encoding: r.Embedding,
		})
	}

	return faces, nil
}

// DetectFaces detects faces in the image
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	encoded, err := p.Encode(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(encoded))
	for _, f := range encoded {
		area := f.Box.Area()
		faces = append(faces, provider.DetectedFace{
			BoundingBox:  f.Box,
			Confidence:   calculateConfidence(area),
			QualityScore: calculateQuality(area),
		})
	}

	return faces, nil
}

func toBox(a FacialArea) provider.BoundingBox {
	return provider.BoundingBox{
		X:      float64(a.X),
		Y:      float64(a.Y),
		Width:  float64(a.W),
		Height: float64(a.H),
	}
}

// DeepFace answers 400 when enforce_detection finds nothing.
func isNoFace(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != 400 {
		return false
	}
	return strings.Contains(strings.ToLower(se.Body), "face could not be detected")
}

func mapError(err error) error {
	var se *StatusError
	switch {
	case errors.Is(err, ErrDeepFaceUnavailable):
		return domain.ErrEncoderUnavailable.WithError(err)
	case errors.As(err, &se) && se.clientError():
		return domain.ErrInvalidImage.WithError(err)
	}
	return err
}

// calculateConfidence estimates confidence based on face area.
// DeepFace doesn't return confidence for every detector.
func calculateConfidence(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.5
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.7 + (normalized * 0.29)
}

func calculateQuality(faceArea float64) float64 {
	if faceArea < minFaceArea {
		return 0.4
	}
	normalized := math.Min(1.0, (faceArea-minFaceArea)/(maxFaceArea-minFaceArea))
	return 0.6 + (normalized * 0.35)
}

var (
	_ provider.FaceEncoder  = (*Provider)(nil)
	_ provider.FaceDetector = (*Provider)(nil)
)
