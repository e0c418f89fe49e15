package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing
	minImageSize = 100
)

// Provider checks registration photos with AWS Rekognition. Rekognition does
// not expose encodings, so it only gates images before they reach the encoder.
type Provider struct {
	api DetectFacesAPI
	cfg Config
}

func NewProvider(ctx context.Context, cfg Config) (*Provider, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return NewProviderWithAPI(client, cfg), nil
}

func NewProviderWithAPI(api DetectFacesAPI, cfg Config) *Provider {
	return &Provider{api: api, cfg: cfg}
}

func validateImage(image []byte) error {
	if len(image) == 0 {
		return ErrInvalidImage
	}
	if len(image) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(image), minImageSize)
	}
	if len(image) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(image), maxImageSize)
	}
	return nil
}

// DetectFaces returns an empty slice if no faces are detected (not an error).
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	if err := validateImage(image); err != nil {
		return nil, err
	}

	output, err := p.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: image},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", mapAPIError(err))
	}

	faces := make([]provider.DetectedFace, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		confidence := aws.ToFloat32(detail.Confidence)
		if confidence < p.cfg.MinConfidence {
			continue
		}

		var box provider.BoundingBox
		if detail.BoundingBox != nil {
			box = provider.BoundingBox{
				X:      float64(aws.ToFloat32(detail.BoundingBox.Left)),
				Y:      float64(aws.ToFloat32(detail.BoundingBox.Top)),
				Width:  float64(aws.ToFloat32(detail.BoundingBox.Width)),
				Height: float64(aws.ToFloat32(detail.BoundingBox.Height)),
			}
		}

		faces = append(faces, provider.DetectedFace{
			BoundingBox:  box,
			Confidence:   float64(confidence) / 100,
			QualityScore: qualityScore(detail.Quality),
		})
	}

	return faces, nil
}

// qualityScore averages brightness and sharpness into 0..1.
func qualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0
	}
	brightness := float64(aws.ToFloat32(quality.Brightness))
	sharpness := float64(aws.ToFloat32(quality.Sharpness))
	return (brightness + sharpness) / 200
}

var _ provider.FaceDetector = (*Provider)(nil)
