package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/chamada/internal/config"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/chamada/internal/provider/rekognition"
)

// EncoderType selects the implementation that locates and encodes faces.
type EncoderType string

const (
	// EncoderDeepFace calls a DeepFace HTTP service
	EncoderDeepFace EncoderType = "deepface"
	// EncoderMock derives vectors from image bytes (dev/tests)
	EncoderMock EncoderType = "mock"
)

// DetectorType selects the registration face gate.
type DetectorType string

const (
	DetectorNone        DetectorType = "none"
	DetectorDeepFace    DetectorType = "deepface"
	DetectorRekognition DetectorType = "rekognition"
)

// NewEncoder creates the FaceEncoder named by ENCODER.
//
// Environment variables:
//   - ENCODER: "deepface" or "mock" (default: "deepface")
//   - DEEPFACE_URL: DeepFace API URL (default: "http://localhost:5000")
//   - DEEPFACE_MODEL: DeepFace model name (default: "Dlib")
func NewEncoder(cfg *config.Config) (provider.FaceEncoder, error) {
	switch EncoderType(cfg.Encoder) {
	case EncoderDeepFace, "":
		return createDeepFaceProvider(cfg), nil
	case EncoderMock:
		return mock.New(), nil
	default:
		return nil, fmt.Errorf("unknown encoder type: %s (supported: %s, %s)",
			cfg.Encoder, EncoderDeepFace, EncoderMock)
	}
}

// NewDetector creates the registration face gate named by FACE_DETECTOR.
// It returns nil when the gate is disabled.
//
// Rekognition credentials come from the AWS SDK credential chain
// (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, profiles, instance roles).
func NewDetector(ctx context.Context, cfg *config.Config) (provider.FaceDetector, error) {
	switch DetectorType(cfg.FaceDetector) {
	case DetectorNone, "":
		return nil, nil
	case DetectorDeepFace:
		return createDeepFaceProvider(cfg), nil
	case DetectorRekognition:
		return createRekognitionProvider(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown detector type: %s (supported: %s, %s, %s)",
			cfg.FaceDetector, DetectorNone, DetectorDeepFace, DetectorRekognition)
	}
}

func createRekognitionProvider(ctx context.Context, cfg *config.Config) (provider.FaceDetector, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	prov, err := rekognition.NewProvider(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition detector: %w", err)
	}

	return prov, nil
}

func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		deepfaceConfig.Model = cfg.DeepFaceModel
	}

	return deepface.NewProvider(deepfaceConfig)
}
