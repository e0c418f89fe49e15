package provider

import "context"

// FaceEncoder localiza e codifica todas as faces de uma imagem.
// Each EncodedFace pairs a location with its encoding, so the two can never
// drift out of step.
type FaceEncoder interface {
	Encode(ctx context.Context, image []byte) ([]EncodedFace, error)
}

// FaceDetector is the optional registration gate: it only reports where
// faces are and how good they look.
type FaceDetector interface {
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)
}

type EncodedFace struct {
	Box      BoundingBox `json:"box"`
	Encoding []float64   `json:"-"`
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox  BoundingBox `json:"bounding_box"`
	Confidence   float64     `json:"confidence"`
	QualityScore float64     `json:"quality_score"`
}

// BoundingBox represents the face area in the image
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}
