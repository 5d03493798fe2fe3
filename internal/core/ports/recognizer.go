package ports

import (
	"context"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

// ImageSource supplies the byte payload of a challenge image. Sources exist
// for file paths, raw bytes and in-memory decoded images; each validates
// decodability before bytes reach the recognition core.
type ImageSource interface {
	// Bytes returns the encoded image payload.
	Bytes() ([]byte, error)
}

// Preprocessor optionally transforms image bytes before recognition
// (grayscale, contrast, thresholding and similar filters).
type Preprocessor interface {
	Preprocess(image []byte, opts captcha.Options) ([]byte, error)
}

// RecognizerService is the caller-facing recognition API. Every failure is
// one of the apperr taxonomy kinds; no raw error escapes Recognize.
type RecognizerService interface {
	Recognize(ctx context.Context, src ImageSource, t captcha.ChallengeType, opts captcha.Options) (*captcha.Recognition, error)
	// CacheStats and ClearCache expose the result cache for the admin surface.
	CacheStats(ctx context.Context) (CacheStats, error)
	ClearCache(ctx context.Context) error
	// SupportedTypes lists the challenge types currently registered.
	SupportedTypes() []captcha.ChallengeType
}

// RecognitionMetrics records domain-level observations. Implementations must
// be safe for concurrent use; a nil recorder is tolerated by the service.
type RecognitionMetrics interface {
	ObserveRecognition(t captcha.ChallengeType, outcome string, seconds float64)
	CacheLookup(hit bool)
}
