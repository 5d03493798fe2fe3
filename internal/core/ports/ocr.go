package ports

import "context"

// OCREngine is the external image-to-text oracle. Implementations are opaque:
// resizing, model selection and inference behavior are engine concerns.
// Classify must be side-effect-free with respect to the recognizer's cache.
type OCREngine interface {
	// Classify returns the raw text read from an encoded image.
	Classify(ctx context.Context, image []byte) (string, error)
}

// OCREngineFunc adapts a plain function to OCREngine.
type OCREngineFunc func(ctx context.Context, image []byte) (string, error)

func (f OCREngineFunc) Classify(ctx context.Context, image []byte) (string, error) {
	return f(ctx, image)
}
