package ocr

import (
	"context"
	"time"

	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// TimeoutEngine bounds every Classify call with a deadline. Timeout
// enforcement belongs to the oracle collaborator, not the recognition core;
// the dispatcher only reclassifies the resulting deadline error.
type TimeoutEngine struct {
	engine  ports.OCREngine
	timeout time.Duration
}

// WithTimeout wraps engine so each classification runs under the given
// deadline. A non-positive timeout returns the engine unwrapped.
func WithTimeout(engine ports.OCREngine, timeout time.Duration) ports.OCREngine {
	if timeout <= 0 {
		return engine
	}
	return &TimeoutEngine{engine: engine, timeout: timeout}
}

type classifyResult struct {
	text string
	err  error
}

// Classify implements ports.OCREngine. The underlying call runs in its own
// goroutine since engine implementations may not observe ctx themselves;
// on timeout the goroutine's eventual result is discarded.
func (e *TimeoutEngine) Classify(ctx context.Context, image []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	done := make(chan classifyResult, 1)
	go func() {
		text, err := e.engine.Classify(ctx, image)
		done <- classifyResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		return res.text, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
