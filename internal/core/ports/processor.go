package ports

import (
	"context"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

// Processor interprets raw OCR output for one challenge type.
type Processor interface {
	// Process runs OCR on image and shapes the raw text per opts.
	Process(ctx context.Context, image []byte, opts captcha.Options) (string, error)
}

// ProcessorRegistry maps challenge-type tags to processors. Registration is
// dynamic; re-registering a type silently replaces the prior processor.
type ProcessorRegistry interface {
	Register(t captcha.ChallengeType, p Processor)
	// Resolve fails with an unsupported-captcha-type error for unknown tags.
	Resolve(t captcha.ChallengeType) (Processor, error)
	// Types lists registered tags in sorted order.
	Types() []captcha.ChallengeType
}
