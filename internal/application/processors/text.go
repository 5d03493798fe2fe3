package processors

import (
	"context"
	"strings"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// TextProcessor handles plain text challenges: it runs the OCR engine once
// and applies the configured post-processing to the raw output.
type TextProcessor struct {
	engine ports.OCREngine
}

func NewTextProcessor(engine ports.OCREngine) *TextProcessor {
	return &TextProcessor{engine: engine}
}

// Process implements ports.Processor. Post-processing order is fixed: space
// removal, then lowercasing, then uppercasing, so when both casing flags are
// set the uppercase transform dominates.
func (p *TextProcessor) Process(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
	text, err := p.engine.Classify(ctx, image)
	if err != nil {
		return "", err
	}

	if opts.Bool(captcha.OptRemoveSpaces, true) {
		text = strings.ReplaceAll(text, " ", "")
	}
	if opts.Bool(captcha.OptToLower, false) {
		text = strings.ToLower(text)
	}
	if opts.Bool(captcha.OptToUpper, false) {
		text = strings.ToUpper(text)
	}
	return text, nil
}
