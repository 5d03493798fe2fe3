package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"

	config "github.com/captchakit/captcha-recognizer/configs"
)

// TesseractEngine implements ports.OCREngine using the gosseract client.
// A fresh client is created per call; gosseract clients are not safe for
// concurrent use and setup cost is negligible next to inference.
type TesseractEngine struct {
	languages     []string
	variables     map[string]string
	clientFactory func() *gosseract.Client
}

// NewTesseractEngine constructs a Tesseract-backed OCR engine.
func NewTesseractEngine(cfg *config.OCRConfig) *TesseractEngine {
	e := &TesseractEngine{clientFactory: gosseract.NewClient}
	if cfg != nil {
		e.languages = cfg.Languages
		e.variables = cfg.Variables
	}
	return e
}

// Classify implements ports.OCREngine.
func (e *TesseractEngine) Classify(ctx context.Context, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return "", fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range e.variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return "", fmt.Errorf("set variable %s: %w", k, err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("recognize text: %w", err)
	}
	return strings.TrimSpace(text), nil
}
