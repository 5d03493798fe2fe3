// Package mocks provides function-field test doubles for the service ports.
// Each method delegates to its Fn field when set and falls back to a zero
// value otherwise, so tests only wire the calls they care about.
package mocks

import (
	"context"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

type RecognizerServiceMock struct {
	RecognizeFn      func(ctx context.Context, src ports.ImageSource, t captcha.ChallengeType, opts captcha.Options) (*captcha.Recognition, error)
	CacheStatsFn     func(ctx context.Context) (ports.CacheStats, error)
	ClearCacheFn     func(ctx context.Context) error
	SupportedTypesFn func() []captcha.ChallengeType
}

func (m *RecognizerServiceMock) Recognize(ctx context.Context, src ports.ImageSource, t captcha.ChallengeType, opts captcha.Options) (*captcha.Recognition, error) {
	if m.RecognizeFn != nil {
		return m.RecognizeFn(ctx, src, t, opts)
	}
	return &captcha.Recognition{}, nil
}

func (m *RecognizerServiceMock) CacheStats(ctx context.Context) (ports.CacheStats, error) {
	if m.CacheStatsFn != nil {
		return m.CacheStatsFn(ctx)
	}
	return ports.CacheStats{}, nil
}

func (m *RecognizerServiceMock) ClearCache(ctx context.Context) error {
	if m.ClearCacheFn != nil {
		return m.ClearCacheFn(ctx)
	}
	return nil
}

func (m *RecognizerServiceMock) SupportedTypes() []captcha.ChallengeType {
	if m.SupportedTypesFn != nil {
		return m.SupportedTypesFn()
	}
	return nil
}

type OCREngineMock struct {
	ClassifyFn func(ctx context.Context, image []byte) (string, error)
}

func (m *OCREngineMock) Classify(ctx context.Context, image []byte) (string, error) {
	if m.ClassifyFn != nil {
		return m.ClassifyFn(ctx, image)
	}
	return "", nil
}

type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }

func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}
