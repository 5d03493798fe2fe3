package services_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	impl "github.com/captchakit/captcha-recognizer/internal/application/services"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/cache"
	"github.com/captchakit/captcha-recognizer/internal/infrastructure/imaging"
)

type processorMock struct {
	mu      sync.Mutex
	calls   int
	process func(ctx context.Context, image []byte, opts captcha.Options) (string, error)
}

func (m *processorMock) Process(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.process != nil {
		return m.process(ctx, image, opts)
	}
	return "RESULT", nil
}

func (m *processorMock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type registryMock struct {
	processors map[captcha.ChallengeType]ports.Processor
}

func (m *registryMock) Register(t captcha.ChallengeType, p ports.Processor) {
	m.processors[t] = p
}

func (m *registryMock) Resolve(t captcha.ChallengeType) (ports.Processor, error) {
	p, ok := m.processors[t]
	if !ok {
		return nil, apperr.UnsupportedCaptchaType(t.String(), []string{"text"})
	}
	return p, nil
}

func (m *registryMock) Types() []captcha.ChallengeType {
	types := make([]captcha.ChallengeType, 0, len(m.processors))
	for t := range m.processors {
		types = append(types, t)
	}
	return types
}

func newService(t *testing.T, proc ports.Processor) ports.RecognizerService {
	t.Helper()
	memCache, err := cache.NewMemoryCache(100, time.Hour)
	if err != nil {
		t.Fatalf("cache init: %v", err)
	}
	registry := &registryMock{processors: map[captcha.ChallengeType]ports.Processor{
		captcha.TypeText: proc,
	}}
	return impl.NewRecognizerService(registry, memCache, nil, nil, nil)
}

func TestRecognizeCacheCoherence(t *testing.T) {
	proc := &processorMock{}
	svc := newService(t, proc)
	ctx := context.Background()
	src := imaging.FromRawBytes([]byte("image-bytes"))
	opts := captcha.Options{captcha.OptToUpper: true}

	first, err := svc.Recognize(ctx, src, captcha.TypeText, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Cached {
		t.Fatal("first call must not be served from cache")
	}

	second, err := svc.Recognize(ctx, src, captcha.TypeText, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !second.Cached {
		t.Fatal("second identical call must be served from cache")
	}
	if second.Result != first.Result {
		t.Fatalf("cached result differs: %q vs %q", second.Result, first.Result)
	}
	if proc.Calls() != 1 {
		t.Fatalf("expected exactly one processor invocation, got %d", proc.Calls())
	}
}

func TestRecognizeParamSensitivity(t *testing.T) {
	proc := &processorMock{}
	svc := newService(t, proc)
	ctx := context.Background()
	src := imaging.FromRawBytes([]byte("image-bytes"))

	if _, err := svc.Recognize(ctx, src, captcha.TypeText, captcha.Options{captcha.OptToUpper: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, err := svc.Recognize(ctx, src, captcha.TypeText, captcha.Options{captcha.OptToUpper: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Cached {
		t.Fatal("entry recorded under different configuration must not be served")
	}
	if proc.Calls() != 2 {
		t.Fatalf("expected recomputation on config change, calls=%d", proc.Calls())
	}
}

func TestRecognizeUnsupportedType(t *testing.T) {
	svc := newService(t, &processorMock{})
	_, err := svc.Recognize(context.Background(), imaging.FromRawBytes([]byte("x")), "slider", nil)
	if apperr.Code(err) != apperr.CodeUnsupportedCaptchaType {
		t.Fatalf("expected unsupported type code, got %v", err)
	}
}

func TestRecognizeEmptyResultNotCached(t *testing.T) {
	proc := &processorMock{process: func(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
		return "   ", nil
	}}
	svc := newService(t, proc)
	ctx := context.Background()
	src := imaging.FromRawBytes([]byte("blank"))

	_, err := svc.Recognize(ctx, src, captcha.TypeText, nil)
	if apperr.Code(err) != apperr.CodeRecognitionFailed {
		t.Fatalf("expected recognition-failed code, got %v", err)
	}

	// A failed recognition must not populate the cache.
	if _, err := svc.Recognize(ctx, src, captcha.TypeText, nil); err == nil {
		t.Fatal("expected second call to recompute and fail again")
	}
	if proc.Calls() != 2 {
		t.Fatalf("expected no cache entry for failures, calls=%d", proc.Calls())
	}
}

func TestRecognizeWrapsUnknownErrors(t *testing.T) {
	proc := &processorMock{process: func(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
		return "", errors.New("model exploded")
	}}
	svc := newService(t, proc)

	_, err := svc.Recognize(context.Background(), imaging.FromRawBytes([]byte("x")), captcha.TypeText, nil)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected taxonomy error, got %T", err)
	}
	if ae.Code != apperr.CodeUnknown {
		t.Fatalf("expected unknown code, got %d", ae.Code)
	}
	if ae.Details["cause"] != "model exploded" {
		t.Fatalf("expected original message in details, got %v", ae.Details)
	}
}

func TestRecognizeMissingFile(t *testing.T) {
	svc := newService(t, &processorMock{})
	missing := filepath.Join(t.TempDir(), "nope.png")

	_, err := svc.Recognize(context.Background(), imaging.FromFile(missing), captcha.TypeText, nil)
	if apperr.Code(err) != apperr.CodeFileSystemError {
		t.Fatalf("expected filesystem error code, got %v", err)
	}
}

func TestRecognizeTimeoutClassified(t *testing.T) {
	proc := &processorMock{process: func(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
		return "", context.DeadlineExceeded
	}}
	svc := newService(t, proc)

	_, err := svc.Recognize(context.Background(), imaging.FromRawBytes([]byte("x")), captcha.TypeText, nil)
	if apperr.Code(err) != apperr.CodeProcessingTimeout {
		t.Fatalf("expected processing-timeout code, got %v", err)
	}
}

func TestRecognizeNilSource(t *testing.T) {
	svc := newService(t, &processorMock{})
	_, err := svc.Recognize(context.Background(), nil, captcha.TypeText, nil)
	if apperr.Code(err) != apperr.CodeMissingParameter {
		t.Fatalf("expected missing-parameter code, got %v", err)
	}
}

// failingCache simulates a corrupted backend: the recognizer must treat it
// as a miss and still serve the request.
type failingCache struct{}

func (f *failingCache) Get(ctx context.Context, key ports.CacheKey) (*ports.CacheEntry, bool, error) {
	return nil, false, errors.New("backend down")
}
func (f *failingCache) Put(ctx context.Context, key ports.CacheKey, result, digest string) error {
	return errors.New("backend down")
}
func (f *failingCache) Clear(ctx context.Context) error { return errors.New("backend down") }
func (f *failingCache) Stats(ctx context.Context) (ports.CacheStats, error) {
	return ports.CacheStats{}, errors.New("backend down")
}

func TestRecognizeSurvivesCacheFailure(t *testing.T) {
	proc := &processorMock{}
	registry := &registryMock{processors: map[captcha.ChallengeType]ports.Processor{
		captcha.TypeText: proc,
	}}
	svc := impl.NewRecognizerService(registry, &failingCache{}, nil, nil, nil)

	rec, err := svc.Recognize(context.Background(), imaging.FromRawBytes([]byte("x")), captcha.TypeText, nil)
	if err != nil {
		t.Fatalf("cache failure must not abort the request: %v", err)
	}
	if rec.Result != "RESULT" {
		t.Fatalf("unexpected result %q", rec.Result)
	}
}

func TestClearCacheAndStats(t *testing.T) {
	proc := &processorMock{}
	svc := newService(t, proc)
	ctx := context.Background()

	if _, err := svc.Recognize(ctx, imaging.FromRawBytes([]byte("x")), captcha.TypeText, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, err := svc.CacheStats(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Total != 1 {
		t.Fatalf("expected one entry, got %d", stats.Total)
	}
	if err := svc.ClearCache(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stats, _ = svc.CacheStats(ctx)
	if stats.Total != 0 {
		t.Fatalf("expected empty cache, got %d", stats.Total)
	}
}
