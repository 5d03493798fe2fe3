package services

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
	"github.com/captchakit/captcha-recognizer/internal/utils"
)

// Outcome labels reported to the metrics recorder.
const (
	OutcomeHit      = "cache_hit"
	OutcomeComputed = "computed"
	OutcomeError    = "error"
)

// RecognizerService dispatches recognition requests: it resolves the
// processor for the challenge type, consults the result cache and invokes
// the processor on a miss. All failures leave as apperr taxonomy errors.
type RecognizerService struct {
	registry     ports.ProcessorRegistry
	cache        ports.ResultCache
	preprocessor ports.Preprocessor
	metrics      ports.RecognitionMetrics
	logger       *logrus.Logger
}

func NewRecognizerService(
	registry ports.ProcessorRegistry,
	cache ports.ResultCache,
	preprocessor ports.Preprocessor,
	metrics ports.RecognitionMetrics,
	logger *logrus.Logger,
) ports.RecognizerService {
	return &RecognizerService{
		registry:     registry,
		cache:        cache,
		preprocessor: preprocessor,
		metrics:      metrics,
		logger:       logger,
	}
}

// Recognize implements ports.RecognizerService.
func (s *RecognizerService) Recognize(ctx context.Context, src ports.ImageSource, t captcha.ChallengeType, opts captcha.Options) (*captcha.Recognition, error) {
	start := time.Now()

	rec, err := s.recognize(ctx, src, t, opts)
	elapsed := time.Since(start)

	if err != nil {
		ae := s.classify(err)
		if s.metrics != nil {
			s.metrics.ObserveRecognition(t, OutcomeError, elapsed.Seconds())
		}
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{
				"captcha_type": t,
				"error_code":   ae.Code,
				"duration_ms":  elapsed.Milliseconds(),
			}).WithError(ae).Warn("recognition failed")
		}
		return nil, ae
	}

	rec.Duration = elapsed
	if s.metrics != nil {
		outcome := OutcomeComputed
		if rec.Cached {
			outcome = OutcomeHit
		}
		s.metrics.ObserveRecognition(t, outcome, elapsed.Seconds())
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{
			"captcha_type": t,
			"cached":       rec.Cached,
			"duration_ms":  elapsed.Milliseconds(),
		}).Info("recognition completed")
	}
	return rec, nil
}

func (s *RecognizerService) recognize(ctx context.Context, src ports.ImageSource, t captcha.ChallengeType, opts captcha.Options) (*captcha.Recognition, error) {
	processor, err := s.registry.Resolve(t)
	if err != nil {
		return nil, err
	}

	if src == nil {
		return nil, apperr.MissingParameter("image")
	}
	image, err := src.Bytes()
	if err != nil {
		return nil, err
	}

	if s.preprocessor != nil && opts.Bool(captcha.OptPreprocess, false) {
		processed, err := s.preprocessor.Preprocess(image, opts)
		if err != nil {
			return nil, apperr.InvalidImage("image preprocessing failed", err)
		}
		image = processed
	}

	key := ports.CacheKey{ContentHash: utils.HashBytes(image), ChallengeType: t}
	digest := utils.ParamsDigest(opts)

	if entry, ok := s.cacheGet(ctx, key); ok && entry.ParamsDigest == digest {
		if s.metrics != nil {
			s.metrics.CacheLookup(true)
		}
		return &captcha.Recognition{Result: entry.Result, Type: t, Cached: true}, nil
	}
	if s.metrics != nil {
		s.metrics.CacheLookup(false)
	}

	// The cache lock is not held here: a slow oracle call must never block
	// concurrent lookups. Two identical concurrent misses may both compute;
	// the duplicate work is tolerated.
	result, err := processor.Process(ctx, image, opts)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(result) == "" {
		return nil, apperr.RecognitionFailed("recognition produced an empty result")
	}

	s.cachePut(ctx, key, result, digest)

	return &captcha.Recognition{Result: result, Type: t, Cached: false}, nil
}

// cacheGet treats every cache anomaly as a miss so a caching failure can
// never abort the caller's request.
func (s *RecognizerService) cacheGet(ctx context.Context, key ports.CacheKey) (*ports.CacheEntry, bool) {
	entry, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).Warn("cache lookup failed, recomputing")
		}
		return nil, false
	}
	return entry, ok
}

func (s *RecognizerService) cachePut(ctx context.Context, key ports.CacheKey, result, digest string) {
	if err := s.cache.Put(ctx, key, result, digest); err != nil && s.logger != nil {
		s.logger.WithError(err).Warn("cache store failed")
	}
}

// classify reclassifies any error into the taxonomy. Filesystem and
// permission failures surface with the filesystem-error code, timeouts with
// the processing-timeout code, and everything unrecognized as unknown.
func (s *RecognizerService) classify(err error) *apperr.Error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission):
		return apperr.FileSystem("image file inaccessible", err)
	case isFSError(err):
		return apperr.FileSystem("filesystem error during image acquisition", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Wrap(apperr.CodeProcessingTimeout, "recognition timed out", err)
	}
	return apperr.Wrap(apperr.CodeUnknown, "unknown error", err)
}

func isFSError(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}

// CacheStats implements ports.RecognizerService.
func (s *RecognizerService) CacheStats(ctx context.Context) (ports.CacheStats, error) {
	stats, err := s.cache.Stats(ctx)
	if err != nil {
		return ports.CacheStats{}, apperr.CacheFailure("cache stats unavailable", err)
	}
	return stats, nil
}

// ClearCache implements ports.RecognizerService.
func (s *RecognizerService) ClearCache(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return apperr.CacheFailure("cache clear failed", err)
	}
	if s.logger != nil {
		s.logger.Info("result cache cleared")
	}
	return nil
}

// SupportedTypes implements ports.RecognizerService.
func (s *RecognizerService) SupportedTypes() []captcha.ChallengeType {
	return s.registry.Types()
}
