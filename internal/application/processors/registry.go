package processors

import (
	"sort"
	"sync"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// Registry maps challenge-type tags to processors. It is safe for concurrent
// use; re-registration at runtime replaces the previous processor silently.
type Registry struct {
	mu         sync.RWMutex
	processors map[captcha.ChallengeType]ports.Processor
}

func NewRegistry() *Registry {
	return &Registry{processors: make(map[captcha.ChallengeType]ports.Processor)}
}

// NewDefaultRegistry builds a registry preloaded with the baseline text and
// calculation processors bound to the given OCR engine.
func NewDefaultRegistry(engine ports.OCREngine) *Registry {
	r := NewRegistry()
	r.Register(captcha.TypeText, NewTextProcessor(engine))
	r.Register(captcha.TypeCalculation, NewCalculationProcessor(engine))
	return r
}

// Register implements ports.ProcessorRegistry. Last registration wins.
func (r *Registry) Register(t captcha.ChallengeType, p ports.Processor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.processors[t] = p
}

// Resolve implements ports.ProcessorRegistry.
func (r *Registry) Resolve(t captcha.ChallengeType) (ports.Processor, error) {
	r.mu.RLock()
	p, ok := r.processors[t]
	r.mu.RUnlock()
	if !ok {
		return nil, apperr.UnsupportedCaptchaType(t.String(), typeStrings(r.Types()))
	}
	return p, nil
}

// Types implements ports.ProcessorRegistry.
func (r *Registry) Types() []captcha.ChallengeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]captcha.ChallengeType, 0, len(r.processors))
	for t := range r.processors {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

func typeStrings(types []captcha.ChallengeType) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
