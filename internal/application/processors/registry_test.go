package processors_test

import (
	"context"
	"errors"
	"testing"

	"github.com/captchakit/captcha-recognizer/internal/application/processors"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/apperr"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

type namedProcessor struct{ name string }

func (p *namedProcessor) Process(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
	return p.name, nil
}

func TestRegistryResolveUnknownType(t *testing.T) {
	r := processors.NewRegistry()
	r.Register(captcha.TypeText, &namedProcessor{name: "text"})

	_, err := r.Resolve("slider")
	if err == nil {
		t.Fatal("expected error for unregistered type")
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected taxonomy error, got %T", err)
	}
	if ae.Code != apperr.CodeUnsupportedCaptchaType {
		t.Fatalf("expected code %d, got %d", apperr.CodeUnsupportedCaptchaType, ae.Code)
	}
	known, ok := ae.Details["supported_types"].([]string)
	if !ok || len(known) != 1 || known[0] != "text" {
		t.Fatalf("expected known types in details, got %v", ae.Details["supported_types"])
	}
}

func TestRegistryReplaceSilently(t *testing.T) {
	r := processors.NewRegistry()
	r.Register(captcha.TypeText, &namedProcessor{name: "first"})
	r.Register(captcha.TypeText, &namedProcessor{name: "second"})

	p, err := r.Resolve(captcha.TypeText)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := p.Process(context.Background(), nil, nil)
	if got != "second" {
		t.Fatalf("expected last registration to win, resolved %q", got)
	}
}

func TestRegistryTypesSorted(t *testing.T) {
	r := processors.NewRegistry()
	r.Register("zeta", &namedProcessor{})
	r.Register("alpha", &namedProcessor{})
	r.Register(captcha.TypeCalculation, &namedProcessor{})

	types := r.Types()
	want := []captcha.ChallengeType{"alpha", "calculation", "zeta"}
	if len(types) != len(want) {
		t.Fatalf("expected %d types, got %d", len(want), len(types))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("expected sorted types %v, got %v", want, types)
		}
	}
}

func TestDefaultRegistryHasBaselineTypes(t *testing.T) {
	r := processors.NewDefaultRegistry(ports.OCREngineFunc(func(ctx context.Context, image []byte) (string, error) {
		return "", nil
	}))
	for _, typ := range []captcha.ChallengeType{captcha.TypeText, captcha.TypeCalculation} {
		if _, err := r.Resolve(typ); err != nil {
			t.Fatalf("expected baseline type %s to be registered: %v", typ, err)
		}
	}
}
