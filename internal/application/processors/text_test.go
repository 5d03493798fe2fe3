package processors_test

import (
	"context"
	"testing"

	"github.com/captchakit/captcha-recognizer/internal/application/processors"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

func TestTextDefaultsRemoveSpaces(t *testing.T) {
	p := processors.NewTextProcessor(staticEngine("a b 1 2"))
	got, err := p.Process(context.Background(), []byte("img"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ab12" {
		t.Fatalf("expected %q, got %q", "ab12", got)
	}
}

func TestTextKeepSpaces(t *testing.T) {
	p := processors.NewTextProcessor(staticEngine("a b"))
	got, _ := p.Process(context.Background(), []byte("img"), captcha.Options{
		captcha.OptRemoveSpaces: false,
	})
	if got != "a b" {
		t.Fatalf("expected %q, got %q", "a b", got)
	}
}

func TestTextCasing(t *testing.T) {
	cases := []struct {
		name string
		opts captcha.Options
		want string
	}{
		{name: "lowercase", opts: captcha.Options{captcha.OptToLower: true}, want: "ab12"},
		{name: "uppercase", opts: captcha.Options{captcha.OptToUpper: true}, want: "AB12"},
		{
			name: "uppercase dominates when both set",
			opts: captcha.Options{captcha.OptToLower: true, captcha.OptToUpper: true},
			want: "AB12",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := processors.NewTextProcessor(staticEngine("Ab12"))
			got, err := p.Process(context.Background(), []byte("img"), tc.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
