package captcha_test

import (
	"testing"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
)

func TestClassifyResult(t *testing.T) {
	cases := []struct {
		result string
		want   captcha.ResultClass
	}{
		{"123456", captcha.ClassPureDigit},
		{"abcDEF", captcha.ClassPureLetter},
		{"a1b2", captcha.ClassAlphanumeric},
		{"3+5=8", captcha.ClassCalculation},
		{"7/0", captcha.ClassCalculation},
		{"#@!", captcha.ClassSpecialSymbol},
		{"", captcha.ClassUnknown},
		{"   ", captcha.ClassUnknown},
		{"AB 12", captcha.ClassAlphanumeric},
		// Mixed text containing symbols is still alphanumeric, not calculation.
		{"a1+", captcha.ClassAlphanumeric},
	}
	for _, tc := range cases {
		if got := captcha.ClassifyResult(tc.result); got != tc.want {
			t.Errorf("ClassifyResult(%q) = %q, want %q", tc.result, got, tc.want)
		}
	}
}

func TestOptionsBool(t *testing.T) {
	opts := captcha.Options{
		captcha.OptToUpper:      true,
		captcha.OptRemoveSpaces: "yes", // mistyped
	}
	if !opts.Bool(captcha.OptToUpper, false) {
		t.Fatal("explicit true not read")
	}
	if !opts.Bool(captcha.OptRemoveSpaces, true) {
		t.Fatal("mistyped value must fall back to default")
	}
	if opts.Bool("absent", false) {
		t.Fatal("absent key must fall back to default")
	}

	var nilOpts captcha.Options
	if !nilOpts.Bool(captcha.OptToUpper, true) {
		t.Fatal("nil options must be usable")
	}
}

func TestOptionsString(t *testing.T) {
	opts := captcha.Options{captcha.OptReturnType: captcha.ReturnExpression}
	if got := opts.String(captcha.OptReturnType, captcha.ReturnResult); got != captcha.ReturnExpression {
		t.Fatalf("got %q", got)
	}
	if got := opts.String("absent", "fallback"); got != "fallback" {
		t.Fatalf("got %q", got)
	}

	empty := captcha.Options{captcha.OptReturnType: ""}
	if got := empty.String(captcha.OptReturnType, captcha.ReturnResult); got != captcha.ReturnResult {
		t.Fatalf("empty string must fall back, got %q", got)
	}
}

func TestOptionsFloat(t *testing.T) {
	opts := captcha.Options{"contrast": 1.5, "scale": 2, "level": int64(3)}
	if got := opts.Float("contrast", 0); got != 1.5 {
		t.Fatalf("got %v", got)
	}
	if got := opts.Float("scale", 0); got != 2 {
		t.Fatalf("int values must be accepted, got %v", got)
	}
	if got := opts.Float("level", 0); got != 3 {
		t.Fatalf("int64 values must be accepted, got %v", got)
	}
	if got := opts.Float("absent", 0.7); got != 0.7 {
		t.Fatalf("got %v", got)
	}
}
