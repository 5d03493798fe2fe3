package processors_test

import (
	"context"
	"testing"

	"github.com/captchakit/captcha-recognizer/internal/application/processors"
	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

func staticEngine(text string) ports.OCREngine {
	return ports.OCREngineFunc(func(ctx context.Context, image []byte) (string, error) {
		return text, nil
	})
}

func TestCalculationResults(t *testing.T) {
	cases := []struct {
		name string
		ocr  string
		opts captcha.Options
		want string
	}{
		{name: "addition", ocr: "3+5", want: "8"},
		{name: "addition with noise", ocr: "3+5=?", want: "8"},
		{name: "subtraction", ocr: "9-4", want: "5"},
		{name: "multiplication star", ocr: "6*7", want: "42"},
		{name: "multiplication x", ocr: "6x7", want: "42"},
		{name: "multiplication full width", ocr: "6×7", want: "42"},
		{name: "division fractional", ocr: "9/2", want: "4.5"},
		{name: "division integer", ocr: "9/3", want: "3"},
		{name: "division sign", ocr: "8÷2", want: "4"},
		{name: "division by zero", ocr: "7÷0", want: "+Inf"},
		{name: "spaces stripped", ocr: "3 + 5", want: "8"},
		{name: "ocr confusion operands", ocr: "l+I", want: "2"},
		{name: "letter o as zero", ocr: "1O+2", want: "12"},
		{name: "first expression wins", ocr: "1+2 and 3+4", want: "3"},
		{name: "no expression returns cleaned text", ocr: "CxA", want: "CxA"},
		{name: "empty expression text", ocr: "abc", want: "abc"},
		{name: "operand overflow returns cleaned text", ocr: "99999999999999999999+1", want: "99999999999999999999+1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := processors.NewCalculationProcessor(staticEngine(tc.ocr))
			got, err := p.Process(context.Background(), []byte("img"), tc.opts)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ocr %q: expected %q, got %q", tc.ocr, tc.want, got)
			}
		})
	}
}

func TestCalculationExpressionMode(t *testing.T) {
	p := processors.NewCalculationProcessor(staticEngine("3+5=?"))
	got, err := p.Process(context.Background(), []byte("img"), captcha.Options{
		captcha.OptReturnType: captcha.ReturnExpression,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "3+5" {
		t.Fatalf("expected literal expression %q, got %q", "3+5", got)
	}
}

func TestCalculationExpressionKeepsRawOperator(t *testing.T) {
	p := processors.NewCalculationProcessor(staticEngine("6×7"))
	got, err := p.Process(context.Background(), []byte("img"), captcha.Options{
		captcha.OptReturnType: captcha.ReturnExpression,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "6×7" {
		t.Fatalf("expression mode must echo the raw operator, got %q", got)
	}
}

func TestCalculationAsFloat(t *testing.T) {
	cases := []struct {
		ocr  string
		want string
	}{
		// Whole values keep a fractional digit in decimal mode.
		{ocr: "9/3", want: "3.0"},
		{ocr: "3+5", want: "8.0"},
		{ocr: "9/2", want: "4.5"},
	}
	for _, tc := range cases {
		p := processors.NewCalculationProcessor(staticEngine(tc.ocr))
		got, err := p.Process(context.Background(), []byte("img"), captcha.Options{
			captcha.OptAsInt: false,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tc.want {
			t.Fatalf("ocr %q: expected %q, got %q", tc.ocr, tc.want, got)
		}
	}
}

func TestCalculationPropagatesEngineError(t *testing.T) {
	wantErr := context.DeadlineExceeded
	p := processors.NewCalculationProcessor(ports.OCREngineFunc(func(ctx context.Context, image []byte) (string, error) {
		return "", wantErr
	}))
	if _, err := p.Process(context.Background(), []byte("img"), nil); err != wantErr {
		t.Fatalf("expected engine error to propagate, got %v", err)
	}
}
