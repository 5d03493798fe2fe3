package captcha

import (
	"time"
	"unicode"
)

// ChallengeType tags which processor interprets the raw OCR output.
// The set is open: further types can be registered at runtime.
type ChallengeType string

const (
	TypeText        ChallengeType = "text"
	TypeCalculation ChallengeType = "calculation"
)

func (t ChallengeType) String() string { return string(t) }

// Option keys understood by the baseline processors. Options travel as a
// plain map so registered processors can define their own keys.
const (
	OptRemoveSpaces = "remove_spaces"
	OptToLower      = "to_lower"
	OptToUpper      = "to_upper"
	OptReturnType   = "return_type"
	OptAsInt        = "as_int"
	OptPreprocess   = "preprocess"
)

// Return types for the calculation processor.
const (
	ReturnResult     = "result"
	ReturnExpression = "expression"
)

// Options is the per-request processor configuration.
type Options map[string]any

// Bool reads a boolean option, falling back to def when absent or mistyped.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// String reads a string option, falling back to def when absent or mistyped.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Float reads a numeric option, accepting JSON-decoded float64 or int values.
func (o Options) Float(key string, def float64) float64 {
	switch v := o[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// ParsedExpression is the arithmetic interpretation extracted from a
// calculation challenge. Operands are non-negative; the operator is one of
// + - * x × / ÷ as it appeared in the OCR text.
type ParsedExpression struct {
	OperandA int64
	Operator string
	OperandB int64
}

// Recognition is the outcome handed back by the recognizer service.
type Recognition struct {
	Result    string
	Type      ChallengeType
	Cached    bool
	Duration  time.Duration
	RequestID string
}

// ResultClass buckets a recognition result by its character content. Used by
// the HTTP surface to annotate responses.
type ResultClass string

const (
	ClassUnknown       ResultClass = "unknown"
	ClassPureDigit     ResultClass = "pure_digit"
	ClassPureLetter    ResultClass = "pure_letter"
	ClassAlphanumeric  ResultClass = "mixed_alphanumeric"
	ClassCalculation   ResultClass = "calculation"
	ClassSpecialSymbol ResultClass = "special_symbol"
)

// ClassifyResult inspects a recognition result and reports which class of
// challenge likely produced it.
func ClassifyResult(result string) ResultClass {
	if result == "" {
		return ClassUnknown
	}

	clean := make([]rune, 0, len(result))
	for _, r := range result {
		if r != ' ' {
			clean = append(clean, r)
		}
	}
	if len(clean) == 0 {
		return ClassUnknown
	}

	hasDigit, hasAlpha, hasOther := false, false, false
	for _, r := range clean {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasAlpha = true
		default:
			hasOther = true
		}
	}

	switch {
	case hasDigit && !hasAlpha && !hasOther:
		return ClassPureDigit
	case hasAlpha && !hasDigit && !hasOther:
		return ClassPureLetter
	case hasDigit && hasAlpha:
		return ClassAlphanumeric
	case hasOther:
		for _, r := range clean {
			switch r {
			case '+', '-', '*', '/', '×', '÷', '=':
				return ClassCalculation
			}
		}
		return ClassSpecialSymbol
	}
	return ClassUnknown
}
