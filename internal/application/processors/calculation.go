package processors

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/captchakit/captcha-recognizer/internal/core/domain/captcha"
	"github.com/captchakit/captcha-recognizer/internal/core/ports"
)

// expressionPattern matches the first digits-operator-digits run in the
// cleaned OCR text. Multi-term expressions are intentionally not supported;
// surrounding noise characters are ignored.
var expressionPattern = regexp.MustCompile(`(\d+)([+\-*/x×÷])(\d+)`)

// confusionReplacer corrects characters the OCR engine commonly confuses
// with digits, and drops question marks and equals signs.
var confusionReplacer = strings.NewReplacer(
	" ", "",
	"O", "0",
	"o", "0",
	"l", "1",
	"I", "1",
	"S", "5",
	"Z", "2",
	"B", "8",
	"?", "",
	"=", "",
)

// CalculationProcessor handles arithmetic challenges such as "3+5=?". It
// normalizes the OCR output, extracts the first two-operand expression and
// either evaluates it or returns it verbatim.
type CalculationProcessor struct {
	engine ports.OCREngine
}

func NewCalculationProcessor(engine ports.OCREngine) *CalculationProcessor {
	return &CalculationProcessor{engine: engine}
}

// Process implements ports.Processor.
//
// Options: return_type ("result" or "expression", default "result") and
// as_int (default true, formats integer-valued results without a decimal
// point). Text with no recognizable expression is returned cleaned but
// otherwise untouched.
func (p *CalculationProcessor) Process(ctx context.Context, image []byte, opts captcha.Options) (string, error) {
	raw, err := p.engine.Classify(ctx, image)
	if err != nil {
		return "", err
	}

	cleaned := confusionReplacer.Replace(raw)

	expr, ok := parseExpression(cleaned)
	if !ok {
		return cleaned, nil
	}

	if opts.String(captcha.OptReturnType, captcha.ReturnResult) == captcha.ReturnExpression {
		return expr.OperandA + expr.Operator + expr.OperandB, nil
	}

	value := evaluate(expr)
	return formatValue(value, opts.Bool(captcha.OptAsInt, true)), nil
}

// matchedExpression keeps the operands as the literal matched substrings so
// expression mode can echo them back unmodified, alongside their parsed
// integer values.
type matchedExpression struct {
	OperandA string
	Operator string
	OperandB string

	parsed captcha.ParsedExpression
}

// parseExpression rejects matches whose operands overflow int64, falling
// back to the no-interpretation path.
func parseExpression(text string) (matchedExpression, bool) {
	m := expressionPattern.FindStringSubmatch(text)
	if m == nil {
		return matchedExpression{}, false
	}
	a, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return matchedExpression{}, false
	}
	b, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return matchedExpression{}, false
	}
	return matchedExpression{
		OperandA: m[1],
		Operator: m[2],
		OperandB: m[3],
		parsed:   captcha.ParsedExpression{OperandA: a, Operator: m[2], OperandB: b},
	}, true
}

// Parsed returns the typed expression form.
func (e matchedExpression) Parsed() captcha.ParsedExpression {
	return e.parsed
}

func evaluate(e matchedExpression) float64 {
	p := e.Parsed()
	a, b := float64(p.OperandA), float64(p.OperandB)
	switch p.Operator {
	case "+":
		return a + b
	case "-":
		return a - b
	case "*", "x", "×":
		return a * b
	case "/", "÷":
		if p.OperandB == 0 {
			// Division by zero yields the positive-infinity sentinel
			// instead of failing the recognition.
			return math.Inf(1)
		}
		return a / b
	}
	return 0
}

func formatValue(v float64, asInt bool) string {
	if math.IsInf(v, 1) {
		return "+Inf"
	}
	if v == math.Trunc(v) {
		if asInt {
			return strconv.FormatInt(int64(v), 10)
		}
		// Decimal mode keeps one fractional digit on whole values, so
		// "9/3" reads "3.0" rather than collapsing to "3".
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
