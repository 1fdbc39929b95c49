package values

import (
	"math"
	"strconv"
	"strings"
)

// Unset обозначает пропущенный элемент списка.
const Unset = "_"

// ParseValue разбирает скаляр: число, если получается, иначе строка.
// "_" и пустая строка дают nil.
func ParseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" || s == Unset {
		return nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// ParseFloat разбирает число; false для "_" и не-чисел.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unset {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseInt разбирает целое, дробное отбрасывается к нулю.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if i, err := strconv.Atoi(s); err == nil {
		return i, true
	}
	f, ok := ParseFloat(s)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// ParseString оставляет строку как есть, кроме "_".
func ParseString(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == Unset {
		return "", false
	}
	return s, true
}

// FormatValue возвращает значение в текстовом виде.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return FormatFloat(x)
	case float32:
		return FormatFloat(float64(x))
	case bool:
		if x {
			return "1"
		}
		return "0"
	}
	return ""
}

// FormatFloat печатает f минимальным числом цифр без потерь.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatFloats склеивает числа через пробел.
func FormatFloats(vals ...float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = FormatFloat(v)
	}
	return strings.Join(parts, " ")
}

// Round округляет x до digits знаков.
func Round(x float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	return math.Round(x*p) / p
}
