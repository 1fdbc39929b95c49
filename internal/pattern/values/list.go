package values

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ============================================================
// Raw per-index settings
// ============================================================

// List настройка с одним значением или значением на каждый индекс. В JSON
// это скаляр, строка через пробел или массив; null и "_" означают
// "не задано на этом индексе".
type List []string

// ListOf собирает List из готовых строк.
func ListOf(items ...string) List {
	if len(items) == 0 {
		return nil
	}
	return List(items)
}

// ParseList разбивает строку по пробелам.
func ParseList(s string) List {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	return List(fields)
}

func (l List) String() string {
	return strings.Join(l, " ")
}

func (l List) MarshalJSON() ([]byte, error) {
	for _, item := range l {
		if strings.ContainsAny(item, " \t\n") {
			return json.Marshal([]string(l))
		}
	}
	return json.Marshal(strings.Join(l, " "))
}

func (l *List) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case string:
		*l = ParseList(v)
		return nil
	case []any:
		items := make(List, 0, len(v))
		for _, elem := range v {
			item, err := scalarText(elem)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			items = nil
		}
		*l = items
		return nil
	default:
		item, err := scalarText(v)
		if err != nil {
			return err
		}
		*l = List{item}
		return nil
	}
}

func scalarText(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return Unset, nil
	case string:
		if strings.TrimSpace(x) == "" {
			return Unset, nil
		}
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return FormatFloat(x), nil
	case int:
		return strconv.Itoa(x), nil
	}
	return "", fmt.Errorf("unsupported list item %v (%T)", v, v)
}

// ============================================================
// Space-separated numeric lists
// ============================================================

// Ints список целых в виде "0 3 7 12".
type Ints []int

func (l Ints) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func (l Ints) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Ints) UnmarshalJSON(data []byte) error {
	items, err := decodeNumberList(data)
	if err != nil {
		return err
	}
	if items == nil {
		*l = nil
		return nil
	}
	out := make(Ints, 0, len(items))
	for _, item := range items {
		v, ok := ParseInt(item)
		if !ok {
			return fmt.Errorf("invalid integer %q", item)
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// Floats список чисел в виде "0.5 -0.25 0".
type Floats []float64

func (l Floats) String() string {
	return FormatFloats(l...)
}

func (l Floats) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

func (l *Floats) UnmarshalJSON(data []byte) error {
	items, err := decodeNumberList(data)
	if err != nil {
		return err
	}
	if items == nil {
		*l = nil
		return nil
	}
	out := make(Floats, 0, len(items))
	for _, item := range items {
		v, ok := ParseFloat(item)
		if !ok {
			return fmt.Errorf("invalid number %q", item)
		}
		out = append(out, v)
	}
	*l = out
	return nil
}

// At возвращает i-ю компоненту или 0.
func (l Floats) At(i int) float64 {
	if i < 0 || i >= len(l) {
		return 0
	}
	return l[i]
}

func decodeNumberList(data []byte) ([]string, error) {
	var list List
	if err := list.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list, nil
}
