package values

import (
	"fmt"
	"strings"
)

// Sequence список необязательных значений по индексам. За концом списка
// либо цикл, либо запасное значение (или функция). Отрицательные индексы
// не зацикливаются.
type Sequence[T any] struct {
	items   []T
	present []bool
	cyclic  bool
	backup  func(index int) (T, bool)
}

// SequenceOption настраивает Sequence.
type SequenceOption[T any] func(*Sequence[T])

// Cyclic: за концом index % length.
func Cyclic[T any]() SequenceOption[T] {
	return func(s *Sequence[T]) { s.cyclic = true }
}

// WithBackup задает значение за концом списка.
func WithBackup[T any](val T) SequenceOption[T] {
	return func(s *Sequence[T]) {
		s.backup = func(int) (T, bool) { return val, true }
	}
}

// WithBackupFunc вычисляет значение за концом списка.
func WithBackupFunc[T any](fn func(index int) (T, bool)) SequenceOption[T] {
	return func(s *Sequence[T]) { s.backup = fn }
}

// NewSequence разбирает элементы через parse. Неразобранные (и "_")
// остаются пустыми позициями.
func NewSequence[T any](list List, parse func(string) (T, bool), opts ...SequenceOption[T]) Sequence[T] {
	s := Sequence[T]{
		items:   make([]T, len(list)),
		present: make([]bool, len(list)),
	}
	for i, item := range list {
		s.items[i], s.present[i] = parse(item)
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// SequenceOf оборачивает готовые значения.
func SequenceOf[T any](vals []T, opts ...SequenceOption[T]) Sequence[T] {
	s := Sequence[T]{
		items:   append([]T(nil), vals...),
		present: make([]bool, len(vals)),
	}
	for i := range s.present {
		s.present[i] = true
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s Sequence[T]) Len() int {
	return len(s.items)
}

// Get возвращает значение на index и признак, что оно задано.
func (s Sequence[T]) Get(index int) (T, bool) {
	var zero T
	n := len(s.items)
	switch {
	case index >= 0 && index < n:
		return s.items[index], s.present[index]
	case index >= n && n > 0 && s.cyclic:
		i := index % n
		return s.items[i], s.present[i]
	case s.backup != nil:
		return s.backup(index)
	}
	return zero, false
}

// Values возвращает заданные значения по порядку.
func (s Sequence[T]) Values() []T {
	out := make([]T, 0, len(s.items))
	for i, v := range s.items {
		if s.present[i] {
			out = append(out, v)
		}
	}
	return out
}

func (s Sequence[T]) String() string {
	parts := make([]string, len(s.items))
	for i, v := range s.items {
		if s.present[i] {
			parts[i] = fmt.Sprint(v)
		} else {
			parts[i] = Unset
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// ============================================================
// Ranges
// ============================================================

// RangeSequence нижние и верхние границы по индексам. Незаданная граница
// открыта.
type RangeSequence struct {
	Low  Sequence[float64]
	High Sequence[float64]
}

// NewRangeSequence строит циклические границы из настроек.
func NewRangeSequence(low, high List) RangeSequence {
	return RangeSequence{
		Low:  NewSequence(low, ParseFloat, Cyclic[float64]()),
		High: NewSequence(high, ParseFloat, Cyclic[float64]()),
	}
}

func (r RangeSequence) Len() int {
	return max(r.Low.Len(), r.High.Len())
}

// Contains: low[index] <= val <= high[index].
func (r RangeSequence) Contains(val float64, index int) bool {
	if low, ok := r.Low.Get(index); ok && val < low {
		return false
	}
	if high, ok := r.High.Get(index); ok && val > high {
		return false
	}
	return true
}

func (r RangeSequence) String() string {
	return r.Low.String() + ".." + r.High.String()
}
