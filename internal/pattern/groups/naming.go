package groups

import (
	"strconv"

	"pattern-mapper/internal/pattern/models"
	"pattern-mapper/internal/pattern/values"
)

// namer: base + suffix(index), либо просто base, если группа одна и
// суффиксы не заданы.
type namer struct {
	base     string
	suffixes values.Sequence[string]
	explicit bool
}

func newNamer(spec *models.GenSpecBase) namer {
	return namer{
		base: spec.GroupName,
		suffixes: values.NewSequence(spec.Suffixes, parseSuffix,
			values.WithBackupFunc(func(i int) (string, bool) { return strconv.Itoa(i), true })),
		explicit: len(spec.Suffixes) > 0,
	}
}

func parseSuffix(s string) (string, bool) {
	v := values.ParseValue(s)
	if v == nil {
		return "", false
	}
	return values.FormatValue(v), true
}

func (n namer) name(index, total int) string {
	if total == 1 && !n.explicit && n.base != "" {
		return n.base
	}
	return n.base + n.suffix(index)
}

func (n namer) suffix(index int) string {
	if s, ok := n.suffixes.Get(index); ok {
		return s
	}
	return strconv.Itoa(index)
}
