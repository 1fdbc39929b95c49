// Package match компилирует шаблоны имен и путей из спек групп.
// Шаблон считается glob, если не похож на регулярное выражение; префиксы
// "re:" и "glob:" задают вид явно. Одиночная "." это просто точка, так что
// "layer.1/*" остается glob.
package match

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

const (
	regexPrefix = "re:"
	globPrefix  = "glob:"
	globMeta    = "*?[{"
)

// regexHint: метасимволы regex или точка с квантификатором (".*", ".+")
var regexHint = regexp.MustCompile(`[+()|^$\\]|\.[*+?{]`)

type Matcher interface {
	Match(s string) bool
	String() string
}

// IsGlob: в s есть glob-символы.
func IsGlob(s string) bool {
	return strings.ContainsAny(s, globMeta)
}

// Compile строит матчер на всю строку.
func Compile(pattern string) (Matcher, error) {
	switch {
	case strings.HasPrefix(pattern, regexPrefix):
		return compileRegex(strings.TrimPrefix(pattern, regexPrefix))
	case strings.HasPrefix(pattern, globPrefix):
		return compileGlob(strings.TrimPrefix(pattern, globPrefix))
	case regexHint.MatchString(pattern):
		return compileRegex(pattern)
	case IsGlob(pattern):
		return compileGlob(pattern)
	}
	return exact(pattern), nil
}

// CompileGlob никогда не считает шаблон regex. Используется для имен групп.
func CompileGlob(pattern string) (Matcher, error) {
	if !IsGlob(pattern) {
		return exact(pattern), nil
	}
	return compileGlob(pattern)
}

// CompileAll компилирует все шаблоны, останавливаясь на первой ошибке.
func CompileAll(patterns []string) ([]Matcher, error) {
	out := make([]Matcher, 0, len(patterns))
	for _, p := range patterns {
		m, err := Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Any: хотя бы один матчер подходит.
func Any(matchers []Matcher, s string) bool {
	for _, m := range matchers {
		if m.Match(s) {
			return true
		}
	}
	return false
}

// ============================================================
// Implementations
// ============================================================

type exact string

func (e exact) Match(s string) bool { return string(e) == s }
func (e exact) String() string      { return string(e) }

type globMatcher struct {
	pattern string
	g       glob.Glob
}

func compileGlob(pattern string) (Matcher, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile glob %q: %w", pattern, err)
	}
	return &globMatcher{pattern: pattern, g: g}, nil
}

func (m *globMatcher) Match(s string) bool { return m.g.Match(s) }
func (m *globMatcher) String() string      { return globPrefix + m.pattern }

type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func compileRegex(pattern string) (Matcher, error) {
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, fmt.Errorf("compile regex %q: %w", pattern, err)
	}
	return &regexMatcher{pattern: pattern, re: re}, nil
}

func (m *regexMatcher) Match(s string) bool { return m.re.MatchString(s) }
func (m *regexMatcher) String() string      { return regexPrefix + m.pattern }
