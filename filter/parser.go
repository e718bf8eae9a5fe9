package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports a filter-expression syntax problem with the byte
// offset into the original expression string where it was detected,
// matching spec.md §8 scenario (f)'s "offset pointing at U" requirement.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("filter: %s (offset %d)", e.Message, e.Offset)
}

// Parse parses a chained filter expression such as
// "BW(4,0.5,5)>>STALTA(1,60)" into a single Filter, looking up each
// stage's name in r (case-insensitively) and feeding it the
// comma-separated numeric arguments via SetParameters. An unknown name
// yields an *UnknownFilterError whose Offset points at the name's first
// character, per spec.md §8 scenario (f).
func (r *Registry[T]) Parse(expr string) (Filter[T], error) {
	chain := NewChainFilter[T]()
	pos := 0
	for {
		pos = skipSpaces(expr, pos)
		nameStart := pos
		name, next, err := scanName(expr, pos)
		if err != nil {
			return nil, err
		}

		params, next2, err := scanParams(expr, next)
		if err != nil {
			return nil, err
		}

		filt, ok := r.Create(name)
		if !ok {
			return nil, &UnknownFilterError{Name: name, Offset: nameStart}
		}
		if len(params) > 0 {
			if n := filt.SetParameters(params); n != len(params) {
				return nil, &ParseError{
					Offset:  nameStart,
					Message: fmt.Sprintf("%s: expected %d parameter(s), got %d", name, n, len(params)),
				}
			}
		}
		chain.Add(filt)

		pos = skipSpaces(expr, next2)
		if pos >= len(expr) {
			break
		}
		if !strings.HasPrefix(expr[pos:], ">>") {
			return nil, &ParseError{Offset: pos, Message: "expected '>>' or end of expression"}
		}
		pos += 2
	}

	if chain.FilterCount() == 1 {
		return chain.filters[0], nil
	}
	return chain, nil
}

// UnknownFilterError is returned when a filter expression names a kind
// that has no registered constructor.
type UnknownFilterError struct {
	Name   string
	Offset int
}

func (e *UnknownFilterError) Error() string {
	return fmt.Sprintf("filter: unknown filter %q (offset %d)", e.Name, e.Offset)
}

func skipSpaces(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

func scanName(s string, pos int) (name string, next int, err error) {
	if pos >= len(s) || !isNameStart(s[pos]) {
		return "", pos, &ParseError{Offset: pos, Message: "expected a filter name"}
	}
	start := pos
	for pos < len(s) && isNameChar(s[pos]) {
		pos++
	}
	return s[start:pos], pos, nil
}

// scanParams parses an optional "(p1,p2,...)" group starting at pos; if
// pos does not point at '(', it returns zero params and pos unchanged.
func scanParams(s string, pos int) (params []float64, next int, err error) {
	pos = skipSpaces(s, pos)
	if pos >= len(s) || s[pos] != '(' {
		return nil, pos, nil
	}
	pos++
	for {
		pos = skipSpaces(s, pos)
		if pos < len(s) && s[pos] == ')' {
			pos++
			return params, pos, nil
		}
		start := pos
		for pos < len(s) && s[pos] != ',' && s[pos] != ')' {
			pos++
		}
		if pos >= len(s) {
			return nil, start, &ParseError{Offset: start, Message: "unterminated parameter list"}
		}
		token := strings.TrimSpace(s[start:pos])
		v, convErr := strconv.ParseFloat(token, 64)
		if convErr != nil {
			return nil, start, &ParseError{Offset: start, Message: fmt.Sprintf("invalid parameter %q", token)}
		}
		params = append(params, v)
		if s[pos] == ',' {
			pos++
			continue
		}
		// s[pos] == ')'
		pos++
		return params, pos, nil
	}
}
