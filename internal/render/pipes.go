package render

import (
	"fmt"
	"regexp"
	"strings"
)

var filterNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// rewriteFilters converts the pipe filter form into plain function calls:
//
//	"asdf" | get_dir          ->  get_dir("asdf")
//	name | lookup("extra")    ->  lookup(name, "extra")
//
// Pipes are split only at the top level, so quoted strings, parenthesized
// sub-expressions, and the logical `||` operator pass through untouched.
func rewriteFilters(raw string) (string, error) {
	segments, err := splitTopLevelPipes(raw)
	if err != nil {
		return "", err
	}
	if len(segments) == 1 {
		return raw, nil
	}

	acc := strings.TrimSpace(segments[0])
	if acc == "" {
		return "", &ParseError{Expression: raw, Detail: "empty expression before '|'"}
	}

	for _, seg := range segments[1:] {
		filter := strings.TrimSpace(seg)
		if filter == "" {
			return "", &ParseError{Expression: raw, Detail: "empty filter after '|'"}
		}

		open := strings.IndexByte(filter, '(')
		if open < 0 {
			if !filterNameRe.MatchString(filter) {
				return "", &ParseError{Expression: raw, Detail: fmt.Sprintf("'%s' is not a valid filter name", filter)}
			}
			acc = fmt.Sprintf("%s(%s)", filter, acc)
			continue
		}

		name := strings.TrimSpace(filter[:open])
		if !filterNameRe.MatchString(name) {
			return "", &ParseError{Expression: raw, Detail: fmt.Sprintf("'%s' is not a valid filter name", name)}
		}
		if !strings.HasSuffix(filter, ")") {
			return "", &ParseError{Expression: raw, Detail: fmt.Sprintf("filter '%s' has unbalanced parentheses", name)}
		}
		args := strings.TrimSpace(filter[open+1 : len(filter)-1])
		if args == "" {
			acc = fmt.Sprintf("%s(%s)", name, acc)
		} else {
			acc = fmt.Sprintf("%s(%s, %s)", name, acc, args)
		}
	}
	return acc, nil
}

// splitTopLevelPipes splits an expression at `|` characters that sit outside
// quotes and brackets. A doubled `||` is the logical-or operator and is not
// a split point.
func splitTopLevelPipes(raw string) ([]string, error) {
	var segments []string
	var depth int
	var inQuote, escaped bool
	start := 0

	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if inQuote {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inQuote = false
			}
			continue
		}

		switch c {
		case '"':
			inQuote = true
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth < 0 {
				return nil, &ParseError{Expression: raw, Detail: "unbalanced brackets"}
			}
		case '|':
			if i+1 < len(raw) && raw[i+1] == '|' {
				i++
				continue
			}
			if depth == 0 {
				segments = append(segments, raw[start:i])
				start = i + 1
			}
		}
	}

	if inQuote {
		return nil, &ParseError{Expression: raw, Detail: "unterminated string literal"}
	}
	if depth != 0 {
		return nil, &ParseError{Expression: raw, Detail: "unbalanced brackets"}
	}

	segments = append(segments, raw[start:])
	return segments, nil
}
