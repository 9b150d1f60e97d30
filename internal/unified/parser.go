package unified

import (
	"fmt"
	"strings"
)

// Parse scans text into an Expr using a small state machine: CONST (plain
// text), IMM0/DEF0 (just after a bare `$`/`#`), IMM1/DEF1 (inside the
// braces of `${…}`/`#{…}`), and ESCAPE (`\$`, `\#`, `\\`). A `#{…}` body
// containing a nested `${…}` is recognized as the Nested form rather than
// a plain Deferred one.
func Parse(text string) (*Expr, error) {
	runes := []rune(text)
	n := len(runes)

	var fragments []*Expr
	var constBuf strings.Builder
	flushConst := func() {
		if constBuf.Len() > 0 {
			fragments = append(fragments, &Expr{Kind: ConstantKind, Text: constBuf.String()})
			constBuf.Reset()
		}
	}

	i := 0
	for i < n {
		c := runes[i]
		switch {
		case c == '\\' && i+1 < n && (runes[i+1] == '$' || runes[i+1] == '#' || runes[i+1] == '\\'):
			constBuf.WriteRune(runes[i+1])
			i += 2
		case (c == '$' || c == '#') && i+1 < n && runes[i+1] == '{':
			immediate := c == '$'
			flushConst()
			body, next, err := scanBraced(runes, i+2)
			if err != nil {
				return nil, err
			}
			if immediate {
				fragments = append(fragments, &Expr{Kind: ImmediateKind, Text: body})
			} else if strings.Contains(body, "${") {
				fragments = append(fragments, &Expr{Kind: NestedKind, Text: body})
			} else {
				fragments = append(fragments, &Expr{Kind: DeferredKind, Text: body})
			}
			i = next
		default:
			constBuf.WriteRune(c)
			i++
		}
	}
	flushConst()

	switch len(fragments) {
	case 0:
		return &Expr{Kind: ConstantKind, Text: "", source: text}, nil
	case 1:
		fragments[0].source = text
		return fragments[0], nil
	default:
		return &Expr{Kind: CompositeKind, Fragments: fragments, source: text}, nil
	}
}

// scanBraced reads the body of a `${…}`/`#{…}` form starting just past the
// opening brace, tracking nested braces (DEF1's inner brace counter, so a
// nested `${…}` doesn't end the deferred form early) and skipping over
// quoted string literals so a `}` inside a string literal is not mistaken
// for the closing delimiter. It returns the body text and the index just
// past the matching closing `}`.
func scanBraced(runes []rune, start int) (string, int, error) {
	depth := 1
	var sb strings.Builder
	i := start
	n := len(runes)
	for i < n {
		c := runes[i]
		switch c {
		case '\'', '"':
			quote := c
			sb.WriteRune(c)
			i++
			for i < n {
				c2 := runes[i]
				sb.WriteRune(c2)
				i++
				if c2 == '\\' && i < n {
					sb.WriteRune(runes[i])
					i++
					continue
				}
				if c2 == quote {
					break
				}
			}
		case '{':
			depth++
			sb.WriteRune(c)
			i++
		case '}':
			depth--
			if depth == 0 {
				return sb.String(), i + 1, nil
			}
			sb.WriteRune(c)
			i++
		default:
			sb.WriteRune(c)
			i++
		}
	}
	return "", 0, fmt.Errorf("unified expression: unterminated %q, missing closing brace", string(runes[start-2:min(start, n)]))
}
