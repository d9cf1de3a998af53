// The lexer reads source text straight into cells. There is no separate
// token type: a loaded block is already the data structure the evaluator
// wants, so the loader builds flexes as it goes and stamps them with the
// file and line they came from.
//
// Everything is built unmanaged and handed to the collector in one piece at
// the end, so a collection can never run while a half-loaded tree is only
// reachable from the loader's locals.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/skiff-lang/Skiff/source/err"
	"github.com/skiff-lang/Skiff/source/settings"
	"github.com/skiff-lang/Skiff/source/values"
)

type loader struct {
	runes   *RuneSupplier
	heap    *values.Heap
	source  string
	problem values.Value
}

// Load turns source text into a block. The problem result is null if all
// went well and a raised error if it didn't, in which case the block result
// is null instead.
func Load(h *values.Heap, source string, input string) (values.Value, values.Value) {
	ld := &loader{runes: NewRuneSupplier([]rune(input)), heap: h, source: source, problem: values.NULL_V}
	f := h.NewFlex(values.SOURCE, 8)
	f.SetFileLine(source, 1)
	if !ld.fill(f, 0, 1) {
		return values.NULL_V, ld.problem
	}
	result := values.Value{T: values.BLOCK, V: values.Series{Flex: f}}
	h.ManageDeep(result)
	if settings.SHOW_LEXER {
		fmt.Println("loaded: " + values.Mold(result))
	}
	return result, values.NULL_V
}

func (ld *loader) fail(id string, args ...any) {
	ld.problem = err.Raise(ld.heap, id, "", "loading "+ld.source, args...)
}

// fill reads values into the flex until it meets the closer matching the
// opener, or the end of the input if the opener is 0. Nesting recurses; this
// is the loader's recursion, bounded by the brackets of the source text, not
// the evaluator's, which has none.
func (ld *loader) fill(f *values.Flex, opener rune, openLine int) bool {
	for {
		r := ld.runes.CurrentRune()
		switch {
		case r == 0:
			if opener != 0 {
				ld.fail("load/mismatched", string(opener), openLine, "end of input")
				return false
			}
			return true
		case isWhitespace(r):
			ld.runes.Next()
		case r == ';':
			for ld.runes.CurrentRune() != '\n' && ld.runes.CurrentRune() != 0 {
				ld.runes.Next()
			}
		case r == '[' || r == '(':
			line := ld.runes.Line()
			ld.runes.Next()
			sub := ld.heap.NewFlex(values.SOURCE, 8)
			sub.SetFileLine(ld.source, line)
			if !ld.fill(sub, r, line) {
				return false
			}
			t := values.BLOCK
			if r == '(' {
				t = values.GROUP
			}
			f.Append(values.Value{T: t, V: values.Series{Flex: sub}})
		case r == ']' || r == ')':
			line := ld.runes.Line()
			ld.runes.Next()
			if opener == 0 {
				ld.fail("load/extra-close", string(r), line)
				return false
			}
			if (opener == '[' && r == ']') || (opener == '(' && r == ')') {
				return true
			}
			ld.fail("load/mismatched", string(opener), openLine, string(r))
			return false
		case r == '"':
			s, ok := ld.readText()
			if !ok {
				return false
			}
			f.Append(values.Value{T: values.TEXT, V: s})
		case r == ':':
			ld.runes.Next()
			name := ld.readWordToken()
			if name == "" {
				f.Append(wordCell(values.WORD, ":"))
			} else {
				f.Append(wordCell(values.GET_WORD, name))
			}
		case r == '\'':
			ld.runes.Next()
			name := ld.readWordToken()
			if name == "" {
				f.Append(wordCell(values.WORD, "'"))
			} else {
				f.Append(wordCell(values.LIT_WORD, name))
			}
		case r == '^':
			ld.runes.Next()
			name := ld.readWordToken()
			if name == "" {
				f.Append(wordCell(values.WORD, "^"))
			} else {
				f.Append(wordCell(values.META_WORD, name))
			}
		case isNumberStart(r, ld.runes.PeekRune()):
			if !ld.readNumber(f) {
				return false
			}
		case isWordStart(r):
			name := ld.readWordToken()
			switch {
			case name == "_":
				f.Append(values.BLANK_V)
			case ld.runes.CurrentRune() == ':':
				ld.runes.Next()
				f.Append(wordCell(values.SET_WORD, name))
			default:
				f.Append(wordCell(values.WORD, name))
			}
		default:
			ld.fail("load/bad-char", string(r), ld.runes.Line())
			return false
		}
	}
}

func (ld *loader) readWordToken() string {
	var sb strings.Builder
	for isWordChar(ld.runes.CurrentRune()) {
		sb.WriteRune(ld.runes.CurrentRune())
		ld.runes.Next()
	}
	return sb.String()
}

func (ld *loader) readNumber(f *values.Flex) bool {
	line := ld.runes.Line()
	var sb strings.Builder
	for isWordChar(ld.runes.CurrentRune()) || ld.runes.CurrentRune() == '.' {
		sb.WriteRune(ld.runes.CurrentRune())
		ld.runes.Next()
	}
	literal := sb.String()
	if i, e := strconv.Atoi(literal); e == nil {
		f.Append(values.Value{T: values.INTEGER, V: i})
		return true
	}
	if d, e := strconv.ParseFloat(literal, 64); e == nil {
		f.Append(values.Value{T: values.DECIMAL, V: d})
		return true
	}
	ld.fail("load/bad-number", literal, line)
	return false
}

func (ld *loader) readText() (string, bool) {
	startLine := ld.runes.Line()
	ld.runes.Next()
	var sb strings.Builder
	for {
		r := ld.runes.CurrentRune()
		switch r {
		case 0, '\n':
			ld.fail("load/unterminated-text", startLine)
			return "", false
		case '"':
			ld.runes.Next()
			return sb.String(), true
		case '^':
			ld.runes.Next()
			if !ld.readEscape(&sb) {
				return "", false
			}
		default:
			sb.WriteRune(r)
			ld.runes.Next()
		}
	}
}

func (ld *loader) readEscape(sb *strings.Builder) bool {
	r := ld.runes.CurrentRune()
	switch r {
	case '/':
		sb.WriteRune('\n')
	case '-':
		sb.WriteRune('\t')
	case '^':
		sb.WriteRune('^')
	case '"':
		sb.WriteRune('"')
	case '(':
		ld.runes.Next()
		var hex strings.Builder
		for ld.runes.CurrentRune() != ')' {
			if ld.runes.CurrentRune() == 0 {
				ld.fail("load/bad-escape", "^("+hex.String(), ld.runes.Line())
				return false
			}
			hex.WriteRune(ld.runes.CurrentRune())
			ld.runes.Next()
		}
		code, e := strconv.ParseInt(hex.String(), 16, 32)
		if e != nil {
			ld.fail("load/bad-escape", "^("+hex.String()+")", ld.runes.Line())
			return false
		}
		sb.WriteRune(rune(code))
	default:
		ld.fail("load/bad-escape", "^"+string(r), ld.runes.Line())
		return false
	}
	ld.runes.Next()
	return true
}

func wordCell(t values.ValueType, name string) values.Value {
	return values.Value{T: t, V: values.Word{Name: name}}
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
}

func isWordStart(r rune) bool {
	return unicode.IsLetter(r) || strings.ContainsRune("+-*/=<>?!&|~_", r)
}

func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("+-*/=<>?!&|~_", r)
}

func isNumberStart(r rune, peek rune) bool {
	if unicode.IsDigit(r) {
		return true
	}
	return (r == '+' || r == '-') && unicode.IsDigit(peek)
}
