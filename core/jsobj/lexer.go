package jsobj

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLBrace
	tokRBrace
	tokLBracket
	tokRBracket
	tokColon
	tokComma
	tokString
	tokNumber
	tokIdent
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokColon:
		return "':'"
	case tokComma:
		return "','"
	case tokString:
		return "string"
	case tokNumber:
		return "number"
	case tokIdent:
		return "identifier"
	}
	return "unknown token"
}

// token is a single lexical unit. text holds the decoded string value for
// strings, the name for identifiers and the literal for numbers.
type token struct {
	kind tokenKind
	text string
	num  float64
	pos  int
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: src}
}

func (l *lexer) errorf(pos int, format string, args ...any) error {
	return newSyntaxError(l.src, pos, fmt.Sprintf(format, args...))
}

// next returns the next token, skipping whitespace and comments.
func (l *lexer) next() (token, error) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: l.pos}, nil
	}

	start := l.pos
	c := l.src[l.pos]
	switch c {
	case '{':
		l.pos++
		return token{kind: tokLBrace, pos: start}, nil
	case '}':
		l.pos++
		return token{kind: tokRBrace, pos: start}, nil
	case '[':
		l.pos++
		return token{kind: tokLBracket, pos: start}, nil
	case ']':
		l.pos++
		return token{kind: tokRBracket, pos: start}, nil
	case ':':
		l.pos++
		return token{kind: tokColon, pos: start}, nil
	case ',':
		l.pos++
		return token{kind: tokComma, pos: start}, nil
	case '"', '\'':
		return l.lexString()
	}

	if c == '+' || c == '-' || c == '.' || isDigit(c) {
		return l.lexNumber()
	}

	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentStart(r) {
		return l.lexIdent(), nil
	}
	return token{}, l.errorf(start, "unexpected character %q", r)
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case unicode.IsSpace(r) || r == '\uFEFF':
			l.pos += size
		case strings.HasPrefix(l.src[l.pos:], "//"):
			end := strings.IndexAny(l.src[l.pos:], "\r\n")
			if end < 0 {
				l.pos = len(l.src)
			} else {
				l.pos += end
			}
		case strings.HasPrefix(l.src[l.pos:], "/*"):
			end := strings.Index(l.src[l.pos+2:], "*/")
			if end < 0 {
				return l.errorf(l.pos, "unterminated block comment")
			}
			l.pos += end + 4
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}
}

func (l *lexer) lexNumber() (token, error) {
	start := l.pos
	neg := false
	if c := l.src[l.pos]; c == '+' || c == '-' {
		neg = c == '-'
		l.pos++
	}

	rest := l.src[l.pos:]
	switch {
	case strings.HasPrefix(rest, "Infinity"):
		l.pos += len("Infinity")
		sign := 1
		if neg {
			sign = -1
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], num: math.Inf(sign), pos: start}, nil
	case strings.HasPrefix(rest, "NaN"):
		l.pos += len("NaN")
		return token{kind: tokNumber, text: l.src[start:l.pos], num: math.NaN(), pos: start}, nil
	case strings.HasPrefix(rest, "0x") || strings.HasPrefix(rest, "0X"):
		l.pos += 2
		digits := l.pos
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.pos++
		}
		if digits == l.pos {
			return token{}, l.errorf(start, "malformed hex number")
		}
		v, err := strconv.ParseUint(l.src[digits:l.pos], 16, 64)
		if err != nil {
			return token{}, l.errorf(start, "malformed hex number: %v", err)
		}
		num := float64(v)
		if neg {
			num = -num
		}
		return token{kind: tokNumber, text: l.src[start:l.pos], num: num, pos: start}, nil
	}

	digits := 0
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
		digits++
	}
	if l.pos < len(l.src) && l.src[l.pos] == '.' {
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
			digits++
		}
	}
	if digits == 0 {
		return token{}, l.errorf(start, "malformed number")
	}
	if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.src) && (l.src[l.pos] == '+' || l.src[l.pos] == '-') {
			l.pos++
		}
		expDigits := l.pos
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
		if expDigits == l.pos {
			return token{}, l.errorf(start, "malformed exponent")
		}
	}

	literal := l.src[start:l.pos]
	num, err := strconv.ParseFloat(strings.TrimPrefix(literal, "+"), 64)
	if err != nil {
		return token{}, l.errorf(start, "malformed number %q", literal)
	}
	return token{kind: tokNumber, text: literal, num: num, pos: start}, nil
}

func (l *lexer) lexString() (token, error) {
	start := l.pos
	quote := l.src[l.pos]
	l.pos++

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, l.errorf(start, "unterminated string")
		}
		c := l.src[l.pos]
		switch {
		case c == quote:
			l.pos++
			return token{kind: tokString, text: b.String(), pos: start}, nil
		case c == '\n' || c == '\r':
			return token{}, l.errorf(l.pos, "newline in string")
		case c == '\\':
			if err := l.lexEscape(&b); err != nil {
				return token{}, err
			}
		default:
			r, size := utf8.DecodeRuneInString(l.src[l.pos:])
			b.WriteRune(r)
			l.pos += size
		}
	}
}

// lexEscape decodes one backslash escape sequence into b.
func (l *lexer) lexEscape(b *strings.Builder) error {
	start := l.pos
	l.pos++
	if l.pos >= len(l.src) {
		return l.errorf(start, "unterminated escape sequence")
	}
	c := l.src[l.pos]
	l.pos++
	switch c {
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'v':
		b.WriteByte('\v')
	case '0':
		b.WriteByte(0)
	case '\n':
		// line continuation
	case '\r':
		if l.pos < len(l.src) && l.src[l.pos] == '\n' {
			l.pos++
		}
	case 'x':
		v, err := l.hexValue(start, 2)
		if err != nil {
			return err
		}
		b.WriteRune(rune(v))
	case 'u':
		r, err := l.unicodeEscape(start)
		if err != nil {
			return err
		}
		b.WriteRune(r)
	default:
		// \\ \' \" \/ and any other character escape to themselves.
		l.pos--
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		b.WriteRune(r)
		l.pos += size
	}
	return nil
}

func (l *lexer) unicodeEscape(start int) (rune, error) {
	if l.pos < len(l.src) && l.src[l.pos] == '{' {
		end := strings.IndexByte(l.src[l.pos:], '}')
		if end < 2 {
			return 0, l.errorf(start, "malformed unicode escape")
		}
		v, err := strconv.ParseUint(l.src[l.pos+1:l.pos+end], 16, 32)
		if err != nil || v > unicode.MaxRune {
			return 0, l.errorf(start, "malformed unicode escape")
		}
		l.pos += end + 1
		return rune(v), nil
	}

	v, err := l.hexValue(start, 4)
	if err != nil {
		return 0, err
	}
	r := rune(v)
	if utf16.IsSurrogate(r) && strings.HasPrefix(l.src[l.pos:], `\u`) {
		save := l.pos
		l.pos += 2
		low, err := l.hexValue(start, 4)
		if err == nil {
			if pair := utf16.DecodeRune(r, rune(low)); pair != unicode.ReplacementChar {
				return pair, nil
			}
		}
		l.pos = save
	}
	return r, nil
}

func (l *lexer) hexValue(start, n int) (uint64, error) {
	if l.pos+n > len(l.src) {
		return 0, l.errorf(start, "truncated escape sequence")
	}
	v, err := strconv.ParseUint(l.src[l.pos:l.pos+n], 16, 32)
	if err != nil {
		return 0, l.errorf(start, "malformed escape sequence %q", l.src[start:l.pos+n])
	}
	l.pos += n
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}
