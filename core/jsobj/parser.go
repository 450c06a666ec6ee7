// Package jsobj parses JavaScript object and array literals as they appear
// embedded in web pages. It accepts a relaxed superset of JSON:
//
//	value   = object | array | string | number | "true" | "false"
//	        | "null" | "undefined" | "NaN" | "Infinity"
//	object  = "{" [ member { "," member } [ "," ] ] "}"
//	member  = key ":" value
//	key     = identifier | string | number
//	array   = "[" [ value { "," value } [ "," ] ] "]"
//	string  = '"' chars '"' | "'" chars "'"
//	number  = [ "+" | "-" ] ( decimal | "0x" hex | "Infinity" | "NaN" )
//
// Whitespace, line comments and block comments may appear between tokens.
// Objects decode to map[string]any, arrays to []any, strings to string,
// numbers to float64, booleans to bool, and null/undefined to nil.
package jsobj

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

const maxDepth = 512

// ErrNotRecordArray is returned by ParseRecords when the literal is not an
// array whose elements are all objects.
var ErrNotRecordArray = errors.New("literal is not an array of objects")

// SyntaxError describes malformed input and where it was found.
type SyntaxError struct {
	Msg    string
	Offset int
	Line   int
	Column int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("jsobj: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

func newSyntaxError(src string, offset int, msg string) *SyntaxError {
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset - strings.LastIndexByte(before, '\n')
	return &SyntaxError{Msg: msg, Offset: offset, Line: line, Column: col}
}

// Parse decodes a single JS literal value from src.
func Parse(src string) (any, error) {
	p := &parser{lex: newLexer(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}

	v, err := p.parseValue(0)
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("end of input")
	}
	return v, nil
}

// ParseRecords decodes src and requires it to be an array of objects.
func ParseRecords(src string) ([]map[string]any, error) {
	v, err := Parse(src)
	if err != nil {
		return nil, err
	}

	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: top level is %s", ErrNotRecordArray, typeName(v))
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %s", ErrNotRecordArray, i, typeName(item))
		}
		records = append(records, obj)
	}
	return records, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *parser) unexpected(want string) error {
	got := p.tok.kind.String()
	if p.tok.kind == tokIdent {
		got = fmt.Sprintf("identifier %q", p.tok.text)
	}
	return newSyntaxError(p.lex.src, p.tok.pos, fmt.Sprintf("expected %s, found %s", want, got))
}

func (p *parser) parseValue(depth int) (any, error) {
	if depth > maxDepth {
		return nil, newSyntaxError(p.lex.src, p.tok.pos, "nesting too deep")
	}

	switch p.tok.kind {
	case tokLBrace:
		return p.parseObject(depth + 1)
	case tokLBracket:
		return p.parseArray(depth + 1)
	case tokString:
		s := p.tok.text
		return s, p.advance()
	case tokNumber:
		n := p.tok.num
		return n, p.advance()
	case tokIdent:
		var v any
		switch p.tok.text {
		case "true":
			v = true
		case "false":
			v = false
		case "null", "undefined":
			v = nil
		case "NaN":
			v = math.NaN()
		case "Infinity":
			v = math.Inf(1)
		default:
			return nil, p.unexpected("value")
		}
		return v, p.advance()
	}
	return nil, p.unexpected("value")
}

func (p *parser) parseObject(depth int) (map[string]any, error) {
	obj := map[string]any{}
	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.tok.kind != tokRBrace {
		var key string
		switch p.tok.kind {
		case tokIdent, tokString, tokNumber:
			key = p.tok.text
		default:
			return nil, p.unexpected("object key or '}'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}

		if p.tok.kind != tokColon {
			return nil, p.unexpected("':'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}

		v, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		obj[key] = v

		if p.tok.kind == tokRBrace {
			break
		}
		if p.tok.kind != tokComma {
			return nil, p.unexpected("',' or '}'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return obj, p.advance()
}

func (p *parser) parseArray(depth int) ([]any, error) {
	items := []any{}
	if err := p.advance(); err != nil {
		return nil, err
	}

	for p.tok.kind != tokRBracket {
		v, err := p.parseValue(depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)

		if p.tok.kind == tokRBracket {
			break
		}
		if p.tok.kind != tokComma {
			return nil, p.unexpected("',' or ']'")
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return items, p.advance()
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
