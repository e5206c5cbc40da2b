package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Lexer scans IPL source text into a flat slice of Tokens. It has no notion
// of line/column (spec.md explicitly excludes localized error positions),
// so it reports only which substring failed to scan.
type Lexer struct {
	src    string
	pos    int
	tokens []Token
	// prevEndsOperand tracks whether the previous token could end an
	// expression (identifier, literal, ')' or ']'); it disambiguates a
	// leading '-' on a numeric literal (allowed by the grammar's
	// int_literal/float_literal terminals) from the binary minus operator.
	prevEndsOperand bool
}

// New returns a Lexer ready to scan src.
func New(src string) *Lexer {
	return &Lexer{src: src}
}

// Tokenize scans the entire source and returns the resulting tokens,
// terminated by a single EOF token. It returns an error wrapping the
// offending substring if a character sequence matches no token.
func Tokenize(src string) ([]Token, error) {
	l := New(src)
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
		if tok.Kind == EOF {
			return l.tokens, nil
		}
	}
}

func (l *Lexer) peekByte() (byte, bool) {
	if l.pos >= len(l.src) {
		return 0, false
	}
	return l.src[l.pos], true
}

func (l *Lexer) byteAt(off int) (byte, bool) {
	i := l.pos + off
	if i < 0 || i >= len(l.src) {
		return 0, false
	}
	return l.src[i], true
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func (l *Lexer) emit(kind Kind, text string) Token {
	l.prevEndsOperand = kind == Ident || kind == IntLit || kind == FloatLit ||
		kind == StringLit || kind == RParen || kind == RBracket ||
		kind == KwTrue || kind == KwFalse
	return Token{Kind: kind, Text: text}
}

func (l *Lexer) next() (Token, error) {
	l.skipSpace()
	b, ok := l.peekByte()
	if !ok {
		return l.emit(EOF, ""), nil
	}

	switch {
	case isIdentStart(b):
		return l.scanIdentOrKeyword(), nil
	case isDigit(b):
		return l.scanNumber(), nil
	case b == '-' && !l.prevEndsOperand:
		if nb, ok := l.byteAt(1); ok && isDigit(nb) {
			return l.scanNumber(), nil
		}
		return l.scanOperator()
	case b == '"':
		return l.scanString()
	default:
		return l.scanOperator()
	}
}

func (l *Lexer) scanIdentOrKeyword() Token {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	text := l.src[start:l.pos]
	if kind, ok := keywords[text]; ok {
		return l.emit(kind, text)
	}
	return l.emit(Ident, text)
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	if b, ok := l.peekByte(); ok && b == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	isFloat := false
	if b, ok := l.peekByte(); ok && b == '.' {
		if nb, ok := l.byteAt(1); ok && isDigit(nb) {
			isFloat = true
			l.pos++ // '.'
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.pos++
			}
		}
	}
	text := l.src[start:l.pos]
	if isFloat {
		return l.emit(FloatLit, text)
	}
	return l.emit(IntLit, text)
}

func (l *Lexer) scanString() (Token, error) {
	start := l.pos
	l.pos++ // opening quote
	var sb strings.Builder
	sb.WriteByte('"')
	for {
		b, ok := l.peekByte()
		if !ok {
			return Token{}, errors.Errorf("unterminated string literal starting at %q", l.src[start:])
		}
		if b == '"' {
			l.pos++
			sb.WriteByte('"')
			break
		}
		if b == '\\' {
			nb, ok := l.byteAt(1)
			if !ok {
				return Token{}, errors.Errorf("unterminated escape sequence in string literal %q", l.src[start:])
			}
			sb.WriteByte(b)
			sb.WriteByte(nb)
			l.pos += 2
			continue
		}
		sb.WriteByte(b)
		l.pos++
	}
	return l.emit(StringLit, sb.String()), nil
}

type op struct {
	text string
	kind Kind
}

// ops is checked longest-match-first.
var ops = []op{
	{"->", Arrow},
	{"==", EqEq},
	{"!=", NotEq},
	{"&&", AndAnd},
	{"||", OrOr},
	{"^:", Prepend},
	{"$:", Append},
	{"+", Plus},
	{"-", Minus},
	{"*", Star},
	{"/", Slash},
	{"%", Percent},
	{"^", Caret},
	{"!", Bang},
	{"(", LParen},
	{")", RParen},
	{"{", LBrace},
	{"}", RBrace},
	{"[", LBracket},
	{"]", RBracket},
	{"|", Pipe},
	{",", Comma},
	{":", Colon},
	{";", Semicolon},
	{"=", Assign},
	{"<", Lt},
	{">", Gt},
}

func (l *Lexer) scanOperator() (Token, error) {
	rest := l.src[l.pos:]
	for _, candidate := range ops {
		if strings.HasPrefix(rest, candidate.text) {
			l.pos += len(candidate.text)
			return l.emit(candidate.kind, candidate.text), nil
		}
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return Token{}, errors.Errorf("unexpected character %q at offset %d", r, l.pos)
}
