// Package lexer tokenizes IPL source text. The token set follows the
// grammar recovered in original_source/grammar.py: keywords, the
// CONSTRUCT_ID identifier pattern, int/float/string/bool literals, and the
// fixed operator/punctuation set.
package lexer

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	IntLit
	FloatLit
	StringLit

	// Keywords
	KwFn
	KwLet
	KwReturn
	KwInt
	KwBool
	KwString
	KwFloat
	KwTuple
	KwArray
	KwList
	KwRead
	KwWrite
	KwIf
	KwElse
	KwElif
	KwUnless
	KwCase
	KwOf
	KwDefault
	KwWhile
	KwFor
	KwDo
	KwIn
	KwHead
	KwTail
	KwTrue
	KwFalse

	// Punctuation and operators
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %
	Caret     // ^
	EqEq      // ==
	NotEq     // !=
	AndAnd    // &&
	OrOr      // ||
	Prepend   // ^:
	Append    // $:
	Bang      // !
	LParen    // (
	RParen    // )
	LBrace    // {
	RBrace    // }
	LBracket  // [
	RBracket  // ]
	Pipe      // |
	Comma     // ,
	Colon     // :
	Semicolon // ;
	Assign    // =
	Arrow     // ->
	Lt        // <
	Gt        // >
)

var keywords = map[string]Kind{
	"fn":      KwFn,
	"let":     KwLet,
	"return":  KwReturn,
	"int":     KwInt,
	"bool":    KwBool,
	"string":  KwString,
	"float":   KwFloat,
	"tuple":   KwTuple,
	"array":   KwArray,
	"list":    KwList,
	"read":    KwRead,
	"write":   KwWrite,
	"if":      KwIf,
	"else":    KwElse,
	"elif":    KwElif,
	"unless":  KwUnless,
	"case":    KwCase,
	"of":      KwOf,
	"default": KwDefault,
	"while":   KwWhile,
	"for":     KwFor,
	"do":      KwDo,
	"in":      KwIn,
	"head":    KwHead,
	"tail":    KwTail,
	"true":    KwTrue,
	"false":   KwFalse,
}

// IsKeyword reports whether word is one of the IPL's reserved keywords,
// and therefore not a valid CONSTRUCT_ID.
func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Token is one lexical unit together with its exact source text.
type Token struct {
	Kind Kind
	Text string
}

func (t Token) String() string {
	return t.Text
}
