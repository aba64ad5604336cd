package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the glox scanner
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Single-character tokens
	TokenLeftParen TokenType = iota
	TokenRightParen
	TokenLeftBrace
	TokenRightBrace
	TokenComma
	TokenDot
	TokenMinus
	TokenPlus
	TokenSemicolon
	TokenSlash
	TokenStar

	// One or two character tokens
	TokenBang
	TokenBangEqual
	TokenEqual
	TokenEqualEqual
	TokenGreater
	TokenGreaterEqual
	TokenLess
	TokenLessEqual

	// Literals
	TokenIdentifier
	TokenString
	TokenNumber

	// Keywords
	TokenAnd
	TokenClass
	TokenElse
	TokenFalse
	TokenFor
	TokenFun
	TokenIf
	TokenNil
	TokenOr
	TokenPrint
	TokenReturn
	TokenSuper
	TokenThis
	TokenTrue
	TokenVar
	TokenWhile

	// Special tokens
	TokenComment
	TokenError
	TokenEOF
)

var tokenNames = map[TokenType]string{
	TokenLeftParen:    "(",
	TokenRightParen:   ")",
	TokenLeftBrace:    "{",
	TokenRightBrace:   "}",
	TokenComma:        ",",
	TokenDot:          ".",
	TokenMinus:        "-",
	TokenPlus:         "+",
	TokenSemicolon:    ";",
	TokenSlash:        "/",
	TokenStar:         "*",
	TokenBang:         "!",
	TokenBangEqual:    "!=",
	TokenEqual:        "=",
	TokenEqualEqual:   "==",
	TokenGreater:      ">",
	TokenGreaterEqual: ">=",
	TokenLess:         "<",
	TokenLessEqual:    "<=",
	TokenIdentifier:   "identifier",
	TokenString:       "string",
	TokenNumber:       "number",
	TokenAnd:          "and",
	TokenClass:        "class",
	TokenElse:         "else",
	TokenFalse:        "false",
	TokenFor:          "for",
	TokenFun:          "fun",
	TokenIf:           "if",
	TokenNil:          "nil",
	TokenOr:           "or",
	TokenPrint:        "print",
	TokenReturn:       "return",
	TokenSuper:        "super",
	TokenThis:         "this",
	TokenTrue:         "true",
	TokenVar:          "var",
	TokenWhile:        "while",
	TokenComment:      "comment",
	TokenError:        "error",
	TokenEOF:          "eof",
}

// String returns a string representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// keywords maps reserved words to their token types.
var keywords = map[string]TokenType{
	"and":    TokenAnd,
	"class":  TokenClass,
	"else":   TokenElse,
	"false":  TokenFalse,
	"for":    TokenFor,
	"fun":    TokenFun,
	"if":     TokenIf,
	"nil":    TokenNil,
	"or":     TokenOr,
	"print":  TokenPrint,
	"return": TokenReturn,
	"super":  TokenSuper,
	"this":   TokenThis,
	"true":   TokenTrue,
	"var":    TokenVar,
	"while":  TokenWhile,
}

// LookupKeyword returns the keyword token type for ident, or
// TokenIdentifier if ident is not reserved.
func LookupKeyword(ident string) TokenType {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return TokenIdentifier
}

// Keywords returns the reserved words.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	return out
}

// IsKeyword reports whether t is a reserved word.
func (t TokenType) IsKeyword() bool {
	return t >= TokenAnd && t <= TokenWhile
}

// hasPayload reports whether tokens of type t display their text.
func (t TokenType) hasPayload() bool {
	switch t {
	case TokenIdentifier, TokenString, TokenNumber, TokenComment, TokenError:
		return true
	}
	return false
}

// ---------------------------------------------------------------------------
// Token
// ---------------------------------------------------------------------------

// Token represents a lexical token.
//
// Start and Length count characters (Unicode scalar values), not bytes.
// They cover the whole token, quotes and comment slashes included.
// Lexeme is the token's text: the contents between the quotes for
// strings, the text after // for comments, and the message for errors.
type Token struct {
	Type   TokenType
	Lexeme string
	Start  int
	Length int
	Line   int // 1-based
}

// String renders the token the way the scanner trace displays it:
// punctuation and keywords as themselves, literals as "kind: text".
func (t Token) String() string {
	if t.Type.hasPayload() {
		return fmt.Sprintf("%s: %s", t.Type, t.Lexeme)
	}
	return t.Type.String()
}

// End returns the character offset just past the token.
func (t Token) End() int {
	return t.Start + t.Length
}

// IsEOF returns true if this is an EOF token.
func (t Token) IsEOF() bool {
	return t.Type == TokenEOF
}

// IsError returns true if this is an error token.
func (t Token) IsError() bool {
	return t.Type == TokenError
}
