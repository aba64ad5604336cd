package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Scanner: single-pass tokenizer for glox source
// ---------------------------------------------------------------------------

// Scanner tokenizes glox source code on demand.
//
// The source is decoded to runes once, so token offsets are character
// counts and slicing a lexeme never has to map back to byte positions.
type Scanner struct {
	src     []rune
	start   int // offset of the first character of the token being scanned
	current int // offset of the next character to consume
	line    int // current line (1-based)
	done    bool
}

// NewScanner creates a new scanner for the given input.
func NewScanner(input string) *Scanner {
	return &Scanner{
		src:  []rune(input),
		line: 1,
	}
}

// Line returns the line the scanner is currently on.
func (s *Scanner) Line() int {
	return s.line
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.src)
}

// advance consumes and returns the next character.
func (s *Scanner) advance() rune {
	r := s.src[s.current]
	s.current++
	return r
}

// peek returns the next character without consuming it, or 0 at end of input.
func (s *Scanner) peek() rune {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

// peekNext returns the character after the next one, or 0.
func (s *Scanner) peekNext() rune {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

// match consumes the next character if it is want.
func (s *Scanner) match(want rune) bool {
	if s.isAtEnd() || s.src[s.current] != want {
		return false
	}
	s.current++
	return true
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}

func (s *Scanner) makeToken(t TokenType) Token {
	return s.makeTokenText(t, string(s.src[s.start:s.current]))
}

func (s *Scanner) makeTokenText(t TokenType, text string) Token {
	return Token{
		Type:   t,
		Lexeme: text,
		Start:  s.start,
		Length: s.current - s.start,
		Line:   s.line,
	}
}

func (s *Scanner) errorToken(format string, args ...any) Token {
	return s.makeTokenText(TokenError, fmt.Sprintf(format, args...))
}

// skipWhitespace consumes spaces, tabs, carriage returns and newlines.
func (s *Scanner) skipWhitespace() {
	for !s.isAtEnd() {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.current++
		case '\n':
			s.line++
			s.current++
		default:
			return
		}
	}
}

// ScanToken returns the next token. Once the input is exhausted every call
// returns an EOF token. Malformed input yields TokenError tokens; scanning
// can always continue after one.
func (s *Scanner) ScanToken() Token {
	s.skipWhitespace()
	s.start = s.current

	if s.isAtEnd() {
		s.done = true
		return s.makeTokenText(TokenEOF, "")
	}

	c := s.advance()
	switch {
	case isDigit(c):
		return s.number()
	case isAlpha(c):
		return s.identifier()
	}

	switch c {
	case '(':
		return s.makeToken(TokenLeftParen)
	case ')':
		return s.makeToken(TokenRightParen)
	case '{':
		return s.makeToken(TokenLeftBrace)
	case '}':
		return s.makeToken(TokenRightBrace)
	case ';':
		return s.makeToken(TokenSemicolon)
	case ',':
		return s.makeToken(TokenComma)
	case '.':
		return s.makeToken(TokenDot)
	case '-':
		return s.makeToken(TokenMinus)
	case '+':
		return s.makeToken(TokenPlus)
	case '*':
		return s.makeToken(TokenStar)
	case '!':
		return s.makeToken(s.pick('=', TokenBangEqual, TokenBang))
	case '=':
		return s.makeToken(s.pick('=', TokenEqualEqual, TokenEqual))
	case '<':
		return s.makeToken(s.pick('=', TokenLessEqual, TokenLess))
	case '>':
		return s.makeToken(s.pick('=', TokenGreaterEqual, TokenGreater))
	case '/':
		if s.match('/') {
			return s.comment()
		}
		return s.makeToken(TokenSlash)
	case '"':
		return s.string()
	}

	return s.errorToken("unexpected character: '%c'", c)
}

// pick returns two if the next character is next (consuming it), else one.
func (s *Scanner) pick(next rune, two, one TokenType) TokenType {
	if s.match(next) {
		return two
	}
	return one
}

// number scans digits with an optional fractional part. A trailing '.'
// not followed by a digit is left for the next token.
func (s *Scanner) number() Token {
	for isDigit(s.peek()) {
		s.current++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.current++
		for isDigit(s.peek()) {
			s.current++
		}
	}
	return s.makeToken(TokenNumber)
}

func (s *Scanner) identifier() Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.current++
	}
	text := string(s.src[s.start:s.current])
	return s.makeTokenText(LookupKeyword(text), text)
}

// comment scans to the end of the line. The newline is left for
// skipWhitespace so line counting stays in one place.
func (s *Scanner) comment() Token {
	for !s.isAtEnd() && s.peek() != '\n' {
		s.current++
	}
	return s.makeTokenText(TokenComment, string(s.src[s.start+2:s.current]))
}

// string scans through the closing quote. The token's line is the line
// the literal ends on.
func (s *Scanner) string() Token {
	for !s.isAtEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.current++
	}
	if s.isAtEnd() {
		return s.errorToken("unterminated string")
	}
	s.current++ // closing quote
	return s.makeTokenText(TokenString, string(s.src[s.start+1:s.current-1]))
}

// Next returns the next token and false once EOF has already been
// returned. It lets callers range over a scanner with a simple loop.
func (s *Scanner) Next() (Token, bool) {
	if s.done {
		return Token{}, false
	}
	return s.ScanToken(), true
}

// Tokenize scans the whole input. The returned slice always ends with the
// EOF token.
func Tokenize(input string) []Token {
	s := NewScanner(input)
	var tokens []Token
	for {
		tok := s.ScanToken()
		tokens = append(tokens, tok)
		if tok.IsEOF() {
			return tokens
		}
	}
}

// TokenAt returns the token covering the character at line and column
// (both 1-based), or false if the position falls between tokens.
func TokenAt(input string, line, column int) (Token, bool) {
	lineStart := lineOffsets([]rune(input))
	if line < 1 || line > len(lineStart) {
		return Token{}, false
	}
	offset := lineStart[line-1] + column - 1
	for _, tok := range Tokenize(input) {
		if tok.IsEOF() {
			break
		}
		if offset >= tok.Start && offset < tok.End() {
			return tok, true
		}
	}
	return Token{}, false
}

// lineOffsets returns the character offset at which each line starts.
func lineOffsets(src []rune) []int {
	offsets := []int{0}
	for i, r := range src {
		if r == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}
