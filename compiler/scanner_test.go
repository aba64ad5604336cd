package compiler

import (
	"strconv"
	"testing"
)

func TestScannerPunctuation(t *testing.T) {
	input := `( ) { } ; , . - + * / ! != = == < <= > >=`
	expected := []TokenType{
		TokenLeftParen, TokenRightParen, TokenLeftBrace, TokenRightBrace,
		TokenSemicolon, TokenComma, TokenDot, TokenMinus, TokenPlus, TokenStar,
		TokenSlash, TokenBang, TokenBangEqual, TokenEqual, TokenEqualEqual,
		TokenLess, TokenLessEqual, TokenGreater, TokenGreaterEqual, TokenEOF,
	}

	s := NewScanner(input)
	for i, want := range expected {
		tok := s.ScanToken()
		if tok.Type != want {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, want)
		}
	}
}

func TestScannerTwoCharOperatorsWithoutSpaces(t *testing.T) {
	toks := Tokenize("!!=<==>")
	want := []TokenType{TokenBang, TokenBangEqual, TokenLessEqual, TokenEqual, TokenGreater, TokenEOF}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i := range want {
		if toks[i].Type != want[i] {
			t.Errorf("token[%d] = %v, want %v", i, toks[i].Type, want[i])
		}
	}
}

func TestScannerNumbers(t *testing.T) {
	tests := []string{"0", "7", "42", "1234567890", "3.14", "0.5", "10.25", "1.0"}

	for _, input := range tests {
		toks := Tokenize(input)
		if len(toks) != 2 {
			t.Errorf("Tokenize(%q): %d tokens, want 2", input, len(toks))
			continue
		}
		tok := toks[0]
		if tok.Type != TokenNumber {
			t.Errorf("Tokenize(%q): type = %v, want number", input, tok.Type)
		}
		if tok.Lexeme != input {
			t.Errorf("Tokenize(%q): lexeme = %q, want %q", input, tok.Lexeme, input)
		}
		want, _ := strconv.ParseFloat(input, 64)
		got, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil || got != want {
			t.Errorf("Tokenize(%q): lexeme parses to %v, %v; want %v", input, got, err, want)
		}
	}
}

func TestScannerTrailingDotIsNotPartOfNumber(t *testing.T) {
	tests := []struct {
		input string
		want  []Token
	}{
		{"12.", []Token{
			{Type: TokenNumber, Lexeme: "12"},
			{Type: TokenDot, Lexeme: "."},
		}},
		{"1.2.3", []Token{
			{Type: TokenNumber, Lexeme: "1.2"},
			{Type: TokenDot, Lexeme: "."},
			{Type: TokenNumber, Lexeme: "3"},
		}},
		{"4.x", []Token{
			{Type: TokenNumber, Lexeme: "4"},
			{Type: TokenDot, Lexeme: "."},
			{Type: TokenIdentifier, Lexeme: "x"},
		}},
	}

	for _, tc := range tests {
		toks := Tokenize(tc.input)
		if len(toks) != len(tc.want)+1 {
			t.Errorf("Tokenize(%q) = %v, want %v", tc.input, toks, tc.want)
			continue
		}
		for i, want := range tc.want {
			if toks[i].Type != want.Type || toks[i].Lexeme != want.Lexeme {
				t.Errorf("Tokenize(%q)[%d] = %v, want %v", tc.input, i, toks[i], want)
			}
		}
	}
}

func TestScannerKeywords(t *testing.T) {
	words := Keywords()
	if len(words) != 16 {
		t.Fatalf("len(Keywords()) = %d, want 16", len(words))
	}

	for _, word := range words {
		tok := NewScanner(word).ScanToken()
		if !tok.Type.IsKeyword() {
			t.Errorf("scan %q: type = %v, want keyword", word, tok.Type)
		}
		if tok.Type.String() != word {
			t.Errorf("scan %q: type = %v, want %s", word, tok.Type, word)
		}

		for _, suffix := range []string{"x", "_", "1", "Z"} {
			input := word + suffix
			tok := NewScanner(input).ScanToken()
			if tok.Type != TokenIdentifier {
				t.Errorf("scan %q: type = %v, want identifier", input, tok.Type)
			}
			if tok.Lexeme != input {
				t.Errorf("scan %q: lexeme = %q", input, tok.Lexeme)
			}
		}
	}
}

func TestScannerIdentifiers(t *testing.T) {
	tests := []string{"x", "foo", "_bar", "camelCase", "snake_case_2", "A1"}
	for _, input := range tests {
		tok := NewScanner(input).ScanToken()
		if tok.Type != TokenIdentifier || tok.Lexeme != input {
			t.Errorf("scan %q = %v, want identifier: %s", input, tok, input)
		}
	}
}

func TestScannerStrings(t *testing.T) {
	s := NewScanner(`"hello" "" "two
lines"`)

	tok := s.ScanToken()
	if tok.Type != TokenString || tok.Lexeme != "hello" {
		t.Errorf("first = %v, want string: hello", tok)
	}
	if tok.Start != 0 || tok.Length != 7 {
		t.Errorf("first span = %d+%d, want 0+7", tok.Start, tok.Length)
	}

	tok = s.ScanToken()
	if tok.Type != TokenString || tok.Lexeme != "" {
		t.Errorf("second = %v, want empty string", tok)
	}

	tok = s.ScanToken()
	if tok.Type != TokenString || tok.Lexeme != "two\nlines" {
		t.Errorf("third = %v, want multi-line string", tok)
	}
	if tok.Line != 2 {
		t.Errorf("third line = %d, want 2", tok.Line)
	}
	if eof := s.ScanToken(); !eof.IsEOF() || eof.Line != 2 {
		t.Errorf("after strings = %v on line %d, want eof on line 2", eof, eof.Line)
	}
}

func TestScannerUnterminatedString(t *testing.T) {
	tests := []struct {
		input string
		line  int
	}{
		{`"abc`, 1},
		{`"`, 1},
		{"\"abc\ndef", 2},
		{"1 + \"\n\n\n", 4},
	}

	for _, tc := range tests {
		toks := Tokenize(tc.input)
		errTok := toks[len(toks)-2]
		if !errTok.IsError() || errTok.Lexeme != "unterminated string" {
			t.Errorf("Tokenize(%q): got %v, want error: unterminated string", tc.input, errTok)
		}
		if errTok.Line != tc.line {
			t.Errorf("Tokenize(%q): error line = %d, want %d", tc.input, errTok.Line, tc.line)
		}
		if !toks[len(toks)-1].IsEOF() {
			t.Errorf("Tokenize(%q): does not end with eof", tc.input)
		}
	}
}

func TestScannerUnexpectedCharacterContinues(t *testing.T) {
	toks := Tokenize("1 @ 2 # é")
	want := []struct {
		typ    TokenType
		lexeme string
	}{
		{TokenNumber, "1"},
		{TokenError, "unexpected character: '@'"},
		{TokenNumber, "2"},
		{TokenError, "unexpected character: '#'"},
		{TokenError, "unexpected character: 'é'"},
		{TokenEOF, ""},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Lexeme != w.lexeme {
			t.Errorf("token[%d] = %v, want %v %q", i, toks[i], w.typ, w.lexeme)
		}
	}
}

func TestScannerComments(t *testing.T) {
	toks := Tokenize("// leading note\n1 / 2 // trailing")
	want := []struct {
		typ    TokenType
		lexeme string
		line   int
	}{
		{TokenComment, " leading note", 1},
		{TokenNumber, "1", 2},
		{TokenSlash, "/", 2},
		{TokenNumber, "2", 2},
		{TokenComment, " trailing", 2},
		{TokenEOF, "", 2},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Type != w.typ || toks[i].Lexeme != w.lexeme || toks[i].Line != w.line {
			t.Errorf("token[%d] = %v (line %d), want %v %q (line %d)",
				i, toks[i], toks[i].Line, w.typ, w.lexeme, w.line)
		}
	}
}

func TestScannerLineTracking(t *testing.T) {
	toks := Tokenize("a\n\tb\r\n\n  c")
	lines := []int{1, 2, 4, 4}
	for i, want := range lines {
		if toks[i].Line != want {
			t.Errorf("token[%d] %v line = %d, want %d", i, toks[i], toks[i].Line, want)
		}
	}
}

func TestScannerOffsetsCountCharacters(t *testing.T) {
	toks := Tokenize(`"héllo" wörld x`)

	if toks[0].Start != 0 || toks[0].Length != 7 || toks[0].Lexeme != "héllo" {
		t.Errorf("string = %v at %d+%d, want héllo at 0+7", toks[0], toks[0].Start, toks[0].Length)
	}
	// ö is not an identifier character, so "wörld" splits.
	if toks[1].Lexeme != "w" || toks[1].Start != 8 {
		t.Errorf("token[1] = %v at %d, want identifier w at 8", toks[1], toks[1].Start)
	}
	if !toks[2].IsError() || toks[2].Start != 9 || toks[2].Length != 1 {
		t.Errorf("token[2] = %v at %d+%d, want error at 9+1", toks[2], toks[2].Start, toks[2].Length)
	}
	last := toks[len(toks)-2]
	if last.Lexeme != "x" || last.Start != 14 {
		t.Errorf("x = %v at %d, want 14", last, last.Start)
	}
}

func TestScannerEOFIsSticky(t *testing.T) {
	s := NewScanner("1")
	s.ScanToken()
	for i := 0; i < 3; i++ {
		if tok := s.ScanToken(); !tok.IsEOF() {
			t.Errorf("call %d after input = %v, want eof", i, tok)
		}
	}
}

func TestScannerNext(t *testing.T) {
	s := NewScanner("1 + 2")
	var got []TokenType
	for tok, ok := s.Next(); ok; tok, ok = s.Next() {
		got = append(got, tok.Type)
	}
	want := []TokenType{TokenNumber, TokenPlus, TokenNumber, TokenEOF}
	if len(got) != len(want) {
		t.Fatalf("Next yielded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Next[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTokenString(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{Token{Type: TokenLeftParen}, "("},
		{Token{Type: TokenBangEqual}, "!="},
		{Token{Type: TokenIdentifier, Lexeme: "x"}, "identifier: x"},
		{Token{Type: TokenNumber, Lexeme: "1"}, "number: 1"},
		{Token{Type: TokenString, Lexeme: "hi"}, "string: hi"},
		{Token{Type: TokenWhile}, "while"},
		{Token{Type: TokenComment, Lexeme: " note"}, "comment:  note"},
		{Token{Type: TokenError, Lexeme: "unterminated string"}, "error: unterminated string"},
		{Token{Type: TokenEOF}, "eof"},
	}

	for _, tc := range tests {
		if got := tc.tok.String(); got != tc.want {
			t.Errorf("%#v.String() = %q, want %q", tc.tok, got, tc.want)
		}
	}
}

func TestTokenAt(t *testing.T) {
	src := "1 +\n  foo"

	tok, ok := TokenAt(src, 2, 3)
	if !ok || tok.Type != TokenIdentifier || tok.Lexeme != "foo" {
		t.Errorf("TokenAt(2, 3) = %v, %v; want identifier foo", tok, ok)
	}
	tok, ok = TokenAt(src, 1, 3)
	if !ok || tok.Type != TokenPlus {
		t.Errorf("TokenAt(1, 3) = %v, %v; want +", tok, ok)
	}
	if _, ok := TokenAt(src, 1, 2); ok {
		t.Error("TokenAt on whitespace found a token")
	}
	if _, ok := TokenAt(src, 9, 1); ok {
		t.Error("TokenAt past the last line found a token")
	}
}
