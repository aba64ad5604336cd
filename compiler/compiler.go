package compiler

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/chazu/glox/vm"
)

// ---------------------------------------------------------------------------
// Compiler: Pratt parser emitting bytecode for a single expression
// ---------------------------------------------------------------------------

// Precedence orders binding strength, loosest first.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

type parseFn func(p *Parser)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules map[TokenType]parseRule

func init() {
	rules = map[TokenType]parseRule{
		TokenLeftParen:    {(*Parser).grouping, nil, PrecNone},
		TokenMinus:        {(*Parser).unary, (*Parser).binary, PrecTerm},
		TokenPlus:         {nil, (*Parser).binary, PrecTerm},
		TokenSlash:        {nil, (*Parser).binary, PrecFactor},
		TokenStar:         {nil, (*Parser).binary, PrecFactor},
		TokenBang:         {(*Parser).unary, nil, PrecNone},
		TokenBangEqual:    {nil, (*Parser).binary, PrecEquality},
		TokenEqualEqual:   {nil, (*Parser).binary, PrecEquality},
		TokenGreater:      {nil, (*Parser).binary, PrecComparison},
		TokenGreaterEqual: {nil, (*Parser).binary, PrecComparison},
		TokenLess:         {nil, (*Parser).binary, PrecComparison},
		TokenLessEqual:    {nil, (*Parser).binary, PrecComparison},
		TokenNumber:       {(*Parser).number, nil, PrecNone},
		TokenFalse:        {(*Parser).literal, nil, PrecNone},
		TokenTrue:         {(*Parser).literal, nil, PrecNone},
		TokenNil:          {(*Parser).literal, nil, PrecNone},
	}
}

var binaryOps = map[TokenType]vm.Opcode{
	TokenPlus:         vm.OpAdd,
	TokenMinus:        vm.OpSubtract,
	TokenStar:         vm.OpMultiply,
	TokenSlash:        vm.OpDivide,
	TokenEqualEqual:   vm.OpEqual,
	TokenBangEqual:    vm.OpNotEqual,
	TokenGreater:      vm.OpGreater,
	TokenGreaterEqual: vm.OpGreaterEqual,
	TokenLess:         vm.OpLess,
	TokenLessEqual:    vm.OpLessEqual,
}

// Parser drives the scanner and emits into a chunk.
type Parser struct {
	scanner   *Scanner
	current   Token
	previous  Token
	chunk     *vm.Chunk
	errors    ErrorList
	panicMode bool
}

// NewParser creates a parser over input that emits into a fresh chunk.
func NewParser(input string) *Parser {
	return &Parser{
		scanner: NewScanner(input),
		chunk:   vm.NewChunk(),
	}
}

// Compile compiles a single expression into a chunk ending in OpReturn.
// On failure the error is an ErrorList holding every diagnostic.
func Compile(source string) (*vm.Chunk, error) {
	p := NewParser(source)
	return p.Compile()
}

// Compile parses the whole input.
func (p *Parser) Compile() (*vm.Chunk, error) {
	p.advance()
	p.expression()
	p.consume(TokenEOF, "expect end of expression")
	p.emitOp(vm.OpReturn, p.previous.Line)
	if err := p.errors.Err(); err != nil {
		return nil, err
	}
	return p.chunk, nil
}

// Errors returns accumulated diagnostics.
func (p *Parser) Errors() ErrorList {
	return p.errors
}

// ---------------------------------------------------------------------------
// Token handling
// ---------------------------------------------------------------------------

// advance moves to the next meaningful token. Comments are skipped and
// scanner errors are recorded as they are met.
func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.scanner.ScanToken()
		switch p.current.Type {
		case TokenComment:
			continue
		case TokenError:
			p.lexicalError(p.current)
			continue
		}
		return
	}
}

func (p *Parser) check(t TokenType) bool {
	return p.current.Type == t
}

func (p *Parser) consume(t TokenType, msg string) {
	if p.check(t) {
		p.advance()
		return
	}
	p.errorAtCurrent(msg)
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

// lexicalError is always recorded, even in panic mode, and starts a panic
// so the parse error it causes downstream is not reported twice.
func (p *Parser) lexicalError(tok Token) {
	p.errors = append(p.errors, &Error{
		Line:    tok.Line,
		Message: tok.Lexeme,
		Start:   tok.Start,
		Length:  tok.Length,
		Lexical: true,
	})
	p.panicMode = true
}

func (p *Parser) errorAtCurrent(msg string) {
	p.errorAt(p.current, msg)
}

func (p *Parser) errorAtPrevious(msg string) {
	p.errorAt(p.previous, msg)
}

// errorAt records a parse error unless one is already being reported.
func (p *Parser) errorAt(tok Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true

	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	if tok.IsEOF() {
		where = " at end"
	}
	p.errors = append(p.errors, &Error{
		Line:    tok.Line,
		Where:   where,
		Message: msg,
		Start:   tok.Start,
		Length:  tok.Length,
	})
}

// ---------------------------------------------------------------------------
// Emission
// ---------------------------------------------------------------------------

func (p *Parser) emitOp(op vm.Opcode, line int) {
	p.chunk.WriteOp(op, line)
}

func (p *Parser) emitConstant(v vm.Value, line int) {
	if err := p.chunk.EmitConstant(v, line); err != nil {
		if errors.Is(err, vm.ErrTooManyConstants) {
			p.errorAtPrevious("too many constants in one chunk")
			return
		}
		p.errorAtPrevious(err.Error())
	}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

func (p *Parser) expression() {
	p.parsePrecedence(PrecAssignment)
}

func (p *Parser) parsePrecedence(prec Precedence) {
	p.advance()
	prefix := rules[p.previous.Type].prefix
	if prefix == nil {
		p.errorAtPrevious("expect expression")
		return
	}
	prefix(p)

	for prec <= rules[p.current.Type].precedence {
		p.advance()
		rules[p.previous.Type].infix(p)
	}
}

func (p *Parser) number() {
	n, err := strconv.ParseFloat(p.previous.Lexeme, 64)
	if err != nil {
		p.errorAtPrevious("invalid number literal")
		return
	}
	p.emitConstant(vm.Number(n), p.previous.Line)
}

func (p *Parser) literal() {
	switch p.previous.Type {
	case TokenTrue:
		p.emitConstant(vm.True, p.previous.Line)
	case TokenFalse:
		p.emitConstant(vm.False, p.previous.Line)
	case TokenNil:
		p.emitConstant(vm.Nil, p.previous.Line)
	}
}

func (p *Parser) grouping() {
	p.expression()
	p.consume(TokenRightParen, "expect ')' after expression")
}

func (p *Parser) unary() {
	op := p.previous
	p.parsePrecedence(PrecUnary)
	switch op.Type {
	case TokenMinus:
		p.emitOp(vm.OpNegate, op.Line)
	case TokenBang:
		p.emitOp(vm.OpNot, op.Line)
	}
}

func (p *Parser) binary() {
	op := p.previous
	p.parsePrecedence(rules[op.Type].precedence + 1)
	p.emitOp(binaryOps[op.Type], op.Line)
}
