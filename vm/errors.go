package vm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a VM failure.
type ErrorKind uint8

const (
	// ErrorKindInterpret covers environment-level failures such as an empty chunk.
	ErrorKindInterpret ErrorKind = iota

	// ErrorKindCompile means the bytecode itself is malformed: an unknown
	// opcode, a truncated operand or a bad constant index.
	ErrorKindCompile

	// ErrorKindStackUnderflow means an instruction found fewer operands than
	// it needs. Like ErrorKindCompile it blames the code that emitted the chunk.
	ErrorKindStackUnderflow

	// ErrorKindRuntime is an operator applied to operands it is not defined for.
	ErrorKindRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorKindInterpret:
		return "Interpret error"
	case ErrorKindCompile:
		return "Compile error"
	case ErrorKindStackUnderflow:
		return "Stack underflow"
	case ErrorKindRuntime:
		return "Runtime error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// IsCompileClass reports whether the failure blames the emitter of the
// chunk rather than the program being run.
func (k ErrorKind) IsCompileClass() bool {
	return k == ErrorKindCompile || k == ErrorKindStackUnderflow
}

// Sentinel causes. An *Error unwraps to one of these.
var (
	ErrEmptyChunk     = errors.New("no instructions to execute")
	ErrNoReturn       = errors.New("execution ran past the end of the chunk")
	ErrUnknownOpcode  = errors.New("unknown opcode")
	ErrBadOperand     = errors.New("bad operand")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrTypeMismatch   = errors.New("type mismatch")
)

// Error is a VM failure tagged with the source line of the failing
// instruction.
type Error struct {
	Kind    ErrorKind
	Message string
	Line    int
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s on line %d", e.Kind, e.Message, e.Line)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func newError(kind ErrorKind, cause error, line int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		cause:   cause,
	}
}

// AsError extracts a *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
