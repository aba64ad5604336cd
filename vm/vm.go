package vm

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ---------------------------------------------------------------------------
// VM: stack machine for a single chunk
// ---------------------------------------------------------------------------

// VM executes one chunk. A VM is built for one Evaluate call; it keeps no
// state that outlives the call beyond its own operand stack.
type VM struct {
	chunk *Chunk
	ip    int     // offset of the next byte to fetch
	stack []Value // operand stack, top is the last element

	// Out receives the value yielded by OpReturn. Defaults to os.Stdout.
	Out io.Writer

	// Trace prints the stack and the next instruction before every fetch.
	Trace bool
	// TraceOut receives trace output. Defaults to Out.
	TraceOut io.Writer
}

// Option configures a VM.
type Option func(*VM)

// WithOutput sets the writer that receives the returned value.
func WithOutput(w io.Writer) Option {
	return func(vm *VM) { vm.Out = w }
}

// WithTrace enables the execution trace, written to w (nil means Out).
func WithTrace(w io.Writer) Option {
	return func(vm *VM) {
		vm.Trace = true
		vm.TraceOut = w
	}
}

// NewVM creates a VM that will execute chunk.
func NewVM(chunk *Chunk, opts ...Option) *VM {
	vm := &VM{
		chunk: chunk,
		stack: make([]Value, 0, 256),
		Out:   os.Stdout,
	}
	for _, opt := range opts {
		opt(vm)
	}
	return vm
}

// Evaluate runs chunk on a fresh VM.
func Evaluate(chunk *Chunk, opts ...Option) (Value, error) {
	return NewVM(chunk, opts...).Evaluate()
}

// ---------------------------------------------------------------------------
// Stack operations
// ---------------------------------------------------------------------------

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
}

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return Nil, vm.errorf(ErrorKindStackUnderflow, ErrStackUnderflow, "stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

// popPair pops the right operand, then the left one.
func (vm *VM) popPair() (a, b Value, err error) {
	if len(vm.stack) < 2 {
		return Nil, Nil, vm.errorf(ErrorKindStackUnderflow, ErrStackUnderflow, "stack underflow")
	}
	b, _ = vm.pop()
	a, _ = vm.pop()
	return a, b, nil
}

// Stack returns a copy of the operand stack, bottom first.
func (vm *VM) Stack() []Value {
	return append([]Value(nil), vm.stack...)
}

// line returns the line of the byte just before ip: the opcode being executed.
func (vm *VM) line() int {
	return vm.chunk.LineAt(vm.ip - 1)
}

func (vm *VM) errorf(kind ErrorKind, cause error, format string, args ...any) *Error {
	return newError(kind, cause, vm.line(), format, args...)
}

// ---------------------------------------------------------------------------
// Main loop
// ---------------------------------------------------------------------------

// Evaluate runs the chunk until OpReturn or the first error. On success it
// returns the value popped by OpReturn, after printing it to Out.
func (vm *VM) Evaluate() (Value, error) {
	if vm.chunk == nil || len(vm.chunk.Code) == 0 {
		return Nil, newError(ErrorKindInterpret, ErrEmptyChunk, 0, "no instructions to execute")
	}
	vm.ip = 0
	vm.stack = vm.stack[:0]

	for {
		if vm.ip >= len(vm.chunk.Code) {
			return Nil, newError(ErrorKindCompile, ErrNoReturn, vm.chunk.LineAt(len(vm.chunk.Code)-1),
				"reached end of chunk without a return")
		}
		if vm.Trace {
			vm.traceStep()
		}

		op := Opcode(vm.chunk.Code[vm.ip])
		vm.ip++

		switch op {
		case OpReturn:
			result := Nil
			if len(vm.stack) > 0 {
				result, _ = vm.pop()
			}
			if vm.Out != nil {
				fmt.Fprintln(vm.Out, result)
			}
			return result, nil

		case OpConstant:
			if vm.ip >= len(vm.chunk.Code) {
				return Nil, vm.errorf(ErrorKindCompile, ErrBadOperand, "missing constant operand")
			}
			idx := vm.chunk.Code[vm.ip]
			vm.ip++
			if int(idx) >= len(vm.chunk.Constants) {
				return Nil, vm.errorf(ErrorKindCompile, ErrBadOperand, "constant index %d out of range", idx)
			}
			vm.push(vm.chunk.Constants[idx])

		case OpNegate:
			v, err := vm.pop()
			if err != nil {
				return Nil, err
			}
			r, ok := v.Negate()
			if !ok {
				return Nil, vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't negate a non-numeric value")
			}
			vm.push(r)

		case OpAdd, OpSubtract, OpMultiply, OpDivide:
			if err := vm.arithmetic(op); err != nil {
				return Nil, err
			}

		case OpNot:
			v, err := vm.pop()
			if err != nil {
				return Nil, err
			}
			r, ok := v.Not()
			if !ok {
				return Nil, vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't ! a non-boolean value")
			}
			vm.push(r)

		case OpEqual, OpNotEqual:
			a, b, err := vm.popPair()
			if err != nil {
				return Nil, err
			}
			eq := a.Equal(b)
			if op == OpNotEqual {
				eq = !eq
			}
			vm.push(Boolean(eq))

		case OpGreater, OpGreaterEqual, OpLess, OpLessEqual:
			if err := vm.compare(op); err != nil {
				return Nil, err
			}

		default:
			return Nil, vm.errorf(ErrorKindCompile, ErrUnknownOpcode, "unknown opcode %04d", byte(op))
		}
	}
}

var arithmeticVerbs = map[Opcode]string{
	OpAdd:      "add",
	OpSubtract: "subtract",
	OpMultiply: "multiply",
	OpDivide:   "divide",
}

func (vm *VM) arithmetic(op Opcode) error {
	a, b, err := vm.popPair()
	if err != nil {
		return err
	}
	var r Value
	var ok bool
	switch op {
	case OpAdd:
		r, ok = a.Add(b)
	case OpSubtract:
		r, ok = a.Sub(b)
	case OpMultiply:
		r, ok = a.Mul(b)
	case OpDivide:
		r, ok = a.Div(b)
	}
	if !ok {
		verb := arithmeticVerbs[op]
		if a.Kind() != b.Kind() {
			return vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't %s values of differing types", verb)
		}
		return vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't %s %s values", verb, a.Kind())
	}
	vm.push(r)
	return nil
}

func (vm *VM) compare(op Opcode) error {
	a, b, err := vm.popPair()
	if err != nil {
		return err
	}
	ord, ok := a.Compare(b)
	if !ok {
		if a.Kind() != b.Kind() {
			return vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't compare values of differing types")
		}
		return vm.errorf(ErrorKindRuntime, ErrTypeMismatch, "can't compare unordered %s values", a.Kind())
	}
	var r bool
	switch op {
	case OpGreater:
		r = ord > 0
	case OpGreaterEqual:
		r = ord >= 0
	case OpLess:
		r = ord < 0
	case OpLessEqual:
		r = ord <= 0
	}
	vm.push(Boolean(r))
	return nil
}

// traceStep prints the stack bottom-to-top and the next instruction.
func (vm *VM) traceStep() {
	w := vm.TraceOut
	if w == nil {
		w = vm.Out
	}
	if w == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString("          ")
	for _, v := range vm.stack {
		fmt.Fprintf(&sb, "[ %s ]", v)
	}
	sb.WriteByte('\n')
	text, _ := vm.chunk.DisassembleInstruction(vm.ip)
	sb.WriteString(text)
	sb.WriteByte('\n')
	io.WriteString(w, sb.String())
}
