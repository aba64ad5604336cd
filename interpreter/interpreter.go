// Package interpreter ties the compiler, the optional chunk cache and the
// VM together: source text in, one value out.
package interpreter

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"github.com/chazu/glox/compiler"
	"github.com/chazu/glox/vm"
)

// ChunkCache stores compiled chunks by source text. *cache.Store satisfies it.
type ChunkCache interface {
	Get(source string) (*vm.Chunk, bool, error)
	Put(source string, chunk *vm.Chunk) error
}

// Interpreter compiles and runs glox source.
type Interpreter struct {
	out      io.Writer
	trace    io.Writer
	disasm   io.Writer
	cache    ChunkCache
	log      commonlog.Logger
	compiles int
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput sets the writer that receives returned values. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(in *Interpreter) { in.out = w }
}

// WithTrace enables the VM execution trace, written to w.
func WithTrace(w io.Writer) Option {
	return func(in *Interpreter) { in.trace = w }
}

// WithDisassembly prints each chunk's listing to w before it runs.
func WithDisassembly(w io.Writer) Option {
	return func(in *Interpreter) { in.disasm = w }
}

// WithCache looks chunks up in c before compiling and stores new ones.
func WithCache(c ChunkCache) Option {
	return func(in *Interpreter) { in.cache = c }
}

// WithLogger replaces the default "glox.interpreter" logger.
func WithLogger(l commonlog.Logger) Option {
	return func(in *Interpreter) { in.log = l }
}

// New creates an Interpreter.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{
		out: os.Stdout,
		log: commonlog.GetLogger("glox.interpreter"),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Compiles returns how many sources were compiled rather than served
// from the cache.
func (in *Interpreter) Compiles() int {
	return in.compiles
}

// Compile returns the chunk for source, from the cache when possible.
// Cache failures are logged and never fail the compile.
func (in *Interpreter) Compile(source string) (*vm.Chunk, error) {
	if in.cache != nil {
		chunk, ok, err := in.cache.Get(source)
		if err != nil {
			in.log.Warningf("cache lookup failed: %s", err)
		} else if ok {
			return chunk, nil
		}
	}

	chunk, err := compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	in.compiles++

	if in.cache != nil {
		if err := in.cache.Put(source, chunk); err != nil {
			in.log.Warningf("cache store failed: %s", err)
		}
	}
	return chunk, nil
}

// Interpret compiles source and runs it.
func (in *Interpreter) Interpret(source string) (vm.Value, error) {
	chunk, err := in.Compile(source)
	if err != nil {
		in.log.Debugf("compile failed: %s", err)
		return vm.Nil, err
	}
	return in.RunChunk(chunk)
}

// RunChunk runs an already compiled chunk.
func (in *Interpreter) RunChunk(chunk *vm.Chunk) (vm.Value, error) {
	if in.disasm != nil && chunk != nil {
		if _, err := io.WriteString(in.disasm, chunk.Disassemble("chunk")); err != nil {
			return vm.Nil, fmt.Errorf("writing disassembly: %w", err)
		}
	}

	opts := []vm.Option{vm.WithOutput(in.out)}
	if in.trace != nil {
		opts = append(opts, vm.WithTrace(in.trace))
	}
	v, err := vm.Evaluate(chunk, opts...)
	if err != nil {
		if e, ok := vm.AsError(err); ok && e.Kind.IsCompileClass() {
			in.log.Errorf("malformed chunk: %s", e)
		}
		return vm.Nil, err
	}
	return v, nil
}
