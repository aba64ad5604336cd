package vm

import (
	"errors"
	"fmt"
)

// MaxConstants is the size of a chunk's constant pool. Constant indices are
// encoded as a single operand byte.
const MaxConstants = 256

var (
	// ErrTooManyConstants is returned when a constant pool would exceed MaxConstants.
	ErrTooManyConstants = errors.New("too many constants in one chunk")

	// ErrLineMismatch is returned by BuildChunk when code and lines differ in length.
	ErrLineMismatch = errors.New("code and line buffers differ in length")
)

// Chunk represents compiled bytecode: the instruction stream, the source
// line of every byte, and the constant pool.
//
// Code and Lines always have the same length. A chunk is written only by
// whoever builds it; the VM treats it as read-only.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []Value
}

// NewChunk creates an empty chunk with no allocated capacity.
func NewChunk() *Chunk {
	return &Chunk{}
}

// BuildChunk creates a fully populated chunk. code and lines must have the
// same length and constants must fit the pool.
func BuildChunk(constants []Value, code []byte, lines []int) (*Chunk, error) {
	if len(code) != len(lines) {
		return nil, fmt.Errorf("%w: %d code bytes, %d lines", ErrLineMismatch, len(code), len(lines))
	}
	if len(constants) > MaxConstants {
		return nil, fmt.Errorf("%w: %d", ErrTooManyConstants, len(constants))
	}
	c := &Chunk{
		Code:      append([]byte(nil), code...),
		Lines:     append([]int(nil), lines...),
		Constants: append([]Value(nil), constants...),
	}
	return c, nil
}

// growCapacity returns the next buffer capacity: 8, then doubling.
func growCapacity(capacity int) int {
	if capacity < 8 {
		return 8
	}
	return capacity * 2
}

// Write appends one code byte and the source line it came from.
func (c *Chunk) Write(b byte, line int) {
	if len(c.Code) == cap(c.Code) {
		newCap := growCapacity(cap(c.Code))
		code := make([]byte, len(c.Code), newCap)
		copy(code, c.Code)
		lines := make([]int, len(c.Lines), newCap)
		copy(lines, c.Lines)
		c.Code, c.Lines = code, lines
	}
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends v to the constant pool and returns its index.
// Indices start at 0 and increase by one per call; identical values are
// not merged.
func (c *Chunk) AddConstant(v Value) (byte, error) {
	if len(c.Constants) >= MaxConstants {
		return 0, ErrTooManyConstants
	}
	if len(c.Constants) == cap(c.Constants) {
		pool := make([]Value, len(c.Constants), growCapacity(cap(c.Constants)))
		copy(pool, c.Constants)
		c.Constants = pool
	}
	c.Constants = append(c.Constants, v)
	return byte(len(c.Constants) - 1), nil
}

// EmitConstant adds v to the pool and writes the OpConstant instruction
// that loads it.
func (c *Chunk) EmitConstant(v Value, line int) error {
	idx, err := c.AddConstant(v)
	if err != nil {
		return err
	}
	c.WriteOp(OpConstant, line)
	c.Write(idx, line)
	return nil
}

// Count returns the number of code bytes written.
func (c *Chunk) Count() int {
	return len(c.Code)
}

// Capacity returns the allocated capacity of the code buffer.
func (c *Chunk) Capacity() int {
	return cap(c.Code)
}

// ConstantCount returns the number of constants in the pool.
func (c *Chunk) ConstantCount() int {
	return len(c.Constants)
}

// LineAt returns the source line recorded for the byte at offset, or 0 if
// offset is out of range.
func (c *Chunk) LineAt(offset int) int {
	if offset < 0 || offset >= len(c.Lines) {
		return 0
	}
	return c.Lines[offset]
}

// Validate checks the structural invariants of a chunk that was decoded or
// assembled by hand.
func (c *Chunk) Validate() error {
	if len(c.Code) != len(c.Lines) {
		return fmt.Errorf("%w: %d code bytes, %d lines", ErrLineMismatch, len(c.Code), len(c.Lines))
	}
	if len(c.Constants) > MaxConstants {
		return fmt.Errorf("%w: %d", ErrTooManyConstants, len(c.Constants))
	}
	return nil
}
