package vm

import (
	"fmt"
	"strings"
)

// Instruction is one decoded instruction of a chunk.
type Instruction struct {
	Offset   int
	Line     int
	SameLine bool // line equals the previous byte's line
	Opcode   Opcode
	Name     string
	Known    bool

	// Operand decoding; set only for OpConstant.
	HasOperand bool
	Operand    byte
	Constant   string

	// Problem describes malformed bytecode at this offset (truncated operand,
	// constant index out of range, unknown opcode).
	Problem string

	Size int
}

// Decode decodes the instruction at offset. It never panics: unknown
// opcodes and truncated operands are reported through Problem and the
// returned instruction always has Size >= 1 so callers make progress.
func (c *Chunk) Decode(offset int) Instruction {
	in := Instruction{Offset: offset, Size: 1}
	if offset < 0 || offset >= len(c.Code) {
		in.Problem = "offset out of range"
		return in
	}
	in.Line = c.LineAt(offset)
	in.SameLine = offset > 0 && c.LineAt(offset) == c.LineAt(offset-1)

	op := Opcode(c.Code[offset])
	in.Opcode = op
	info, ok := LookupOpcode(op)
	if !ok {
		in.Name = op.String()
		in.Problem = fmt.Sprintf("Unknown opcode %d", byte(op))
		return in
	}
	in.Known = true
	in.Name = info.Name

	if op == OpConstant {
		if offset+1 >= len(c.Code) {
			in.Problem = "missing constant operand"
			return in
		}
		in.HasOperand = true
		in.Operand = c.Code[offset+1]
		in.Size = 2
		if int(in.Operand) < len(c.Constants) {
			in.Constant = c.Constants[in.Operand].String()
		} else {
			in.Problem = fmt.Sprintf("constant index %d out of range", in.Operand)
		}
	}
	return in
}

// String renders the instruction in the disassembler's column format:
//
//	OOOO LLLL       OP_CONSTANT IIII 'value'
//	OOOO    |          OP_ADD
func (in Instruction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d ", in.Offset)
	if in.SameLine {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%04d ", in.Line)
	}

	switch {
	case !in.Known:
		sb.WriteString(in.Problem)
	case in.HasOperand:
		fmt.Fprintf(&sb, "%16s %04d '%s'", in.Name, in.Operand, in.Constant)
		if in.Problem != "" {
			sb.WriteString(" ; " + in.Problem)
		}
	default:
		fmt.Fprintf(&sb, "%16s", in.Name)
		if in.Problem != "" {
			sb.WriteString(" ; " + in.Problem)
		}
	}
	return sb.String()
}

// instructionYAML is the serialized form of an Instruction. Operand is a
// pointer so index 0 survives omitempty.
type instructionYAML struct {
	Offset   int    `yaml:"offset"`
	Line     int    `yaml:"line"`
	SameLine bool   `yaml:"same_line,omitempty"`
	Name     string `yaml:"op"`
	Operand  *int   `yaml:"operand,omitempty"`
	Constant string `yaml:"constant,omitempty"`
	Problem  string `yaml:"problem,omitempty"`
	Size     int    `yaml:"size"`
}

// MarshalYAML implements yaml.Marshaler.
func (in Instruction) MarshalYAML() (any, error) {
	out := instructionYAML{
		Offset:   in.Offset,
		Line:     in.Line,
		SameLine: in.SameLine,
		Name:     in.Name,
		Constant: in.Constant,
		Problem:  in.Problem,
		Size:     in.Size,
	}
	if in.HasOperand {
		operand := int(in.Operand)
		out.Operand = &operand
	}
	return out, nil
}

// DisassembleInstruction formats the instruction at offset and returns the
// offset of the next instruction.
func (c *Chunk) DisassembleInstruction(offset int) (string, int) {
	in := c.Decode(offset)
	return in.String(), offset + in.Size
}

// Disassemble returns a human-readable listing of the whole chunk, one line
// per instruction, under a "== name ==" header.
func (c *Chunk) Disassemble(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "== %s ==\n", name)
	for _, in := range c.Listing() {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Listing decodes every instruction in the chunk.
func (c *Chunk) Listing() []Instruction {
	var out []Instruction
	for offset := 0; offset < len(c.Code); {
		in := c.Decode(offset)
		out = append(out, in)
		offset += in.Size
	}
	return out
}
