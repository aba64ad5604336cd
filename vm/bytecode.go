package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode represents a single bytecode instruction.
// Every opcode is one byte; only OpConstant carries an operand byte.
type Opcode byte

const (
	OpReturn   Opcode = 0x00 // pop and yield the result (nil if the stack is empty)
	OpConstant Opcode = 0x01 // push constant: OpConstant <index:u8>

	// Arithmetic
	OpNegate   Opcode = 0x02 // negate top of stack
	OpAdd      Opcode = 0x03 // pop b, pop a, push a + b
	OpSubtract Opcode = 0x04 // pop b, pop a, push a - b
	OpMultiply Opcode = 0x05 // pop b, pop a, push a * b
	OpDivide   Opcode = 0x06 // pop b, pop a, push a / b

	// Comparison
	OpEqual        Opcode = 0x07
	OpNotEqual     Opcode = 0x08
	OpGreater      Opcode = 0x09
	OpGreaterEqual Opcode = 0x0A
	OpLess         Opcode = 0x0B
	OpLessEqual    Opcode = 0x0C

	// Logical
	OpNot Opcode = 0x0D // boolean negation of top of stack
)

// OpcodeInfo provides metadata about each opcode for the disassembler and
// for validation.
type OpcodeInfo struct {
	Name       string // mnemonic printed by the disassembler
	StackPop   int    // values popped from the stack
	StackPush  int    // values pushed to the stack
	OperandLen int    // operand bytes following the opcode
}

var opcodeInfoTable = map[Opcode]OpcodeInfo{
	OpReturn:   {"OP_RETURN", 0, 0, 0},
	OpConstant: {"OP_CONSTANT", 0, 1, 1},

	OpNegate:   {"OP_NEGATE", 1, 1, 0},
	OpAdd:      {"OP_ADD", 2, 1, 0},
	OpSubtract: {"OP_SUBTRACT", 2, 1, 0},
	OpMultiply: {"OP_MULTIPLY", 2, 1, 0},
	OpDivide:   {"OP_DIVIDE", 2, 1, 0},

	OpEqual:        {"OP_EQUAL", 2, 1, 0},
	OpNotEqual:     {"OP_NOTEQUAL", 2, 1, 0},
	OpGreater:      {"OP_GREATER", 2, 1, 0},
	OpGreaterEqual: {"OP_GREATEREQUAL", 2, 1, 0},
	OpLess:         {"OP_LESSER", 2, 1, 0},
	OpLessEqual:    {"OP_LESSEREQUAL", 2, 1, 0},

	OpNot: {"OP_NOT", 1, 1, 0},
}

// LookupOpcode returns the metadata for op and whether op is defined.
func LookupOpcode(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeInfoTable[op]
	return info, ok
}

// String returns the mnemonic of an opcode, or UNKNOWN(n) for bytes that
// are not part of the instruction set.
func (op Opcode) String() string {
	if info, ok := opcodeInfoTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(%d)", byte(op))
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return opcodeInfoTable[op].OperandLen
}

// InstructionLen returns the total length of an instruction (1 + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// IsBinary reports whether op pops two operands.
func (op Opcode) IsBinary() bool {
	return opcodeInfoTable[op].StackPop == 2
}

// AllOpcodes returns every defined opcode in numeric order.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, len(opcodeInfoTable))
	for op := OpReturn; op <= OpNot; op++ {
		if _, ok := opcodeInfoTable[op]; ok {
			ops = append(ops, op)
		}
	}
	return ops
}
