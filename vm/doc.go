// Package vm implements the glox bytecode virtual machine.
//
// This package contains:
//   - the scalar Value model (nil, number, boolean) and its operators
//   - Chunk, the instruction/line/constant container built by the compiler
//   - the disassembler and structured instruction listing
//   - the stack machine that evaluates a chunk to a single Value
//
// A chunk is produced by package compiler (or assembled by hand with
// Chunk.Write and Chunk.AddConstant) and handed to Evaluate:
//
//	c := vm.NewChunk()
//	c.EmitConstant(vm.Number(1.2), 1)
//	c.WriteOp(vm.OpNegate, 1)
//	c.WriteOp(vm.OpReturn, 1)
//	result, err := vm.Evaluate(c)
//
// Errors returned by Evaluate are *Error values carrying an ErrorKind and
// the source line of the failing instruction.
package vm
