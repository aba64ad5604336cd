package vm

import (
	"errors"
	"testing"
)

func TestNewChunk(t *testing.T) {
	c := NewChunk()
	if c.Count() != 0 {
		t.Errorf("Count() = %d, want 0", c.Count())
	}
	if c.Capacity() != 0 {
		t.Errorf("Capacity() = %d, want 0", c.Capacity())
	}
	if c.ConstantCount() != 0 {
		t.Errorf("ConstantCount() = %d, want 0", c.ConstantCount())
	}
}

func TestChunkWriteKeepsLinesParallel(t *testing.T) {
	c := NewChunk()
	for i := 0; i < 100; i++ {
		c.Write(byte(i), i/3)
		if len(c.Code) != len(c.Lines) {
			t.Fatalf("after %d writes len(Code) = %d, len(Lines) = %d", i+1, len(c.Code), len(c.Lines))
		}
	}
	for i := 0; i < 100; i++ {
		if c.Code[i] != byte(i) || c.Lines[i] != i/3 {
			t.Errorf("byte %d = (%d, line %d), want (%d, line %d)", i, c.Code[i], c.Lines[i], i, i/3)
		}
	}
}

func TestChunkCapacityDoubles(t *testing.T) {
	c := NewChunk()
	wantCaps := map[int]int{1: 8, 8: 8, 9: 16, 16: 16, 17: 32, 33: 64}
	for n := 1; n <= 40; n++ {
		c.Write(0, 1)
		if want, ok := wantCaps[n]; ok && c.Capacity() != want {
			t.Errorf("after %d writes Capacity() = %d, want %d", n, c.Capacity(), want)
		}
		if c.Count() != n {
			t.Errorf("after %d writes Count() = %d", n, c.Count())
		}
	}
}

func TestChunkAddConstantIndices(t *testing.T) {
	c := NewChunk()
	for i := 0; i < MaxConstants; i++ {
		idx, err := c.AddConstant(Number(float64(i)))
		if err != nil {
			t.Fatalf("AddConstant #%d: %v", i, err)
		}
		if int(idx) != i {
			t.Fatalf("AddConstant #%d index = %d", i, idx)
		}
	}

	// Equal values are not merged.
	if c.ConstantCount() != MaxConstants {
		t.Errorf("ConstantCount() = %d, want %d", c.ConstantCount(), MaxConstants)
	}

	if _, err := c.AddConstant(Nil); !errors.Is(err, ErrTooManyConstants) {
		t.Errorf("AddConstant past the cap: err = %v, want ErrTooManyConstants", err)
	}
	if c.ConstantCount() != MaxConstants {
		t.Errorf("failed AddConstant changed the pool: %d entries", c.ConstantCount())
	}
}

func TestChunkEmitConstant(t *testing.T) {
	c := NewChunk()
	if err := c.EmitConstant(Number(7), 3); err != nil {
		t.Fatalf("EmitConstant: %v", err)
	}
	if len(c.Code) != 2 || Opcode(c.Code[0]) != OpConstant || c.Code[1] != 0 {
		t.Errorf("Code = %v, want [OP_CONSTANT 0]", c.Code)
	}
	if c.Lines[0] != 3 || c.Lines[1] != 3 {
		t.Errorf("Lines = %v, want [3 3]", c.Lines)
	}
}

func TestBuildChunk(t *testing.T) {
	c, err := BuildChunk([]Value{Number(1)}, []byte{byte(OpConstant), 0, byte(OpReturn)}, []int{1, 1, 2})
	if err != nil {
		t.Fatalf("BuildChunk: %v", err)
	}
	if c.Count() != 3 || c.ConstantCount() != 1 {
		t.Errorf("Count() = %d, ConstantCount() = %d", c.Count(), c.ConstantCount())
	}
	if c.LineAt(2) != 2 {
		t.Errorf("LineAt(2) = %d, want 2", c.LineAt(2))
	}

	if _, err := BuildChunk(nil, []byte{0, 0}, []int{1}); !errors.Is(err, ErrLineMismatch) {
		t.Errorf("mismatched lines: err = %v, want ErrLineMismatch", err)
	}

	tooMany := make([]Value, MaxConstants+1)
	if _, err := BuildChunk(tooMany, nil, nil); !errors.Is(err, ErrTooManyConstants) {
		t.Errorf("oversized pool: err = %v, want ErrTooManyConstants", err)
	}
}

func TestBuildChunkCopiesInputs(t *testing.T) {
	code := []byte{byte(OpReturn)}
	c, err := BuildChunk(nil, code, []int{1})
	if err != nil {
		t.Fatalf("BuildChunk: %v", err)
	}
	code[0] = 0xFF
	if c.Code[0] != byte(OpReturn) {
		t.Error("BuildChunk aliases the caller's code slice")
	}
}

func TestChunkLineAtOutOfRange(t *testing.T) {
	c := NewChunk()
	c.Write(byte(OpReturn), 9)
	if got := c.LineAt(-1); got != 0 {
		t.Errorf("LineAt(-1) = %d, want 0", got)
	}
	if got := c.LineAt(1); got != 0 {
		t.Errorf("LineAt(1) = %d, want 0", got)
	}
}
