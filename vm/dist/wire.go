package dist

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/chazu/glox/vm"
)

// cborEncMode uses canonical mode for deterministic encoding.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("dist: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// HashSource returns the digest recorded in Chunk.SourceHash.
func HashSource(source string) [32]byte {
	return sha256.Sum256([]byte(source))
}

// FromVM converts a vm.Chunk to its wire form. source may be empty when
// the chunk was not compiled from text.
func FromVM(c *vm.Chunk, source string) *Chunk {
	w := &Chunk{
		Version: WireVersion,
		Code:    append([]byte(nil), c.Code...),
		Lines:   append([]int(nil), c.Lines...),
	}
	if source != "" {
		w.SourceHash = HashSource(source)
	}
	for _, v := range c.Constants {
		w.Constants = append(w.Constants, encodeValue(v))
	}
	return w
}

// ToVM converts the wire form back to a vm.Chunk, checking the version and
// the chunk invariants.
func (w *Chunk) ToVM() (*vm.Chunk, error) {
	if w.Version > WireVersion {
		return nil, fmt.Errorf("dist: chunk version %d is newer than supported version %d", w.Version, WireVersion)
	}
	constants := make([]vm.Value, 0, len(w.Constants))
	for i, k := range w.Constants {
		v, err := decodeValue(k)
		if err != nil {
			return nil, fmt.Errorf("dist: constant %d: %w", i, err)
		}
		constants = append(constants, v)
	}
	c, err := vm.BuildChunk(constants, w.Code, w.Lines)
	if err != nil {
		return nil, fmt.Errorf("dist: %w", err)
	}
	return c, nil
}

// Verify reports whether the chunk was compiled from source.
func (w *Chunk) Verify(source string) error {
	if w.SourceHash == ([32]byte{}) {
		return fmt.Errorf("dist: chunk carries no source hash")
	}
	if computed := HashSource(source); computed != w.SourceHash {
		return fmt.Errorf("dist: hash mismatch: declared %x, computed %x", w.SourceHash, computed)
	}
	return nil
}

func encodeValue(v vm.Value) Constant {
	switch v.Kind() {
	case vm.KindNumber:
		return Constant{Kind: ConstNumber, Num: v.AsNumber()}
	case vm.KindBoolean:
		return Constant{Kind: ConstBoolean, Bool: v.AsBoolean()}
	default:
		return Constant{Kind: ConstNil}
	}
}

func decodeValue(k Constant) (vm.Value, error) {
	switch k.Kind {
	case ConstNil:
		return vm.Nil, nil
	case ConstNumber:
		return vm.Number(k.Num), nil
	case ConstBoolean:
		return vm.Boolean(k.Bool), nil
	default:
		return vm.Nil, fmt.Errorf("unknown constant kind %d", k.Kind)
	}
}

// MarshalChunk serializes a Chunk to CBOR bytes.
func MarshalChunk(c *Chunk) ([]byte, error) {
	return cborEncMode.Marshal(c)
}

// UnmarshalChunk deserializes a Chunk from CBOR bytes.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var c Chunk
	if err := cbor.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("dist: unmarshal chunk: %w", err)
	}
	return &c, nil
}

// Encode converts c to wire form and serializes it.
func Encode(c *vm.Chunk, source string) ([]byte, error) {
	return MarshalChunk(FromVM(c, source))
}

// Decode deserializes data and converts it to a vm.Chunk.
func Decode(data []byte) (*vm.Chunk, error) {
	w, err := UnmarshalChunk(data)
	if err != nil {
		return nil, err
	}
	return w.ToVM()
}
