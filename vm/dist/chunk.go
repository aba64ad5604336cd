// Package dist implements the portable encoding of compiled glox chunks.
// Chunks are written with canonical CBOR so that the same chunk always
// encodes to the same bytes; the encoding backs .gloxc files and the
// compiled-chunk cache.
package dist

// WireVersion is the current encoding version. Decoders reject newer
// versions.
const WireVersion uint16 = 1

// Constant kinds on the wire. They are fixed independently of vm.ValueKind
// so the encoding does not change if the in-memory enum is reordered.
const (
	ConstNil     uint8 = 0
	ConstNumber  uint8 = 1
	ConstBoolean uint8 = 2
)

// Chunk is the wire form of a vm.Chunk.
type Chunk struct {
	Version    uint16     `cbor:"1,keyasint"`
	SourceHash [32]byte   `cbor:"2,keyasint,omitempty"` // sha256 of the compiled source, if known
	Code       []byte     `cbor:"3,keyasint"`
	Lines      []int      `cbor:"4,keyasint"`
	Constants  []Constant `cbor:"5,keyasint,omitempty"`
}

// Constant is the wire form of one constant-pool entry.
type Constant struct {
	Kind uint8   `cbor:"1,keyasint"`
	Num  float64 `cbor:"2,keyasint,omitempty"`
	Bool bool    `cbor:"3,keyasint,omitempty"`
}
