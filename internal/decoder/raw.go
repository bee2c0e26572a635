package decoder

// This file holds the plain-data mirror of the C-ABI structs the native
// lifter hands back across cgo calls (see shim.go). Keeping them in a
// cgo-free file lets downstream packages (internal/il) depend on the
// shapes without every caller needing a C toolchain just to read a field.

// RawVarnode is one P-code operand: an address-space tag, an offset within
// that space, and a size in bytes. The space string is the native
// library's fixed 16-byte space name, already NUL-trimmed.
type RawVarnode struct {
	Space  string
	Offset uint64
	Size   uint64
}

// RawPcodeOp is one P-code operation inside a lifted instruction: a raw
// opcode number in the native library's numbering, its ordered inputs,
// and an optional output.
type RawPcodeOp struct {
	Opcode      uint32
	Inputs      []RawVarnode
	Output      RawVarnode
	OutputValid bool
}

// RawInsn is one decoded machine instruction: its address, its length in
// bytes, the mnemonic and operand text the native library formatted, and
// its P-code translation.
type RawInsn struct {
	Address  uint64
	Size     uint64
	Mnemonic string
	Body     string
	Ops      []RawPcodeOp
}

// RawRegister is one entry of the native library's register table.
type RawRegister struct {
	Name   string
	Offset uint64
	Width  uint64
}
