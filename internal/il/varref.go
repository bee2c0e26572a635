// Package il converts the decoder's raw P-code output into the typed
// intermediate language this module actually operates on: variable
// references, operations, semantic summaries, and instruction blocks.
package il

import (
	"fmt"
	"strconv"
	"strings"

	"gadgetlift/internal/apperr"
	"gadgetlift/internal/decoder"
	"gadgetlift/internal/regmap"
)

// VarKind tags the variant held by a VarReference.
type VarKind int

const (
	Constant VarKind = iota
	RegisterRef
	Memory
	Unique
)

// VarReference is a tagged union over a P-code operand. Exactly the fields
// relevant to Kind are meaningful; it is built once by FromVarnode and
// never mutated.
type VarReference struct {
	Kind VarKind

	// Constant, Memory
	Value uint64
	Width uint64

	// RegisterRef
	Register regmap.Descriptor

	// Unique
	Slot uint64
}

// spaceKind classifies a decoder address-space tag, matching on the prefix
// the way the native library's space names are formed.
func spaceKind(space string) (VarKind, bool) {
	switch {
	case strings.HasPrefix(space, "const"):
		return Constant, true
	case strings.HasPrefix(space, "register"):
		return RegisterRef, true
	case strings.HasPrefix(space, "unique"):
		return Unique, true
	case strings.HasPrefix(space, "ram") || strings.HasPrefix(space, "data") ||
		strings.HasPrefix(space, "code") || strings.HasPrefix(space, "stack"):
		return Memory, true
	default:
		return 0, false
	}
}

// FromVarnode classifies a raw operand into a VarReference. Unrecognised
// spaces (join, iop, fspec, and anything else the native library might
// emit) fail with BadVarSpace rather than being guessed at. A RegisterRef
// that names a register the current spec didn't declare fails with
// InvalidRegisterLookup.
func FromVarnode(v decoder.RawVarnode, regs *regmap.Map) (VarReference, error) {
	kind, ok := spaceKind(v.Space)
	if !ok {
		return VarReference{}, apperr.New(apperr.BadVarSpace, fmt.Sprintf("unrecognised address space %q", v.Space))
	}

	switch kind {
	case Constant:
		return VarReference{Kind: Constant, Value: v.Offset, Width: v.Size}, nil
	case Memory:
		return VarReference{Kind: Memory, Value: v.Offset, Width: v.Size}, nil
	case Unique:
		return VarReference{Kind: Unique, Slot: v.Offset, Width: v.Size}, nil
	case RegisterRef:
		d, ok := regs.Lookup(v.Offset, v.Size)
		if !ok {
			return VarReference{}, apperr.New(apperr.InvalidRegisterLookup,
				fmt.Sprintf("no register at offset %#x width %d", v.Offset, v.Size))
		}
		return VarReference{Kind: RegisterRef, Register: d}, nil
	default:
		return VarReference{}, apperr.New(apperr.BadVarSpace, fmt.Sprintf("unhandled space %q", v.Space))
	}
}

// Text pretty-prints the reference: constants as decimal, memory
// addresses as hex, unique slots as Unique{n}, registers by their stored
// name trimmed of trailing NULs.
func (v VarReference) Text() string {
	switch v.Kind {
	case Constant:
		return strconv.FormatUint(v.Value, 10)
	case Memory:
		return fmt.Sprintf("0x%x", v.Value)
	case Unique:
		return fmt.Sprintf("Unique{%d}", v.Slot)
	case RegisterRef:
		return strings.TrimRight(v.Register.Name, "\x00")
	default:
		return "?"
	}
}
