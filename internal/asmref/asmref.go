// Package asmref decodes raw bytes with golang.org/x/arch's independent
// x86 and ARM64 disassemblers, entirely outside the SLEIGH pipeline. It
// exists to cross-check the decoder shim's reported instruction lengths
// against a second, unrelated decoder — not to replace any part of the
// lift pipeline itself.
package asmref

import (
	"fmt"

	"golang.org/x/arch/arm64/arm64asm"
	"golang.org/x/arch/x86/x86asm"
)

// Arch names an instruction set asmref knows how to decode.
type Arch string

const (
	ArchX86_64 Arch = "x86_64"
	ArchARM64  Arch = "arm64"
)

// Decoded is one independently-decoded instruction: its length in bytes
// and its disassembler-formatted text.
type Decoded struct {
	Size uint64
	Text string
}

// Decode decodes one instruction from the start of data using the
// disassembler for arch. It returns an error for both malformed input
// and an unrecognised arch — there is no silent fallback between the
// two instruction sets.
func Decode(arch Arch, data []byte) (Decoded, error) {
	switch arch {
	case ArchX86_64:
		return decodeX86(data)
	case ArchARM64:
		return decodeARM64(data)
	default:
		return Decoded{}, fmt.Errorf("asmref: unrecognised architecture %q", arch)
	}
}

func decodeX86(data []byte) (Decoded, error) {
	inst, err := x86asm.Decode(data, 64)
	if err != nil {
		return Decoded{}, fmt.Errorf("asmref: x86 decode: %w", err)
	}
	return Decoded{
		Size: uint64(inst.Len),
		Text: x86asm.GNUSyntax(inst, 0, nil),
	}, nil
}

func decodeARM64(data []byte) (Decoded, error) {
	inst, err := arm64asm.Decode(data)
	if err != nil {
		return Decoded{}, fmt.Errorf("asmref: arm64 decode: %w", err)
	}
	return Decoded{
		Size: 4, // every A64 instruction is a fixed 4 bytes wide
		Text: arm64asm.GNUSyntax(inst),
	}, nil
}

// SizeMatches reports whether a cross-checked decode agrees with the
// SLEIGH decoder's reported instruction size. A mismatch does not
// necessarily mean either decoder is wrong — architectures with variable
// instruction prefixing can legitimately be read two ways — but it flags
// a block worth a human's attention in the selfcheck report.
func SizeMatches(d Decoded, sleighSize uint64) bool {
	return d.Size == sleighSize
}
