package asmref

import "testing"

func TestDecodeX86Ret(t *testing.T) {
	d, err := Decode(ArchX86_64, []byte{0xC3})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Size != 1 {
		t.Errorf("Size = %d, want 1", d.Size)
	}
	if d.Text == "" {
		t.Error("expected non-empty disassembly text")
	}
}

func TestDecodeARM64Ret(t *testing.T) {
	// RET with the default link register: 0xD65F03C0, little-endian.
	d, err := Decode(ArchARM64, []byte{0xC0, 0x03, 0x5F, 0xD6})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if d.Size != 4 {
		t.Errorf("Size = %d, want 4", d.Size)
	}
}

func TestDecodeUnknownArch(t *testing.T) {
	if _, err := Decode(Arch("mips"), []byte{0}); err == nil {
		t.Fatal("expected an error for an unrecognised architecture")
	}
}

func TestSizeMatches(t *testing.T) {
	d := Decoded{Size: 4}
	if !SizeMatches(d, 4) {
		t.Error("expected sizes to match")
	}
	if SizeMatches(d, 2) {
		t.Error("expected sizes not to match")
	}
}
