package runtime

import (
	"testing"

	"gadgetlift/internal/apperr"
	"gadgetlift/internal/decoder"
	"gadgetlift/internal/memregion"
	"gadgetlift/internal/target"
)

type loadedRegion struct {
	addr uint64
	data []byte
}

type contextCall struct {
	name  string
	value uint32
}

// fakeDecoder implements nativeDecoder entirely in Go so the lift loop can
// be exercised without the native sleigh_shim library linked in.
type fakeDecoder struct {
	regs    []decoder.RawRegister
	insns   map[uint64]decoder.RawInsn
	loaded  []loadedRegion
	ctxSeen []contextCall
}

func (f *fakeDecoder) LoadSpec(path string) error { return nil }
func (f *fakeDecoder) Begin() error               { return nil }
func (f *fakeDecoder) SetContextDefault(name string, value uint32) error {
	f.ctxSeen = append(f.ctxSeen, contextCall{name, value})
	return nil
}
func (f *fakeDecoder) LoadBytes(address uint64, data []byte) error {
	f.loaded = append(f.loaded, loadedRegion{address, data})
	return nil
}
func (f *fakeDecoder) Registers() ([]decoder.RawRegister, error) { return f.regs, nil }
func (f *fakeDecoder) Close()                                    {}

func (f *fakeDecoder) LiftAt(address uint64) (decoder.RawInsn, bool, error) {
	insn, ok := f.insns[address]
	if !ok {
		return decoder.RawInsn{}, false, nil
	}
	return insn, true, nil
}

func retInsn(addr, size uint64) decoder.RawInsn {
	return decoder.RawInsn{
		Address:  addr,
		Size:     size,
		Mnemonic: "ret",
		Ops: []decoder.RawPcodeOp{
			{Opcode: 10, Inputs: []decoder.RawVarnode{{Space: "const", Offset: 0, Size: 8}}},
		},
	}
}

func TestPerformLiftSparseRegion(t *testing.T) {
	// One decodable insn at 0x0 (size 4), two undecodable bytes, then a
	// decodable insn at 0x6 -- exactly two output blocks, at 0x0 and 0x6.
	fake := &fakeDecoder{
		insns: map[uint64]decoder.RawInsn{
			0x0: retInsn(0x0, 4),
			0x6: retInsn(0x6, 4),
		},
	}

	tgt := target.FromRegions([]memregion.Region{
		memregion.New("text", 0x0, make([]byte, 0x10)),
	})
	tgt.SetAlignment(2)

	rt := newWithDecoder(fake)
	if err := rt.LoadTarget(tgt); err != nil {
		t.Fatalf("LoadTarget: %v", err)
	}

	blocks, err := rt.PerformLift()
	if err != nil {
		t.Fatalf("PerformLift: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0].Address != 0x0 || blocks[1].Address != 0x6 {
		t.Fatalf("unexpected block addresses: %#x, %#x", blocks[0].Address, blocks[1].Address)
	}
	if rt.State() != Lifted {
		t.Errorf("expected state Lifted, got %v", rt.State())
	}
}

func TestLoadTargetRejectsSecondLoad(t *testing.T) {
	fake := &fakeDecoder{}
	tgt := target.FromRegions(nil)

	rt := newWithDecoder(fake)
	if err := rt.LoadTarget(tgt); err != nil {
		t.Fatalf("first LoadTarget: %v", err)
	}
	err := rt.LoadTarget(tgt)
	if kind, ok := apperr.Of(err); !ok || kind != apperr.TargetPresent {
		t.Fatalf("expected TargetPresent, got %v", err)
	}
}

func TestPerformLiftWithoutTargetFails(t *testing.T) {
	rt := newWithDecoder(&fakeDecoder{})
	_, err := rt.PerformLift()
	if kind, ok := apperr.Of(err); !ok || kind != apperr.NoTarget {
		t.Fatalf("expected NoTarget, got %v", err)
	}
}
