package il

import (
	"testing"

	"gadgetlift/internal/apperr"
	"gadgetlift/internal/decoder"
	"gadgetlift/internal/regmap"
)

func testRegs() *regmap.Map {
	return regmap.New([]regmap.Descriptor{
		{Name: "rsp", Offset: 0x20, Width: 8},
		{Name: "rax", Offset: 0x0, Width: 8},
	})
}

func TestFromVarnodeVariants(t *testing.T) {
	regs := testRegs()

	cases := []struct {
		name string
		v    decoder.RawVarnode
		kind VarKind
		text string
	}{
		{"constant", decoder.RawVarnode{Space: "const", Offset: 5, Size: 4}, Constant, "5"},
		{"memory-ram", decoder.RawVarnode{Space: "ram", Offset: 0x1000, Size: 1}, Memory, "0x1000"},
		{"memory-stack", decoder.RawVarnode{Space: "stack", Offset: 0x8, Size: 8}, Memory, "0x8"},
		{"unique", decoder.RawVarnode{Space: "unique", Offset: 0x30, Size: 8}, Unique, "Unique{48}"},
		{"register", decoder.RawVarnode{Space: "register", Offset: 0x20, Size: 8}, RegisterRef, "rsp"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v, err := FromVarnode(tc.v, regs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if v.Kind != tc.kind {
				t.Errorf("kind = %v, want %v", v.Kind, tc.kind)
			}
			if got := v.Text(); got != tc.text {
				t.Errorf("Text() = %q, want %q", got, tc.text)
			}
		})
	}
}

func TestFromVarnodeBadSpace(t *testing.T) {
	_, err := FromVarnode(decoder.RawVarnode{Space: "join", Offset: 0, Size: 8}, testRegs())
	if kind, ok := apperr.Of(err); !ok || kind != apperr.BadVarSpace {
		t.Fatalf("expected BadVarSpace, got %v", err)
	}
}

func TestFromVarnodeUnknownRegister(t *testing.T) {
	_, err := FromVarnode(decoder.RawVarnode{Space: "register", Offset: 0x9999, Size: 8}, testRegs())
	if kind, ok := apperr.Of(err); !ok || kind != apperr.InvalidRegisterLookup {
		t.Fatalf("expected InvalidRegisterLookup, got %v", err)
	}
}

func TestTagFromRawOpcode(t *testing.T) {
	cases := map[uint32]Tag{
		rawCopy:      Copy,
		rawLoad:      Load,
		rawStore:     Store,
		rawBranch:    Branch,
		rawCbranch:   BranchConditional,
		rawBranchind: BranchIndirect,
		rawCall:      Call,
		rawCallind:   CallIndirect,
		rawReturn:    Return,
		rawCallother: Unimplemented,
		999:          Unimplemented,
	}
	for raw, want := range cases {
		if got := TagFromRawOpcode(raw); got != want {
			t.Errorf("TagFromRawOpcode(%d) = %v, want %v", raw, got, want)
		}
	}
}

func TestModifiesSP(t *testing.T) {
	regs := testRegs()
	sp, _ := FromVarnode(decoder.RawVarnode{Space: "register", Offset: 0x20, Size: 8}, regs)
	rax, _ := FromVarnode(decoder.RawVarnode{Space: "register", Offset: 0x0, Size: 8}, regs)

	spOp := ILOp{Tag: Copy, Output: sp, OutputValid: true}
	if !ModifiesSP(spOp) {
		t.Error("expected ModifiesSP true for output register 'rsp'")
	}

	raxOp := ILOp{Tag: Copy, Output: rax, OutputValid: true}
	if ModifiesSP(raxOp) {
		t.Error("expected ModifiesSP false for output register 'rax'")
	}

	noOutput := ILOp{Tag: Copy}
	if ModifiesSP(noOutput) {
		t.Error("expected ModifiesSP false with no output")
	}
}

func TestSummariseAggregates(t *testing.T) {
	regs := testRegs()
	sp, _ := FromVarnode(decoder.RawVarnode{Space: "register", Offset: 0x20, Size: 8}, regs)

	ops := []ILOp{
		{Tag: Copy, Output: sp, OutputValid: true},
		{Tag: Call},
		{Tag: Unimplemented},
		{Tag: BranchConditional},
	}

	s := Summarise(ops)
	if !s.ModifiesSP || !s.Call || !s.Unimplemented || !s.Jump {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.Ret {
		t.Error("did not expect Ret set")
	}
}

func TestNewOpAbortsOnBadOperand(t *testing.T) {
	raw := decoder.RawPcodeOp{
		Opcode: rawCopy,
		Inputs: []decoder.RawVarnode{{Space: "iop", Offset: 0, Size: 4}},
	}
	if _, err := NewOp(raw, testRegs()); err == nil {
		t.Fatal("expected an error from an unsupported operand space")
	}
}

func TestNewBlockFormatsTextAndSummary(t *testing.T) {
	regs := testRegs()
	raw := decoder.RawInsn{
		Address:  0x400000,
		Size:     4,
		Mnemonic: "ret",
		Body:     "",
		Ops: []decoder.RawPcodeOp{
			{Opcode: rawReturn, Inputs: []decoder.RawVarnode{{Space: "const", Offset: 0, Size: 8}}},
		},
	}

	b, err := NewBlock(raw, regs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Text != "ret " {
		t.Errorf("Text = %q, want %q", b.Text, "ret ")
	}
	if len(b.Ops) != 1 {
		t.Fatalf("expected 1 op, got %d", len(b.Ops))
	}
	if !b.Summary.Ret {
		t.Error("expected Ret set in summary")
	}
}
