package il

import (
	"gadgetlift/internal/decoder"
	"gadgetlift/internal/regmap"
)

// Tag identifies the variant held by an ILOp.
type Tag int

const (
	Unimplemented Tag = iota
	Copy
	Store
	Load
	Branch
	BranchConditional
	BranchIndirect
	Call
	CallIndirect
	Return
	// NotSupported is reserved for a future decoder surface; TagFromRawOpcode
	// never produces it.
	NotSupported
)

// Raw opcode numbers, matching the native library's CPUI_* numbering.
// rawCallother, and anything outside this table entirely, collapses to
// Unimplemented per the category table.
const (
	rawCopy      = 1
	rawLoad      = 2
	rawStore     = 3
	rawBranch    = 4
	rawCbranch   = 5
	rawBranchind = 6
	rawCall      = 7
	rawCallind   = 8
	rawCallother = 9
	rawReturn    = 10
)

// TagFromRawOpcode is a total function from the native library's raw
// opcode number to an IL tag. CALLOTHER, every arithmetic/logic/float/SSA
// helper opcode, and any unknown numeric value all map to Unimplemented.
func TagFromRawOpcode(raw uint32) Tag {
	switch raw {
	case rawCopy:
		return Copy
	case rawLoad:
		return Load
	case rawStore:
		return Store
	case rawBranch:
		return Branch
	case rawCbranch:
		return BranchConditional
	case rawBranchind:
		return BranchIndirect
	case rawCall:
		return Call
	case rawCallind:
		return CallIndirect
	case rawReturn:
		return Return
	default:
		return Unimplemented
	}
}

// ILOp is an ordered list of input VarReferences plus an optional output,
// tagged with the operation it represents. Branch/Call/Return variants
// carry their destination in Inputs; Load/Store carry an address-space
// tag as Inputs[0] and a pointer as Inputs[1].
type ILOp struct {
	Tag         Tag
	Inputs      []VarReference
	Output      VarReference
	OutputValid bool
}

// NewOp converts one raw P-code operation into an ILOp, resolving every
// operand through the register map. It aborts on the first operand that
// fails to classify.
func NewOp(raw decoder.RawPcodeOp, regs *regmap.Map) (ILOp, error) {
	inputs := make([]VarReference, len(raw.Inputs))
	for i, in := range raw.Inputs {
		v, err := FromVarnode(in, regs)
		if err != nil {
			return ILOp{}, err
		}
		inputs[i] = v
	}

	op := ILOp{Tag: TagFromRawOpcode(raw.Opcode), Inputs: inputs}

	if raw.OutputValid {
		v, err := FromVarnode(raw.Output, regs)
		if err != nil {
			return ILOp{}, err
		}
		op.Output = v
		op.OutputValid = true
	}

	return op, nil
}

// ModifiesSP reports whether op's output is a register whose stored name
// contains the substring "sp" anywhere — matching sp, esp, rsp, r15sp,
// and so on. A register named e.g. sph that isn't actually a stack
// pointer will false-positive; this is a known, accepted limitation.
func ModifiesSP(op ILOp) bool {
	if !op.OutputValid || op.Output.Kind != RegisterRef {
		return false
	}
	return containsSP(op.Output.Register.Name)
}

func containsSP(name string) bool {
	for i := 0; i+1 < len(name); i++ {
		if name[i] == 's' && name[i+1] == 'p' {
			return true
		}
	}
	return false
}
