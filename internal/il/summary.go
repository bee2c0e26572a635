package il

// Summary records independent boolean facts about an instruction block's
// operations. Only Ret, Jump, Call, ModifiesSP, and Unimplemented are
// populated by Summarise in this release; the rest are reserved and
// default to false.
type Summary struct {
	Pure          bool
	RegisterPure  bool
	Atomic        bool
	MSRAccess     bool
	Ret           bool
	Jump          bool
	Call          bool
	Halt          bool
	Interrupt     bool
	ModifiesSP    bool
	Unimplemented bool
}

// Summarise computes a Summary from an op sequence exactly once; it is
// never recomputed after an ILBlock is built.
func Summarise(ops []ILOp) Summary {
	var s Summary
	for _, op := range ops {
		if ModifiesSP(op) {
			s.ModifiesSP = true
		}
		switch op.Tag {
		case Unimplemented:
			s.Unimplemented = true
		case Return:
			s.Ret = true
		case Branch, BranchConditional, BranchIndirect:
			s.Jump = true
		case Call, CallIndirect:
			s.Call = true
		}
	}
	return s
}
