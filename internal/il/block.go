package il

import (
	"fmt"

	"gadgetlift/internal/decoder"
	"gadgetlift/internal/regmap"
)

// Block is one decoded machine instruction: its address, its length,
// pretty-printed mnemonic text, its ops, and a summary computed from
// them. Ops is non-empty unless the decoder explicitly reported a
// nop-equivalent with zero P-code operations.
type Block struct {
	Address uint64
	Size    uint64
	Text    string
	Ops     []ILOp
	Summary Summary
}

// NewBlock builds a Block from one decoded instruction. It fills the ops
// slice with exactly len(raw.Ops) entries; any single op's construction
// failure aborts the whole block with that op's error. The runtime's lift
// loop treats a failed block as skippable, not fatal, advancing past the
// raw instruction's reported size.
func NewBlock(raw decoder.RawInsn, regs *regmap.Map) (Block, error) {
	ops := make([]ILOp, len(raw.Ops))
	for i, rawOp := range raw.Ops {
		op, err := NewOp(rawOp, regs)
		if err != nil {
			return Block{}, err
		}
		ops[i] = op
	}

	return Block{
		Address: raw.Address,
		Size:    raw.Size,
		Text:    fmt.Sprintf("%s %s", raw.Mnemonic, raw.Body),
		Ops:     ops,
		Summary: Summarise(ops),
	}, nil
}
