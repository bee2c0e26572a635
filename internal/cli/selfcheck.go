package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"gadgetlift/internal/asmref"
	"gadgetlift/internal/loader"
	"gadgetlift/internal/memregion"
	"gadgetlift/internal/runtime"
	"gadgetlift/internal/target"
)

var selfcheckCmd = &cobra.Command{
	Use:    "selfcheck [input]",
	Short:  "Cross-check lifted instruction sizes against an independent decoder",
	Hidden: true,
	Args:   cobra.MaximumNArgs(1),
	RunE:   runSelfcheck,
}

func init() {
	selfcheckCmd.Flags().String("dump", "", "Path to a JSON region dump instead of a positional raw-binary input")
	selfcheckCmd.Flags().String("arch", "x86_64", "Reference architecture to cross-check with: x86_64 or arm64")
}

// runSelfcheck runs a full lift pass, then re-decodes the bytes at every
// block's address with asmref's independent x86/ARM64 decoder and
// reports where the two decoders disagree on instruction length. A
// mismatch doesn't necessarily mean either side is wrong -- see
// asmref.SizeMatches -- but it flags blocks worth a human's attention.
func runSelfcheck(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd, args)
	if err != nil {
		return err
	}
	arch := asmref.Arch(mustString(cmd, "arch"))

	var regions []memregion.Region
	path, isDump := cfg.InputPath()
	if isDump {
		regions, err = loader.DumpToRegions(path)
	} else {
		regions, err = loader.RawFileToRegions(path)
	}
	if err != nil {
		return err
	}

	tgt := target.FromRegions(regions)
	tgt.SetBaseAddress(cfg.BaseAddress)
	tgt.SetSpecPath(cfg.SLAPath)
	tgt.SetAlignment(cfg.Alignment)

	rt, err := runtime.New()
	if err != nil {
		return err
	}
	defer rt.Close()
	if err := rt.LoadTarget(tgt); err != nil {
		return err
	}

	blocks, err := rt.PerformLift()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	mismatches := 0
	for _, b := range blocks {
		region, ok := tgt.OwningRegion(b.Address)
		if !ok {
			continue
		}
		localAddr := b.Address - tgt.BaseAddress()
		offset := localAddr - region.Base
		if offset >= region.Len() {
			continue
		}

		d, err := asmref.Decode(arch, region.Data[offset:])
		if err != nil {
			fmt.Fprintf(out, "0x%08x  reference decode failed: %v\n", b.Address, err)
			continue
		}
		if !asmref.SizeMatches(d, b.Size) {
			mismatches++
			fmt.Fprintf(out, "0x%08x  size mismatch: sleigh=%d reference=%d (%s)\n", b.Address, b.Size, d.Size, d.Text)
		}
	}

	fmt.Fprintf(out, "%d block(s), %d size mismatch(es)\n", len(blocks), mismatches)
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
