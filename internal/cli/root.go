// Package cli wires the lift pipeline into a cobra command tree, in the
// same shape (root command + hidden schema command + fang-wrapped
// Execute) the rest of this module's ambient stack was built from.
package cli

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gadgetlift [input]",
	Short: "Lift machine code into a P-code-derived intermediate language",
	Long: `gadgetlift decodes a binary region through a SLEIGH-based lifter and
emits a flat sequence of intermediate-language instruction blocks, each
carrying a semantic summary suitable for downstream gadget discovery.`,
	Example: `
# Lift a raw binary loaded at its default base address
gadgetlift --sla x86-64.sla lift ./payload.bin

# Lift a JSON region dump with an explicit load base
gadgetlift --sla arm64.sla --base-address 0x400000 lift --dump ./regions.json
`,
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("sla", "", "Path to the .sla processor spec")
	rootCmd.PersistentFlags().String("pspec", "", "Path to a .pspec XML file supplying SLEIGH context pairs")
	rootCmd.PersistentFlags().Uint64("base-address", 0, "Load base address applied to every region")
	rootCmd.PersistentFlags().Uint64("alignment", 2, "Recovery advance in bytes after an undecodable address")
	rootCmd.PersistentFlags().String("root-dir", "", "Working directory input paths are resolved relative to")
	rootCmd.PersistentFlags().String("config", "", "Path to a JSON config file (flags take precedence)")

	rootCmd.AddCommand(liftCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(selfcheckCmd)
	rootCmd.AddCommand(browseCmd)
}

// Execute runs the command tree. It bypasses fang's markdown-rendered
// help and error output when stdout isn't a terminal, since that
// rendering assumes an interactive reader.
func Execute() int {
	if !term.IsTerminal(os.Stdout.Fd()) {
		if err := rootCmd.Execute(); err != nil {
			return 1
		}
		return 0
	}

	if err := fang.Execute(context.Background(), rootCmd, fang.WithNotifySignal(os.Interrupt)); err != nil {
		return 1
	}
	return 0
}
