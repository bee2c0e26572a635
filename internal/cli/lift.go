package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"gadgetlift/internal/cli/colorize"
	"gadgetlift/internal/il"
	"gadgetlift/internal/loader"
	"gadgetlift/internal/logging"
	"gadgetlift/internal/memregion"
	"gadgetlift/internal/runtime"
	"gadgetlift/internal/target"
)

var liftCmd = &cobra.Command{
	Use:   "lift [input]",
	Short: "Lift an input's regions into a sequence of IL blocks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLift,
}

func init() {
	liftCmd.Flags().String("dump", "", "Path to a JSON region dump instead of a positional raw-binary input")
	liftCmd.Flags().Bool("json", false, "Emit blocks as JSON instead of colorized text")
	liftCmd.Flags().Bool("follow-log", false, "Tail the GADGETLIFT_LOG_TO_FILE log file while lifting")
}

func configFromFlags(cmd *cobra.Command, positional []string) (Config, error) {
	cfg := Config{}

	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.Debug, _ = cmd.Flags().GetBool("debug")
	cfg.SLAPath, _ = cmd.Flags().GetString("sla")
	cfg.PspecPath, _ = cmd.Flags().GetString("pspec")
	cfg.BaseAddress, _ = cmd.Flags().GetUint64("base-address")
	cfg.Alignment, _ = cmd.Flags().GetUint64("alignment")
	cfg.RootDir, _ = cmd.Flags().GetString("root-dir")
	cfg.Dump, _ = cmd.Flags().GetString("dump")
	if len(positional) == 1 {
		cfg.Bin = positional[0]
	}

	if cfg.RootDir != "" {
		if cfg.Bin != "" {
			cfg.Bin = filepath.Join(cfg.RootDir, cfg.Bin)
		}
		if cfg.Dump != "" {
			cfg.Dump = filepath.Join(cfg.RootDir, cfg.Dump)
		}
	}

	if cfg.SLAPath == "" {
		return Config{}, fmt.Errorf("no input mode: --sla is required")
	}
	if cfg.Bin == "" && cfg.Dump == "" {
		return Config{}, fmt.Errorf("no input mode: supply a positional binary path or --dump")
	}
	return cfg, nil
}

func runLift(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd, args)
	if err != nil {
		return err
	}

	log := logging.NewLogger()
	defer log.Close()

	if follow, _ := cmd.Flags().GetBool("follow-log"); follow {
		if stop, err := followLogFile(log); err == nil {
			defer stop()
		}
	}

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

	if cfg.PspecPath != "" {
		pairs, err := loader.ContextPairsFromSpec(cfg.PspecPath, func(msg string) { log.Warn(msg) })
		if err != nil {
			return err
		}
		tgt.SetContextPairs(pairs)
	}

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
	log.Info("lift complete", "blocks", len(blocks))

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return emitJSON(cmd, blocks)
	}
	return emitText(cmd, blocks)
}

func emitJSON(cmd *cobra.Command, blocks []il.Block) error {
	type blockView struct {
		Address uint64     `json:"address"`
		Size    uint64     `json:"size"`
		Text    string     `json:"text"`
		Summary il.Summary `json:"summary"`
	}
	views := make([]blockView, len(blocks))
	for i, b := range blocks {
		views[i] = blockView{Address: b.Address, Size: b.Size, Text: b.Text, Summary: b.Summary}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

func emitText(cmd *cobra.Command, blocks []il.Block) error {
	out := cmd.OutOrStdout()
	for _, b := range blocks {
		text, err := colorize.ILText(b.Text)
		if err != nil {
			text = b.Text
		}
		fmt.Fprintf(out, "0x%08x  %s\n", b.Address, text)
	}
	return nil
}

// followLogFile tails the log file NewLogger just opened and echoes new
// lines to stderr as the lift runs. It returns a no-op stop if the
// logger is writing to stderr directly.
func followLogFile(log *logging.LoggerCloser) (stop func(), err error) {
	path := log.FilePath()
	if path == "" {
		return func() {}, nil
	}

	t, err := tail.TailFile(path, tail.Config{Follow: true, ReOpen: false})
	if err != nil {
		return nil, err
	}
	go func() {
		for line := range t.Lines {
			fmt.Fprintln(os.Stderr, line.Text)
		}
	}()
	return func() { t.Stop() }, nil
}
