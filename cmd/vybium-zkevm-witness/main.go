// vybium-zkevm-witness generates the witness of one zkEVM segment from
// generation inputs in JSON, and prints the public values and table shapes.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"
	vybiumzkevm "github.com/vybium/vybium-zkevm/pkg/vybium-zkevm"
)

var (
	Version = "dev"
	Commit  = "none"
)

type generateFlags struct {
	input     string
	output    string
	store     string
	segment   uint64
	minRows   int
	maxClock  int
	checkCTLs bool
	verbosity int
}

func main() {
	var rootCmd = &cobra.Command{
		Use:          "vybium-zkevm-witness",
		Short:        "Vybium zkEVM witness generator",
		SilenceUsage: true,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	var flags generateFlags
	var generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Generate the witness of one segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogger(flags.verbosity)
			return runGenerate(cmd.InOrStdin(), cmd.OutOrStdout(), &flags)
		},
	}
	generateCmd.Flags().StringVarP(&flags.input, "input", "i", "-", "generation inputs JSON file (- for stdin)")
	generateCmd.Flags().StringVarP(&flags.output, "output", "o", "-", "witness summary file (- for stdout)")
	generateCmd.Flags().StringVar(&flags.store, "store", "", "LevelDB directory carrying memory between segments")
	generateCmd.Flags().Uint64Var(&flags.segment, "segment", 0, "segment index")
	generateCmd.Flags().IntVar(&flags.minRows, "min-rows", vybiumzkevm.DefaultConfig().MinTableRows, "minimum padded table height")
	generateCmd.Flags().IntVar(&flags.maxClock, "max-clock", 0, "CPU clock bound (0 is unbounded)")
	generateCmd.Flags().BoolVar(&flags.checkCTLs, "check-ctls", true, "check cross-table lookups on the generated tables")
	generateCmd.Flags().IntVar(&flags.verbosity, "verbosity", 3, "log level 0-5 (crit, error, warn, info, debug, trace)")

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vybium-zkevm-witness %s (%s)\n", Version, Commit)
		},
	}

	rootCmd.AddCommand(generateCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(verbosity int) {
	handler := log.NewTerminalHandlerWithLevel(os.Stderr, log.FromLegacyLevel(verbosity), false)
	log.SetDefault(log.NewLogger(handler))
}

func runGenerate(stdin io.Reader, stdout io.Writer, flags *generateFlags) error {
	inputs, err := readInputs(stdin, flags.input)
	if err != nil {
		return err
	}

	cfg := vybiumzkevm.DefaultConfig().
		WithSegment(flags.segment).
		WithMinTableRows(flags.minRows).
		WithMaxClock(flags.maxClock).
		WithCheckCTLs(flags.checkCTLs)

	var witness *vybiumzkevm.Witness
	if flags.store != "" {
		store, err := vybiumzkevm.OpenStore(flags.store)
		if err != nil {
			return err
		}
		defer store.Close()
		witness, err = vybiumzkevm.GenerateSegment(store, inputs, nil, cfg)
		if err != nil {
			return err
		}
	} else {
		if flags.segment > 0 {
			log.Warn("No store given, segment starts from empty memory", "segment", flags.segment)
		}
		witness, err = vybiumzkevm.GenerateWitness(inputs, cfg)
		if err != nil {
			return err
		}
	}
	log.Info("Witness generated", "segment", witness.Segment, "clock", witness.Clock)

	return writeWitness(stdout, flags.output, witness)
}

func readInputs(stdin io.Reader, path string) (*vybiumzkevm.GenerationInputs, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open inputs: %w", err)
		}
		defer f.Close()
		r = f
	}

	var inputs vybiumzkevm.GenerationInputs
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("failed to parse inputs: %w", err)
	}
	return &inputs, nil
}

func writeWitness(stdout io.Writer, path string, witness *vybiumzkevm.Witness) error {
	w := stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(witness)
}
