package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	output        string
	format        string
	blacklist     string
	compression   int
	inputs        []string
	timeThreshold float64
	memThreshold  uint64
	instOnly      bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "tlconv [inputs...]",
		Short:         "Convert templight instantiation traces between formats",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(flags, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "-", "destination file, or - for standard output")
	f.StringVarP(&flags.format, "format", "f", FormatProtobuf, "output format")
	f.StringVarP(&flags.blacklist, "blacklist", "b", "", "regex filter file")
	f.IntVarP(&flags.compression, "compression", "c", int(CompressionLiteral), "binary format compression mode: 0 literal, 2 dictionary")
	f.StringSliceVarP(&flags.inputs, "input", "i", nil, "input file(s); defaults to standard input")
	f.Float64VarP(&flags.timeThreshold, "time-threshold", "t", 0, "seconds; applies to graph builders")
	f.Uint64VarP(&flags.memThreshold, "mem-threshold", "m", 0, "bytes; applies to graph builders")
	f.BoolVar(&flags.instOnly, "inst-only", false, "drop every kind but TemplateInstantiation before filtering")

	return cmd
}

func run(flags rootFlags, positional []string) error {
	inputs := append(append([]string{}, flags.inputs...), positional...)
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	out, closeOut, err := openOutput(flags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	bl := loadBlacklistFlag(flags.blacklist)

	sink, err := buildSink(flags.format, out, CompressionMode(flags.compression), flags.timeThreshold, flags.memThreshold)
	if err != nil {
		return err
	}

	for _, path := range inputs {
		data, err := readInput(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tlconv: warning: cannot read %s: %v\n", path, err)
			continue
		}
		if err := convertOne(data, sink, flags.instOnly, bl); err != nil {
			fmt.Fprintf(os.Stderr, "tlconv: warning: %s: %v\n", path, err)
		}
	}
	return nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, newConvertError(ErrOutputOpen, "create output", err)
	}
	return f, f.Close, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// loadBlacklistFlag loads the blacklist file named by path, if any. A
// missing or malformed file is a warning, not a fatal error: the filter
// just runs with no blacklist, per spec §7's BadRegex handling.
func loadBlacklistFlag(path string) *blacklist {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tlconv: warning: cannot open blacklist %s: %v\n", path, err)
		return nil
	}
	defer f.Close()

	bl, err := loadBlacklist(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tlconv: warning: %v\n", err)
		return nil
	}
	return bl
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "tlconv: %v\n", err)
		if kind, ok := kindOf(err); ok && kind == ErrUnknownFormat {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
