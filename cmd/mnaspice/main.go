package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"mnaspice/pkg/analysis"
	"mnaspice/pkg/circuit"
	"mnaspice/pkg/netlist"
	"mnaspice/pkg/util"
)

func main() {
	var (
		timeFlag   = flag.Float64("time", 0, "total simulated time (overrides the .tran card)")
		pointsFlag = flag.Int("points", 0, "emitted samples (overrides the .tran card)")
		stepsFlag  = flag.Int("steps", 0, "internal steps per sample (overrides the .tran card)")
		methodFlag = flag.String("method", "", "integration rule: be, fe or trap (overrides the .tran card)")
		seedFlag   = flag.Int64("seed", 1, "Newton restart RNG seed")
		outFlag    = flag.String("o", "", "output file (default <netlist>.tab)")
		quietFlag  = flag.Bool("q", false, "suppress statistics logging")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: mnaspice [flags] <netlist_file>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if *quietFlag {
		logger = zerolog.Nop()
	}

	netPath := flag.Arg(0)
	content, err := os.ReadFile(netPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("reading netlist")
	}

	parsed, err := netlist.Parse(string(content))
	if err != nil {
		logger.Fatal().Err(err).Msg("parsing netlist")
	}

	tran := parsed.Tran
	if *timeFlag > 0 {
		tran.Time = *timeFlag
	}
	if *pointsFlag > 0 {
		tran.Points = *pointsFlag
	}
	if *stepsFlag > 0 {
		tran.Steps = *stepsFlag
	}
	if *methodFlag != "" {
		m, err := netlist.ParseMethod(*methodFlag)
		if err != nil {
			logger.Fatal().Err(err).Msg("bad -method")
		}
		tran.Method = m
	}

	ckt, err := circuit.Build(parsed.Title, parsed.Elements, tran.Method)
	if err != nil {
		logger.Fatal().Err(err).Msg("building circuit")
	}
	logger.Info().
		Str("circuit", ckt.Name()).
		Int("nodes", ckt.Symbols().NumNodes()).
		Int("variables", ckt.NumVariables()).
		Int("elements", len(ckt.Devices())).
		Str("method", ckt.Method().String()).
		Str("time", util.FormatValueFactor(tran.Time, "s")).
		Msg("circuit built")

	tr, err := analysis.NewTransient(ckt, tran.Time, tran.Points, tran.Steps,
		analysis.WithLogger(logger), analysis.WithSeed(*seedFlag))
	if err != nil {
		logger.Fatal().Err(err).Msg("setting up transient")
	}
	if err := tr.Execute(); err != nil {
		logger.Fatal().Err(err).Msg("transient failed")
	}

	outPath := *outFlag
	if outPath == "" {
		outPath = strings.TrimSuffix(netPath, ".net") + ".tab"
	}
	if err := writeTable(outPath, ckt, tr.Rows()); err != nil {
		logger.Fatal().Err(err).Msg("writing output")
	}
	logger.Info().Str("file", outPath).Int("rows", len(tr.Rows())).Msg("results saved")
}

// writeTable emits the trajectory: a header row with the variable names,
// then one whitespace-separated row per sample.
func writeTable(path string, ckt *circuit.Circuit, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprint(w, "t")
	names := ckt.Symbols().Names()
	for _, name := range names[1:] {
		fmt.Fprintf(w, " %s", name)
	}
	fmt.Fprintln(w)

	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%g", v)
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
