package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/seehuhn/mt19937"
	"github.com/sw965/mda/dataset"
	"github.com/sw965/mda/model/mda"
)

func parseDims(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	dims := make([]int, len(fields))
	for i, f := range fields {
		d, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("target dimension %q: %w", f, err)
		}
		dims[i] = d
	}
	return dims, nil
}

func train(ctx context.Context, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	corpusPath := fs.String("corpus", "", "gob corpus written by dataset.Save")
	layerPath := fs.String("layer", "layer"+dataset.EXTENSION, "where to write the trained layer")
	inputDim := fs.Int("dim", 0, "input dimensionality")
	outputDim := fs.Int("outdim", 0, "output dimensionality (defaults to -dim)")
	targets := fs.String("targets", "", "comma separated target dimensions for a reduction layer")
	noise := fs.Float64("noise", 0.5, "corruption probability")
	lambda := fs.Float64("lambda", 1e-5, "ridge regularization")
	chunkSize := fs.Int("chunk", 10000, "documents per chunk")
	seed := fs.Int64("seed", 0, "permutation seed (0 seeds from the clock)")
	fs.Parse(args)

	dims, err := parseDims(*targets)
	if err != nil {
		return err
	}
	cfg := mda.Config{
		Noise:      *noise,
		Lambda:     *lambda,
		InputDim:   *inputDim,
		OutputDim:  *outputDim,
		TargetDims: dims,
		Observer:   mda.NewLogObserver(logger),
	}
	if *seed != 0 {
		cfg.Rand = rand.New(mt19937.New())
		cfg.Rand.Seed(*seed)
	}
	layer, err := mda.New(cfg)
	if err != nil {
		return err
	}
	f, err := os.Open(*corpusPath)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := layer.Train(dataset.Stream(ctx, f), *chunkSize); err != nil {
		return err
	}

	out, err := os.Create(*layerPath)
	if err != nil {
		return err
	}
	if err := layer.Save(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func transform(ctx context.Context, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("transform", flag.ExitOnError)
	layerPath := fs.String("layer", "layer"+dataset.EXTENSION, "trained layer")
	corpusPath := fs.String("corpus", "", "gob corpus to transform")
	outPath := fs.String("out", "", "where to write the transformed corpus")
	chunkSize := fs.Int("chunk", 10000, "documents per chunk")
	fs.Parse(args)

	f, err := os.Open(*layerPath)
	if err != nil {
		return err
	}
	layer, err := mda.Load(f, mda.NewLogObserver(logger))
	f.Close()
	if err != nil {
		return err
	}

	in, err := os.Open(*corpusPath)
	if err != nil {
		return err
	}
	defer in.Close()
	n, err := dataset.Save(*outPath, layer.Corpus(dataset.Stream(ctx, in), *chunkSize))
	if err != nil {
		return err
	}
	logger.Printf("transformed %d documents into %d dimensions", n, layer.OutputDim())
	return nil
}

func main() {
	logger := log.New(os.Stderr, "mda: ", log.LstdFlags)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mda train|transform [flags]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch os.Args[1] {
	case "train":
		err = train(ctx, logger, os.Args[2:])
	case "transform":
		err = transform(ctx, logger, os.Args[2:])
	default:
		err = fmt.Errorf("unknown command %q", os.Args[1])
	}
	if err != nil {
		stop()
		logger.Fatal(err)
	}
}
