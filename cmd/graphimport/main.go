// Command graphimport drives pkg/graphstore from the command line: it
// reads a newline-delimited node/edge text file, builds a Graph, and
// prints coverage and memory-estimate statistics. It is a thin,
// replaceable front end — no core package imports it back (spec I1-I4:
// "No CLI, wire protocol, file format, or environment variables are
// part of the core").
//
// Grounded on the teacher's cobra-based cmd/nornicdb CLI (root command
// plus subcommands, flags read via cmd.Flags().GetString/GetInt,
// RunE-returned errors).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/orneryd/graphcore/pkg/config"
	"github.com/orneryd/graphcore/pkg/graphstore"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "graphimport [file]",
		Short: "Build a graph from a newline-delimited node/edge file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImport,
	}
	rootCmd.Flags().Int("threads", 0, "degree of parallelism for id-map build (default: GOMAXPROCS)")
	rootCmd.Flags().Int("pages-per-thread", config.DefaultPagesPerThread, "pages per thread stored in the import config (validated, not used by the id-map build)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if threads, _ := cmd.Flags().GetInt("threads"); threads > 0 {
		cfg.Threads = threads
	}
	if pagesPerThread, _ := cmd.Flags().GetInt("pages-per-thread"); pagesPerThread > 0 {
		cfg.PagesPerThread = pagesPerThread
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	builder := graphstore.NewBuilder(cfg)
	stats, err := Load(f, builder)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	builder.PrepareForFlush()

	graph, err := builder.Build()
	if err != nil {
		return fmt.Errorf("building graph: %w", err)
	}

	printSummary(stats, graph)
	return nil
}

func printSummary(stats LoadStats, graph *graphstore.Graph) {
	fmt.Printf("parsed %d lines (%d node records, %d edge records)\n", stats.Lines, stats.Nodes, stats.Edges)
	fmt.Printf("nodes:             %d\n", graph.IDMap().NodeCount())

	ids := graph.Schema().AvailableIdentifiers()
	fmt.Printf("labels:            %v\n", ids.Labels)
	fmt.Printf("relationship types:\n")
	for _, relType := range graph.RelationshipTypes() {
		degreeSum := int64(0)
		it := graph.IDMap().IterNodes()
		for it.HasNext() {
			degreeSum += int64(graph.Degree(relType, it.Next()))
		}
		fmt.Printf("  %-20s edges=%d\n", relType, degreeSum)
	}
	fmt.Printf("memory estimate:   %d bytes\n", graph.MemoryEstimate())
}
