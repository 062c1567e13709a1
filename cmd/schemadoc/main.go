package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/alhazen/schemadoc/internal/cmd"
)

var version = "0.2.0"

func main() {
	var (
		schemaDir string
		outputDir string
		wikiDir   string
		verbose   bool
	)

	root := &cobra.Command{
		Use:   "schemadoc",
		Short: "Generate Markdown documentation from TypeQL schema files",
		Long: `Parses the .tql files in a schema directory and generates
GitHub-renderable Markdown with embedded Mermaid class/ER diagrams,
per-type reference tables and curated query examples.

The schema directory must contain a schemadoc.yaml file describing the
root schema file and the documented namespaces.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}

			logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
				Level(level).
				With().
				Timestamp().
				Logger()

			return cmd.Run(cmd.Settings{
				SchemaDir: schemaDir,
				OutputDir: outputDir,
				WikiDir:   wikiDir,
				Logger:    logger,
			})
		},
	}

	root.Flags().StringVar(&schemaDir, "schema-dir", ".", "directory containing the .tql schema files")
	root.Flags().StringVar(&outputDir, "output-dir", "docs", "output directory for the generated docs")
	root.Flags().StringVar(&wikiDir, "wiki", "", "also generate wiki-compatible pages in this directory")
	root.Flags().BoolVarP(&verbose, "verbose", "v", false, "log skipped-line diagnostics")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "schemadoc:", err)
		os.Exit(1)
	}
}
