package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alhazen/schemadoc/internal/config"
	"github.com/alhazen/schemadoc/internal/docs"
	"github.com/alhazen/schemadoc/internal/model"
	"github.com/alhazen/schemadoc/internal/tql"
)

const (
	configFile   = "schemadoc.yaml"
	examplesFile = "query_examples.json"
)

type Settings struct {
	SchemaDir string
	OutputDir string
	WikiDir   string
	Logger    zerolog.Logger
}

func Run(s Settings) error {
	cfg, err := config.Read(filepath.Join(s.SchemaDir, configFile))
	if err != nil {
		return err
	}

	schema, err := parseSchema(s, cfg)
	if err != nil {
		return err
	}

	examples, err := docs.ReadExamples(filepath.Join(s.OutputDir, examplesFile))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.OutputDir, 0o755); err != nil {
		return fmt.Errorf(`failed to create output directory "%s": %w`, s.OutputDir, err)
	}

	g := docs.NewGenerator(cfg, schema, examples)

	if err := writePage(s, filepath.Join(s.OutputDir, "index.md"), g.IndexPage(false)); err != nil {
		return err
	}

	for _, ns := range cfg.Namespaces {
		path := filepath.Join(s.OutputDir, ns.Name+".md")
		if err := writePage(s, path, g.NamespacePage(ns)); err != nil {
			return err
		}
	}

	if s.WikiDir != "" {
		if err := writeWiki(s, cfg, g); err != nil {
			return err
		}
	}

	return nil
}

// writeWiki mirrors the namespace pages under wiki-style file names and
// adds a wiki index with [[page]] links. The wiki directory is a separate
// checkout and has to exist already.
func writeWiki(s Settings, cfg *config.Config, g *docs.Generator) error {
	if _, err := os.Stat(s.WikiDir); err != nil {
		return fmt.Errorf(`wiki directory "%s" not found: %w`, s.WikiDir, err)
	}

	indexPage := cfg.Index.WikiPage
	if indexPage == "" {
		indexPage = cfg.Index.Title
	}

	path := filepath.Join(s.WikiDir, docs.WikiFilename(indexPage))
	if err := writePage(s, path, g.IndexPage(true)); err != nil {
		return err
	}

	for _, ns := range cfg.Namespaces {
		page := ns.WikiPage
		if page == "" {
			page = ns.Title
		}

		path := filepath.Join(s.WikiDir, docs.WikiFilename(page))
		if err := writePage(s, path, g.NamespacePage(ns)); err != nil {
			return err
		}
	}

	return nil
}

func writePage(s Settings, path string, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf(`failed to write "%s": %w`, path, err)
	}

	s.Logger.Info().Str("file", filepath.Base(path)).Msg("wrote page")
	return nil
}

// parseSchema parses the root schema file followed by every extension file
// in sorted order, all into one shared model, then resolves the kinds left
// open by user-type parents.
func parseSchema(s Settings, cfg *config.Config) (*model.Schema, error) {
	schema := model.NewSchema()
	parser := tql.NewParser()

	rootPath := filepath.Join(s.SchemaDir, cfg.Schema.Root)
	s.Logger.Info().Str("file", cfg.Schema.Root).Str("namespace", cfg.Schema.RootNamespace).Msg("parsing schema file")
	if err := parser.ParseFile(schema, rootPath, cfg.Schema.RootNamespace); err != nil {
		return nil, err
	}

	extDir := filepath.Join(s.SchemaDir, cfg.Schema.Extensions)
	files, err := filepath.Glob(filepath.Join(extDir, "*.tql"))
	if err != nil {
		return nil, fmt.Errorf(`failed to resolve extension files in "%s": %w`, extDir, err)
	}
	sort.Strings(files)

	for _, f := range files {
		ns := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))
		s.Logger.Info().Str("file", filepath.Base(f)).Str("namespace", ns).Msg("parsing schema file")

		if err := parser.ParseFile(schema, f, ns); err != nil {
			return nil, err
		}
	}

	schema.ResolveKinds()

	for _, d := range parser.Diagnostics {
		s.Logger.Debug().Str("file", filepath.Base(d.File)).Int("line", d.Line).Str("text", d.Text).Msg("skipped line")
	}

	for _, name := range schema.Cycles() {
		s.Logger.Warn().Str("type", name).Msg("parent chain contains a cycle")
	}

	entities, relations, attributes := model.CountKinds(schema.All())
	s.Logger.Info().
		Int("entities", entities).
		Int("relations", relations).
		Int("attributes", attributes).
		Int("skipped", len(parser.Diagnostics)).
		Msg("parsed schema")

	return schema, nil
}
