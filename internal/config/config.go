package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Schema     Schema      `yaml:"schema"`
	Namespaces []Namespace `yaml:"namespaces"`
	Index      Index       `yaml:"index"`
	Diagram    Diagram     `yaml:"diagram"`
}

type Schema struct {
	// Root is the core schema file, parsed before any extension file.
	Root string `yaml:"root"`
	// RootNamespace is the namespace recorded for declarations in Root.
	RootNamespace string `yaml:"rootNamespace"`
	// Extensions is the subdirectory holding the extension schema files.
	Extensions string `yaml:"extensions"`
}

type Namespace struct {
	Name        string   `yaml:"name"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	File        string   `yaml:"file"`
	WikiPage    string   `yaml:"wikiPage"`
	// Phases are section labels used to split a crowded relationship
	// diagram into per-phase sub-diagrams.
	Phases []string `yaml:"phases"`
}

type Index struct {
	Title    string `yaml:"title"`
	Overview string `yaml:"overview"`
	// RootType is the abstract type drawn with its direct subtypes on the
	// index page.
	RootType string `yaml:"rootType"`
	WikiPage string `yaml:"wikiPage"`
}

type Diagram struct {
	// ReservedWords overrides the default set of Mermaid keywords that
	// type names must not collide with.
	ReservedWords []string `yaml:"reservedWords"`
}

func Read(configPath string) (*Config, error) {
	fileData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf(`failed to read config file "%s": %w`, configPath, err)
	}

	var config Config
	if err := yaml.Unmarshal(fileData, &config); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal config file "%s": %w`, configPath, err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf(`invalid config file "%s": %w`, configPath, err)
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Schema.Root == "" {
		return errors.New("schema.root is required")
	}

	if len(c.Namespaces) == 0 {
		return errors.New("at least one namespace is required")
	}

	if c.Schema.Extensions == "" {
		c.Schema.Extensions = "namespaces"
	}

	if c.Schema.RootNamespace == "" {
		c.Schema.RootNamespace = c.Namespaces[0].Name
	}

	for i, ns := range c.Namespaces {
		if ns.Name == "" {
			return fmt.Errorf("namespace %d has no name", i)
		}
		if ns.Title == "" {
			c.Namespaces[i].Title = ns.Name
		}
	}

	return nil
}

// Namespace returns the metadata entry for a namespace name, or nil.
func (c *Config) Namespace(name string) *Namespace {
	for i := range c.Namespaces {
		if c.Namespaces[i].Name == name {
			return &c.Namespaces[i]
		}
	}

	return nil
}
