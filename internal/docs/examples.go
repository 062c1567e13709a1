package docs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Examples maps a namespace name to its curated query example sections. A
// namespace absent from the map simply gets no examples section.
type Examples map[string][]ExampleSection

type ExampleSection struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Examples    []Example `json:"examples"`
}

type Example struct {
	Title       string `json:"title"`
	Query       string `json:"query"`
	Description string `json:"description,omitempty"`
	Command     string `json:"command,omitempty"`
}

// ReadExamples loads curated query examples. A missing file is not an
// error; the examples sections are just omitted.
func ReadExamples(path string) (Examples, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Examples{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf(`failed to read query examples "%s": %w`, path, err)
	}

	var examples Examples
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf(`failed to unmarshal query examples "%s": %w`, path, err)
	}

	return examples, nil
}
