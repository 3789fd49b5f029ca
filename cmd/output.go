package cmd

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/conversa/config"
)

// outputJSON writes v as indented JSON.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputYAML writes v as YAML.
func outputYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}

// writeStructured writes v as JSON or YAML and reports whether format was
// structured at all.
func writeStructured(w io.Writer, format config.OutputFormat, v interface{}) (bool, error) {
	switch format {
	case config.OutputFormatJSON:
		return true, outputJSON(w, v)
	case config.OutputFormatYAML:
		return true, outputYAML(w, v)
	default:
		return false, nil
	}
}
