package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	cverrors "github.com/otherjamesbrown/conversa/pkg/errors"
)

// Format is a report output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: invalid output format %q: must be text, json, or yaml", cverrors.ErrValidation, s)
	}
}

// WriteJSON renders r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode json report: %w", err)
	}
	return nil
}

// WriteYAML renders r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode yaml report: %w", err)
	}
	return nil
}

// Write renders r in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return WriteText(w, r)
	}
}

// Render returns r rendered in memory.
func Render(r *Report, format Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
