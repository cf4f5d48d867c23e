package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// render writes value in the configured output format. table is only called
// for the table format.
func render(w io.Writer, value any, table func() string) error {
	return renderAs(w, cfg.Output.Format, value, table)
}

func renderAs(w io.Writer, format string, value any, table func() string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(w, table())
		return err
	}
}
