package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"sigs.k8s.io/yaml"

	pkgstrings "spring-boot-operator/pkg/strings"
)

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// field is one row of a key/value result table.
type field struct {
	Key   string
	Value string
}

// render writes data as json or yaml, or fields as a table.
func render(w io.Writer, format OutputFormat, data any, fields []field) error {
	switch format {
	case OutputFormatJSON:
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case OutputFormatYAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case OutputFormatTable, "":
		renderTable(w, fields)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected table, json or yaml)", format)
	}
}

func renderTable(w io.Writer, fields []field) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{text.FgHiCyan.Sprint("KEY"), text.FgHiCyan.Sprint("VALUE")})
	for _, f := range fields {
		t.AppendRow(table.Row{f.Key, pkgstrings.Truncate(f.Value, pkgstrings.DefaultValueMaxLen)})
	}
	t.Render()
}

// phaseColor colors a unit phase or outcome for terminal output.
func phaseColor(phase string) string {
	switch strings.ToLower(phase) {
	case "active", "success":
		return text.FgGreen.Sprint(phase)
	case "blocked":
		return text.FgRed.Sprint(phase)
	default:
		return text.FgYellow.Sprint(phase)
	}
}
