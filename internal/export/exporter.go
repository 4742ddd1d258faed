package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/table"
)

// Format is an export file format
type Format string

const (
	FormatCSV        Format = "csv"
	FormatJSON       Format = "json"
	FormatPrettyJSON Format = "pretty"
	FormatYAML       Format = "yaml"
)

// Formats lists the supported formats
var Formats = []Format{FormatCSV, FormatJSON, FormatPrettyJSON, FormatYAML}

// ParseFormat accepts a format name or a file extension
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "pretty", "pretty-json":
		return FormatPrettyJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q: expected csv, json, pretty or yaml", s)
	}
}

// FormatForPath guesses the format from a file name, defaulting to JSON
func FormatForPath(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

// Write renders doc in the given format
func Write(w io.Writer, doc *jsonb.Value, format Format) error {
	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(w, doc)
	case FormatJSON:
		_, err = io.WriteString(w, doc.String()+"\n")
	case FormatPrettyJSON:
		var text string
		if text, err = jsonb.Format(doc); err == nil {
			_, err = io.WriteString(w, text+"\n")
		}
	case FormatYAML:
		err = writeYAML(w, doc)
	default:
		return apperrors.NewOutputError(fmt.Sprintf("unknown export format %q", format), nil)
	}
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return apperrors.NewOutputError(fmt.Sprintf("failed to write %s", format), err)
	}
	return nil
}

// ExportToFile writes doc to path. The file is only replaced once the whole
// export has been rendered.
func ExportToFile(doc *jsonb.Value, path string, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return apperrors.NewOutputError(fmt.Sprintf("failed to write %s", path), err)
	}
	return nil
}

// writeCSV writes the table projection of doc: one header line with the
// column union, then one line per row. Strings are written raw, other values
// as canonical JSON, missing cells empty.
func writeCSV(w io.Writer, doc *jsonb.Value) error {
	tbl, err := table.Project(doc)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(tbl.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for row := 0; row < tbl.RowCount(); row++ {
		record := make([]string, tbl.ColumnCount())
		for col, name := range tbl.Columns {
			if v, ok := tbl.Cell(row, col); ok {
				record[col] = models.NewKeyDescriptor(name, v).EditText()
			}
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeYAML(w io.Writer, doc *jsonb.Value) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlNode(doc)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// yamlNode converts v to a node tree so object member order survives
func yamlNode(v *jsonb.Value) *yaml.Node {
	scalar := func(tag, value string) *yaml.Node {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: value}
	}

	switch v.Kind() {
	case jsonb.KindNull:
		return scalar("!!null", "null")
	case jsonb.KindBool:
		return scalar("!!bool", v.String())
	case jsonb.KindInt, jsonb.KindLong:
		return scalar("!!int", v.String())
	case jsonb.KindDouble:
		return scalar("!!float", v.String())
	case jsonb.KindString:
		return scalar("!!str", v.AsString())
	case jsonb.KindDate:
		switch v.DateLayout() {
		case time.RFC3339Nano, time.DateOnly:
			return scalar("!!timestamp", v.DateText())
		default:
			// other layouts are not YAML timestamps
			return scalar("!!str", v.DateText())
		}
	case jsonb.KindArray:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range v.Elements() {
			n.Content = append(n.Content, yamlNode(e))
		}
		return n
	case jsonb.KindObject:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, m := range v.Members() {
			n.Content = append(n.Content, scalar("!!str", m.Key), yamlNode(m.Value))
		}
		return n
	default:
		panic(fmt.Sprintf("export: unknown kind %s", v.Kind()))
	}
}
