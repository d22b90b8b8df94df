// Copyright 2026 Peter Edge
//
// All rights reserved.

// Package cliio writes command output as an aligned table, CSV, or JSON lines.
package cliio

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
)

// Format is an output format.
type Format string

const (
	// FormatTable is an aligned text table with a header row.
	FormatTable Format = "table"
	// FormatCSV is CSV with a header row.
	FormatCSV Format = "csv"
	// FormatJSON is one JSON object per line.
	FormatJSON Format = "json"
)

// Formats are all formats, in the order shown in help text.
var Formats = []Format{
	FormatTable,
	FormatCSV,
	FormatJSON,
}

// ParseFormat parses a format name case-insensitively.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, format) {
		return "", fmt.Errorf("unknown format %q, must be one of: table, csv, json", s)
	}
	return format, nil
}

// Write writes objects in the given format.
//
// Table and CSV output start with headers, followed by toRow of each object.
// JSON output marshals each object on its own line and ignores headers.
func Write[O any](writer io.Writer, format Format, headers []string, objects []O, toRow func(O) []string) error {
	switch format {
	case FormatTable:
		return writeTable(writer, headers, objects, toRow)
	case FormatCSV:
		return writeCSV(writer, headers, objects, toRow)
	case FormatJSON:
		return writeJSONLines(writer, objects)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// *** PRIVATE ***

func writeTable[O any](writer io.Writer, headers []string, objects []O, toRow func(O) []string) error {
	tabWriter := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tabWriter, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, object := range objects {
		if _, err := fmt.Fprintln(tabWriter, strings.Join(toRow(object), "\t")); err != nil {
			return err
		}
	}
	return tabWriter.Flush()
}

func writeCSV[O any](writer io.Writer, headers []string, objects []O, toRow func(O) []string) error {
	csvWriter := csv.NewWriter(writer)
	if err := csvWriter.Write(headers); err != nil {
		return err
	}
	for _, object := range objects {
		if err := csvWriter.Write(toRow(object)); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}

func writeJSONLines[O any](writer io.Writer, objects []O) error {
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	for _, object := range objects {
		if err := encoder.Encode(object); err != nil {
			return err
		}
	}
	return nil
}
