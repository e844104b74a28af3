package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV and TSV files. Raw mode keeps the file verbatim;
// plain mode renders each data row as "header: value" pairs, one row per
// line, so a reader never has to count columns.
type CSVParser struct {
	Mode  Mode
	Comma rune // Field separator, ',' when zero
}

func (p *CSVParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := readUTF8(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	if p.Mode != ModePlain {
		return src, nil
	}

	reader := csv.NewReader(strings.NewReader(src))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	if p.Comma != 0 {
		reader.Comma = p.Comma
	}
	// Trimming would swallow empty fields when the separator is a tab.
	reader.TrimLeadingSpace = reader.Comma != '\t'

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv %s: %w", filename, err)
	}
	if len(records) == 0 {
		return "", nil
	}

	// First row is headers.
	headers := records[0]
	if len(records) == 1 {
		return "Headers: " + strings.Join(headers, ", "), nil
	}

	var text strings.Builder
	for i, row := range records[1:] {
		if i > 0 {
			text.WriteByte('\n')
		}
		for j, cell := range row {
			if j > 0 {
				text.WriteString(", ")
			}
			if j < len(headers) && headers[j] != "" {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
		}
	}
	return text.String(), nil
}
