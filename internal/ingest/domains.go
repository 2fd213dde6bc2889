// Package ingest reads the domain list that seeds a qualification run.
package ingest

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// domainColumn is the zero-based spreadsheet column holding domains.
const domainColumn = 1

// ReadDomains reads a domain list from path, picking the parser by file
// extension: .xlsx and .csv use the second column, anything else is treated
// as plain text with one domain per line. Blank cells are dropped and
// duplicates collapse, first occurrence winning.
func ReadDomains(path string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return ReadDomainsXLSX(path)
	case ".csv":
		return ReadDomainsCSV(path)
	default:
		return ReadDomainsText(path)
	}
}

// ReadDomainsXLSX reads the second column of the first sheet.
func ReadDomainsXLSX(path string) ([]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	var cells []string
	for _, row := range f.Sheets[0].Rows {
		if len(row.Cells) > domainColumn {
			cells = append(cells, row.Cells[domainColumn].String())
		}
	}
	return Normalize(cells), nil
}

// ReadDomainsCSV reads the second column of a CSV file.
func ReadDomainsCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open csv")
	}
	defer f.Close() //nolint:errcheck

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read csv")
	}

	var cells []string
	for _, row := range records {
		if len(row) > domainColumn {
			cells = append(cells, row[domainColumn])
		}
	}
	return Normalize(cells), nil
}

// ReadDomainsText reads one domain per line.
func ReadDomainsText(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read file")
	}
	return Normalize(strings.Split(string(raw), "\n")), nil
}

// Normalize trims whitespace, drops blanks, and removes case-insensitive
// duplicates preserving first-seen order.
func Normalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, d := range raw {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		key := strings.ToLower(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}
