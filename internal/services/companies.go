package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CompanyDirectory is the list of hiring companies shipped with the service.
type CompanyDirectory struct {
	Columns []string
	Records []map[string]string
}

func (d *CompanyDirectory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Records)
}

// LoadCompanies reads a CSV company list. Spreadsheets must be exported to CSV first.
func LoadCompanies(path string) (*CompanyDirectory, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".csv" {
		return nil, fmt.Errorf("unsupported company list format %q", ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open company list: %w", err)
	}
	defer f.Close()

	return ReadCompanies(f)
}

func ReadCompanies(r io.Reader) (*CompanyDirectory, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read company list header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	dir := &CompanyDirectory{Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read company list: %w", err)
		}

		record := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				record[col] = strings.TrimSpace(row[i])
			}
		}
		dir.Records = append(dir.Records, record)
	}

	return dir, nil
}
