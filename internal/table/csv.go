package table

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a headed CSV document into a table. Short rows are padded
// with empty cells; rows longer than the header are rejected.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return New(), nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "csv: read header")
	}
	if len(header) > 0 {
		header[0] = trimBOM(header[0])
	}

	t := New(header...)
	if len(t.columns) != len(header) {
		return nil, eris.New("csv: duplicate column names in header")
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read row")
		}
		line++
		if len(record) > len(header) {
			return nil, eris.Errorf("csv: line %d has %d fields, header has %d", line, len(record), len(header))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		t.rows = append(t.rows, record)
	}

	return t, nil
}

// WriteCSV writes the header followed by every row.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.columns); err != nil {
		return eris.Wrap(err, "csv: write header")
	}
	for _, row := range t.rows {
		if err := writer.Write(row); err != nil {
			return eris.Wrap(err, "csv: write row")
		}
	}
	writer.Flush()
	return eris.Wrap(writer.Error(), "csv: flush")
}

// LoadFile reads a CSV table from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", path)
	}
	return t, nil
}

// SaveFile writes the table to a sibling temp file and renames it over
// path, so readers never observe a partially written artifact.
func SaveFile(path string, t *Table) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "create dir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "create temp for %s", path)
	}
	tmpName := tmp.Name()

	if err := WriteCSV(tmp, t); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "rename %s", tmpName)
	}
	return nil
}

func trimBOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
