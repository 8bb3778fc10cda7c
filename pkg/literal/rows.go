package literal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DataFormatError reports a malformed row of a reference data file.
type DataFormatError struct {
	File string
	Line int
	Text string
	Err  error
}

func (e *DataFormatError) Error() string {
	return fmt.Sprintf("%s:%d: %v (line: %q)", e.File, e.Line, e.Err, abbreviate(e.Text))
}

func (e *DataFormatError) Unwrap() error {
	return e.Err
}

// Row is one data line split on ';', fields trimmed.
type Row struct {
	File   string
	Line   int
	Text   string
	Fields []string
}

// Errorf builds a DataFormatError located at the row.
func (r Row) Errorf(format string, args ...any) error {
	return r.Wrap(fmt.Errorf(format, args...))
}

// Wrap turns err into a DataFormatError located at the row. Errors that
// already carry a location are returned unchanged.
func (r Row) Wrap(err error) error {
	var dfe *DataFormatError
	if errors.As(err, &dfe) {
		return err
	}
	return &DataFormatError{File: r.File, Line: r.Line, Text: r.Text, Err: err}
}

// ScanRows calls fn for every data row of r. Blank lines are skipped and
// lines starting with # are returned as comments, without the marker.
func ScanRows(r io.Reader, name string, fn func(Row) error) ([]string, error) {
	var comments []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if c := strings.TrimSpace(line[1:]); c != "" {
				comments = append(comments, c)
			}
			continue
		}

		fields := strings.Split(line, ";")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		row := Row{File: name, Line: lineNo, Text: line, Fields: fields}
		if err := fn(row); err != nil {
			return comments, row.Wrap(err)
		}
	}
	if err := scanner.Err(); err != nil {
		return comments, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return comments, nil
}

// ReadRows opens path and scans it with ScanRows.
func ReadRows(path string, fn func(Row) error) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return ScanRows(f, path, fn)
}
