package tide

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultFile is the tide file name looked up in a data directory.
const DefaultFile = "tide_3248.txt"

// timeLayout renders UTC offsets as +00:00, matching the files produced by
// the tide download tooling.
const timeLayout = "2006-01-02T15:04:05-07:00"

// FormatRecord renders a record as one line of a tide file.
func FormatRecord(r Record) string {
	return r.Time.UTC().Format(timeLayout) + "; " + strconv.FormatFloat(r.Level, 'f', 6, 64)
}

// ParseRecord decodes one `timestamp; level` line.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, ";")
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("expected 2 fields, got %d", len(fields))
	}
	ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(fields[0]))
	if err != nil {
		return Record{}, fmt.Errorf("invalid timestamp: %w", err)
	}
	wl, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid water level: %w", err)
	}
	return Record{Time: ts.UTC(), Level: wl}, nil
}

// Parse reads a tide file. Blank lines and lines starting with # are
// skipped. The name is used in error messages.
func Parse(r io.Reader, name string) (*Table, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, lineNo, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	tbl, err := New(records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return tbl, nil
}

// Load reads a tide file from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open tide file: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Dump writes the table in the format read by Parse.
func (t *Table) Dump(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, r := range t.records {
		if _, err := bw.WriteString(FormatRecord(r) + "\n"); err != nil {
			return fmt.Errorf("failed to write tide record: %w", err)
		}
	}
	return bw.Flush()
}

// Merge combines several tables into one sorted table. Identical records
// are kept once. When two tables disagree on the level at the same instant
// the first one wins and a warning is logged.
func Merge(logger *slog.Logger, tables ...*Table) *Table {
	if logger == nil {
		logger = slog.Default()
	}

	var all []Record
	for _, t := range tables {
		if t != nil {
			all = append(all, t.records...)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Time.Before(all[j].Time) })

	out := make([]Record, 0, len(all))
	for _, r := range all {
		if n := len(out); n > 0 && out[n-1].Time.Equal(r.Time) {
			if out[n-1].Level != r.Level {
				logger.Warn("Conflicting tide records, keeping first",
					"time", r.Time.Format(time.RFC3339),
					"kept", out[n-1].Level,
					"dropped", r.Level)
			}
			continue
		}
		out = append(out, r)
	}

	logger.Debug("Tide tables merged", "tables", len(tables), "records", len(out))
	return &Table{records: out}
}
