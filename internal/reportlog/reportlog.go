// Package reportlog keeps an append-only CSV audit trail of report and
// validation runs inside a ledger directory.
package reportlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry is one run in the report log.
type Entry struct {
	Timestamp  time.Time
	RunID      string
	Command    string
	BusinessID int64
	Year       int // 0 when the run was not scoped to a year
	Status     string
	Details    string
}

// Header is the CSV header for report-log.csv.
const Header = "timestamp,run_id,command,business_id,year,status,details"

const (
	numFields     = 7
	logDir        = "logs"
	logFile       = "logs/report-log.csv"
	colTimestamp  = 0
	colRunID      = 1
	colCommand    = 2
	colBusinessID = 3
	colYear       = 4
	colStatus     = 5
	colDetails    = 6
)

// NewEntry stamps an entry with the current time and a fresh run ID.
func NewEntry(command string, businessID int64, year int, status, details string) Entry {
	return Entry{
		Timestamp:  time.Now().UTC(),
		RunID:      uuid.NewString(),
		Command:    command,
		BusinessID: businessID,
		Year:       year,
		Status:     status,
		Details:    details,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colRunID] = e.RunID
	row[colCommand] = e.Command
	row[colBusinessID] = strconv.FormatInt(e.BusinessID, 10)
	if e.Year != 0 {
		row[colYear] = strconv.Itoa(e.Year)
	}
	row[colStatus] = e.Status
	row[colDetails] = e.Details
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if _, err := uuid.Parse(record[colRunID]); err != nil {
		return Entry{}, fmt.Errorf("parsing run id %q: %w", record[colRunID], err)
	}
	businessID, err := strconv.ParseInt(record[colBusinessID], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing business id %q: %w", record[colBusinessID], err)
	}
	var year int
	if record[colYear] != "" {
		if year, err = strconv.Atoi(record[colYear]); err != nil {
			return Entry{}, fmt.Errorf("parsing year %q: %w", record[colYear], err)
		}
	}

	return Entry{
		Timestamp:  ts,
		RunID:      record[colRunID],
		Command:    record[colCommand],
		BusinessID: businessID,
		Year:       year,
		Status:     record[colStatus],
		Details:    record[colDetails],
	}, nil
}

// Append writes entries to <root>/logs/report-log.csv, creating the file and
// header if needed.
func Append(root string, entries ...Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening report log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/report-log.csv. A missing file
// yields no entries.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening report log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading report log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
