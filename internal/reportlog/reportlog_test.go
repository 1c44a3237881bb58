package reportlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func testEntry() Entry {
	return Entry{
		Timestamp:  testTime,
		RunID:      "5b0c6f1e-3d0a-4e57-9d8e-0f3c2a1b4c5d",
		Command:    "report pl",
		BusinessID: 1,
		Year:       2026,
		Status:     "ok",
		Details:    "net profit 50.00",
	}
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("validate summary", 1, 2026, "invalid", "")
	_, err := uuid.Parse(e.RunID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), e.Timestamp, time.Minute)
	assert.NotEqual(t, e.RunID, NewEntry("validate summary", 1, 2026, "invalid", "").RunID)
}

func TestAppend_NewFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	data, err := os.ReadFile(filepath.Join(dir, "logs", "report-log.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, "2026-01-15T10:30:00Z,5b0c6f1e-3d0a-4e57-9d8e-0f3c2a1b4c5d,report pl,1,2026,ok,net profit 50.00", lines[1])
}

func TestAppend_ExistingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Append(dir, testEntry()))

	e2 := testEntry()
	e2.Command = "balance"
	e2.Year = 0
	require.NoError(t, Append(dir, e2))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "report pl", entries[0].Command)
	assert.Equal(t, "balance", entries[1].Command)
	assert.Zero(t, entries[1].Year)
}

func TestRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := testEntry()
	require.NoError(t, Append(dir, want))

	entries, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, want.Timestamp.Equal(entries[0].Timestamp))
	entries[0].Timestamp = want.Timestamp
	assert.Equal(t, want, entries[0])
}

func TestRead_NotFound(t *testing.T) {
	entries, err := Read(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUnmarshalEntry_Rejects(t *testing.T) {
	good := MarshalEntry(testEntry())

	tests := []struct {
		name string
		col  int
		val  string
	}{
		{"timestamp", colTimestamp, "yesterday"},
		{"run id", colRunID, "run-1"},
		{"business id", colBusinessID, "one"},
		{"year", colYear, "MMXXVI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := append([]string(nil), good...)
			rec[tt.col] = tt.val
			_, err := UnmarshalEntry(rec)
			require.Error(t, err)
		})
	}

	_, err := UnmarshalEntry(good[:3])
	require.Error(t, err)
}
