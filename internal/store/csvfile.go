package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cldixon/moodjournal/internal/mood"
)

// Header is the column layout written to new journal files
var Header = []string{"timestamp", "mood", "entry", "ai_reflection"}

// legacyTimeLayout is accepted when reading files written without RFC 3339
// timestamps
const legacyTimeLayout = "2006-01-02 15:04:05"

// CSVFile is a durable flat-file store. Rows are appended and synced on
// every save; the file is only read in full when opened.
type CSVFile struct {
	mu      sync.Mutex
	path    string
	file    *os.File
	writer  *csv.Writer
	entries []*Entry
}

// tornSuffix names the file that keeps bytes dropped from a torn journal
const tornSuffix = ".torn"

// OpenCSV opens or creates the journal file at path. A final row left
// incomplete by a crash is moved to path+".torn" and the journal is
// truncated to its last complete row. A nil logger discards warnings.
func OpenCSV(path string, logger *zap.SugaredLogger) (*CSVFile, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	contents, err := readCSV(path)
	if err != nil {
		return nil, err
	}
	if contents.torn != nil {
		dropped, err := dropTail(path, contents.clean)
		if err != nil {
			return nil, fmt.Errorf("failed to repair journal file: %w", err)
		}
		logger.Warnw("Dropped incomplete journal row",
			"path", path,
			"bytes", dropped,
			"saved_to", path+tornSuffix,
			"error", contents.torn,
		)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}

	s := &CSVFile{
		path:    path,
		file:    f,
		writer:  csv.NewWriter(f),
		entries: contents.entries,
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat journal file: %w", err)
	}
	if info.Size() == 0 {
		if err := s.writeRecord(Header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		return s, nil
	}

	// Rows must start on a fresh line even if the last one lost its newline
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read journal file: %w", err)
	}
	if last[0] != '\n' {
		if _, err := f.Write([]byte("\n")); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to terminate last row: %w", err)
		}
	}

	return s, nil
}

func (s *CSVFile) Append(_ context.Context, e *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := []string{
		e.Timestamp.Format(time.RFC3339Nano),
		string(e.Mood),
		e.Text,
		e.Reflection,
	}
	if err := s.writeRecord(record); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	e.ID = int64(len(s.entries) + 1)
	s.entries = append(s.entries, clone(e))
	return nil
}

// writeRecord writes one row and syncs it. On failure any partial row is
// cut off and the writer replaced, since csv.Writer keeps its first error.
func (s *CSVFile) writeRecord(record []string) error {
	info, err := s.file.Stat()
	if err != nil {
		return err
	}

	err = s.writer.Write(record)
	if err == nil {
		s.writer.Flush()
		err = s.writer.Error()
	}
	if err == nil {
		err = s.file.Sync()
	}
	if err != nil {
		s.writer = csv.NewWriter(s.file)
		s.file.Truncate(info.Size())
		return err
	}
	return nil
}

func (s *CSVFile) All(_ context.Context) ([]*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = clone(e)
	}
	return out, nil
}

func (s *CSVFile) Close() error {
	return s.file.Close()
}

// csvContents is what readCSV found in a journal file
type csvContents struct {
	entries []*Entry
	// clean is the length of the well-formed prefix of the file
	clean int64
	// torn is the read error of an incomplete final row, if any
	torn error
}

// readCSV loads all rows from an existing journal file. A missing file is
// an empty journal. A bad row followed only by more bad rows is reported
// as torn; a bad row followed by a good one is corruption and fails.
func readCSV(path string) (*csvContents, error) {
	out := &csvContents{}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, nil
		}
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read journal header: %w", err)
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}
	out.clean = r.InputOffset()

	badLine := 0
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var e *Entry
		if err == nil {
			e, err = parseRecord(record, cols)
		}
		if err != nil {
			if out.torn == nil {
				out.torn = err
				badLine = line
			}
			continue
		}
		if out.torn != nil {
			return nil, fmt.Errorf("journal row %d: %w", badLine, out.torn)
		}

		e.ID = int64(len(out.entries) + 1)
		out.entries = append(out.entries, e)
		out.clean = r.InputOffset()
	}

	return out, nil
}

// dropTail moves everything after offset clean into the sidecar file and
// truncates the journal. It returns the number of bytes moved.
func dropTail(path string, clean int64) (int64, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if _, err := f.Seek(clean, io.SeekStart); err != nil {
		return 0, err
	}
	tail, err := io.ReadAll(f)
	if err != nil {
		return 0, err
	}

	side, err := os.OpenFile(path+tornSuffix, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, err
	}
	if _, err := side.Write(tail); err != nil {
		side.Close()
		return 0, err
	}
	if err := side.Close(); err != nil {
		return 0, err
	}

	if err := f.Truncate(clean); err != nil {
		return 0, err
	}
	return int64(len(tail)), f.Sync()
}

type columns struct {
	timestamp, mood, text, reflection int
}

func columnIndex(header []string) (columns, error) {
	cols := columns{-1, -1, -1, -1}
	for i, name := range header {
		switch name {
		case "timestamp":
			cols.timestamp = i
		case "mood":
			cols.mood = i
		case "entry":
			cols.text = i
		case "ai_reflection", "reflection":
			cols.reflection = i
		}
	}
	if cols.timestamp < 0 || cols.mood < 0 || cols.text < 0 {
		return cols, fmt.Errorf("journal header %v missing timestamp, mood, or entry column", header)
	}
	return cols, nil
}

func parseRecord(record []string, cols columns) (*Entry, error) {
	ts, err := parseTimestamp(record[cols.timestamp])
	if err != nil {
		return nil, err
	}

	m, err := mood.Parse(record[cols.mood])
	if err != nil {
		return nil, err
	}

	e := &Entry{
		Timestamp: ts,
		Mood:      m,
		Text:      record[cols.text],
	}
	if cols.reflection >= 0 {
		e.Reflection = record[cols.reflection]
	}
	return e, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(legacyTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
	}
	return t, nil
}
