package httpapi

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// JournalEntry is one write request as seen by the dispatcher.
type JournalEntry struct {
	Time       time.Time `json:"time"`
	User       string    `json:"user"`
	Admin      bool      `json:"admin"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
}

// JournalSink persists journal entries.
type JournalSink interface {
	Write(entry JournalEntry) error
}

// Journal keeps the most recent write requests in memory and optionally
// forwards them to a sink.
type Journal struct {
	mu      sync.Mutex
	entries []JournalEntry
	max     int
	sink    JournalSink
}

// NewJournal keeps up to max entries (200 when max <= 0).
func NewJournal(max int, sink JournalSink) *Journal {
	if max <= 0 {
		max = 200
	}
	return &Journal{max: max, sink: sink}
}

// Add appends an entry. Sink errors are returned after the entry is kept.
func (j *Journal) Add(entry JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, entry)
	if len(j.entries) > j.max {
		j.entries = j.entries[len(j.entries)-j.max:]
	}
	if j.sink != nil {
		return j.sink.Write(entry)
	}
	return nil
}

// Recent returns up to limit entries, newest last.
func (j *Journal) Recent(limit int) []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	if limit <= 0 || limit > len(j.entries) {
		limit = len(j.entries)
	}
	out := make([]JournalEntry, limit)
	copy(out, j.entries[len(j.entries)-limit:])
	return out
}

// FileSink appends journal entries to a file as JSON lines.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileSink opens path for appending. An empty path yields a nil sink.
func NewFileSink(path string) (*FileSink, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileSink{file: f}, nil
}

func (s *FileSink) Write(entry JournalEntry) error {
	if s == nil || s.file == nil {
		return nil
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}
