package telemetry

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

// DefaultMaxFiles is the number of daily log files kept by a DiskStore.
const DefaultMaxFiles = 100

const (
	logPrefix = "log-"
	logSuffix = ".json"
)

// DiskStore appends events as JSON lines to one log file per UTC day
// under Dir, and prunes the oldest files beyond MaxFiles.
type DiskStore struct {
	Dir      string
	MaxFiles int

	mu sync.Mutex
}

// NewDiskStore creates a DiskStore rooted at dir. The directory is
// created lazily on the first Record.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{Dir: dir, MaxFiles: DefaultMaxFiles}
}

// Record appends event to the current log file.
func (s *DiskStore) Record(event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating telemetry directory: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshalling event %s: %w", event.ID, err)
	}
	data = append(data, '\n')

	at := event.Time
	if at.IsZero() {
		at = time.Now()
	}
	path := filepath.Join(s.Dir, logFileName(at))

	// O_APPEND keeps each line intact when several processes log at once.
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening telemetry log: %w", err)
	}
	_, werr := f.Write(data)
	cerr := f.Close()
	if werr != nil {
		return fmt.Errorf("writing event %s: %w", event.ID, werr)
	}
	if cerr != nil {
		return fmt.Errorf("closing telemetry log: %w", cerr)
	}

	return s.prune()
}

// List returns up to limit events, newest first. A limit <= 0 returns
// everything. Malformed lines are skipped. A missing directory yields no
// events and no error.
func (s *DiskStore) List(limit int) ([]*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	files, err := s.logFiles()
	if err != nil {
		return nil, err
	}

	var events []*Event
	for i := len(files) - 1; i >= 0; i-- {
		fileEvents, err := readLog(files[i])
		if err != nil {
			return nil, err
		}
		// Lines are appended chronologically; walk them backwards.
		for j := len(fileEvents) - 1; j >= 0; j-- {
			events = append(events, fileEvents[j])
			if limit > 0 && len(events) == limit {
				return events, nil
			}
		}
	}
	return events, nil
}

// logFiles returns the log file paths sorted oldest first.
func (s *DiskStore) logFiles() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading telemetry directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		files = append(files, filepath.Join(s.Dir, name))
	}
	// Names embed an ISO date, so lexical order is chronological.
	slices.Sort(files)
	return files, nil
}

func (s *DiskStore) prune() error {
	keep := s.MaxFiles
	if keep <= 0 {
		keep = DefaultMaxFiles
	}
	files, err := s.logFiles()
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}
	var errs []error
	for _, path := range files[:len(files)-keep] {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("pruning telemetry logs: %w", err)
	}
	return nil
}

func logFileName(at time.Time) string {
	return logPrefix + at.UTC().Format("2006-01-02") + logSuffix
}

func readLog(path string) ([]*Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading telemetry log: %w", err)
	}
	defer f.Close()

	var events []*Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, &event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading telemetry log %s: %w", filepath.Base(path), err)
	}
	return events, nil
}
