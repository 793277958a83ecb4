package scorelog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/ariadne-cps/pExplore/score"
)

// JSONLWriter appends records to a stream as one JSON object per line.
// It implements the manager's Archive interface.
type JSONLWriter struct {
	mu        sync.Mutex
	w         io.Writer
	sessionID string
}

// NewJSONLWriter creates a writer logging under the given session id.
func NewJSONLWriter(w io.Writer, sessionID string) *JSONLWriter {
	return &JSONLWriter{w: w, sessionID: sessionID}
}

// Append writes one record as a JSON line.
func (l *JSONLWriter) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing record: %w", err)
	}
	return nil
}

// RecordGeneration flattens and appends a whole generation.
func (l *JSONLWriter) RecordGeneration(index int, g score.Generation) error {
	for _, rec := range Records(l.sessionID, index, g) {
		if err := l.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// ReadJSONL parses records from a JSON-lines stream, skipping blank lines.
func ReadJSONL(r io.Reader) ([]Record, error) {
	var records []Record
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec Record
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading stream: %w", err)
	}
	return records, nil
}

// LoadJSONL reads records from a file.
func LoadJSONL(filename string) ([]Record, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()
	return ReadJSONL(f)
}
