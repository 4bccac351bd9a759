// Package checkpoint persists per-item harvest outcomes so an
// interrupted run can be audited. The file is rewritten in full after
// every recorded item, so it always reflects everything processed so
// far.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Outcome suffixes appended to the profile URL in the log.
const (
	SuffixSuccess = "-Success"
	SuffixFail    = "-Fail"
	SuffixNone    = ""
)

// Log is an append-then-rewrite record of per-item outcomes.
type Log struct {
	path    string
	entries []string
}

// New creates an empty Log that will write to path.
func New(path string) *Log {
	return &Log{path: path}
}

// Load reads an existing checkpoint file. A missing file yields an
// empty log.
func Load(path string) (*Log, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(path), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &Log{path: path, entries: entries}, nil
}

// Record appends one outcome and rewrites the whole file.
func (l *Log) Record(url, suffix string) error {
	l.entries = append(l.entries, url+suffix)
	return l.flush()
}

// Entries returns a copy of the recorded outcomes in order.
func (l *Log) Entries() []string {
	return append([]string(nil), l.entries...)
}

func (l *Log) flush() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
