// Package history captures order book snapshots to durable storage for
// backtesting. Snapshots are written as JSON lines so a capture file can be
// replayed with nothing fancier than a line scanner.
package history

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/you/xetrade/internal/market"
)

// Snapshot is one captured book, flattened for storage.
type Snapshot struct {
	Exchange         string         `json:"exchange"`
	Pair             string         `json:"pair"`
	TimestampMs      int64          `json:"timestampMs"`
	Bids             []market.Level `json:"bids"`
	Asks             []market.Level `json:"asks"`
	CaptureLatencyMs int64          `json:"captureLatencyMs"`
	SequenceNumber   int64          `json:"sequenceNumber"`
}

// Storage persists snapshots. Implementations must tolerate Close after a
// failed Store.
type Storage interface {
	Store(ctx context.Context, snap Snapshot) error
	Close(ctx context.Context) error
}

// FileStorage appends snapshots to JSONL files on local disk, rotating to a
// new file every maxPerFile records.
type FileStorage struct {
	mu         sync.Mutex
	dir        string
	maxPerFile int
	file       *os.File
	w          *bufio.Writer
	inFile     int
	seq        int64
}

func NewFileStorage(dir string, maxPerFile int) (*FileStorage, error) {
	if maxPerFile <= 0 {
		maxPerFile = 1000
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: mkdir %s: %w", dir, err)
	}
	return &FileStorage{dir: dir, maxPerFile: maxPerFile}, nil
}

// rotate opens a fresh capture file. Caller holds the lock.
func (f *FileStorage) rotate() error {
	if f.file != nil {
		_ = f.w.Flush()
		_ = f.file.Close()
	}
	name := filepath.Join(f.dir, fmt.Sprintf("orderbooks_%s.jsonl", time.Now().UTC().Format("20060102T150405.000")))
	file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("history: open %s: %w", name, err)
	}
	f.file = file
	f.w = bufio.NewWriter(file)
	f.inFile = 0
	return nil
}

func (f *FileStorage) Store(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil || f.inFile >= f.maxPerFile {
		if err := f.rotate(); err != nil {
			return err
		}
	}

	f.seq++
	snap.SequenceNumber = f.seq

	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("history: marshal snapshot: %w", err)
	}
	if _, err := f.w.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("history: write snapshot: %w", err)
	}
	f.inFile++
	return nil
}

func (f *FileStorage) Close(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	if err := f.w.Flush(); err != nil {
		_ = f.file.Close()
		return err
	}
	err := f.file.Close()
	f.file = nil
	return err
}

// ReadFile loads every snapshot from one JSONL capture file.
func ReadFile(path string) ([]Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var out []Snapshot
	sc := bufio.NewScanner(file)
	sc.Buffer(make([]byte, 0, 1<<20), 1<<24)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var s Snapshot
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("history: bad line in %s: %w", path, err)
		}
		out = append(out, s)
	}
	return out, sc.Err()
}
