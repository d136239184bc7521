// Package archive writes the collected trade tape to gzipped NDJSON files,
// deleting the oldest archives when total size exceeds a budget.
package archive

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/feedlab/itchvwap/internal/itch"
	"github.com/feedlab/itchvwap/internal/tape"
)

// Archiver writes one archive file per parsed capture under dir/tapes/.
type Archiver struct {
	dir      string
	maxBytes int64
}

// New creates a new Archiver.
func New(dir string, maxGB int) *Archiver {
	return &Archiver{
		dir:      dir,
		maxBytes: int64(maxGB) * 1 << 30,
	}
}

// tradeRecord is one archived trade line.
type tradeRecord struct {
	Ticker      string `json:"ticker"`
	StockLocate uint16 `json:"stock_locate"`
	Price       string `json:"price"`
	Shares      uint32 `json:"shares"`
	Timestamp   uint64 `json:"timestamp"`
}

// WriteTape archives the full tape for one capture as
// dir/tapes/<source>.jsonl.gz, then rotates old archives past the budget.
func (a *Archiver) WriteTape(source string, directory map[uint16]string, trades []tape.Trade) error {
	name := strings.TrimSuffix(filepath.Base(source), ".gz")
	path := filepath.Join(a.dir, "tapes", name+".jsonl.gz")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	enc := json.NewEncoder(gz)
	for _, t := range trades {
		rec := tradeRecord{
			Ticker:      directory[t.StockLocate],
			StockLocate: t.StockLocate,
			Price:       itch.FormatPrice4(t.PriceRaw),
			Shares:      t.Shares,
			Timestamp:   t.Timestamp,
		}
		if err := enc.Encode(rec); err != nil {
			gz.Close()
			return fmt.Errorf("encode: %w", err)
		}
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("gzip close: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	log.Printf("tape archiver: wrote %d trades to %s", len(trades), path)
	a.rotate()
	return nil
}

// rotate deletes the oldest archive files until total size is under maxBytes.
func (a *Archiver) rotate() {
	root := filepath.Join(a.dir, "tapes")

	type entry struct {
		path string
		mod  time.Time
		size int64
	}

	var files []entry
	var total int64

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		files = append(files, entry{path: path, mod: info.ModTime(), size: info.Size()})
		total += info.Size()
		return nil
	})

	if total <= a.maxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].mod.Before(files[j].mod)
	})

	for _, f := range files {
		if total <= a.maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			log.Printf("tape archiver: remove %s: %v", f.path, err)
			continue
		}
		total -= f.size
		log.Printf("tape archiver: rotated out %s (%d bytes)", f.path, f.size)
	}
}
