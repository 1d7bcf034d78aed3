// sinks.go: console, rotating file, and in-memory ring sinks
//
// Grounded on iris's writesyncers.go (FileWriteSyncer's mutex-guarded
// os.File wrapper) for the file sink's locking shape, and on
// internal/ring (itself adapted from iris's internal/zephyroslite) for the
// bounded in-memory history buffer (spec.md §4.5).
//
// Copyright (c) 2025 AGILira
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package asfmlog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/agilira/asfmlog/internal/ring"
)

// consoleSink writes the console-formatted line to stdout. It never
// blocks beyond the one write syscall, and is lossy on terminal
// backpressure by design (spec.md §4.5).
type consoleSink struct {
	isTTY bool
}

func newConsoleSink() *consoleSink {
	info, err := os.Stdout.Stat()
	isTTY := err == nil && (info.Mode()&os.ModeCharDevice) != 0
	return &consoleSink{isTTY: isTTY}
}

func (c *consoleSink) write(r Record) bool {
	_, err := fmt.Fprintln(os.Stdout, FormatConsole(r, c.isTTY))
	return err == nil
}

// fileSink writes one formatted line per record, rotating when the next
// write would exceed MaxFileBytes (spec.md §4.5, §6). Rotation renames
// <path> -> <path>.1, shifts existing .N files up to .max_files-1, and
// deletes .max_files. Not atomic at the filesystem level (spec.md §9).
type fileSink struct {
	path      string
	maxBytes  int64
	maxFiles  int
	cfg       LoggingConfiguration

	file        *os.File
	currentSize int64
	closed      bool
}

func newFileSink(cfg LoggingConfiguration) (*fileSink, error) {
	f := &fileSink{path: cfg.FilePath, maxBytes: cfg.MaxFileBytes, maxFiles: cfg.MaxFiles, cfg: cfg}
	if err := f.open(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *fileSink) open() error {
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return wrapError(err, ErrCodeFileOpen, "failed to open log file")
	}
	info, statErr := file.Stat()
	if statErr == nil {
		f.currentSize = info.Size()
	}
	f.file = file
	f.closed = false
	return nil
}

// write appends the already-formatted line, rotating first if the write
// would cross maxBytes. Caller holds the Core's mutex. Returns false (and
// does not propagate) on open/write/rotate failure, per spec.md §7.
func (f *fileSink) write(line string) bool {
	if f.closed {
		return false
	}

	size := int64(len(line)) + 1 // + newline
	if f.maxBytes > 0 && f.currentSize+size > f.maxBytes {
		if err := f.rotate(); err != nil {
			return false
		}
	}

	if _, err := f.file.WriteString(line + "\n"); err != nil {
		return false
	}
	f.currentSize += size
	return true
}

// rotate shifts <path> -> <path>.1 -> ... -> <path>.maxFiles, deleting the
// oldest, then reopens a fresh file at <path>.
func (f *fileSink) rotate() error {
	if f.file != nil {
		_ = f.file.Close()
	}

	if f.maxFiles > 0 {
		oldest := fmt.Sprintf("%s.%d", f.path, f.maxFiles)
		_ = os.Remove(oldest)
		for n := f.maxFiles - 1; n >= 1; n-- {
			src := fmt.Sprintf("%s.%d", f.path, n)
			dst := fmt.Sprintf("%s.%d", f.path, n+1)
			if _, err := os.Stat(src); err == nil {
				_ = os.Rename(src, dst)
			}
		}
		if _, err := os.Stat(f.path); err == nil {
			_ = os.Rename(f.path, fmt.Sprintf("%s.1", f.path))
		}
	}

	if err := f.open(); err != nil {
		return err
	}
	f.currentSize = 0
	return nil
}

func (f *fileSink) close() error {
	if f.file == nil {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0700)
}

// memorySink is a bounded FIFO ring of Records (default capacity 1000).
// Reads return an oldest-to-newest snapshot copy (spec.md §4.5).
type memorySink struct {
	buf *ring.Buffer[Record]
}

func newMemorySink(capacity int) *memorySink {
	return &memorySink{buf: ring.New[Record](capacity)}
}

func (m *memorySink) write(r Record) bool {
	m.buf.Push(r)
	return true
}

func (m *memorySink) snapshot(count int) []Record {
	return m.buf.Snapshot(count)
}

func (m *memorySink) clear() int {
	return m.buf.Clear()
}
