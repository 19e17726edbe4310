package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	followPollInterval = 250 * time.Millisecond

	scanBufInit = 64 * 1024
	scanBufMax  = 1024 * 1024
)

// Tail returns up to limit trailing lines of the file at path together with
// the offset just past the last line read, suitable for handing to Follow.
// A missing file yields no lines and offset zero.
func Tail(path string, limit int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, 0, fmt.Errorf("stat log: %w", err)
	}
	if info.IsDir() {
		return nil, 0, fmt.Errorf("log path %q is a directory", path)
	}
	if limit <= 0 {
		return nil, info.Size(), nil
	}

	// Bounded window so a multi-gigabyte log never loads whole.
	scanner := newLineScanner(f)
	window := make([]string, limit)
	total := 0
	for scanner.Scan() {
		window[total%limit] = scanner.Text()
		total++
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan log: %w", err)
	}

	offset, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("resolve log offset: %w", err)
	}

	count := min(total, limit)
	out := make([]string, count)
	for i := range out {
		out[i] = window[(total-count+i)%limit]
	}
	return out, offset, nil
}

// Follow polls the file from offset and emits each newly appended complete
// line until ctx is cancelled. Truncation (for example log rotation) resets
// the read position to the start of the file.
func Follow(ctx context.Context, path string, offset int64, emit func(string)) error {
	ticker := time.NewTicker(followPollInterval)
	defer ticker.Stop()

	for {
		lines, next, err := readAppended(path, offset)
		if err != nil {
			return err
		}
		offset = next
		for _, line := range lines {
			emit(line)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// readAppended reads complete lines between offset and the current end of
// file. It returns the new offset to resume from.
func readAppended(path string, offset int64) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, offset, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, offset, fmt.Errorf("stat log: %w", err)
	}
	if info.Size() < offset {
		// File shrank underneath us; start over.
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return nil, offset, fmt.Errorf("seek log: %w", err)
	}

	scanner := newLineScanner(f)
	var added []string
	for scanner.Scan() {
		added = append(added, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, offset, fmt.Errorf("scan log: %w", err)
	}

	next, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, offset, fmt.Errorf("resolve log offset: %w", err)
	}
	return added, next, nil
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, scanBufInit), scanBufMax)
	return scanner
}
