// Package logtail prints the end of a server log and streams what gets
// appended to it afterwards.
package logtail

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Tail returns the last n lines of the file at path and the offset just past
// what was read, from which Follow should resume. n <= 0 returns no lines.
func Tail(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	var ring []string
	var offset int64
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		offset += int64(len(line))
		if line != "" && n > 0 {
			if len(ring) == n {
				ring = ring[1:]
			}
			ring = append(ring, trimEOL(line))
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}
	return ring, offset, nil
}

func trimEOL(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}

// Follow copies everything written to path after offset into w until ctx is
// done. A truncated file is read again from its start.
func Follow(ctx context.Context, path string, offset int64, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	// catch up on anything written before the watch was in place
	if offset, err = copyFrom(f, offset, w); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				log.WithField("file", path).Info("log file went away")
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Chmod) == 0 {
				continue
			}
			if offset, err = copyFrom(f, offset, w); err != nil {
				return err
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("log watch error")
		}
	}
}

func copyFrom(f *os.File, offset int64, w io.Writer) (int64, error) {
	st, err := f.Stat()
	if err != nil {
		return offset, err
	}
	if st.Size() < offset {
		offset = 0
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}
	n, err := io.Copy(w, f)
	return offset + n, err
}
