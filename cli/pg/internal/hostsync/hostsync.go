// Package hostsync keeps a marker-delimited block of lines in a text file on
// the host (a shell rc file) in sync with what pg wants there.
package hostsync

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

const markerPrefix = "# pg-venv"

func markerStart(section string) string {
	return fmt.Sprintf("%s:%s:start", markerPrefix, sanitize(section))
}

func markerEnd(section string) string {
	return fmt.Sprintf("%s:%s:end", markerPrefix, sanitize(section))
}

// RenderManagedBlock returns the block for section, or "" when lines holds
// nothing but blanks.
func RenderManagedBlock(section string, lines []string) string {
	var body []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			body = append(body, strings.TrimRight(l, " \t"))
		}
	}
	if len(body) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(markerStart(section))
	b.WriteString("\n")
	for _, l := range body {
		b.WriteString(l)
		b.WriteString("\n")
	}
	b.WriteString(markerEnd(section))
	b.WriteString("\n")
	return b.String()
}

// UpsertManagedBlock inserts or replaces the block for section and returns the
// updated content. Anything outside the markers is left untouched.
func UpsertManagedBlock(existing, section string, lines []string) (string, error) {
	block := RenderManagedBlock(section, lines)
	if block == "" {
		return existing, nil
	}
	start := markerStart(section)
	end := markerEnd(section)
	startIdx := strings.Index(existing, start)
	endIdx := strings.Index(existing, end)
	if (startIdx >= 0) != (endIdx >= 0) {
		return "", fmt.Errorf("managed block markers are incomplete for %s", section)
	}
	if startIdx >= 0 {
		if endIdx < startIdx {
			return "", fmt.Errorf("managed block markers are out of order for %s", section)
		}
		endLine := endIdx + len(end)
		if endLine < len(existing) && existing[endLine] == '\n' {
			endLine++
		}
		return existing[:startIdx] + block + existing[endLine:], nil
	}

	out := existing
	if out != "" && !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	if strings.TrimSpace(out) != "" {
		out += "\n"
	}
	return out + block, nil
}

// HasManagedBlock reports whether content already carries the block for section.
func HasManagedBlock(content, section string) bool {
	return strings.Contains(content, markerStart(section)) && strings.Contains(content, markerEnd(section))
}

// SyncFile applies UpsertManagedBlock to the file at path, creating it when
// missing. It reports whether the file content changed.
func SyncFile(path, section string, lines []string) (bool, error) {
	var existing string
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		existing = string(data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, err
	}
	updated, err := UpsertManagedBlock(existing, section, lines)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	if updated == existing {
		return false, nil
	}
	mode := fs.FileMode(0o644)
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		return false, err
	}
	return true, nil
}

func sanitize(section string) string {
	section = strings.TrimSpace(section)
	if section == "" {
		section = "default"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, section)
}
