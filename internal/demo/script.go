// Package demo parses demo scripts: timed page changes that follow video playback.
//
// A script has one "timestamp URL" entry per line. Timestamps are plain
// seconds ("12.5") or minutes and seconds ("1:02.5"). Blank lines and lines
// starting with '#' are ignored.
package demo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ErrBadLine is wrapped by every parse error.
var ErrBadLine = errors.New("bad demo line")

// Entry is one scheduled page.
type Entry struct {
	Timestamp float64
	URL       string
}

// Script is a list of entries sorted by timestamp.
type Script []Entry

// Load parses the script at path.
func Load(path string) (Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open demo script: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a script. Entries with equal timestamps keep their file order.
func Parse(r io.Reader) (Script, error) {
	var script Script
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexAny(line, " \t")
		if idx < 0 {
			return nil, fmt.Errorf("%w: line %d: expected 'timestamp URL', got %q", ErrBadLine, lineNum, line)
		}
		stamp, url := line[:idx], strings.TrimSpace(line[idx+1:])

		ts, err := ParseTimestamp(stamp)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadLine, lineNum, err)
		}

		script = append(script, Entry{Timestamp: ts, URL: url})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read demo script: %w", err)
	}

	sort.SliceStable(script, func(i, j int) bool {
		return script[i].Timestamp < script[j].Timestamp
	})
	return script, nil
}

// ParseTimestamp parses "SS.ms" or "MM:SS.ms" into seconds.
func ParseTimestamp(s string) (float64, error) {
	if minStr, secStr, ok := strings.Cut(s, ":"); ok {
		minutes, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes in timestamp %q", s)
		}
		seconds, err := strconv.ParseFloat(secStr, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid seconds in timestamp %q", s)
		}
		return checkTimestamp(s, minutes*60+seconds)
	}

	seconds, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q", s)
	}
	return checkTimestamp(s, seconds)
}

func checkTimestamp(s string, v float64) (float64, error) {
	if v < 0 {
		return 0, fmt.Errorf("negative timestamp %q", s)
	}
	return v, nil
}

// URLs returns the distinct URLs of the script in order of first use.
func (s Script) URLs() []string {
	seen := make(map[string]bool, len(s))
	var urls []string
	for _, e := range s {
		if !seen[e.URL] {
			seen[e.URL] = true
			urls = append(urls, e.URL)
		}
	}
	return urls
}

// Contains reports whether url is scheduled anywhere in the script.
func (s Script) Contains(url string) bool {
	for _, e := range s {
		if e.URL == url {
			return true
		}
	}
	return false
}
