// SPDX-License-Identifier: MIT
package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Mapping is one line of a key/value mapping table.
type Mapping struct {
	Key   string
	Value string
}

// readLines returns the meaningful lines of a line-oriented config
// file: trimmed, with blanks and '#' comments dropped. Line numbers are
// preserved for error reporting.
type line struct {
	no   int
	text string
}

func readLines(path string) ([]line, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []line
	sc := bufio.NewScanner(f)
	no := 0
	for sc.Scan() {
		no++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, line{no: no, text: text})
	}
	return out, sc.Err()
}

// LoadProviders reads the playlist source URL list. The file is
// required; a missing file or a non-URL line is a configuration error.
func LoadProviders(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{File: path, Msg: "required file is missing"}
		}
		return nil, &Error{File: path, Msg: err.Error()}
	}
	urls := make([]string, 0, len(lines))
	for _, l := range lines {
		u, err := url.Parse(l.text)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "file") || (u.Scheme != "file" && u.Host == "") {
			return nil, &Error{File: path, Line: l.no, Msg: fmt.Sprintf("not a source URL: %q", l.text)}
		}
		urls = append(urls, l.text)
	}
	return urls, nil
}

// LoadEPGSources reads the EPG source URL list. The file is optional;
// a missing file means no EPG enrichment.
func LoadEPGSources(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{File: path, Msg: err.Error()}
	}
	urls := make([]string, 0, len(lines))
	for _, l := range lines {
		urls = append(urls, l.text)
	}
	return urls, nil
}

// LoadStages reads the ordered pipeline command list, one stage name
// per line, upper-cased. The file is required.
func LoadStages(path string) ([]string, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{File: path, Msg: "required file is missing"}
		}
		return nil, &Error{File: path, Msg: err.Error()}
	}
	stages := make([]string, 0, len(lines))
	for _, l := range lines {
		stages = append(stages, strings.ToUpper(l.text))
	}
	if len(stages) == 0 {
		return nil, &Error{File: path, Msg: "no pipeline stages configured"}
	}
	return stages, nil
}

// LoadMappings reads a key/value table, one `key=value` or `key,value`
// mapping per line. The file is optional, but a present file with a
// malformed line is a configuration error.
func LoadMappings(path string) ([]Mapping, error) {
	lines, err := readLines(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, &Error{File: path, Msg: err.Error()}
	}
	out := make([]Mapping, 0, len(lines))
	for _, l := range lines {
		key, value, ok := splitMapping(l.text)
		if !ok {
			return nil, &Error{File: path, Line: l.no, Msg: fmt.Sprintf("malformed mapping line: %q", l.text)}
		}
		out = append(out, Mapping{Key: key, Value: value})
	}
	return out, nil
}

func splitMapping(s string) (string, string, bool) {
	sep := strings.IndexAny(s, "=,")
	if sep <= 0 || sep == len(s)-1 {
		return "", "", false
	}
	key := strings.TrimSpace(s[:sep])
	value := strings.TrimSpace(s[sep+1:])
	if key == "" || value == "" {
		return "", "", false
	}
	return key, value, true
}
