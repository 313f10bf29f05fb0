// Package timing maps animation names and language codes to playback frame
// rates and audio delays.
package timing

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// AnyLanguage matches every language code.
const AnyLanguage = 0

//go:embed rates.yaml
var defaultRates []byte

var (
	ErrUnknownStream = errors.New("timing: no rate for stream")
	ErrInvalidTable  = errors.New("timing: invalid table")
)

// Rate is the pacing metadata reported to the playback consumer.
type Rate struct {
	FPS        float64 `yaml:"fps"`
	AudioDelay int     `yaml:"audio_delay"`
}

// Entry is one row of a timing table file.
type Entry struct {
	Name     string `yaml:"name"`
	Language int    `yaml:"language"`
	Rate     `yaml:",inline"`
}

type file struct {
	Entries []Entry `yaml:"entries"`
}

type key struct {
	name     string
	language int
}

// Table is a read-only lookup table. The zero value has no entries.
type Table struct {
	rates    map[key]Rate
	fallback *Rate
}

// Default returns the built-in table.
func Default() *Table {
	t, err := Parse(defaultRates)
	if err != nil {
		panic(fmt.Sprintf("timing: embedded table: %v", err))
	}
	return t
}

// LoadFile reads a YAML table from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open timing table: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// Load reads a YAML table from r.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read timing table: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML table.
func Parse(data []byte) (*Table, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	t := &Table{rates: make(map[key]Rate, len(f.Entries))}
	for i, e := range f.Entries {
		name := Normalize(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: entry %d has no name", ErrInvalidTable, i)
		}
		if e.FPS <= 0 {
			return nil, fmt.Errorf("%w: entry %q: fps must be positive", ErrInvalidTable, e.Name)
		}
		if e.AudioDelay < 0 {
			return nil, fmt.Errorf("%w: entry %q: negative audio delay", ErrInvalidTable, e.Name)
		}

		k := key{name: name, language: e.Language}
		if _, dup := t.rates[k]; dup {
			return nil, fmt.Errorf("%w: duplicate entry %q language %d", ErrInvalidTable, e.Name, e.Language)
		}
		t.rates[k] = e.Rate
	}

	return t, nil
}

// WithFallback returns a copy of t that answers misses with r instead of
// ErrUnknownStream.
func (t *Table) WithFallback(r Rate) *Table {
	c := &Table{rates: t.rates, fallback: &r}
	return c
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.rates)
}

// Lookup finds the rate for a stream. A language specific entry wins over an
// AnyLanguage entry; with neither, the fallback is used if one was configured.
func (t *Table) Lookup(name string, language int) (Rate, error) {
	n := Normalize(name)

	if r, ok := t.rates[key{name: n, language: language}]; ok {
		return r, nil
	}
	if r, ok := t.rates[key{name: n, language: AnyLanguage}]; ok {
		return r, nil
	}
	if t.fallback != nil {
		return *t.fallback, nil
	}

	return Rate{}, fmt.Errorf("%q language %d: %w", name, language, ErrUnknownStream)
}

var suffixes = []string{".zst", ".gz", ".ani"}

// Normalize reduces a file name or path to its table key.
func Normalize(name string) string {
	n := strings.ToLower(path.Base(strings.ReplaceAll(name, "\\", "/")))
	for _, s := range suffixes {
		n = strings.TrimSuffix(n, s)
	}
	if n == "." || n == "/" {
		return ""
	}
	return n
}
