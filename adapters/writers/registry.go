package writers

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"negmdf/domain/screening"
)

// WriteFunc renders a screening result to w.
type WriteFunc func(w io.Writer, result *screening.Result) error

type format struct {
	ext   string
	write WriteFunc
}

var registry = map[string]format{}

// Register adds (or replaces) a format under name; ext is the file extension
// without the dot.
func Register(name, ext string, fn WriteFunc) {
	registry[name] = format{ext: ext, write: fn}
}

// Formats lists the registered format names, sorted.
func Formats() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Extension returns the file extension of a registered format.
func Extension(name string) (string, error) {
	f, ok := registry[name]
	if !ok {
		return "", unknown(name)
	}
	return f.ext, nil
}

// Write renders result in the named format.
func Write(name string, w io.Writer, result *screening.Result) error {
	f, ok := registry[name]
	if !ok {
		return unknown(name)
	}
	return f.write(w, result)
}

// WriteFile creates path and renders result into it.
func WriteFile(name, path string, result *screening.Result) (err error) {
	if _, ok := registry[name]; !ok {
		return unknown(name)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	return Write(name, file, result)
}

// OutputPath names the output for input inside dir: <base>_screened.<ext>.
func OutputPath(dir, input, name string) (string, error) {
	ext, err := Extension(name)
	if err != nil {
		return "", err
	}
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, base+"_screened."+ext), nil
}

func unknown(name string) error {
	return fmt.Errorf("unknown output format %q (registered: %s)", name, strings.Join(Formats(), ", "))
}

// Registry exposes the package-level format registry as a value.
type Registry struct{}

func (Registry) Write(name string, w io.Writer, result *screening.Result) error {
	return Write(name, w, result)
}

func (Registry) WriteFile(name, path string, result *screening.Result) error {
	return WriteFile(name, path, result)
}

func (Registry) OutputPath(dir, input, name string) (string, error) {
	return OutputPath(dir, input, name)
}
