// Package codec reads and writes documents to table files. It is the
// serialization collaborator the history core delegates to: version
// writes, bound-file saves, and restores all go through WriteDocument
// and ReadDocument, keyed by file extension.
package codec

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Codec serializes a document to and from one file format.
type Codec interface {
	// Encode writes the document to a byte slice.
	Encode(doc *core.Document) ([]byte, error)
	// Decode parses bytes into a fresh document. BoundPath and Dirty
	// are left for the caller to set.
	Decode(data []byte) (*core.Document, error)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Codec)
)

// Register adds a codec for a file extension (including the dot).
// Called by codec implementations in their init() functions.
func Register(ext string, c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(ext)] = c
}

// ForPath returns the codec for a path's extension.
func ForPath(path string) (Codec, error) {
	ext := strings.ToLower(fileExt(path))

	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[ext]
	if !ok {
		return nil, &UnknownFormatError{Ext: ext, Available: extensionsLocked()}
	}
	return c, nil
}

// Extensions returns all registered extensions (sorted).
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return extensionsLocked()
}

func extensionsLocked() []string {
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// WriteDocument serializes the document to path using the codec for
// the path's extension.
func WriteDocument(doc *core.Document, path string) error {
	c, err := ForPath(path)
	if err != nil {
		return err
	}

	data, err := c.Encode(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadDocument deserializes path into a fresh document bound to that
// path. Parse failures are reported as *core.DecodeError so callers
// can distinguish corrupt content from plain I/O errors.
func ReadDocument(path string) (*core.Document, error) {
	c, err := ForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	doc, err := c.Decode(data)
	if err != nil {
		return nil, &core.DecodeError{Path: path, Err: err}
	}
	doc.BoundPath = path
	return doc, nil
}

// fileExt returns the extension of the final path element, handling
// the ".grid" compound form used by the YAML codec.
func fileExt(path string) string {
	base := path
	if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i:]
	}
	return ""
}

// UnknownFormatError is returned for a path whose extension has no
// registered codec.
type UnknownFormatError struct {
	Ext       string
	Available []string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unsupported document format %q (supported: %v)", e.Ext, e.Available)
}
