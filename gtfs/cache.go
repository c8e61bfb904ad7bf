package gtfs

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// SerializeIndex encodes an Index with gob.
func SerializeIndex(index *Index) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeIndexToWriter(index, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeIndex decodes an Index written by SerializeIndex.
func DeserializeIndex(data []byte) (*Index, error) {
	return DeserializeIndexFromReader(bytes.NewReader(data))
}

func SerializeIndexToWriter(index *Index, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(index); err != nil {
		return fmt.Errorf("failed to encode gtfs index: %w", err)
	}
	return nil
}

func DeserializeIndexFromReader(r io.Reader) (*Index, error) {
	var index Index
	if err := gob.NewDecoder(r).Decode(&index); err != nil {
		return nil, fmt.Errorf("failed to decode gtfs index: %w", err)
	}
	return &index, nil
}

func SerializeIndexToFile(index *Index, path string) error {
	data, err := SerializeIndex(index)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func DeserializeIndexFromFile(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return DeserializeIndex(data)
}

// LoadIndexCached returns the index cached at cachePath, or parses zipPath
// and writes the cache. An empty cachePath disables caching. A broken cache
// is ignored and rewritten.
func LoadIndexCached(zipPath, agencyID, cachePath string) (*Index, error) {
	if cachePath != "" {
		index, err := DeserializeIndexFromFile(cachePath)
		if err == nil {
			slog.Debug("gtfs index loaded from cache", "path", cachePath)
			return index, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("ignoring gtfs index cache", "path", cachePath, "error", err)
		}
	}

	index, err := NewIndexFromFile(zipPath, agencyID)
	if err != nil {
		return nil, err
	}
	if cachePath != "" {
		if err := SerializeIndexToFile(index, cachePath); err != nil {
			slog.Warn("failed to write gtfs index cache", "path", cachePath, "error", err)
		}
	}
	return index, nil
}
