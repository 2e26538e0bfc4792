// Package voice holds the per-voice embedding table and the derivation of
// acoustic parameters from embedding vectors. The table is loaded once at
// startup and is read-only afterwards, so it may be shared across
// concurrent synthesis calls without locking.
package voice

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// defaultEmbeddingDim and defaultEmbeddingMag describe the built-in
	// fallback vector used when the table is empty.
	defaultEmbeddingDim = 256
	defaultEmbeddingMag = 0.5
)

// Table maps voice identifiers to fixed-length embedding vectors.
// Immutable after construction.
type Table struct {
	vectors map[string][]float32
	ids     []string // sorted; fixes iteration order for fallback matching
}

// NewTable builds a table from already-decoded vectors. The map is copied;
// the caller may reuse it.
func NewTable(vectors map[string][]float32) *Table {
	t := &Table{
		vectors: make(map[string][]float32, len(vectors)),
		ids:     make([]string, 0, len(vectors)),
	}
	for id, v := range vectors {
		t.vectors[id] = v
		t.ids = append(t.ids, id)
	}
	sort.Strings(t.ids)
	return t
}

// LoadDir reads every .bin file in dir as a voice embedding. The file stem
// is the voice id; the contents are little-endian float32 values. A missing
// directory yields an empty table (zero voices is tolerated — synthesis
// falls back to the built-in default vector).
func LoadDir(dir string) (*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return NewTable(nil), nil
		}
		return nil, fmt.Errorf("read voices dir %q: %w", dir, err)
	}

	vectors := make(map[string][]float32)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".bin") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read voice file %q: %w", entry.Name(), err)
		}
		id := strings.TrimSuffix(entry.Name(), ".bin")
		vectors[id] = decodeEmbedding(data)
	}

	return NewTable(vectors), nil
}

// decodeEmbedding interprets data as a packed sequence of little-endian
// float32 values. Trailing bytes that do not fill a full value are ignored.
func decodeEmbedding(data []byte) []float32 {
	n := len(data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(data[i*4 : i*4+4])
		out[i] = math.Float32frombits(bits)
	}
	return out
}

// Len returns the number of voices in the table.
func (t *Table) Len() int {
	return len(t.ids)
}

// IDs returns the voice identifiers in sorted order.
func (t *Table) IDs() []string {
	return append([]string(nil), t.ids...)
}

// Lookup returns the embedding for an exact id match.
func (t *Table) Lookup(id string) ([]float32, bool) {
	v, ok := t.vectors[id]
	return v, ok
}

// Resolve returns the embedding for id, falling back through the chain:
//
//  1. exact match;
//  2. first id (in sorted order) that contains the requested id as a
//     substring, or that the requested id contains;
//  3. first id in sorted order;
//  4. the built-in default vector.
//
// Sorted-order iteration makes the substring tie-break deterministic.
// Resolve never fails; an unknown id degrades rather than erroring.
func (t *Table) Resolve(id string) []float32 {
	if v, ok := t.vectors[id]; ok {
		return v
	}

	for _, key := range t.ids {
		if strings.Contains(key, id) || strings.Contains(id, key) {
			return t.vectors[key]
		}
	}

	if len(t.ids) > 0 {
		return t.vectors[t.ids[0]]
	}

	return defaultEmbedding()
}

func defaultEmbedding() []float32 {
	v := make([]float32, defaultEmbeddingDim)
	for i := range v {
		v[i] = defaultEmbeddingMag
	}
	return v
}
