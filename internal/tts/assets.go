package tts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ErrMissingAsset marks a required bundle file that is absent at
// initialization. The engine cannot be constructed without it.
var ErrMissingAsset = errors.New("required asset missing")

// bundle holds the decoded startup assets: engine metadata from
// config.json and tokenizer metadata from tokenizer.json. Both files are
// required; voices are loaded separately and may be empty.
type bundle struct {
	config    map[string]any
	tokenizer map[string]any
}

func loadBundle(assetsDir string) (*bundle, error) {
	cfg, err := loadJSONAsset(filepath.Join(assetsDir, "config.json"))
	if err != nil {
		return nil, err
	}
	tok, err := loadJSONAsset(filepath.Join(assetsDir, "tokenizer.json"))
	if err != nil {
		return nil, err
	}
	return &bundle{config: cfg, tokenizer: tok}, nil
}

func loadJSONAsset(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingAsset, path)
		}
		return nil, fmt.Errorf("read asset %q: %w", path, err)
	}

	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode asset %q: %w", path, err)
	}
	return out, nil
}

// configKeys returns the top-level keys of the engine config in sorted
// order, for status reporting.
func (b *bundle) configKeys() []string {
	keys := make([]string, 0, len(b.config))
	for k := range b.config {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
