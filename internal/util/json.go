package util

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// ReadJsonConfig reads a JSON file that may contain comments and trailing
// commas. When validate is non-nil it sees the cleaned document first.
func ReadJsonConfig(abspath string, v any, validate func([]byte) error) error {
	bs, err := os.ReadFile(abspath)

	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", abspath, err)
	}

	bs = jsonc.ToJSONInPlace(bs)

	if validate != nil {
		if err := validate(bs); err != nil {
			return fmt.Errorf("error reading %s: %w", abspath, err)
		}
	}

	if err := json.Unmarshal(bs, v); err != nil {
		return fmt.Errorf("error reading %s: failed to parse json: %w", abspath, err)
	}

	return nil
}
