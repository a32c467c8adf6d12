package templates

import (
	"encoding/json"
	"fmt"
)

// Decode binds a flat map of flag values onto a versioned model struct. The
// map keys are schema property names, which the model's json tags mirror.
func Decode(values map[string]interface{}, model interface{}) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode flag values: %w", err)
	}
	if err := json.Unmarshal(raw, model); err != nil {
		return fmt.Errorf("bind flag values: %w", err)
	}
	return nil
}
