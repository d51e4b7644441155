package console

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
)

// SettingsQuestion asks for a value for every scalar leaf of a settings tree.
// The result has the same keys and nesting as settings; nested hashes are
// walked recursively, lists and empty hashes are kept as they are, and each
// answer is converted back to the type of its default.
func (c *IO) SettingsQuestion(settings map[string]any) (map[string]any, error) {
	values := make(map[string]any, len(settings))

	keys := make([]string, 0, len(settings))
	for key := range settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		def := settings[key]

		switch typed := def.(type) {
		case map[string]any:
			if len(typed) == 0 {
				values[key] = map[string]any{}
				continue
			}

			c.Comment(fmt.Sprintf("Recursing into %q setting hash.", key))
			nested, err := c.SettingsQuestion(typed)
			if err != nil {
				return nil, err
			}
			c.Comment(fmt.Sprintf("%q setting hash recursing end.", key))
			values[key] = nested

		case []any:
			values[key] = typed

		default:
			value, err := c.settingQuestion(key, def)
			if err != nil {
				return nil, err
			}
			values[key] = value
		}
	}

	return values, nil
}

func (c *IO) settingQuestion(key string, def any) (any, error) {
	answer, err := c.AskEmpty(
		fmt.Sprintf("Value for %q setting", key),
		cast.ToString(def),
		func(answer string) (string, error) {
			if _, err := coerceSetting(def, answer); err != nil {
				return "", fmt.Errorf("Value for %q must be a %T: %w", key, def, err)
			}
			return answer, nil
		},
	)
	if err != nil {
		return nil, err
	}

	if answer == "" && def == nil {
		return nil, nil
	}
	return coerceSetting(def, answer)
}

// coerceSetting converts an answer to the scalar kind of the default
func coerceSetting(def any, answer string) (any, error) {
	switch def.(type) {
	case bool:
		return cast.ToBoolE(answer)
	case int:
		return cast.ToIntE(answer)
	case int64:
		return cast.ToInt64E(answer)
	case float32, float64:
		return cast.ToFloat64E(answer)
	default:
		return answer, nil
	}
}
