package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AskVars prompts for each key and returns vars extended with the answers.
// Answers are decoded as YAML scalars, so "3" becomes an int and "yes" a
// bool. Existing values are offered as defaults.
func AskVars(ctx context.Context, driver Driver, keys []string, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars)+len(keys))
	for key, value := range vars {
		out[key] = value
	}
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		var fallback string
		if value, ok := out[key]; ok && value != nil {
			fallback = fmt.Sprint(value)
		}
		answer, err := driver.Input(ctx, InputConfig{
			Message: key + ":",
			Default: fallback,
		})
		if err != nil {
			return nil, err
		}
		out[key] = decodeScalar(answer)
	}
	return out, nil
}

// ChooseTemplate asks the user to pick one of names.
func ChooseTemplate(ctx context.Context, driver Driver, names []string) (string, error) {
	if len(names) == 0 {
		return "", errors.New("prompt: no templates to choose from")
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:  "Template:",
		Options:  names,
		PageSize: 15,
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(names) {
		return "", fmt.Errorf("prompt: invalid selection %d", idx)
	}
	return names[idx], nil
}

func decodeScalar(answer string) any {
	var value any
	if err := yaml.Unmarshal([]byte(answer), &value); err != nil || value == nil {
		return answer
	}
	switch value.(type) {
	case map[string]any, []any:
		return answer
	}
	return value
}
