package extensions

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"

	"github.com/flosch/pongo2/v6"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-pongoview/pkg/environment"
)

// Utils exposes encoding helpers.
type Utils struct{}

// Name implements environment.Extension.
func (Utils) Name() string { return "utils" }

// Functions implements environment.Extension.
func (Utils) Functions(*environment.Environment) map[string]any {
	return map[string]any{
		"serialize": func(value any) (string, error) {
			raw, err := json.Marshal(value)
			return string(raw), err
		},
		"unserialize": func(value any) (any, error) {
			var out any
			if err := json.Unmarshal([]byte(str(value)), &out); err != nil {
				return nil, err
			}
			return out, nil
		},
	}
}

// Filters implements environment.Extension.
func (Utils) Filters() map[string]pongo2.FilterFunction {
	return map[string]pongo2.FilterFunction{
		"json_encode": filter("json_encode", func(in, _ *pongo2.Value) (any, error) {
			raw, err := json.Marshal(in.Interface())
			if err != nil {
				return nil, err
			}
			return pongo2.AsSafeValue(string(raw)), nil
		}),
		"json_decode": filter("json_decode", func(in, _ *pongo2.Value) (any, error) {
			var out any
			if err := json.Unmarshal([]byte(in.String()), &out); err != nil {
				return nil, err
			}
			return out, nil
		}),
		"yaml_encode": filter("yaml_encode", func(in, _ *pongo2.Value) (any, error) {
			raw, err := yaml.Marshal(in.Interface())
			if err != nil {
				return nil, err
			}
			return string(raw), nil
		}),
		"base64_encode": stringFilter(func(s string) string {
			return base64.StdEncoding.EncodeToString([]byte(s))
		}),
		"base64_decode": filter("base64_decode", func(in, _ *pongo2.Value) (any, error) {
			raw, err := base64.StdEncoding.DecodeString(in.String())
			if err != nil {
				return nil, err
			}
			return string(raw), nil
		}),
		"md5": stringFilter(func(s string) string {
			sum := md5.Sum([]byte(s))
			return hex.EncodeToString(sum[:])
		}),
	}
}
