// Package config loads service definitions from YAML files.
//
// Every top-level key of the document becomes a plain value service; nested
// mappings stay as map[string]any so they can be injected by path:
//
//	api:
//	  url: ${API_URL}
//	  retries: 3
//
// makes "api.url" and "api.retries" available to injectable definitions.
// ${VAR} references are expanded before parsing, from the given env files
// first and then from the process environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xraph/crate"
)

// Load reads a YAML definitions file. envFiles are read with godotenv and
// take precedence over the process environment; missing env files are an
// error.
func Load(path string, envFiles ...string) (crate.Definitions, error) {
	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		path = abs
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	env := map[string]string{}
	if len(envFiles) > 0 {
		env, err = godotenv.Read(envFiles...)
		if err != nil {
			return nil, fmt.Errorf("failed to read env files: %w", err)
		}
	}

	return Parse(data, env)
}

// Parse decodes YAML data into definitions after expanding ${VAR}
// references. Variables are looked up in env, then in the process
// environment; unknown variables expand to the empty string.
func Parse(data []byte, env map[string]string) (crate.Definitions, error) {
	expanded := os.Expand(string(data), func(key string) string {
		if v, ok := env[key]; ok {
			return v
		}

		return os.Getenv(key)
	})

	var raw map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	defs := make(crate.Definitions, len(raw))
	for name, value := range raw {
		defs[name] = crate.Value(value)
	}

	return defs, nil
}
