package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnv reads the configured env files in order; later files win. Missing
// files are skipped. With a non-empty EnvPrefix only matching keys are kept,
// and matching variables of the process environment override the files.
func (c *Config) LoadEnv() (map[string]string, error) {
	env := make(map[string]string)
	for _, name := range c.EnvFiles {
		path := c.Abs(name)
		vals, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("%s: failed to read env file: %w", path, err)
		}
		maps.Copy(env, vals)
	}
	if c.EnvPrefix == "" {
		return env, nil
	}
	for k := range env {
		if !strings.HasPrefix(k, c.EnvPrefix) {
			delete(env, k)
		}
	}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if ok && strings.HasPrefix(k, c.EnvPrefix) {
			env[k] = v
		}
	}
	return env, nil
}

// Defines returns the define values with env variables merged in as string
// literals. Explicit define entries take precedence.
func (c *Config) Defines() (map[string]any, error) {
	env, err := c.LoadEnv()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(c.Define)+len(env))
	for k, v := range env {
		out[k] = strconv.Quote(v)
	}
	maps.Copy(out, c.Define)
	return out, nil
}
