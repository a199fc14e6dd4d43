package config

import (
	"fmt"
	"os"
	"strings"
)

// Resolver expands environment variable references in configuration values.
// API keys are stored as templates like "$ANTHROPIC_API_KEY" so the config
// file never holds the secret itself.
type Resolver struct {
	lookup func(string) (string, bool)
}

// NewResolver creates a resolver backed by the process environment.
func NewResolver() *Resolver {
	return &Resolver{lookup: os.LookupEnv}
}

// Resolve expands $VAR and ${VAR} references in value.
// Referencing an unset variable is an error so callers can tell a missing
// credential apart from a literal value.
func (r *Resolver) Resolve(value string) (string, error) {
	if !strings.Contains(value, "$") {
		return value, nil
	}

	var missing []string
	expanded := os.Expand(value, func(name string) string {
		if v, ok := r.lookup(name); ok {
			return v
		}
		missing = append(missing, name)
		return ""
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("environment variable %q not set", missing[0])
	}

	return expanded, nil
}
