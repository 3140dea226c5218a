// config_keys.go provides key-value access to configuration settings.
//
// Separated from config.go to isolate the key enumeration and string-based
// get/set logic. This separation allows config.go to focus on YAML structure
// and loading, while this file handles the MCP and CLI interface where config
// is accessed by string keys (e.g., "limits.max_content").
//
// Design: Pointers are used for optional fields so we can distinguish between
// "not set" (nil) and "explicitly set to zero/false". This enables proper
// defaulting - we only apply defaults when the user hasn't set a value.

package config

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// ValidKeys returns all valid configuration keys.
func ValidKeys() []string {
	return []string{
		"author.name", "author.email",
		"ai.default_provider", "ai.default_model", "ai.timeout_seconds",
		"sync.watch", "sync.debounce_ms",
		"limits.max_content", "limits.max_line_length",
	}
}

// IsValidKey returns true if the key is a valid configuration key.
func IsValidKey(key string) bool {
	return slices.Contains(ValidKeys(), key)
}

// Get returns the value of a configuration key as a string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "author.name":
		return c.Author.Name, nil
	case "author.email":
		return c.Author.Email, nil
	case "ai.default_provider":
		return c.AI.DefaultProvider, nil
	case "ai.default_model":
		return c.AI.DefaultModel, nil
	case "ai.timeout_seconds":
		return strconv.Itoa(c.TimeoutSeconds()), nil
	case "sync.watch":
		if c.WatchEnabled() {
			return "true", nil
		}
		return "false", nil
	case "sync.debounce_ms":
		return strconv.Itoa(c.DebounceMS()), nil
	case "limits.max_content":
		return strconv.FormatInt(c.MaxContent(), 10), nil
	case "limits.max_line_length":
		return strconv.Itoa(c.MaxLineLength()), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// Set sets the value of a configuration key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "author.name":
		c.Author.Name = value
	case "author.email":
		c.Author.Email = value
	case "ai.default_provider":
		c.AI.DefaultProvider = value
	case "ai.default_model":
		c.AI.DefaultModel = value
	case "ai.timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: ai.timeout_seconds must be a positive integer", ErrInvalidValue)
		}
		c.AI.TimeoutSeconds = &n
	case "sync.watch":
		v := strings.ToLower(value)
		if v != "true" && v != "false" {
			return fmt.Errorf("%w: sync.watch must be true or false", ErrInvalidValue)
		}
		b := v == "true"
		c.Sync.Watch = &b
	case "sync.debounce_ms":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: sync.debounce_ms must be a non-negative integer", ErrInvalidValue)
		}
		c.Sync.DebounceMS = &n
	case "limits.max_content":
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limits.max_content must be a positive integer", ErrInvalidValue)
		}
		c.Limits.MaxContent = &n
	case "limits.max_line_length":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: limits.max_line_length must be a positive integer", ErrInvalidValue)
		}
		c.Limits.MaxLineLength = &n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// All returns all configuration values as a map.
func (c *Config) All() map[string]string {
	return map[string]string{
		"author.name":         c.Author.Name,
		"author.email":        c.Author.Email,
		"ai.default_provider": c.AI.DefaultProvider,
		"ai.default_model":    c.AI.DefaultModel,
		"ai.timeout_seconds":  strconv.Itoa(c.TimeoutSeconds()),
		"sync.watch":          strconv.FormatBool(c.WatchEnabled()),
		"sync.debounce_ms":    strconv.Itoa(c.DebounceMS()),
		"limits.max_content":     strconv.FormatInt(c.MaxContent(), 10),
		"limits.max_line_length": strconv.Itoa(c.MaxLineLength()),
	}
}

// IsSet returns true if the key has an explicit value (not just defaults).
func (c *Config) IsSet(key string) bool {
	switch key {
	case "author.name":
		return c.Author.Name != ""
	case "author.email":
		return c.Author.Email != ""
	case "ai.default_provider":
		return c.AI.DefaultProvider != ""
	case "ai.default_model":
		return c.AI.DefaultModel != ""
	case "ai.timeout_seconds":
		return c.AI.TimeoutSeconds != nil
	case "sync.watch":
		return c.Sync.Watch != nil
	case "sync.debounce_ms":
		return c.Sync.DebounceMS != nil
	case "limits.max_content":
		return c.Limits.MaxContent != nil
	case "limits.max_line_length":
		return c.Limits.MaxLineLength != nil
	default:
		return false
	}
}
