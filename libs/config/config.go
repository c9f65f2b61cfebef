// Package config reads service settings from the environment. Getters that can
// fail return an error naming the variable so callers can report every bad
// setting at once.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

func raw(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func invalid(key, want, got string) error {
	return fmt.Errorf("%s must be %s (got %q)", key, want, got)
}

func String(key, fallback string) string {
	if v := raw(key); v != "" {
		return v
	}
	return fallback
}

func RequiredString(key string) (string, error) {
	v := raw(key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}

func Port(key, fallback string) (string, error) {
	v := String(key, fallback)
	if p, err := strconv.Atoi(v); err != nil || p < 1 || p > 65535 {
		return "", invalid(key, "a valid TCP port", v)
	}
	return v, nil
}

// PositiveInt returns fallback when key is unset; set values must be > 0.
func PositiveInt(key string, fallback int) (int, error) {
	return intAtLeast(key, fallback, 1, "a positive integer")
}

// NonNegativeInt is PositiveInt that also accepts 0.
func NonNegativeInt(key string, fallback int) (int, error) {
	return intAtLeast(key, fallback, 0, "a non-negative integer")
}

func intAtLeast(key string, fallback, min int, want string) (int, error) {
	v := raw(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < min {
		return 0, invalid(key, want, v)
	}
	return n, nil
}

// Duration accepts Go duration syntax ("10s", "1m30s").
func Duration(key string, fallback time.Duration) (time.Duration, error) {
	v := raw(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, invalid(key, "a positive duration", v)
	}
	return d, nil
}

func Bool(key string, fallback bool) bool {
	switch strings.ToLower(raw(key)) {
	case "":
		return fallback
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func List(key, fallback string) []string {
	var out []string
	for _, item := range strings.Split(String(key, fallback), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
