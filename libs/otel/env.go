package otelx

import (
	"os"
	"strings"
)

// lookupEnv is swapped in tests.
var lookupEnv = os.LookupEnv

func getenv(key, fallback string) string {
	if v, ok := lookupEnv(key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(getenv(key, "")) {
	case "":
		return fallback
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}
