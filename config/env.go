package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// IntFromEnv reads an integer, returning defaultValue when the variable is
// unset or blank.
func IntFromEnv(key string, defaultValue int) (int, error) {
	rawValue, ok := lookup(key)
	if !ok {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return 0, fmt.Errorf("invalid int env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// Float64FromEnv reads a float, returning defaultValue when the variable is
// unset or blank.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	rawValue, ok := lookup(key)
	if !ok {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float64 env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// BoolFromEnv reads a boolean (true/1/yes/y, false/0/no/n).
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	rawValue, ok := lookup(key)
	if !ok {
		return defaultValue, nil
	}

	switch strings.ToLower(rawValue) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool env %s=%q", key, rawValue)
	}
}

// StringFromEnv reads a trimmed string.
func StringFromEnv(key string, defaultValue string) string {
	rawValue, ok := lookup(key)
	if !ok {
		return defaultValue
	}
	return rawValue
}

// lookup returns the trimmed value of key; blank counts as unset.
func lookup(key string) (string, bool) {
	rawValue, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return "", false
	}
	return rawValue, true
}
