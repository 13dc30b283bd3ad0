package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

func GetEnvironmentVariables() map[string]string {
	environmentVariables := map[string]string{}

	for _, variable := range os.Environ() {
		pair := strings.SplitN(variable, "=", 2)
		if len(pair) != 2 {
			continue
		}

		environmentVariables[pair[0]] = pair[1]
	}

	return environmentVariables
}

// EnvironmentString returns env[key] or the fallback when it is unset or empty
func EnvironmentString(env map[string]string, key string, fallback string) string {
	if value := env[key]; value != "" {
		return value
	}

	return fallback
}

func EnvironmentInt(env map[string]string, key string, fallback int) (int, error) {
	value := env[key]
	if value == "" {
		return fallback, nil
	}

	return strconv.Atoi(value)
}

// EnvironmentDuration accepts Go duration strings ("30s") or a bare number of milliseconds
func EnvironmentDuration(env map[string]string, key string, fallback time.Duration) (time.Duration, error) {
	value := env[key]
	if value == "" {
		return fallback, nil
	}

	if milliseconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(milliseconds) * time.Millisecond, nil
	}

	return time.ParseDuration(value)
}
