package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvironmentHelpers(t *testing.T) {
	t.Setenv("COUNTDOWN_TEST_VALUE", "a=b")

	env := GetEnvironmentVariables()
	assert.Equal(t, "a=b", env["COUNTDOWN_TEST_VALUE"])

	assert.Equal(t, "fallback", EnvironmentString(env, "COUNTDOWN_TEST_MISSING", "fallback"))
	assert.Equal(t, "a=b", EnvironmentString(env, "COUNTDOWN_TEST_VALUE", "fallback"))

	env = map[string]string{"INT": "7", "BAD": "seven", "MS": "16", "DUR": "30s"}

	n, err := EnvironmentInt(env, "INT", 1)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	n, err = EnvironmentInt(env, "MISSING", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = EnvironmentInt(env, "BAD", 1)
	assert.Error(t, err)

	d, err := EnvironmentDuration(env, "MS", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 16*time.Millisecond, d)

	d, err = EnvironmentDuration(env, "DUR", time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)

	d, err = EnvironmentDuration(env, "MISSING", time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)
}
