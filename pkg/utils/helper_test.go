package utils_test

import (
	"testing"
	"time"

	"cinema-tickets/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	assert.Equal(t, 42, utils.ParseInt("42", 1))
	assert.Equal(t, 7, utils.ParseInt("", 7))
	assert.Equal(t, 7, utils.ParseInt("abc", 7))
}

func TestParseTime(t *testing.T) {
	ts := utils.ParseTime("2026-09-01T18:30:00Z")
	require.NotNil(t, ts)
	assert.Equal(t, time.Date(2026, 9, 1, 18, 30, 0, 0, time.UTC), ts.UTC())

	assert.Nil(t, utils.ParseTime("not-a-time"))
	assert.Nil(t, utils.ParseTime(""))
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, utils.CheckPassword("s3cret-pass", hash))
	assert.False(t, utils.CheckPassword("wrong", hash))
}
