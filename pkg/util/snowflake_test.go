package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflakeTime(t *testing.T) {
	// 175928847299117063 is the documented example snowflake, created
	// 2016-04-30 11:18:25.796 UTC.
	ts := SnowflakeTime("175928847299117063")
	expected := time.Date(2016, 4, 30, 11, 18, 25, 796_000_000, time.UTC)
	assert.True(t, ts.Equal(expected), "got %v", ts)
}

func TestSnowflakeTimeMalformed(t *testing.T) {
	assert.True(t, SnowflakeTime("not-a-number").IsZero())
	assert.True(t, SnowflakeTime("").IsZero())
}

func TestParseSnowflake(t *testing.T) {
	n, err := ParseSnowflake("175928847299117063")
	require.NoError(t, err)
	assert.Equal(t, uint64(175928847299117063), n)

	_, err = ParseSnowflake("abc")
	assert.Error(t, err)
}
