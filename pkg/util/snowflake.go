package util

import (
	"fmt"
	"strconv"
	"time"
)

// discordEpochMS is the Discord snowflake epoch (2015-01-01T00:00:00Z).
const discordEpochMS = 1420070400000

// SnowflakeTime extracts the creation time embedded in a snowflake ID.
// Malformed IDs yield the zero time.
func SnowflakeTime(id string) time.Time {
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return time.Time{}
	}
	return time.UnixMilli(int64(n>>22) + discordEpochMS)
}

// ParseSnowflake validates and parses a snowflake ID.
func ParseSnowflake(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	return n, nil
}
