package util

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewULID_Monotonic(t *testing.T) {
	prev := NewULID()
	assert.True(t, IsULID(prev))
	for i := 0; i < 100; i++ {
		next := NewULID()
		assert.Len(t, next, 26)
		assert.Greater(t, next, prev)
		prev = next
	}
	assert.False(t, IsULID("not-a-ulid"))
}

func TestNullHelpers(t *testing.T) {
	assert.Equal(t, sql.NullString{}, StringToNullString(""))
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, StringToNullString("x"))
	assert.Equal(t, "", NullStringToString(sql.NullString{}))
	assert.Equal(t, "x", NullStringToString(sql.NullString{String: "x", Valid: true}))

	assert.Equal(t, sql.NullTime{}, TimeToNullTime(time.Time{}))
	now := time.Now()
	assert.Equal(t, sql.NullTime{Time: now, Valid: true}, TimeToNullTime(now))
	assert.Nil(t, NullTimeToPtr(sql.NullTime{}))
	assert.Equal(t, now, *NullTimeToPtr(sql.NullTime{Time: now, Valid: true}))
}
