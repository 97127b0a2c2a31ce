package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.UnixMilli(1_700_000_123_456)
	cursor := EncodeCursor(at, 42)

	gotAt, gotID, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.True(t, gotAt.Equal(at))
	assert.Equal(t, uint64(42), gotID)
}

func TestDecodeCursorEmpty(t *testing.T) {
	at, id, err := DecodeCursor("")
	require.NoError(t, err)
	assert.True(t, at.IsZero())
	assert.Zero(t, id)
}

// 裸毫秒时间戳是老客户端的游标格式，id 退化为 0
func TestDecodeCursorBareMillis(t *testing.T) {
	at, id, err := DecodeCursor("1700000123456")
	require.NoError(t, err)
	assert.True(t, at.Equal(time.UnixMilli(1_700_000_123_456)))
	assert.Zero(t, id)
}

func TestDecodeCursorMalformed(t *testing.T) {
	for _, cursor := range []string{"not-a-cursor", "abc:def", "12:34:56x"} {
		_, _, err := DecodeCursor(cursor)
		assert.ErrorIs(t, err, ErrBadCursor, "cursor %q", cursor)
	}
}
