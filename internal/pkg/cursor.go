package pkg

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrBadCursor = errors.New("malformed cursor")

// EncodeCursor 把最后一条帖子的 (createdAt, id) 编成不透明游标。
// 带上 id 是为了在同一毫秒创建的帖子之间有稳定的续读点。
func EncodeCursor(createdAt time.Time, id uint64) string {
	raw := fmt.Sprintf("%d:%d", createdAt.UnixMilli(), id)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor 解出游标的时间边界和 id。兼容两种形式：
// base64("millis:id")，以及裸毫秒时间戳（id 记为 0，退化为纯时间边界）。
func DecodeCursor(cursor string) (time.Time, uint64, error) {
	if cursor == "" {
		return time.Time{}, 0, nil
	}

	raw := cursor
	if decoded, err := base64.RawURLEncoding.DecodeString(cursor); err == nil && strings.Contains(string(decoded), ":") {
		raw = string(decoded)
	}

	var millis int64
	var id uint64
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		var err error
		millis, err = strconv.ParseInt(raw[:i], 10, 64)
		if err != nil {
			return time.Time{}, 0, ErrBadCursor
		}
		id, err = strconv.ParseUint(raw[i+1:], 10, 64)
		if err != nil {
			return time.Time{}, 0, ErrBadCursor
		}
	} else {
		var err error
		millis, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, 0, ErrBadCursor
		}
	}
	return time.UnixMilli(millis), id, nil
}
