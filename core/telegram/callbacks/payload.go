package callbacks

import (
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// PayloadSep separates fields inside a callback payload.
const PayloadSep = "|"

// PayloadInt64 parses callback payload as int64.
func PayloadInt64(c tele.Context) (int64, error) {
	return strconv.ParseInt(CallbackPayload(c), 10, 64)
}

// PayloadParts splits the callback payload into exactly n fields.
func PayloadParts(c tele.Context, n int) ([]string, error) {
	return SplitPayload(CallbackPayload(c), n)
}

// SplitPayload splits p on PayloadSep and requires exactly n non-empty fields.
// The last field keeps any remaining separators.
func SplitPayload(p string, n int) ([]string, error) {
	if p == "" || n <= 0 {
		return nil, strconv.ErrSyntax
	}
	parts := strings.SplitN(p, PayloadSep, n)
	if len(parts) != n {
		return nil, strconv.ErrSyntax
	}
	for _, part := range parts {
		if part == "" {
			return nil, strconv.ErrSyntax
		}
	}
	return parts, nil
}

// JoinPayload builds a payload from fields.
func JoinPayload(fields ...string) string {
	return strings.Join(fields, PayloadSep)
}
