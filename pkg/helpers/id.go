package helpers

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const (
	base36Alphabet  = "0123456789abcdefghijklmnopqrstuvwxyz"
	userIDSuffixLen = 9
)

// NewUserID returns an id of the form user_<epoch-millis>_<9 base36 chars>.
// Uniqueness is probabilistic; the users primary key is the only guard.
func NewUserID() string {
	return newUserIDAt(time.Now())
}

func newUserIDAt(t time.Time) string {
	var b strings.Builder
	b.Grow(len("user_") + 13 + 1 + userIDSuffixLen)
	b.WriteString("user_")
	b.WriteString(strconv.FormatInt(t.UnixMilli(), 10))
	b.WriteByte('_')
	for i := 0; i < userIDSuffixLen; i++ {
		b.WriteByte(base36Alphabet[rand.IntN(len(base36Alphabet))])
	}
	return b.String()
}
