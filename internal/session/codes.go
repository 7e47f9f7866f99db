// internal/session/codes.go
//
// Room codes: short, human-typable session identifiers. Six characters
// drawn from an uppercase alphanumeric subset with the visually ambiguous
// characters (0/O, 1/I/L) removed. Generation retries against the store
// on the off chance of a collision.

package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fishbowlhq/go-server/internal/store"
)

const (
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
)

// NewCode returns a random room code. Rejection sampling keeps the
// character distribution uniform.
func NewCode() string {
	const max = byte(255 - (256 % len(codeAlphabet)))

	out := make([]byte, 0, CodeLength)
	buf := make([]byte, CodeLength*2)
	for {
		if _, err := rand.Read(buf); err != nil {
			panic(err)
		}
		for _, b := range buf {
			if b <= max {
				out = append(out, codeAlphabet[int(b)%len(codeAlphabet)])
				if len(out) == CodeLength {
					return string(out)
				}
			}
		}
	}
}

// newRoomCode generates a code not already present in the store.
func newRoomCode(ctx context.Context, st store.SessionStore) (string, error) {
	for attempt := 0; attempt < 10; attempt++ {
		code := NewCode()
		_, err := st.Get(ctx, code)
		if errors.Is(err, store.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check code %s: %w", code, err)
		}
	}
	return "", errors.New("could not find a free room code")
}
