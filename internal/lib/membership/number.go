// Package membership generates the human-facing member numbers printed on
// gym cards: the last two digits of the registration year followed by four
// random digits.
package membership

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// ExistsFunc reports whether a candidate number is already taken.
type ExistsFunc func(ctx context.Context, number string) (bool, error)

// maxAttempts bounds the retry loop; with 10000 candidates per year prefix
// running out means the member base outgrew the format.
const maxAttempts = 100

// Generate draws random candidates until one is free according to exists.
func Generate(ctx context.Context, exists ExistsFunc) (string, error) {
	const op = "membership.Generate"

	yearPrefix := time.Now().Format("06")
	for range maxAttempts {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		candidate := fmt.Sprintf("%s%04d", yearPrefix, n.Int64())

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s: no free membership number after %d attempts", op, maxAttempts)
}
