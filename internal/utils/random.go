// internal/utils/random.go

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// RandomIntN returns a uniformly distributed integer in [0, n).
func RandomIntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("RandomIntN: n must be positive, got %d", n)
	}
	num, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(num.Int64()), nil
}
