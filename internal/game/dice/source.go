package dice

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"sync"
)

// NewCryptoSource returns a Source drawing from crypto/rand. Used for live play.
func NewCryptoSource() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

// Intn returns a uniform value in [0, n).
//
// Precondition: n > 0.
func (cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice.cryptoSource.Intn: precondition violated: n must be > 0")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("dice.cryptoSource.Intn: crypto/rand failure: %v", err))
	}
	return int(v.Int64())
}

// NewSeededSource returns a deterministic Source for replaying a session.
// It is safe for concurrent use.
func NewSeededSource(seed uint64) Source {
	return &seededSource{rng: mrand.New(mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type seededSource struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// Intn returns a pseudo-random value in [0, n).
//
// Precondition: n > 0.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("dice.seededSource.Intn: precondition violated: n must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.IntN(n)
}
