package gacha

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource supplies the uniform variates the draw engine samples from.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

// cryptoSource reads entropy from crypto/rand. Used for all production draws.
type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits give a uniform double in [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultSource returns the crypto/rand-backed source.
func DefaultSource() RandomSource { return cryptoSource{} }

type seededSource struct{ r *rand.Rand }

// NewSeededSource returns a reproducible PCG source for tests and
// statistical verification.
func NewSeededSource(seed uint64) RandomSource {
	return &seededSource{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededSource) Float64() float64 { return s.r.Float64() }
