// Package rng provides the pseudorandom stream used by the pricing kernel.
//
// Xoshiro256PlusPlus is not safe for concurrent use and not suitable for
// cryptographic purposes. Each worker owns its own instance.
package rng

import "math/bits"

// jumpPoly advances the state by 2^128 calls to Next.
var jumpPoly = [4]uint64{
	0x180ec6d33cfd0ebb,
	0xd5a61266f0c9392c,
	0xa9582618e03fc9aa,
	0x39abdc4529b1661c,
}

// Xoshiro256PlusPlus is a 256-bit state xoshiro256++ generator.
type Xoshiro256PlusPlus struct {
	s [4]uint64
}

// New returns a generator whose state is expanded from seed.
// Every seed, including 0, yields a usable non-zero state.
func New(seed uint64) *Xoshiro256PlusPlus {
	g := &Xoshiro256PlusPlus{}
	g.Seed(seed)
	return g
}

// Seed resets the state from seed by chaining SplitMix64 four times.
func (g *Xoshiro256PlusPlus) Seed(seed uint64) {
	z := seed
	for i := range g.s {
		z = SplitMix64(z)
		g.s[i] = z
	}
}

// Next returns the next 64-bit value of the stream.
func (g *Xoshiro256PlusPlus) Next() uint64 {
	s := &g.s
	result := bits.RotateLeft64(s[0]+s[3], 23) + s[0]
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)

	return result
}

// Uint64 makes the generator a math/rand/v2 Source.
func (g *Xoshiro256PlusPlus) Uint64() uint64 {
	return g.Next()
}

// Jump advances the state as if Next had been called 2^128 times.
func (g *Xoshiro256PlusPlus) Jump() {
	var s0, s1, s2, s3 uint64
	for _, word := range jumpPoly {
		for b := 0; b < 64; b++ {
			if word&(uint64(1)<<uint(b)) != 0 {
				s0 ^= g.s[0]
				s1 ^= g.s[1]
				s2 ^= g.s[2]
				s3 ^= g.s[3]
			}
			g.Next()
		}
	}
	g.s = [4]uint64{s0, s1, s2, s3}
}

// State returns a copy of the internal state.
func (g *Xoshiro256PlusPlus) State() [4]uint64 {
	return g.s
}

// Clone returns an independent generator positioned at the same state.
func (g *Xoshiro256PlusPlus) Clone() *Xoshiro256PlusPlus {
	return &Xoshiro256PlusPlus{s: g.s}
}
