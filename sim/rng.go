package sim

import (
	"hash/fnv"
	"math/rand"
)

// StreamPatients is the stream that draws every patient trajectory. It is
// seeded with the run seed itself, so a seed reproduces the same patients.
const StreamPatients = "patients"

// Streams hands out one independent random stream per consumer, all derived
// from a single run seed. Draws on one stream never shift another.
//
// Not safe for concurrent use.
type Streams struct {
	seed    int64
	streams map[string]*rand.Rand
}

// NewStreams creates the streams for a run seed.
func NewStreams(seed int64) *Streams {
	return &Streams{seed: seed, streams: make(map[string]*rand.Rand)}
}

// Seed returns the run seed.
func (s *Streams) Seed() int64 { return s.seed }

// Stream returns the named stream, creating it on first use. StreamPatients
// is seeded with the run seed; any other name with the run seed XOR the
// FNV-1a hash of the name.
func (s *Streams) Stream(name string) *rand.Rand {
	if r, ok := s.streams[name]; ok {
		return r
	}
	seed := s.seed
	if name != StreamPatients {
		h := fnv.New64a()
		_, _ = h.Write([]byte(name))
		seed ^= int64(h.Sum64())
	}
	r := rand.New(rand.NewSource(seed))
	s.streams[name] = r
	return r
}
