package lustre

import (
	"math/rand"
	"strconv"

	"github.com/gsi-hpc/ostbalance/pkg/types"
)

// DefaultSyntheticTargets is the size of the synthetic OST set produced by
// the random sampler.
const DefaultSyntheticTargets = 10

// RandomSampler produces pseudo-random fill levels between 40 and 60 percent
// for a fixed set of synthetic targets named "0", "1", ... so the daemon can
// run without a Lustre filesystem.
type RandomSampler struct {
	targets int
}

// NewRandomSampler creates a sampler for the given number of synthetic
// targets; values below one fall back to the default set size.
func NewRandomSampler(targets int) *RandomSampler {
	if targets < 1 {
		targets = DefaultSyntheticTargets
	}
	return &RandomSampler{targets: targets}
}

// Sample returns a fresh random utilization for every synthetic target.
func (s *RandomSampler) Sample() (types.FillLevels, error) {
	levels := make(types.FillLevels, s.targets)
	for i := 0; i < s.targets; i++ {
		levels[strconv.Itoa(i)] = 40 + rand.Intn(21)
	}
	return levels, nil
}
