// Package lustre samples per-OST capacity utilization.
package lustre

import "github.com/gsi-hpc/ostbalance/pkg/types"

// Sampler returns a fresh utilization sample covering every known storage
// target. Implementations decide where the numbers come from; the generator
// only consumes the resulting mapping.
type Sampler interface {
	Sample() (types.FillLevels, error)
}
