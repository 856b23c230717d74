// Package channel implements a single evolving river channel.
//
// A [Channel] owns its centerline and physical parameters and exposes the
// operations that advance it:
//
//   - [Channel.Grow]: extend the tip with directional persistence and
//     sea-boundary steering
//   - [Channel.Migrate]: curvature-driven lateral migration followed by
//     resampling and cutoff detection
//   - [Channel.CheckCutoffs]: neck cutoff of self-approaching loops into
//     [OxbowLake] records
//   - [Channel.Branch]: split into two area-conserving children
//
// # State Machine
//
// A channel starts Active and moves to exactly one terminal state:
// Branched, Decayed or ReachedLimit. Terminal channels are frozen; every
// mutating method is a no-op on them.
//
// # Randomness
//
// Operations that draw random numbers take an explicit *rand.Rand so runs
// are reproducible from a seed.
//
// # Thread Safety
//
// Channel instances are NOT thread-safe. Distinct channels share no state
// and may be advanced from different goroutines.
package channel
