// Package network holds the channel arena and the per-tick policy that
// advances it.
//
// Channels live in a [Network] and are addressed by [ID]. Lineage is kept
// as explicit parent/child ids on the arena entries; channels never hold
// pointers to each other.
//
// A [Stepper] advances every active channel once per tick: decay check,
// growth or map-limit freeze, migration, then the bifurcation check.
// Children created by branching join the network at the end of the tick and
// are first advanced on the next one.
//
// # Determinism
//
// The stepper draws one seed per active channel from its own *rand.Rand
// before any work starts. Decay, growth and migration may then run on
// several goroutines; branching is applied sequentially in arena order.
// A run is fully determined by the stepper seed, whatever the worker count.
package network
