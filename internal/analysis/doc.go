// Package analysis runs ensembles of seeded trials to check the statistics
// of the stochastic network rules.
//
//   - [BranchFrequency]: observed bifurcation rate against the mean
//     probability predicted by a branch model
//
// # Concurrency
//
// Trials are independent and fan out over an errgroup bounded by
// FrequencyConfig.Workers. Each trial owns its generator, network and
// recording model, so results do not depend on scheduling.
package analysis
