// Package geom provides the numerical routines that operate on a channel
// centerline.
//
// A centerline is an ordered slice of [Point] running upstream to
// downstream. The package covers:
//
//   - [Curvature]: signed finite-difference curvature at every point
//   - [Smooth]: boundary-truncated moving average
//   - [WeightedCurvature]: upstream-integrated curvature with exponential decay
//   - [MigrationNormals]: unit normals used to displace the centerline
//   - [Resample]: arc-length resampling to a target spacing
//
// All functions are pure and allocate their results; inputs are never
// modified.
package geom
