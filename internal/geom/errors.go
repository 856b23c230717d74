package geom

import "errors"

// ErrInterpolation indicates the resampling interpolator rejected the
// centerline. Resample returns its input unchanged alongside this error.
var ErrInterpolation = errors.New("geom: interpolation failed")
