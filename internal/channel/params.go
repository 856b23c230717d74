package channel

import (
	"fmt"
	"math"
)

const (
	DefaultWidth                = 60.0
	DefaultDt                   = 1.0
	DefaultSpacing              = 35.0
	DefaultMigrationCoefficient = 1.0
	DefaultFriction             = 0.05
	DefaultSeaBoundaryX         = 6000.0
)

// Growth and migration tunables.
const (
	lookback       = 5
	growthNoise    = 0.08 // rad
	maxBias        = 0.45
	biasWidthScale = 200.0
	coastBand      = 300.0
	minStep        = 1.2
	directionAlpha = 0.05

	minMigratePoints = 10
	smoothWindow     = 5
	anchorPoints     = 15
	tailFraction     = 0.35
	seaRelaxWindow   = 120.0
	seaDamping       = 0.3
	relaxBoost       = 1.3

	minCutoffPoints = 20
	cutoffScanStart = 10
	cutoffScanStep  = 2
	cutoffRadius    = 0.7
	minLoopSpan     = 15

	minBranchPoints = 5
	childLength     = 0.2
)

// Params holds the physical parameters of a channel.
type Params struct {
	Width                float64
	Dt                   float64
	Spacing              float64
	MigrationCoefficient float64
	Friction             float64
	SeaBoundaryX         float64
}

func DefaultParams() Params {
	return Params{
		Width:                DefaultWidth,
		Dt:                   DefaultDt,
		Spacing:              DefaultSpacing,
		MigrationCoefficient: DefaultMigrationCoefficient,
		Friction:             DefaultFriction,
		SeaBoundaryX:         DefaultSeaBoundaryX,
	}
}

func (p Params) Validate() error {
	if p.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %g", ErrInvalidConfig, p.Width)
	}
	if p.Spacing <= 0 {
		return fmt.Errorf("%w: spacing must be positive, got %g", ErrInvalidConfig, p.Spacing)
	}
	if p.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %g", ErrInvalidConfig, p.Dt)
	}
	if p.Friction < 0 {
		return fmt.Errorf("%w: friction must be non-negative, got %g", ErrInvalidConfig, p.Friction)
	}
	return nil
}

// BranchGeometry holds the uniform ranges sampled when a channel splits.
// Angles are in radians. Spread is the full opening angle between the two
// children; Tilt rotates the pair as a whole.
type BranchGeometry struct {
	SpreadMin, SpreadMax float64
	TiltMin, TiltMax     float64
	RatioMin, RatioMax   float64
	// CoefficientJitter perturbs each child's migration coefficient by a
	// multiplier drawn from [1-j, 1+j].
	CoefficientJitter float64
}

func DefaultBranchGeometry() BranchGeometry {
	return BranchGeometry{
		SpreadMin:         30 * math.Pi / 180,
		SpreadMax:         60 * math.Pi / 180,
		TiltMin:           -15 * math.Pi / 180,
		TiltMax:           15 * math.Pi / 180,
		RatioMin:          0.3,
		RatioMax:          0.7,
		CoefficientJitter: 0.2,
	}
}

func (g BranchGeometry) Validate() error {
	if g.SpreadMin < 0 || g.SpreadMax < g.SpreadMin {
		return fmt.Errorf("%w: spread range [%g, %g]", ErrInvalidConfig, g.SpreadMin, g.SpreadMax)
	}
	if g.TiltMax < g.TiltMin {
		return fmt.Errorf("%w: tilt range [%g, %g]", ErrInvalidConfig, g.TiltMin, g.TiltMax)
	}
	if g.RatioMin <= 0 || g.RatioMax >= 1 || g.RatioMax < g.RatioMin {
		return fmt.Errorf("%w: ratio range must lie inside (0, 1), got [%g, %g]", ErrInvalidConfig, g.RatioMin, g.RatioMax)
	}
	if g.CoefficientJitter < 0 || g.CoefficientJitter >= 1 {
		return fmt.Errorf("%w: coefficient jitter must lie in [0, 1), got %g", ErrInvalidConfig, g.CoefficientJitter)
	}
	return nil
}
