package config

// Default numeric limits, matching Unifier.cpp's FInt defaults. A driver
// that never calls LoadTunables gets exactly these values via
// DefaultTunables.
const (
	DefaultRecursionLimit = 100
	DefaultPackLoopLimit  = 100
	DefaultIterationLimit = 2000
)

// Default feature-toggle values. Every one of these defaults to the
// "new" behavior; setting one to false in a loaded tunables file falls
// back to the corresponding legacy code path, matching the staged
// rollout the original migration flags implemented.
const (
	DefaultExtendedTypeMismatchError           = true
	DefaultExtendedUnionMismatchError          = true
	DefaultExtendedFunctionMismatchError       = true
	DefaultExtendedClassMismatchError          = true
	DefaultTableUnificationEarlyTest           = true
	DefaultTableSubtypingVariance2             = true
	DefaultOccursCheckOkWithRecursiveFunctions = true
	DefaultProperTypeLevels                    = true
	DefaultUnionHeuristic                      = true
	DefaultSingletonTypes                      = true
)
