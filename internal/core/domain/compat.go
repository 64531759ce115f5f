package domain

const (
	// MinCompatLevel is the lowest level the suite still operates at.
	MinCompatLevel = 5

	// MinCompatLevelNotScheduledForRemoval is the lowest level that is not
	// scheduled for removal. Strict mode rejects anything below it.
	MinCompatLevelNotScheduledForRemoval = 7

	// LowestNonDeprecatedCompatLevel is the lowest level that does not
	// trigger a deprecation warning.
	LowestNonDeprecatedCompatLevel = 10

	// HighestStableCompatLevel is the newest level whose behaviour is
	// frozen. Levels above it are open to change between releases.
	HighestStableCompatLevel = 13

	// MaxCompatLevel is the highest level the suite knows about.
	MaxCompatLevel = 15
)
