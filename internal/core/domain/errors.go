package domain

import "go.trai.ch/zerr"

var (
	// ErrControlMissing is returned when debian/control cannot be found.
	ErrControlMissing = zerr.New("cannot read debian/control")

	// ErrControlParse is returned when a line in debian/control does not match the stanza grammar.
	ErrControlParse = zerr.New("parse error in debian/control")

	// ErrContinuationOutsideStanza is returned when a continuation line appears before any field.
	ErrContinuationOutsideStanza = zerr.New("continuation line outside of a stanza")

	// ErrDuplicateField is returned when a field is defined twice within one stanza.
	ErrDuplicateField = zerr.New("duplicate field in stanza")

	// ErrMissingSource is returned when the source stanza has no Source field.
	ErrMissingSource = zerr.New("source stanza has no Source field")

	// ErrInvalidPackageName is returned when a package name does not match the name grammar.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrDuplicatePackage is returned when two binary stanzas declare the same package.
	ErrDuplicatePackage = zerr.New("duplicate package in debian/control")

	// ErrInvalidBuildForType is returned when X-DH-Build-For-Type is neither host nor target.
	ErrInvalidBuildForType = zerr.New("X-DH-Build-For-Type must be either 'host' or 'target'")

	// ErrPackageTypeRedefined is returned when more than one package-type field is present in a stanza.
	ErrPackageTypeRedefined = zerr.New("package type defined more than once")

	// ErrBuildProfiles is returned when a Build-Profiles restriction formula cannot be evaluated.
	ErrBuildProfiles = zerr.New("cannot evaluate Build-Profiles restriction formula")

	// ErrPackageNotFound is returned when a package name is not present in the manifest.
	ErrPackageNotFound = zerr.New("package not listed in debian/control")

	// ErrCompatRelation is returned when a debhelper-compat build dependency is malformed.
	ErrCompatRelation = zerr.New("invalid debhelper-compat relation")

	// ErrCompatConflict is returned when the compat level is declared by more than one source.
	ErrCompatConflict = zerr.New("compat level declared more than once")

	// ErrCompatUndeclared is returned when no compat level is declared at all.
	ErrCompatUndeclared = zerr.New("please specify the compatibility level in debian/control, e.g. Build-Depends: debhelper-compat (= 13)")

	// ErrCompatInvalid is returned when a declared compat level is not a non-negative integer.
	ErrCompatInvalid = zerr.New("compat level is not a non-negative integer")

	// ErrCompatFileRetired is returned when debian/compat declares a level that requires debhelper-compat.
	ErrCompatFileRetired = zerr.New("debian/compat is no longer supported at this compat level, use Build-Depends: debhelper-compat instead")

	// ErrCompatTooLow is returned when the resolved compat level is below the supported floor.
	ErrCompatTooLow = zerr.New("compat level no longer supported")

	// ErrCompatRemoval is returned when strict checking rejects a compat level scheduled for removal.
	ErrCompatRemoval = zerr.New("compat level is scheduled for removal")

	// ErrCompatTooHigh is returned when the resolved compat level is above the supported ceiling.
	ErrCompatTooHigh = zerr.New("compat level not yet supported")

	// ErrLegacyConfigFile is returned when an unprefixed config file is rejected at current compat.
	ErrLegacyConfigFile = zerr.New("unprefixed debian config files are no longer supported")

	// ErrSubstUnknownToken is returned when a substitution token cannot be resolved.
	ErrSubstUnknownToken = zerr.New("unknown substitution token")

	// ErrSubstRecursion is returned when the same token keeps expanding at the same position.
	ErrSubstRecursion = zerr.New("recursion limit reached while expanding token")

	// ErrSubstLimit is returned when the total number of substitutions exceeds the bound.
	ErrSubstLimit = zerr.New("substitution limit reached")

	// ErrSubstGrowth is returned when the expanded text grows beyond the size bound.
	ErrSubstGrowth = zerr.New("substitution result exceeds size limit")

	// ErrArchValue is returned when an architecture variable cannot be resolved.
	ErrArchValue = zerr.New("cannot resolve dpkg architecture variable")

	// ErrFragmentNotFound is returned when an autoscript fragment is not in any search directory.
	ErrFragmentNotFound = zerr.New("autoscript fragment not found")

	// ErrScriptPhase is returned when a phase name is not a maintainer script.
	ErrScriptPhase = zerr.New("unknown maintainer script phase")

	// ErrSubstvarNewline is returned when a substvar value contains a raw newline.
	ErrSubstvarNewline = zerr.New("substvar value must not contain a raw newline")

	// ErrFileWrite is returned when a generated file cannot be written.
	ErrFileWrite = zerr.New("cannot write file")

	// ErrFileRead is returned when a required file cannot be read.
	ErrFileRead = zerr.New("cannot read file")
)
