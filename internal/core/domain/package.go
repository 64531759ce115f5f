// Package domain holds the data model shared by all helper tools: the parsed
// package manifest, package selections, compat level bounds and the on-disk
// layout of generated files.
package domain

import (
	"regexp"
	"strings"
)

// PackageType tags the artifact format a binary stanza produces.
type PackageType string

// DefaultPackageType is assumed when a stanza declares no package type.
const DefaultPackageType PackageType = "deb"

// MultiArch is the multi-arch mode of a binary package.
type MultiArch string

const (
	// MultiArchNo is the default multi-arch mode.
	MultiArchNo MultiArch = "no"
	// MultiArchSame marks packages co-installable across architectures.
	MultiArchSame MultiArch = "same"
	// MultiArchForeign marks packages satisfying dependencies of any architecture.
	MultiArchForeign MultiArch = "foreign"
)

// BuildFor is the cross-build role of a binary package.
type BuildFor string

const (
	// BuildForHost builds the package to run on the host architecture.
	BuildForHost BuildFor = "host"
	// BuildForTarget builds the package to run on the cross target architecture.
	BuildForTarget BuildFor = "target"
)

// Package is one binary stanza of the manifest. Constructed once by the
// control parser and immutable afterwards.
type Package struct {
	Name          string
	Architecture  string
	Type          PackageType
	MultiArch     MultiArch
	Section       string
	BuildProfiles string
	BuildFor      BuildFor
	Essential     bool
	Time64Compat  string

	// Extra carries all declared fields not mapped to an attribute above,
	// keyed by field name as written.
	Extra map[string]string
}

// packageNameRegex is the Policy 5.6.1 package name grammar.
var packageNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9+.-]+$`)

// ValidPackageName reports whether name matches the package name grammar.
func ValidPackageName(name string) bool {
	return packageNameRegex.MatchString(name)
}

// ArchIndependent reports whether the package is architecture independent
// (Architecture: all).
func (p *Package) ArchIndependent() bool {
	return p.Architecture == "all"
}

// ArchMatches reports whether the package's architecture specification covers
// the given architecture. os and cpu are the dpkg tuple components of arch and
// are consulted for wildcard entries such as linux-any or any-amd64.
func (p *Package) ArchMatches(arch, os, cpu string) bool {
	for _, spec := range strings.Fields(p.Architecture) {
		if archSpecMatches(spec, arch, os, cpu) {
			return true
		}
	}
	return false
}

func archSpecMatches(spec, arch, os, cpu string) bool {
	if spec == "any" || spec == arch {
		return true
	}
	if !strings.Contains(spec, "-") {
		return false
	}
	parts := strings.SplitN(spec, "-", 2)
	specOS, specCPU := parts[0], parts[1]
	if specOS != "any" && specOS != os {
		return false
	}
	return specCPU == "any" || specCPU == cpu
}

// Selection names a computed subset of the manifest's packages.
type Selection string

const (
	// SelectArch selects architecture dependent packages matching the
	// resolution architecture.
	SelectArch Selection = "arch"
	// SelectIndep selects architecture independent packages.
	SelectIndep Selection = "indep"
	// SelectBoth is the union of SelectArch and SelectIndep.
	SelectBoth Selection = "both"
	// SelectAllListed selects every package regardless of profile and
	// architecture filtering.
	SelectAllListed Selection = "all-listed"
)

// Manifest is the parsed debian/control file.
type Manifest struct {
	// Source is the source package name.
	Source string

	// SourceSection is the Section of the source stanza, inherited by
	// binary stanzas that declare none.
	SourceSection string

	// BuildDepends holds the individual top-level dependency relations of
	// Build-Depends, Build-Depends-Arch and Build-Depends-Indep, in order.
	BuildDepends []string

	// CompatRelation is the level declared by a debhelper-compat build
	// dependency, or -1 when absent.
	CompatRelation int

	// CompatField is the level declared by X-DH-Compat, or -1 when absent.
	CompatField int

	// Sequences lists the addon names requested through dh-sequence-*
	// build dependencies, in order of appearance, deduplicated.
	Sequences []string

	// Packages holds the binary stanzas in manifest order.
	Packages []Package
}

// Package returns the stanza for name, or nil.
func (m *Manifest) Package(name string) *Package {
	for i := range m.Packages {
		if m.Packages[i].Name == name {
			return &m.Packages[i]
		}
	}
	return nil
}

// MainPackage returns the first binary stanza. The manifest is guaranteed
// non-empty by the parser.
func (m *Manifest) MainPackage() *Package {
	return &m.Packages[0]
}
