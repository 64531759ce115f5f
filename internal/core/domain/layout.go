package domain

import "path/filepath"

const (
	// DebianDir is the packaging directory inside the source tree.
	DebianDir = "debian"

	// GeneratedDirName is the internal debhelper state directory below DebianDir.
	GeneratedDirName = ".debhelper"

	// CompatFileName is the legacy single-line compat level file below DebianDir.
	CompatFileName = "compat"

	// ControlFileName is the package manifest file below DebianDir.
	ControlFileName = "control"

	// DirPerm is the default permission for directories (rwxr-xr-x).
	DirPerm = 0o755

	// FilePerm is the default permission for generated files (rw-r--r--).
	FilePerm = 0o644
)

// ScriptPhase names a maintainer script generated for a package.
type ScriptPhase string

const (
	// PhasePreinst runs before the package is unpacked.
	PhasePreinst ScriptPhase = "preinst"

	// PhasePostinst runs after the package is unpacked.
	PhasePostinst ScriptPhase = "postinst"

	// PhasePrerm runs before the package is removed.
	PhasePrerm ScriptPhase = "prerm"

	// PhasePostrm runs after the package is removed.
	PhasePostrm ScriptPhase = "postrm"
)

// Valid reports whether p names one of the four maintainer script phases.
func (p ScriptPhase) Valid() bool {
	switch p {
	case PhasePreinst, PhasePostinst, PhasePrerm, PhasePostrm:
		return true
	}
	return false
}

// Removal reports whether the phase runs during package removal.
// Fragments for removal phases are prepended so that the concern added last
// during install is undone first during removal.
func (p ScriptPhase) Removal() bool {
	return p == PhasePrerm || p == PhasePostrm
}

// ControlPath returns the path of the package manifest.
func ControlPath() string {
	return filepath.Join(DebianDir, ControlFileName)
}

// CompatFilePath returns the path of the legacy compat level file.
func CompatFilePath() string {
	return filepath.Join(DebianDir, CompatFileName)
}

// ScriptAccumulatorPath returns the path of the accumulated script fragments
// for a package and phase, e.g. debian/foo.postinst.debhelper.
func ScriptAccumulatorPath(pkg string, phase ScriptPhase) string {
	return filepath.Join(DebianDir, pkg+"."+string(phase)+".debhelper")
}

// GeneratedDir returns the per-package directory for generated helper files.
func GeneratedDir(pkg string) string {
	return filepath.Join(DebianDir, GeneratedDirName, "generated", pkg)
}

// OrderedSnippetPath returns the path of an ordered snippet file for a package,
// phase and snippet order key.
func OrderedSnippetPath(pkg string, phase ScriptPhase, order string) string {
	return filepath.Join(GeneratedDir(pkg), string(phase)+"."+order)
}

// SubstvarsPath returns the path of the substitution variables file for a package.
func SubstvarsPath(pkg string) string {
	return filepath.Join(DebianDir, pkg+".substvars")
}
