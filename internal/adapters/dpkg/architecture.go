// Package dpkg resolves dpkg architecture variables for the build, host and
// target machines. Values come from the environment when the surrounding
// build system exported them, otherwise from a built-in table for the machine
// the tool runs on. Resolved values are cached for the process lifetime.
package dpkg

import (
	"os"
	"runtime"
	"strings"
	"sync"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

// archSpec describes one dpkg architecture.
type archSpec struct {
	os        string
	cpu       string
	gnuType   string
	multiarch string
}

// nativeArchs maps GOARCH to the dpkg architecture of the running machine.
// Only linux entries; helper tools run inside a Debian build environment.
var nativeArchs = map[string]string{
	"amd64":    "amd64",
	"arm64":    "arm64",
	"386":      "i386",
	"arm":      "armhf",
	"ppc64le":  "ppc64el",
	"s390x":    "s390x",
	"riscv64":  "riscv64",
	"mips64le": "mips64el",
	"loong64":  "loong64",
}

// archTable holds the tuple data for the architectures the helper can derive
// without dpkg being present.
var archTable = map[string]archSpec{
	"amd64":    {"linux", "amd64", "x86_64-linux-gnu", "x86_64-linux-gnu"},
	"arm64":    {"linux", "arm64", "aarch64-linux-gnu", "aarch64-linux-gnu"},
	"i386":     {"linux", "i386", "i686-linux-gnu", "i386-linux-gnu"},
	"armhf":    {"linux", "arm", "arm-linux-gnueabihf", "arm-linux-gnueabihf"},
	"armel":    {"linux", "arm", "arm-linux-gnueabi", "arm-linux-gnueabi"},
	"ppc64el":  {"linux", "ppc64el", "powerpc64le-linux-gnu", "powerpc64le-linux-gnu"},
	"s390x":    {"linux", "s390x", "s390x-linux-gnu", "s390x-linux-gnu"},
	"riscv64":  {"linux", "riscv64", "riscv64-linux-gnu", "riscv64-linux-gnu"},
	"mips64el": {"linux", "mips64el", "mips64el-linux-gnuabi64", "mips64el-linux-gnuabi64"},
	"loong64":  {"linux", "loong64", "loongarch64-linux-gnu", "loongarch64-linux-gnu"},
}

// Table implements ports.ArchTable.
type Table struct {
	mu    sync.Mutex
	cache map[string]string
	// env is the environment lookup, replaceable in tests.
	env func(string) (string, bool)
}

// NewTable creates a Table backed by the process environment.
func NewTable() *Table {
	return &Table{
		cache: make(map[string]string),
		env:   os.LookupEnv,
	}
}

// NewTableWithEnv creates a Table with an explicit environment lookup.
func NewTableWithEnv(env func(string) (string, bool)) *Table {
	return &Table{
		cache: make(map[string]string),
		env:   env,
	}
}

var _ ports.ArchTable = (*Table)(nil)

// Value returns the value of the named dpkg architecture variable.
func (t *Table) Value(name string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if v, ok := t.cache[name]; ok {
		return v, nil
	}

	v, err := t.resolve(name)
	if err != nil {
		return "", err
	}
	t.cache[name] = v
	return v, nil
}

func (t *Table) resolve(name string) (string, error) {
	machine, attr, ok := splitVariable(name)
	if !ok {
		return "", zerr.With(domain.ErrArchValue, "variable", name)
	}

	if v, ok := t.env(name); ok && v != "" {
		return v, nil
	}

	// The target machine defaults to the host machine, which in a native
	// build defaults to the build machine.
	if machine == "TARGET" {
		return t.resolve("DEB_HOST_" + attr)
	}
	if machine == "HOST" {
		return t.resolve("DEB_BUILD_" + attr)
	}

	arch, ok := nativeArchs[runtime.GOARCH]
	if !ok {
		return "", zerr.With(domain.ErrArchValue, "variable", name)
	}
	spec := archTable[arch]

	switch attr {
	case "ARCH":
		return arch, nil
	case "ARCH_OS":
		return spec.os, nil
	case "ARCH_CPU":
		return spec.cpu, nil
	case "GNU_TYPE":
		return spec.gnuType, nil
	case "MULTIARCH":
		return spec.multiarch, nil
	default:
		return "", zerr.With(domain.ErrArchValue, "variable", name)
	}
}

// splitVariable splits DEB_HOST_ARCH_OS into (HOST, ARCH_OS).
func splitVariable(name string) (machine, attr string, ok bool) {
	rest, found := strings.CutPrefix(name, "DEB_")
	if !found {
		return "", "", false
	}
	for _, m := range []string{"BUILD", "HOST", "TARGET"} {
		if a, found := strings.CutPrefix(rest, m+"_"); found && a != "" {
			return m, a, true
		}
	}
	return "", "", false
}
