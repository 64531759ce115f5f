package control

import (
	"os"
	"strconv"
	"strings"

	"go.trai.ch/dh/internal/core/domain"
	"go.trai.ch/dh/internal/core/ports"
	"go.trai.ch/zerr"
)

// Parser reads debian/control into a domain.Manifest. The manifest is walked
// in two passes: the first extracts the source-stanza facts every later
// decision depends on (source name, build dependencies, declared compat
// level, requested addon sequences), the second extracts one binary package
// per remaining stanza.
type Parser struct {
	logger   ports.Logger
	profiles domain.ProfileSet
}

// NewParser creates a Parser evaluating Build-Profiles style restrictions
// against the given active profile set.
func NewParser(logger ports.Logger, profiles domain.ProfileSet) *Parser {
	return &Parser{logger: logger, profiles: profiles}
}

// Parse reads and parses the manifest at path.
func (p *Parser) Parse(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrControlMissing.Error())
	}

	stanzas, err := parseStanzas(string(data))
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if len(stanzas) == 0 {
		return nil, zerr.With(domain.ErrMissingSource, "path", path)
	}

	m := &domain.Manifest{CompatRelation: -1, CompatField: -1}

	if err := p.parseSourceStanza(&stanzas[0], m); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if err := p.parseBinaryStanzas(stanzas[1:], m); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	return m, nil
}

// parseSourceStanza is pass 1.
func (p *Parser) parseSourceStanza(s *stanza, m *domain.Manifest) error {
	source, ok := s.get("Source")
	if !ok || source == "" {
		return zerr.With(domain.ErrMissingSource, "line", s.line)
	}
	if !domain.ValidPackageName(source) {
		err := zerr.With(domain.ErrInvalidPackageName, "name", source)
		return zerr.With(err, "line", s.fieldLine("Source"))
	}
	m.Source = source
	m.SourceSection, _ = s.get("Section")

	for _, fieldName := range []string{"Build-Depends", "Build-Depends-Arch", "Build-Depends-Indep"} {
		value, ok := s.get(fieldName)
		if !ok {
			continue
		}
		relations := splitRelations(strings.ReplaceAll(value, "\n", " "))
		m.BuildDepends = append(m.BuildDepends, relations...)
		for _, relation := range relations {
			if err := p.scanRelation(relation, fieldName, m); err != nil {
				return zerr.With(err, "line", s.fieldLine(fieldName))
			}
		}
	}

	if value, ok := s.get("X-DH-Compat"); ok {
		level, err := strconv.Atoi(value)
		if err != nil || level < 0 {
			err := zerr.With(domain.ErrCompatInvalid, "X-DH-Compat", value)
			return zerr.With(err, "line", s.fieldLine("X-DH-Compat"))
		}
		if m.CompatRelation >= 0 {
			err := zerr.With(domain.ErrCompatConflict, "hint", "remove either X-DH-Compat or the debhelper-compat build dependency")
			return zerr.With(err, "line", s.fieldLine("X-DH-Compat"))
		}
		m.CompatField = level
	}

	return nil
}

// parseBinaryStanzas is pass 2.
func (p *Parser) parseBinaryStanzas(stanzas []stanza, m *domain.Manifest) error {
	seen := make(map[string]int)

	for i := range stanzas {
		pkg, err := p.parseBinaryStanza(&stanzas[i], m)
		if err != nil {
			return err
		}
		if firstLine, dup := seen[pkg.Name]; dup {
			err := zerr.With(domain.ErrDuplicatePackage, "package", pkg.Name)
			err = zerr.With(err, "first_stanza_line", firstLine)
			return zerr.With(err, "line", stanzas[i].line)
		}
		seen[pkg.Name] = stanzas[i].line
		m.Packages = append(m.Packages, *pkg)
	}

	if len(m.Packages) == 0 {
		return zerr.With(domain.ErrControlParse, "hint", "debian/control declares no binary packages")
	}
	return nil
}

// knownFields are the stanza fields mapped to Package attributes; everything
// else lands in Extra.
var knownFields = map[string]struct{}{
	"package":             {},
	"architecture":        {},
	"multi-arch":          {},
	"section":             {},
	"build-profiles":      {},
	"essential":           {},
	"package-type":        {},
	"xb-package-type":     {},
	"xc-package-type":     {},
	"x-dh-build-for-type": {},
	"x-time64-compat":     {},
}

func (p *Parser) parseBinaryStanza(s *stanza, m *domain.Manifest) (*domain.Package, error) {
	name, ok := s.get("Package")
	if !ok || name == "" {
		return nil, zerr.With(domain.ErrControlParse, "line", s.line)
	}
	if !domain.ValidPackageName(name) {
		err := zerr.With(domain.ErrInvalidPackageName, "name", name)
		return nil, zerr.With(err, "line", s.fieldLine("Package"))
	}

	pkg := &domain.Package{
		Name:      name,
		Type:      domain.DefaultPackageType,
		MultiArch: domain.MultiArchNo,
		BuildFor:  domain.BuildForHost,
		Section:   m.SourceSection,
	}

	// Architecture is conceptually required; an absent or empty field is
	// treated as "any" so the package still lands in a selection.
	pkg.Architecture = "any"
	if arch, ok := s.get("Architecture"); ok && arch != "" {
		pkg.Architecture = arch
	}

	if ma, ok := s.get("Multi-Arch"); ok {
		pkg.MultiArch = domain.MultiArch(ma)
	}
	if section, ok := s.get("Section"); ok && section != "" {
		pkg.Section = section
	}
	if formula, ok := s.get("Build-Profiles"); ok {
		// Fail on a malformed formula at parse time rather than on a
		// later selection query.
		if _, err := domain.EvalRestrictionFormula(formula, p.profiles); err != nil {
			return nil, zerr.With(err, "line", s.fieldLine("Build-Profiles"))
		}
		pkg.BuildProfiles = formula
	}
	if essential, ok := s.get("Essential"); ok {
		pkg.Essential = essential == "yes"
	}
	if t64, ok := s.get("X-Time64-Compat"); ok {
		pkg.Time64Compat = t64
	}

	if buildFor, ok := s.get("X-DH-Build-For-Type"); ok {
		switch domain.BuildFor(buildFor) {
		case domain.BuildForHost, domain.BuildForTarget:
			pkg.BuildFor = domain.BuildFor(buildFor)
		default:
			err := zerr.With(domain.ErrInvalidBuildForType, "value", buildFor)
			return nil, zerr.With(err, "line", s.fieldLine("X-DH-Build-For-Type"))
		}
	}

	if err := p.normalizePackageType(s, pkg); err != nil {
		return nil, err
	}

	for _, f := range s.fields {
		if _, known := knownFields[strings.ToLower(f.name)]; known {
			continue
		}
		if pkg.Extra == nil {
			pkg.Extra = make(map[string]string)
		}
		pkg.Extra[f.name] = f.value
	}

	return pkg, nil
}

// normalizePackageType folds Package-Type, XB-Package-Type and
// XC-Package-Type into the one canonical attribute. Declaring more than one
// of them is fatal, regardless of whether the values agree.
func (p *Parser) normalizePackageType(s *stanza, pkg *domain.Package) error {
	declared := 0
	for _, fieldName := range []string{"Package-Type", "XB-Package-Type", "XC-Package-Type"} {
		value, ok := s.get(fieldName)
		if !ok {
			continue
		}
		declared++
		if declared > 1 {
			err := zerr.With(domain.ErrPackageTypeRedefined, "package", pkg.Name)
			return zerr.With(err, "line", s.fieldLine(fieldName))
		}
		if fieldName != "Package-Type" {
			p.logger.WarnOnce("package-type-"+pkg.Name,
				fieldName+" is deprecated, use Package-Type for "+pkg.Name)
		}
		pkg.Type = domain.PackageType(value)
	}
	return nil
}
