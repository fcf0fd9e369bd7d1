package dpkgsource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

type versionDescriptor struct {
	pkg string
}

func (v versionDescriptor) Package() string { return v.pkg }

type dependency struct {
	rawType   string
	rawString string
	targets   []VersionDescriptor
}

func (d *dependency) RawType() string   { return d.rawType }
func (d *dependency) RawString() string { return d.rawString }
func (d *dependency) InstalledTargetVersions() []VersionDescriptor {
	return d.targets
}

type installedPackage struct {
	name string
	deps map[string][]Dependency
}

func (p *installedPackage) Name() string { return p.name }

func (p *installedPackage) Dependencies(rawTypes ...string) []Dependency {
	var out []Dependency
	for _, t := range rawTypes {
		out = append(out, p.deps[t]...)
	}
	return out
}

// StatusFileCache reads the dpkg status database format: RFC 2822-style
// stanzas separated by a blank line, one per package dpkg knows about.
// Only stanzas whose Status field's third word is "installed" are kept.
type StatusFileCache struct {
	packages []InstalledPackage
}

// NewStatusFileCache opens and parses the status file at path.
func NewStatusFileCache(path string) (*StatusFileCache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dpkgsource: opening %s: %w", path, err)
	}
	defer f.Close()
	return NewStatusFileCacheFromReader(f)
}

// NewStatusFileCacheFromReader parses status-file formatted data from r.
// NewStatusFileCache is a convenience wrapper around this for the common
// case of reading a file by path.
func NewStatusFileCacheFromReader(r io.Reader) (*StatusFileCache, error) {
	stanzas, err := parseStanzas(r)
	if err != nil {
		return nil, err
	}

	installedNames := map[string]struct{}{}
	var installed []stanza
	for _, s := range stanzas {
		if isInstalled(s.fields["Status"]) && s.fields["Package"] != "" {
			installedNames[s.fields["Package"]] = struct{}{}
			installed = append(installed, s)
		}
	}
	if len(installed) == 0 {
		return nil, ErrEmptyCache
	}

	// A virtual package name can be Provided by more than one installed
	// real package; both become candidate targets for a dependency naming
	// the virtual package.
	provides := map[string][]string{}
	for _, s := range installed {
		for _, name := range splitCommaList(s.fields["Provides"]) {
			provides[name] = append(provides[name], s.fields["Package"])
		}
	}

	resolve := func(alt string) []VersionDescriptor {
		name := depName(alt)
		if name == "" {
			return nil
		}
		var out []VersionDescriptor
		seen := map[string]struct{}{}
		if _, ok := installedNames[name]; ok {
			out = append(out, versionDescriptor{pkg: name})
			seen[name] = struct{}{}
		}
		for _, provider := range provides[name] {
			if _, ok := seen[provider]; ok {
				continue
			}
			seen[provider] = struct{}{}
			out = append(out, versionDescriptor{pkg: provider})
		}
		return out
	}

	packages := make([]InstalledPackage, 0, len(installed))
	for _, s := range installed {
		pkg := &installedPackage{name: s.fields["Package"], deps: map[string][]Dependency{}}
		for _, rawType := range []string{PreDepends, Depends, Recommends} {
			field := rawType
			if rawType == PreDepends {
				// The status file spells this field with a hyphen.
				field = "Pre-Depends"
			}
			raw := s.fields[field]
			if raw == "" {
				continue
			}
			for _, altGroup := range strings.Split(raw, ",") {
				altGroup = strings.TrimSpace(altGroup)
				if altGroup == "" {
					continue
				}
				var targets []VersionDescriptor
				seen := map[string]struct{}{}
				for _, alt := range strings.Split(altGroup, "|") {
					for _, t := range resolve(alt) {
						if _, ok := seen[t.Package()]; ok {
							continue
						}
						seen[t.Package()] = struct{}{}
						targets = append(targets, t)
					}
				}
				pkg.deps[rawType] = append(pkg.deps[rawType], &dependency{
					rawType:   rawType,
					rawString: altGroup,
					targets:   targets,
				})
			}
		}
		packages = append(packages, pkg)
	}

	sort.Slice(packages, func(i, j int) bool { return packages[i].Name() < packages[j].Name() })
	return &StatusFileCache{packages: packages}, nil
}

// InstalledPackages implements Cache.
func (c *StatusFileCache) InstalledPackages() []InstalledPackage {
	return c.packages
}

type stanza struct {
	fields map[string]string
}

// parseStanzas splits r into RFC 2822-style stanzas. A line starting with
// whitespace continues the previous field's value, joined with a space.
func parseStanzas(r io.Reader) ([]stanza, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var stanzas []stanza
	cur := map[string]string{}
	lastKey := ""

	flush := func() {
		if len(cur) > 0 {
			stanzas = append(stanzas, stanza{fields: cur})
		}
		cur = map[string]string{}
		lastKey = ""
	}

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if (line[0] == ' ' || line[0] == '\t') && lastKey != "" {
			cur[lastKey] += " " + strings.TrimSpace(line)
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		cur[key] = val
		lastKey = key
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dpkgsource: scanning status file: %w", err)
	}
	return stanzas, nil
}

// isInstalled reports whether a dpkg Status field's third word is
// "installed", e.g. "install ok installed".
func isInstalled(status string) bool {
	fields := strings.Fields(status)
	return len(fields) == 3 && fields[2] == "installed"
}

// depName extracts the bare package name from one dependency alternative,
// stripping any version constraint in parentheses.
func depName(alt string) string {
	alt = strings.TrimSpace(alt)
	if i := strings.Index(alt, "("); i >= 0 {
		alt = alt[:i]
	}
	return strings.TrimSpace(alt)
}

// splitCommaList splits a Provides-style comma separated field into bare
// package names, dropping any version constraints.
func splitCommaList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := depName(p); name != "" {
			out = append(out, name)
		}
	}
	return out
}
