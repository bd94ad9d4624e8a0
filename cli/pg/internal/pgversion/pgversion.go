// Package pgversion parses the version reported by `pg_config --version` and
// orders PostgreSQL builds, development snapshots included.
package pgversion

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a PostgreSQL version as shown to the user (Raw) together with
// its semver form used for ordering. A zero Version is unknown and sorts
// before every known one.
type Version struct {
	Raw string
	sv  *semver.Version
}

var versionRe = regexp.MustCompile(`^(\d+)(?:\.(\d+))?(?:\.(\d+))?(devel|alpha\d*|beta\d*|rc\d*)?$`)

// Parse accepts either the full pg_config output ("PostgreSQL 16.2") or the
// bare version ("17devel", "15beta1", "9.6.24").
func Parse(s string) (Version, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Version{}, fmt.Errorf("empty version")
	}
	raw := fields[0]
	if strings.EqualFold(raw, "PostgreSQL") {
		if len(fields) < 2 {
			return Version{}, fmt.Errorf("no version in %q", s)
		}
		raw = fields[1]
	}
	m := versionRe.FindStringSubmatch(raw)
	if m == nil {
		return Version{Raw: raw}, fmt.Errorf("unrecognised PostgreSQL version %q", raw)
	}
	norm := m[1] + "." + orZero(m[2]) + "." + orZero(m[3])
	if pre := m[4]; pre != "" {
		if pre == "devel" {
			// devel precedes alpha and beta of the same major
			pre = "0devel"
		}
		norm += "-" + pre
	}
	sv, err := semver.NewVersion(norm)
	if err != nil {
		return Version{Raw: raw}, err
	}
	return Version{Raw: raw, sv: sv}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (v Version) String() string { return v.Raw }

// Known reports whether the version was parsed successfully.
func (v Version) Known() bool { return v.sv != nil }

// Major returns the major version, 0 when unknown. For releases before 10 it
// is the first component only.
func (v Version) Major() uint64 {
	if v.sv == nil {
		return 0
	}
	return v.sv.Major()
}

// Compare returns -1, 0 or 1.
func Compare(a, b Version) int {
	switch {
	case a.sv == nil && b.sv == nil:
		return strings.Compare(a.Raw, b.Raw)
	case a.sv == nil:
		return -1
	case b.sv == nil:
		return 1
	}
	return a.sv.Compare(b.sv)
}

func Less(a, b Version) bool { return Compare(a, b) < 0 }

// Sort orders versions ascending, stable for equal ones.
func Sort(vs []Version) {
	sort.SliceStable(vs, func(i, j int) bool { return Less(vs[i], vs[j]) })
}

// Constraint filters versions with semver range syntax (">= 15", "~16").
type Constraint struct {
	c *semver.Constraints
}

func ParseConstraint(s string) (Constraint, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return Constraint{}, fmt.Errorf("constraint %q: %w", s, err)
	}
	return Constraint{c: c}, nil
}

// Check reports whether v satisfies the constraint. Unknown versions never
// do; pre-releases only match constraints that mention one.
func (c Constraint) Check(v Version) bool {
	if c.c == nil {
		return true
	}
	if v.sv == nil {
		return false
	}
	return c.c.Check(v.sv)
}
