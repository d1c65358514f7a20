// Package cargover implements Cargo-style version requirements ("1.0",
// "^0.1", ">=1.2, <1.5", "~2.3.1", "1.*") on top of golang.org/x/mod/semver.
package cargover

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// Version is a parsed semantic version (MAJOR.MINOR.PATCH[-PRE][+BUILD]).
type Version struct {
	Major, Minor, Patch int64
	Pre                 string
	Build               string
}

// Parse parses a full semantic version without a leading "v".
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" || s[0] == 'v' || !semver.IsValid("v"+s) {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	core := s
	var v Version
	if i := strings.IndexByte(core, '+'); i >= 0 {
		v.Build = core[i+1:]
		core = core[:i]
	}
	if i := strings.IndexByte(core, '-'); i >= 0 {
		v.Pre = core[i+1:]
		core = core[:i]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		// x/mod/semver accepts shorthands like v1.2; crates.io never publishes them.
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR.MINOR.PATCH", s)
	}
	nums := make([]int64, 3)
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
		}
		nums[i] = n
	}
	v.Major, v.Minor, v.Patch = nums[0], nums[1], nums[2]
	return v, nil
}

// MustParse is Parse for constants in tests and tables.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	s := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.Pre != "" {
		s += "-" + v.Pre
	}
	if v.Build != "" {
		s += "+" + v.Build
	}
	return s
}

// Compare orders versions by semver precedence; build metadata is ignored.
func (v Version) Compare(o Version) int {
	return semver.Compare("v"+v.String(), "v"+o.String())
}

type op int

const (
	opExact op = iota
	opGreater
	opGreaterEq
	opLess
	opLessEq
	opTilde
	opCaret
	opWildcard
)

type comparator struct {
	op    op
	major int64
	minor *int64
	patch *int64
	pre   string
}

// Req is a conjunction of comparators. The zero Req matches every
// non-pre-release version.
type Req struct {
	comparators []comparator
	raw         string
}

// ParseReq parses a comma-separated requirement. A bare version is a caret
// requirement, as in Cargo.toml.
func ParseReq(s string) (Req, error) {
	s = strings.TrimSpace(s)
	r := Req{raw: s}
	if s == "" || s == "*" {
		return r, nil
	}
	for _, part := range strings.Split(s, ",") {
		c, err := parseComparator(strings.TrimSpace(part))
		if err != nil {
			return Req{}, fmt.Errorf("invalid version requirement %q: %w", s, err)
		}
		r.comparators = append(r.comparators, c)
	}
	return r, nil
}

func (r Req) String() string {
	if r.raw == "" {
		return "*"
	}
	return r.raw
}

func parseComparator(s string) (comparator, error) {
	if s == "" {
		return comparator{}, fmt.Errorf("empty comparator")
	}
	c := comparator{op: opCaret}
	switch {
	case strings.HasPrefix(s, ">="):
		c.op, s = opGreaterEq, s[2:]
	case strings.HasPrefix(s, "<="):
		c.op, s = opLessEq, s[2:]
	case strings.HasPrefix(s, ">"):
		c.op, s = opGreater, s[1:]
	case strings.HasPrefix(s, "<"):
		c.op, s = opLess, s[1:]
	case strings.HasPrefix(s, "="):
		c.op, s = opExact, s[1:]
	case strings.HasPrefix(s, "~"):
		c.op, s = opTilde, s[1:]
	case strings.HasPrefix(s, "^"):
		c.op, s = opCaret, s[1:]
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "v"))
	if s == "*" || s == "x" || s == "X" {
		if c.op != opCaret {
			return comparator{}, fmt.Errorf("wildcard cannot have an operator")
		}
		return comparator{op: opWildcard}, nil
	}
	if i := strings.IndexByte(s, '+'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '-'); i >= 0 {
		c.pre = s[i+1:]
		s = s[:i]
		if c.pre == "" {
			return comparator{}, fmt.Errorf("empty pre-release")
		}
	}
	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return comparator{}, fmt.Errorf("too many version components in %q", s)
	}
	wild := false
	for i, p := range parts {
		if p == "*" || p == "x" || p == "X" {
			if i == 0 {
				return comparator{}, fmt.Errorf("wildcard major version")
			}
			wild = true
			continue
		}
		if wild {
			return comparator{}, fmt.Errorf("number after wildcard in %q", s)
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return comparator{}, fmt.Errorf("invalid component %q", p)
		}
		switch i {
		case 0:
			c.major = n
		case 1:
			c.minor = &n
		case 2:
			c.patch = &n
		}
	}
	if wild {
		if c.op != opCaret && c.op != opExact {
			return comparator{}, fmt.Errorf("wildcard cannot have an operator")
		}
		c.op = opExact
	}
	if c.pre != "" && (c.minor == nil || c.patch == nil) {
		return comparator{}, fmt.Errorf("pre-release requires a full version")
	}
	return c, nil
}

// Matches reports whether v satisfies every comparator. A pre-release
// version only matches when some comparator names a pre-release of the same
// MAJOR.MINOR.PATCH.
func (r Req) Matches(v Version) bool {
	for _, c := range r.comparators {
		if !c.matches(v) {
			return false
		}
	}
	if v.Pre == "" {
		return true
	}
	for _, c := range r.comparators {
		if c.pre != "" && c.minor != nil && c.patch != nil &&
			c.major == v.Major && *c.minor == v.Minor && *c.patch == v.Patch {
			return true
		}
	}
	return false
}

func (c comparator) full() Version {
	v := Version{Major: c.major, Pre: c.pre}
	if c.minor != nil {
		v.Minor = *c.minor
	}
	if c.patch != nil {
		v.Patch = *c.patch
	}
	return v
}

// bounds translates a comparator into a half-open or closed range.
// A nil bound is unbounded.
func (c comparator) bounds() (lo *Version, loIncl bool, hi *Version, hiIncl bool) {
	base := c.full()
	nextMajor := &Version{Major: c.major + 1}
	var nextMinor *Version
	if c.minor != nil {
		nextMinor = &Version{Major: c.major, Minor: *c.minor + 1}
	}
	switch c.op {
	case opWildcard:
		return nil, false, nil, false
	case opExact:
		switch {
		case c.patch != nil:
			return &base, true, &base, true
		case c.minor != nil:
			return &base, true, nextMinor, false
		default:
			return &base, true, nextMajor, false
		}
	case opGreater:
		switch {
		case c.patch != nil:
			return &base, false, nil, false
		case c.minor != nil:
			return nextMinor, true, nil, false
		default:
			return nextMajor, true, nil, false
		}
	case opGreaterEq:
		return &base, true, nil, false
	case opLess:
		return nil, false, &base, false
	case opLessEq:
		switch {
		case c.patch != nil:
			return nil, false, &base, true
		case c.minor != nil:
			return nil, false, nextMinor, false
		default:
			return nil, false, nextMajor, false
		}
	case opTilde:
		if c.minor != nil {
			return &base, true, nextMinor, false
		}
		return &base, true, nextMajor, false
	default: // caret
		switch {
		case c.major > 0 || c.minor == nil:
			return &base, true, nextMajor, false
		case *c.minor > 0 || c.patch == nil:
			return &base, true, nextMinor, false
		default:
			return &base, true, &base, true
		}
	}
}

func (c comparator) matches(v Version) bool {
	lo, loIncl, hi, hiIncl := c.bounds()
	if lo != nil {
		cmp := v.Compare(*lo)
		if cmp < 0 || (cmp == 0 && !loIncl) {
			return false
		}
	}
	if hi != nil {
		cmp := v.Compare(*hi)
		if cmp > 0 || (cmp == 0 && !hiIncl) {
			return false
		}
	}
	return true
}
