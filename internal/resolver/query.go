package resolver

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"crate2bib/pkg/types"
)

// Query names a crate and an optional Cargo version requirement.
type Query struct {
	Crate   string
	Version string
	// Branch and Filenames override the configured citation file search.
	Branch    string
	Filenames []string
}

// BadInputError reports an input the module cannot interpret.
type BadInputError struct{ Msg string }

func (e *BadInputError) Error() string { return e.Msg }

// IsBadInput reports whether err was caused by unusable input.
func IsBadInput(err error) bool {
	var be *BadInputError
	return errors.As(err, &be)
}

var crateName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]{0,63}$`)

// ParseQuery reads "name", "name req" or "name@req".
func ParseQuery(s string) (Query, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Query{}, &BadInputError{Msg: "empty crate name"}
	}
	var name, req string
	if i := strings.Index(s, "@"); i >= 0 {
		name, req = s[:i], s[i+1:]
	} else if f := strings.Fields(s); len(f) > 1 {
		name, req = f[0], strings.Join(f[1:], " ")
	} else {
		name = s
	}
	q := Query{Crate: strings.TrimSpace(name), Version: strings.TrimSpace(req)}
	return q, q.validate()
}

func (q Query) validate() error {
	if !crateName.MatchString(q.Crate) {
		return &BadInputError{Msg: fmt.Sprintf("invalid crate name %q", q.Crate)}
	}
	return nil
}

// queryFromInput interprets the opaque values a caller may pass.
func queryFromInput(input any) (Query, error) {
	switch v := input.(type) {
	case string:
		return ParseQuery(v)
	case *string:
		if v == nil {
			break
		}
		return ParseQuery(*v)
	case Query:
		return v.normalized()
	case *Query:
		if v == nil {
			break
		}
		return v.normalized()
	case types.BibRequest:
		return fromRequest(v)
	case *types.BibRequest:
		if v == nil {
			break
		}
		return fromRequest(*v)
	case map[string]any:
		return fromMap(v)
	}
	return Query{}, &BadInputError{Msg: fmt.Sprintf("unsupported input of type %T", input)}
}

func (q Query) normalized() (Query, error) {
	q.Crate = strings.TrimSpace(q.Crate)
	q.Version = strings.TrimSpace(q.Version)
	q.Branch = strings.TrimSpace(q.Branch)
	return q, q.validate()
}

func fromRequest(r types.BibRequest) (Query, error) {
	return Query{Crate: r.Crate, Version: r.Version, Branch: r.Branch, Filenames: r.Filenames}.normalized()
}

// fromMap accepts plain objects such as {crate: "serde", version: "1"}
// coming from a JavaScript caller.
func fromMap(m map[string]any) (Query, error) {
	var q Query
	str := func(key string) (string, error) {
		raw, ok := m[key]
		if !ok || raw == nil {
			return "", nil
		}
		s, ok := raw.(string)
		if !ok {
			return "", &BadInputError{Msg: fmt.Sprintf("field %q must be a string", key)}
		}
		return s, nil
	}
	var err error
	if q.Crate, err = str("crate"); err != nil {
		return Query{}, err
	}
	if q.Version, err = str("version"); err != nil {
		return Query{}, err
	}
	if q.Branch, err = str("branch"); err != nil {
		return Query{}, err
	}
	switch fs := m["filenames"].(type) {
	case nil:
	case []string:
		q.Filenames = fs
	case []any:
		for _, f := range fs {
			s, ok := f.(string)
			if !ok {
				return Query{}, &BadInputError{Msg: `field "filenames" must hold strings`}
			}
			q.Filenames = append(q.Filenames, s)
		}
	default:
		return Query{}, &BadInputError{Msg: `field "filenames" must be a list`}
	}
	return q.normalized()
}
