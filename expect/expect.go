// Package expect describes what a response from the booking service should look like, and
// reports every way in which an actual response differs.
package expect

import (
	"fmt"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Response is the part of a client response that expectations look at.
type Response interface {
	Status() int
	JSON() ldvalue.Value
	RequestJSON() ldvalue.Value
}

// MismatchKind distinguishes a wrong status from a wrong body.
type MismatchKind string

const (
	StatusMismatch MismatchKind = "status"
	FieldMismatch  MismatchKind = "field"
)

// Mismatch is one failed expectation.
type Mismatch struct {
	Kind     MismatchKind
	Path     string
	Expected string
	Actual   string
}

func (m Mismatch) Error() string {
	if m.Kind == StatusMismatch {
		return fmt.Sprintf("expected status %s, got %s", m.Expected, m.Actual)
	}
	return fmt.Sprintf("field %q: expected %s, got %s", m.Path, m.Expected, m.Actual)
}

// Expectation is a single check against a response.
type Expectation interface {
	// Check returns nil if the response satisfies the expectation.
	Check(resp Response) *Mismatch
	String() string
}

// Set is an ordered list of expectations, all of which are checked.
type Set []Expectation

// Outcome is the result of checking a Set.
type Outcome struct {
	Mismatches []Mismatch
}

func (o Outcome) Passed() bool { return len(o.Mismatches) == 0 }

// StatusFailed returns true if any mismatch was about the status code.
func (o Outcome) StatusFailed() bool {
	for _, m := range o.Mismatches {
		if m.Kind == StatusMismatch {
			return true
		}
	}
	return false
}

// Check evaluates every expectation against resp.
func (s Set) Check(resp Response) Outcome {
	var o Outcome
	for _, e := range s {
		if m := e.Check(resp); m != nil {
			o.Mismatches = append(o.Mismatches, *m)
		}
	}
	return o
}

// ExpectedStatuses returns the status codes allowed by the status expectations in the set, or
// nil if there are none.
func (s Set) ExpectedStatuses() []int {
	var ret []int
	for _, e := range s {
		if st, ok := e.(statusExpectation); ok {
			ret = append(ret, st.codes...)
		}
	}
	return ret
}

func (s Set) String() string {
	parts := make([]string, 0, len(s))
	for _, e := range s {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

type statusExpectation struct {
	codes []int
}

// Status expects exactly the given status code.
func Status(code int) Expectation { return statusExpectation{codes: []int{code}} }

// StatusIn expects any one of the given status codes.
func StatusIn(codes ...int) Expectation { return statusExpectation{codes: codes} }

func (e statusExpectation) Check(resp Response) *Mismatch {
	for _, c := range e.codes {
		if resp.Status() == c {
			return nil
		}
	}
	return &Mismatch{Kind: StatusMismatch, Expected: e.describe(), Actual: fmt.Sprint(resp.Status())}
}

func (e statusExpectation) describe() string {
	if len(e.codes) == 1 {
		return fmt.Sprint(e.codes[0])
	}
	s := make([]string, 0, len(e.codes))
	for _, c := range e.codes {
		s = append(s, fmt.Sprint(c))
	}
	return "one of {" + strings.Join(s, ",") + "}"
}

func (e statusExpectation) String() string { return "status " + e.describe() }

type fieldCheck func(v ldvalue.Value, found bool, resp Response) (expected string, ok bool)

type fieldExpectation struct {
	path  string
	desc  string
	check fieldCheck
}

func (e fieldExpectation) Check(resp Response) *Mismatch {
	v, found, err := Lookup(resp.JSON(), e.path)
	if err != nil {
		return &Mismatch{Kind: FieldMismatch, Path: e.path, Expected: "a valid path", Actual: err.Error()}
	}
	if expected, ok := e.check(v, found, resp); !ok {
		return &Mismatch{Kind: FieldMismatch, Path: e.path, Expected: expected, Actual: describe(v, found)}
	}
	return nil
}

func (e fieldExpectation) String() string { return e.path + " " + e.desc }

func describe(v ldvalue.Value, found bool) string {
	if !found {
		return "no such field"
	}
	return v.JSONString()
}

// NotNull expects the field to be present and not null.
func NotNull(path string) Expectation {
	return fieldExpectation{path: path, desc: "not null", check: func(v ldvalue.Value, found bool, _ Response) (string, bool) {
		return "a non-null value", found && !v.IsNull()
	}}
}

// Null expects the field to be absent or null.
func Null(path string) Expectation {
	return fieldExpectation{path: path, desc: "null", check: func(v ldvalue.Value, found bool, _ Response) (string, bool) {
		return "null or absent", !found || v.IsNull()
	}}
}

// Equals expects the field to equal value. Numbers compare by value regardless of how they were
// written.
func Equals(path string, value ldvalue.Value) Expectation {
	return fieldExpectation{path: path, desc: "== " + value.JSONString(), check: func(v ldvalue.Value, found bool, _ Response) (string, bool) {
		return value.JSONString(), found && v.Equal(value)
	}}
}

// NotEmpty expects the field to be a non-empty array, object, or string.
func NotEmpty(path string) Expectation {
	return fieldExpectation{path: path, desc: "not empty", check: func(v ldvalue.Value, found bool, _ Response) (string, bool) {
		const want = "a non-empty array, object, or string"
		if !found {
			return want, false
		}
		switch v.Type() {
		case ldvalue.ArrayType, ldvalue.ObjectType:
			return want, v.Count() > 0
		case ldvalue.StringType:
			return want, v.StringValue() != ""
		default:
			return want, false
		}
	}}
}

// Echoes expects the response field at path to equal the request body field at requestPath. It
// is how a check is written for a value that was generated when the request was built.
func Echoes(path, requestPath string) Expectation {
	return fieldExpectation{path: path, desc: "echoes request " + requestPath, check: func(v ldvalue.Value, found bool, resp Response) (string, bool) {
		sent, sentFound, err := Lookup(resp.RequestJSON(), requestPath)
		if err != nil || !sentFound {
			return fmt.Sprintf("request field %q to exist", requestPath), false
		}
		return sent.JSONString() + " (sent as " + requestPath + ")", found && v.Equal(sent)
	}}
}
