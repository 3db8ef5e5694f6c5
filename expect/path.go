package expect

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Lookup finds the value at path within doc. Paths use dots for object keys and [n] for array
// indexes, with an optional leading "$." ("booking.bookingdates.checkin", "$[0].bookingid").
// Applying a key to an array applies it to each element, so "bookingid" on a list of
// {"bookingid": n} objects yields the array of ids; if no element has the key, the path does not
// exist. The second return value is false if the path does not exist.
func Lookup(doc ldvalue.Value, path string) (ldvalue.Value, bool, error) {
	segments, err := parsePath(path)
	if err != nil {
		return ldvalue.Null(), false, err
	}
	current := doc
	for _, seg := range segments {
		var found bool
		current, found = seg.apply(current)
		if !found {
			return ldvalue.Null(), false, nil
		}
	}
	return current, true, nil
}

type segment struct {
	key   string
	index int
	isKey bool
}

func (s segment) apply(v ldvalue.Value) (ldvalue.Value, bool) {
	if !s.isKey {
		if v.Type() != ldvalue.ArrayType || s.index < 0 || s.index >= v.Count() {
			return ldvalue.Null(), false
		}
		return v.GetByIndex(s.index), true
	}
	switch v.Type() {
	case ldvalue.ObjectType:
		for _, k := range v.Keys() {
			if k == s.key {
				return v.GetByKey(k), true
			}
		}
		return ldvalue.Null(), false
	case ldvalue.ArrayType:
		ab := ldvalue.ArrayBuild()
		matched := 0
		for i := 0; i < v.Count(); i++ {
			if item, ok := s.apply(v.GetByIndex(i)); ok {
				ab.Add(item)
				matched++
			}
		}
		if matched == 0 {
			return ldvalue.Null(), false
		}
		return ab.Build(), true
	default:
		return ldvalue.Null(), false
	}
}

func parsePath(path string) ([]segment, error) {
	rest := strings.TrimPrefix(strings.TrimPrefix(path, "$"), ".")
	var ret []segment
	for rest != "" {
		switch {
		case rest[0] == '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("unclosed bracket in path %q", path)
			}
			n, err := strconv.Atoi(rest[1:end])
			if err != nil {
				return nil, fmt.Errorf("invalid array index in path %q: %w", path, err)
			}
			ret = append(ret, segment{index: n})
			rest = rest[end+1:]
		case rest[0] == '.':
			rest = rest[1:]
		default:
			end := strings.IndexAny(rest, ".[")
			if end < 0 {
				end = len(rest)
			}
			ret = append(ret, segment{key: rest[:end], isKey: true})
			rest = rest[end:]
		}
	}
	return ret, nil
}
