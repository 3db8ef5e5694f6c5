package expect

import (
	"fmt"
	"sort"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

type yamlSet struct {
	Status   *int                   `yaml:"status"`
	StatusIn []int                  `yaml:"statusIn"`
	NotNull  []string               `yaml:"notNull"`
	Null     []string               `yaml:"null"`
	NotEmpty []string               `yaml:"notEmpty"`
	Equals   map[string]interface{} `yaml:"equals"`
	Echoes   map[string]string      `yaml:"echoes"`
}

// UnmarshalYAML reads a Set written as a mapping:
//
//	status: 200
//	statusIn: [400, 500]
//	notNull: [token]
//	null: [token]
//	notEmpty: [bookingid]
//	equals: {booking.lastname: Teste}
//	echoes: {booking.firstname: firstname}
//
// The status expectations come first, followed by the field expectations in the order above and
// sorted by path within each group.
func (s *Set) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node); err != nil {
		return err
	}
	var y yamlSet
	if err := node.Decode(&y); err != nil {
		return err
	}
	var ret Set
	if y.Status != nil {
		ret = append(ret, Status(*y.Status))
	}
	if len(y.StatusIn) != 0 {
		ret = append(ret, StatusIn(y.StatusIn...))
	}
	for _, p := range y.NotNull {
		ret = append(ret, NotNull(p))
	}
	for _, p := range y.Null {
		ret = append(ret, Null(p))
	}
	for _, p := range y.NotEmpty {
		ret = append(ret, NotEmpty(p))
	}
	for _, p := range sortedKeys(y.Equals) {
		ret = append(ret, Equals(p, ldvalue.CopyArbitraryValue(y.Equals[p])))
	}
	for _, p := range sortedKeys(y.Echoes) {
		ret = append(ret, Echoes(p, y.Echoes[p]))
	}
	for _, e := range ret {
		if fe, ok := e.(fieldExpectation); ok {
			if _, err := parsePath(fe.path); err != nil {
				return fmt.Errorf("line %d: %w", node.Line, err)
			}
		}
	}
	*s = ret
	return nil
}

var setKeys = map[string]bool{
	"status": true, "statusIn": true, "notNull": true, "null": true, "notEmpty": true, "equals": true, "echoes": true,
}

// checkKeys rejects keys that are not expectation kinds. yaml.v3 does not apply the decoder's
// KnownFields setting inside a custom unmarshaler, so this is checked here.
func checkKeys(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i]
		if !setKeys[key.Value] {
			return fmt.Errorf("line %d: unknown expectation %q", key.Line, key.Value)
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
