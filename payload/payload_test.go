package payload

import (
	"testing"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedGen = FixedGenerator{First: "Ana", Last: "Souza", Int: 120, Flag: true}

func TestBuildNestsDottedNames(t *testing.T) {
	b := NewBuilder(fixedGen)
	v := b.Build(DefaultBooking())

	assert.Equal(t, "Gabriel", v.GetByKey("firstname").StringValue())
	assert.Equal(t, "Testador", v.GetByKey("lastname").StringValue())
	assert.Equal(t, 150, v.GetByKey("totalprice").IntValue())
	assert.Equal(t, ldvalue.Bool(true), v.GetByKey("depositpaid"))
	assert.Equal(t, "2025-08-01", v.GetByKey("bookingdates").GetByKey("checkin").StringValue())
	assert.Equal(t, "2025-08-10", v.GetByKey("bookingdates").GetByKey("checkout").StringValue())
	assert.Equal(t, "Café da manhã", v.GetByKey("additionalneeds").StringValue())
	assert.Len(t, v.Keys(), 6)
}

func TestBuildUsesGenerator(t *testing.T) {
	b := NewBuilder(fixedGen)
	v := b.Build(RandomBooking())

	assert.Equal(t, "Ana", v.GetByKey("firstname").StringValue())
	assert.Equal(t, "Souza", v.GetByKey("lastname").StringValue())
	assert.Equal(t, 120, v.GetByKey("totalprice").IntValue())
	assert.Equal(t, ldvalue.Bool(true), v.GetByKey("depositpaid"))
}

func TestBuildOmitsMissingFields(t *testing.T) {
	b := NewBuilder(fixedGen)
	v := b.Build(Fields{"lastname": String("Silva")})
	assert.Equal(t, `{"lastname":"Silva"}`, v.JSONString())

	assert.Equal(t, `{}`, b.Build(Fields{}).JSONString())
}

func TestBuildMergesDottedNameIntoObjectLiteral(t *testing.T) {
	b := NewBuilder(fixedGen)
	dates := ldvalue.ObjectBuild().Set("checkin", ldvalue.String("2025-01-01")).
		Set("checkout", ldvalue.String("2025-01-05")).Build()
	v := b.Build(Fields{
		"bookingdates":          Literal(dates),
		"bookingdates.checkout": String("2025-01-09"),
	})
	assert.Equal(t, "2025-01-01", v.GetByKey("bookingdates").GetByKey("checkin").StringValue())
	assert.Equal(t, "2025-01-09", v.GetByKey("bookingdates").GetByKey("checkout").StringValue())
}

func TestBuildJSON(t *testing.T) {
	b := NewBuilder(fixedGen)
	data := b.BuildJSON(Fields{"firstname": String("Atualizado")})
	assert.Equal(t, `{"firstname":"Atualizado"}`, string(data))
}

func TestWithAndWithoutDoNotModifyOriginal(t *testing.T) {
	base := DefaultBooking()
	changed := base.With("lastname", String("Teste")).Without("firstname", "bookingdates")

	assert.Equal(t, "Testador", base["lastname"].LiteralValue().StringValue())
	assert.Len(t, base, 7)

	assert.Equal(t, "Teste", changed["lastname"].LiteralValue().StringValue())
	assert.Equal(t, []string{"additionalneeds", "depositpaid", "lastname", "totalprice"}, changed.Names())
}

func TestFakeGeneratorIsReproducibleWithSeed(t *testing.T) {
	g1, g2 := NewFakeGenerator(42), NewFakeGenerator(42)
	for i := 0; i < 5; i++ {
		assert.Equal(t, g1.FirstName(), g2.FirstName())
		assert.Equal(t, g1.LastName(), g2.LastName())
		assert.Equal(t, g1.IntBetween(100, 300), g2.IntBetween(100, 300))
		assert.Equal(t, g1.Bool(), g2.Bool())
	}
}

func TestFakeGeneratorValues(t *testing.T) {
	g := NewFakeGenerator(0)
	for i := 0; i < 50; i++ {
		n := g.IntBetween(100, 300)
		assert.GreaterOrEqual(t, n, 100)
		assert.LessOrEqual(t, n, 300)
	}
	assert.NotEmpty(t, g.FirstName())
	assert.NotEmpty(t, g.LastName())
}

func TestFixedGeneratorClampsInt(t *testing.T) {
	g := FixedGenerator{Int: 5}
	assert.Equal(t, 10, g.IntBetween(10, 20))
	assert.Equal(t, 5, g.IntBetween(0, 20))
	assert.Equal(t, 3, g.IntBetween(3, 0))
}

func TestValueFromYAML(t *testing.T) {
	var fields Fields
	err := yaml.Unmarshal([]byte(`
firstname: {generate: firstName}
lastname: Silva
totalprice: {generate: int, min: 10, max: 20}
depositpaid: false
bookingdates: {checkin: "2025-01-01", checkout: "2025-01-02"}
tags: [a, b]
`), &fields)
	require.NoError(t, err)

	assert.True(t, fields["firstname"].IsGenerated())
	assert.True(t, fields["totalprice"].IsGenerated())
	assert.Equal(t, "<int 10..20>", fields["totalprice"].String())
	assert.Equal(t, ldvalue.String("Silva"), fields["lastname"].LiteralValue())
	assert.Equal(t, ldvalue.Bool(false), fields["depositpaid"].LiteralValue())
	dates := fields["bookingdates"].LiteralValue()
	assert.Equal(t, "2025-01-01", dates.GetByKey("checkin").StringValue())
	assert.Equal(t, "2025-01-02", dates.GetByKey("checkout").StringValue())
	assert.Equal(t, `["a","b"]`, fields["tags"].LiteralValue().JSONString())

	v := NewBuilder(fixedGen).Build(fields)
	assert.Equal(t, "Ana", v.GetByKey("firstname").StringValue())
	assert.Equal(t, 20, v.GetByKey("totalprice").IntValue())
}

func TestValueFromYAMLRejectsUnknownGenerator(t *testing.T) {
	var fields Fields
	err := yaml.Unmarshal([]byte(`firstname: {generate: email}`), &fields)
	assert.Error(t, err)

	err = yaml.Unmarshal([]byte(`totalprice: {generate: int, min: 5, max: 1}`), &fields)
	assert.Error(t, err)
}

func TestValueFromYAMLRejectsMisspelledGeneratorKeys(t *testing.T) {
	for _, doc := range []string{
		`firstname: {genrate: firstName}`,
		`firstname: {Generate: firstName}`,
		`totalprice: {generate: int, mim: 1, max: 5}`,
	} {
		var fields Fields
		assert.Error(t, yaml.Unmarshal([]byte(doc), &fields), doc)
	}

	var fields Fields
	require.NoError(t, yaml.Unmarshal([]byte(`bookingdates: {checkin: "2025-01-01", min: 3}`), &fields))
	assert.False(t, fields["bookingdates"].IsGenerated())
}
