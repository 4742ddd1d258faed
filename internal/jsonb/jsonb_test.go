package jsonb

import (
	"testing"
	"time"

	apperrors "github.com/rebeliceyang/lazyjson/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NumberKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  Kind
		text  string
	}{
		{"1", KindInt, "1"},
		{"-2147483648", KindInt, "-2147483648"},
		{"2147483648", KindLong, "2147483648"},
		{"9223372036854775807", KindLong, "9223372036854775807"},
		{"9223372036854775808", KindDouble, "9223372036854776000.0"},
		{"1.5", KindDouble, "1.5"},
		{"2.0", KindDouble, "2.0"},
		{"1e3", KindDouble, "1000.0"},
		{"1e-7", KindDouble, "1e-07"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, tt.text, v.String())

			again, err := Parse(v.String())
			require.NoError(t, err)
			assert.True(t, v.Equal(again), "re-parse changed %s", tt.input)
		})
	}
}

func TestParse_PreservesKeyOrder(t *testing.T) {
	v, err := Parse(`{"z":1,"a":{"y":true,"b":null},"m":[3,"x"]}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())
	assert.Equal(t, `{"z":1,"a":{"y":true,"b":null},"m":[3,"x"]}`, v.String())
}

func TestParse_Errors(t *testing.T) {
	for _, input := range []string{"", "   ", "{", `{"a":}`, "[1,]", "tru"} {
		_, err := Parse(input)
		assert.ErrorIs(t, err, apperrors.Parse, "input %q", input)
	}
}

func TestParse_NumberOutOfRange(t *testing.T) {
	for _, input := range []string{"1e400", "-1e400", `{"big":[1,1e309]}`} {
		_, err := Parse(input)
		require.ErrorIs(t, err, apperrors.Parse, "input %q", input)
		assert.Contains(t, err.Error(), "out of range for a double")
	}

	v, err := ParseNumber("1e-400")
	require.NoError(t, err)
	assert.Equal(t, "0.0", v.String())
}

func TestParse_DateDetection(t *testing.T) {
	text := `{"at":"2024-03-01T10:20:30Z","name":"2024"}`

	plain, err := Parse(text)
	require.NoError(t, err)
	at, _ := plain.Get("at")
	assert.Equal(t, KindString, at.Kind())

	dated, err := Parse(text, WithDateDetection())
	require.NoError(t, err)
	at, _ = dated.Get("at")
	require.Equal(t, KindDate, at.Kind())
	assert.True(t, at.AsTime().Equal(time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)))
	name, _ := dated.Get("name")
	assert.Equal(t, KindString, name.Kind())

	again, err := Parse(dated.String(), WithDateDetection())
	require.NoError(t, err)
	assert.True(t, dated.Equal(again))
}

func TestParse_CustomDateLayoutRoundTrips(t *testing.T) {
	text := `{"d":"2020-01-02","at":"2024-03-01T10:20:30.5+02:00","n":1}`

	doc, err := Parse(text, WithDateDetection("2006-01-02", time.RFC3339))
	require.NoError(t, err)
	d, _ := doc.Get("d")
	require.Equal(t, KindDate, d.Kind())
	assert.Equal(t, "2006-01-02", d.DateLayout())
	at, _ := doc.Get("at")
	require.Equal(t, KindDate, at.Kind())
	assert.Equal(t, time.RFC3339Nano, at.DateLayout())

	assert.Equal(t, text, doc.String())

	again, err := Parse(doc.String(), WithDateDetection("2006-01-02", time.RFC3339))
	require.NoError(t, err)
	assert.True(t, doc.Equal(again))
	d, _ = again.Get("d")
	assert.Equal(t, KindDate, d.Kind())
}

func TestQuote_NoHTMLEscaping(t *testing.T) {
	assert.Equal(t, `"<a & b>"`, Quote("<a & b>"))
	assert.Equal(t, `"line\nbreak \"q\""`, Quote("line\nbreak \"q\""))
}

func TestValue_ObjectSetKeepsPosition(t *testing.T) {
	v := MustParse(`{"a":1,"b":2}`)
	v.Set("a", String("x"))
	v.Set("c", Bool(false))

	assert.Equal(t, `{"a":"x","b":2,"c":false}`, v.String())
	assert.True(t, v.Delete("b"))
	assert.False(t, v.Delete("missing"))
	assert.Equal(t, `{"a":"x","c":false}`, v.String())
}

func TestValue_CloneIsDeep(t *testing.T) {
	orig := MustParse(`{"a":{"b":[1,2]}}`)
	c := orig.Clone()

	inner, _ := c.Get("a")
	arr, _ := inner.Get("b")
	arr.SetIndex(0, Int(9))

	assert.Equal(t, `{"a":{"b":[1,2]}}`, orig.String())
	assert.Equal(t, `{"a":{"b":[9,2]}}`, c.String())
}

func TestValue_EqualDistinguishesKinds(t *testing.T) {
	assert.False(t, Int(1).Equal(Long(1)))
	assert.False(t, Int(1).Equal(Double(1)))
	assert.False(t, MustParse(`{"a":1,"b":2}`).Equal(MustParse(`{"b":2,"a":1}`)))
	assert.True(t, (*Value)(nil).Equal(Null()))
}

func TestFormat(t *testing.T) {
	out, err := Format(`{"b":1,"a":[true]}`)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [\n    true\n  ]\n}", out)

	_, err = Format("{oops")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, `{"a":1}`, Truncate(`{"a":1}`, 20))
	out := Truncate(`{"alpha":1,"beta":2,"gamma":3}`, 20)
	assert.LessOrEqual(t, len(out), 20)
	assert.Contains(t, out, "...")
}

func TestTypeAndDetect(t *testing.T) {
	assert.Equal(t, "object", Type(`{"a":1}`))
	assert.Equal(t, "number", Type(Long(3)))
	assert.Equal(t, "unknown", Type("{"))
	assert.True(t, IsJSON(" [1,2] "))
	assert.False(t, IsJSON("nope"))
	assert.True(t, IsContainerText(`{"a":1}`))
	assert.False(t, IsContainerText(`"a"`))
}

func TestPaths(t *testing.T) {
	v := MustParse(`{"user":{"tags":["a","b"]}}`)

	p, err := ParsePath("$.user.tags[1]")
	require.NoError(t, err)
	assert.Equal(t, []string{"user", "tags", "1"}, p.Parts)
	assert.Equal(t, "$.user.tags[1]", p.String())
	assert.Equal(t, "{user,tags,1}", p.PostgreSQLPath())

	got, err := GetValueAtPath(v, p)
	require.NoError(t, err)
	assert.Equal(t, "b", got.AsString())

	_, err = GetValueAtPath(v, Path{Parts: []string{"user", "missing"}})
	assert.Error(t, err)

	_, err = ParsePath("items[x]")
	assert.Error(t, err)
}

func TestSetValueAtPath(t *testing.T) {
	v := MustParse(`{"a":[{"b":1},{"b":2}]}`)

	require.NoError(t, SetValueAtPath(v, Path{Parts: []string{"a", "1", "b"}}, String("x")))
	require.NoError(t, SetValueAtPath(v, Path{Parts: []string{"a", "0"}}, Bool(true)))
	assert.Equal(t, `{"a":[true,{"b":"x"}]}`, v.String())

	assert.Error(t, SetValueAtPath(v, Path{}, Null()))
	assert.Error(t, SetValueAtPath(v, Path{Parts: []string{"missing"}}, Null()))
	assert.Error(t, SetValueAtPath(v, Path{Parts: []string{"a", "5"}}, Null()))
}
