package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auction-etl/utils"
)

func quietLogger() *utils.Logger { return utils.NewLogger(&bytes.Buffer{}, "error") }

func TestTransformerDollar(t *testing.T) {
	tf := NewTransformer(quietLogger())

	tests := []struct {
		raw  string
		want string
	}{
		{"$1,234.50", "1234.50"},
		{"$12.50", "12.50"},
		{"$0.01", "0.01"},
		{"$1,000,000.00", "1000000.00"},
		{"USD 99.00", "99.00"},
		{"", ""},
		{"$", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tf.Dollar(tt.raw), "Dollar(%q)", tt.raw)
	}
}

func TestTransformerDttm(t *testing.T) {
	tf := NewTransformer(quietLogger())

	abbrs := []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
	nums := []string{"01", "02", "03", "04", "05", "06", "07", "08", "09", "10", "11", "12"}
	for i, abbr := range abbrs {
		got, err := tf.Dttm(abbr + "-07-01 18:10:40")
		require.NoError(t, err)
		assert.Equal(t, "2001-"+nums[i]+"-07 18:10:40", got)
	}
	assert.Zero(t, tf.UnknownMonths())
}

func TestTransformerDttmTrimsWhitespace(t *testing.T) {
	tf := NewTransformer(quietLogger())
	got, err := tf.Dttm("  Dec-01-01 10:00:00 ")
	require.NoError(t, err)
	assert.Equal(t, "2001-12-01 10:00:00", got)
}

func TestTransformerDttmUnknownMonthPassesThrough(t *testing.T) {
	var buf bytes.Buffer
	tf := NewTransformer(utils.NewLogger(&buf, "warn"))

	got, err := tf.Dttm("Dez-24-05 08:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2005-Dez-24 08:00:00", got)
	assert.Equal(t, 1, tf.UnknownMonths())
	assert.Contains(t, buf.String(), `Unknown month abbreviation "Dez"`)
}

func TestTransformerDttmMalformed(t *testing.T) {
	tf := NewTransformer(quietLogger())
	for _, raw := range []string{"", "Dec-01-01", "Dec-01 10:00:00", "yesterday"} {
		_, err := tf.Dttm(raw)
		assert.ErrorIs(t, err, ErrMalformedTimestamp, raw)
	}
}

func TestEscape(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Vase", `"Vase"`},
		{"", `""`},
		{`12" ruler`, `"12"" ruler"`},
		{`""`, `""""""`},
		{"a|b", `"a|b"`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Escape(tt.raw), "Escape(%q)", tt.raw)
	}
}

func TestEscapeIsNotIdempotent(t *testing.T) {
	once := Escape("Vase")
	twice := Escape(once)
	assert.NotEqual(t, once, twice)
	assert.Equal(t, `"""Vase"""`, twice)
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, raw := range []string{"", "plain", `she said "hi"`, `"`, `""""`, "pipe | inside", "new\nline"} {
		got, err := Unescape(Escape(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, raw, got)
	}
}

func TestEscapeInjectiveWithoutQuotes(t *testing.T) {
	inputs := []string{"", "a", "ab", "a b", "b a", "NULL", "|"}
	seen := make(map[string]string)
	for _, in := range inputs {
		out := Escape(in)
		prev, dup := seen[out]
		assert.False(t, dup, "%q and %q escape to the same token", prev, in)
		seen[out] = in
	}
}

func TestUnescapeRejectsMalformed(t *testing.T) {
	for _, tok := range []string{"", `"`, "bare", `"a"b"`, `"open`} {
		_, err := Unescape(tok)
		assert.ErrorIs(t, err, ErrMalformedToken, tok)
	}
}

func TestTransformerDttmRejectsRowEncodingCharacters(t *testing.T) {
	tf := NewTransformer(quietLogger())
	for _, raw := range []string{
		"Dec-01-01 10:00|00",
		"Dec-01-0|1 10:00:00",
		`Dec-01-01 10:00:"00`,
		"D\nc-01-01 10:00:00",
	} {
		_, err := tf.Dttm(raw)
		assert.ErrorIs(t, err, ErrMalformedTimestamp, raw)
	}
	assert.Zero(t, tf.UnknownMonths())
}
