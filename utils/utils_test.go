package utils

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowSetNoDuplicates(t *testing.T) {
	s := NewRowSet()

	assert.True(t, s.Add(`"Antiques"|101`), "first Add should return true")
	assert.False(t, s.Add(`"Antiques"|101`), "second Add of same row should return false")
	assert.True(t, s.Add(`"Coins"|101`))

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{`"Antiques"|101`, `"Coins"|101`}, s.Rows())
	assert.True(t, s.Contains(`"Coins"|101`))
}

func TestRowSetExactMatchOnly(t *testing.T) {
	s := NewRowSet()
	s.Add(`"bob"|NULL|2|NULL`)
	s.Add(`"bob"|NULL|2 |NULL`)

	assert.Equal(t, 2, s.Len(), "rows differing only in whitespace are distinct")
}

func TestRowSetRowsIsCopy(t *testing.T) {
	s := NewRowSet()
	s.Add("a")
	rows := s.Rows()
	rows[0] = "mutated"
	assert.Equal(t, []string{"a"}, s.Rows())
}

func TestRetryEventuallySucceeds(t *testing.T) {
	r := &RetryConfig{MaxAttempts: 3, Logger: NewLogger(&bytes.Buffer{}, "error")}
	calls := 0
	err := r.Do("flaky", func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWrapsLastError(t *testing.T) {
	sentinel := errors.New("down")
	r := &RetryConfig{MaxAttempts: 2}
	err := r.Do("connect", func() error { return sentinel })
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Contains(t, err.Error(), "connect failed after 2 attempts")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "warn")
	l.Info("hidden %d", 1)
	l.Debug("hidden %d", 2)
	l.Warn("shown %s", "warning")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown warning")
}

func TestLoggerFormatsArguments(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "debug")
	l.Debug("loaded %d rows into %s", 3, "bids")
	l.Error("literal %%d stays")

	out := buf.String()
	assert.Contains(t, out, "loaded 3 rows into bids")
	assert.Contains(t, out, "literal %d stays")
}
