package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"auction-etl/utils"
)

var (
	// ErrMalformedTimestamp marks a timestamp that is not "Mon-DD-YY HH:MM:SS".
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrMalformedToken marks an escaped token that cannot be decoded.
	ErrMalformedToken = errors.New("malformed escaped token")

	// nonMoneyRegexp matches every character a dollar amount sheds.
	nonMoneyRegexp = regexp.MustCompile(`[^\d.]`)
)

// months maps auction-site month abbreviations to two-digit month numbers.
var months = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04", "May": "05", "Jun": "06",
	"Jul": "07", "Aug": "08", "Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// Transformer converts raw scalar field values into their canonical text form.
type Transformer struct {
	logger        *utils.Logger
	unknownMonths int
}

// NewTransformer creates a Transformer with the given logger.
func NewTransformer(logger *utils.Logger) *Transformer {
	return &Transformer{logger: logger}
}

// Dollar strips everything but digits and periods, e.g. "$1,234.50" → "1234.50".
// Empty input is returned unchanged.
func (t *Transformer) Dollar(raw string) string {
	if raw == "" {
		return raw
	}
	return nonMoneyRegexp.ReplaceAllString(raw, "")
}

// Dttm rewrites "Mon-DD-YY HH:MM:SS" as "20YY-MM-DD HH:MM:SS". An unknown
// month abbreviation is copied through verbatim and logged. Timestamps
// carrying the row delimiter, a quote or a line break are rejected, since
// the output is written unquoted.
func (t *Transformer) Dttm(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.ContainsAny(trimmed, "|\"\r\n") {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	parts := strings.Split(trimmed, " ")
	if len(parts) < 2 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	dt := strings.Split(parts[0], "-")
	if len(dt) < 3 {
		return "", fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
	}
	return "20" + dt[2] + "-" + t.month(dt[0]) + "-" + dt[1] + " " + parts[1], nil
}

func (t *Transformer) month(abbr string) string {
	if m, ok := months[abbr]; ok {
		return m
	}
	t.unknownMonths++
	if t.logger != nil {
		t.logger.Warn("[transform] Unknown month abbreviation %q passed through", abbr)
	}
	return abbr
}

// UnknownMonths returns how many timestamps carried an unrecognised month.
func (t *Transformer) UnknownMonths() int {
	return t.unknownMonths
}

// Escape wraps s in double quotes and doubles every embedded double quote.
// Apply exactly once per raw value.
func Escape(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Unescape reverses Escape.
func Unescape(tok string) (string, error) {
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		return "", fmt.Errorf("%w: %q is not quoted", ErrMalformedToken, tok)
	}
	inner := tok[1 : len(tok)-1]
	var sb strings.Builder
	for i := 0; i < len(inner); i++ {
		if inner[i] == '"' {
			if i+1 >= len(inner) || inner[i+1] != '"' {
				return "", fmt.Errorf("%w: lone quote in %q", ErrMalformedToken, tok)
			}
			i++
		}
		sb.WriteByte(inner[i])
	}
	return sb.String(), nil
}
