package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"auction-etl/models"
)

// ErrBadQuote is returned for a quoted field that is unterminated or
// followed by something other than a delimiter or line end.
var ErrBadQuote = errors.New("dat: bad quoted field")

// Field is one decoded column value. Null is set only for the bare NULL
// token; a quoted "NULL" is the four-letter string.
type Field struct {
	Value string
	Null  bool
}

// ReadDat parses every row of a relation file.
func ReadDat(path string) ([][]Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dat: open %q: %w", path, err)
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("dat: parse %q: %w", path, err)
	}
	return rows, nil
}

// SplitRow parses a single rendered row.
func SplitRow(line string) ([]Field, error) {
	rows, err := ParseRows(strings.NewReader(line))
	if err != nil {
		return nil, err
	}
	if len(rows) != 1 {
		return nil, fmt.Errorf("dat: expected one row, got %d", len(rows))
	}
	return rows[0], nil
}

// ParseRows reads newline-separated rows of |-separated fields. Quoted fields
// may contain the delimiter, newlines and doubled quotes. Blank lines are
// ignored.
func ParseRows(r io.Reader) ([][]Field, error) {
	br := bufio.NewReader(r)
	var rows [][]Field
	var row []Field
	line := 1

	for {
		if row == nil {
			c, _, err := br.ReadRune()
			if err == io.EOF {
				return rows, nil
			}
			if err != nil {
				return nil, err
			}
			if c == '\n' {
				line++
				continue
			}
			if err := br.UnreadRune(); err != nil {
				return nil, err
			}
		}

		f, term, newlines, err := readField(br)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		line += newlines
		row = append(row, f)

		switch term {
		case models.Delimiter:
			continue
		case '\n':
			line++
		}
		rows = append(rows, row)
		row = nil
		if term == 0 {
			return rows, nil
		}
	}
}

// readField consumes one field and its terminator. term is the delimiter,
// '\n', or 0 at end of input. newlines counts line breaks inside quotes.
func readField(br *bufio.Reader) (f Field, term rune, newlines int, err error) {
	c, _, err := br.ReadRune()
	if err == io.EOF {
		return Field{}, 0, 0, nil
	}
	if err != nil {
		return Field{}, 0, 0, err
	}

	if c == '"' {
		var sb strings.Builder
		for {
			c, _, err := br.ReadRune()
			if err == io.EOF {
				return Field{}, 0, newlines, fmt.Errorf("%w: unterminated", ErrBadQuote)
			}
			if err != nil {
				return Field{}, 0, newlines, err
			}
			if c != '"' {
				if c == '\n' {
					newlines++
				}
				sb.WriteRune(c)
				continue
			}
			next, _, err := br.ReadRune()
			if err == io.EOF {
				return Field{Value: sb.String()}, 0, newlines, nil
			}
			if err != nil {
				return Field{}, 0, newlines, err
			}
			switch next {
			case '"':
				sb.WriteRune('"')
			case models.Delimiter, '\n':
				return Field{Value: sb.String()}, next, newlines, nil
			default:
				return Field{}, 0, newlines, fmt.Errorf("%w: unexpected %q after closing quote", ErrBadQuote, next)
			}
		}
	}

	var sb strings.Builder
	for {
		if c == models.Delimiter || c == '\n' {
			term = c
			break
		}
		sb.WriteRune(c)
		c, _, err = br.ReadRune()
		if err == io.EOF {
			term = 0
			break
		}
		if err != nil {
			return Field{}, 0, 0, err
		}
	}
	v := sb.String()
	return Field{Value: v, Null: v == models.NullToken}, term, 0, nil
}

// Args converts fields into SQL arguments, mapping NULL to nil.
func Args(fields []Field) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		if f.Null {
			out[i] = nil
		} else {
			out[i] = f.Value
		}
	}
	return out
}
