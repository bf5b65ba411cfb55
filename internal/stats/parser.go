package stats

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
)

// Parse failure kinds, matchable with errors.Is.
var (
	// ErrMissingField marks a record with fewer than two fields.
	ErrMissingField = errors.New("missing field")
	// ErrInvalidNumber marks a record whose second field is not a decimal
	// literal.
	ErrInvalidNumber = errors.New("invalid number")
)

// Row is one parsed record. Key aliases the input line and must be copied
// before the line buffer is reused.
type Row struct {
	Key   []byte
	Value float64
}

// ParseRow splits one line on ';' into a trimmed key and a decimal
// measurement. Fields past the second are ignored. Returned errors wrap
// ErrMissingField or ErrInvalidNumber; the parser holds no state and is
// safe to call from any number of goroutines.
func ParseRow(line []byte) (Row, error) {
	sep := bytes.IndexByte(line, ';')
	if sep == -1 {
		return Row{}, ErrMissingField
	}

	field := line[sep+1:]
	if end := bytes.IndexByte(field, ';'); end != -1 {
		field = field[:end]
	}

	v, err := parseDecimal(bytes.TrimSpace(field))
	if err != nil {
		return Row{}, err
	}

	return Row{Key: bytes.TrimSpace(line[:sep]), Value: v}, nil
}

// Largest power of ten exactly representable alongside a 15 digit mantissa.
var pow10 = [...]float64{
	1, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12, 1e13, 1e14, 1e15,
}

// parseDecimal parses a plain decimal literal: optional sign, digits, at
// most one dot, at least one digit. Exponent, inf and nan forms are
// rejected. Up to 15 digits the value is computed from an int64 mantissa
// and an exact power of ten, which matches strconv bit for bit; longer
// digit runs fall back to strconv for the correctly rounded result.
func parseDecimal(b []byte) (float64, error) {
	if len(b) == 0 {
		return 0, ErrInvalidNumber
	}

	i := 0
	negative := false
	switch b[0] {
	case '-':
		negative = true
		i++
	case '+':
		i++
	}

	var mantissa int64
	var digits, frac int
	dotSeen := false
	for ; i < len(b); i++ {
		c := b[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
			if dotSeen {
				frac++
			}
			if digits <= 15 {
				mantissa = mantissa*10 + int64(c-'0')
			}
		case c == '.':
			if dotSeen {
				return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, b)
			}
			dotSeen = true
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, b)
		}
	}
	if digits == 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, b)
	}

	if digits > 15 {
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, b)
		}
		return v, nil
	}

	v := float64(mantissa) / pow10[frac]
	if negative {
		v = -v
	}
	return v, nil
}
