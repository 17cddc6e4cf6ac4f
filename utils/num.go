package utils

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Numeric scanners with C library semantics: each returns the value and
// the unconsumed rest of the input. A scanner that consumed nothing returns
// the input unchanged, so `rest == s` means "no number here".

func skipSpace(s string) string {
	return strings.TrimLeft(s, " \t\n\r\f\v")
}

func digitVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10
	}
	return 99
}

// scanUnsigned reads digits in base 0 (auto), 8, 10 or 16.
func scanUnsigned(s string, base int) (v uint64, rest string, overflow bool) {
	i := 0
	if base == 0 {
		base = 10
		if len(s) > 0 && s[0] == '0' {
			base = 8
			if len(s) > 2 && (s[1] == 'x' || s[1] == 'X') && digitVal(s[2]) < 16 {
				base = 16
				i = 2
			}
		}
	}
	start := i
	for ; i < len(s); i++ {
		d := digitVal(s[i])
		if d >= base {
			break
		}
		if v > (math.MaxUint64-uint64(d))/uint64(base) {
			overflow = true
		}
		v = v*uint64(base) + uint64(d)
	}
	if i == start {
		return 0, s, false
	}
	return v, s[i:], overflow
}

// Strtol is strtol(s, &end, 0).
func Strtol(s string) (int64, string) {
	p := skipSpace(s)
	neg := false
	if len(p) > 0 && (p[0] == '+' || p[0] == '-') {
		neg = p[0] == '-'
		p = p[1:]
	}
	u, rest, overflow := scanUnsigned(p, 0)
	if rest == p {
		return 0, s
	}
	switch {
	case neg && (overflow || u > math.MaxInt64+1):
		return math.MinInt64, rest
	case !neg && (overflow || u > math.MaxInt64):
		return math.MaxInt64, rest
	case neg:
		return -int64(u), rest
	}
	return int64(u), rest
}

// Strtoul is strtoul(s, &end, 0); a leading minus negates modulo 2^64.
func Strtoul(s string) (uint64, string) {
	p := skipSpace(s)
	neg := false
	if len(p) > 0 && (p[0] == '+' || p[0] == '-') {
		neg = p[0] == '-'
		p = p[1:]
	}
	u, rest, overflow := scanUnsigned(p, 0)
	if rest == p {
		return 0, s
	}
	if overflow {
		return math.MaxUint64, rest
	}
	if neg {
		return -u, rest
	}
	return u, rest
}

// Strtod is strtod(s, &end): decimal and hex floats, inf and nan.
func Strtod(s string) (float64, string) {
	p := skipSpace(s)
	i := 0
	if i < len(p) && (p[i] == '+' || p[i] == '-') {
		i++
	}
	lower := strings.ToLower(p[i:])
	for _, word := range []string{"infinity", "inf", "nan"} {
		if strings.HasPrefix(lower, word) {
			v, err := strconv.ParseFloat(p[:i+len(word)], 64)
			if err != nil {
				return 0, s
			}
			return v, p[i+len(word):]
		}
	}
	if len(p) > i+2 && p[i] == '0' && (p[i+1] == 'x' || p[i+1] == 'X') {
		return strtodHex(s, p, i)
	}
	j := i
	digits := 0
	for j < len(p) && p[j] >= '0' && p[j] <= '9' {
		j++
		digits++
	}
	if j < len(p) && p[j] == '.' {
		j++
		for j < len(p) && p[j] >= '0' && p[j] <= '9' {
			j++
			digits++
		}
	}
	if digits == 0 {
		return 0, s
	}
	if j < len(p) && (p[j] == 'e' || p[j] == 'E') {
		k := j + 1
		if k < len(p) && (p[k] == '+' || p[k] == '-') {
			k++
		}
		if k < len(p) && p[k] >= '0' && p[k] <= '9' {
			for k < len(p) && p[k] >= '0' && p[k] <= '9' {
				k++
			}
			j = k
		}
	}
	v, err := strconv.ParseFloat(p[:j], 64)
	if err != nil && !isRangeErr(err) {
		return 0, s
	}
	return v, p[j:]
}

func strtodHex(s, p string, i int) (float64, string) {
	j := i + 2
	digits := 0
	for j < len(p) && digitVal(p[j]) < 16 {
		j++
		digits++
	}
	if j < len(p) && p[j] == '.' {
		j++
		for j < len(p) && digitVal(p[j]) < 16 {
			j++
			digits++
		}
	}
	if digits == 0 {
		// "0x" with nothing after it scans as the zero
		return 0, p[i+1:]
	}
	mantissa := p[:j]
	exp := "p0"
	if j < len(p) && (p[j] == 'p' || p[j] == 'P') {
		k := j + 1
		if k < len(p) && (p[k] == '+' || p[k] == '-') {
			k++
		}
		if k < len(p) && p[k] >= '0' && p[k] <= '9' {
			for k < len(p) && p[k] >= '0' && p[k] <= '9' {
				k++
			}
			exp = p[j:k]
			j = k
		}
	}
	v, err := strconv.ParseFloat(mantissa+exp, 64)
	if err != nil && !isRangeErr(err) {
		return 0, s
	}
	return v, p[j:]
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// ScanShort is sscanf(s, "%hd", &v): ok is false when no digits were
// found, in which case the caller keeps its previous value. Out of range
// input wraps silently.
func ScanShort(s string) (v int16, ok bool) {
	p := skipSpace(s)
	neg := false
	if len(p) > 0 && (p[0] == '+' || p[0] == '-') {
		neg = p[0] == '-'
		p = p[1:]
	}
	u, rest, _ := scanUnsigned(p, 10)
	if rest == p {
		return 0, false
	}
	if neg {
		return int16(-int64(u)), true
	}
	return int16(int64(u)), true
}

// FitsSigned reports whether v survives a round trip through T.
func FitsSigned[T constraints.Signed](v int64) bool {
	return int64(T(v)) == v
}

// FitsUnsigned reports whether v survives a round trip through T.
func FitsUnsigned[T constraints.Unsigned](v uint64) bool {
	return uint64(T(v)) == v
}
