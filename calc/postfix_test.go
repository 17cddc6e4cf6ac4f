package calc

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestPostfix(t *testing.T) {
	cases := []struct {
		infix   string
		postfix string
	}{
		{"", ""},
		{"A", "A"},
		{"a+b", "A B +"},
		{"A+B*C", "A B C * +"},
		{"(A+B)*C", "A B + C *"},
		{"2*(A+1)", "2 A 1 + *"},
		{"-A", "A NEG"},
		{"A-B", "A B -"},
		{"A - -B", "A B NEG -"},
		{"MAX(A,B)", "A B MAX"},
		{"ABS(A-10)", "A 10 - ABS"},
		{"A?B:C", "A ? B : C END"},
		{"A>=B&&C<D", "A B >= C D < &&"},
		{"1.5E3+A", "1.5E3 A +"},
		{"SQRT(A)**2", "A SQRT 2 ^"},
		{"ATAN2(A,B)", "A B ATAN2"},
		{"A#B", "A B #"},
		{"PI*D2R", "PI D2R *"},
	}
	for _, c := range cases {
		got, err := Postfix(c.infix)
		if assert.NoError(t, err, c.infix) {
			assert.Equal(t, c.postfix, got, c.infix)
		}
	}
}

func TestPostfixErrors(t *testing.T) {
	cases := []struct {
		infix string
		err   error
	}{
		{"A B", ErrOperatorExpected},
		{"A+", ErrOperandExpected},
		{"*A", ErrOperandExpected},
		{"(A", ErrParen},
		{"A)", ErrParen},
		{"A,B", ErrParen},
		{"A $ B", ErrUnknownElement},
		{"Z", ErrUnknownElement},
		{".", ErrBadConstant},
		{"A?", ErrOperandExpected},
		{strings.Repeat("A+", 50) + "A", ErrTooLong},
	}
	for _, c := range cases {
		_, err := Postfix(c.infix)
		assert.True(t, errors.Is(err, c.err), "%q: %v", c.infix, err)
	}
}
