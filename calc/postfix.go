// Package calc compiles infix calculation expressions to postfix. It is
// used to validate the text of calc fields; evaluation is left to the
// record support that owns the expression.
package calc

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/utils"
)

// MaxInfix is the longest expression accepted, exclusive.
const MaxInfix = 100

var (
	ErrTooLong          = errors.New("calc: expression too long")
	ErrUnknownElement   = errors.New("calc: unknown element")
	ErrOperandExpected  = errors.New("calc: operand expected")
	ErrOperatorExpected = errors.New("calc: operator expected")
	ErrParen            = errors.New("calc: unbalanced parenthesis")
	ErrBadConstant      = errors.New("calc: bad constant")
)

type kind byte

const (
	operand kind = iota
	unary
	binary
	closeParen
	conditional
	separator
	constant
	minus
)

type element struct {
	text string
	isp  int // priority on the stack
	icp  int // priority when arriving
	kind kind
	code string
}

// Matching is by prefix in table order, so longer names come first.
var elements = []element{
	{"ABS", 7, 8, unary, "ABS"},
	{"NOT", 7, 8, unary, "NEG"},
	{"-", 7, 8, minus, "NEG"},
	{"SQRT", 7, 8, unary, "SQRT"},
	{"SQR", 7, 8, unary, "SQRT"},
	{"EXP", 7, 8, unary, "EXP"},
	{"LOGE", 7, 8, unary, "LN"},
	{"LN", 7, 8, unary, "LN"},
	{"LOG", 7, 8, unary, "LOG"},
	{"ACOS", 7, 8, unary, "ACOS"},
	{"ASIN", 7, 8, unary, "ASIN"},
	{"ATAN2", 7, 8, unary, "ATAN2"},
	{"ATAN", 7, 8, unary, "ATAN"},
	{"MAX", 7, 8, unary, "MAX"},
	{"MIN", 7, 8, unary, "MIN"},
	{"CEIL", 7, 8, unary, "CEIL"},
	{"FLOOR", 7, 8, unary, "FLOOR"},
	{"NINT", 7, 8, unary, "NINT"},
	{"COSH", 7, 8, unary, "COSH"},
	{"COS", 7, 8, unary, "COS"},
	{"SINH", 7, 8, unary, "SINH"},
	{"SIN", 7, 8, unary, "SIN"},
	{"TANH", 7, 8, unary, "TANH"},
	{"TAN", 7, 8, unary, "TAN"},
	{"!", 7, 8, unary, "!"},
	{"~", 7, 8, unary, "~"},
	{"RNDM", 0, 0, operand, "RNDM"},
	{"OR", 1, 1, binary, "|"},
	{"AND", 2, 2, binary, "&"},
	{"XOR", 1, 1, binary, "XOR"},
	{"PI", 0, 0, operand, "PI"},
	{"D2R", 0, 0, operand, "D2R"},
	{"R2D", 0, 0, operand, "R2D"},
	{"A", 0, 0, operand, "A"},
	{"B", 0, 0, operand, "B"},
	{"C", 0, 0, operand, "C"},
	{"D", 0, 0, operand, "D"},
	{"E", 0, 0, operand, "E"},
	{"F", 0, 0, operand, "F"},
	{"G", 0, 0, operand, "G"},
	{"H", 0, 0, operand, "H"},
	{"I", 0, 0, operand, "I"},
	{"J", 0, 0, operand, "J"},
	{"K", 0, 0, operand, "K"},
	{"L", 0, 0, operand, "L"},
	{"0", 0, 0, constant, ""},
	{"1", 0, 0, constant, ""},
	{"2", 0, 0, constant, ""},
	{"3", 0, 0, constant, ""},
	{"4", 0, 0, constant, ""},
	{"5", 0, 0, constant, ""},
	{"6", 0, 0, constant, ""},
	{"7", 0, 0, constant, ""},
	{"8", 0, 0, constant, ""},
	{"9", 0, 0, constant, ""},
	{".", 0, 0, constant, ""},
	{"?", 0, 0, conditional, "?"},
	{":", 0, 0, conditional, ":"},
	{"(", 0, 8, unary, "("},
	{"^", 6, 6, binary, "^"},
	{"**", 6, 6, binary, "^"},
	{"+", 4, 4, binary, "+"},
	{"*", 5, 5, binary, "*"},
	{"/", 5, 5, binary, "/"},
	{"%", 5, 5, binary, "%"},
	{",", 0, 0, separator, ","},
	{")", 0, 0, closeParen, ")"},
	{"||", 1, 1, binary, "||"},
	{"|", 1, 1, binary, "|"},
	{"&&", 2, 2, binary, "&&"},
	{"&", 2, 2, binary, "&"},
	{">>", 2, 2, binary, ">>"},
	{">=", 3, 3, binary, ">="},
	{">", 3, 3, binary, ">"},
	{"<<", 2, 2, binary, "<<"},
	{"<=", 3, 3, binary, "<="},
	{"<", 3, 3, binary, "<"},
	{"#", 3, 3, binary, "#"},
	{"==", 3, 3, binary, "=="},
	{"=", 3, 3, binary, "=="},
}

const (
	unaryMinusISP  = 7
	unaryMinusICP  = 8
	binaryMinusPri = 4
	condEnd        = "END"
)

func lookup(s string) (element, bool) {
	for _, el := range elements {
		if strings.HasPrefix(s, el.text) {
			return el, true
		}
	}
	return element{}, false
}

// scanConstant takes digits, dots and an exponent off the front of s.
func scanConstant(s string) (lexeme, rest string) {
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c == '.':
			i++
		case c == 'E':
			i++
			if i < len(s) && (s[i] == '+' || s[i] == '-') {
				i++
			}
		default:
			return s[:i], s[i:]
		}
	}
	return s, ""
}

type compiler struct {
	out   []string
	stack []element
}

func (c *compiler) top() *element {
	return &c.stack[len(c.stack)-1]
}

func (c *compiler) pop() {
	c.out = append(c.out, c.top().code)
	c.stack = c.stack[:len(c.stack)-1]
}

// popWhile moves operators with stack priority of at least pri to the
// output; strict makes the comparison strictly greater.
func (c *compiler) popWhile(pri int, strict bool) {
	for len(c.stack) > 0 {
		isp := c.top().isp
		if isp < pri || (strict && isp == pri) {
			return
		}
		c.pop()
	}
}

// popToParen flushes operators down to the innermost open parenthesis
// and leaves it on the stack.
func (c *compiler) popToParen() error {
	for {
		if len(c.stack) == 0 {
			return ErrParen
		}
		if c.top().text == "(" {
			return nil
		}
		if len(c.stack) == 1 {
			return ErrParen
		}
		c.pop()
	}
}

// Postfix translates infix text into space separated postfix tokens.
// Letters are case insensitive; blanks separate nothing and are skipped.
func Postfix(infix string) (string, error) {
	if len(infix) >= MaxInfix {
		return "", ErrTooLong
	}
	s := strings.ToUpper(infix)
	c := &compiler{}
	operandNeeded := true
	if s == "" {
		return "", nil
	}
	for {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			break
		}
		pos := len(infix) - len(s)
		el, ok := lookup(s)
		if !ok {
			return "", errors.Wrapf(ErrUnknownElement, "at %d", pos)
		}
		s = s[len(el.text):]
		switch el.kind {
		case operand:
			if !operandNeeded {
				return "", errors.Wrapf(ErrOperatorExpected, "at %d", pos)
			}
			c.out = append(c.out, el.code)
			operandNeeded = false
		case constant:
			if !operandNeeded {
				return "", errors.Wrapf(ErrOperatorExpected, "at %d", pos)
			}
			lexeme, rest := scanConstant(el.text + s)
			if _, tail := utils.Strtod(lexeme); tail == lexeme {
				return "", errors.Wrapf(ErrBadConstant, "%q at %d", lexeme, pos)
			}
			c.out = append(c.out, lexeme)
			s = rest
			operandNeeded = false
		case binary:
			if operandNeeded {
				return "", errors.Wrapf(ErrOperandExpected, "at %d", pos)
			}
			c.popWhile(el.icp, false)
			c.stack = append(c.stack, el)
			operandNeeded = true
		case unary:
			if !operandNeeded {
				return "", errors.Wrapf(ErrOperatorExpected, "at %d", pos)
			}
			c.popWhile(el.icp, false)
			c.stack = append(c.stack, el)
		case minus:
			icp := unaryMinusICP
			if operandNeeded {
				el.isp = unaryMinusISP
				el.code = "NEG"
			} else {
				icp = binaryMinusPri
				el.isp = binaryMinusPri
				el.code = "-"
				operandNeeded = true
			}
			c.popWhile(icp, false)
			c.stack = append(c.stack, el)
		case separator:
			if operandNeeded {
				return "", errors.Wrapf(ErrOperandExpected, "at %d", pos)
			}
			if err := c.popToParen(); err != nil {
				return "", errors.Wrapf(err, "at %d", pos)
			}
			operandNeeded = true
		case closeParen:
			if operandNeeded {
				return "", errors.Wrapf(ErrOperandExpected, "at %d", pos)
			}
			if err := c.popToParen(); err != nil {
				return "", errors.Wrapf(err, "at %d", pos)
			}
			c.stack = c.stack[:len(c.stack)-1]
		case conditional:
			if operandNeeded {
				return "", errors.Wrapf(ErrOperandExpected, "at %d", pos)
			}
			c.popWhile(el.icp, true)
			c.out = append(c.out, el.code)
			if el.text == ":" {
				el.code = condEnd
				c.stack = append(c.stack, el)
			}
			operandNeeded = true
		}
	}
	if operandNeeded {
		return "", ErrOperandExpected
	}
	for len(c.stack) > 0 {
		if c.top().text == "(" {
			return "", ErrParen
		}
		c.pop()
	}
	return strings.Join(c.out, " "), nil
}
