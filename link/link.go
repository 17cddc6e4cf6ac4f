// Package link implements the link value: a tagged union of a constant,
// a process variable reference or one of the hardware address forms, and
// its single line text encoding.
package link

import (
	"strconv"
)

type Type byte

const (
	CONSTANT Type = iota
	PV_LINK
	VME_IO
	CAMAC_IO
	AB_IO
	GPIB_IO
	BITBUS_IO
	INST_IO
	BBGPIB_IO
	RF_IO
	VXI_IO
	NTYPES
)

var typeTokens = [NTYPES]string{
	"CONSTANT",
	"PV_LINK",
	"VME_IO",
	"CAMAC_IO",
	"AB_IO",
	"GPIB_IO",
	"BITBUS_IO",
	"INST_IO",
	"BBGPIB_IO",
	"RF_IO",
	"VXI_IO",
}

func (t Type) String() string {
	if t >= NTYPES {
		return "LINK_" + strconv.Itoa(int(t))
	}
	return typeTokens[t]
}

func ParseType(token string) (Type, bool) {
	for i, tok := range typeTokens {
		if tok == token {
			return Type(i), true
		}
	}
	return NTYPES, false
}

// IsHardware is true for every address form, INST_IO included.
func (t Type) IsHardware() bool {
	return t > PV_LINK && t < NTYPES
}

// Value is one variant of the union.
type Value interface {
	Type() Type
	String() string
	clone() Value
}

// Link holds exactly one variant; Type always agrees with Value.Type().
type Link struct {
	Type  Type
	Value Value
}

func New(t Type) *Link {
	l := &Link{}
	l.Reset(t)
	return l
}

// NewConstant is a CONSTANT link holding text, or no value when text is empty.
func NewConstant(text string) *Link {
	return &Link{Type: CONSTANT, Value: &Constant{Text: text, Set: text != ""}}
}

// Reset drops the current variant and installs a zero value of t.
func (l *Link) Reset(t Type) {
	l.Type = t
	l.Value = zero(t)
}

func zero(t Type) Value {
	switch t {
	case PV_LINK:
		return &PV{}
	case VME_IO:
		return &VME{}
	case CAMAC_IO:
		return &CAMAC{}
	case AB_IO:
		return &AB{}
	case GPIB_IO:
		return &GPIB{}
	case BITBUS_IO:
		return &BitBus{}
	case INST_IO:
		return &Inst{}
	case BBGPIB_IO:
		return &BBGPIB{}
	case RF_IO:
		return &RF{}
	case VXI_IO:
		return &VXI{}
	default:
		return &Constant{}
	}
}

// As returns the active variant when it has the requested Go type.
func As[T Value](l *Link) (T, bool) {
	v, ok := l.Value.(T)
	return v, ok
}

func (l *Link) Clone() *Link {
	if l == nil {
		return nil
	}
	c := &Link{Type: l.Type}
	if l.Value != nil {
		c.Value = l.Value.clone()
	} else {
		c.Value = zero(l.Type)
	}
	return c
}

// Equal compares variants by their serialized form; two constants without
// a value and a constant holding "0" are equivalent.
func (l *Link) Equal(o *Link) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.Type == o.Type && l.String() == o.String()
}

// String serializes the link as an input or output link.
func (l *Link) String() string {
	if l.Value == nil {
		return zero(l.Type).String()
	}
	return l.Value.String()
}

type Constant struct {
	Text string
	Set  bool
}

func (c *Constant) Type() Type { return CONSTANT }

func (c *Constant) String() string {
	if !c.Set {
		return "0"
	}
	return c.Text
}

func (c *Constant) clone() Value { cc := *c; return &cc }

// Flag is a PV link option; only 0 and 1 are meaningful.
type Flag uint8

func (f Flag) norm() Flag {
	if f > 1 {
		return 0
	}
	return f
}

var (
	ppString = [2]string{"NPP", "PP"}
	msString = [2]string{"NMS", "MS"}
)

type PV struct {
	Name string
	PP   Flag
	MS   Flag
}

func (p *PV) Type() Type { return PV_LINK }

func (p *PV) String() string {
	return p.Name + " " + ppString[p.PP.norm()] + " " + msString[p.MS.norm()]
}

func (p *PV) clone() Value { pc := *p; return &pc }

func itoa(v int16) string { return strconv.Itoa(int(v)) }

func utoa(v uint8) string { return strconv.Itoa(int(v)) }

type VME struct {
	Card   int16
	Signal int16
	Parm   string
}

func (v *VME) Type() Type { return VME_IO }

func (v *VME) String() string {
	return "#C" + itoa(v.Card) + " S" + itoa(v.Signal) + " @" + v.Parm
}

func (v *VME) clone() Value { vc := *v; return &vc }

type CAMAC struct {
	B, C, N, A, F int16
	Parm          string
}

func (c *CAMAC) Type() Type { return CAMAC_IO }

func (c *CAMAC) String() string {
	return "#B" + itoa(c.B) + " C" + itoa(c.C) + " N" + itoa(c.N) +
		" A" + itoa(c.A) + " F" + itoa(c.F) + " @" + c.Parm
}

func (c *CAMAC) clone() Value { cc := *c; return &cc }

type RF struct {
	Cryo, Micro, Dataset, Element int16
}

func (r *RF) Type() Type { return RF_IO }

func (r *RF) String() string {
	return "#R" + itoa(r.Cryo) + " M" + itoa(r.Micro) +
		" D" + itoa(r.Dataset) + " E" + itoa(r.Element)
}

func (r *RF) clone() Value { rc := *r; return &rc }

type AB struct {
	Link, Adapter, Card, Signal int16
	Parm                        string
}

func (a *AB) Type() Type { return AB_IO }

func (a *AB) String() string {
	return "#L" + itoa(a.Link) + " A" + itoa(a.Adapter) + " C" + itoa(a.Card) +
		" S" + itoa(a.Signal) + " @" + a.Parm
}

func (a *AB) clone() Value { ac := *a; return &ac }

type GPIB struct {
	Link, Addr int16
	Parm       string
}

func (g *GPIB) Type() Type { return GPIB_IO }

func (g *GPIB) String() string {
	return "#L" + itoa(g.Link) + " A" + itoa(g.Addr) + " @" + g.Parm
}

func (g *GPIB) clone() Value { gc := *g; return &gc }

type BitBus struct {
	Link, Node, Port, Signal uint8
	Parm                     string
}

func (b *BitBus) Type() Type { return BITBUS_IO }

func (b *BitBus) String() string {
	return "#L" + utoa(b.Link) + " N" + utoa(b.Node) + " P" + utoa(b.Port) +
		" S" + utoa(b.Signal) + " @" + b.Parm
}

func (b *BitBus) clone() Value { bc := *b; return &bc }

type BBGPIB struct {
	Link, BBAddr, GPIBAddr uint8
	Parm                   string
}

func (b *BBGPIB) Type() Type { return BBGPIB_IO }

func (b *BBGPIB) String() string {
	return "#L" + utoa(b.Link) + " B" + utoa(b.BBAddr) + " G" + utoa(b.GPIBAddr) +
		" @" + b.Parm
}

func (b *BBGPIB) clone() Value { bc := *b; return &bc }

type Inst struct {
	Parm string
}

func (i *Inst) Type() Type { return INST_IO }

func (i *Inst) String() string { return "@" + i.Parm }

func (i *Inst) clone() Value { ic := *i; return &ic }

// VXI is either dynamically addressed (frame and slot) or static (logical
// address). The static form carries no C token, so static text whose parm
// contains a 'C' reads back as dynamic.
type VXI struct {
	Dynamic         bool
	Frame, Slot, LA int16
	Signal          int16
	Parm            string
}

func (v *VXI) Type() Type { return VXI_IO }

func (v *VXI) String() string {
	if v.Dynamic {
		return "#V" + itoa(v.Frame) + " C" + itoa(v.Slot) + " S" + itoa(v.Signal) +
			" @" + v.Parm
	}
	return "#V" + itoa(v.LA) + " S" + itoa(v.Signal) + " @" + v.Parm
}

func (v *VXI) clone() Value { vc := *v; return &vc }
