// Package dbf holds the static vocabulary of the database definition
// language: field types, special processing tags, GUI prompt groups,
// display bases and access security levels, each with its textual token.
package dbf

import "strconv"

type Type byte

const (
	STRING Type = iota
	CHAR
	UCHAR
	SHORT
	USHORT
	LONG
	ULONG
	FLOAT
	DOUBLE
	ENUM
	MENU
	DEVICE
	INLINK
	OUTLINK
	FWDLINK
	NOACCESS
	NTYPES
)

var typeTokens = [NTYPES]string{
	"DBF_STRING",
	"DBF_CHAR",
	"DBF_UCHAR",
	"DBF_SHORT",
	"DBF_USHORT",
	"DBF_LONG",
	"DBF_ULONG",
	"DBF_FLOAT",
	"DBF_DOUBLE",
	"DBF_ENUM",
	"DBF_MENU",
	"DBF_DEVICE",
	"DBF_INLINK",
	"DBF_OUTLINK",
	"DBF_FWDLINK",
	"DBF_NOACCESS",
}

// range names as reported by the cursor Range call
var rangeNames = [NTYPES]string{
	"STRING", "CHAR", "UCHAR", "SHORT", "USHORT", "LONG", "ULONG:",
	"FLOAT", "DOUBLE", "ENUM", "MENU", "DEVICE",
	"INLINK", "OUTLINK", "FWDLINK", "",
}

func (t Type) Valid() bool {
	return t < NTYPES
}

func (t Type) String() string {
	if !t.Valid() {
		return "DBF_" + strconv.Itoa(int(t))
	}
	return typeTokens[t]
}

// RangeName is the short type name; ULONG keeps its historical colon.
func (t Type) RangeName() string {
	if !t.Valid() {
		return ""
	}
	return rangeNames[t]
}

func ParseType(token string) (Type, bool) {
	for i, tok := range typeTokens {
		if tok == token {
			return Type(i), true
		}
	}
	return NTYPES, false
}

func (t Type) IsLink() bool {
	return t == INLINK || t == OUTLINK || t == FWDLINK
}

func (t Type) IsNumeric() bool {
	return t >= CHAR && t <= ENUM
}

func (t Type) IsUnsigned() bool {
	return t == UCHAR || t == USHORT || t == ULONG || t == ENUM
}

func (t Type) IsChoice() bool {
	return t == MENU || t == DEVICE
}

// DCT is the coarse classification used by configuration tools.
type DCT byte

const (
	DCT_STRING DCT = iota
	DCT_INTEGER
	DCT_REAL
	DCT_MENU
	DCT_MENUFORM
	DCT_INLINK
	DCT_OUTLINK
	DCT_FWDLINK
	DCT_NOACCESS
)

var dbfToDCT = [NTYPES]DCT{
	DCT_STRING,
	DCT_INTEGER, DCT_INTEGER, DCT_INTEGER, DCT_INTEGER, DCT_INTEGER, DCT_INTEGER,
	DCT_REAL, DCT_REAL,
	DCT_INTEGER,
	DCT_MENU,
	DCT_MENUFORM,
	DCT_INLINK, DCT_OUTLINK, DCT_FWDLINK,
	DCT_NOACCESS,
}

func (t Type) DCT() DCT {
	if !t.Valid() {
		return DCT_NOACCESS
	}
	return dbfToDCT[t]
}

// LinkDCT says how a link field is edited: as a constant, a PV name or
// a hardware address form.
type LinkDCT int

const (
	DCT_LINK_CONSTANT LinkDCT = iota
	DCT_LINK_FORM
	DCT_LINK_PV
)
