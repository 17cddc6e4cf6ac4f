package dbf

import "strconv"

type Special int16

const (
	SPC_NOMOD     Special = 1
	SPC_DBADDR    Special = 2
	SPC_SCAN      Special = 3
	SPC_ATTRIBUTE Special = 4
	SPC_ALARMACK  Special = 5
	SPC_AS        Special = 6
	SPC_MOD       Special = 100
	SPC_RESET     Special = 101
	SPC_LINCONV   Special = 102
	SPC_CALC      Special = 103
)

type token[T comparable] struct {
	str   string
	value T
}

var specialTokens = []token[Special]{
	{"SPC_NOMOD", SPC_NOMOD},
	{"SPC_DBADDR", SPC_DBADDR},
	{"SPC_SCAN", SPC_SCAN},
	{"SPC_ATTRIBUTE", SPC_ATTRIBUTE},
	{"SPC_ALARMACK", SPC_ALARMACK},
	{"SPC_AS", SPC_AS},
	{"SPC_MOD", SPC_MOD},
	{"SPC_RESET", SPC_RESET},
	{"SPC_LINCONV", SPC_LINCONV},
	{"SPC_CALC", SPC_CALC},
}

// String yields the SPC_ token, or the bare number for record specific
// values.
func (s Special) String() string {
	for _, t := range specialTokens {
		if t.value == s {
			return t.str
		}
	}
	return strconv.Itoa(int(s))
}

// ParseSpecial accepts a token or a decimal number.
func ParseSpecial(s string) (Special, bool) {
	for _, t := range specialTokens {
		if t.str == s {
			return t.value, true
		}
	}
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil || n < 0 {
		return 0, false
	}
	return Special(n), true
}

// GuiGroup is the prompt group; zero means the field is not user
// configurable.
type GuiGroup byte

var guiTokens = []string{
	"",
	"GUI_COMMON",
	"GUI_ALARMS",
	"GUI_BITS1",
	"GUI_BITS2",
	"GUI_CALC",
	"GUI_CLOCK",
	"GUI_COMPRESS",
	"GUI_CONVERT",
	"GUI_DISPLAY",
	"GUI_HIST",
	"GUI_INPUTS",
	"GUI_LINKS",
	"GUI_MBB",
	"GUI_MOTOR",
	"GUI_OUTPUT",
	"GUI_PID",
	"GUI_PULSE",
	"GUI_SELECT",
	"GUI_SEQ1",
	"GUI_SEQ2",
	"GUI_SEQ3",
	"GUI_SUB",
	"GUI_TIMER",
	"GUI_WAVE",
	"GUI_SCAN",
}

const (
	GUI_COMMON GuiGroup = iota + 1
	GUI_ALARMS
	GUI_BITS1
	GUI_BITS2
	GUI_CALC
	GUI_CLOCK
	GUI_COMPRESS
	GUI_CONVERT
	GUI_DISPLAY
	GUI_HIST
	GUI_INPUTS
	GUI_LINKS
	GUI_MBB
	GUI_MOTOR
	GUI_OUTPUT
	GUI_PID
	GUI_PULSE
	GUI_SELECT
	GUI_SEQ1
	GUI_SEQ2
	GUI_SEQ3
	GUI_SUB
	GUI_TIMER
	GUI_WAVE
	GUI_SCAN
)

func (g GuiGroup) String() string {
	if int(g) < len(guiTokens) {
		return guiTokens[g]
	}
	return ""
}

func ParseGuiGroup(s string) (GuiGroup, bool) {
	for i := 1; i < len(guiTokens); i++ {
		if guiTokens[i] == s {
			return GuiGroup(i), true
		}
	}
	return 0, false
}

// Base is the display base of integer fields.
type Base byte

const (
	DECIMAL Base = iota
	HEX
)

func ParseBase(s string) (Base, bool) {
	switch s {
	case "DECIMAL":
		return DECIMAL, true
	case "HEX":
		return HEX, true
	}
	return DECIMAL, false
}

// ASL is the access security level. The zero value is ASL1, the level
// of every field that does not declare one.
type ASL byte

const (
	ASL1 ASL = iota
	ASL0
)

func (a ASL) String() string {
	if a == ASL0 {
		return "ASL0"
	}
	return "ASL1"
}

func ParseASL(s string) (ASL, bool) {
	switch s {
	case "ASL0":
		return ASL0, true
	case "ASL1":
		return ASL1, true
	}
	return ASL1, false
}
