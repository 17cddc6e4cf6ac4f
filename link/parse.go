package link

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/utils"
)

// MaxText bounds the text a link accepts.
const MaxText = 80

// Format serializes the link as held by a field of type ft. Forward links
// only know constants ("0") and bare PV names.
func (l *Link) Format(ft dbf.Type) (string, bool) {
	if ft != dbf.FWDLINK {
		return l.String(), true
	}
	switch v := l.Value.(type) {
	case *Constant:
		return "0", true
	case *PV:
		return v.Name, true
	}
	return "", false
}

// Put parses text into the link, switching variant when the text calls for
// one. Numeric text makes a constant, `#...` and `@...` a hardware address,
// anything else a PV reference. A hardware link keeps its own grammar for
// `#` text, so a link typed by device support is not silently re-typed.
// On error the link is left untouched.
func (l *Link) Put(text string, ft dbf.Type) error {
	if len(text) >= MaxText {
		return errors.Wrapf(dbstatic_errors.ErrBadField, "link text longer than %d", MaxText-1)
	}
	s := strings.Trim(text, " \t")
	if s == "" {
		if l.Type == PV_LINK {
			l.Reset(CONSTANT)
		}
		if l.Type != CONSTANT {
			return errors.Wrap(dbstatic_errors.ErrBadField, "empty hardware link")
		}
		l.Value = &Constant{}
		return nil
	}
	if _, rest := utils.Strtod(s); rest == "" {
		if l.Type != CONSTANT {
			l.Reset(CONSTANT)
		}
		l.Value = &Constant{Text: s, Set: true}
		return nil
	}
	if s[0] != '#' && s[0] != '@' {
		l.putPV(s)
		return nil
	}
	if ft == dbf.FWDLINK {
		return errors.Wrap(dbstatic_errors.ErrBadField, "forward links take PV names only")
	}
	target := l.Type
	switch {
	case s[0] == '@':
		target = INST_IO
	case !target.IsHardware() || target == INST_IO:
		var ok bool
		if target, ok = Infer(s); !ok {
			return errors.Wrapf(dbstatic_errors.ErrBadField, "unknown hardware address %q", s)
		}
	}
	var v Value
	if target == l.Type && l.Value != nil {
		v = l.Value.clone()
	} else {
		v = zero(target)
	}
	if !parseHardware(v, s) {
		return errors.Wrapf(dbstatic_errors.ErrBadField, "bad %s address %q", target, s)
	}
	l.Type, l.Value = target, v
	return nil
}

func (l *Link) putPV(s string) {
	var pp, ms Flag
	name := s
	if sp := strings.IndexByte(s, ' '); sp >= 0 {
		opts := s[sp:]
		if strings.Contains(opts, " PP") || strings.Contains(opts, ".PP") {
			pp = 1
		}
		if strings.Contains(opts, " MS") || strings.Contains(opts, ".MS") {
			ms = 1
		}
		name = s[:sp]
	}
	if l.Type != PV_LINK {
		l.Reset(PV_LINK)
	}
	l.Value = &PV{Name: name, PP: pp, MS: ms}
}

// Infer names the hardware variant whose tokens appear in text.
func Infer(text string) (Type, bool) {
	s := strings.TrimLeft(text, " \t")
	if strings.HasPrefix(s, "@") {
		return INST_IO, true
	}
	if !strings.HasPrefix(s, "#") {
		return NTYPES, false
	}
	addr := strings.TrimLeft(s[1:], " \t")
	if at := strings.IndexByte(addr, '@'); at >= 0 {
		addr = addr[:at]
	}
	if addr == "" {
		return NTYPES, false
	}
	switch addr[0] {
	case 'C':
		return VME_IO, true
	case 'B':
		return CAMAC_IO, true
	case 'R':
		return RF_IO, true
	case 'V':
		return VXI_IO, true
	case 'L':
		rest := addr[1:]
		switch {
		case strings.ContainsRune(rest, 'N'):
			return BITBUS_IO, true
		case strings.ContainsRune(rest, 'G'):
			return BBGPIB_IO, true
		case strings.ContainsRune(rest, 'C'):
			return AB_IO, true
		}
		return GPIB_IO, true
	}
	return NTYPES, false
}

// scanner replays the strchr/sscanf walk over the address text: each token
// letter is searched from the current position and the number right after
// it is read with %hd rules.
type scanner struct {
	rest string
}

func (sc *scanner) skipTo(c byte) bool {
	i := strings.IndexByte(sc.rest, c)
	if i < 0 {
		return false
	}
	sc.rest = sc.rest[i+1:]
	return true
}

func (sc *scanner) has(c byte) bool {
	return strings.IndexByte(sc.rest, c) >= 0
}

func (sc *scanner) short(dst *int16) {
	if v, ok := utils.ScanShort(sc.rest); ok {
		*dst = v
	}
}

func (sc *scanner) octet(dst *uint8) {
	if v, ok := utils.ScanShort(sc.rest); ok {
		*dst = uint8(v)
	}
}

// token finds letter c and reads the number after it.
func (sc *scanner) token(c byte, dst *int16) bool {
	if !sc.skipTo(c) {
		return false
	}
	sc.short(dst)
	return true
}

func (sc *scanner) tokenByte(c byte, dst *uint8) bool {
	if !sc.skipTo(c) {
		return false
	}
	sc.octet(dst)
	return true
}

func (sc *scanner) parm() string {
	i := strings.IndexByte(sc.rest, '@')
	if i < 0 {
		return ""
	}
	return sc.rest[i+1:]
}

func parseHardware(v Value, s string) bool {
	sc := &scanner{rest: s}
	switch v := v.(type) {
	case *Inst:
		v.Parm = sc.parm()
		return true
	case *VXI:
		return parseVXI(v, sc)
	}
	if !sc.skipTo('#') {
		return false
	}
	switch v := v.(type) {
	case *VME:
		if !sc.token('C', &v.Card) || !sc.token('S', &v.Signal) {
			return false
		}
		v.Parm = sc.parm()
	case *CAMAC:
		if !sc.token('B', &v.B) || !sc.token('C', &v.C) || !sc.token('N', &v.N) {
			return false
		}
		if !sc.token('A', &v.A) {
			v.A = 0
		}
		if !sc.token('F', &v.F) {
			v.F = 0
		}
		v.Parm = sc.parm()
	case *RF:
		return sc.token('R', &v.Cryo) && sc.token('M', &v.Micro) &&
			sc.token('D', &v.Dataset) && sc.token('E', &v.Element)
	case *AB:
		if !sc.token('L', &v.Link) || !sc.token('A', &v.Adapter) ||
			!sc.token('C', &v.Card) || !sc.token('S', &v.Signal) {
			return false
		}
		v.Parm = sc.parm()
	case *GPIB:
		if !sc.token('L', &v.Link) || !sc.token('A', &v.Addr) {
			return false
		}
		v.Parm = sc.parm()
	case *BitBus:
		if !sc.tokenByte('L', &v.Link) || !sc.tokenByte('N', &v.Node) ||
			!sc.tokenByte('P', &v.Port) || !sc.tokenByte('S', &v.Signal) {
			return false
		}
		v.Parm = sc.parm()
	case *BBGPIB:
		if !sc.tokenByte('L', &v.Link) || !sc.tokenByte('B', &v.BBAddr) ||
			!sc.tokenByte('G', &v.GPIBAddr) {
			return false
		}
		v.Parm = sc.parm()
	default:
		return false
	}
	return true
}

func parseVXI(v *VXI, sc *scanner) bool {
	if !sc.skipTo('#') {
		return false
	}
	*v = VXI{}
	if !sc.has('C') {
		if !sc.token('V', &v.LA) {
			return false
		}
	} else {
		v.Dynamic = true
		if !sc.token('V', &v.Frame) || !sc.token('C', &v.Slot) {
			return false
		}
	}
	if !sc.token('S', &v.Signal) {
		v.Signal = 0
	}
	v.Parm = sc.parm()
	return true
}
