package link

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/utils"
)

// Form is the line-per-component editing layout of a link.
type Form byte

const (
	FormConstant Form = iota
	FormInLink
	FormOutLink
	FormFwdLink
	FormVME
	FormCAMAC
	FormAB
	FormGPIB
	FormBitBus
	FormInst
	FormBBGPIB
	FormRF
	FormVXI
	formCount
)

var formPrompts = [formCount][]string{
	FormConstant: {"Constant:"},
	FormInLink:   {"  PV Name:", "NPP or PP:", "NMS or MS:"},
	FormOutLink:  {"  PV Name:", "NPP or PP:", "NMS or MS:"},
	FormFwdLink:  {"PV Name:"},
	FormVME:      {"  card:", "signal:", "  parm:"},
	FormCAMAC: {"    branch:", "     crate:", "   station:", "subaddress:",
		"  function:", " parameter:"},
	FormAB:     {"    link:", " adapter:", "    card:", "  signal:", "    parm:"},
	FormGPIB:   {"link:", "addr:", "parm:"},
	FormBitBus: {"  link:", "  node:", "  port:", "signal:", "  parm:"},
	FormInst:   {"parm:"},
	FormBBGPIB: {"    link:", "  bbaddr:", "gpibaddr:", "    parm:"},
	FormRF:     {"      cryo:", "     micro:", "   dataset:", "   element:"},
	FormVXI: {"     Dynamic?", "DYN    frame:", "DYN     slot:", "STATIC    la:",
		"      Signal:", "        parm:"},
}

const (
	msgNotNumber = "Illegal. Must be number"
	msgChoose    = "Illegal. Chose a value"
)

// FormFor picks the form of a link held by a field of type ft.
func FormFor(l *Link, ft dbf.Type) (Form, error) {
	switch l.Type {
	case CONSTANT:
		return FormConstant, nil
	case PV_LINK:
		switch ft {
		case dbf.INLINK:
			return FormInLink, nil
		case dbf.OUTLINK:
			return FormOutLink, nil
		case dbf.FWDLINK:
			return FormFwdLink, nil
		}
	case VME_IO:
		return FormVME, nil
	case CAMAC_IO:
		return FormCAMAC, nil
	case AB_IO:
		return FormAB, nil
	case GPIB_IO:
		return FormGPIB, nil
	case BITBUS_IO:
		return FormBitBus, nil
	case INST_IO:
		return FormInst, nil
	case BBGPIB_IO:
		return FormBBGPIB, nil
	case RF_IO:
		return FormRF, nil
	case VXI_IO:
		return FormVXI, nil
	}
	return 0, errors.Wrapf(dbstatic_errors.ErrBadLink, "no form for %s in %s", l.Type, ft)
}

func (f Form) Prompts() []string {
	if f >= formCount {
		return nil
	}
	return formPrompts[f]
}

func (f Form) Lines() int {
	return len(f.Prompts())
}

// slot addresses one numeric component of a hardware address.
type slot struct {
	i16 *int16
	u8  *uint8
}

func (s slot) get() int64 {
	if s.i16 != nil {
		return int64(*s.i16)
	}
	return int64(*s.u8)
}

func (s slot) set(v int64) {
	if s.i16 != nil {
		*s.i16 = int16(v)
	} else {
		*s.u8 = uint8(v)
	}
}

func i16(p ...*int16) []slot {
	out := make([]slot, len(p))
	for i := range p {
		out[i] = slot{i16: p[i]}
	}
	return out
}

func u8(p ...*uint8) []slot {
	out := make([]slot, len(p))
	for i := range p {
		out[i] = slot{u8: p[i]}
	}
	return out
}

// address lists the numeric components in form order plus the parm, if any.
func address(v Value) ([]slot, *string) {
	switch v := v.(type) {
	case *VME:
		return i16(&v.Card, &v.Signal), &v.Parm
	case *CAMAC:
		return i16(&v.B, &v.C, &v.N, &v.A, &v.F), &v.Parm
	case *RF:
		return i16(&v.Cryo, &v.Micro, &v.Dataset, &v.Element), nil
	case *AB:
		return i16(&v.Link, &v.Adapter, &v.Card, &v.Signal), &v.Parm
	case *GPIB:
		return i16(&v.Link, &v.Addr), &v.Parm
	case *BitBus:
		return u8(&v.Link, &v.Node, &v.Port, &v.Signal), &v.Parm
	case *BBGPIB:
		return u8(&v.Link, &v.BBAddr, &v.GPIBAddr), &v.Parm
	case *Inst:
		return nil, &v.Parm
	case *VXI:
		return i16(&v.Frame, &v.Slot, &v.LA, &v.Signal), &v.Parm
	}
	return nil, nil
}

// FormValues renders the current link one component per form line.
func (l *Link) FormValues(f Form) []string {
	switch v := l.Value.(type) {
	case *Constant:
		if !v.Set {
			return []string{""}
		}
		return []string{v.Text}
	case *PV:
		if f == FormFwdLink {
			return []string{v.Name}
		}
		return []string{v.Name, ppString[v.PP.norm()], msString[v.MS.norm()]}
	}
	var out []string
	if v, ok := l.Value.(*VXI); ok {
		if v.Dynamic {
			out = append(out, "Yes")
		} else {
			out = append(out, "No")
		}
	}
	slots, parm := address(l.Value)
	for _, s := range slots {
		out = append(out, strconv.FormatInt(s.get(), 10))
	}
	if parm != nil {
		out = append(out, "@"+*parm)
	}
	return out
}

// PutForm stores form lines into the link. The returned verify slice has
// one message per line, empty when the line was accepted.
func (l *Link) PutForm(f Form, values []string) ([]string, error) {
	n := f.Lines()
	if n == 0 {
		return nil, dbstatic_errors.ErrBadLink
	}
	if len(values) < n {
		return nil, errors.Wrapf(dbstatic_errors.ErrBadField, "form needs %d values, got %d", n, len(values))
	}
	verify := make([]string, n)
	switch f {
	case FormConstant:
		if values[0] == "" {
			break
		}
		if _, rest := utils.Strtod(values[0]); rest != "" {
			verify[0] = msgNotNumber
			break
		}
		l.Reset(CONSTANT)
		l.Value = &Constant{Text: values[0], Set: true}
	case FormInLink, FormOutLink, FormFwdLink:
		pv := &PV{Name: values[0]}
		if f != FormFwdLink {
			pv.PP = pickFlag(values[1], "NPP", "PP", &verify[1])
			pv.MS = pickFlag(values[2], "NMS", "MS", &verify[2])
		}
		l.Reset(PV_LINK)
		l.Value = pv
	default:
		v := l.Value.clone()
		i := 0
		if vxi, ok := v.(*VXI); ok {
			vxi.Dynamic = strings.ContainsAny(values[0], "Yy")
			i = 1
		}
		slots, parm := address(v)
		for _, s := range slots {
			if n, rest := utils.Strtol(values[i]); rest == "" && values[i] != "" {
				s.set(n)
			} else {
				verify[i] = msgNotNumber
			}
			i++
		}
		if parm != nil {
			*parm = ""
			if at := strings.IndexByte(values[i], '@'); at >= 0 {
				*parm = values[i][at+1:]
			}
		}
		l.Value = v
	}
	return verify, nil
}

func pickFlag(value, off, on string, verify *string) Flag {
	switch {
	case value == "" || strings.Contains(value, off):
		return 0
	case strings.Contains(value, on):
		return 1
	}
	*verify = msgChoose
	return 0
}

// VerifyForm checks form lines against a scratch copy of the link.
func (l *Link) VerifyForm(f Form, values []string) ([]string, error) {
	return l.Clone().PutForm(f, values)
}
