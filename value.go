package dbstatic

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/calc"
	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
	"github.com/drpcorg/dbstatic/utils"
)

// scanNumber converts text the way strtol(s,0), strtoul(s,0) and strtod
// do; ok is false when anything is left over. Values wider than the field
// are truncated.
func scanNumber(ft dbf.Type, s string) (any, bool) {
	switch ft {
	case dbf.CHAR, dbf.SHORT, dbf.LONG:
		v, rest := utils.Strtol(s)
		ok := rest == ""
		switch ft {
		case dbf.CHAR:
			return int8(v), ok
		case dbf.SHORT:
			return int16(v), ok
		}
		return int32(v), ok
	case dbf.UCHAR, dbf.USHORT, dbf.ULONG, dbf.ENUM:
		v, rest := utils.Strtoul(s)
		ok := rest == ""
		switch ft {
		case dbf.UCHAR:
			return uint8(v), ok
		case dbf.ULONG:
			return uint32(v), ok
		}
		return uint16(v), ok
	case dbf.FLOAT:
		v, rest := utils.Strtod(s)
		return float32(v), rest == ""
	case dbf.DOUBLE:
		v, rest := utils.Strtod(s)
		return v, rest == ""
	}
	return nil, false
}

func formatNumber(fd *FieldDesc, v any) string {
	hex := fd.Base == dbf.HEX
	switch n := v.(type) {
	case int8:
		if hex {
			return fmt.Sprintf("0x%x", uint8(n))
		}
		return strconv.FormatInt(int64(n), 10)
	case int16:
		if hex {
			return fmt.Sprintf("0x%x", uint16(n))
		}
		return strconv.FormatInt(int64(n), 10)
	case int32:
		if hex {
			return fmt.Sprintf("0x%x", uint32(n))
		}
		return strconv.FormatInt(int64(n), 10)
	case uint8:
		if hex {
			return fmt.Sprintf("0x%x", n)
		}
		return strconv.FormatUint(uint64(n), 10)
	case uint16:
		if hex {
			return fmt.Sprintf("0x%x", n)
		}
		return strconv.FormatUint(uint64(n), 10)
	case uint32:
		if hex {
			return fmt.Sprintf("0x%x", n)
		}
		return strconv.FormatUint(uint64(n), 10)
	case float32:
		return strconv.FormatFloat(float64(n), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64)
	}
	return ""
}

// menuIndexFromString accepts a choice value or a choice index.
func menuIndexFromString(fd *FieldDesc, s string) (int, bool) {
	var n int
	switch fd.Type {
	case dbf.MENU:
		if fd.Menu == nil {
			return -1, false
		}
		if i := fd.Menu.Index(s); i >= 0 {
			return i, true
		}
		n = len(fd.Menu.Choices)
	case dbf.DEVICE:
		dm := fd.DeviceMenu()
		if dm == nil {
			return -1, false
		}
		if i := dm.Index(s); i >= 0 {
			return i, true
		}
		n = len(dm.Choices)
	default:
		return -1, false
	}
	v, rest := utils.Strtol(s)
	if rest != "" || rest == s || v < 0 || v >= int64(n) {
		return -1, false
	}
	return int(v), true
}

func (e *Entry) fail(err error, msg string) error {
	if e.fd != nil {
		PutFailures.WithLabelValues(e.fd.Type.String()).Inc()
	}
	if msg == "" {
		e.message = err.Error()
		return err
	}
	e.message = msg
	return errors.Wrap(err, msg)
}

// GetString renders the bound field value.
func (e *Entry) GetString() (string, error) {
	fd := e.fd
	if fd == nil {
		e.setMessage("fldDes not found")
		return "", dbstatic_errors.ErrFlddesNotFound
	}
	v := e.slot()
	if v == nil && fd.Type != dbf.NOACCESS {
		e.setMessage("Field not found")
		return "", dbstatic_errors.ErrFieldNotFound
	}
	switch {
	case fd.Type == dbf.STRING:
		return v.(string), nil
	case fd.Type.IsNumeric():
		return formatNumber(fd, v), nil
	case fd.Type == dbf.MENU:
		if fd.Menu == nil {
			return "", dbstatic_errors.ErrMenuNotFound
		}
		ind := int(v.(uint16))
		if ind >= len(fd.Menu.Choices) {
			return "", errors.Wrapf(dbstatic_errors.ErrBadField, "menu index %d", ind)
		}
		return fd.Menu.Choices[ind].Value, nil
	case fd.Type == dbf.DEVICE:
		dm := fd.DeviceMenu()
		if dm == nil {
			return "", dbstatic_errors.ErrMenuNotFound
		}
		ind := int(v.(uint16))
		if ind >= len(dm.Choices) {
			return "", errors.Wrapf(dbstatic_errors.ErrBadField, "device index %d", ind)
		}
		return dm.Choices[ind], nil
	case fd.Type.IsLink():
		s, ok := v.(*link.Link).Format(fd.Type)
		if !ok {
			return "", errors.Wrapf(dbstatic_errors.ErrBadLink, "%s in %s", v.(*link.Link).Type, fd.Type)
		}
		return s, nil
	}
	return "", dbstatic_errors.ErrBadField
}

// PutString parses s into the bound field. A failed put leaves the value
// alone, except that over long strings are stored truncated. Putting the
// NAME field renames the record.
func (e *Entry) PutString(s string) error {
	fd := e.fd
	e.message = ""
	if fd == nil {
		return e.fail(dbstatic_errors.ErrFlddesNotFound, "fldDes not found")
	}
	v := e.slot()
	if v == nil {
		return e.fail(dbstatic_errors.ErrFieldNotFound, "Field not found")
	}
	if fd.Index == 0 {
		// the name is indexed; changing it is a rename
		return e.RenameRecord(s)
	}
	switch {
	case fd.Type == dbf.STRING:
		stored := s
		if len(stored) >= fd.Size {
			stored = stored[:fd.Size-1]
		}
		e.setSlot(stored)
		switch {
		case len(s) >= fd.Size:
			return e.fail(dbstatic_errors.ErrStrLen, fmt.Sprintf("string to big. max=%d", fd.Size))
		case fd.Special == dbf.SPC_CALC:
			if _, err := calc.Postfix(s); err != nil {
				return e.fail(dbstatic_errors.ErrBadField, "Illegal Calculation String")
			}
		}
		return nil
	case fd.Type.IsNumeric():
		n, ok := scanNumber(fd.Type, s)
		if !ok {
			return e.fail(dbstatic_errors.ErrBadField, e.Verify(s))
		}
		e.setSlot(n)
		return nil
	case fd.Type == dbf.MENU:
		if fd.Menu == nil {
			return e.fail(dbstatic_errors.ErrMenuNotFound, "")
		}
		ind := fd.Menu.Index(s)
		if ind < 0 {
			return e.fail(dbstatic_errors.ErrBadField, "Not a valid menu choice")
		}
		e.setSlot(uint16(ind))
		return nil
	case fd.Type == dbf.DEVICE:
		dm := fd.DeviceMenu()
		if dm == nil {
			return e.fail(dbstatic_errors.ErrMenuNotFound, "")
		}
		ind := dm.Index(s)
		if ind < 0 {
			return e.fail(dbstatic_errors.ErrBadField, "Not a valid menu choice")
		}
		// no INP or OUT is fine here
		_ = e.checkDevChoice(e.rt.Devices[ind].LinkType)
		e.setSlot(uint16(ind))
		return nil
	case fd.Type.IsLink():
		l := v.(*link.Link)
		if err := l.Put(s, fd.Type); err != nil {
			return e.fail(err, "")
		}
		e.form = nil
		return nil
	}
	return e.fail(dbstatic_errors.ErrBadField, "Not a valid field type")
}

// Verify checks s against the bound field without storing it. The empty
// string means valid; otherwise it is the reason, also kept as Message.
func (e *Entry) Verify(s string) string {
	fd := e.fd
	if fd == nil {
		return e.setMessage("fldDes not found")
	}
	e.message = ""
	switch fd.Type {
	case dbf.STRING:
		if len(s) >= fd.Size {
			return e.setMessage(fmt.Sprintf("string to big. max=%d", fd.Size))
		}
		if fd.Special == dbf.SPC_CALC {
			if _, err := calc.Postfix(s); err != nil {
				return e.setMessage("Illegal Calculation String")
			}
		}
		return ""
	case dbf.CHAR, dbf.SHORT, dbf.LONG:
		v, rest := utils.Strtol(s)
		if rest != "" {
			return e.setMessage("not an integer number")
		}
		switch {
		case fd.Type == dbf.CHAR && !utils.FitsSigned[int8](v):
			return e.setMessage("must have -128<=value<=127")
		case fd.Type == dbf.SHORT && !utils.FitsSigned[int16](v):
			return e.setMessage("must have -32768<=value<=32767")
		}
		return ""
	case dbf.UCHAR, dbf.USHORT, dbf.ULONG, dbf.ENUM:
		if strings.Contains(s, "-") {
			return e.setMessage("not an unsigned number")
		}
		v, rest := utils.Strtoul(s)
		if rest != "" {
			return e.setMessage("not an integer number")
		}
		switch {
		case fd.Type == dbf.UCHAR && !utils.FitsUnsigned[uint8](v):
			return e.setMessage("must have 0<=value<=255")
		case (fd.Type == dbf.USHORT || fd.Type == dbf.ENUM) && !utils.FitsUnsigned[uint16](v):
			return e.setMessage("must have 0<=value<=65535")
		}
		return ""
	case dbf.FLOAT, dbf.DOUBLE:
		if _, rest := utils.Strtod(s); rest != "" {
			return e.setMessage("not a number")
		}
		return ""
	case dbf.MENU:
		if fd.Menu == nil || fd.Menu.Index(s) >= 0 {
			return ""
		}
		return e.setMessage("Not a valid menu choice")
	case dbf.DEVICE:
		dm := fd.DeviceMenu()
		if dm == nil || len(dm.Choices) == 0 || dm.Index(s) >= 0 {
			return ""
		}
		return e.setMessage("Not a valid menu choice")
	case dbf.INLINK, dbf.OUTLINK, dbf.FWDLINK:
		return ""
	}
	return e.setMessage("Not a valid field type")
}

// Range names the value domain of the bound field.
func (e *Entry) Range() string {
	if e.fd == nil {
		return e.setMessage("fldDes not found")
	}
	if r := e.fd.Type.RangeName(); r != "" {
		return r
	}
	return e.setMessage("Not a valid field type")
}

// IsDefaultValue compares the bound value with the field's initial value.
func (e *Entry) IsDefaultValue() bool {
	fd := e.fd
	v := e.slot()
	if fd == nil || v == nil {
		return false
	}
	switch {
	case fd.Type == dbf.STRING:
		return v.(string) == fd.Initial
	case fd.Type.IsNumeric():
		return v == initialSlot(fd)
	case fd.Type == dbf.MENU:
		if fd.Initial == "" {
			return v.(uint16) == 0
		}
		ind, ok := menuIndexFromString(fd, fd.Initial)
		return ok && v.(uint16) == uint16(ind)
	case fd.Type == dbf.DEVICE:
		return len(e.rt.Devices) == 0
	case fd.Type.IsLink():
		l := v.(*link.Link)
		c, ok := link.As[*link.Constant](l)
		if !ok {
			return false
		}
		if !c.Set {
			return true
		}
		return fd.Initial != "" && c.Text == fd.Initial
	}
	return true
}

// MenuChoices lists the choice values of a MENU or DEVICE field.
func (e *Entry) MenuChoices() []string {
	if e.fd == nil {
		return nil
	}
	switch e.fd.Type {
	case dbf.MENU:
		if e.fd.Menu == nil {
			return nil
		}
		return e.fd.Menu.Values()
	case dbf.DEVICE:
		if dm := e.fd.DeviceMenu(); dm != nil {
			return append([]string(nil), dm.Choices...)
		}
	}
	return nil
}

// MenuIndex is the stored choice index, -1 when not applicable.
func (e *Entry) MenuIndex() int {
	if e.fd == nil || !e.fd.Type.IsChoice() {
		return -1
	}
	v, ok := e.slot().(uint16)
	if !ok {
		return -1
	}
	return int(v)
}

func (e *Entry) PutMenuIndex(index int) error {
	fd := e.fd
	if fd == nil {
		return dbstatic_errors.ErrFlddesNotFound
	}
	if e.slot() == nil {
		return dbstatic_errors.ErrFieldNotFound
	}
	switch fd.Type {
	case dbf.MENU:
		if fd.Menu == nil {
			return dbstatic_errors.ErrMenuNotFound
		}
		if index < 0 || index >= len(fd.Menu.Choices) {
			return dbstatic_errors.ErrBadField
		}
		e.setSlot(uint16(index))
		return nil
	case dbf.DEVICE:
		dm := fd.DeviceMenu()
		if dm == nil {
			return dbstatic_errors.ErrMenuNotFound
		}
		if index < 0 || index >= len(dm.Choices) {
			return dbstatic_errors.ErrBadField
		}
		return e.PutString(dm.Choices[index])
	}
	return dbstatic_errors.ErrBadField
}

// NMenuChoices is -1 for fields that are not MENU or DEVICE.
func (e *Entry) NMenuChoices() int {
	if e.fd == nil {
		return -1
	}
	switch e.fd.Type {
	case dbf.MENU:
		if e.fd.Menu == nil {
			return 0
		}
		return len(e.fd.Menu.Choices)
	case dbf.DEVICE:
		if dm := e.fd.DeviceMenu(); dm != nil {
			return len(dm.Choices)
		}
		return 0
	}
	return -1
}
