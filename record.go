package dbstatic

import (
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// Storage holds one slot per field in declaration order. Slot Go types:
// string, int8, uint8, int16, uint16, int32, uint32, float32, float64,
// uint16 for ENUM, MENU and DEVICE, *link.Link for links, nil for NOACCESS.
type Storage []any

// RecordNode is one record instance; its name lives in the NAME slot.
type RecordNode struct {
	rt      *RecordType
	storage Storage
	visible bool
}

func (rec *RecordNode) Name() string {
	if len(rec.storage) == 0 {
		return ""
	}
	name, _ := rec.storage[0].(string)
	return name
}

func (rec *RecordNode) RecordType() *RecordType {
	return rec.rt
}

func (rec *RecordNode) Visible() bool {
	return rec.visible
}

// Slot exposes the raw value of field fd.
func (rec *RecordNode) Slot(fd *FieldDesc) any {
	if fd.Index >= len(rec.storage) {
		return nil
	}
	return rec.storage[fd.Index]
}

// Allocator provides and releases record storage.
type Allocator interface {
	AllocRecord(rt *RecordType, name string) (Storage, error)
	FreeRecord(rt *RecordType, s Storage) error
}

// HeapAllocator fills each slot from the field's initial value.
type HeapAllocator struct{}

func (HeapAllocator) AllocRecord(rt *RecordType, name string) (Storage, error) {
	if !rt.finalized {
		return nil, errors.Wrapf(dbstatic_errors.ErrBadDefinition, "recordtype(%s) not finalized", rt.Name)
	}
	if len(name) >= rt.Fields[0].Size {
		return nil, dbstatic_errors.ErrNameLength
	}
	s := make(Storage, len(rt.Fields))
	s[0] = name
	for i := 1; i < len(rt.Fields); i++ {
		s[i] = initialSlot(rt.Fields[i])
	}
	return s, nil
}

func (HeapAllocator) FreeRecord(rt *RecordType, s Storage) error {
	if s == nil {
		return dbstatic_errors.ErrRecNotFound
	}
	clear(s)
	return nil
}

// zeroSlot is the value of a field with no initial value.
func zeroSlot(fd *FieldDesc) any {
	switch fd.Type {
	case dbf.STRING:
		return ""
	case dbf.CHAR:
		return int8(0)
	case dbf.UCHAR:
		return uint8(0)
	case dbf.SHORT:
		return int16(0)
	case dbf.USHORT, dbf.ENUM, dbf.MENU, dbf.DEVICE:
		return uint16(0)
	case dbf.LONG:
		return int32(0)
	case dbf.ULONG:
		return uint32(0)
	case dbf.FLOAT:
		return float32(0)
	case dbf.DOUBLE:
		return float64(0)
	case dbf.INLINK, dbf.OUTLINK, dbf.FWDLINK:
		return link.NewConstant("")
	}
	return nil
}

// initialSlot converts the declared initial value; text that does not
// convert leaves the zero value.
func initialSlot(fd *FieldDesc) any {
	v := zeroSlot(fd)
	if fd.Initial == "" {
		return v
	}
	switch {
	case fd.Type == dbf.STRING:
		if len(fd.Initial) < fd.Size {
			return fd.Initial
		}
	case fd.Type.IsNumeric():
		if n, ok := scanNumber(fd.Type, fd.Initial); ok {
			return n
		}
	case fd.Type == dbf.MENU:
		if ind, ok := menuIndexFromString(fd, fd.Initial); ok {
			return uint16(ind)
		}
	case fd.Type.IsLink():
		return link.NewConstant(fd.Initial)
	}
	return v
}
