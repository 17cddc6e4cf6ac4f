package dbstatic

import (
	"slices"
	"strings"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// FieldDesc describes one field of a record type. Initial, Prompt and
// Extra are empty when not declared.
type FieldDesc struct {
	Name           string
	Type           dbf.Type
	Size           int
	Offset         int
	Prompt         string
	Initial        string
	Extra          string
	Special        dbf.Special
	PromptGroup    dbf.GuiGroup
	MenuName       string
	Menu           *Menu
	ProcessPassive bool
	Base           dbf.Base
	Interest       int
	ASL            dbf.ASL
	// Index is the position in declaration order.
	Index int

	rt      *RecordType
	devMenu atomic.Pointer[DeviceMenu]
}

func (fd *FieldDesc) RecordType() *RecordType {
	return fd.rt
}

// DeviceMenu lists the device choices of the owning record type, built on
// first use and kept until the type gains another device support. A type
// without device support has no menu. Readers sharing a Guard may race to
// build it; they build equal menus.
func (fd *FieldDesc) DeviceMenu() *DeviceMenu {
	if fd.Type != dbf.DEVICE || fd.rt == nil {
		return nil
	}
	if dm := fd.devMenu.Load(); dm != nil {
		return dm
	}
	if len(fd.rt.Devices) == 0 {
		return nil
	}
	dm := &DeviceMenu{Choices: make([]string, len(fd.rt.Devices))}
	for i, d := range fd.rt.Devices {
		dm.Choices[i] = d.Choice
	}
	fd.devMenu.Store(dm)
	return dm
}

// fixed widths of the non-string types; links take one pointer slot
var typeSize = [dbf.NTYPES]int{
	dbf.CHAR: 1, dbf.UCHAR: 1,
	dbf.SHORT: 2, dbf.USHORT: 2,
	dbf.LONG: 4, dbf.ULONG: 4,
	dbf.FLOAT: 4, dbf.DOUBLE: 8,
	dbf.ENUM: 2, dbf.MENU: 2, dbf.DEVICE: 2,
	dbf.INLINK: 8, dbf.OUTLINK: 8, dbf.FWDLINK: 8,
	dbf.NOACCESS: 8,
}

const defaultStringSize = 40

type RecordType struct {
	Name    string
	Fields  []*FieldDesc
	Devices []*DevSup
	// LinkInd holds the declaration indexes of the link fields.
	LinkInd []int
	Val     *FieldDesc
	// Size is the byte size of an instance.
	Size int

	sortedNames []string
	sortedInd   []int
	records     []*RecordNode
	finalized   bool
}

// NewRecordType starts a definition; the first field has to be NAME.
func NewRecordType(name string, fields ...*FieldDesc) *RecordType {
	return &RecordType{Name: name, Fields: fields}
}

// Finalize lays the fields out and builds the sorted name index, the
// link index and the VAL shortcut. Menus are resolved through menus.
func (rt *RecordType) Finalize(menus func(string) *Menu) error {
	if rt.Name == "" {
		return errors.Wrap(dbstatic_errors.ErrBadDefinition, "record type without name")
	}
	if len(rt.Fields) == 0 || rt.Fields[0].Name != "NAME" || rt.Fields[0].Type != dbf.STRING {
		return errors.Wrapf(dbstatic_errors.ErrNoNameField, "recordtype(%s)", rt.Name)
	}
	seen := make(map[string]bool, len(rt.Fields))
	offset := 0
	rt.LinkInd = rt.LinkInd[:0]
	rt.Val = nil
	for i, fd := range rt.Fields {
		if fd.Name == "" || strings.ContainsAny(fd.Name, " \t.") {
			return errors.Wrapf(dbstatic_errors.ErrBadDefinition, "%s: bad field name %q", rt.Name, fd.Name)
		}
		if seen[fd.Name] {
			return errors.Wrapf(dbstatic_errors.ErrDuplicate, "%s.%s", rt.Name, fd.Name)
		}
		seen[fd.Name] = true
		if !fd.Type.Valid() {
			return errors.Wrapf(dbstatic_errors.ErrBadDefinition, "%s.%s: field type %d", rt.Name, fd.Name, fd.Type)
		}
		switch {
		case fd.Type == dbf.STRING && fd.Size <= 0 && i == 0:
			fd.Size = PVNameSize + 1
		case fd.Type == dbf.STRING && fd.Size <= 0:
			fd.Size = defaultStringSize
		case fd.Type != dbf.STRING:
			fd.Size = typeSize[fd.Type]
		}
		if fd.Type == dbf.MENU && fd.Menu == nil && fd.MenuName != "" && menus != nil {
			fd.Menu = menus(fd.MenuName)
			if fd.Menu == nil {
				return errors.Wrapf(dbstatic_errors.ErrMenuNotFound, "%s.%s: menu(%s)", rt.Name, fd.Name, fd.MenuName)
			}
		}
		if fd.Menu != nil {
			fd.MenuName = fd.Menu.Name
		}
		fd.Index = i
		fd.Offset = offset
		fd.rt = rt
		offset += fd.Size
		if fd.Type.IsLink() {
			rt.LinkInd = append(rt.LinkInd, i)
		}
		if fd.Name == "VAL" {
			rt.Val = fd
		}
	}
	rt.Size = offset
	rt.sortedInd = make([]int, len(rt.Fields))
	for i := range rt.sortedInd {
		rt.sortedInd[i] = i
	}
	slices.SortFunc(rt.sortedInd, func(a, b int) int {
		return strings.Compare(rt.Fields[a].Name, rt.Fields[b].Name)
	})
	rt.sortedNames = make([]string, len(rt.Fields))
	for i, ind := range rt.sortedInd {
		rt.sortedNames[i] = rt.Fields[ind].Name
	}
	rt.finalized = true
	return nil
}

// FieldByName is the classic low/high/mid search over the sorted index.
func (rt *RecordType) FieldByName(name string) *FieldDesc {
	bottom, top := 0, len(rt.sortedNames)-1
	for bottom <= top {
		test := (top + bottom) / 2
		switch c := strings.Compare(rt.sortedNames[test], name); {
		case c == 0:
			return rt.Fields[rt.sortedInd[test]]
		case c > 0:
			top = test - 1
		default:
			bottom = test + 1
		}
	}
	return nil
}

// SortedFieldNames returns the field names in lexicographic order.
func (rt *RecordType) SortedFieldNames() []string {
	return slices.Clone(rt.sortedNames)
}

func (rt *RecordType) NRecords() int {
	return len(rt.records)
}

// FirstDevice is the device support declared first, nil without any.
func (rt *RecordType) FirstDevice() *DevSup {
	if len(rt.Devices) == 0 {
		return nil
	}
	return rt.Devices[0]
}

func (rt *RecordType) resetDeviceMenus() {
	for _, fd := range rt.Fields {
		fd.devMenu.Store(nil)
	}
}

// insertion point for name: the first record whose name is not less.
func (rt *RecordType) position(name string) int {
	i := 0
	for i < len(rt.records) && strings.Compare(name, rt.records[i].Name()) > 0 {
		i++
	}
	return i
}

func (rt *RecordType) insert(rec *RecordNode) {
	rt.records = slices.Insert(rt.records, rt.position(rec.Name()), rec)
}

func (rt *RecordType) remove(rec *RecordNode) bool {
	i := slices.Index(rt.records, rec)
	if i < 0 {
		return false
	}
	rt.records = slices.Delete(rt.records, i, i+1)
	return true
}

// indexOf finds rec by binary search on its name; the list is sorted and
// names are unique.
func (rt *RecordType) indexOf(rec *RecordNode) int {
	i, found := slices.BinarySearchFunc(rt.records, rec.Name(), func(r *RecordNode, name string) int {
		return strings.Compare(r.Name(), name)
	})
	if !found || rt.records[i] != rec {
		return -1
	}
	return i
}

// DevSup binds a DTYP choice to the link type its support expects.
type DevSup struct {
	Name     string
	Choice   string
	LinkType link.Type
}

type DrvSup struct {
	Name string
}

type BreakPoint struct {
	Raw float64
	Eng float64
}

type BreakTable struct {
	Name   string
	Points []BreakPoint
}

// Slope of the interval starting at point i; the last point repeats the
// slope of the interval before it.
func (bt *BreakTable) Slope(i int) float64 {
	n := len(bt.Points)
	if n < 2 || i < 0 || i >= n {
		return 0
	}
	if i == n-1 {
		i--
	}
	a, b := bt.Points[i], bt.Points[i+1]
	if b.Raw == a.Raw {
		return 0
	}
	return (b.Eng - a.Eng) / (b.Raw - a.Raw)
}
