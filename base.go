// Package dbstatic is an in-memory process database: record type schemas,
// record instances and a cursor (Entry) to browse and edit them, plus a
// writer for the textual definition format.
package dbstatic

import (
	"iter"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
	"github.com/drpcorg/dbstatic/utils"
)

type scope byte

const (
	scopeRecordType scope = iota
	scopeMenu
	scopeBreakTable
	scopeDriver
)

type scopedName struct {
	scope scope
	name  string
}

// Base is the database root. It is not safe for concurrent use; wrap it
// in a Guard when several goroutines share it.
type Base struct {
	opts Options
	log  utils.Logger

	menus       []*Menu
	recordTypes []*RecordType
	drivers     []*DrvSup
	breakTables []*BreakTable
	names       map[scopedName]any

	pvd   *pvd
	path  []string
	addrs *addrCache
}

func NewBase(opts Options) *Base {
	opts.SetDefaults()
	return &Base{
		opts:  opts,
		log:   opts.Logger,
		names: make(map[scopedName]any),
		pvd:   newPvd(opts.PvdBuckets),
		addrs: newAddrCache(opts.AddrCacheSize),
	}
}

func (b *Base) Logger() utils.Logger {
	return b.log
}

func (b *Base) Options() Options {
	return b.opts
}

func (b *Base) register(s scope, name string, v any) error {
	key := scopedName{s, name}
	if _, ok := b.names[key]; ok {
		return errors.Wrap(dbstatic_errors.ErrDuplicate, name)
	}
	b.names[key] = v
	return nil
}

func (b *Base) AddMenu(m *Menu) error {
	if m.Name == "" {
		return errors.Wrap(dbstatic_errors.ErrBadDefinition, "menu without name")
	}
	if err := b.register(scopeMenu, m.Name, m); err != nil {
		return errors.Wrap(err, "menu")
	}
	b.menus = append(b.menus, m)
	return nil
}

func (b *Base) FindMenu(name string) *Menu {
	m, _ := b.names[scopedName{scopeMenu, name}].(*Menu)
	return m
}

func (b *Base) Menus() iter.Seq[*Menu] {
	return func(yield func(*Menu) bool) {
		for _, m := range b.menus {
			if !yield(m) {
				return
			}
		}
	}
}

// AddRecordType finalizes rt and appends it in declaration order.
func (b *Base) AddRecordType(rt *RecordType) error {
	if _, ok := b.names[scopedName{scopeRecordType, rt.Name}]; ok {
		return errors.Wrapf(dbstatic_errors.ErrDuplicate, "recordtype(%s)", rt.Name)
	}
	if err := rt.Finalize(b.FindMenu); err != nil {
		return err
	}
	b.names[scopedName{scopeRecordType, rt.Name}] = rt
	b.recordTypes = append(b.recordTypes, rt)
	return nil
}

func (b *Base) FindRecordType(name string) *RecordType {
	rt, _ := b.names[scopedName{scopeRecordType, name}].(*RecordType)
	return rt
}

func (b *Base) RecordTypes() iter.Seq[*RecordType] {
	return func(yield func(*RecordType) bool) {
		for _, rt := range b.recordTypes {
			if !yield(rt) {
				return
			}
		}
	}
}

// AddDevice registers device support for a record type. Cached device
// menus of that type are dropped so the new choice shows up.
func (b *Base) AddDevice(recordType string, lt link.Type, name, choice string) error {
	rt := b.FindRecordType(recordType)
	if rt == nil {
		return errors.Wrapf(dbstatic_errors.ErrRecordTypeNotFound, "device(%s,...)", recordType)
	}
	if lt >= link.NTYPES {
		return errors.Wrapf(dbstatic_errors.ErrBadLink, "device(%s,%s,%s)", recordType, lt, name)
	}
	for _, d := range rt.Devices {
		if d.Choice == choice {
			return errors.Wrapf(dbstatic_errors.ErrDuplicate, "device(%s,%s,%s,%q)", recordType, lt, name, choice)
		}
	}
	rt.Devices = append(rt.Devices, &DevSup{Name: name, Choice: choice, LinkType: lt})
	rt.resetDeviceMenus()
	return nil
}

func (b *Base) AddDriver(name string) error {
	d := &DrvSup{Name: name}
	if err := b.register(scopeDriver, name, d); err != nil {
		return errors.Wrap(err, "driver")
	}
	b.drivers = append(b.drivers, d)
	return nil
}

func (b *Base) Drivers() iter.Seq[*DrvSup] {
	return func(yield func(*DrvSup) bool) {
		for _, d := range b.drivers {
			if !yield(d) {
				return
			}
		}
	}
}

func (b *Base) AddBreakTable(bt *BreakTable) error {
	if err := b.register(scopeBreakTable, bt.Name, bt); err != nil {
		return errors.Wrap(err, "breaktable")
	}
	b.breakTables = append(b.breakTables, bt)
	return nil
}

func (b *Base) FindBreakTable(name string) *BreakTable {
	bt, _ := b.names[scopedName{scopeBreakTable, name}].(*BreakTable)
	return bt
}

func (b *Base) BreakTables() iter.Seq[*BreakTable] {
	return func(yield func(*BreakTable) bool) {
		for _, bt := range b.breakTables {
			if !yield(bt) {
				return
			}
		}
	}
}

// NRecords counts records of every type.
func (b *Base) NRecords() int {
	return b.pvd.Len()
}

// FreeRecords deletes every record instance, keeping the schema.
func (b *Base) FreeRecords() error {
	e := NewEntry(b)
	defer e.Finish()
	for _, rt := range b.recordTypes {
		for len(rt.records) > 0 {
			if err := e.FindRecord(rt.records[0].Name()); err != nil {
				return err
			}
			if err := e.DeleteRecord(); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetPath replaces the include search path with a colon separated list.
func (b *Base) SetPath(path string) {
	b.path = b.path[:0]
	b.AddPath(path)
}

// AddPath appends directories; empty elements stand for ".".
func (b *Base) AddPath(path string) {
	if path == "" {
		return
	}
	for _, dir := range strings.Split(path, ":") {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			dir = "."
		}
		b.path = append(b.path, dir)
	}
}

func (b *Base) Path() []string {
	return append([]string(nil), b.path...)
}

// Resolve finds file on the path list; absolute names and an empty path
// list leave the name alone.
func (b *Base) Resolve(file string, exists func(string) bool) string {
	if filepath.IsAbs(file) || len(b.path) == 0 {
		return file
	}
	for _, dir := range b.path {
		p := filepath.Join(dir, file)
		if exists(p) {
			return p
		}
	}
	return file
}
