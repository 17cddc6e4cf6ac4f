package dbstatic

import (
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// maxNameLen is the longest name the selected type takes: its NAME size
// less the terminator, capped at what FindRecord looks up.
func (e *Entry) maxNameLen() int {
	return min(e.rt.Fields[0].Size-1, e.base.opts.PVNameSize)
}

func (e *Entry) checkName(name string) error {
	if e.rt == nil {
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	if limit := e.maxNameLen(); len(name) > limit {
		return errors.Wrapf(dbstatic_errors.ErrNameLength, "%q is %d bytes, max %d",
			name, len(name), limit)
	}
	return nil
}

// CreateRecord adds a record of the selected type and selects it. When the
// type has device support, INP or OUT is typed for the first device; a
// type whose first device cannot be served leaves no record behind.
func (e *Entry) CreateRecord(name string) error {
	if err := e.checkName(name); err != nil {
		return observeMutation("create", err)
	}
	rt := e.rt
	e.zero()
	e.rt = rt
	if _, ok := e.base.pvd.Find(name); ok {
		return observeMutation("create", errors.Wrap(dbstatic_errors.ErrRecExists, name))
	}
	alloc := e.base.opts.Allocator
	storage, err := alloc.AllocRecord(rt, name)
	if err != nil {
		return observeMutation("create", err)
	}
	rec := &RecordNode{rt: rt, storage: storage}
	rt.insert(rec)
	if err := e.base.pvd.Add(rt, rec); err != nil {
		rt.remove(rec)
		_ = alloc.FreeRecord(rt, storage)
		e.base.log.Error("record list and directory disagree", "record", name, "err", err)
		return observeMutation("create", errors.Wrap(dbstatic_errors.ErrInternal, err.Error()))
	}
	e.rec = rec
	if dev := rt.FirstDevice(); dev != nil {
		if err := e.checkDevChoice(dev.LinkType); err != nil {
			rt.remove(rec)
			e.base.pvd.Remove(name, rec)
			e.rec = nil
			_ = alloc.FreeRecord(rt, storage)
			return observeMutation("create", err)
		}
	}
	e.base.log.Debug("record created", "recordtype", rt.Name, "record", name)
	return observeMutation("create", nil)
}

// DeleteRecord removes the selected record; the type stays selected.
func (e *Entry) DeleteRecord() error {
	rec := e.rec
	if rec == nil {
		return observeMutation("delete", dbstatic_errors.ErrRecNotFound)
	}
	name := rec.Name()
	e.rt.remove(rec)
	e.base.pvd.Remove(name, rec)
	e.base.addrs.purge()
	e.rec = nil
	e.clearField()
	e.form = nil
	if err := e.base.opts.Allocator.FreeRecord(e.rt, rec.storage); err != nil {
		return observeMutation("delete", err)
	}
	rec.storage = nil
	e.base.log.Debug("record deleted", "recordtype", e.rt.Name, "record", name)
	return observeMutation("delete", nil)
}

// RenameRecord gives the selected record a new name and moves it to its
// sorted position. The cursor stays on the record.
func (e *Entry) RenameRecord(newName string) error {
	if err := e.checkName(newName); err != nil {
		return observeMutation("rename", err)
	}
	rec := e.rec
	if rec == nil {
		return observeMutation("rename", dbstatic_errors.ErrRecNotFound)
	}
	lookup := NewEntry(e.base)
	err := lookup.FindRecord(newName)
	lookup.Finish()
	if err == nil {
		return observeMutation("rename", errors.Wrap(dbstatic_errors.ErrRecExists, newName))
	}
	oldName := rec.Name()
	e.base.pvd.Remove(oldName, rec)
	rec.storage[0] = newName
	if err := e.base.pvd.Add(e.rt, rec); err != nil {
		rec.storage[0] = oldName
		_ = e.base.pvd.Add(e.rt, rec)
		e.base.log.Error("rename could not index new name", "record", oldName, "new", newName, "err", err)
		return observeMutation("rename", errors.Wrap(dbstatic_errors.ErrInternal, err.Error()))
	}
	e.rt.remove(rec)
	e.rt.insert(rec)
	e.base.addrs.purge()
	e.base.log.Debug("record renamed", "recordtype", e.rt.Name, "record", oldName, "new", newName)
	return observeMutation("rename", nil)
}

// CopyRecord creates newName with every non-default value of the selected
// record. An existing newName is replaced only when overwriteOK is set.
// The cursor is left unchanged.
func (e *Entry) CopyRecord(newName string, overwriteOK bool) error {
	if err := e.checkName(newName); err != nil {
		return observeMutation("copy", err)
	}
	if e.rec == nil {
		return observeMutation("copy", dbstatic_errors.ErrRecNotFound)
	}
	dst := NewEntry(e.base)
	defer dst.Finish()
	if err := dst.FindRecord(newName); err == nil {
		if !overwriteOK || dst.rec == e.rec {
			return observeMutation("copy", errors.Wrap(dbstatic_errors.ErrRecExists, newName))
		}
		if err := dst.DeleteRecord(); err != nil {
			return observeMutation("copy", err)
		}
	}
	if err := dst.FindRecordType(e.rt.Name); err != nil {
		return observeMutation("copy", err)
	}
	if err := dst.CreateRecord(newName); err != nil {
		return observeMutation("copy", err)
	}
	dst.rec.visible = e.rec.visible
	src := e.Copy()
	for err := src.nextFieldAfterName(); err == nil; err = src.NextField(false) {
		if src.fd.Type == dbf.NOACCESS || src.IsDefaultValue() {
			continue
		}
		value, err := src.GetString()
		if err != nil {
			continue
		}
		dst.fd, dst.indField = src.fd, src.indField
		if err := dst.PutString(value); err != nil {
			return observeMutation("copy", errors.Wrapf(err, "%s.%s", newName, src.fd.Name))
		}
	}
	return observeMutation("copy", nil)
}

// nextFieldAfterName positions on the first field after NAME.
func (e *Entry) nextFieldAfterName() error {
	e.indField = 0
	return e.NextField(false)
}

// checkDevChoice types the record's INP or OUT link for a device support
// expecting lt. Constants and PV links satisfy each other. A record
// without INP and OUT only accepts CONSTANT.
func (e *Entry) checkDevChoice(lt link.Type) error {
	c := e.Copy()
	if err := c.FindField("INP"); err != nil {
		if err = c.FindField("OUT"); err != nil {
			if lt == link.CONSTANT {
				return nil
			}
			return errors.Wrapf(dbstatic_errors.ErrBadField, "%s has no INP or OUT for %s", e.rt.Name, lt)
		}
	}
	l, ok := c.slot().(*link.Link)
	if !ok {
		return nil
	}
	switch {
	case l.Type == lt:
	case lt == link.CONSTANT && l.Type == link.PV_LINK:
	case lt == link.PV_LINK && l.Type == link.CONSTANT:
	default:
		l.Reset(lt)
		e.form = nil
	}
	return nil
}
