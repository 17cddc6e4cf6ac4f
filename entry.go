package dbstatic

import (
	"strings"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
)

// Entry is a cursor over the base with three axes: record type, record
// and field. A record implies its type; a field bound while a record is
// selected also binds the field's value. Every navigation call clears the
// axes below the one it moves before moving, so a failed call never
// leaves a field paired with the wrong record.
type Entry struct {
	base     *Base
	rt       *RecordType
	rec      *RecordNode
	fd       *FieldDesc
	indField int

	message string
	form    *entryForm
}

func NewEntry(b *Base) *Entry {
	return &Entry{base: b}
}

// Copy duplicates the navigation state; the message and form stay behind.
func (e *Entry) Copy() *Entry {
	return &Entry{
		base:     e.base,
		rt:       e.rt,
		rec:      e.rec,
		fd:       e.fd,
		indField: e.indField,
	}
}

// Finish drops scratch state. The entry may be reused afterwards.
func (e *Entry) Finish() {
	e.message = ""
	e.form = nil
}

func (e *Entry) Base() *Base {
	return e.base
}

func (e *Entry) zero() {
	e.rt = nil
	e.rec = nil
	e.fd = nil
	e.indField = 0
}

func (e *Entry) clearField() {
	e.fd = nil
	e.indField = 0
}

// Message is the diagnostic left by the last failed value operation.
func (e *Entry) Message() string {
	return e.message
}

func (e *Entry) setMessage(msg string) string {
	e.message = msg
	return msg
}

func (e *Entry) FindRecordType(name string) error {
	e.zero()
	rt := e.base.FindRecordType(name)
	if rt == nil {
		return observe("recordtype", dbstatic_errors.ErrRecordTypeNotFound)
	}
	e.rt = rt
	return observe("recordtype", nil)
}

func (e *Entry) FirstRecordType() error {
	e.zero()
	if len(e.base.recordTypes) == 0 {
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	e.rt = e.base.recordTypes[0]
	return nil
}

func (e *Entry) NextRecordType() error {
	cur := e.rt
	e.zero()
	if cur == nil {
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	types := e.base.recordTypes
	for i, rt := range types {
		if rt == cur && i+1 < len(types) {
			e.rt = types[i+1]
			return nil
		}
	}
	return dbstatic_errors.ErrRecordTypeNotFound
}

func (e *Entry) RecordType() *RecordType {
	return e.rt
}

func (e *Entry) RecordTypeName() string {
	if e.rt == nil {
		return ""
	}
	return e.rt.Name
}

func (e *Entry) NRecordTypes() int {
	return len(e.base.recordTypes)
}

// FindRecord looks up "name" or "name.FIELD". A name component longer
// than the directory's name size is not found.
func (e *Entry) FindRecord(name string) error {
	e.zero()
	recName, fieldName, hasField := strings.Cut(name, ".")
	if len(recName) > e.base.opts.PVNameSize {
		return observe("record", dbstatic_errors.ErrRecNotFound)
	}
	pe, ok := e.base.pvd.Find(recName)
	if !ok {
		return observe("record", dbstatic_errors.ErrRecNotFound)
	}
	e.rt = pe.rt
	e.rec = pe.rec
	observe("record", nil)
	if hasField {
		return e.FindField(fieldName)
	}
	return nil
}

func (e *Entry) FirstRecord() error {
	rt := e.rt
	e.zero()
	if rt == nil {
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	e.rt = rt
	if len(rt.records) == 0 {
		return dbstatic_errors.ErrRecNotFound
	}
	e.rec = rt.records[0]
	return nil
}

func (e *Entry) NextRecord() error {
	e.clearField()
	if e.rec == nil {
		return dbstatic_errors.ErrRecNotFound
	}
	i := e.rt.indexOf(e.rec)
	if i < 0 || i+1 >= len(e.rt.records) {
		e.rec = nil
		return dbstatic_errors.ErrRecNotFound
	}
	e.rec = e.rt.records[i+1]
	return nil
}

func (e *Entry) Record() *RecordNode {
	return e.rec
}

func (e *Entry) RecordName() string {
	if e.rec == nil {
		return ""
	}
	return e.rec.Name()
}

func (e *Entry) NRecords() int {
	if e.rt == nil {
		return 0
	}
	return len(e.rt.records)
}

// FindField binds a field by name. The token ends at a blank or tab;
// an empty name or VAL picks the type's value field. Without a selected
// record only the descriptor is bound.
func (e *Entry) FindField(name string) error {
	e.clearField()
	if e.rt == nil {
		return observe("field", dbstatic_errors.ErrRecordTypeNotFound)
	}
	if i := strings.IndexAny(name, " \t"); i >= 0 {
		name = name[:i]
	}
	if len(name) > MaxFieldNameLength {
		name = name[:MaxFieldNameLength]
	}
	var fd *FieldDesc
	if name == "" || name == "VAL" {
		fd = e.rt.Val
	} else {
		fd = e.rt.FieldByName(name)
	}
	if fd == nil {
		return observe("field", dbstatic_errors.ErrFieldNotFound)
	}
	e.fd = fd
	e.indField = fd.Index
	return observe("field", nil)
}

func (e *Entry) skipField(fd *FieldDesc, dctOnly bool) bool {
	if !dctOnly {
		return false
	}
	if fd.PromptGroup == 0 {
		return true
	}
	return fd.Type == dbf.DEVICE && len(e.rt.Devices) == 0
}

// FirstField starts a walk in declaration order; dctOnly skips fields
// that are not user configurable.
func (e *Entry) FirstField(dctOnly bool) error {
	e.indField = -1
	return e.NextField(dctOnly)
}

func (e *Entry) NextField(dctOnly bool) error {
	if e.rt == nil {
		e.clearField()
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	for i := e.indField + 1; i < len(e.rt.Fields); i++ {
		fd := e.rt.Fields[i]
		if e.skipField(fd, dctOnly) {
			continue
		}
		e.fd = fd
		e.indField = i
		return nil
	}
	e.clearField()
	return dbstatic_errors.ErrFieldNotFound
}

// FoundField is true when a field value is bound.
func (e *Entry) FoundField() bool {
	return e.rec != nil && e.fd != nil
}

func (e *Entry) FieldDesc() *FieldDesc {
	return e.fd
}

func (e *Entry) FieldName() string {
	if e.fd == nil {
		return ""
	}
	return e.fd.Name
}

// FieldType is the configuration tool classification of the field.
func (e *Entry) FieldType() (dbf.DCT, error) {
	if e.fd == nil {
		e.setMessage("fldDes not found")
		return dbf.DCT_NOACCESS, dbstatic_errors.ErrFlddesNotFound
	}
	return e.fd.Type.DCT(), nil
}

func (e *Entry) NFields(dctOnly bool) int {
	if e.rt == nil {
		return 0
	}
	n := 0
	for _, fd := range e.rt.Fields {
		if !e.skipField(fd, dctOnly) {
			n++
		}
	}
	return n
}

func (e *Entry) Default() string {
	if e.fd == nil {
		return ""
	}
	return e.fd.Initial
}

func (e *Entry) Prompt() string {
	if e.fd == nil {
		return ""
	}
	return e.fd.Prompt
}

func (e *Entry) PromptGroup() dbf.GuiGroup {
	if e.fd == nil {
		return 0
	}
	return e.fd.PromptGroup
}

func (e *Entry) VisibleRecord() error {
	if e.rec == nil {
		return dbstatic_errors.ErrRecNotFound
	}
	e.rec.visible = true
	return nil
}

func (e *Entry) InvisibleRecord() error {
	if e.rec == nil {
		return dbstatic_errors.ErrRecNotFound
	}
	e.rec.visible = false
	return nil
}

func (e *Entry) IsVisibleRecord() bool {
	return e.rec != nil && e.rec.visible
}

// slot returns the bound value, nil when no record is selected.
func (e *Entry) slot() any {
	if e.rec == nil || e.fd == nil {
		return nil
	}
	return e.rec.storage[e.fd.Index]
}

func (e *Entry) setSlot(v any) {
	e.rec.storage[e.fd.Index] = v
}
