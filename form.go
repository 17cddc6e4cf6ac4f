package dbstatic

import (
	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// entryForm is the line editor state of one link.
type entryForm struct {
	form link.Form
	l    *link.Link
}

// AllocForm opens a form on the bound link field, or on INP/OUT when a
// DEVICE field is bound. It returns the number of form lines, 0 when no
// form applies or one is already open.
func (e *Entry) AllocForm() int {
	if e.form != nil {
		e.base.log.Warn("form already exists", "record", e.RecordName(), "field", e.FieldName())
		return 0
	}
	if e.fd == nil {
		return 0
	}
	c := e.Copy()
	switch {
	case e.fd.Type == dbf.DEVICE:
		if c.FindField("INP") != nil && c.FindField("OUT") != nil {
			return 0
		}
	case !e.fd.Type.IsLink():
		e.base.log.Warn("form on a field that is neither DEVICE nor a link", "field", e.fd.Name)
		return 0
	}
	l := c.Link()
	if l == nil {
		return 0
	}
	f, err := link.FormFor(l, c.fd.Type)
	if err != nil {
		return 0
	}
	e.form = &entryForm{form: f, l: l}
	return f.Lines()
}

// FreeForm closes the open form, if any.
func (e *Entry) FreeForm() {
	e.form = nil
}

// FormPrompt lists the prompts of the open form.
func (e *Entry) FormPrompt() []string {
	if e.form == nil {
		return nil
	}
	return e.form.form.Prompts()
}

// FormValue renders the link one component per form line.
func (e *Entry) FormValue() []string {
	if e.form == nil {
		return nil
	}
	return e.form.l.FormValues(e.form.form)
}

// PutForm stores the lines of an open form. The returned slice carries
// a message for each rejected line.
func (e *Entry) PutForm(values []string) ([]string, error) {
	if e.form == nil {
		return nil, dbstatic_errors.ErrBadLink
	}
	check, err := e.form.l.PutForm(e.form.form, values)
	if err != nil {
		return nil, err
	}
	return check, nil
}

// VerifyForm checks lines without storing them. A nil result means every
// line is acceptable.
func (e *Entry) VerifyForm(values []string) ([]string, error) {
	if e.form == nil {
		return nil, dbstatic_errors.ErrBadLink
	}
	check, err := e.form.l.VerifyForm(e.form.form, values)
	if err != nil {
		return nil, err
	}
	for _, msg := range check {
		if msg != "" {
			return check, nil
		}
	}
	return nil, nil
}
