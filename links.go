package dbstatic

import (
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// NLinks is the number of link fields of the selected type.
func (e *Entry) NLinks() (int, error) {
	if e.rt == nil {
		return 0, dbstatic_errors.ErrRecordTypeNotFound
	}
	return len(e.rt.LinkInd), nil
}

// LinkField binds the i-th link field in declaration order.
func (e *Entry) LinkField(i int) error {
	if e.rt == nil {
		return dbstatic_errors.ErrRecordTypeNotFound
	}
	if i < 0 || i >= len(e.rt.LinkInd) {
		e.clearField()
		return errors.Wrapf(dbstatic_errors.ErrBadLink, "link index %d of %d", i, len(e.rt.LinkInd))
	}
	e.indField = e.rt.LinkInd[i]
	e.fd = e.rt.Fields[e.indField]
	return nil
}

// Link is the bound link value, nil when the field is not a link or no
// record is selected.
func (e *Entry) Link() *link.Link {
	l, _ := e.slot().(*link.Link)
	return l
}

// LinkType tells how the bound link is edited.
func (e *Entry) LinkType() (dbf.LinkDCT, error) {
	if e.fd == nil {
		return 0, dbstatic_errors.ErrFlddesNotFound
	}
	l := e.Link()
	if l == nil || !e.fd.Type.IsLink() {
		return 0, dbstatic_errors.ErrBadLink
	}
	switch l.Type {
	case link.CONSTANT:
		return dbf.DCT_LINK_CONSTANT, nil
	case link.PV_LINK:
		return dbf.DCT_LINK_PV, nil
	}
	return dbf.DCT_LINK_FORM, nil
}

// CvtLinkToConstant turns a PV link back into a constant holding the
// field's initial value. Hardware links are refused.
func (e *Entry) CvtLinkToConstant() error {
	l, err := e.boundLink()
	if err != nil {
		return err
	}
	switch l.Type {
	case link.CONSTANT:
		return nil
	case link.PV_LINK:
	default:
		return errors.Wrapf(dbstatic_errors.ErrBadLink, "%s is %s", e.fd.Name, l.Type)
	}
	e.FreeForm()
	l.Type = link.CONSTANT
	l.Value = &link.Constant{Text: e.fd.Initial, Set: e.fd.Initial != ""}
	return nil
}

// CvtLinkToPvlink turns a constant into an empty PV link.
func (e *Entry) CvtLinkToPvlink() error {
	l, err := e.boundLink()
	if err != nil {
		return err
	}
	switch l.Type {
	case link.PV_LINK:
		return nil
	case link.CONSTANT:
	default:
		return errors.Wrapf(dbstatic_errors.ErrBadLink, "%s is %s", e.fd.Name, l.Type)
	}
	e.FreeForm()
	l.Reset(link.PV_LINK)
	return nil
}

func (e *Entry) boundLink() (*link.Link, error) {
	if e.fd == nil {
		return nil, dbstatic_errors.ErrFlddesNotFound
	}
	if !e.fd.Type.IsLink() {
		e.base.log.Warn("link conversion on a non link field", "field", e.fd.Name)
		return nil, errors.Wrapf(dbstatic_errors.ErrBadLink, "%s is %s", e.fd.Name, e.fd.Type)
	}
	l := e.Link()
	if l == nil {
		return nil, dbstatic_errors.ErrRecNotFound
	}
	return l, nil
}

// RelatedField names the link a DEVICE field configures: INP, else OUT.
func (e *Entry) RelatedField() string {
	if e.fd == nil || e.fd.Type != dbf.DEVICE {
		return ""
	}
	c := e.Copy()
	if c.FindField("INP") == nil || c.FindField("OUT") == nil {
		return c.fd.Name
	}
	return ""
}
