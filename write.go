package dbstatic

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/link"
)

// printer keeps the first write error and drops later output.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote wraps s in double quotes, escaping backslashes and quotes the way
// the definition file lexer reads them back.
func quote(s string) string {
	return `"` + quoter.Replace(s) + `"`
}

// WriteRecords writes the instances of typeName, or of every type when
// typeName is empty. Level 0 omits default values; level 2 and up also
// writes fields that have no prompt group.
func (b *Base) WriteRecords(w io.Writer, typeName string, level int) error {
	p := &printer{w: w}
	e := NewEntry(b)
	defer e.Finish()
	dctOnly := level <= 1
	var err error
	if typeName == "" {
		err = e.FirstRecordType()
		if err != nil {
			b.log.Warn("no record descriptions")
			return err
		}
	} else {
		err = e.FindRecordType(typeName)
		if err != nil {
			b.log.Warn("no record description", "recordtype", typeName)
			return errors.Wrap(err, typeName)
		}
	}
	for err == nil {
		for err = e.FirstRecord(); err == nil; err = e.NextRecord() {
			keyword := "record"
			if e.IsVisibleRecord() {
				keyword = "grecord"
			}
			p.printf("%s(%s,%s) {\n", keyword, e.RecordTypeName(), quote(e.RecordName()))
			for ferr := e.FirstField(dctOnly); ferr == nil; ferr = e.NextField(dctOnly) {
				if level <= 0 && e.IsDefaultValue() {
					continue
				}
				value, gerr := e.GetString()
				if gerr != nil {
					b.log.Warn("field not written", "record", e.RecordName(), "field", e.FieldName(), "err", gerr)
					continue
				}
				p.printf("\tfield(%s,%s)\n", e.FieldName(), quote(value))
			}
			p.printf("}\n")
		}
		if typeName != "" {
			break
		}
		err = e.NextRecordType()
	}
	return p.err
}

// WriteMenus writes menu name, or every menu when name is empty.
func (b *Base) WriteMenus(w io.Writer, name string) error {
	p := &printer{w: w}
	for _, m := range b.menus {
		if name != "" && m.Name != name {
			continue
		}
		p.printf("menu(%s) {\n", m.Name)
		for _, c := range m.Choices {
			p.printf("\tchoice(%s,%s)\n", c.Name, quote(c.Value))
		}
		p.printf("}\n")
		if name != "" {
			break
		}
	}
	return p.err
}

// WriteRecordTypes writes the definition of record type name, or of every
// type when name is empty.
func (b *Base) WriteRecordTypes(w io.Writer, name string) error {
	p := &printer{w: w}
	for _, rt := range b.recordTypes {
		if name != "" && rt.Name != name {
			continue
		}
		p.printf("recordtype(%s) {\n", rt.Name)
		for _, fd := range rt.Fields {
			writeFieldDesc(p, fd, b)
		}
		p.printf("}\n")
		if name != "" {
			break
		}
	}
	return p.err
}

func writeFieldDesc(p *printer, fd *FieldDesc, b *Base) {
	p.printf("\tfield(%s,%s) {\n", fd.Name, fd.Type)
	if fd.Prompt != "" {
		p.printf("\t\tprompt(%s)\n", quote(fd.Prompt))
	}
	if fd.Initial != "" {
		p.printf("\t\tinitial(%s)\n", quote(fd.Initial))
	}
	if g := fd.PromptGroup.String(); fd.PromptGroup != 0 && g != "" {
		p.printf("\t\tpromptgroup(%s)\n", g)
	}
	if fd.Special != 0 {
		p.printf("\t\tspecial(%s)\n", fd.Special)
	}
	if fd.Extra != "" {
		p.printf("\t\textra(%s)\n", quote(fd.Extra))
	}
	if fd.Type == dbf.MENU {
		if fd.Menu != nil {
			p.printf("\t\tmenu(%s)\n", fd.Menu.Name)
		} else {
			b.log.Error("menu not found", "recordtype", fd.rt.Name, "field", fd.Name)
		}
	}
	if fd.Type == dbf.STRING {
		p.printf("\t\tsize(%d)\n", fd.Size)
	}
	if fd.ProcessPassive {
		p.printf("\t\tpp(TRUE)\n")
	}
	if fd.Base == dbf.HEX {
		p.printf("\t\tbase(HEX)\n")
	}
	if fd.Interest != 0 {
		p.printf("\t\tinterest(%d)\n", fd.Interest)
	}
	if fd.ASL == dbf.ASL0 {
		p.printf("\t\tasl(ASL0)\n")
	}
	p.printf("\t}\n")
}

// WriteDevices writes every device support, grouped by record type.
func (b *Base) WriteDevices(w io.Writer) error {
	p := &printer{w: w}
	for _, rt := range b.recordTypes {
		for _, d := range rt.Devices {
			if d.LinkType >= link.NTYPES {
				p.printf("link_type not valid\n")
				continue
			}
			p.printf("device(%s,%s,%s,%s)\n", rt.Name, d.LinkType, d.Name, quote(d.Choice))
		}
	}
	return p.err
}

func (b *Base) WriteDrivers(w io.Writer) error {
	p := &printer{w: w}
	for _, d := range b.drivers {
		p.printf("driver(%s)\n", d.Name)
	}
	return p.err
}

func (b *Base) WriteBreakTables(w io.Writer) error {
	p := &printer{w: w}
	for _, bt := range b.breakTables {
		p.printf("breaktable(%s) {\n", bt.Name)
		for _, pt := range bt.Points {
			p.printf("\t%f %f\n", pt.Raw, pt.Eng)
		}
		p.printf("}\n")
	}
	return p.err
}

// Write emits the whole base in load order: menus, record types, devices,
// drivers, break tables and then every record at level 0.
func (b *Base) Write(w io.Writer) error {
	steps := []func() error{
		func() error { return b.WriteMenus(w, "") },
		func() error { return b.WriteRecordTypes(w, "") },
		func() error { return b.WriteDevices(w) },
		func() error { return b.WriteDrivers(w) },
		func() error { return b.WriteBreakTables(w) },
		func() error {
			err := b.WriteRecords(w, "", 0)
			if errors.Is(err, dbstatic_errors.ErrRecordTypeNotFound) {
				return nil
			}
			return err
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}
