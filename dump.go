package dbstatic

import (
	"io"
	"strings"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/link"
)

// DumpRecordType prints the layout of record type name, or of all types.
func (b *Base) DumpRecordType(w io.Writer, name string) error {
	p := &printer{w: w}
	for _, rt := range b.recordTypes {
		if name != "" && rt.Name != name {
			continue
		}
		prompts := 0
		for _, fd := range rt.Fields {
			if fd.PromptGroup != 0 {
				prompts++
			}
		}
		p.printf("name(%s) no_fields(%d) no_prompt(%d) no_links(%d)\n",
			rt.Name, len(rt.Fields), prompts, len(rt.LinkInd))
		p.printf("index name\tsortind sortname\n")
		for i, fd := range rt.Fields {
			p.printf("%5d %s\t%7d %s\n", i, fd.Name, rt.sortedInd[i], rt.sortedNames[i])
		}
		p.printf("link_ind ")
		for _, ind := range rt.LinkInd {
			p.printf(" %d", ind)
		}
		p.printf("\n")
		if rt.Val != nil {
			p.printf("indvalFlddes %d name %s\n", rt.Val.Index, rt.Val.Name)
		}
		p.printf("rec_size %d\n", rt.Size)
		if name != "" {
			break
		}
	}
	return p.err
}

// DumpFldDes prints the descriptors of one field, or of every field when
// fieldName is empty, for one or all record types.
func (b *Base) DumpFldDes(w io.Writer, typeName, fieldName string) error {
	p := &printer{w: w}
	for ti, rt := range b.recordTypes {
		if typeName != "" && rt.Name != typeName {
			continue
		}
		p.printf("recordtype(%s) \n", rt.Name)
		for _, fd := range rt.Fields {
			if fieldName != "" && fd.Name != fieldName {
				continue
			}
			p.printf("    %s\n", fd.Name)
			p.printf("\t         prompt: %s\n", fd.Prompt)
			p.printf("\t          extra: %s\n", fd.Extra)
			p.printf("\t  indRecordType: %d\n", ti)
			if fd.Special != 0 {
				p.printf("\t        special: %d %s\n", int(fd.Special), fd.Special)
			} else {
				p.printf("\t        special: 0 \n")
			}
			p.printf("\t     field_type: %s\n", fd.Type)
			p.printf("\tprocess_passive: %d\n", b2i(fd.ProcessPassive))
			p.printf("\t           base: %d\n", fd.Base)
			if fd.PromptGroup == 0 {
				p.printf("\t    promptgroup: 0\n")
			} else {
				p.printf("\t    promptgroup: %s\n", fd.PromptGroup)
			}
			p.printf("\t       interest: %d\n", fd.Interest)
			p.printf("\t       as_level: %s\n", fd.ASL)
			p.printf("\t        initial: %s\n", fd.Initial)
			switch fd.Type {
			case dbf.MENU:
				if fd.Menu != nil {
					p.printf("\t\t  menu: %s\n", fd.Menu.Name)
				} else {
					p.printf("\t\t  menu: NOT FOUND\n")
				}
			case dbf.DEVICE:
				if dm := fd.DeviceMenu(); dm != nil {
					p.printf("\t        devices: %s\n", strings.Join(dm.Choices, ","))
				} else {
					p.printf("\t        devices: none\n")
				}
			}
			p.printf("\t           size: %d\n", fd.Size)
			p.printf("\t         offset: %d\n", fd.Offset)
		}
		if typeName != "" {
			break
		}
	}
	return p.err
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}

// DumpMenu prints menu name, or every menu, in definition format.
func (b *Base) DumpMenu(w io.Writer, name string) error {
	return b.WriteMenus(w, name)
}

// DumpRecord prints records in definition format at the given level.
func (b *Base) DumpRecord(w io.Writer, typeName string, level int) error {
	return b.WriteRecords(w, typeName, level)
}

// DumpDevice lists the device supports of one or all record types.
func (b *Base) DumpDevice(w io.Writer, typeName string) error {
	p := &printer{w: w}
	for _, rt := range b.recordTypes {
		if typeName != "" && rt.Name != typeName {
			continue
		}
		p.printf("recordtype(%s) \n", rt.Name)
		for _, d := range rt.Devices {
			p.printf("\t     name: %s\n", d.Name)
			p.printf("\t   choice: %s\n", d.Choice)
			p.printf("\tlink_type: %d\n", d.LinkType)
		}
		if typeName != "" {
			break
		}
	}
	return p.err
}

func (b *Base) DumpDriver(w io.Writer) error {
	return b.WriteDrivers(w)
}

// DumpBreakTable prints raw, slope and engineering value per point.
func (b *Base) DumpBreakTable(w io.Writer, name string) error {
	p := &printer{w: w}
	for _, bt := range b.breakTables {
		if name != "" && bt.Name != name {
			continue
		}
		p.printf("breaktable(%s) {\n", bt.Name)
		for i, pt := range bt.Points {
			p.printf("\t%f %e %f\n", pt.Raw, bt.Slope(i), pt.Eng)
		}
		p.printf("}\n")
	}
	return p.err
}

// DumpPath prints the include path, colon separated.
func (b *Base) DumpPath(w io.Writer) error {
	p := &printer{w: w}
	if len(b.path) == 0 {
		p.printf("no path defined\n")
		return p.err
	}
	p.printf("%s\n", strings.Join(b.path, ":"))
	return p.err
}

// PvdDump prints the directory bucket by bucket.
func (b *Base) PvdDump(w io.Writer) error {
	return b.pvd.Dump(w)
}

var busNames = map[link.Type]string{
	link.VME_IO:    "VME",
	link.CAMAC_IO:  "CAMAC",
	link.AB_IO:     "AB",
	link.GPIB_IO:   "GPIB",
	link.BITBUS_IO: "BITBUS",
	link.INST_IO:   "INST",
	link.BBGPIB_IO: "BBGPIB",
	link.VXI_IO:    "VXI",
}

// ReportDeviceConfig lists, per record, the first hardware link with its
// bus, device type and conversion limits when LINR selects a conversion.
func (b *Base) ReportDeviceConfig(w io.Writer) error {
	p := &printer{w: w}
	e := NewEntry(b)
	defer e.Finish()
	for err := e.FirstRecordType(); err == nil; err = e.NextRecordType() {
		for err := e.FirstRecord(); err == nil; err = e.NextRecord() {
			b.reportRecord(p, e)
		}
	}
	return p.err
}

func (b *Base) reportRecord(p *printer, e *Entry) {
	nlinks, _ := e.NLinks()
	for i := 0; i < nlinks; i++ {
		if e.LinkField(i) != nil {
			continue
		}
		if lt, err := e.LinkType(); err != nil || lt != dbf.DCT_LINK_FORM {
			continue
		}
		bus, ok := busNames[e.Link().Type]
		if !ok {
			continue
		}
		value, err := e.GetString()
		if err != nil {
			continue
		}
		c := e.Copy()
		if c.FindField("DTYP") != nil {
			return
		}
		dtyp, _ := c.GetString()
		cvt := ""
		if c.FindField("LINR") == nil && slotInt(c.slot()) > 1 {
			var lim []string
			for _, name := range []string{"EGUL", "EGUH"} {
				if c.FindField(name) == nil {
					if s, err := c.GetString(); err == nil {
						lim = append(lim, s)
					}
				}
			}
			cvt = "cvt(" + strings.Join(lim, " ") + ")"
		}
		p.printf("%-8s %-20s %-20s %-20s %-s\n", bus, value, dtyp, e.RecordName(), cvt)
		return
	}
}

// slotInt reads an integer or choice slot, 0 for anything else.
func slotInt(v any) int64 {
	switch n := v.(type) {
	case int8:
		return int64(n)
	case uint8:
		return int64(n)
	case int16:
		return int64(n)
	case uint16:
		return int64(n)
	case int32:
		return int64(n)
	case uint32:
		return int64(n)
	}
	return 0
}
