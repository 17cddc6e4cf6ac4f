// Package dbd reads database definition and instance files, the format
// the base writer produces: menu, recordtype, device, driver, breaktable,
// record and grecord blocks plus the include, path and addpath
// directives.
package dbd

import (
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/link"
	"github.com/drpcorg/dbstatic/utils"
)

// MaxIncludeDepth bounds nested include directives.
const MaxIncludeDepth = 16

type loader struct {
	base  *dbstatic.Base
	log   utils.Logger
	file  string
	lex   *lexer
	depth int
}

// Load reads one definition file from r; name is used in error positions
// and as the directory of relative includes when the path list is empty.
func Load(b *dbstatic.Base, r io.Reader, name string) error {
	src, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, name)
	}
	ld := &loader{base: b, log: b.Logger(), file: name, lex: newLexer(string(src))}
	return ld.run()
}

// LoadFile reads file, looking it up on the base's path list.
func LoadFile(b *dbstatic.Base, file string) error {
	return loadFile(b, file, 0)
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func loadFile(b *dbstatic.Base, file string, depth int) error {
	if depth > MaxIncludeDepth {
		return errors.Wrapf(ErrSyntax, "%s: includes nested deeper than %d", file, MaxIncludeDepth)
	}
	p := b.Resolve(file, exists)
	src, err := os.ReadFile(p)
	if err != nil {
		return errors.Wrap(err, "dbd")
	}
	ld := &loader{base: b, log: b.Logger(), file: p, lex: newLexer(string(src)), depth: depth}
	return ld.run()
}

func (ld *loader) errorf(line int, format string, args ...any) error {
	return errors.Wrapf(ErrSyntax, "%s:%d: "+format, append([]any{ld.file, line}, args...)...)
}

func (ld *loader) at(line int, err error) error {
	return errors.Wrapf(err, "%s:%d", ld.file, line)
}

func (ld *loader) expect(text string) (token, error) {
	t, err := ld.lex.next()
	if err != nil {
		return t, errors.Wrap(err, ld.file)
	}
	if t.kind != tokPunct || t.text != text {
		return t, ld.errorf(t.line, "expected %q, got %s", text, t)
	}
	return t, nil
}

// value reads a word or a quoted string.
func (ld *loader) value() (token, error) {
	t, err := ld.lex.next()
	if err != nil {
		return t, errors.Wrap(err, ld.file)
	}
	if t.kind != tokWord && t.kind != tokString {
		return t, ld.errorf(t.line, "expected a name or a string, got %s", t)
	}
	return t, nil
}

// args reads "(a,b,...)" with exactly n values.
func (ld *loader) args(n int) ([]token, error) {
	if _, err := ld.expect("("); err != nil {
		return nil, err
	}
	out := make([]token, 0, n)
	for i := 0; i < n; i++ {
		if i > 0 {
			if _, err := ld.expect(","); err != nil {
				return nil, err
			}
		}
		t, err := ld.value()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if _, err := ld.expect(")"); err != nil {
		return nil, err
	}
	return out, nil
}

// block calls item for every keyword between "{" and "}". A missing
// block is fine.
func (ld *loader) block(item func(kw token) error) error {
	t, err := ld.lex.next()
	if err != nil {
		return errors.Wrap(err, ld.file)
	}
	if t.kind != tokPunct || t.text != "{" {
		ld.lex.unread(t)
		return nil
	}
	for {
		t, err := ld.lex.next()
		if err != nil {
			return errors.Wrap(err, ld.file)
		}
		switch {
		case t.kind == tokPunct && t.text == "}":
			return nil
		case t.kind == tokEOF:
			return ld.errorf(t.line, "missing }")
		case t.kind != tokWord:
			return ld.errorf(t.line, "unexpected %s", t)
		}
		if err := item(t); err != nil {
			return err
		}
	}
}

func (ld *loader) run() error {
	for {
		t, err := ld.lex.next()
		if err != nil {
			return errors.Wrap(err, ld.file)
		}
		if t.kind == tokEOF {
			return nil
		}
		if t.kind != tokWord {
			return ld.errorf(t.line, "unexpected %s", t)
		}
		switch t.text {
		case "menu":
			err = ld.menu()
		case "recordtype":
			err = ld.recordType()
		case "device":
			err = ld.device()
		case "driver":
			err = ld.driver()
		case "breaktable":
			err = ld.breakTable()
		case "record":
			err = ld.record(false)
		case "grecord":
			err = ld.record(true)
		case "include":
			err = ld.include()
		case "path", "addpath":
			err = ld.path(t.text == "path")
		default:
			err = ld.errorf(t.line, "unknown keyword %s", t.text)
		}
		if err != nil {
			return err
		}
	}
}

func (ld *loader) menu() error {
	a, err := ld.args(1)
	if err != nil {
		return err
	}
	m := dbstatic.NewMenu(a[0].text)
	err = ld.block(func(kw token) error {
		if kw.text != "choice" {
			return ld.errorf(kw.line, "menu(%s): unexpected %s", m.Name, kw.text)
		}
		c, err := ld.args(2)
		if err != nil {
			return err
		}
		m.Choices = append(m.Choices, dbstatic.Choice{Name: c[0].text, Value: c[1].text})
		return nil
	})
	if err != nil {
		return err
	}
	if err := ld.base.AddMenu(m); err != nil {
		return ld.at(a[0].line, err)
	}
	return nil
}

func (ld *loader) recordType() error {
	a, err := ld.args(1)
	if err != nil {
		return err
	}
	rt := dbstatic.NewRecordType(a[0].text)
	err = ld.block(func(kw token) error {
		if kw.text != "field" {
			return ld.errorf(kw.line, "recordtype(%s): unexpected %s", rt.Name, kw.text)
		}
		fd, err := ld.fieldDesc()
		if err != nil {
			return err
		}
		rt.Fields = append(rt.Fields, fd)
		return nil
	})
	if err != nil {
		return err
	}
	if err := ld.base.AddRecordType(rt); err != nil {
		return ld.at(a[0].line, err)
	}
	ld.log.Debug("recordtype loaded", "recordtype", rt.Name, "fields", len(rt.Fields))
	return nil
}

func (ld *loader) fieldDesc() (*dbstatic.FieldDesc, error) {
	a, err := ld.args(2)
	if err != nil {
		return nil, err
	}
	ft, ok := dbf.ParseType(a[1].text)
	if !ok {
		return nil, ld.errorf(a[1].line, "field(%s): unknown type %s", a[0].text, a[1].text)
	}
	fd := &dbstatic.FieldDesc{Name: a[0].text, Type: ft}
	err = ld.block(func(kw token) error {
		v, err := ld.args(1)
		if err != nil {
			return err
		}
		val, line := v[0].text, v[0].line
		switch kw.text {
		case "prompt":
			fd.Prompt = val
		case "initial":
			fd.Initial = val
		case "extra":
			fd.Extra = val
		case "menu":
			fd.MenuName = val
		case "promptgroup":
			if fd.PromptGroup, ok = dbf.ParseGuiGroup(val); !ok {
				return ld.errorf(line, "unknown promptgroup %s", val)
			}
		case "special":
			if fd.Special, ok = dbf.ParseSpecial(val); !ok {
				return ld.errorf(line, "unknown special %s", val)
			}
		case "base":
			if fd.Base, ok = dbf.ParseBase(val); !ok {
				return ld.errorf(line, "unknown base %s", val)
			}
		case "asl":
			if fd.ASL, ok = dbf.ParseASL(val); !ok {
				return ld.errorf(line, "unknown asl %s", val)
			}
		case "pp":
			switch val {
			case "TRUE":
				fd.ProcessPassive = true
			case "FALSE":
				fd.ProcessPassive = false
			default:
				return ld.errorf(line, "pp must be TRUE or FALSE")
			}
		case "size":
			if fd.Size, err = strconv.Atoi(val); err != nil {
				return ld.errorf(line, "bad size %s", val)
			}
		case "interest":
			if fd.Interest, err = strconv.Atoi(val); err != nil {
				return ld.errorf(line, "bad interest %s", val)
			}
		default:
			return ld.errorf(kw.line, "field(%s): unknown attribute %s", fd.Name, kw.text)
		}
		return nil
	})
	return fd, err
}

func (ld *loader) device() error {
	a, err := ld.args(4)
	if err != nil {
		return err
	}
	lt, ok := link.ParseType(a[1].text)
	if !ok {
		return ld.errorf(a[1].line, "unknown link type %s", a[1].text)
	}
	if err := ld.base.AddDevice(a[0].text, lt, a[2].text, a[3].text); err != nil {
		return ld.at(a[0].line, err)
	}
	return nil
}

func (ld *loader) driver() error {
	a, err := ld.args(1)
	if err != nil {
		return err
	}
	if err := ld.base.AddDriver(a[0].text); err != nil {
		return ld.at(a[0].line, err)
	}
	return nil
}

// breakTable reads raw and engineering values in pairs; commas between
// values are optional.
func (ld *loader) breakTable() error {
	a, err := ld.args(1)
	if err != nil {
		return err
	}
	bt := &dbstatic.BreakTable{Name: a[0].text}
	if _, err := ld.expect("{"); err != nil {
		return err
	}
	var nums []float64
	for {
		t, err := ld.lex.next()
		if err != nil {
			return errors.Wrap(err, ld.file)
		}
		if t.kind == tokPunct && t.text == "," {
			continue
		}
		if t.kind == tokPunct && t.text == "}" {
			break
		}
		if t.kind != tokWord && t.kind != tokString {
			return ld.errorf(t.line, "breaktable(%s): unexpected %s", bt.Name, t)
		}
		v, rest := utils.Strtod(t.text)
		if rest != "" {
			return ld.errorf(t.line, "breaktable(%s): bad number %s", bt.Name, t.text)
		}
		nums = append(nums, v)
	}
	if len(nums)%2 != 0 || len(nums) == 0 {
		return ld.errorf(a[0].line, "breaktable(%s): %d values, want raw/eng pairs", bt.Name, len(nums))
	}
	for i := 0; i < len(nums); i += 2 {
		bt.Points = append(bt.Points, dbstatic.BreakPoint{Raw: nums[i], Eng: nums[i+1]})
	}
	if err := ld.base.AddBreakTable(bt); err != nil {
		return ld.at(a[0].line, err)
	}
	return nil
}

// record creates the instance, or reopens it when a record of that name
// and type exists, then applies every field(NAME,"value").
func (ld *loader) record(visible bool) error {
	a, err := ld.args(2)
	if err != nil {
		return err
	}
	typeName, name := a[0].text, a[1].text
	e := dbstatic.NewEntry(ld.base)
	defer e.Finish()
	if err := e.FindRecord(name); err == nil {
		if e.RecordTypeName() != typeName {
			return ld.errorf(a[1].line, "record %s is %s, not %s", name, e.RecordTypeName(), typeName)
		}
	} else {
		if err := e.FindRecordType(typeName); err != nil {
			return ld.at(a[0].line, errors.Wrap(err, typeName))
		}
		if err := e.CreateRecord(name); err != nil {
			return ld.at(a[1].line, err)
		}
	}
	if visible {
		_ = e.VisibleRecord()
	}
	return ld.block(func(kw token) error {
		if kw.text != "field" {
			return ld.errorf(kw.line, "record(%s): unexpected %s", name, kw.text)
		}
		f, err := ld.args(2)
		if err != nil {
			return err
		}
		if err := e.FindField(f[0].text); err != nil {
			return ld.at(f[0].line, errors.Wrapf(err, "%s.%s", name, f[0].text))
		}
		if err := e.PutString(f[1].text); err != nil {
			return ld.at(f[1].line, errors.Wrapf(err, "%s.%s", name, f[0].text))
		}
		return nil
	})
}

// include accepts include "file" and include(file).
func (ld *loader) include() error {
	t, err := ld.lex.next()
	if err != nil {
		return errors.Wrap(err, ld.file)
	}
	var file string
	switch {
	case t.kind == tokString:
		file = t.text
	case t.kind == tokPunct && t.text == "(":
		ld.lex.unread(t)
		a, err := ld.args(1)
		if err != nil {
			return err
		}
		file = a[0].text
	default:
		return ld.errorf(t.line, "include needs a file name")
	}
	if len(ld.base.Path()) == 0 && !filepath.IsAbs(file) {
		file = filepath.Join(filepath.Dir(ld.file), file)
	}
	if err := loadFile(ld.base, file, ld.depth+1); err != nil {
		return ld.at(t.line, err)
	}
	return nil
}

func (ld *loader) path(replace bool) error {
	t, err := ld.value()
	if err != nil {
		return err
	}
	if replace {
		ld.base.SetPath(t.text)
	} else {
		ld.base.AddPath(t.text)
	}
	return nil
}
