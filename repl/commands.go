package repl

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbd"
)

var HelpLoad = errors.New("load file.dbd [file.db...]")

func (repl *REPL) CommandLoad(args []string) error {
	if len(args) == 0 {
		return HelpLoad
	}
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		for _, file := range args {
			if err := dbd.LoadFile(e.Base(), file); err != nil {
				return err
			}
			repl.Log.Info("loaded", "file", file)
		}
		return nil
	})
}

var HelpPath = errors.New("path [set|add dir:dir...]")

func (repl *REPL) CommandPath(args []string) error {
	if len(args) == 0 {
		return repl.Guard.View(func(e *dbstatic.Entry) error {
			return e.Base().DumpPath(repl.Out)
		})
	}
	if len(args) != 2 {
		return HelpPath
	}
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		switch args[0] {
		case "set":
			e.Base().SetPath(args[1])
		case "add":
			e.Base().AddPath(args[1])
		default:
			return HelpPath
		}
		return nil
	})
}

var HelpWrite = errors.New("write [file]")

// CommandWrite writes the whole base to a file, or to the output.
func (repl *REPL) CommandWrite(args []string) error {
	if len(args) > 1 {
		return HelpWrite
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		if len(args) == 0 {
			return e.Base().Write(repl.Out)
		}
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err = e.Base().Write(f); err != nil {
			_ = f.Close()
			return err
		}
		return f.Close()
	})
}

var HelpList = errors.New("dbl [recordtype]")

func (repl *REPL) CommandList(args []string) error {
	if len(args) > 1 {
		return HelpList
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		var err error
		if len(args) == 1 {
			err = e.FindRecordType(args[0])
		} else {
			err = e.FirstRecordType()
		}
		for err == nil {
			for rerr := e.FirstRecord(); rerr == nil; rerr = e.NextRecord() {
				_, _ = fmt.Fprintln(repl.Out, e.RecordName())
			}
			if len(args) == 1 {
				return nil
			}
			err = e.NextRecordType()
		}
		if len(args) == 1 {
			return errors.Wrap(err, args[0])
		}
		return nil
	})
}

var HelpPrint = errors.New("dbpr record [level]")

// CommandPrint shows the prompted fields of a record; level 0 hides
// default values and level 2 adds the fields without a prompt group.
func (repl *REPL) CommandPrint(args []string) error {
	if len(args) == 0 || len(args) > 2 {
		return HelpPrint
	}
	level := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return HelpPrint
		}
		level = n
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(args[0]); err != nil {
			return errors.Wrap(err, args[0])
		}
		dctOnly := level <= 1
		for err := e.FirstField(dctOnly); err == nil; err = e.NextField(dctOnly) {
			if level <= 0 && e.IsDefaultValue() {
				continue
			}
			value, err := e.GetString()
			if err != nil {
				continue
			}
			_, _ = fmt.Fprintf(repl.Out, "%-4s: %s\n", e.FieldName(), value)
		}
		return nil
	})
}

var HelpGet = errors.New("dbgf record.FIELD")

func (repl *REPL) CommandGet(args []string) error {
	if len(args) != 1 {
		return HelpGet
	}
	value, err := repl.Get(args[0])
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(repl.Out, value)
	return nil
}

// Get reads one "record.FIELD" value.
func (repl *REPL) Get(name string) (value string, err error) {
	err = repl.Guard.View(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(name); err != nil {
			return errors.Wrap(err, name)
		}
		value, err = e.GetString()
		return err
	})
	return
}

var HelpPut = errors.New("dbpf record.FIELD value")

func (repl *REPL) CommandPut(args []string) error {
	if len(args) < 2 {
		return HelpPut
	}
	value, err := repl.Put(args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(repl.Out, value)
	return nil
}

// Put stores value into "record.FIELD" and returns what reads back.
func (repl *REPL) Put(name, value string) (stored string, err error) {
	err = repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(name); err != nil {
			return errors.Wrap(err, name)
		}
		if err := e.PutString(value); err != nil {
			return errors.Wrap(err, name)
		}
		stored, _ = e.GetString()
		return nil
	})
	return
}

var HelpVerify = errors.New("verify record.FIELD value")

func (repl *REPL) CommandVerify(args []string) error {
	if len(args) < 2 {
		return HelpVerify
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(args[0]); err != nil {
			return errors.Wrap(err, args[0])
		}
		msg := e.Verify(strings.Join(args[1:], " "))
		if msg == "" {
			msg = "ok"
		}
		_, _ = fmt.Fprintln(repl.Out, msg)
		return nil
	})
}

var HelpCreate = errors.New("create recordtype name")

func (repl *REPL) CommandCreate(args []string) error {
	if len(args) != 2 {
		return HelpCreate
	}
	return repl.Create(args[0], args[1])
}

func (repl *REPL) Create(recordType, name string) error {
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecordType(recordType); err != nil {
			return errors.Wrap(err, recordType)
		}
		return e.CreateRecord(name)
	})
}

var HelpDelete = errors.New("delete name")

func (repl *REPL) CommandDelete(args []string) error {
	if len(args) != 1 {
		return HelpDelete
	}
	return repl.Delete(args[0])
}

func (repl *REPL) Delete(name string) error {
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(name); err != nil {
			return errors.Wrap(err, name)
		}
		return e.DeleteRecord()
	})
}

var HelpRename = errors.New("rename name newname")

func (repl *REPL) CommandRename(args []string) error {
	if len(args) != 2 {
		return HelpRename
	}
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(args[0]); err != nil {
			return errors.Wrap(err, args[0])
		}
		return e.RenameRecord(args[1])
	})
}

var HelpCopy = errors.New("copy name newname [-f]")

func (repl *REPL) CommandCopy(args []string) error {
	if len(args) < 2 || len(args) > 3 || (len(args) == 3 && args[2] != "-f") {
		return HelpCopy
	}
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecord(args[0]); err != nil {
			return errors.Wrap(err, args[0])
		}
		return e.CopyRecord(args[1], len(args) == 3)
	})
}

var HelpDump = errors.New("dump type|fld|menu|device|driver|breaktable|path|pvd|report|records [name...]")

func (repl *REPL) CommandDump(args []string) error {
	if len(args) == 0 {
		return HelpDump
	}
	arg := func(i int) string {
		if i < len(args) {
			return args[i]
		}
		return ""
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		b, w := e.Base(), repl.Out
		switch args[0] {
		case "type":
			return b.DumpRecordType(w, arg(1))
		case "fld":
			return b.DumpFldDes(w, arg(1), arg(2))
		case "menu":
			return b.DumpMenu(w, arg(1))
		case "device":
			return b.DumpDevice(w, arg(1))
		case "driver":
			return b.DumpDriver(w)
		case "breaktable":
			return b.DumpBreakTable(w, arg(1))
		case "path":
			return b.DumpPath(w)
		case "pvd":
			return b.PvdDump(w)
		case "report":
			return b.ReportDeviceConfig(w)
		case "records":
			level := 0
			if s := arg(2); s != "" {
				n, err := strconv.Atoi(s)
				if err != nil {
					return HelpDump
				}
				level = n
			}
			return b.DumpRecord(w, arg(1), level)
		}
		return HelpDump
	})
}

var ErrNoStore = errors.New("no store configured")

func (repl *REPL) CommandSave(ctx context.Context, args []string) error {
	if repl.Store == nil {
		return ErrNoStore
	}
	return repl.Guard.View(func(e *dbstatic.Entry) error {
		meta, err := repl.Store.Save(ctx, e.Base())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(repl.Out, "saved %d records as %s\n", meta.Records, meta.ID)
		return nil
	})
}

func (repl *REPL) CommandRestore(ctx context.Context, args []string) error {
	if repl.Store == nil {
		return ErrNoStore
	}
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		n, err := repl.Store.Load(ctx, e.Base())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(repl.Out, "restored %d records\n", n)
		return nil
	})
}

var helps = []error{
	HelpLoad, HelpPath, HelpWrite,
	HelpList, HelpPrint, HelpGet, HelpPut, HelpVerify,
	HelpCreate, HelpDelete, HelpRename, HelpCopy,
	HelpDump,
}

func (repl *REPL) CommandHelp() {
	for _, h := range helps {
		_, _ = fmt.Fprintln(repl.Out, h.Error())
	}
	_, _ = fmt.Fprintln(repl.Out, "save")
	_, _ = fmt.Fprintln(repl.Out, "restore")
	_, _ = fmt.Fprintln(repl.Out, "exit")
}
