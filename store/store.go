// Package store keeps snapshots of record instances in a pebble database.
// The schema is not stored: a snapshot is restored into a base that
// already has the same record types loaded.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/utils"
)

// key layout: 'M' meta, 'R'+name one record
const (
	metaKey   = 'M'
	recordKey = 'R'
)

func RKey(name string) []byte {
	return append([]byte{recordKey}, name...)
}

type Options struct {
	Logger utils.Logger
	Pebble pebble.Options
	// Sync makes Save wait for the WAL to reach the disk.
	Sync bool
}

func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelWarn)
	}
}

// Field is one non-default value in text form.
type Field struct {
	_     struct{} `cbor:",toarray"`
	Name  string
	Value string
}

// Doc is the stored form of a record; fields are in declaration order so
// DTYP is restored before the link it types.
type Doc struct {
	Type    string  `cbor:"1,keyasint"`
	Visible bool    `cbor:"2,keyasint,omitempty"`
	Fields  []Field `cbor:"3,keyasint"`
}

type Meta struct {
	ID      uuid.UUID `cbor:"1,keyasint"`
	Saved   time.Time `cbor:"2,keyasint"`
	Records int       `cbor:"3,keyasint"`
}

type Store struct {
	db  *pebble.DB
	log utils.Logger
	wo  *pebble.WriteOptions
	enc cbor.EncMode
	dec cbor.DecMode
}

func Open(dir string, opts Options) (*Store, error) {
	opts.SetDefaults()
	encOpts := cbor.CanonicalEncOptions()
	encOpts.Time = cbor.TimeRFC3339Nano
	enc, err := encOpts.EncMode()
	if err != nil {
		return nil, err
	}
	dec, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	db, err := pebble.Open(dir, &opts.Pebble)
	if err != nil {
		return nil, errors.Wrapf(err, "open store %s", dir)
	}
	return &Store{
		db:  db,
		log: opts.Logger,
		wo:  &pebble.WriteOptions{Sync: opts.Sync},
		enc: enc,
		dec: dec,
	}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return dbstatic_errors.ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// DB is nil once the store is closed.
func (s *Store) DB() *pebble.DB {
	return s.db
}

// Save replaces the stored snapshot with every record of b. The caller
// must keep writers off b meanwhile (see dbstatic.Guard).
func (s *Store) Save(ctx context.Context, b *dbstatic.Base) (Meta, error) {
	if s.db == nil {
		return Meta{}, dbstatic_errors.ErrClosed
	}
	id, err := uuid.NewV7()
	if err != nil {
		return Meta{}, err
	}
	meta := Meta{ID: id, Saved: time.Now().UTC()}
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.DeleteRange([]byte{recordKey}, []byte{recordKey + 1}, nil); err != nil {
		return Meta{}, err
	}
	e := dbstatic.NewEntry(b)
	defer e.Finish()
	for err := e.FirstRecordType(); err == nil; err = e.NextRecordType() {
		if err := ctx.Err(); err != nil {
			return Meta{}, err
		}
		for err := e.FirstRecord(); err == nil; err = e.NextRecord() {
			value, err := s.enc.Marshal(snapshotDoc(e))
			if err != nil {
				return Meta{}, errors.Wrap(err, e.RecordName())
			}
			if err := batch.Set(RKey(e.RecordName()), value, nil); err != nil {
				return Meta{}, err
			}
			meta.Records++
		}
	}
	value, err := s.enc.Marshal(meta)
	if err != nil {
		return Meta{}, err
	}
	if err := batch.Set([]byte{metaKey}, value, nil); err != nil {
		return Meta{}, err
	}
	if err := batch.Commit(s.wo); err != nil {
		return Meta{}, err
	}
	SavedRecords.Add(float64(meta.Records))
	s.log.InfoCtx(ctx, "snapshot saved", "id", meta.ID.String(), "records", meta.Records)
	return meta, nil
}

// snapshotDoc collects the values a writer at level 0 would emit, plus
// fields without a prompt group.
func snapshotDoc(e *dbstatic.Entry) Doc {
	doc := Doc{Type: e.RecordTypeName(), Visible: e.IsVisibleRecord()}
	c := e.Copy()
	for err := c.FirstField(false); err == nil; err = c.NextField(false) {
		fd := c.FieldDesc()
		if fd.Index == 0 || fd.Type == dbf.NOACCESS || c.IsDefaultValue() {
			continue
		}
		value, err := c.GetString()
		if err != nil {
			continue
		}
		doc.Fields = append(doc.Fields, Field{Name: fd.Name, Value: value})
	}
	return doc
}

// Meta reads the description of the stored snapshot.
func (s *Store) Meta() (meta Meta, err error) {
	if s.db == nil {
		return meta, dbstatic_errors.ErrClosed
	}
	value, closer, err := s.db.Get([]byte{metaKey})
	if errors.Is(err, pebble.ErrNotFound) {
		return meta, dbstatic_errors.ErrNoSnapshot
	}
	if err != nil {
		return meta, err
	}
	defer closer.Close()
	err = s.dec.Unmarshal(value, &meta)
	return
}

// Get reads one stored record.
func (s *Store) Get(name string) (doc Doc, err error) {
	if s.db == nil {
		return doc, dbstatic_errors.ErrClosed
	}
	value, closer, err := s.db.Get(RKey(name))
	if errors.Is(err, pebble.ErrNotFound) {
		return doc, errors.Wrap(dbstatic_errors.ErrRecNotFound, name)
	}
	if err != nil {
		return doc, err
	}
	defer closer.Close()
	err = s.dec.Unmarshal(value, &doc)
	return
}

// Each calls fn for every stored record in name order; a non-nil return
// from fn stops the walk and is returned.
func (s *Store) Each(fn func(name string, doc Doc) error) error {
	if s.db == nil {
		return dbstatic_errors.ErrClosed
	}
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte{recordKey},
		UpperBound: []byte{recordKey + 1},
	})
	if err != nil {
		return err
	}
	defer it.Close()
	for it.First(); it.Valid(); it.Next() {
		var doc Doc
		if err := s.dec.Unmarshal(it.Value(), &doc); err != nil {
			return errors.Wrapf(err, "record %s", it.Key()[1:])
		}
		if err := fn(string(it.Key()[1:]), doc); err != nil {
			return err
		}
	}
	return it.Error()
}

// Names lists the stored record names.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.Each(func(name string, _ Doc) error {
		names = append(names, name)
		return nil
	})
	return names, err
}

// Load recreates the stored records in b. Records of unknown types are
// skipped; an existing record of the same type is overwritten field by
// field. Returns the number of records restored.
func (s *Store) Load(ctx context.Context, b *dbstatic.Base) (int, error) {
	n := 0
	e := dbstatic.NewEntry(b)
	defer e.Finish()
	err := s.Each(func(name string, doc Doc) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := restore(e, name, doc); err != nil {
			if errors.Is(err, dbstatic_errors.ErrRecordTypeNotFound) {
				s.log.WarnCtx(ctx, "record skipped", "record", name, "recordtype", doc.Type)
				return nil
			}
			return err
		}
		n++
		return nil
	})
	LoadedRecords.Add(float64(n))
	return n, err
}

func restore(e *dbstatic.Entry, name string, doc Doc) error {
	if err := e.FindRecord(name); err == nil {
		if e.RecordTypeName() != doc.Type {
			return errors.Wrapf(dbstatic_errors.ErrRecExists, "%s is %s, stored as %s", name, e.RecordTypeName(), doc.Type)
		}
	} else {
		if err := e.FindRecordType(doc.Type); err != nil {
			return err
		}
		if err := e.CreateRecord(name); err != nil {
			return err
		}
	}
	if doc.Visible {
		_ = e.VisibleRecord()
	} else {
		_ = e.InvisibleRecord()
	}
	for _, f := range doc.Fields {
		c := e.Copy()
		if err := c.FindField(f.Name); err != nil {
			return errors.Wrapf(err, "%s.%s", name, f.Name)
		}
		if err := c.PutString(f.Value); err != nil {
			return errors.Wrapf(err, "%s.%s", name, f.Name)
		}
	}
	return nil
}
