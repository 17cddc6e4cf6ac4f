package dbstatic

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/drpcorg/dbstatic/dbstatic_errors"
)

// Addr pins a field of a record instance.
type Addr struct {
	Record *RecordNode
	Field  *FieldDesc
}

// Value is the raw slot the address points at.
func (a Addr) Value() any {
	return a.Record.Slot(a.Field)
}

type addrCache struct {
	cache *lru.Cache[string, Addr]
}

func newAddrCache(size int) *addrCache {
	cache, _ := lru.New[string, Addr](size)
	return &addrCache{cache: cache}
}

// purge runs on every delete and rename, which may leave stale addresses.
func (ac *addrCache) purge() {
	ac.cache.Purge()
}

// NameToAddr resolves "record" or "record.FIELD"; a bare record name
// means its VAL field.
func (b *Base) NameToAddr(name string) (Addr, error) {
	if a, ok := b.addrs.cache.Get(name); ok {
		return a, nil
	}
	e := NewEntry(b)
	defer e.Finish()
	if err := e.FindRecord(name); err != nil {
		return Addr{}, err
	}
	if e.fd == nil {
		if err := e.FindField(""); err != nil {
			return Addr{}, err
		}
	}
	if !e.FoundField() {
		return Addr{}, dbstatic_errors.ErrFieldNotFound
	}
	a := Addr{Record: e.rec, Field: e.fd}
	b.addrs.cache.Add(name, a)
	return a, nil
}
