package dbstatic

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"

	"github.com/drpcorg/dbstatic/dbstatic_errors"
)

type pvdEntry struct {
	name string
	rt   *RecordType
	rec  *RecordNode
}

// pvd is the process variable directory: record name to (type, node),
// unique across the whole base.
type pvd struct {
	buckets [][]pvdEntry
	mask    uint64
	count   int
}

func newPvd(nbuckets int) *pvd {
	return &pvd{
		buckets: make([][]pvdEntry, nbuckets),
		mask:    uint64(nbuckets - 1),
	}
}

func (p *pvd) bucket(name string) int {
	return int(xxhash.Sum64String(name) & p.mask)
}

func (p *pvd) Find(name string) (pvdEntry, bool) {
	for _, e := range p.buckets[p.bucket(name)] {
		if e.name == name {
			return e, true
		}
	}
	return pvdEntry{}, false
}

func (p *pvd) Add(rt *RecordType, rec *RecordNode) error {
	name := rec.Name()
	b := p.bucket(name)
	for _, e := range p.buckets[b] {
		if e.name == name {
			return errors.Wrapf(dbstatic_errors.ErrRecExists, "pvd: %s", name)
		}
	}
	p.buckets[b] = append(p.buckets[b], pvdEntry{name: name, rt: rt, rec: rec})
	p.count++
	return nil
}

// Remove drops the entry of rec under name; the name is passed because a
// rename changes the record before the directory learns of it.
func (p *pvd) Remove(name string, rec *RecordNode) bool {
	b := p.bucket(name)
	list := p.buckets[b]
	for i, e := range list {
		if e.name == name && e.rec == rec {
			list[i] = list[len(list)-1]
			p.buckets[b] = list[:len(list)-1]
			p.count--
			return true
		}
	}
	return false
}

func (p *pvd) Len() int {
	return p.count
}

// Occupancy returns the used bucket count and the longest chain.
func (p *pvd) Occupancy() (used, longest int) {
	for _, list := range p.buckets {
		if len(list) == 0 {
			continue
		}
		used++
		longest = max(longest, len(list))
	}
	return
}

// Dump prints every non-empty bucket with its names, then the totals.
func (p *pvd) Dump(w io.Writer) error {
	for i, list := range p.buckets {
		if len(list) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%3.3d %4d", i, len(list)); err != nil {
			return err
		}
		for _, e := range list {
			if _, err := fmt.Fprintf(w, " %s", e.name); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	used, longest := p.Occupancy()
	_, err := fmt.Fprintf(w, "size:%d used:%d entries:%d longest:%d\n",
		len(p.buckets), used, p.count, longest)
	return err
}
