package dbstatic

import (
	"log/slog"

	"github.com/drpcorg/dbstatic/utils"
)

const (
	// PVNameSize is the longest record name FindRecord looks up.
	PVNameSize = 28
	// MaxFieldNameLength caps the field name token FindField reads.
	MaxFieldNameLength = 20
)

type Options struct {
	Logger utils.Logger
	// PvdBuckets is rounded up to a power of two.
	PvdBuckets    int
	PVNameSize    int
	AddrCacheSize int
	Allocator     Allocator
}

func (o *Options) SetDefaults() {
	if o.Logger == nil {
		o.Logger = utils.NewDefaultLogger(slog.LevelWarn)
	}
	if o.PvdBuckets <= 0 {
		o.PvdBuckets = 512
	}
	n := 1
	for n < o.PvdBuckets {
		n <<= 1
	}
	o.PvdBuckets = n
	if o.PVNameSize <= 0 {
		o.PVNameSize = PVNameSize
	}
	if o.AddrCacheSize <= 0 {
		o.AddrCacheSize = 1024
	}
	if o.Allocator == nil {
		o.Allocator = HeapAllocator{}
	}
}
