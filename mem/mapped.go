package mem

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	mmapgo "github.com/edsrzf/mmap-go"

	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/internal/fs"
	"github.com/hupe1980/flystore/internal/mmap"
	"github.com/hupe1980/flystore/metrics"
)

const kindMapped = "mapped"

// MappedBytes is a Bytes backed by a shared read-write mapping of a file.
// Writes reach the file on Flush, Resize or Release.
type MappedBytes struct {
	buffer
	file    fs.File
	osFile  *os.File
	mm      mmapgo.MMap
	access  AccessPattern
	logger  *slog.Logger
	metrics metrics.Collector
}

// OpenMapped maps the file at path, creating it if needed. A positive size
// truncates or extends the file to size bytes; zero maps the file as is.
// Failures wrap ErrIO.
func OpenMapped(path string, size int64, opts ...Option) (*MappedBytes, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	o := applyOptions(opts)
	if o.name == "" {
		o.name = path
	}

	f, err := o.fs.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	osf, ok := fs.OSFile(f)
	if !ok {
		_ = f.Close()
		return nil, ioError("open", path, errors.New("file has no descriptor to map"))
	}

	mb := &MappedBytes{
		file:    f,
		osFile:  osf,
		access:  o.access,
		logger:  o.logger,
		metrics: o.metrics,
	}

	if size == 0 {
		fi, err := f.Stat()
		if err != nil {
			_ = f.Close()
			return nil, ioError("stat", path, err)
		}
		size = fi.Size()
	} else if err := f.Truncate(size); err != nil {
		_ = f.Close()
		return nil, ioError("truncate", path, err)
	}

	data, err := mb.mapFile(size)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	mb.init(o.name, data, o.policy)
	mb.metrics.RecordAlloc(kindMapped, size)
	return mb, nil
}

func (mb *MappedBytes) mapFile(size int64) ([]byte, error) {
	mb.mm = nil
	if size == 0 {
		return []byte{}, nil
	}
	n, err := conv.Int64ToInt(size)
	if err != nil {
		return nil, ErrCapacityOverflow
	}
	m, err := mmapgo.MapRegion(mb.osFile, n, mmapgo.RDWR, 0, 0)
	if err != nil {
		return nil, ioError("mmap", mb.file.Name(), err)
	}
	mb.mm = m
	if mb.access != AccessDefault {
		if err := mmap.Advise(m, mb.access); err != nil {
			mb.logger.Debug("madvise failed", "file", mb.file.Name(), "error", err)
		}
	}
	return m, nil
}

func (mb *MappedBytes) unmap() error {
	if mb.mm == nil {
		return nil
	}
	if err := mb.mm.Flush(); err != nil {
		return ioError("flush", mb.file.Name(), err)
	}
	if err := mb.mm.Unmap(); err != nil {
		return ioError("munmap", mb.file.Name(), err)
	}
	mb.mm = nil
	return nil
}

// Flush writes dirty pages back to the file.
func (mb *MappedBytes) Flush() error {
	if mb.released {
		return ErrReleased
	}
	if mb.mm == nil {
		return nil
	}
	if err := mb.mm.Flush(); err != nil {
		return ioError("flush", mb.file.Name(), err)
	}
	return nil
}

// Advise applies an access hint to the current mapping.
func (mb *MappedBytes) Advise(p AccessPattern) error {
	if mb.released {
		return ErrReleased
	}
	return mmap.Advise(mb.mm, p)
}

// Resize flushes and unmaps the file, truncates it to n bytes and maps it again.
func (mb *MappedBytes) Resize(n int64) error {
	if mb.released {
		return ErrReleased
	}
	if n < 0 {
		return ErrInvalidSize
	}
	old := int64(len(mb.data))
	if err := mb.unmap(); err != nil {
		return err
	}
	if err := mb.file.Truncate(n); err != nil {
		// Remap the old length so the buffer stays usable.
		data, rerr := mb.mapFile(old)
		if rerr == nil {
			mb.reset(data)
		}
		return errors.Join(ioError("truncate", mb.file.Name(), err), rerr)
	}
	data, err := mb.mapFile(n)
	if err != nil {
		mb.released = true
		mb.data = nil
		return errors.Join(err, mb.file.Close())
	}
	mb.reset(data)
	mb.metrics.RecordGrowth(mb.name, old, n, false)
	mb.metrics.RecordAlloc(kindMapped, n)
	mb.metrics.RecordRelease(kindMapped, old)
	return nil
}

// Release flushes, unmaps and closes the file.
func (mb *MappedBytes) Release() error {
	if mb.released {
		return ErrReleased
	}
	mb.released = true
	size := int64(len(mb.data))
	mb.data = nil
	mb.pos = 0

	err := mb.unmap()
	if cerr := mb.file.Close(); cerr != nil {
		err = errors.Join(err, ioError("close", mb.file.Name(), cerr))
	}
	mb.metrics.RecordRelease(kindMapped, size)
	if err != nil {
		return fmt.Errorf("mem: release %s: %w", mb.name, err)
	}
	return nil
}

// mappedReadOnly owns a read-only mapping opened through internal/mmap.
type mappedReadOnly struct {
	buffer
	mapping *mmap.Mapping
}

func (m *mappedReadOnly) Release() error {
	if m.released {
		return ErrReleased
	}
	m.released = true
	m.data = nil
	if err := m.mapping.Close(); err != nil {
		return ioError("munmap", m.name, err)
	}
	return nil
}

// OpenMappedReadOnly maps the file at path read-only. The returned adapter
// owns the mapping: its Release unmaps the file.
func OpenMappedReadOnly(path string, opts ...Option) (*InputAdapter, error) {
	o := applyOptions(opts)
	if o.name == "" {
		o.name = path
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, ioError("mmap", path, err)
	}
	if o.access != AccessDefault {
		if err := m.Advise(o.access); err != nil {
			o.logger.Debug("madvise failed", "file", path, "error", err)
		}
	}
	owner := &mappedReadOnly{mapping: m}
	data := m.Bytes()
	if data == nil {
		data = []byte{}
	}
	owner.init(o.name, data, o.policy)
	return &InputAdapter{Bytes: owner, owner: owner}, nil
}

var _ Bytes = (*MappedBytes)(nil)
