package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/flystore"
	"github.com/hupe1980/flystore/codec"
	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/snapshot"
)

// Layout selects how a record file is interpreted.
type Layout struct {
	Width int64 `required:"" help:"Record width in bytes"`
	Dual  bool  `help:"File uses the dual header (count and end offset)"`
}

func (l Layout) header() flyweight.HeaderLayout {
	if l.Dual {
		return flyweight.DualHeader
	}
	return flyweight.SingleHeader
}

func (l Layout) open(s *flystore.Store, path string) (*flyweight.FlyWeight, error) {
	b, err := s.OpenMappedReadOnly(path)
	if err != nil {
		return nil, err
	}
	return flyweight.Attach(b, l.Width, flyweight.WithHeader(l.header()))
}

// Summary describes a record file.
type Summary struct {
	File        string `json:"file"`
	FileBytes   int64  `json:"file_bytes"`
	Header      string `json:"header"`
	RecordWidth int64  `json:"record_width"`
	RecordCount int64  `json:"record_count"`
	Capacity    int64  `json:"capacity"`
	UsedBytes   int64  `json:"used_bytes"`
}

// InspectCmd prints the header and layout of a record file.
type InspectCmd struct {
	File string `arg:"" help:"Record file" type:"existingfile"`
	Layout
	JSON bool `name:"json" help:"Print JSON"`
}

func (c *InspectCmd) Run(rc *runContext) error {
	s := rc.store()
	defer s.Close()

	fw, err := c.open(s, c.File)
	if err != nil {
		return err
	}
	sum := Summary{
		File:        c.File,
		FileBytes:   fw.Bytes().Len(),
		Header:      fw.Header().String(),
		RecordWidth: fw.RecordWidth(),
		RecordCount: fw.RecordCount(),
		Capacity:    fw.Capacity(),
		UsedBytes:   fw.MaxByteOffset(),
	}

	if c.JSON {
		data, err := codec.GoJSON{}.MarshalIndent(sum)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(rc.Out, string(data))
		return err
	}
	_, err = fmt.Fprintf(rc.Out, "file:     %s (%s)\nheader:   %s\nrecords:  %s x %d bytes\ncapacity: %s records\nused:     %s\n",
		sum.File, humanize.IBytes(uint64(sum.FileBytes)),
		sum.Header,
		humanize.Comma(sum.RecordCount), sum.RecordWidth,
		humanize.Comma(sum.Capacity),
		humanize.IBytes(uint64(sum.UsedBytes)),
	)
	return err
}

// errUnsorted is returned by verify-sorted when an inversion is found.
var errUnsorted = errors.New("records are not sorted")

// VerifySortedCmd checks record order in parallel.
type VerifySortedCmd struct {
	File string `arg:"" help:"Record file" type:"existingfile"`
	Layout
	FieldOffset int64 `name:"field-offset" required:"" help:"Byte offset of the int64 sort key"`
	Descending  bool  `help:"Expect descending order"`
}

func (c *VerifySortedCmd) Run(rc *runContext) error {
	s := rc.store()
	defer s.Close()

	fw, err := c.open(s, c.File)
	if err != nil {
		return err
	}
	cmp := flyweight.CompareInt64(c.FieldOffset)
	if c.Descending {
		cmp = flyweight.Reverse(cmp)
	}

	n := fw.RecordCount()
	// Each leaf also checks the pair that straddles its upper bound.
	first, found, err := flystore.Query(context.Background(), s, fw,
		func(fw *flyweight.FlyWeight, from, to int64) (int64, bool, error) {
			for i := from; i < min(to, n-1); i++ {
				if cmp(fw, i, i+1) == flyweight.GT {
					return i, true, nil
				}
			}
			return 0, false, nil
		},
		func(a, b int64) int64 { return min(a, b) },
	)
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: record %d > record %d", errUnsorted, first, first+1)
	}
	_, err = fmt.Fprintf(rc.Out, "sorted: %s records\n", humanize.Comma(n))
	return err
}

// ExportCmd writes a record file to a snapshot.
type ExportCmd struct {
	File string `arg:"" help:"Record file" type:"existingfile"`
	Out  string `arg:"" help:"Snapshot path" type:"path"`
	Layout
	Compression string `default:"zstd" enum:"zstd,lz4,none" help:"Payload compression (zstd, lz4, none)"`
}

func (c *ExportCmd) Run(rc *runContext) (err error) {
	compression, err := snapshot.ParseCompression(c.Compression)
	if err != nil {
		return err
	}
	s := rc.store(flystore.WithSnapshotCompression(compression))
	defer s.Close()

	fw, err := c.open(s, c.File)
	if err != nil {
		return err
	}
	f, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	m, err := s.Export(context.Background(), f, fw)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(rc.Out, "exported %s records (%s) to %s\n",
		humanize.Comma(m.RecordCount), humanize.IBytes(uint64(m.RawBytes)), c.Out)
	return err
}

// ImportCmd restores a snapshot into a record file.
type ImportCmd struct {
	Snapshot string `arg:"" help:"Snapshot path" type:"existingfile"`
	File     string `arg:"" help:"Record file to create" type:"path"`
	Force    bool   `help:"Overwrite an existing file"`
}

func (c *ImportCmd) Run(rc *runContext) error {
	if _, err := os.Stat(c.File); err == nil && !c.Force {
		return fmt.Errorf("%s exists; use --force to overwrite", c.File)
	}
	if err := os.Remove(c.File); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s := rc.store()
	defer s.Close()

	f, err := os.Open(c.Snapshot)
	if err != nil {
		return err
	}
	defer f.Close()

	dst, err := s.OpenMapped(c.File, 0)
	if err != nil {
		return err
	}
	m, err := s.Restore(context.Background(), f, dst)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(rc.Out, "imported %s (%s) into %s\n", m.Kind, humanize.IBytes(uint64(m.RawBytes)), c.File)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(rc *runContext) error {
	_, err := fmt.Fprintf(rc.Out, "flyinspect %s\n", version)
	return err
}
