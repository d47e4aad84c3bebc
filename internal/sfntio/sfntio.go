// Package sfntio reads and rewrites the table directory of an OpenType file.
//
// It does not interpret table contents beyond what is needed to keep the
// file's checksums consistent.
package sfntio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"slices"
	"strings"
)

const (
	headerSize      = 12
	tableRecordSize = 16
	checksumMagic   = 0xB1B0AFBA
	headAdjustment  = 8
)

var (
	ErrTruncated   = errors.New("sfntio: truncated font data")
	ErrCollection  = errors.New("sfntio: font collections are not supported")
	ErrNoSuchTable = errors.New("sfntio: no such table")
)

// Table is one raw table.
type Table struct {
	Tag  string
	Data []byte
}

// Font is an OpenType file split into tables.
type Font struct {
	SFNTVersion uint32
	Tables      []Table
}

// Parse splits b into its tables. The table data aliases b.
func Parse(b []byte) (*Font, error) {
	if len(b) < headerSize {
		return nil, ErrTruncated
	}
	version := binary.BigEndian.Uint32(b)
	if string(b[:4]) == "ttcf" {
		return nil, ErrCollection
	}
	numTables := int(binary.BigEndian.Uint16(b[4:]))
	if len(b) < headerSize+numTables*tableRecordSize {
		return nil, ErrTruncated
	}
	f := &Font{SFNTVersion: version, Tables: make([]Table, 0, numTables)}
	for i := range numTables {
		rec := b[headerSize+i*tableRecordSize:]
		tag := string(rec[:4])
		offset := binary.BigEndian.Uint32(rec[8:])
		length := binary.BigEndian.Uint32(rec[12:])
		end := uint64(offset) + uint64(length)
		if end > uint64(len(b)) {
			return nil, fmt.Errorf("%w: table %q", ErrTruncated, tag)
		}
		f.Tables = append(f.Tables, Table{Tag: tag, Data: b[offset:end]})
	}
	return f, nil
}

// Tags lists table tags in directory order.
func (f *Font) Tags() []string {
	out := make([]string, len(f.Tables))
	for i, t := range f.Tables {
		out[i] = t.Tag
	}
	return out
}

func (f *Font) Table(tag string) ([]byte, bool) {
	for _, t := range f.Tables {
		if t.Tag == tag {
			return t.Data, true
		}
	}
	return nil, false
}

func (f *Font) HasTable(tag string) bool {
	_, ok := f.Table(tag)
	return ok
}

// SetTable replaces or adds a table.
func (f *Font) SetTable(tag string, data []byte) {
	for i, t := range f.Tables {
		if t.Tag == tag {
			f.Tables[i].Data = data
			return
		}
	}
	f.Tables = append(f.Tables, Table{Tag: tag, Data: data})
}

// Uint16 reads a big-endian field of a table.
func (f *Font) Uint16(tag string, offset int) (uint16, error) {
	data, ok := f.Table(tag)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoSuchTable, tag)
	}
	if offset+2 > len(data) {
		return 0, fmt.Errorf("%w: %s field at %d", ErrTruncated, tag, offset)
	}
	return binary.BigEndian.Uint16(data[offset:]), nil
}

// SetUint16 writes a big-endian field into a private copy of the table.
func (f *Font) SetUint16(tag string, offset int, v uint16) error {
	data, ok := f.Table(tag)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoSuchTable, tag)
	}
	if offset+2 > len(data) {
		return fmt.Errorf("%w: %s field at %d", ErrTruncated, tag, offset)
	}
	cp := slices.Clone(data)
	binary.BigEndian.PutUint16(cp[offset:], v)
	f.SetTable(tag, cp)
	return nil
}

// Bytes serializes the font with tables sorted by tag, recomputing table
// checksums and head.checkSumAdjustment.
func (f *Font) Bytes() ([]byte, error) {
	tables := slices.Clone(f.Tables)
	slices.SortFunc(tables, func(a, b Table) int { return strings.Compare(a.Tag, b.Tag) })
	for _, t := range tables {
		if len(t.Tag) != 4 {
			return nil, fmt.Errorf("sfntio: invalid table tag %q", t.Tag)
		}
	}

	n := len(tables)
	size := headerSize + n*tableRecordSize
	for _, t := range tables {
		size += pad4(len(t.Data))
	}
	out := make([]byte, size)

	binary.BigEndian.PutUint32(out, f.SFNTVersion)
	binary.BigEndian.PutUint16(out[4:], uint16(n))
	searchRange, entrySelector, rangeShift := searchParams(n)
	binary.BigEndian.PutUint16(out[6:], searchRange)
	binary.BigEndian.PutUint16(out[8:], entrySelector)
	binary.BigEndian.PutUint16(out[10:], rangeShift)

	offset := headerSize + n*tableRecordSize
	headOffset := -1
	for i, t := range tables {
		data := t.Data
		if t.Tag == "head" && len(data) >= headAdjustment+4 {
			data = slices.Clone(data)
			binary.BigEndian.PutUint32(data[headAdjustment:], 0)
			headOffset = offset
		}
		rec := out[headerSize+i*tableRecordSize:]
		copy(rec, t.Tag)
		binary.BigEndian.PutUint32(rec[4:], Checksum(data))
		binary.BigEndian.PutUint32(rec[8:], uint32(offset))
		binary.BigEndian.PutUint32(rec[12:], uint32(len(data)))
		copy(out[offset:], data)
		offset += pad4(len(data))
	}
	if headOffset >= 0 {
		binary.BigEndian.PutUint32(out[headOffset+headAdjustment:], checksumMagic-Checksum(out))
	}
	return out, nil
}

// Checksum is the OpenType table checksum of b, zero-padded to 4 bytes.
func Checksum(b []byte) uint32 {
	var sum uint32
	for len(b) >= 4 {
		sum += binary.BigEndian.Uint32(b)
		b = b[4:]
	}
	if len(b) > 0 {
		var tail [4]byte
		copy(tail[:], b)
		sum += binary.BigEndian.Uint32(tail[:])
	}
	return sum
}

func pad4(n int) int { return (n + 3) &^ 3 }

func searchParams(n int) (searchRange, entrySelector, rangeShift uint16) {
	if n == 0 {
		return 0, 0, 0
	}
	es := bits.Len(uint(n)) - 1
	sr := (1 << es) * tableRecordSize
	return uint16(sr), uint16(es), uint16(n*tableRecordSize - sr)
}
