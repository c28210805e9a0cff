package tarcodec

import (
	"bytes"
	"math"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

// header is the decoded form of a single 512 byte header record.
type header struct {
	name     string
	mode     int64
	uid      int64
	gid      int64
	size     int64
	mtime    int64
	typeflag byte
	linkname string
	uname    string
	gname    string
}

func headerFromStat(name string, st *Stat) (*header, error) {
	h := &header{
		name:  name,
		mode:  st.Mode,
		uid:   int64(st.UID),
		gid:   int64(st.GID),
		mtime: st.ModTime.Unix(),
		uname: st.Uname,
		gname: st.Gname,
	}
	switch st.Type {
	case TypeFile:
		h.typeflag = typeReg
		h.size = st.Size
	case TypeDir:
		h.typeflag = typeDir
	case TypeSymlink:
		h.typeflag = typeSymlink
		h.linkname = st.Linkname
	case TypeHardlink:
		h.typeflag = typeLink
		h.linkname = st.Linkname
	default:
		return nil, errors.Wrapf(ErrUnsupported, "entry %q", name)
	}
	return h, nil
}

// stat converts the header into entry metadata. Types without payload report size 0.
func (h *header) stat() Stat {
	st := Stat{
		Mode:     h.mode,
		UID:      int(h.uid),
		GID:      int(h.gid),
		Uname:    h.uname,
		Gname:    h.gname,
		ModTime:  time.Unix(h.mtime, 0),
		Linkname: h.linkname,
	}
	switch h.typeflag {
	case typeDir:
		st.Type = TypeDir
	case typeSymlink:
		st.Type = TypeSymlink
	case typeLink:
		st.Type = TypeHardlink
	default:
		st.Type = TypeFile
		st.Size = h.size
		st.Linkname = ""
	}
	return st
}

// hasPayload reports whether payload blocks follow the header in the stream.
func (h *header) hasPayload() bool {
	switch h.typeflag {
	case typeDir, typeSymlink, typeLink:
		return false
	}
	return true
}

func encodeHeader(h *header) (*block, error) {
	b := new(block)
	copy(b[nameOff:nameOff+nameSize], h.name)
	if err := formatNumeric(b[modeOff:modeOff+modeLen], h.mode); err != nil {
		return nil, errors.Wrapf(err, "mode of %q", h.name)
	}
	if err := formatNumeric(b[uidOff:uidOff+idLen], h.uid); err != nil {
		return nil, errors.Wrapf(err, "uid of %q", h.name)
	}
	if err := formatNumeric(b[gidOff:gidOff+idLen], h.gid); err != nil {
		return nil, errors.Wrapf(err, "gid of %q", h.name)
	}
	if err := formatNumeric(b[sizeOff:sizeOff+sizeLen], h.size); err != nil {
		return nil, errors.Wrapf(err, "size of %q", h.name)
	}
	if err := formatNumeric(b[mtimeOff:mtimeOff+mtimeLen], h.mtime); err != nil {
		return nil, errors.Wrapf(err, "mtime of %q", h.name)
	}
	b[typeflagOff] = h.typeflag
	copy(b[linkOff:linkOff+nameSize], h.linkname)
	copy(b[magicOff:], magicGNU)
	copy(b[versionOff:], versionGNU)
	if len(h.uname) > ownerSize || len(h.gname) > ownerSize {
		return nil, errors.Wrapf(ErrFieldTooLong, "owner of %q", h.name)
	}
	copy(b[unameOff:unameOff+ownerSize], h.uname)
	copy(b[gnameOff:gnameOff+ownerSize], h.gname)

	sum, _ := b.checksum()
	field := b[chksumOff:chksumEnd]
	_ = formatNumeric(field[:7], sum) // at most 6 octal digits
	field[7] = ' '
	return b, nil
}

func decodeHeader(b *block) (*header, error) {
	stored, err := parseNumeric(b[chksumOff:chksumEnd])
	if err != nil {
		return nil, errors.Wrap(ErrInvalidHeader, "checksum field")
	}
	unsigned, signed := b.checksum()
	if stored != unsigned && stored != signed {
		return nil, errors.Wrapf(ErrChecksumMismatch, "stored %o, computed %o", stored, unsigned)
	}
	h := &header{
		name:     parseString(b[nameOff : nameOff+nameSize]),
		typeflag: b[typeflagOff],
		linkname: parseString(b[linkOff : linkOff+nameSize]),
		uname:    parseString(b[unameOff : unameOff+ownerSize]),
		gname:    parseString(b[gnameOff : gnameOff+ownerSize]),
	}
	fields := []struct {
		dst  *int64
		data []byte
		name string
	}{
		{&h.mode, b[modeOff : modeOff+modeLen], "mode"},
		{&h.uid, b[uidOff : uidOff+idLen], "uid"},
		{&h.gid, b[gidOff : gidOff+idLen], "gid"},
		{&h.size, b[sizeOff : sizeOff+sizeLen], "size"},
		{&h.mtime, b[mtimeOff : mtimeOff+mtimeLen], "mtime"},
	}
	for _, f := range fields {
		if *f.dst, err = parseNumeric(f.data); err != nil {
			return nil, errors.Wrapf(err, "%s of %q", f.name, h.name)
		}
	}
	if h.size < 0 || h.size > math.MaxInt64-blockSize {
		return nil, errors.Wrapf(ErrInvalidHeader, "size %d of %q", h.size, h.name)
	}
	return h, nil
}

// checksum sums the header bytes with the checksum field read as spaces.
// The signed variant covers archives written by historic Sun tar.
func (b *block) checksum() (unsigned, signed int64) {
	for i, c := range b {
		if i >= chksumOff && i < chksumEnd {
			c = ' '
		}
		unsigned += int64(c)
		signed += int64(int8(c))
	}
	return unsigned, signed
}

func parseString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		field = field[:i]
	}
	return string(field)
}

// formatNumeric writes v as zero-padded octal terminated by NUL, falling back
// to GNU base-256 when v does not fit.
func formatNumeric(field []byte, v int64) error {
	digits := len(field) - 1
	if v >= 0 && (digits >= 21 || v < int64(1)<<(3*uint(digits))) {
		s := strconv.FormatInt(v, 8)
		for i := 0; i < digits-len(s); i++ {
			field[i] = '0'
		}
		copy(field[digits-len(s):], s)
		field[digits] = 0
		return nil
	}
	// base-256: big-endian two's complement with the top bit of the first byte set.
	if len(field) < 9 && (v < -(1<<(8*uint(len(field))-2)) || v >= 1<<(8*uint(len(field))-2)) {
		return errors.Wrapf(ErrFieldTooLong, "value %d", v)
	}
	for i := len(field) - 1; i >= 0; i-- {
		field[i] = byte(v)
		v >>= 8
	}
	field[0] |= 0x80
	return nil
}

func parseNumeric(field []byte) (int64, error) {
	if len(field) > 0 && field[0]&0x80 != 0 {
		return parseBase256(field)
	}
	s := string(bytes.Trim(field, " \x00"))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 8, 63)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidHeader, "numeric field %q", s)
	}
	return int64(v), nil
}

func parseBase256(field []byte) (int64, error) {
	inv := byte(0)
	if field[0]&0x40 != 0 {
		inv = 0xff
	}
	var x uint64
	for i, c := range field {
		c ^= inv
		if i == 0 {
			c &= 0x7f
		}
		if x>>56 > 0 {
			return 0, errors.Wrap(ErrInvalidHeader, "base-256 field overflows int64")
		}
		x = x<<8 | uint64(c)
	}
	if x>>63 > 0 {
		return 0, errors.Wrap(ErrInvalidHeader, "base-256 field overflows int64")
	}
	if inv == 0xff {
		return ^int64(x), nil
	}
	return int64(x), nil
}
