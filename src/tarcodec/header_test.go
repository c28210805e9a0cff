package tarcodec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormatNumeric(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		value   int64
		want    []byte
		wantErr require.ErrorAssertionFunc
	}{
		{
			name:  "mode",
			size:  8,
			value: 0o644,
			want:  []byte("0000644\x00"),
		},
		{
			name:  "size",
			size:  12,
			value: 1234,
			want:  []byte("00000002322\x00"),
		},
		{
			name:  "largest octal size",
			size:  12,
			value: 1<<33 - 1,
			want:  []byte("77777777777\x00"),
		},
		{
			name:  "base-256 size",
			size:  12,
			value: 1 << 33,
			want:  []byte{0x80, 0, 0, 0, 0, 0, 0, 0x02, 0, 0, 0, 0},
		},
		{
			name:  "negative mtime",
			size:  12,
			value: -1,
			want:  []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		},
		{
			name:  "base-256 uid",
			size:  8,
			value: 1 << 21,
			want:  []byte{0x80, 0, 0, 0, 0, 0x20, 0, 0},
		},
		{
			name:    "uid out of range",
			size:    8,
			value:   1 << 62,
			wantErr: require.Error,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wantErr == nil {
				test.wantErr = require.NoError
			}
			field := make([]byte, test.size)
			err := formatNumeric(field, test.value)
			test.wantErr(t, err)
			if err != nil {
				assert.ErrorIs(t, err, ErrFieldTooLong)
				return
			}
			assert.Equal(t, test.want, field)

			got, err := parseNumeric(field)
			require.NoError(t, err)
			assert.Equal(t, test.value, got)
		})
	}
}

func TestParseNumericTolerance(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    int64
		wantErr require.ErrorAssertionFunc
	}{
		{name: "nul terminated", field: "0000644\x00", want: 0o644},
		{name: "space terminated", field: "0000644 ", want: 0o644},
		{name: "leading spaces", field: "    644 \x00", want: 0o644},
		{name: "empty", field: "\x00\x00\x00\x00\x00\x00\x00\x00", want: 0},
		{name: "all spaces", field: "        ", want: 0},
		{name: "not octal", field: "0000899\x00", wantErr: require.Error},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if test.wantErr == nil {
				test.wantErr = require.NoError
			}
			got, err := parseNumeric([]byte(test.field))
			test.wantErr(t, err)
			if err == nil {
				assert.Equal(t, test.want, got)
			}
		})
	}
}

func TestEncodeHeaderChecksum(t *testing.T) {
	b, err := encodeHeader(&header{
		name:     "data/heneryIV.txt",
		mode:     0o755,
		uid:      1000,
		gid:      1000,
		size:     2,
		mtime:    1360125720,
		typeflag: typeReg,
		uname:    "user",
		gname:    "group",
	})
	require.NoError(t, err)

	field := b[chksumOff:chksumEnd]
	assert.Equal(t, byte(0), field[6])
	assert.Equal(t, byte(' '), field[7])
	stored, err := parseNumeric(field)
	require.NoError(t, err)
	unsigned, _ := b.checksum()
	assert.Equal(t, unsigned, stored)

	assert.Equal(t, magicGNU, string(b[magicOff:magicOff+6]))
	assert.Equal(t, versionGNU, string(b[versionOff:versionOff+2]))
}

func TestDecodeHeaderChecksum(t *testing.T) {
	b, err := encodeHeader(&header{name: "a", mode: 0o644, typeflag: typeReg})
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		hdr, err := decodeHeader(b)
		require.NoError(t, err)
		assert.Equal(t, "a", hdr.name)
	})

	t.Run("corrupt", func(t *testing.T) {
		bad := *b
		bad[0] = 'b'
		_, err := decodeHeader(&bad)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("signed", func(t *testing.T) {
		hi := *b
		hi[nameOff+1] = 0xe9
		for i := chksumOff; i < chksumEnd; i++ {
			hi[i] = ' '
		}
		_, signed := hi.checksum()
		require.NoError(t, formatNumeric(hi[chksumOff:chksumOff+7], signed))
		hi[chksumEnd-1] = ' '
		hdr, err := decodeHeader(&hi)
		require.NoError(t, err)
		assert.Equal(t, "a\xe9", hdr.name)
	})
}

func TestEncodeHeaderOwnerTooLong(t *testing.T) {
	_, err := encodeHeader(&header{name: "a", uname: "a-user-name-that-is-much-too-long-for-tar"})
	assert.ErrorIs(t, err, ErrFieldTooLong)
}

func TestHeaderStatSizes(t *testing.T) {
	for _, flag := range []byte{typeDir, typeSymlink, typeLink} {
		hdr := &header{name: "x", typeflag: flag, size: 99, linkname: "y"}
		st := hdr.stat()
		assert.Zero(t, st.Size, "typeflag %c", flag)
		assert.False(t, hdr.hasPayload())
	}
	hdr := &header{name: "x", typeflag: typeRegA, size: 99, linkname: "y"}
	st := hdr.stat()
	assert.Equal(t, TypeFile, st.Type)
	assert.Equal(t, int64(99), st.Size)
	assert.Empty(t, st.Linkname)
}

func TestHeaderRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := &header{
			name:     rapid.StringMatching(`[a-zA-Z0-9_./-]{1,100}`).Draw(t, "name"),
			mode:     rapid.Int64Range(0, 0o7777).Draw(t, "mode"),
			uid:      rapid.Int64Range(0, 1<<40).Draw(t, "uid"),
			gid:      rapid.Int64Range(0, 1<<40).Draw(t, "gid"),
			size:     rapid.Int64Range(0, 1<<45).Draw(t, "size"),
			mtime:    rapid.Int64Range(-1<<40, 1<<40).Draw(t, "mtime"),
			typeflag: rapid.SampledFrom([]byte{typeReg, typeDir, typeSymlink, typeLink}).Draw(t, "typeflag"),
			linkname: rapid.StringMatching(`[a-z./]{0,100}`).Draw(t, "linkname"),
			uname:    rapid.StringMatching(`[a-z]{0,32}`).Draw(t, "uname"),
			gname:    rapid.StringMatching(`[a-z]{0,32}`).Draw(t, "gname"),
		}
		b, err := encodeHeader(in)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		out, err := decodeHeader(b)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if *in != *out {
			t.Fatalf("round trip: %+v != %+v", in, out)
		}
	})
}
