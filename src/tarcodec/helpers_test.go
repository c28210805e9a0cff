package tarcodec

import (
	"archive/tar"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	heneryIV = `KING HENRY IV:
So shaken as we are, so wan with care,
Find we a time for frighted peace to pant,
And breathe short-winded accents of new broils
To be commenced in strands afar remote.
`
	westmoreland = `WESTMORELAND:
My liege, this haste was hot in question,
And many limits of the charge set down
But yesternight: when all athwart there came
A post from Wales loaden with heavy news;
`
)

var fixtureTime = time.Unix(1360125720, 0)

// gnuFixture builds the three entry GNU archive used across the read tests:
// two text files followed by a symlink.
func gnuFixture(t *testing.T) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := tar.NewWriter(buf)
	files := []struct {
		name, body string
	}{
		{"data/heneryIV.txt", heneryIV},
		{"data/heneryIV-westmoreland.txt", westmoreland},
	}
	for _, f := range files {
		require.NoError(t, w.WriteHeader(&tar.Header{
			Typeflag: tar.TypeReg,
			Name:     f.name,
			Mode:     0o644,
			Uid:      1000,
			Gid:      1000,
			Uname:    "user",
			Gname:    "group",
			Size:     int64(len(f.body)),
			ModTime:  fixtureTime,
			Format:   tar.FormatGNU,
		}))
		_, err := io.WriteString(w, f.body)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteHeader(&tar.Header{
		Typeflag: tar.TypeSymlink,
		Name:     "data/henryIV.txt",
		Linkname: "heneryIV.txt",
		Mode:     0o777,
		ModTime:  fixtureTime,
		Format:   tar.FormatGNU,
	}))
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// stdlibEntry is what archive/tar sees in a stream.
type stdlibEntry struct {
	Name     string
	Typeflag byte
	Linkname string
	Mode     int64
	Uid      int
	Gid      int
	Uname    string
	Gname    string
	ModTime  int64
	Body     string
}

func readWithStdlib(t *testing.T, raw []byte) []stdlibEntry {
	t.Helper()
	r := tar.NewReader(bytes.NewReader(raw))
	var out []stdlibEntry
	for {
		hdr, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		body := new(strings.Builder)
		_, err = io.Copy(body, r)
		require.NoError(t, err)
		out = append(out, stdlibEntry{
			Name:     hdr.Name,
			Typeflag: hdr.Typeflag,
			Linkname: hdr.Linkname,
			Mode:     hdr.Mode,
			Uid:      hdr.Uid,
			Gid:      hdr.Gid,
			Uname:    hdr.Uname,
			Gname:    hdr.Gname,
			ModTime:  hdr.ModTime.Unix(),
			Body:     body.String(),
		})
	}
}

func entryBody(t *testing.T, a *Archive, name string) string {
	t.Helper()
	e, ok := a.Get(name)
	require.True(t, ok, "entry %q not found", name)
	b, err := e.Bytes()
	require.NoError(t, err)
	return string(b)
}

// failingReader fails the test if anyone reads from it.
type failingReader struct {
	t *testing.T
}

func (r failingReader) Read([]byte) (int, error) {
	r.t.Fatal("unexpected read")
	return 0, io.ErrUnexpectedEOF
}

// onlyReader hides every method but Read, so the size of the content is unknown.
type onlyReader struct {
	r io.Reader
}

func (r onlyReader) Read(p []byte) (int, error) { return r.r.Read(p) }

func headerBytes(t *testing.T, h *header) []byte {
	t.Helper()
	b, err := encodeHeader(h)
	require.NoError(t, err)
	return b[:]
}
