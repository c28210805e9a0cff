package tarcodec

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveAddFromFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("data", 0o755))
	require.NoError(t, afero.WriteFile(fs, "data/heneryIV.txt", []byte(heneryIV), 0o600))
	require.NoError(t, afero.WriteFile(fs, "data/heneryIV-westmoreland.txt", []byte(westmoreland), 0o644))

	a := New(OptFs(fs))
	require.NoError(t, a.Add("data/", fixtureStat()...))
	require.NoError(t, a.Add("data/heneryIV-westmoreland.txt", fixtureStat()...))
	require.NoError(t, a.Add("data/heneryIV.txt"))
	require.NoError(t, a.Add("tmp_dir/"))

	assert.Equal(t, 4, a.Count())
	assert.Equal(t, []string{"data/", "data/heneryIV-westmoreland.txt", "data/heneryIV.txt", "tmp_dir/"}, a.Names())

	dir, _ := a.Get("data/")
	assert.Equal(t, TypeDir, dir.Stat.Type)
	assert.Equal(t, int64(0o755), dir.Stat.Mode)
	assert.Equal(t, 1000, dir.Stat.UID)

	plain, _ := a.Get("data/heneryIV.txt")
	assert.Equal(t, TypeFile, plain.Stat.Type)
	assert.Equal(t, int64(0o600), plain.Stat.Mode)
	assert.Equal(t, int64(len(heneryIV)), plain.Stat.Size)
	assert.Equal(t, heneryIV, entryBody(t, a, "data/heneryIV.txt"))

	missing, _ := a.Get("tmp_dir/")
	assert.Equal(t, TypeDir, missing.Stat.Type)
	assert.Equal(t, int64(0o755), missing.Stat.Mode)
	assert.Zero(t, missing.Stat.ModTime.Unix())

	buf := new(bytes.Buffer)
	_, err := a.Write(buf)
	require.NoError(t, err)
	got := readWithStdlib(t, buf.Bytes())
	require.Len(t, got, 4)
	assert.Equal(t, westmoreland, got[1].Body)
	assert.Equal(t, int64(0o755), got[1].Mode)
}

func TestArchiveAddSymlink(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "heneryIV.txt"), []byte(heneryIV), 0o644))
	require.NoError(t, os.Symlink("heneryIV.txt", filepath.Join(dir, "henryIV.txt")))

	a := New()
	require.NoError(t, a.Add(filepath.Join(dir, "henryIV.txt")))
	e := a.Entries()[0]
	assert.Equal(t, TypeSymlink, e.Stat.Type)
	assert.Equal(t, "heneryIV.txt", e.Stat.Linkname)
	assert.Zero(t, e.Stat.Size)
	assert.Nil(t, e.Payload)
}

func TestArchiveDuplicateNames(t *testing.T) {
	a := New(OptFs(afero.NewMemMapFs()))
	a.AddBytes("same", []byte("first"))
	a.AddBytes("same", []byte("second"))
	assert.Equal(t, 2, a.Count())
	assert.Equal(t, "first", entryBody(t, a, "same"))

	_, ok := a.Get("other")
	assert.False(t, ok)
}

func TestArchiveAddSourceNil(t *testing.T) {
	a := New()
	err := a.AddSource("x", nil)
	assert.ErrorIs(t, err, ErrMissingSource)
	assert.Zero(t, a.Count())
}

func TestStatOverridesNormalizeSize(t *testing.T) {
	a := New(OptFs(afero.NewMemMapFs()))
	a.AddBytes("d", []byte("ignored"), WithType(TypeDir), WithSize(99))
	e := a.Entries()[0]
	assert.Equal(t, TypeDir, e.Stat.Type)
	assert.Zero(t, e.Stat.Size)
	assert.Nil(t, e.Payload)
}

func TestFileTypeString(t *testing.T) {
	assert.Equal(t, "file", TypeFile.String())
	assert.Equal(t, "directory", TypeDir.String())
	assert.Equal(t, "link", TypeSymlink.String())
	assert.Equal(t, "hardlink", TypeHardlink.String())
	assert.Equal(t, "unknown", FileType(42).String())
}

func TestFSStatSpecialBits(t *testing.T) {
	assert.Equal(t, int64(0o4755), modeBits(os.ModeSetuid|0o755))
	assert.Equal(t, int64(0o2755), modeBits(os.ModeSetgid|0o755))
	assert.Equal(t, int64(0o1777), modeBits(os.ModeSticky|0o777))
}

type staticStat Stat

func (s staticStat) Stat(string) (Stat, error) { return Stat(s), nil }

func TestCustomStatProvider(t *testing.T) {
	a := New(OptFs(afero.NewMemMapFs()), OptStatProvider(staticStat{Type: TypeDir, Mode: 0o700}))
	require.NoError(t, a.Add("anything"))
	e := a.Entries()[0]
	assert.Equal(t, TypeDir, e.Stat.Type)
	assert.Equal(t, int64(0o700), e.Stat.Mode)
}
