package util

import (
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	f, err := CreateFile(fs, "/out.tar")
	require.NoError(t, err)
	_, err = f.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	fi, err := fs.Stat("/out.tar")
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), fi.Mode().Perm())

	_, err = CreateFile(fs, "/out.tar")
	assert.True(t, os.IsExist(err), "second create: %v", err)
}
