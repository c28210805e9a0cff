package util

import (
	"os"

	"github.com/spf13/afero"
)

// CreateFile creates filename for reading and writing. It fails if the file already exists.
func CreateFile(fs afero.Fs, filename string) (afero.File, error) {
	return fs.OpenFile(filename, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0640)
}
