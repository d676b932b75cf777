package writers

import (
	"errors"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/strutil"
	"os"
	"path/filepath"
)

// FileWriter writes documents under a directory. Reports can include secret keys, so files are only readable by the owner.
type FileWriter struct {
	dest string
}

// NewFileWriter writes under dest, or the working directory when dest is empty.
func NewFileWriter(dest string) *FileWriter {
	if dest == "" {
		dest = "."
	}

	return &FileWriter{
		dest: strutil.EnsureSuffix(dest, string(os.PathSeparator)),
	}
}

func (c FileWriter) Write(files map[string]string) (string, error) {
	for k, v := range files {
		if err := c.write(k, v); err != nil {
			return "", err
		}
	}
	return c.dest, nil
}

func (c FileWriter) write(filename string, contents string) (funcErr error) {
	// create the directory
	if err := os.MkdirAll(filepath.Dir(c.dest+filename), 0700); err != nil {
		return err
	}

	// create the file
	f, err := os.OpenFile(c.dest+filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)

	if err != nil {
		return err
	}

	defer func(f *os.File) {
		err := f.Close()
		if err != nil {
			funcErr = errors.Join(funcErr, err)
		}
	}(f)

	_, err = f.Write([]byte(contents))

	return err
}
