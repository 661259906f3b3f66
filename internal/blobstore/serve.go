package blobstore

import (
	"net/http"
	"os"
)

// Handler serves stored files by name. Directories are reported as missing so
// the store can never be enumerated over HTTP.
func (d *LocalDir) Handler() http.Handler {
	return http.FileServer(filesOnly{fs: http.Dir(d.root)})
}

type filesOnly struct {
	fs http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
