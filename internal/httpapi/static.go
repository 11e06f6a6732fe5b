package httpapi

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
)

// Static serves files under dir and falls back to the default document for
// any path that does not name a regular file.
func Static(dir, index string) http.HandlerFunc {
	root := http.Dir(dir)
	return func(w http.ResponseWriter, r *http.Request) {
		name := path.Clean("/" + r.URL.Path)
		f, err := root.Open(name)
		if err == nil {
			info, statErr := f.Stat()
			f.Close()
			if statErr == nil && info.Mode().IsRegular() {
				http.ServeFile(w, r, filepath.Join(dir, filepath.FromSlash(name)))
				return
			}
		} else if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) {
			http.Error(w, "failed to read asset", http.StatusInternalServerError)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, index))
	}
}
