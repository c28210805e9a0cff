// Package tarserv serves directories as tar streams over HTTP.
package tarserv

import (
	"context"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/spf13/afero"

	"github.com/aurora-is-near/tarcodec/src/log"
	"github.com/aurora-is-near/tarcodec/src/tarcodec"
	"github.com/aurora-is-near/tarcodec/src/walk"
)

// TarHandler is a http.Handler that serves a sub-directory of SourceDir as a tar stream with
// relative paths and numeric owner IDs. When AppendFileName is set, a file of that name holding the
// served directory's path is added at the end.
type TarHandler struct {
	SourceDir      string
	AppendFileName string
	Exclude        []string
	Fs             afero.Fs // Defaults to the OS filesystem.
}

func (handler *TarHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler.Handler(w, r)
}

func (handler *TarHandler) fs() afero.Fs {
	if handler.Fs == nil {
		return afero.NewOsFs()
	}
	return handler.Fs
}

func (handler *TarHandler) archive(dir string) (*tarcodec.Archive, error) {
	a := tarcodec.New(tarcodec.OptFs(handler.fs()))
	if err := walk.AddTree(a, dir, walk.OptExclude(handler.Exclude...)); err != nil {
		if a.Count() == 0 {
			return nil, err
		}
		log.WithFields("dir", dir, "error", err).Warn("serving incomplete tree")
	}
	if handler.AppendFileName != "" {
		a.AddBytes(path.Join(dir, handler.AppendFileName), []byte(dir),
			tarcodec.WithMode(0o600),
			tarcodec.WithModTime(time.Now()))
	}
	return a, nil
}

func (handler *TarHandler) Handler(w http.ResponseWriter, r *http.Request) {
	if len(r.URL.Path) == 0 {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	dir := path.Join(handler.SourceDir, path.Clean("/"+r.URL.Path))
	stat, err := handler.fs().Stat(dir)
	if err != nil || !stat.IsDir() {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	a, err := handler.archive(dir)
	if err != nil {
		log.Errorf("Error listing %s: %s", dir, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	opts := []tarcodec.Option{
		tarcodec.OptRelative(dir),
		tarcodec.OptNumericIDs,
		tarcodec.OptGID(0),
		tarcodec.OptUID(0),
	}
	w.Header().Add("Content-Type", "application/tar")
	w.Header().Add("Content-Disposition", "inline; filename=\"data.tar\"")
	if size, err := a.TarSize(opts...); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	if r.Method == http.MethodHead {
		return
	}
	n, err := a.Write(w, opts...)
	if err != nil {
		log.Errorf("Error creating tar: %s", err)
		return
	}
	log.WithFields("dir", dir, "entries", a.Count(), "bytes", n).Info("tar served")
}

// Serve listens on address and serves handler below prefix until ctx is done.
func Serve(ctx context.Context, address, prefix string, handler *TarHandler) error {
	mux := http.NewServeMux()
	mux.Handle(prefix, http.StripPrefix(prefix, handler))
	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
