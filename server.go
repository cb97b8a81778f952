package screenie

import (
	"crypto/md5"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/szxp/screenie/event"
	"github.com/szxp/screenie/sizefit"
)

var errSourceNotFound = errors.New("source not found")

// DefaultMaxThumbnailSize bounds thumbnails requested with query overrides
// when ServerConfig.MaxThumbnailSize is unset.
var DefaultMaxThumbnailSize = sizefit.SizeOf(4096, 4096)

type ServerConfig struct {
	SourceDir    string
	ThumbnailDir string
	AllowedExts  []string

	// Thumbnail is the default fitting of /thumbnail/ requests.
	Thumbnail sizefit.Config

	// MaxThumbnailSize bounds the target of a request overriding Thumbnail.
	MaxThumbnailSize sizefit.Size
	Resizer   ImageResizer
	Logger    hclog.Logger
}

// Server stores source images and serves thumbnails fitted from them.
type Server struct {
	conf    *ServerConfig
	handler http.Handler

	configMutex sync.RWMutex
	thumbnail   sizefit.Config

	thumbnailMutex    sync.Mutex
	pendingThumbnails map[string][]chan error
}

func NewServer(conf ServerConfig) (*Server, error) {
	if conf.Logger == nil {
		conf.Logger = hclog.NewNullLogger()
	}
	if conf.Resizer == nil {
		return nil, fmt.Errorf("no image resizer")
	}
	if err := conf.Thumbnail.Validate(); err != nil {
		return nil, err
	}
	if conf.MaxThumbnailSize == (sizefit.Size{}) {
		conf.MaxThumbnailSize = DefaultMaxThumbnailSize
	}
	if !conf.MaxThumbnailSize.IsValid() {
		return nil, fmt.Errorf("invalid max thumbnail size %v", conf.MaxThumbnailSize)
	}

	s := &Server{
		conf:              &conf,
		thumbnail:         conf.Thumbnail,
		pendingThumbnails: make(map[string][]chan error),
	}

	mux := http.NewServeMux()
	mux.Handle("/source/", s.sourceHandler())
	mux.Handle("/thumbnail/", s.thumbnailHandler())

	h := http.Handler(mux)
	h = s.slashRemover(h)
	s.handler = h
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ThumbnailConfig returns the current default thumbnail fitting.
func (s *Server) ThumbnailConfig() sizefit.Config {
	s.configMutex.RLock()
	defer s.configMutex.RUnlock()
	return s.thumbnail
}

// SetThumbnailConfig replaces the default thumbnail fitting. Requests in
// flight keep the config they started with.
func (s *Server) SetThumbnailConfig(cfg sizefit.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.configMutex.Lock()
	s.thumbnail = cfg
	s.configMutex.Unlock()
	s.conf.Logger.Info("Thumbnail config changed", "variant", cfg.Key())
	return nil
}

// Listen applies thumbnail config changes published on b.
func (s *Server) Listen(b *event.Broker) error {
	return b.Subscribe(event.ThumbnailConfigChanged, func(cfg sizefit.Config) {
		if err := s.SetThumbnailConfig(cfg); err != nil {
			s.conf.Logger.Error("Rejected thumbnail config", "error", err)
		}
	})
}

func (s *Server) thumbnailHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" || r.Method == "HEAD" {
			s.serveThumbnail(w, r)
			return
		}

		http.Error(w, "Error", http.StatusBadRequest)
	})
}

func (s *Server) serveThumbnail(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(removePrefix(r.URL.Path, "/thumbnail/"))
	err := s.validateKey(key)
	if err != nil {
		s.conf.Logger.Error("Invalid key", "error", err)
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}

	cfg, err := parseThumbnailQuery(s.ThumbnailConfig(), r.URL.Query(), s.conf.MaxThumbnailSize)
	if err != nil {
		s.conf.Logger.Error("Invalid thumbnail query", "key", key, "error", err)
		http.Error(w, "Invalid thumbnail parameters", http.StatusBadRequest)
		return
	}

	f, err := s.openThumbnail(key, cfg)
	switch {
	case errors.Is(err, errSourceNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		return
	case errors.Is(err, sizefit.ErrInvalidInput):
		s.conf.Logger.Warn("Unfittable source", "key", key, "error", err)
		http.Error(w, "Unfittable image", http.StatusUnprocessableEntity)
		return
	case err != nil:
		s.conf.Logger.Error("Failed to open thumbnail", "key", key, "variant", cfg.Key(), "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	s.serveFile(w, r, f)
}

// parseThumbnailQuery overrides fields of base with the w, h, mode, orient
// and enlarge query parameters. An overridden config must have both target
// axes between 1 and max, so no request can ask for an unbounded output.
func parseThumbnailQuery(base sizefit.Config, q url.Values, max sizefit.Size) (sizefit.Config, error) {
	cfg := base
	var err error
	if v := q.Get("w"); v != "" {
		if cfg.Target.Width, err = strconv.Atoi(v); err != nil {
			return base, fmt.Errorf("invalid width %q: %w", v, err)
		}
	}
	if v := q.Get("h"); v != "" {
		if cfg.Target.Height, err = strconv.Atoi(v); err != nil {
			return base, fmt.Errorf("invalid height %q: %w", v, err)
		}
	}
	if v := q.Get("mode"); v != "" {
		if cfg.Mode, err = sizefit.ParseFitMode(v); err != nil {
			return base, err
		}
	}
	for name, option := range map[string]sizefit.FitOption{
		"orient":  sizefit.RespectOrientation,
		"enlarge": sizefit.Enlarge,
	} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		enable, err := strconv.ParseBool(v)
		if err != nil {
			return base, fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if cfg.Options, err = cfg.Options.With(option, enable); err != nil {
			return base, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	if cfg == base {
		return base, nil
	}
	t := cfg.Target
	if !t.IsValid() || t.Width > max.Width || t.Height > max.Height {
		return base, fmt.Errorf("thumbnail size %v outside 1x1 to %v", t, max)
	}
	return cfg, nil
}

func (s *Server) thumbnailPath(key string, cfg sizefit.Config) string {
	return filepath.Join(s.conf.ThumbnailDir, cfg.Key(), keyFilepath(key))
}

func (s *Server) sourcePath(key string) string {
	return filepath.Join(s.conf.SourceDir, keyFilepath(key))
}

func (s *Server) openThumbnail(key string, cfg sizefit.Config) (*os.File, error) {
	path := s.thumbnailPath(key, cfg)
	s.conf.Logger.Debug("Open", "path", path)
	f, err := os.Open(path)
	if (err != nil && !os.IsNotExist(err)) || err == nil {
		return f, err
	}

	s.thumbnailMutex.Lock()
	ch := make(chan error, 1)
	s.pendingThumbnails[path] = append(s.pendingThumbnails[path], ch)
	if len(s.pendingThumbnails[path]) == 1 {
		go s.createThumbnail(key, path, cfg)
	}
	s.thumbnailMutex.Unlock()

	err = <-ch
	if err != nil {
		return nil, err
	}
	s.conf.Logger.Debug("Open", "path", path)
	return os.Open(path)
}

func (s *Server) createThumbnail(key, path string, cfg sizefit.Config) {
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		s.sendThumbnailResult(path, err)
		return
	}
	if err == nil {
		s.sendThumbnailResult(path, nil)
		return
	}

	src := s.sourcePath(key)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		s.sendThumbnailResult(path, fmt.Errorf("%w: %s", errSourceNotFound, key))
		return
	}

	err = os.MkdirAll(filepath.Dir(path), 0754)
	if err != nil {
		s.sendThumbnailResult(path, err)
		return
	}

	// resize next to the final path so a reader never sees a partial file
	tmp := filepath.Join(filepath.Dir(path), ".tmp-"+filepath.Base(path))
	res, err := s.conf.Resizer.Resize(tmp, src, cfg)
	if err != nil {
		os.Remove(tmp)
		s.sendThumbnailResult(path, err)
		return
	}
	s.conf.Logger.Debug("Thumbnail created",
		"key", key,
		"variant", cfg.Key(),
		"size", res.Visible,
		"changed", res.Changed,
		"clipped", res.IsClipped(),
	)
	s.sendThumbnailResult(path, os.Rename(tmp, path))
}

func (s *Server) sendThumbnailResult(path string, err error) {
	s.thumbnailMutex.Lock()
	defer s.thumbnailMutex.Unlock()

	for _, ch := range s.pendingThumbnails[path] {
		if err != nil {
			ch <- err
		}
		close(ch)
	}
	delete(s.pendingThumbnails, path)
}

func (s *Server) sourceHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" || r.Method == "HEAD" {
			s.serveSource(w, r)
			return
		}
		if r.Method == "PUT" {
			s.saveSource(w, r)
			return
		}

		http.Error(w, "Error", http.StatusBadRequest)
	})
}

func removePrefix(url, prefix string) string {
	return strings.Replace(url, prefix, "", 1)
}

func (s *Server) serveSource(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(removePrefix(r.URL.Path, "/source/"))
	err := s.validateKey(key)
	if err != nil {
		s.conf.Logger.Error("Invalid key", "error", err)
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}

	p := s.sourcePath(key)
	s.conf.Logger.Debug("Open", "path", p)
	f, err := os.Open(p)
	if err != nil && !os.IsNotExist(err) {
		s.conf.Logger.Error("Failed to open file", "path", p, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}
	if os.IsNotExist(err) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	s.serveFile(w, r, f)
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request, f *os.File) {
	fi, err := f.Stat()
	if err != nil {
		s.conf.Logger.Error("Failed to get file info", "path", f.Name(), "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	if r.Method == "HEAD" {
		w.Header().Set("content-type", mime.TypeByExtension(filepath.Ext(fi.Name())))
		w.Header().Set("content-length", strconv.FormatInt(fi.Size(), 10))
		w.Header().Set("last-modified", fi.ModTime().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		return
	}

	s.conf.Logger.Debug("Serve", "path", f.Name())
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), f)
}

func (s *Server) saveSource(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(removePrefix(r.URL.Path, "/source/"))
	err := s.validateKey(key)
	if err != nil {
		s.conf.Logger.Error("Invalid key", "error", err)
		http.Error(w, "Invalid key", http.StatusBadRequest)
		return
	}

	p := s.sourcePath(key)
	dir := filepath.Dir(p)
	err = os.MkdirAll(dir, 0754)
	if err != nil {
		s.conf.Logger.Error("Failed to create dir", "dir", dir, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	_, err = s.writeFileMD5(p, r.Body)
	if os.IsExist(err) {
		http.Error(w, "Already exists", http.StatusConflict)
		return
	}
	if err != nil {
		s.conf.Logger.Error("Failed to write file", "path", p, "error", err)
		http.Error(w, "Error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func keyFilepath(key string) string {
	return filepath.FromSlash(key)
}

var keyRE = regexp.MustCompile(`^[a-zA-Z0-9/._-]+$`)

func (s *Server) validateKey(key string) error {
	if !keyRE.MatchString(key) {
		return fmt.Errorf("invalid key: %v", key)
	}

	if path.Clean(key) != key ||
		key == "." ||
		key[0] == '/' ||
		strings.Contains(key, "..") {
		return fmt.Errorf("invalid key: %v", key)
	}

	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		return fmt.Errorf("no ext: %v", key)
	}

	for _, e := range s.conf.AllowedExts {
		if ext == e {
			return nil
		}
	}
	return fmt.Errorf("invalid ext: %v", key)
}

func (s *Server) writeFileMD5(path string, r io.Reader) (int64, error) {
	s.conf.Logger.Debug("Write file", "path", path)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0754)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := md5.New()
	n, err := io.Copy(io.MultiWriter(f, h), r)
	if err != nil {
		return n, err
	}

	sum := fmt.Sprintf("%x", h.Sum(nil))
	pathMD5 := path + ".md5"
	s.conf.Logger.Debug("Write MD5 file", "path", pathMD5, "md5", sum)
	err = os.WriteFile(pathMD5, []byte(sum), 0754)
	return n, err
}

func (s *Server) slashRemover(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prefer non-trailing slash URLs over trailing slash URLs.
		p := r.URL.Path
		if p != "/" && p[len(p)-1] == '/' {
			p = strings.TrimRight(p, "/")
			http.Redirect(w, r, p, http.StatusMovedPermanently)
			return
		}
		h.ServeHTTP(w, r)
	})
}
