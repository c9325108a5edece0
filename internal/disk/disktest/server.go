// Package disktest runs an in-process fake of the Yandex Disk REST API for
// tests. It keeps a tree of folders and files in memory, issues transfer
// links served by the same listener, checks the OAuth header, and can hide
// recent mutations from metadata reads to emulate eventual consistency.
package disktest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// APIPrefix is where the API is mounted on the fake's listener.
const APIPrefix = "/v1/disk"

const (
	defaultToken      = "disktest-token"
	defaultTotalSpace = 10 << 30
	defaultListLimit  = 20
	maxFileSize       = 1 << 30
)

// Option configures a Server.
type Option func(*Server)

// WithToken sets the OAuth token the fake accepts.
func WithToken(token string) Option {
	return func(s *Server) { s.token = token }
}

// WithVisibilityLag makes the next n metadata reads of a mutated path
// observe the state from before the mutation.
func WithVisibilityLag(n int) Option {
	return func(s *Server) { s.lag = n }
}

// WithTotalSpace sets the reported disk quota.
func WithTotalSpace(bytes int64) Option {
	return func(s *Server) { s.totalSpace = bytes }
}

// transfer is an issued upload or download link.
type transfer struct {
	method string
	path   string
}

// staleView is what lagging metadata reads of a path still observe.
type staleView struct {
	prev  *node // nil when the path did not exist
	reads int
}

// Server is a running fake provider.
type Server struct {
	srv *httptest.Server

	mu         sync.Mutex
	token      string
	lag        int
	totalSpace int64
	trashSize  int64
	nodes      map[string]*node
	stale      map[string]*staleView
	transfers  map[string]transfer
	now        func() time.Time
}

// New starts a fake provider that is shut down when t finishes.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()

	s := &Server{
		token:      defaultToken,
		totalSpace: defaultTotalSpace,
		stale:      make(map[string]*staleView),
		transfers:  make(map[string]transfer),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}

	for _, opt := range opts {
		opt(s)
	}

	created := s.now()
	s.nodes = map[string]*node{
		root: {typ: typeDir, path: root, created: created, modified: created},
	}

	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)

	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Route(APIPrefix, func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/", s.handleDiskInfo)
		r.Get("/resources", s.handleGetResource)
		r.Put("/resources", s.handleCreateFolder)
		r.Delete("/resources", s.handleDelete)
		r.Post("/resources/move", s.handleMove)
		r.Post("/resources/copy", s.handleCopy)
		r.Get("/resources/upload", s.handleUploadLink)
		r.Get("/resources/download", s.handleDownloadLink)
		r.Put("/resources/publish", s.handlePublish(true))
		r.Put("/resources/unpublish", s.handlePublish(false))
	})

	// Transfer links carry their own grant and skip the auth check.
	r.Put("/transfer/{id}", s.handleReceive)
	r.Get("/transfer/{id}", s.handleSend)

	return r
}

// URL returns the API base URL to hand to a client.
func (s *Server) URL() string { return s.srv.URL + APIPrefix }

// Token returns the OAuth token the fake accepts.
func (s *Server) Token() string { return s.token }

// HTTPClient returns an HTTP client wired to the fake's listener.
func (s *Server) HTTPClient() *http.Client { return s.srv.Client() }

// SetVisibilityLag changes the lag for subsequent mutations.
func (s *Server) SetVisibilityLag(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lag = n
}

// SeedFolder creates a folder (and any missing parents) without going
// through the API and without visibility lag.
func (s *Server) SeedFolder(p string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mkdirAllLocked(normalize(p))
}

// SeedFile stores a file (creating parents) without going through the API.
func (s *Server) SeedFile(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p = normalize(p)
	s.mkdirAllLocked(parentOf(p))
	s.putFileLocked(p, data)
}

// Exists reports the true current state of p, ignoring visibility lag.
func (s *Server) Exists(p string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.nodes[normalize(p)]

	return ok
}

// Content returns the stored bytes of a file.
func (s *Server) Content(p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[normalize(p)]
	if !ok || n.typ != typeFile {
		return nil, false
	}

	return append([]byte(nil), n.data...), true
}

// ExpireTransfers invalidates every issued transfer link.
func (s *Server) ExpireTransfers() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.transfers)
}

// --- middleware & helpers ---

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "OAuth "+s.token {
			writeError(w, http.StatusUnauthorized, "UnauthorizedError", "Unauthorized")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck,gosec // client gone
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorDoc{Message: msg, Description: msg, Error: code})
}

func queryBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))

	return err == nil && v
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || v < 0 {
		return def
	}

	return v
}

func (s *Server) resourceLink(p string) linkDoc {
	return linkDoc{
		Href:   s.URL() + "/resources?path=" + p,
		Method: http.MethodGet,
	}
}

// markLocked records prev as the view lagging readers of p still see.
func (s *Server) markLocked(p string, prev *node) {
	if s.lag <= 0 {
		return
	}

	if prev != nil {
		prev = prev.clone()
	}

	s.stale[p] = &staleView{prev: prev, reads: s.lag}
}

func (s *Server) mkdirAllLocked(p string) {
	if p == "" {
		return
	}

	if _, ok := s.nodes[p]; ok {
		return
	}

	s.mkdirAllLocked(parentOf(p))

	now := s.now()
	s.nodes[p] = &node{typ: typeDir, path: p, created: now, modified: now}
}

func (s *Server) putFileLocked(p string, data []byte) {
	now := s.now()
	created := now

	if old, ok := s.nodes[p]; ok {
		created = old.created
	}

	s.nodes[p] = &node{
		typ:      typeFile,
		path:     p,
		created:  created,
		modified: now,
		data:     append([]byte(nil), data...),
		mimeType: detectMIME(p, data),
	}
}

// checkParentLocked returns false and writes 409 when p's parent is not a folder.
func (s *Server) checkParentLocked(w http.ResponseWriter, p string) bool {
	parent, ok := s.nodes[parentOf(p)]
	if !ok || parent.typ != typeDir {
		writeError(w, http.StatusConflict, "DiskPathDoesntExistsError",
			fmt.Sprintf("Указанного пути %q не существует.", parentOf(p)))

		return false
	}

	return true
}

// --- handlers ---

func (s *Server) handleDiskInfo(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	used := s.usedLocked()
	trash := s.trashSize
	total := s.totalSpace
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"total_space":   total,
		"used_space":    used,
		"trash_size":    trash,
		"max_file_size": maxFileSize,
		"system_folders": map[string]string{
			"applications": "disk:/Applications",
			"downloads":    "disk:/Downloads/",
		},
		"user": map[string]string{"login": "disktest", "display_name": "Disk Test"},
	})
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	p := normalize(r.URL.Query().Get("path"))

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[p]

	if view := s.stale[p]; view != nil {
		view.reads--
		if view.reads <= 0 {
			delete(s.stale, p)
		}

		n, ok = view.prev, view.prev != nil
	}

	if !ok {
		writeError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")

		return
	}

	doc := s.toDoc(n)

	if n.typ == typeDir {
		limit := queryInt(r, "limit", defaultListLimit)
		offset := queryInt(r, "offset", 0)
		children := s.childrenLocked(p)

		emb := &embeddedDoc{
			Items:  []resourceDoc{},
			Total:  len(children),
			Limit:  limit,
			Offset: offset,
			Path:   p,
			Sort:   "name",
		}

		for i := offset; i < len(children) && i < offset+limit; i++ {
			emb.Items = append(emb.Items, s.toDoc(children[i]))
		}

		doc.Embedded = emb
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	p := normalize(r.URL.Query().Get("path"))

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[p]; ok {
		writeError(w, http.StatusConflict, "DiskPathPointsToExistentDirectoryError",
			fmt.Sprintf("По указанному пути %q уже существует папка с таким именем.", p))

		return
	}

	if !s.checkParentLocked(w, p) {
		return
	}

	now := s.now()
	s.nodes[p] = &node{typ: typeDir, path: p, created: now, modified: now}
	s.markLocked(p, nil)

	writeJSON(w, http.StatusCreated, s.resourceLink(p))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	p := normalize(r.URL.Query().Get("path"))

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[p]
	if !ok || p == root {
		writeError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")

		return
	}

	prev := n.clone()
	freed := s.removeLocked(p)

	if !queryBool(r, "permanently") {
		s.trashSize += freed
	}

	s.markLocked(p, prev)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.relocate(w, r, true)
}

func (s *Server) handleCopy(w http.ResponseWriter, r *http.Request) {
	s.relocate(w, r, false)
}

func (s *Server) relocate(w http.ResponseWriter, r *http.Request, move bool) {
	from := normalize(r.URL.Query().Get("from"))
	to := normalize(r.URL.Query().Get("path"))
	overwrite := queryBool(r, "overwrite")

	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.nodes[from]
	if !ok || from == root {
		writeError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")

		return
	}

	if isWithin(to, from) {
		writeError(w, http.StatusConflict, "DiskResourceAlreadyExistsError",
			"Нельзя переместить или скопировать ресурс в самого себя.")

		return
	}

	dst, exists := s.nodes[to]
	if exists && !overwrite {
		writeError(w, http.StatusConflict, "DiskResourceAlreadyExistsError",
			fmt.Sprintf("Ресурс %q уже существует.", to))

		return
	}

	if !s.checkParentLocked(w, to) {
		return
	}

	var prevDst *node
	if exists {
		prevDst = dst.clone()
		s.removeLocked(to)
	}

	prevSrc := src.clone()
	s.copyLocked(from, to, s.now())

	if move {
		s.removeLocked(from)
		s.markLocked(from, prevSrc)
	}

	s.markLocked(to, prevDst)

	writeJSON(w, http.StatusCreated, s.resourceLink(to))
}

func (s *Server) handleUploadLink(w http.ResponseWriter, r *http.Request) {
	p := normalize(r.URL.Query().Get("path"))
	overwrite := queryBool(r, "overwrite")

	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.nodes[p]; ok && (!overwrite || n.typ == typeDir) {
		writeError(w, http.StatusConflict, "DiskResourceAlreadyExistsError",
			fmt.Sprintf("Ресурс %q уже существует.", p))

		return
	}

	if !s.checkParentLocked(w, p) {
		return
	}

	writeJSON(w, http.StatusOK, s.issueLocked(http.MethodPut, p))
}

func (s *Server) handleDownloadLink(w http.ResponseWriter, r *http.Request) {
	p := normalize(r.URL.Query().Get("path"))

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[p]
	if !ok {
		writeError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")

		return
	}

	if n.typ != typeFile {
		writeError(w, http.StatusNotImplemented, "NotImplementedError", "folder download is not emulated")

		return
	}

	writeJSON(w, http.StatusOK, s.issueLocked(http.MethodGet, p))
}

func (s *Server) issueLocked(method, p string) linkDoc {
	id := uuid.NewString()
	s.transfers[id] = transfer{method: method, path: p}

	return linkDoc{
		Href:        s.srv.URL + "/transfer/" + id,
		Method:      method,
		OperationID: id,
	}
}

func (s *Server) handleReceive(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequestError", err.Error())

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := chi.URLParam(r, "id")

	tr, ok := s.transfers[id]
	if !ok || tr.method != http.MethodPut {
		writeError(w, http.StatusNotFound, "UploadNotFoundError", "upload link expired")

		return
	}

	delete(s.transfers, id)

	prev := s.nodes[tr.path]
	if prev != nil {
		prev = prev.clone()
	}

	s.putFileLocked(tr.path, data)
	s.markLocked(tr.path, prev)

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tr, ok := s.transfers[chi.URLParam(r, "id")]

	var n *node
	if ok && tr.method == http.MethodGet {
		n = s.nodes[tr.path]
	}

	if n != nil {
		n = n.clone()
	}
	s.mu.Unlock()

	if n == nil {
		http.Error(w, "link expired", http.StatusNotFound)

		return
	}

	w.Header().Set("Content-Type", n.mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(n.data)))
	w.WriteHeader(http.StatusOK)
	w.Write(n.data) //nolint:errcheck,gosec // client gone
}

func (s *Server) handlePublish(publish bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := normalize(r.URL.Query().Get("path"))

		s.mu.Lock()
		defer s.mu.Unlock()

		n, ok := s.nodes[p]
		if !ok {
			writeError(w, http.StatusNotFound, "DiskNotFoundError", "Не удалось найти запрошенный ресурс.")

			return
		}

		if publish && n.publicKey == "" {
			n.publicKey = uuid.NewString()
		} else if !publish {
			n.publicKey = ""
		}

		writeJSON(w, http.StatusOK, s.resourceLink(p))
	}
}
