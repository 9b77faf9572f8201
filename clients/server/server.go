// Package server exposes the renderer over HTTP: export, layout and
// validation endpoints plus an in-memory asset store for uploaded images.
package server

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xob0t/poststencil/pkg/export"
	"github.com/xob0t/poststencil/pkg/imageload"
	"github.com/xob0t/poststencil/pkg/state"
)

// AssetScheme prefixes references to uploaded assets inside a state.
const AssetScheme = "asset:"

// ── Asset Manager ──

type asset struct {
	Name  string
	Data  []byte
	Mime  string
	Added time.Time
}

type assetManager struct {
	mu     sync.RWMutex
	assets map[string]*asset
}

func newAssetManager() *assetManager {
	return &assetManager{assets: make(map[string]*asset)}
}

func (am *assetManager) add(name string, data []byte, mimeType string) string {
	id := randomID()
	am.mu.Lock()
	am.assets[id] = &asset{Name: name, Data: data, Mime: mimeType, Added: time.Now()}
	am.mu.Unlock()
	return id
}

func (am *assetManager) get(id string) (*asset, bool) {
	am.mu.RLock()
	a, ok := am.assets[id]
	am.mu.RUnlock()
	return a, ok
}

type assetInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int    `json:"size"`
	Ref  string `json:"ref"`
	URL  string `json:"url"`
}

func (am *assetManager) list() []assetInfo {
	am.mu.RLock()
	defer am.mu.RUnlock()
	out := make([]assetInfo, 0, len(am.assets))
	for id, a := range am.assets {
		out = append(out, info(id, a))
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := am.assets[out[i].ID], am.assets[out[j].ID]
		if !ai.Added.Equal(aj.Added) {
			return ai.Added.Before(aj.Added)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (am *assetManager) remove(id string) bool {
	am.mu.Lock()
	defer am.mu.Unlock()
	if _, ok := am.assets[id]; !ok {
		return false
	}
	delete(am.assets, id)
	return true
}

func info(id string, a *asset) assetInfo {
	return assetInfo{ID: id, Name: a.Name, Mime: a.Mime, Size: len(a.Data), Ref: AssetScheme + id, URL: "/api/assets/" + id}
}

// inline replaces asset references with data URIs; other refs pass through.
func (am *assetManager) inline(ref string) (string, error) {
	id, ok := strings.CutPrefix(ref, AssetScheme)
	if !ok {
		return ref, nil
	}
	a, found := am.get(id)
	if !found {
		return "", fmt.Errorf("unknown asset %q", id)
	}
	return imageload.EncodeDataURI(a.Mime, a.Data), nil
}

func randomID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// ── Server ──

// Options configures a Server.
type Options struct {
	Addr      string
	MaxUpload int64 // bytes per uploaded file
	Logger    *slog.Logger
}

// Server serves the HTTP API.
type Server struct {
	x      *export.Exporter
	assets *assetManager
	opts   Options
	log    *slog.Logger
}

// New creates a server rendering through x.
func New(x *export.Exporter, opts Options) *Server {
	if opts.MaxUpload <= 0 {
		opts.MaxUpload = 32 << 20
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{x: x, assets: newAssetManager(), opts: opts, log: log.With("component", "server")}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/export", s.handleExport)
	mux.HandleFunc("POST /api/layout", s.handleLayout)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/example", s.handleExample)
	mux.HandleFunc("POST /api/export/bundle", s.handleExportBundle)
	mux.HandleFunc("POST /api/import/bundle", s.handleImportBundle)
	mux.HandleFunc("POST /api/upload/image", s.handleUploadImage)
	mux.HandleFunc("GET /api/assets", s.handleListAssets)
	mux.HandleFunc("GET /api/assets/{id}", s.handleGetAsset)
	mux.HandleFunc("DELETE /api/assets/{id}", s.handleDeleteAsset)
	return mux
}

// Run listens on the configured address until ctx is done, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", "http://"+s.opts.Addr)
		errc <- hs.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}

// ── Render ──

type renderRequest struct {
	State json.RawMessage `json:"state"`
	Data  json.RawMessage `json:"data"`
	Mode  string          `json:"mode"`
}

// decode parses a render request into a normalized state with assets
// inlined.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*state.State, state.Mode, []string, error) {
	var req renderRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4*s.opts.MaxUpload)).Decode(&req); err != nil {
		return nil, "", nil, fmt.Errorf("decode request: %w", err)
	}
	mode, err := state.ParseMode(req.Mode)
	if err != nil {
		return nil, "", nil, err
	}
	doc := []byte(req.State)
	if len(bytes.TrimSpace(doc)) == 0 || string(doc) == "null" {
		doc = []byte("{}")
	}
	st, warnings, err := state.DecodeResolved(doc, s.assets.inline)
	if err != nil {
		return nil, "", nil, err
	}
	if err := state.ApplyData(st, req.Data); err != nil {
		return nil, "", nil, err
	}
	if err := st.ResolveImages(s.assets.inline); err != nil {
		return nil, "", nil, err
	}
	return st, mode, warnings, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	st, mode, warnings, err := s.decode(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.x.Export(r.Context(), st, mode)
	if err != nil {
		http.Error(w, export.Message(err), exportStatus(err))
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s%s"`, mode, extensionForMime(res.ContentType)))
	w.Header().Set("X-Warnings", fmt.Sprint(len(warnings)))
	_, _ = w.Write(res.Data)
}

func exportStatus(err error) int {
	switch {
	case errors.Is(err, export.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, export.ErrSerialize):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	st, mode, warnings, err := s.decode(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	plan, err := s.x.Layout(r.Context(), st, mode)
	if err != nil {
		http.Error(w, export.Message(err), exportStatus(err))
		return
	}
	writeJSON(w, map[string]any{"plan": plan, "warnings": nonNil(warnings)})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	_, _, warnings, err := s.decode(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"warnings": nonNil(warnings)})
}

func (s *Server) handleExample(w http.ResponseWriter, _ *http.Request) {
	st, data := state.ExampleJSON()
	writeJSON(w, map[string]json.RawMessage{"state": json.RawMessage(st), "data": json.RawMessage(data)})
}

// ── Bundles ──

// handleExportBundle packs the request state and the assets it references
// into a bundle ZIP.
func (s *Server) handleExportBundle(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc := []byte(req.State)
	if len(bytes.TrimSpace(doc)) == 0 || string(doc) == "null" {
		doc = []byte("{}")
	}

	used := map[string]string{} // entry path -> asset id
	toEntry := func(ref string) (string, error) {
		id, ok := strings.CutPrefix(ref, AssetScheme)
		if !ok {
			return ref, nil
		}
		a, found := s.assets.get(id)
		if !found {
			return "", fmt.Errorf("unknown asset %q", id)
		}
		entry := "assets/" + id + extensionForMime(a.Mime)
		used[entry] = id
		return entry, nil
	}
	st, _, err := state.DecodeResolved(doc, toEntry)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	sw, _ := zw.Create(state.BundleStateFile)
	enc := json.NewEncoder(sw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(st); err != nil {
		http.Error(w, "encode state: "+err.Error(), http.StatusInternalServerError)
		return
	}
	entries := make([]string, 0, len(used))
	for e := range used {
		entries = append(entries, e)
	}
	sort.Strings(entries)
	for _, e := range entries {
		a, _ := s.assets.get(used[e])
		aw, _ := zw.Create(e)
		_, _ = aw.Write(a.Data)
	}
	if err := zw.Close(); err != nil {
		http.Error(w, "write bundle: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="state.psbundle"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleImportBundle(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	st, err := state.ReadBundle(data)
	if err != nil {
		http.Error(w, "invalid bundle: "+err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"state": st})
}

// ── Upload ──

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	data, name, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	if err := imageload.Accept(data, mimeType, imageload.DefaultMaxPixels); err != nil {
		http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
		return
	}
	id := s.assets.add(name, data, mimeType)
	a, _ := s.assets.get(id)
	s.log.Info("asset uploaded", "id", id, "name", name, "bytes", len(data))
	writeJSON(w, info(id, a))
}

// readUpload reads the multipart "file" field, writing the error response
// itself when it fails.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUpload+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, s.opts.MaxUpload+1))
	if err != nil {
		http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	if int64(len(data)) > s.opts.MaxUpload {
		http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
		return nil, "", false
	}
	return data, filepath.Base(header.Filename), true
}

// ── Asset serving ──

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	a, ok := s.assets.get(r.PathValue("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", a.Mime)
	_, _ = w.Write(a.Data)
}

func (s *Server) handleListAssets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.assets.list())
}

func (s *Server) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.assets.remove(id) {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, map[string]string{"status": "deleted", "id": id})
}

// ── Helpers ──

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func extensionForMime(m string) string {
	switch {
	case strings.Contains(m, "png"):
		return ".png"
	case strings.Contains(m, "jpeg"), strings.Contains(m, "jpg"):
		return ".jpg"
	case strings.Contains(m, "webp"):
		return ".webp"
	case strings.Contains(m, "gif"):
		return ".gif"
	default:
		return ""
	}
}
