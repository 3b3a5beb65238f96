package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"pngme/pngmeta"
	"pngme/secret"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// maxUploadSize caps a PNG posted to the API.
const maxUploadSize = 32 << 20

const secretHeader = "X-Pngme-Secret"

type chunkInfo struct {
	Index   int               `json:"index"`
	Type    pngmeta.ChunkType `json:"type"`
	Flags   string            `json:"flags"`
	Length  uint32            `json:"length"`
	CRC     string            `json:"crc"`
	Preview string            `json:"preview"`
	Sealed  bool              `json:"sealed"`
}

type decodedChunk struct {
	Type    pngmeta.ChunkType `json:"type"`
	Length  uint32            `json:"length"`
	CRC     string            `json:"crc"`
	Sealed  bool              `json:"sealed"`
	Message string            `json:"message,omitempty"`
	Data    []byte            `json:"data,omitempty"`
}

type Server struct {
	addr string
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Get("/ping", pingHandler)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chunks", listChunksHandler)
		r.Post("/chunks/{type}", decodeChunkHandler)
	})
	return r
}

// ListenToRequests serves until ctx is done, then shuts down gracefully.
func (srv *Server) ListenToRequests(ctx context.Context) error {
	server := &http.Server{
		Addr:         srv.addr,
		Handler:      newRouter(),
		ReadTimeout:  time.Second * 5,
		WriteTimeout: time.Second * 5,
		IdleTimeout:  time.Second * 60,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		errc <- server.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(),
			"took", time.Since(start), "id", middleware.GetReqID(r.Context()))
	})
}

func pingHandler(w http.ResponseWriter, req *http.Request) {
	if _, err := w.Write([]byte("pong")); err != nil {
		logger.Error("server ping", "error", err)
	}
}

func listChunksHandler(w http.ResponseWriter, req *http.Request) {
	img, err := readUpload(w, req)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]chunkInfo, 0, len(img.Chunks()))
	for i, c := range img.Chunks() {
		out = append(out, chunkInfo{
			Index:   i,
			Type:    c.Type(),
			Flags:   flags(c.Type()),
			Length:  c.Length(),
			CRC:     fmt.Sprintf("%08x", c.CRC()),
			Preview: c.Preview(),
			Sealed:  secret.IsSealed(c.Data()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func decodeChunkHandler(w http.ResponseWriter, req *http.Request) {
	ct, err := pngmeta.ParseChunkType(chi.URLParam(req, "type"))
	if err != nil {
		writeError(w, err)
		return
	}
	img, err := readUpload(w, req)
	if err != nil {
		writeError(w, err)
		return
	}
	chunk, ok := img.ChunkByType(ct.String())
	if !ok {
		writeError(w, fmt.Errorf("%w: no %s chunk", pngmeta.ErrChunkNotFound, ct))
		return
	}
	resp := decodedChunk{
		Type:   ct,
		Length: chunk.Length(),
		CRC:    fmt.Sprintf("%08x", chunk.CRC()),
		Sealed: secret.IsSealed(chunk.Data()),
	}
	data := chunk.Data()
	pass := req.Header.Get(secretHeader)
	if pass != "" {
		if data, err = secret.Open(pass, data); err != nil {
			writeError(w, err)
			return
		}
	}
	if utf8.Valid(data) && (!resp.Sealed || pass != "") {
		resp.Message = string(data)
	} else {
		resp.Data = data
	}
	writeJSON(w, http.StatusOK, resp)
}

func readUpload(w http.ResponseWriter, req *http.Request) (*pngmeta.Png, error) {
	body := http.MaxBytesReader(w, req.Body, maxUploadSize)
	defer body.Close()
	return pngmeta.ReadPng(bufio.NewReader(body))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	status := http.StatusUnprocessableEntity
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, pngmeta.ErrInvalidFormat):
		status = http.StatusBadRequest
	case errors.Is(err, pngmeta.ErrChunkNotFound):
		status = http.StatusNotFound
	case errors.Is(err, secret.ErrWrongPassphrase):
		status = http.StatusForbidden
	case errors.Is(err, secret.ErrNotSealed):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
