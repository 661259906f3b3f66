package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"smolpaste/internal/ingest"
	"smolpaste/internal/models"
	"smolpaste/internal/store"
)

const pastePathPrefix = "/paste/"

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := store.NewPasteID()

	part, err := firstPart(r)
	if err != nil {
		s.writeErrorReq(w, r, badRequest(err))
		return
	}
	defer part.Close()

	uploadName, ok := partFilename(part)
	if !ok {
		s.writeErrorReq(w, r, badRequest(fmt.Errorf("upload has no filename")))
		return
	}
	ext, err := s.extensionFor(uploadName)
	if err != nil {
		s.writeErrorReq(w, r, badRequest(err))
		return
	}
	filename := models.StoredFilename(id, ext)

	result, err := s.blobs.Create(ctx, filename, part, s.maxUploadBytes)
	if err != nil {
		s.discardBlob(filename)
		if errors.Is(err, ingest.ErrTooLarge) {
			s.writeErrorReq(w, r, badRequest(err))
			return
		}
		s.writeErrorReq(w, r, ioFailure(fmt.Errorf("write %s: %w", filename, err)))
		return
	}

	paste := models.Paste{
		ID:        id,
		Size:      result.Size,
		Filename:  filename,
		Timestamp: s.now().Unix(),
		Digest:    result.Digest,
	}
	if err := s.store.InsertPaste(ctx, paste); err != nil {
		s.discardBlob(filename)
		s.writeErrorReq(w, r, storeFailure(fmt.Errorf("insert paste %s: %w", id, err)))
		return
	}

	pastesCreatedTotal.Inc()
	ingestBytesTotal.Add(float64(result.Size))
	s.log().Debug("paste created", "id", id, "filename", filename, "size", result.Size)

	s.writeText(w, http.StatusOK, s.pasteURL(filename))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.URL.Query().Get("id")
	if id == "" {
		s.writeErrorReq(w, r, badRequest(fmt.Errorf("id is required")))
		return
	}

	filename, err := s.store.PopPasteFilename(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		s.writeErrorReq(w, r, notFound(fmt.Errorf("paste %s not found", id)))
		return
	}
	if err != nil {
		s.writeErrorReq(w, r, storeFailure(fmt.Errorf("delete paste %s: %w", id, err)))
		return
	}

	if err := s.blobs.Remove(ctx, filename); err != nil {
		s.writeErrorReq(w, r, ioFailure(err))
		return
	}

	pastesDeletedTotal.Inc()
	s.log().Debug("paste deleted", "id", id, "filename", filename)

	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusOK)
}

// discardBlob removes a file left behind by a failed upload. The request
// context may already be cancelled, so removal runs detached from it.
func (s *Server) discardBlob(filename string) {
	if err := s.blobs.Remove(context.Background(), filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log().Warn("discard partial upload", "filename", filename, "error", err)
	}
}

func (s *Server) pasteURL(filename string) string {
	return s.baseURL + pastePathPrefix + filename
}

func (s *Server) writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		s.log().Error("write text response", "status", status, "error", err)
	}
}

func (s *Server) now() time.Time {
	if s.clock != nil {
		return s.clock()
	}
	return time.Now()
}

func firstPart(r *http.Request) (*multipart.Part, error) {
	reader, err := r.MultipartReader()
	if err != nil {
		return nil, fmt.Errorf("read multipart body: %w", err)
	}
	part, err := reader.NextPart()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("multipart body has no fields")
	}
	if err != nil {
		return nil, fmt.Errorf("read multipart field: %w", err)
	}
	return part, nil
}

// partFilename returns the raw filename parameter of the part's
// Content-Disposition. ok is false when the parameter is absent.
func partFilename(part *multipart.Part) (string, bool) {
	disposition := part.Header.Get("Content-Disposition")
	if disposition == "" {
		return "", false
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return "", false
	}
	filename, ok := params["filename"]
	return filename, ok
}

func (s *Server) extensionFor(uploadName string) (string, error) {
	ext, ok := uploadExtension(uploadName)
	if !ok {
		return "", nil
	}
	if err := validateExtension(ext); err != nil {
		return "", err
	}
	if !s.extensionAllowed(ext) {
		return "", fmt.Errorf("extension %q is not allowed", ext)
	}
	return ext, nil
}

func (s *Server) extensionAllowed(ext string) bool {
	if len(s.allowedExtensions) == 0 {
		return true
	}
	for _, allowed := range s.allowedExtensions {
		if strings.EqualFold(strings.TrimPrefix(allowed, "."), ext) {
			return true
		}
	}
	return false
}

// uploadExtension returns the text after the final dot of the last path
// component. A name whose only dot is its first byte has no extension, and
// neither does "." or "..". An empty extension counts as none.
func uploadExtension(name string) (string, bool) {
	base := ""
	for _, component := range strings.Split(name, "/") {
		if component == "" || component == "." {
			continue
		}
		base = component
	}
	if base == "" || base == ".." {
		return "", false
	}

	dot := strings.LastIndexByte(base, '.')
	if dot <= 0 {
		return "", false
	}
	ext := base[dot+1:]
	if ext == "" {
		return "", false
	}
	return ext, true
}

func validateExtension(ext string) error {
	if !utf8.ValidString(ext) {
		return fmt.Errorf("extension is not valid UTF-8")
	}
	for _, r := range ext {
		if unicode.IsControl(r) || r == '/' || r == '\\' {
			return fmt.Errorf("extension %q contains an invalid character", ext)
		}
	}
	return nil
}
