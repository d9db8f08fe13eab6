package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/tsawler/docxmark"
	"github.com/tsawler/docxmark/result"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// conversionResponse is the body of a successful conversion.
type conversionResponse struct {
	ID       string           `json:"id"`
	Value    string           `json:"value"`
	Messages []result.Message `json:"messages"`
}

// upload is a document posted to the service.
type upload struct {
	data     []byte
	styleMap string
}

// convertFunc is a Converter terminal method in method expression form.
type convertFunc func(conv *docxmark.Converter, ctx context.Context) (string, []result.Message, error)

func (s *Server) handleConvertHTML(w http.ResponseWriter, r *http.Request) {
	s.handleConversion(w, r, (*docxmark.Converter).ToHTML)
}

func (s *Server) handleConvertMarkdown(w http.ResponseWriter, r *http.Request) {
	s.handleConversion(w, r, (*docxmark.Converter).ToMarkdown)
}

func (s *Server) handleExtractText(w http.ResponseWriter, r *http.Request) {
	s.handleConversion(w, r, (*docxmark.Converter).RawText)
}

func (s *Server) handleConversion(w http.ResponseWriter, r *http.Request, run convertFunc) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	id := docxmark.NewConversionID()
	value, messages, err := run(s.converter(up, id), r.Context())
	if err != nil {
		s.conversionError(w, r, id, err)
		return
	}
	if messages == nil {
		messages = []result.Message{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(conversionResponse{
		ID:       id,
		Value:    value,
		Messages: messages,
	})
}

func (s *Server) handleEmbedStyleMap(w http.ResponseWriter, r *http.Request) {
	up, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	if up.styleMap == "" {
		jsonError(w, "style_map is required", http.StatusBadRequest)
		return
	}

	id := docxmark.NewConversionID()
	data, err := docxmark.FromBytes(up.data).Logger(s.log).ConversionID(id).EmbedStyleMap(r.Context(), up.styleMap)
	if err != nil {
		s.conversionError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", docxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="document.docx"`)
	w.Header().Set("X-Conversion-Id", id)
	w.Write(data)
}

// converter builds a Converter for an upload. Rules posted with the request
// take precedence over the configured style map.
func (s *Server) converter(up upload, id string) *docxmark.Converter {
	conv := docxmark.FromBytes(up.data)
	if up.styleMap != "" {
		conv = conv.StyleMap(up.styleMap)
	}
	return s.cfg.Apply(conv).Logger(s.log).ConversionID(id)
}

// readUpload reads the document from a multipart "file" field, with an
// optional "style_map" field, or from the raw request body with an optional
// style_map query parameter. It writes the error response itself.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return s.readMultipart(w, r)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		s.uploadError(w, err)
		return upload{}, false
	}
	if len(data) == 0 {
		jsonError(w, "request body is empty", http.StatusBadRequest)
		return upload{}, false
	}
	return upload{data: data, styleMap: r.URL.Query().Get("style_map")}, true
}

func (s *Server) readMultipart(w http.ResponseWriter, r *http.Request) (upload, bool) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadError(w, err)
			return upload{}, false
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return upload{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return upload{}, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return upload{}, false
	}
	return upload{data: data, styleMap: r.FormValue("style_map")}, true
}

func (s *Server) uploadError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, "failed to read request body", http.StatusBadRequest)
}

func (s *Server) conversionError(w http.ResponseWriter, r *http.Request, id string, err error) {
	status := http.StatusUnprocessableEntity
	switch {
	case errors.Is(err, docxmark.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	s.log.Warn("conversion failed", "conversion_id", id, "path", r.URL.Path, "error", err)
	jsonError(w, err.Error(), status)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
