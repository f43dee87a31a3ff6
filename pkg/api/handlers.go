package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/gdstxt/pkg/convert"
	"github.com/ssargent/gdstxt/pkg/gds"
	"github.com/ssargent/gdstxt/pkg/metrics"
	"github.com/ssargent/gdstxt/pkg/storage"
	"github.com/ssargent/gdstxt/pkg/tags"
)

const (
	contentTypeText   = "text/plain; charset=utf-8"
	contentTypeStream = "application/octet-stream"
)

// Server holds the API server state
type Server struct {
	table       *tags.Table
	store       ResultStore
	config      ServerConfig
	metrics     *metrics.Metrics
	logger      *slog.Logger
	convertOpts []convert.Option
}

// NewServer creates a new API server. store may be nil, in which case
// ?store=true and the /results routes answer 503.
func NewServer(
	table *tags.Table,
	store ResultStore,
	config ServerConfig,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts ...convert.Option,
) *Server {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 64 << 20
	}

	convertOpts := append([]convert.Option{}, opts...)
	convertOpts = append(convertOpts, convert.WithObserver(m), convert.WithLogger(logger))

	return &Server{
		table:       table,
		store:       store,
		config:      config,
		metrics:     m,
		logger:      logger,
		convertOpts: convertOpts,
	}
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleTags godoc
//
//	@Summary		List tags
//	@Description	List the tag table used for conversions, ordered by tag id
//	@Tags			tags
//	@Produce		json
//	@Success		200	{array}		TagInfo
//	@Router			/tags [get]
//	@Security		ApiKeyAuth
func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	entries := s.table.Entries()
	out := make([]TagInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, TagInfo{
			Tag:  uint8(e.Tag),
			Hex:  fmt.Sprintf("0x%02X", uint8(e.Tag)),
			Name: e.Name,
			Type: e.DataType.String(),
		})
	}
	sendSuccess(w, out)
}

// handleConvert godoc
//
//	@Summary		Convert a file
//	@Description	Convert a GDSII stream to text (gds2txt) or text to a GDSII stream (txt2gds).
//	@Description	The converted file is returned as the body unless store=true.
//	@Tags			convert
//	@Accept			octet-stream,plain
//	@Produce		octet-stream,plain,json
//	@Param			direction			path		string	true	"gds2txt or txt2gds"
//	@Param			store				query		bool	false	"Persist the output and return its id"
//	@Param			continue_on_error	query		bool	false	"Skip records that fail to convert"
//	@Success		200					{object}	ConvertResponse
//	@Failure		413					{object}	APIResponse
//	@Failure		422					{object}	APIResponse
//	@Router			/convert/{direction} [post]
//	@Security		ApiKeyAuth
func (s *Server) handleConvert(dir convert.Direction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		persist := query.Get("store") == "true"
		if persist && s.store == nil {
			sendError(w, "Result storage is not configured", http.StatusServiceUnavailable)
			return
		}

		opts := append([]convert.Option{}, s.convertOpts...)
		if query.Get("continue_on_error") == "true" {
			opts = append(opts, convert.WithContinueOnError(true))
		}

		body := http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)
		var out bytes.Buffer
		res, err := convert.New(s.table, opts...).Convert(r.Context(), dir, body, &out)
		if err != nil {
			s.sendConvertError(w, err)
			return
		}

		contentType := contentTypeFor(dir)
		if !persist {
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("X-Run-Id", res.RunID.String())
			w.Header().Set("X-Records", strconv.Itoa(res.Records))
			w.Header().Set("X-Skipped", strconv.Itoa(res.Skipped))
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(out.Bytes())
			return
		}

		stored := &storage.Result{
			Metadata: storage.Metadata{
				RunID:       res.RunID,
				Direction:   string(dir),
				Records:     res.Records,
				Skipped:     res.Skipped,
				ContentType: contentType,
			},
			Data: out.Bytes(),
		}
		id, err := s.store.Create(stored)
		s.metrics.RecordStoreOperation("create", err == nil)
		if err != nil {
			s.logger.Error("failed to store result", "run_id", res.RunID.String(), "error", err)
			sendError(w, "Failed to store result", http.StatusInternalServerError)
			return
		}

		sendSuccess(w, ConvertResponse{
			ID:        id.String(),
			RunID:     res.RunID.String(),
			Direction: string(dir),
			Records:   res.Records,
			Skipped:   res.Skipped,
			Size:      stored.Size,
		})
	}
}

// handleGetResult godoc
//
//	@Summary		Get a stored result
//	@Description	Return the stored output, or its metadata with meta=true
//	@Tags			results
//	@Produce		octet-stream,plain,json
//	@Param			id		path		string	true	"Result id"
//	@Param			meta	query		bool	false	"Return metadata only"
//	@Success		200		{string}	byte
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/results/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resultID(w, r)
	if !ok {
		return
	}

	res, err := s.store.Read(id)
	s.metrics.RecordStoreOperation("read", err == nil)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	if r.URL.Query().Get("meta") == "true" {
		sendSuccess(w, res.Metadata)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("X-Run-Id", res.RunID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// handleDeleteResult godoc
//
//	@Summary		Delete a stored result
//	@Tags			results
//	@Produce		json
//	@Param			id	path		string	true	"Result id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	APIResponse
//	@Router			/results/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	id, ok := s.resultID(w, r)
	if !ok {
		return
	}

	err := s.store.Delete(id)
	s.metrics.RecordStoreOperation("delete", err == nil)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}

	sendSuccess(w, map[string]string{"message": "Result deleted successfully"})
}

func (s *Server) resultID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	if s.store == nil {
		sendError(w, "Result storage is not configured", http.StatusServiceUnavailable)
		return ksuid.Nil, false
	}
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid result id", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

func (s *Server) sendConvertError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		sendError(w, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
	case gds.IsCodecError(err):
		sendErrorKind(w, err.Error(), gds.ErrorKind(err), http.StatusUnprocessableEntity)
	default:
		s.logger.Error("conversion failed", "error", err)
		sendError(w, "Conversion failed", http.StatusInternalServerError)
	}
}

func (s *Server) sendStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		sendError(w, "Result not found", http.StatusNotFound)
		return
	}
	s.logger.Error("result store failed", "error", err)
	sendError(w, "Result store failed", http.StatusInternalServerError)
}

func contentTypeFor(dir convert.Direction) string {
	if dir == convert.GDSToText {
		return contentTypeText
	}
	return contentTypeStream
}
