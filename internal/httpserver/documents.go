package httpserver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/render"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/session"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

const (
	defaultUploadName = "upload.json"
	uploadFormField   = "file"
	maxImageDimension = 4096
)

var errSessionNotFound = errors.New("session not found")

type documentResponse struct {
	SessionID string    `json:"session_id"`
	Name      string    `json:"name"`
	Created   time.Time `json:"created"`
	telemetry.View
}

type chartsResponse struct {
	SessionID string            `json:"session_id"`
	Groups    []telemetry.Group `json:"groups"`
	Charts    []telemetry.Chart `json:"charts"`
}

type framesResponse struct {
	SessionID string `json:"session_id"`
	telemetry.Table
}

func (s *Server) handleAPIDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.store == nil {
		s.writeError(w, r, http.StatusServiceUnavailable, errors.New("session store unavailable"))
		return
	}

	logger := s.loggerFromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	name, body, err := uploadBody(r)
	if err != nil {
		s.rejectUpload(w, r, err)
		return
	}

	doc, err := telemetry.Load(body)
	if err != nil {
		s.rejectUpload(w, r, err)
		return
	}

	entry := s.store.Put(name, doc)
	s.documentsLoaded.Add(1)
	s.framesLoaded.Add(uint64(len(doc.Frames)))
	logger.Info("document loaded",
		"session_id", entry.ID,
		"name", name,
		"frames", len(doc.Frames),
		"issues", len(doc.Issues),
	)

	s.writeJSON(w, r, http.StatusCreated, s.documentResponse(entry))
}

func (s *Server) rejectUpload(w http.ResponseWriter, r *http.Request, err error) {
	s.documentsRejected.Add(1)

	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		s.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("upload exceeds %d bytes", maxErr.Limit))
	case errors.Is(err, telemetry.ErrMalformed):
		s.writeError(w, r, http.StatusBadRequest, err)
	default:
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("read upload: %w", err))
	}
}

// uploadBody accepts either a multipart form carrying the document in the
// "file" field or the raw JSON document as the request body.
func uploadBody(r *http.Request) (string, io.Reader, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := strings.TrimSpace(r.URL.Query().Get("name"))
		if name == "" {
			name = defaultUploadName
		}
		return name, r.Body, nil
	}

	reader, err := r.MultipartReader()
	if err != nil {
		return "", nil, err
	}
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("multipart form has no %q field", uploadFormField)
		}
		if err != nil {
			return "", nil, err
		}
		if part.FormName() != uploadFormField {
			_ = part.Close()
			continue
		}
		name := part.FileName()
		if name == "" {
			name = defaultUploadName
		}
		return name, part, nil
	}
}

func (s *Server) handleAPIDocumentSubresource(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/documents/"), "/")
	if trimmed == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(trimmed, "/")
	sessionID := parts[0]

	switch {
	case len(parts) == 1:
		s.serveDocument(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "charts":
		s.serveCharts(w, r, sessionID)
	case len(parts) == 3 && parts[1] == "charts" && strings.HasSuffix(parts[2], ".png"):
		s.serveChartImage(w, r, sessionID, strings.TrimSuffix(parts[2], ".png"))
	case len(parts) == 2 && parts[1] == "frames":
		s.serveFrames(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) lookupSession(id string) (*session.Entry, error) {
	if s.store == nil {
		return nil, errSessionNotFound
	}
	entry, ok := s.store.Get(id)
	if !ok {
		return nil, errSessionNotFound
	}
	return entry, nil
}

func (s *Server) serveDocument(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		entry, err := s.lookupSession(sessionID)
		if err != nil {
			s.writeError(w, r, http.StatusNotFound, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, s.documentResponse(entry))
	case http.MethodDelete:
		if s.store == nil || !s.store.Delete(sessionID) {
			s.writeError(w, r, http.StatusNotFound, errSessionNotFound)
			return
		}
		s.loggerFromContext(r.Context()).Info("document discarded", "session_id", sessionID)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", http.MethodGet+", "+http.MethodDelete)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) serveCharts(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, err := s.lookupSession(sessionID)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	sel, err := telemetry.ParseSelection(r.URL.Query()["groups"])
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	charts := telemetry.BuildCharts(entry.Document.Frames, sel)
	s.chartsRendered.Add(uint64(len(charts)))
	s.writeJSON(w, r, http.StatusOK, chartsResponse{
		SessionID: entry.ID,
		Groups:    sel.IDs(),
		Charts:    charts,
	})
}

func (s *Server) serveChartImage(w http.ResponseWriter, r *http.Request, sessionID, chartID string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, err := s.lookupSession(sessionID)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	query := r.URL.Query()
	sel := telemetry.AllGroups()
	if groups, ok := query["groups"]; ok {
		if sel, err = telemetry.ParseSelection(groups); err != nil {
			s.writeError(w, r, http.StatusBadRequest, err)
			return
		}
	}

	opts, err := s.imageOptions(query.Get("width"), query.Get("height"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	chart, ok := telemetry.BuildChart(chartID, entry.Document.Frames, sel)
	if !ok {
		s.writeError(w, r, http.StatusNotFound, fmt.Errorf("chart %q not available for the selected groups", chartID))
		return
	}

	logger := s.loggerFromContext(r.Context())

	var buf bytes.Buffer
	if err := render.PNG(&buf, chart, opts); err != nil {
		logger.Error("chart render failed, serving blank image", "chart", chartID, "err", err)
		captureException(r.Context(), err)
		buf.Reset()
		if err := render.Blank(&buf, opts); err != nil {
			s.writeError(w, r, http.StatusInternalServerError, fmt.Errorf("render chart %q: %w", chartID, err))
			return
		}
	}
	s.imagesRendered.Add(1)

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warn("failed to write chart image", "chart", chartID, "err", err)
	}
}

func (s *Server) imageOptions(width, height string) (render.Options, error) {
	opts := render.Options{Width: s.cfg.Charts.Width, Height: s.cfg.Charts.Height}
	if width != "" {
		v, err := strconv.Atoi(width)
		if err != nil || v <= 0 || v > maxImageDimension {
			return render.Options{}, fmt.Errorf("invalid width %q", width)
		}
		opts.Width = v
	}
	if height != "" {
		v, err := strconv.Atoi(height)
		if err != nil || v <= 0 || v > maxImageDimension {
			return render.Options{}, fmt.Errorf("invalid height %q", height)
		}
		opts.Height = v
	}
	return opts, nil
}

func (s *Server) serveFrames(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entry, err := s.lookupSession(sessionID)
	if err != nil {
		s.writeError(w, r, http.StatusNotFound, err)
		return
	}

	s.writeJSON(w, r, http.StatusOK, framesResponse{
		SessionID: entry.ID,
		Table:     telemetry.BuildTable(entry.Document.Records),
	})
}

func (s *Server) documentResponse(entry *session.Entry) documentResponse {
	return documentResponse{
		SessionID: entry.ID,
		Name:      entry.Name,
		Created:   entry.Created,
		View:      telemetry.BuildView(entry.Document, s.gpuNamer),
	}
}
