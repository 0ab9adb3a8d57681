package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"
	"go.uber.org/zap"

	"github.com/KaramelBytes/datadash/internal/analysis"
	"github.com/KaramelBytes/datadash/internal/view"
)

type pageData struct {
	View        view.View
	MaxUploadMB int
}

type reportData struct {
	Title string
	Body  template.HTML
}

// handleHome renders the full dashboard. Selections come from the query
// string so the controls also work as a plain GET form.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	src := s.resolve(r.Context(), sess)
	if !s.saveSession(w, r, sess) {
		return
	}
	v := s.build(src, view.FromQuery(r.URL.Query()))
	html, err := s.pages.render("page", pageData{View: v, MaxUploadMB: s.cfg.MaxUploadMB})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

// handlePanel re-renders the dashboard panel from the browser's signals.
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	// Read signals before creating the SSE, which consumes the request body.
	var signals view.Signals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.ConsoleError(fmt.Errorf("read signals: %w", err))
		return
	}

	sess := s.session(r)
	src := s.resolve(r.Context(), sess)
	if !s.saveSession(w, r, sess) {
		return
	}
	v := s.build(src, signals.Selections())
	html, err := s.pages.render("panel", v)

	sse := datastar.NewSSE(w, r)
	if err != nil {
		s.logger.Error("render panel", zap.Error(err))
		_ = sse.ConsoleError(err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		s.logger.Debug("patch panel", zap.Error(err))
	}
}

// handleUpload loads a multipart "file" field and remembers it in the
// session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	sess := s.session(r)

	data, name, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		msg := "Error loading data: " + err.Error()
		if errors.As(err, &tooLarge) {
			msg = fmt.Sprintf("Error loading data: file exceeds the %d MB upload limit", s.cfg.MaxUploadMB)
		}
		s.logger.Info("upload rejected", zap.Error(err))
		sess.AddFlash(msg, levelError)
		s.redirectHome(w, r, sess)
		return
	}

	res := s.loader.LoadUpload(r.Context(), name, data)
	if res.OK() {
		s.logger.Info("dataset uploaded",
			zap.String("name", name),
			zap.Int("rows", res.Dataset.Rows),
			zap.Int("columns", len(res.Dataset.Columns)))
	}
	s.setUpload(sess, res, name)
	s.redirectHome(w, r, sess)
}

func readUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, "", err
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", err
	}
	return data, filepath.Base(hdr.Filename), nil
}

// handleReset drops the session's upload so the default dataset is used.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	clearUpload(sess)
	s.redirectHome(w, r, sess)
}

// handleChart writes a standalone chart page for the iframe embeds.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	kind := chi.URLParam(r, "kind")
	sess := s.session(r)
	src := s.resolve(r.Context(), sess)
	if !src.Result.OK() {
		http.Error(w, view.NoDataMessage, http.StatusNotFound)
		return
	}
	opt := s.cfg.View
	opt.Uploaded = src.Uploaded
	chart, err := view.Chart(src.Result.Dataset, kind, view.FromQuery(r.URL.Query()), opt)
	switch {
	case errors.Is(err, view.ErrUnknownChart):
		http.NotFound(w, r)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleReport renders the Markdown dataset report as HTML.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(r)
	src := s.resolve(r.Context(), sess)
	if !s.saveSession(w, r, sess) {
		return
	}
	if !src.Result.OK() {
		http.Error(w, view.NoDataMessage, http.StatusNotFound)
		return
	}
	ds := src.Result.Dataset
	opt := analysis.DefaultReportOptions()
	opt.SampleRows = s.cfg.View.PreviewRows
	if opt.SampleRows <= 0 {
		opt.SampleRows = view.DefaultOptions().PreviewRows
	}
	if m, err := analysis.ParseMethod(r.URL.Query().Get("method")); err == nil {
		opt.Method = m
	}
	md := analysis.BuildReport(ds, opt).Markdown()
	html, err := s.pages.render("report", reportData{Title: "Report for " + ds.Name, Body: markdownToHTML(md)})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) bool {
	if err := sess.Save(r, w); err != nil {
		s.serverError(w, r, fmt.Errorf("save session: %w", err))
		return false
	}
	return true
}

func (s *Server) redirectHome(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if !s.saveSession(w, r, sess) {
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
