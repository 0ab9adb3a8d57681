package web

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/KaramelBytes/datadash/internal/dataset"
	"github.com/KaramelBytes/datadash/internal/view"
)

const (
	sessionName = "datadash"

	keyUploadKey   = "upload_key"
	keyUploadName  = "upload_name"
	keyUploadError = "upload_error"
)

// source is the dataset a request renders, plus how it was obtained.
type source struct {
	Result   dataset.Result
	Uploaded bool
	Notices  []view.Notice
}

func (s *Server) session(r *http.Request) *sessions.Session {
	sess, err := s.sessions.Get(r, sessionName)
	if err != nil {
		// A cookie signed with another secret decodes to a fresh session.
		s.logger.Debug("discarding unreadable session", zap.Error(err))
	}
	return sess
}

// resolve picks the session's uploaded dataset, or the default file when the
// session has none. A failed upload stays in effect until a new upload or a
// reset, so the page keeps showing its error.
func (s *Server) resolve(ctx context.Context, sess *sessions.Session) source {
	var src source
	for _, f := range sess.Flashes(levelSuccess) {
		if text, ok := f.(string); ok {
			src.Notices = append(src.Notices, view.Notice{Level: view.LevelSuccess, Text: text})
		}
	}
	for _, f := range sess.Flashes(levelError) {
		if text, ok := f.(string); ok {
			src.Notices = append(src.Notices, view.Notice{Level: view.LevelError, Text: text})
		}
	}

	if msg, ok := sess.Values[keyUploadError].(string); ok && msg != "" {
		src.Uploaded = true
		src.Result = dataset.Result{Message: msg}
		return src
	}
	if key, ok := sess.Values[keyUploadKey].(string); ok && key != "" {
		res := s.loader.Lookup(key)
		if res.OK() {
			src.Uploaded = true
			src.Result = res
			return src
		}
		name, _ := sess.Values[keyUploadName].(string)
		s.logger.Info("uploaded dataset evicted", zap.String("name", name))
		delete(sess.Values, keyUploadKey)
		delete(sess.Values, keyUploadName)
		src.Notices = append(src.Notices, view.Notice{Level: view.LevelError, Text: res.Message})
	}
	src.Result = s.loader.LoadFile(ctx, s.cfg.View.DefaultPath)
	return src
}

const (
	levelSuccess = "success"
	levelError   = "error"
)

func (s *Server) setUpload(sess *sessions.Session, res dataset.Result, name string) {
	delete(sess.Values, keyUploadKey)
	delete(sess.Values, keyUploadName)
	delete(sess.Values, keyUploadError)
	if res.OK() {
		sess.Values[keyUploadKey] = res.Dataset.Key
		sess.Values[keyUploadName] = name
		sess.AddFlash("File uploaded successfully!", levelSuccess)
		return
	}
	sess.Values[keyUploadError] = res.Message
}

func clearUpload(sess *sessions.Session) {
	delete(sess.Values, keyUploadKey)
	delete(sess.Values, keyUploadName)
	delete(sess.Values, keyUploadError)
}

// build produces the view for a resolved source.
func (s *Server) build(src source, sel view.Selections) view.View {
	opt := s.cfg.View
	opt.Uploaded = src.Uploaded
	opt.LoadMessage = src.Result.Message
	v := view.Build(src.Result.Dataset, sel, opt)
	v.Notices = append(src.Notices, v.Notices...)
	return v
}
