package server

import (
	"net/http"
	"slices"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/FocuswithJustin/ExamTeX/core/compiler"
	"github.com/FocuswithJustin/ExamTeX/core/errors"
	"github.com/FocuswithJustin/ExamTeX/core/render"
	"github.com/FocuswithJustin/ExamTeX/internal/bundle"
	"github.com/FocuswithJustin/ExamTeX/internal/cache"
	"github.com/FocuswithJustin/ExamTeX/internal/keystore"
	"github.com/FocuswithJustin/ExamTeX/internal/logging"
	"github.com/FocuswithJustin/ExamTeX/internal/validation"
)

// Build is a compilation held by the server.
type Build struct {
	keystore.Build
	Docs *compiler.Documents `json:"-"`
}

// CompileRequest is the body of POST /api/compile.
type CompileRequest struct {
	Source      string `json:"source" binding:"required"`
	Seed        int64  `json:"seed"`
	Name        string `json:"name"`
	AttachSheet bool   `json:"attach_sheet"`
}

// CompileResponse is the result of POST /api/compile.
type CompileResponse struct {
	ID          string                `json:"id"`
	Name        string                `json:"name"`
	Seed        int64                 `json:"seed"`
	Fingerprint string                `json:"source_blake3"`
	Questions   int                   `json:"questions"`
	Cached      bool                  `json:"cached"`
	Exam        string                `json:"exam"`
	AnswerSheet string                `json:"answer_sheet"`
	AnswerKey   string                `json:"answer_key"`
	Answers     []render.AnswerRecord `json:"answers"`
}

// ErrorResponse reports a failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleCompile(c *gin.Context) {
	var req CompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if len(req.Source) > validation.MaxSourceSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: validation.ErrTooLarge.Error()})
		return
	}
	if !utf8.ValidString(req.Source) || !validation.IsLikelyText([]byte(req.Source)) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: validation.ErrNotText.Error()})
		return
	}
	if req.Seed == 0 {
		req.Seed = render.DefaultSeed
	}
	if req.Name == "" {
		req.Name = "exam"
	}
	name, err := validation.SanitizeFilename(req.Name)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	id := bundle.NewBuildID()
	s.hub.Broadcast(Event{Type: EventStarted, Build: id, Name: name})

	key := cache.Key(req.Source, req.Seed) + ":" + strconv.FormatBool(req.AttachSheet)
	docs, cached := s.results.Get(key)
	if !cached {
		start := time.Now()
		logging.CompileStarted(name, req.Seed, "build", id)
		docs, err = compiler.Compile(req.Source, compiler.Options{
			Seed:        req.Seed,
			Templates:   s.cfg.Templates,
			AttachSheet: req.AttachSheet,
			Logger:      logging.LoggerFromContext(c.Request.Context()),
		})
		if err != nil {
			kind := errors.Kind(err)
			logging.CompileFailed(name, kind, err, "build", id)
			s.hub.Broadcast(Event{Type: EventFailed, Build: id, Name: name, Message: err.Error()})
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Kind: kind})
			return
		}
		logging.CompileFinished(name, docs.Questions, time.Since(start), "build", id)
		s.results.Set(key, docs)
	}

	b := &Build{Build: keystore.NewBuild(id, name, docs), Docs: docs}
	s.builds.Set(id, b)
	if s.cfg.Store != nil {
		if err := s.cfg.Store.Record(c.Request.Context(), b.Build); err != nil {
			logging.ErrorContext(c.Request.Context(), "failed to record build", "build", id, "error", err)
		} else {
			logging.KeyRecorded(id, docs.Fingerprint, len(docs.Records))
		}
	}
	s.hub.Broadcast(Event{Type: EventFinished, Build: id, Name: name, Questions: docs.Questions})

	c.JSON(http.StatusOK, CompileResponse{
		ID:          id,
		Name:        name,
		Seed:        docs.Seed,
		Fingerprint: docs.Fingerprint,
		Questions:   docs.Questions,
		Cached:      cached,
		Exam:        docs.Exam,
		AnswerSheet: docs.AnswerSheet,
		AnswerKey:   docs.AnswerKey,
		Answers:     docs.Records,
	})
}

// lookup finds a build in memory, then in the store. Builds loaded from
// the store carry no documents.
func (s *Server) lookup(c *gin.Context, id string) (*Build, error) {
	if b, ok := s.builds.Get(id); ok {
		return b, nil
	}
	if s.cfg.Store == nil {
		return nil, errors.NewNotFound("build", id)
	}
	kb, err := s.cfg.Store.Get(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	return &Build{Build: *kb}, nil
}

func statusOf(err error) int {
	if errors.Is(err, errors.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) handleGetBuild(c *gin.Context) {
	b, err := s.lookup(c, c.Param("id"))
	if err != nil {
		c.JSON(statusOf(err), ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, b.Build)
}

func (s *Server) handleBundle(c *gin.Context) {
	b, err := s.lookup(c, c.Param("id"))
	if err != nil {
		c.JSON(statusOf(err), ErrorResponse{Error: err.Error()})
		return
	}
	if b.Docs == nil {
		c.JSON(http.StatusGone, ErrorResponse{Error: "documents are no longer held for this build"})
		return
	}
	c.Header("Content-Type", "application/x-xz")
	c.Header("Content-Disposition", `attachment; filename="`+b.Name+`.tar.xz"`)
	c.Status(http.StatusOK)
	if _, err := bundle.Write(c.Writer, b.Name, b.ID, b.Docs); err != nil {
		logging.ErrorContext(c.Request.Context(), "failed to write bundle", "build", b.ID, "error", err)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	var builds []keystore.Build
	if s.cfg.Store != nil {
		var err error
		builds, err = s.cfg.Store.List(c.Request.Context(), 50)
		if err != nil {
			logging.ErrorContext(c.Request.Context(), "failed to list builds", "error", err)
		}
	}
	if builds == nil {
		builds = s.recentBuilds()
	}
	c.HTML(http.StatusOK, "index", gin.H{"Builds": builds})
}

// recentBuilds returns the in-memory builds, newest first.
func (s *Server) recentBuilds() []keystore.Build {
	var out []keystore.Build
	for _, b := range s.builds.Values() {
		out = append(out, b.Build)
	}
	slices.SortFunc(out, func(a, b keystore.Build) int {
		return b.Created.Compare(a.Created)
	})
	return out
}

func (s *Server) handleBuildPage(c *gin.Context) {
	b, err := s.lookup(c, c.Param("id"))
	if err != nil {
		c.String(statusOf(err), err.Error())
		return
	}
	exam := ""
	if b.Docs != nil {
		exam = b.Docs.Exam
	}
	c.HTML(http.StatusOK, "build", gin.H{"Build": b.Build, "Exam": exam})
}
