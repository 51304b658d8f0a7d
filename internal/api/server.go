// Package api serves the ingest pipeline over HTTP with fiber.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cleared-dev/intake/internal/buildinfo"
	"github.com/cleared-dev/intake/internal/dedupe"
	"github.com/cleared-dev/intake/internal/importer"
	"github.com/cleared-dev/intake/internal/logger"
	"github.com/cleared-dev/intake/internal/model"
	"github.com/cleared-dev/intake/internal/pipeline"
)

// Options configures a Server.
type Options struct {
	Ingester    *importer.Ingester
	Pipeline    pipeline.Options
	BodyLimitMB int
	Logger      zerolog.Logger
}

// Server wraps a fiber app exposing the ingest endpoints.
type Server struct {
	app      *fiber.App
	ingester *importer.Ingester
	pipeline pipeline.Options
	log      zerolog.Logger
}

// DuplicatesRequest is the body of POST /api/duplicates.
type DuplicatesRequest struct {
	Transactions []model.Transaction `json:"transactions"`
}

// ErrorResponse is returned for requests that never reach the pipeline.
type ErrorResponse struct {
	Error string `json:"error"`
}

// New builds a server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		ingester: opts.Ingester,
		pipeline: opts.Pipeline,
		log:      opts.Logger,
	}
	if s.ingester == nil {
		s.ingester = importer.NewIngester(importer.DefaultRegistry(), importer.DefaultOptions())
	}

	limit := opts.BodyLimitMB
	if limit <= 0 {
		limit = 10
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "intake",
		BodyLimit:             limit << 20,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.requestLogger)
	s.app.Get("/api/health", s.handleHealth)
	s.app.Post("/api/ingest", s.handleIngest)
	s.app.Post("/api/duplicates", s.handleDuplicates)
	return s
}

// App exposes the underlying fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("serving ingest API")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	c.SetUserContext(logger.WithContext(c.UserContext(), s.log))

	err := c.Next()

	status := c.Response().StatusCode()
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
	}
	s.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("elapsed", time.Since(start)).
		Msg("request")
	return err
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	} else {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(ErrorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleIngest(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file'.")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded file.")
	}
	defer f.Close()

	opts := s.pipeline
	if c.FormValue("dedupe") == "false" {
		opts.Dedupe = false
	}

	out, err := pipeline.Run(c.UserContext(), s.ingester, f, fh.Filename, opts)
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if !out.Validation.IsValid {
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(out)
}

func (s *Server) handleDuplicates(c *fiber.Ctx) error {
	var req DuplicatesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body: "+err.Error())
	}
	if req.Transactions == nil {
		return fiber.NewError(fiber.StatusBadRequest, "Field 'transactions' is required.")
	}
	return c.JSON(dedupe.Detect(req.Transactions))
}
