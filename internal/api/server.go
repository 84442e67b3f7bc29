package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MikeSquared-Agency/promptpin/internal/config"
	"github.com/MikeSquared-Agency/promptpin/internal/generator"
	"github.com/MikeSquared-Agency/promptpin/internal/processor"
	"github.com/MikeSquared-Agency/promptpin/internal/prompt"
	"github.com/MikeSquared-Agency/promptpin/internal/tikapi"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
	maxBodyBytes       = 64 << 10
)

// Harvester runs harvests and serves cached results.
type Harvester interface {
	Run(ctx context.Context, feed, trigger string) (*processor.Result, error)
	Cached(ctx context.Context, feed string) ([]prompt.ExtractedPrompt, bool)
	Invalidate(ctx context.Context, feed string)
}

// Author writes prompts on request.
type Author interface {
	GeneratePrompt(ctx context.Context, topic string) (*generator.AuthoredPrompt, error)
	GeneratePromptsForCategory(ctx context.Context, category string, count int) ([]generator.AuthoredPrompt, error)
	EnhancePrompt(ctx context.Context, text string) (string, error)
}

type RecentSource interface {
	RecentPrompts(ctx context.Context, limit int) ([]prompt.ExtractedPrompt, error)
}

type Server struct {
	router    *chi.Mux
	port      int
	harvester Harvester
	author    Author
	recent    RecentSource
	configErr error
	logger    *slog.Logger
}

// NewServer wires the HTTP surface. author and recent may be nil, in which
// case their routes answer 503. A non-nil configErr makes harvest routes fail
// with it before any upstream call.
func NewServer(port int, apiToken string, h Harvester, author Author, recent RecentSource, configErr error, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:    router,
		port:      port,
		harvester: h,
		author:    author,
		recent:    recent,
		configErr: configErr,
		logger:    logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/promptpin/status", s.status)

	router.Get("/api/tiktok", s.tiktok)
	router.Get("/api/tiktok/trending", s.trending)

	router.Route("/api/prompts", func(r chi.Router) {
		r.Get("/recent", s.recentPrompts)
		r.Group(func(r chi.Router) {
			r.Use(bearerAuth(apiToken))
			r.Post("/generate", s.generatePrompt)
			r.Post("/generate/category", s.generateCategory)
			r.Post("/enhance", s.enhancePrompt)
		})
	})

	return s
}

// HTTPServer returns an http.Server for the router on the configured port.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	if s.configErr != nil {
		status = "unconfigured"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"agent":      "promptpin",
		"status":     status,
		"generation": s.author != nil,
		"archive":    s.recent != nil,
	})
}

func (s *Server) tiktok(w http.ResponseWriter, r *http.Request) {
	feed := r.URL.Query().Get("type")
	if feed == "" {
		feed = processor.FeedTrending
	}
	s.serveFeed(w, r, feed)
}

func (s *Server) trending(w http.ResponseWriter, r *http.Request) {
	s.serveFeed(w, r, processor.FeedTrending)
}

// serveFeed answers from the cache unless ?refresh=true, and harvests live
// otherwise.
func (s *Server) serveFeed(w http.ResponseWriter, r *http.Request, feed string) {
	if s.configErr != nil || s.harvester == nil {
		err := s.configErr
		if err == nil {
			err = processor.ErrNoSource
		}
		s.logger.Error("harvest refused", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch TikTok videos", err)
		return
	}

	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	if !refresh {
		if prompts, ok := s.harvester.Cached(r.Context(), feed); ok {
			w.Header().Set("X-Cache", "HIT")
			writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
			return
		}
	}

	res, err := s.harvester.Run(r.Context(), feed, "api")
	if err != nil {
		s.logger.Error("harvest failed", "feed", feed, "error", err)
		// A forced refresh that fails must not leave the old list to be
		// served as fresh.
		if refresh {
			s.harvester.Invalidate(r.Context(), feed)
		}
		writeError(w, harvestStatus(err), "Failed to fetch TikTok videos", err)
		return
	}
	w.Header().Set("X-Cache", "MISS")
	writeJSON(w, http.StatusOK, map[string]any{"prompts": res.Prompts})
}

func harvestStatus(err error) int {
	var se *tikapi.StatusError
	var ve *config.ValidationError
	switch {
	case errors.Is(err, processor.ErrUnsupportedFeed):
		return http.StatusBadRequest
	case errors.As(err, &ve), errors.Is(err, processor.ErrNoSource):
		return http.StatusInternalServerError
	case errors.As(err, &se) && se.StatusCode >= 400:
		return se.StatusCode
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) recentPrompts(w http.ResponseWriter, r *http.Request) {
	if s.recent == nil {
		writeError(w, http.StatusServiceUnavailable, "Archive unavailable", errors.New("no database configured"))
		return
	}

	limit := defaultRecentLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", fmt.Errorf("limit must be a positive integer, got %q", v))
			return
		}
		limit = min(n, maxRecentLimit)
	}

	prompts, err := s.recent.RecentPrompts(r.Context(), limit)
	if err != nil {
		s.logger.Error("recent prompts query failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load prompts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

type generateRequest struct {
	Topic string `json:"topic"`
}

type categoryRequest struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type enhanceRequest struct {
	PromptText string `json:"promptText"`
}

func (s *Server) generatePrompt(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}
	p, err := s.author.GeneratePrompt(r.Context(), req.Topic)
	if err != nil {
		s.authorError(w, "Failed to generate prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompt": p})
}

func (s *Server) generateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !s.decode(w, r, &req) {
		return
	}
	prompts, err := s.author.GeneratePromptsForCategory(r.Context(), req.Category, req.Count)
	if err != nil {
		s.authorError(w, "Failed to generate prompts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"prompts": prompts})
}

func (s *Server) enhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	text, err := s.author.EnhancePrompt(r.Context(), req.PromptText)
	if err != nil {
		s.authorError(w, "Failed to enhance prompt", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"promptText": text})
}

// decode reads a JSON body into v, answering the request itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if s.author == nil {
		writeError(w, http.StatusServiceUnavailable, "Generation unavailable", generator.ErrNoLLM)
		return false
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return false
	}
	return true
}

func (s *Server) authorError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, generator.ErrEmptyInput):
		status = http.StatusBadRequest
	case errors.Is(err, generator.ErrNoLLM):
		status = http.StatusServiceUnavailable
	}
	if status >= 500 {
		s.logger.Error(strings.ToLower(msg), "error", err)
	}
	writeError(w, status, msg, err)
}

// bearerAuth requires "Authorization: Bearer <token>" when token is set.
func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if token == "" {
			return next
		}
		want := []byte("Bearer " + token)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get("Authorization"))
			if subtle.ConstantTimeCompare(got, want) != 1 {
				writeError(w, http.StatusUnauthorized, "Unauthorized", errors.New("missing or invalid bearer token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	writeJSON(w, status, map[string]string{
		"error":   msg,
		"message": err.Error(),
	})
}
