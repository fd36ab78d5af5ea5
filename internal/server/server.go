// Package server exposes the todo index over a JSON HTTP API for the
// dashboard frontends (list, kanban, calendar views).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillmd/quill/internal/core/index"
	"github.com/quillmd/quill/internal/core/todo"
	"github.com/quillmd/quill/internal/core/writeback"
	"github.com/quillmd/quill/internal/quill"
)

// Server is the HTTP API over a TodoService.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	todos      *quill.TodoService
	log        zerolog.Logger
}

// New creates a Server listening on addr once started.
func New(addr string, todos *quill.TodoService, log zerolog.Logger) *Server {
	s := &Server{
		addr:  addr,
		todos: todos,
		log:   log.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", s.handleRoot)
	mux.HandleFunc("GET /todos", s.handleTodos)
	mux.HandleFunc("GET /todos/{id}", s.handleTodo)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /tags", s.handleTags)
	mux.HandleFunc("GET /files", s.handleFiles)
	mux.HandleFunc("GET /kanban", s.handleKanban)
	mux.HandleFunc("GET /calendar", s.handleCalendar)
	mux.HandleFunc("GET /outline", s.handleOutline)
	mux.HandleFunc("POST /toggle", s.handleToggle)
	mux.HandleFunc("POST /refresh", s.handleRefresh)

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Start begins serving in the background. It returns once the listener
// is bound, so Addr() is valid afterwards.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	s.log.Info().Str("addr", listener.Addr().String()).Msg("starting api server")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("api server failed")
		}
	}()

	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down api server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		s.writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"message": "quill api",
		"endpoints": []string{
			"/todos", "/stats", "/tags", "/files",
			"/kanban", "/calendar", "/outline", "/toggle", "/refresh",
		},
	})
}

func (s *Server) handleTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := index.Filter{
		Status: index.Status(q.Get("status")),
		Tag:    q.Get("tag"),
		File:   q.Get("file"),
		Search: q.Get("search"),
		Sort:   index.Sort(q.Get("sort")),
	}
	if filter.Status == "" {
		filter.Status = index.StatusAll
	}
	if !filter.Status.IsValid() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", filter.Status))
		return
	}
	if filter.Sort != "" && !filter.Sort.IsValid() {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid sort %q", filter.Sort))
		return
	}
	if v := q.Get("priority"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "priority must be an integer")
			return
		}
		filter.MinPriority = p
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		filter.Limit = n
	}

	todos := s.todos.List(r.Context(), filter)
	if todos == nil {
		todos = []todo.Todo{}
	}
	s.writeJSON(w, http.StatusOK, todos)
}

func (s *Server) handleTodo(w http.ResponseWriter, r *http.Request) {
	t, ok := s.todos.Get(r.Context(), r.PathValue("id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "todo not found")
		return
	}
	s.writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.todos.Stats(r.Context()))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	tags := s.todos.Tags(r.Context())
	if tags == nil {
		tags = []index.TagCount{}
	}
	s.writeJSON(w, http.StatusOK, tags)
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	files := s.todos.Files(r.Context())
	if files == nil {
		files = []string{}
	}
	s.writeJSON(w, http.StatusOK, files)
}

// handleKanban buckets todos by status and priority for the board view.
func (s *Server) handleKanban(w http.ResponseWriter, r *http.Request) {
	board := map[string][]todo.Todo{
		"backlog":     {},
		"todo":        {},
		"in_progress": {},
		"done":        {},
	}

	for _, t := range s.todos.List(r.Context(), index.Filter{Status: index.StatusAll}) {
		switch {
		case t.Completed:
			board["done"] = append(board["done"], t)
		case t.Priority >= 3:
			board["in_progress"] = append(board["in_progress"], t)
		case t.Priority >= 1:
			board["todo"] = append(board["todo"], t)
		default:
			board["backlog"] = append(board["backlog"], t)
		}
	}

	s.writeJSON(w, http.StatusOK, board)
}

// handleCalendar groups dated todos by due date.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	calendar := map[string][]todo.Todo{}
	for _, t := range s.todos.List(r.Context(), index.Filter{Status: index.StatusAll}) {
		if t.DueDate != "" {
			calendar[t.DueDate] = append(calendar[t.DueDate], t)
		}
	}
	s.writeJSON(w, http.StatusOK, calendar)
}

func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	file := r.URL.Query().Get("file")
	if file == "" {
		s.writeError(w, http.StatusBadRequest, "file parameter is required")
		return
	}

	outline, err := s.todos.Outline(r.Context(), file)
	if err != nil {
		if errors.Is(err, writeback.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, outline)
}

type toggleRequest struct {
	File       string `json:"file"`
	LineNumber int    `json:"line_number"`
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := s.todos.Toggle(r.Context(), req.File, req.LineNumber)
	if err != nil {
		switch {
		case errors.Is(err, writeback.ErrNotFound):
			s.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, writeback.ErrStaleReference):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, writeback.ErrTooLarge):
			s.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	idx, err := s.todos.Rescan(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":       len(idx.Todos()),
		"warnings":    len(idx.Warnings()),
		"last_update": idx.GeneratedAt(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
