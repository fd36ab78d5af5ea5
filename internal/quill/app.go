package quill

import (
	"github.com/rs/zerolog"

	"github.com/quillmd/quill/internal/core/config"
	"github.com/quillmd/quill/internal/core/writeback"
)

// App is the central entry point for all quill operations. Commands,
// the TUI, and the HTTP server consume App instead of cherry-picking
// raw dependencies.
type App struct {
	Todos  *TodoService
	Config *config.Config
}

// NewApp constructs an App from the loaded configuration.
func NewApp(cfg *config.Config, log zerolog.Logger) *App {
	scanner := NewScanner(cfg, log)
	engine := writeback.New(cfg.Dir, cfg.MaxFileSize, log)

	return &App{
		Todos:  NewTodoService(scanner, engine, cfg.Dir, log),
		Config: cfg,
	}
}
