package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"lingua-todo-backend/internal/ai"
	"lingua-todo-backend/internal/auth"
	"lingua-todo-backend/internal/config"
	"lingua-todo-backend/internal/db"
	"lingua-todo-backend/internal/store"
	"lingua-todo-backend/internal/todos"
)

var Version = "dev"

var (
	serveAddr   string
	serveConfig string
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "lingua-todo",
		Short:   "Multilingual todo backend with AI-assisted translation and subtask generation",
		Version: Version,
	}
	rootCmd.AddCommand(serveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&serveConfig, "config", "", "path to YAML config file")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close()

	st, err := store.New(database)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	log.Println("store ready at", cfg.DBPath)

	client := ai.New(ai.Mode(cfg.AIMode), cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.ProxyBaseURL)
	if cfg.OpenAIKey == "" {
		log.Println("no OpenAI key configured, AI operations run in demo mode")
	}

	svc := todos.NewService(st, client, cfg.OpenAIKey)
	handler := newRouter(cfg, st, client, svc)

	log.Println("API server is running on", cfg.Addr)
	return http.ListenAndServe(cfg.Addr, handler)
}

func newRouter(cfg *config.Config, st *store.Store, client *ai.Client, svc *todos.Service) http.Handler {
	secret := []byte(cfg.JWTSecret)
	mw := auth.New(secret)

	mux := http.NewServeMux()

	// Health endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// ----- AUTH API -----
	mux.HandleFunc("POST /auth/register", auth.RegisterHandler(st, secret))
	mux.HandleFunc("POST /auth/login", auth.LoginHandler(st, secret))
	mux.HandleFunc("POST /auth/logout", mw.Wrap(auth.LogoutHandler(st)))
	mux.HandleFunc("GET /auth/me", mw.Wrap(auth.MeHandler(st)))

	// ----- TODOS API -----
	mux.HandleFunc("GET /todos", mw.Wrap(todos.ListHandler(svc)))
	mux.HandleFunc("POST /todos", mw.Wrap(todos.CreateHandler(svc)))
	mux.HandleFunc("GET /todos/export", mw.Wrap(todos.ExportHandler(svc)))
	mux.HandleFunc("POST /todos/import", mw.Wrap(todos.ImportHandler(svc)))
	mux.HandleFunc("PATCH /todos/{id}", mw.Wrap(todos.UpdateHandler(svc)))
	mux.HandleFunc("DELETE /todos/{id}", mw.Wrap(todos.DeleteHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/toggle", mw.Wrap(todos.ToggleHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/subtasks", mw.Wrap(todos.AddSubtasksHandler(svc)))
	mux.HandleFunc("DELETE /todos/{id}/subtasks", mw.Wrap(todos.ClearSubtasksHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/subtasks/{subtaskID}/toggle", mw.Wrap(todos.ToggleSubtaskHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/translate", mw.Wrap(todos.TranslateHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/language", mw.Wrap(todos.SwitchLanguageHandler(svc)))
	mux.HandleFunc("POST /todos/{id}/language/original", mw.Wrap(todos.SwitchOriginalHandler(svc)))

	// ----- INTERMEDIARY ENDPOINTS -----
	// These handle OPTIONS and non-POST themselves.
	mux.HandleFunc("/translate", ai.TranslateHandler(client))
	mux.HandleFunc("/generate-subtasks", ai.GenerateSubtasksHandler(client))

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(mux)
}
