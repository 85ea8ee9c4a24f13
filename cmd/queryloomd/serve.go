package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/queryloom/queryloom/internal/api"
	"github.com/queryloom/queryloom/internal/config"
	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/dbcontext"
	"github.com/queryloom/queryloom/internal/descriptive"
	"github.com/queryloom/queryloom/internal/intent"
	"github.com/queryloom/queryloom/internal/interpreter"
	"github.com/queryloom/queryloom/internal/llmgw"
	"github.com/queryloom/queryloom/internal/orchestrator"
	"github.com/queryloom/queryloom/internal/planner"
	"github.com/queryloom/queryloom/internal/session"
	"github.com/queryloom/queryloom/internal/sqlexec"
	"github.com/queryloom/queryloom/internal/sqlgen"
	"github.com/queryloom/queryloom/internal/validator"
)

// maxInFlightLLMCalls bounds concurrent Anthropic calls so a burst of
// requests can't exhaust the provider's rate limit.
const maxInFlightLLMCalls = 8

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the queryloomd HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	fmt.Fprintf(os.Stdout, "queryloomd version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	schema, err := dbcontext.LoadSchema(cfg.Database.SchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	store, err := datastore.Open(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening dataset store: %w", err)
	}
	defer store.Close()

	gateway := llmgw.New(llmgw.NewAnthropicProvider(cfg.LLM.APIKey, cfg.LLM.Model, 0), maxInFlightLLMCalls)

	contextProvider := dbcontext.New(schema, store)
	classifier := intent.New(gateway)
	plan := planner.New(gateway)
	planValidator := validator.New()
	synthesizer := sqlgen.New(gateway)
	executor := sqlexec.New(store)
	debugger := sqlgen.NewDebugger(gateway)
	interp := interpreter.New(gateway)
	descResponder := descriptive.New(gateway)
	sessions := session.NewWithTTL(gateway, cfg.SessionTTL)

	go sessions.Run(ctx)

	orch := orchestrator.New(
		contextProvider, classifier, plan, planValidator, synthesizer,
		executor, debugger, interp, descResponder, sessions,
	)

	handler := api.NewHandler(orch)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stdout, "queryloomd listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stdout, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
