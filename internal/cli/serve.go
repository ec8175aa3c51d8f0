package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mgpai22/subtrans/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the translation pipeline over HTTP.

Endpoints:
  GET  /api/health
  POST /api/translate   multipart: file, target_language, source_language
  POST /api/stats       {"original", "translated"}
  POST /api/verify      {"original", "processed"}
  POST /api/format      {"content", "max_lines", "max_line_length"}
  POST /api/define      {"words", "language"}
  POST /api/save        {"name", "content"}
  GET  /metrics

Saved files go to --output-dir as <name>-tr.srt.

Examples:
  subtrans serve
  subtrans serve --listen :9000 --provider anthropic --output-dir translations`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().
		String("listen", ":8080", "Address to listen on")
	serveCmd.Flags().
		String("output-dir", "data", "Directory for saved subtitle files")
	addProviderFlags(serveCmd)
	addPipelineFlags(serveCmd)
	addLookupFlags(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	oracle, svc, err := newOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(oracle, svc, server.Options{
		Listen:            cfg.Server.Listen,
		OutputDir:         cfg.OutputDir,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		MaxUploadBytes:    cfg.Server.MaxUploadBytes,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		Document:          documentOptions(cfg),
		LookupMaxAttempts: cfg.Lookup.MaxAttempts,
		LookupMaxWords:    cfg.Lookup.MaxWords,
	}, logger)

	return srv.Run(ctx)
}
