package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"portfolio-api/config"
	"portfolio-api/mail"
	"portfolio-api/rag"
	"portfolio-api/telemetry"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "portfolio-api",
		Short:         "Backend for the portfolio site: recruiter chat and contact form",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (optional)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	var (
		filePath string
		source   string
	)
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk, embed and upsert a CV document into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return ingest(cmd.Context(), cfg, filePath, source)
		},
	}
	ingestCmd.Flags().StringVar(&filePath, "file", "", "Path to a PDF, Markdown or text file")
	ingestCmd.Flags().StringVar(&source, "source", "", "Source name stored with each chunk (default: the file path)")
	_ = ingestCmd.MarkFlagRequired("file")

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question through the chat pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			return ask(cmd.Context(), cfg, strings.Join(args, " "))
		},
	}

	rootCmd.AddCommand(serveCmd, ingestCmd, askCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("command failed")
		stop()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	setupLogger(cfg.Log)
	for _, warning := range cfg.Validate() {
		log.Warn().Msg(warning)
	}
	return cfg, nil
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()
	}
	zerolog.DefaultContextLogger = &log.Logger
}

func serve(ctx context.Context, cfg *config.Config) error {
	shutdownTracing, err := telemetry.InitTracing(ctx, telemetry.TracingConfig{
		ServiceName:  "portfolio-api",
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SampleRate:   cfg.Tracing.SampleRate,
	})
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	// Clients are built once here and only read afterwards. A failure leaves
	// the endpoint answering with a configuration error instead of stopping
	// the whole site.
	var chat answerer
	if len(cfg.MissingChatCredentials()) == 0 {
		log.Info().Str("backend", cfg.Vector.Backend).Str("index", rag.IndexName).Msg("initializing chat providers")
		svc, closeIndex, err := newChatService(ctx, cfg)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize chat providers")
		} else {
			defer closeIndex()
			chat = svc
		}
	}

	var mailer mail.Sender
	if len(cfg.MissingContactCredentials()) == 0 {
		mailer = mail.NewResendSender(cfg.Resend.APIKey)
	}

	err = NewServer(cfg, chat, mailer).Run(ctx, cfg.Server)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func ingest(ctx context.Context, cfg *config.Config, path, source string) error {
	if cfg.OpenAI.Embedder != "simple" && cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("%s", missingVarsMessage([]string{config.EnvOpenAIKey}))
	}

	index, err := newIndex(ctx, cfg)
	if err != nil {
		return err
	}
	defer index.Close()

	n, err := rag.NewIngestor(newEmbedder(cfg), index).IngestFile(log.Logger.WithContext(ctx), path, source)
	if err != nil {
		return err
	}
	fmt.Printf("ingested %d chunks from %s into %s (%s)\n", n, path, rag.IndexName, cfg.Vector.Backend)
	return nil
}

func ask(ctx context.Context, cfg *config.Config, question string) error {
	svc, closeIndex, err := newChatService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeIndex()

	answer, err := svc.Answer(log.Logger.WithContext(ctx), question)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
