// Package cli wires configuration, logging and services into the malai
// command tree.
package cli

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mal-ai/internal/config"
	"mal-ai/internal/db"
	"mal-ai/internal/ingest"
	"mal-ai/internal/logging"
	"mal-ai/internal/ocr"
	"mal-ai/internal/prompt"
	"mal-ai/internal/services"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "malai",
	Short: "Generate lessons and quizzes with an LLM",
	Long: `malai builds a lesson or a quiz on a topic for a given familiarity level and
time budget, optionally grounded in the text and images of PDF documents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the services a command needs.
type app struct {
	cfg       config.Config
	log       zerolog.Logger
	content   *services.ContentService
	documents *services.DocumentService
	pdf       *services.PDFService
	conn      *sql.DB
}

func (a *app) Close() error {
	if a.conn == nil {
		return nil
	}
	return a.conn.Close()
}

// newApp is swapped out in tests.
var newApp = buildApp

func buildApp(path string, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)

	conn, err := db.Open(cfg.MemoDatabase)
	if err != nil {
		return nil, fmt.Errorf("open memo database: %w", err)
	}

	prompts, err := prompt.NewBuilder()
	if err != nil {
		conn.Close()
		return nil, err
	}

	var recognizer ingest.Recognizer
	tess := ocr.NewTesseract(ocr.Config{Binary: cfg.TesseractPath, Language: cfg.TesseractLang})
	if tess.Available() {
		recognizer = tess
	} else {
		log.Warn().Str("binary", cfg.TesseractPath).Msg("Tesseract not found, images in documents will be skipped")
	}
	extractor := ingest.NewExtractor(nil, recognizer, logging.Reporter(log))

	ai := services.NewAIService(cfg.LLMKey, cfg.LLMModel, cfg.LLMEndpoint, cfg.LLMTimeout)
	if cfg.LLMKey == "" {
		log.Warn().Msg("LLM_API_KEY is not set, generation requests will fail")
	}
	gen := services.NewMemoGenerator(ai, services.NewSQLCache(conn))

	return &app{
		cfg:       cfg,
		log:       log,
		content:   services.NewContentService(extractor, prompts, gen),
		documents: services.NewDocumentService(int64(cfg.MaxUploadMB) << 20),
		pdf:       services.NewPDFService(),
		conn:      conn,
	}, nil
}
