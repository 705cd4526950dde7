package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mal-ai/internal/models"
)

type generateOptions struct {
	topic        string
	familiarity  string
	mode         string
	minutes      int
	instructions string
	language     string
	files        []string
	out          string
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a lesson or quiz",
	Long: `Generate a lesson or quiz and print it, or write it as a PDF with --out.
Reference PDFs given with --file are read for text and, when tesseract is
installed, for text inside their images.`,
	Example: `  malai generate --topic Photosynthesis --familiarity Beginner --mode Lesson
  malai generate --topic "Graph theory" --familiarity advanced --mode quiz --time 45 --file notes.pdf --out quiz.pdf`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var extractCmd = &cobra.Command{
	Use:   "extract [file...]",
	Short: "Print the normalized reference text of PDF files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.topic, "topic", "t", "", "Topic to cover")
	f.StringVar(&genOpts.familiarity, "familiarity", "", "Beginner, Intermediate or Advanced")
	f.StringVarP(&genOpts.mode, "mode", "m", "", "Lesson or Quiz")
	f.IntVar(&genOpts.minutes, "time", models.DefaultTimeMinutes,
		fmt.Sprintf("Time budget in minutes (%d-%d)", models.MinTimeMinutes, models.MaxTimeMinutes))
	f.StringVar(&genOpts.instructions, "instructions", "", "Additional instructions")
	f.StringVar(&genOpts.language, "language", "", "Response language")
	f.StringArrayVarP(&genOpts.files, "file", "f", nil, "Reference PDF (repeatable)")
	f.StringVarP(&genOpts.out, "out", "o", "", "Write the result as a PDF to this path")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(extractCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	a, err := newApp(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	req := models.GenerationRequest{
		Topic:        genOpts.topic,
		Familiarity:  models.Familiarity(genOpts.familiarity),
		Mode:         models.Mode(genOpts.mode),
		TimeMinutes:  genOpts.minutes,
		Instructions: genOpts.instructions,
		Language:     genOpts.language,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	docs, err := a.documents.ReadFiles(genOpts.files)
	if err != nil {
		return err
	}

	ctx := a.log.WithContext(cmd.Context())
	result, err := a.content.Generate(ctx, req, docs)
	if err != nil {
		return err
	}

	if genOpts.out == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Content)
		return nil
	}

	data, err := a.pdf.Render(result.Content)
	if err != nil {
		return err
	}
	if err := os.WriteFile(genOpts.out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", genOpts.out, err)
	}
	zerolog.Ctx(ctx).Info().Str("path", genOpts.out).Msg("Wrote PDF")
	cmd.Printf("Wrote %s\n", genOpts.out)
	return nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	a, err := newApp(configPath, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	docs, err := a.documents.ReadFiles(args)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), a.content.ExtractReference(a.log.WithContext(cmd.Context()), docs))
	return nil
}
