package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fpang/idea-studio/internal/chat"
	"github.com/fpang/idea-studio/internal/cli"
	"github.com/fpang/idea-studio/internal/config"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/logging"
	"github.com/fpang/idea-studio/internal/studio"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// CLI flags
var (
	modelFlag          string
	storeFlag          string
	skipValidationFlag bool
	dialogFlag         bool
	narrationDirFlag   string
)

// session is opened before every command that talks to the studio.
var session *cli.Session

// rootCmd is the main Cobra command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "idea-studio",
	Short: "AI creative assistant for short-video ideas, scripts and critiques",
	Long: `Idea Studio generates short-video concepts with Gemini, then turns a chosen
concept into a concept image, a shot-by-shot shooting script and a narrated
read-through. It also scores finished media work and design artifacts against
fixed rubrics.

The last idea list is saved between runs, so commands can refer to an idea by
its position in "idea-studio show" or by its ID.

Examples:
  idea-studio ideas --topic "cold brew" --audience "students" --goal "awareness"
  idea-studio images
  idea-studio script 2
  idea-studio narrate 2 --scene 1
  idea-studio export 2
  idea-studio assess --type short-film --goal "festival entry" --file cut.mp4
  idea-studio assess-design --concept "habit app" --audience runners --goal retention --pick`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: openSession,
	PersistentPostRun: closeSession,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Gemini text model (default "+chat.DefaultModelName+" or GEMINI_MODEL)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "Snapshot store: sqlite, dynamodb or memory (default STUDIO_STORE or sqlite)")
	rootCmd.PersistentFlags().BoolVar(&skipValidationFlag, "skip-validation", false, "Skip the API key probe call")
	rootCmd.PersistentFlags().BoolVar(&dialogFlag, "dialog", false, "Choose the export location with a native save dialog")
	rootCmd.PersistentFlags().StringVar(&narrationDirFlag, "narration-dir", "", "Directory for narration audio (default STUDIO_EXPORT_DIR)")

	rootCmd.AddCommand(
		ideasCmd, imageCmd, imagesCmd, scriptCmd, showCmd, exportCmd, narrateCmd,
		assessCmd, assessDesignCmd, rubricsCmd, loginCmd,
	)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, cli.Failure(userMessage(err)))
		os.Exit(1)
	}
}

func openSession(cmd *cobra.Command, args []string) error {
	logging.Init()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if modelFlag != "" {
		cfg.Models.Text = modelFlag
	}
	if storeFlag != "" {
		cfg.Store.Backend = storeFlag
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	sess, err := cli.Open(cmd.Context(), cfg, cli.Options{
		SkipValidation: skipValidationFlag,
		Dialog:         dialogFlag,
		NarrationDir:   narrationDirFlag,
		Narrated: func(path string) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.Success("Narration written to "+path))
		},
	})
	if err != nil {
		if cli.IsValidationError(err) {
			cli.HandleValidationError(err)
		}
		return err
	}
	session = sess
	return nil
}

func closeSession(cmd *cobra.Command, args []string) {
	if session == nil {
		return
	}
	if err := session.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close session")
	}
}

// userMessage maps a command error to the text shown on stderr. AI failures
// get the generic user-facing text; everything else is already readable.
func userMessage(err error) string {
	switch {
	case errors.Is(err, studio.ErrUnknownIdea):
		return "No such idea. Run `idea-studio show` to list the current ideas."
	case errors.Is(err, studio.ErrSuperseded):
		return "A newer request replaced this one."
	case errors.Is(err, domain.ErrEncoding), errors.Is(err, domain.ErrServiceCall),
		errors.Is(err, domain.ErrMalformedPayload), errors.Is(err, domain.ErrSchemaViolation),
		errors.Is(err, domain.ErrOutOfRangeScore):
		return domain.UserMessage(err)
	default:
		return err.Error()
	}
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Record who is using the studio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")
		if name == "" {
			name = cli.PromptForValue("Name", "")
		}
		if email == "" {
			email = cli.PromptForValue("Email", "")
		}
		user, err := session.Studio.Login(cmd.Context(), name, email)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Success(fmt.Sprintf("Logged in as %s <%s>", user.Name, user.Email)))
		return nil
	},
}

func init() {
	loginCmd.Flags().String("user", "", "Your name")
	loginCmd.Flags().String("email", "", "Your email address")
}
