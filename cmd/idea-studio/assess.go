package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fpang/idea-studio/internal/cli"
	"github.com/fpang/idea-studio/internal/logging"
	"github.com/fpang/idea-studio/internal/result"
	"github.com/fpang/idea-studio/internal/rubric"
	"github.com/fpang/idea-studio/internal/studio"
	"github.com/spf13/cobra"
)

// Work flags shared by both assessment commands.
var (
	textFlag      string
	textFileFlag  string
	fileFlag      string
	pickFlag      bool
	mediaTypeFlag string
	conceptFlag   string
)

var assessCmd = &cobra.Command{
	Use:   "assess",
	Short: "Score a media work against the rubric of its media type",
	Long: `Score a film, video, photo or artwork against the rubric of its media type.
Provide the work as pasted text (--text or --text-file) or as an attached file
(--file or --pick). If both are given, the attached file wins.

Run "idea-studio rubrics" for the media types and their criteria. Unknown
media types are scored with the "` + rubric.Fallback + `" rubric.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &studio.AssessmentForm{MediaType: mediaTypeFlag, Goal: goalFlag}
		if err := fillWork(cmd.Context(), &form.WorkField); err != nil {
			return err
		}

		res, err := session.Studio.Assess(cmd.Context(), form)
		if err != nil {
			return err
		}
		title := "Assessment: " + res.MediaType
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderScores(title, result.Lines(res), res.Feedback))
		return nil
	},
}

var assessDesignCmd = &cobra.Command{
	Use:   "assess-design",
	Short: "Score a design artifact on visual appeal, clarity, originality, composition and fit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		form := &studio.DesignForm{Concept: conceptFlag, Audience: audienceFlag, Goal: goalFlag}
		if err := fillWork(cmd.Context(), &form.WorkField); err != nil {
			return err
		}

		res, err := session.Studio.AssessDesign(cmd.Context(), form)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderScores("Design Assessment", result.DesignLines(res), res.Feedback))
		return nil
	},
}

var rubricsCmd = &cobra.Command{
	Use:   "rubrics",
	Short: "List media types and their scoring criteria",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init()
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderRubrics())
	},
}

func init() {
	for _, c := range []*cobra.Command{assessCmd, assessDesignCmd} {
		c.Flags().StringVar(&textFlag, "text", "", "The work as pasted text")
		c.Flags().StringVar(&textFileFlag, "text-file", "", "Read the pasted text from a file")
		c.Flags().StringVarP(&fileFlag, "file", "f", "", "Attach the work as a file (image, video, audio, PDF)")
		c.Flags().BoolVar(&pickFlag, "pick", false, "Choose the file to attach with a native file picker")
		c.Flags().StringVarP(&goalFlag, "goal", "g", "", "What the work is meant to achieve")
	}
	assessCmd.Flags().StringVar(&mediaTypeFlag, "type", "", "Media type, e.g. film, short-film, photography")
	assessDesignCmd.Flags().StringVar(&conceptFlag, "concept", "", "The design concept")
	assessDesignCmd.Flags().StringVarP(&audienceFlag, "audience", "a", "", "Who the design is for")
}

// fillWork sets text first and the attachment last so an attached file wins,
// matching the form's last-set-wins rule.
func fillWork(ctx context.Context, work *studio.WorkField) error {
	text := textFlag
	if textFileFlag != "" {
		data, err := os.ReadFile(textFileFlag)
		if err != nil {
			return fmt.Errorf("read %s: %w", textFileFlag, err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) != "" {
		work.SetText(text)
	}

	path := fileFlag
	if pickFlag {
		picked, err := cli.PickAttachment("Select the work to assess")
		if err != nil {
			return err
		}
		path = picked
	}
	if path == "" {
		return nil
	}
	resolved, err := cli.ValidateAndResolveFile(path)
	if err != nil {
		return err
	}
	return work.AttachFile(ctx, resolved)
}
