package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fpang/idea-studio/internal/cli"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/prompt"
	"github.com/fpang/idea-studio/internal/studio"
	"github.com/spf13/cobra"
)

var (
	topicFlag    string
	audienceFlag string
	goalFlag     string
	durationFlag string
	sceneFlag    int
)

var ideasCmd = &cobra.Command{
	Use:   "ideas",
	Short: "Generate a fresh batch of short-video ideas",
	Long: `Generate a fresh batch of short-video ideas from a brief. The new batch
replaces the previous list, including its images and scripts. Missing brief
fields are prompted for interactively.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := prompt.IdeaInput{
			Topic:    valueOrPrompt(topicFlag, "Topic"),
			Audience: valueOrPrompt(audienceFlag, "Target audience"),
			Goal:     valueOrPrompt(goalFlag, "Goal"),
			Duration: durationFlag,
		}

		start := time.Now()
		ideas, err := session.Studio.GenerateIdeas(cmd.Context(), in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprint(out, cli.RenderIdeas(ideas, ""))
		fmt.Fprintln(out, cli.Success(fmt.Sprintf("%d ideas in %s", len(ideas), cli.FormatDurationShort(time.Since(start)))))
		return nil
	},
}

var imageCmd = &cobra.Command{
	Use:   "image <idea>",
	Short: "Generate (or regenerate) the concept image of one idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveIdea(args[0])
		if err != nil {
			return err
		}
		idea, err := session.Studio.GenerateImage(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Success("Image generated for "+idea.ConceptName))
		return nil
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Generate concept images for every idea concurrently",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ideas := session.Studio.Ideas()
		if len(ideas) == 0 {
			return fmt.Errorf("%w: no ideas yet", domain.ErrInputValidation)
		}
		names := make(map[string]string, len(ideas))
		for _, idea := range ideas {
			names[idea.ID] = idea.ConceptName
		}

		out := cmd.OutOrStdout()
		failed := 0
		for _, o := range session.Studio.GenerateAllImages(cmd.Context()) {
			if o.Err != nil {
				failed++
				fmt.Fprintln(out, cli.Failure(names[o.IdeaID]+": "+userMessage(o.Err)))
				continue
			}
			fmt.Fprintln(out, cli.Success(names[o.IdeaID]))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d images failed", failed, len(ideas))
		}
		return nil
	},
}

var scriptCmd = &cobra.Command{
	Use:   "script <idea>",
	Short: "Generate (or regenerate) the shooting script of one idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveIdea(args[0])
		if err != nil {
			return err
		}
		if err := session.Studio.SelectIdea(id); err != nil {
			return err
		}
		idea, err := session.Studio.GenerateScript(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderScript(idea.Script))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [idea]",
	Short: "List the current ideas, or show one idea in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			fmt.Fprint(out, cli.RenderIdeas(session.Studio.Ideas(), session.Studio.Selected()))
			if user, ok := session.Studio.User(); ok {
				fmt.Fprintln(out, "\nLogged in as "+user.Name)
			}
			return nil
		}
		id, err := resolveIdea(args[0])
		if err != nil {
			return err
		}
		idea, _ := session.Studio.Idea(id)
		fmt.Fprint(out, cli.RenderIdea(idea))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <idea>",
	Short: "Export an idea's shooting script as a text file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveIdea(args[0])
		if err != nil {
			return err
		}
		location, err := session.Studio.ExportScript(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), cli.Success("Script exported to "+location))
		return nil
	},
}

var narrateCmd = &cobra.Command{
	Use:   "narrate <idea>",
	Short: "Read one scene of an idea's script aloud",
	Long: `Synthesise the visual and audio description of one scene with the voice
that best matches STUDIO_VOICE_LOCALE and write it as a WAV file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := resolveIdea(args[0])
		if err != nil {
			return err
		}
		if err := session.Studio.Narrate(cmd.Context(), id, sceneFlag-1); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Narrating scene %d with %s (%s)...\n", sceneFlag, session.Voice.Name, session.Voice.Locale)
		session.Player.Wait()
		return nil
	},
}

func init() {
	ideasCmd.Flags().StringVarP(&topicFlag, "topic", "t", "", "What the videos are about")
	ideasCmd.Flags().StringVarP(&audienceFlag, "audience", "a", "", "Who the videos are for")
	ideasCmd.Flags().StringVarP(&goalFlag, "goal", "g", "", "What the videos should achieve")
	ideasCmd.Flags().StringVarP(&durationFlag, "duration", "d", "", "Target length, e.g. 30s (optional)")

	narrateCmd.Flags().IntVarP(&sceneFlag, "scene", "s", 1, "Scene number to narrate (1-based)")
}

func valueOrPrompt(value, label string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return cli.PromptForValue(label, "")
}

// resolveIdea accepts an idea ID or its 1-based position in the current list.
func resolveIdea(ref string) (string, error) {
	ideas := session.Studio.Ideas()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ideas) {
			return "", fmt.Errorf("%w: position %d (have %d ideas)", studio.ErrUnknownIdea, n, len(ideas))
		}
		return ideas[n-1].ID, nil
	}
	if _, ok := session.Studio.Idea(ref); !ok {
		return "", fmt.Errorf("%w: %s", studio.ErrUnknownIdea, ref)
	}
	return ref, nil
}
