package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/result"
	"github.com/fpang/idea-studio/internal/rubric"
)

var (
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")
	colorRed    = lipgloss.Color("#fb4934")
	colorDim    = lipgloss.Color("#928374")
	colorHeader = lipgloss.Color("#fe8019")
)

var (
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
	styleRed    = lipgloss.NewStyle().Foreground(colorRed)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleBold   = lipgloss.NewStyle().Bold(true)
)

const barWidth = 10

// FormatDurationShort formats a duration in a short format (M:SS or H:MM:SS).
func FormatDurationShort(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// Header renders a section title with an underline.
func Header(text string) string {
	return fmt.Sprintf("%s\n%s", styleHeader.Render(text), styleDim.Render(strings.Repeat("─", lipgloss.Width(text))))
}

// Failure renders a user-facing failure message.
func Failure(msg string) string {
	return styleRed.Render("✗ " + msg)
}

// Success renders a confirmation line.
func Success(msg string) string {
	return styleGreen.Render("✓ " + msg)
}

// ScoreBar draws a fixed-width bar whose filled share is the score's percent.
func ScoreBar(percent int) string {
	filled := max(0, min(barWidth, percent*barWidth/100))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func scoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 8:
		return styleGreen
	case score >= 5:
		return styleYellow
	default:
		return styleRed
	}
}

// RenderScores renders one row per criterion followed by the feedback.
func RenderScores(title string, lines []result.ScoreLine, feedback domain.Feedback) string {
	var b strings.Builder
	b.WriteString(Header(title))
	b.WriteString("\n")

	labelWidth := 0
	scores := make(map[string]int, len(lines))
	for _, l := range lines {
		labelWidth = max(labelWidth, lipgloss.Width(shortLabel(l.Label)))
		scores[l.Key] = l.Score
	}
	for _, l := range lines {
		label := shortLabel(l.Label)
		fmt.Fprintf(&b, "%s%s  %s %2d/10\n",
			label, strings.Repeat(" ", labelWidth-lipgloss.Width(label)),
			scoreStyle(l.Score).Render(ScoreBar(l.Percent)), l.Score)
	}
	fmt.Fprintf(&b, "%s %.1f/10\n\n", styleBold.Render("Average:"), result.Average(scores))

	fmt.Fprintf(&b, "%s\n%s\n\n", styleBold.Render("Strengths"), feedback.Strengths)
	fmt.Fprintf(&b, "%s\n%s\n", styleBold.Render("Improvements"), feedback.Improvements)
	return b.String()
}

// shortLabel keeps the criterion name before its description.
func shortLabel(label string) string {
	name, _, _ := strings.Cut(label, ":")
	return name
}

// RenderIdeas renders the idea list; the selected idea is marked.
func RenderIdeas(ideas []domain.Idea, selected string) string {
	if len(ideas) == 0 {
		return styleDim.Render("No ideas yet. Run `idea-studio ideas` to generate some.") + "\n"
	}
	var b strings.Builder
	b.WriteString(Header("Ideas"))
	b.WriteString("\n")
	for i, idea := range ideas {
		marker := " "
		if idea.ID == selected {
			marker = styleHeader.Render("›")
		}
		var extras []string
		if idea.ImageURL != "" {
			extras = append(extras, "image")
		}
		if idea.HasScript() {
			extras = append(extras, fmt.Sprintf("script: %d scenes", len(idea.Script)))
		}
		fmt.Fprintf(&b, "%s %d. %s %s\n", marker, i+1, styleBold.Render(idea.ConceptName), styleDim.Render("("+idea.ID+")"))
		fmt.Fprintf(&b, "     %s · %s\n", idea.Format, idea.Hook)
		if len(extras) > 0 {
			fmt.Fprintf(&b, "     %s\n", styleDim.Render(strings.Join(extras, ", ")))
		}
	}
	return b.String()
}

// RenderIdea renders one idea in full, including its script.
func RenderIdea(idea domain.Idea) string {
	var b strings.Builder
	b.WriteString(Header(idea.ConceptName))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Format:"), idea.Format)
	fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Hook:"), idea.Hook)
	fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Plot:"), idea.ShortPlot)
	fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Visual & audio:"), idea.VisualAudioDirection)
	if idea.ImageURL != "" {
		fmt.Fprintf(&b, "%s %s\n", styleBold.Render("Image:"), styleDim.Render(fmt.Sprintf("%d-byte data URL", len(idea.ImageURL))))
	}
	if idea.HasScript() {
		b.WriteString("\n")
		b.WriteString(RenderScript(idea.Script))
	}
	return b.String()
}

// RenderScript renders scenes as numbered blocks.
func RenderScript(scenes []domain.ScriptScene) string {
	var b strings.Builder
	b.WriteString(Header("Shooting Script"))
	b.WriteString("\n")
	for i, sc := range scenes {
		fmt.Fprintf(&b, "%s %s\n", styleHeader.Render(fmt.Sprintf("%d.", i+1)),
			styleBold.Render(fmt.Sprintf("Scene %s / Shot %s", sc.Scene, sc.Shot)))
		fmt.Fprintf(&b, "   %s\n", styleDim.Render(sc.CameraAngle+" · "+sc.CameraMovement+" · "+sc.ApproxDuration))
		fmt.Fprintf(&b, "   %s\n", sc.VisualDescription)
		fmt.Fprintf(&b, "   %s %s\n", styleDim.Render("♪"), sc.Audio)
	}
	return b.String()
}

// RenderRubrics lists every media type and its criteria, then the design rubric.
func RenderRubrics() string {
	var b strings.Builder
	for _, mediaType := range rubric.MediaTypes() {
		b.WriteString(Header(mediaType))
		b.WriteString("\n")
		for _, c := range rubric.CriteriaFor(mediaType) {
			fmt.Fprintf(&b, "  %s %s\n", styleDim.Render(c.Key), c.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString(Header("design"))
	b.WriteString("\n")
	for _, c := range rubric.DesignCriteria() {
		fmt.Fprintf(&b, "  %s %s\n", styleDim.Render(c.Key), c.Label)
	}
	return b.String()
}
