package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkrasavin/contrario/internal/model"
)

const footer = "Generated by contrario. Verdicts describe coverage consistency, not ground truth."

// Renderer writes reports as JSON files, Markdown files, and terminal
// summaries.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes any report as indented JSON.
func (r *Renderer) RenderJSON(v any, path string) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderMarkdown writes the implication report as a Markdown document.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Implication Analysis\n\n")
	fmt.Fprintf(&b, "**Statement:** %s\n\n", report.Statement)
	fmt.Fprintf(&b, "%s\n\n", report.HighLevelSummary)

	if len(report.ImplicationChains) == 0 {
		fmt.Fprintf(&b, "_No implication chains were identified._\n")
	}

	for i, chain := range report.ImplicationChains {
		fmt.Fprintf(&b, "## Chain %d\n\n", i+1)
		fmt.Fprintf(&b, "%s\n\n", chain.Description)
		fmt.Fprintf(&b, "**Verdict:** %s\n\n", chain.OverallAssessment)

		for j, step := range chain.Steps {
			fmt.Fprintf(&b, "### Step %d\n\n", j+1)
			fmt.Fprintf(&b, "- **Premise:** %s\n", step.Premise)
			fmt.Fprintf(&b, "- **Conclusion:** %s\n", step.Conclusion)
			fmt.Fprintf(&b, "- **Assessment:** %s\n", step.Assessment)
			if len(step.SupportingSources) > 0 {
				fmt.Fprintf(&b, "- **Supporting:**\n")
				for _, u := range step.SupportingSources {
					fmt.Fprintf(&b, "  - %s\n", u)
				}
			}
			if len(step.RefutingSources) > 0 {
				fmt.Fprintf(&b, "- **Refuting:**\n")
				for _, u := range step.RefutingSources {
					fmt.Fprintf(&b, "  - %s\n", u)
				}
			}
			b.WriteString("\n")
		}

		if chain.Notes != "" {
			fmt.Fprintf(&b, "_%s_\n\n", chain.Notes)
		}
	}

	if r.includeFooter {
		fmt.Fprintf(&b, "---\n%s\n", footer)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// RenderSummary prints a short terminal summary of the report.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Printf("\nStatement: %s\n", report.Statement)
	fmt.Printf("Chains: %d\n", len(report.ImplicationChains))
	for i, chain := range report.ImplicationChains {
		support, refute := 0, 0
		for _, step := range chain.Steps {
			support += len(step.SupportingSources)
			refute += len(step.RefutingSources)
		}
		fmt.Printf("  %d. [%s] %s (support: %d, refute: %d)\n",
			i+1, chain.OverallAssessment, chain.Description, support, refute)
	}
	fmt.Printf("\n%s\n", report.HighLevelSummary)
}

// RenderCounterpointSummary prints a short terminal summary of the
// counterpoint report.
func (r *Renderer) RenderCounterpointSummary(report *model.CounterpointReport) {
	fmt.Printf("\nStatement: %s\n", report.Statement)
	fmt.Printf("Counterpoints: %d\n", len(report.Counterpoints))
	for i, cp := range report.Counterpoints {
		origin := "sources"
		if cp.UsesGeneralKnowledge {
			origin = "general knowledge"
		}
		fmt.Printf("  %d. [%s/%s] chain %d step %d: %s (%s)\n",
			i+1, cp.Type, cp.Strength, cp.TargetChainIndex+1, cp.TargetStepIndex+1, cp.Text, origin)
	}
	fmt.Printf("\n%s\n", report.HighLevelSummary)
}
