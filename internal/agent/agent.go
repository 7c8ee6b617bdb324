// Package agent drives the generation collaborator: proposing candidate
// implication pairs, refining assembled chains, and generating
// counterpoints. Every response is parsed defensively and validated;
// generation failures degrade (empty candidates, unrefined fallback),
// they never abort a run.
package agent

import (
	"fmt"
	"os"

	"github.com/pkrasavin/contrario/internal/llm"
)

// Agent wraps an LLM provider for the three generation passes. A nil
// provider disables all of them.
type Agent struct {
	provider llm.Provider
	verbose  bool
}

// New creates an agent over the given provider. provider may be nil.
func New(provider llm.Provider, verbose bool) *Agent {
	return &Agent{provider: provider, verbose: verbose}
}

// Enabled reports whether a generation provider is configured.
func (a *Agent) Enabled() bool {
	return a != nil && a.provider != nil
}

func (a *Agent) warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}
