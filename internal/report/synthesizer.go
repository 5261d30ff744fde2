// Package report assembles the sales-fit synthesis pipeline: enrich the
// lead with a web search, load the offer catalog, prompt the completion
// provider, and bound the output for the delivery channel.
package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/beitans8/telegram-ig-agent/internal/catalog"
	"github.com/beitans8/telegram-ig-agent/internal/errors"
	"github.com/beitans8/telegram-ig-agent/internal/lead"
	"github.com/beitans8/telegram-ig-agent/internal/llm"
	"github.com/beitans8/telegram-ig-agent/internal/search"
)

// MaxChars is the hard output ceiling imposed by the delivery channel.
const MaxChars = 4000

// Temperature keeps the synthesis deterministic-leaning.
const Temperature = 0.35

const systemPersona = "You are a sharp, realistic sales strategist."

// queryHint is the fixed disjunctive identity/profile discovery suffix.
const queryHint = "LinkedIn OR interview OR website OR TikTok OR YouTube"

// Searcher is the web enrichment boundary.
type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, error)
}

// Completer is the completion provider boundary.
type Completer interface {
	Complete(ctx context.Context, model string, messages []llm.Message, temperature float64) (string, llm.Usage, error)
}

// Report is the synthesized output plus the token usage that produced it.
type Report struct {
	Text  string
	Usage llm.Usage
}

// Synthesizer runs the single-pass report pipeline. It is stateless across
// invocations: every call re-runs enrichment and reloads the catalog so the
// report always reflects the latest data.
type Synthesizer struct {
	Search      Searcher
	LLM         Completer
	CatalogPath string
	Model       string
}

// Generate produces a sales-fit report for the captured lead. Provider
// failures surface as typed errors so the caller can isolate one chat's
// failure from the rest of the process.
func (s *Synthesizer) Generate(ctx context.Context, l lead.Lead) (*Report, error) {
	results, err := s.Search.Search(ctx, BuildQuery(l.Username))
	if err != nil {
		return nil, errors.NewEnrichmentFailed(err)
	}

	cat, err := catalog.Load(s.CatalogPath)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(l.Username, results, cat)

	messages := []llm.Message{
		{Role: "system", Content: systemPersona},
		{Role: "user", Content: prompt},
	}

	text, usage, err := s.LLM.Complete(ctx, s.Model, messages, Temperature)
	if err != nil {
		return nil, errors.NewSynthesisFailed(err)
	}

	return &Report{
		Text:  Truncate(strings.TrimSpace(text), MaxChars),
		Usage: usage,
	}, nil
}

// BuildQuery forms the deterministic search query for a username.
func BuildQuery(username string) string {
	return username + " " + queryHint
}

// BuildPrompt embeds the lead, the raw search results, and the raw catalog
// into the single synthesis prompt with the fixed task instructions and
// compliance rules.
func BuildPrompt(username string, results []search.Result, cat catalog.Catalog) string {
	var web strings.Builder
	for _, r := range results {
		fmt.Fprintf(&web, "- %s | %s | %s\n", r.Title, r.URL, r.Description)
	}
	if web.Len() == 0 {
		web.WriteString("(no public web results found)\n")
	}

	return fmt.Sprintf(`Analyze this Instagram lead:
Username: %s

Public web results:
%s
Catalog:
%s
Tasks:
1) Fit score 0-100 + budget (Low/Med/High) with evidence
2) Top 3 authority gaps
3) Recommend ONE primary offer and ONE upsell (choose from catalog, allowed=true)
4) Include cost, sell price, profit
5) Write DM1 + Follow-up1 + Follow-up2
Rules: No illegal actions, no private data, no scraping bypass, no guarantees of editorial.
`, username, web.String(), cat.Render())
}

// Truncate hard-cuts s to at most limit characters on a rune boundary.
// Truncating an already short string is a no-op; no attempt is made to
// preserve message structure.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
