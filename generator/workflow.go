package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"postpilot/models"
)

// Writer turns a request plus the fetched articles into a finished post. It
// runs a rank -> draft -> verify -> revise loop against the LLM and renders
// the approved draft under the character budget.
type Writer struct {
	llm           *LLMClient
	logger        *slog.Logger
	maxIterations int
}

type rankResult struct {
	TopIndices []int `json:"top_indices"`
}

type verifyResult struct {
	Verdict  string `json:"verdict"`
	Critique string `json:"critique"`
}

func NewWriter(llm *LLMClient, maxIterations int, logger *slog.Logger) *Writer {
	if maxIterations <= 0 {
		maxIterations = 2
	}
	return &Writer{llm: llm, logger: logger, maxIterations: maxIterations}
}

// Write produces the post text. It returns an error when the provider fails
// or produces an empty draft; the caller treats that as a fatal step.
func (w *Writer) Write(ctx context.Context, req models.GenerationRequest, articles []models.Article) (models.GeneratedPost, error) {
	if len(articles) == 0 {
		return models.GeneratedPost{}, fmt.Errorf("no articles found for the given filters")
	}

	selected, err := w.rank(ctx, req, articles)
	if err != nil {
		return models.GeneratedPost{}, err
	}

	body, used, err := w.draft(ctx, req, selected)
	if err != nil {
		return models.GeneratedPost{}, err
	}

	for iteration := 0; iteration < w.maxIterations; iteration++ {
		critique, err := w.verify(ctx, req, body, used)
		if err != nil {
			// Verification is advisory: a failed check never discards a draft.
			w.logger.Warn("Draft verification failed, keeping current draft", "error", err)
			break
		}
		if critique == "" {
			break
		}
		w.logger.Info("Revising draft", "iteration", iteration+1, "critique", critique)
		body, used, err = w.revise(ctx, req, body, critique, selected)
		if err != nil {
			return models.GeneratedPost{}, err
		}
	}

	rendered := renderOutput(body, used, req.OutputFormat, req.MaxChars, *req.IncludeLinks, *req.LinksInCharLimit)
	if strings.TrimSpace(rendered) == "" {
		return models.GeneratedPost{}, fmt.Errorf("model returned an empty post")
	}

	w.logger.Info("Post generated", "chars", utf8.RuneCountInString(rendered), "limit", req.MaxChars, "sources", len(used))
	return models.GeneratedPost{Text: rendered, Sources: used}, nil
}

func (w *Writer) rank(ctx context.Context, req models.GenerationRequest, articles []models.Article) ([]models.Article, error) {
	topK := req.TopK
	if topK > len(articles) {
		topK = len(articles)
	}

	var listing strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&listing, "[%d] Title: %s%s\nSource: %s\nPublished: %s\nSummary: %s\n\n",
			i, a.Title, companyTag(a), a.Source, a.PublishedAt, orDefault(a.Description, "N/A"))
	}

	companyCriteria := ""
	if len(req.CompanyFocus) > 0 {
		companyCriteria = "\n6. Company relevance: prioritize articles mentioning " + strings.Join(companyNames(req.CompanyFocus), ", ")
	}

	prompt := fmt.Sprintf(`Score and rank these articles for relevance and quality.

EVALUATION CRITERIA:
1. Term relevance: how well does it match the search terms?
2. Topic alignment: how relevant is it to the main topic?
3. Freshness and novelty: prefer recent, unique angles
4. Source quality: prioritize reputable sources
5. Information value: practical, actionable insights%s

Consider content complexity appropriate for: %s

Search terms: %s
Main topic: %s
Number to select: %d

Articles marked [Related to CompanyName] come from company verification lookups.

ARTICLES:
%s
Return JSON with:
- top_indices: list of %d article indices (most relevant first)`,
		companyCriteria, req.AudienceProfile, strings.Join(req.CleanTerms(), ", "),
		req.Topic, topK, listing.String(), topK)

	raw, err := w.llm.Chat(ctx, prompt, true)
	if err != nil {
		return nil, fmt.Errorf("article ranking failed: %w", err)
	}

	var ranked rankResult
	extractJSON(raw, &ranked)

	// Clamp out-of-range picks and pad with the leading articles when the
	// model returns fewer than asked.
	picked := make(map[int]bool)
	var indices []int
	for _, i := range ranked.TopIndices {
		if i >= 0 && i < len(articles) && !picked[i] {
			picked[i] = true
			indices = append(indices, i)
		}
	}
	for i := 0; len(indices) < topK && i < len(articles); i++ {
		if !picked[i] {
			picked[i] = true
			indices = append(indices, i)
		}
	}
	if len(indices) > topK {
		indices = indices[:topK]
	}

	selected := make([]models.Article, 0, len(indices))
	for _, i := range indices {
		selected = append(selected, articles[i])
	}
	return selected, nil
}

func (w *Writer) draft(ctx context.Context, req models.GenerationRequest, selected []models.Article) (string, []models.Article, error) {
	charLimitNote := fmt.Sprintf("Maximum %d characters for the body text", req.MaxChars)
	if *req.IncludeLinks && *req.LinksInCharLimit {
		charLimitNote += " (source links count toward this limit)"
	} else if *req.IncludeLinks {
		charLimitNote += " (source links are appended separately)"
	}

	prompt := fmt.Sprintf(`Create a social media post based on the provided articles.

IMPORTANT: you have %d articles available, but only use those most relevant to the topic.
List the article numbers you actually used at the end in this format: "USED_SOURCES: [1, 3, 5]"

CONTENT REQUIREMENTS:
- %s
- Language: %s (translate/adapt content from sources as needed)
- Tone: %s
- Write at a complexity level suitable for %s
- Focus on topic: %s
%s%s
SOURCE USAGE:
%s

FORMAT (%s):
%s
%s

STRUCTURE:
1. Compelling opening that establishes relevance
2. Key insights and developments from the most relevant sources
3. Analysis of implications and trends
4. Actionable takeaway or forward-looking conclusion

AVAILABLE ARTICLES:
%s
Write the content directly, then add "USED_SOURCES: [list of article numbers]" at the very end.`,
		len(selected), charLimitNote, req.Language, req.Register, req.AudienceProfile, req.Topic,
		customInstructions(req), companyInstructions(req),
		usageInstruction(req.ArticleUsage), req.OutputFormat, formatConstraint(req.OutputFormat),
		linksNote(*req.IncludeLinks), indexedFacts(selected))

	response, err := w.llm.Chat(ctx, prompt, false)
	if err != nil {
		return "", nil, fmt.Errorf("post drafting failed: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return "", nil, fmt.Errorf("model returned an empty completion")
	}

	body, usedIdx := splitUsedSources(response, len(selected))
	return body, pick(selected, usedIdx), nil
}

func (w *Writer) verify(ctx context.Context, req models.GenerationRequest, body string, used []models.Article) (string, error) {
	companyCheck := ""
	if len(req.CompanyFocus) > 0 {
		companyCheck = "\n9. Company integration: all of these companies must be mentioned naturally: " +
			strings.Join(companyNames(req.CompanyFocus), ", ")
	}

	prompt := fmt.Sprintf(`Review this content for accuracy and quality.

VERIFICATION CHECKLIST:
1. Factual accuracy: all claims traceable to source material
2. No speculation or unsupported statements
3. Language matches requirement: %s
4. Tone matches requirement: %s
5. Topic focus maintained: %s
6. Length within limit: %d characters
7. Format compliance: %s
8. Source usage follows the %s approach%s

CONTENT TO VERIFY:
%s

SOURCE MATERIAL (only used sources):
%s
Return JSON with:
- verdict: "approve" or "revise"
- critique: specific improvements needed (if revising)`,
		req.Language, req.Register, req.Topic, req.MaxChars, req.OutputFormat,
		req.ArticleUsage, companyCheck, body, factSheet(used))

	raw, err := w.llm.Chat(ctx, prompt, true)
	if err != nil {
		return "", err
	}

	var verdict verifyResult
	if !extractJSON(raw, &verdict) {
		return "", fmt.Errorf("unparsable verification response")
	}
	if strings.EqualFold(strings.TrimSpace(verdict.Verdict), "approve") {
		return "", nil
	}
	if verdict.Critique == "" {
		return "content needs revision for accuracy and compliance", nil
	}
	return verdict.Critique, nil
}

func (w *Writer) revise(ctx context.Context, req models.GenerationRequest, body, critique string, selected []models.Article) (string, []models.Article, error) {
	prompt := fmt.Sprintf(`Revise this content to address the identified issues.

ISSUES TO FIX:
%s

CURRENT CONTENT:
%s

REQUIREMENTS:
- Stay within %d characters for the body text
- Language: %s, Tone: %s
- Topic focus: %s
- Format: %s
- Source usage: %s%s%s

You may use different sources if needed. Available articles:
%s
Provide the revised content directly, then add "USED_SOURCES: [list of article numbers]" at the end.`,
		critique, body, req.MaxChars, req.Language, req.Register, req.Topic,
		req.OutputFormat, req.ArticleUsage, customInstructions(req), companyInstructions(req),
		indexedFacts(selected))

	response, err := w.llm.Chat(ctx, prompt, false)
	if err != nil {
		return "", nil, fmt.Errorf("post revision failed: %w", err)
	}

	revised, usedIdx := splitUsedSources(response, len(selected))
	return revised, pick(selected, usedIdx), nil
}

func usageInstruction(usage string) string {
	switch usage {
	case models.UsageDirectReference:
		return "Explicitly cite sources by name (e.g. 'According to TechCrunch...', 'Reuters reports...')."
	case models.UsageExamples:
		return "Use articles as illustrative examples and case studies to support broader insights."
	default:
		return "Synthesize information across sources into a cohesive narrative without naming specific outlets."
	}
}

func formatConstraint(format string) string {
	switch format {
	case models.FormatMarkdown:
		return "Use markdown formatting sparingly. Bold for emphasis, lists where appropriate."
	case models.FormatHTML:
		return "Simple HTML with <p>, <ul>, <li> tags only. No inline styles."
	default:
		return "Plain text only. No markdown, no formatting symbols, no URLs in body."
	}
}

func linksNote(includeLinks bool) string {
	if includeLinks {
		return "Note: source links will be automatically appended at the end."
	}
	return "Do not include any source links."
}

func customInstructions(req models.GenerationRequest) string {
	if req.ContentInstructions == "" {
		return ""
	}
	return "\nSPECIFIC CONTENT INSTRUCTIONS:\n" + req.ContentInstructions + "\n"
}

func companyInstructions(req models.GenerationRequest) string {
	if len(req.CompanyFocus) == 0 {
		return ""
	}
	var entries []string
	for _, name := range companyNames(req.CompanyFocus) {
		entries = append(entries, "- "+name+": "+req.CompanyFocus[name])
	}
	return `
MANDATORY COMPANY INTEGRATION:
You MUST incorporate and highlight these companies in the content:
` + strings.Join(entries, "\n") + `

Requirements:
- Naturally weave these companies into the narrative
- Connect their relevance to the topic and source material
- Ensure each company is meaningfully mentioned at least once
- Articles marked [Related to CompanyName] contain verified current information
`
}

func companyNames(focus map[string]string) []string {
	names := make([]string, 0, len(focus))
	for name := range focus {
		names = append(names, name)
	}
	// Stable prompt order keeps log diffs readable.
	sort.Strings(names)
	return names
}

func indexedFacts(articles []models.Article) string {
	var b strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&b, "[Article %d]%s\nTitle: %s\nURL: %s\nSource: %s\nPublished: %s\nContent: %s\n\n",
			i+1, companyTag(a), a.Title, a.URL, a.Source, a.PublishedAt,
			orDefault(a.Description, "No description available"))
	}
	return b.String()
}

func factSheet(articles []models.Article) string {
	var b strings.Builder
	for _, a := range articles {
		fmt.Fprintf(&b, "Title: %s\nURL: %s\nSource: %s\nPublished: %s\nContent: %s\n\n",
			a.Title, a.URL, a.Source, a.PublishedAt,
			orDefault(a.Description, "No description available"))
	}
	return b.String()
}

func companyTag(a models.Article) string {
	if a.Company == "" {
		return ""
	}
	return " [Related to " + a.Company + "]"
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func pick(articles []models.Article, indices []int) []models.Article {
	out := make([]models.Article, 0, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(articles) {
			out = append(out, articles[i])
		}
	}
	if len(out) == 0 {
		return articles
	}
	return out
}
