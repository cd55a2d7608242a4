package models

import (
	"errors"
	"strings"
)

const (
	VisibilityPublic      = "PUBLIC"
	VisibilityConnections = "CONNECTIONS"
)

const (
	UsageDirectReference = "direct_reference"
	UsageSynthesis       = "informational_synthesis"
	UsageExamples        = "examples"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// GenerationRequest is the body accepted by /generate-post and /generate-only.
type GenerationRequest struct {
	Terms               []string          `json:"terms" form:"terms"`
	Topic               string            `json:"topic" form:"topic"`
	AudienceProfile     string            `json:"audience_profile" form:"audience_profile"`
	Language            string            `json:"language" form:"language"`
	Register            string            `json:"register" form:"register"`
	CompanyFocus        map[string]string `json:"company_focus" form:"company_focus"`
	ContentInstructions string            `json:"content_instructions" form:"content_instructions"`
	Country             string            `json:"country" form:"country"`
	StartDate           string            `json:"start_date" form:"start_date"`
	DataTypes           []string          `json:"data_types" form:"data_types"`
	SourceLanguage      string            `json:"source_language" form:"source_language"`
	EnableCompanySearch *bool             `json:"enable_company_search" form:"enable_company_search"`
	MaxFetch            int               `json:"max_fetch" form:"max_fetch"`
	TopK                int               `json:"top_k" form:"top_k"`
	MaxChars            int               `json:"max_chars" form:"max_chars"`
	ArticleUsage        string            `json:"article_usage" form:"article_usage"`
	IncludeLinks        *bool             `json:"include_links" form:"include_links"`
	LinksInCharLimit    *bool             `json:"links_in_char_limit" form:"links_in_char_limit"`
	OutputFormat        string            `json:"output_format" form:"output_format"`

	ShouldPost    bool     `json:"should_post" form:"should_post"`
	LinkedinToken string   `json:"linkedin_token" form:"linkedin_token"`
	AuthorURN     string   `json:"author_urn" form:"author_urn"`
	ImagePaths    []string `json:"image_paths" form:"image_paths"`
	AltTexts      []string `json:"alt_texts" form:"alt_texts"`
	Visibility    string   `json:"visibility" form:"visibility"`

	InstagramUserID string `json:"instagram_user_id" form:"instagram_user_id"`
	InstagramToken  string `json:"instagram_token" form:"instagram_token"`

	GenerateImage     bool   `json:"generate_image" form:"generate_image"`
	ImageModel        string `json:"image_model" form:"image_model"`
	ImageSize         string `json:"image_size" form:"image_size"`
	CustomImagePrompt string `json:"custom_image_prompt" form:"custom_image_prompt"`
}

// PostResponse is the terminal object returned to the caller.
type PostResponse struct {
	Success     bool   `json:"success"`
	PostContent string `json:"post_content"`
	PostURN     string `json:"post_urn,omitempty"`
	Message     string `json:"message"`
}

// Article is one search result. Immutable once fetched, lives for one request.
type Article struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
	// Company is set on company-verification lookups so prompts can tag them.
	Company string `json:"company,omitempty"`
}

// GeneratedPost is the synthesizer output consumed by the posters.
type GeneratedPost struct {
	Text      string
	ImagePath string
	Sources   []Article
}

// Normalize fills the defaults the original form UI filled client-side, so
// bare API calls behave the same as UI submissions.
func (r *GenerationRequest) Normalize() {
	if r.AudienceProfile == "" {
		r.AudienceProfile = "professionals"
	}
	if r.Language == "" {
		r.Language = "English"
	}
	if r.Register == "" {
		r.Register = "professional"
	}
	if r.MaxFetch <= 0 {
		r.MaxFetch = 30
	}
	if r.TopK <= 0 {
		r.TopK = 5
	}
	if r.MaxChars == 0 {
		r.MaxChars = 1900
	}
	if r.ArticleUsage == "" {
		r.ArticleUsage = UsageSynthesis
	}
	if r.OutputFormat == "" {
		r.OutputFormat = FormatText
	}
	if r.Visibility == "" {
		r.Visibility = VisibilityPublic
	}
	if len(r.DataTypes) == 0 {
		r.DataTypes = []string{"news", "blog"}
	}
	if r.EnableCompanySearch == nil {
		r.EnableCompanySearch = boolPtr(true)
	}
	if r.IncludeLinks == nil {
		r.IncludeLinks = boolPtr(true)
	}
	if r.LinksInCharLimit == nil {
		r.LinksInCharLimit = boolPtr(true)
	}
}

// Validate rejects malformed requests before any provider call is made.
func (r *GenerationRequest) Validate() error {
	if r.MaxChars <= 0 {
		return errors.New("max_chars must be greater than zero")
	}
	if strings.TrimSpace(r.Topic) == "" && !hasTerm(r.Terms) {
		return errors.New("a topic or at least one search term is required")
	}
	switch r.Visibility {
	case VisibilityPublic, VisibilityConnections:
	default:
		return errors.New("visibility must be PUBLIC or CONNECTIONS")
	}
	switch r.ArticleUsage {
	case UsageDirectReference, UsageSynthesis, UsageExamples:
	default:
		return errors.New("article_usage must be direct_reference, informational_synthesis or examples")
	}
	switch r.OutputFormat {
	case FormatText, FormatMarkdown, FormatHTML:
	default:
		return errors.New("output_format must be text, markdown or html")
	}
	return nil
}

// CleanTerms returns the search terms with blanks stripped.
func (r *GenerationRequest) CleanTerms() []string {
	var out []string
	for _, t := range r.Terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func hasTerm(terms []string) bool {
	for _, t := range terms {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool { return &b }
