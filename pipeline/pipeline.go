package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"postpilot/config"
	"postpilot/models"
	"postpilot/news"
	"postpilot/tasks"
)

// ArticleSearcher fetches candidate articles for the request.
type ArticleSearcher interface {
	Search(ctx context.Context, q news.Query) ([]models.Article, error)
	CompanyLookup(ctx context.Context, company, topic string, terms []string, limit int) ([]models.Article, error)
}

// PostWriter synthesizes the post text from the fetched articles.
type PostWriter interface {
	Write(ctx context.Context, req models.GenerationRequest, articles []models.Article) (models.GeneratedPost, error)
}

// ImageMaker produces an illustration for the post and returns its path.
type ImageMaker interface {
	Generate(ctx context.Context, postContent, model, size, customPrompt string) (string, error)
}

// LinkedinPoster submits the post to LinkedIn and returns the post URN.
type LinkedinPoster interface {
	Post(ctx context.Context, p tasks.PostPayload) (string, error)
}

// InstagramPoster publishes the post to Instagram and returns the media id.
type InstagramPoster interface {
	Post(ctx context.Context, p tasks.InstagramPayload) (string, error)
}

// Runner sequences search -> synthesize -> image -> post for one request.
// Each request runs an independent pipeline; there is no cross-request state.
type Runner struct {
	Config    *config.Config
	Search    ArticleSearcher
	Writer    PostWriter
	Images    ImageMaker
	Linkedin  LinkedinPoster
	Instagram InstagramPoster
	Logger    *slog.Logger
}

const companyArticleLimit = 2

// Run executes the pipeline. A returned error means no usable post exists
// (validation, configuration, search or generation failure); failures in the
// optional image and posting steps are reported in the response message while
// the generated text is kept.
func (r *Runner) Run(ctx context.Context, req models.GenerationRequest) (models.PostResponse, error) {
	req.Normalize()

	// Everything below the first two checks talks to providers; reject
	// malformed or unconfigured requests before any network call.
	if err := req.Validate(); err != nil {
		return models.PostResponse{}, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	if err := r.Config.CheckSearch(); err != nil {
		return models.PostResponse{}, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}
	if err := r.Config.CheckGeneration(); err != nil {
		return models.PostResponse{}, fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	articles, err := r.searchArticles(ctx, req)
	if err != nil {
		return models.PostResponse{}, err
	}

	post, err := r.Writer.Write(ctx, req, articles)
	if err != nil {
		return models.PostResponse{}, fmt.Errorf("%w: %v", models.ErrGenerationFailed, err)
	}

	var notes []string

	generatedImage := ""
	if req.GenerateImage {
		path, err := r.Images.Generate(ctx, post.Text, req.ImageModel, req.ImageSize, req.CustomImagePrompt)
		if err != nil {
			r.Logger.Warn("Image generation failed, continuing without image", "error", err)
			notes = append(notes, "image generation failed: "+err.Error())
		} else {
			generatedImage = path
			post.ImagePath = path
			req.ImagePaths = append(req.ImagePaths, path)
			req.AltTexts = append(req.AltTexts, "AI-generated illustration for the post")
		}
	}

	message := "Post generated successfully"
	if generatedImage != "" {
		message += " with AI-generated image"
	}

	postURN := ""
	if req.ShouldPost {
		urn, err := r.Linkedin.Post(ctx, tasks.PostPayload{
			Commentary:  post.Text,
			AuthorURN:   req.AuthorURN,
			AccessToken: req.LinkedinToken,
			Visibility:  req.Visibility,
			ImagePaths:  req.ImagePaths,
			AltTexts:    req.AltTexts,
		})
		if err != nil {
			r.Logger.Error("LinkedIn posting failed", "error", err)
			notes = append(notes, "LinkedIn posting failed: "+err.Error())
		} else {
			postURN = urn
			message += " and posted to LinkedIn"
		}

		if req.InstagramUserID != "" || req.InstagramToken != "" {
			mediaID, err := r.postToInstagram(ctx, req, post.Text)
			if err != nil {
				r.Logger.Error("Instagram posting failed", "error", err)
				notes = append(notes, "Instagram posting failed: "+err.Error())
			} else {
				message += " and published to Instagram"
				if postURN == "" {
					postURN = mediaID
				}
			}
		}

		// The generated file was only needed for the upload; posted copies
		// live with the provider. Unposted images age out via the cron sweep.
		if generatedImage != "" && postURN != "" {
			if err := os.Remove(generatedImage); err != nil {
				r.Logger.Warn("Failed to clean up generated image", "path", generatedImage, "error", err)
			}
		}
	}

	if len(notes) > 0 {
		message += " (" + strings.Join(notes, "; ") + ")"
	}

	return models.PostResponse{
		Success:     true,
		PostContent: post.Text,
		PostURN:     postURN,
		Message:     message,
	}, nil
}

func (r *Runner) searchArticles(ctx context.Context, req models.GenerationRequest) ([]models.Article, error) {
	terms := req.CleanTerms()
	if len(terms) == 0 {
		terms = []string{req.Topic}
	}

	articles, err := r.Search.Search(ctx, news.Query{
		Terms:          terms,
		Country:        req.Country,
		StartDate:      req.StartDate,
		DataTypes:      req.DataTypes,
		SourceLanguage: req.SourceLanguage,
		MaxResults:     req.MaxFetch,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSearchUnavailable, err)
	}
	if len(articles) == 0 {
		return nil, fmt.Errorf("%w: no articles found for the given filters", models.ErrSearchUnavailable)
	}

	// Company lookups enrich the pool; their failure never blocks the post.
	if *req.EnableCompanySearch && len(req.CompanyFocus) > 0 {
		seen := make(map[string]bool, len(articles))
		for _, a := range articles {
			seen[a.URL] = true
		}
		for company := range req.CompanyFocus {
			found, err := r.Search.CompanyLookup(ctx, company, req.Topic, terms, 5)
			if err != nil {
				r.Logger.Warn("Company lookup failed", "company", company, "error", err)
				continue
			}
			added := 0
			for _, a := range found {
				if added >= companyArticleLimit || seen[a.URL] {
					continue
				}
				seen[a.URL] = true
				articles = append(articles, a)
				added++
			}
		}
	}

	return articles, nil
}

func (r *Runner) postToInstagram(ctx context.Context, req models.GenerationRequest, caption string) (string, error) {
	var imageURLs []string
	for _, path := range req.ImagePaths {
		imageURLs = append(imageURLs, tasks.PublicImageURL(r.Config.APIHost, path))
	}
	return r.Instagram.Post(ctx, tasks.InstagramPayload{
		UserID:      req.InstagramUserID,
		AccessToken: req.InstagramToken,
		Caption:     caption,
		ImageURLs:   imageURLs,
	})
}
