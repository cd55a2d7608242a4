package images

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"postpilot/helpers"
)

// Client generates illustration images for posts via the OpenAI images API
// and stores them under the uploads directory for posting and UI preview.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	size       string
	uploadsDir string
	logger     *slog.Logger
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Size   string `json:"size"`
	N      int    `json:"n"`
}

type generationResponse struct {
	Data []struct {
		URL     string `json:"url"`
		B64JSON string `json:"b64_json"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(apiKey, baseURL, model, size, uploadsDir string, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		size:       size,
		uploadsDir: uploadsDir,
		logger:     logger,
	}
}

// Generate creates a square, text-free illustration derived from the post
// content and returns the stored file path.
func (c *Client) Generate(ctx context.Context, postContent, model, size, customPrompt string) (string, error) {
	if model == "" {
		model = c.model
	}
	if size == "" {
		size = c.size
	}

	body := generationRequest{
		Model:  model,
		Prompt: buildPrompt(postContent, customPrompt),
		Size:   size,
		N:      1,
	}

	headers := map[string]string{
		"Authorization": "Bearer " + c.apiKey,
		"Content-Type":  "application/json",
	}

	resp, err := helpers.MakeHTTPRequest[generationResponse](
		ctx, c.logger, "POST", c.baseURL+"/images/generations", headers, nil, body,
	)
	if err != nil {
		return "", fmt.Errorf("image generation request failed: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("image generation failed: %s", resp.Error.Message)
	}
	if len(resp.Data) == 0 {
		return "", fmt.Errorf("image generation returned no data")
	}

	item := resp.Data[0]
	switch {
	case item.B64JSON != "":
		raw, err := base64.StdEncoding.DecodeString(item.B64JSON)
		if err != nil {
			return "", fmt.Errorf("invalid base64 image data: %w", err)
		}
		path, err := helpers.SaveImage(c.uploadsDir, raw, ".png")
		if err != nil {
			return "", err
		}
		c.logger.Info("Image generated", "model", model, "size", size, "path", path)
		return path, nil

	case item.URL != "":
		path, err := helpers.DownloadImage(c.uploadsDir, item.URL)
		if err != nil {
			return "", fmt.Errorf("failed to download generated image: %w", err)
		}
		c.logger.Info("Image generated", "model", model, "size", size, "path", path)
		return path, nil

	default:
		return "", fmt.Errorf("image generation returned neither url nor b64_json")
	}
}

func buildPrompt(postContent, customPrompt string) string {
	prompt := `Create a squared image to include together with the following social media post. Not text based. Nice, very visual and professional.

Post: ` + postContent + `

Requirements:
- Square format (1:1 aspect ratio)
- No text or words
- Professional and business-appropriate
- Visually appealing and modern
- Related to the post content theme
- High quality and polished appearance`

	if custom := strings.TrimSpace(customPrompt); custom != "" {
		prompt += "\n\nAdditional Guidelines:\n" + custom
	}
	return prompt
}
