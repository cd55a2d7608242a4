package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"postpilot/models"
)

const maxCommentaryChars = 3000

// LinkedinClient posts text plus optional images through LinkedIn's
// versioned REST API.
type LinkedinClient struct {
	baseURL    string
	version    string // YYYYMM per LinkedIn docs
	httpClient *http.Client
	logger     *slog.Logger
}

type initUploadResponse struct {
	Value struct {
		UploadURL string `json:"uploadUrl"`
		Image     string `json:"image"`
	} `json:"value"`
}

type createPostBody struct {
	Author       string       `json:"author"`
	Commentary   string       `json:"commentary"`
	Visibility   string       `json:"visibility"`
	Lifecycle    string       `json:"lifecycleState"`
	Distribution distribution `json:"distribution"`
	Content      *postContent `json:"content,omitempty"`
	NoReshare    bool         `json:"isReshareDisabledByAuthor"`
}

type distribution struct {
	FeedDistribution  string   `json:"feedDistribution"`
	TargetEntities    []string `json:"targetEntities"`
	ThirdPartyChannel []string `json:"thirdPartyDistributionChannels"`
}

type postContent struct {
	Media      *mediaRef   `json:"media,omitempty"`
	MultiImage *multiImage `json:"multiImage,omitempty"`
}

type mediaRef struct {
	ID      string `json:"id"`
	AltText string `json:"altText,omitempty"`
}

type multiImage struct {
	Images []mediaRef `json:"images"`
}

func NewLinkedinClient(baseURL, version string, timeout time.Duration, logger *slog.Logger) *LinkedinClient {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &LinkedinClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Post uploads the payload's images, submits the post and returns the
// provider-assigned post URN. Errors are surfaced verbatim, no retries.
func (c *LinkedinClient) Post(ctx context.Context, p PostPayload) (string, error) {
	if strings.TrimSpace(p.AccessToken) == "" {
		return "", fmt.Errorf("%w: linkedin access token is required", models.ErrAuth)
	}
	if strings.TrimSpace(p.AuthorURN) == "" {
		return "", fmt.Errorf("%w: linkedin author URN is required", models.ErrAuth)
	}
	if len(p.Commentary) > maxCommentaryChars {
		return "", fmt.Errorf("%w: commentary is over %d characters", models.ErrValidation, maxCommentaryChars)
	}

	var imageURNs []string
	for i, path := range p.ImagePaths {
		urn, err := c.uploadImage(ctx, p, path)
		if err != nil {
			return "", fmt.Errorf("%w: image %d/%d: %v", models.ErrUpload, i+1, len(p.ImagePaths), err)
		}
		c.logger.Info("LinkedIn image uploaded", "path", path, "urn", urn)
		imageURNs = append(imageURNs, urn)
	}

	body := createPostBody{
		Author:     p.AuthorURN,
		Commentary: p.Commentary,
		Visibility: p.Visibility,
		Lifecycle:  "PUBLISHED",
		Distribution: distribution{
			FeedDistribution:  "MAIN_FEED",
			TargetEntities:    []string{},
			ThirdPartyChannel: []string{},
		},
		Content: buildContent(imageURNs, p.AltTexts),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPost, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/rest/posts", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPost, err)
	}
	c.setHeaders(req, p.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPost, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("%w: create post failed %d: %s", models.ErrPost, resp.StatusCode, string(respBody))
	}

	postURN := resp.Header.Get("x-restli-id")
	if postURN == "" {
		var created struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(respBody, &created) == nil {
			postURN = created.ID
		}
	}
	if postURN == "" {
		return "", fmt.Errorf("%w: could not determine the post URN from the response", models.ErrPost)
	}

	c.logger.Info("LinkedIn post created", "urn", postURN, "images", len(imageURNs))
	return postURN, nil
}

func (c *LinkedinClient) uploadImage(ctx context.Context, p PostPayload, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("image not found: %s", path)
	}

	uploadURL, imageURN, err := c.initializeUpload(ctx, p)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "PUT", uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+p.AccessToken)
	req.Header.Set("Content-Type", guessMime(path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("binary upload failed %d: %s", resp.StatusCode, string(respBody))
	}
	return imageURN, nil
}

func (c *LinkedinClient) initializeUpload(ctx context.Context, p PostPayload) (string, string, error) {
	body := map[string]any{
		"initializeUploadRequest": map[string]string{"owner": p.AuthorURN},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/rest/images?action=initializeUpload", bytes.NewBuffer(payload))
	if err != nil {
		return "", "", err
	}
	c.setHeaders(req, p.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("initializeUpload failed %d: %s", resp.StatusCode, string(respBody))
	}

	var initResp initUploadResponse
	if err := json.Unmarshal(respBody, &initResp); err != nil {
		return "", "", err
	}
	if initResp.Value.UploadURL == "" || initResp.Value.Image == "" {
		return "", "", fmt.Errorf("missing uploadUrl or image URN in response: %s", string(respBody))
	}
	return initResp.Value.UploadURL, initResp.Value.Image, nil
}

func (c *LinkedinClient) setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	req.Header.Set("LinkedIn-Version", c.version)
}

func buildContent(imageURNs []string, altTexts []string) *postContent {
	switch len(imageURNs) {
	case 0:
		return nil
	case 1:
		ref := mediaRef{ID: imageURNs[0]}
		if len(altTexts) > 0 {
			ref.AltText = altTexts[0]
		}
		return &postContent{Media: &ref}
	default:
		items := make([]mediaRef, 0, len(imageURNs))
		for i, urn := range imageURNs {
			ref := mediaRef{ID: urn}
			if i < len(altTexts) && altTexts[i] != "" {
				ref.AltText = altTexts[i]
			}
			items = append(items, ref)
		}
		return &postContent{MultiImage: &multiImage{Images: items}}
	}
}
