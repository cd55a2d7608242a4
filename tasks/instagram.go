package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"postpilot/helpers"
	"postpilot/models"
)

// InstagramClient publishes posts through the Instagram Graph API. Instagram
// requires at least one image; carousels take 2 to 10.
type InstagramClient struct {
	baseURL string
	logger  *slog.Logger
}

type graphResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type InstagramPayload struct {
	UserID      string
	AccessToken string
	Caption     string
	ImageURLs   []string
}

func NewInstagramClient(baseURL string, logger *slog.Logger) *InstagramClient {
	return &InstagramClient{baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

// Post creates the media container(s), publishes them and returns the
// published media id.
func (c *InstagramClient) Post(ctx context.Context, p InstagramPayload) (string, error) {
	if strings.TrimSpace(p.AccessToken) == "" {
		return "", fmt.Errorf("%w: instagram access token is required", models.ErrAuth)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return "", fmt.Errorf("%w: instagram user id is required", models.ErrAuth)
	}

	switch n := len(p.ImageURLs); {
	case n == 0:
		return "", fmt.Errorf("%w: instagram posts require at least one image", models.ErrValidation)
	case n == 1:
		containerID, err := c.createContainer(ctx, p, map[string]string{
			"image_url": p.ImageURLs[0],
			"caption":   p.Caption,
		})
		if err != nil {
			return "", err
		}
		return c.publish(ctx, p, containerID)
	case n > 10:
		return "", fmt.Errorf("%w: carousel posts require 2 to 10 images, got %d", models.ErrValidation, n)
	default:
		var children []string
		for _, imageURL := range p.ImageURLs {
			containerID, err := c.createContainer(ctx, p, map[string]string{
				"image_url":        imageURL,
				"is_carousel_item": "true",
			})
			if err != nil {
				return "", err
			}
			children = append(children, containerID)
		}
		carouselID, err := c.createContainer(ctx, p, map[string]string{
			"caption":    p.Caption,
			"media_type": "CAROUSEL",
			"children":   strings.Join(children, ","),
		})
		if err != nil {
			return "", err
		}
		return c.publish(ctx, p, carouselID)
	}
}

func (c *InstagramClient) createContainer(ctx context.Context, p InstagramPayload, fields map[string]string) (string, error) {
	params := url.Values{}
	params.Set("access_token", p.AccessToken)

	resp, err := helpers.MakeHTTPRequest[graphResponse](
		ctx, c.logger, "POST", c.baseURL+"/"+p.UserID+"/media", nil, params, fields,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrUpload, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: %s", models.ErrUpload, resp.Error.Message)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: failed to get media container id", models.ErrUpload)
	}
	return resp.ID, nil
}

func (c *InstagramClient) publish(ctx context.Context, p InstagramPayload, containerID string) (string, error) {
	params := url.Values{}
	params.Set("creation_id", containerID)
	params.Set("access_token", p.AccessToken)

	resp, err := helpers.MakeHTTPRequest[graphResponse](
		ctx, c.logger, "POST", c.baseURL+"/"+p.UserID+"/media_publish", nil, params, nil,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrPost, err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("%w: %s", models.ErrPost, resp.Error.Message)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("%w: media publish returned no id", models.ErrPost)
	}

	c.logger.Info("Instagram post published", "mediaId", resp.ID, "images", len(p.ImageURLs))
	return resp.ID, nil
}
