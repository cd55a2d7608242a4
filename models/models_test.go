package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	req := GenerationRequest{Topic: "AI"}
	req.Normalize()

	assert.Equal(t, "professionals", req.AudienceProfile)
	assert.Equal(t, "English", req.Language)
	assert.Equal(t, "professional", req.Register)
	assert.Equal(t, 30, req.MaxFetch)
	assert.Equal(t, 5, req.TopK)
	assert.Equal(t, 1900, req.MaxChars)
	assert.Equal(t, UsageSynthesis, req.ArticleUsage)
	assert.Equal(t, FormatText, req.OutputFormat)
	assert.Equal(t, VisibilityPublic, req.Visibility)
	assert.Equal(t, []string{"news", "blog"}, req.DataTypes)

	require.NotNil(t, req.IncludeLinks)
	require.NotNil(t, req.LinksInCharLimit)
	require.NotNil(t, req.EnableCompanySearch)
	assert.True(t, *req.IncludeLinks)
	assert.True(t, *req.LinksInCharLimit)
	assert.True(t, *req.EnableCompanySearch)
}

func TestNormalizeKeepsExplicitValues(t *testing.T) {
	off := false
	req := GenerationRequest{
		Topic:        "AI",
		MaxChars:     500,
		TopK:         2,
		IncludeLinks: &off,
	}
	req.Normalize()

	assert.Equal(t, 500, req.MaxChars)
	assert.Equal(t, 2, req.TopK)
	assert.False(t, *req.IncludeLinks)
}

func TestValidateRejectsMissingTopicAndTerms(t *testing.T) {
	req := GenerationRequest{Terms: []string{"  ", ""}}
	req.Normalize()

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "topic or at least one search term")
}

func TestValidateRejectsNegativeMaxChars(t *testing.T) {
	req := GenerationRequest{Topic: "AI", MaxChars: -5}
	req.Normalize()

	require.Error(t, req.Validate())
}

func TestValidateRejectsBadVisibility(t *testing.T) {
	req := GenerationRequest{Topic: "AI", Visibility: "FRIENDS"}
	req.Normalize()

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "visibility")
}

func TestValidateAcceptsTermsWithoutTopic(t *testing.T) {
	req := GenerationRequest{Terms: []string{"AI supply chain"}}
	req.Normalize()

	require.NoError(t, req.Validate())
}

func TestCleanTerms(t *testing.T) {
	req := GenerationRequest{Terms: []string{" AI ", "", "fintech", "  "}}
	assert.Equal(t, []string{"AI", "fintech"}, req.CleanTerms())
}
