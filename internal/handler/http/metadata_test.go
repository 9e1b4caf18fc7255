package http

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMetadata(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head>
	<title>  Example Domain  </title>
	<meta name="description" content="An example page for tests">
	<meta name="keywords" content="go, testing, , web">
	<meta property="og:description" content="OG fallback">
</head>
<body><h1>Hello</h1><title>decoy</title></body>
</html>`

	meta, err := extractMetadata(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "Example Domain", meta.Title)
	assert.Equal(t, "An example page for tests", meta.Description)
	assert.Equal(t, []string{"go", "testing", "web"}, meta.Tags)
}

func TestExtractMetadataOGFallbacks(t *testing.T) {
	page := `<html><head>
	<meta property="og:title" content="OG Title">
	<meta property="og:description" content="OG description">
</head><body></body></html>`

	meta, err := extractMetadata(strings.NewReader(page))
	require.NoError(t, err)

	assert.Equal(t, "OG Title", meta.Title)
	assert.Equal(t, "OG description", meta.Description)
	assert.Empty(t, meta.Tags)
}

func TestExtractMetadataEmptyPage(t *testing.T) {
	meta, err := extractMetadata(strings.NewReader("<html><head></head><body></body></html>"))
	require.NoError(t, err)

	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Description)
	assert.Empty(t, meta.Tags)
}

func TestSplitKeywordsCap(t *testing.T) {
	content := "a,b,c,d,e,f,g,h,i,j,k,l"
	tags := splitKeywords(content)
	assert.Len(t, tags, 10, "keyword tags are capped")
	assert.Equal(t, "a", tags[0])
	assert.Equal(t, "j", tags[9])
}
