package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceholder(t *testing.T) {
	p := Placeholder{BaseURL: "http://localhost:8080/api/files/"}

	put, err := p.PresignPut(context.Background(), "a/b.jpg", "image/jpeg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/files/upload/a/b.jpg", put)

	get, err := p.PresignGet(context.Background(), "a/b.jpg", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/api/files/a/b.jpg", get)
}

// Presigning is local signing; no request reaches the endpoint.
func TestS3Presigner_SignsAgainstEndpoint(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), S3Config{
		Bucket:    "media",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)

	raw, err := p.PresignPut(context.Background(), "u/f.png", "image/png", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/media/u/f.png", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.True(t, strings.Contains(u.Query().Get("X-Amz-Credential"), "minioadmin"))

	get, err := p.PresignGet(context.Background(), "u/f.png", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, get, "X-Amz-Signature=")
}
