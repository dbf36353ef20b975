package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schooldirectory/internal/config"
)

func TestS3Store_KeyPrefix(t *testing.T) {
	s, err := NewS3Store(config.S3Config{
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "test",
		SecretKey: "test",
		Bucket:    "schools",
		Region:    "us-east-1",
		Prefix:    "schoolImages",
	})
	require.NoError(t, err)

	assert.Equal(t, "schoolImages/1_a.png", s.key("1_a.png"))

	s.prefix = ""
	assert.Equal(t, "1_a.png", s.key("1_a.png"))
}

func TestS3Store_RejectsPathNames(t *testing.T) {
	s, err := NewS3Store(config.S3Config{Bucket: "schools", Region: "us-east-1"})
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "../escape.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidName)
}
