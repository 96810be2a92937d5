package archive

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	f.input = input
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.body = data
	if f.err != nil {
		return nil, f.err
	}
	return &manager.UploadOutput{Location: "https://bucket.example/" + aws.ToString(input.Key)}, nil
}

type fakeMedia map[string]string

func (f fakeMedia) OpenMedia(ctx context.Context, id string) (*services.Media, error) {
	body, ok := f[id]
	if !ok {
		return nil, shared.ErrVideoNotFound
	}
	return &services.Media{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "video_abc.mp4"},
		{"vidgen/", "vidgen/video_abc.mp4"},
		{"/vidgen", "vidgen/video_abc.mp4"},
	}
	for _, tt := range tests {
		a := NewWithUploader(nil, nil, shared.ArchiveConfig{Prefix: tt.prefix}, nil)
		assert.Equal(t, tt.want, a.Key("abc"), "prefix %q", tt.prefix)
	}
}

func TestArchive(t *testing.T) {
	cfg := shared.ArchiveConfig{Bucket: "videos", Prefix: "vidgen/"}

	t.Run("Streams Media Into Bucket", func(t *testing.T) {
		up := &fakeUploader{}
		a := NewWithUploader(up, fakeMedia{"abc": "mp4-bytes"}, cfg, nil)

		obj, err := a.Archive(context.Background(), "abc")
		require.NoError(t, err)

		assert.Equal(t, "videos", aws.ToString(up.input.Bucket))
		assert.Equal(t, "vidgen/video_abc.mp4", aws.ToString(up.input.Key))
		assert.Equal(t, "video/mp4", aws.ToString(up.input.ContentType))
		assert.Equal(t, "abc", up.input.Metadata["video-id"])
		assert.Equal(t, "mp4-bytes", string(up.body))

		assert.Equal(t, int64(9), obj.Bytes)
		assert.Equal(t, "https://bucket.example/vidgen/video_abc.mp4", obj.Location)
	})

	t.Run("Media Not Found", func(t *testing.T) {
		up := &fakeUploader{}
		a := NewWithUploader(up, fakeMedia{}, cfg, nil)

		_, err := a.Archive(context.Background(), "missing")
		assert.ErrorIs(t, err, shared.ErrVideoNotFound)
		assert.Nil(t, up.input, "nothing uploaded")
	})

	t.Run("Upload Failure", func(t *testing.T) {
		up := &fakeUploader{err: errors.New("access denied")}
		a := NewWithUploader(up, fakeMedia{"abc": "x"}, cfg, nil)

		_, err := a.Archive(context.Background(), "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vidgen/video_abc.mp4")
	})

	t.Run("Empty ID", func(t *testing.T) {
		a := NewWithUploader(&fakeUploader{}, fakeMedia{}, cfg, nil)
		_, err := a.Archive(context.Background(), "")
		assert.ErrorIs(t, err, shared.ErrMissingArgument)
	})
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), shared.ArchiveConfig{Region: "us-east-1"}, fakeMedia{}, nil)
	assert.ErrorIs(t, err, shared.ErrMissingConfig)
}
