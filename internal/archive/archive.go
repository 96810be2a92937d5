// Package archive copies generated videos into S3-compatible object storage.
package archive

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidgen/internal/services"
	"github.com/desertthunder/vidgen/internal/shared"
)

// Uploader is the part of [manager.Uploader] used here.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// MediaOpener streams a video's media.
type MediaOpener interface {
	OpenMedia(ctx context.Context, videoID string) (*services.Media, error)
}

// Object describes an archived video.
type Object struct {
	VideoID  string
	Bucket   string
	Key      string
	Location string
	Bytes    int64
}

// Archiver streams media from the backend into a bucket without buffering whole files.
type Archiver struct {
	uploader Uploader
	media    MediaOpener
	bucket   string
	prefix   string
	logger   *log.Logger
}

// New configures an S3 uploader from cfg. A custom endpoint (MinIO, R2, ...) switches to
// path-style addressing.
func New(ctx context.Context, cfg shared.ArchiveConfig, media MediaOpener, logger *log.Logger) (*Archiver, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("%w: archive.bucket is required", shared.ErrMissingConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return NewWithUploader(uploader, media, cfg, logger), nil
}

// NewWithUploader builds an [Archiver] around an existing uploader.
func NewWithUploader(uploader Uploader, media MediaOpener, cfg shared.ArchiveConfig, logger *log.Logger) *Archiver {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Archiver{
		uploader: uploader,
		media:    media,
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		logger:   shared.WithLogger(logger, "component", "archive"),
	}
}

// Key is the object key for a video.
func (a *Archiver) Key(videoID string) string {
	prefix := strings.TrimLeft(a.prefix, "/")
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return fmt.Sprintf("%svideo_%s.mp4", prefix, videoID)
}

// Archive uploads one video's media.
func (a *Archiver) Archive(ctx context.Context, videoID string) (*Object, error) {
	if videoID == "" {
		return nil, fmt.Errorf("%w: video id", shared.ErrMissingArgument)
	}

	media, err := a.media.OpenMedia(ctx, videoID)
	if err != nil {
		return nil, err
	}
	defer media.Close()

	contentType := media.ContentType
	if contentType == "" {
		contentType = "video/mp4"
	}

	body := &countingReader{r: media}
	key := a.Key(videoID)
	out, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        manager.ReadSeekCloser(body),
		ContentType: aws.String(contentType),
		Metadata:    map[string]string{"video-id": videoID},
	})
	if err != nil {
		return nil, fmt.Errorf("s3 upload %s: %w", key, err)
	}

	obj := &Object{VideoID: videoID, Bucket: a.bucket, Key: key, Bytes: body.n}
	if out != nil {
		obj.Location = out.Location
	}
	a.logger.Info("archived video", "video_id", videoID, "bucket", a.bucket, "key", key, "bytes", body.n)
	return obj, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
