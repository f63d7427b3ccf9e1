package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"

	config "github.com/crehm/artflow/configs"
)

const (
	AssetKindImage = "image"
	AssetKindVideo = "video"
)

// r2RefPrefix marks content refs stored in the R2 bucket rather than on the
// local filesystem.
const r2RefPrefix = "r2://"

var ErrAssetNotFound = errors.New("asset file not found")

// AssetResolver turns an opaque content ref into a local file path plus the
// sniffed media kind. Remote refs are fetched into the local cache first.
type AssetResolver interface {
	Resolve(ctx context.Context, ref string) (path string, kind string, err error)
}

type assetResolver struct {
	cfg      config.Config
	cacheDir string
	logger   *slog.Logger
}

func NewAssetResolver(cfg config.Config, logger *slog.Logger) AssetResolver {
	return &assetResolver{cfg: cfg, cacheDir: cfg.AssetCacheDir, logger: logger}
}

func (r *assetResolver) Resolve(ctx context.Context, ref string) (string, string, error) {
	if ref == "" {
		return "", "", fmt.Errorf("%w: empty content ref", ErrAssetNotFound)
	}

	path := ref
	if strings.HasPrefix(ref, r2RefPrefix) {
		var err error
		path, err = r.fetchFromR2(ctx, strings.TrimPrefix(ref, r2RefPrefix))
		if err != nil {
			return "", "", err
		}
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", "", fmt.Errorf("%w: %s", ErrAssetNotFound, path)
	}

	kind, err := sniffAssetKind(path)
	if err != nil {
		return "", "", err
	}
	return path, kind, nil
}

// fetchFromR2 downloads a bucket object into the asset cache. Cached copies
// are reused; object keys are content-addressed upstream so staleness is not
// a concern.
func (r *assetResolver) fetchFromR2(ctx context.Context, key string) (string, error) {
	local := filepath.Join(r.cacheDir, filepath.Base(key))
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	client, err := r.r2Client(ctx)
	if err != nil {
		return "", err
	}

	obj, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.cfg.R2.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to fetch %s%s: %w", r2RefPrefix, key, err)
	}
	defer obj.Body.Close()

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(r.cacheDir, "download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, obj.Body); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), local); err != nil {
		return "", err
	}

	r.logger.Info("fetched asset from R2", "key", key, "path", local)
	return local, nil
}

func (r *assetResolver) r2Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(r.cfg.R2.AccessKey, r.cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r.cfg.R2.AccountID))
	}), nil
}

// sniffAssetKind classifies the file by magic bytes, not extension.
func sniffAssetKind(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	header := make([]byte, 261)
	n, err := file.Read(header)
	if err != nil && err != io.EOF {
		return "", err
	}
	header = header[:n]

	switch {
	case filetype.IsImage(header):
		return AssetKindImage, nil
	case filetype.IsVideo(header):
		return AssetKindVideo, nil
	default:
		return "", fmt.Errorf("unsupported media type for %s", filepath.Base(path))
	}
}
