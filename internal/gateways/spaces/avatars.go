// Package spaces lists the default avatar catalogue from a DigitalOcean
// Spaces bucket.
package spaces

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nekoden/nekoden/nekoden"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".webp": true,
}

// AvatarReplacer receives a freshly listed catalogue.
type AvatarReplacer interface {
	Replace(paths []string)
}

type AvatarSource struct {
	client  s3.ListObjectsV2APIClient
	bucket  string
	prefix  string
	cdnBase string
}

func NewAvatarSource(ctx context.Context, cfg nekoden.SpacesConfig) (*AvatarSource, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load spaces config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region))
	})

	cdnBase := cfg.CDNBase
	if cdnBase == "" {
		cdnBase = fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com", cfg.Bucket, cfg.Region)
	}
	return NewAvatarSourceWithClient(client, cfg.Bucket, cfg.AvatarPrefix, cdnBase), nil
}

func NewAvatarSourceWithClient(client s3.ListObjectsV2APIClient, bucket, prefix, cdnBase string) *AvatarSource {
	return &AvatarSource{
		client:  client,
		bucket:  bucket,
		prefix:  strings.TrimPrefix(prefix, "/"),
		cdnBase: strings.TrimSuffix(cdnBase, "/"),
	}
}

// List returns public URLs of every image under the avatar prefix, sorted so
// the user-to-avatar hash stays stable between listings.
func (s *AvatarSource) List(ctx context.Context) ([]string, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int32(1000),
	}

	var urls []string
	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list avatars: %w", err)
		}
		for _, obj := range output.Contents {
			if obj.Key == nil || !imageExts[strings.ToLower(path.Ext(*obj.Key))] {
				continue
			}
			urls = append(urls, s.cdnBase+"/"+*obj.Key)
		}
	}
	sort.Strings(urls)
	return urls, nil
}

// Refresh lists the bucket and swaps the catalogue. An empty listing keeps
// the current catalogue.
func (s *AvatarSource) Refresh(ctx context.Context, target AvatarReplacer) error {
	urls, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		slog.Warn("No avatars found in bucket, keeping configured defaults",
			slog.String("bucket", s.bucket),
			slog.String("prefix", s.prefix))
		return nil
	}
	target.Replace(urls)
	slog.Info("Default avatars loaded from spaces", slog.Int("count", len(urls)))
	return nil
}
