package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"listing-service/internal/domain"
)

// ObjectAPI is the subset of the S3 client used by S3Service.
type ObjectAPI interface {
	manager.UploadAPIClient
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// S3Config locates the bucket and how its objects are addressed publicly.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string
	// PublicBaseURL, when set, prefixes object keys to build image URLs (CDN).
	PublicBaseURL string
}

// S3Service stores listing images in Amazon S3 (or compatible APIs).
type S3Service struct {
	client   ObjectAPI
	uploader *manager.Uploader
	cfg      S3Config
}

func NewS3Service(client ObjectAPI, cfg S3Config) *S3Service {
	return &S3Service{
		client:   client,
		uploader: manager.NewUploader(client),
		cfg:      cfg,
	}
}

func (s *S3Service) UploadOne(ctx context.Context, img Image, folder string) (domain.ImageRef, error) {
	if s.cfg.Bucket == "" {
		return domain.ImageRef{}, fmt.Errorf("%w: storage bucket is required", domain.ErrUpload)
	}
	if img.Body == nil {
		return domain.ImageRef{}, fmt.Errorf("%w: image body is required", domain.ErrUpload)
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return domain.ImageRef{}, fmt.Errorf("%w: folder is required", domain.ErrUpload)
	}

	name := strings.TrimSpace(img.Name)
	if name == "" {
		name = uuid.NewString()
	}
	key := folder + "/" + name + imageExt(img)

	counter := &byteCounter{}
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
		Body:   io.TeeReader(img.Body, counter),
	}
	if img.ContentType != "" {
		input.ContentType = aws.String(img.ContentType)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return domain.ImageRef{}, fmt.Errorf("%w: upload %s: %w", domain.ErrUpload, key, err)
	}

	return domain.ImageRef{
		SecureURL:   s.objectURL(key),
		Key:         key,
		Folder:      folder,
		ContentType: img.ContentType,
		Bytes:       counter.n,
		ETag:        strings.Trim(aws.ToString(out.ETag), `"`),
	}, nil
}

func (s *S3Service) UploadMany(ctx context.Context, images []Image, folder string, each func(domain.ImageRef) error) ([]domain.ImageRef, error) {
	refs := make([]domain.ImageRef, 0, len(images))
	for i, img := range images {
		ref, err := s.UploadOne(ctx, img, folder)
		if err != nil {
			return refs, fmt.Errorf("image %d of %d: %w", i+1, len(images), err)
		}
		refs = append(refs, ref)
		if each != nil {
			if err := each(ref); err != nil {
				return refs, err
			}
		}
	}
	return refs, nil
}

func (s *S3Service) DeleteFolder(ctx context.Context, folder string) error {
	if s.cfg.Bucket == "" {
		return fmt.Errorf("%w: storage bucket is required", domain.ErrUpload)
	}
	trimmed := strings.Trim(strings.TrimSpace(folder), "/")
	if trimmed == "" {
		return fmt.Errorf("%w: folder is required", domain.ErrUpload)
	}

	// the trailing slash also matches the folder marker object, if any
	listInput := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(trimmed + "/"),
	}

	for {
		output, err := s.client.ListObjectsV2(ctx, listInput)
		if err != nil {
			return fmt.Errorf("%w: list objects for delete: %w", domain.ErrUpload, err)
		}

		if len(output.Contents) > 0 {
			identifiers := make([]types.ObjectIdentifier, 0, len(output.Contents))
			for _, obj := range output.Contents {
				identifiers = append(identifiers, types.ObjectIdentifier{Key: obj.Key})
			}
			res, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.cfg.Bucket),
				Delete: &types.Delete{
					Objects: identifiers,
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return fmt.Errorf("%w: delete objects: %w", domain.ErrUpload, err)
			}
			if len(res.Errors) > 0 {
				first := res.Errors[0]
				return fmt.Errorf("%w: delete %s: %s", domain.ErrUpload, aws.ToString(first.Key), aws.ToString(first.Message))
			}
		}

		if !aws.ToBool(output.IsTruncated) || output.NextContinuationToken == nil {
			break
		}
		listInput.ContinuationToken = output.NextContinuationToken
	}

	return nil
}

func (s *S3Service) objectURL(key string) string {
	if base := strings.TrimRight(s.cfg.PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if endpoint := strings.TrimRight(s.cfg.Endpoint, "/"); endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", endpoint, s.cfg.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.cfg.Bucket, s.cfg.Region, key)
}

var _ Uploader = (*S3Service)(nil)

func imageExt(img Image) string {
	if ext := strings.ToLower(filepath.Ext(img.Filename)); ext != "" {
		return ext
	}
	if img.ContentType == "" {
		return ""
	}
	exts, err := mime.ExtensionsByType(img.ContentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

type byteCounter struct {
	n int64
}

func (c *byteCounter) Write(b []byte) (int, error) {
	c.n += int64(len(b))
	return len(b), nil
}
