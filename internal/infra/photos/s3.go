package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const photoKeyPrefix = "photos/"

// s3API is the slice of the S3 client the archive needs; tests substitute a
// fake implementation.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
}

// S3Archive stores photos in a single S3 or MinIO bucket under the photos/
// key prefix.
type S3Archive struct {
	client  s3API
	presign s3Presigner
	bucket  string
}

var _ Archive = (*S3Archive)(nil)

// S3Config holds explicit construction parameters, mostly for local MinIO
// setups. Production deployments usually rely on the default credentials
// chain.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// NewS3Archive builds an archive over a live S3 client.
func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("photos: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &S3Archive{
		client:  client,
		presign: presignAdapter{s3.NewPresignClient(client)},
		bucket:  cfg.Bucket,
	}, nil
}

type presignAdapter struct {
	client *s3.PresignClient
}

func (p presignAdapter) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	out, err := p.client.PresignGetObject(ctx, in, optFns...)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

func (a *S3Archive) Driver() Driver { return DriverS3 }

func (a *S3Archive) key(studentID string) string { return photoKeyPrefix + studentID }

func (a *S3Archive) Put(ctx context.Context, studentID string, r io.Reader, contentType string) (Photo, error) {
	if err := validateStudentID(studentID); err != nil {
		return Photo{}, err
	}
	key := a.key(studentID)
	input := &s3.PutObjectInput{Bucket: &a.bucket, Key: &key, Body: r}
	if contentType != "" {
		input.ContentType = &contentType
	}
	if _, err := a.client.PutObject(ctx, input); err != nil {
		return Photo{}, err
	}
	return a.head(ctx, studentID)
}

func (a *S3Archive) head(ctx context.Context, studentID string) (Photo, error) {
	key := a.key(studentID)
	out, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &a.bucket, Key: &key})
	if err != nil {
		return Photo{}, err
	}
	photo := Photo{StudentID: studentID, StoredAt: time.Now().UTC()}
	if out.ContentLength != nil {
		photo.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		photo.ContentType = *out.ContentType
	}
	if out.ETag != nil {
		photo.ETag = strings.Trim(*out.ETag, `"`)
	}
	if out.LastModified != nil {
		photo.StoredAt = *out.LastModified
	}
	return photo, nil
}

func (a *S3Archive) Get(ctx context.Context, studentID string) (Photo, io.ReadCloser, error) {
	if err := validateStudentID(studentID); err != nil {
		return Photo{}, nil, err
	}
	key := a.key(studentID)
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &a.bucket, Key: &key})
	if err != nil {
		return Photo{}, nil, err
	}
	photo := Photo{StudentID: studentID, StoredAt: time.Now().UTC()}
	if out.ContentLength != nil {
		photo.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		photo.ContentType = *out.ContentType
	}
	if out.ETag != nil {
		photo.ETag = strings.Trim(*out.ETag, `"`)
	}
	if out.LastModified != nil {
		photo.StoredAt = *out.LastModified
	}
	return photo, out.Body, nil
}

func (a *S3Archive) Delete(ctx context.Context, studentID string) (bool, error) {
	if err := validateStudentID(studentID); err != nil {
		return false, err
	}
	key := a.key(studentID)
	if _, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &a.bucket, Key: &key}); err != nil {
		return false, nil
	}
	if _, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &a.bucket, Key: &key}); err != nil {
		return false, err
	}
	return true, nil
}

func (a *S3Archive) List(ctx context.Context) ([]Photo, error) {
	prefix := photoKeyPrefix
	var out []Photo
	var token *string
	for {
		page, err := a.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &a.bucket,
			Prefix:            &prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			photo := Photo{StudentID: strings.TrimPrefix(aws.ToString(obj.Key), photoKeyPrefix)}
			if obj.Size != nil {
				photo.Size = *obj.Size
			}
			photo.StoredAt = aws.ToTime(obj.LastModified)
			out = append(out, photo)
		}
		if page.IsTruncated != nil && *page.IsTruncated && page.NextContinuationToken != nil {
			token = page.NextContinuationToken
			continue
		}
		break
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out, nil
}

func (a *S3Archive) URL(ctx context.Context, studentID string, expiry time.Duration) (string, error) {
	if err := validateStudentID(studentID); err != nil {
		return "", err
	}
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	key := a.key(studentID)
	return a.presign.PresignGetObject(ctx, &s3.GetObjectInput{Bucket: &a.bucket, Key: &key},
		func(po *s3.PresignOptions) { po.Expires = expiry })
}

// OpenS3FromEnv constructs an S3 archive from the process environment.
//
//	HALLCORE_BLOB_S3_BUCKET (required)
//	HALLCORE_BLOB_S3_REGION (default us-east-1)
//	HALLCORE_BLOB_S3_ENDPOINT (optional, MinIO)
//	HALLCORE_BLOB_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY via the default chain
func OpenS3FromEnv(ctx context.Context) (*S3Archive, error) {
	bucket := os.Getenv("HALLCORE_BLOB_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("photos: HALLCORE_BLOB_S3_BUCKET required for s3 driver")
	}
	return NewS3Archive(ctx, S3Config{
		Bucket:    bucket,
		Region:    os.Getenv("HALLCORE_BLOB_S3_REGION"),
		Endpoint:  os.Getenv("HALLCORE_BLOB_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("HALLCORE_BLOB_S3_PATH_STYLE"), "true"),
	})
}
