package photos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type fakeObject struct {
	data        []byte
	contentType string
	modified    time.Time
}

// fakeS3 emulates the object operations the archive uses against a single
// bucket held in memory.
type fakeS3 struct {
	objects map[string]fakeObject
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: make(map[string]fakeObject)} }

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	obj := fakeObject{data: data, modified: time.Now().UTC()}
	if in.ContentType != nil {
		obj.contentType = *in.ContentType
	}
	f.objects[aws.ToString(in.Key)] = obj
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", aws.ToString(in.Key))
	}
	size := int64(len(obj.data))
	out := &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(obj.data)),
		ContentLength: &size,
		ETag:          aws.String(`"fake-etag"`),
		LastModified:  &obj.modified,
	}
	if obj.contentType != "" {
		out.ContentType = &obj.contentType
	}
	return out, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	obj, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, fmt.Errorf("NotFound: %s", aws.ToString(in.Key))
	}
	size := int64(len(obj.data))
	out := &s3.HeadObjectOutput{
		ContentLength: &size,
		ETag:          aws.String(`"fake-etag"`),
		LastModified:  &obj.modified,
	}
	if obj.contentType != "" {
		out.ContentType = &obj.contentType
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for key, obj := range f.objects {
		if !strings.HasPrefix(key, aws.ToString(in.Prefix)) {
			continue
		}
		size := int64(len(obj.data))
		modified := obj.modified
		out.Contents = append(out.Contents, s3types.Object{
			Key:          aws.String(key),
			Size:         &size,
			LastModified: &modified,
		})
	}
	return out, nil
}

type fakePresigner struct{}

func (fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (string, error) {
	return "https://signed.example.com/" + aws.ToString(in.Key), nil
}

func newFakeS3Archive() *S3Archive {
	return &S3Archive{client: newFakeS3(), presign: fakePresigner{}, bucket: "hall-photos"}
}

func TestS3Archive(t *testing.T) {
	archiveContract(t, newFakeS3Archive())
}

func TestS3ArchiveKeysUnderPrefix(t *testing.T) {
	fake := newFakeS3()
	archive := &S3Archive{client: fake, presign: fakePresigner{}, bucket: "hall-photos"}
	if _, err := archive.Put(context.Background(), "S001", strings.NewReader("x"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := fake.objects["photos/S001"]; !ok {
		t.Fatalf("object not stored under photos/ prefix: %v", fake.objects)
	}
}

func TestS3ArchivePresignedURL(t *testing.T) {
	url, err := newFakeS3Archive().URL(context.Background(), "S001", 0)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "https://signed.example.com/photos/S001" {
		t.Fatalf("url = %q", url)
	}
}
