package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notification-engine/internal/models"
)

type fakePutObjectAPI struct {
	inputs []*awss3.PutObjectInput
	err    error
}

func (f *fakePutObjectAPI) PutObject(_ context.Context, params *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &awss3.PutObjectOutput{}, nil
}

func TestUploaderWritesEveryAttachment(t *testing.T) {
	api := &fakePutObjectAPI{}
	uploader := NewUploaderWithClient(api, "attachments")

	err := uploader.Upload(context.Background(), []models.Attachment{
		{Name: "a.png", Mime: "image/png", StoragePath: "org-1/env-1/tok-1/a.png", Content: []byte("first")},
		{Name: "b.pdf", StoragePath: "org-1/env-1/tok-2/b.pdf", Content: []byte("second")},
	})
	require.NoError(t, err)
	require.Len(t, api.inputs, 2)

	first := api.inputs[0]
	assert.Equal(t, "attachments", *first.Bucket)
	assert.Equal(t, "org-1/env-1/tok-1/a.png", *first.Key)
	assert.Equal(t, "image/png", *first.ContentType)
	body, err := io.ReadAll(first.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), body)

	assert.Nil(t, api.inputs[1].ContentType)
}

func TestUploaderAbortsOnFirstFailure(t *testing.T) {
	api := &fakePutObjectAPI{err: errors.New("access denied")}
	uploader := NewUploaderWithClient(api, "attachments")

	err := uploader.Upload(context.Background(), []models.Attachment{
		{Name: "a.png", StoragePath: "org-1/env-1/tok-1/a.png", Content: []byte("x")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "org-1/env-1/tok-1/a.png")
}
