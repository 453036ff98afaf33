package qrcode

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	data, err := Render("http://localhost:5173/examination_profile/2025100001", 300)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 300, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestGenerator_LocalStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	g := NewGenerator("http://localhost:5173/", LocalStorage{Dir: dir})

	assert.Equal(t, "http://localhost:5173/examination_profile/2025100001", g.ProfileURL("2025100001"))

	name, err := g.Generate(context.Background(), "2025100001")
	require.NoError(t, err)
	assert.Equal(t, "2025100001_qrcode.png", name)

	info, err := os.Stat(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestLocalStorage_RejectsPaths(t *testing.T) {
	err := LocalStorage{Dir: t.TempDir()}.Save(context.Background(), "../escape.png", []byte("x"))
	assert.Error(t, err)
}

type fakePut struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePut) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func TestS3Storage_Save(t *testing.T) {
	fake := &fakePut{}
	s := &S3Storage{client: fake, bucket: "qr", prefix: "applicants/"}

	require.NoError(t, s.Save(context.Background(), "2025100001_qrcode.png", []byte("png")))
	assert.Equal(t, "qr", aws.ToString(fake.input.Bucket))
	assert.Equal(t, "applicants/2025100001_qrcode.png", aws.ToString(fake.input.Key))
	assert.Equal(t, "image/png", aws.ToString(fake.input.ContentType))
	assert.Equal(t, []byte("png"), fake.body)

	fake.err = errors.New("denied")
	err := s.Save(context.Background(), "x.png", nil)
	assert.ErrorContains(t, err, "denied")
}
