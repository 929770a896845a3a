package attachments

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/onyxandcode/onyx-site/pkg/logging"
)

type mockS3Client struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(input.Body)
	m.inputs = append(m.inputs, input)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestStore_PutWritesDatedKey(t *testing.T) {
	mock := &mockS3Client{}
	store := NewStore(mock, "lead-uploads", logging.New("error"))
	store.now = func() time.Time { return time.Date(2025, 4, 9, 10, 0, 0, 0, time.UTC) }

	key, err := store.Put(context.Background(), "lead-1", "brief.pdf", "application/pdf", []byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "leads/2025/04/09/lead-1/brief.pdf", key)

	require.Len(t, mock.inputs, 1)
	assert.Equal(t, "lead-uploads", aws.ToString(mock.inputs[0].Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(mock.inputs[0].ContentType))
	assert.Equal(t, "lead-1", mock.inputs[0].Metadata["lead-id"])
	assert.Equal(t, []byte("pdf"), mock.bodies[0])
}

func TestStore_DisabledIsNoop(t *testing.T) {
	mock := &mockS3Client{}
	store := NewStore(mock, "", nil)
	key, err := store.Put(context.Background(), "lead-1", "a.txt", "", []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, key)
	assert.Empty(t, mock.inputs)

	var nilStore *Store
	assert.False(t, nilStore.Enabled())
}

func TestStore_PutWrapsError(t *testing.T) {
	boom := errors.New("access denied")
	store := NewStore(&mockS3Client{err: boom}, "lead-uploads", logging.New("error"))
	_, err := store.Put(context.Background(), "lead-1", "a.txt", "", []byte("x"))
	assert.ErrorIs(t, err, boom)
}

func TestObjectKeySanitizesFilename(t *testing.T) {
	at := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	tests := map[string]string{
		"../../etc/passwd":      "passwd",
		`C:\Users\me\plan.docx`: "plan.docx",
		"my brief (v2).pdf":     "my_brief__v2_.pdf",
		"":                      "upload",
		"..":                    "upload",
	}
	for in, want := range tests {
		assert.Equal(t, "leads/2025/01/02/l/"+want, ObjectKey(at, "l", in), "input %q", in)
	}
}
