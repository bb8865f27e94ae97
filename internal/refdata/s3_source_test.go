package refdata

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDownloader struct {
	objects map[string][]byte
	err     error
	keys    []string
}

func (f *fakeDownloader) Download(_ context.Context, w io.WriterAt, input *s3.GetObjectInput, _ ...func(*manager.Downloader)) (int64, error) {
	key := aws.ToString(input.Key)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return 0, f.err
	}
	data, ok := f.objects[key]
	if !ok {
		return 0, &types.NoSuchKey{}
	}
	n, err := w.WriteAt(data, 0)
	return int64(n), err
}

func TestS3Source_Load(t *testing.T) {
	docs := jsonDocs(t, fixtureTables())
	objects := map[string][]byte{}
	for name, data := range docs {
		objects["reference/2024/"+name+".json"] = data
	}
	fake := &fakeDownloader{objects: objects}

	src := newS3SourceWithDownloader(fake, "valve-data", "/reference/2024/")
	assert.Equal(t, "s3://valve-data/reference/2024", src.Name())

	tables, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, tables.PriceTable, 2)
	assert.Len(t, tables.LME, 12)
	assert.Len(t, fake.keys, len(RequiredTables))
	assert.Equal(t, "reference/2024/price_table.json", fake.keys[0])
}

func TestS3Source_MissingObject(t *testing.T) {
	docs := jsonDocs(t, fixtureTables())
	objects := map[string][]byte{}
	for name, data := range docs {
		if name != TableOrders {
			objects[name+".json"] = data
		}
	}

	_, err := newS3SourceWithDownloader(&fakeDownloader{objects: objects}, "b", "").Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingTable)
	assert.Contains(t, err.Error(), "s3://b/order_history_all.json")
}

func TestS3Source_TransportError(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := newS3SourceWithDownloader(&fakeDownloader{err: boom}, "b", "").Load(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMissingTable)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.False(t, isNotFound(errors.New("other")))
}
