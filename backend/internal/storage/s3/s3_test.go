package s3

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	storage, err := New(context.Background(), Config{
		Endpoint:  "http://localhost:9000/",
		Region:    "us-east-1",
		Bucket:    "attachments",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	assert.NotNil(t, storage.client)
	assert.Equal(t, "attachments", storage.bucket)
}

func TestURL(t *testing.T) {
	storage, err := New(context.Background(), Config{
		Endpoint:  "http://localhost:9000/",
		Region:    "us-east-1",
		Bucket:    "attachments",
		AccessKey: "k",
		SecretKey: "s",
	})
	require.NoError(t, err)

	t.Run("joins endpoint bucket and key", func(t *testing.T) {
		assert.Equal(t,
			"http://localhost:9000/attachments/work-orders/7/x.png",
			storage.URL("work-orders/7/x.png"))
	})

	t.Run("tolerates leading slash in key", func(t *testing.T) {
		assert.Equal(t,
			"http://localhost:9000/attachments/work-orders/7/x.png",
			storage.URL("/work-orders/7/x.png"))
	})
}
