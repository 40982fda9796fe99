package pg

import (
	"context"
	"fmt"
	"testing"

	"github.com/Mecho90/BuildingManagement/shared/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestAttachment(t *testing.T, workOrderId int64, a domain.Attachment) int64 {
	t.Helper()
	ctx := context.Background()
	a.WorkOrderId = workOrderId
	if a.OriginalName == "" {
		a.OriginalName = "photo.jpg"
	}
	if a.StoredPath == "" {
		a.StoredPath = fmt.Sprintf("work-orders/%d/%s.jpg", workOrderId, generateString(t))
	}
	if a.ContentType == "" {
		a.ContentType = "image/jpeg"
	}
	if a.SizeBytes == 0 {
		a.SizeBytes = 2048
	}
	id, err := storage.CreateAttachment(ctx, a)
	require.NoError(t, err, "CreateAttachment should not return an error")
	t.Cleanup(func() { _ = storage.DeleteAttachment(context.Background(), id) })
	return id
}

func TestCreateAttachment(t *testing.T) {
	ctx := context.Background()
	uploader := createTestUser(t)
	buildingId := createTestBuilding(t, nil)
	workOrderId := createTestWorkOrder(t, buildingId, domain.WorkOrder{})

	width, height := 1920, 1080
	storedPath := fmt.Sprintf("work-orders/%d/%s.jpg", workOrderId, generateString(t))
	id, err := storage.CreateAttachment(ctx, domain.Attachment{
		WorkOrderId:  workOrderId,
		OriginalName: "roof damage.jpg",
		StoredPath:   storedPath,
		ContentType:  "image/jpeg",
		SizeBytes:    123456,
		ImageWidth:   &width,
		ImageHeight:  &height,
		UploadedBy:   &uploader.Id,
	})
	require.NoError(t, err, "CreateAttachment should not return an error")
	assert.Greater(t, id, int64(0), "Expected ID > 0")
	t.Cleanup(func() { _ = storage.DeleteAttachment(context.Background(), id) })

	a, err := storage.Attachment(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workOrderId, a.WorkOrderId)
	assert.Equal(t, "roof damage.jpg", a.OriginalName)
	assert.Equal(t, storedPath, a.StoredPath)
	assert.Equal(t, "image/jpeg", a.ContentType)
	assert.Equal(t, int64(123456), a.SizeBytes)
	require.NotNil(t, a.ImageWidth)
	assert.Equal(t, 1920, *a.ImageWidth)
	require.NotNil(t, a.ImageHeight)
	assert.Equal(t, 1080, *a.ImageHeight)
	require.NotNil(t, a.UploadedBy)
	assert.Equal(t, uploader.Id, *a.UploadedBy)
	assert.True(t, a.IsImage())

	t.Run("duplicate stored path should fail", func(t *testing.T) {
		_, err := storage.CreateAttachment(ctx, domain.Attachment{
			WorkOrderId:  workOrderId,
			OriginalName: "copy.jpg",
			StoredPath:   storedPath,
			ContentType:  "image/jpeg",
			SizeBytes:    1,
		})
		requireConflictError(t, err)
	})

	t.Run("document without dimensions", func(t *testing.T) {
		id := createTestAttachment(t, workOrderId, domain.Attachment{
			OriginalName: "contract.pdf",
			ContentType:  "application/pdf",
			StoredPath:   fmt.Sprintf("work-orders/%d/%s.pdf", workOrderId, generateString(t)),
		})
		a, err := storage.Attachment(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, a.ImageWidth)
		assert.Nil(t, a.ImageHeight)
		assert.False(t, a.IsImage())
	})
}

func TestAttachmentNotFound(t *testing.T) {
	_, err := storage.Attachment(context.Background(), -1)
	requireNotFoundError(t, err)
}

func TestWorkOrderAttachments(t *testing.T) {
	ctx := context.Background()
	buildingId := createTestBuilding(t, nil)
	workOrderId := createTestWorkOrder(t, buildingId, domain.WorkOrder{})
	otherWorkOrder := createTestWorkOrder(t, buildingId, domain.WorkOrder{})

	var ids []int64
	for i := 0; i < 3; i++ {
		ids = append(ids, createTestAttachment(t, workOrderId, domain.Attachment{}))
	}
	createTestAttachment(t, otherWorkOrder, domain.Attachment{})

	// Equal timestamps within the same second fall back to id DESC, so pin
	// distinct creation times to exercise the primary ordering too.
	for i, id := range ids {
		_, err := storage.db.ExecContext(ctx, `UPDATE attachments SET created_at = now() - make_interval(mins => $1) WHERE id = $2`, len(ids)-i, id)
		require.NoError(t, err)
	}

	attachments, err := storage.WorkOrderAttachments(ctx, workOrderId)
	require.NoError(t, err, "WorkOrderAttachments should not return an error")
	require.Len(t, attachments, 3, "Only this work order's attachments")
	assert.Equal(t, ids[2], attachments[0].Id, "Newest attachment first")
	assert.Equal(t, ids[1], attachments[1].Id)
	assert.Equal(t, ids[0], attachments[2].Id)

	attachments, err = storage.WorkOrderAttachments(ctx, -1)
	require.NoError(t, err)
	assert.Empty(t, attachments, "Missing work order should list no attachments")
}

func TestAttachmentCount(t *testing.T) {
	ctx := context.Background()
	buildingId := createTestBuilding(t, nil)
	workOrderId := createTestWorkOrder(t, buildingId, domain.WorkOrder{})

	createTestAttachment(t, workOrderId, domain.Attachment{})
	createTestAttachment(t, workOrderId, domain.Attachment{})

	w, err := storage.WorkOrder(ctx, workOrderId)
	require.NoError(t, err)
	assert.Equal(t, 2, w.AttachmentCount, "Work order should report its attachment count")
}

func TestDeleteAttachment(t *testing.T) {
	ctx := context.Background()
	buildingId := createTestBuilding(t, nil)
	workOrderId := createTestWorkOrder(t, buildingId, domain.WorkOrder{})
	id := createTestAttachment(t, workOrderId, domain.Attachment{})

	err := storage.DeleteAttachment(ctx, id)
	require.NoError(t, err, "DeleteAttachment should not return an error")

	_, err = storage.Attachment(ctx, id)
	requireNotFoundError(t, err)

	err = storage.DeleteAttachment(ctx, id)
	requireNotFoundError(t, err)
}

func TestAttachmentsCascadeWithWorkOrder(t *testing.T) {
	ctx := context.Background()
	buildingId := createTestBuilding(t, nil)
	workOrderId := createTestWorkOrder(t, buildingId, domain.WorkOrder{})
	id := createTestAttachment(t, workOrderId, domain.Attachment{})

	err := storage.DeleteWorkOrder(ctx, workOrderId)
	require.NoError(t, err)

	_, err = storage.Attachment(ctx, id)
	requireNotFoundError(t, err)
}
