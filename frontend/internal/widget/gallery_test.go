package widget

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryUpsert(t *testing.T) {
	gallery := NewGallery(testConfig(), newFakeHost(), &fakeDeleter{})
	require.True(t, gallery.EmptyStateVisible())

	gallery.UpsertMeta(imageMeta(1, "first.jpg"))
	gallery.UpsertMeta(imageMeta(2, "second.jpg"))

	cards := gallery.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, int64(2), cards[0].Id, "new cards are inserted at the top")
	assert.Equal(t, int64(1), cards[1].Id)
	assert.False(t, gallery.EmptyStateVisible())

	// Upserting an existing id replaces the card in place.
	renamed := imageMeta(1, "renamed.jpg")
	gallery.UpsertMeta(renamed)
	cards = gallery.Cards()
	require.Len(t, cards, 2)
	assert.Equal(t, int64(2), cards[0].Id)
	assert.Equal(t, "renamed.jpg", cards[1].Name)
}

func TestGalleryDelete(t *testing.T) {
	t.Run("removes card after server confirms", func(t *testing.T) {
		host := newFakeHost()
		deleter := &fakeDeleter{}
		gallery := NewGallery(testConfig(), host, deleter)
		gallery.UpsertMeta(imageMeta(1, "a.jpg"))

		require.NoError(t, gallery.Delete(context.Background(), 1))
		assert.Equal(t, []string{"/v1/work-orders/7/attachments/1"}, deleter.deleted)
		assert.Equal(t, []string{DefaultLabels().ConfirmDelete}, host.confirmed)
		assert.True(t, gallery.EmptyStateVisible())
	})

	t.Run("declined confirmation keeps the card", func(t *testing.T) {
		host := newFakeHost()
		host.confirmResult = false
		deleter := &fakeDeleter{}
		gallery := NewGallery(testConfig(), host, deleter)
		gallery.UpsertMeta(imageMeta(1, "a.jpg"))

		require.NoError(t, gallery.Delete(context.Background(), 1))
		assert.Empty(t, deleter.deleted)
		assert.Len(t, gallery.Cards(), 1)
	})

	t.Run("server failure keeps the card", func(t *testing.T) {
		deleter := &fakeDeleter{
			deleteFunc: func(ctx context.Context, deleteURL string) error {
				return errors.New("backend unavailable")
			},
		}
		gallery := NewGallery(testConfig(), newFakeHost(), deleter)
		gallery.UpsertMeta(imageMeta(1, "a.jpg"))

		require.Error(t, gallery.Delete(context.Background(), 1))
		assert.Len(t, gallery.Cards(), 1)
		assert.False(t, gallery.EmptyStateVisible())
	})

	t.Run("card without delete url is not deletable", func(t *testing.T) {
		gallery := NewGallery(testConfig(), newFakeHost(), &fakeDeleter{})
		meta := imageMeta(1, "a.jpg")
		meta.DeleteUrl = ""
		gallery.UpsertMeta(meta)

		require.Error(t, gallery.Delete(context.Background(), 1))
		assert.Len(t, gallery.Cards(), 1)
	})

	t.Run("unknown id errors", func(t *testing.T) {
		gallery := NewGallery(testConfig(), newFakeHost(), &fakeDeleter{})
		require.Error(t, gallery.Delete(context.Background(), 99))
	})
}

// TestGalleryEmptyStateExclusive drives the gallery through a long random
// sequence of inserts, replacements and deletes and checks after every
// settled operation that exactly one of "cards rendered" and "empty state
// shown" holds.
func TestGalleryEmptyStateExclusive(t *testing.T) {
	gallery := NewGallery(testConfig(), newFakeHost(), &fakeDeleter{})
	rng := rand.New(rand.NewSource(7))

	live := map[int64]bool{}
	var nextId int64

	for i := 0; i < 1000; i++ {
		switch rng.Intn(3) {
		case 0:
			nextId++
			gallery.UpsertMeta(imageMeta(nextId, "img.jpg"))
			live[nextId] = true
		case 1:
			// Replace a random live card, a no-op for the count.
			for id := range live {
				gallery.UpsertMeta(imageMeta(id, "replaced.jpg"))
				break
			}
		case 2:
			for id := range live {
				require.NoError(t, gallery.Delete(context.Background(), id))
				delete(live, id)
				break
			}
		}

		hasCards := len(gallery.Cards()) > 0
		require.NotEqual(t, hasCards, gallery.EmptyStateVisible(), "op %d", i)
		require.Len(t, gallery.Cards(), len(live), "op %d", i)
	}
}
