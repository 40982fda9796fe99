package widget

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Mecho90/BuildingManagement/shared/api"
)

// Card is the view model for one attachment. The server renders the same
// struct into the initial page, and the enhancement layer builds it from
// upload responses, so both paths produce identical cards.
type Card struct {
	Id          int64
	Name        string
	URL         string
	PreviewURL  string // same-origin target for the document modal
	External    bool   // preview opens a new context instead of the modal
	SizeDisplay string
	ContentType string
	Category    string
	IsImage     bool
	Badge       string // extension badge on non-image cards
	Uploaded    string // "Uploaded 2026-08-26 14:05"
	DeleteURL   string // empty when the viewer cannot manage attachments
	DOMId       string // stable element id, used for focus restoration
}

// NewCard builds a card from attachment metadata. previewURL is the
// same-origin endpoint the document modal embeds; it is ignored for images.
func NewCard(meta api.AttachmentMetadata, previewURL string, labels Labels) Card {
	card := Card{
		Id:          meta.Id,
		Name:        meta.Name,
		URL:         meta.Url,
		PreviewURL:  previewURL,
		SizeDisplay: meta.SizeDisplay,
		ContentType: meta.ContentType,
		Category:    meta.Category,
		IsImage:     meta.IsImage,
		External:    !previewable(meta),
		DeleteURL:   meta.DeleteUrl,
		DOMId:       fmt.Sprintf("attachment-%d", meta.Id),
	}
	if !card.IsImage {
		if meta.Extension != "" {
			card.Badge = strings.ToUpper(meta.Extension)
		} else {
			card.Badge = labels.FilePlaceholder
		}
	}
	if meta.CreatedDisplay != "" {
		card.Uploaded = strings.ReplaceAll(labels.UploadedTemplate, "{date}", meta.CreatedDisplay)
	}
	return card
}

// previewable reports whether the frame can render the file inline. Types
// browsers cannot embed open in a new context instead.
func previewable(meta api.AttachmentMetadata) bool {
	if meta.IsImage {
		return true
	}
	return meta.ContentType == "application/pdf" || strings.HasPrefix(meta.ContentType, "text/")
}

// Gallery holds the rendered attachment cards for one work order. Cards and
// the empty state are mutually exclusive: after every settled operation
// exactly one of them is visible.
type Gallery struct {
	mu      sync.Mutex
	cards   []Card
	labels  Labels
	preview string
	host    Host
	deleter Deleter
}

func NewGallery(cfg Config, host Host, deleter Deleter) *Gallery {
	return &Gallery{
		labels:  cfg.Labels,
		preview: cfg.PreviewURLTemplate,
		host:    host,
		deleter: deleter,
	}
}

// SetCards replaces the gallery content with the server-rendered state.
func (g *Gallery) SetCards(cards []Card) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cards = append([]Card(nil), cards...)
}

// UpsertMeta merges a freshly uploaded attachment into the gallery, building
// the same card the server would have rendered.
func (g *Gallery) UpsertMeta(meta api.AttachmentMetadata) {
	previewURL := strings.ReplaceAll(g.preview, "{id}", strconv.FormatInt(meta.Id, 10))
	g.Upsert(NewCard(meta, previewURL, g.labels))
}

// Upsert inserts card at the top of the gallery, or replaces the existing
// card with the same id in place when one is already rendered.
func (g *Gallery) Upsert(card Card) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cards {
		if g.cards[i].Id == card.Id {
			g.cards[i] = card
			return
		}
	}
	g.cards = append([]Card{card}, g.cards...)
}

// Delete removes the attachment after user confirmation and a successful
// server round trip. The card stays rendered until the server confirms, so a
// failed delete never desynchronizes the gallery.
func (g *Gallery) Delete(ctx context.Context, id int64) error {
	g.mu.Lock()
	var card *Card
	for i := range g.cards {
		if g.cards[i].Id == id {
			card = &g.cards[i]
			break
		}
	}
	g.mu.Unlock()

	if card == nil {
		return fmt.Errorf("attachment %d is not in the gallery", id)
	}
	if card.DeleteURL == "" {
		return fmt.Errorf("attachment %d is not deletable", id)
	}
	if !g.host.Confirm(g.labels.ConfirmDelete) {
		return nil
	}
	if err := g.deleter.DeleteAttachment(ctx, card.DeleteURL); err != nil {
		return err
	}
	g.remove(id)
	return nil
}

func (g *Gallery) remove(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.cards {
		if g.cards[i].Id == id {
			g.cards = append(g.cards[:i], g.cards[i+1:]...)
			return
		}
	}
}

// Cards returns a snapshot of the rendered cards, newest first.
func (g *Gallery) Cards() []Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Card(nil), g.cards...)
}

// Card returns the rendered card with the given id.
func (g *Gallery) Card(id int64) (Card, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range g.cards {
		if c.Id == id {
			return c, true
		}
	}
	return Card{}, false
}

// EmptyStateVisible reports whether the "no attachments" message is shown.
// It is the exact complement of having at least one card.
func (g *Gallery) EmptyStateVisible() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.cards) == 0
}
