package widget

// DocModal previews non-image attachments in an embedded frame. It is a much
// simpler machine than the lightbox: open, busy until the frame settles,
// closed.
//
// Methods are not safe for concurrent use; the page event loop serializes
// them.
type DocModal struct {
	host Host

	open    bool
	loading bool
	url     string
	title   string
	trigger string
}

func NewDocModal(host Host) *DocModal {
	return &DocModal{host: host}
}

// Show routes a card to the right viewer: external entries open in a new
// browsing context, everything else loads into the preview frame.
func (m *DocModal) Show(card Card) {
	if card.External {
		m.host.OpenExternal(card.URL)
		return
	}
	m.OpenFrame(card.PreviewURL, card.Name, card.DOMId)
}

// OpenFrame opens the modal on url with a spinner until the frame settles.
func (m *DocModal) OpenFrame(url, title, trigger string) {
	m.open = true
	m.loading = true
	m.url = url
	m.title = title
	m.trigger = trigger

	m.host.LoadFrame(url)
	m.host.FocusClose()
}

// FrameLoaded clears the spinner.
func (m *DocModal) FrameLoaded() {
	m.loading = false
}

// FrameFailed clears the spinner; the frame shows whatever error document
// the server returned.
func (m *DocModal) FrameFailed() {
	m.loading = false
}

// Close blanks the frame, which also cancels a load still in progress, and
// returns focus to the card that opened the modal.
func (m *DocModal) Close() {
	if !m.open {
		return
	}
	m.open = false
	m.loading = false
	m.url = ""
	m.title = ""

	m.host.ClearFrame()
	m.host.RestoreFocus(m.trigger)
	m.trigger = ""
}

// IsOpen reports whether the modal is visible.
func (m *DocModal) IsOpen() bool { return m.open }

// Loading reports whether the spinner is visible.
func (m *DocModal) Loading() bool { return m.loading }

// URL returns the previewed document, empty when closed.
func (m *DocModal) URL() string { return m.url }

// Title returns the caption shown in the modal header.
func (m *DocModal) Title() string { return m.title }
