package widget

import "math"

// Zoom bounds and step for the lightbox. Scale 1.0 is "fit to viewport".
const (
	MinScale = 1.0
	MaxScale = 5.0
	ZoomStep = 0.25

	// wheelPanFactor is the share of the cursor's offset from the image
	// center applied as a pan nudge per wheel tick, so wheel zoom feels
	// anchored to the cursor.
	wheelPanFactor = 0.05
)

// Point is a position or translation in viewport pixels.
type Point struct {
	X float64
	Y float64
}

// gesture is the active pointer mode. Modeling it as a tagged variant keeps
// drag anchors and pinch baselines from outliving the pointer configuration
// that produced them: the variant is rebuilt from scratch on every change in
// active pointer count.
type gesture interface{ isGesture() }

type gestureIdle struct{}

// gestureDrag pans the zoomed image 1:1 with a single pointer. start is the
// pointer position and anchor the pan at the moment the gesture began.
type gestureDrag struct {
	start  Point
	anchor Point
}

// gesturePinch rescales relative to the distance between two pointers at the
// moment the gesture began. Pan is held unchanged for the whole gesture.
type gesturePinch struct {
	baseDist  float64
	baseScale float64
}

func (gestureIdle) isGesture()  {}
func (gestureDrag) isGesture()  {}
func (gesturePinch) isGesture() {}

// Lightbox is the modal image viewer. One instance is created when the page
// initializes and shared by every image card.
//
// Methods are not safe for concurrent use; the page event loop serializes
// them.
type Lightbox struct {
	host Host

	open    bool
	loading bool
	url     string
	trigger string

	scale float64
	pan   Point

	// pointers tracks active pointer positions; order preserves arrival
	// order so a pinch always pairs the same two pointers.
	pointers map[int]Point
	order    []int
	gest     gesture
}

func NewLightbox(host Host) *Lightbox {
	return &Lightbox{
		host:     host,
		scale:    MinScale,
		pointers: make(map[int]Point),
		gest:     gestureIdle{},
	}
}

// Show opens the viewer for an image card.
func (l *Lightbox) Show(card Card) {
	l.OpenImage(card.URL, card.DOMId)
}

// OpenImage opens the viewer on url with zoom and pan reset. The image loads
// asynchronously; a spinner shows until the host reports the outcome. The
// page behind is scroll-locked and focus moves into the dialog.
func (l *Lightbox) OpenImage(url, trigger string) {
	l.open = true
	l.loading = true
	l.url = url
	l.trigger = trigger
	l.scale = MinScale
	l.pan = Point{}
	l.clearPointers()

	l.host.LockScroll()
	l.host.LoadImage(url)
	l.host.FocusClose()
}

// ImageLoaded clears the loading spinner.
func (l *Lightbox) ImageLoaded() {
	l.loading = false
}

// ImageFailed clears the spinner; the host is expected to surface its own
// broken-image state.
func (l *Lightbox) ImageFailed() {
	l.loading = false
}

// Close dismisses the viewer, cancels any in-flight image load, unlocks the
// page and returns focus to the card that opened it.
func (l *Lightbox) Close() {
	if !l.open {
		return
	}
	l.open = false
	l.loading = false
	l.url = ""
	l.clearPointers()

	l.host.ClearImage()
	l.host.UnlockScroll()
	l.host.RestoreFocus(l.trigger)
	l.trigger = ""
}

// ZoomIn increments the zoom one step.
func (l *Lightbox) ZoomIn() { l.stepZoom(ZoomStep) }

// ZoomOut decrements the zoom one step.
func (l *Lightbox) ZoomOut() { l.stepZoom(-ZoomStep) }

// ResetView restores scale 1.0 and centers the image.
func (l *Lightbox) ResetView() {
	l.scale = MinScale
	l.pan = Point{}
}

// Wheel applies one scroll tick. Scrolling up zooms in, down zooms out, and
// the pan is nudged toward the cursor so the zoom stays anchored under it.
// cursor is the pointer offset from the image center.
func (l *Lightbox) Wheel(deltaY float64, cursor Point) {
	if deltaY == 0 {
		return
	}
	step := ZoomStep
	if deltaY > 0 {
		step = -ZoomStep
	}
	before := l.scale
	l.stepZoom(step)
	if l.scale == before || l.scale == MinScale {
		return
	}
	if step > 0 {
		l.pan.X -= cursor.X * wheelPanFactor
		l.pan.Y -= cursor.Y * wheelPanFactor
	} else {
		l.pan.X += cursor.X * wheelPanFactor
		l.pan.Y += cursor.Y * wheelPanFactor
	}
}

// KeyDown handles dialog keyboard shortcuts.
func (l *Lightbox) KeyDown(key string) {
	if !l.open {
		return
	}
	switch key {
	case "+", "=":
		l.ZoomIn()
	case "-":
		l.ZoomOut()
	case "0":
		l.ResetView()
	case "Escape":
		l.Close()
	}
}

// BackdropClick closes the viewer when the user clicks outside the image.
func (l *Lightbox) BackdropClick() {
	l.Close()
}

// stepZoom adjusts scale by delta within [MinScale, MaxScale]. Landing back
// on exactly 1.0 also recenters the image.
func (l *Lightbox) stepZoom(delta float64) {
	l.scale = clampScale(l.scale + delta)
	if l.scale == MinScale {
		l.pan = Point{}
	}
}

// PointerDown registers a new active pointer and rebuilds the gesture.
func (l *Lightbox) PointerDown(id int, p Point) {
	if !l.open {
		return
	}
	if _, ok := l.pointers[id]; !ok {
		l.order = append(l.order, id)
	}
	l.pointers[id] = p
	l.rebuildGesture()
}

// PointerMove advances the active gesture with a new pointer position.
func (l *Lightbox) PointerMove(id int, p Point) {
	if _, ok := l.pointers[id]; !ok {
		return
	}
	l.pointers[id] = p

	switch g := l.gest.(type) {
	case gestureDrag:
		l.pan = Point{
			X: g.anchor.X + (p.X - g.start.X),
			Y: g.anchor.Y + (p.Y - g.start.Y),
		}
	case gesturePinch:
		a, b, ok := l.pinchPair()
		if !ok || g.baseDist == 0 {
			return
		}
		l.scale = clampScale(g.baseScale * dist(a, b) / g.baseDist)
	}
}

// PointerUp releases a pointer and rebuilds the gesture from the remainder.
func (l *Lightbox) PointerUp(id int) {
	if _, ok := l.pointers[id]; !ok {
		return
	}
	delete(l.pointers, id)
	for i, oid := range l.order {
		if oid == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	l.rebuildGesture()
}

// rebuildGesture derives the gesture from the current pointer count. One
// pointer drags only while zoomed in; two pinch; more than two keep pinching
// on the first pair and leave the extras inert.
func (l *Lightbox) rebuildGesture() {
	switch len(l.pointers) {
	case 0:
		l.gest = gestureIdle{}
	case 1:
		if l.scale > MinScale {
			l.gest = gestureDrag{start: l.pointers[l.order[0]], anchor: l.pan}
		} else {
			l.gest = gestureIdle{}
		}
	default:
		a, b, _ := l.pinchPair()
		l.gest = gesturePinch{baseDist: dist(a, b), baseScale: l.scale}
	}
}

func (l *Lightbox) pinchPair() (Point, Point, bool) {
	if len(l.order) < 2 {
		return Point{}, Point{}, false
	}
	return l.pointers[l.order[0]], l.pointers[l.order[1]], true
}

func (l *Lightbox) clearPointers() {
	l.pointers = make(map[int]Point)
	l.order = nil
	l.gest = gestureIdle{}
}

// IsOpen reports whether the viewer is visible.
func (l *Lightbox) IsOpen() bool { return l.open }

// Loading reports whether the spinner is visible.
func (l *Lightbox) Loading() bool { return l.loading }

// Scale returns the current zoom factor.
func (l *Lightbox) Scale() float64 { return l.scale }

// Pan returns the current translation in viewport pixels.
func (l *Lightbox) Pan() Point { return l.pan }

// URL returns the image currently shown, empty when closed.
func (l *Lightbox) URL() string { return l.url }

func clampScale(s float64) float64 {
	return math.Min(MaxScale, math.Max(MinScale, s))
}

func dist(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
