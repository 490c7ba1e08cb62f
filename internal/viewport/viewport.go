package viewport

import (
	"context"
	"math"
	"sync"

	"player-shell/internal/logging"
	"player-shell/internal/metrics"
)

// Rect is an absolute screen rectangle in (possibly fractional) device
// pixels, as measured by the shell UI's layout.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Windower is the windowing side channel the driver pushes geometry
// through. Both calls take rounded integer device pixels.
type Windower interface {
	SetSurfacePosition(ctx context.Context, x, y int) error
	SetSurfaceSize(ctx context.Context, width, height int) error
}

// Registry owns the single-active-driver slot. Exactly one driver may push
// geometry at a time; a second activation yields an inert driver so two
// geometry sources never fight over the one native surface.
type Registry struct {
	mu     sync.Mutex
	active *Driver
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Activate claims the driver slot and starts pushing rectangles to w. When
// the slot is already held the returned driver is inert: it accepts pushes
// and Close but never issues a windowing call.
func (r *Registry) Activate(ctx context.Context, w Windower) *Driver {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		metrics.ViewportRejectedActivations.Inc()
		logging.Warn("viewport activation rejected, a geometry driver is already active")
		return &Driver{inert: true}
	}

	d := &Driver{
		registry: r,
		windower: w,
		rects:    make(chan Rect, 1),
		done:     make(chan struct{}),
	}
	r.active = d
	metrics.ViewportActiveDrivers.Set(1)

	d.wg.Add(1)
	go d.run(ctx)
	return d
}

func (r *Registry) release(d *Driver) {
	r.mu.Lock()
	if r.active == d {
		r.active = nil
		metrics.ViewportActiveDrivers.Set(0)
	}
	r.mu.Unlock()
}

// Driver forwards rectangle updates to the windowing channel. Pushes are
// coalesced through a single slot so a burst of layout changes collapses
// into one native call carrying the newest rectangle.
type Driver struct {
	registry *Registry
	windower Windower
	inert    bool

	rects     chan Rect
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Inert reports whether this driver was refused the active slot.
func (d *Driver) Inert() bool {
	return d.inert
}

// Push schedules a geometry update. The newest rectangle wins; a pending
// one that was never sent is replaced.
func (d *Driver) Push(rect Rect) {
	if d.inert {
		return
	}
	select {
	case <-d.done:
		return
	default:
	}

	select {
	case d.rects <- rect:
	default:
		metrics.ViewportRectsCoalesced.Inc()
		select {
		case <-d.rects:
		default:
		}
		select {
		case d.rects <- rect:
		default:
		}
	}
}

// Close detaches the driver and frees the active slot. Safe to call more
// than once; only the first call has effect. The native surface persists,
// only the geometry source detaches.
func (d *Driver) Close() {
	if d.inert {
		return
	}
	d.closeOnce.Do(func() {
		close(d.done)
		d.wg.Wait()
		d.registry.release(d)
	})
}

func (d *Driver) run(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			return
		case <-ctx.Done():
			return
		case rect := <-d.rects:
			d.push(ctx, rect)
		}
	}
}

// push issues the two windowing calls for one rectangle. The native calls
// operate in integer device coordinates, so components are rounded to the
// nearest pixel.
func (d *Driver) push(ctx context.Context, rect Rect) {
	x := int(math.Round(rect.X))
	y := int(math.Round(rect.Y))
	w := int(math.Round(rect.Width))
	h := int(math.Round(rect.Height))

	status := "success"
	if err := d.windower.SetSurfacePosition(ctx, x, y); err != nil {
		status = "error"
		logging.Warn("surface position push failed: %v", err)
	} else if err := d.windower.SetSurfaceSize(ctx, w, h); err != nil {
		status = "error"
		logging.Warn("surface size push failed: %v", err)
	}
	metrics.ViewportPushesTotal.WithLabelValues(status).Inc()
}
