// Package viewport drives the native overlay surface's screen rectangle
// from geometry reported by the shell UI. A registry enforces one active
// geometry driver at a time, and rectangle bursts are coalesced so the
// windowing channel sees only the newest rectangle.
package viewport
