// Package player maintains the playback state snapshot that the control
// surfaces read. It refreshes the snapshot from the engine on a fixed poll
// interval and again whenever the engine reports a file load or end, with
// both triggers coalesced through a single pending-refresh slot.
//
// Playback transport commands are routed through the bridge so state the
// caller just changed is reflected immediately instead of waiting out the
// next poll.
package player
