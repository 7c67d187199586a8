// Package session connects the per-frame builder to tap handling.
//
// Two execution contexts share a session. The frame context runs once per
// camera frame: it builds highlights and publishes them as an immutable
// Snapshot. The interactive context handles taps and layout changes: it reads
// whatever snapshot is current and never writes to it.
//
// Publishing is a single atomic pointer swap, so readers never block the
// frame loop and never see a half-built frame. A stale snapshot is simply
// replaced by the next one; nothing is cancelled.
//
// A frame that fails to build (bad sizes, a panicking custom mapper) is
// logged and skipped. The previous snapshot stays current and the loop keeps
// going.
package session
