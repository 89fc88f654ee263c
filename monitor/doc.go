// Package monitor tracks the validity of the stored bearer token for a
// hosting view and forces a logout once it is absent, unreadable or expired.
//
// A view calls Evaluate when it becomes active and Stop when it goes away.
// Evaluate arms a single deferred action: either a one second countdown
// tick (ModeTick) or a one-shot timer (ModeTimer). That deferred action is
// the only thing that ends a session on elapsed time, and it ends it at
// most once per cycle. A cycle starts on every Evaluate; callbacks armed by
// an older cycle are ignored.
package monitor
