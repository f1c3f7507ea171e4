// Package player implements the playback queue.
//
// A [Player] holds an append-only queue of tracks, a cursor into it and a play/pause flag. Playing a
// track already queued moves the cursor instead of enqueuing a duplicate. [Player.Next] and
// [Player.Previous] stop at the ends of the queue.
//
// Each started track is reported to a [Recorder] (the activity synchronizer in practice) and handed to
// an [Engine]. [BrowserEngine] opens the media page externally and reports "track ended" which
// [Player.Run] maps to Next.
package player
