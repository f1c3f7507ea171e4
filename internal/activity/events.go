package activity

import "fmt"

// Family names a user-data family.
type Family string

const (
	FamilyRecentlyPlayed Family = "recently_played"
	FamilyFavorites      Family = "favorites"
	FamilyPlaylists      Family = "playlists"
	FamilyTags           Family = "tags"
	FamilyGenres         Family = "genres"
	FamilyHomeLayout     Family = "home_layout"
)

// Kind classifies an [Event].
type Kind int

const (
	// Optimistic: local state changed ahead of the remote write.
	Optimistic Kind = iota
	// Reconciled: local state was replaced by a fresh remote read.
	Reconciled
	// Fallback: a remote read failed and the cached copy was served.
	Fallback
	// Failed: a remote call failed; local state was left as is.
	Failed
	// Discarded: a reconciliation arrived after a newer optimistic mutation and was dropped.
	Discarded
)

func (k Kind) String() string {
	switch k {
	case Optimistic:
		return "optimistic"
	case Reconciled:
		return "reconciled"
	case Fallback:
		return "fallback"
	case Failed:
		return "failed"
	case Discarded:
		return "discarded"
	default:
		return "unknown"
	}
}

// Event reports a synchronization step to an optional observer such as the UI.
type Event struct {
	Family  Family
	Kind    Kind
	Message string
}

func (e Event) String() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: %s", e.Family, e.Kind)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Family, e.Kind, e.Message)
}
