package catalog

import "strings"

// Profile is the account profile returned by the streaming provider.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Product     string `json:"product"` // "premium" or "free"
}

// Playlist is a selectable playlist from the provider catalog.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	TrackCount  int    `json:"trackCount"`
}

// Track is one playable song drawn from a playlist. URI is the opaque
// playback handle consumed by the player client; it is never parsed here.
type Track struct {
	Title       string   `json:"title"`
	Artists     []string `json:"artists"`
	Album       string   `json:"album"`
	ReleaseDate string   `json:"releaseDate"` // ISO date, possibly partial ("1994" or "1994-06")
	ArtworkURL  string   `json:"artworkUrl,omitempty"`
	URI         string   `json:"uri"`
}

// ReleaseYear extracts the year component of the release date.
// Provider dates can be year-only, so everything before the first dash counts.
func (t Track) ReleaseYear() string {
	if t.ReleaseDate == "" {
		return "Unknown"
	}
	if i := strings.IndexByte(t.ReleaseDate, '-'); i >= 0 {
		return t.ReleaseDate[:i]
	}
	return t.ReleaseDate
}

// Artist joins the artist names for display.
func (t Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}
