package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrSessionExpired marks a 401 from the provider. Callers recover locally by
// clearing the stored token and sending the user back to login.
var ErrSessionExpired = errors.New("catalog: session expired")

// ErrNoPlayableTracks is returned when a playlist yields zero tracks with a
// playback handle.
var ErrNoPlayableTracks = errors.New("catalog: no playable tracks in playlist")

// Client wraps authenticated requests to the streaming provider's Web API.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.spotify.com/v1"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) get(ctx context.Context, token, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("catalog: provider status %d for %s", resp.StatusCode, endpoint)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type apiProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Product     string `json:"product"`
}

// FetchProfile returns the account profile of the token's owner.
func (c *Client) FetchProfile(ctx context.Context, token string) (Profile, error) {
	var body apiProfile
	if err := c.get(ctx, token, "/me", &body); err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:          body.ID,
		DisplayName: body.DisplayName,
		Product:     body.Product,
	}, nil
}

type apiImage struct {
	URL string `json:"url"`
}

type apiPlaylist struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Images      []apiImage `json:"images"`
	Tracks      struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

type apiPlaylistPage struct {
	Items []apiPlaylist `json:"items"`
}

func mapPlaylists(items []apiPlaylist) []Playlist {
	out := make([]Playlist, 0, len(items))
	for _, it := range items {
		pl := Playlist{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			TrackCount:  it.Tracks.Total,
		}
		if len(it.Images) > 0 {
			pl.ImageURL = it.Images[0].URL
		}
		out = append(out, pl)
	}
	return out
}

// FetchPlaylists lists playlists the account may pick from. Elevated accounts
// get their personal playlists; standard accounts are restricted to the
// featured listing.
func (c *Client) FetchPlaylists(ctx context.Context, token string, personal bool) ([]Playlist, error) {
	if personal {
		var body apiPlaylistPage
		if err := c.get(ctx, token, "/me/playlists?limit=50", &body); err != nil {
			return nil, err
		}
		return mapPlaylists(body.Items), nil
	}

	var body struct {
		Playlists apiPlaylistPage `json:"playlists"`
	}
	if err := c.get(ctx, token, "/browse/featured-playlists?limit=50", &body); err != nil {
		return nil, err
	}
	return mapPlaylists(body.Playlists.Items), nil
}

// SearchPlaylists searches the public catalog by name. An empty query returns
// an empty result without touching the provider.
func (c *Client) SearchPlaylists(ctx context.Context, token, query string) ([]Playlist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Playlist{}, nil
	}

	var body struct {
		Playlists apiPlaylistPage `json:"playlists"`
	}
	endpoint := "/search?q=" + url.QueryEscape(query) + "&type=playlist&limit=20"
	if err := c.get(ctx, token, endpoint, &body); err != nil {
		return nil, err
	}
	return mapPlaylists(body.Playlists.Items), nil
}

type apiTrack struct {
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name        string     `json:"name"`
		ReleaseDate string     `json:"release_date"`
		Images      []apiImage `json:"images"`
	} `json:"album"`
}

// FetchTracks returns the playable tracks of a playlist. Entries without a
// playback handle (removed or region-locked tracks) are dropped.
func (c *Client) FetchTracks(ctx context.Context, token, playlistID string) ([]Track, error) {
	var body struct {
		Items []struct {
			Track *apiTrack `json:"track"`
		} `json:"items"`
	}
	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks?limit=100"
	if err := c.get(ctx, token, endpoint, &body); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(body.Items))
	for _, it := range body.Items {
		if it.Track == nil || it.Track.URI == "" {
			continue
		}
		tr := Track{
			Title:       it.Track.Name,
			Album:       it.Track.Album.Name,
			ReleaseDate: it.Track.Album.ReleaseDate,
			URI:         it.Track.URI,
		}
		for _, a := range it.Track.Artists {
			tr.Artists = append(tr.Artists, a.Name)
		}
		if len(it.Track.Album.Images) > 0 {
			tr.ArtworkURL = it.Track.Album.Images[0].URL
		}
		tracks = append(tracks, tr)
	}
	return tracks, nil
}

// RandomTracks draws up to n playable tracks from a playlist in shuffled
// order. A playlist with zero playable tracks yields ErrNoPlayableTracks.
func (c *Client) RandomTracks(ctx context.Context, token, playlistID string, n int) ([]Track, error) {
	tracks, err := c.FetchTracks(ctx, token, playlistID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, ErrNoPlayableTracks
	}

	shuffled := make([]Track, len(tracks))
	copy(shuffled, tracks)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n], nil
}
