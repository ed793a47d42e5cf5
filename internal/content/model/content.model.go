package model

import "encoding/json"

// Localized is a value carried in both site languages.
type Localized struct {
	Vi string `json:"vi"`
	En string `json:"en"`
}

// Event is one entry of the "events" document.
type Event struct {
	ID        string    `json:"id"`
	Name      Localized `json:"name"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Location  string    `json:"location"`
	Content   Localized `json:"content"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

// Reflection is one entry of the "reflections" document.
type Reflection struct {
	ID      string    `json:"id"`
	Title   Localized `json:"title"`
	Content Localized `json:"content"`
	Date    string    `json:"date"`
	Author  string    `json:"author"`
}

// GalleryImage is one entry of the "gallery" document. The richer
// gallery-images / gallery-albums documents layer tags, captions and
// album membership on top of this shape client-side; the store does not
// enforce any of it.
type GalleryImage struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Name    string `json:"name"`
	Created string `json:"created"`
}

// SaveRequest is the write-proxy body. Data is the full replacement
// document; IDToken is accepted here for clients that cannot set an
// Authorization header.
type SaveRequest struct {
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	IDToken string          `json:"idToken"`
}

// SaveResponse is the proxy's success/failure envelope.
type SaveResponse struct {
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// NamesResponse lists the documents this deployment serves.
type NamesResponse struct {
	Names []string `json:"names"`
}
