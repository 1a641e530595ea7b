// Package resolver fetches media metadata for a page URL from a
// content-resolution endpoint. The library never scrapes pages itself;
// everything behind this boundary is an opaque external feed.
package resolver

import (
	"context"
	"errors"
)

// ErrUnresolvable is returned when the endpoint has no metadata for a URL.
var ErrUnresolvable = errors.New("no metadata for url")

// TrackMeta is one playable stream discovered for a page.
type TrackMeta struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Metadata is everything the feed knows about a media page.
type Metadata struct {
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	MimeType     string      `json:"mime_type"`
	ThumbnailURL string      `json:"thumbnail_url"`
	Tracks       []TrackMeta `json:"tracks"`
}

//go:generate mockgen -destination=mocks/resolver_mock.go -package=mocks github.com/castkeep/castkeep/internal/resolver Resolver

// Resolver resolves a media page URL to its metadata.
type Resolver interface {
	Resolve(ctx context.Context, pageURL string) (*Metadata, error)
}
