package update

import "time"

type Domain string

const (
	DomainWindows  Domain = "windows"
	DomainCloud    Domain = "cloud"
	DomainStarlink Domain = "starlink"
)

// Domains lists every content vertical served by the engine, in route order.
var Domains = []Domain{DomainWindows, DomainCloud, DomainStarlink}

func ParseDomain(s string) (Domain, bool) {
	switch Domain(s) {
	case DomainWindows, DomainCloud, DomainStarlink:
		return Domain(s), true
	}
	return "", false
}

// Update is the canonical record produced by a refresh cycle. ID is stable
// across refreshes (derived from the link, or source+title when the feed
// carries no link). Title and Description hold plain text only.
type Update struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Link          string    `json:"link"`
	PublishedDate time.Time `json:"published_date"`
	Category      string    `json:"category"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Cloud domain extensions.
	CloudProvider string `json:"cloud_provider,omitempty"`
	ServiceType   string `json:"service_type,omitempty"`

	// Starlink domain extensions.
	Mission        string `json:"mission,omitempty"`
	SatelliteCount int    `json:"satellite_count,omitempty"`

	Tags []string `json:"tags,omitempty"`

	// Signature is a hash over the visible fields (title, description, link,
	// published date). The merge store uses it to decide whether a re-fetched
	// record actually changed. Not serialized to the API or cache file.
	Signature string `json:"-"`
}
