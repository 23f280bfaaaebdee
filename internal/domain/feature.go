package domain

// Feature is a homepage spotlight pairing an artist with a release.
type Feature struct {
	ID          string `json:"id"`
	Headline    string `json:"headline"`
	ArtistID    string `json:"artistId,omitempty"`
	ReleaseID   string `json:"releaseId,omitempty"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty"`
}
