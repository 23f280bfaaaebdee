// Package domain defines the catalog entities and the artist submission
// record shared by every layer of the server.
package domain

import (
	"maps"
	"slices"
	"time"
)

// Artist is a roster member of the label.
type Artist struct {
	ID          string            `json:"id" yaml:"id"`
	Name        string            `json:"name" yaml:"name"`
	Genre       string            `json:"genre" yaml:"genre"`
	Bio         string            `json:"bio" yaml:"bio"`
	Image       string            `json:"image,omitempty" yaml:"image"`
	SocialLinks map[string]string `json:"socialLinks,omitempty" yaml:"socialLinks"` // platform -> URL
	AITools     []string          `json:"aiTools,omitempty" yaml:"aiTools"`
	Releases    []string          `json:"releases,omitempty" yaml:"releases"` // release IDs
	Featured    bool              `json:"featured" yaml:"featured"`
	JoinDate    time.Time         `json:"joinDate" yaml:"joinDate"`
	Location    string            `json:"location,omitempty" yaml:"location"`
	Website     string            `json:"website,omitempty" yaml:"website"`
}

// Clone returns a deep copy so callers can never mutate a backing store.
func (a *Artist) Clone() *Artist {
	if a == nil {
		return nil
	}
	c := *a
	c.SocialLinks = maps.Clone(a.SocialLinks)
	c.AITools = slices.Clone(a.AITools)
	c.Releases = slices.Clone(a.Releases)
	return &c
}
