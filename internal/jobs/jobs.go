// Package jobs serves the static job catalog.
package jobs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/job-assistant/internal/schemas"
	"github.com/jonathan/job-assistant/internal/types"
)

//go:embed listings.json
var defaultListings []byte

//go:embed listings.schema.json
var listingsSchema []byte

// Catalog is an immutable set of job listings.
type Catalog struct {
	listings []types.JobListing
}

// Load parses and validates a listings document.
func Load(data []byte) (*Catalog, error) {
	if err := schemas.Validate("listings", listingsSchema, data); err != nil {
		return nil, fmt.Errorf("invalid job listings: %w", err)
	}

	var listings []types.JobListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse job listings: %w", err)
	}
	return &Catalog{listings: listings}, nil
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(defaultListings)
}

// Search returns listings whose title contains query and whose location
// contains location, both case-insensitive. Empty filters match everything.
func (c *Catalog) Search(query, location string) []types.JobListing {
	query = strings.ToLower(strings.TrimSpace(query))
	location = strings.ToLower(strings.TrimSpace(location))

	matches := make([]types.JobListing, 0, len(c.listings))
	for _, job := range c.listings {
		if query != "" && !strings.Contains(strings.ToLower(job.Title), query) {
			continue
		}
		if location != "" && !strings.Contains(strings.ToLower(job.Location), location) {
			continue
		}
		matches = append(matches, job)
	}
	return matches
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}

// MustDefault is Default that panics if the embedded catalog is invalid.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}
