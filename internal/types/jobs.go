package types

// JobListing is one entry of the job catalog.
type JobListing struct {
	Title    string `json:"title"`
	Link     string `json:"link"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

// JobSearchResponse is returned by the job search endpoint.
type JobSearchResponse struct {
	Jobs []JobListing `json:"jobs"`
}
