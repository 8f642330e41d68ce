package enrich

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/araddon/dateparse"

	"paperbot/config"
	"paperbot/executor"
)

const defaultLookupBaseURL = "https://api.semanticscholar.org"

// Enrichment is the metadata a source resolved for one article.
type Enrichment struct {
	Abstract    string
	AuthorsFull []string
	Published   *time.Time
	Source      string
}

// LookupClient queries the metadata-lookup service by DOI.
type LookupClient struct {
	baseURL string
	client  *http.Client
	retry   executor.Policy
}

// NewLookupClient builds a client for the metadata service. baseURL may be
// empty to use the public endpoint.
func NewLookupClient(baseURL string, retry executor.Policy) *LookupClient {
	if baseURL == "" {
		baseURL = defaultLookupBaseURL
	}
	return &LookupClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: config.LookupTimeout},
		retry:   retry,
	}
}

type lookupResponse struct {
	Abstract string `json:"abstract"`
	Authors  []struct {
		Name string `json:"name"`
	} `json:"authors"`
	PublicationDate string `json:"publicationDate"`
}

// Lookup resolves metadata by DOI. Transport failures, bad statuses and
// responses without an abstract are retried; an empty author list is
// acceptable. Returns the enrichment or the final error after retries.
func (c *LookupClient) Lookup(ctx context.Context, doi string) (*Enrichment, error) {
	endpoint := c.baseURL + "/graph/v1/paper/DOI:" + url.PathEscape(doi) +
		"?fields=title,abstract,authors,year,publicationDate"

	var enr *Enrichment
	err := c.retry.Do(ctx, "metadata lookup", func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return err
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode != http.StatusOK {
			return &executor.StatusError{Code: resp.StatusCode, Body: string(body)}
		}

		var parsed lookupResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return err
		}
		if parsed.Abstract == "" {
			return &executor.ValidationError{Reason: "abstract missing from lookup response"}
		}

		authors := make([]string, 0, len(parsed.Authors))
		for _, a := range parsed.Authors {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}

		enr = &Enrichment{
			Abstract:    parsed.Abstract,
			AuthorsFull: authors,
			Source:      "API",
		}
		if parsed.PublicationDate != "" {
			if t, err := dateparse.ParseIn(parsed.PublicationDate, time.UTC); err == nil {
				enr.Published = &t
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enr, nil
}
