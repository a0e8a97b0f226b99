// pkg/stapi/link.go
package stapi

import "encoding/json"

const (
	TypeJSON    = "application/json"
	TypeGeoJSON = "application/geo+json"
)

// Link is a STAC-style hypermedia link.
type Link struct {
	Href   string          `json:"href"`
	Rel    string          `json:"rel"`
	Type   string          `json:"type,omitempty"`
	Title  string          `json:"title,omitempty"`
	Method string          `json:"method,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// RootDocument is the landing page served at /.
type RootDocument struct {
	ID          string   `json:"id"`
	ConformsTo  []string `json:"conformsTo"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Links       []Link   `json:"links"`
}

// Conformance lists the capability identifiers a deployment supports.
type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

// Conformance class URIs. The advertised set is derived from the capability
// descriptor so it can never disagree with the registered route table.
const (
	ConformanceCore                = "https://stapi.example.com/v0.1.0/core"
	ConformanceOrderStatuses       = "https://stapi.example.com/v0.1.0/order-statuses"
	ConformanceSearchesOpp         = "https://stapi.example.com/v0.1.0/searches-opportunity"
	ConformanceSearchesOppStatuses = "https://stapi.example.com/v0.1.0/searches-opportunity-statuses"
	ConformanceOpportunities       = "https://stapi.example.com/v0.1.0/opportunities"
	ConformanceOpportunitiesAsync  = "https://stapi.example.com/v0.1.0/opportunities-async"
)
