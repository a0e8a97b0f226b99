// pkg/stapi/opportunity.go
package stapi

import (
	"encoding/json"
	"time"
)

// OpportunityPayload is the constraint set for a search. Geometry and Filter
// are passed to the backend verbatim; Token/Limit carry pagination for
// synchronous searches.
type OpportunityPayload struct {
	Datetime string          `json:"datetime"`
	Geometry json.RawMessage `json:"geometry"`
	Filter   json.RawMessage `json:"filter,omitempty"`
	Token    string          `json:"token,omitempty"`
	Limit    int             `json:"limit,omitempty"`
}

// SearchBody is the payload with pagination stripped, suitable for embedding
// in a create-order link body.
func (p OpportunityPayload) SearchBody() OpportunityPayload {
	p.Token = ""
	p.Limit = 0
	return p
}

type OpportunityProperties struct {
	ProductID string          `json:"product_id"`
	Datetime  string          `json:"datetime"`
	Extra     json.RawMessage `json:"-"`
}

// Opportunity is a candidate tasking window, GeoJSON-feature shaped.
// Opportunities are ephemeral: produced per search, never addressable.
type Opportunity struct {
	Type       string                `json:"type"`
	Geometry   json.RawMessage       `json:"geometry"`
	Properties OpportunityProperties `json:"properties"`
	Links      []Link                `json:"links"`
}

type OpportunityCollection struct {
	Type     string        `json:"type"`
	ID       string        `json:"id,omitempty"`
	Features []Opportunity `json:"features"`
	Links    []Link        `json:"links"`
}

func NewOpportunityCollection(features []Opportunity) OpportunityCollection {
	if features == nil {
		features = []Opportunity{}
	}
	return OpportunityCollection{Type: "FeatureCollection", Features: features, Links: []Link{}}
}

type SearchStatusCode string

const (
	SearchReceived   SearchStatusCode = "received"
	SearchInProgress SearchStatusCode = "in_progress"
	SearchFailed     SearchStatusCode = "failed"
	SearchCanceled   SearchStatusCode = "canceled"
	SearchCompleted  SearchStatusCode = "completed"
)

// Terminal reports whether no further transition is permitted.
func (c SearchStatusCode) Terminal() bool {
	return c == SearchCompleted || c == SearchFailed || c == SearchCanceled
}

type SearchStatus struct {
	Timestamp  time.Time        `json:"timestamp"`
	StatusCode SearchStatusCode `json:"status_code"`
	ReasonCode string           `json:"reason_code,omitempty"`
	ReasonText string           `json:"reason_text,omitempty"`
	Links      []Link           `json:"links,omitempty"`
}

// SearchRecord is the persistent handle for an asynchronous opportunity
// search. The backend assigns the id and owns all status transitions; the
// core only reads and relays.
type SearchRecord struct {
	ID                 string             `json:"id"`
	ProductID          string             `json:"product_id"`
	OpportunityRequest OpportunityPayload `json:"opportunity_request"`
	Status             SearchStatus       `json:"status"`
	Links              []Link             `json:"links"`
}

type SearchRecordsCollection struct {
	SearchRecords []SearchRecord `json:"search_records"`
	Links         []Link         `json:"links"`
}

// SearchStatusesCollection is the status history of one search record.
type SearchStatusesCollection struct {
	Statuses []SearchStatus `json:"statuses"`
	Links    []Link         `json:"links"`
}
