// internal/backend/memory/seed.go
package memory

import (
	"encoding/json"
	"fmt"

	"stapi/pkg/stapi"
)

// FixtureProducts returns the demo catalog used when no seed is configured.
func FixtureProducts() []stapi.Product {
	p := stapi.NewProduct("EO-1-multispectral", "Multispectral imagery", "proprietary")
	p.Description = "Full color electro-optical image"
	p.Keywords = []string{"EO", "multispectral"}
	p.ConformsTo = []string{"https://geojson.org/schema/Polygon.json"}
	p.Providers = []stapi.Provider{{
		Name:  "Example Constellation",
		Roles: []stapi.ProviderRole{stapi.RoleProducer},
		URL:   "https://example.com",
	}}
	p.Queryables = json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"off_nadir": {"type": "number", "minimum": 0, "maximum": 45}
		}
	}`)
	p.OrderParameters = json.RawMessage(`{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"delivery_mechanism": {"type": "string", "enum": ["S3", "HTTPS"]}
		},
		"additionalProperties": false
	}`)
	return []stapi.Product{p}
}

// FixtureOpportunities returns demo candidate windows for a product so sync
// search has something to page over out of the box.
func FixtureOpportunities(productID string) []stapi.Opportunity {
	out := make([]stapi.Opportunity, 0, 3)
	for _, dt := range []string{
		"2024-01-29T12:00:00Z/2024-01-29T12:10:00Z",
		"2024-01-30T01:30:00Z/2024-01-30T01:40:00Z",
		"2024-01-30T15:00:00Z/2024-01-30T15:10:00Z",
	} {
		out = append(out, stapi.Opportunity{
			Type:     "Feature",
			Geometry: json.RawMessage(`{"type":"Point","coordinates":[14.4,56.1]}`),
			Properties: stapi.OpportunityProperties{
				ProductID: productID,
				Datetime:  dt,
			},
			Links: []stapi.Link{},
		})
	}
	return out
}

// SeedOpportunitiesFromEnv parses per-product candidate windows from a JSON
// seed string, e.g. the OPPORTUNITY_SEED_JSON environment variable: a map of
// product id to opportunity features. An empty seed yields fixture windows
// for every product in the catalog.
func SeedOpportunitiesFromEnv(seed string, catalog []stapi.Product) (map[string][]stapi.Opportunity, error) {
	if seed == "" {
		out := make(map[string][]stapi.Opportunity, len(catalog))
		for _, p := range catalog {
			out[p.ID] = FixtureOpportunities(p.ID)
		}
		return out, nil
	}
	var out map[string][]stapi.Opportunity
	if err := json.Unmarshal([]byte(seed), &out); err != nil {
		return nil, fmt.Errorf("opportunity seed: %w", err)
	}
	return out, nil
}

// SeedFromEnv parses a catalog from a JSON seed string, e.g. the
// PRODUCT_SEED_JSON environment variable. An empty seed yields the fixture
// catalog.
func SeedFromEnv(seed string) ([]stapi.Product, error) {
	if seed == "" {
		return FixtureProducts(), nil
	}
	var entries []struct {
		ID, Title, Description, License string
		Keywords                        []string
	}
	if err := json.Unmarshal([]byte(seed), &entries); err != nil {
		return nil, fmt.Errorf("product seed: %w", err)
	}
	products := make([]stapi.Product, 0, len(entries))
	for _, e := range entries {
		p := stapi.NewProduct(e.ID, e.Title, e.License)
		p.Description = e.Description
		p.Keywords = e.Keywords
		products = append(products, p)
	}
	return products, nil
}
