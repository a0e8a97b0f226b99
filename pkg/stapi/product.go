// pkg/stapi/product.go
package stapi

import "encoding/json"

type ProviderRole string

const (
	RoleLicensor  ProviderRole = "licensor"
	RoleProducer  ProviderRole = "producer"
	RoleProcessor ProviderRole = "processor"
	RoleHost      ProviderRole = "host"
)

type Provider struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Roles       []ProviderRole `json:"roles"`
	URL         string         `json:"url"`
}

// Product is an immutable catalog entry describing a tasking capability.
// Queryables and OrderParameters are JSON-schema documents served verbatim.
type Product struct {
	Type            string          `json:"type"`
	StapiType       string          `json:"stapi_type"`
	StapiVersion    string          `json:"stapi_version"`
	ConformsTo      []string        `json:"conformsTo,omitempty"`
	ID              string          `json:"id"`
	Title           string          `json:"title,omitempty"`
	Description     string          `json:"description,omitempty"`
	Keywords        []string        `json:"keywords,omitempty"`
	License         string          `json:"license"`
	Providers       []Provider      `json:"providers,omitempty"`
	Links           []Link          `json:"links"`
	Queryables      json.RawMessage `json:"-"`
	OrderParameters json.RawMessage `json:"-"`
}

const Version = "0.1.0"

// NewProduct fills the fixed type discriminators.
func NewProduct(id, title, license string) Product {
	return Product{
		Type:         "Collection",
		StapiType:    "Product",
		StapiVersion: Version,
		ID:           id,
		Title:        title,
		License:      license,
		Links:        []Link{},
	}
}

// WithLinks returns a copy of the product with links appended; the catalog
// entry itself is never mutated.
func (p Product) WithLinks(links ...Link) Product {
	out := p
	out.Links = append(append([]Link{}, p.Links...), links...)
	return out
}

type ProductsCollection struct {
	Type     string    `json:"type"`
	Products []Product `json:"products"`
	Links    []Link    `json:"links"`
}
