// pkg/backend/capabilities.go
package backend

import (
	"fmt"
	"sort"

	"stapi/pkg/stapi"
)

// ProductCapabilities records which optional operations one product supports.
type ProductCapabilities struct {
	SyncSearch       bool
	AsyncSearch      bool
	ResultCollection bool
	CreateOrder      bool
}

// Capabilities is computed once at construction from which backend operations
// were supplied, and is immutable for the lifetime of the router. It is safe
// for unsynchronized concurrent reads.
type Capabilities struct {
	OrderStatuses        bool
	OrderCancel          bool
	AsyncSearch          bool // root-level search record store present
	SearchRecordStatuses bool

	products map[string]ProductCapabilities
}

// NewCapabilities inspects the supplied backend and product set. Configuration
// inconsistencies are reported here, at construction, rather than deferred to
// first request: a product wired for async search requires the root backend to
// serve search records, and a product whose catalog entry advertises async
// search must actually carry the async operation.
func NewCapabilities(root Root, products []Product) (Capabilities, error) {
	caps := Capabilities{products: make(map[string]ProductCapabilities, len(products))}

	_, caps.OrderStatuses = root.(OrderStatusLister)
	_, caps.OrderCancel = root.(OrderCanceller)
	_, caps.AsyncSearch = root.(SearchRecordProvider)
	_, caps.SearchRecordStatuses = root.(SearchRecordStatusLister)
	if caps.SearchRecordStatuses && !caps.AsyncSearch {
		return Capabilities{}, fmt.Errorf(
			"backend serves search record statuses but has no search record store")
	}

	for _, p := range products {
		id := p.Catalog.ID
		if id == "" {
			return Capabilities{}, fmt.Errorf("product with empty id")
		}
		if _, dup := caps.products[id]; dup {
			return Capabilities{}, fmt.Errorf("duplicate product id %q", id)
		}
		pc := ProductCapabilities{
			SyncSearch:       p.Sync != nil,
			AsyncSearch:      p.Async != nil,
			ResultCollection: p.Results != nil,
			CreateOrder:      p.Orders != nil,
		}
		if pc.AsyncSearch && !caps.AsyncSearch {
			return Capabilities{}, fmt.Errorf(
				"product %q supports async opportunity search but the backend has no search record store", id)
		}
		if pc.ResultCollection && !pc.AsyncSearch {
			return Capabilities{}, fmt.Errorf(
				"product %q serves opportunity collections but does not support async search", id)
		}
		for _, uri := range p.Catalog.ConformsTo {
			if uri == stapi.ConformanceOpportunitiesAsync && !pc.AsyncSearch {
				return Capabilities{}, fmt.Errorf(
					"product %q advertises async opportunity search but does not implement it", id)
			}
		}
		caps.products[id] = pc
	}
	return caps, nil
}

// Product returns the capability set for a product id.
func (c Capabilities) Product(id string) (ProductCapabilities, bool) {
	pc, ok := c.products[id]
	return pc, ok
}

// CreateOrderAnywhere reports whether any product supports order creation.
func (c Capabilities) CreateOrderAnywhere() bool {
	for _, pc := range c.products {
		if pc.CreateOrder {
			return true
		}
	}
	return false
}

// ConformsTo derives the deployment's conformance class set. The router builds
// its route table from the same descriptor, so the two cannot disagree.
func (c Capabilities) ConformsTo() []string {
	set := map[string]struct{}{stapi.ConformanceCore: {}}
	if c.OrderStatuses {
		set[stapi.ConformanceOrderStatuses] = struct{}{}
	}
	if c.AsyncSearch {
		set[stapi.ConformanceSearchesOpp] = struct{}{}
	}
	if c.SearchRecordStatuses {
		set[stapi.ConformanceSearchesOppStatuses] = struct{}{}
	}
	for _, pc := range c.products {
		if pc.SyncSearch || pc.AsyncSearch {
			set[stapi.ConformanceOpportunities] = struct{}{}
		}
		if pc.AsyncSearch {
			set[stapi.ConformanceOpportunitiesAsync] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for uri := range set {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}

// ProductConformsTo derives the conformance set for one product, extending the
// catalog entry's own classes with the search classes it actually supports.
func (c Capabilities) ProductConformsTo(p stapi.Product) []string {
	set := map[string]struct{}{}
	for _, uri := range p.ConformsTo {
		set[uri] = struct{}{}
	}
	if pc, ok := c.products[p.ID]; ok {
		if pc.SyncSearch || pc.AsyncSearch {
			set[stapi.ConformanceOpportunities] = struct{}{}
		}
		if pc.AsyncSearch && c.AsyncSearch {
			set[stapi.ConformanceOpportunitiesAsync] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for uri := range set {
		out = append(out, uri)
	}
	sort.Strings(out)
	return out
}
