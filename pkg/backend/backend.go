// pkg/backend/backend.go
package backend

import (
	"context"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

// Root is the minimal contract every backend must implement. All operations
// take the request context and must be safe to invoke concurrently; a backend
// may fail fast if the context is already cancelled.
type Root interface {
	ListProducts(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Product]]
	GetProduct(ctx context.Context, id string) result.Result[stapi.Product]
	ListOrders(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Order]]
	GetOrder(ctx context.Context, id string) result.Result[stapi.Order]
}

// OrderStatusLister is an optional root extension serving the append-only
// status history of an order.
type OrderStatusLister interface {
	ListOrderStatuses(ctx context.Context, orderID string, pg page.Request) result.Result[page.Page[stapi.OrderStatus]]
}

// OrderCanceller is an optional root extension. Cancelling an order in a
// terminal state is a conflict.
type OrderCanceller interface {
	CancelOrder(ctx context.Context, orderID string) result.Result[stapi.Order]
}

// SearchRecordProvider is an optional root extension backing asynchronous
// opportunity search. The core reads records passively; status advancement is
// entirely the backend's responsibility.
type SearchRecordProvider interface {
	GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord]
	ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]]
}

// SearchRecordStatusLister is an optional root extension serving the
// append-only status history of a search record.
type SearchRecordStatusLister interface {
	ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]]
}

// OpportunitySearcher performs a synchronous opportunity search for one
// product. The returned page's token, if any, continues the same search.
type OpportunitySearcher interface {
	SearchOpportunities(ctx context.Context, productID string, payload stapi.OpportunityPayload, pg page.Request) result.Result[page.Page[stapi.Opportunity]]
}

// AsyncOpportunitySearcher dispatches an asynchronous search and returns a
// freshly created record in received or in_progress state without blocking
// for completion.
type AsyncOpportunitySearcher interface {
	SearchOpportunitiesAsync(ctx context.Context, productID string, payload stapi.OpportunityPayload) result.Result[stapi.SearchRecord]
}

// OpportunityCollectionGetter serves the result set of a completed
// asynchronous search. Collection ids are assigned by the backend when a
// search completes; the stores here reuse the search record id.
type OpportunityCollectionGetter interface {
	GetOpportunityCollection(ctx context.Context, productID, collectionID string) result.Result[stapi.OpportunityCollection]
}

// OrderCreator creates an order against one product.
type OrderCreator interface {
	CreateOrder(ctx context.Context, productID string, payload stapi.OrderPayload) result.Result[stapi.Order]
}

// Product binds a catalog entry to its per-product operations. Nil fields mean
// the product does not support the operation; products of the same backend may
// share implementations. Results requires Async: result collections only ever
// come out of asynchronous searches.
type Product struct {
	Catalog stapi.Product
	Sync    OpportunitySearcher
	Async   AsyncOpportunitySearcher
	Results OpportunityCollectionGetter
	Orders  OrderCreator
}
