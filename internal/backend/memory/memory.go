// internal/backend/memory/memory.go
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

// Backend is the reference in-memory backend. All state is guarded by one
// mutex; listing order is deterministic (insertion order) so pagination
// tokens stay honest across a walk.
type Backend struct {
	mu sync.Mutex

	products      []stapi.Product
	opportunities map[string][]stapi.Opportunity // productID -> candidate windows

	orderIDs      []string
	orders        map[string]stapi.Order
	orderStatuses map[string][]stapi.OrderStatus

	recordIDs      []string
	records        map[string]stapi.SearchRecord
	recordStatuses map[string][]stapi.SearchStatus
	collections    map[string]stapi.OpportunityCollection // keyed by record id
}

func New(products ...stapi.Product) *Backend {
	return &Backend{
		products:       products,
		opportunities:  map[string][]stapi.Opportunity{},
		orders:         map[string]stapi.Order{},
		orderStatuses:  map[string][]stapi.OrderStatus{},
		records:        map[string]stapi.SearchRecord{},
		recordStatuses: map[string][]stapi.SearchStatus{},
		collections:    map[string]stapi.OpportunityCollection{},
	}
}

// SetOpportunities installs the candidate windows a sync search will page
// over for a product.
func (b *Backend) SetOpportunities(productID string, opps []stapi.Opportunity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opportunities[productID] = opps
}

// slicePage pages over a stable slice with plain offset tokens, the same
// scheme the upstream test backends use. The core never inspects these
// tokens; they are opaque bytes to everything above this store.
func slicePage[T any](items []T, pg page.Request) (page.Page[T], error) {
	start := 0
	if pg.Token != "" {
		n, err := strconv.Atoi(pg.Token)
		if err != nil || n < 0 || n > len(items) {
			return page.Page[T]{}, result.InvalidPayload("invalid pagination token %q", pg.Token)
		}
		start = n
	}
	end := start + pg.Limit
	if end > len(items) {
		end = len(items)
	}
	out := page.Page[T]{Items: items[start:end]}
	if end < len(items) {
		out.NextToken = strconv.Itoa(end)
	}
	return out, nil
}

func (b *Backend) ListProducts(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Product]] {
	if err := ctx.Err(); err != nil {
		return result.Err[page.Page[stapi.Product]](result.BackendUnavailable("request cancelled: %s", err))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return result.Wrap(slicePage(b.products, pg))
}

func (b *Backend) GetProduct(ctx context.Context, id string) result.Result[stapi.Product] {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			return result.Ok(p)
		}
	}
	return result.Err[stapi.Product](result.NotFound("product %s not found", id))
}

func (b *Backend) ListOrders(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Order]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	orders := make([]stapi.Order, 0, len(b.orderIDs))
	for _, id := range b.orderIDs {
		orders = append(orders, b.orders[id])
	}
	return result.Wrap(slicePage(orders, pg))
}

func (b *Backend) GetOrder(ctx context.Context, id string) result.Result[stapi.Order] {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[id]
	if !ok {
		return result.Err[stapi.Order](result.NotFound("order %s not found", id))
	}
	return result.Ok(o)
}

func (b *Backend) ListOrderStatuses(ctx context.Context, orderID string, pg page.Request) result.Result[page.Page[stapi.OrderStatus]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	statuses, ok := b.orderStatuses[orderID]
	if !ok {
		return result.Err[page.Page[stapi.OrderStatus]](result.NotFound("order %s not found", orderID))
	}
	return result.Wrap(slicePage(statuses, pg))
}

func (b *Backend) CancelOrder(ctx context.Context, orderID string) result.Result[stapi.Order] {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.orders[orderID]
	if !ok {
		return result.Err[stapi.Order](result.NotFound("order %s not found", orderID))
	}
	if o.Properties.Status.StatusCode.Terminal() {
		return result.Err[stapi.Order](result.Conflict(
			"order %s is already %s", orderID, o.Properties.Status.StatusCode))
	}
	st := stapi.NewOrderStatus(stapi.OrderUserCancelled, "cancelled by user")
	o.Properties.Status = st
	b.orders[orderID] = o
	b.orderStatuses[orderID] = append(b.orderStatuses[orderID], st)
	return result.Ok(o)
}

func (b *Backend) CreateOrder(ctx context.Context, productID string, payload stapi.OrderPayload) result.Result[stapi.Order] {
	b.mu.Lock()
	defer b.mu.Unlock()
	st := stapi.NewOrderStatus(stapi.OrderReceived, "")
	o := stapi.NewOrder(uuid.NewString(), payload.Geometry, stapi.OrderProperties{
		ProductID: productID,
		Created:   time.Now().UTC(),
		Status:    st,
		SearchParameters: stapi.OrderSearchParameters{
			Datetime: payload.Datetime,
			Geometry: payload.Geometry,
			Filter:   payload.Filter,
		},
		OrderParameters: payload.OrderParameters,
	})
	b.orderIDs = append(b.orderIDs, o.ID)
	b.orders[o.ID] = o
	b.orderStatuses[o.ID] = []stapi.OrderStatus{st}
	return result.Ok(o)
}

func (b *Backend) SearchOpportunities(ctx context.Context, productID string, payload stapi.OpportunityPayload, pg page.Request) result.Result[page.Page[stapi.Opportunity]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return result.Wrap(slicePage(b.opportunities[productID], pg))
}

func (b *Backend) SearchOpportunitiesAsync(ctx context.Context, productID string, payload stapi.OpportunityPayload) result.Result[stapi.SearchRecord] {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := stapi.SearchRecord{
		ID:                 uuid.NewString(),
		ProductID:          productID,
		OpportunityRequest: payload,
		Status: stapi.SearchStatus{
			Timestamp:  time.Now().UTC(),
			StatusCode: stapi.SearchReceived,
		},
		Links: []stapi.Link{},
	}
	b.recordIDs = append(b.recordIDs, rec.ID)
	b.records[rec.ID] = rec
	b.recordStatuses[rec.ID] = []stapi.SearchStatus{rec.Status}
	return result.Ok(rec)
}

func (b *Backend) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	if !ok {
		return result.Err[stapi.SearchRecord](result.NotFound("search record %s not found", id))
	}
	return result.Ok(rec)
}

func (b *Backend) ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	recs := make([]stapi.SearchRecord, 0, len(b.recordIDs))
	for _, id := range b.recordIDs {
		recs = append(recs, b.records[id])
	}
	return result.Wrap(slicePage(recs, pg))
}

// AdvanceSearch moves an async search to a new status. Transitions out of a
// terminal state are rejected: completed and failed are sinks. Completing a
// search materializes its result collection from the product's candidate
// windows, addressable under the record's own id.
func (b *Backend) AdvanceSearch(id string, code stapi.SearchStatusCode, reason string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.records[id]
	if !ok {
		return result.NotFound("search record %s not found", id)
	}
	if rec.Status.StatusCode.Terminal() {
		return result.Conflict("search %s is already %s", id, rec.Status.StatusCode)
	}
	rec.Status = stapi.SearchStatus{
		Timestamp:  time.Now().UTC(),
		StatusCode: code,
		ReasonText: reason,
	}
	b.records[id] = rec
	b.recordStatuses[id] = append(b.recordStatuses[id], rec.Status)
	if code == stapi.SearchCompleted {
		coll := stapi.NewOpportunityCollection(b.opportunities[rec.ProductID])
		coll.ID = id
		b.collections[id] = coll
	}
	return nil
}

func (b *Backend) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	b.mu.Lock()
	defer b.mu.Unlock()
	statuses, ok := b.recordStatuses[recordID]
	if !ok {
		return result.Err[page.Page[stapi.SearchStatus]](result.NotFound("search record %s not found", recordID))
	}
	return result.Wrap(slicePage(statuses, pg))
}

func (b *Backend) GetOpportunityCollection(ctx context.Context, productID, collectionID string) result.Result[stapi.OpportunityCollection] {
	b.mu.Lock()
	defer b.mu.Unlock()
	coll, ok := b.collections[collectionID]
	if !ok || b.records[collectionID].ProductID != productID {
		return result.Err[stapi.OpportunityCollection](result.NotFound("opportunity collection %s not found", collectionID))
	}
	return result.Ok(coll)
}
