// pkg/backend/capabilities_test.go
package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

type coreRoot struct{}

func (coreRoot) ListProducts(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Product]] {
	return result.Ok(page.Page[stapi.Product]{})
}
func (coreRoot) GetProduct(ctx context.Context, id string) result.Result[stapi.Product] {
	return result.Err[stapi.Product](result.NotFound("no product %s", id))
}
func (coreRoot) ListOrders(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Order]] {
	return result.Ok(page.Page[stapi.Order]{})
}
func (coreRoot) GetOrder(ctx context.Context, id string) result.Result[stapi.Order] {
	return result.Err[stapi.Order](result.NotFound("no order %s", id))
}

type recordRoot struct{ coreRoot }

func (recordRoot) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	return result.Err[stapi.SearchRecord](result.NotFound("no record %s", id))
}
func (recordRoot) ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]] {
	return result.Ok(page.Page[stapi.SearchRecord]{})
}

type syncSearcher struct{}

func (syncSearcher) SearchOpportunities(ctx context.Context, productID string, payload stapi.OpportunityPayload, pg page.Request) result.Result[page.Page[stapi.Opportunity]] {
	return result.Ok(page.Page[stapi.Opportunity]{})
}

type asyncSearcher struct{}

func (asyncSearcher) SearchOpportunitiesAsync(ctx context.Context, productID string, payload stapi.OpportunityPayload) result.Result[stapi.SearchRecord] {
	return result.Ok(stapi.SearchRecord{ID: "r1", ProductID: productID})
}

type resultGetter struct{}

func (resultGetter) GetOpportunityCollection(ctx context.Context, productID, collectionID string) result.Result[stapi.OpportunityCollection] {
	return result.Err[stapi.OpportunityCollection](result.NotFound("no collection %s", collectionID))
}

type statusRoot struct{ recordRoot }

func (statusRoot) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	return result.Ok(page.Page[stapi.SearchStatus]{})
}

type statusOnlyRoot struct{ coreRoot }

func (statusOnlyRoot) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	return result.Ok(page.Page[stapi.SearchStatus]{})
}

func TestCapabilitiesDetection(t *testing.T) {
	caps, err := NewCapabilities(recordRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary"), Sync: syncSearcher{}, Async: asyncSearcher{}},
		{Catalog: stapi.NewProduct("p2", "", "proprietary"), Sync: syncSearcher{}},
	})
	require.NoError(t, err)
	assert.True(t, caps.AsyncSearch)
	assert.False(t, caps.OrderStatuses)
	assert.False(t, caps.OrderCancel)
	assert.False(t, caps.CreateOrderAnywhere())

	p1, ok := caps.Product("p1")
	require.True(t, ok)
	assert.True(t, p1.SyncSearch)
	assert.True(t, p1.AsyncSearch)

	p2, ok := caps.Product("p2")
	require.True(t, ok)
	assert.False(t, p2.AsyncSearch)

	_, ok = caps.Product("p3")
	assert.False(t, ok)
}

func TestCapabilitiesAsyncWithoutRecordStore(t *testing.T) {
	_, err := NewCapabilities(coreRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary"), Async: asyncSearcher{}},
	})
	require.Error(t, err, "async product against a backend without a record store is a configuration error")
}

func TestCapabilitiesAdvertisedAsyncWithoutImplementation(t *testing.T) {
	p := stapi.NewProduct("p1", "", "proprietary")
	p.ConformsTo = []string{stapi.ConformanceOpportunitiesAsync}
	_, err := NewCapabilities(recordRoot{}, []Product{{Catalog: p, Sync: syncSearcher{}}})
	require.Error(t, err)
}

func TestCapabilitiesResultsWithoutAsync(t *testing.T) {
	_, err := NewCapabilities(recordRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary"), Sync: syncSearcher{}, Results: resultGetter{}},
	})
	require.Error(t, err, "result collections without async search is a configuration error")
}

func TestCapabilitiesRecordStatusesDetection(t *testing.T) {
	caps, err := NewCapabilities(statusRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary"), Async: asyncSearcher{}, Results: resultGetter{}},
	})
	require.NoError(t, err)
	assert.True(t, caps.SearchRecordStatuses)
	assert.Contains(t, caps.ConformsTo(), stapi.ConformanceSearchesOppStatuses)

	p1, ok := caps.Product("p1")
	require.True(t, ok)
	assert.True(t, p1.ResultCollection)
}

func TestCapabilitiesRecordStatusesWithoutRecordStore(t *testing.T) {
	_, err := NewCapabilities(statusOnlyRoot{}, nil)
	require.Error(t, err, "status history without a record store is a configuration error")
}

func TestCapabilitiesDuplicateProduct(t *testing.T) {
	_, err := NewCapabilities(coreRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary")},
		{Catalog: stapi.NewProduct("p1", "", "proprietary")},
	})
	require.Error(t, err)
}

func TestConformsToDerivation(t *testing.T) {
	caps, err := NewCapabilities(coreRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{stapi.ConformanceCore}, caps.ConformsTo())

	caps, err = NewCapabilities(recordRoot{}, []Product{
		{Catalog: stapi.NewProduct("p1", "", "proprietary"), Sync: syncSearcher{}, Async: asyncSearcher{}},
	})
	require.NoError(t, err)
	assert.Contains(t, caps.ConformsTo(), stapi.ConformanceOpportunities)
	assert.Contains(t, caps.ConformsTo(), stapi.ConformanceOpportunitiesAsync)
	assert.Contains(t, caps.ConformsTo(), stapi.ConformanceSearchesOpp)
}
