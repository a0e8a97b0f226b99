// internal/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stapi/internal/backend/memory"
	"stapi/pkg/backend"
	"stapi/pkg/config"
	"stapi/pkg/logger"
	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

const testBase = "http://api.test"

func testConfig() config.Config {
	return config.Config{BasePublicURL: testBase, ServiceID: "stapi-test"}
}

func catalog(n int) []stapi.Product {
	out := make([]stapi.Product, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, stapi.NewProduct(fmt.Sprintf("p%d", i), "", "proprietary"))
	}
	return out
}

func opportunities(productID string, n int) []stapi.Opportunity {
	out := make([]stapi.Opportunity, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, stapi.Opportunity{
			Type:     "Feature",
			Geometry: json.RawMessage(`{"type":"Point","coordinates":[0,0]}`),
			Properties: stapi.OpportunityProperties{
				ProductID: productID,
				Datetime:  "2024-01-29T12:00:00Z/2024-01-30T12:00:00Z",
			},
			Links: []stapi.Link{},
		})
	}
	return out
}

// coreOnly narrows the memory backend to the four required operations so
// optional routes must not exist.
type coreOnly struct{ b *memory.Backend }

func (c coreOnly) ListProducts(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Product]] {
	return c.b.ListProducts(ctx, pg)
}
func (c coreOnly) GetProduct(ctx context.Context, id string) result.Result[stapi.Product] {
	return c.b.GetProduct(ctx, id)
}
func (c coreOnly) ListOrders(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Order]] {
	return c.b.ListOrders(ctx, pg)
}
func (c coreOnly) GetOrder(ctx context.Context, id string) result.Result[stapi.Order] {
	return c.b.GetOrder(ctx, id)
}

func fullRouter(t *testing.T) (*Router, *memory.Backend) {
	t.Helper()
	mem := memory.New(catalog(5)...)
	mem.SetOpportunities("p1", opportunities("p1", 5))
	products := make([]backend.Product, 0, 5)
	for _, p := range catalog(5) {
		products = append(products, backend.Product{Catalog: p, Sync: mem, Async: mem, Results: mem, Orders: mem})
	}
	rt, err := New(testConfig(), logger.Nop(), mem, products)
	require.NoError(t, err)
	return rt, mem
}

func do(t *testing.T, h http.Handler, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, path, nil)
	} else {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	for k, v := range hdr {
		r.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

const searchBody = `{"datetime":"2024-01-01T00:00:00Z/2024-02-01T00:00:00Z","geometry":{"type":"Point","coordinates":[14.4,56.1]}}`

func TestRootDocument(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var doc stapi.RootDocument
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, "stapi-test", doc.ID)
	assert.Contains(t, doc.ConformsTo, stapi.ConformanceCore)

	rels := map[string]bool{}
	for _, l := range doc.Links {
		rels[l.Rel] = true
	}
	assert.True(t, rels["products"])
	assert.True(t, rels["orders"])
	assert.True(t, rels["opportunity-search-records"])
}

func TestProductsPaginationScenario(t *testing.T) {
	rt, _ := fullRouter(t)

	// limit=2 over 5 products: 2 + 2 + 1, final page has no next link
	path := "/products?limit=2"
	var seen []string
	for i := 0; i < 3; i++ {
		w := do(t, rt, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var coll stapi.ProductsCollection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
		for _, p := range coll.Products {
			seen = append(seen, p.ID)
		}
		next := ""
		for _, l := range coll.Links {
			if l.Rel == "next" {
				next = l.Href
			}
		}
		if i < 2 {
			require.NotEmpty(t, next, "page %d must carry a next link", i)
			require.True(t, strings.HasPrefix(next, testBase))
			path = strings.TrimPrefix(next, testBase)
		} else {
			require.Empty(t, next, "final page must not carry a next link")
		}
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4", "p5"}, seen)
}

func TestProductsLimitValidation(t *testing.T) {
	rt, _ := fullRouter(t)
	for _, limit := range []string{"0", "101", "-1", "abc"} {
		w := do(t, rt, http.MethodGet, "/products?limit="+limit, "", nil)
		require.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "invalid_payload", body["code"])
	}
}

func TestGetProductLinksRespectCapabilities(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/products/p1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p stapi.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	rels := map[string]bool{}
	for _, l := range p.Links {
		rels[l.Rel] = true
	}
	assert.True(t, rels["self"])
	assert.True(t, rels["opportunities"])
	assert.True(t, rels["create-order"])

	w = do(t, rt, http.MethodGet, "/products/unknown", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConformanceMatchesRouteTable(t *testing.T) {
	mem := memory.New(catalog(1)...)
	rt, err := New(testConfig(), logger.Nop(), coreOnly{mem}, []backend.Product{{Catalog: catalog(1)[0]}})
	require.NoError(t, err)

	w := do(t, rt, http.MethodGet, "/conformance", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conf stapi.Conformance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
	assert.Equal(t, []string{stapi.ConformanceCore}, conf.ConformsTo)

	// the advertised set and the route table must agree: none of the
	// optional routes may exist
	for _, miss := range []struct{ method, path string }{
		{http.MethodPost, "/products/p1/orders"},
		{http.MethodPost, "/products/p1/opportunities"},
		{http.MethodGet, "/orders/any/statuses"},
		{http.MethodPost, "/orders/any/cancel"},
		{http.MethodGet, "/searches/opportunities"},
		{http.MethodGet, "/searches/opportunities/any"},
		{http.MethodGet, "/searches/opportunities/any/statuses"},
		{http.MethodGet, "/products/p1/opportunities/any"},
	} {
		w := do(t, rt, miss.method, miss.path, "{}", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, "%s %s must be a routing miss", miss.method, miss.path)
	}
}

func TestSyncOnlySearchIgnoresPrefer(t *testing.T) {
	mem := memory.New(catalog(1)...)
	mem.SetOpportunities("p1", opportunities("p1", 3))
	rt, err := New(testConfig(), logger.Nop(), coreOnly{mem},
		[]backend.Product{{Catalog: catalog(1)[0], Sync: mem}})
	require.NoError(t, err)

	for _, prefer := range []string{"", "wait", "respond-async"} {
		hdr := map[string]string{}
		if prefer != "" {
			hdr["Prefer"] = prefer
		}
		w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, hdr)
		require.Equal(t, http.StatusOK, w.Code, "prefer=%q must resolve synchronously", prefer)
		var coll stapi.OpportunityCollection
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
		assert.Len(t, coll.Features, 3, "results embedded directly, no search record")
		assert.Empty(t, w.Header().Get("Location"))
	}
}

func TestBothModesDefaultAsync(t *testing.T) {
	rt, mem := fullRouter(t)

	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, nil)
	require.Equal(t, http.StatusCreated, w.Code, "absent preference dispatches asynchronously")
	var rec stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, stapi.SearchReceived, rec.Status.StatusCode)
	assert.Equal(t, testBase+"/searches/opportunities/"+rec.ID, w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get("Preference-Applied"), "no preference was expressed")

	// poll is a passive read
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var polled stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polled))
	assert.Equal(t, stapi.SearchReceived, polled.Status.StatusCode)

	// backend advances the search; terminal state sticks
	require.NoError(t, mem.AdvanceSearch(rec.ID, stapi.SearchCompleted, ""))
	require.Error(t, mem.AdvanceSearch(rec.ID, stapi.SearchInProgress, ""))
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polled))
	assert.Equal(t, stapi.SearchCompleted, polled.Status.StatusCode)
}

func TestBothModesPreferWait(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody,
		map[string]string{"Prefer": "wait"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "wait", w.Header().Get("Preference-Applied"))
	var coll stapi.OpportunityCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
	assert.Len(t, coll.Features, 5)
}

func TestAsyncOnlyPreferWaitNotHonored(t *testing.T) {
	mem := memory.New(catalog(1)...)
	rt, err := New(testConfig(), logger.Nop(), mem,
		[]backend.Product{{Catalog: catalog(1)[0], Async: mem}})
	require.NoError(t, err)

	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody,
		map[string]string{"Prefer": "wait"})
	require.Equal(t, http.StatusCreated, w.Code, "async dispatch, not a silent failure")
	assert.Equal(t, "respond-async", w.Header().Get("Preference-Applied"),
		"the response must state that wait was not honored")
}

func TestInvalidPreferValue(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody,
		map[string]string{"Prefer": "handling=strict"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncSearchPaginationLink(t *testing.T) {
	rt, _ := fullRouter(t)
	body := `{"datetime":"2024-01-01T00:00:00Z/2024-02-01T00:00:00Z","geometry":{"type":"Point","coordinates":[0,0]},"limit":2}`
	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", body,
		map[string]string{"Prefer": "wait"})
	require.Equal(t, http.StatusOK, w.Code)
	var coll stapi.OpportunityCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
	require.Len(t, coll.Features, 2)

	var next *stapi.Link
	for i := range coll.Links {
		if coll.Links[i].Rel == "next" {
			next = &coll.Links[i]
		}
	}
	require.NotNil(t, next, "a continuation link must be present")
	assert.Equal(t, http.MethodPost, next.Method)
	var nextPayload stapi.OpportunityPayload
	require.NoError(t, json.Unmarshal(next.Body, &nextPayload))
	assert.NotEmpty(t, nextPayload.Token, "link body carries the continuation token")
	assert.Equal(t, 2, nextPayload.Limit)
}

func TestOrderFlow(t *testing.T) {
	rt, _ := fullRouter(t)
	orderBody := `{"datetime":"2024-01-01T00:00:00Z/2024-02-01T00:00:00Z","geometry":{"type":"Point","coordinates":[0,0]},"order_parameters":{"delivery_mechanism":"S3"}}`

	w := do(t, rt, http.MethodPost, "/products/p1/orders", orderBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var o stapi.Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &o))
	require.NotEmpty(t, o.ID)
	assert.Equal(t, testBase+"/orders/"+o.ID, w.Header().Get("Location"))
	assert.Equal(t, stapi.OrderReceived, o.Properties.Status.StatusCode)

	rels := map[string]string{}
	for _, l := range o.Links {
		rels[l.Rel] = l.Href
	}
	assert.Equal(t, testBase+"/orders/"+o.ID+"/statuses", rels["monitor"],
		"created order links to its status history")

	w = do(t, rt, http.MethodGet, "/orders/"+o.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, rt, http.MethodGet, "/orders/"+o.ID+"/statuses", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var statuses stapi.OrderStatusesCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	require.Len(t, statuses.Statuses, 1)

	w = do(t, rt, http.MethodPost, "/orders/"+o.ID+"/cancel", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, rt, http.MethodPost, "/orders/"+o.ID+"/cancel", "", nil)
	require.Equal(t, http.StatusConflict, w.Code, "terminal order cannot be cancelled again")
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "conflict", body["code"])
}

func TestOrderNotFound(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/orders/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestMalformedBody(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodPost, "/products/p1/orders", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchRecordNotFound(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/searches/opportunities/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSearchRecords(t *testing.T) {
	rt, _ := fullRouter(t)
	for i := 0; i < 3; i++ {
		w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, nil)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := do(t, rt, http.MethodGet, "/searches/opportunities?limit=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var coll stapi.SearchRecordsCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
	assert.Len(t, coll.SearchRecords, 2)
	var next string
	for _, l := range coll.Links {
		if l.Rel == "next" {
			next = l.Href
		}
	}
	assert.NotEmpty(t, next)
}

func TestCompletedSearchResultsRetrievable(t *testing.T) {
	rt, mem := fullRouter(t)

	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rec stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	// before completion there is no results link and no collection
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var polled stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polled))
	for _, l := range polled.Links {
		assert.NotEqual(t, "opportunities", l.Rel, "pending search must not link to results")
	}
	w = do(t, rt, http.MethodGet, "/products/p1/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, mem.AdvanceSearch(rec.ID, stapi.SearchCompleted, ""))

	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polled))
	var results string
	for _, l := range polled.Links {
		if l.Rel == "opportunities" {
			results = l.Href
		}
	}
	require.Equal(t, testBase+"/products/p1/opportunities/"+rec.ID, results,
		"completed record must link to its result collection")

	w = do(t, rt, http.MethodGet, strings.TrimPrefix(results, testBase), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stapi.TypeGeoJSON, w.Header().Get("Content-Type"))
	var coll stapi.OpportunityCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &coll))
	assert.Equal(t, rec.ID, coll.ID)
	assert.Len(t, coll.Features, 5)
	rels := map[string]bool{}
	for _, l := range coll.Links {
		rels[l.Rel] = true
	}
	assert.True(t, rels["self"])

	// the collection belongs to p1; another product's route must miss
	w = do(t, rt, http.MethodGet, "/products/p2/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestOpportunityCollectionNotFound(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/products/p1/opportunities/nope", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body["code"])
}

func TestSearchRecordStatusHistory(t *testing.T) {
	rt, mem := fullRouter(t)

	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rec stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	require.NoError(t, mem.AdvanceSearch(rec.ID, stapi.SearchInProgress, ""))
	require.NoError(t, mem.AdvanceSearch(rec.ID, stapi.SearchCompleted, ""))

	// the record links to its history
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var polled stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &polled))
	var monitor string
	for _, l := range polled.Links {
		if l.Rel == "monitor" {
			monitor = l.Href
		}
	}
	require.Equal(t, testBase+"/searches/opportunities/"+rec.ID+"/statuses", monitor)

	w = do(t, rt, http.MethodGet, strings.TrimPrefix(monitor, testBase), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var hist stapi.SearchStatusesCollection
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hist))
	require.Len(t, hist.Statuses, 3, "history is append-only, dispatch included")
	assert.Equal(t, stapi.SearchReceived, hist.Statuses[0].StatusCode)
	assert.Equal(t, stapi.SearchInProgress, hist.Statuses[1].StatusCode)
	assert.Equal(t, stapi.SearchCompleted, hist.Statuses[2].StatusCode)

	w = do(t, rt, http.MethodGet, "/searches/opportunities/nope/statuses", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConformanceAdvertisesSearchRecordStatuses(t *testing.T) {
	rt, _ := fullRouter(t)
	w := do(t, rt, http.MethodGet, "/conformance", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var conf stapi.Conformance
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
	assert.Contains(t, conf.ConformsTo, stapi.ConformanceSearchesOppStatuses)
}

// regressingRecords lets a test make the record store report a record that
// has walked back out of a terminal state.
type regressingRecords struct {
	*memory.Backend
	override *stapi.SearchRecord
}

func (r *regressingRecords) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	if r.override != nil && r.override.ID == id {
		return result.Ok(*r.override)
	}
	return r.Backend.GetSearchRecord(ctx, id)
}

func TestSearchRecordTerminalRegressionIsDefect(t *testing.T) {
	mem := memory.New(catalog(1)...)
	root := &regressingRecords{Backend: mem}
	rt, err := New(testConfig(), logger.Nop(), root,
		[]backend.Product{{Catalog: catalog(1)[0], Async: mem}})
	require.NoError(t, err)

	w := do(t, rt, http.MethodPost, "/products/p1/opportunities", searchBody, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var rec stapi.SearchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rec))

	require.NoError(t, mem.AdvanceSearch(rec.ID, stapi.SearchCompleted, ""))
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code, "terminal record polls fine")

	regressed := rec
	regressed.Status = stapi.SearchStatus{StatusCode: stapi.SearchInProgress}
	root.override = &regressed
	w = do(t, rt, http.MethodGet, "/searches/opportunities/"+rec.ID, "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code,
		"a record leaving a terminal state is a defect, not a transition")
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal_defect", body["code"])
}

func TestRouterConstructionRejectsResultsWithoutAsync(t *testing.T) {
	mem := memory.New(catalog(1)...)
	_, err := New(testConfig(), logger.Nop(), mem,
		[]backend.Product{{Catalog: catalog(1)[0], Sync: mem, Results: mem}})
	require.Error(t, err, "result collections only come out of async searches")
}

func TestRouterConstructionRejectsMisconfiguredAsync(t *testing.T) {
	mem := memory.New(catalog(1)...)
	_, err := New(testConfig(), logger.Nop(), coreOnly{mem},
		[]backend.Product{{Catalog: catalog(1)[0], Async: mem}})
	require.Error(t, err, "async product against a record-less backend fails at construction")
}

func TestProductSchemas(t *testing.T) {
	fixtures := memory.FixtureProducts()
	mem := memory.New(fixtures...)
	rt, err := New(testConfig(), logger.Nop(), coreOnly{mem},
		[]backend.Product{{Catalog: fixtures[0]}})
	require.NoError(t, err)

	w := do(t, rt, http.MethodGet, "/products/"+fixtures[0].ID+"/queryables", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, string(fixtures[0].Queryables), w.Body.String(), "schema served verbatim")

	w = do(t, rt, http.MethodGet, "/products/"+fixtures[0].ID+"/order-parameters", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, string(fixtures[0].OrderParameters), w.Body.String())
}
