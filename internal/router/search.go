// internal/router/search.go
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stapi/pkg/backend"
	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

// Prefer header values recognized for opportunity search dispatch.
const (
	preferWait  = "wait"
	preferAsync = "respond-async"
)

// parsePrefer reads the Prefer header. Returns the empty string when absent;
// any unrecognized value is a client error.
func parsePrefer(r *http.Request) (string, error) {
	v := r.Header.Get("Prefer")
	if v == "" || v == preferWait || v == preferAsync {
		return v, nil
	}
	return "", result.InvalidPayload("invalid Prefer header value: %s", v)
}

// searchOpportunities dispatches an opportunity search for one product.
//
// Mode selection: a product supporting only one mode always uses it. When
// both are supported, Prefer: wait forces synchronous resolution and anything
// else dispatches asynchronously. The Preference-Applied response header
// reports which preference was actually honored; a caller asking to wait
// against an async-only product sees Preference-Applied: respond-async, never
// a silent fallback.
func (rt *Router) searchOpportunities(p backend.Product, pc backend.ProductCapabilities) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prefer, err := parsePrefer(r)
		if err != nil {
			rt.failure(w, r, err)
			return
		}
		var payload stapi.OpportunityPayload
		if err := decodeBody(r, &payload); err != nil {
			rt.failure(w, r, err)
			return
		}

		switch {
		case pc.SyncSearch && (!pc.AsyncSearch || prefer == preferWait):
			rt.searchSync(w, r, p, pc, payload, prefer)
		case pc.AsyncSearch:
			rt.searchAsync(w, r, p, payload, prefer)
		default:
			// Unreachable while route registration tracks capabilities; kept
			// as the defensive terminal arm.
			rt.failure(w, r, result.Unsupported("product %s supports no opportunity search mode", p.Catalog.ID))
		}
	}
}

func (rt *Router) searchSync(w http.ResponseWriter, r *http.Request, p backend.Product, pc backend.ProductCapabilities, payload stapi.OpportunityPayload, prefer string) {
	pg, err := page.DecodeBody(payload.Token, payload.Limit)
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	res, err := p.Sync.SearchOpportunities(r.Context(), p.Catalog.ID, payload, pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}

	coll := stapi.NewOpportunityCollection(res.Items)
	if pc.CreateOrder {
		body, _ := json.Marshal(payload.SearchBody())
		coll.Links = append(coll.Links, stapi.Link{
			Href: rt.url("products", p.Catalog.ID, "orders"), Rel: "create-order",
			Type: stapi.TypeGeoJSON, Method: http.MethodPost, Body: body,
		})
	}
	if res.NextToken != "" {
		next := payload
		next.Token = res.NextToken
		next.Limit = pg.Limit
		body, _ := json.Marshal(next)
		coll.Links = append(coll.Links, stapi.Link{
			Href: rt.url("products", p.Catalog.ID, "opportunities"), Rel: "next",
			Type: stapi.TypeGeoJSON, Method: http.MethodPost, Body: body,
		})
	}

	if prefer == preferWait && rt.caps.AsyncSearch {
		w.Header().Set("Preference-Applied", preferWait)
	}
	w.Header().Set("Content-Type", stapi.TypeGeoJSON)
	writeJSON(w, http.StatusOK, coll)
}

func (rt *Router) searchAsync(w http.ResponseWriter, r *http.Request, p backend.Product, payload stapi.OpportunityPayload, prefer string) {
	rec, err := p.Async.SearchOpportunitiesAsync(r.Context(), p.Catalog.ID, payload).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	if rec.Status.StatusCode.Terminal() {
		rt.failure(w, r, result.Failure{
			Kind:   result.KindInternalDefect,
			Detail: "backend returned a freshly dispatched search in terminal state " + string(rec.Status.StatusCode),
		})
		return
	}

	href := rt.url("searches", "opportunities", rec.ID)
	rec.Links = append(rec.Links, stapi.Link{Href: href, Rel: "self", Type: stapi.TypeJSON})
	w.Header().Set("Location", href)
	if prefer != "" {
		w.Header().Set("Preference-Applied", preferAsync)
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (rt *Router) listSearchRecords(w http.ResponseWriter, r *http.Request) {
	pg, err := page.Decode(r.URL.Query())
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	res, err := rt.records.ListSearchRecords(r.Context(), pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	coll := stapi.SearchRecordsCollection{SearchRecords: res.Items, Links: []stapi.Link{}}
	if coll.SearchRecords == nil {
		coll.SearchRecords = []stapi.SearchRecord{}
	}
	for i := range coll.SearchRecords {
		coll.SearchRecords[i] = rt.searchRecordWithLinks(coll.SearchRecords[i])
	}
	if res.NextToken != "" {
		coll.Links = append(coll.Links, rt.nextLink(rt.url("searches", "opportunities"), pg, res.NextToken))
	}
	writeJSON(w, http.StatusOK, coll)
}

// getSearchRecord is the poll endpoint: a passive, idempotent read of
// backend-owned search state. The core performs no polling and holds no
// background task of its own.
func (rt *Router) getSearchRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := rt.records.GetSearchRecord(r.Context(), chi.URLParam(r, "searchRecordId")).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	if err := rt.checkTerminalSink(rec); err != nil {
		rt.failure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.searchRecordWithLinks(rec))
}

// checkTerminalSink remembers every record observed in a terminal state and
// rejects a poll that reports a different status for one of them. Terminal
// states are sinks; a record that walks one back is backend breakage, not a
// transition to relay.
func (rt *Router) checkTerminalSink(rec stapi.SearchRecord) error {
	rt.terminalMu.Lock()
	defer rt.terminalMu.Unlock()
	if prev, ok := rt.terminalSeen[rec.ID]; ok && rec.Status.StatusCode != prev {
		return result.Failure{
			Kind: result.KindInternalDefect,
			Detail: "search record " + rec.ID + " left terminal state " +
				string(prev) + " for " + string(rec.Status.StatusCode),
		}
	}
	if rec.Status.StatusCode.Terminal() {
		rt.terminalSeen[rec.ID] = rec.Status.StatusCode
	}
	return nil
}

func (rt *Router) listSearchRecordStatuses(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "searchRecordId")
	pg, err := page.Decode(r.URL.Query())
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	res, err := rt.recordStatuses.ListSearchRecordStatuses(r.Context(), id, pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	coll := stapi.SearchStatusesCollection{Statuses: res.Items, Links: []stapi.Link{}}
	if coll.Statuses == nil {
		coll.Statuses = []stapi.SearchStatus{}
	}
	if res.NextToken != "" {
		coll.Links = append(coll.Links, rt.nextLink(rt.url("searches", "opportunities", id, "statuses"), pg, res.NextToken))
	}
	writeJSON(w, http.StatusOK, coll)
}

// getOpportunityCollection serves the result set of a completed async search.
// The stores mint the collection under the search record's id, so the
// collection is addressable as soon as the record goes completed.
func (rt *Router) getOpportunityCollection(p backend.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "opportunityCollectionId")
		coll, err := p.Results.GetOpportunityCollection(r.Context(), p.Catalog.ID, id).Unpack()
		if err != nil {
			rt.failure(w, r, err)
			return
		}
		coll.Links = append(coll.Links, stapi.Link{
			Href: rt.url("products", p.Catalog.ID, "opportunities", id), Rel: "self", Type: stapi.TypeGeoJSON,
		})
		w.Header().Set("Content-Type", stapi.TypeGeoJSON)
		writeJSON(w, http.StatusOK, coll)
	}
}

func (rt *Router) searchRecordWithLinks(rec stapi.SearchRecord) stapi.SearchRecord {
	out := rec
	out.Links = append(append([]stapi.Link{}, rec.Links...), stapi.Link{
		Href: rt.url("searches", "opportunities", rec.ID), Rel: "self", Type: stapi.TypeJSON,
	})
	if rt.caps.SearchRecordStatuses {
		out.Links = append(out.Links, stapi.Link{
			Href: rt.url("searches", "opportunities", rec.ID, "statuses"), Rel: "monitor", Type: stapi.TypeJSON,
		})
	}
	if rec.Status.StatusCode == stapi.SearchCompleted {
		if pc, ok := rt.caps.Product(rec.ProductID); ok && pc.ResultCollection {
			out.Links = append(out.Links, stapi.Link{
				Href: rt.url("products", rec.ProductID, "opportunities", rec.ID), Rel: "opportunities", Type: stapi.TypeGeoJSON,
			})
		}
	}
	return out
}
