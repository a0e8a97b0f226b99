// internal/router/orders.go
package router

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"stapi/pkg/backend"
	"stapi/pkg/page"
	"stapi/pkg/stapi"
)

func intString(n int) string { return strconv.Itoa(n) }

func (rt *Router) listOrders(w http.ResponseWriter, r *http.Request) {
	pg, err := page.Decode(r.URL.Query())
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	res, err := rt.root.ListOrders(r.Context(), pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	coll := stapi.OrderCollection{
		Type:     "FeatureCollection",
		Features: make([]stapi.Order, 0, len(res.Items)),
		Links:    []stapi.Link{},
	}
	for _, o := range res.Items {
		coll.Features = append(coll.Features, rt.orderWithLinks(o))
	}
	if res.NextToken != "" {
		coll.Links = append(coll.Links, rt.nextLink(rt.url("orders"), pg, res.NextToken))
	}
	w.Header().Set("Content-Type", stapi.TypeGeoJSON)
	writeJSON(w, http.StatusOK, coll)
}

func (rt *Router) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := rt.root.GetOrder(r.Context(), chi.URLParam(r, "orderId")).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.orderWithLinks(o))
}

// orderWithLinks adds self and, when the routes exist, monitor/cancel links.
func (rt *Router) orderWithLinks(o stapi.Order) stapi.Order {
	links := []stapi.Link{
		{Href: rt.url("orders", o.ID), Rel: "self", Type: stapi.TypeGeoJSON},
	}
	if rt.caps.OrderStatuses {
		links = append(links, stapi.Link{Href: rt.url("orders", o.ID, "statuses"), Rel: "monitor", Type: stapi.TypeJSON})
	}
	if rt.caps.OrderCancel {
		links = append(links, stapi.Link{Href: rt.url("orders", o.ID, "cancel"), Rel: "cancel", Type: stapi.TypeJSON, Method: http.MethodPost})
	}
	out := o
	out.Links = append(append([]stapi.Link{}, o.Links...), links...)
	return out
}

func (rt *Router) listOrderStatuses(w http.ResponseWriter, r *http.Request) {
	pg, err := page.Decode(r.URL.Query())
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	orderID := chi.URLParam(r, "orderId")
	res, err := rt.statuses.ListOrderStatuses(r.Context(), orderID, pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	coll := stapi.OrderStatusesCollection{Statuses: res.Items, Links: []stapi.Link{}}
	if coll.Statuses == nil {
		coll.Statuses = []stapi.OrderStatus{}
	}
	if res.NextToken != "" {
		coll.Links = append(coll.Links, rt.nextLink(rt.url("orders", orderID, "statuses"), pg, res.NextToken))
	}
	writeJSON(w, http.StatusOK, coll)
}

func (rt *Router) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := rt.canceller.CancelOrder(r.Context(), chi.URLParam(r, "orderId")).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.orderWithLinks(o))
}

func (rt *Router) createOrder(p backend.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload stapi.OrderPayload
		if err := decodeBody(r, &payload); err != nil {
			rt.failure(w, r, err)
			return
		}
		o, err := p.Orders.CreateOrder(r.Context(), p.Catalog.ID, payload).Unpack()
		if err != nil {
			rt.failure(w, r, err)
			return
		}
		w.Header().Set("Location", rt.url("orders", o.ID))
		writeJSON(w, http.StatusCreated, rt.orderWithLinks(o))
	}
}
