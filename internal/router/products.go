// internal/router/products.go
package router

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"stapi/pkg/backend"
	"stapi/pkg/page"
	"stapi/pkg/stapi"
)

func (rt *Router) listProducts(w http.ResponseWriter, r *http.Request) {
	pg, err := page.Decode(r.URL.Query())
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	res, err := rt.root.ListProducts(r.Context(), pg).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	coll := stapi.ProductsCollection{
		Type:     "ProductCollection",
		Products: make([]stapi.Product, 0, len(res.Items)),
		Links:    []stapi.Link{},
	}
	for _, p := range res.Items {
		coll.Products = append(coll.Products, rt.productWithLinks(p))
	}
	if res.NextToken != "" {
		coll.Links = append(coll.Links, rt.nextLink(rt.url("products"), pg, res.NextToken))
	}
	writeJSON(w, http.StatusOK, coll)
}

// getProduct handles ids outside the registered catalog; registered products
// resolve through their literal subrouter instead.
func (rt *Router) getProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "productId")
	p, err := rt.root.GetProduct(r.Context(), id).Unpack()
	if err != nil {
		rt.failure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.productWithLinks(p))
}

func (rt *Router) getProductByID(id string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := rt.root.GetProduct(r.Context(), id).Unpack()
		if err != nil {
			rt.failure(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rt.productWithLinks(p))
	}
}

// productWithLinks synthesizes navigational links for a catalog entry. Link
// synthesis consults the capability descriptor: a link is never emitted for a
// route that was not registered.
func (rt *Router) productWithLinks(p stapi.Product) stapi.Product {
	pc, _ := rt.caps.Product(p.ID)
	links := []stapi.Link{
		{Href: rt.url("products", p.ID), Rel: "self", Type: stapi.TypeJSON},
		{Href: rt.url("products", p.ID, "conformance"), Rel: "conformance", Type: stapi.TypeJSON},
	}
	if p.Queryables != nil {
		links = append(links, stapi.Link{Href: rt.url("products", p.ID, "queryables"), Rel: "queryables", Type: stapi.TypeJSON})
	}
	if p.OrderParameters != nil {
		links = append(links, stapi.Link{Href: rt.url("products", p.ID, "order-parameters"), Rel: "order-parameters", Type: stapi.TypeJSON})
	}
	if pc.CreateOrder {
		links = append(links, stapi.Link{Href: rt.url("products", p.ID, "orders"), Rel: "create-order", Type: stapi.TypeGeoJSON, Method: http.MethodPost})
	}
	if pc.SyncSearch || pc.AsyncSearch {
		links = append(links, stapi.Link{Href: rt.url("products", p.ID, "opportunities"), Rel: "opportunities", Type: stapi.TypeGeoJSON, Method: http.MethodPost})
	}
	return p.WithLinks(links...)
}

func (rt *Router) productConformance(p backend.Product) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, stapi.Conformance{ConformsTo: rt.caps.ProductConformsTo(p.Catalog)})
	}
}

// productSchema serves a JSON-schema document verbatim.
func (rt *Router) productSchema(schema json.RawMessage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", stapi.TypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(schema)
	}
}

// nextLink builds the continuation link for a GET listing.
func (rt *Router) nextLink(href string, pg page.Request, token string) stapi.Link {
	q := url.Values{}
	q.Set("token", token)
	if pg.Limit != page.DefaultLimit {
		q.Set("limit", intString(pg.Limit))
	}
	return stapi.Link{Href: href + "?" + q.Encode(), Rel: "next", Type: stapi.TypeJSON}
}
