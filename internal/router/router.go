// internal/router/router.go
package router

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"stapi/pkg/backend"
	"stapi/pkg/config"
	"stapi/pkg/stapi"
)

// Router exposes the tasking API for one backend instance. The route table is
// built once, at construction, from the capability descriptor: operations the
// backend does not support are never registered, so the route table itself is
// the conformance surface.
type Router struct {
	mux  chi.Router
	log  *zap.SugaredLogger
	base string
	id   string

	root     backend.Root
	caps     backend.Capabilities
	products map[string]backend.Product

	statuses       backend.OrderStatusLister        // nil unless supported
	canceller      backend.OrderCanceller           // nil unless supported
	records        backend.SearchRecordProvider     // nil unless supported
	recordStatuses backend.SearchRecordStatusLister // nil unless supported

	// Search record ids observed in a terminal state. A later poll reporting
	// a different status for one of these ids is a backend defect, not a
	// transition to relay.
	terminalMu   sync.Mutex
	terminalSeen map[string]stapi.SearchStatusCode
}

// New validates the backend/product configuration and assembles the route
// table. Configuration errors (e.g. a product advertising async search the
// backend cannot serve) fail here, never at request time.
func New(cfg config.Config, log *zap.SugaredLogger, root backend.Root, products []backend.Product) (*Router, error) {
	caps, err := backend.NewCapabilities(root, products)
	if err != nil {
		return nil, fmt.Errorf("capabilities: %w", err)
	}

	rt := &Router{
		mux:          chi.NewRouter(),
		log:          log,
		base:         strings.TrimRight(cfg.BasePublicURL, "/"),
		id:           cfg.ServiceID,
		root:         root,
		caps:         caps,
		products:     make(map[string]backend.Product, len(products)),
		terminalSeen: make(map[string]stapi.SearchStatusCode),
	}
	rt.statuses, _ = root.(backend.OrderStatusLister)
	rt.canceller, _ = root.(backend.OrderCanceller)
	rt.records, _ = root.(backend.SearchRecordProvider)
	rt.recordStatuses, _ = root.(backend.SearchRecordStatusLister)

	rt.mux.Get("/", rt.getRoot)
	rt.mux.Get("/conformance", rt.getConformance)
	rt.mux.Get("/products", rt.listProducts)
	rt.mux.Get("/products/{productId}", rt.getProduct)

	rt.mux.Get("/orders", rt.listOrders)
	rt.mux.Get("/orders/{orderId}", rt.getOrder)
	if rt.caps.OrderStatuses {
		rt.mux.Get("/orders/{orderId}/statuses", rt.listOrderStatuses)
	}
	if rt.caps.OrderCancel {
		rt.mux.Post("/orders/{orderId}/cancel", rt.cancelOrder)
	}
	if rt.caps.AsyncSearch {
		rt.mux.Get("/searches/opportunities", rt.listSearchRecords)
		rt.mux.Get("/searches/opportunities/{searchRecordId}", rt.getSearchRecord)
		if rt.caps.SearchRecordStatuses {
			rt.mux.Get("/searches/opportunities/{searchRecordId}/statuses", rt.listSearchRecordStatuses)
		}
	}

	for _, p := range products {
		rt.products[p.Catalog.ID] = p
		rt.registerProduct(p)
	}
	return rt, nil
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) { rt.mux.ServeHTTP(w, r) }

// registerProduct mounts the per-product route set under a literal prefix.
// Capability-dependent routes are registered only when present, so an
// unsupported operation is a routing miss rather than a business error.
func (rt *Router) registerProduct(p backend.Product) {
	pc, _ := rt.caps.Product(p.Catalog.ID)
	rt.mux.Route("/products/"+p.Catalog.ID, func(r chi.Router) {
		r.Get("/", rt.getProductByID(p.Catalog.ID))
		r.Get("/conformance", rt.productConformance(p))
		if p.Catalog.Queryables != nil {
			r.Get("/queryables", rt.productSchema(p.Catalog.Queryables))
		}
		if p.Catalog.OrderParameters != nil {
			r.Get("/order-parameters", rt.productSchema(p.Catalog.OrderParameters))
		}
		if pc.SyncSearch || pc.AsyncSearch {
			r.Post("/opportunities", rt.searchOpportunities(p, pc))
		}
		if pc.ResultCollection {
			r.Get("/opportunities/{opportunityCollectionId}", rt.getOpportunityCollection(p))
		}
		if pc.CreateOrder {
			r.Post("/orders", rt.createOrder(p))
		}
	})
}

// url joins the public base URL and a path.
func (rt *Router) url(parts ...string) string {
	return rt.base + "/" + strings.Join(parts, "/")
}

var _ http.Handler = (*Router)(nil)

// Capabilities exposes the descriptor for introspection (conformance tests
// assert it against the route table).
func (rt *Router) Capabilities() backend.Capabilities { return rt.caps }

func (rt *Router) getRoot(w http.ResponseWriter, r *http.Request) {
	doc := stapi.RootDocument{
		ID:         rt.id,
		ConformsTo: rt.caps.ConformsTo(),
		Title:      "Satellite Tasking API",
		Links: []stapi.Link{
			{Href: rt.base + "/", Rel: "self", Type: stapi.TypeJSON},
			{Href: rt.url("conformance"), Rel: "conformance", Type: stapi.TypeJSON},
			{Href: rt.url("products"), Rel: "products", Type: stapi.TypeJSON},
			{Href: rt.url("orders"), Rel: "orders", Type: stapi.TypeGeoJSON},
		},
	}
	if rt.caps.AsyncSearch {
		doc.Links = append(doc.Links, stapi.Link{
			Href: rt.url("searches", "opportunities"), Rel: "opportunity-search-records", Type: stapi.TypeJSON,
		})
	}
	writeJSON(w, http.StatusOK, doc)
}

func (rt *Router) getConformance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, stapi.Conformance{ConformsTo: rt.caps.ConformsTo()})
}
