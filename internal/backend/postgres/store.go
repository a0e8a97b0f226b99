// internal/backend/postgres/store.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

// Store is a pgx-backed backend for orders and async search records. The
// product catalog stays static configuration supplied at construction;
// everything stateful lives in postgres.
type Store struct {
	pool     *pgxpool.Pool
	products []stapi.Product
}

func New(pool *pgxpool.Pool, products ...stapi.Product) *Store {
	return &Store{pool: pool, products: products}
}

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS stapi_orders (
  pos BIGSERIAL,
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  status_code TEXT NOT NULL,
  body JSONB NOT NULL,
  created TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS stapi_order_statuses (
  order_id TEXT NOT NULL REFERENCES stapi_orders(id),
  seq BIGSERIAL,
  status_code TEXT NOT NULL,
  body JSONB NOT NULL,
  PRIMARY KEY (order_id, seq)
);
CREATE TABLE IF NOT EXISTS stapi_search_records (
  pos BIGSERIAL,
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  status_code TEXT NOT NULL,
  body JSONB NOT NULL
);
CREATE TABLE IF NOT EXISTS stapi_search_record_statuses (
  record_id TEXT NOT NULL REFERENCES stapi_search_records(id),
  seq BIGSERIAL,
  status_code TEXT NOT NULL,
  body JSONB NOT NULL,
  PRIMARY KEY (record_id, seq)
);
CREATE TABLE IF NOT EXISTS stapi_opportunity_collections (
  id TEXT PRIMARY KEY REFERENCES stapi_search_records(id),
  product_id TEXT NOT NULL,
  body JSONB NOT NULL
);`)
	return err
}

func offsetFrom(pg page.Request) (int, error) {
	if pg.Token == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(pg.Token)
	if err != nil || n < 0 {
		return 0, result.InvalidPayload("invalid pagination token %q", pg.Token)
	}
	return n, nil
}

// listDocs pages over a jsonb document query using offset tokens. The query
// must select the body column only and end without LIMIT/OFFSET.
func listDocs[T any](ctx context.Context, s *Store, pg page.Request, query string, args ...any) (page.Page[T], error) {
	start, err := offsetFrom(pg)
	if err != nil {
		return page.Page[T]{}, err
	}
	args = append(args, pg.Limit+1, start)
	n := len(args)
	rows, err := s.pool.Query(ctx, query+" LIMIT $"+strconv.Itoa(n-1)+" OFFSET $"+strconv.Itoa(n), args...)
	if err != nil {
		return page.Page[T]{}, err
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return page.Page[T]{}, err
		}
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			return page.Page[T]{}, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return page.Page[T]{}, err
	}
	out := page.Page[T]{Items: items}
	if len(items) > pg.Limit {
		out.Items = items[:pg.Limit]
		out.NextToken = strconv.Itoa(start + pg.Limit)
	}
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Product]] {
	start, err := offsetFrom(pg)
	if err != nil {
		return result.Err[page.Page[stapi.Product]](err.(result.Failure))
	}
	if start > len(s.products) {
		start = len(s.products)
	}
	end := start + pg.Limit
	if end > len(s.products) {
		end = len(s.products)
	}
	out := page.Page[stapi.Product]{Items: s.products[start:end]}
	if end < len(s.products) {
		out.NextToken = strconv.Itoa(end)
	}
	return result.Ok(out)
}

func (s *Store) GetProduct(ctx context.Context, id string) result.Result[stapi.Product] {
	for _, p := range s.products {
		if p.ID == id {
			return result.Ok(p)
		}
	}
	return result.Err[stapi.Product](result.NotFound("product %s not found", id))
}

func (s *Store) ListOrders(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.Order]] {
	return result.Wrap(listDocs[stapi.Order](ctx, s, pg,
		`SELECT body FROM stapi_orders ORDER BY pos`))
}

func (s *Store) GetOrder(ctx context.Context, id string) result.Result[stapi.Order] {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM stapi_orders WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return result.Err[stapi.Order](result.NotFound("order %s not found", id))
	}
	if err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order lookup: %s", err))
	}
	var o stapi.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order decode: %s", err))
	}
	return result.Ok(o)
}

func (s *Store) ListOrderStatuses(ctx context.Context, orderID string, pg page.Request) result.Result[page.Page[stapi.OrderStatus]] {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stapi_orders WHERE id=$1)`, orderID).Scan(&exists); err != nil {
		return result.Err[page.Page[stapi.OrderStatus]](result.BackendUnavailable("order lookup: %s", err))
	}
	if !exists {
		return result.Err[page.Page[stapi.OrderStatus]](result.NotFound("order %s not found", orderID))
	}
	return result.Wrap(listDocs[stapi.OrderStatus](ctx, s, pg,
		`SELECT body FROM stapi_order_statuses WHERE order_id=$1 ORDER BY seq`, orderID))
}

func (s *Store) CreateOrder(ctx context.Context, productID string, payload stapi.OrderPayload) result.Result[stapi.Order] {
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
	body, err := json.Marshal(o)
	if err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order encode: %s", err))
	}
	stBody, _ := json.Marshal(st)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("begin: %s", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_orders (id, product_id, status_code, body) VALUES ($1,$2,$3,$4)`,
		o.ID, productID, st.StatusCode, body); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order insert: %s", err))
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_order_statuses (order_id, status_code, body) VALUES ($1,$2,$3)`,
		o.ID, st.StatusCode, stBody); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("status insert: %s", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("commit: %s", err))
	}
	return result.Ok(o)
}

func (s *Store) CancelOrder(ctx context.Context, orderID string) result.Result[stapi.Order] {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("begin: %s", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT body FROM stapi_orders WHERE id=$1 FOR UPDATE`, orderID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return result.Err[stapi.Order](result.NotFound("order %s not found", orderID))
	}
	if err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order lookup: %s", err))
	}
	var o stapi.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order decode: %s", err))
	}
	if o.Properties.Status.StatusCode.Terminal() {
		return result.Err[stapi.Order](result.Conflict(
			"order %s is already %s", orderID, o.Properties.Status.StatusCode))
	}

	st := stapi.NewOrderStatus(stapi.OrderUserCancelled, "cancelled by user")
	o.Properties.Status = st
	body, _ := json.Marshal(o)
	stBody, _ := json.Marshal(st)
	if _, err := tx.Exec(ctx,
		`UPDATE stapi_orders SET status_code=$2, body=$3 WHERE id=$1`,
		orderID, st.StatusCode, body); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("order update: %s", err))
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_order_statuses (order_id, status_code, body) VALUES ($1,$2,$3)`,
		orderID, st.StatusCode, stBody); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("status insert: %s", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return result.Err[stapi.Order](result.BackendUnavailable("commit: %s", err))
	}
	return result.Ok(o)
}
