// internal/backend/postgres/search.go
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

func (s *Store) SearchOpportunitiesAsync(ctx context.Context, productID string, payload stapi.OpportunityPayload) result.Result[stapi.SearchRecord] {
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
	body, err := json.Marshal(rec)
	if err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("record encode: %s", err))
	}
	stBody, _ := json.Marshal(rec.Status)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("begin: %s", err))
	}
	defer func() { _ = tx.Rollback(ctx) }()
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_search_records (id, product_id, status_code, body) VALUES ($1,$2,$3,$4)`,
		rec.ID, productID, rec.Status.StatusCode, body); err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("record insert: %s", err))
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_search_record_statuses (record_id, status_code, body) VALUES ($1,$2,$3)`,
		rec.ID, rec.Status.StatusCode, stBody); err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("status insert: %s", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("commit: %s", err))
	}
	return result.Ok(rec)
}

func (s *Store) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT body FROM stapi_search_records WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return result.Err[stapi.SearchRecord](result.NotFound("search record %s not found", id))
	}
	if err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("record lookup: %s", err))
	}
	var rec stapi.SearchRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("record decode: %s", err))
	}
	return result.Ok(rec)
}

func (s *Store) ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]] {
	return result.Wrap(listDocs[stapi.SearchRecord](ctx, s, pg,
		`SELECT body FROM stapi_search_records ORDER BY pos`))
}

var terminalSearchCodes = []string{
	string(stapi.SearchCompleted), string(stapi.SearchFailed), string(stapi.SearchCanceled),
}

// AdvanceSearch moves a search record to a new status. The guard is pushed
// into the UPDATE predicate so a terminal record is never rewritten, even
// under concurrent workers.
func (s *Store) AdvanceSearch(ctx context.Context, id string, code stapi.SearchStatusCode, reason string) error {
	res, err := s.GetSearchRecord(ctx, id).Unpack()
	if err != nil {
		return err
	}
	res.Status = stapi.SearchStatus{Timestamp: time.Now().UTC(), StatusCode: code, ReasonText: reason}
	body, _ := json.Marshal(res)
	stBody, _ := json.Marshal(res.Status)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result.BackendUnavailable("begin: %s", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	tag, err := tx.Exec(ctx,
		`UPDATE stapi_search_records SET status_code=$2, body=$3
		 WHERE id=$1 AND NOT (status_code = ANY($4))`,
		id, code, body, terminalSearchCodes)
	if err != nil {
		return result.BackendUnavailable("record update: %s", err)
	}
	if tag.RowsAffected() == 0 {
		return result.Conflict("search %s is already terminal", id)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_search_record_statuses (record_id, status_code, body) VALUES ($1,$2,$3)`,
		id, code, stBody); err != nil {
		return result.BackendUnavailable("status insert: %s", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return result.BackendUnavailable("commit: %s", err)
	}
	return nil
}

// CompleteSearch finishes an async search: the result collection is stored
// under the record's id and the record goes completed in the same
// transaction, so a completed record never lacks its collection.
func (s *Store) CompleteSearch(ctx context.Context, id string, opportunities []stapi.Opportunity) error {
	rec, err := s.GetSearchRecord(ctx, id).Unpack()
	if err != nil {
		return err
	}
	rec.Status = stapi.SearchStatus{Timestamp: time.Now().UTC(), StatusCode: stapi.SearchCompleted}
	body, _ := json.Marshal(rec)
	stBody, _ := json.Marshal(rec.Status)
	coll := stapi.NewOpportunityCollection(opportunities)
	coll.ID = id
	collBody, err := json.Marshal(coll)
	if err != nil {
		return result.BackendUnavailable("collection encode: %s", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return result.BackendUnavailable("begin: %s", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()
	tag, err := tx.Exec(ctx,
		`UPDATE stapi_search_records SET status_code=$2, body=$3
		 WHERE id=$1 AND NOT (status_code = ANY($4))`,
		id, stapi.SearchCompleted, body, terminalSearchCodes)
	if err != nil {
		return result.BackendUnavailable("record update: %s", err)
	}
	if tag.RowsAffected() == 0 {
		return result.Conflict("search %s is already terminal", id)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_search_record_statuses (record_id, status_code, body) VALUES ($1,$2,$3)`,
		id, rec.Status.StatusCode, stBody); err != nil {
		return result.BackendUnavailable("status insert: %s", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO stapi_opportunity_collections (id, product_id, body) VALUES ($1,$2,$3)`,
		id, rec.ProductID, collBody); err != nil {
		return result.BackendUnavailable("collection insert: %s", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return result.BackendUnavailable("commit: %s", err)
	}
	return nil
}

func (s *Store) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM stapi_search_records WHERE id=$1)`, recordID).Scan(&exists); err != nil {
		return result.Err[page.Page[stapi.SearchStatus]](result.BackendUnavailable("record lookup: %s", err))
	}
	if !exists {
		return result.Err[page.Page[stapi.SearchStatus]](result.NotFound("search record %s not found", recordID))
	}
	return result.Wrap(listDocs[stapi.SearchStatus](ctx, s, pg,
		`SELECT body FROM stapi_search_record_statuses WHERE record_id=$1 ORDER BY seq`, recordID))
}

func (s *Store) GetOpportunityCollection(ctx context.Context, productID, collectionID string) result.Result[stapi.OpportunityCollection] {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM stapi_opportunity_collections WHERE id=$1 AND product_id=$2`,
		collectionID, productID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return result.Err[stapi.OpportunityCollection](result.NotFound("opportunity collection %s not found", collectionID))
	}
	if err != nil {
		return result.Err[stapi.OpportunityCollection](result.BackendUnavailable("collection lookup: %s", err))
	}
	var coll stapi.OpportunityCollection
	if err := json.Unmarshal(raw, &coll); err != nil {
		return result.Err[stapi.OpportunityCollection](result.BackendUnavailable("collection decode: %s", err))
	}
	return result.Ok(coll)
}
