// internal/backend/rediscache/records.go
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"stapi/pkg/page"
	"stapi/pkg/result"
	"stapi/pkg/stapi"
)

const (
	recordKeyPrefix     = "stapi:search:"
	recordIndexKey      = "stapi:search:index"
	historyKeyPrefix    = "stapi:search:hist:"
	collectionKeyPrefix = "stapi:search:coll:"
)

// RecordStore keeps asynchronous opportunity search records in redis. Records
// are transient fan-out state, so each one carries a TTL; the index is a
// sorted set scored by creation time, which keeps listing order stable for
// pagination.
type RecordStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *RecordStore {
	return &RecordStore{rdb: rdb, ttl: ttl}
}

func (s *RecordStore) SearchOpportunitiesAsync(ctx context.Context, productID string, payload stapi.OpportunityPayload) result.Result[stapi.SearchRecord] {
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
	if err := s.put(ctx, rec, true); err != nil {
		return result.Err[stapi.SearchRecord](result.BackendUnavailable("record store: %s", err))
	}
	return result.Ok(rec)
}

func (s *RecordStore) put(ctx context.Context, rec stapi.SearchRecord, index bool) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	stBody, err := json.Marshal(rec.Status)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, recordKeyPrefix+rec.ID, body, s.ttl)
	pipe.RPush(ctx, historyKeyPrefix+rec.ID, stBody)
	pipe.Expire(ctx, historyKeyPrefix+rec.ID, s.ttl)
	if index {
		pipe.ZAdd(ctx, recordIndexKey, redis.Z{
			Score:  float64(rec.Status.Timestamp.UnixNano()),
			Member: rec.ID,
		})
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RecordStore) GetSearchRecord(ctx context.Context, id string) result.Result[stapi.SearchRecord] {
	raw, err := s.rdb.Get(ctx, recordKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
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

func (s *RecordStore) ListSearchRecords(ctx context.Context, pg page.Request) result.Result[page.Page[stapi.SearchRecord]] {
	start := 0
	if pg.Token != "" {
		n, err := strconv.Atoi(pg.Token)
		if err != nil || n < 0 {
			return result.Err[page.Page[stapi.SearchRecord]](result.InvalidPayload("invalid pagination token %q", pg.Token))
		}
		start = n
	}
	ids, err := s.rdb.ZRange(ctx, recordIndexKey, int64(start), int64(start+pg.Limit)).Result()
	if err != nil {
		return result.Err[page.Page[stapi.SearchRecord]](result.BackendUnavailable("record index: %s", err))
	}
	out := page.Page[stapi.SearchRecord]{}
	if len(ids) > pg.Limit {
		ids = ids[:pg.Limit]
		out.NextToken = strconv.Itoa(start + pg.Limit)
	}
	for _, id := range ids {
		rec, err := s.GetSearchRecord(ctx, id).Unpack()
		if err != nil {
			// Expired records fall out of the value keyspace before the
			// index; skip them rather than failing the listing.
			if f, ok := err.(result.Failure); ok && f.Kind == result.KindNotFound {
				continue
			}
			return result.Err[page.Page[stapi.SearchRecord]](err.(result.Failure))
		}
		out.Items = append(out.Items, rec)
	}
	return result.Ok(out)
}

// AdvanceSearch moves a record to a new status; terminal states are sinks.
func (s *RecordStore) AdvanceSearch(ctx context.Context, id string, code stapi.SearchStatusCode, reason string) error {
	rec, err := s.GetSearchRecord(ctx, id).Unpack()
	if err != nil {
		return err
	}
	if rec.Status.StatusCode.Terminal() {
		return result.Conflict("search %s is already %s", id, rec.Status.StatusCode)
	}
	rec.Status = stapi.SearchStatus{Timestamp: time.Now().UTC(), StatusCode: code, ReasonText: reason}
	if err := s.put(ctx, rec, false); err != nil {
		return result.BackendUnavailable("record store: %s", err)
	}
	return nil
}

// CompleteSearch finishes an async search: the result collection is stored
// under the record's id before the record goes completed, so a poller who
// sees completed always finds the collection.
func (s *RecordStore) CompleteSearch(ctx context.Context, id string, opportunities []stapi.Opportunity) error {
	rec, err := s.GetSearchRecord(ctx, id).Unpack()
	if err != nil {
		return err
	}
	if rec.Status.StatusCode.Terminal() {
		return result.Conflict("search %s is already %s", id, rec.Status.StatusCode)
	}
	coll := stapi.NewOpportunityCollection(opportunities)
	coll.ID = id
	collBody, err := json.Marshal(coll)
	if err != nil {
		return result.BackendUnavailable("collection encode: %s", err)
	}
	if err := s.rdb.Set(ctx, collectionKeyPrefix+id, collBody, s.ttl).Err(); err != nil {
		return result.BackendUnavailable("collection store: %s", err)
	}
	rec.Status = stapi.SearchStatus{Timestamp: time.Now().UTC(), StatusCode: stapi.SearchCompleted}
	if err := s.put(ctx, rec, false); err != nil {
		return result.BackendUnavailable("record store: %s", err)
	}
	return nil
}

func (s *RecordStore) ListSearchRecordStatuses(ctx context.Context, recordID string, pg page.Request) result.Result[page.Page[stapi.SearchStatus]] {
	start := 0
	if pg.Token != "" {
		n, err := strconv.Atoi(pg.Token)
		if err != nil || n < 0 {
			return result.Err[page.Page[stapi.SearchStatus]](result.InvalidPayload("invalid pagination token %q", pg.Token))
		}
		start = n
	}
	raws, err := s.rdb.LRange(ctx, historyKeyPrefix+recordID, int64(start), int64(start+pg.Limit)).Result()
	if err != nil {
		return result.Err[page.Page[stapi.SearchStatus]](result.BackendUnavailable("history lookup: %s", err))
	}
	if len(raws) == 0 && start == 0 {
		return result.Err[page.Page[stapi.SearchStatus]](result.NotFound("search record %s not found", recordID))
	}
	out := page.Page[stapi.SearchStatus]{}
	if len(raws) > pg.Limit {
		raws = raws[:pg.Limit]
		out.NextToken = strconv.Itoa(start + pg.Limit)
	}
	for _, raw := range raws {
		var st stapi.SearchStatus
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return result.Err[page.Page[stapi.SearchStatus]](result.BackendUnavailable("status decode: %s", err))
		}
		out.Items = append(out.Items, st)
	}
	return result.Ok(out)
}

func (s *RecordStore) GetOpportunityCollection(ctx context.Context, productID, collectionID string) result.Result[stapi.OpportunityCollection] {
	rec, err := s.GetSearchRecord(ctx, collectionID).Unpack()
	if err != nil {
		return result.Err[stapi.OpportunityCollection](err.(result.Failure))
	}
	if rec.ProductID != productID {
		return result.Err[stapi.OpportunityCollection](result.NotFound("opportunity collection %s not found", collectionID))
	}
	raw, err := s.rdb.Get(ctx, collectionKeyPrefix+collectionID).Bytes()
	if errors.Is(err, redis.Nil) {
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
