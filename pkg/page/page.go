// pkg/page/page.go
package page

import (
	"net/url"
	"strconv"

	"stapi/pkg/result"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Request is a decoded page request. Token is opaque: it is minted by the
// backend that serves the listing and passed through byte-for-byte; an empty
// token means first page.
type Request struct {
	Limit int
	Token string
}

// Decode reads limit/token from query parameters. A limit outside [1,100] is a
// client error; an absent limit defaults to 10.
func Decode(q url.Values) (Request, error) {
	req := Request{Limit: DefaultLimit, Token: q.Get("token")}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Request{}, result.InvalidPayload("limit %q is not an integer", raw)
		}
		if n < 1 || n > MaxLimit {
			return Request{}, result.InvalidPayload("limit %d out of range [1, %d]", n, MaxLimit)
		}
		req.Limit = n
	}
	return req, nil
}

// DecodeBody validates pagination fields carried in a request body (opportunity
// searches paginate via POST). A zero limit takes the default.
func DecodeBody(token string, limit int) (Request, error) {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return Request{}, result.InvalidPayload("limit %d out of range [1, %d]", limit, MaxLimit)
	}
	return Request{Limit: limit, Token: token}, nil
}

// Page is one page of a listing plus the continuation token for the next page.
// An empty NextToken is the authoritative end-of-results signal; a short page
// alone is not.
type Page[T any] struct {
	Items     []T
	NextToken string
}
