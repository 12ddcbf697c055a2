package apiclient

import (
	"context"
	"net/url"
	"strconv"
)

// Page is one slice of a paginated collection.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// FetchPaginated reads one page of path using _page and _limit parameters.
// A full page is taken to mean more may follow.
func FetchPaginated[T any](ctx context.Context, c *Client, path string, page, limit int) (Page[T], error) {
	params := url.Values{}
	params.Set("_page", strconv.Itoa(page))
	params.Set("_limit", strconv.Itoa(limit))

	items, err := GetJSON[[]T](ctx, c, path, params)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{
		Items:   items,
		Page:    page,
		Limit:   limit,
		HasMore: len(items) == limit,
	}, nil
}
