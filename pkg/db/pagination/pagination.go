package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

// Pagination is bound from the page_token and page_size query parameters.
type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

// Size clamps the requested page size.
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	default:
		return p.PageSize
	}
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Cursor points at the last row of a page.
type Cursor struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

func EncodeCursor(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidPageToken
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return Cursor{}, ErrInvalidPageToken
	}
	return c, nil
}

// ApplyNewestFirst orders by created_at and id descending, resumes after the
// page token and fetches one extra row so HasMore can be detected.
func ApplyNewestFirst(query *gorm.DB, page Pagination) (*gorm.DB, error) {
	if page.PageToken != "" {
		c, err := DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		createdAt, err := time.Parse(time.RFC3339Nano, c.CreatedAt)
		if err != nil {
			return nil, ErrInvalidPageToken
		}
		id, err := strconv.ParseInt(c.ID, 10, 64)
		if err != nil {
			return nil, ErrInvalidPageToken
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", createdAt, createdAt, id)
	}
	return query.Order("created_at DESC, id DESC").Limit(page.Size() + 1), nil
}

// BuildCursorPageInfo trims items to pageSize and builds the next token from
// the last kept item.
func BuildCursorPageInfo[T any](items []T, pageSize int, token func(T) string) ([]T, PageInfo) {
	if len(items) <= pageSize {
		return items, PageInfo{}
	}
	items = items[:pageSize]
	return items, PageInfo{NextPageToken: token(items[len(items)-1]), HasMore: true}
}
