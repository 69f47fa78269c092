package api

import (
	"net/url"
	"strconv"

	"roadmap-admin/internal/model"
)

// QueryKind selects which submissions listing the backend should serve.
type QueryKind int

const (
	QueryGlobal QueryKind = iota
	QueryEventAll
	QueryEventPending
)

func (k QueryKind) String() string {
	switch k {
	case QueryGlobal:
		return "global"
	case QueryEventAll:
		return "event"
	case QueryEventPending:
		return "event-pending"
	default:
		return "unknown"
	}
}

// SubmissionQuery describes one submissions fetch. EventID is empty for QueryGlobal.
type SubmissionQuery struct {
	Kind    QueryKind
	EventID model.ID
	Page    int
	Limit   int
}

// NewSubmissionQuery derives the query kind from the filters. Without an event filter the
// global listing is used whatever pendingOnly says; the backend has no global pending view.
func NewSubmissionQuery(eventID model.ID, pendingOnly bool, page, limit int) SubmissionQuery {
	q := SubmissionQuery{Kind: QueryGlobal, Page: page, Limit: limit}
	if eventID.IsZero() {
		return q
	}
	q.EventID = eventID
	if pendingOnly {
		q.Kind = QueryEventPending
	} else {
		q.Kind = QueryEventAll
	}
	return q
}

// Endpoint resolves the query to a request path (with query string) relative to the API base.
func (q SubmissionQuery) Endpoint() string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))

	var path string
	switch q.Kind {
	case QueryEventPending:
		path = "/event/submissions/pending"
		v.Set("event_id", q.EventID.String())
	case QueryEventAll:
		path = "/event/submissions"
		v.Set("event_id", q.EventID.String())
	default:
		path = "/admin/submissions"
	}
	return path + "?" + v.Encode()
}
