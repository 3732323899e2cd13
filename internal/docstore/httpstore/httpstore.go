// Package httpstore implements docstore.Store over the document service's
// HTTP/JSON API. One-shot operations map to single requests; Subscribe is a
// poll loop that re-lists the collection and emits a full snapshot on every
// tick, surfacing transport failures as error snapshots.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/felipe-ssantos/prodigyfix/internal/docstore"
	ierrors "github.com/felipe-ssantos/prodigyfix/internal/errors"
)

// Store talks to the remote document service.
type Store struct {
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// Option configures a Store during construction.
type Option func(*Store)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Store) { s.http = c }
}

// WithPollInterval sets the Subscribe re-list cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithDebugLogging wraps the transport so each request/response is logged.
// Not for production use.
func WithDebugLogging(enabled bool) Option {
	return func(s *Store) {
		if enabled {
			base := s.http.Transport
			if base == nil {
				base = http.DefaultTransport
			}
			s.http.Transport = &debugTransport{base: base}
		}
	}
}

// New constructs a Store for the given service base URL.
func New(baseURL string, opts ...Option) *Store {
	s := &Store{
		baseURL:      baseURL,
		http:         &http.Client{Timeout: 30 * time.Second},
		pollInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type listResponse struct {
	Documents []wireDocument `json:"documents"`
}

type wireDocument struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

type insertResponse struct {
	ID string `json:"id"`
}

// Subscribe polls the collection listing at the configured interval. The
// first snapshot is fetched immediately. The returned channel closes when
// ctx is cancelled.
func (s *Store) Subscribe(ctx context.Context, collection string, order docstore.Order) (<-chan docstore.Snapshot, error) {
	ch := make(chan docstore.Snapshot, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			snap := s.list(ctx, collection, order)
			select {
			case ch <- snap:
			case <-ctx.Done():
				return
			}
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}

func (s *Store) list(ctx context.Context, collection string, order docstore.Order) docstore.Snapshot {
	q := url.Values{}
	if order.Field != "" {
		q.Set("orderBy", order.Field)
		if order.Descending {
			q.Set("direction", "desc")
		}
	}
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents", s.baseURL, collection)
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return docstore.Snapshot{Err: err}
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return docstore.Snapshot{Err: ierrors.NewNetworkError("list documents", err)}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return docstore.Snapshot{Err: ierrors.NewHTTPError(resp.StatusCode, "list documents")}
	}
	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return docstore.Snapshot{Err: err}
	}
	docs := make([]docstore.Document, 0, len(lr.Documents))
	for _, d := range lr.Documents {
		docs = append(docs, docstore.Document{ID: d.ID, Data: d.Data})
	}
	return docstore.Snapshot{Docs: docs}
}

// GetOne retrieves a single document, mapping 404 to docstore.ErrNotFound.
func (s *Store) GetOne(ctx context.Context, collection, id string) (*docstore.Document, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents/%s", s.baseURL, collection, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, ierrors.NewNetworkError("get document", err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, docstore.ErrNotFound
	default:
		return nil, ierrors.NewHTTPError(resp.StatusCode, "get document")
	}
	var wd wireDocument
	if err := json.NewDecoder(resp.Body).Decode(&wd); err != nil {
		return nil, err
	}
	if wd.ID == "" {
		wd.ID = id
	}
	return &docstore.Document{ID: wd.ID, Data: wd.Data}, nil
}

// Insert creates a document; the service assigns and returns the id.
func (s *Store) Insert(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents", s.baseURL, collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return "", ierrors.NewNetworkError("insert document", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusCreated {
		return "", ierrors.NewHTTPError(resp.StatusCode, "insert document")
	}
	var ir insertResponse
	if err := json.NewDecoder(resp.Body).Decode(&ir); err != nil {
		return "", err
	}
	return ir.ID, nil
}

// Patch applies a partial update to a document.
func (s *Store) Patch(ctx context.Context, collection, id string, partial json.RawMessage) error {
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents/%s", s.baseURL, collection, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(partial))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.http.Do(req)
	if err != nil {
		return ierrors.NewNetworkError("patch document", err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return docstore.ErrNotFound
	default:
		return ierrors.NewHTTPError(resp.StatusCode, "patch document")
	}
}

// Remove deletes a document.
func (s *Store) Remove(ctx context.Context, collection, id string) error {
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents/%s", s.baseURL, collection, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return ierrors.NewNetworkError("remove document", err)
	}
	defer func() { _ = resp.Body.Close() }()
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return docstore.ErrNotFound
	default:
		return ierrors.NewHTTPError(resp.StatusCode, "remove document")
	}
}

// QueryOnce runs a one-shot field-equality query.
func (s *Store) QueryOnce(ctx context.Context, collection string, preds []docstore.Predicate) ([]docstore.Document, error) {
	q := url.Values{}
	for _, p := range preds {
		q.Add("filter", fmt.Sprintf("%s==%v", p.Field, p.Value))
	}
	endpoint := fmt.Sprintf("%s/api/collections/%s/documents", s.baseURL, collection)
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, ierrors.NewNetworkError("query documents", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, ierrors.NewHTTPError(resp.StatusCode, "query documents")
	}
	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	docs := make([]docstore.Document, 0, len(lr.Documents))
	for _, d := range lr.Documents {
		docs = append(docs, docstore.Document{ID: d.ID, Data: d.Data})
	}
	return docs, nil
}
