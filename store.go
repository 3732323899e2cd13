// Package prodigyfix is the client-side tutorial data layer. A Store
// mirrors the remote tutorial and category collections into local state via
// continuous subscriptions, derives live category counts, and exposes
// query and mutation operations. Search is a pure projection over the
// mirror; the imageurl subpackage resolves image identifiers to URLs.
package prodigyfix

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/felipe-ssantos/prodigyfix/internal/docstore"
	ierrors "github.com/felipe-ssantos/prodigyfix/internal/errors"
	"github.com/felipe-ssantos/prodigyfix/internal/shardqueue"
	"github.com/felipe-ssantos/prodigyfix/internal/types"
)

// AuthProvider reports whether an actor is currently authenticated.
// Mutation operations consult it synchronously.
type AuthProvider interface {
	Authenticated() bool
}

// AuthProviderFunc adapts a function to AuthProvider.
type AuthProviderFunc func() bool

// Authenticated implements AuthProvider.
func (f AuthProviderFunc) Authenticated() bool { return f() }

// Adjacent holds the positional neighbors of a tutorial in the
// createdAt-descending ordering. Nil means absent.
type Adjacent struct {
	Previous *Tutorial
	Next     *Tutorial
}

// Store maintains the authoritative local mirror of the remote tutorial
// collection. All read operations serve from the mirror; mutations go to
// the remote store and are reconciled by the next subscription snapshot.
type Store struct {
	ds   docstore.Store
	auth AuthProvider
	exec executor

	favorites      *FavoritesStore
	tutorialsColl  string
	categoriesColl string
	queueShards    int
	queueSize      int
	now            func() time.Time

	mu         sync.RWMutex
	tutorials  []Tutorial // createdAt descending
	categories []Category // with derived live counts
	rawCats    []Category // as decoded from the remote snapshot
	tutSubErr  error      // tutorials subscription error state
	catSubErr  error      // categories subscription error state

	ready     chan struct{}
	readyOnce sync.Once

	cancel     context.CancelFunc
	wg         sync.WaitGroup
	closedOnce uint32
}

// New constructs a Store and establishes the collection subscriptions.
// The returned Store is usable immediately; Ready signals the first
// successful tutorial snapshot. Close must be called to tear down the
// subscriptions and drain pending background writes.
func New(ds docstore.Store, auth AuthProvider, opts ...Option) (*Store, error) {
	s := &Store{
		ds:             ds,
		auth:           auth,
		tutorialsColl:  "tutorials",
		categoriesColl: "categories",
		queueShards:    4,
		queueSize:      256,
		now:            time.Now,
		ready:          make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			panic(err)
		}
	}
	s.exec = shardqueue.NewShardExecutor(shardqueue.Config{
		Shards:    s.queueShards,
		QueueSize: s.queueSize,
		ErrorHandler: func(err error) {
			viewWriteFailuresTotal.Inc()
			log.Warn().Err(err).Msg("store: remote view write failed, local mirror keeps the increment")
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	tutCh, err := ds.Subscribe(ctx, s.tutorialsColl, docstore.Order{Field: "createdAt", Descending: true})
	if err != nil {
		cancel()
		s.exec.Stop()
		return nil, fmt.Errorf("%w: subscribe %s: %v", ErrConnectivity, s.tutorialsColl, err)
	}
	catCh, err := ds.Subscribe(ctx, s.categoriesColl, docstore.Order{Field: "name"})
	if err != nil {
		cancel()
		s.exec.Stop()
		return nil, fmt.Errorf("%w: subscribe %s: %v", ErrConnectivity, s.categoriesColl, err)
	}

	s.wg.Add(2)
	go s.consumeTutorials(tutCh)
	go s.consumeCategories(catCh)
	return s, nil
}

// Ready is closed after the first successful tutorial snapshot has been
// applied to the mirror.
func (s *Store) Ready() <-chan struct{} { return s.ready }

// Close tears down the subscriptions and stops the background executor,
// draining queued view writes. Safe to call multiple times.
func (s *Store) Close() error {
	if !atomic.CompareAndSwapUint32(&s.closedOnce, 0, 1) {
		return nil
	}
	s.cancel()
	s.wg.Wait()
	s.exec.Stop()
	return nil
}

// ------------------------------
// Subscription consumers
// ------------------------------

func (s *Store) consumeTutorials(ch <-chan docstore.Snapshot) {
	defer s.wg.Done()
	for snap := range ch {
		if snap.Err != nil {
			s.noteSubscriptionError(s.tutorialsColl, snap.Err)
			continue
		}
		now := s.now()
		tutorials := make([]Tutorial, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			tutorials = append(tutorials, types.DecodeTutorial(doc.ID, doc.Data, now))
		}
		sort.SliceStable(tutorials, func(i, j int) bool {
			return tutorials[i].CreatedAt.After(tutorials[j].CreatedAt)
		})

		s.mu.Lock()
		s.tutorials = tutorials
		s.categories = deriveCategoryCounts(s.rawCats, tutorials)
		s.tutSubErr = nil
		s.mu.Unlock()

		snapshotRebuildsTotal.WithLabelValues(s.tutorialsColl).Inc()
		s.readyOnce.Do(func() { close(s.ready) })
	}
}

func (s *Store) consumeCategories(ch <-chan docstore.Snapshot) {
	defer s.wg.Done()
	for snap := range ch {
		if snap.Err != nil {
			s.noteSubscriptionError(s.categoriesColl, snap.Err)
			continue
		}
		cats := make([]Category, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			cats = append(cats, types.DecodeCategory(doc.ID, doc.Data))
		}

		s.mu.Lock()
		s.rawCats = cats
		s.categories = deriveCategoryCounts(cats, s.tutorials)
		s.catSubErr = nil
		s.mu.Unlock()

		snapshotRebuildsTotal.WithLabelValues(s.categoriesColl).Inc()
	}
}

// noteSubscriptionError records a stable error state without touching the
// previously held mirror. A degraded connection never blanks the data.
// Error state is tracked per collection: only the subscription that emitted
// the error may clear it, so a healthy categories stream cannot mask a
// broken tutorials stream.
func (s *Store) noteSubscriptionError(collection string, err error) {
	subscriptionErrorsTotal.WithLabelValues(collection).Inc()
	log.Warn().Err(err).Str("collection", collection).Msg("store: subscription error, keeping previous snapshot")
	wrapped := fmt.Errorf("%w: %s: %v", ErrConnectivity, collection, err)
	s.mu.Lock()
	if collection == s.categoriesColl {
		s.catSubErr = wrapped
	} else {
		s.tutSubErr = wrapped
	}
	s.mu.Unlock()
}

// ------------------------------
// Read operations
// ------------------------------

// Err returns the current subscription error state, nil when both streams
// are healthy. Each collection's error is cleared only by that collection's
// next successful snapshot.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.tutSubErr == nil && s.catSubErr == nil {
		return nil
	}
	return errors.Join(s.tutSubErr, s.catSubErr)
}

// Snapshot returns a copy of the current mirror in createdAt-descending
// order.
func (s *Store) Snapshot() []Tutorial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tutorial, len(s.tutorials))
	copy(out, s.tutorials)
	return out
}

// GetByID returns the tutorial with the given id, or false if absent.
func (s *Store) GetByID(id string) (Tutorial, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tutorials {
		if t.ID == id {
			return t, true
		}
	}
	return Tutorial{}, false
}

// GetByCategory returns the tutorials of a category in createdAt-descending
// order.
func (s *Store) GetByCategory(categoryID string) []Tutorial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Tutorial
	for _, t := range s.tutorials {
		if t.Category == categoryID {
			out = append(out, t)
		}
	}
	return out
}

// GetAdjacent returns the positional neighbors of id in the current
// ordering. Both are absent when id is not found; either end of the
// ordering leaves the corresponding side absent.
func (s *Store) GetAdjacent(id string) Adjacent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, t := range s.tutorials {
		if t.ID != id {
			continue
		}
		var adj Adjacent
		if i > 0 {
			prev := s.tutorials[i-1]
			adj.Previous = &prev
		}
		if i < len(s.tutorials)-1 {
			next := s.tutorials[i+1]
			adj.Next = &next
		}
		return adj
	}
	return Adjacent{}
}

// Categories returns the category list with live tutorial counts.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.categories))
	copy(out, s.categories)
	return out
}

// ------------------------------
// Mutations
// ------------------------------

// Create inserts a new tutorial and returns its remote-assigned id. The
// mirror reconciles asynchronously when the subscription emits; the id is
// usable immediately for optimistic UI.
func (s *Store) Create(ctx context.Context, req CreateTutorialRequest) (string, error) {
	if !s.auth.Authenticated() {
		return "", ErrUnauthorized
	}
	if err := types.ValidateCreateTutorial(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	now := s.now().UTC()
	views := int64(0)
	raw := types.RawTutorial{
		Title:           req.Title,
		Description:     req.Description,
		Content:         req.Content,
		Category:        req.Category,
		Keywords:        req.Keywords,
		ImageID:         req.ImageID,
		VideoURL:        req.VideoURL,
		Author:          req.Author,
		CreatedAt:       &now,
		UpdatedAt:       &now,
		Views:           &views,
		Difficulty:      string(types.NormalizeDifficulty(req.Difficulty)),
		EstimatedMins:   req.EstimatedMins,
		Tags:            req.Tags,
		Version:         req.Version,
		OSCompatibility: req.OSCompatibility,
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", err
	}
	id, err := s.ds.Insert(ctx, s.tutorialsColl, data)
	if err != nil {
		return "", fmt.Errorf("create tutorial: %w", err)
	}
	return id, nil
}

// Update applies a partial update, stamping updatedAt and normalizing
// difficulty when present.
func (s *Store) Update(ctx context.Context, id string, req UpdateTutorialRequest) error {
	if !s.auth.Authenticated() {
		return ErrUnauthorized
	}
	if err := types.ValidateIDPresent(id, "id"); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := types.ValidateUpdateTutorial(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	partial := map[string]any{"updatedAt": s.now().UTC()}
	applyUpdate(partial, req)
	data, err := json.Marshal(partial)
	if err != nil {
		return err
	}
	if err := s.ds.Patch(ctx, s.tutorialsColl, id, data); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("update tutorial: %w", err)
	}
	return nil
}

// Delete removes the tutorial remotely and evicts its id from the attached
// favorites store. The eviction is best-effort and not atomic with the
// remote delete.
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.auth.Authenticated() {
		return ErrUnauthorized
	}
	if err := types.ValidateIDPresent(id, "id"); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.ds.Remove(ctx, s.tutorialsColl, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("delete tutorial: %w", err)
	}
	if s.favorites != nil {
		if err := s.favorites.Remove(id); err != nil {
			log.Warn().Err(err).Str("id", id).Msg("store: favorites eviction failed after delete")
		}
	}
	return nil
}

// IncrementViews bumps the view counter. It never fails from the caller's
// point of view: the local mirror is incremented synchronously and the
// remote read-modify-write runs through the executor, keyed by id. View
// counts are best-effort telemetry; lost remote updates are accepted.
func (s *Store) IncrementViews(ctx context.Context, id string) {
	s.mu.Lock()
	for i := range s.tutorials {
		if s.tutorials[i].ID == id {
			s.tutorials[i].Views++
			break
		}
	}
	s.mu.Unlock()

	job := shardqueue.JobFunc(func(jobCtx context.Context) error {
		return s.incrementRemote(jobCtx, id)
	})
	if err := s.exec.Submit(ctx, id, job); err != nil {
		viewWriteFailuresTotal.Inc()
		log.Debug().Err(err).Str("id", id).Msg("store: view write not enqueued")
	}
}

// AwaitViews blocks until all previously submitted view writes for id have
// been executed. Used by tests and shutdown paths.
func (s *Store) AwaitViews(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan struct{})
	job := shardqueue.JobFunc(func(context.Context) error {
		close(done)
		return nil
	})
	if err := s.exec.Submit(ctx, id, job); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (s *Store) incrementRemote(ctx context.Context, id string) error {
	doc, err := s.ds.GetOne(ctx, s.tutorialsColl, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			// Record vanished; retrying cannot help.
			return &ierrors.ClassifiedError{Category: ierrors.Irrecoverable, Underlying: err}
		}
		return err
	}
	var raw types.RawTutorial
	_ = json.Unmarshal(doc.Data, &raw)
	var current int64
	if raw.Views != nil {
		current = *raw.Views
	}
	partial, err := json.Marshal(map[string]any{"views": current + 1})
	if err != nil {
		return err
	}
	return s.ds.Patch(ctx, s.tutorialsColl, id, partial)
}

func applyUpdate(partial map[string]any, req UpdateTutorialRequest) {
	if req.Title != nil {
		partial["title"] = *req.Title
	}
	if req.Description != nil {
		partial["description"] = *req.Description
	}
	if req.Content != nil {
		partial["content"] = *req.Content
	}
	if req.Category != nil {
		partial["category"] = *req.Category
	}
	if req.Keywords != nil {
		partial["keywords"] = *req.Keywords
	}
	if req.ImageID != nil {
		partial["imageId"] = *req.ImageID
	}
	if req.VideoURL != nil {
		partial["videoUrl"] = *req.VideoURL
	}
	if req.Author != nil {
		partial["author"] = *req.Author
	}
	if req.Difficulty != nil {
		partial["difficulty"] = string(types.NormalizeDifficulty(*req.Difficulty))
	}
	if req.EstimatedMins != nil {
		partial["estimatedMins"] = *req.EstimatedMins
	}
	if req.Tags != nil {
		partial["tags"] = *req.Tags
	}
	if req.Version != nil {
		partial["version"] = *req.Version
	}
	if req.OSCompatibility != nil {
		partial["osCompatibility"] = *req.OSCompatibility
	}
}
