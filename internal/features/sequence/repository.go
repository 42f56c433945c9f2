package sequence

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crm-notifications/internal/common/models"
	"crm-notifications/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "sequences"

// SequenceRepository is a unit of work over sequences. Store stages a
// change, Flush writes every staged sequence.
type SequenceRepository interface {
	FindActiveByUserCompany(ctx context.Context, userID, companyAccountID models.ID) ([]*Sequence, error)
	// Create writes a new sequence immediately
	Create(ctx context.Context, s *Sequence) error
	Store(s *Sequence)
	Flush(ctx context.Context) error
}

type RepositoryFactory func() SequenceRepository

type SequenceRepositoryImpl struct {
	Collection *mongo.Collection
	staged     []*Sequence
}

func NewSequenceRepositoryFactory(mongodb *database.MongodbDB) RepositoryFactory {
	collection := mongodb.DB.Collection(CollectionName)
	return func() SequenceRepository {
		return &SequenceRepositoryImpl{Collection: collection}
	}
}

func (r *SequenceRepositoryImpl) FindActiveByUserCompany(ctx context.Context, userID, companyAccountID models.ID) ([]*Sequence, error) {
	cursor, err := r.Collection.Find(ctx, bson.M{
		"owner_id":           userID,
		"company_account_id": companyAccountID,
		"status":             StatusActive,
	}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sequences []*Sequence
	if err = cursor.All(ctx, &sequences); err != nil {
		return nil, err
	}
	return sequences, nil
}

func (r *SequenceRepositoryImpl) Create(ctx context.Context, s *Sequence) error {
	prepare(s)
	_, err := r.Collection.InsertOne(ctx, s)
	return err
}

func (r *SequenceRepositoryImpl) Store(s *Sequence) {
	r.staged = append(r.staged, s)
}

func (r *SequenceRepositoryImpl) Flush(ctx context.Context) error {
	for _, s := range r.staged {
		res, err := r.Collection.ReplaceOne(ctx, bson.M{"_id": s.ID, "version": s.Version - 1}, s)
		if err != nil {
			return fmt.Errorf("update sequence %s: %w", s.ID, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("sequence %s was modified concurrently", s.ID)
		}
	}
	r.staged = nil
	return nil
}

func prepare(s *Sequence) {
	if s.ID == "" {
		s.ID = models.NextID()
	}
	if s.Status == "" {
		s.Status = StatusActive
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
}

// MemoryStore keeps sequences in process
type MemoryStore struct {
	mu        sync.RWMutex
	sequences map[models.ID]Sequence
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sequences: make(map[models.ID]Sequence)}
}

func (m *MemoryStore) Put(s Sequence) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequences[s.ID] = s
}

func (m *MemoryStore) Get(id models.ID) (Sequence, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sequences[id]
	return s, ok
}

func (m *MemoryStore) Factory() RepositoryFactory {
	return func() SequenceRepository {
		return &MemorySequenceRepository{store: m}
	}
}

type MemorySequenceRepository struct {
	store  *MemoryStore
	staged []*Sequence
}

func (r *MemorySequenceRepository) FindActiveByUserCompany(ctx context.Context, userID, companyAccountID models.ID) ([]*Sequence, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*Sequence
	for _, s := range r.store.sequences {
		if s.OwnerID == userID && s.CompanyAccountID == companyAccountID && s.IsActive() {
			c := s
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *MemorySequenceRepository) Create(ctx context.Context, s *Sequence) error {
	prepare(s)
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.sequences[s.ID]; ok {
		return fmt.Errorf("sequence %s already exists", s.ID)
	}
	r.store.sequences[s.ID] = *s
	return nil
}

func (r *MemorySequenceRepository) Store(s *Sequence) {
	r.staged = append(r.staged, s)
}

func (r *MemorySequenceRepository) Flush(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.staged {
		if current, ok := r.store.sequences[s.ID]; ok && current.Version != s.Version-1 {
			return fmt.Errorf("sequence %s was modified concurrently", s.ID)
		}
		r.store.sequences[s.ID] = *s
	}
	r.staged = nil
	return nil
}
