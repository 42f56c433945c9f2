package notification

import (
	"context"
	"fmt"
	"time"

	"crm-notifications/internal/common/contracts"
	"crm-notifications/internal/common/models"
	"crm-notifications/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "notifications"

type sourceDocument struct {
	Type string `bson:"type"`
	UUID string `bson:"uuid"`
}

type targetDocument struct {
	ID               string `bson:"id"`
	UserID           string `bson:"user_id"`
	CompanyAccountID string `bson:"company_account_id"`
}

type creatorDocument struct {
	ID                string  `bson:"id"`
	DisplayName       string  `bson:"display_name"`
	ProfilePictureURL *string `bson:"profile_picture_url"`
}

type notificationDocument struct {
	ID          string           `bson:"_id"`
	Version     int              `bson:"version"`
	Source      sourceDocument   `bson:"source"`
	EventType   string           `bson:"event_type"`
	Variables   bson.D           `bson:"variables"`
	Target      targetDocument   `bson:"target"`
	CreatedBy   *creatorDocument `bson:"created_by"`
	CreatedAt   time.Time        `bson:"created_at"`
	UpdatedAt   time.Time        `bson:"updated_at"`
	DisplayedAt *time.Time       `bson:"displayed_at"`
	ReadAt      *time.Time       `bson:"read_at"`
}

func toDocument(n *Notification) notificationDocument {
	vars := make(bson.D, 0, n.variables.Len())
	for _, v := range n.variables.Items() {
		var value any
		if v.Value != nil {
			value = *v.Value
		}
		vars = append(vars, bson.E{Key: v.Key, Value: value})
	}

	target := targetDocument{ID: n.target.UUID().String()}
	if u := n.target.User(); u != nil {
		target.UserID = u.UUID().String()
	}
	if c := n.target.CompanyAccount(); c != nil {
		target.CompanyAccountID = c.UUID().String()
	}

	var creator *creatorDocument
	if n.createdBy != nil {
		creator = &creatorDocument{
			ID:                n.createdBy.UUID().String(),
			DisplayName:       n.createdBy.DisplayName(),
			ProfilePictureURL: profilePictureURL(n.createdBy.ProfilePicture()),
		}
	}

	return notificationDocument{
		ID:          n.id.String(),
		Version:     n.version,
		Source:      sourceDocument{Type: string(n.source.Type()), UUID: n.source.UUID()},
		EventType:   n.eventType.String(),
		Variables:   vars,
		Target:      target,
		CreatedBy:   creator,
		CreatedAt:   n.createdAt,
		UpdatedAt:   n.updatedAt,
		DisplayedAt: n.displayedAt,
		ReadAt:      n.readAt,
	}
}

func fromDocument(doc notificationDocument) (*Notification, error) {
	source, err := NewSource(SourceType(doc.Source.Type), doc.Source.UUID)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", doc.ID, err)
	}
	eventType, err := ParseEventType(doc.EventType)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", doc.ID, err)
	}

	items := make([]Variable, 0, len(doc.Variables))
	for _, e := range doc.Variables {
		var value *string
		if s, ok := e.Value.(string); ok {
			value = str(s)
		}
		items = append(items, Variable{Key: e.Key, Value: value})
	}

	var createdBy contracts.User
	if doc.CreatedBy != nil {
		user := &contracts.UserRecord{
			ID:   models.ID(doc.CreatedBy.ID),
			Name: doc.CreatedBy.DisplayName,
		}
		if doc.CreatedBy.ProfilePictureURL != nil {
			user.Picture = &contracts.ProfilePicture{File: &contracts.File{DirectURL: doc.CreatedBy.ProfilePictureURL}}
		}
		createdBy = user
	}

	return &Notification{
		id:        models.ID(doc.ID),
		version:   doc.Version,
		source:    source,
		eventType: eventType,
		variables: VariablesFromRawData(items),
		target: &contracts.UserCompanyAccountRecord{
			ID:      models.ID(doc.Target.ID),
			Member:  &contracts.UserRecord{ID: models.ID(doc.Target.UserID)},
			Company: &contracts.CompanyAccountRecord{ID: models.ID(doc.Target.CompanyAccountID)},
		},
		createdBy:     createdBy,
		createdAt:     doc.CreatedAt.UTC(),
		updatedAt:     doc.UpdatedAt.UTC(),
		displayedAt:   utcPtr(doc.DisplayedAt),
		readAt:        utcPtr(doc.ReadAt),
		storedVersion: doc.Version,
	}, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// MongoStore owns the notifications collection
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(db *database.MongodbDB) *MongoStore {
	return &MongoStore{collection: db.DB.Collection(CollectionName)}
}

func (s *MongoStore) Factory() RepositoryFactory {
	return func() NotificationRepository {
		return &MongoNotificationRepository{collection: s.collection, pending: newPending()}
	}
}

// EnsureIndexes creates the indexes the account queries and the retention
// sweep rely on
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "target.id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "target.id", Value: 1}, {Key: "displayed_at", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	})
	return err
}

type MongoNotificationRepository struct {
	collection *mongo.Collection
	pending    *pending
}

func (r *MongoNotificationRepository) FindByID(ctx context.Context, id models.ID) (*Notification, error) {
	var doc notificationDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromDocument(doc)
}

func (r *MongoNotificationRepository) Store(n *Notification) {
	r.pending.store(n)
}

func (r *MongoNotificationRepository) Remove(n *Notification) {
	r.pending.remove(n)
}

// Flush writes staged notifications. Updates only apply to the version that
// was loaded; a lost race is reported as ErrConcurrentModification.
func (r *MongoNotificationRepository) Flush(ctx context.Context) error {
	if r.pending.empty() {
		return nil
	}

	err := r.pending.each(func(n *Notification) error {
		doc := toDocument(n)
		if n.storedVersion == 0 {
			if _, err := r.collection.InsertOne(ctx, doc); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return ErrConcurrentModification
				}
				return fmt.Errorf("insert notification %s: %w", n.id, err)
			}
		} else if n.version != n.storedVersion {
			res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": n.storedVersion}, doc)
			if err != nil {
				return fmt.Errorf("update notification %s: %w", n.id, err)
			}
			if res.MatchedCount == 0 {
				return ErrConcurrentModification
			}
		}
		n.storedVersion = n.version
		return nil
	})
	if err != nil {
		return err
	}

	for id := range r.pending.removed {
		if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id.String()}); err != nil {
			return fmt.Errorf("delete notification %s: %w", id, err)
		}
	}
	r.pending.reset()
	return nil
}

func (r *MongoNotificationRepository) FindByUserCompanyAccount(ctx context.Context, account contracts.UserCompanyAccount, filters *NotificationListFilters) (*models.Paginator[*Notification], error) {
	filter := accountFilter(account)
	filter["created_at"] = bson.M{"$gte": filters.DateFrom()}
	if filters.ExcludeDisplayed() {
		filter["displayed_at"] = nil
	}
	if filters.ExcludeRead() {
		filter["read_at"] = nil
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, err
	}

	dir := -1
	if filters.SortDir() == models.SortAsc {
		dir = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: filters.SortBy(), Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(filters.Offset())).
		SetLimit(int64(filters.PerPage()))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return models.NewPaginator(items, total, filters.Page(), filters.PerPage()), nil
}

func (r *MongoNotificationRepository) CountNonDisplayed(ctx context.Context, account contracts.UserCompanyAccount, dateFrom time.Time) (int64, error) {
	filter := accountFilter(account)
	filter["displayed_at"] = nil
	filter["created_at"] = bson.M{"$gte": dateFrom}
	return r.collection.CountDocuments(ctx, filter)
}

func (r *MongoNotificationRepository) FindNonDisplayedByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error) {
	filter := accountFilter(account)
	filter["_id"] = bson.M{"$in": idStrings(ids)}
	filter["displayed_at"] = nil
	return r.find(ctx, filter, newestFirst())
}

func (r *MongoNotificationRepository) FindNonDisplayedOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error) {
	filter := accountFilter(account)
	filter["created_at"] = bson.M{"$lte": cutoff}
	filter["displayed_at"] = nil
	return r.find(ctx, filter, newestFirst())
}

func (r *MongoNotificationRepository) FindUnreadByIDs(ctx context.Context, account contracts.UserCompanyAccount, ids []models.ID) ([]*Notification, error) {
	filter := accountFilter(account)
	filter["_id"] = bson.M{"$in": idStrings(ids)}
	filter["read_at"] = nil
	return r.find(ctx, filter, newestFirst())
}

func (r *MongoNotificationRepository) FindUnreadOlderThan(ctx context.Context, account contracts.UserCompanyAccount, cutoff time.Time) ([]*Notification, error) {
	filter := accountFilter(account)
	filter["created_at"] = bson.M{"$lte": cutoff}
	filter["read_at"] = nil
	return r.find(ctx, filter, newestFirst())
}

func (r *MongoNotificationRepository) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoNotificationRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*Notification, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []notificationDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func accountFilter(account contracts.UserCompanyAccount) bson.M {
	return bson.M{"target.id": account.UUID().String()}
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
}

func idStrings(ids []models.ID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

var _ NotificationRepository = (*MongoNotificationRepository)(nil)
