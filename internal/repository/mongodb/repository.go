// Package mongodb belge tabanlı depo. Kullanıcı durumu tek belgede,
// bölümler ayrı alanlarda tutulur; kayıtta sadece değişen alanlar $set edilir.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rasyon-backend/internal/models"
	"rasyon-backend/internal/repository"
)

const (
	collUsers    = "users"
	collStates   = "states"
	collMonths   = "months"
	collAudit    = "audit_logs"
	collBackups  = "backups"
	collCounters = "counters"
)

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ repository.Repository = (*Repository)(nil)

// New bağlanır, ping atar ve indeksleri oluşturur
func New(ctx context.Context, uri, dbName string) (*Repository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &Repository{client: client, db: client.Database(dbName)}
	if err := r.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return r, nil
}

func (r *Repository) ensureIndexes(ctx context.Context) error {
	indexes := map[string]mongo.IndexModel{
		collUsers: {
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		collMonths: {
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "month", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		collAudit: {
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		collBackups: {
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "_id", Value: -1}},
		},
	}
	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("failed to create %s index: %w", coll, err)
		}
	}
	return nil
}

// nextID: sayaç koleksiyonundan artan sayısal kimlik
func (r *Repository) nextID(ctx context.Context, name string) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := r.db.Collection(collCounters).FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return uint(counter.Seq), nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	return err
}

// ---- Users ----

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	id, err := r.nextID(ctx, collUsers)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	user.ID = id
	user.CreatedAt, user.UpdatedAt = now, now
	if _, err := r.db.Collection(collUsers).InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicate, user.Email)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := r.db.Collection(collUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := r.db.Collection(collUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	cur, err := r.db.Collection(collUsers).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	return r.db.Collection(collUsers).CountDocuments(ctx, bson.M{})
}

// ---- State ----

func (r *Repository) LoadState(ctx context.Context, userID uint) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := r.db.Collection(collStates).FindOne(ctx, bson.M{"_id": userID}).Decode(&snap); err != nil {
		return models.Snapshot{}, notFound(err)
	}
	return snap, nil
}

func (r *Repository) SaveState(ctx context.Context, userID uint, snap models.Snapshot, sections []models.Section) error {
	set, err := stateUpdate(snap, sections)
	if err != nil {
		return err
	}
	set["updated_at"] = time.Now().UTC()
	_, err = r.db.Collection(collStates).UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": set},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}

// stateUpdate: $set belgesi; alan adları bölüm adlarıyla aynıdır
func stateUpdate(snap models.Snapshot, sections []models.Section) (bson.M, error) {
	set := bson.M{}
	for _, sec := range repository.SectionsOrAll(sections) {
		field, err := repository.SectionField(&snap, sec)
		if err != nil {
			return nil, err
		}
		set[string(sec)] = field
	}
	return set, nil
}

// ---- Months ----

type monthDocument struct {
	UserID           uint `bson:"user_id"`
	models.MonthData `bson:",inline"`
}

func (r *Repository) LoadMonth(ctx context.Context, userID uint, month string) (models.MonthData, error) {
	var doc monthDocument
	err := r.db.Collection(collMonths).FindOne(ctx, bson.M{"user_id": userID, "month": month}).Decode(&doc)
	if err != nil {
		return models.MonthData{}, notFound(err)
	}
	return doc.MonthData, nil
}

func (r *Repository) SaveMonth(ctx context.Context, userID uint, data models.MonthData) error {
	_, err := r.db.Collection(collMonths).ReplaceOne(ctx,
		bson.M{"user_id": userID, "month": data.Month},
		monthDocument{UserID: userID, MonthData: data},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save month %s: %w", data.Month, err)
	}
	return nil
}

func (r *Repository) ListMonths(ctx context.Context, userID uint) ([]models.MonthData, error) {
	cur, err := r.db.Collection(collMonths).Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.D{{Key: "month", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []monthDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]models.MonthData, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.MonthData)
	}
	return out, nil
}

// ---- Audit ----

func (r *Repository) WriteAudit(ctx context.Context, log *models.AuditLog) error {
	id, err := r.nextID(ctx, collAudit)
	if err != nil {
		return err
	}
	log.ID = id
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.Collection(collAudit).InsertOne(ctx, log)
	return err
}

func auditFilter(f repository.AuditFilter) bson.D {
	filter := bson.D{}
	if f.UserID != 0 {
		filter = append(filter, bson.E{Key: "user_id", Value: f.UserID})
	}
	if f.EntityType != "" {
		filter = append(filter, bson.E{Key: "entity_type", Value: f.EntityType})
	}
	if f.EntityID != "" {
		filter = append(filter, bson.E{Key: "entity_id", Value: f.EntityID})
	}
	return filter
}

func (r *Repository) ListAudit(ctx context.Context, f repository.AuditFilter) ([]models.AuditLog, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	cur, err := r.db.Collection(collAudit).Find(ctx, auditFilter(f), opts)
	if err != nil {
		return nil, err
	}
	var logs []models.AuditLog
	if err := cur.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ---- Backups ----

func (r *Repository) SaveBackup(ctx context.Context, b *models.StateBackup) error {
	id, err := r.nextID(ctx, collBackups)
	if err != nil {
		return err
	}
	b.ID = id
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	_, err = r.db.Collection(collBackups).InsertOne(ctx, b)
	return err
}

func (r *Repository) ListBackups(ctx context.Context, userID uint, limit int) ([]models.StateBackup, error) {
	filter := bson.M{}
	if userID != 0 {
		filter["user_id"] = userID
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cur, err := r.db.Collection(collBackups).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var backups []models.StateBackup
	if err := cur.All(ctx, &backups); err != nil {
		return nil, err
	}
	return backups, nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
