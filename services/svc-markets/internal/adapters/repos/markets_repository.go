package repos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/ports"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MarketsCollection is the subset of *mongo.Collection the repository uses.
type MarketsCollection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document any, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter, replacement any, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	Database() *mongo.Database
}

// MarketsRepository stores markets in a MongoDB collection whose registryCode
// field carries a unique index.
type MarketsRepository struct {
	collection MarketsCollection
	translator *CriteriaTranslator
	logger     logger.Logger
	now        func() time.Time
}

var _ ports.MarketStore = (*MarketsRepository)(nil)

func NewMarketsRepository(
	collection MarketsCollection,
	translator *CriteriaTranslator,
	log logger.Logger,
) *MarketsRepository {
	return &MarketsRepository{
		collection: collection,
		translator: translator,
		logger:     log,
		now:        storeNow,
	}
}

func (r *MarketsRepository) FetchByID(ctx context.Context, id model.MarketID) (*model.Market, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	return r.findOne(ctx, bson.D{{Key: idField, Value: oid}})
}

func (r *MarketsRepository) FetchByRegistryCode(ctx context.Context, registryCode string) (*model.Market, error) {
	return r.findOne(ctx, bson.D{{Key: "registryCode", Value: registryCode}})
}

func (r *MarketsRepository) Save(ctx context.Context, market *model.Market) (*model.Market, error) {
	doc, err := toMarketDocument(market)
	if err != nil {
		return nil, err
	}

	if market.ID.IsZero() {
		return r.insert(ctx, doc)
	}

	return r.replace(ctx, doc)
}

func (r *MarketsRepository) Delete(ctx context.Context, id model.MarketID) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.D{{Key: idField, Value: oid}})
	if err != nil {
		return wrapStoreError(err)
	}

	if result.DeletedCount == 0 {
		return model.ErrMarketNotFound
	}

	return nil
}

func (r *MarketsRepository) Find(ctx context.Context, criteria model.Criteria) ([]*model.Market, uint, error) {
	filter := r.translator.Filter(criteria)

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapStoreError(err)
	}

	if total == 0 || uint(total) <= criteria.Offset() {
		return []*model.Market{}, uint(total), nil
	}

	cursor, err := r.collection.Find(ctx, filter, r.translator.FindOptions(criteria))
	if err != nil {
		return nil, 0, wrapStoreError(err)
	}

	var docs []marketDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, wrapStoreError(err)
	}

	markets := make([]*model.Market, 0, len(docs))
	for index := range docs {
		markets = append(markets, docs[index].toDomain())
	}

	r.logger.Debug().
		Int64("total", total).
		Int("returned", len(markets)).
		Uint("page", criteria.Page()).
		Uint("size", criteria.Size()).
		Msg("markets found")

	return markets, uint(total), nil
}

func (r *MarketsRepository) Ping(ctx context.Context) error {
	if err := r.collection.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("%w: %v", model.ErrDatabaseConnection, err)
	}

	return nil
}

func (r *MarketsRepository) findOne(ctx context.Context, filter bson.D) (*model.Market, error) {
	var doc marketDocument

	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, model.ErrMarketNotFound
		}

		return nil, wrapStoreError(err)
	}

	return doc.toDomain(), nil
}

func (r *MarketsRepository) insert(ctx context.Context, doc marketDocument) (*model.Market, error) {
	doc.ID = primitive.NewObjectID()
	doc.CreatedAt = r.now()
	doc.UpdatedAt = nil

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrDuplicateMarket
		}

		return nil, wrapStoreError(err)
	}

	return doc.toDomain(), nil
}

func (r *MarketsRepository) replace(ctx context.Context, doc marketDocument) (*model.Market, error) {
	updatedAt := r.now()
	doc.UpdatedAt = &updatedAt

	result, err := r.collection.ReplaceOne(ctx, bson.D{{Key: idField, Value: doc.ID}}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrDuplicateMarket
		}

		return nil, wrapStoreError(err)
	}

	if result.MatchedCount == 0 {
		return nil, model.ErrMarketNotFound
	}

	return doc.toDomain(), nil
}

func wrapStoreError(err error) error {
	if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
		return fmt.Errorf("%w: %v", model.ErrDatabaseConnection, err)
	}

	return fmt.Errorf("%w: %v", model.ErrDatabaseQuery, err)
}

// storeNow truncates to the millisecond precision of BSON dates so values
// read back compare equal to the ones written.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
