package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const Collection = "menu_items"

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

func activeFilter() bson.M {
	return bson.M{
		"isActive":  bson.M{"$ne": false},
		"isDeleted": bson.M{"$ne": true},
	}
}

func (s *MongoStore) FindBySlug(ctx context.Context, slug string) (models.MenuItem, error) {
	filter := activeFilter()
	filter["slug"] = strings.TrimSpace(slug)
	return s.findOne(ctx, filter)
}

func (s *MongoStore) FindByID(ctx context.Context, id primitive.ObjectID) (models.MenuItem, error) {
	return s.findOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}})
}

func (s *MongoStore) findOne(ctx context.Context, filter bson.M) (models.MenuItem, error) {
	var raw bson.M
	err := s.coll.FindOne(ctx, filter).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.MenuItem{}, ErrNotFound
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("find menu item: %w", err)
	}
	return NormalizeMenuDocument(raw)
}

// categoryPattern matches name as one entry of a comma separated legacy
// category string.
func categoryPattern(name string) string {
	return `(^|,)\s*` + regexp.QuoteMeta(name) + `\s*(,|$)`
}

func listFilter(f ListFilter) bson.M {
	filter := bson.M{"isDeleted": bson.M{"$ne": true}}
	if !f.IncludeInactive {
		filter = activeFilter()
	}

	var clauses bson.A
	if category := strings.TrimSpace(f.Category); category != "" {
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"category": category},
			bson.M{"category": bson.M{"$type": "string", "$regex": categoryPattern(category)}},
		}})
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := regexp.QuoteMeta(search)
		clauses = append(clauses, bson.M{"$or": bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}})
	}
	if len(clauses) > 0 {
		filter["$and"] = clauses
	}
	return filter
}

func (s *MongoStore) List(ctx context.Context, f ListFilter) ([]models.MenuItem, int64, error) {
	filter := listFilter(f)

	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var total int64
	if f.Paginated() {
		count, err := s.coll.CountDocuments(ctx, filter)
		if err != nil {
			return nil, 0, fmt.Errorf("count menu items: %w", err)
		}
		total = count
		findOptions.
			SetSkip((f.Page - 1) * f.Limit).
			SetLimit(f.Limit)
	}

	cursor, err := s.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, fmt.Errorf("find menu items: %w", err)
	}
	defer cursor.Close(ctx)

	items, err := decodeMenuItems(ctx, cursor)
	if err != nil {
		return nil, 0, err
	}
	if !f.Paginated() {
		total = int64(len(items))
	}
	return items, total, nil
}

// Categories derives the category list from the active items.
func (s *MongoStore) Categories(ctx context.Context) ([]string, error) {
	values, err := s.coll.Distinct(ctx, "category", activeFilter())
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}

	return categoryNames(values), nil
}

// categoryNames flattens Distinct output, splitting legacy comma separated
// strings into their entries.
func categoryNames(values []interface{}) []string {
	names := make([]string, 0, len(values))
	for _, v := range values {
		if name, ok := v.(string); ok {
			names = append(names, strings.Split(name, ",")...)
		}
	}
	names = NormalizeCategories(names)
	sort.Strings(names)
	return names
}

func (s *MongoStore) Create(ctx context.Context, item *models.MenuItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	res, err := s.coll.InsertOne(ctx, item)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert menu item: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		item.ID = oid
	}
	return nil
}

func (s *MongoStore) Update(ctx context.Context, id primitive.ObjectID, set, unset map[string]any) (models.MenuItem, error) {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = bson.M(set)
	}
	if len(unset) > 0 {
		update["$unset"] = bson.M(unset)
	}
	if len(update) == 0 {
		return s.FindByID(ctx, id)
	}

	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}}, update)
	if mongo.IsDuplicateKeyError(err) {
		return models.MenuItem{}, ErrDuplicate
	}
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("update menu item: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.MenuItem{}, ErrNotFound
	}
	return s.FindByID(ctx, id)
}

// Delete soft-deletes an item so placed orders keep their references.
func (s *MongoStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.UpdateOne(
		ctx,
		bson.M{"_id": id, "isDeleted": bson.M{"$ne": true}},
		bson.M{"$set": bson.M{
			"isDeleted": true,
			"deletedAt": time.Now(),
			"isActive":  false,
		}},
	)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// NormalizeMenuDocument decodes a raw document, tolerating legacy shapes such
// as numeric prices stored as ints or Decimal128 and string booleans.
// Category strings are handled by models.CategoryList.
func NormalizeMenuDocument(raw bson.M) (models.MenuItem, error) {
	for _, key := range []string{"basePrice", "salePrice"} {
		val, ok := raw[key]
		if !ok || val == nil {
			continue
		}
		switch typed := val.(type) {
		case int32:
			raw[key] = float64(typed)
		case int64:
			raw[key] = float64(typed)
		case int:
			raw[key] = float64(typed)
		case float64:
		case primitive.Decimal128:
			f, err := decimal128ToFloat(typed)
			if err != nil {
				return models.MenuItem{}, fmt.Errorf("%s: %w", key, err)
			}
			raw[key] = f
		default:
			raw[key] = nil
		}
	}
	if raw["salePrice"] == nil {
		raw["salePrice"] = 0.0
	}

	for _, key := range []string{"isMultiPrice", "saleEnabled"} {
		if s, ok := raw[key].(string); ok {
			raw[key] = strings.EqualFold(strings.TrimSpace(s), "true")
		}
	}

	data, err := bson.Marshal(raw)
	if err != nil {
		return models.MenuItem{}, err
	}

	var item models.MenuItem
	if err := bson.Unmarshal(data, &item); err != nil {
		return models.MenuItem{}, err
	}

	if item.BasePrice != nil {
		item.IsOnSale = IsOnSale(*item.BasePrice, item.SaleEnabled, item.SalePrice)
	}
	return item, nil
}

func decimal128ToFloat(d primitive.Decimal128) (float64, error) {
	v, err := decimal.NewFromString(d.String())
	if err != nil {
		return 0, err
	}
	return v.InexactFloat64(), nil
}

func decodeMenuItems(ctx context.Context, cursor *mongo.Cursor) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0)

	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}

		item, err := NormalizeMenuDocument(raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
