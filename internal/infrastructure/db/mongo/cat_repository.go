package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ollivarila/wsk2/internal/core/domain"
)

const collectionCats = "cats"

// CatRepository implements ports.CatRepository using MongoDB.
type CatRepository struct {
	col *mongo.Collection
}

func NewCatRepository(db *mongo.Database) *CatRepository {
	return &CatRepository{col: db.Collection(collectionCats)}
}

type coordinatesDoc struct {
	Lat float64 `bson:"lat"`
	Lng float64 `bson:"lng"`
}

type catDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"cat_name"`
	Weight      float64            `bson:"weight"`
	Filename    string             `bson:"filename"`
	Birthdate   time.Time          `bson:"birthdate"`
	Coordinates coordinatesDoc     `bson:"coordinates"`
	Owner       primitive.ObjectID `bson:"owner"`
}

func (d catDoc) toDomain() *domain.Cat {
	return &domain.Cat{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Weight:      d.Weight,
		Filename:    d.Filename,
		Birthdate:   d.Birthdate.UTC(),
		Coordinates: domain.Coordinates{Lat: d.Coordinates.Lat, Lng: d.Coordinates.Lng},
		OwnerID:     d.Owner.Hex(),
	}
}

func ownerObjectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.NewValidationError(domain.FieldError{Field: "owner", Message: "is not a valid id"})
	}
	return oid, nil
}

func (r *CatRepository) List(ctx context.Context) ([]*domain.Cat, error) {
	return r.find(ctx, bson.M{}, "list cats")
}

func (r *CatRepository) FindByID(ctx context.Context, id string) (*domain.Cat, error) {
	oid, err := objectID("cat", id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d catDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, translate("find cat", "cat", id, err)
	}
	return d.toDomain(), nil
}

func (r *CatRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Cat, error) {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return []*domain.Cat{}, nil
	}
	return r.find(ctx, bson.M{"owner": oid}, "find cats by owner")
}

// FindWithinBox expects a normalized box; edges are inclusive.
func (r *CatRepository) FindWithinBox(ctx context.Context, box domain.Box) ([]*domain.Cat, error) {
	return r.find(ctx, boxFilter(box), "find cats in box")
}

func boxFilter(box domain.Box) bson.M {
	return bson.M{
		"coordinates.lat": bson.M{"$gte": box.BottomLeft.Lat, "$lte": box.TopRight.Lat},
		"coordinates.lng": bson.M{"$gte": box.BottomLeft.Lng, "$lte": box.TopRight.Lng},
	}
}

func (r *CatRepository) find(ctx context.Context, filter bson.M, op string) ([]*domain.Cat, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.StoreError(op, err)
	}
	var docs []catDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.StoreError(op, err)
	}

	cats := make([]*domain.Cat, 0, len(docs))
	for _, d := range docs {
		cats = append(cats, d.toDomain())
	}
	return cats, nil
}

func (r *CatRepository) Create(ctx context.Context, cat *domain.Cat) (*domain.Cat, error) {
	owner, err := ownerObjectID(cat.OwnerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := catDoc{
		Name:        cat.Name,
		Weight:      cat.Weight,
		Filename:    cat.Filename,
		Birthdate:   cat.Birthdate.UTC(),
		Coordinates: coordinatesDoc{Lat: cat.Coordinates.Lat, Lng: cat.Coordinates.Lng},
		Owner:       owner,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, domain.StoreError("insert cat", err)
	}
	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// scopedFilter matches the cat id and, when ownerID is set, its owner too.
func scopedFilter(id, ownerID string) (bson.M, error) {
	oid, err := objectID("cat", id)
	if err != nil {
		return nil, err
	}
	filter := bson.M{"_id": oid}
	if ownerID != "" {
		owner, err := primitive.ObjectIDFromHex(ownerID)
		if err != nil {
			return nil, domain.NotFoundf("cat %s", id)
		}
		filter["owner"] = owner
	}
	return filter, nil
}

// MergeUpdate sets only the fields present in patch. A non-empty ownerID
// turns the write into a conditional update on the current owner.
func (r *CatRepository) MergeUpdate(ctx context.Context, id, ownerID string, patch domain.CatPatch) (*domain.Cat, error) {
	filter, err := scopedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}
	set, err := catSet(patch)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d catDoc
	if len(set) == 0 {
		err = r.col.FindOne(ctx, filter).Decode(&d)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&d)
	}
	if err != nil {
		return nil, translate("update cat", "cat", id, err)
	}
	return d.toDomain(), nil
}

func (r *CatRepository) Delete(ctx context.Context, id, ownerID string) (*domain.Cat, error) {
	filter, err := scopedFilter(id, ownerID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d catDoc
	if err := r.col.FindOneAndDelete(ctx, filter).Decode(&d); err != nil {
		return nil, translate("delete cat", "cat", id, err)
	}
	return d.toDomain(), nil
}

func (r *CatRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteMany(ctx, bson.M{"owner": oid}); err != nil {
		return domain.StoreError("delete cats by owner", err)
	}
	return nil
}

// IsCatOwnedBy counts at most one matching document and never decodes it.
func (r *CatRepository) IsCatOwnedBy(ctx context.Context, catID, userID string) (bool, error) {
	cid, err := primitive.ObjectIDFromHex(catID)
	if err != nil {
		return false, nil
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": cid, "owner": uid}, options.Count().SetLimit(1))
	if err != nil {
		return false, domain.StoreError("check cat owner", err)
	}
	return n > 0, nil
}

// EnsureIndexes creates the owner and coordinate indexes on the cats collection.
func (r *CatRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}}},
		{Keys: bson.D{{Key: "coordinates.lat", Value: 1}, {Key: "coordinates.lng", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func catSet(p domain.CatPatch) (bson.M, error) {
	set := bson.M{}
	if p.Name != nil {
		set["cat_name"] = *p.Name
	}
	if p.Weight != nil {
		set["weight"] = *p.Weight
	}
	if p.Filename != nil {
		set["filename"] = *p.Filename
	}
	if p.Birthdate != nil {
		set["birthdate"] = p.Birthdate.UTC()
	}
	if p.Coordinates != nil {
		set["coordinates"] = coordinatesDoc{Lat: p.Coordinates.Lat, Lng: p.Coordinates.Lng}
	}
	if p.OwnerID != nil {
		owner, err := ownerObjectID(*p.OwnerID)
		if err != nil {
			return nil, err
		}
		set["owner"] = owner
	}
	return set, nil
}
