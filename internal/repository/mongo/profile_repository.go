package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
)

type profileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) repository.ProfileRepository {
	return &profileRepository{col: db.Collection("profiles")}
}

func (r *profileRepository) FindByID(ctx context.Context, id int64) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile %d: %w", id, err)
	}
	return &profile, nil
}

func (r *profileRepository) FindCandidates(ctx context.Context, requester *domain.Profile, resurfaceBefore time.Time) ([]*domain.Profile, error) {
	viewed := requester.Viewed
	if viewed == nil {
		viewed = []int64{}
	}

	filter := bson.M{
		"_id":     bson.M{"$ne": requester.ID},
		"banned":  bson.M{"$ne": true},
		"deleted": bson.M{"$ne": true},
		"$or": bson.A{
			bson.M{"_id": bson.M{"$nin": viewed}},
			bson.M{"last_viewed": bson.M{"$lt": resurfaceBefore}},
		},
	}
	if requester.LookingFor != domain.LookingForAny {
		filter["gender"] = string(requester.LookingFor)
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find candidates for %d: %w", requester.ID, err)
	}
	defer cur.Close(ctx)

	var candidates []*domain.Profile
	if err := cur.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	set := bson.M{
		"gender":        profile.Gender,
		"looking_for":   profile.LookingFor,
		"name":          profile.Name,
		"age":           profile.Age,
		"height_cm":     profile.HeightCm,
		"bio":           profile.Bio,
		"hobbies":       profile.Hobbies,
		"photo_id":      profile.PhotoID,
		"verified":      profile.Verified,
		"username":      profile.Username,
		"registered_at": profile.RegisteredAt,
	}
	if profile.Location != nil {
		set["location"] = profile.Location
	}
	if profile.Phone != nil {
		set["phone"] = profile.Phone
	}

	// Interaction state is seeded on first insert only; a re-registration
	// must not wipe likes or view history.
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"liked":    []int64{},
			"liked_by": []int64{},
			"viewed":   []int64{},
			"reports":  0,
			"banned":   false,
			"deleted":  false,
		},
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": profile.ID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert profile %d: %w", profile.ID, err)
	}
	return nil
}

func (r *profileRepository) SetFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("set fields on %d: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

func (r *profileRepository) AddLiked(ctx context.Context, id, target int64) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"liked": target}})
	if err != nil {
		return fmt.Errorf("add liked %d -> %d: %w", id, target, err)
	}
	return nil
}

func (r *profileRepository) AddLikedBy(ctx context.Context, id, liker int64) error {
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$addToSet": bson.M{"liked_by": liker}})
	if err != nil {
		return fmt.Errorf("add liked_by %d <- %d: %w", id, liker, err)
	}
	return nil
}

func (r *profileRepository) MarkViewed(ctx context.Context, viewerID, targetID int64, at time.Time) error {
	update := bson.M{
		"$addToSet": bson.M{"viewed": targetID},
		"$set": bson.M{
			"viewed_times." + domain.FormatID(targetID): at,
			"last_viewed": at,
		},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": viewerID}, update)
	if err != nil {
		return fmt.Errorf("mark viewed %d -> %d: %w", viewerID, targetID, err)
	}
	return nil
}

func (r *profileRepository) IncrementReports(ctx context.Context, id int64) (int, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated struct {
		Reports int `bson:"reports"`
	}
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"reports": 1}}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, domain.ErrProfileNotFound
		}
		return 0, fmt.Errorf("increment reports on %d: %w", id, err)
	}
	return updated.Reports, nil
}

func (r *profileRepository) SetBanned(ctx context.Context, id int64) error {
	return r.SetFields(ctx, id, map[string]interface{}{"banned": true})
}

func (r *profileRepository) SoftDelete(ctx context.Context, id int64, at time.Time) (*domain.Profile, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{"$set": bson.M{"deleted": true, "deleted_at": at}}

	var profile domain.Profile
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("soft delete %d: %w", id, err)
	}
	return &profile, nil
}

func (r *profileRepository) FindMutual(ctx context.Context, user *domain.Profile) ([]*domain.Profile, error) {
	likedBy := user.LikedBy
	if len(likedBy) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"_id":     bson.M{"$in": likedBy},
		"liked":   user.ID,
		"banned":  bson.M{"$ne": true},
		"deleted": bson.M{"$ne": true},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find mutual for %d: %w", user.ID, err)
	}
	defer cur.Close(ctx)

	var matches []*domain.Profile
	if err := cur.All(ctx, &matches); err != nil {
		return nil, fmt.Errorf("decode mutual matches: %w", err)
	}
	return matches, nil
}
