package domain

import (
	"strconv"
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

type LookingFor string

const (
	LookingForMale   LookingFor = "male"
	LookingForFemale LookingFor = "female"
	LookingForAny    LookingFor = "any"
)

// Matches reports whether a candidate's gender satisfies the preference.
func (l LookingFor) Matches(g Gender) bool {
	if l == LookingForAny {
		return true
	}
	return string(l) == string(g)
}

// Location is an optional profile coordinate in decimal degrees.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// Profile is the persisted user document, keyed by the stable chat id.
// Document keys in ViewedTimes are stringified candidate ids because BSON map
// keys must be strings.
type Profile struct {
	ID           int64                `bson:"_id" json:"id"`
	Gender       Gender               `bson:"gender" json:"gender"`
	LookingFor   LookingFor           `bson:"looking_for" json:"looking_for"`
	Name         string               `bson:"name" json:"name"`
	Age          int                  `bson:"age" json:"age"`
	HeightCm     int                  `bson:"height_cm" json:"height_cm"`
	Bio          string               `bson:"bio" json:"bio"`
	Hobbies      []string             `bson:"hobbies" json:"hobbies"`
	PhotoID      string               `bson:"photo_id" json:"photo_id"`
	Location     *Location            `bson:"location,omitempty" json:"location,omitempty"`
	Verified     bool                 `bson:"verified" json:"verified"`
	Phone        *string              `bson:"phone,omitempty" json:"phone,omitempty"`
	Username     string               `bson:"username" json:"username"`
	Liked        []int64              `bson:"liked" json:"liked"`
	LikedBy      []int64              `bson:"liked_by" json:"liked_by"`
	Viewed       []int64              `bson:"viewed" json:"viewed"`
	ViewedTimes  map[string]time.Time `bson:"viewed_times,omitempty" json:"viewed_times,omitempty"`
	LastViewed   *time.Time           `bson:"last_viewed,omitempty" json:"last_viewed,omitempty"`
	Reports      int                  `bson:"reports" json:"reports"`
	Banned       bool                 `bson:"banned" json:"banned"`
	Deleted      bool                 `bson:"deleted" json:"deleted"`
	DeletedAt    *time.Time           `bson:"deleted_at,omitempty" json:"deleted_at,omitempty"`
	RegisteredAt time.Time            `bson:"registered_at" json:"registered_at"`
}

// FormatID renders a chat id the way it is used as a document map key.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// IsComplete reports whether the profile is search-eligible and displayable:
// every registration field collected and non-empty.
func (p *Profile) IsComplete() bool {
	return p.Name != "" &&
		p.Gender != "" &&
		p.Age != 0 &&
		p.HeightCm != 0 &&
		p.Bio != "" &&
		len(p.Hobbies) > 0 &&
		p.PhotoID != "" &&
		p.Location != nil
}

// HasLiked reports whether target is in the liked set.
func (p *Profile) HasLiked(target int64) bool {
	return containsID(p.Liked, target)
}

// HasViewed reports whether candidate is in the viewed set.
func (p *Profile) HasViewed(candidate int64) bool {
	return containsID(p.Viewed, candidate)
}

// ViewedAt returns when this profile last viewed the candidate, if recorded.
func (p *Profile) ViewedAt(candidate int64) (time.Time, bool) {
	if p.ViewedTimes == nil {
		return time.Time{}, false
	}
	t, ok := p.ViewedTimes[FormatID(candidate)]
	return t, ok
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
