package domain

import "time"

// DialogueState tags how far a registration draft has progressed. States are
// strictly ordered; the machine only moves forward, except for the hobby
// toggle self-loop.
type DialogueState string

const (
	StateStart               DialogueState = "start"
	StateGenderChosen        DialogueState = "gender_chosen"
	StateNameSet             DialogueState = "name_set"
	StateTargetSet           DialogueState = "target_set"
	StatePhotoSet            DialogueState = "photo_set"
	StateAgeSet              DialogueState = "age_set"
	StateHeightSet           DialogueState = "height_set"
	StateBioSet              DialogueState = "bio_set"
	StateHobbiesSelecting    DialogueState = "hobbies_selecting"
	StateLocationSet         DialogueState = "location_set"
	StateVerificationPending DialogueState = "verification_pending"
	StateComplete            DialogueState = "complete"
)

// EditField names a single-field edit flow against an already-complete
// profile. Empty means the draft is a full registration.
type EditField string

const (
	EditName    EditField = "name"
	EditPhoto   EditField = "photo"
	EditBio     EditField = "bio"
	EditHobbies EditField = "hobbies"
	EditPhone   EditField = "phone"
)

// Draft accumulates registration input one field at a time. It exists only
// between flow start and commit (or restart) and serializes to JSON for the
// session store.
type Draft struct {
	State      DialogueState `json:"state"`
	Editing    EditField     `json:"editing,omitempty"`
	Gender     Gender        `json:"gender,omitempty"`
	LookingFor LookingFor    `json:"looking_for,omitempty"`
	Name       string        `json:"name,omitempty"`
	Age        int           `json:"age,omitempty"`
	HeightCm   int           `json:"height_cm,omitempty"`
	Bio        string        `json:"bio,omitempty"`
	Hobbies    []string      `json:"hobbies,omitempty"`
	PhotoID    string        `json:"photo_id,omitempty"`
	Location   *Location     `json:"location,omitempty"`
	Verified   bool          `json:"verified"`
	Phone      *string       `json:"phone,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
}

// ToggleHobby adds the hobby if absent, removes it if present.
func (d *Draft) ToggleHobby(hobby string) {
	for i, h := range d.Hobbies {
		if h == hobby {
			d.Hobbies = append(d.Hobbies[:i], d.Hobbies[i+1:]...)
			return
		}
	}
	d.Hobbies = append(d.Hobbies, hobby)
}
