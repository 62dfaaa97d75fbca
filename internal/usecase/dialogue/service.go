package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
	"github.com/amoradev/amora-backend/internal/transport"
	"github.com/amoradev/amora-backend/pkg/backoff"
	"github.com/amoradev/amora-backend/pkg/geo"
)

// Service is the per-user dialogue state machine. Registration walks the
// strictly ordered states forward, one validated field at a time; edit flows
// reuse single steps against an already-complete profile. All state lives in
// the session store, so the machine survives restarts and arbitrary
// interruptions.
type Service struct {
	profiles repository.ProfileRepository
	sessions repository.SessionRepository
	archive  repository.ArchiveRepository
	notifier transport.Notifier
	log      *zap.Logger
	retry    backoff.Policy
}

func NewService(
	profiles repository.ProfileRepository,
	sessions repository.SessionRepository,
	archive repository.ArchiveRepository,
	notifier transport.Notifier,
	log *zap.Logger,
	retry backoff.Policy,
) *Service {
	return &Service{
		profiles: profiles,
		sessions: sessions,
		archive:  archive,
		notifier: notifier,
		log:      log,
		retry:    retry,
	}
}

// StartRegistration discards any in-progress draft and begins a fresh flow.
func (s *Service) StartRegistration(ctx context.Context, ev domain.Event) error {
	draft := &domain.Draft{State: domain.StateStart, StartedAt: time.Now()}
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "Hi! What is your gender?",
		transport.Button{Label: LabelMale}, transport.Button{Label: LabelFemale})
}

// StartEdit begins a single-field edit flow for a registered user.
func (s *Service) StartEdit(ctx context.Context, userID int64, field domain.EditField) error {
	draft := &domain.Draft{Editing: field, StartedAt: time.Now()}

	var prompt func(context.Context) error
	switch field {
	case domain.EditName:
		draft.State = domain.StateGenderChosen
		prompt = func(ctx context.Context) error {
			return s.notifier.SendText(ctx, userID, "Enter a new name:")
		}
	case domain.EditPhoto:
		draft.State = domain.StateTargetSet
		prompt = func(ctx context.Context) error {
			return s.notifier.SendText(ctx, userID, "Send a new photo")
		}
	case domain.EditBio:
		draft.State = domain.StateHeightSet
		prompt = func(ctx context.Context) error {
			return s.notifier.SendText(ctx, userID, "Enter a new bio:")
		}
	case domain.EditHobbies:
		draft.State = domain.StateBioSet
		prompt = func(ctx context.Context) error {
			return s.promptHobbies(ctx, userID, draft)
		}
	case domain.EditPhone:
		draft.State = domain.StateVerificationPending
		prompt = func(ctx context.Context) error {
			return s.promptVerification(ctx, userID)
		}
	default:
		return fmt.Errorf("unknown edit field %q", field)
	}

	if err := s.sessions.SaveDraft(ctx, userID, draft); err != nil {
		return err
	}
	return prompt(ctx)
}

// HandleEvent advances the draft by one step. Invalid input re-prompts the
// same question and never advances the state.
func (s *Service) HandleEvent(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	switch draft.State {
	case domain.StateStart:
		return s.handleGender(ctx, ev, draft)
	case domain.StateGenderChosen:
		return s.handleName(ctx, ev, draft)
	case domain.StateNameSet:
		return s.handleTarget(ctx, ev, draft)
	case domain.StateTargetSet:
		return s.handlePhoto(ctx, ev, draft)
	case domain.StatePhotoSet:
		return s.handleAge(ctx, ev, draft)
	case domain.StateAgeSet:
		return s.handleHeight(ctx, ev, draft)
	case domain.StateHeightSet:
		return s.handleBio(ctx, ev, draft)
	case domain.StateBioSet, domain.StateHobbiesSelecting:
		return s.handleHobby(ctx, ev, draft)
	case domain.StateLocationSet:
		return s.handleLocation(ctx, ev, draft)
	case domain.StateVerificationPending:
		return s.handleVerification(ctx, ev, draft)
	case domain.StateComplete:
		// Leftover from a commit whose draft cleanup failed.
		if err := s.sessions.DeleteDraft(ctx, ev.UserID); err != nil {
			return err
		}
		return s.notifier.SendText(ctx, ev.UserID, "You're all set!", MainMenu()...)
	default:
		s.log.Warn("draft in unexpected state",
			zap.Int64("user_id", ev.UserID),
			zap.String("state", string(draft.State)),
		)
		return s.sessions.DeleteDraft(ctx, ev.UserID)
	}
}

func (s *Service) handleGender(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	gender, ok := parseGender(ev.Text)
	if !ok || ev.Kind != domain.EventText {
		return s.notifier.SendText(ctx, ev.UserID, "Please pick your gender:",
			transport.Button{Label: LabelMale}, transport.Button{Label: LabelFemale})
	}

	draft.Gender = gender
	draft.State = domain.StateGenderChosen
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "What is your name?")
}

func (s *Service) handleName(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	name, verr := validateName(ev.Text)
	if verr != nil {
		return s.notifier.SendText(ctx, ev.UserID, verr.Prompt)
	}

	if draft.Editing == domain.EditName {
		return s.commitEdit(ctx, ev.UserID, map[string]interface{}{"name": name}, "Name updated!")
	}

	draft.Name = name
	draft.State = domain.StateNameSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, fmt.Sprintf("%s, who are you looking for?", name),
		transport.Button{Label: LabelMale},
		transport.Button{Label: LabelFemale},
		transport.Button{Label: LabelAnyone})
}

func (s *Service) handleTarget(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	target, ok := parseTarget(ev.Text)
	if !ok {
		return s.notifier.SendText(ctx, ev.UserID, "Who are you looking for?",
			transport.Button{Label: LabelMale},
			transport.Button{Label: LabelFemale},
			transport.Button{Label: LabelAnyone})
	}

	draft.LookingFor = target
	draft.State = domain.StateTargetSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "Please send your photo")
}

func (s *Service) handlePhoto(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	if ev.Kind != domain.EventPhoto || ev.PhotoID == "" {
		return s.notifier.SendText(ctx, ev.UserID, "Please send a photo.")
	}

	if draft.Editing == domain.EditPhoto {
		return s.commitEdit(ctx, ev.UserID, map[string]interface{}{"photo_id": ev.PhotoID}, "Photo updated!")
	}

	draft.PhotoID = ev.PhotoID
	draft.State = domain.StatePhotoSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "How old are you? (18 to 99)")
}

func (s *Service) handleAge(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	age, verr := validateAge(ev.Text)
	if verr != nil {
		return s.notifier.SendText(ctx, ev.UserID, verr.Prompt)
	}

	draft.Age = age
	draft.State = domain.StateAgeSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "Your height in cm? (100 to 250)")
}

func (s *Service) handleHeight(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	height, verr := validateHeight(ev.Text)
	if verr != nil {
		return s.notifier.SendText(ctx, ev.UserID, verr.Prompt)
	}

	draft.HeightCm = height
	draft.State = domain.StateHeightSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.notifier.SendText(ctx, ev.UserID, "Tell us about yourself:")
}

func (s *Service) handleBio(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	bio, verr := validateBio(ev.Text)
	if verr != nil {
		return s.notifier.SendText(ctx, ev.UserID, verr.Prompt)
	}

	if draft.Editing == domain.EditBio {
		return s.commitEdit(ctx, ev.UserID, map[string]interface{}{"bio": bio}, "Bio updated!")
	}

	draft.Bio = bio
	draft.State = domain.StateBioSet
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.promptHobbies(ctx, ev.UserID, draft)
}

// handleHobby is the toggle self-loop: picking a hobby adds it, picking it
// again removes it, until the user signals done with at least one selected.
func (s *Service) handleHobby(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	switch {
	case ev.Text == LabelDone:
		if len(draft.Hobbies) == 0 {
			if err := s.notifier.SendText(ctx, ev.UserID, "Please pick at least one hobby!"); err != nil {
				return err
			}
			return s.promptHobbies(ctx, ev.UserID, draft)
		}

		if draft.Editing == domain.EditHobbies {
			return s.commitEdit(ctx, ev.UserID, map[string]interface{}{"hobbies": draft.Hobbies}, "Hobbies updated!")
		}

		draft.State = domain.StateLocationSet
		if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
			return err
		}
		return s.notifier.RequestLocation(ctx, ev.UserID,
			"Please share your location so we can find people near you.")

	case isHobby(ev.Text):
		draft.ToggleHobby(ev.Text)
		draft.State = domain.StateHobbiesSelecting
		if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
			return err
		}
		return s.promptHobbies(ctx, ev.UserID, draft)

	default:
		return s.promptHobbies(ctx, ev.UserID, draft)
	}
}

func (s *Service) handleLocation(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	if ev.Kind != domain.EventLocation || ev.Location == nil {
		return s.notifier.RequestLocation(ctx, ev.UserID,
			"Couldn't read your location. Please try again.")
	}

	if _, err := geo.Distance(
		geo.Coordinate{Latitude: ev.Location.Latitude, Longitude: ev.Location.Longitude},
		geo.Coordinate{Latitude: ev.Location.Latitude, Longitude: ev.Location.Longitude},
	); err != nil {
		return s.notifier.RequestLocation(ctx, ev.UserID,
			"Couldn't read your location. Please try again.")
	}

	draft.Location = ev.Location
	draft.State = domain.StateVerificationPending
	if err := s.sessions.SaveDraft(ctx, ev.UserID, draft); err != nil {
		return err
	}
	return s.promptVerification(ctx, ev.UserID)
}

func (s *Service) handleVerification(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	switch {
	case ev.Kind == domain.EventContact && ev.Contact != nil:
		if ev.Contact.UserID != ev.UserID {
			return s.notifier.SendText(ctx, ev.UserID, "Please share your own phone number.")
		}
		phone := ev.Contact.Phone
		draft.Phone = &phone
		draft.Verified = true

		if draft.Editing == domain.EditPhone {
			return s.commitEdit(ctx, ev.UserID,
				map[string]interface{}{"verified": true, "phone": phone},
				"Verification complete! You now have a blue badge ✅")
		}
		return s.commitRegistration(ctx, ev, draft)

	case ev.Text == LabelSkipVerification:
		draft.Verified = false
		if draft.Editing == domain.EditPhone {
			if err := s.sessions.DeleteDraft(ctx, ev.UserID); err != nil {
				return err
			}
			return s.notifier.SendText(ctx, ev.UserID, "Verification skipped.", MainMenu()...)
		}
		return s.commitRegistration(ctx, ev, draft)

	default:
		return s.promptVerification(ctx, ev.UserID)
	}
}

// commitRegistration persists the whole draft in one upsert. Interaction
// state defaults are seeded only when the document is new. On failure the
// draft is retained so collected input is never lost.
func (s *Service) commitRegistration(ctx context.Context, ev domain.Event, draft *domain.Draft) error {
	profile := &domain.Profile{
		ID:           ev.UserID,
		Gender:       draft.Gender,
		LookingFor:   draft.LookingFor,
		Name:         draft.Name,
		Age:          draft.Age,
		HeightCm:     draft.HeightCm,
		Bio:          draft.Bio,
		Hobbies:      draft.Hobbies,
		PhotoID:      draft.PhotoID,
		Location:     draft.Location,
		Verified:     draft.Verified,
		Phone:        draft.Phone,
		Username:     ev.Username,
		RegisteredAt: time.Now(),
	}

	err := s.retry.Do(ctx, func() error {
		return s.profiles.Upsert(ctx, profile)
	})
	if err != nil {
		s.log.Error("failed to save profile, draft retained",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err),
		)
		return s.notifier.SendText(ctx, ev.UserID,
			"Something went wrong saving your profile. Please try again.")
	}

	draft.State = domain.StateComplete
	if err := s.sessions.DeleteDraft(ctx, ev.UserID); err != nil {
		s.log.Warn("failed to discard committed draft",
			zap.Int64("user_id", ev.UserID),
			zap.Error(err),
		)
		// Tombstone the draft so the next event clears it instead of
		// re-running verification against an already-saved profile.
		if serr := s.sessions.SaveDraft(ctx, ev.UserID, draft); serr != nil {
			s.log.Warn("failed to tombstone committed draft",
				zap.Int64("user_id", ev.UserID),
				zap.Error(serr),
			)
		}
	}

	text := "Registration complete! You can verify your phone later in profile settings."
	if profile.Verified {
		text = "Registration and verification complete! You now have a blue badge ✅"
	}
	return s.notifier.SendText(ctx, ev.UserID, text, MainMenu()...)
}

// commitEdit writes a single-field update directly to the stored profile.
func (s *Service) commitEdit(ctx context.Context, userID int64, fields map[string]interface{}, confirmation string) error {
	err := s.retry.Do(ctx, func() error {
		return s.profiles.SetFields(ctx, userID, fields)
	})
	if err != nil {
		s.log.Error("failed to apply profile edit, draft retained",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return s.notifier.SendText(ctx, userID,
			"Something went wrong applying the change. Please try again.")
	}

	if err := s.sessions.DeleteDraft(ctx, userID); err != nil {
		s.log.Warn("failed to discard edit draft",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return s.notifier.SendText(ctx, userID, confirmation, MainMenu()...)
}

// DeleteProfile soft-deletes the live document and archives a full copy. The
// row itself is retained and permanently excluded from discovery.
func (s *Service) DeleteProfile(ctx context.Context, userID int64) error {
	var profile *domain.Profile
	err := s.retry.Do(ctx, func() error {
		var derr error
		profile, derr = s.profiles.SoftDelete(ctx, userID, time.Now())
		return derr
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return s.notifier.SendText(ctx, userID, "You are not registered yet. Send /start to begin.")
		}
		return s.notifier.SendText(ctx, userID, "Something went wrong. Please try again.")
	}

	if err := s.archive.ArchiveProfile(ctx, profile); err != nil {
		s.log.Error("failed to archive deleted profile",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	_ = s.sessions.DeleteDraft(ctx, userID)
	_ = s.sessions.DeleteSearch(ctx, userID)

	return s.notifier.SendText(ctx, userID, "Your profile has been deleted. Send /start to register again.")
}

func (s *Service) promptHobbies(ctx context.Context, userID int64, draft *domain.Draft) error {
	selected := "nothing yet"
	if len(draft.Hobbies) > 0 {
		selected = strings.Join(draft.Hobbies, ", ")
	}

	text := fmt.Sprintf(
		"Pick your hobbies (several are fine):\n\nSelected: %s\n\nTap one at a time, then %q",
		selected, LabelDone,
	)

	buttons := make([]transport.Button, 0, len(Hobbies)+1)
	for _, h := range Hobbies {
		buttons = append(buttons, transport.Button{Label: h})
	}
	buttons = append(buttons, transport.Button{Label: LabelDone})

	return s.notifier.SendText(ctx, userID, text, buttons...)
}

func (s *Service) promptVerification(ctx context.Context, userID int64) error {
	return s.notifier.RequestContact(ctx, userID,
		"Phone verification gives you a blue badge and more trust from other users.\n\n"+
			"Share your phone number with the button below, or skip for now "+
			"(your profile will be less visible).",
		transport.Button{Label: LabelSkipVerification})
}
