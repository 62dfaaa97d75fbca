package dispatcher

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/repository"
	"github.com/amoradev/amora-backend/internal/transport"
	"github.com/amoradev/amora-backend/internal/usecase/dialogue"
	"github.com/amoradev/amora-backend/internal/usecase/interaction"
	"github.com/amoradev/amora-backend/internal/usecase/search"
)

// state carries one inbound event through the route table, plus anything a
// match predicate already loaded so the handler does not fetch it twice.
type state struct {
	ev    domain.Event
	draft *domain.Draft
}

// route pairs a predicate with a handler. Routes are evaluated in order and
// the first match wins, which makes precedence explicit: callbacks before
// commands, commands before the active draft, the draft before menu labels.
type route struct {
	name   string
	match  func(ctx context.Context, d *Dispatcher, st *state) bool
	handle func(ctx context.Context, d *Dispatcher, st *state) error
}

// Dispatcher owns the single entry point for inbound gateway events and
// routes each one to the dialogue, search or interaction service.
type Dispatcher struct {
	limiter     repository.Limiter
	sessions    repository.SessionRepository
	profiles    repository.ProfileRepository
	dialogue    *dialogue.Service
	search      *search.Service
	interaction *interaction.Service
	notifier    transport.Notifier
	log         *zap.Logger

	routes []route
}

func New(
	limiter repository.Limiter,
	sessions repository.SessionRepository,
	profiles repository.ProfileRepository,
	dialogueSvc *dialogue.Service,
	searchSvc *search.Service,
	interactionSvc *interaction.Service,
	notifier transport.Notifier,
	log *zap.Logger,
) *Dispatcher {
	d := &Dispatcher{
		limiter:     limiter,
		sessions:    sessions,
		profiles:    profiles,
		dialogue:    dialogueSvc,
		search:      searchSvc,
		interaction: interactionSvc,
		notifier:    notifier,
		log:         log,
	}
	d.routes = []route{
		{name: "callback", match: matchCallback, handle: handleCallback},
		{name: "start_command", match: matchStartCommand, handle: handleStartCommand},
		{name: "active_draft", match: matchActiveDraft, handle: handleActiveDraft},
		{name: "menu", match: matchMenu, handle: handleMenu},
		{name: "fallback", match: matchAlways, handle: handleFallback},
	}
	return d
}

// Dispatch routes one inbound event. Throttled events are dropped after a
// short notice; routing errors surface to the delivery layer.
func (d *Dispatcher) Dispatch(ctx context.Context, ev domain.Event) error {
	allowed, err := d.limiter.Allow(ctx, ev.UserID)
	if err != nil {
		// Fail open: a broken limiter must not take the whole bot down.
		d.log.Warn("rate limiter unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return d.notifier.SendText(ctx, ev.UserID, "Easy there! One action per second, please.")
	}

	st := &state{ev: ev}
	for _, r := range d.routes {
		if !r.match(ctx, d, st) {
			continue
		}
		d.log.Debug("event routed",
			zap.Int64("user_id", ev.UserID), zap.String("route", r.name))
		if err := r.handle(ctx, d, st); err != nil {
			return d.replyKnown(ctx, ev.UserID, err)
		}
		return nil
	}
	return nil
}

// replyKnown converts expected domain errors into user-facing messages and
// passes everything else up unchanged.
func (d *Dispatcher) replyKnown(ctx context.Context, userID int64, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotRegistered):
		return d.notifier.SendText(ctx, userID,
			"Finish your profile first. Send /start to begin.")
	case errors.Is(err, domain.ErrCannotActSelf):
		return d.notifier.SendText(ctx, userID, "That's your own profile.")
	default:
		return err
	}
}

func matchAlways(context.Context, *Dispatcher, *state) bool { return true }

func matchCallback(_ context.Context, _ *Dispatcher, st *state) bool {
	return st.ev.Kind == domain.EventCallback && st.ev.Callback != ""
}

func handleCallback(ctx context.Context, d *Dispatcher, st *state) error {
	action, rest, ok := strings.Cut(st.ev.Callback, "_")
	if !ok {
		d.log.Warn("malformed callback", zap.String("data", st.ev.Callback))
		return nil
	}
	targetID, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		d.log.Warn("malformed callback target", zap.String("data", st.ev.Callback))
		return nil
	}

	switch action {
	case "like":
		return d.interaction.Like(ctx, st.ev.UserID, targetID)
	case "dislike":
		return d.interaction.Dislike(ctx, st.ev.UserID, targetID)
	case "report":
		return d.interaction.Report(ctx, st.ev.UserID, targetID)
	default:
		d.log.Warn("unknown callback action", zap.String("action", action))
		return nil
	}
}

func matchStartCommand(_ context.Context, _ *Dispatcher, st *state) bool {
	return st.ev.Kind == domain.EventCommand && st.ev.Command == "start"
}

func handleStartCommand(ctx context.Context, d *Dispatcher, st *state) error {
	return d.dialogue.StartRegistration(ctx, st.ev)
}

func matchActiveDraft(ctx context.Context, d *Dispatcher, st *state) bool {
	draft, err := d.sessions.GetDraft(ctx, st.ev.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrDraftNotFound) {
			d.log.Warn("failed to load draft", zap.Int64("user_id", st.ev.UserID), zap.Error(err))
		}
		return false
	}
	st.draft = draft
	return true
}

func handleActiveDraft(ctx context.Context, d *Dispatcher, st *state) error {
	return d.dialogue.HandleEvent(ctx, st.ev, st.draft)
}

func matchMenu(_ context.Context, _ *Dispatcher, st *state) bool {
	if st.ev.Kind != domain.EventText {
		return false
	}
	switch st.ev.Text {
	case dialogue.MenuSearch, dialogue.MenuMatches, dialogue.MenuEdit, dialogue.MenuBack,
		dialogue.MenuEditName, dialogue.MenuEditPhoto, dialogue.MenuEditBio,
		dialogue.MenuEditHobbies, dialogue.MenuVerify, dialogue.MenuDelete:
		return true
	}
	return false
}

func handleMenu(ctx context.Context, d *Dispatcher, st *state) error {
	switch st.ev.Text {
	case dialogue.MenuSearch:
		return d.search.Start(ctx, st.ev.UserID)
	case dialogue.MenuMatches:
		return d.interaction.ListMatches(ctx, st.ev.UserID)
	case dialogue.MenuEdit:
		return d.showEditMenu(ctx, st.ev.UserID)
	case dialogue.MenuBack:
		return d.notifier.SendText(ctx, st.ev.UserID, "Main menu:", dialogue.MainMenu()...)
	case dialogue.MenuEditName:
		return d.dialogue.StartEdit(ctx, st.ev.UserID, domain.EditName)
	case dialogue.MenuEditPhoto:
		return d.dialogue.StartEdit(ctx, st.ev.UserID, domain.EditPhoto)
	case dialogue.MenuEditBio:
		return d.dialogue.StartEdit(ctx, st.ev.UserID, domain.EditBio)
	case dialogue.MenuEditHobbies:
		return d.dialogue.StartEdit(ctx, st.ev.UserID, domain.EditHobbies)
	case dialogue.MenuVerify:
		return d.dialogue.StartEdit(ctx, st.ev.UserID, domain.EditPhone)
	case dialogue.MenuDelete:
		return d.dialogue.DeleteProfile(ctx, st.ev.UserID)
	default:
		return nil
	}
}

func (d *Dispatcher) showEditMenu(ctx context.Context, userID int64) error {
	profile, err := d.profiles.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return domain.ErrNotRegistered
		}
		return err
	}
	return d.notifier.SendText(ctx, userID, "What do you want to change?",
		dialogue.EditMenu(profile.Verified)...)
}

func handleFallback(ctx context.Context, d *Dispatcher, st *state) error {
	return d.notifier.SendText(ctx, st.ev.UserID,
		"I didn't get that. Use the menu below, or send /start to register.",
		dialogue.MainMenu()...)
}
