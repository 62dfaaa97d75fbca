package dialogue

import (
	"github.com/amoradev/amora-backend/internal/domain"
	"github.com/amoradev/amora-backend/internal/transport"
)

// Button labels double as the dispatch vocabulary: the gateway renders them
// as reply keyboards and echoes the pressed label back as a text event.
const (
	LabelMale   = "Male"
	LabelFemale = "Female"
	LabelAnyone = "Anyone"

	LabelDone             = "✅ Done"
	LabelSkipVerification = "🚫 Skip verification"

	MenuSearch  = "🔍 Start search"
	MenuMatches = "❤️ My matches"
	MenuEdit    = "✏️ Edit profile"
	MenuBack    = "◀️ Back"

	MenuEditName    = "✏️ Change name"
	MenuEditPhoto   = "✏️ Change photo"
	MenuEditBio     = "✏️ Change bio"
	MenuEditHobbies = "✏️ Change hobbies"
	MenuVerify      = "📱 Verify phone"
	MenuDelete      = "🗑 Delete profile"
)

// Hobbies is the fixed catalog offered during registration.
var Hobbies = []string{
	"🎵 Music", "🎮 Gaming", "📚 Reading", "🏃 Sports", "🎨 Art",
	"🍳 Cooking", "✈️ Travel", "🎥 Movies", "🐶 Animals",
	"💻 Programming", "🌳 Nature", "🏋️ Fitness", "📷 Photography",
}

func isHobby(text string) bool {
	for _, h := range Hobbies {
		if h == text {
			return true
		}
	}
	return false
}

// MainMenu is the keyboard shown to registered users.
func MainMenu() []transport.Button {
	return []transport.Button{
		{Label: MenuSearch},
		{Label: MenuMatches},
		{Label: MenuEdit},
	}
}

// EditMenu lists the single-field edit flows; verification is only offered
// while the profile is unverified.
func EditMenu(verified bool) []transport.Button {
	buttons := []transport.Button{
		{Label: MenuEditName},
		{Label: MenuEditPhoto},
		{Label: MenuEditBio},
		{Label: MenuEditHobbies},
	}
	if !verified {
		buttons = append(buttons, transport.Button{Label: MenuVerify})
	}
	return append(buttons,
		transport.Button{Label: MenuDelete},
		transport.Button{Label: MenuBack},
	)
}

func parseGender(text string) (domain.Gender, bool) {
	switch text {
	case LabelMale:
		return domain.GenderMale, true
	case LabelFemale:
		return domain.GenderFemale, true
	default:
		return "", false
	}
}

func parseTarget(text string) (domain.LookingFor, bool) {
	switch text {
	case LabelMale:
		return domain.LookingForMale, true
	case LabelFemale:
		return domain.LookingForFemale, true
	case LabelAnyone:
		return domain.LookingForAny, true
	default:
		return "", false
	}
}
