package dialogue

import (
	"strconv"
	"strings"

	"github.com/amoradev/amora-backend/internal/domain"
)

func validateName(text string) (string, *domain.ValidationError) {
	name := strings.TrimSpace(text)
	if len([]rune(name)) < 2 {
		return "", domain.NewValidationError("Name is too short. Enter your name again:")
	}
	return name, nil
}

func validateAge(text string) (int, *domain.ValidationError) {
	age, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || age < 18 || age > 99 {
		return 0, domain.NewValidationError("How old are you? (18 to 99)")
	}
	return age, nil
}

func validateHeight(text string) (int, *domain.ValidationError) {
	height, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || height < 100 || height > 250 {
		return 0, domain.NewValidationError("Your height in cm? (100 to 250)")
	}
	return height, nil
}

func validateBio(text string) (string, *domain.ValidationError) {
	if strings.TrimSpace(text) == "" {
		return "", domain.NewValidationError("Tell us about yourself:")
	}
	return text, nil
}
