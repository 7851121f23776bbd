package server

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"gift-battle/internal/battle"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	maxUsernameLength = 32
	maxViewerLength   = 64
	maxMessageLength  = 280
	maxGiftNameLength = 64
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = engine.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			_, err := validateUsername(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("team", func(fl validator.FieldLevel) bool {
			_, ok := battle.ParseTeam(strings.ToLower(strings.TrimSpace(fl.Field().String())))
			return ok
		})
	})
}

// validateUsername checks the operator-facing stream username. A leading @ is dropped.
func validateUsername(name string) (string, error) {
	trimmed := strings.TrimPrefix(normalizeText(name), "@")
	if trimmed == "" {
		return "", battle.ErrUsernameRequired
	}
	if len(trimmed) > maxUsernameLength {
		return "", fmt.Errorf("username must be %d characters or fewer", maxUsernameLength)
	}
	for _, r := range trimmed {
		if r > 127 {
			return "", errors.New("username contains unsupported characters")
		}
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			continue
		}
		if r == '_' || r == '.' || r == '-' {
			continue
		}
		return "", errors.New("username contains unsupported characters")
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
