package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	MaxUsernameLength = 32
	MinUsernameLength = 5
	MnemonicWords     = 24
)

// Telegram username: буквы, цифры, подчеркивания, 5-32 символа
var telegramUsernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{4,31}$`)

var mnemonicWordRegex = regexp.MustCompile(`^[a-z]+$`)

// Register adds the custom tags to gin's binding validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding engine %T", binding.Validator.Engine())
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("tg_username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	}); err != nil {
		return err
	}
	return v.RegisterValidation("mnemonic", func(fl validator.FieldLevel) bool {
		return ValidateMnemonic(fl.Field().String()) == nil
	})
}

// NormalizeUsername trims spaces and a leading @.
func NormalizeUsername(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}

// ValidateUsername проверяет Telegram username
func ValidateUsername(username string) error {
	username = NormalizeUsername(username)
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be %d-%d characters long", MinUsernameLength, MaxUsernameLength)
	}
	if !telegramUsernameRegex.MatchString(username) {
		return fmt.Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// ValidateMnemonic checks the shape of a 24 word seed phrase. The checksum
// is verified when the wallet is derived.
func ValidateMnemonic(mnemonic string) error {
	words := strings.Fields(mnemonic)
	if len(words) != MnemonicWords {
		return fmt.Errorf("mnemonic must contain %d words, got %d", MnemonicWords, len(words))
	}
	for i, w := range words {
		if !mnemonicWordRegex.MatchString(w) {
			return fmt.Errorf("mnemonic word %d is not a lowercase latin word", i+1)
		}
	}
	return nil
}

// ValidateAmount rejects NaN, infinities and non-positive amounts.
func ValidateAmount(amount float64, fieldName string) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fmt.Errorf("%s must be a finite number", fieldName)
	}
	if amount <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
