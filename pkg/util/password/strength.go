package password

import (
	"errors"
	"fmt"

	"github.com/nbutton23/zxcvbn-go"
)

var (
	ErrTooShort = errors.New("password is too short")
	ErrTooWeak  = errors.New("password is too weak")
)

// Policy gates new passwords on length and zxcvbn score.
type Policy struct {
	MinLength int
	MinScore  int
}

// Check rejects passwords shorter than MinLength or scoring below MinScore.
// userInputs (name, email) are penalised when they appear in the password.
func (p Policy) Check(password string, userInputs ...string) error {
	if len([]rune(password)) < p.MinLength {
		return fmt.Errorf("%w: at least %d characters required", ErrTooShort, p.MinLength)
	}
	if score := zxcvbn.PasswordStrength(password, userInputs).Score; score < p.MinScore {
		return fmt.Errorf("%w: score %d, minimum %d", ErrTooWeak, score, p.MinScore)
	}
	return nil
}
