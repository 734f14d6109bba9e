package optionspec

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct-tag validation over a decoded Options value and
// returns a human-readable reason per violation, suitable for wrapping in
// a cerrors.InvalidOptionValue.
func Validate(o Options) []string {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}
	var reasons []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			reasons = append(reasons, fmt.Sprintf("%s failed %q constraint", fe.Field(), fe.Tag()))
		}
		return reasons
	}
	return []string{err.Error()}
}
