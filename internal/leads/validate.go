package leads

import (
	"unicode/utf8"

	"github.com/planetaskin/lead-intake/internal/phone"
)

// User-facing validation messages. The site is Russian-language, so
// these surface verbatim in the form UI.
const (
	MsgPhoneInvalid   = "Похоже, номер неполный. Проверьте, пожалуйста."
	MsgNameTooShort   = "Напишите, пожалуйста, как к вам обращаться (минимум 2 символа)."
	MsgConsentMissing = "Нужно согласие на обработку персональных данных."
)

// Validate checks the submission and returns a field-to-message map.
// All failing fields are reported together; an empty map means the
// submission is acceptable.
func (s *Submission) Validate() map[string]string {
	fieldErrors := make(map[string]string)

	if !phone.Valid(s.Phone) {
		fieldErrors["phone"] = MsgPhoneInvalid
	}

	// Name is optional, but a present name must be addressable.
	if s.Name != "" && utf8.RuneCountInString(s.Name) < 2 {
		fieldErrors["name"] = MsgNameTooShort
	}

	if !s.Consent {
		fieldErrors["consent"] = MsgConsentMissing
	}

	return fieldErrors
}
