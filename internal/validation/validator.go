package validation

import (
	"fmt"
	"html"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"

	"github.com/microcosm-cc/bluemonday"
)

// Field limits, matching the database columns.
const (
	MaxWordLength     = 100
	MaxMeaningLength  = 500
	MaxExampleLength  = 1000
	MaxBatchSize      = 100
	MaxPageLimit      = 100
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt ignores anything longer
)

var (
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)
	ulidRe     = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
)

// Validator provides request validation functionality.
// Text fields are stripped of markup with a bluemonday strict policy before they are checked.
type Validator struct {
	policy *bluemonday.Policy
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{policy: bluemonday.StrictPolicy()}
}

// Sanitize removes all markup and surrounding whitespace from s.
func (v *Validator) Sanitize(s string) string {
	// StrictPolicy escapes entities; the fields are plain text so they are decoded again.
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(s)))
}

// ValidateVocabulary sanitizes req in place and checks field lengths.
// prefix is prepended to field names, e.g. "items[2].".
func (v *Validator) ValidateVocabulary(req *dto.VocabularyRequest, prefix string) domain.ValidationErrors {
	var errs domain.ValidationErrors

	req.Word = v.Sanitize(req.Word)
	req.Meaning = v.Sanitize(req.Meaning)
	req.Example = v.Sanitize(req.Example)

	checkLength(&errs, prefix+"word", req.Word, 1, MaxWordLength)
	checkLength(&errs, prefix+"meaning", req.Meaning, 1, MaxMeaningLength)
	if req.Example != "" {
		checkLength(&errs, prefix+"example", req.Example, 0, MaxExampleLength)
	}
	return errs
}

// ValidateVocabularyBatch validates every item of a batch request.
func (v *Validator) ValidateVocabularyBatch(req *dto.VocabularyBatchRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if len(req.Items) == 0 || len(req.Items) > MaxBatchSize {
		errs = append(errs, domain.NewOutOfRangeError("items", len(req.Items), 1, MaxBatchSize))
		return errs
	}
	for i := range req.Items {
		errs = append(errs, v.ValidateVocabulary(&req.Items[i], fmt.Sprintf("items[%d].", i))...)
	}
	return errs
}

// ValidatePagination checks skip >= 0 and 1 <= limit <= MaxPageLimit.
func (v *Validator) ValidatePagination(skip, limit int) domain.ValidationErrors {
	var errs domain.ValidationErrors
	if skip < 0 {
		errs = append(errs, domain.ValidationError{Field: "skip", Code: domain.CodeOutOfRange, Message: "skip must not be negative"})
	}
	if limit < 1 || limit > MaxPageLimit {
		errs = append(errs, domain.NewOutOfRangeError("limit", limit, 1, MaxPageLimit))
	}
	return errs
}

// ValidateQuestionCount rejects negative counts. Large counts are not an error;
// callers cap them with CapQuestionCount and the generator clamps to the vocabulary.
func (v *Validator) ValidateQuestionCount(n int) domain.ValidationErrors {
	if n < 0 {
		return domain.ValidationErrors{{Field: "num_questions", Code: domain.CodeOutOfRange, Message: "num_questions must not be negative"}}
	}
	return nil
}

// CapQuestionCount limits n to max. A non-positive max disables the cap.
func CapQuestionCount(n, max int) int {
	if max > 0 && n > max {
		return max
	}
	return n
}

// ValidateID checks that id looks like a ULID.
func (v *Validator) ValidateID(field, id string) domain.ValidationErrors {
	if strings.TrimSpace(id) == "" {
		return domain.ValidationErrors{domain.NewMissingFieldError(field)}
	}
	if !isValidULID(id) {
		return domain.ValidationErrors{domain.NewInvalidFormatError(field, id)}
	}
	return nil
}

// ValidateRegister normalizes and checks a registration request.
func (v *Validator) ValidateRegister(req *dto.RegisterRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	req.FullName = v.Sanitize(req.FullName)

	if req.Email == "" {
		errs = append(errs, domain.NewMissingFieldError("email"))
	} else if !isValidEmail(req.Email) {
		errs = append(errs, domain.NewInvalidFormatError("email", req.Email))
	}

	if req.Username == "" {
		errs = append(errs, domain.NewMissingFieldError("username"))
	} else if !usernameRe.MatchString(req.Username) {
		errs = append(errs, domain.NewInvalidFormatError("username", req.Username))
	}

	if req.Password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	} else if n := len(req.Password); n < MinPasswordLength || n > MaxPasswordLength {
		errs = append(errs, domain.NewOutOfRangeError("password", n, MinPasswordLength, MaxPasswordLength))
	}

	if utf8.RuneCountInString(req.FullName) > 255 {
		errs = append(errs, domain.NewOutOfRangeError("full_name", utf8.RuneCountInString(req.FullName), 0, 255))
	}
	return errs
}

// ValidateLogin checks that both credentials are present.
func (v *Validator) ValidateLogin(req *dto.LoginRequest) domain.ValidationErrors {
	var errs domain.ValidationErrors
	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		errs = append(errs, domain.NewMissingFieldError("login"))
	}
	if req.Password == "" {
		errs = append(errs, domain.NewMissingFieldError("password"))
	}
	return errs
}

func checkLength(errs *domain.ValidationErrors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	if n == 0 && min > 0 {
		*errs = append(*errs, domain.NewMissingFieldError(field))
		return
	}
	if n < min || n > max {
		*errs = append(*errs, domain.NewOutOfRangeError(field, n, min, max))
	}
}

// isValidULID checks if the string is a valid ULID format (Crockford's Base32, 26 chars)
func isValidULID(s string) bool {
	return ulidRe.MatchString(s)
}

func isValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
