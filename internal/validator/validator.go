package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/stemsi/ignite-backend/internal/calendar"
)

// trans is the singleton English translator for validation errors.
var trans ut.Translator

// now is the clock used by the futuredate rule.
var now = time.Now

var hhmmPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)

// customRules are the domain tags registered on top of the built-in ones,
// with their English messages. {0} is the field, {1} the tag parameter.
var customRules = []struct {
	tag     string
	fn      govalidator.Func
	message string
}{
	{"calendardate", isCalendarDate, "{0} must be a valid date in YYYY-MM-DD format"},
	{"futuredate", isFutureDate, "{0} must be a date in the future"},
	{"hhmm", isHHMM, "{0} must be a time in HH:MM format"},
	{"dateafter", isDateAfter, "{0} must be after {1}"},
}

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}

	// Use JSON, then form, tag names for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, trans)

	for _, r := range customRules {
		_ = v.RegisterValidation(r.tag, r.fn)
		registerMessage(v, r.tag, r.message)
	}
}

func registerMessage(v *govalidator.Validate, tag, message string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		},
		func(ut ut.Translator, fe govalidator.FieldError) string {
			param := fe.Param()
			if param != "" {
				param = lowerFirst(param)
			}
			t, err := ut.T(tag, fe.Field(), param)
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}

// ────────────────────────────────────────────────────────────────────────────
// Custom rules
// ────────────────────────────────────────────────────────────────────────────

func isCalendarDate(fl govalidator.FieldLevel) bool {
	_, err := calendar.ParseDate(fl.Field().String())
	return err == nil
}

// isFutureDate accepts a date whose UTC midnight lies strictly after now.
// Unparseable values pass; calendardate reports them.
func isFutureDate(fl govalidator.FieldLevel) bool {
	d, err := calendar.ParseDate(fl.Field().String())
	if err != nil {
		return true
	}
	return d.After(now())
}

func isHHMM(fl govalidator.FieldLevel) bool {
	return hhmmPattern.MatchString(fl.Field().String())
}

// isDateAfter compares the field with the sibling field named by the tag
// parameter. An unparseable sibling passes; its own rules report it.
func isDateAfter(fl govalidator.FieldLevel) bool {
	cur, err := calendar.ParseDate(fl.Field().String())
	if err != nil {
		return true
	}
	parent := reflect.Indirect(fl.Parent())
	if parent.Kind() != reflect.Struct {
		return false
	}
	other := parent.FieldByName(fl.Param())
	if !other.IsValid() || other.Kind() != reflect.String {
		return false
	}
	ref, err := calendar.ParseDate(other.String())
	if err != nil {
		return true
	}
	return cur.After(ref)
}

func lowerFirst(s string) string {
	return strings.ToLower(s[:1]) + s[1:]
}

// ────────────────────────────────────────────────────────────────────────────
// Binding helpers
// ────────────────────────────────────────────────────────────────────────────

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates the query string into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
