// Package validate owns the process-wide struct validator and its english translations
package validate

import (
	"reflect"
	"strings"
	"sync"
	"time"

	perr "stridekit/internal/platform/errors"
	"stridekit/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldLevel aliases validator.FieldLevel
type FieldLevel = validator.FieldLevel

// Svc holds a singleton validator and translator
type Svc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	once sync.Once
	svc  *Svc
)

// Init initializes the singleton validator with english translations and json tag names
func Init() *Svc {
	once.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// prefer json tag names in messages
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)

		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")

		_ = v.RegisterValidation("weekday", isWeekday)
		registerShort(v, trans, "weekday", "{0} must be a weekday between 0 (Sunday) and 6 (Saturday)")

		_ = v.RegisterValidation("iana_tz", isIANAZone)
		registerShort(v, trans, "iana_tz", "{0} must be an IANA timezone such as Europe/Lisbon")

		svc = &Svc{Validator: v, Translator: trans}
	})
	return svc
}

// Get returns the validator singleton, initializing on first use
func Get() *Svc { return Init() }

// RegisterValidation registers a custom tag
func RegisterValidation(tag string, fn validator.Func) error {
	return Get().Validator.RegisterValidation(tag, fn)
}

// Struct validates v and maps failures to a perr validation error carrying the first field
func Struct(v any) error {
	err := Get().Validator.Struct(v)
	if err == nil {
		return nil
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		logger.Get().Error().Err(inv).Msg("validator internal error")
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validation error")
	}
	field, msg := FieldAndMessage(err)
	return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
}

// FieldAndMessage returns the first field and translated message
func FieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

// isWeekday accepts integers 0..6 (time.Weekday numbering)
func isWeekday(fl validator.FieldLevel) bool {
	switch f := fl.Field(); f.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := f.Int()
		return n >= 0 && n <= 6
	default:
		return false
	}
}

// isIANAZone accepts names time.LoadLocation understands, excluding the empty string
func isIANAZone(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok || s == "" {
		return false
	}
	_, err := time.LoadLocation(s)
	return err == nil
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
