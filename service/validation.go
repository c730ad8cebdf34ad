package service

import (
	"errors"
	"reflect"
	"strings"

	"praytogether-backend/i18n"
	"praytogether-backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const tagVersionLanguage = "versionlanguage"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
		return isSupportedLocale(models.Locale(fl.Field().String()))
	})
	_ = v.RegisterValidation("bibleversion", func(fl validator.FieldLevel) bool {
		_, ok := models.FindBibleVersion(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("religion", func(fl validator.FieldLevel) bool {
		return models.IsKnownReligion(fl.Field().String())
	})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		req := sl.Current().Interface().(models.PrayerPlanRequest)
		checkVersionLanguage(sl, req.BibleVersion, req.Language)
	}, models.PrayerPlanRequest{})

	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(models.UserProfile)
		checkVersionLanguage(sl, p.PreferredBibleVersion, p.PreferredLanguage)
	}, models.UserProfile{})

	return v
}

// checkVersionLanguage reports a version tagged with another language. Unknown
// versions and locales are left to their field rules.
func checkVersionLanguage(sl validator.StructLevel, version string, lang models.Locale) {
	if version == "" || !isSupportedLocale(lang) {
		return
	}
	if _, ok := models.FindBibleVersion(version); !ok {
		return
	}
	if models.BibleVersionMatchesLanguage(version, lang) {
		return
	}
	field := "bibleVersion"
	if _, ok := sl.Current().Interface().(models.UserProfile); ok {
		field = "preferredBibleVersion"
	}
	sl.ReportError(version, field, field, tagVersionLanguage, string(lang))
}

func isSupportedLocale(l models.Locale) bool {
	for _, s := range models.SupportedLocales {
		if s == l {
			return true
		}
	}
	return false
}

// validateStruct runs the struct rules and converts failures to a
// *ValidationError with messages in locale
func validateStruct(locale models.Locale, s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &ValidationError{Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := fieldPath(fe)
		verr.Violations = append(verr.Violations, Violation{
			Field:   field,
			Rule:    fe.Tag(),
			Message: violationMessage(locale, field, fe.Tag()),
		})
	}
	return verr
}

// fieldPath drops the struct name from the namespace: "entries[0].verseRef"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func violationMessage(locale models.Locale, field, tag string) string {
	switch {
	case (field == "reason" || field == "topic") && (tag == "min" || tag == "required"):
		return i18n.T(locale, i18n.ReasonTooShort)
	case field == "language" && (tag == "required" || tag == "locale"):
		return i18n.T(locale, i18n.LanguageRequired)
	case tag == tagVersionLanguage:
		return i18n.T(locale, i18n.VersionMismatch)
	case tag == "required":
		return i18n.T(locale, i18n.FieldRequired, "field", field)
	default:
		return i18n.T(locale, i18n.FieldInvalid, "field", field)
	}
}
