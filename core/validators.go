package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/fastbreakhq/fastbreak/core/address"
)

var (
	Validate   *validator.Validate
	Translator ut.Translator

	// custom validation tags & texts
	usPhoneTag   = "usphone"
	usPhoneText  = "phone number must be exactly 10 digits"
	usPhoneRegex = regexp.MustCompile(`^\d{10}$`)

	usStateTag  = "usstate"
	usStateText = "must be a valid 2-letter state code"

	zipCodeTag   = "zipcode"
	zipCodeText  = "must be a valid zip code"
	zipCodeRegex = regexp.MustCompile(`^\d{5}(-\d{4})?$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"
)

func init() {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator("en")

	Validate = validator.New()
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Use JSON tag names for errors instead of Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = Validate.RegisterValidation(usPhoneTag, usPhoneValidation)
	RegisterCustomTranslation(usPhoneTag, usPhoneText)

	_ = Validate.RegisterValidation(usStateTag, usStateValidation)
	RegisterCustomTranslation(usStateTag, usStateText)

	_ = Validate.RegisterValidation(zipCodeTag, zipCodeValidation)
	RegisterCustomTranslation(zipCodeTag, zipCodeText)

	RegisterCustomTranslation(requiredTag, requiredText, true)
	RegisterCustomTranslation(requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = Validate.RegisterTranslation(
		tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// FieldErrors runs struct validation on obj and converts the violations into
// FieldError values so callers can merge them with their own checks and report
// everything at once.
func FieldErrors(obj interface{}) []FieldError {
	err := Validate.Struct(obj)
	if err == nil {
		return nil
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "__all__", Error: err.Error()}}
	}
	flds := make([]FieldError, 0, len(vErrs))
	for _, vErr := range vErrs {
		flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(Translator)})
	}
	return flds
}

// Custom Global Validators

// usPhoneValidation requires a bare 10-digit phone number.
func usPhoneValidation(fl validator.FieldLevel) bool {
	return usPhoneRegex.MatchString(fl.Field().String())
}

// usStateValidation requires a recognized 2-letter USPS state code.
func usStateValidation(fl validator.FieldLevel) bool {
	return address.IsStateCode(fl.Field().String())
}

// zipCodeValidation allows 5-digit zips with an optional plus-4.
func zipCodeValidation(fl validator.FieldLevel) bool {
	return zipCodeRegex.MatchString(fl.Field().String())
}
