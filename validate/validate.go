package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/google/uuid"
)

var validate *validator.Validate

var translator ut.Translator

func init() {

	validate = validator.New()

	translator, _ = ut.New(en.New(), en.New()).GetTranslator("en")
	en_translations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldsError lists every failed field, keyed by its json name, with a
// translated message. Error returns the first one.
type FieldsError struct {
	Fields map[string]string
	first  string
}

func (e *FieldsError) Error() string { return e.first }

func Check(val any) error {
	if err := validate.Struct(val); err != nil {

		verrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}

		if len(verrors) < 1 {
			return nil
		}

		fe := &FieldsError{
			Fields: make(map[string]string, len(verrors)),
			first:  verrors[0].Translate(translator),
		}
		for _, v := range verrors {
			if _, seen := fe.Fields[v.Field()]; !seen {
				fe.Fields[v.Field()] = v.Translate(translator)
			}
		}
		return fe
	}

	return nil
}

// Fields returns the per field messages carried by err, if any.
func Fields(err error) (map[string]string, bool) {
	var fe *FieldsError
	if errors.As(err, &fe) {
		return fe.Fields, true
	}
	return nil, false
}

func GenerateID() string {
	return uuid.NewString()
}

func CheckID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("ID is not in its proper form")
	}
	return nil
}
