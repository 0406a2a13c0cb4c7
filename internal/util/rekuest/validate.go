package rekuest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	jaTranslations "github.com/go-playground/validator/v10/translations/ja"
	zhTranslations "github.com/go-playground/validator/v10/translations/zh"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/pkg/apperr"
	"catrank.dev/backend/internal/util"
	"catrank.dev/backend/internal/util/i18n"
)

var Validate = util.NewValidator()

func init() {
	entr, _ := i18n.UT.GetTranslator("en")
	jatr, _ := i18n.UT.GetTranslator("ja")
	zhtr, _ := i18n.UT.GetTranslator("zh")

	registrations := map[string]struct {
		trans    ut.Translator
		register func(*validator.Validate, ut.Translator) error
	}{
		"en": {entr, enTranslations.RegisterDefaultTranslations},
		"ja": {jatr, jaTranslations.RegisterDefaultTranslations},
		"zh": {zhtr, zhTranslations.RegisterDefaultTranslations},
	}

	for locale, r := range registrations {
		if err := r.register(Validate, r.trans); err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("could not register translation")
		}

		err := Validate.RegisterTranslation("caseinsensitiveoneof", r.trans, func(ut ut.Translator) error {
			return nil
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("oneof", fe.Field(), fe.Param())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("could not register translation for function caseinsensitiveoneof")
		}

		err = Validate.RegisterTranslation("notblank", r.trans, func(ut ut.Translator) error {
			return nil
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T("required", fe.Field())
			return t
		})
		if err != nil {
			log.Warn().Err(err).Str("locale", locale).Msg("could not register translation for function notblank")
		}
	}
}

type ErrorResponse struct {
	Field     string `json:"field,omitempty"`
	Violation string `json:"violation"`
	Message   string `json:"message"`
}

// TranslatorFromCtx returns the translator negotiated by the i18n middleware,
// or the fallback translator.
func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	if ctx != nil {
		if trans, ok := ctx.Locals(constant.ContextKeyTranslator).(ut.Translator); ok {
			return trans
		}
	}
	return i18n.UT.GetFallback()
}

func translate(utt ut.Translator, ve validator.ValidationErrors) []*ErrorResponse {
	trans := make([]*ErrorResponse, 0, len(ve))
	for _, fe := range ve {
		trans = append(trans, &ErrorResponse{
			Field:     fe.Namespace(),
			Violation: fe.Tag(),
			Message:   fe.Translate(utt),
		})
	}
	return trans
}

func validateVar(ctx *fiber.Ctx, s any, tag string) []*ErrorResponse {
	err := Validate.Var(s, tag)
	if err != nil {
		errs := err.(validator.ValidationErrors)
		return translate(TranslatorFromCtx(ctx), errs)
	}
	return nil
}

func validateStruct(ctx *fiber.Ctx, s any) []*ErrorResponse {
	err := Validate.Struct(s)
	if err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			panic(err)
		}
		return translate(TranslatorFromCtx(ctx), errs)
	}
	return nil
}

// ValidBody will get the body from *fiber.Ctx using fiber#BodyParser(),
// and validate it using the validator singleton. If the validation passed it will write the unmarshalled body
// to dest and return a nil, otherwise it will return an error. Notice that dest shall
// always be a pointer.
func ValidBody(ctx *fiber.Ctx, dest any) error {
	if err := ctx.BodyParser(dest); err != nil {
		return apperr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return ValidStruct(ctx, dest)
}

// ValidQuery is ValidBody for the query string.
func ValidQuery(ctx *fiber.Ctx, dest any) error {
	if err := ctx.QueryParser(dest); err != nil {
		return apperr.ErrInvalidReq.Msg("invalid request: %s", err)
	}

	return ValidStruct(ctx, dest)
}

func ValidStruct(ctx *fiber.Ctx, dest any) error {
	if err := validateStruct(ctx, dest); err != nil {
		return apperr.NewInvalidViolations(err)
	}

	return nil
}

func ValidVar(ctx *fiber.Ctx, field any, tag string) error {
	if err := validateVar(ctx, field, tag); err != nil {
		return apperr.NewInvalidViolations(err)
	}

	return nil
}
