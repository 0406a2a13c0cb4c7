package middlewares

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/text/language"

	"catrank.dev/backend/internal/constant"
	"catrank.dev/backend/internal/util/i18n"
)

func InjectI18n() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		set := func(trans ut.Translator) error {
			c.Locals(constant.ContextKeyTranslator, trans)
			return c.Next()
		}

		tags, _, err := language.ParseAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
		if err != nil {
			return set(i18n.UT.GetFallback())
		}

		langs := make([]string, 0, len(tags)*2)
		for _, tag := range tags {
			langs = append(langs, strings.ReplaceAll(strings.ToLower(tag.String()), "-", "_"))
			// ja_jp should still find ja
			if base, conf := tag.Base(); conf != language.No {
				langs = append(langs, base.String())
			}
		}

		trans, _ := i18n.UT.FindTranslator(langs...)

		return set(trans)
	}
}
