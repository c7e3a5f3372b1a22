// Package locale loads the translation bundle and resolves user-facing messages
// for the request's language.
package locale

import (
	"io/fs"
	"strings"
	"sync"

	"github.com/mhsanaei/taskpanel/logger"

	"github.com/gin-gonic/gin"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

const (
	localizerKey = "localizer"
	// I18nKey holds the request's translate function in the gin context.
	I18nKey = "I18n"
)

var (
	mu               sync.RWMutex
	i18nBundle       *i18n.Bundle
	defaultLocalizer *i18n.Localizer
)

// InitLocalizer parses every file under translation/ in fsys into the bundle.
func InitLocalizer(fsys fs.FS) error {
	bundle := i18n.NewBundle(language.MustParse("en-US"))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	if err := parseTranslationFiles(fsys, bundle); err != nil {
		return err
	}

	mu.Lock()
	i18nBundle = bundle
	defaultLocalizer = i18n.NewLocalizer(bundle)
	mu.Unlock()
	return nil
}

func createTemplateData(params []string, seperator ...string) map[string]any {
	var sep string = "=="
	if len(seperator) > 0 {
		sep = seperator[0]
	}

	templateData := make(map[string]any)
	for _, param := range params {
		parts := strings.SplitN(param, sep, 2)
		if len(parts) != 2 {
			continue
		}
		templateData[parts[0]] = parts[1]
	}

	return templateData
}

// Localize translates key with localizer, or with the default language when
// localizer is nil. Params are "name==value" pairs. The key itself is returned
// when no bundle is loaded or the key is unknown.
func Localize(localizer *i18n.Localizer, key string, params ...string) string {
	if localizer == nil {
		mu.RLock()
		localizer = defaultLocalizer
		mu.RUnlock()
	}
	if localizer == nil {
		return key
	}

	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: createTemplateData(params),
	})
	if err != nil {
		logger.Errorf("Failed to localize message: %v", err)
		return key
	}
	return msg
}

// I18n translates key in the default language.
func I18n(key string, params ...string) string {
	return Localize(nil, key, params...)
}

// LocalizerMiddleware picks the language from the "lang" cookie or the
// Accept-Language header and stores a localizer on the request.
func LocalizerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		mu.RLock()
		bundle := i18nBundle
		mu.RUnlock()
		if bundle == nil {
			c.Next()
			return
		}

		var lang string
		if cookie, err := c.Request.Cookie("lang"); err == nil {
			lang = cookie.Value
		} else {
			lang = c.GetHeader("Accept-Language")
		}

		localizer := i18n.NewLocalizer(bundle, lang)
		c.Set(localizerKey, localizer)
		c.Set(I18nKey, func(key string, params ...string) string {
			return Localize(localizer, key, params...)
		})
		c.Next()
	}
}

// FromContext translates key with the localizer stored by LocalizerMiddleware.
func FromContext(c *gin.Context, key string, params ...string) string {
	var localizer *i18n.Localizer
	if v, ok := c.Get(localizerKey); ok {
		localizer, _ = v.(*i18n.Localizer)
	}
	return Localize(localizer, key, params...)
}

func parseTranslationFiles(fsys fs.FS, bundle *i18n.Bundle) error {
	return fs.WalkDir(fsys, "translation",
		func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}

			data, err := fs.ReadFile(fsys, path)
			if err != nil {
				return err
			}

			_, err = bundle.ParseMessageFileBytes(data, path)
			return err
		})
}
