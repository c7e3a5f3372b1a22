package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFS = fstest.MapFS{
	"translation/translate.en_US.toml": {Data: []byte(`
"appName" = "Task Panel"
[pages.dashboard]
"welcome" = "Welcome, {{ .Name }}"
[messages]
"emptyTask" = "Task cannot be empty."
`)},
}

func TestI18n(t *testing.T) {
	require.NoError(t, InitLocalizer(testFS))

	assert.Equal(t, "Task Panel", I18n("appName"))
	assert.Equal(t, "Task cannot be empty.", I18n("messages.emptyTask"))
	assert.Equal(t, "Welcome, Ann", I18n("pages.dashboard.welcome", "Name==Ann"))
	assert.Equal(t, "messages.unknown", I18n("messages.unknown"))
}

func TestCreateTemplateData(t *testing.T) {
	data := createTemplateData([]string{"Name==Ann", "broken", "Expr==a==b"})
	assert.Equal(t, map[string]any{"Name": "Ann", "Expr": "a==b"}, data)
}

func TestLocalizerMiddleware(t *testing.T) {
	require.NoError(t, InitLocalizer(testFS))
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(LocalizerMiddleware())
	r.GET("/", func(c *gin.Context) {
		_, ok := c.Get(I18nKey)
		assert.True(t, ok)
		c.String(http.StatusOK, FromContext(c, "messages.emptyTask"))
	})

	for _, lang := range []string{"", "en-US,en;q=0.9", "fr-FR"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if lang != "" {
			req.Header.Set("Accept-Language", lang)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, "Task cannot be empty.", w.Body.String(), lang)
	}
}
