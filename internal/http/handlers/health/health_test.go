package health

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/task-tracker/internal/lib/sl"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	New(sl.Discard()).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"OK","data":{"status":200}}`, w.Body.String())
}
