package render

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"rtoken/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapResponse(t *testing.T) {
	h := WrapResponse(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			JSON(w, H{"price": "1"})
		case "/bad":
			Err(w, fmt.Errorf("set: %w", core.ErrFurnaceGetsRSR))
		default:
			Err(w, errors.New("db down"))
		}
	}))

	for _, c := range []struct {
		path   string
		status int
		body   string
	}{
		{"/ok", http.StatusOK, `{"data":{"price":"1"}}`},
		{"/bad", http.StatusBadRequest, `{"code":100300,"msg":"set: Furnace must get 0% of RSR"}`},
		{"/oops", http.StatusInternalServerError, `{"code":100000,"msg":"Internal Server Error"}`},
	} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, c.path, nil))
		assert.Equal(t, c.status, w.Code, c.path)
		assert.JSONEq(t, c.body, w.Body.String(), c.path)
	}
}
