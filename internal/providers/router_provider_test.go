package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jobsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"count":0}`))
	})
}

func serveRoute(route http.Handler, method, url string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	route.ServeHTTP(rr, httptest.NewRequest(method, url, nil))
	return rr
}

func TestRouterProvider_RegistersInOrder(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/jobs", jobsHandler())
	rp.Get("/job", jobsHandler())

	routes := rp.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/jobs", routes[0].Url)
	assert.Equal(t, "/job", routes[1].Url)
}

func TestRouterProvider_EmptyByDefault(t *testing.T) {
	assert.Empty(t, NewRouterProvider().GetRoutes())
}

func TestRouterProvider_GetRouteServesReads(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/jobs", jobsHandler())
	route := rp.GetRoutes()[0].Handler

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			rr := serveRoute(route, method, "/jobs?status=failed")
			assert.Equal(t, http.StatusOK, rr.Code)
		})
	}
}

func TestRouterProvider_GetRouteRejectsWrites(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/jobs", jobsHandler())
	route := rp.GetRoutes()[0].Handler

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			rr := serveRoute(route, method, "/jobs")
			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
			assert.Equal(t, "GET, HEAD", rr.Header().Get("Allow"))
			assert.NotContains(t, rr.Body.String(), "count")
		})
	}
}

func TestMethodHandler_SingleMethod(t *testing.T) {
	handler := methodHandler(jobsHandler(), http.MethodGet)

	assert.Equal(t, http.StatusOK, serveRoute(handler, http.MethodGet, "/job").Code)

	rr := serveRoute(handler, http.MethodHead, "/job")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodGet, rr.Header().Get("Allow"))
}
