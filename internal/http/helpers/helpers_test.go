package helpers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestReadJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"crm","extra":1}`))
	assert.True(t, ReadJSON(rec, req, &v))
	assert.Equal(t, "crm", v.Name)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	assert.True(t, ReadJSON(rec, req, &v), "empty body")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{nope"))
	assert.False(t, ReadJSON(rec, req, &v))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	big := `{"name":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))
	assert.False(t, ReadJSON(rec, req, &v))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestPathID(t *testing.T) {
	cases := map[string]bool{"12": true, "0": false, "-3": false, "abc": false, "": false}
	for raw, ok := range cases {
		r := chi.NewRouter()
		var got bool
		r.Get("/x/{id}", func(w http.ResponseWriter, req *http.Request) {
			_, got = PathID(req, "id")
		})
		r.Get("/x/", func(w http.ResponseWriter, req *http.Request) {
			_, got = PathID(req, "id")
		})
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x/"+raw, nil))
		assert.Equal(t, ok, got, raw)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", ClientIP(req))
	req.RemoteAddr = "10.1.2.3"
	assert.Equal(t, "10.1.2.3", ClientIP(req))
}
