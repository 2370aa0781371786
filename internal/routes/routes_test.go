package routes_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/legal-lab/internal/routes"
	"github.com/JaimeStill/legal-lab/pkg/logging"
	pkgroutes "github.com/JaimeStill/legal-lab/pkg/routes"
)

func okHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func TestRegisterRoute(t *testing.T) {
	sys := routes.New(logging.Discard())
	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/healthz", Handler: okHandler("OK")})

	rec := httptest.NewRecorder()
	sys.Build().ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "OK" {
		t.Errorf("body = %q, want %q", rec.Body.String(), "OK")
	}
	if len(sys.Routes()) != 1 {
		t.Errorf("len(Routes()) = %d, want 1", len(sys.Routes()))
	}
}

func TestRegisterGroup_NestedPrefixes(t *testing.T) {
	sys := routes.New(logging.Discard())
	sys.RegisterGroup(pkgroutes.Group{
		Prefix: "/api",
		Children: []pkgroutes.Group{
			{
				Prefix: "/cases",
				Routes: []pkgroutes.Route{
					{Method: "GET", Pattern: "", Handler: okHandler("list")},
					{Method: "GET", Pattern: "/{id}", Handler: okHandler("find")},
				},
			},
		},
	})

	handler := sys.Build()

	tests := []struct {
		path     string
		wantBody string
	}{
		{"/api/cases", "list"},
		{"/api/cases/123", "find"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouteMiddleware_WrapsOnlyRoute(t *testing.T) {
	mark := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Marked", "true")
			next.ServeHTTP(w, r)
		})
	}

	sys := routes.New(logging.Discard())
	sys.RegisterRoute(pkgroutes.Route{Method: "POST", Pattern: "/marked", Handler: okHandler("m"), Middleware: []func(http.Handler) http.Handler{mark}})
	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/plain", Handler: okHandler("p")})

	handler := sys.Build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/marked", nil))
	if rec.Header().Get("X-Marked") != "true" {
		t.Error("route middleware not applied")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/plain", nil))
	if rec.Header().Get("X-Marked") != "" {
		t.Error("route middleware leaked to another route")
	}
}

func TestMethodMismatch(t *testing.T) {
	sys := routes.New(logging.Discard())
	sys.RegisterRoute(pkgroutes.Route{Method: "GET", Pattern: "/only-get", Handler: okHandler("x")})

	rec := httptest.NewRecorder()
	sys.Build().ServeHTTP(rec, httptest.NewRequest("DELETE", "/only-get", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
