package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/shopfloor/internal/adapters/http/api"
	"github.com/okian/shopfloor/internal/domain/identity"
	"github.com/okian/shopfloor/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// tokenAuth accepts a single token.
type tokenAuth struct {
	token string
	emp   model.Employee
}

func (a tokenAuth) Authenticate(_ context.Context, token string) (model.Employee, error) {
	if token != a.token {
		return model.Employee{}, identity.ErrInvalidToken
	}
	return a.emp, nil
}

func TestEmployeeMiddleware(t *testing.T) {
	Convey("Given an authenticator for one employee", t, func() {
		auth := tokenAuth{token: "good", emp: model.Employee{ID: "1", Name: "John Smith"}}
		var got *model.Employee
		handler := func(w http.ResponseWriter, _ *http.Request, emp model.Employee) {
			got = &emp
			w.WriteHeader(http.StatusNoContent)
		}
		serve := func(h http.HandlerFunc, token string) int {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if token != "" {
				req.Header.Set("Authorization", "Bearer "+token)
			}
			rec := httptest.NewRecorder()
			h(rec, req)
			return rec.Code
		}

		Convey("When a required route gets a valid token", func() {
			code := serve(api.RequireEmployee(auth, handler), "good")

			Convey("Then the handler receives the employee", func() {
				So(code, ShouldEqual, http.StatusNoContent)
				So(got, ShouldNotBeNil)
				So(got.ID, ShouldEqual, "1")
			})
		})

		Convey("When a required route gets no token or a bad one", func() {
			missing := serve(api.RequireEmployee(auth, handler), "")
			bad := serve(api.RequireEmployee(auth, handler), "forged")

			Convey("Then it is rejected before the handler runs", func() {
				So(missing, ShouldEqual, http.StatusUnauthorized)
				So(bad, ShouldEqual, http.StatusUnauthorized)
				So(got, ShouldBeNil)
			})
		})

		Convey("When an optional route gets a bad token", func() {
			code := serve(api.OptionalEmployee(auth, handler), "forged")

			Convey("Then the handler runs with the zero employee", func() {
				So(code, ShouldEqual, http.StatusNoContent)
				So(got, ShouldNotBeNil)
				So(got.ID, ShouldBeEmpty)
			})
		})
	})
}
