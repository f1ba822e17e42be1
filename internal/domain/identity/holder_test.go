package identity

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/okian/shopfloor/internal/adapters/kv"
	"github.com/okian/shopfloor/internal/domain/catalog"
	"github.com/okian/shopfloor/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type staticRoster []model.Employee

func (r staticRoster) Employees() []model.Employee { return r }

// failingStore fails every write.
type failingStore struct{ kv.Store }

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }

func TestHolder_Login(t *testing.T) {
	Convey("Given a holder over the built-in roster", t, func() {
		ctx := context.Background()
		store := kv.NewMemoryStore()
		h := NewHolder(catalog.Default(), store)

		_, ok := h.Current()
		So(ok, ShouldBeFalse)

		Convey("When logging in with a mixed-case email", func() {
			emp, err := h.Login(ctx, "  John.Smith@RetailTraining.com ", "anything")

			Convey("Then the roster entry is signed in and persisted", func() {
				So(err, ShouldBeNil)
				So(emp.ID, ShouldEqual, "1")
				cur, ok := h.Current()
				So(ok, ShouldBeTrue)
				So(cur.Email, ShouldEqual, "john.smith@retailtraining.com")

				raw, err := store.Get(ctx, CurrentEmployeeKey)
				So(err, ShouldBeNil)
				So(string(raw), ShouldContainSubstring, `"id":"1"`)
			})

			Convey("And logging out clears both", func() {
				So(h.Logout(ctx), ShouldBeNil)
				_, ok := h.Current()
				So(ok, ShouldBeFalse)
				_, err := store.Get(ctx, CurrentEmployeeKey)
				So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
				So(h.Logout(ctx), ShouldBeNil)
			})
		})

		Convey("When the email is unknown", func() {
			_, err := h.Login(ctx, "nobody@retailtraining.com", "x")

			Convey("Then the credentials are rejected", func() {
				So(errors.Is(err, ErrInvalidCredentials), ShouldBeTrue)
				_, ok := h.Current()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the email is blank", func() {
			_, err := h.Login(ctx, "   ", "x")

			Convey("Then credentials are required", func() {
				So(errors.Is(err, ErrMissingCredentials), ShouldBeTrue)
			})
		})

		Convey("When another employee logs in", func() {
			_, err := h.Login(ctx, "john.smith@retailtraining.com", "")
			So(err, ShouldBeNil)
			_, err = h.Login(ctx, "sarah.johnson@retailtraining.com", "")
			So(err, ShouldBeNil)

			Convey("Then they replace the previous one", func() {
				cur, _ := h.Current()
				So(cur.ID, ShouldEqual, "2")
			})
		})
	})

	Convey("Given a roster entry with a password hash", t, func() {
		ctx := context.Background()
		hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
		So(err, ShouldBeNil)
		roster := staticRoster{{ID: "7", Name: "Pat", Email: "pat@example.com", PasswordHash: hash}}
		h := NewHolder(roster, kv.NewMemoryStore())

		Convey("Then only the right password signs in", func() {
			_, err := h.Login(ctx, "pat@example.com", "wrong")
			So(errors.Is(err, ErrInvalidCredentials), ShouldBeTrue)
			emp, err := h.Login(ctx, "pat@example.com", "s3cret")
			So(err, ShouldBeNil)
			So(emp.ID, ShouldEqual, "7")
		})
	})

	Convey("Given a store that cannot be written", t, func() {
		h := NewHolder(catalog.Default(), failingStore{kv.NewMemoryStore()})

		Convey("When logging in", func() {
			_, err := h.Login(context.Background(), "john.smith@retailtraining.com", "")

			Convey("Then the failure is reported and nobody is signed in", func() {
				So(errors.Is(err, ErrSessionStoreFailure), ShouldBeTrue)
				_, ok := h.Current()
				So(ok, ShouldBeFalse)
			})
		})
	})
}

func TestHolder_Restore(t *testing.T) {
	Convey("Given a persisted session", t, func() {
		ctx := context.Background()
		store := kv.NewMemoryStore()
		first := NewHolder(catalog.Default(), store)
		_, err := first.Login(ctx, "sarah.johnson@retailtraining.com", "")
		So(err, ShouldBeNil)

		Convey("When a new holder restores it", func() {
			second := NewHolder(catalog.Default(), store)
			emp, err := second.Restore(ctx)

			Convey("Then the same employee is signed in", func() {
				So(err, ShouldBeNil)
				So(emp, ShouldNotBeNil)
				So(emp.ID, ShouldEqual, "2")
				cur, ok := second.Current()
				So(ok, ShouldBeTrue)
				So(cur.Name, ShouldEqual, "Sarah Johnson")
			})
		})
	})

	Convey("Given an empty store", t, func() {
		h := NewHolder(catalog.Default(), kv.NewMemoryStore())

		Convey("Then restoring signs nobody in", func() {
			emp, err := h.Restore(context.Background())
			So(err, ShouldBeNil)
			So(emp, ShouldBeNil)
		})
	})

	Convey("Given a corrupt or stale record", t, func() {
		ctx := context.Background()
		store := kv.NewMemoryStore()
		h := NewHolder(catalog.Default(), store)

		Convey("When the record is not JSON", func() {
			So(store.Put(ctx, CurrentEmployeeKey, []byte("{not json")), ShouldBeNil)
			emp, err := h.Restore(ctx)

			Convey("Then it is discarded", func() {
				So(err, ShouldBeNil)
				So(emp, ShouldBeNil)
				_, err := store.Get(ctx, CurrentEmployeeKey)
				So(errors.Is(err, kv.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the employee left the roster", func() {
			So(store.Put(ctx, CurrentEmployeeKey, []byte(`{"id":"99","email":"gone@x.com"}`)), ShouldBeNil)
			emp, err := h.Restore(ctx)

			Convey("Then it is discarded", func() {
				So(err, ShouldBeNil)
				So(emp, ShouldBeNil)
				_, ok := h.Current()
				So(ok, ShouldBeFalse)
			})
		})
	})
}
