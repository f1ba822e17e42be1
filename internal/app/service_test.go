package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/okian/shopfloor/internal/adapters/kv"
	service "github.com/okian/shopfloor/internal/app"
	"github.com/okian/shopfloor/internal/domain/feedback"
	"github.com/okian/shopfloor/internal/domain/identity"
	"github.com/okian/shopfloor/internal/domain/model"
	"github.com/okian/shopfloor/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithLogger(logger.Nop()),
		service.WithProvider(feedback.NewLocalProvider(feedback.WithLatencyRange(0, 0))),
	}
	return service.New(append(base, opts...)...)
}

func TestService_Start(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newService()
		defer svc.Stop()

		Convey("When it has not been started", func() {
			_, err := svc.Login(context.Background(), "john.smith@retailtraining.com", "")

			Convey("Then operations report it", func() {
				So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})

		Convey("When starting the service", func() {
			err := svc.Start(context.Background())

			Convey("Then it should start successfully", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["scenarios"], ShouldEqual, 5)
				So(stats["progressRecords"], ShouldEqual, 0)
			})

			Convey("And starting twice is a no-op", func() {
				So(svc.Start(context.Background()), ShouldBeNil)
			})
		})
	})

	Convey("Given a service with demo progress", t, func() {
		svc := newService(service.WithDemoProgress(true))
		defer svc.Stop()
		So(svc.Start(context.Background()), ShouldBeNil)

		Convey("Then the store is primed", func() {
			So(svc.GetStats()["progressRecords"], ShouldBeGreaterThan, 0)
		})
	})
}

func TestService_Identity(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newService()
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("When an employee logs in", func() {
			res, err := svc.Login(ctx, "John.Smith@retailtraining.com", "")
			So(err, ShouldBeNil)

			Convey("Then the token authenticates them", func() {
				So(res.Token, ShouldNotBeEmpty)
				So(res.Employee.ID, ShouldEqual, "1")
				emp, err := svc.Authenticate(ctx, res.Token)
				So(err, ShouldBeNil)
				So(emp.ID, ShouldEqual, "1")
				cur, err := svc.Current(ctx)
				So(err, ShouldBeNil)
				So(cur.ID, ShouldEqual, "1")
			})

			Convey("And after logout the token is refused", func() {
				So(svc.Logout(ctx), ShouldBeNil)
				_, err := svc.Authenticate(ctx, res.Token)
				So(errors.Is(err, identity.ErrNotSignedIn), ShouldBeTrue)
				_, err = svc.Current(ctx)
				So(errors.Is(err, identity.ErrNotSignedIn), ShouldBeTrue)
			})

			Convey("And a second employee replaces them", func() {
				_, err := svc.Login(ctx, "sarah.johnson@retailtraining.com", "")
				So(err, ShouldBeNil)
				_, err = svc.Authenticate(ctx, res.Token)
				So(errors.Is(err, identity.ErrNotSignedIn), ShouldBeTrue)
			})
		})

		Convey("When a forged token is presented", func() {
			_, err := svc.Authenticate(ctx, "abc.def.ghi")

			Convey("Then it is rejected", func() {
				So(errors.Is(err, identity.ErrInvalidToken), ShouldBeTrue)
			})
		})
	})

	Convey("Given a session persisted in SQLite", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "session.db")

		first, err := kv.OpenSQLite(ctx, path)
		So(err, ShouldBeNil)
		svc := newService(service.WithSessionStore(first))
		So(svc.Start(ctx), ShouldBeNil)
		_, err = svc.Login(ctx, "sarah.johnson@retailtraining.com", "")
		So(err, ShouldBeNil)
		svc.Stop()

		Convey("When a new service starts on the same file", func() {
			second, err := kv.OpenSQLite(ctx, path)
			So(err, ShouldBeNil)
			again := newService(service.WithSessionStore(second))
			So(again.Start(ctx), ShouldBeNil)
			defer again.Stop()

			Convey("Then the employee is still signed in", func() {
				emp, err := again.Current(ctx)
				So(err, ShouldBeNil)
				So(emp.ID, ShouldEqual, "2")
			})
		})
	})
}

func TestService_Catalog(t *testing.T) {
	Convey("Given a started service with demo progress", t, func() {
		ctx := context.Background()
		svc := newService(service.WithDemoProgress(true))
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then categories and scenarios are listed", func() {
			So(svc.Categories(ctx), ShouldHaveLength, 4)
			So(svc.Scenarios(ctx, "", ""), ShouldHaveLength, 5)
			cs := svc.Scenarios(ctx, "", "cs")
			So(cs, ShouldHaveLength, 2)
			for _, sc := range cs {
				So(sc.Status, ShouldEqual, model.StatusNotStarted)
			}
		})

		Convey("Then an employee sees their own status", func() {
			for _, sc := range svc.Scenarios(ctx, "1", "") {
				if sc.ID == "cs-1" {
					So(sc.Status, ShouldEqual, model.StatusCompleted)
					So(sc.Score, ShouldNotBeNil)
				}
			}
		})

		Convey("Then a scenario detail carries its steps", func() {
			d, err := svc.Scenario(ctx, "", "cs-2")
			So(err, ShouldBeNil)
			So(d.Steps, ShouldHaveLength, 4)
			_, err = svc.Scenario(ctx, "", "nope")
			So(errors.Is(err, service.ErrScenarioNotFound), ShouldBeTrue)
		})
	})
}

func TestService_Training(t *testing.T) {
	Convey("Given a signed-in employee", t, func() {
		ctx := context.Background()
		svc := newService(service.WithMaxResponseChars(400), service.WithSubmitTimeout(time.Second))
		defer svc.Stop()
		So(svc.Start(ctx), ShouldBeNil)
		res, err := svc.Login(ctx, "sarah.johnson@retailtraining.com", "")
		So(err, ShouldBeNil)
		id := res.Employee.ID

		Convey("When a scenario is played to the end", func() {
			v, err := svc.StartScenario(ctx, id, "product-1")
			So(err, ShouldBeNil)
			So(v.Steps, ShouldHaveLength, 2)

			for range v.Steps {
				out, err := svc.Respond(ctx, id, "I understand, I can help you and I will check the details right away for you.")
				So(err, ShouldBeNil)
				So(out.Response.Feedback, ShouldNotBeNil)
				_, err = svc.Advance(ctx, id)
				So(err, ShouldBeNil)
			}
			done, err := svc.CompleteScenario(ctx, id)
			So(err, ShouldBeNil)

			Convey("Then progress reflects the completion", func() {
				So(done.Record.CompletedSteps, ShouldEqual, 2)
				rep, err := svc.Progress(ctx, id)
				So(err, ShouldBeNil)
				So(rep.Summary.Completed, ShouldEqual, 1)
				So(rep.Summary.TotalScenarios, ShouldEqual, 5)
				So(rep.Summary.CompletionRate, ShouldEqual, 20)
				So(rep.Records, ShouldHaveLength, 1)

				view, err := svc.Training(ctx, id)
				So(err, ShouldBeNil)
				So(view.State.String(), ShouldEqual, "idle")
			})
		})

		Convey("When a response is blank or too long", func() {
			_, err := svc.StartScenario(ctx, id, "cs-1")
			So(err, ShouldBeNil)
			_, blankErr := svc.Respond(ctx, id, "   ")
			_, longErr := svc.Respond(ctx, id, strings.Repeat("a", 401))

			Convey("Then it is rejected before reaching the session", func() {
				So(errors.Is(blankErr, service.ErrEmptyResponse), ShouldBeTrue)
				So(errors.Is(longErr, service.ErrResponseTooLong), ShouldBeTrue)
				view, _ := svc.Training(ctx, id)
				So(view.Responses, ShouldBeEmpty)
			})
		})

		Convey("When no employee id is given", func() {
			_, err := svc.StartScenario(ctx, "", "cs-1")

			Convey("Then nobody is signed in", func() {
				So(errors.Is(err, identity.ErrNotSignedIn), ShouldBeTrue)
			})
		})
	})
}
