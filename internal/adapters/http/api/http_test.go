package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/bgxboard/internal/adapters/http/api"
	service "github.com/okian/bgxboard/internal/app"
	"github.com/okian/bgxboard/internal/domain/analytics"
	"github.com/okian/bgxboard/internal/domain/leaderboard"
	"github.com/okian/bgxboard/internal/domain/model"
	"github.com/okian/bgxboard/internal/domain/types"
)

type mockDeps struct {
	views    map[string]leaderboard.View
	boardErr error

	analytics    analytics.View
	analyticsErr error

	tracked  []service.TrackRequest
	outcome  service.TrackOutcome
	trackErr error
}

func (m *mockDeps) Leaderboard(_ context.Context, category string) (leaderboard.View, error) {
	if m.boardErr != nil {
		return leaderboard.View{}, m.boardErr
	}
	if category == "" {
		category = m.DefaultCategory()
	}
	if _, ok := m.Categories().Lookup(category); !ok {
		return leaderboard.View{}, fmt.Errorf("%w: %q", service.ErrUnknownCategory, category)
	}
	if v, ok := m.views[category]; ok {
		return v, nil
	}
	return leaderboard.NewProjector().Empty(category), nil
}

func (m *mockDeps) Analytics(_ context.Context) (analytics.View, error) {
	return m.analytics, m.analyticsErr
}

func (m *mockDeps) Track(_ context.Context, req service.TrackRequest) (service.TrackOutcome, error) {
	if m.trackErr != nil {
		return "", m.trackErr
	}
	m.tracked = append(m.tracked, req)
	if m.outcome == "" {
		return service.TrackAccepted, nil
	}
	return m.outcome, nil
}

func (m *mockDeps) Categories() types.Categories { return types.DefaultCategories() }

func (m *mockDeps) DefaultCategory() string { return "expert" }

type mockStats struct{}

func (mockStats) GetStats(_ context.Context) map[string]any {
	return map[string]any{"started": true, "workerCount": 2}
}

func newMux(deps api.Dependencies, opts ...api.Option) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}, opts...).Register(context.Background(), mux)
	return mux
}

func do(mux http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	return body
}

func TestLeaderboardEndpoint(t *testing.T) {
	Convey("Given an API server with an expert leaderboard", t, func() {
		deps := &mockDeps{views: map[string]leaderboard.View{
			"expert": {
				Category:     "expert",
				CategoryName: "Expert",
				TotalRiders:  1,
				Rows:         []leaderboard.Row{{FinalPosition: 1, Name: "Ivan Petrov", TotalPointsDisplay: "87"}},
			},
		}}
		mux := newMux(deps)

		Convey("When requesting without a category", func() {
			w := do(mux, http.MethodGet, "/api/leaderboard", "")

			Convey("Then the default category is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
				var view leaderboard.View
				So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
				So(view.Category, ShouldEqual, "expert")
				So(view.Rows, ShouldHaveLength, 1)
				So(view.Rows[0].Name, ShouldEqual, "Ivan Petrov")
			})
		})

		Convey("When requesting a category without results", func() {
			w := do(mux, http.MethodGet, "/api/leaderboard?category=women", "")

			Convey("Then an empty view is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view leaderboard.View
				So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
				So(view.Empty, ShouldBeTrue)
				So(view.Rows, ShouldBeEmpty)
			})
		})

		Convey("When requesting an unknown category", func() {
			w := do(mux, http.MethodGet, "/api/leaderboard?category=pro_am", "")

			Convey("Then it responds 404 unknown_category", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
				So(decodeError(w)["code"], ShouldEqual, "unknown_category")
			})
		})

		Convey("When the source fails", func() {
			deps.boardErr = errors.New("disk on fire")
			w := do(mux, http.MethodGet, "/api/leaderboard", "")

			Convey("Then it responds 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "internal_error")
				So(body["message"], ShouldContainSubstring, "api.get_leaderboard")
			})
		})

		Convey("When using the wrong method", func() {
			w := do(mux, http.MethodPost, "/api/leaderboard", "")

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
				So(w.Header().Get("Allow"), ShouldEqual, http.MethodGet)
			})
		})
	})
}

func TestAnalyticsEndpoint(t *testing.T) {
	Convey("Given an API server with analytics", t, func() {
		deps := &mockDeps{analytics: analytics.View{TotalVisits: 10, HomeVisits: 7}}
		mux := newMux(deps)

		Convey("When requesting analytics", func() {
			w := do(mux, http.MethodGet, "/api/analytics", "")

			Convey("Then the view is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var view analytics.View
				So(json.Unmarshal(w.Body.Bytes(), &view), ShouldBeNil)
				So(view.TotalVisits, ShouldEqual, 10)
				So(view.HomeVisits, ShouldEqual, 7)
			})
		})

		Convey("When the store fails", func() {
			deps.analyticsErr = errors.New("read visits: closed")
			w := do(mux, http.MethodGet, "/api/analytics", "")

			Convey("Then it responds 500", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestCategoriesEndpoint(t *testing.T) {
	Convey("Given an API server", t, func() {
		mux := newMux(&mockDeps{})

		Convey("When listing categories without a selection", func() {
			w := do(mux, http.MethodGet, "/api/categories", "")
			var cats []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &cats), ShouldBeNil)

			Convey("Then all categories are listed in order with the default active", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(cats, ShouldHaveLength, 8)
				So(cats[0]["key"], ShouldEqual, "expert")
				So(cats[0]["active"], ShouldEqual, true)
				So(cats[6]["name"], ShouldEqual, "Seniors 40+")
				So(cats[6]["active"], ShouldEqual, false)
			})
		})

		Convey("When listing categories with a selection", func() {
			w := do(mux, http.MethodGet, "/api/categories?category=junior", "")
			var cats []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &cats), ShouldBeNil)

			Convey("Then only the selection is active", func() {
				So(cats[0]["active"], ShouldEqual, false)
				So(cats[4]["key"], ShouldEqual, "junior")
				So(cats[4]["active"], ShouldEqual, true)
			})
		})
	})
}

func TestVisitsEndpoint(t *testing.T) {
	Convey("Given an API server accepting visits", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps)

		Convey("When posting a valid home visit", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/visits",
				strings.NewReader(`{"page":"home","category":"junior","visit_id":"v-1"}`))
			req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is accepted and the device is classified from the User-Agent", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
				So(deps.tracked, ShouldHaveLength, 1)
				So(deps.tracked[0].Page, ShouldEqual, "home")
				So(deps.tracked[0].Category, ShouldEqual, "junior")
				So(deps.tracked[0].VisitID, ShouldEqual, "v-1")
				So(deps.tracked[0].DeviceType, ShouldEqual, model.DeviceMobile)
			})
		})

		Convey("When posting with an explicit device type", func() {
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"Stats","device_type":"desktop"}`)

			Convey("Then the explicit device is kept and the page normalized", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.tracked[0].Page, ShouldEqual, "stats")
				So(deps.tracked[0].DeviceType, ShouldEqual, model.DeviceDesktop)
			})
		})

		Convey("When posting an untracked page", func() {
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"admin"}`)

			Convey("Then it responds 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "bad_request")
				So(body["message"], ShouldContainSubstring, "page")
				So(deps.tracked, ShouldBeEmpty)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := do(mux, http.MethodPost, "/api/visits", `{"page":`)

			Convey("Then it responds 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When posting an unknown device type", func() {
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"home","device_type":"fridge"}`)

			Convey("Then it responds 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the visit is a duplicate", func() {
			deps.outcome = service.TrackDuplicate
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"home","visit_id":"v-1"}`)

			Convey("Then it responds 200 duplicate", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"duplicate":true`)
			})
		})

		Convey("When the queue is full", func() {
			deps.outcome = service.TrackDropped
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"stats"}`)

			Convey("Then it responds 429 backpressure", func() {
				So(w.Code, ShouldEqual, http.StatusTooManyRequests)
				So(decodeError(w)["code"], ShouldEqual, "backpressure")
			})
		})

		Convey("When the category is unknown", func() {
			deps.trackErr = fmt.Errorf("%w: %q", service.ErrUnknownCategory, "pro_am")
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"home","category":"pro_am"}`)

			Convey("Then it responds 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the service is not started", func() {
			deps.trackErr = service.ErrNotStarted
			w := do(mux, http.MethodPost, "/api/visits", `{"page":"home"}`)

			Convey("Then it responds 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When using GET", func() {
			w := do(mux, http.MethodGet, "/api/visits", "")

			Convey("Then it responds 405", func() {
				So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
			})
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a burst of two visits", t, func() {
		deps := &mockDeps{}
		mux := newMux(deps, api.WithRateLimit(0.001, 2))

		codes := make([]int, 0, 3)
		for range 3 {
			codes = append(codes, do(mux, http.MethodPost, "/api/visits", `{"page":"home"}`).Code)
		}

		Convey("Then the third request is rejected", func() {
			So(codes, ShouldResemble, []int{http.StatusAccepted, http.StatusAccepted, http.StatusTooManyRequests})
			So(deps.tracked, ShouldHaveLength, 2)
		})

		Convey("Then other clients keep their own budget", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/visits", strings.NewReader(`{"page":"home"}`))
			req.RemoteAddr = "203.0.113.9:4000"
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusAccepted)
		})
	})

	Convey("Given a disabled limiter", t, func() {
		l := api.NewRateLimiter(0, 0)

		Convey("Then every request is allowed", func() {
			So(l, ShouldBeNil)
			So(l.Allow("anyone"), ShouldBeTrue)
		})
	})
}

func TestHealthStatsAndMetrics(t *testing.T) {
	Convey("Given an API server with service info", t, func() {
		mux := newMux(&mockDeps{}, api.WithServiceInfo("bgx-test", "9.9.9"))

		Convey("When checking health", func() {
			w := do(mux, http.MethodGet, "/health", "")

			Convey("Then it reports healthy", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]string
				So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
				So(body, ShouldResemble, map[string]string{"status": "healthy", "service": "bgx-test", "version": "9.9.9"})
			})
		})

		Convey("When reading stats", func() {
			w := do(mux, http.MethodGet, "/api/stats", "")

			Convey("Then the provider stats are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"workerCount":2`)
			})
		})

		Convey("When scraping metrics after a request", func() {
			do(mux, http.MethodGet, "/health", "")
			w := do(mux, http.MethodGet, "/metrics", "")

			Convey("Then the HTTP request counter is exposed", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "bgx_dashboard_http_requests_total")
			})
		})
	})
}

func TestOpErrors(t *testing.T) {
	Convey("Given operation errors", t, func() {
		cause := errors.New("eof")

		Convey("Then kinds and causes both match", func() {
			err := api.WrapKind("api.post_visit", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.post_visit: bad request: eof")
		})

		Convey("Then nil causes stay nil", func() {
			So(api.WrapKind("op", api.ErrBadRequest, nil), ShouldBeNil)
			So(api.Wrap("op", nil), ShouldBeNil)
		})

		Convey("Then kinds without a cause render the kind", func() {
			err := api.NewKind("api.post_visit", api.ErrBackpressure)
			So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.post_visit: backpressure")
			So(api.Wrap("api.x", cause).Error(), ShouldEqual, "api.x: eof")
		})
	})
}
