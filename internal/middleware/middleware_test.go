package middleware_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderlust-app/wanderlust/internal/app"
	"github.com/wanderlust-app/wanderlust/internal/middleware"
	"github.com/wanderlust-app/wanderlust/internal/repository"
	"github.com/wanderlust-app/wanderlust/pkg/cookie"
	"github.com/wanderlust-app/wanderlust/pkg/session"
)

const testSecret = "test-secret-that-is-at-least-32-bytes!!"

// memStore is an in-memory session.Store for tests.
type memStore struct {
	mu       sync.Mutex
	byToken  map[string]*session.Session
	sessions map[string]*session.Session
}

func newMemStore() *memStore {
	return &memStore{
		byToken:  make(map[string]*session.Session),
		sessions: make(map[string]*session.Session),
	}
}

func (s *memStore) Create(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.byToken[sess.Token] = &cp
	return nil
}

func (s *memStore) Get(_ context.Context, token string) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byToken[token]
	if !ok {
		return nil, session.ErrNotFound
	}
	if sess.IsExpired() {
		return nil, session.ErrExpired
	}
	cp := *sess
	return &cp, nil
}

func (s *memStore) Update(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.sessions[sess.ID]
	if !ok {
		return session.ErrNotFound
	}
	delete(s.byToken, old.Token)
	cp := *sess
	s.sessions[sess.ID] = &cp
	s.byToken[sess.Token] = &cp
	return nil
}

func (s *memStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		delete(s.byToken, sess.Token)
		delete(s.sessions, id)
	}
	return nil
}

func (s *memStore) DeleteByUserID(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.UserID != nil && *sess.UserID == userID {
			delete(s.byToken, sess.Token)
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *memStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.byToken, sess.Token)
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *memStore) Touch(_ context.Context, id string, lastActiveAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.LastActiveAt = lastActiveAt
	}
	return nil
}

func (s *memStore) all() []*session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		cp := *sess
		out = append(out, &cp)
	}
	return out
}

// routes adapts a function to app.Handler.
type routes func(r app.Router)

func (f routes) Routes(r app.Router) { f(r) }

// renderError writes the HTTPError message as plain text so tests can
// assert on status and body.
func renderError(c app.Context, err error) error {
	he := app.AsHTTPError(err)
	if he == nil {
		he = app.ErrInternal("")
	}
	return c.String(he.StatusCode(), he.Message)
}

type testApp struct {
	handler http.Handler
	store   *memStore
}

func newTestApp(t *testing.T, register func(r app.Router), opts ...app.Option) *testApp {
	t.Helper()

	store := newMemStore()
	opts = append(opts,
		app.WithCookieManager(cookie.New(cookie.WithSecret(testSecret))),
		app.WithSessionManager(session.NewManager(store)),
		app.WithErrorHandler(renderError),
		app.WithHandlers(routes(func(r app.Router) {
			r.POST("/test/login", func(c app.Context) error {
				if err := c.AuthenticateSession(c.Form("user_id")); err != nil {
					return err
				}
				return c.String(http.StatusOK, "ok")
			})
			r.GET("/test/flashes", func(c app.Context) error {
				return c.JSON(http.StatusOK, c.PopFlashes())
			})
			if register != nil {
				register(r)
			}
		})),
	)

	return &testApp{handler: app.New(opts...).Router(), store: store}
}

// jar is a minimal cookie jar for multi-request tests.
type jar map[string]*http.Cookie

func (j jar) update(rec *httptest.ResponseRecorder) {
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(j, ck.Name)
			continue
		}
		j[ck.Name] = ck
	}
}

func (j jar) apply(req *http.Request) {
	for _, ck := range j {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
}

func (ta *testApp) do(req *http.Request, j jar) *httptest.ResponseRecorder {
	if j != nil {
		j.apply(req)
	}
	rec := httptest.NewRecorder()
	ta.handler.ServeHTTP(rec, req)
	if j != nil {
		j.update(rec)
	}
	return rec
}

func (ta *testApp) login(t *testing.T, j jar, userID string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/test/login", strings.NewReader("user_id="+userID))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := ta.do(req, j)
	require.Equal(t, http.StatusOK, rec.Code)
}

func (ta *testApp) flashes(t *testing.T, j jar) map[string][]string {
	t.Helper()
	rec := ta.do(httptest.NewRequest(http.MethodGet, "/test/flashes", nil), j)
	require.Equal(t, http.StatusOK, rec.Code)

	var out map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// fake repositories

type fakeUsers struct {
	users map[uuid.UUID]*repository.User
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*repository.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

type fakeListings struct {
	listings map[uuid.UUID]*repository.Listing
}

func (f *fakeListings) GetByID(_ context.Context, id uuid.UUID) (*repository.Listing, error) {
	if l, ok := f.listings[id]; ok {
		return l, nil
	}
	// Wrapped like a real storage layer would report it.
	return nil, fmt.Errorf("get listing %s: %w", id, repository.ErrNotFound)
}

type fakeReviews struct {
	reviews map[uuid.UUID]*repository.Review
}

func (f *fakeReviews) GetByID(_ context.Context, id uuid.UUID) (*repository.Review, error) {
	if rv, ok := f.reviews[id]; ok {
		return rv, nil
	}
	return nil, fmt.Errorf("get review %s: %w", id, repository.ErrNotFound)
}

func TestRequireLogin(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.GET("/listings/new", func(c app.Context) error {
			return c.String(http.StatusOK, "form")
		}, middleware.RequireLogin())
	}

	t.Run("anonymous is redirected with flash and saved destination", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/listings/new", nil), j)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		sessions := ta.store.all()
		require.Len(t, sessions, 1)
		assert.Equal(t, "/listings/new", sessions[0].RedirectURL())

		flashes := ta.flashes(t, j)
		assert.Equal(t, []string{"You must be logged in to create a listing."}, flashes[app.FlashError])
	})

	t.Run("stale session cookie still saves the destination", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{"__sid": &http.Cookie{Name: "__sid", Value: "token-the-store-never-saw"}}

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/listings/new", nil), j)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))

		sessions := ta.store.all()
		require.Len(t, sessions, 1)
		assert.Equal(t, "/listings/new", sessions[0].RedirectURL())

		flashes := ta.flashes(t, j)
		assert.Equal(t, []string{"You must be logged in to create a listing."}, flashes[app.FlashError])
	})

	t.Run("flash is delivered exactly once", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}

		ta.do(httptest.NewRequest(http.MethodGet, "/listings/new", nil), j)
		first := ta.flashes(t, j)
		require.NotEmpty(t, first[app.FlashError])

		second := ta.flashes(t, j)
		assert.Empty(t, second[app.FlashError])
	})

	t.Run("authenticated user passes through", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, uuid.NewString())

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/listings/new", nil), j)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "form", rec.Body.String())
	})
}

func TestSaveRedirectURL(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.GET("/listings/new", func(c app.Context) error {
			return c.String(http.StatusOK, "form")
		}, middleware.RequireLogin())
		r.GET("/login", func(c app.Context) error {
			return c.String(http.StatusOK, middleware.RedirectURL(c))
		}, middleware.SaveRedirectURL())
	}

	t.Run("exposes pending destination", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}

		ta.do(httptest.NewRequest(http.MethodGet, "/listings/new", nil), j)

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/login", nil), j)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "/listings/new", rec.Body.String())
	})

	t.Run("continues without a destination", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/login", nil), jar{})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	owner := &repository.User{ID: uuid.New(), Username: "maya"}
	users := &fakeUsers{users: map[uuid.UUID]*repository.User{owner.ID: owner}}

	register := func(r app.Router) {
		r.GET("/whoami", func(c app.Context) error {
			if u := middleware.User(c); u != nil {
				return c.String(http.StatusOK, u.Username)
			}
			return c.String(http.StatusOK, "anonymous")
		}, middleware.CurrentUser(users))
	}

	t.Run("resolves the session user", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, owner.ID.String())

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/whoami", nil), j)
		assert.Equal(t, "maya", rec.Body.String())
	})

	t.Run("anonymous request continues with nil user", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/whoami", nil), jar{})
		assert.Equal(t, "anonymous", rec.Body.String())
	})

	t.Run("stale session is treated as anonymous", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, uuid.NewString())

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/whoami", nil), j)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anonymous", rec.Body.String())
	})
}

func TestRequireListingOwner(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()
	listing := &repository.Listing{ID: uuid.New(), OwnerID: ownerID, Title: "Cabin"}
	listings := &fakeListings{listings: map[uuid.UUID]*repository.Listing{listing.ID: listing}}

	register := func(r app.Router) {
		r.DELETE("/listings/{id}", func(c app.Context) error {
			l := middleware.Listing(c)
			require.NotNil(t, l)
			return c.String(http.StatusOK, l.Title)
		}, middleware.RequireListingOwner(listings))
	}

	t.Run("owner passes through with loaded listing", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, ownerID.String())

		rec := ta.do(httptest.NewRequest(http.MethodDelete, "/listings/"+listing.ID.String(), nil), j)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Cabin", rec.Body.String())
	})

	t.Run("missing listing fails with 400", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, ownerID.String())

		rec := ta.do(httptest.NewRequest(http.MethodDelete, "/listings/"+uuid.NewString(), nil), j)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Page does not exist anymore.", rec.Body.String())
	})

	t.Run("malformed id fails with 400", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)

		rec := ta.do(httptest.NewRequest(http.MethodDelete, "/listings/not-a-uuid", nil), jar{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Page does not exist anymore.", rec.Body.String())
	})

	t.Run("non-owner is flashed and redirected to the listing", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, uuid.NewString())

		rec := ta.do(httptest.NewRequest(http.MethodDelete, "/listings/"+listing.ID.String(), nil), j)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/listings/"+listing.ID.String(), rec.Header().Get("Location"))

		flashes := ta.flashes(t, j)
		assert.Equal(t, []string{"You are not the owner of this listing."}, flashes[app.FlashError])
	})
}

func TestRequireReviewAuthor(t *testing.T) {
	t.Parallel()

	authorID := uuid.New()
	review := &repository.Review{ID: uuid.New(), ListingID: uuid.New(), AuthorID: authorID, Rating: 4}
	reviews := &fakeReviews{reviews: map[uuid.UUID]*repository.Review{review.ID: review}}

	register := func(r app.Router) {
		r.DELETE("/listings/{id}/reviews/{reviewID}", func(c app.Context) error {
			rv := middleware.Review(c)
			require.NotNil(t, rv)
			return c.String(http.StatusOK, "deleted")
		}, middleware.RequireReviewAuthor(reviews))
	}

	path := func(reviewID string) string {
		return "/listings/" + review.ListingID.String() + "/reviews/" + reviewID
	}

	t.Run("author passes through", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, authorID.String())

		rec := ta.do(httptest.NewRequest(http.MethodDelete, path(review.ID.String()), nil), j)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing review fails with 400", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)

		rec := ta.do(httptest.NewRequest(http.MethodDelete, path(uuid.NewString()), nil), jar{})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Page does not exist anymore.", rec.Body.String())
	})

	t.Run("non-author is flashed and redirected", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		j := jar{}
		ta.login(t, j, uuid.NewString())

		rec := ta.do(httptest.NewRequest(http.MethodDelete, path(review.ID.String()), nil), j)
		require.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/listings/"+review.ListingID.String(), rec.Header().Get("Location"))

		flashes := ta.flashes(t, j)
		assert.Equal(t, []string{"You are not the author of this review."}, flashes[app.FlashError])
	})
}

func TestValidateListing(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.POST("/listings", func(c app.Context) error {
			form := middleware.ListingForm(c)
			require.NotNil(t, form)
			return c.String(http.StatusCreated, form.Title)
		}, middleware.ValidateListing())
	}

	post := func(form url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/listings", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("valid form reaches the handler", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		rec := ta.do(post(url.Values{
			"title":       {"Beach House"},
			"description": {"Right on the sand"},
			"price":       {"120"},
			"location":    {"Goa"},
			"country":     {"India"},
		}), nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Beach House", rec.Body.String())
	})

	t.Run("failures are joined into one 400", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		rec := ta.do(post(url.Values{
			"price":    {"120"},
			"location": {"Goa"},
			"country":  {"India"},
		}), nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, `"title" is required,"description" is required`, rec.Body.String())
	})

	t.Run("malformed field value fails with 400", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		rec := ta.do(post(url.Values{
			"title":       {"Beach House"},
			"description": {"Right on the sand"},
			"price":       {"not-a-number"},
			"location":    {"Goa"},
			"country":     {"India"},
		}), nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestValidateReview(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.POST("/reviews", func(c app.Context) error {
			form := middleware.ReviewForm(c)
			require.NotNil(t, form)
			return c.NoContent(http.StatusCreated)
		}, middleware.ValidateReview())
	}

	post := func(form url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/reviews", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("valid review passes", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		rec := ta.do(post(url.Values{"rating": {"5"}, "comment": {"Great stay"}}), nil)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("out of range rating fails", func(t *testing.T) {
		t.Parallel()

		ta := newTestApp(t, register)
		rec := ta.do(post(url.Values{"rating": {"9"}, "comment": {"Great stay"}}), nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), `"rating"`)
	})
}

func TestMethodOverride(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.DELETE("/things/{id}", func(c app.Context) error {
			return c.String(http.StatusOK, "deleted "+c.Param("id"))
		})
	}

	ta := newTestApp(t, register, app.WithMiddleware(middleware.MethodOverride()))

	t.Run("POST with _method reaches the DELETE route", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"_method": {"DELETE"}}
		req := httptest.NewRequest(http.MethodPost, "/things/42", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := ta.do(req, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "deleted 42", rec.Body.String())
	})

	t.Run("unknown override is ignored", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"_method": {"TRACE"}}
		req := httptest.NewRequest(http.MethodPost, "/things/42", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		rec := ta.do(req, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.GET("/ping", func(c app.Context) error {
			return c.String(http.StatusOK, middleware.RequestIDFromRequest(c.Request()))
		})
	}

	ta := newTestApp(t, register, app.WithMiddleware(middleware.RequestID()))

	t.Run("generates an id and echoes it", func(t *testing.T) {
		t.Parallel()

		rec := ta.do(httptest.NewRequest(http.MethodGet, "/ping", nil), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rid := rec.Header().Get("X-Request-ID")
		assert.Len(t, rid, 26)
		assert.Equal(t, rid, rec.Body.String())
	})

	t.Run("honors an inbound id", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-ID", "upstream-id")

		rec := ta.do(req, nil)
		assert.Equal(t, "upstream-id", rec.Header().Get("X-Request-ID"))
		assert.Equal(t, "upstream-id", rec.Body.String())
	})
}

func TestRecover(t *testing.T) {
	t.Parallel()

	register := func(r app.Router) {
		r.GET("/boom", func(c app.Context) error {
			panic("kaboom")
		}, middleware.Recover())
	}

	ta := newTestApp(t, register)

	rec := ta.do(httptest.NewRequest(http.MethodGet, "/boom", nil), nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong!", rec.Body.String())
}
