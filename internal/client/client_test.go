package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/query"
	"LinkBoard-Backend/pkg/validate"
)

func authedClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New(srv.URL, zap.NewNop())
	c.gate.Establish(domain.User{ID: 1, Username: "alice"}, "test-token")
	return c, srv
}

func groupedFixture() map[string][]domain.Link {
	desc := "The Go site"
	return map[string][]domain.Link{
		"2024-01-02": {{ID: 2, URL: "https://b.example", CreatedAt: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)}},
		"2024-01-01": {{ID: 1, URL: "https://go.dev", Description: &desc, AccessCount: 3, CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}},
	}
}

func TestLogin(t *testing.T) {
	var gotBody map[string]string
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"token": "fresh-token",
			"user":  domain.User{ID: 7, Username: "carol"},
		})
	}))

	require.NoError(t, c.Login(context.Background(), "  carol ", "Secret1"))

	assert.Equal(t, "carol", gotBody["username"])
	assert.Equal(t, "Secret1", gotBody["password"])
	assert.Equal(t, "fresh-token", c.Gate().Token())
	assert.Equal(t, "carol", c.Gate().Session().User.Username)
}

func TestLoginRejectsBeforeNetwork(t *testing.T) {
	var hits atomic.Int32
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	err := c.Login(context.Background(), "ab", "Secret1")
	assert.ErrorIs(t, err, validate.ErrUsernameTooShort)

	err = c.Register(context.Background(), "carol", "alllowercase1")
	assert.ErrorIs(t, err, validate.ErrPasswordTooWeak)

	assert.Zero(t, hits.Load(), "rejected credentials must never reach the wire")
}

func TestFetchLinksReplacesStore(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(groupedFixture())
	}))

	require.NoError(t, c.FetchLinks(context.Background()))

	store := c.Store()
	assert.Equal(t, 2, store.Len())
	assert.Equal(t, []string{"2024-01-02", "2024-01-01"}, store.Dates())

	view := c.View(query.Criteria{Search: "go site"})
	assert.Equal(t, 1, view.Total)
}

func TestUnauthorizedForcesLogoutOnce(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))
	c.commitStore(groupedFixture())

	err := c.FetchLinks(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, c.Gate().IsAuthenticated())
	assert.Zero(t, c.Store().Len(), "store must be discarded with the session")

	// A second failure is still reported but has no session left to drop.
	err = c.FetchLinks(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateLinkValidatesFirst(t *testing.T) {
	var hits atomic.Int32
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))

	_, err := c.CreateLink(context.Background(), CreateLinkInput{URL: "http://localhost/evil"})
	assert.ErrorIs(t, err, validate.ErrHostBlocked)

	_, err = c.CreateLink(context.Background(), CreateLinkInput{URL: "https://ok.example", Category: "a&b"})
	assert.ErrorIs(t, err, validate.ErrCategoryInvalid)

	assert.Zero(t, hits.Load())
}

func TestCreateLinkRefetchesOnSuccess(t *testing.T) {
	var fetches atomic.Int32
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/links":
			var req createLinkRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "https://example.com", req.URL)
			assert.Equal(t, "go, web", req.Tags)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(domain.Link{ID: 42, URL: req.URL})
		case r.Method == http.MethodGet && r.URL.Path == "/api/links":
			fetches.Add(1)
			json.NewEncoder(w).Encode(groupedFixture())
		default:
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))

	created, err := c.CreateLink(context.Background(), CreateLinkInput{
		URL:  "example.com",
		Tags: "go,, web",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), created.ID)
	assert.Equal(t, int32(1), fetches.Load(), "a successful create re-fetches the store")
	assert.Equal(t, 2, c.Store().Len())
}

func TestCreateLinkFailureLeavesStoreUntouched(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	c.commitStore(groupedFixture())

	_, err := c.CreateLink(context.Background(), CreateLinkInput{URL: "https://example.com"})
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusInternalServerError, serverErr.Status)

	assert.Equal(t, 2, c.Store().Len())
}

func TestDeleteLinkNotFound(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Link not found", http.StatusNotFound)
	}))

	err := c.DeleteLink(context.Background(), 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestToggleFavoritePatchesAfterAck(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/links/1/favorite", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	c.commitStore(groupedFixture())

	require.NoError(t, c.ToggleFavorite(context.Background(), 1, true))

	for _, link := range c.Store()["2024-01-01"] {
		if link.ID == 1 {
			assert.True(t, link.IsFavorite)
		}
	}
}

func TestToggleFavoriteNoPatchOnFailure(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	c.commitStore(groupedFixture())

	require.Error(t, c.ToggleFavorite(context.Background(), 1, true))
	assert.False(t, c.Store()["2024-01-01"][0].IsFavorite)
}

func TestIncrementAccessPatchesCount(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/links/1/access", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	c.commitStore(groupedFixture())

	require.NoError(t, c.IncrementAccess(context.Background(), 1))
	assert.Equal(t, int64(4), c.Store()["2024-01-01"][0].AccessCount)
}

func TestPerEndpointRateLimit(t *testing.T) {
	var hits atomic.Int32
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		json.NewEncoder(w).Encode(map[string][]domain.Link{})
	}))

	for i := 0; i < requestsPerMin; i++ {
		require.NoError(t, c.FetchLinks(context.Background()), "request %d", i+1)
	}
	err := c.FetchLinks(context.Background())
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, int32(requestsPerMin), hits.Load(), "limited calls must not reach the wire")

	// Other endpoints have their own budget.
	_, err = c.FetchPublicLinks(context.Background())
	assert.NoError(t, err)
}

func TestFetchPublicLinksDoesNotReplaceStore(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		grouped := map[string][]domain.Link{
			"2024-02-01": {{ID: 5, URL: "https://public.example", Username: "bob"}},
		}
		json.NewEncoder(w).Encode(grouped)
	}))
	c.commitStore(groupedFixture())

	public, err := c.FetchPublicLinks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, public.Len())
	assert.Equal(t, "bob", public["2024-02-01"][0].Username)

	assert.Equal(t, 2, c.Store().Len())
}

func TestFetchMetadata(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/metadata", r.URL.Path)
		assert.Equal(t, "https://example.com", r.URL.Query().Get("url"))
		json.NewEncoder(w).Encode(Metadata{Title: "Example", Domain: "example.com"})
	}))

	meta, err := c.FetchMetadata(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "Example", meta.Title)

	_, err = c.FetchMetadata(context.Background(), "ftp://example.com")
	assert.ErrorIs(t, err, validate.ErrSchemeNotAllowed)
}

func TestLogoutDiscardsStore(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c.commitStore(groupedFixture())

	c.Logout()
	assert.False(t, c.Gate().IsAuthenticated())
	assert.Zero(t, c.Store().Len())
}

func TestServerErrorMessageSurfaced(t *testing.T) {
	c, _ := authedClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))

	err := c.FetchLinks(context.Background())
	var serverErr *ServerError
	require.ErrorAs(t, err, &serverErr)
	assert.Equal(t, http.StatusServiceUnavailable, serverErr.Status)
	assert.Equal(t, "database unavailable", serverErr.Message)
	assert.Equal(t, fmt.Sprintf("server error %d: database unavailable", http.StatusServiceUnavailable), serverErr.Error())
}
