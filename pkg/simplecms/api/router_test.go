package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/internal/testutil"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

type apiTest struct {
	t      *testing.T
	env    *testutil.Env
	router http.Handler
	actor  uuid.UUID
}

func setupAPITest(t *testing.T) *apiTest {
	env := testutil.NewEnv(t)
	return &apiTest{
		t:      t,
		env:    env,
		router: NewRouter(env.Service, RouterConfig{}),
		actor:  uuid.New(),
	}
}

func (a *apiTest) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(ActorHeader, a.actor.String())
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{simplecms.ErrNotFound, http.StatusNotFound},
		{simplecms.ErrConflict, http.StatusConflict},
		{simplecms.ErrInvalidState, http.StatusConflict},
		{simplecms.ErrInvalidInput, http.StatusBadRequest},
		{simplecms.ErrStorage, http.StatusInternalServerError},
		{&simplecms.EntityError{Entity: "page", Op: "get", Err: simplecms.ErrNotFound}, http.StatusNotFound},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestAdminRequiresActor(t *testing.T) {
	a := setupAPITest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/pages", nil)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/pages", nil)
	req.Header.Set(ActorHeader, "not-a-uuid")
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// public routes need no actor
	req = httptest.NewRequest(http.MethodGet, "/api/v1/pages/missing", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	a := setupAPITest(t)

	w := a.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestCreatePage(t *testing.T) {
	a := setupAPITest(t)

	w := a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{
		"title":   "Hello World",
		"content": "<p>Hi</p>",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	item := decode[simplecms.Item](t, w)
	assert.Equal(t, "hello-world", item.Slug)
	assert.Equal(t, simplecms.StatusDraft, item.Status)
	assert.Equal(t, a.actor, item.AuthorID)

	w = a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{"title": "Hello World!"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// same slug is free in another kind
	w = a.do(http.MethodPost, "/api/v1/admin/articles", map[string]string{"title": "Hello World"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{"content": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[ErrorResponse](t, w).Error, "title")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/pages", bytes.NewBufferString("{"))
	req.Header.Set(ActorHeader, a.actor.String())
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestItemLifecycle(t *testing.T) {
	a := setupAPITest(t)

	created := decode[simplecms.Item](t, a.do(http.MethodPost, "/api/v1/admin/articles", map[string]string{
		"title":   "Launch Notes",
		"content": "<p>first</p>",
	}))
	base := "/api/v1/admin/articles/" + created.ID.String()

	// not yet public
	w := a.do(http.MethodGet, "/api/v1/articles/launch-notes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, base+"/restore", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "draft cannot be restored")

	w = a.do(http.MethodPost, base+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, simplecms.StatusPublished, decode[simplecms.Item](t, w).Status)

	w = a.do(http.MethodGet, "/api/v1/articles/launch-notes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decode[simplecms.Item](t, w).ID)

	w = a.do(http.MethodPost, base+"/trash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trashed := decode[simplecms.Item](t, w)
	assert.Equal(t, simplecms.StatusTrashed, trashed.Status)
	assert.NotNil(t, trashed.TrashedAt)

	w = a.do(http.MethodGet, "/api/v1/articles/launch-notes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, base+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	restored := decode[simplecms.Item](t, w)
	assert.Equal(t, simplecms.StatusDraft, restored.Status)
	assert.Nil(t, restored.TrashedAt)
}

func TestUpdateAndRevisions(t *testing.T) {
	a := setupAPITest(t)

	created := decode[simplecms.Item](t, a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{
		"title":   "About",
		"content": "<p>v1</p>",
	}))
	base := "/api/v1/admin/pages/" + created.ID.String()

	a.env.Clock.Advance(time.Minute)
	w := a.do(http.MethodPatch, base, map[string]string{"content": "<p>v2</p>"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[simplecms.Item](t, w)
	assert.Equal(t, "About", updated.Title)
	assert.Equal(t, "about", updated.Slug)
	assert.Equal(t, "<p>v2</p>", updated.Content)

	w = a.do(http.MethodGet, base+"/revisions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	revisions := decode[[]simplecms.Revision](t, w)
	require.Len(t, revisions, 2)
	assert.Equal(t, "<p>v2</p>", revisions[0].Content)
	seed := revisions[1]

	w = a.do(http.MethodPost, base+"/revisions/"+seed.ID.String()+"/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>v1</p>", decode[simplecms.Item](t, w).Content)

	w = a.do(http.MethodPost, base+"/revisions/"+uuid.NewString()+"/restore", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, base+"/revisions", nil)
	assert.Len(t, decode[[]simplecms.Revision](t, w), 3)

	w = a.do(http.MethodGet, "/api/v1/admin/pages/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/v1/admin/pages/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListItems(t *testing.T) {
	a := setupAPITest(t)

	for _, title := range []string{"Alpha", "Beta", "Gamma"} {
		w := a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{"title": title})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := a.do(http.MethodGet, "/api/v1/admin/pages?per_page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[simplecms.ItemPage](t, w)
	assert.Equal(t, int64(3), page.Total)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 2, page.PerPage)

	w = a.do(http.MethodGet, "/api/v1/admin/pages?q=beta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page = decode[simplecms.ItemPage](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Beta", page.Items[0].Title)

	w = a.do(http.MethodGet, "/api/v1/admin/pages?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/admin/pages?page=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/api/v1/admin/pages?category=nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSlugAvailable(t *testing.T) {
	a := setupAPITest(t)

	created := decode[simplecms.Item](t, a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{"title": "Contact"}))

	w := a.do(http.MethodGet, "/api/v1/admin/pages/slug-available?slug=contact", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[SlugAvailableResponse](t, w).Available)

	w = a.do(http.MethodGet, "/api/v1/admin/pages/slug-available?slug=contact&exclude="+created.ID.String(), nil)
	assert.True(t, decode[SlugAvailableResponse](t, w).Available)

	w = a.do(http.MethodGet, "/api/v1/admin/pages/slug-available", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrashEndpoints(t *testing.T) {
	a := setupAPITest(t)

	page := decode[simplecms.Item](t, a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{"title": "Old"}))
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/api/v1/admin/pages/"+page.ID.String()+"/trash", nil).Code)

	w := a.do(http.MethodGet, "/api/v1/admin/trash", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listing := decode[simplecms.TrashListing](t, w)
	assert.Len(t, listing.Pages, 1)
	assert.Empty(t, listing.Articles)

	w = a.do(http.MethodPost, "/api/v1/admin/trash/empty", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[simplecms.TrashPurge](t, w).Pages, "inside retention window")

	a.env.Clock.Advance(31 * 24 * time.Hour)
	w = a.do(http.MethodPost, "/api/v1/admin/trash/empty", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[simplecms.TrashPurge](t, w).Pages)

	w = a.do(http.MethodGet, "/api/v1/admin/pages/"+page.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	a := setupAPITest(t)

	w := a.do(http.MethodPost, "/api/v1/admin/categories", map[string]string{"name": "Release Notes"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[simplecms.Category](t, w)
	assert.Equal(t, "release-notes", category.Slug)

	w = a.do(http.MethodPost, "/api/v1/admin/categories", map[string]string{"name": "Release notes"})
	assert.Equal(t, http.StatusConflict, w.Code)

	path := "/api/v1/admin/categories/" + category.ID.String()
	w = a.do(http.MethodPut, path, map[string]string{"name": "Changelog", "slug": "changelog"})
	require.Equal(t, http.StatusOK, w.Code)
	renamed := decode[simplecms.Category](t, w)
	assert.Equal(t, "Changelog", renamed.Name)
	assert.Equal(t, "changelog", renamed.Slug)

	w = a.do(http.MethodPost, "/api/v1/admin/articles", map[string]interface{}{
		"title":        "v1.2",
		"category_ids": []string{category.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/v1/admin/articles?category="+category.ID.String(), nil)
	assert.Equal(t, int64(1), decode[simplecms.ItemPage](t, w).Total)

	w = a.do(http.MethodGet, "/api/v1/admin/categories", nil)
	assert.Len(t, decode[[]simplecms.Category](t, w), 1)

	w = a.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadRequest(t *testing.T, actor uuid.UUID, filename, contentType string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="file"; filename="` + filename + `"`}
	header["Content-Type"] = []string{contentType}
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("alt_text", "a cat"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(ActorHeader, actor.String())
	return req
}

func TestMediaEndpoints(t *testing.T) {
	a := setupAPITest(t)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, uploadRequest(t, a.actor, "Cat Photo.PNG", "image/png", []byte("png-bytes")))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	media := decode[simplecms.Media](t, w)
	assert.Equal(t, "cat-photo.png", media.Filename)
	assert.Equal(t, "a cat", media.AltText)
	assert.Equal(t, int64(9), media.SizeBytes)
	assert.Equal(t, a.actor, media.UploadedBy)

	path := "/api/v1/admin/media/" + media.ID.String()

	w = a.do(http.MethodGet, path+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "cat-photo.png")

	// the memory store cannot hand out URLs; the failure stays opaque
	w = a.do(http.MethodGet, path+"/url", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, internalErrorMessage, decode[ErrorResponse](t, w).Error)

	w = a.do(http.MethodGet, "/api/v1/admin/media?per_page=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[MediaListResponse](t, w)
	assert.Equal(t, int64(1), list.Total)
	assert.Equal(t, 10, list.PerPage)

	w = a.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/v1/admin/media", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RequestIDMiddleware(RecoveryMiddleware(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[ErrorResponse](t, w)
	assert.Equal(t, internalErrorMessage, resp.Error)
	assert.NotEmpty(t, resp.RequestID)
}

func TestRequestSizeLimit(t *testing.T) {
	a := setupAPITest(t)
	a.router = NewRouter(a.env.Service, RouterConfig{MaxBodyBytes: 16})

	w := a.do(http.MethodPost, "/api/v1/admin/pages", map[string]string{
		"title":   "Long",
		"content": "<p>this body is well past sixteen bytes</p>",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (a *apiTest) publishArticle(title string, categories ...uuid.UUID) simplecms.Item {
	a.t.Helper()
	w := a.do(http.MethodPost, "/api/v1/admin/articles", map[string]interface{}{
		"title":        title,
		"short_text":   title + " in brief",
		"category_ids": categories,
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[simplecms.Item](a.t, w)

	w = a.do(http.MethodPost, "/api/v1/admin/articles/"+created.ID.String()+"/publish", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	a.env.Clock.Advance(time.Minute)
	return decode[simplecms.Item](a.t, w)
}

func TestPublicArticleListing(t *testing.T) {
	a := setupAPITest(t)

	a.publishArticle("First Post")
	a.publishArticle("Second Post")
	w := a.do(http.MethodPost, "/api/v1/admin/articles", map[string]string{"title": "Unpublished"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/api/v1/articles?per_page=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[simplecms.ItemPage](t, w)
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "second-post", page.Items[0].Slug)
	assert.Equal(t, "first-post", page.Items[1].Slug)

	w = a.do(http.MethodGet, "/api/v1/articles?page=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRelatedArticles(t *testing.T) {
	a := setupAPITest(t)

	w := a.do(http.MethodPost, "/api/v1/admin/categories", map[string]string{"name": "Go"})
	require.Equal(t, http.StatusCreated, w.Code)
	golang := decode[simplecms.Category](t, w)

	a.publishArticle("Generics", golang.ID)
	a.publishArticle("Channels", golang.ID)
	a.publishArticle("Gardening")

	w = a.do(http.MethodGet, "/api/v1/articles/generics/related", nil)
	require.Equal(t, http.StatusOK, w.Code)
	related := decode[[]simplecms.Item](t, w)
	require.Len(t, related, 1)
	assert.Equal(t, "channels", related[0].Slug)

	w = a.do(http.MethodGet, "/api/v1/articles/gardening/related", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]simplecms.Item](t, w))

	w = a.do(http.MethodGet, "/api/v1/articles/missing/related", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/api/v1/articles/generics/related?limit=x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAtomFeed(t *testing.T) {
	a := setupAPITest(t)
	a.router = NewRouter(a.env.Service, RouterConfig{SiteTitle: "Example News", BaseURL: "https://example.com/"})

	a.publishArticle("Hello Feed")
	w := a.do(http.MethodPost, "/api/v1/admin/articles", map[string]string{"title": "Draft Only"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(http.MethodGet, "/feed.xml", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/atom+xml; charset=utf-8", w.Header().Get("Content-Type"))

	body := w.Body.String()
	assert.Contains(t, body, `xmlns="http://www.w3.org/2005/Atom"`)
	assert.Contains(t, body, "<title>Example News</title>")
	assert.Contains(t, body, "<title>Hello Feed</title>")
	assert.Contains(t, body, "https://example.com/articles/hello-feed")
	assert.Contains(t, body, "Hello Feed in brief")
	assert.NotContains(t, body, "Draft Only")
	assert.Equal(t, 1, strings.Count(body, "<entry>"))
}

func TestAppEndpoints(t *testing.T) {
	a := setupAPITest(t)

	var ids []string
	for _, name := range []string{"Mail", "Chat", "Docs"} {
		w := a.do(http.MethodPost, "/api/v1/admin/apps", map[string]string{
			"name": name,
			"url":  "https://example.com/" + strings.ToLower(name),
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decode[simplecms.App](t, w).ID.String())
	}

	w := a.do(http.MethodPost, "/api/v1/admin/apps", map[string]string{"name": "Bad", "url": "not a url"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodPut, "/api/v1/admin/apps/reorder", map[string][]string{"ids": {ids[2], ids[0], ids[1]}})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = a.do(http.MethodGet, "/api/v1/admin/apps", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[simplecms.AppPage](t, w)
	require.Len(t, listed.Items, 3)
	assert.Equal(t, "Docs", listed.Items[0].Name)
	assert.Equal(t, "Mail", listed.Items[1].Name)
	assert.Equal(t, "Chat", listed.Items[2].Name)

	path := "/api/v1/admin/apps/" + ids[0]
	w = a.do(http.MethodPut, path, map[string]string{"description": "Company mail"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[simplecms.App](t, w)
	assert.Equal(t, "Mail", updated.Name)
	assert.Equal(t, "Company mail", updated.Description)

	w = a.do(http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = a.do(http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMenuEndpoints(t *testing.T) {
	a := setupAPITest(t)

	w := a.do(http.MethodGet, "/api/v1/menus/main", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPut, "/api/v1/admin/menus/main", map[string]interface{}{
		"items": []map[string]interface{}{
			{"label": "Home", "link_type": "url", "link_target": "/"},
			{"label": "Blog", "link_type": "url", "link_target": "/articles", "sort_order": 1},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tree := decode[simplecms.MenuTree](t, w)
	assert.Equal(t, "main", tree.Menu.Name)
	require.Len(t, tree.Items, 2)

	w = a.do(http.MethodGet, "/api/v1/menus/main", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tree, decode[simplecms.MenuTree](t, w))

	w = a.do(http.MethodPut, "/api/v1/admin/menus/main", map[string]interface{}{
		"items": []map[string]interface{}{{"label": "No type"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/menus/main", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "public menus are read-only")
}

func TestAuditLogEndpoint(t *testing.T) {
	a := setupAPITest(t)

	article := a.publishArticle("Audited")

	w := a.do(http.MethodGet, "/api/v1/admin/audit-log?per_page=1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	entries := decode[simplecms.AuditPage](t, w)
	assert.Equal(t, int64(2), entries.Total)
	require.Len(t, entries.Entries, 1)
	assert.Equal(t, "publish", entries.Entries[0].Action)
	assert.Equal(t, article.ID, entries.Entries[0].EntityID)
	assert.Equal(t, a.actor, entries.Entries[0].ActorID)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/audit-log", nil)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
