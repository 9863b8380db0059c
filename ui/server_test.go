package ui

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"solardash/adapters/chart"
	"solardash/app"
	"solardash/domain/core"
	"solardash/domain/dataset"
	"solardash/internal/api"
	internalDataset "solardash/internal/dataset"
	"solardash/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cookieName = "solardash_session"
	solarCSV   = `country,region,GHI,DNI
Kenya,Garissa,200,150
Benin,Parakou,150,90
Kenya,Lodwar,220,NA
Togo,Dapaong,180,120
`
	uploadCSV = `site,GHI
Nairobi,300
Mombasa,250
`
)

type testServer struct {
	server   *Server
	handler  http.Handler
	sessions *session.Manager
	cookie   *http.Cookie
}

func newTestServer(t *testing.T, maxUpload int64) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loader := internalDataset.NewLoader(internalDataset.DefaultLoaderConfig())
	ds, err := loader.Load(context.Background(), strings.NewReader(solarCSV), "solar_data.csv")
	require.NoError(t, err)

	datasets := app.NewDatasetService(loader, nil, nil, "GHI", 2)
	dashboard := app.NewDashboardService(chart.NewBoxPlotRenderer(chart.DefaultConfig()), app.DashboardConfig{PageSize: 2})
	sessions := session.NewManager(0, func() (*dataset.Dataset, dataset.Selection) {
		return ds, datasets.DefaultSelection(ds)
	})
	apiHandler := api.NewHandler(sessions, dashboard, datasets, cookieName).Router()

	srv, err := NewServer(Config{CookieName: cookieName, MaxUploadBytes: maxUpload}, sessions, dashboard, datasets, apiHandler)
	require.NoError(t, err)
	return &testServer{server: srv, handler: srv.Handler(), sessions: sessions}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		if c.Name == cookieName {
			ts.cookie = c
		}
	}
	return rec
}

func (ts *testServer) get(t *testing.T, target string) *httptest.ResponseRecorder {
	return ts.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (ts *testServer) session(t *testing.T) session.Session {
	t.Helper()
	require.NotNil(t, ts.cookie, "no session cookie issued")
	id, err := core.ParseSessionID(ts.cookie.Value)
	require.NoError(t, err)
	sess, err := ts.sessions.Get(id)
	require.NoError(t, err)
	return sess
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("dataset", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDashboardFirstVisit(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	rec := ts.get(t, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()

	assert.Contains(t, body, "Solar Energy Insights Dashboard")
	assert.Contains(t, body, `value="Benin" checked`)
	assert.Contains(t, body, `value="Kenya" checked`)
	assert.NotContains(t, body, `value="Togo" checked`)
	assert.Contains(t, body, "data:image/svg+xml;base64,")
	assert.Contains(t, body, "Top Regions by Average GHI")

	sess := ts.session(t)
	assert.Equal(t, []string{"Benin", "Kenya"}, sess.Selection.Values)
}

func TestDashboardSelectionChange(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/")

	rec := ts.get(t, "/?apply=1&metric=DNI")
	require.Equal(t, http.StatusOK, rec.Code)
	sess := ts.session(t)
	assert.True(t, sess.Selection.IsAll())
	assert.Equal(t, "DNI", sess.Selection.Metric)
	assert.Contains(t, rec.Body.String(), "Distribution of DNI")

	ts.get(t, "/?country=Togo")
	sess = ts.session(t)
	assert.Equal(t, []string{"Togo"}, sess.Selection.Values)
	assert.Equal(t, "DNI", sess.Selection.Metric)
}

func TestDashboardInvalidMetricKeepsSelection(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/")

	rec := ts.get(t, "/?metric=Bogus")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flash-error")
	assert.Contains(t, rec.Body.String(), "Bogus")
	assert.Equal(t, "GHI", ts.session(t).Selection.Metric)
}

func TestDashboardSearchAndPaging(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/?apply=1")

	rec := ts.get(t, "/?q="+url.QueryEscape("lodwar"))
	body := rec.Body.String()
	assert.Contains(t, body, "<td>Lodwar</td>")
	assert.NotContains(t, body, "<td>Garissa</td>")

	rec = ts.get(t, "/?page=1")
	body = rec.Body.String()
	assert.Contains(t, body, "page 2 of 2")
	assert.Contains(t, body, "Previous")
}

func TestUploadReplacesDataset(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/")

	rec := ts.do(t, uploadRequest(t, "kenya.csv", uploadCSV))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/?loaded=1", rec.Header().Get("Location"))

	sess := ts.session(t)
	assert.Equal(t, "kenya.csv", sess.Dataset.Name)
	assert.Equal(t, dataset.SourceUpload, sess.Dataset.Source)
	assert.Equal(t, "site", sess.Dataset.Schema.GeoColumn)
	assert.Equal(t, []string{"Mombasa", "Nairobi"}, sess.Selection.Values)

	rec = ts.get(t, "/?loaded=1")
	assert.Contains(t, rec.Body.String(), "Loaded kenya.csv")
}

func TestUploadErrorsShownInline(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/")
	before := ts.session(t).Dataset

	rec := ts.do(t, uploadRequest(t, "broken.csv", "country,GHI\nKenya\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "flash-error")
	assert.Same(t, before, ts.session(t).Dataset)

	rec = ts.do(t, uploadRequest(t, "notes.pdf", "%PDF"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "choose a CSV or XLSX file")
}

func TestUploadTooLarge(t *testing.T) {
	ts := newTestServer(t, 16)
	ts.get(t, "/")

	rec := ts.do(t, uploadRequest(t, "big.csv", solarCSV))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestResetRestoresDefault(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/")
	ts.do(t, uploadRequest(t, "kenya.csv", uploadCSV))

	rec := ts.do(t, httptest.NewRequest(http.MethodPost, "/reset", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	sess := ts.session(t)
	assert.Equal(t, "solar_data.csv", sess.Dataset.Name)
	assert.Equal(t, []string{"Benin", "Kenya"}, sess.Selection.Values)
}

func TestExports(t *testing.T) {
	ts := newTestServer(t, 1<<20)
	ts.get(t, "/?country=Togo")

	rec := ts.get(t, "/export.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "country,region,GHI,DNI\nTogo,Dapaong,180,120\n", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "solar_data_filtered.csv")

	rec = ts.get(t, "/export.xlsx")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = ts.get(t, "/report.md")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `# Solar GHI summary: solar\_data.csv`)

	rec = ts.get(t, "/report.html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<table>")
}

func TestChartRoutes(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	rec := ts.get(t, "/chart.svg")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "GHI Distribution by Country")

	rec = ts.get(t, "/chart.png")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestHealthAndAPIMount(t *testing.T) {
	ts := newTestServer(t, 1<<20)

	rec := ts.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	ts.get(t, "/")
	rec = ts.get(t, "/api/v1/session")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), ts.cookie.Value)

	rec = ts.get(t, "/static/dashboard.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplySelectionChecksStoredDataset(t *testing.T) {
	ts := newTestServer(t, 0)
	require.Equal(t, http.StatusOK, ts.get(t, "/").Code)
	stale := ts.session(t)
	require.True(t, stale.Dataset.Schema.IsMetric("DNI"))

	// an upload lands between reading the session and applying the selection
	uploaded, err := internalDataset.NewLoader(internalDataset.DefaultLoaderConfig()).
		Load(context.Background(), strings.NewReader(uploadCSV), "upload.csv")
	require.NoError(t, err)
	_, err = ts.sessions.ReplaceDataset(stale.ID, uploaded, dataset.NewSelection("GHI"))
	require.NoError(t, err)

	_, err = ts.server.applySelection(stale, dataset.NewSelection("DNI"))
	require.Error(t, err)

	current := ts.session(t)
	assert.Same(t, uploaded, current.Dataset)
	assert.Equal(t, "GHI", current.Selection.Metric)

	updated, err := ts.server.applySelection(stale, dataset.NewSelection("GHI", "Nairobi"))
	require.NoError(t, err)
	assert.Same(t, uploaded, updated.Dataset)
	assert.Equal(t, []string{"Nairobi"}, ts.session(t).Selection.Values)
}
