package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signaldrift/signaldrift/internal/application"
	appdocs "github.com/signaldrift/signaldrift/internal/application/documents"
	appprompts "github.com/signaldrift/signaldrift/internal/application/prompts"
	appruns "github.com/signaldrift/signaldrift/internal/application/runs"
	"github.com/signaldrift/signaldrift/internal/domain/ai"
	docdomain "github.com/signaldrift/signaldrift/internal/domain/documents"
	promptdomain "github.com/signaldrift/signaldrift/internal/domain/prompts"
	rundomain "github.com/signaldrift/signaldrift/internal/domain/runs"
)

type memFiles struct {
	files map[string]string
}

func (m *memFiles) Save(ctx context.Context, name string, r io.Reader, size int64) (docdomain.FileInfo, error) {
	b, _ := io.ReadAll(r)
	stored := "20260216_120000_" + name
	m.files[stored] = string(b)
	return docdomain.FileInfo{
		Filename:   stored,
		Size:       int64(len(b)),
		UploadedAt: time.Date(2026, 2, 16, 12, 0, 0, 0, time.UTC),
	}, nil
}

func (m *memFiles) List(ctx context.Context) ([]docdomain.FileInfo, error) {
	var out []docdomain.FileInfo
	for name, content := range m.files {
		out = append(out, docdomain.FileInfo{Filename: name, Size: int64(len(content))})
	}
	return out, nil
}

func (m *memFiles) Delete(ctx context.Context, filename string) error {
	if _, ok := m.files[filename]; !ok {
		return docdomain.ErrNotFound
	}
	delete(m.files, filename)
	return nil
}

func (m *memFiles) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	c, ok := m.files[filename]
	if !ok {
		return nil, docdomain.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(c)), nil
}

type memPrompts struct {
	prompts []promptdomain.Prompt
}

func (m *memPrompts) Save(ctx context.Context, p *promptdomain.Prompt) error {
	m.prompts = append(m.prompts, *p)
	return nil
}

func (m *memPrompts) Get(ctx context.Context, id promptdomain.ID) (*promptdomain.Prompt, error) {
	for i := range m.prompts {
		if m.prompts[i].ID == id {
			return &m.prompts[i], nil
		}
	}
	return nil, nil
}

func (m *memPrompts) List(ctx context.Context) ([]promptdomain.Prompt, error) {
	return m.prompts, nil
}

func (m *memPrompts) Count(ctx context.Context) (int64, error) {
	return int64(len(m.prompts)), nil
}

type memRuns struct {
	runs map[rundomain.ID]*rundomain.Run
}

func (m *memRuns) Save(ctx context.Context, run *rundomain.Run) error {
	cp := *run
	m.runs[run.ID] = &cp
	return nil
}

func (m *memRuns) Get(ctx context.Context, id rundomain.ID) (*rundomain.Run, error) {
	return m.runs[id], nil
}

func (m *memRuns) ListByDocument(ctx context.Context, documentFilename string) ([]rundomain.Run, error) {
	var out []rundomain.Run
	for _, r := range m.runs {
		if r.DocumentFilename == documentFilename {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRuns) UpdateResult(ctx context.Context, id rundomain.ID, status rundomain.Status, output, errorMessage *string, durationMS *int64) error {
	r := m.runs[id]
	r.Status = status
	r.Output = output
	r.ErrorMessage = errorMessage
	r.DurationMS = durationMS
	return nil
}

type stubAnalyzer struct {
	output string
	err    error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, prompt string, doc ai.Document) (string, error) {
	return s.output, s.err
}

type env struct {
	srv     *httptest.Server
	files   *memFiles
	prompts *memPrompts
}

func newEnv(t *testing.T, analyzer *stubAnalyzer) *env {
	t.Helper()
	files := &memFiles{files: map[string]string{}}
	promptRepo := &memPrompts{}
	runRepo := &memRuns{runs: map[rundomain.ID]*rundomain.Run{}}

	docsSvc := &appdocs.Service{Files: files}
	promptsSvc := &appprompts.Service{Repo: promptRepo, Clock: application.SystemClock{}}
	runsSvc := &appruns.Service{
		Runs:    runRepo,
		Prompts: promptRepo,
		Files:   files,
		AI:      analyzer,
		Model:   "gpt-4o-mini",
		Clock:   application.SystemClock{},
	}

	mux := chi.NewRouter()
	NewRouter(docsSvc, promptsSvc, runsSvc).Mount(mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return &env{srv: srv, files: files, prompts: promptRepo}
}

func decodeDetail(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Detail
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	part.Write([]byte(content))
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestHealthAndHello(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	resp, err := http.Get(e.srv.URL + "/api/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(b))

	resp2, err := http.Get(e.srv.URL + "/api/v1/hello")
	require.NoError(t, err)
	defer resp2.Body.Close()
	b2, _ := io.ReadAll(resp2.Body)
	assert.JSONEq(t, `{"message":"Hello, World!"}`, string(b2))
}

func TestListDocumentsEmpty(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	resp, err := http.Get(e.srv.URL + "/api/v1/documents")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"files":[]}`, string(b))
}

func TestUploadAndDeleteDocument(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	body, contentType := multipartBody(t, "report.pdf", "content")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var info docdomain.FileInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "20260216_120000_report.pdf", info.Filename)

	req, _ := http.NewRequest(http.MethodDelete, e.srv.URL+"/api/v1/documents/"+info.Filename, nil)
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)
	assert.Empty(t, e.files.files)
}

func TestUploadDisallowedType(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	body, contentType := multipartBody(t, "malware.exe", "x")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "File type '.exe' not allowed", decodeDetail(t, resp))
}

func TestDeleteMissingDocument(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	req, _ := http.NewRequest(http.MethodDelete, e.srv.URL+"/api/v1/documents/nope.pdf", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreatePrompt(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	resp, err := http.Post(e.srv.URL+"/api/v1/prompts", "application/json",
		strings.NewReader(`{"text":"Summarize."}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p promptdomain.Prompt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Summarize.", p.Text)
}

func TestCreatePromptEmptyText(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	resp, err := http.Post(e.srv.URL+"/api/v1/prompts", "application/json",
		strings.NewReader(`{"text":"  "}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Prompt text is required", decodeDetail(t, resp))
}

func TestListRunsRequiresDocumentFilename(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	resp, err := http.Get(e.srv.URL + "/api/v1/runs")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyseFullFlow(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{output: `{"signal":"ok"}`})

	// upload a document
	body, contentType := multipartBody(t, "report.txt", "document body")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	// create a prompt
	resp, err = http.Post(e.srv.URL+"/api/v1/prompts", "application/json",
		strings.NewReader(`{"text":"Summarize."}`))
	require.NoError(t, err)
	var p promptdomain.Prompt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	resp.Body.Close()

	// run the analysis
	payload := `{"prompt_id":"` + string(p.ID) + `","document_filename":"20260216_120000_report.txt"}`
	resp, err = http.Post(e.srv.URL+"/api/v1/analyse", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var run rundomain.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, rundomain.StatusComplete, run.Status)
	require.NotNil(t, run.Output)
	assert.Equal(t, `{"signal":"ok"}`, *run.Output)
	assert.Equal(t, "Summarize.", run.PromptText)

	// history lists the run
	resp, err = http.Get(e.srv.URL + "/api/v1/runs?document_filename=20260216_120000_report.txt")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list rundomain.RunList
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list.Runs, 1)
}

func TestAnalyseUnknownPrompt(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	body, contentType := multipartBody(t, "report.txt", "x")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	payload := `{"prompt_id":"123e4567-e89b-12d3-a456-426614174000","document_filename":"20260216_120000_report.txt"}`
	resp, err = http.Post(e.srv.URL+"/api/v1/analyse", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Prompt not found", decodeDetail(t, resp))
}

func TestAnalyseInvalidPromptID(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{})

	payload := `{"prompt_id":"not-a-uuid","document_filename":"x.txt"}`
	resp, err := http.Post(e.srv.URL+"/api/v1/analyse", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAnalyseModelFailureReturnsErrorRun(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{err: errors.New("model exploded")})

	body, contentType := multipartBody(t, "report.txt", "x")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(e.srv.URL+"/api/v1/prompts", "application/json",
		strings.NewReader(`{"text":"Summarize."}`))
	require.NoError(t, err)
	var p promptdomain.Prompt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	resp.Body.Close()

	payload := `{"prompt_id":"` + string(p.ID) + `","document_filename":"20260216_120000_report.txt"}`
	resp, err = http.Post(e.srv.URL+"/api/v1/analyse", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	// a model failure is still a 200: the run record carries the error
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var run rundomain.Run
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&run))
	assert.Equal(t, rundomain.StatusError, run.Status)
	require.NotNil(t, run.ErrorMessage)
	assert.Equal(t, "model exploded", *run.ErrorMessage)
}

func TestAnalyseQuotaExceeded(t *testing.T) {
	e := newEnv(t, &stubAnalyzer{err: ai.ErrQuotaExceeded})

	body, contentType := multipartBody(t, "report.txt", "x")
	resp, err := http.Post(e.srv.URL+"/api/v1/documents", contentType, body)
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Post(e.srv.URL+"/api/v1/prompts", "application/json",
		strings.NewReader(`{"text":"Summarize."}`))
	require.NoError(t, err)
	var p promptdomain.Prompt
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))
	resp.Body.Close()

	payload := `{"prompt_id":"` + string(p.ID) + `","document_filename":"20260216_120000_report.txt"}`
	resp, err = http.Post(e.srv.URL+"/api/v1/analyse", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}
