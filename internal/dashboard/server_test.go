package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gitt-tools/gitt/internal/changelog"
	"github.com/gitt-tools/gitt/internal/dashboard"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/stats"
)

const (
	serverTestRepositoryPathConstant = "/repos/demo"
	serverTestBranchConstant         = "main"
	serverTestRemoteConstant         = "https://github.com/example/demo.git"
)

type fakeRepositoryState struct {
	repository    bool
	branch        string
	remote        string
	branches      []string
	contributors  []gitrepo.Contributor
	changes       []gitrepo.FileChange
	commitLines   []string
	detailedLines []string
	numstatBody   string
	nameOnlyBody  string
}

func (state *fakeRepositoryState) IsRepository(_ context.Context, _ string) bool {
	return state.repository
}

func (state *fakeRepositoryState) CurrentBranch(_ context.Context, _ string) string {
	return state.branch
}

func (state *fakeRepositoryState) RemoteURL(_ context.Context, _ string) string {
	return state.remote
}

func (state *fakeRepositoryState) ListBranches(_ context.Context, _ string) []string {
	return state.branches
}

func (state *fakeRepositoryState) Contributors(_ context.Context, _ string) []gitrepo.Contributor {
	return state.contributors
}

func (state *fakeRepositoryState) Status(_ context.Context, _ string) []gitrepo.FileChange {
	return state.changes
}

func (state *fakeRepositoryState) CommitLog(_ context.Context, _ string, _ string, _ gitrepo.LogQuery) []string {
	return state.commitLines
}

func (state *fakeRepositoryState) DetailedCommitLog(_ context.Context, _ string, _ gitrepo.LogQuery) []string {
	return state.detailedLines
}

func (state *fakeRepositoryState) NumstatLog(_ context.Context, _ string, _ gitrepo.LogQuery) string {
	return state.numstatBody
}

func (state *fakeRepositoryState) NameOnlyLog(_ context.Context, _ string, _ gitrepo.LogQuery) string {
	return state.nameOnlyBody
}

type recordingCredentialWriter struct {
	savedKeys []string
	saveError error
}

func (writer *recordingCredentialWriter) SaveAPIKey(apiKey string) error {
	if writer.saveError != nil {
		return writer.saveError
	}
	writer.savedKeys = append(writer.savedKeys, apiKey)
	return nil
}

type frozenClock struct {
	instant time.Time
}

func (clock frozenClock) Now() time.Time {
	return clock.instant
}

func populatedRepositoryState() *fakeRepositoryState {
	return &fakeRepositoryState{
		repository: true,
		branch:     serverTestBranchConstant,
		remote:     serverTestRemoteConstant,
		branches:   []string{serverTestBranchConstant, "feature/login"},
		contributors: []gitrepo.Contributor{
			{Name: "Alice", Commits: 12},
			{Name: "Bob", Commits: 3},
		},
		changes: []gitrepo.FileChange{
			{StatusCode: " M", Path: "internal/app.go"},
			{StatusCode: "??", Path: "notes.txt"},
		},
		commitLines: []string{
			"a1b2c3|2024-01-01|Alice|[feat] add login",
			"d4e5f6|2024-01-02|Bob|[fix] stop crash",
		},
		detailedLines: []string{
			"a1b2c3|Alice|alice@example.com|2024-01-01 09:30:00 +0100|[feat] add login",
			"d4e5f6|Bob|bob@example.com|2024-01-02 14:05:00 +0100|[fix] stop crash",
		},
		numstatBody:  "commit|a1b2c3|Alice\n10\t2\tinternal/app.go\n",
		nameOnlyBody: "internal/app.go\n",
	}
}

func newTestServer(testInstance *testing.T, state *fakeRepositoryState, writer dashboard.CredentialWriter, apiKeyResolver dashboard.APIKeyResolver) *httptest.Server {
	statsService, serviceError := stats.NewService(state, nil, frozenClock{instant: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)})
	require.NoError(testInstance, serviceError)

	server, serverError := dashboard.NewServer(dashboard.ServerOptions{
		Inspector:        state,
		StatsService:     statsService,
		RepositoryPath:   serverTestRepositoryPathConstant,
		CredentialWriter: writer,
		APIKeyResolver:   apiKeyResolver,
		Clock:            frozenClock{instant: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)},
	})
	require.NoError(testInstance, serverError)

	testServer := httptest.NewServer(server.Handler())
	testInstance.Cleanup(testServer.Close)
	return testServer
}

func getJSON(testInstance *testing.T, testServer *httptest.Server, path string, target any) {
	response, requestError := http.Get(testServer.URL + path)
	require.NoError(testInstance, requestError)
	defer response.Body.Close()
	require.Equal(testInstance, http.StatusOK, response.StatusCode)
	require.NoError(testInstance, json.NewDecoder(response.Body).Decode(target))
}

func TestServerHealthEndpoint(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, nil)

	payload := map[string]any{}
	getJSON(testInstance, testServer, "/healthz", &payload)

	require.Equal(testInstance, "ok", payload["status"])
	require.Equal(testInstance, "gitt", payload["service"])
}

func TestServerStatusEndpoint(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, nil)

	payload := struct {
		Repository   bool     `json:"repository"`
		Branch       string   `json:"branch"`
		Remote       string   `json:"remote"`
		Branches     []string `json:"branches"`
		Contributors []struct {
			Name    string `json:"name"`
			Commits int    `json:"commits"`
		} `json:"contributors"`
		Changes []struct {
			Path string `json:"path"`
			Kind string `json:"kind"`
		} `json:"changes"`
	}{}
	getJSON(testInstance, testServer, "/api/status", &payload)

	require.True(testInstance, payload.Repository)
	require.Equal(testInstance, serverTestBranchConstant, payload.Branch)
	require.Equal(testInstance, serverTestRemoteConstant, payload.Remote)
	require.Equal(testInstance, []string{serverTestBranchConstant, "feature/login"}, payload.Branches)
	require.Len(testInstance, payload.Contributors, 2)
	require.Equal(testInstance, "Alice", payload.Contributors[0].Name)
	require.Equal(testInstance, 12, payload.Contributors[0].Commits)
	require.Len(testInstance, payload.Changes, 2)
	require.Equal(testInstance, "Modified", payload.Changes[0].Kind)
	require.Equal(testInstance, "New file", payload.Changes[1].Kind)
}

func TestServerStatusEndpointOutsideRepository(testInstance *testing.T) {
	testServer := newTestServer(testInstance, &fakeRepositoryState{}, nil, nil)

	payload := struct {
		Repository bool `json:"repository"`
	}{}
	getJSON(testInstance, testServer, "/api/status", &payload)

	require.False(testInstance, payload.Repository)
}

func TestServerCommitsEndpoint(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, nil)

	payload := struct {
		Count   int `json:"count"`
		Commits []struct {
			Hash    string `json:"hash"`
			Author  string `json:"author"`
			Email   string `json:"email"`
			Type    string `json:"type"`
			Subject string `json:"subject"`
		} `json:"commits"`
	}{}
	getJSON(testInstance, testServer, "/api/commits", &payload)

	require.Equal(testInstance, 2, payload.Count)
	require.Equal(testInstance, "feat", payload.Commits[0].Type)
	require.Equal(testInstance, "add login", payload.Commits[0].Subject)
	require.Equal(testInstance, "Alice", payload.Commits[0].Author)
	require.Equal(testInstance, "alice@example.com", payload.Commits[0].Email)
}

func TestServerStatsEndpoint(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, nil)

	report := stats.Report{}
	getJSON(testInstance, testServer, "/api/stats", &report)

	require.Len(testInstance, report.Authors, 2)
	require.Equal(testInstance, "Alice", report.Authors[0].Author)
}

func TestServerChangelogEndpointFallsBackWithoutCredential(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, func() string { return "" })

	result := changelog.GenerationResult{}
	getJSON(testInstance, testServer, "/api/changelog?version=1.2.0", &result)

	require.Equal(testInstance, changelog.GenerationModeFallback, result.Mode)
	require.Equal(testInstance, changelog.ReasonMissingCredential, result.DegradedReason)
	require.Contains(testInstance, result.Content, "## [1.2.0] - 2024-06-01")
}

func TestServerSaveCredentials(testInstance *testing.T) {
	writer := &recordingCredentialWriter{}
	testServer := newTestServer(testInstance, populatedRepositoryState(), writer, nil)

	response, requestError := http.Post(testServer.URL+"/api/credentials", "application/json", strings.NewReader(`{"api_key":"fresh-key"}`))
	require.NoError(testInstance, requestError)
	defer response.Body.Close()

	require.Equal(testInstance, http.StatusOK, response.StatusCode)
	require.Equal(testInstance, []string{"fresh-key"}, writer.savedKeys)
}

func TestServerSaveCredentialsRejectsEmptyKey(testInstance *testing.T) {
	writer := &recordingCredentialWriter{}
	testServer := newTestServer(testInstance, populatedRepositoryState(), writer, nil)

	response, requestError := http.Post(testServer.URL+"/api/credentials", "application/json", strings.NewReader(`{"api_key":"  "}`))
	require.NoError(testInstance, requestError)
	defer response.Body.Close()

	require.Equal(testInstance, http.StatusBadRequest, response.StatusCode)
	require.Empty(testInstance, writer.savedKeys)
}

func TestServerIndexPage(testInstance *testing.T) {
	testServer := newTestServer(testInstance, populatedRepositoryState(), nil, nil)

	response, requestError := http.Get(testServer.URL + "/")
	require.NoError(testInstance, requestError)
	defer response.Body.Close()

	require.Equal(testInstance, http.StatusOK, response.StatusCode)
	require.Contains(testInstance, response.Header.Get("Content-Type"), "text/html")
}
