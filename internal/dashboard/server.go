package dashboard

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/changelog"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/history"
	"github.com/gitt-tools/gitt/internal/llm"
	"github.com/gitt-tools/gitt/internal/stats"
)

//go:embed index.html
var indexPageContent []byte

const (
	healthPathConstant      = "/healthz"
	indexPathConstant       = "/"
	apiRoutePrefixConstant  = "/api"
	statusPathConstant      = "/status"
	commitsPathConstant     = "/commits"
	statsPathConstant       = "/stats"
	changelogPathConstant   = "/changelog"
	credentialsPathConstant = "/credentials"

	sinceQueryParameterConstant   = "since"
	untilQueryParameterConstant   = "until"
	versionQueryParameterConstant = "version"

	contentTypeHeaderConstant = "Content-Type"
	jsonContentTypeConstant   = "application/json"
	htmlContentTypeConstant   = "text/html; charset=utf-8"

	healthStatusValueConstant = "ok"
	serviceNameConstant       = "gitt"
	requestTimeoutConstant    = 2 * time.Minute

	inspectorRequiredMessageConstant    = "repository inspector must not be nil"
	statsServiceRequiredMessageConstant = "statistics service must not be nil"

	emptyAPIKeyMessageConstant      = "api_key must not be empty"
	credentialSavedStatusConstant   = "saved"
	encodeFailureLogMessageConstant = "unable to encode response"
	saveFailureLogMessageConstant   = "unable to save credential"
)

// RepositoryInspector exposes the git queries the dashboard handlers consume.
type RepositoryInspector interface {
	IsRepository(executionContext context.Context, repositoryPath string) bool
	CurrentBranch(executionContext context.Context, repositoryPath string) string
	RemoteURL(executionContext context.Context, repositoryPath string) string
	ListBranches(executionContext context.Context, repositoryPath string) []string
	Contributors(executionContext context.Context, repositoryPath string) []gitrepo.Contributor
	Status(executionContext context.Context, repositoryPath string) []gitrepo.FileChange
	CommitLog(executionContext context.Context, repositoryPath string, prettyFormat string, query gitrepo.LogQuery) []string
	DetailedCommitLog(executionContext context.Context, repositoryPath string, query gitrepo.LogQuery) []string
}

// CredentialWriter persists the Gemini API key.
type CredentialWriter interface {
	SaveAPIKey(apiKey string) error
}

// APIKeyResolver resolves the Gemini credential, empty when unavailable.
type APIKeyResolver func() string

// ServerOptions collects the collaborators the dashboard server requires.
type ServerOptions struct {
	Logger           *zap.Logger
	Inspector        RepositoryInspector
	StatsService     *stats.Service
	RepositoryPath   string
	CredentialWriter CredentialWriter
	APIKeyResolver   APIKeyResolver
	ClientFactory    llm.ClientFactory
	Clock            history.Clock
}

// Server routes dashboard requests to the shared pipeline.
type Server struct {
	router           *chi.Mux
	logger           *zap.Logger
	inspector        RepositoryInspector
	statsService     *stats.Service
	repositoryPath   string
	credentialWriter CredentialWriter
	apiKeyResolver   APIKeyResolver
	clientFactory    llm.ClientFactory
	clock            history.Clock
}

// NewServer validates the collaborators and wires the route table.
func NewServer(options ServerOptions) (*Server, error) {
	if options.Inspector == nil {
		return nil, errors.New(inspectorRequiredMessageConstant)
	}
	if options.StatsService == nil {
		return nil, errors.New(statsServiceRequiredMessageConstant)
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := options.Clock
	if clock == nil {
		clock = history.SystemClock{}
	}

	server := &Server{
		logger:           logger,
		inspector:        options.Inspector,
		statsService:     options.StatsService,
		repositoryPath:   options.RepositoryPath,
		credentialWriter: options.CredentialWriter,
		apiKeyResolver:   options.APIKeyResolver,
		clientFactory:    options.ClientFactory,
		clock:            clock,
	}
	server.router = server.buildRouter()
	return server, nil
}

// Handler exposes the routed handler for serving and tests.
func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) buildRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(requestTimeoutConstant))
	router.Use(server.requestLogging)

	router.Get(healthPathConstant, server.handleHealth)
	router.Get(indexPathConstant, server.handleIndex)
	router.Route(apiRoutePrefixConstant, func(apiRouter chi.Router) {
		apiRouter.Get(statusPathConstant, server.handleStatus)
		apiRouter.Get(commitsPathConstant, server.handleCommits)
		apiRouter.Get(statsPathConstant, server.handleStats)
		apiRouter.Get(changelogPathConstant, server.handleChangelog)
		apiRouter.Post(credentialsPathConstant, server.handleSaveCredentials)
	})
	return router
}

func (server *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
		startedAt := time.Now()
		next.ServeHTTP(responseWriter, request)
		server.logger.Debug("request served",
			zap.String("method", request.Method),
			zap.String("path", request.URL.Path),
			zap.Duration("duration", time.Since(startedAt)),
		)
	})
}

func (server *Server) handleHealth(responseWriter http.ResponseWriter, request *http.Request) {
	server.writeJSON(responseWriter, http.StatusOK, map[string]any{
		"status":    healthStatusValueConstant,
		"service":   serviceNameConstant,
		"timestamp": server.clock.Now().UTC(),
	})
}

func (server *Server) handleIndex(responseWriter http.ResponseWriter, request *http.Request) {
	responseWriter.Header().Set(contentTypeHeaderConstant, htmlContentTypeConstant)
	responseWriter.WriteHeader(http.StatusOK)
	_, _ = responseWriter.Write(indexPageContent)
}

type statusResponse struct {
	Repository   bool                  `json:"repository"`
	Branch       string                `json:"branch,omitempty"`
	Remote       string                `json:"remote,omitempty"`
	Branches     []string              `json:"branches"`
	Contributors []gitrepo.Contributor `json:"contributors"`
	Changes      []fileChangeRecord    `json:"changes"`
}

type fileChangeRecord struct {
	StatusCode string `json:"status_code"`
	Path       string `json:"path"`
	Kind       string `json:"kind"`
}

func (server *Server) handleStatus(responseWriter http.ResponseWriter, request *http.Request) {
	requestContext := request.Context()
	response := statusResponse{Branches: []string{}, Contributors: []gitrepo.Contributor{}, Changes: []fileChangeRecord{}}

	response.Repository = server.inspector.IsRepository(requestContext, server.repositoryPath)
	if response.Repository {
		response.Branch = server.inspector.CurrentBranch(requestContext, server.repositoryPath)
		response.Remote = server.inspector.RemoteURL(requestContext, server.repositoryPath)
		response.Branches = append(response.Branches, server.inspector.ListBranches(requestContext, server.repositoryPath)...)
		response.Contributors = append(response.Contributors, server.inspector.Contributors(requestContext, server.repositoryPath)...)
		for _, fileChange := range server.inspector.Status(requestContext, server.repositoryPath) {
			response.Changes = append(response.Changes, fileChangeRecord{
				StatusCode: fileChange.StatusCode,
				Path:       fileChange.Path,
				Kind:       fileChange.ChangeKind(),
			})
		}
	}

	server.writeJSON(responseWriter, http.StatusOK, response)
}

func (server *Server) handleCommits(responseWriter http.ResponseWriter, request *http.Request) {
	commitLines := server.inspector.DetailedCommitLog(request.Context(), server.repositoryPath, queryFromRequest(request))
	records := history.ParseDetailedLines(commitLines, server.clock)
	server.writeJSON(responseWriter, http.StatusOK, map[string]any{
		"count":   len(records),
		"commits": records,
	})
}

func (server *Server) handleStats(responseWriter http.ResponseWriter, request *http.Request) {
	report := server.statsService.BuildReport(request.Context(), server.repositoryPath, queryFromRequest(request), stats.TopFileLimit)
	server.writeJSON(responseWriter, http.StatusOK, report)
}

func (server *Server) handleChangelog(responseWriter http.ResponseWriter, request *http.Request) {
	records := server.queryRecords(request)
	version := strings.TrimSpace(request.URL.Query().Get(versionQueryParameterConstant))

	chatClient, degradedReason := server.resolveChatClient(request.Context())
	generator := changelog.NewGenerator(chatClient, server.clock, server.logger)
	generationResult := generator.Generate(request.Context(), records, version, degradedReason)

	server.writeJSON(responseWriter, http.StatusOK, generationResult)
}

type credentialsRequest struct {
	APIKey string `json:"api_key"`
}

func (server *Server) handleSaveCredentials(responseWriter http.ResponseWriter, request *http.Request) {
	payload := credentialsRequest{}
	if decodeError := json.NewDecoder(request.Body).Decode(&payload); decodeError != nil {
		http.Error(responseWriter, decodeError.Error(), http.StatusBadRequest)
		return
	}
	if len(strings.TrimSpace(payload.APIKey)) == 0 {
		http.Error(responseWriter, emptyAPIKeyMessageConstant, http.StatusBadRequest)
		return
	}
	if server.credentialWriter == nil {
		http.Error(responseWriter, saveFailureLogMessageConstant, http.StatusInternalServerError)
		return
	}
	if saveError := server.credentialWriter.SaveAPIKey(strings.TrimSpace(payload.APIKey)); saveError != nil {
		server.logger.Error(saveFailureLogMessageConstant, zap.Error(saveError))
		http.Error(responseWriter, saveFailureLogMessageConstant, http.StatusInternalServerError)
		return
	}
	server.writeJSON(responseWriter, http.StatusOK, map[string]string{"status": credentialSavedStatusConstant})
}

func (server *Server) queryRecords(request *http.Request) []history.CommitRecord {
	commitLines := server.inspector.CommitLog(request.Context(), server.repositoryPath, gitrepo.ShortCommitLogFormat, queryFromRequest(request))
	return history.ParseShortLines(commitLines, server.clock)
}

func (server *Server) resolveChatClient(requestContext context.Context) (llm.ChatClient, string) {
	if server.apiKeyResolver == nil || server.clientFactory == nil {
		return nil, changelog.ReasonMissingCredential
	}
	apiKey := server.apiKeyResolver()
	if len(apiKey) == 0 {
		return nil, changelog.ReasonMissingCredential
	}
	chatClient, clientError := server.clientFactory(requestContext, llm.Config{APIKey: apiKey})
	if clientError != nil {
		return nil, clientError.Error()
	}
	return chatClient, ""
}

func (server *Server) writeJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	responseWriter.WriteHeader(statusCode)
	if encodeError := json.NewEncoder(responseWriter).Encode(payload); encodeError != nil {
		server.logger.Error(encodeFailureLogMessageConstant, zap.Error(encodeError))
	}
}

func queryFromRequest(request *http.Request) gitrepo.LogQuery {
	return gitrepo.LogQuery{
		Since: strings.TrimSpace(request.URL.Query().Get(sinceQueryParameterConstant)),
		Until: strings.TrimSpace(request.URL.Query().Get(untilQueryParameterConstant)),
	}
}
