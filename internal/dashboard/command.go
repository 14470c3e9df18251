package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitt-tools/gitt/internal/credentials"
	"github.com/gitt-tools/gitt/internal/dependencies"
	"github.com/gitt-tools/gitt/internal/execshell"
	"github.com/gitt-tools/gitt/internal/gitrepo"
	"github.com/gitt-tools/gitt/internal/llm"
	"github.com/gitt-tools/gitt/internal/stats"
)

const (
	commandNameConstant             = "serve"
	commandShortDescriptionConstant = "Serve the browser dashboard"
	commandLongDescriptionConstant  = "serve starts a local HTTP server exposing repository status, commit history, statistics, and changelog drafting to the browser."

	flagAddressNameConstant  = "address"
	flagAddressUsageConstant = "Listen address for the dashboard server"

	listeningMessageTemplateConstant = "Dashboard listening on http://%s\n"
	shutdownTimeoutConstant          = 5 * time.Second
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// CommandBuilder assembles the serve cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	GitExecutor           gitrepo.GitExecutor
	CommandEventsObserver execshell.CommandEventObserver
	WorkingDirectory      string
	ConfigurationProvider func() CommandConfiguration
	ClientFactory         llm.ClientFactory
	APIKeyResolver        APIKeyResolver
	CredentialWriter      CredentialWriter
}

// Build constructs the cobra command for the dashboard server.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	command.Flags().String(flagAddressNameConstant, DefaultListenAddress, flagAddressUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	addressValue, _ := command.Flags().GetString(flagAddressNameConstant)
	if !command.Flags().Changed(flagAddressNameConstant) {
		addressValue = builder.resolveConfiguration().Address
	}

	logger := builder.resolveLogger()
	gitExecutor, executorError := dependencies.ResolveGitExecutor(builder.GitExecutor, logger, builder.CommandEventsObserver)
	if executorError != nil {
		return executorError
	}
	repositoryManager, managerError := dependencies.ResolveRepositoryManager(nil, gitExecutor)
	if managerError != nil {
		return managerError
	}

	repositoryPath := builder.resolveWorkingDirectory()
	statsService, statsError := stats.NewService(repositoryManager, stats.OSFileSizer{Root: repositoryPath}, nil)
	if statsError != nil {
		return statsError
	}

	apiKeyResolver, credentialWriter := builder.resolveCredentialCollaborators()
	clientFactory := builder.ClientFactory
	if clientFactory == nil {
		clientFactory = llm.NewGeminiChatClient
	}

	server, serverError := NewServer(ServerOptions{
		Logger:           logger,
		Inspector:        repositoryManager,
		StatsService:     statsService,
		RepositoryPath:   repositoryPath,
		CredentialWriter: credentialWriter,
		APIKeyResolver:   apiKeyResolver,
		ClientFactory:    clientFactory,
	})
	if serverError != nil {
		return serverError
	}

	httpServer := &http.Server{Addr: addressValue, Handler: server.Handler()}
	serveErrors := make(chan error, 1)
	go func() {
		serveErrors <- httpServer.ListenAndServe()
	}()
	fmt.Fprintf(command.OutOrStdout(), listeningMessageTemplateConstant, addressValue)

	select {
	case <-command.Context().Done():
		shutdownContext, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeoutConstant)
		defer cancelShutdown()
		return httpServer.Shutdown(shutdownContext)
	case serveError := <-serveErrors:
		if errors.Is(serveError, http.ErrServerClosed) {
			return nil
		}
		return serveError
	}
}

func (builder *CommandBuilder) resolveCredentialCollaborators() (APIKeyResolver, CredentialWriter) {
	if builder.APIKeyResolver != nil && builder.CredentialWriter != nil {
		return builder.APIKeyResolver, builder.CredentialWriter
	}

	credentialStore, storeError := credentials.NewDefaultStore()
	if storeError != nil {
		return func() string { return "" }, nil
	}

	apiKeyResolver := builder.APIKeyResolver
	if apiKeyResolver == nil {
		apiKeyResolver = credentialStore.APIKey
	}
	credentialWriter := builder.CredentialWriter
	if credentialWriter == nil {
		credentialWriter = credentialStore
	}
	return apiKeyResolver, credentialWriter
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveWorkingDirectory() string {
	if len(builder.WorkingDirectory) > 0 {
		return builder.WorkingDirectory
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "."
	}
	return workingDirectory
}
