// Package credentials persists the Gemini API key in a per-user
// configuration file. The file is rewritten wholesale on every update; no
// locking is attempted because a single-user, single-process deployment is
// assumed.
package credentials

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// APIKeyVariableName is the environment and file key holding the Gemini credential.
	APIKeyVariableName = "GEMINI_API_KEY"

	configurationDirectoryNameConstant = "gitt"
	credentialFileNameConstant         = "credentials.env"
	logFileNameConstant                = "gitt.log"
	credentialFileModeConstant         = 0o600
	configurationDirectoryModeConstant = 0o700
	emptyAPIKeyMessageConstant         = "api key must not be empty"
)

// Store reads and rewrites a line-oriented KEY=value credential file.
type Store struct {
	filePath string
}

// NewStore constructs a store around the provided file path.
func NewStore(filePath string) *Store {
	return &Store{filePath: filePath}
}

// NewDefaultStore places the credential file in the per-user configuration directory.
func NewDefaultStore() (*Store, error) {
	configurationRoot, configurationError := os.UserConfigDir()
	if configurationError != nil {
		return nil, configurationError
	}
	return NewStore(filepath.Join(configurationRoot, configurationDirectoryNameConstant, credentialFileNameConstant)), nil
}

// FilePath returns the backing file location.
func (store *Store) FilePath() string {
	return store.filePath
}

// LogFilePath returns the sibling log file location next to the credential file.
func (store *Store) LogFilePath() string {
	return filepath.Join(filepath.Dir(store.filePath), logFileNameConstant)
}

// Load reads all stored key/value pairs; a missing file yields an empty map.
func (store *Store) Load() (map[string]string, error) {
	values, readError := godotenv.Read(store.filePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, readError
	}
	return values, nil
}

// APIKey resolves the credential, preferring the process environment over the file.
func (store *Store) APIKey() string {
	environmentValue := strings.TrimSpace(os.Getenv(APIKeyVariableName))
	if len(environmentValue) > 0 {
		return environmentValue
	}

	storedValues, loadError := store.Load()
	if loadError != nil {
		return ""
	}
	return strings.TrimSpace(storedValues[APIKeyVariableName])
}

// SaveAPIKey rewrites the credential file with the provided key, preserving
// any other stored values, and restricts the file to the owning user.
func (store *Store) SaveAPIKey(apiKey string) error {
	trimmedKey := strings.TrimSpace(apiKey)
	if len(trimmedKey) == 0 {
		return errors.New(emptyAPIKeyMessageConstant)
	}

	storedValues, loadError := store.Load()
	if loadError != nil {
		return loadError
	}
	storedValues[APIKeyVariableName] = trimmedKey

	if directoryError := os.MkdirAll(filepath.Dir(store.filePath), configurationDirectoryModeConstant); directoryError != nil {
		return directoryError
	}
	if writeError := godotenv.Write(storedValues, store.filePath); writeError != nil {
		return writeError
	}
	return os.Chmod(store.filePath, credentialFileModeConstant)
}
