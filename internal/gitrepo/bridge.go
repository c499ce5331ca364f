package gitrepo

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// WorkingTreePathspec stages every change in the working tree when used as the only staged path.
const WorkingTreePathspec = "."

const (
	statusFailedMessageConstant    = "Failed to check git status, assuming no changes"
	emptyStagingMessageConstant    = "Refusing to commit without staged paths"
	stageFailedMessageConstant     = "Failed to stage changes"
	commitFailedMessageConstant    = "Failed to create git commit"
	commitCreatedMessageConstant   = "Git commit created"
	logFieldRepositoryPathConstant = "repository_path"
	logFieldStagedPathsConstant    = "staged_paths"
	logFieldCommitMessageConstant  = "commit_message"
)

// ErrVersionControlNotConfigured indicates the bridge was constructed without a VersionControl implementation.
var ErrVersionControlNotConfigured = errors.New("version control not configured")

// CommitRequest describes a commit limited to explicit paths.
type CommitRequest struct {
	RepositoryPath string
	StagedPaths    []string
	Message        string
}

// Bridge applies the commit policy over a VersionControl implementation and never returns errors.
type Bridge struct {
	versionControl VersionControl
	logger         *zap.Logger
}

// NewBridge constructs a Bridge.
func NewBridge(versionControl VersionControl, logger *zap.Logger) (*Bridge, error) {
	if versionControl == nil {
		return nil, ErrVersionControlNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{versionControl: versionControl, logger: logger}, nil
}

// HasUncommittedChanges reports whether porcelain status output is non-empty. Failures are logged and reported as false.
func (bridge *Bridge) HasUncommittedChanges(executionContext context.Context, repositoryPath string) bool {
	statusOutput, statusError := bridge.versionControl.WorkingTreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		bridge.logger.Error(statusFailedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(statusError))
		return false
	}
	return len(strings.TrimSpace(statusOutput)) > 0
}

// Commit stages the requested paths and commits only those paths. It reports whether a commit was created.
func (bridge *Bridge) Commit(executionContext context.Context, request CommitRequest) bool {
	repositoryField := zap.String(logFieldRepositoryPathConstant, request.RepositoryPath)

	if len(request.StagedPaths) == 0 {
		bridge.logger.Warn(emptyStagingMessageConstant, repositoryField, zap.String(logFieldCommitMessageConstant, request.Message))
		return false
	}

	if stageError := bridge.versionControl.StagePaths(executionContext, request.RepositoryPath, request.StagedPaths); stageError != nil {
		bridge.logger.Error(stageFailedMessageConstant, repositoryField, zap.Strings(logFieldStagedPathsConstant, request.StagedPaths), zap.Error(stageError))
		return false
	}

	if commitError := bridge.versionControl.Commit(executionContext, request.RepositoryPath, request.Message, request.StagedPaths); commitError != nil {
		bridge.logger.Error(commitFailedMessageConstant, repositoryField, zap.String(logFieldCommitMessageConstant, request.Message), zap.Error(commitError))
		return false
	}

	bridge.logger.Info(commitCreatedMessageConstant, repositoryField, zap.String(logFieldCommitMessageConstant, request.Message))
	return true
}
