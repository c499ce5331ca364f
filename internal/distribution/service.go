package distribution

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/gitrepo"
	"github.com/temirov/promptsync/internal/layout"
	"github.com/temirov/promptsync/internal/targets"
	pathutils "github.com/temirov/promptsync/internal/utils/path"
)

const (
	// CopyMarkerCommitMessage is the commit message used when copy mode adds the ignore-list marker.
	CopyMarkerCommitMessage = "chore: add .cursor/rules/global_prompts to .gitignore"
	// LinkMarkerCommitMessage is the commit message used when link mode adds the ignore-list marker.
	LinkMarkerCommitMessage = "chore: add .cursor/rules/global_prompts to the project with them being in .gitignore"

	singlePromptCommitMessageTemplateConstant   = "chore: add prompt file %s"
	multiplePromptCommitMessageTemplateConstant = "chore: add %d prompt files"

	processingTargetMessageConstant             = "Processing repository"
	targetMissingMessageConstant                = "Repository path not found or invalid"
	targetWithoutPromptsMessageConstant         = "No prompt files specified for repository"
	markerPresentMessageConstant                = "Ignore-list already contains the distribution entry"
	markerUpdateFailedMessageConstant           = "Failed to update ignore-list"
	markerCommitSkippedMessageConstant          = "Working tree clean after ignore-list update, skipping commit"
	guidelinesUpdatedMessageConstant            = "Updated programming guidelines directory"
	singlePromptAddedMessageTemplateConstant    = "Added prompt file %s"
	multiplePromptsAddedMessageTemplateConstant = "Added %d prompt files"
	promptsUnchangedMessageConstant             = "Prompt files already up to date"
	promptCommitSkippedMessageConstant          = "Working tree clean after copying prompts, skipping commit"
	symlinkFailedMessageConstant                = "Failed to create symlink"
	symlinkCreatedForTargetMessageConstant      = "Linked distribution directory"
	distributionRejectedMessageConstant         = "Distribution directory overlaps the prompt source, refusing repository"
	distributionPrepareFailedMessageConstant    = "Failed to prepare distribution directory"
	distributionSymlinkReplacedMessageConstant  = "Replaced linked distribution directory with a real directory"
	copyRunCompletedMessageConstant             = "Prompt files and programming guidelines distributed"
	linkRunCompletedMessageConstant             = "Symbolic links created for configured projects"
	logFieldProcessedCountConstant              = "processed"
	logFieldSkippedCountConstant                = "skipped"
	logFieldFailedCountConstant                 = "failed"
	logFieldCopiedFilesConstant                 = "copied_files"
	logFieldRepositoryPathConstant              = "repository_path"
	markerCommitFailedTemplateConstant          = "commit ignore-list update in %s: %w"
	promptCommitFailedTemplateConstant          = "commit prompt files in %s: %w"
	distributionOverlapTemplateConstant         = "distribution directory %s overlaps source %s: %w"
	resolveLocationTemplateConstant             = "resolve %s: %w"
	replaceSymlinkTemplateConstant              = "replace symlink %s with a directory: %w"
)

var (
	// ErrServiceFileSystemNotConfigured indicates the service was constructed without a filesystem.
	ErrServiceFileSystemNotConfigured = errors.New("distribution file system not configured")
	// ErrIgnoreListNotConfigured indicates the service was constructed without an ignore-list manager.
	ErrIgnoreListNotConfigured = errors.New("ignore-list manager not configured")
	// ErrVersionControlNotConfigured indicates the service was constructed without a version control bridge.
	ErrVersionControlNotConfigured = errors.New("version control bridge not configured")
	// ErrCopierNotConfigured indicates copy mode was requested without a Copier.
	ErrCopierNotConfigured = errors.New("copier not configured")
	// ErrLinkerNotConfigured indicates link mode was requested without a Linker.
	ErrLinkerNotConfigured = errors.New("linker not configured")
	// ErrCommitFailed marks a commit the version control bridge reported as unsuccessful.
	ErrCommitFailed = errors.New("commit failed")
	// ErrDistributionOverlapsSource marks a target whose distribution directory is, contains, or lies inside the prompt source.
	ErrDistributionOverlapsSource = errors.New("distribution directory overlaps prompt source")
)

// IgnoreList exposes the ignore-list operations used during distribution.
type IgnoreList interface {
	HasEntry(projectPath string) bool
	EnsureEntry(projectPath string) (bool, error)
}

// VersionControl exposes the commit policy operations used during distribution.
type VersionControl interface {
	HasUncommittedChanges(executionContext context.Context, repositoryPath string) bool
	Commit(executionContext context.Context, request gitrepo.CommitRequest) bool
}

// DirectoryCopier copies the guidelines directory and the prompt files.
type DirectoryCopier interface {
	SyncDirectory(sourceRoot string, destinationRoot string, name string, detectChanges bool) bool
	CopyFiles(sourceRoot string, destinationRoot string, relativePaths []string) []string
}

// SymlinkCreator replaces an entry with a directory symbolic link.
type SymlinkCreator interface {
	CreateSymlink(sourcePath string, linkPath string) error
}

// ServiceDependencies describes the collaborators used by Service.
type ServiceDependencies struct {
	FileSystem     afero.Fs
	IgnoreList     IgnoreList
	VersionControl VersionControl
	Copier         DirectoryCopier
	Linker         SymlinkCreator
	Logger         *zap.Logger
}

// Service distributes the canonical prompt tree into target projects.
type Service struct {
	fileSystem     afero.Fs
	ignoreList     IgnoreList
	versionControl VersionControl
	copier         DirectoryCopier
	linker         SymlinkCreator
	logger         *zap.Logger
}

// NewService constructs a Service. Copier and Linker are optional and only required by the mode that uses them.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.FileSystem == nil {
		return nil, ErrServiceFileSystemNotConfigured
	}
	if dependencies.IgnoreList == nil {
		return nil, ErrIgnoreListNotConfigured
	}
	if dependencies.VersionControl == nil {
		return nil, ErrVersionControlNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		fileSystem:     dependencies.FileSystem,
		ignoreList:     dependencies.IgnoreList,
		versionControl: dependencies.VersionControl,
		copier:         dependencies.Copier,
		linker:         dependencies.Linker,
		logger:         logger,
	}, nil
}

// DistributeCopies copies the guidelines directory and configured prompt files into every target in order.
// Per-target problems are logged and recorded in the returned Summary; they never stop the loop.
func (service *Service) DistributeCopies(executionContext context.Context, sourceRoot string, syncTargets []targets.SyncTarget, options CopyOptions) (Summary, error) {
	if service.copier == nil {
		return Summary{}, ErrCopierNotConfigured
	}

	summary := Summary{Outcomes: make([]TargetOutcome, 0, len(syncTargets))}
	for _, syncTarget := range syncTargets {
		summary.Outcomes = append(summary.Outcomes, service.copyIntoTarget(executionContext, sourceRoot, syncTarget, options))
	}

	service.logSummary(copyRunCompletedMessageConstant, summary)
	return summary, nil
}

// DistributeLinks points the distribution directory of every target at sourceRoot.
// Per-target problems are logged and recorded in the returned Summary; they never stop the loop.
func (service *Service) DistributeLinks(executionContext context.Context, sourceRoot string, targetPaths []string) (Summary, error) {
	if service.linker == nil {
		return Summary{}, ErrLinkerNotConfigured
	}

	summary := Summary{Outcomes: make([]TargetOutcome, 0, len(targetPaths))}
	for _, targetPath := range targetPaths {
		summary.Outcomes = append(summary.Outcomes, service.linkIntoTarget(executionContext, sourceRoot, targetPath))
	}

	service.logSummary(linkRunCompletedMessageConstant, summary)
	return summary, nil
}

func (service *Service) copyIntoTarget(executionContext context.Context, sourceRoot string, syncTarget targets.SyncTarget, options CopyOptions) TargetOutcome {
	outcome := TargetOutcome{RepositoryPath: syncTarget.RepositoryPath, Status: TargetStatusProcessed}

	if !service.targetExists(syncTarget.RepositoryPath) {
		service.logger.Warn(targetMissingMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
		outcome.Status = TargetStatusSkipped
		return outcome
	}
	if len(syncTarget.PromptFiles) == 0 {
		service.logger.Warn(targetWithoutPromptsMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
		outcome.Status = TargetStatusSkipped
		return outcome
	}

	service.logger.Info(processingTargetMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))

	distributionPath := layout.DistributionPath(syncTarget.RepositoryPath)
	if guardError := service.guardSource(sourceRoot, distributionPath); guardError != nil {
		service.logger.Error(distributionRejectedMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath), zap.Error(guardError))
		outcome.fail(guardError)
		return outcome
	}
	if prepareError := service.materializeDistributionDirectory(distributionPath); prepareError != nil {
		service.logger.Error(distributionPrepareFailedMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath), zap.Error(prepareError))
		outcome.fail(prepareError)
		return outcome
	}

	if !service.ensureMarker(executionContext, syncTarget.RepositoryPath, CopyMarkerCommitMessage, &outcome) {
		return outcome
	}

	if options.SyncGuidelines {
		outcome.GuidelinesReplaced = service.copier.SyncDirectory(sourceRoot, distributionPath, layout.GuidelinesDirectoryName, options.GuidelinesChangeDetection)
		if outcome.GuidelinesReplaced {
			service.logger.Info(guidelinesUpdatedMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
		}
	}

	outcome.CopiedFiles = service.copier.CopyFiles(sourceRoot, distributionPath, syncTarget.PromptFiles)
	switch len(outcome.CopiedFiles) {
	case 0:
		service.logger.Info(promptsUnchangedMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
		return outcome
	case 1:
		service.logger.Info(fmt.Sprintf(singlePromptAddedMessageTemplateConstant, outcome.CopiedFiles[0]), zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
	default:
		service.logger.Info(fmt.Sprintf(multiplePromptsAddedMessageTemplateConstant, len(outcome.CopiedFiles)), zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath), zap.Strings(logFieldCopiedFilesConstant, outcome.CopiedFiles))
	}

	if options.PromptCommitScope != PromptCommitScopeWorkingTree {
		return outcome
	}
	if !service.versionControl.HasUncommittedChanges(executionContext, syncTarget.RepositoryPath) {
		service.logger.Debug(promptCommitSkippedMessageConstant, zap.String(logFieldRepositoryPathConstant, syncTarget.RepositoryPath))
		return outcome
	}

	outcome.PromptsCommitted = service.versionControl.Commit(executionContext, gitrepo.CommitRequest{
		RepositoryPath: syncTarget.RepositoryPath,
		StagedPaths:    []string{gitrepo.WorkingTreePathspec},
		Message:        PromptCommitMessage(outcome.CopiedFiles),
	})
	if !outcome.PromptsCommitted {
		outcome.fail(fmt.Errorf(promptCommitFailedTemplateConstant, syncTarget.RepositoryPath, ErrCommitFailed))
	}
	return outcome
}

func (service *Service) linkIntoTarget(executionContext context.Context, sourceRoot string, targetPath string) TargetOutcome {
	outcome := TargetOutcome{RepositoryPath: targetPath, Status: TargetStatusProcessed}

	if !service.targetExists(targetPath) {
		service.logger.Warn(targetMissingMessageConstant, zap.String(logFieldRepositoryPathConstant, targetPath))
		outcome.Status = TargetStatusSkipped
		return outcome
	}

	service.logger.Info(processingTargetMessageConstant, zap.String(logFieldRepositoryPathConstant, targetPath))

	linkPath := layout.DistributionPath(targetPath)
	if guardError := service.guardSource(sourceRoot, linkPath); guardError != nil {
		service.logger.Error(distributionRejectedMessageConstant, zap.String(logFieldRepositoryPathConstant, targetPath), zap.Error(guardError))
		outcome.fail(guardError)
		return outcome
	}

	if !service.ensureMarker(executionContext, targetPath, LinkMarkerCommitMessage, &outcome) {
		return outcome
	}

	if symlinkError := service.linker.CreateSymlink(sourceRoot, linkPath); symlinkError != nil {
		service.logger.Error(symlinkFailedMessageConstant, zap.String(logFieldRepositoryPathConstant, targetPath), zap.Error(symlinkError))
		outcome.fail(symlinkError)
		return outcome
	}

	outcome.LinkCreated = true
	service.logger.Info(symlinkCreatedForTargetMessageConstant, zap.String(logFieldRepositoryPathConstant, targetPath))
	return outcome
}

// ensureMarker adds the ignore-list marker when missing and commits it when the tree is dirty.
// It returns false when the target cannot continue.
func (service *Service) ensureMarker(executionContext context.Context, repositoryPath string, commitMessage string, outcome *TargetOutcome) bool {
	if service.ignoreList.HasEntry(repositoryPath) {
		service.logger.Info(markerPresentMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		return true
	}

	updated, updateError := service.ignoreList.EnsureEntry(repositoryPath)
	if updateError != nil {
		service.logger.Error(markerUpdateFailedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath), zap.Error(updateError))
		outcome.fail(updateError)
		return false
	}
	outcome.IgnoreListUpdated = updated
	if !updated {
		return true
	}

	if !service.versionControl.HasUncommittedChanges(executionContext, repositoryPath) {
		service.logger.Debug(markerCommitSkippedMessageConstant, zap.String(logFieldRepositoryPathConstant, repositoryPath))
		return true
	}

	outcome.MarkerCommitted = service.versionControl.Commit(executionContext, gitrepo.CommitRequest{
		RepositoryPath: repositoryPath,
		StagedPaths:    []string{layout.IgnoreListFileName},
		Message:        commitMessage,
	})
	if !outcome.MarkerCommitted {
		outcome.fail(fmt.Errorf(markerCommitFailedTemplateConstant, repositoryPath, ErrCommitFailed))
	}
	return true
}

// guardSource rejects a distribution path that is, contains, or lies inside the prompt source once
// symbolic links in its parents are followed. The entry itself is not followed, so an existing link
// pointing at the source is accepted.
func (service *Service) guardSource(sourceRoot string, distributionPath string) error {
	resolvedSource, sourceError := pathutils.ResolveSymlinks(service.fileSystem, sourceRoot)
	if sourceError != nil {
		return fmt.Errorf(resolveLocationTemplateConstant, sourceRoot, sourceError)
	}
	distributionLocation, locationError := entryLocation(service.fileSystem, distributionPath)
	if locationError != nil {
		return fmt.Errorf(resolveLocationTemplateConstant, distributionPath, locationError)
	}
	if pathutils.PathsOverlap(resolvedSource, distributionLocation) {
		return fmt.Errorf(distributionOverlapTemplateConstant, distributionPath, resolvedSource, ErrDistributionOverlapsSource)
	}
	return nil
}

// materializeDistributionDirectory replaces a symlinked distribution directory with an empty real
// directory so copies land in the project instead of the link destination.
func (service *Service) materializeDistributionDirectory(distributionPath string) error {
	lstater, supportsLstat := service.fileSystem.(afero.Lstater)
	if !supportsLstat {
		return nil
	}
	entryInfo, _, lstatError := lstater.LstatIfPossible(distributionPath)
	if errors.Is(lstatError, fs.ErrNotExist) {
		return nil
	}
	if lstatError != nil {
		return fmt.Errorf(replaceSymlinkTemplateConstant, distributionPath, lstatError)
	}
	if entryInfo.Mode()&os.ModeSymlink == 0 {
		return nil
	}

	if removeError := service.fileSystem.Remove(distributionPath); removeError != nil {
		return fmt.Errorf(replaceSymlinkTemplateConstant, distributionPath, removeError)
	}
	if mkdirError := service.fileSystem.MkdirAll(distributionPath, directoryPermissionsConstant); mkdirError != nil {
		return fmt.Errorf(replaceSymlinkTemplateConstant, distributionPath, mkdirError)
	}
	service.logger.Info(distributionSymlinkReplacedMessageConstant, zap.String(logFieldLinkTargetConstant, distributionPath))
	return nil
}

func (service *Service) targetExists(targetPath string) bool {
	if len(targetPath) == 0 {
		return false
	}
	targetInfo, statError := service.fileSystem.Stat(targetPath)
	return statError == nil && targetInfo.IsDir()
}

func (service *Service) logSummary(message string, summary Summary) {
	service.logger.Info(message,
		zap.Int(logFieldProcessedCountConstant, summary.Count(TargetStatusProcessed)),
		zap.Int(logFieldSkippedCountConstant, summary.Count(TargetStatusSkipped)),
		zap.Int(logFieldFailedCountConstant, summary.Count(TargetStatusFailed)),
	)
}

// PromptCommitMessage names the sole copied file or counts several.
func PromptCommitMessage(copiedFiles []string) string {
	if len(copiedFiles) == 1 {
		return fmt.Sprintf(singlePromptCommitMessageTemplateConstant, copiedFiles[0])
	}
	return fmt.Sprintf(multiplePromptCommitMessageTemplateConstant, len(copiedFiles))
}
