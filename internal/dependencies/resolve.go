package dependencies

import (
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/promptsync/internal/distribution"
	"github.com/temirov/promptsync/internal/execshell"
	"github.com/temirov/promptsync/internal/gitrepo"
	"github.com/temirov/promptsync/internal/ignorelist"
	"github.com/temirov/promptsync/internal/ui"
)

// ResolveFileSystem returns the provided filesystem or an OS-backed default.
func ResolveFileSystem(existing afero.Fs) afero.Fs {
	if existing != nil {
		return existing
	}
	return afero.NewOsFs()
}

// ResolveGitExecutor returns the provided executor or constructs a shell-backed default.
// Human-readable logging attaches a console observer that narrates each git invocation.
func ResolveGitExecutor(existing gitrepo.GitExecutor, logger *zap.Logger, humanReadable bool) (gitrepo.GitExecutor, error) {
	if existing != nil {
		return existing, nil
	}

	observers := make([]execshell.CommandEventObserver, 0, 1)
	if humanReadable {
		observers = append(observers, ui.NewConsoleCommandEventLogger(logger))
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner, observers...)
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

// ResolveVersionControl wraps a git-backed repository manager in the commit bridge.
func ResolveVersionControl(executor gitrepo.GitExecutor, logger *zap.Logger) (*gitrepo.Bridge, error) {
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	if managerError != nil {
		return nil, managerError
	}
	return gitrepo.NewBridge(repositoryManager, logger)
}

// ResolveDistributionService assembles a distribution service with every collaborator backed by fileSystem and executor.
func ResolveDistributionService(fileSystem afero.Fs, executor gitrepo.GitExecutor, logger *zap.Logger) (*distribution.Service, error) {
	versionControl, versionControlError := ResolveVersionControl(executor, logger)
	if versionControlError != nil {
		return nil, versionControlError
	}

	ignoreListManager, ignoreListError := ignorelist.NewManager(fileSystem, logger)
	if ignoreListError != nil {
		return nil, ignoreListError
	}

	copier, copierError := distribution.NewCopier(fileSystem, logger)
	if copierError != nil {
		return nil, copierError
	}

	linker, linkerError := distribution.NewLinker(fileSystem, logger)
	if linkerError != nil {
		return nil, linkerError
	}

	return distribution.NewService(distribution.ServiceDependencies{
		FileSystem:     fileSystem,
		IgnoreList:     ignoreListManager,
		VersionControl: versionControl,
		Copier:         copier,
		Linker:         linker,
		Logger:         logger,
	})
}
