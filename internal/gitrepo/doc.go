// Package gitrepo contains the git operations used to record distribution
// changes inside target projects.
//
// RepositoryManager issues status, add, and commit invocations through a
// ShellExecutor. Bridge layers the commit policy on top of the narrow
// VersionControl capability: it reports dirty working trees, stages only the
// requested paths, and converts every git failure into a logged false result.
package gitrepo
