package targets

// SyncTarget names a project directory and the prompt files distributed into it.
type SyncTarget struct {
	RepositoryPath string
	PromptFiles    []string
}

type syncTargetRecord struct {
	RepositoryPath string   `yaml:"repository_path"`
	Prompts        []string `yaml:"prompts"`
}
