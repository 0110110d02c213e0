package pipeline

import "strings"

const (
	defaultBranchNameConstant     = "main"
	defaultWorkbookPathConstant   = "A2b_January_month.xlsx"
	defaultRepositoryPathConstant = "workspace"
	defaultCommitMessageConstant  = "Update sentiment analysis results"
	defaultAuthorNameConstant     = "sentiflow-bot"
	defaultAuthorEmailConstant    = "sentiflow-bot@users.noreply.github.com"
	defaultScheduleConstant       = "30 9 * * *"

	configurationRemoteURLSuffixConstant      = ".remote_url"
	configurationRepositoryPathSuffixConstant = ".repository_path"
	configurationBranchSuffixConstant         = ".branch"
	configurationWorkbookPathSuffixConstant   = ".workbook_path"
	configurationModelSuffixConstant          = ".model"
	configurationCommitMessageSuffixConstant  = ".commit_message"
	configurationAuthorNameSuffixConstant     = ".author_name"
	configurationAuthorEmailSuffixConstant    = ".author_email"
	configurationScheduleSuffixConstant       = ".schedule"
)

// CommandConfiguration captures configuration values for the pipeline commands.
type CommandConfiguration struct {
	RemoteURL      string `mapstructure:"remote_url"`
	RepositoryPath string `mapstructure:"repository_path"`
	Branch         string `mapstructure:"branch"`
	WorkbookPath   string `mapstructure:"workbook_path"`
	Model          string `mapstructure:"model"`
	CommitMessage  string `mapstructure:"commit_message"`
	AuthorName     string `mapstructure:"author_name"`
	AuthorEmail    string `mapstructure:"author_email"`
	Schedule       string `mapstructure:"schedule"`
}

// DefaultCommandConfiguration provides baseline configuration values for the pipeline.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		RepositoryPath: defaultRepositoryPathConstant,
		Branch:         defaultBranchNameConstant,
		WorkbookPath:   defaultWorkbookPathConstant,
		CommitMessage:  defaultCommitMessageConstant,
		AuthorName:     defaultAuthorNameConstant,
		AuthorEmail:    defaultAuthorEmailConstant,
		Schedule:       defaultScheduleConstant,
	}
}

// DefaultConfigurationValues exposes pipeline defaults keyed beneath the supplied configuration prefix.
func DefaultConfigurationValues(configurationPrefix string) map[string]any {
	defaults := DefaultCommandConfiguration()
	return map[string]any{
		configurationPrefix + configurationRepositoryPathSuffixConstant: defaults.RepositoryPath,
		configurationPrefix + configurationBranchSuffixConstant:         defaults.Branch,
		configurationPrefix + configurationWorkbookPathSuffixConstant:   defaults.WorkbookPath,
		configurationPrefix + configurationCommitMessageSuffixConstant:  defaults.CommitMessage,
		configurationPrefix + configurationAuthorNameSuffixConstant:     defaults.AuthorName,
		configurationPrefix + configurationAuthorEmailSuffixConstant:    defaults.AuthorEmail,
		configurationPrefix + configurationScheduleSuffixConstant:       defaults.Schedule,
	}
}

// Sanitize trims configuration values and applies defaults for empty optional fields.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	defaults := DefaultCommandConfiguration()

	sanitized.RemoteURL = strings.TrimSpace(configuration.RemoteURL)
	sanitized.RepositoryPath = defaultIfEmpty(configuration.RepositoryPath, defaults.RepositoryPath)
	sanitized.Branch = defaultIfEmpty(configuration.Branch, defaults.Branch)
	sanitized.WorkbookPath = defaultIfEmpty(configuration.WorkbookPath, defaults.WorkbookPath)
	sanitized.Model = strings.TrimSpace(configuration.Model)
	sanitized.CommitMessage = defaultIfEmpty(configuration.CommitMessage, defaults.CommitMessage)
	sanitized.AuthorName = defaultIfEmpty(configuration.AuthorName, defaults.AuthorName)
	sanitized.AuthorEmail = defaultIfEmpty(configuration.AuthorEmail, defaults.AuthorEmail)
	sanitized.Schedule = defaultIfEmpty(configuration.Schedule, defaults.Schedule)

	return sanitized
}

func defaultIfEmpty(rawValue string, defaultValue string) string {
	trimmedValue := strings.TrimSpace(rawValue)
	if len(trimmedValue) == 0 {
		return defaultValue
	}
	return trimmedValue
}
