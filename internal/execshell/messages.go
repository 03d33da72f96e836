package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStarted messageStage = iota
	messageStageSucceeded
	messageStageFailed
	messageStageExecutionFailed
)

const (
	gitPullSubcommandConstant         = "pull"
	gitFetchSubcommandConstant        = "fetch"
	gitStatusSubcommandConstant       = "status"
	gitRemoteSubcommandConstant       = "remote"
	composeUpSubcommandConstant       = "up"
	composeDownSubcommandConstant     = "down"
	composeRestartSubcommandConstant  = "restart"
	mavenSpringBootGoalPrefixConstant = "spring-boot:"

	gitPullStartedTemplateConstant        = "Pulling%s"
	gitPullSucceededTemplateConstant      = "Pulled%s"
	gitFetchStartedTemplateConstant       = "Fetching%s"
	gitFetchSucceededTemplateConstant     = "Fetched%s"
	gitStatusStartedTemplateConstant      = "Checking status%s"
	gitStatusSucceededTemplateConstant    = "Checked status%s"
	gitRemoteUpdateStartedTemplate        = "Updating remotes%s"
	gitRemoteUpdateSucceededTemplate      = "Updated remotes%s"
	composeUpStartedTemplateConstant      = "Starting containers%s"
	composeUpSucceededTemplateConstant    = "Started containers%s"
	composeDownStartedTemplateConstant    = "Stopping containers%s"
	composeDownSucceededTemplateConstant  = "Stopped containers%s"
	composeRestartStartedTemplate         = "Restarting containers%s"
	composeRestartSucceededTemplate       = "Restarted containers%s"
	mavenGoalStartedTemplateConstant      = "Running mvn %s%s"
	mavenGoalSucceededTemplateConstant    = "Completed mvn %s%s"
	springBootStartedTemplateConstant     = "Starting Spring Boot%s"
	genericStartedTemplateConstant        = "Running %s"
	genericSucceededTemplateConstant      = "Completed %s"
	genericFailedTemplateConstant         = "%s failed with exit code %d"
	genericExecutionFailedTemplate        = "%s failed: %s"
	workingDirectorySuffixTemplate        = " in %s"
	standardErrorSuffixTemplateConstant   = ": %s"
	unknownFailureMessageConstant         = "unknown error"
	commandArgumentsJoinSeparatorConstant = " "
)

// CommandMessageFormatter builds human-readable messages describing command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStarted)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSucceeded)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailed)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailed)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if stage == messageStageFailed {
		baseMessage := fmt.Sprintf(genericFailedTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode)
		return baseMessage + formatter.formatStandardErrorSuffix(result.StandardError)
	}
	if stage == messageStageExecutionFailed {
		return fmt.Sprintf(genericExecutionFailedTemplate, formatter.formatCommandLabel(command), formatter.describeFailure(failure))
	}

	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, stage)
	case CommandDockerCompose:
		return formatter.describeComposeMessage(command, stage)
	case CommandMaven:
		return formatter.describeMavenMessage(command, stage)
	default:
		return formatter.buildGenericMessage(command, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, stage messageStage) string {
	directorySuffix := formatter.formatWorkingDirectorySuffix(command)
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)

	switch subcommand {
	case gitPullSubcommandConstant:
		return formatter.selectTemplate(stage, gitPullStartedTemplateConstant, gitPullSucceededTemplateConstant, directorySuffix)
	case gitFetchSubcommandConstant:
		return formatter.selectTemplate(stage, gitFetchStartedTemplateConstant, gitFetchSucceededTemplateConstant, directorySuffix)
	case gitStatusSubcommandConstant:
		return formatter.selectTemplate(stage, gitStatusStartedTemplateConstant, gitStatusSucceededTemplateConstant, directorySuffix)
	case gitRemoteSubcommandConstant:
		return formatter.selectTemplate(stage, gitRemoteUpdateStartedTemplate, gitRemoteUpdateSucceededTemplate, directorySuffix)
	default:
		return formatter.buildGenericMessage(command, stage)
	}
}

func (formatter CommandMessageFormatter) describeComposeMessage(command ShellCommand, stage messageStage) string {
	directorySuffix := formatter.formatWorkingDirectorySuffix(command)
	subcommand := formatter.argumentAtIndex(command.Details.Arguments, 0)

	switch subcommand {
	case composeUpSubcommandConstant:
		return formatter.selectTemplate(stage, composeUpStartedTemplateConstant, composeUpSucceededTemplateConstant, directorySuffix)
	case composeDownSubcommandConstant:
		return formatter.selectTemplate(stage, composeDownStartedTemplateConstant, composeDownSucceededTemplateConstant, directorySuffix)
	case composeRestartSubcommandConstant:
		return formatter.selectTemplate(stage, composeRestartStartedTemplate, composeRestartSucceededTemplate, directorySuffix)
	default:
		return formatter.buildGenericMessage(command, stage)
	}
}

func (formatter CommandMessageFormatter) describeMavenMessage(command ShellCommand, stage messageStage) string {
	directorySuffix := formatter.formatWorkingDirectorySuffix(command)
	goals := formatter.collectMavenGoals(command.Details.Arguments)

	if stage == messageStageStarted && formatter.includesSpringBootGoal(goals) {
		return fmt.Sprintf(springBootStartedTemplateConstant, directorySuffix)
	}
	if len(goals) == 0 {
		return formatter.buildGenericMessage(command, stage)
	}

	goalLabel := strings.Join(goals, commandArgumentsJoinSeparatorConstant)
	if stage == messageStageStarted {
		return fmt.Sprintf(mavenGoalStartedTemplateConstant, goalLabel, directorySuffix)
	}
	return fmt.Sprintf(mavenGoalSucceededTemplateConstant, goalLabel, directorySuffix)
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	if stage == messageStageStarted {
		return fmt.Sprintf(genericStartedTemplateConstant, commandLabel)
	}
	return fmt.Sprintf(genericSucceededTemplateConstant, commandLabel)
}

func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, startedTemplate string, succeededTemplate string, directorySuffix string) string {
	if stage == messageStageStarted {
		return fmt.Sprintf(startedTemplate, directorySuffix)
	}
	return fmt.Sprintf(succeededTemplate, directorySuffix)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)

	directorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return commandLabel + directorySuffix
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return ""
	}
	return fmt.Sprintf(workingDirectorySuffixTemplate, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) argumentAtIndex(arguments []string, index int) string {
	if index < 0 || index >= len(arguments) {
		return ""
	}
	return arguments[index]
}

func (formatter CommandMessageFormatter) collectMavenGoals(arguments []string) []string {
	goals := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(argument, "-") {
			continue
		}
		goals = append(goals, argument)
	}
	return goals
}

func (formatter CommandMessageFormatter) includesSpringBootGoal(goals []string) bool {
	for _, goal := range goals {
		if strings.HasPrefix(goal, mavenSpringBootGoalPrefixConstant) {
			return true
		}
	}
	return false
}
