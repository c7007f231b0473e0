package project

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/log2timeline/devtools/internal/execshell"
)

const (
	gitLogSubcommandConstant        = "log"
	gitAuthorFormatArgumentConstant = "--format=%aN (%aE)"
	authorEntryTemplateConstant     = "%s (%s)"
	repositoryOpenErrorTemplate     = "unable to open repository %s: %w"
	repositoryHeadErrorTemplate     = "unable to resolve HEAD of %s: %w"
	repositoryLogErrorTemplate      = "unable to read history of %s: %w"
	gitLogErrorTemplateConstant     = "unable to read commit authors: %w"
	historySourceGitConstant        = "git"
	historySourceGoGitConstant      = "go-git"
	unknownHistorySourceTemplate    = "unknown history source %q"
)

// HistorySource lists commit authors as "Name (email)", newest commit first.
type HistorySource interface {
	CommitAuthors(executionContext context.Context, repositoryPath string) ([]string, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitCommandHistorySource reads authors with `git log`, which honours .mailmap.
type GitCommandHistorySource struct {
	executor GitExecutor
}

// NewGitCommandHistorySource constructs a history source backed by the git executable.
func NewGitCommandHistorySource(executor GitExecutor) *GitCommandHistorySource {
	return &GitCommandHistorySource{executor: executor}
}

// CommitAuthors implements HistorySource.
func (source *GitCommandHistorySource) CommitAuthors(executionContext context.Context, repositoryPath string) ([]string, error) {
	result, executionError := source.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitLogSubcommandConstant, gitAuthorFormatArgumentConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return nil, fmt.Errorf(gitLogErrorTemplateConstant, executionError)
	}

	authors := make([]string, 0)
	for _, line := range strings.Split(result.StandardOutput, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		authors = append(authors, trimmedLine)
	}
	return authors, nil
}

// GoGitHistorySource reads authors directly from the repository object store.
type GoGitHistorySource struct{}

// NewGoGitHistorySource constructs a history source that does not need the git executable.
func NewGoGitHistorySource() *GoGitHistorySource {
	return &GoGitHistorySource{}
}

// CommitAuthors implements HistorySource.
func (source *GoGitHistorySource) CommitAuthors(executionContext context.Context, repositoryPath string) ([]string, error) {
	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenErrorTemplate, repositoryPath, openError)
	}

	head, headError := repository.Head()
	if headError != nil {
		return nil, fmt.Errorf(repositoryHeadErrorTemplate, repositoryPath, headError)
	}

	commitIterator, logError := repository.Log(&git.LogOptions{From: head.Hash(), Order: git.LogOrderCommitterTime})
	if logError != nil {
		return nil, fmt.Errorf(repositoryLogErrorTemplate, repositoryPath, logError)
	}
	defer commitIterator.Close()

	authors := make([]string, 0)
	for {
		if contextError := executionContext.Err(); contextError != nil {
			return nil, contextError
		}
		commit, nextError := commitIterator.Next()
		if errors.Is(nextError, io.EOF) {
			break
		}
		if nextError != nil {
			return nil, fmt.Errorf(repositoryLogErrorTemplate, repositoryPath, nextError)
		}
		authors = append(authors, formatAuthor(commit.Author))
	}
	return authors, nil
}

func formatAuthor(signature object.Signature) string {
	return fmt.Sprintf(authorEntryTemplateConstant, signature.Name, signature.Email)
}

// HistorySourceNames lists the names accepted by NewHistorySource.
func HistorySourceNames() []string {
	return []string{historySourceGitConstant, historySourceGoGitConstant}
}

// NewHistorySource selects a HistorySource by name.
func NewHistorySource(name string, executor GitExecutor) (HistorySource, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case historySourceGitConstant, "":
		return NewGitCommandHistorySource(executor), nil
	case historySourceGoGitConstant:
		return NewGoGitHistorySource(), nil
	}
	return nil, fmt.Errorf(unknownHistorySourceTemplate, name)
}
