package project_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/log2timeline/devtools/internal/execshell"
	"github.com/log2timeline/devtools/internal/project"
)

type recordingGitExecutor struct {
	result   execshell.ExecutionResult
	err      error
	recorded []execshell.CommandDetails
}

func (executor *recordingGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recorded = append(executor.recorded, details)
	return executor.result, executor.err
}

func TestGitCommandHistorySource(testInstance *testing.T) {
	executor := &recordingGitExecutor{result: execshell.ExecutionResult{
		StandardOutput: "Daniel White (onager@deerpie.com)\n\nJoachim Metz (joachim.metz@gmail.com)\n",
	}}

	authors, historyError := project.NewGitCommandHistorySource(executor).CommitAuthors(context.Background(), "/src/plaso")
	require.NoError(testInstance, historyError)
	require.Equal(testInstance, []string{"Daniel White (onager@deerpie.com)", "Joachim Metz (joachim.metz@gmail.com)"}, authors)

	require.Len(testInstance, executor.recorded, 1)
	require.Equal(testInstance, []string{"log", "--format=%aN (%aE)"}, executor.recorded[0].Arguments)
	require.Equal(testInstance, "/src/plaso", executor.recorded[0].WorkingDirectory)

	failingExecutor := &recordingGitExecutor{err: errors.New("not a git repository")}
	_, failureError := project.NewGitCommandHistorySource(failingExecutor).CommitAuthors(context.Background(), "/src/plaso")
	require.Error(testInstance, failureError)
}

func TestGoGitHistorySource(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	commitAuthors := []object.Signature{
		{Name: "Joachim Metz", Email: "joachim.metz@gmail.com", When: time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{Name: "Daniel White", Email: "onager@deerpie.com", When: time.Date(2017, time.February, 1, 0, 0, 0, 0, time.UTC)},
	}
	for commitIndex, author := range commitAuthors {
		fileName := filepath.Join(repositoryPath, "README")
		require.NoError(testInstance, os.WriteFile(fileName, []byte(author.Name), 0o644))
		_, addError := worktree.Add("README")
		require.NoError(testInstance, addError)

		signature := author
		_, commitError := worktree.Commit("commit "+string(rune('a'+commitIndex)), &git.CommitOptions{Author: &signature, Committer: &signature})
		require.NoError(testInstance, commitError)
	}

	authors, historyError := project.NewGoGitHistorySource().CommitAuthors(context.Background(), repositoryPath)
	require.NoError(testInstance, historyError)
	require.Equal(testInstance, []string{"Daniel White (onager@deerpie.com)", "Joachim Metz (joachim.metz@gmail.com)"}, authors)

	_, openError := project.NewGoGitHistorySource().CommitAuthors(context.Background(), testInstance.TempDir())
	require.Error(testInstance, openError)
}

func TestNewHistorySource(testInstance *testing.T) {
	gitSource, gitError := project.NewHistorySource("git", &recordingGitExecutor{})
	require.NoError(testInstance, gitError)
	require.IsType(testInstance, &project.GitCommandHistorySource{}, gitSource)

	goGitSource, goGitError := project.NewHistorySource("go-git", nil)
	require.NoError(testInstance, goGitError)
	require.IsType(testInstance, &project.GoGitHistorySource{}, goGitSource)

	_, unknownError := project.NewHistorySource("svn", nil)
	require.Error(testInstance, unknownError)
	require.Equal(testInstance, []string{"git", "go-git"}, project.HistorySourceNames())
}
