package gitstore

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// PutPage writes content to gitPath and commits it. Every save is a commit.
func (g *GitBackend) PutPage(gitPath string, content []byte, user string, message string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	filePath, gitPath, err := resolvePath(g.dir, gitPath)
	if err != nil {
		return err
	}

	return g.writeFile(filePath, gitPath, bytes.NewReader(content), user, message)
}

func (g *GitBackend) writeFile(filePath, gitPath string, content io.Reader, user, message string) error {
	if err := os.MkdirAll(filepath.Dir(filePath), os.FileMode(0755)); err != nil {
		return err
	}

	f, err := os.Create(filePath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, content); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	worktree, err := g.repo.Worktree()
	if err != nil {
		return err
	}

	if _, err := worktree.Add(gitPath); err != nil {
		return err
	}

	return g.commit(worktree, user, message)
}

// DeletePage removes gitPath from the working tree and commits the removal.
func (g *GitBackend) DeletePage(gitPath string, user string, message string) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	_, gitPath, err := resolvePath(g.dir, gitPath)
	if err != nil {
		return err
	}
	worktree, err := g.repo.Worktree()
	if err != nil {
		return err
	}
	if _, err := worktree.Remove(gitPath); err != nil {
		log.Printf("Unable to remove %s: %v", gitPath, err)
		return err
	}
	return g.commit(worktree, user, message)
}

func (g *GitBackend) commit(worktree *git.Worktree, user, message string) error {
	if message == "" {
		message = "Update"
	}
	_, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  user,
			Email: user + "@wiki",
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("unable to commit: %w", err)
	}
	return nil
}
