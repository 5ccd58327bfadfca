package gitstore

import (
	"context"
	"errors"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/mdbot/gitwiki/wiki"
)

// History returns the commits that touched gitPath, newest first. If after is given the listing
// starts with the commit following it; a count of zero or less lists everything.
func (g *GitBackend) History(ctx context.Context, gitPath, after string, count int) ([]wiki.HistoryEntry, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return g.history(ctx, gitPath, after, count)
}

func (g *GitBackend) history(ctx context.Context, gitPath, after string, count int) ([]wiki.HistoryEntry, error) {
	var from plumbing.Hash
	if after == "" {
		head, err := g.headCommit()
		if err != nil {
			return nil, err
		}
		if head == nil {
			return nil, nil
		}
		from = head.Hash
	} else {
		commit, err := g.commitAt(after)
		if err != nil {
			return nil, err
		}
		from = commit.Hash
	}

	commitIter, err := g.repo.Log(&git.LogOptions{
		From: from,
		PathFilter: func(s string) bool {
			return s == gitPath
		},
	})
	if err != nil {
		return nil, backendError(err)
	}
	defer commitIter.Close()

	var history []wiki.HistoryEntry
	for count <= 0 || len(history) < count {
		if err := ctx.Err(); err != nil {
			return nil, backendError(err)
		}
		commit, err := commitIter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, backendError(err)
		}
		if after != "" && commit.Hash == from {
			continue
		}
		history = append(history, entryFor(commit))
	}

	return history, nil
}

func entryFor(commit *object.Commit) wiki.HistoryEntry {
	return wiki.HistoryEntry{
		Revision: commit.Hash.String(),
		Author:   commit.Author.Name,
		Email:    commit.Author.Email,
		Time:     commit.Author.When,
		Message:  commit.Message,
	}
}
