// Package seed creates login credentials for every user that appears in the
// Active Queue.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// UserWriter persists a credential, replacing any existing one for the username.
type UserWriter interface {
	UpsertUser(ctx context.Context, user *models.User) error
}

// Options controls the credentials written for each seeded user.
type Options struct {
	Password string
	Role     string
	// Cost is the bcrypt cost. Zero uses bcrypt.DefaultCost.
	Cost int
}

// Submitter is a user and the jobs they submitted, in queue order.
type Submitter struct {
	Username string
	Jobs     []string
}

// Submitters reads the Active Queue and groups job ids by submitter. The result
// is sorted by username. Rows without a submitter are skipped.
func Submitters(ctx context.Context, src tabular.Store) ([]Submitter, error) {
	rows, err := src.ReadTable(ctx, tabular.TableActiveQueue,
		tabular.Required(tabular.ColJobID, tabular.ColSubmittedBy))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tabular.TableActiveQueue, err)
	}

	byUser := make(map[string][]string)
	for _, row := range rows {
		user, ok := row.Get(tabular.ColSubmittedBy)
		if !ok || user == "" {
			continue
		}
		jobID, _ := row.Get(tabular.ColJobID)
		byUser[user] = append(byUser[user], jobID)
	}

	out := make([]Submitter, 0, len(byUser))
	for user, jobs := range byUser {
		out = append(out, Submitter{Username: user, Jobs: jobs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Run writes one credential per submitter found in src and returns how many
// were written. Every user gets the same password, hashed separately.
func Run(ctx context.Context, src tabular.Store, w UserWriter, opts Options) (int, error) {
	if opts.Password == "" {
		return 0, errors.New("password is empty")
	}
	if opts.Role == "" {
		opts.Role = models.RoleAdmin
	}
	if opts.Cost == 0 {
		opts.Cost = bcrypt.DefaultCost
	}

	subs, err := Submitters(ctx, src)
	if err != nil {
		return 0, err
	}

	for i, s := range subs {
		hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), opts.Cost)
		if err != nil {
			return i, fmt.Errorf("hash password for %s: %w", s.Username, err)
		}
		user := &models.User{
			Username:     s.Username,
			PasswordHash: string(hash),
			Role:         opts.Role,
			Jobs:         s.Jobs,
		}
		if err := w.UpsertUser(ctx, user); err != nil {
			return i, fmt.Errorf("upsert user %s: %w", s.Username, err)
		}
		slog.Debug("user seeded", "username", s.Username, "jobs", len(s.Jobs))
	}
	return len(subs), nil
}
