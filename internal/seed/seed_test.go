package seed_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kiranshivaraju/queueview/internal/seed"
	"github.com/kiranshivaraju/queueview/internal/tabular"
	"github.com/kiranshivaraju/queueview/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingWriter struct {
	users []*models.User
	err   error
}

func (w *recordingWriter) UpsertUser(_ context.Context, u *models.User) error {
	if w.err != nil {
		return w.err
	}
	w.users = append(w.users, u)
	return nil
}

func queue(rows ...tabular.Row) *tabular.Memory {
	src := tabular.NewMemory()
	src.Put(tabular.TableActiveQueue, []string{tabular.ColJobID, tabular.ColSubmittedBy}, rows)
	return src
}

func row(jobID, user string) tabular.Row {
	r := tabular.Row{tabular.ColJobID: jobID}
	if user != "" {
		r[tabular.ColSubmittedBy] = user
	}
	return r
}

func TestSubmitters_GroupsInQueueOrder(t *testing.T) {
	src := queue(
		row("J1", "carol"),
		row("J2", "alice"),
		row("J3", "carol"),
		row("J4", ""),
		row("J5", "alice"),
	)

	subs, err := seed.Submitters(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []seed.Submitter{
		{Username: "alice", Jobs: []string{"J2", "J5"}},
		{Username: "carol", Jobs: []string{"J1", "J3"}},
	}, subs)
}

func TestSubmitters_MissingColumn(t *testing.T) {
	src := tabular.NewMemory()
	src.Put(tabular.TableActiveQueue, []string{tabular.ColJobID}, nil)

	_, err := seed.Submitters(context.Background(), src)
	assert.ErrorIs(t, err, tabular.ErrMissingColumn)
}

func TestRun_WritesHashedCredentials(t *testing.T) {
	src := queue(row("J1", "alice"), row("J2", "bob"), row("J3", "alice"))
	w := &recordingWriter{}

	n, err := seed.Run(context.Background(), src, w, seed.Options{
		Password: "changeme",
		Cost:     bcrypt.MinCost,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, w.users, 2)

	alice := w.users[0]
	assert.Equal(t, "alice", alice.Username)
	assert.Equal(t, models.RoleAdmin, alice.Role)
	assert.Equal(t, []string{"J1", "J3"}, alice.Jobs)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("changeme")))
	assert.NotEqual(t, alice.PasswordHash, w.users[1].PasswordHash, "each user gets its own salt")
}

func TestRun_CustomRole(t *testing.T) {
	w := &recordingWriter{}
	_, err := seed.Run(context.Background(), queue(row("J1", "alice")), w, seed.Options{
		Password: "pw",
		Role:     "viewer",
		Cost:     bcrypt.MinCost,
	})
	require.NoError(t, err)
	require.Len(t, w.users, 1)
	assert.Equal(t, "viewer", w.users[0].Role)
}

func TestRun_EmptyPassword(t *testing.T) {
	w := &recordingWriter{}
	_, err := seed.Run(context.Background(), queue(row("J1", "alice")), w, seed.Options{})
	assert.Error(t, err)
	assert.Empty(t, w.users)
}

func TestRun_WriterError(t *testing.T) {
	boom := errors.New("boom")
	n, err := seed.Run(context.Background(), queue(row("J1", "alice")), &recordingWriter{err: boom},
		seed.Options{Password: "pw", Cost: bcrypt.MinCost})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}
