package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kiranshivaraju/queueview/internal/store"
	"github.com/kiranshivaraju/queueview/pkg/models"
	"golang.org/x/crypto/bcrypt"
)

// CredentialLookup finds a stored credential by username. It returns
// store.ErrNotFound when the user does not exist.
type CredentialLookup interface {
	GetUser(ctx context.Context, username string) (*models.User, error)
}

// Session is the outcome of a successful login.
type Session struct {
	Username string
	Role     string
	Jobs     []string
	Token    string
}

// dummyHash is compared against when the username is unknown so that both
// failure paths cost one bcrypt comparison.
var dummyHash = sync.OnceValue(func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("queueview-unknown-user"), bcrypt.DefaultCost)
	if err != nil {
		panic(fmt.Sprintf("generate dummy hash: %v", err))
	}
	return h
})

// Gate authenticates users against the credential store and authorizes
// requests by token.
type Gate struct {
	users  CredentialLookup
	tokens *TokenService
}

// NewGate creates a Gate.
func NewGate(users CredentialLookup, tokens *TokenService) *Gate {
	return &Gate{users: users, tokens: tokens}
}

// Authenticate checks username and password and issues a token carrying the
// stored role. Unknown users and wrong passwords both return ErrInvalidCredentials.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	user, err := g.users.GetUser(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", ErrCredentialStore, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := g.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &Session{
		Username: user.Username,
		Role:     user.Role,
		Jobs:     user.Jobs,
		Token:    token,
	}, nil
}

// Authorize verifies token and returns its claims. Any failure is an
// access-denied condition; there is no anonymous fallback.
func (g *Gate) Authorize(token string) (*Claims, error) {
	return g.tokens.Verify(token)
}
