package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"ticketoffice/internal/clock"
	"ticketoffice/internal/domain"
	"ticketoffice/internal/domain/models"
	"ticketoffice/internal/logger"
)

const (
	RoleAgent = "agent"
	RoleAdmin = "admin"
)

var errBadCredentials = domain.UnauthorizedError("invalid username or password")

// AuthService issues and verifies agent tokens.
type AuthService struct {
	Agents AgentStore
	Secret []byte
	TTL    time.Duration
	Clock  clock.Clock
}

type agentClaims struct {
	AgentID  int64  `json:"agent_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s AuthService) Login(ctx context.Context, username, password string) (string, models.Agent, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", models.Agent{}, domain.ValidationError{Field: "credentials", Msg: "username and password are required"}
	}

	agent, err := s.Agents.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.Agent{}, errBadCredentials
		}
		return "", models.Agent{}, classify(err, "login")
	}
	if !agent.Active {
		return "", models.Agent{}, errBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.PasswordHash), []byte(password)); err != nil {
		return "", models.Agent{}, errBadCredentials
	}

	token, err := s.issue(agent)
	if err != nil {
		return "", models.Agent{}, domain.InternalError{Msg: "could not issue token", Err: err}
	}
	logger.Event(ctx, "auth", "login", "agent logged in", "username", agent.Username)
	return token, agent, nil
}

func (s AuthService) issue(a models.Agent) (string, error) {
	now := s.Clock.Now()
	ttl := s.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	claims := agentClaims{
		AgentID:  a.ID,
		Username: a.Username,
		Role:     a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// ParseToken verifies an HS256 token and returns the agent it names.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	var claims agentClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.Clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.RequestContext{}, domain.UnauthorizedError("token expired")
		}
		return domain.RequestContext{}, domain.UnauthorizedError("invalid token")
	}
	if claims.AgentID <= 0 || claims.Username == "" {
		return domain.RequestContext{}, domain.UnauthorizedError("invalid token")
	}
	return domain.RequestContext{AgentID: claims.AgentID, Username: claims.Username, Role: claims.Role}, nil
}

// Authenticate verifies raw and rechecks the agent record, so a deactivated
// agent is rejected before the token expires. The role comes from the record.
func (s AuthService) Authenticate(ctx context.Context, raw string) (domain.RequestContext, error) {
	rc, err := s.ParseToken(raw)
	if err != nil {
		return domain.RequestContext{}, err
	}
	agent, err := s.Agents.GetByUsername(ctx, rc.Username)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.RequestContext{}, domain.UnauthorizedError("agent no longer exists")
		}
		return domain.RequestContext{}, classify(err, "authenticate")
	}
	if !agent.Active || agent.ID != rc.AgentID {
		return domain.RequestContext{}, domain.UnauthorizedError("agent is not active")
	}
	rc.Role = agent.Role
	return rc, nil
}

// EnsureAdmin creates or refreshes the bootstrap admin account.
func (s AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.Agents.Upsert(ctx, models.Agent{
		Username:     username,
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         RoleAdmin,
		Active:       true,
	}); err != nil {
		return err
	}
	logger.Get().Info("admin account ensured", "username", username)
	return nil
}
