package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/prohmpiriya/residence-gate/internal/domain"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// DemoUser is a fixed account accepted by the mocked login
type DemoUser struct {
	Actor    domain.Actor
	Phone    string
	Password string
}

// DemoUsers returns the five seeded accounts, one per role
func DemoUsers() []DemoUser {
	return []DemoUser{
		{Actor: domain.Actor{UserID: "1", Name: "Sarah Johnson", Email: "admin@vms.com", Role: domain.RoleAdmin}, Phone: "+1234567890", Password: "admin123"},
		{Actor: domain.Actor{UserID: "2", Name: "Michael Chen", Email: "resident@vms.com", Apartment: "A-101", Role: domain.RoleResident}, Phone: "+1234567891", Password: "resident123"},
		{Actor: domain.Actor{UserID: "3", Name: "David Rodriguez", Email: "security@vms.com", Role: domain.RoleSecurity}, Phone: "+1234567892", Password: "security123"},
		{Actor: domain.Actor{UserID: "4", Name: "Emily Davis", Email: "facility@vms.com", Role: domain.RoleFacilityManager}, Phone: "+1234567893", Password: "facility123"},
		{Actor: domain.Actor{UserID: "5", Name: "Alex Thompson", Email: "visitor@vms.com", Role: domain.RoleVisitor}, Phone: "+1234567894", Password: "visitor123"},
	}
}

// Session is the result of a successful login
type Session struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        domain.Actor `json:"user"`
}

// AuthServiceConfig holds configuration for AuthService
type AuthServiceConfig struct {
	JWTSecret         string
	Issuer            string
	AccessTokenExpiry time.Duration
	BcryptCost        int
	Clock             func() time.Time
}

// AuthService issues and validates access tokens for the demo accounts
type AuthService interface {
	// Login checks the credentials and issues an access token
	Login(ctx context.Context, email, password string) (*Session, error)
	// ValidateToken validates an access token and returns the actor it carries
	ValidateToken(ctx context.Context, token string) (domain.Actor, error)
	// GetUser retrieves a demo user by ID
	GetUser(ctx context.Context, id string) (domain.Actor, error)
}

type account struct {
	actor domain.Actor
	hash  []byte
}

type authService struct {
	config *AuthServiceConfig
	now    func() time.Time

	byEmail  map[string]*account
	byUserID map[string]*account
}

// NewAuthService creates a new AuthService over the given users
func NewAuthService(users []DemoUser, config *AuthServiceConfig) (AuthService, error) {
	if config == nil {
		config = &AuthServiceConfig{}
	}
	if config.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if config.AccessTokenExpiry == 0 {
		config.AccessTokenExpiry = 12 * time.Hour
	}
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	now := config.Clock
	if now == nil {
		now = time.Now
	}

	s := &authService{
		config:   config,
		now:      now,
		byEmail:  make(map[string]*account, len(users)),
		byUserID: make(map[string]*account, len(users)),
	}
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), config.BcryptCost)
		if err != nil {
			return nil, err
		}
		acc := &account{actor: u.Actor, hash: hash}
		s.byEmail[strings.ToLower(u.Actor.Email)] = acc
		s.byUserID[u.Actor.UserID] = acc
	}
	return s, nil
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	acc, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	issuedAt := s.now()
	expiresAt := issuedAt.Add(s.config.AccessTokenExpiry)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       acc.actor.UserID,
		"user_id":   acc.actor.UserID,
		"name":      acc.actor.Name,
		"email":     acc.actor.Email,
		"apartment": acc.actor.Apartment,
		"role":      string(acc.actor.Role),
		"iss":       s.config.Issuer,
		"exp":       expiresAt.Unix(),
		"iat":       issuedAt.Unix(),
	})
	signed, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.config.AccessTokenExpiry.Seconds()),
		ExpiresAt:   expiresAt,
		User:        acc.actor,
	}, nil
}

// ValidateToken validates an access token and returns the actor
func (s *authService) ValidateToken(ctx context.Context, tokenString string) (domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.JWTSecret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Actor{}, ErrTokenExpired
		}
		return domain.Actor{}, ErrInvalidToken
	}
	if !token.Valid {
		return domain.Actor{}, ErrInvalidToken
	}

	actor := domain.Actor{
		UserID:    stringClaim(claims, "user_id"),
		Name:      stringClaim(claims, "name"),
		Email:     stringClaim(claims, "email"),
		Apartment: stringClaim(claims, "apartment"),
		Role:      domain.Role(stringClaim(claims, "role")),
	}
	if actor.UserID == "" || !actor.Role.IsValid() {
		return domain.Actor{}, ErrInvalidToken
	}
	return actor, nil
}

// GetUser retrieves user by ID
func (s *authService) GetUser(ctx context.Context, id string) (domain.Actor, error) {
	acc, ok := s.byUserID[id]
	if !ok {
		return domain.Actor{}, domain.ErrUserNotFound
	}
	return acc.actor, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
