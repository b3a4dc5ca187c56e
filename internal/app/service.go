package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Phairoj-Ja/student-score-web/internal/access"
	"github.com/Phairoj-Ja/student-score-web/internal/grading"
	"github.com/Phairoj-Ja/student-score-web/internal/models"
	"github.com/Phairoj-Ja/student-score-web/internal/sessions"
	"github.com/Phairoj-Ja/student-score-web/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.RecordStore
	Sessions sessions.Store
	Auth     *access.Authenticator
	Layout   grading.Layout
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	logger.Info.Printf("Applying migrations from %s", config.Database.MigrationsDir)
	if err := store.ApplyMigrations(config.Database.MigrationsDir); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	ctx := context.Background()
	sessionStore, err := NewSessionStore(ctx, config)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	service := New(config, store, sessionStore)
	if err := service.Bootstrap(ctx); err != nil {
		service.Close()
		return nil, err
	}

	return service, nil
}

// New wires a service from already opened collaborators.
func New(config *Config, recordStore store.RecordStore, sessionStore sessions.Store) *Service {
	return &Service{
		Config:   config,
		Store:    recordStore,
		Sessions: sessionStore,
		Auth:     access.NewAuthenticator(recordStore, access.NewBcryptHasher(config.Admin.BcryptCost)),
		Layout:   config.Scoring.WithDefaults(),
	}
}

// Bootstrap seeds the admin row and, while it has no password yet, the
// configured initial password.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.Store.EnsureAdmin(ctx); err != nil {
		return err
	}
	if s.Config.Admin.InitialPassword == "" {
		return nil
	}

	admin, err := s.Store.GetStudentRecord(ctx, models.AdminCourse, models.AdminUserID)
	if err != nil {
		return fmt.Errorf("failed to load admin: %w", err)
	}
	if admin == nil || admin.HasCredential() {
		return nil
	}

	hash, err := s.Auth.Hash(s.Config.Admin.InitialPassword)
	if err != nil {
		return err
	}
	if err := s.Store.SetCredential(ctx, admin.ID, hash); err != nil {
		return fmt.Errorf("failed to set initial admin password: %w", err)
	}
	logger.Info.Println("Initial admin password applied")
	return nil
}

type LoginCourse struct {
	Course string `json:"course"`
	Name   string `json:"name"`
}

// LoginCourses lists what the login form offers: the admin entry followed
// by every active course.
func (s *Service) LoginCourses(ctx context.Context) ([]LoginCourse, error) {
	courses, err := s.Store.ListCourses(ctx, models.StatusActive)
	if err != nil {
		return nil, err
	}

	out := make([]LoginCourse, 0, len(courses)+1)
	out = append(out, LoginCourse{Course: models.AdminCourse, Name: "System Admin"})
	for _, c := range courses {
		out = append(out, LoginCourse{Course: c.Code, Name: c.Name})
	}
	return out, nil
}

type LoginResult struct {
	Token               string
	Session             models.Session
	PasswordProvisioned bool
}

// Login authenticates and, on success only, replaces the previous session.
// A stale token that cannot be dropped does not fail the login.
func (s *Service) Login(ctx context.Context, attempt access.Attempt, previousToken string) (*LoginResult, error) {
	res, err := s.Auth.Authenticate(ctx, attempt)
	if err != nil {
		return nil, err
	}

	token, err := s.Sessions.Create(ctx, res.Session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if previousToken != "" && previousToken != token {
		if err := s.Sessions.Delete(ctx, previousToken); err != nil {
			logger.Error.Printf("Failed to drop previous session: %v", err)
		}
	}

	return &LoginResult{
		Token:               token,
		Session:             res.Session,
		PasswordProvisioned: res.PasswordProvisioned,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, token)
}

// SessionFor resolves a cookie token, nil when there is no live session.
func (s *Service) SessionFor(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, nil
	}
	return s.Sessions.Get(ctx, token)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	return errors.Join(errs...)
}
