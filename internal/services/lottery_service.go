package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"classdraw/internal/metrics"
	"classdraw/internal/models"
	"classdraw/internal/store"

	"github.com/google/logger"
	"github.com/google/uuid"
)

// Session ties a login token to a student.
type Session struct {
	StudentID    string
	LastActivity time.Time
}

// Publisher receives every record right after it is appended.
type Publisher interface {
	Publish(record models.LotteryRecord)
}

// Option configures a LotteryService.
type Option func(*LotteryService)

// WithMetrics reports draws and registrations to r.
func WithMetrics(r metrics.Recorder) Option {
	return func(s *LotteryService) { s.metrics = r }
}

// WithPublisher forwards new records to p.
func WithPublisher(p Publisher) Option {
	return func(s *LotteryService) { s.publisher = p }
}

// LotteryService runs registration, sessions, the gated draw and the
// administrator views on top of an EntityStore.
type LotteryService struct {
	store     store.EntityStore
	engine    *DrawEngine
	ledger    *RecordLedger
	metrics   metrics.Recorder
	publisher Publisher
	now       func() time.Time

	// writeMu serializes every read-modify-write of the store, including the
	// participated check, draw and append sequence.
	writeMu sync.Mutex

	mu       sync.RWMutex
	sessions map[string]*Session // Key: session token
}

// NewLotteryService creates a LotteryService.
func NewLotteryService(s store.EntityStore, engine *DrawEngine, opts ...Option) *LotteryService {
	svc := &LotteryService{
		store:    s,
		engine:   engine,
		ledger:   NewRecordLedger(s),
		metrics:  metrics.Nop{},
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// FindUser looks a user up by exact student id.
func (s *LotteryService) FindUser(ctx context.Context, studentID string) (models.User, bool, error) {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return models.User{}, false, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.StudentID == studentID {
			return u, true, nil
		}
	}
	return models.User{}, false, nil
}

// Login returns the user registered under studentID, creating one on first
// login, and opens a session for it. Student ids match exactly as given;
// blank values are rejected. An existing user keeps its stored name.
func (s *LotteryService) Login(ctx context.Context, studentID, name string) (models.User, string, error) {
	if strings.TrimSpace(studentID) == "" || strings.TrimSpace(name) == "" {
		return models.User{}, "", fmt.Errorf("%w: student id and name are required", ErrInvalidParticipant)
	}

	user, err := s.createOrGetUser(ctx, studentID, name)
	if err != nil {
		return models.User{}, "", err
	}
	return user, s.openSession(user.StudentID), nil
}

func (s *LotteryService) createOrGetUser(ctx context.Context, studentID, name string) (models.User, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		if u.StudentID == studentID {
			return u, nil
		}
	}

	user := models.User{ID: uuid.NewString(), StudentID: studentID, Name: name}
	if err := s.store.SaveUsers(ctx, append(users, user)); err != nil {
		return models.User{}, fmt.Errorf("save users: %w", err)
	}
	s.metrics.RecordRegistration()
	logger.Infof("Registered student %s (%s)", user.StudentID, user.Name)
	return user, nil
}

func (s *LotteryService) openSession(studentID string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = &Session{StudentID: studentID, LastActivity: s.now()}
	return token
}

// getSession returns the session for token and marks it active.
func (s *LotteryService) getSession(token string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[token]
	if !exists {
		return nil, false
	}
	session.LastActivity = s.now()
	return session, true
}

// CurrentUser resolves a session token to its user.
func (s *LotteryService) CurrentUser(ctx context.Context, token string) (models.User, error) {
	session, ok := s.getSession(token)
	if !ok {
		return models.User{}, ErrNoSession
	}
	user, found, err := s.FindUser(ctx, session.StudentID)
	if err != nil {
		return models.User{}, err
	}
	if !found {
		s.Logout(token)
		return models.User{}, ErrNoSession
	}
	return user, nil
}

// Logout ends the session for token.
func (s *LotteryService) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// ActiveSessions returns the number of open sessions.
func (s *LotteryService) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanUpInactiveSessions removes sessions idle for longer than ttl and
// returns how many were removed.
func (s *LotteryService) CleanUpInactiveSessions(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	now := s.now()
	for token, session := range s.sessions {
		if now.Sub(session.LastActivity) > ttl {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Draw runs the one permitted draw for studentID and persists its outcome.
func (s *LotteryService) Draw(ctx context.Context, studentID string) (models.LotteryRecord, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	user, found, err := s.FindUser(ctx, studentID)
	if err != nil {
		return models.LotteryRecord{}, err
	}
	if !found {
		return models.LotteryRecord{}, ErrUnknownParticipant
	}
	if user.IsAdmin {
		return models.LotteryRecord{}, fmt.Errorf("%w: administrators cannot draw", ErrInvalidParticipant)
	}

	participated, err := s.ledger.HasParticipated(ctx, studentID)
	if err != nil {
		return models.LotteryRecord{}, err
	}
	if participated {
		return models.LotteryRecord{}, ErrAlreadyParticipated
	}

	prizes, err := s.store.LoadPrizes(ctx)
	if err != nil {
		return models.LotteryRecord{}, fmt.Errorf("load prizes: %w", err)
	}

	record, updated, err := s.engine.Draw(user, prizes)
	if err != nil {
		return models.LotteryRecord{}, err
	}

	if record.Won {
		if err := s.store.SavePrizes(ctx, updated); err != nil {
			return models.LotteryRecord{}, fmt.Errorf("save prizes: %w", err)
		}
	}
	if err := s.ledger.Append(ctx, record); err != nil {
		if record.Won {
			// No record means no award: put the unit back.
			if rbErr := s.store.SavePrizes(ctx, prizes); rbErr != nil {
				logger.Errorf("Error restoring prizes after failed draw for %s: %v", studentID, rbErr)
			}
		}
		return models.LotteryRecord{}, err
	}

	if record.Won {
		s.metrics.RecordDraw(true, *record.PrizeLevel)
		s.metrics.SetRemaining(updated)
		logger.Infof("Student %s won prize %d (%s)", studentID, *record.PrizeID, *record.PrizeName)
	} else {
		s.metrics.RecordDraw(false, 0)
		logger.Infof("Student %s drew without winning", studentID)
	}
	if s.publisher != nil {
		s.publisher.Publish(record)
	}
	return record, nil
}

// HasParticipated reports whether studentID already has a record.
func (s *LotteryService) HasParticipated(ctx context.Context, studentID string) (bool, error) {
	return s.ledger.HasParticipated(ctx, studentID)
}

// MyRecords returns studentID's records.
func (s *LotteryService) MyRecords(ctx context.Context, studentID string) ([]models.LotteryRecord, error) {
	return s.ledger.RecordsFor(ctx, studentID)
}

// AllRecords returns every record.
func (s *LotteryService) AllRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	return s.ledger.AllRecords(ctx)
}

// WinningRecords returns the winning records.
func (s *LotteryService) WinningRecords(ctx context.Context) ([]models.LotteryRecord, error) {
	return s.ledger.WinningRecords(ctx)
}

// Users returns every registered user, administrator included.
func (s *LotteryService) Users(ctx context.Context) ([]models.User, error) {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	return users, nil
}

// Prizes returns the whole catalog with current stock.
func (s *LotteryService) Prizes(ctx context.Context) ([]models.Prize, error) {
	prizes, err := s.store.LoadPrizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prizes: %w", err)
	}
	return prizes, nil
}

// AvailablePrizes returns the catalog entries still in stock.
func (s *LotteryService) AvailablePrizes(ctx context.Context) ([]models.Prize, error) {
	prizes, err := s.Prizes(ctx)
	if err != nil {
		return nil, err
	}
	return AvailablePrizes(prizes), nil
}

// AddPrize appends a new catalog entry with the next free id.
// Existing entries are never modified.
func (s *LotteryService) AddPrize(ctx context.Context, name, description string, level, remaining int) (models.Prize, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	added, err := s.addPrizes(ctx, []models.Prize{{Name: name, Description: description, Level: level, Remaining: remaining}})
	if err != nil {
		return models.Prize{}, err
	}
	return added[0], nil
}

// addPrizes validates, numbers and saves new entries. Callers hold writeMu.
func (s *LotteryService) addPrizes(ctx context.Context, entries []models.Prize) ([]models.Prize, error) {
	for _, p := range entries {
		if err := validatePrize(p); err != nil {
			return nil, err
		}
	}

	prizes, err := s.store.LoadPrizes(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prizes: %w", err)
	}
	nextID := 1
	for _, p := range prizes {
		if p.ID >= nextID {
			nextID = p.ID + 1
		}
	}

	added := make([]models.Prize, 0, len(entries))
	for _, p := range entries {
		p.Name = strings.TrimSpace(p.Name)
		p.ID = nextID
		nextID++
		added = append(added, p)
	}

	updated := append(prizes, added...)
	if err := s.store.SavePrizes(ctx, updated); err != nil {
		return nil, fmt.Errorf("save prizes: %w", err)
	}
	s.metrics.SetRemaining(updated)
	logger.Infof("Added %d prize(s) to the catalog", len(added))
	return added, nil
}

func validatePrize(p models.Prize) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPrize)
	}
	if !models.ValidLevel(p.Level) {
		return fmt.Errorf("%w: level must be 1, 2 or 3", ErrInvalidPrize)
	}
	if p.Remaining < 0 {
		return fmt.Errorf("%w: remaining must not be negative", ErrInvalidPrize)
	}
	return nil
}
