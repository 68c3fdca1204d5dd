// Package reminders sends a notice for every confirmed booking the day
// before it takes place. Each booking is reminded at most once; the
// sent flag lives on the booking row so restarts do not re-send.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"venuebook/internal/metrics"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Repository is the slice of the store the scheduler needs.
type Repository interface {
	ListConfirmedBookingsOn(ctx context.Context, date time.Time) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, id int64) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetService(ctx context.Context, id int64) (*models.Service, error)
}

// Notifier delivers a single reminder.
type Notifier interface {
	Notify(ctx context.Context, user *models.User, svc *models.Service, b *models.Booking) error
}

// Config controls when the daily pass runs and how fast notices go out.
type Config struct {
	DailyHour     int
	DailyMinute   int
	CheckInterval time.Duration
	RatePerSecond float64
	Burst         int
}

func DefaultConfig() Config {
	return Config{
		DailyHour:     12,
		DailyMinute:   0,
		CheckInterval: time.Minute,
		RatePerSecond: 20,
		Burst:         30,
	}
}

// Scheduler runs the daily reminder pass.
type Scheduler struct {
	config   Config
	repo     Repository
	notifier Notifier
	limiter  *rate.Limiter
	loc      *time.Location
	logger   *zerolog.Logger

	mu          sync.Mutex
	lastRunDate string // YYYY-MM-DD of last completed pass
	running     bool
	stopCh      chan struct{}
}

func NewScheduler(config Config, repo Repository, notifier Notifier, loc *time.Location, logger *zerolog.Logger) *Scheduler {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.RatePerSecond <= 0 {
		config.RatePerSecond = DefaultConfig().RatePerSecond
	}
	if config.Burst <= 0 {
		config.Burst = DefaultConfig().Burst
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		config:   config,
		repo:     repo,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Limit(config.RatePerSecond), config.Burst),
		loc:      loc,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the scheduler loop. It returns when the context is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info().
		Str("daily_time", fmt.Sprintf("%02d:%02d", s.config.DailyHour, s.config.DailyMinute)).
		Msg("reminder scheduler started")

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-s.stopCh:
			s.logger.Info().Msg("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.checkAndRun(ctx)
		}
	}
}

// Stop stops the scheduler loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.running {
		s.running = false
		close(s.stopCh)
	}
	s.mu.Unlock()
}

func (s *Scheduler) checkAndRun(ctx context.Context) {
	now := time.Now().In(s.loc)
	today := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == today
	s.mu.Unlock()

	if alreadyRan {
		return
	}
	if now.Hour() != s.config.DailyHour || now.Minute() != s.config.DailyMinute {
		return
	}

	s.mu.Lock()
	s.lastRunDate = today
	s.mu.Unlock()

	s.RunNow(ctx)
}

// RunNow processes tomorrow's confirmed bookings immediately.
func (s *Scheduler) RunNow(ctx context.Context) {
	start := time.Now()
	tomorrow := models.DateOnly(time.Now().In(s.loc)).AddDate(0, 0, 1)

	bookings, err := s.repo.ListConfirmedBookingsOn(ctx, tomorrow)
	if err != nil {
		s.logger.Error().Err(err).Msg("fetch bookings for reminders")
		return
	}

	var sent, failed int
	for i := range bookings {
		select {
		case <-ctx.Done():
			s.logger.Info().Int("sent", sent).Msg("reminder pass interrupted")
			return
		default:
		}

		if err := s.remind(ctx, &bookings[i]); err != nil {
			failed++
			s.logger.Error().Err(err).Int64("booking_id", bookings[i].ID).Msg("send reminder")
			continue
		}
		sent++
	}

	s.logger.Info().
		Int("total", len(bookings)).
		Int("sent", sent).
		Int("failed", failed).
		Dur("duration", time.Since(start)).
		Msg("daily reminders processed")
}

func (s *Scheduler) remind(ctx context.Context, b *models.Booking) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	user, err := s.repo.GetUser(ctx, b.UserID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	svc, err := s.repo.GetService(ctx, b.ServiceID)
	if err != nil {
		return fmt.Errorf("resolve service: %w", err)
	}
	if err := s.notifier.Notify(ctx, user, svc, b); err != nil {
		return err
	}
	if err := s.repo.MarkReminderSent(ctx, b.ID); err != nil {
		return fmt.Errorf("mark sent: %w", err)
	}
	metrics.IncReminderSent()
	return nil
}
