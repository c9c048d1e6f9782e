package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"real-estate-marketplace/internal/config"
	"real-estate-marketplace/internal/logger"
	"real-estate-marketplace/internal/metrics"
	"real-estate-marketplace/internal/models"
	"real-estate-marketplace/internal/savedsearch"
	"real-estate-marketplace/internal/search"

	"github.com/robfig/cron/v3"
)

// Alert carries the new matches of one saved search to a Notifier.
type Alert struct {
	Search  savedsearch.SavedSearch `json:"search"`
	Matches []models.Property      `json:"matches"`
}

// Notifier delivers alerts. Delivery itself is outside this service.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the log
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	ids := make([]int64, 0, len(alert.Matches))
	for _, p := range alert.Matches {
		ids = append(ids, p.ID)
	}
	n.log.Info("Saved search alert", logger.Fields{
		"saved_search_id": alert.Search.ID,
		"name":            alert.Search.Name,
		"frequency":       string(alert.Search.Frequency),
		"new_matches":     len(alert.Matches),
		"property_ids":    ids,
	})
	return nil
}

// PropertySource supplies the listings alerts are evaluated against.
type PropertySource interface {
	All() []models.Property
}

// RunResult summarizes one alert run
type RunResult struct {
	Frequency savedsearch.Frequency `json:"frequency"`
	Evaluated int                   `json:"evaluated"`
	Notified  int                   `json:"notified"`
	Failed    int                   `json:"failed"`
}

// Scheduler runs saved-search alerts on a daily cron schedule
type Scheduler struct {
	cron     *cron.Cron
	engine   *search.Engine
	store    *savedsearch.Store
	source   PropertySource
	notifier Notifier
	config   config.AlertsConfig
	log      logger.Logger
	now      func() time.Time

	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(cfg config.AlertsConfig, loc *time.Location, engine *search.Engine, store *savedsearch.Store,
	source PropertySource, notifier Notifier, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		engine:   engine,
		store:    store,
		source:   source,
		notifier: notifier,
		config:   cfg,
		log:      log.WithFields(logger.Fields{"component": "scheduler"}),
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// SetClock replaces the time source (tests only)
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Enabled {
		s.log.Info("Alerts are disabled in configuration", nil)
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.RunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		s.log.Info("Starting alert job", nil)
		for _, res := range s.runDue(context.Background()) {
			s.log.Info("Alert job completed", logger.Fields{
				"frequency": string(res.Frequency),
				"evaluated": res.Evaluated,
				"notified":  res.Notified,
				"failed":    res.Failed,
			})
		}
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cron.Start()
	s.isRunning = true
	s.log.Info("Scheduler started", logger.Fields{"run_time": s.config.RunTime, "cron": cronSpec})

	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		<-s.cron.Stop().Done()
		s.isRunning = false
		s.log.Info("Scheduler stopped", nil)
	}
}

// runDue runs daily alerts, and weekly alerts on the configured weekday
func (s *Scheduler) runDue(ctx context.Context) []RunResult {
	results := []RunResult{s.RunNow(ctx, savedsearch.FrequencyDaily)}
	if day, ok := parseWeekday(s.config.WeeklyDay); ok && s.now().Weekday() == day {
		results = append(results, s.RunNow(ctx, savedsearch.FrequencyWeekly))
	}
	return results
}

// RunNow evaluates every enabled saved search of the given frequency
// immediately (for manual trigger)
func (s *Scheduler) RunNow(ctx context.Context, freq savedsearch.Frequency) RunResult {
	result := RunResult{Frequency: freq}
	listings := s.source.All()
	now := s.now()

	for _, saved := range s.store.List() {
		if !saved.EmailAlertsEnabled || saved.Frequency != freq {
			continue
		}
		result.Evaluated++

		matches := NewMatches(s.engine, listings, saved)
		if len(matches) == 0 {
			continue
		}

		err := s.notifier.Notify(ctx, Alert{Search: saved, Matches: matches})
		if err != nil {
			result.Failed++
			metrics.AlertsFailed.WithLabelValues(string(freq)).Inc()
			s.log.WithError(err).Error("Failed to deliver alert", logger.Fields{"saved_search_id": saved.ID})
			continue
		}

		s.store.MarkNotified(saved.ID, now, len(matches))
		result.Notified++
		metrics.AlertsSent.WithLabelValues(string(freq)).Inc()
	}

	return result
}

// NewMatches replays a saved search and keeps the listings added after its
// last notification, or after its creation when it was never notified.
func NewMatches(engine *search.Engine, listings []models.Property, saved savedsearch.SavedSearch) []models.Property {
	since := saved.CreatedAt
	if saved.LastNotifiedAt != nil {
		since = *saved.LastNotifiedAt
	}

	replay := savedsearch.Replay{Query: saved.Query, Filters: saved.Filters}
	results := engine.Search(listings, replay.Criteria(), search.DefaultSort)

	fresh := results[:0]
	for _, p := range results {
		if p.DateAdded.After(since) {
			fresh = append(fresh, p)
		}
	}
	return fresh
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "08:00" -> "0 8 * * *"
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 && hour >= 0 && hour < 24 && minute >= 0 && minute < 60 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	s.log.Warn("Failed to parse run time, using default 08:00", logger.Fields{"run_time": timeStr})
	return "0 8 * * *"
}

func parseWeekday(s string) (time.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == s {
			return d, true
		}
	}
	return 0, false
}
