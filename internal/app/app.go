package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"moodtrack/internal/config"
	"moodtrack/internal/encryption"
	"moodtrack/internal/reminder"
	"moodtrack/internal/remote"
	"moodtrack/internal/storage"
	"moodtrack/internal/tracker"
)

// Options carries the per-invocation inputs that do not live in the config file.
type Options struct {
	// Passphrase unlocks a protected age identity. Empty is fine for keys
	// generated without a passphrase.
	Passphrase string
	Clock      tracker.Clock
	IDs        tracker.IDGenerator
	// Stderr receives warnings and errors. Defaults to os.Stderr.
	Stderr io.Writer
}

// migrator is implemented by stores with a schema.
type migrator interface {
	Migrate() error
	CheckMigrations() error
}

// MoodApp is the application layer between the CLI and the tracker
// repositories. It constructs all dependencies from config, exposes
// high-level operations, and releases resources on Close.
type MoodApp struct {
	cfg     *config.Config
	clock   tracker.Clock
	base    tracker.KeyValueStore
	store   tracker.KeyValueStore
	remote  tracker.Remote
	session *tracker.SessionStore
	moods   *tracker.MoodRepository
	meds    *tracker.MedicationRepository
	prefs   *reminder.Preferences
	op      *Operation
	log     *slog.Logger
	logFile *os.File
	unsub   []func()
	closed  bool
}

// NewMoodApp creates a fully wired MoodApp from the given config.
// command identifies the CLI command being run (e.g. "log", "med add").
// The caller must call Close when done.
func NewMoodApp(ctx context.Context, cfg *config.Config, command string, opts Options) (*MoodApp, error) {
	clock := opts.Clock
	if clock == nil {
		clock = tracker.RealClock{}
	}
	ids := opts.IDs
	if ids == nil {
		ids = tracker.UUIDGenerator{}
	}

	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	op := NewOperation(command, clock.Now())
	slogger, logFile, err := newLogger(cfg.LogDir, op.ID, level, opts.Stderr)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	a := &MoodApp{cfg: cfg, clock: clock, op: op, log: slogger, logFile: logFile}

	base, err := storage.NewStoreFromConfig(ctx, cfg.Storage, clock)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("creating store: %w", err)
	}
	a.base = base

	if m, ok := base.(migrator); ok {
		// Migrating an up-to-date schema is a no-op; a dirty or newer schema
		// fails the check below.
		if err := m.Migrate(); err != nil {
			a.closeResources()
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		if err := m.CheckMigrations(); err != nil {
			a.closeResources()
			return nil, fmt.Errorf("database schema out of date: %w", err)
		}
	}

	store, err := wrapEncrypted(base, cfg.Encryption, opts.Passphrase, logger)
	if err != nil {
		a.closeResources()
		return nil, err
	}
	a.store = store

	rem, err := remote.NewRemoteFromConfig(cfg.Remote, clock, ids, logger)
	if err != nil {
		a.closeResources()
		return nil, fmt.Errorf("creating remote: %w", err)
	}
	a.remote = rem

	a.session = tracker.NewSessionStore(store, rem, logger)
	a.session.Restore(ctx)

	fallback := tracker.NewFallbackClient(rem, a.session,
		tracker.WithLocalData(cfg.Remote.UseLocalData),
		tracker.WithTimeout(time.Duration(cfg.Remote.TimeoutSeconds)*time.Second),
		tracker.WithFallbackLogger(logger),
	)
	a.moods = tracker.NewMoodRepository(store, fallback, clock, logger)
	a.meds = tracker.NewMedicationRepository(store, fallback, logger)
	a.prefs = reminder.NewPreferences(store, clock)
	a.unsub = append(a.unsub, a.meds.Subscribe(a.syncMedicationReminders(ctx)))

	slogger.Debug("operation started", "command", command, "storage", cfg.Storage.Type, "remote", cfg.Remote.Type,
		"authenticated", a.session.IsAuthenticated())
	return a, nil
}

// wrapEncrypted returns base wrapped in an EncryptedStore when an encryptor
// is configured with keys on disk. Without keys the session is stored as plaintext.
func wrapEncrypted(base tracker.KeyValueStore, cfg config.EncryptionConfig, passphrase string, logger tracker.Logger) (tracker.KeyValueStore, error) {
	enc, err := encryption.NewEncryptorFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return base, nil
	}
	if !enc.IsConfigured() {
		logger.Warn("encryption keys missing, session stored unencrypted", "public_key", cfg.PublicKeyPath)
		return base, nil
	}
	dec, err := enc.Unlock(passphrase)
	if err != nil {
		return nil, fmt.Errorf("unlocking encryption key: %w", err)
	}
	return storage.NewEncryptedStore(base, enc, dec), nil
}

// syncMedicationReminders keeps the scheduled reminder ids in step with the
// medication list while medication reminders are on.
func (a *MoodApp) syncMedicationReminders(ctx context.Context) func(tracker.Change) {
	return func(c tracker.Change) {
		var err error
		switch c.Kind {
		case tracker.ChangeDeleted:
			err = a.prefs.CancelMedication(ctx, c.ID)
		case tracker.ChangeCreated, tracker.ChangeUpdated:
			on, rerr := a.prefs.MedicationRemindersEnabled(ctx)
			if rerr != nil || !on {
				err = rerr
				break
			}
			if med := a.meds.Get(ctx, c.ID); med != nil {
				_, err = a.prefs.ScheduleMedication(ctx, *med)
			}
		}
		if err != nil {
			a.log.Warn("updating medication reminders failed", "medication_id", c.ID, "error", err)
		}
	}
}

// Config returns the configuration the app was built from.
func (a *MoodApp) Config() *config.Config { return a.cfg }

// Operation returns the record of the current invocation.
func (a *MoodApp) Operation() *Operation { return a.op }

// Today returns the current calendar date.
func (a *MoodApp) Today() string { return tracker.Today(a.clock) }

// Login authenticates with email and password.
func (a *MoodApp) Login(ctx context.Context, email, password string) (*tracker.User, error) {
	return a.session.Login(ctx, email, password)
}

// Register creates an account and signs in.
func (a *MoodApp) Register(ctx context.Context, email, password string) (*tracker.User, error) {
	return a.session.Register(ctx, email, password)
}

// LoginWithGoogle exchanges a Google id token for a session.
func (a *MoodApp) LoginWithGoogle(ctx context.Context, idToken string, profile tracker.Profile) (*tracker.User, error) {
	return a.session.LoginWithExternalProvider(ctx, idToken, profile)
}

func (a *MoodApp) Logout(ctx context.Context) {
	a.session.Logout(ctx)
}

// Session returns a snapshot of the current session.
func (a *MoodApp) Session() tracker.Session {
	return a.session.Current()
}

// MoodInput is what the user supplies when logging a mood.
type MoodInput struct {
	Date             string // YYYY-MM-DD; empty means today
	Score            int
	Name             string
	Emotions         []string
	Notes            string
	MedicationsTaken []int64
}

// LogMood stores the mood for in.Date, replacing an earlier entry for the
// same day. The medication snapshot covers every current medication.
func (a *MoodApp) LogMood(ctx context.Context, in MoodInput) (*tracker.MoodEntry, error) {
	date := in.Date
	if date == "" {
		date = a.Today()
	}

	emotions := make([]tracker.Emotion, 0, len(in.Emotions))
	for _, name := range in.Emotions {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		em, ok := tracker.EmotionByName(name)
		if !ok {
			return nil, &tracker.ValidationError{Field: "emotions", Reason: fmt.Sprintf("unknown emotion %q", name)}
		}
		emotions = append(emotions, em)
	}

	name := in.Name
	if name == "" {
		name = tracker.CategoryForScore(in.Score).Name
	}

	entry := tracker.MoodEntry{
		Date:             date,
		Mood:             tracker.Mood{Name: name, Score: in.Score},
		Emotions:         emotions,
		Notes:            strings.TrimSpace(in.Notes),
		MedicationsTaken: a.meds.SnapshotTaken(ctx, in.MedicationsTaken),
	}
	return a.moods.Save(ctx, entry)
}

func (a *MoodApp) Moods(ctx context.Context) []tracker.MoodEntry {
	return a.moods.List(ctx)
}

func (a *MoodApp) MoodOn(ctx context.Context, date string) *tracker.MoodEntry {
	return a.moods.GetByDate(ctx, date)
}

func (a *MoodApp) TodayMood(ctx context.Context) *tracker.MoodEntry {
	return a.moods.GetToday(ctx)
}

func (a *MoodApp) LatestMood(ctx context.Context) *tracker.MoodEntry {
	return a.moods.GetLatest(ctx)
}

// DeleteMood removes the entry with id and reports whether it existed.
func (a *MoodApp) DeleteMood(ctx context.Context, id int64) (bool, error) {
	return a.moods.Delete(ctx, id)
}

// MedicationStatus lists every current medication with whether entry
// recorded it as taken.
func (a *MoodApp) MedicationStatus(ctx context.Context, entry *tracker.MoodEntry) []tracker.MedicationSnapshot {
	return a.meds.StatusFor(ctx, entry)
}

// History groups every entry by month, newest month first.
func (a *MoodApp) History(ctx context.Context) []tracker.MonthGroup {
	return tracker.GroupByMonth(a.moods.List(ctx))
}

// MonthSeries returns the chart series for a month. When pad is non-negative
// the series is trimmed to the logged span widened by pad days.
func (a *MoodApp) MonthSeries(ctx context.Context, year int, month time.Month, pad int) []tracker.Point {
	points := tracker.SeriesForMonth(a.moods.List(ctx), year, month)
	if pad < 0 {
		return points
	}
	return tracker.TrimSeries(points, pad)
}

// YearSeries returns the monthly averages for year.
func (a *MoodApp) YearSeries(ctx context.Context, year int) []tracker.Point {
	return tracker.SeriesForYear(a.moods.List(ctx), year)
}

func (a *MoodApp) Medications(ctx context.Context) []tracker.Medication {
	return a.meds.List(ctx)
}

func (a *MoodApp) Medication(ctx context.Context, id int64) *tracker.Medication {
	return a.meds.Get(ctx, id)
}

func (a *MoodApp) AddMedication(ctx context.Context, med tracker.Medication) (*tracker.Medication, error) {
	return a.meds.Add(ctx, med)
}

func (a *MoodApp) UpdateMedication(ctx context.Context, med tracker.Medication) (*tracker.Medication, error) {
	return a.meds.Update(ctx, med)
}

func (a *MoodApp) DeleteMedication(ctx context.Context, id int64) error {
	return a.meds.Delete(ctx, id)
}

// Reminders returns the reminder preferences.
func (a *MoodApp) Reminders() *reminder.Preferences {
	return a.prefs
}

// SetMedicationReminders turns medication reminders on or off and
// schedules or cancels the reminder ids of every medication.
func (a *MoodApp) SetMedicationReminders(ctx context.Context, on bool) error {
	if err := a.prefs.SetMedicationReminders(ctx, on); err != nil {
		return err
	}
	for _, med := range a.meds.List(ctx) {
		var err error
		if on {
			_, err = a.prefs.ScheduleMedication(ctx, med)
		} else {
			err = a.prefs.CancelMedication(ctx, med.ID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// NewScheduler builds a reminder scheduler delivering to n, checking at the
// configured interval.
func (a *MoodApp) NewScheduler(n reminder.Notifier) *reminder.Scheduler {
	interval := time.Duration(a.cfg.Reminders.CheckIntervalSeconds) * time.Second
	return reminder.NewScheduler(a.prefs, a.meds, a.moods, n, a.clock, interval, &slogAdapter{l: a.log})
}

// ClearAllData deletes every key in the store: moods, medications, the
// session and reminder settings. Repositories fall back to their seed data.
func (a *MoodApp) ClearAllData(ctx context.Context) error {
	if err := a.store.Clear(ctx); err != nil {
		return fmt.Errorf("clearing data: %w", err)
	}
	a.log.Warn("all data cleared")
	a.session.Logout(ctx)
	a.moods.NotifyReset()
	a.meds.NotifyReset()
	return nil
}

// Close logs the outcome of the operation and releases the store and log
// file. Calls after the first do nothing.
func (a *MoodApp) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	for _, fn := range a.unsub {
		fn()
	}
	if a.op.Failed() {
		a.log.Error("operation failed", "command", a.op.Command, "error", a.op.Err,
			"elapsed", a.op.Elapsed(a.clock.Now()))
	} else {
		a.log.Debug("operation finished", "command", a.op.Command, "elapsed", a.op.Elapsed(a.clock.Now()))
	}
	return a.closeResources()
}

func (a *MoodApp) closeResources() error {
	var firstErr error
	if c, ok := a.base.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = fmt.Errorf("closing store: %w", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}

// Setup prepares a fresh installation: it generates the encryption keys
// and brings a SQLite schema up to date. Existing keys are kept.
func Setup(ctx context.Context, cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc != nil && !enc.IsConfigured() {
		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating encryption keys: %w", err)
		}
	}

	store, err := storage.NewStoreFromConfig(ctx, cfg.Storage, tracker.RealClock{})
	if err != nil {
		return fmt.Errorf("creating store: %w", err)
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}
	if m, ok := store.(migrator); ok {
		if err := m.Migrate(); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
	}
	return nil
}
