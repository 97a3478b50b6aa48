package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/asagaorino0/formlink-api/internal/config"
	"github.com/asagaorino0/formlink-api/internal/forms"
	"github.com/asagaorino0/formlink-api/internal/line"
	"github.com/asagaorino0/formlink-api/internal/models"
	"github.com/asagaorino0/formlink-api/internal/repository"
)

// Notifier sends push messages to LINE users. Satisfied by *line.Client.
type Notifier interface {
	PushText(ctx context.Context, userID, text string) error
	PushCard(ctx context.Context, userID string, card line.Card) error
}

// LinkOptions controls optional behavior of a linkage run.
type LinkOptions struct {
	// Notify sends the prefill link back to the user over LINE push.
	Notify bool
	// AdditionalMessage is recorded with the submission.
	AdditionalMessage string
	// SessionKey dedupes notification sends across re-triggers of the
	// same session. Defaults to userID + form token.
	SessionKey string
}

// LinkResult is what a linkage run produced.
type LinkResult struct {
	PrefillURL string          `json:"prefill_url"`
	SubmitURL  string          `json:"submit_url"`
	Entries    *forms.EntryMap `json:"entries"`
	// Fallback is true when discovery failed and the well-known identity
	// field was used instead.
	Fallback bool `json:"fallback"`
	// NotifyQueued is true when a push send was started for this call.
	NotifyQueued bool `json:"notify_queued"`
}

// LinkageService orchestrates the full flow: normalize the form URL,
// discover its entries, build the prefill link, persist the user and
// submission, and optionally notify the user over LINE.
type LinkageService struct {
	cfg      *config.Config
	repos    *repository.Repositories
	inspect  *InspectService
	notifier Notifier
	latches  *LatchRegistry
	logger   *slog.Logger

	// inFlight counts notification goroutines still running, so idle
	// shutdown can wait for them.
	inFlight atomic.Int64

	// notifyDone is closed-loop test support; nil in production.
	notifyDone chan struct{}
}

// NotifyInFlight reports whether any notification sends are still running.
func (s *LinkageService) NotifyInFlight() bool {
	return s.inFlight.Load() > 0
}

// NewLinkageService creates a new linkage service.
func NewLinkageService(cfg *config.Config, repos *repository.Repositories, inspect *InspectService, notifier Notifier, logger *slog.Logger) *LinkageService {
	return &LinkageService{
		cfg:      cfg,
		repos:    repos,
		inspect:  inspect,
		notifier: notifier,
		latches:  NewLatchRegistry(),
		logger:   logger,
	}
}

// Link runs the linkage flow for an authenticated LINE profile. Discovery
// failure is recoverable: the flow falls back to the well-known identity
// field and still produces a usable prefill link. Persistence errors are
// not recoverable and surface to the caller.
func (s *LinkageService) Link(ctx context.Context, profile *line.Profile, rawFormURL string, opts LinkOptions) (*LinkResult, error) {
	if profile == nil || profile.UserID == "" {
		return nil, fmt.Errorf("linkage requires an authenticated profile")
	}

	ref, em, err := s.inspect.Inspect(ctx, rawFormURL)
	fallback := false
	if err != nil {
		s.logger.Warn("entry discovery failed, using fallback identity field",
			"url", rawFormURL,
			"error", err,
		)
		fallback = true
		em = &forms.EntryMap{
			IdentityField: s.cfg.FallbackEntryField,
			Title:         s.cfg.DefaultOGTitle,
			Description:   s.cfg.DefaultOGDesc,
			Entries:       []string{s.cfg.FallbackEntryField},
		}
	}

	prefillURL := forms.BuildPrefillURL(ref, em, profile.UserID)

	user, err := s.repos.LineUsers.Upsert(ctx, &models.LineUser{
		LineUserID:  profile.UserID,
		DisplayName: profile.DisplayName,
		PictureURL:  profile.PictureURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store line user: %w", err)
	}

	if err := s.repos.Submissions.Create(ctx, &models.FormSubmission{
		LineUserID:        user.LineUserID,
		FormURL:           ref.ViewURL,
		AdditionalMessage: opts.AdditionalMessage,
		Success:           true,
	}); err != nil {
		return nil, fmt.Errorf("failed to record submission: %w", err)
	}

	result := &LinkResult{
		PrefillURL: prefillURL,
		SubmitURL:  forms.SubmitURL(ref),
		Entries:    em,
		Fallback:   fallback,
	}

	if opts.Notify && s.cfg.LineNotifyEnabled {
		key := opts.SessionKey
		if key == "" {
			key = profile.UserID + "|" + ref.Token
		}
		if s.latches.Get(key).Trigger() {
			result.NotifyQueued = true
			s.inFlight.Add(1)
			go s.notifyBestEffort(key, profile.UserID, em.Title, prefillURL)
		} else {
			s.logger.Debug("notification already sent for session", "session", key)
		}
	}

	return result, nil
}

// notifyBestEffort pushes the prefill link to the user. Failures are
// logged, never propagated: the linkage result is already complete and a
// missed notification must not fail the request.
func (s *LinkageService) notifyBestEffort(latchKey, userID, title, prefillURL string) {
	defer func() {
		s.latches.Get(latchKey).Complete()
		s.inFlight.Add(-1)
		if s.notifyDone != nil {
			close(s.notifyDone)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	card := line.Card{
		Title:       title,
		Text:        s.cfg.DefaultOGDesc,
		ButtonLabel: "フォームを開く",
		ButtonURI:   prefillURL,
	}
	if err := s.notifier.PushCard(ctx, userID, card); err != nil {
		s.logger.Error("failed to push prefill link", "user_id", userID, "error", err)
	}
}
