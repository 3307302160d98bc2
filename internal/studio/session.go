package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fpang/idea-studio/internal/audit"
	"github.com/fpang/idea-studio/internal/domain"
	"github.com/fpang/idea-studio/internal/ident"
	"github.com/fpang/idea-studio/internal/jsonutil"
	"github.com/fpang/idea-studio/internal/store"
	"github.com/rs/zerolog/log"
)

// persistIdeas snapshots the idea list. Failures are logged only. Snapshots
// are taken and written under persistMu, so the last write always carries
// the latest list.
func (s *Studio) persistIdeas(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	s.mu.Lock()
	ideas := cloneIdeas(s.ideas)
	s.mu.Unlock()
	if ideas == nil {
		ideas = []domain.Idea{}
	}
	s.persist(ctx, IdeasKey, ideas)
}

func (s *Studio) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to encode snapshot")
		return
	}
	if err := s.store.Put(ctx, key, string(data)); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Failed to save snapshot")
		return
	}
	log.Debug().Str("key", key).Int("bytes", len(data)).Msg("Snapshot saved")
}

// Restore loads the last session. A missing key means there was no prior
// session; a corrupt value is logged and skipped. A key that cannot be read
// is logged and the remaining keys are still loaded; the read failures are
// returned together.
func (s *Studio) Restore(ctx context.Context) error {
	var errs []error

	ideas, found, err := load[[]domain.Idea](ctx, s.store, IdeasKey)
	if err != nil {
		log.Warn().Err(err).Str("key", IdeasKey).Msg("Failed to read snapshot")
		errs = append(errs, err)
	}
	if found {
		for i := range ideas {
			if ideas[i].ID == "" {
				ideas[i].ID = ident.NewIdeaID()
			}
		}
		s.mu.Lock()
		s.ideas = ideas
		s.mu.Unlock()
		log.Debug().Int("count", len(ideas)).Msg("Ideas restored")
	}

	user, found, err := load[domain.User](ctx, s.store, UserKey)
	if err != nil {
		log.Warn().Err(err).Str("key", UserKey).Msg("Failed to read snapshot")
		errs = append(errs, err)
	}
	if found && user.Email != "" {
		s.mu.Lock()
		s.user = &user
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

func load[T any](ctx context.Context, st store.Store, key string) (T, bool, error) {
	var zero T
	raw, ok, err := st.Get(ctx, key)
	if err != nil {
		return zero, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok {
		return zero, false, nil
	}
	v, err := jsonutil.ParseJSON[T](raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Ignoring corrupt snapshot")
		return zero, false, nil
	}
	return v, true, nil
}

// Login records the user, persists the identity and publishes a login audit
// event in the background. The audit outcome never affects the result.
func (s *Studio) Login(ctx context.Context, name, email string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: missing user", domain.ErrInputValidation)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return domain.User{}, fmt.Errorf("%w: invalid email %q", domain.ErrInputValidation, email)
	}

	user := domain.User{Name: name, Email: addr.Address}
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	s.persist(ctx, UserKey, user)

	event := audit.Event{Type: audit.EventLogin, User: user.Name, Email: user.Email, At: time.Now().UTC()}
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		auditCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.auditTimeout)
		defer cancel()
		if err := s.publisher.Publish(auditCtx, event); err != nil {
			log.Warn().Err(err).Str("user", user.Name).Msg("Failed to publish login event")
		}
	}()

	log.Info().Str("user", user.Name).Msg("Logged in")
	return user, nil
}
