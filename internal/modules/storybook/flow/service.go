package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/ehon-backend/internal/data/repos/sessions"
	"github.com/yungbote/ehon-backend/internal/platform/logger"
)

// Service loads a session, fires one event under that session's lock and stores the result.
type Service struct {
	log        *logger.Logger
	store      sessions.Store
	controller *Controller

	locksMu sync.Mutex
	locks   map[string]*sessionLock
	group   singleflight.Group
}

// sessionLock lives in Service.locks only while someone holds or waits for it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(log *logger.Logger, store sessions.Store, controller *Controller) (*Service, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if store == nil || controller == nil {
		return nil, fmt.Errorf("flow service: store and controller required")
	}
	return &Service{
		log:        log.With("service", "FlowService"),
		store:      store,
		controller: controller,
		locks:      map[string]*sessionLock{},
	}, nil
}

func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

func (s *Service) Create(ctx context.Context) (View, error) {
	sess := NewSession(uuid.NewString(), s.controller.deps.Now())
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	s.log.Info("session created", "session_id", sess.ID)
	return Render(sess), nil
}

func (s *Service) Get(ctx context.Context, id string) (View, error) {
	sess, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	return Render(sess), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Fire runs ev against session id. Identical payload-free events submitted concurrently for the
// same session share one execution and one result.
func (s *Service) Fire(ctx context.Context, id string, ev Event) (View, error) {
	if !collapsible(ev.Type) {
		return s.fire(ctx, id, ev)
	}
	key := id + "|" + string(ev.Type)
	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.fire(ctx, id, ev)
	})
	if shared {
		s.log.Debug("duplicate submit collapsed", "session_id", id, "event", ev.Type)
	}
	if err != nil {
		return View{}, err
	}
	return v.(View), nil
}

func (s *Service) fire(ctx context.Context, id string, ev Event) (View, error) {
	unlock := s.lock(id)
	defer unlock()

	sess, err := s.load(ctx, id)
	if err != nil {
		return View{}, err
	}
	view, err := s.controller.Fire(ctx, sess, ev)
	if err != nil {
		return View{}, err
	}
	if err := s.save(ctx, sess); err != nil {
		return View{}, err
	}
	return view, nil
}

func collapsible(t EventType) bool {
	switch t {
	case EventSelect, EventAnswer, EventUpload, EventLookup:
		return false
	default:
		return true
	}
}

func (s *Service) load(ctx context.Context, id string) (*Session, error) {
	raw, err := s.store.Get(ctx, id)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	sess, err := DecodeSession(raw)
	if err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return sess, nil
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	raw, err := EncodeSession(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Put(ctx, sess.ID, raw); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
