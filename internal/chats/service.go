package chats

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/hermes-renovation/hermes/internal/authz"
	"github.com/hermes-renovation/hermes/internal/platform/httpx"
	"github.com/hermes-renovation/hermes/internal/shared"
)

// Service wraps chat business rules. Sessions are strictly owner-scoped;
// every message operation re-checks the owning session.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateSession opens a conversation for the caller.
func (s *Service) CreateSession(ctx context.Context, p authz.Principal, title string) (*Session, error) {
	if d := authz.Authorize(p, authz.KindChatSession, authz.ActionCreate, nil); !d.Allowed() {
		return nil, d.Err()
	}
	return s.repo.CreateSession(ctx, &Session{UserID: p.UserID, Title: title})
}

func (s *Service) ownedSession(ctx context.Context, p authz.Principal, id int64, action authz.Action) (*Session, error) {
	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	if d := authz.Authorize(p, authz.KindChatSession, action, &authz.ResourceRef{OwnerID: session.UserID}); !d.Allowed() {
		return nil, d.Err()
	}
	return session, nil
}

// GetSession retrieves one session with its messages. Both reads run
// concurrently; nothing is returned until the ownership check passes.
func (s *Service) GetSession(ctx context.Context, p authz.Principal, id int64) (*Session, []Message, error) {
	var (
		session  *Session
		messages []Message
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loaded, err := s.repo.GetSession(gctx, id)
		if err != nil {
			return err
		}
		session = loaded
		return nil
	})
	g.Go(func() error {
		loaded, err := s.repo.ListMessages(gctx, id)
		if err != nil {
			return err
		}
		messages = loaded
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, httpx.ErrNotFound
		}
		return nil, nil, err
	}
	if d := authz.Authorize(p, authz.KindChatSession, authz.ActionRetrieve, &authz.ResourceRef{OwnerID: session.UserID}); !d.Allowed() {
		return nil, nil, d.Err()
	}
	return session, messages, nil
}

// ListSessions returns the caller's conversations; staff see all.
func (s *Service) ListSessions(ctx context.Context, p authz.Principal, page, perPage int) ([]Session, int, error) {
	d := authz.Authorize(p, authz.KindChatSession, authz.ActionList, nil)
	if d == authz.DecisionEmpty {
		return []Session{}, 0, nil
	}
	if !d.Allowed() {
		return nil, 0, d.Err()
	}
	ownerID := p.UserID
	if p.IsStaff {
		ownerID = 0
	}
	return s.repo.ListSessions(ctx, ownerID, page, perPage)
}

// RenameSession retitles a session.
func (s *Service) RenameSession(ctx context.Context, p authz.Principal, id int64, title string) (*Session, error) {
	session, err := s.ownedSession(ctx, p, id, authz.ActionPartialUpdate)
	if err != nil {
		return nil, err
	}
	session.Title = title
	return s.repo.UpdateSession(ctx, session)
}

// DeleteSession removes a session and its messages.
func (s *Service) DeleteSession(ctx context.Context, p authz.Principal, id int64) error {
	if _, err := s.ownedSession(ctx, p, id, authz.ActionDestroy); err != nil {
		return err
	}
	return s.repo.DeleteSession(ctx, id)
}

// MessageInput carries one chat turn.
type MessageInput struct {
	Role     string
	Text     string
	ImageURL string
}

// AddMessage appends a message to a session the caller owns.
func (s *Service) AddMessage(ctx context.Context, p authz.Principal, sessionID int64, in MessageInput) (*Message, error) {
	if _, err := s.ownedSession(ctx, p, sessionID, authz.ActionAddMessage); err != nil {
		return nil, err
	}
	if in.Role != RoleUser && in.Role != RoleModel {
		return nil, httpx.ErrValidation
	}
	return s.repo.AddMessage(ctx, &Message{
		SessionID: sessionID,
		Role:      in.Role,
		Text:      in.Text,
		ImageURL:  in.ImageURL,
	})
}
