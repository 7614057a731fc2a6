package notice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"enotice/internal/auth"
	"enotice/internal/storage"
)

var (
	ErrMissingFields   = errors.New("title and content are required")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("approval requires HOD privilege")
	ErrAlreadyApproved = errors.New("notice is already approved")
)

// RoleResolver yields the caller's current privilege; satisfied by auth.Service.
type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (bool, error)
}

// ApprovalNotifier is told about approvals after they commit; delivery is
// best-effort and never fails the workflow.
type ApprovalNotifier interface {
	NoticeApproved(ctx context.Context, n *Notice)
}

type FileUpload struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

type SubmitInput struct {
	Title   string
	Content string
	File    *FileUpload
}

// Service implements the submission and approval workflows.
type Service struct {
	notices  Repository
	roles    RoleResolver
	store    storage.Store
	notifier ApprovalNotifier
	logger   *zap.Logger
}

func NewService(notices Repository, roles RoleResolver, store storage.Store, notifier ApprovalNotifier, logger *zap.Logger) *Service {
	return &Service{notices: notices, roles: roles, store: store, notifier: notifier, logger: logger}
}

// resolvePrivilege reads the caller's isHOD flag at action time. A missing
// profile degrades to non-privileged with a logged diagnostic.
func (s *Service) resolvePrivilege(ctx context.Context, userID string) (bool, error) {
	isHOD, err := s.roles.ResolveRole(ctx, userID)
	if err != nil {
		if errors.Is(err, auth.ErrProfileNotFound) {
			s.logger.Warn("no profile record, treating as non-privileged", zap.String("uid", userID))
			return false, nil
		}
		return false, err
	}
	return isHOD, nil
}

// Submit validates the input, uploads the optional attachment, and writes the
// notice into the collection matching the submitter's privilege. A privileged
// submitter's notice is born approved, skipping the approval workflow.
func (s *Service) Submit(ctx context.Context, author Author, in SubmitInput) (*Notice, error) {
	if author.UserID == "" {
		return nil, ErrUnauthenticated
	}

	title := strings.TrimSpace(in.Title)
	content := strings.TrimSpace(in.Content)
	if title == "" || content == "" {
		return nil, ErrMissingFields
	}

	// Reject unsupported types before any write touches a collaborator.
	var class string
	if in.File != nil {
		var err error
		class, err = storage.Classify(in.File.ContentType)
		if err != nil {
			return nil, err
		}
	}

	isHOD, err := s.resolvePrivilege(ctx, author.UserID)
	if err != nil {
		return nil, fmt.Errorf("resolving submitter privilege: %w", err)
	}

	var attachment *Attachment
	if in.File != nil {
		obj, err := s.store.Upload(ctx, class, in.File.Name, in.File.ContentType, in.File.Reader)
		if err != nil {
			return nil, fmt.Errorf("uploading attachment: %w", err)
		}
		attachment = &Attachment{URL: obj.URL, MIMEClass: obj.MIMEClass}
	}

	status := StatusPending
	if isHOD {
		status = StatusApproved
	}

	n := &Notice{
		ID:         strconv.FormatInt(time.Now().UnixMilli(), 10),
		Title:      title,
		Content:    content,
		Timestamp:  time.Now(),
		Author:     author,
		Attachment: attachment,
		Status:     status,
		IsApproved: isHOD,
	}

	if err := s.notices.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("writing notice: %w", err)
	}

	s.logger.Info("notice submitted",
		zap.String("id", n.ID),
		zap.String("status", string(n.Status)),
		zap.String("uid", author.UserID),
	)
	return n, nil
}

// ListPending returns all unapproved notices; an empty collection is an empty
// list, not an error.
func (s *Service) ListPending(ctx context.Context) ([]Notice, error) {
	return s.notices.List(ctx, StatusPending)
}

// ListApproved returns the visible board.
func (s *Service) ListApproved(ctx context.Context) ([]Notice, error) {
	return s.notices.List(ctx, StatusApproved)
}

// Detail looks up a pending notice by id. Approved notices are deliberately out
// of scope here, matching the review-detail view this backs.
func (s *Service) Detail(ctx context.Context, id string) (*Notice, error) {
	return s.notices.Get(ctx, StatusPending, id)
}

// Approve moves a notice from the unapproved to the approved collection,
// stamping approval metadata. The move is not atomic, so it is written to be
// idempotent: the approved copy is upserted under the same id before the
// pending copy is deleted, and a retry that finds the approved copy already
// present just completes the deletion.
func (s *Service) Approve(ctx context.Context, callerID, id string) (*Notice, error) {
	isHOD, err := s.resolvePrivilege(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("resolving approver privilege: %w", err)
	}
	if !isHOD {
		return nil, ErrForbidden
	}

	pending, err := s.notices.Get(ctx, StatusPending, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("reading pending notice: %w", err)
		}
		// Not pending: either it was already approved (possibly by an
		// interrupted earlier move) or it never existed.
		if approved, getErr := s.notices.Get(ctx, StatusApproved, id); getErr == nil {
			return approved, ErrAlreadyApproved
		}
		return nil, ErrNotFound
	}

	now := time.Now()
	approved := *pending
	approved.Status = StatusApproved
	approved.IsApproved = true
	approved.ApprovedAt = &now

	if err := s.notices.Upsert(ctx, &approved); err != nil {
		return nil, fmt.Errorf("writing approved notice: %w", err)
	}
	if err := s.notices.Delete(ctx, StatusPending, id); err != nil && !errors.Is(err, ErrNotFound) {
		// The approved copy is durable; the stale pending copy will be
		// cleaned up by the next retry of this same approval.
		s.logger.Error("approved notice left duplicated in pending collection",
			zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("removing pending notice: %w", err)
	}

	s.logger.Info("notice approved", zap.String("id", id), zap.String("approver", callerID))
	if s.notifier != nil {
		s.notifier.NoticeApproved(ctx, &approved)
	}
	return &approved, nil
}
