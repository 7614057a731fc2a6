package notice

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"enotice/internal/auth"
	"enotice/internal/storage"
)

// ── mocks ──

type mockRepository struct {
	pending  map[string]Notice
	approved map[string]Notice

	failInsert error
	failUpsert error
	failDelete error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		pending:  make(map[string]Notice),
		approved: make(map[string]Notice),
	}
}

func (m *mockRepository) bucket(status Status) map[string]Notice {
	if status == StatusApproved {
		return m.approved
	}
	return m.pending
}

func (m *mockRepository) Get(_ context.Context, status Status, id string) (*Notice, error) {
	if n, ok := m.bucket(status)[id]; ok {
		n.Status = status
		return &n, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) List(_ context.Context, status Status) ([]Notice, error) {
	out := []Notice{}
	for _, n := range m.bucket(status) {
		n.Status = status
		out = append(out, n)
	}
	return out, nil
}

func (m *mockRepository) Insert(_ context.Context, n *Notice) error {
	if m.failInsert != nil {
		return m.failInsert
	}
	n.IsApproved = n.Status == StatusApproved
	m.bucket(n.Status)[n.ID] = *n
	return nil
}

func (m *mockRepository) Upsert(_ context.Context, n *Notice) error {
	if m.failUpsert != nil {
		return m.failUpsert
	}
	n.IsApproved = n.Status == StatusApproved
	m.bucket(n.Status)[n.ID] = *n
	return nil
}

func (m *mockRepository) Delete(_ context.Context, status Status, id string) error {
	if m.failDelete != nil {
		return m.failDelete
	}
	if _, ok := m.bucket(status)[id]; !ok {
		return ErrNotFound
	}
	delete(m.bucket(status), id)
	return nil
}

type mockRoleResolver struct {
	hods map[string]bool
}

func (m *mockRoleResolver) ResolveRole(_ context.Context, userID string) (bool, error) {
	isHOD, ok := m.hods[userID]
	if !ok {
		return false, auth.ErrProfileNotFound
	}
	return isHOD, nil
}

type mockStore struct {
	uploads    int
	failUpload error
}

func (m *mockStore) Upload(_ context.Context, class, name, contentType string, _ io.Reader) (*storage.Object, error) {
	if m.failUpload != nil {
		return nil, m.failUpload
	}
	m.uploads++
	return &storage.Object{
		ID:          "file-1",
		Name:        name,
		URL:         "http://localhost:8080/files/file-1",
		MIMEClass:   class,
		ContentType: contentType,
	}, nil
}

func (m *mockStore) Open(_ context.Context, _ string) (io.ReadCloser, *storage.Object, error) {
	return nil, nil, storage.ErrFileNotFound
}

type recordingNotifier struct {
	approved []string
}

func (r *recordingNotifier) NoticeApproved(_ context.Context, n *Notice) {
	r.approved = append(r.approved, n.ID)
}

func setupService() (*Service, *mockRepository, *mockStore, *recordingNotifier) {
	repo := newMockRepository()
	store := &mockStore{}
	notif := &recordingNotifier{}
	roles := &mockRoleResolver{hods: map[string]bool{
		"member-1": false,
		"hod-1":    true,
	}}
	svc := NewService(repo, roles, store, notif, zap.NewNop())
	return svc, repo, store, notif
}

// ── submission ──

func TestSubmit_UnprivilegedGoesToPending(t *testing.T) {
	svc, repo, _, _ := setupService()

	n, err := svc.Submit(context.Background(), Author{UserID: "member-1", Email: "a@x.com"}, SubmitInput{
		Title:   "Holiday",
		Content: "Office closed Friday",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, n.Status)
	assert.False(t, n.IsApproved)
	assert.Contains(t, repo.pending, n.ID)
	assert.NotContains(t, repo.approved, n.ID)
}

func TestSubmit_PrivilegedIsBornApproved(t *testing.T) {
	svc, repo, _, _ := setupService()

	n, err := svc.Submit(context.Background(), Author{UserID: "hod-1", Email: "hod@x.com"}, SubmitInput{
		Title:   "Exam schedule",
		Content: "Published on the portal",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, n.Status)
	assert.True(t, n.IsApproved)
	assert.Contains(t, repo.approved, n.ID)
	assert.NotContains(t, repo.pending, n.ID)
}

func TestSubmit_BlankFieldsRejected(t *testing.T) {
	svc, repo, _, _ := setupService()

	for _, in := range []SubmitInput{
		{Title: "", Content: "body"},
		{Title: "title", Content: ""},
		{Title: "   ", Content: "\t\n"},
	} {
		_, err := svc.Submit(context.Background(), Author{UserID: "member-1"}, in)
		assert.ErrorIs(t, err, ErrMissingFields)
	}
	assert.Empty(t, repo.pending)
	assert.Empty(t, repo.approved)
}

func TestSubmit_WithoutSessionRejected(t *testing.T) {
	svc, repo, _, _ := setupService()

	_, err := svc.Submit(context.Background(), Author{}, SubmitInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, repo.pending)
}

func TestSubmit_MissingProfileDegradesToUnprivileged(t *testing.T) {
	svc, repo, _, _ := setupService()

	n, err := svc.Submit(context.Background(), Author{UserID: "ghost", Email: "g@x.com"}, SubmitInput{
		Title:   "t",
		Content: "c",
	})
	require.NoError(t, err)
	assert.False(t, n.IsApproved)
	assert.Contains(t, repo.pending, n.ID)
}

func TestSubmit_UnsupportedFileRejectedBeforeAnyWrite(t *testing.T) {
	svc, repo, store, _ := setupService()

	_, err := svc.Submit(context.Background(), Author{UserID: "member-1"}, SubmitInput{
		Title:   "t",
		Content: "c",
		File: &FileUpload{
			Name:        "report.docx",
			ContentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
			Reader:      strings.NewReader("doc"),
		},
	})
	assert.ErrorIs(t, err, storage.ErrUnsupportedType)
	assert.Zero(t, store.uploads)
	assert.Empty(t, repo.pending)
	assert.Empty(t, repo.approved)
}

func TestSubmit_UploadFailureAbortsSubmission(t *testing.T) {
	svc, repo, store, _ := setupService()
	store.failUpload = errors.New("bucket unavailable")

	_, err := svc.Submit(context.Background(), Author{UserID: "member-1"}, SubmitInput{
		Title:   "t",
		Content: "c",
		File: &FileUpload{
			Name:        "poster.png",
			ContentType: "image/png",
			Reader:      strings.NewReader("png"),
		},
	})
	require.Error(t, err)
	assert.Empty(t, repo.pending)
	assert.Empty(t, repo.approved)
}

func TestSubmit_AttachmentCarriesDurableURLAndClass(t *testing.T) {
	svc, _, _, _ := setupService()

	n, err := svc.Submit(context.Background(), Author{UserID: "member-1"}, SubmitInput{
		Title:   "t",
		Content: "c",
		File: &FileUpload{
			Name:        "circular.pdf",
			ContentType: "application/pdf",
			Reader:      strings.NewReader("pdf"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, n.Attachment)
	assert.Equal(t, storage.ClassPDF, n.Attachment.MIMEClass)
	assert.Equal(t, "http://localhost:8080/files/file-1", n.Attachment.URL)
}

// ── approval ──

func seedPending(repo *mockRepository, id string) {
	repo.pending[id] = Notice{
		ID:      id,
		Title:   "Holiday",
		Content: "Office closed Friday",
		Author:  Author{UserID: "member-1", Email: "a@x.com"},
	}
}

func TestApprove_MovesNoticeAndStampsMetadata(t *testing.T) {
	svc, repo, _, notif := setupService()
	seedPending(repo, "100")

	n, err := svc.Approve(context.Background(), "hod-1", "100")
	require.NoError(t, err)

	assert.NotContains(t, repo.pending, "100")
	require.Contains(t, repo.approved, "100")
	assert.True(t, n.IsApproved)
	require.NotNil(t, n.ApprovedAt)
	assert.False(t, n.ApprovedAt.IsZero())
	assert.Equal(t, []string{"100"}, notif.approved)
}

func TestApprove_MissingIDFailsWithoutMutation(t *testing.T) {
	svc, repo, _, _ := setupService()
	seedPending(repo, "100")

	_, err := svc.Approve(context.Background(), "hod-1", "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, repo.pending, 1)
	assert.Empty(t, repo.approved)
}

func TestApprove_RequiresPrivilege(t *testing.T) {
	svc, repo, _, _ := setupService()
	seedPending(repo, "100")

	_, err := svc.Approve(context.Background(), "member-1", "100")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, repo.pending, "100")
	assert.Empty(t, repo.approved)
}

func TestApprove_AlreadyApprovedReportedWithoutMutation(t *testing.T) {
	svc, repo, _, _ := setupService()
	repo.approved["100"] = Notice{ID: "100", Title: "Holiday", IsApproved: true}

	_, err := svc.Approve(context.Background(), "hod-1", "100")
	assert.ErrorIs(t, err, ErrAlreadyApproved)
	assert.Empty(t, repo.pending)
	assert.Len(t, repo.approved, 1)
}

func TestApprove_RetryAfterPartialMoveCompletesDeletion(t *testing.T) {
	// Simulates a crash between the approved write and the pending delete:
	// the notice sits in both collections.
	svc, repo, _, _ := setupService()
	seedPending(repo, "100")
	repo.approved["100"] = Notice{ID: "100", Title: "Holiday", IsApproved: true}

	n, err := svc.Approve(context.Background(), "hod-1", "100")
	require.NoError(t, err)

	assert.NotContains(t, repo.pending, "100")
	assert.Contains(t, repo.approved, "100")
	assert.True(t, n.IsApproved)
}

func TestApprove_DeleteFailureSurfacesDiagnostic(t *testing.T) {
	svc, repo, _, _ := setupService()
	seedPending(repo, "100")
	repo.failDelete = errors.New("transport error")

	_, err := svc.Approve(context.Background(), "hod-1", "100")
	require.Error(t, err)
	// The approved copy is durable; the pending copy remains for the retry.
	assert.Contains(t, repo.approved, "100")
	assert.Contains(t, repo.pending, "100")
}

// ── listing and detail ──

func TestListPending_EmptyCollectionIsEmptyList(t *testing.T) {
	svc, _, _, _ := setupService()

	notices, err := svc.ListPending(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, notices)
	assert.Empty(t, notices)
}

func TestDetail_ReadsPendingCollectionOnly(t *testing.T) {
	svc, repo, _, _ := setupService()
	seedPending(repo, "100")
	repo.approved["200"] = Notice{ID: "200", IsApproved: true}

	n, err := svc.Detail(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "Holiday", n.Title)

	_, err = svc.Detail(context.Background(), "200")
	assert.ErrorIs(t, err, ErrNotFound)
}

// ── end-to-end scenario from the workflow contract ──

func TestScenario_SubmitThenApprove(t *testing.T) {
	svc, repo, _, _ := setupService()

	n, err := svc.Submit(context.Background(), Author{UserID: "member-1", Email: "a@x.com"}, SubmitInput{
		Title:   "Holiday",
		Content: "Office closed Friday",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.pending, n.ID)
	assert.False(t, repo.pending[n.ID].IsApproved)
	assert.NotContains(t, repo.approved, n.ID)

	approved, err := svc.Approve(context.Background(), "hod-1", n.ID)
	require.NoError(t, err)
	assert.NotContains(t, repo.pending, n.ID)
	assert.Contains(t, repo.approved, n.ID)
	assert.True(t, approved.IsApproved)
	require.NotNil(t, approved.ApprovedAt)
}
