package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			if log.Action != domain.AuditActionPaymentSubmit {
				t.Errorf("expected PAYMENT_SUBMIT, got %s", log.Action)
			}
			close(done)
			return nil
		},
	)

	userID := "user-1"
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		UserID:       &userID,
		ClientID:     "client-1",
		Action:       domain.AuditActionPaymentSubmit,
		ResourceType: "dialog",
		ResourceID:   uuid.New().String(),
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_SurvivesRequestCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, newTestLogger())

	ctx, cancel := context.WithCancel(context.Background())
	var got *domain.AuditLog
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			assert.NoError(t, ctx.Err())
			got = log
			return errors.New("db down")
		},
	)

	svc.Log(ctx, &domain.AuditLog{Action: domain.AuditActionDialogOpen, ResourceType: "dialog"})
	cancel()
	svc.Wait()

	// ID and timestamp are filled in when missing.
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, newTestLogger())

	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ClientID:     "client-1",
		Action:       domain.AuditActionDialogClose,
		ResourceType: "dialog",
		IPAddress:    "127.0.0.1",
	})
	svc.Wait()
}
