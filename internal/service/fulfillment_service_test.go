package service

import (
	"context"
	"errors"
	"testing"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports/mocks"
	"mpesa-paywall/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newFulfillmentFixture(t *testing.T) (*FulfillmentServiceImpl, *mocks.MockFulfillmentRepository) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFulfillmentRepository(ctrl)
	return NewFulfillmentService(repo, nil, newTestLogger()), repo
}

func TestFulfillmentService_NoPurpose(t *testing.T) {
	svc, _ := newFulfillmentFixture(t)
	require.NoError(t, svc.Fulfill(context.Background(), &domain.Completion{ActionType: domain.ActionContinueAccess}))
}

func TestFulfillmentService_Advertisement(t *testing.T) {
	svc, repo := newFulfillmentFixture(t)
	ctx := context.Background()
	txID := uuid.New()

	repo.EXPECT().ActivateAdvertisement(ctx, "ad-1", &txID).Return(nil)

	err := svc.Fulfill(ctx, &domain.Completion{
		DialogID:      uuid.New(),
		Amount:        200,
		TransactionID: &txID,
		Purpose:       domain.Purpose{Kind: domain.PurposeAdvertisement, ReferenceID: "ad-1"},
	})
	require.NoError(t, err)
}

func TestFulfillmentService_JobApplicationFee(t *testing.T) {
	txID := uuid.New()
	tests := []struct {
		name       string
		completion domain.Completion
		wantFee    int64
	}{
		{
			name: "free tier",
			completion: domain.Completion{
				Amount: 0, Bypass: domain.BypassFree,
				Payer:   domain.Payer{UserID: "user-1", UserEmail: "a@b.co"},
				Purpose: domain.Purpose{Kind: domain.PurposeJobApplication, ReferenceID: "job-1"},
			},
			wantFee: 0,
		},
		{
			name: "whitelisted pays nothing",
			completion: domain.Completion{
				Amount: 150, Bypass: domain.BypassWhitelistEmail,
				Purpose: domain.Purpose{Kind: domain.PurposeJobApplication, ReferenceID: "job-1"},
			},
			wantFee: 0,
		},
		{
			name: "charged",
			completion: domain.Completion{
				Amount: 150, TransactionID: &txID,
				Purpose: domain.Purpose{Kind: domain.PurposeJobApplication, ReferenceID: "job-1"},
			},
			wantFee: 150,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newFulfillmentFixture(t)
			repo.EXPECT().RecordJobApplication(gomock.Any(), gomock.Any()).DoAndReturn(
				func(_ context.Context, app *domain.JobApplication) error {
					assert.Equal(t, "job-1", app.JobID)
					assert.Equal(t, tt.wantFee, app.ApplicationFee)
					assert.Equal(t, tt.completion.TransactionID, app.TransactionID)
					return nil
				})

			require.NoError(t, svc.Fulfill(context.Background(), &tt.completion))
		})
	}
}

func TestFulfillmentService_Errors(t *testing.T) {
	svc, repo := newFulfillmentFixture(t)
	ctx := context.Background()

	err := svc.Fulfill(ctx, &domain.Completion{Purpose: domain.Purpose{Kind: domain.PurposeAdvertisement}})
	assertAppError(t, err, apperror.CodeInvalidRequest)

	err = svc.Fulfill(ctx, &domain.Completion{Purpose: domain.Purpose{Kind: "coupon", ReferenceID: "x"}})
	assertAppError(t, err, apperror.CodeInvalidRequest)

	txID := uuid.New()
	repo.EXPECT().ActivateAdvertisement(ctx, "ad-404", gomock.Any()).Return(errors.New("advertisement not found: ad-404"))
	err = svc.Fulfill(ctx, &domain.Completion{
		TransactionID: &txID,
		Purpose:       domain.Purpose{Kind: domain.PurposeAdvertisement, ReferenceID: "ad-404"},
	})
	assertAppError(t, err, apperror.CodeStoreUnavailable)
}

func TestFulfillmentService_RefusesUnpaidCompletions(t *testing.T) {
	txID := uuid.New()
	ad := domain.Purpose{Kind: domain.PurposeAdvertisement, ReferenceID: "ad-8"}
	tests := []struct {
		name       string
		completion domain.Completion
	}{
		{"paid session from another ad", domain.Completion{Bypass: domain.BypassPaidSession, Purpose: ad}},
		{"caller supplied zero amount", domain.Completion{Bypass: domain.BypassFree, ClientPriced: true, Purpose: ad}},
		{"caller supplied amount", domain.Completion{Amount: 1, TransactionID: &txID, ClientPriced: true, Purpose: ad}},
		{"no transaction", domain.Completion{Amount: 200, Purpose: ad}},
		{"paid session job application", domain.Completion{
			Bypass:  domain.BypassPaidSession,
			Purpose: domain.Purpose{Kind: domain.PurposeJobApplication, ReferenceID: "job-1"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The repository mock has no expectations; any write fails the test.
			svc, _ := newFulfillmentFixture(t)
			err := svc.Fulfill(context.Background(), &tt.completion)
			assertAppError(t, err, apperror.CodeNotAuthorized)
		})
	}
}
