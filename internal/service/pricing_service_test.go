package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mpesa-paywall/internal/core/domain"
	"mpesa-paywall/internal/core/ports/mocks"
	"mpesa-paywall/internal/metrics"
	"mpesa-paywall/pkg/apperror"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type pricingFixture struct {
	svc      *PricingServiceImpl
	pricing  *mocks.MockPricingRepository
	settings *mocks.MockSettingsRepository
	sleeper  *recordingSleeper
	metrics  *metrics.Metrics
}

func newPricingFixture(t *testing.T) *pricingFixture {
	ctrl := gomock.NewController(t)
	f := &pricingFixture{
		pricing:  mocks.NewMockPricingRepository(ctrl),
		settings: mocks.NewMockSettingsRepository(ctrl),
		sleeper:  &recordingSleeper{},
		metrics:  metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewPricingService(f.pricing, f.settings, 5, time.Second, f.metrics, newTestLogger())
	f.svc.policy.Sleep = f.sleeper.Sleep
	return f
}

func activeSettings() *domain.GlobalPaymentSettings {
	return &domain.GlobalPaymentSettings{IsPaused: false}
}

func TestPricingService_Quote_FirstAttempt(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{
		ServiceType: "plumbing", ContinueAmount: 50, VideosAmount: 30,
	}, nil)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionViewVideos)
	require.NoError(t, err)
	assert.Equal(t, int64(30), q.Amount)
	assert.False(t, q.Paused)
	assert.True(t, q.PaymentRequired())
	assert.Equal(t, 1, q.Attempts)
	assert.Empty(t, f.sleeper.Waits())
}

func TestPricingService_Quote_RetriesUntilStoreWarm(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil).Times(3)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(nil, nil).Times(2)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ContinueAmount: 100}, nil)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(100), q.Amount)
	assert.Equal(t, 3, q.Attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.sleeper.Waits())
}

func TestPricingService_Quote_MissingPricingIsConfigurationError(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil).Times(5)
	f.pricing.EXPECT().GetByServiceType(ctx, "blog").Return(nil, nil).Times(5)

	q, err := f.svc.Quote(ctx, "blog", domain.ActionContinueAccess)
	assert.Nil(t, q)
	assertAppError(t, err, apperror.CodePricingMissing)
	assert.Contains(t, err.Error(), `"blog"`)

	assert.Equal(t,
		[]time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 4 * time.Second},
		f.sleeper.Waits())
	assert.Equal(t, float64(1), promtest.ToFloat64(f.metrics.ConfigErrorsTotal.WithLabelValues("blog")))
}

func TestPricingService_Quote_StoreErrorsNeverFailOpen(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(nil, errors.New("connection refused")).Times(5)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(nil, errors.New("connection refused")).Times(5)

	_, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	assertAppError(t, err, apperror.CodePricingMissing)
}

func TestPricingService_Quote_RecoversAfterTransientError(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(nil, errors.New("timeout"))
	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ContinueAmount: 20}, nil).Times(2)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(20), q.Amount)
	assert.Equal(t, 2, q.Attempts)
}

func TestPricingService_Quote_ZeroAmountIsFree(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ContinueAmount: 0, VideosAmount: 40}, nil)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.Amount)
	assert.False(t, q.PaymentRequired())
}

func TestPricingService_Quote_PausedWinsOverMissingPricing(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(&domain.GlobalPaymentSettings{IsPaused: true}, nil).Times(5)
	f.pricing.EXPECT().GetByServiceType(ctx, "blog").Return(nil, nil).Times(5)

	q, err := f.svc.Quote(ctx, "blog", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.True(t, q.Paused)
	assert.False(t, q.PaymentRequired())
}

func TestPricingService_Quote_PausedWithPrice(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(&domain.GlobalPaymentSettings{IsPaused: true}, nil)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ContinueAmount: 500}, nil)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.True(t, q.Paused)
	assert.Equal(t, int64(500), q.Amount)
	assert.False(t, q.PaymentRequired())
}

func TestPricingService_Quote_MissingSettingsReadsAsNotPaused(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(nil, nil).Times(5)
	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ContinueAmount: 50}, nil).Times(5)

	q, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	require.NoError(t, err)
	assert.False(t, q.Paused)
	assert.Equal(t, int64(50), q.Amount)
	assert.Equal(t, 5, q.Attempts)
}

func TestPricingService_Quote_DedicatedLookup(t *testing.T) {
	tests := []struct {
		name   string
		action domain.ActionType
		amount *int64
		want   int64
	}{
		{"job application free", domain.ActionJobApplication, int64Ptr(0), 0},
		{"job application priced", domain.ActionJobApplication, int64Ptr(150), 150},
		{"post service", domain.ActionPostService, int64Ptr(200), 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPricingFixture(t)
			ctx := context.Background()

			f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil)
			f.pricing.EXPECT().GetDedicatedAmount(ctx, "jobs", tt.action).Return(tt.amount, nil)

			q, err := f.svc.Quote(ctx, "jobs", tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, q.Amount)
		})
	}
}

func TestPricingService_Quote_DedicatedColumnMissing(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.settings.EXPECT().Get(ctx).Return(activeSettings(), nil).Times(5)
	f.pricing.EXPECT().GetDedicatedAmount(ctx, "jobs", domain.ActionJobApplication).Return(nil, nil).Times(5)

	_, err := f.svc.Quote(ctx, "jobs", domain.ActionJobApplication)
	assertAppError(t, err, apperror.CodePricingMissing)
}

func TestPricingService_Quote_ContextCancelled(t *testing.T) {
	f := newPricingFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	f.settings.EXPECT().Get(gomock.Any()).Return(activeSettings(), nil)
	f.pricing.EXPECT().GetByServiceType(gomock.Any(), "plumbing").DoAndReturn(
		func(context.Context, string) (*domain.ServicePricing, error) {
			cancel()
			return nil, nil
		})

	_, err := f.svc.Quote(ctx, "plumbing", domain.ActionContinueAccess)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPricingService_Quote_UnknownAction(t *testing.T) {
	f := newPricingFixture(t)

	_, err := f.svc.Quote(context.Background(), "plumbing", domain.ActionType("bogus"))
	assertAppError(t, err, apperror.CodeInvalidRequest)
}

func TestPricingService_GetServicePricing(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	f.pricing.EXPECT().GetByServiceType(ctx, "plumbing").Return(&domain.ServicePricing{ServiceType: "plumbing"}, nil)
	p, err := f.svc.GetServicePricing(ctx, "plumbing")
	require.NoError(t, err)
	assert.Equal(t, "plumbing", p.ServiceType)

	f.pricing.EXPECT().GetByServiceType(ctx, "blog").Return(nil, nil)
	p, err = f.svc.GetServicePricing(ctx, "blog")
	require.NoError(t, err)
	assert.Nil(t, p)

	f.settings.EXPECT().Get(ctx).Return(nil, errors.New("down"))
	_, err = f.svc.GetSettings(ctx)
	assertAppError(t, err, apperror.CodeStoreUnavailable)
}
