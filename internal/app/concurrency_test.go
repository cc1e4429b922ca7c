package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"mpesa-paywall/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *flowEnv) openPaidAdvert(t *testing.T, adID string) string {
	t.Helper()
	e.pricing.set(domain.ServicePricing{ServiceType: "advertisement", PostAmount: 200})
	code, body := e.do(t, http.MethodPost, "/api/v1/dialogs", map[string]interface{}{
		"service_type": "advertisement",
		"action_type":  "post_service",
		"purpose":      map[string]string{"kind": "advertisement", "reference_id": adID},
	})
	require.Equal(t, http.StatusCreated, code)
	data := body["data"].(map[string]interface{})
	require.Equal(t, string(domain.DialogStateInput), data["state"])
	return data["id"].(string)
}

// TestConcurrentSubmits fires several submits at one dialog. Exactly one may
// start a payment; the rest are refused as invalid transitions.
func TestConcurrentSubmits(t *testing.T) {
	e := newFlowEnv(t)
	id := e.openPaidAdvert(t, "ad-concurrent")

	concurrency := 8
	body, err := json.Marshal(map[string]string{"phone_number": "0712345678"})
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		refused  atomic.Int32
		other    atomic.Int32
	)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/api/v1/dialogs/"+id+"/submit", bytes.NewReader(body))
			if err != nil {
				other.Add(1)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := e.client.Do(req)
			if err != nil {
				other.Add(1)
				return
			}
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusAccepted:
				accepted.Add(1)
			case http.StatusConflict:
				refused.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, concurrency-1, refused.Load())
	assert.Zero(t, other.Load())

	e.waitForCheckout(t, id)
	assert.EqualValues(t, 1, e.pushes.Load())
	assert.Len(t, e.txs.all(), 1)
}

// TestConcurrentCallbackRedelivery replays the same callback many times in
// parallel. Every delivery is acknowledged, the first one is stored and the
// transaction is settled once.
func TestConcurrentCallbackRedelivery(t *testing.T) {
	e := newFlowEnv(t)
	id := e.openPaidAdvert(t, "ad-redelivery")

	code, _ := e.do(t, http.MethodPost, "/api/v1/dialogs/"+id+"/submit", map[string]string{"phone_number": "254712345678"})
	require.Equal(t, http.StatusAccepted, code)
	e.waitForCheckout(t, id)

	callback := `{"Body":{"stkCallback":{"MerchantRequestID":"m_1","CheckoutRequestID":"ws_1","ResultCode":0,"ResultDesc":"ok",` +
		`"CallbackMetadata":{"Item":[{"Name":"MpesaReceiptNumber","Value":"RCPT42"}]}}}}`

	concurrency := 50
	var (
		wg  sync.WaitGroup
		ack atomic.Int32
	)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(e.srv.URL+"/api/v1/mpesa/callback?token="+callbackToken, "application/json", strings.NewReader(callback))
			if err != nil {
				return
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				ack.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, concurrency, ack.Load())

	stored, err := e.callbacks.GetByCheckoutRequestID(t.Context(), "ws_1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "RCPT42", stored.MpesaReceiptNumber)

	e.waitForState(t, id, domain.DialogStateClosed)

	txs := e.txs.all()
	require.Len(t, txs, 1)
	assert.Equal(t, domain.TransactionStatusSuccess, txs[0].Status)

	e.app.Audit.Wait()
	received := 0
	for _, a := range e.audit.actions() {
		if a == domain.AuditActionCallbackReceived {
			received++
		}
	}
	assert.Equal(t, 1, received)
}
