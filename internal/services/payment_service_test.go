package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"devboma/internal/models"
	"devboma/internal/repositories"
)

const testWebhookSecret = "demo-secret"

type PaymentServiceTestSuite struct {
	suite.Suite
	mock     pgxmock.PgxPoolIface
	service  PaymentService
	tenantID uuid.UUID
	ctx      context.Context
}

func (suite *PaymentServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	paymentRepo := repositories.NewPaymentRepository(mock)
	orderRepo := repositories.NewOrderRepository(mock)
	shopRepo := repositories.NewShopRepository(mock)
	suite.service = NewPaymentService(paymentRepo, orderRepo, shopRepo, testWebhookSecret)
	suite.tenantID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *PaymentServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}

var paymentCols = []string{"id", "tenant_id", "order_id", "amount", "currency", "status",
	"provider", "reference", "provider_reference", "verification_data", "verified_at",
	"created_at", "updated_at"}

func signBody(body []byte) string {
	mac := hmac.New(sha512.New, []byte(testWebhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (suite *PaymentServiceTestSuite) TestWebhook_RejectsBadSignature() {
	body := []byte(`{"event":"charge.success","data":{"reference":"devboma_1_abcd"}}`)

	err := suite.service.HandlePaystackWebhook(suite.ctx, "deadbeef", body)
	assert.ErrorIs(suite.T(), err, ErrInvalidWebhookSignature)
}

func (suite *PaymentServiceTestSuite) TestWebhook_IgnoresOtherEvents() {
	body := []byte(`{"event":"charge.failed","data":{"reference":"devboma_1_abcd"}}`)

	err := suite.service.HandlePaystackWebhook(suite.ctx, signBody(body), body)
	assert.NoError(suite.T(), err)
}

func (suite *PaymentServiceTestSuite) TestWebhook_DuplicateDeliveryIsNoOp() {
	orderID := uuid.New()
	now := time.Now()
	reference := "devboma_1700000000_ab12cd34"
	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s","id":42}}`, reference))

	suite.mock.ExpectQuery(`FROM payments`).
		WithArgs(reference).
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow(uuid.New(), suite.tenantID, orderID, int64(848), "KES",
				models.PaymentStatusCompleted, models.PaymentProviderPaystack,
				reference, nil, nil, nil, now, now))

	err := suite.service.HandlePaystackWebhook(suite.ctx, signBody(body), body)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *PaymentServiceTestSuite) TestVerify_WrongTenantRejected() {
	reference := "devboma_1700000000_ab12cd34"
	now := time.Now()

	suite.mock.ExpectQuery(`FROM payments`).
		WithArgs(reference).
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow(uuid.New(), uuid.New(), uuid.New(), int64(848), "KES",
				models.PaymentStatusPending, models.PaymentProviderPaystack,
				reference, nil, nil, nil, now, now))

	_, err := suite.service.VerifyPaystack(suite.ctx, suite.tenantID, reference)
	assert.Error(suite.T(), err)
}

func (suite *PaymentServiceTestSuite) TestVerify_AlreadyCompletedIsIdempotent() {
	reference := "devboma_1700000000_ab12cd34"
	now := time.Now()

	suite.mock.ExpectQuery(`FROM payments`).
		WithArgs(reference).
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow(uuid.New(), suite.tenantID, uuid.New(), int64(848), "KES",
				models.PaymentStatusCompleted, models.PaymentProviderPaystack,
				reference, nil, nil, nil, now, now))

	payment, err := suite.service.VerifyPaystack(suite.ctx, suite.tenantID, reference)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.PaymentStatusCompleted, payment.Status)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *PaymentServiceTestSuite) TestWebhook_SettleFailureDoesNotFailDelivery() {
	orderID := uuid.New()
	now := time.Now()
	reference := "devboma_1700000000_ab12cd34"
	body := []byte(fmt.Sprintf(`{"event":"charge.success","data":{"reference":"%s","id":42}}`, reference))

	suite.mock.ExpectQuery(`FROM payments`).
		WithArgs(reference).
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow(uuid.New(), suite.tenantID, orderID, int64(848), "KES",
				models.PaymentStatusPending, models.PaymentProviderPaystack,
				reference, nil, nil, nil, now, now))
	suite.mock.ExpectExec(`UPDATE payments`).
		WithArgs(reference, models.PaymentStatusCompleted, pgxmock.AnyArg(), body).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	// The payment is settled even when the order read fails afterwards; the
	// delivery must still be acknowledged.
	suite.mock.ExpectQuery(`FROM orders`).
		WithArgs(suite.tenantID, orderID).
		WillReturnError(assert.AnError)

	err := suite.service.HandlePaystackWebhook(suite.ctx, signBody(body), body)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *PaymentServiceTestSuite) TestMpesaCallback_FailureMarksPaymentFailed() {
	reference := "devboma_mpesa_1700000000"
	now := time.Now()
	body := []byte(fmt.Sprintf(
		`{"Body":{"stkCallback":{"CheckoutRequestID":"%s","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`,
		reference))

	suite.mock.ExpectQuery(`FROM payments`).
		WithArgs(reference).
		WillReturnRows(pgxmock.NewRows(paymentCols).
			AddRow(uuid.New(), suite.tenantID, uuid.New(), int64(848), "KES",
				models.PaymentStatusPending, models.PaymentProviderMpesa,
				reference, nil, nil, nil, now, now))
	suite.mock.ExpectExec(`UPDATE payments`).
		WithArgs(reference, models.PaymentStatusFailed, body).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.service.HandleMpesaCallback(suite.ctx, body)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *PaymentServiceTestSuite) TestMpesaCallback_MissingReferenceRejected() {
	body := []byte(`{"Body":{"stkCallback":{"ResultCode":0}}}`)

	err := suite.service.HandleMpesaCallback(suite.ctx, body)
	assert.Error(suite.T(), err)
}

func TestReferenceFormat(t *testing.T) {
	paystack := newReference(models.PaymentProviderPaystack)
	assert.True(t, strings.HasPrefix(paystack, "devboma_"))
	assert.False(t, strings.Contains(paystack, "mpesa"))

	mpesa := newReference(models.PaymentProviderMpesa)
	assert.True(t, strings.HasPrefix(mpesa, "devboma_mpesa_"))
	assert.Len(t, strings.Split(mpesa, "_"), 4)
}

func TestReferenceUniqueWithinSameSecond(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		ref := newReference(models.PaymentProviderMpesa)
		assert.False(t, seen[ref], "reference %s issued twice", ref)
		seen[ref] = true
	}
}
