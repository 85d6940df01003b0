package service

import (
	"context"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nhatminh-dev/lavang-api/internal/dto"
	"github.com/nhatminh-dev/lavang-api/internal/models"
	"github.com/nhatminh-dev/lavang-api/internal/repository"
)

func newPaymentService(t *testing.T, db *gorm.DB) PaymentService {
	t.Helper()
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewPaymentService(repository.NewPaymentRepository(db), validate, nil, testLogger())
}

func setupPaymentDB(t *testing.T) (*gorm.DB, models.Family) {
	t.Helper()
	db := setupEnrollmentDB(t)
	require.NoError(t, db.Exec("DELETE FROM payments").Error)
	family := models.Family{ID: uuid.New(), FamilyName: "Vuong"}
	require.NoError(t, db.Create(&family).Error)
	return db, family
}

func floatPtr(v float64) *float64 { return &v }

func TestPaymentServiceCreateDerivesStatus(t *testing.T) {
	db, family := setupPaymentDB(t)
	svc := newPaymentService(t, db)

	unpaid, err := svc.Create(context.Background(), dto.PaymentCreateRequest{
		FamilyID:   family.ID,
		SchoolYear: "2026-2027",
		AmountDue:  floatPtr(150),
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusUnpaid, unpaid.PaymentStatus)
	require.Nil(t, unpaid.PaymentDate)

	_, err = svc.Create(context.Background(), dto.PaymentCreateRequest{
		FamilyID:   family.ID,
		SchoolYear: "2026-2027",
	}, ActivityActor{})
	require.ErrorIs(t, err, ErrPaymentDuplicate)

	partial, err := svc.Update(context.Background(), unpaid.ID, dto.PaymentUpdateRequest{
		AmountPaid: floatPtr(50),
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPartial, partial.PaymentStatus)
	require.NotNil(t, partial.PaymentDate)

	paid, err := svc.Update(context.Background(), unpaid.ID, dto.PaymentUpdateRequest{
		AmountPaid: floatPtr(150),
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
}

func TestPaymentServiceMarkPaid(t *testing.T) {
	db, family := setupPaymentDB(t)
	svc := newPaymentService(t, db)

	// No record yet: mark-paid creates one and settles it.
	method := "check"
	paid, err := svc.MarkPaid(context.Background(), family.ID, dto.MarkPaidRequest{
		SchoolYear:    "2026-2027",
		Amount:        floatPtr(200),
		PaymentMethod: &method,
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, models.PaymentStatusPaid, paid.PaymentStatus)
	require.Equal(t, 200.0, paid.AmountPaid)
	require.NotNil(t, paid.PaymentDate)
	require.Equal(t, "check", *paid.PaymentMethod)

	// Settling again reuses the same record.
	again, err := svc.MarkPaid(context.Background(), family.ID, dto.MarkPaidRequest{
		SchoolYear: "2026-2027",
	}, ActivityActor{})
	require.NoError(t, err)
	require.Equal(t, paid.ID, again.ID)
}

func TestPaymentServiceSummaryAndExport(t *testing.T) {
	db, family := setupPaymentDB(t)
	svc := newPaymentService(t, db)

	other := models.Family{ID: uuid.New(), FamilyName: "Mai"}
	require.NoError(t, db.Create(&other).Error)

	_, err := svc.Create(context.Background(), dto.PaymentCreateRequest{
		FamilyID:   family.ID,
		SchoolYear: "2026-2027",
		AmountDue:  floatPtr(150),
		AmountPaid: 150,
	}, ActivityActor{})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.PaymentCreateRequest{
		FamilyID:   other.ID,
		SchoolYear: "2026-2027",
		AmountDue:  floatPtr(150),
		AmountPaid: 50,
	}, ActivityActor{})
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background(), "2026-2027")
	require.NoError(t, err)
	require.Equal(t, 300.0, summary.TotalDue)
	require.Equal(t, 200.0, summary.TotalPaid)
	require.Equal(t, 100.0, summary.Outstanding)
	require.Equal(t, int64(2), summary.FamilyCount)
	require.Equal(t, int64(1), summary.PaidCount)
	require.Equal(t, int64(1), summary.PartialCount)

	payload, filename, err := svc.ExportCSV(context.Background(), "2026-2027")
	require.NoError(t, err)
	require.Equal(t, "payments_2026_2027.csv", filename)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Family,School Year,Amount Due,Amount Paid,Status,Payment Date,Method", lines[0])
}

func TestPaymentServiceDelete(t *testing.T) {
	db, family := setupPaymentDB(t)
	svc := newPaymentService(t, db)

	payment, err := svc.Create(context.Background(), dto.PaymentCreateRequest{
		FamilyID:   family.ID,
		SchoolYear: "2026-2027",
	}, ActivityActor{})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), payment.ID, ActivityActor{}))
	require.ErrorIs(t, svc.Delete(context.Background(), payment.ID, ActivityActor{}), ErrPaymentNotFound)
	_, err = svc.Get(context.Background(), payment.ID)
	require.ErrorIs(t, err, ErrPaymentNotFound)
}
