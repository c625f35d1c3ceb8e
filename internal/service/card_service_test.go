package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2023-10-02 is 2016-01-21 in the Ethiopian calendar.
var testNow = time.Date(2023, time.October, 2, 10, 0, 0, 0, time.UTC)

func testCalculator() *membership.Calculator {
	return membership.NewCalculator(membership.ClockFunc(func() time.Time { return testNow }))
}

func intPtr(n int) *int { return &n }

func newTestCardService(members ...*domain.MemberRecord) *CardService {
	return NewCardService(
		repository.NewMemoryMemberRepository(members...),
		testCalculator(),
		"https://gym.example.com/",
		"https://qr.example.com/v1/create-qr-code/",
		nil,
	)
}

func TestCardService_GetCard(t *testing.T) {
	svc := newTestCardService(&domain.MemberRecord{
		ID:           "m1",
		FirstName:    "Abebe",
		LastName:     "Bikila",
		Duration:     "1 Month",
		Price:        "1500",
		RegisterDate: "2016-01-01",
		Remaining:    intPtr(25),
	})

	view, err := svc.GetCard(context.Background(), "m1", false)
	require.NoError(t, err)

	assert.Equal(t, "Abebe Bikila", view.Name)
	assert.Equal(t, "ACTIVE", view.Status)
	assert.Equal(t, "1500", view.Price)
	assert.Equal(t, "2016-መስከረም-01", view.RegisterDateFormatted)
	assert.Equal(t, "2016-02-01", view.ExpiryDate)
	assert.Equal(t, "2023-10-12", view.ExpiryGregorian)
	require.NotNil(t, view.ComputedRemaining)
	assert.Equal(t, 10, *view.ComputedRemaining)
	assert.Equal(t, 10, *view.Remaining, "plain view shows the computed figure")
	assert.Equal(t, 25, *view.StoredRemaining)
	assert.Equal(t, membership.BadgeActive, view.Badge)
	assert.Equal(t, "10 DAYS LEFT", view.RemainingText)
	assert.Equal(t, "https://gym.example.com/scan/m1?scanned=1", view.ScanURL)
	assert.Equal(t,
		"https://qr.example.com/v1/create-qr-code/?size=160x160&data=https%3A%2F%2Fgym.example.com%2Fscan%2Fm1%3Fscanned%3D1",
		view.QRImageURL)
}

func TestCardService_ScannedViewPrefersStoredRemaining(t *testing.T) {
	svc := newTestCardService(&domain.MemberRecord{
		ID:           "m1",
		Duration:     "1 Month",
		RegisterDate: "2016-01-01",
		Remaining:    intPtr(0),
	})

	view, err := svc.GetCard(context.Background(), "m1", true)
	require.NoError(t, err)

	assert.Equal(t, 0, *view.Remaining)
	assert.Equal(t, 10, *view.ComputedRemaining)
	assert.Equal(t, membership.BadgeExpired, view.Badge)
	assert.Equal(t, "EXPIRED", view.RemainingText)
}

func TestCardService_ScannedViewWithoutStoredFigure(t *testing.T) {
	svc := newTestCardService(&domain.MemberRecord{
		ID:           "m1",
		Duration:     "2 Weeks",
		RegisterDate: "2016-01-20",
	})

	view, err := svc.GetCard(context.Background(), "m1", true)
	require.NoError(t, err)
	assert.Equal(t, 13, *view.Remaining)
	assert.Nil(t, view.StoredRemaining)
}

func TestCardService_MissingDataDegradesToNA(t *testing.T) {
	svc := newTestCardService(&domain.MemberRecord{ID: "bare"})

	view, err := svc.GetCard(context.Background(), "bare", true)
	require.NoError(t, err)

	assert.Equal(t, "N/A", view.Name)
	assert.Equal(t, "N/A", view.FirstName)
	assert.Equal(t, "ACTIVE", view.Status)
	assert.Equal(t, "N/A", view.Price)
	assert.Equal(t, defaultPhotoURL, view.PhotoURL)
	assert.Equal(t, "N/A", view.RegisterDateFormatted)
	assert.Equal(t, "N/A", view.ExpiryDateFormatted)
	assert.Nil(t, view.Remaining)
	assert.Nil(t, view.ComputedRemaining)
	assert.Equal(t, membership.BadgeNA, view.Badge)
	assert.Equal(t, "N/A", view.RemainingText)
}

func TestCardService_UnparseableDataDegradesToNA(t *testing.T) {
	svc := newTestCardService(&domain.MemberRecord{
		ID:           "m1",
		Duration:     "forever",
		RegisterDate: "01/01/2016",
	})

	view, err := svc.GetCard(context.Background(), "m1", false)
	require.NoError(t, err)
	assert.Equal(t, "01/01/2016", view.RegisterDateFormatted)
	assert.Nil(t, view.Remaining)
	assert.Equal(t, membership.BadgeNA, view.Badge)
}

func TestCardService_NotFound(t *testing.T) {
	svc := newTestCardService()
	_, err := svc.GetCard(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}
