package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePhotos struct {
	filename    string
	contentType string
	err         error
}

func (f *fakePhotos) Upload(_ context.Context, _ []byte, filename, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.filename = filename
	f.contentType = contentType
	return "https://s3.example.com/member-photos/" + filename, nil
}

// pngHeader is enough for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestMemberService_Create(t *testing.T) {
	repo := repository.NewMemoryMemberRepository()
	svc := NewMemberService(repo, nil, testCalculator(), nil)
	ctx := context.Background()

	m, err := svc.Create(ctx, MemberInput{FirstName: " Abebe ", Duration: "1 Month"})
	require.NoError(t, err)
	assert.Len(t, m.ID, 26)
	assert.Equal(t, "Abebe", m.FirstName)
	assert.Equal(t, "2016-01-21", m.RegisterDate, "defaults to today")
	require.NotNil(t, m.Remaining)
	assert.Equal(t, 30, *m.Remaining)

	stored, err := repo.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.RegisterDate, stored.RegisterDate)

	_, err = svc.Create(ctx, MemberInput{Duration: "1 Month", RegisterDate: "2016-14-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	_, err = svc.Create(ctx, MemberInput{Duration: "a while"})
	assert.ErrorIs(t, err, domain.ErrUnrecognizedDurationFormat)

	_, err = svc.Create(ctx, MemberInput{Duration: "1 Month", RegisterDate: "2200-01-01"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedYear)
}

func TestMemberService_Update(t *testing.T) {
	repo := repository.NewMemoryMemberRepository(&domain.MemberRecord{
		ID:           "m1",
		FirstName:    "Abebe",
		Duration:     "1 Month",
		RegisterDate: "2016-01-01",
		Remaining:    intPtr(3),
	})
	svc := NewMemberService(repo, nil, testCalculator(), nil)
	ctx := context.Background()

	m, err := svc.Update(ctx, "m1", MemberInput{Price: "2000"})
	require.NoError(t, err)
	assert.Equal(t, "Abebe", m.FirstName)
	assert.Equal(t, "2000", m.Price)
	assert.Equal(t, 3, *m.Remaining, "untouched plan keeps the stored figure")

	m, err = svc.Update(ctx, "m1", MemberInput{Duration: "2 Months"})
	require.NoError(t, err)
	assert.Equal(t, 40, *m.Remaining)

	_, err = svc.Update(ctx, "ghost", MemberInput{})
	assert.ErrorIs(t, err, domain.ErrMemberNotFound)
}

func TestMemberService_Renew(t *testing.T) {
	ctx := context.Background()

	t.Run("running membership stacks", func(t *testing.T) {
		repo := repository.NewMemoryMemberRepository(&domain.MemberRecord{
			ID: "m1", Duration: "1 Month", RegisterDate: "2016-01-10", Status: "EXPIRED",
		})
		svc := NewMemberService(repo, nil, testCalculator(), nil)

		m, err := svc.Renew(ctx, "m1", "")
		require.NoError(t, err)
		assert.Equal(t, "2016-02-10", m.RegisterDate)
		assert.Equal(t, "ACTIVE", m.Status)
		// 19 days of the old plan are still running, the new one is capped at its length.
		assert.Equal(t, 30, *m.Remaining)
	})

	t.Run("lapsed membership restarts today with new plan", func(t *testing.T) {
		repo := repository.NewMemoryMemberRepository(&domain.MemberRecord{
			ID: "m1", Duration: "1 Month", RegisterDate: "2015-10-01",
		})
		svc := NewMemberService(repo, nil, testCalculator(), nil)

		m, err := svc.Renew(ctx, "m1", "3 Months")
		require.NoError(t, err)
		assert.Equal(t, "2016-01-21", m.RegisterDate)
		assert.Equal(t, "3 Months", m.Duration)
		assert.Equal(t, 90, *m.Remaining)
	})

	t.Run("bad duration", func(t *testing.T) {
		repo := repository.NewMemoryMemberRepository(&domain.MemberRecord{ID: "m1"})
		svc := NewMemberService(repo, nil, testCalculator(), nil)
		_, err := svc.Renew(ctx, "m1", "")
		assert.ErrorIs(t, err, domain.ErrMissingInput)
	})
}

func TestMemberService_UploadPhoto(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryMemberRepository(&domain.MemberRecord{ID: "m1"})

	_, err := NewMemberService(repo, nil, testCalculator(), nil).UploadPhoto(ctx, "m1", pngHeader)
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)

	photos := &fakePhotos{}
	svc := NewMemberService(repo, photos, testCalculator(), nil)

	m, err := svc.UploadPhoto(ctx, "m1", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "image/png", photos.contentType)
	assert.Regexp(t, `^members/m1/[0-9A-Z]{26}\.png$`, photos.filename)
	assert.Equal(t, "https://s3.example.com/member-photos/"+photos.filename, m.ProfileImageURL)

	_, err = svc.UploadPhoto(ctx, "m1", []byte("plain text, not an image"))
	assert.ErrorIs(t, err, domain.ErrInvalidFormat)

	photos.err = errors.New("bucket gone")
	_, err = svc.UploadPhoto(ctx, "m1", pngHeader)
	assert.Error(t, err)
}
