package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

var photoExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// MemberInput carries the editable member fields
type MemberInput struct {
	FirstName    string
	LastName     string
	Status       string
	Duration     string
	Price        string
	RegisterDate string
}

// MemberService handles the admin side of member records
type MemberService struct {
	members domain.MemberRepository
	photos  domain.PhotoRepository
	calc    *membership.Calculator
	logger  *zap.Logger
}

// NewMemberService creates a new member service. photos may be nil when no object
// storage is configured.
func NewMemberService(
	members domain.MemberRepository,
	photos domain.PhotoRepository,
	calc *membership.Calculator,
	logger *zap.Logger,
) *MemberService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemberService{
		members: members,
		photos:  photos,
		calc:    calc,
		logger:  logger,
	}
}

// generateULID creates a new ULID string
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// Create stores a new member. The register date defaults to today.
func (s *MemberService) Create(ctx context.Context, in MemberInput) (*domain.MemberRecord, error) {
	if in.RegisterDate == "" {
		today, err := ethiopian.GregorianToEthiopian(s.calc.Today())
		if err != nil {
			return nil, err
		}
		in.RegisterDate = today
	}
	if err := validateMembership(in.RegisterDate, in.Duration); err != nil {
		return nil, err
	}

	member := &domain.MemberRecord{
		ID:           generateULID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Status:       in.Status,
		Duration:     strings.TrimSpace(in.Duration),
		Price:        strings.TrimSpace(in.Price),
		RegisterDate: in.RegisterDate,
	}
	member.Remaining = s.calc.RemainingDays(member.RegisterDate, member.Duration)

	if err := s.members.Create(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("member created",
		zap.String("member_id", member.ID),
		zap.String("register_date", member.RegisterDate),
		zap.String("duration", member.Duration),
	)
	return member, nil
}

// Update replaces the editable fields of a member. Empty fields keep their stored value.
func (s *MemberService) Update(ctx context.Context, id string, in MemberInput) (*domain.MemberRecord, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	setIfPresent(&member.FirstName, in.FirstName)
	setIfPresent(&member.LastName, in.LastName)
	setIfPresent(&member.Status, in.Status)
	setIfPresent(&member.Duration, in.Duration)
	setIfPresent(&member.Price, in.Price)
	setIfPresent(&member.RegisterDate, in.RegisterDate)

	if in.RegisterDate != "" || in.Duration != "" {
		if err := validateMembership(member.RegisterDate, member.Duration); err != nil {
			return nil, err
		}
		member.Remaining = s.calc.RemainingDays(member.RegisterDate, member.Duration)
	}

	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// Renew starts a new period, optionally on a different plan. A running membership
// is extended from its current expiry; a lapsed one restarts today.
func (s *MemberService) Renew(ctx context.Context, id string, duration string) (*domain.MemberRecord, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newDuration := member.Duration
	if d := strings.TrimSpace(duration); d != "" {
		newDuration = d
	}
	if _, err := membership.ParseDurationToDays(newDuration); err != nil {
		return nil, fmt.Errorf("duration: %w", err)
	}

	// Stacking is decided on the plan being replaced.
	start, err := s.calc.RenewalStart(member.RegisterDate, member.Duration)
	if err != nil {
		return nil, err
	}

	previous := member.RegisterDate
	member.RegisterDate = start
	member.Duration = newDuration
	member.Status = defaultStatus
	member.Remaining = s.calc.RemainingDays(member.RegisterDate, member.Duration)

	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}

	s.logger.Info("membership renewed",
		zap.String("member_id", id),
		zap.String("previous_register_date", previous),
		zap.String("register_date", start),
		zap.String("duration", newDuration),
	)
	return member, nil
}

// UploadPhoto stores a profile photo and links it to the member
func (s *MemberService) UploadPhoto(ctx context.Context, id string, data []byte) (*domain.MemberRecord, error) {
	if s.photos == nil {
		return nil, domain.ErrStorageUnavailable
	}

	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	ext, ok := photoExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported photo type %s", domain.ErrInvalidFormat, contentType)
	}

	filename := fmt.Sprintf("members/%s/%s.%s", id, generateULID(), ext)
	photoURL, err := s.photos.Upload(ctx, data, filename, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}

	member.ProfileImageURL = photoURL
	if err := s.members.Update(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

func validateMembership(registerDate, duration string) error {
	d, err := ethiopian.ParseDate(registerDate)
	if err != nil {
		return fmt.Errorf("register date: %w", err)
	}
	if _, err := ethiopian.ToGregorian(d); err != nil {
		return fmt.Errorf("register date: %w", err)
	}
	if _, err := membership.ParseDurationToDays(duration); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	return nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
