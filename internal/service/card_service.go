package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/ethiopian"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"go.uber.org/zap"
)

const (
	defaultPhotoURL = "https://placehold.co/160x160?text=No+Photo"
	defaultStatus   = "ACTIVE"
	notAvailable    = "N/A"
	qrImageSize     = "160x160"
)

// CardView is everything the member card shows
type CardView struct {
	ID                    string           `json:"id"`
	Name                  string           `json:"name"`
	FirstName             string           `json:"firstName"`
	LastName              string           `json:"lastName"`
	Status                string           `json:"status"`
	Duration              string           `json:"duration"`
	Price                 string           `json:"price"`
	PhotoURL              string           `json:"photoUrl"`
	RegisterDate          string           `json:"registerDate"`
	RegisterDateFormatted string           `json:"registerDateFormatted"`
	ExpiryDate            string           `json:"expiryDate,omitempty"`
	ExpiryDateFormatted   string           `json:"expiryDateFormatted"`
	ExpiryGregorian       string           `json:"expiryGregorian,omitempty"`
	Remaining             *int             `json:"remaining"`
	ComputedRemaining     *int             `json:"computedRemaining"`
	StoredRemaining       *int             `json:"storedRemaining"`
	Badge                 membership.Badge `json:"badge"`
	RemainingText         string           `json:"remainingText"`
	Scanned               bool             `json:"scanned"`
	ScanURL               string           `json:"scanUrl"`
	QRImageURL            string           `json:"qrImageUrl"`
}

// CardService builds card views from stored member records
type CardService struct {
	members      domain.MemberRepository
	calc         *membership.Calculator
	baseURL      string
	qrServiceURL string
	logger       *zap.Logger
}

// NewCardService creates a new card service
func NewCardService(
	members domain.MemberRepository,
	calc *membership.Calculator,
	baseURL string,
	qrServiceURL string,
	logger *zap.Logger,
) *CardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CardService{
		members:      members,
		calc:         calc,
		baseURL:      strings.TrimRight(baseURL, "/"),
		qrServiceURL: qrServiceURL,
		logger:       logger,
	}
}

// GetCard loads a member and renders the card. In the scanned view a stored remaining
// figure takes precedence over the freshly computed one; the computed figure is always
// returned alongside.
func (s *CardService) GetCard(ctx context.Context, id string, scanned bool) (*CardView, error) {
	member, err := s.members.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Render(member, scanned), nil
}

// Render builds the view of an already loaded record
func (s *CardService) Render(member *domain.MemberRecord, scanned bool) *CardView {
	view := &CardView{
		ID:                    member.ID,
		Name:                  member.FullName(),
		FirstName:             orDefault(member.FirstName, notAvailable),
		LastName:              member.LastName,
		Status:                orDefault(member.Status, defaultStatus),
		Duration:              orDefault(member.Duration, notAvailable),
		Price:                 orDefault(member.Price, notAvailable),
		PhotoURL:              orDefault(member.ProfileImageURL, defaultPhotoURL),
		RegisterDate:          member.RegisterDate,
		RegisterDateFormatted: ethiopian.FormatDate(member.RegisterDate),
		ExpiryDateFormatted:   notAvailable,
		StoredRemaining:       member.Remaining,
		Scanned:               scanned,
		ScanURL:               s.ScanURL(member.ID),
	}
	view.QRImageURL = s.QRImageURL(view.ScanURL)

	p, err := s.calc.Period(member.RegisterDate, member.Duration)
	if err != nil {
		s.logger.Debug("membership period unavailable",
			zap.String("member_id", member.ID),
			zap.Error(err),
		)
	} else {
		n := s.calc.Remaining(p)
		view.ComputedRemaining = &n
		view.ExpiryGregorian = p.Expiry.Format(time.DateOnly)
		if exp, err := p.ExpiryEthiopian(); err == nil {
			view.ExpiryDate = exp.String()
			view.ExpiryDateFormatted = ethiopian.FormatDate(view.ExpiryDate)
		}
	}

	view.Remaining = view.ComputedRemaining
	if scanned && member.Remaining != nil {
		view.Remaining = member.Remaining
	}
	view.Badge = membership.Status(view.Remaining)
	view.RemainingText = membership.RemainingText(view.Remaining)

	return view
}

// ScanURL is the public link encoded in the card's QR code
func (s *CardService) ScanURL(id string) string {
	return s.baseURL + "/scan/" + url.PathEscape(id) + "?scanned=1"
}

// QRImageURL asks the external QR service to render data
func (s *CardService) QRImageURL(data string) string {
	return s.qrServiceURL + "?size=" + qrImageSize + "&data=" + url.QueryEscape(data)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
