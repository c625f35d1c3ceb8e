package domain

import (
	"context"
	"time"
)

// MemberRecord is a gym member as kept by the record store.
//
// Every field is optional in stored data. Missing text fields decode to "", a missing
// Remaining decodes to nil. RegisterDate is an Ethiopian "YYYY-MM-DD" date and Duration a
// free-form plan such as "1 Month" or a bare month count.
type MemberRecord struct {
	ID              string    `bson:"_id,omitempty" json:"id"`
	FirstName       string    `bson:"first_name" json:"firstName"`
	LastName        string    `bson:"last_name" json:"lastName"`
	Status          string    `bson:"status" json:"status"`
	Duration        string    `bson:"duration" json:"duration"`
	Price           string    `bson:"price" json:"price"`
	ProfileImageURL string    `bson:"profile_image_url" json:"profileImageUrl"`
	RegisterDate    string    `bson:"register_date" json:"registerDate"`
	Remaining       *int      `bson:"remaining,omitempty" json:"remaining"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}

// FullName joins first and last name, defaulting the first name to "N/A".
func (m *MemberRecord) FullName() string {
	first := m.FirstName
	if first == "" {
		first = "N/A"
	}
	if m.LastName == "" {
		return first
	}
	return first + " " + m.LastName
}

// MemberRepository defines operations for the member record store
type MemberRepository interface {
	// GetByID returns ErrMemberNotFound when no record exists for id
	GetByID(ctx context.Context, id string) (*MemberRecord, error)
	Create(ctx context.Context, member *MemberRecord) error
	Update(ctx context.Context, member *MemberRecord) error
	// UpdateRemaining stores the cached remaining-days figure; nil clears it
	UpdateRemaining(ctx context.Context, id string, remaining *int) error
	List(ctx context.Context) ([]*MemberRecord, error)
}

// PhotoRepository stores member profile photos
type PhotoRepository interface {
	// Upload saves a file and returns its access URL
	Upload(ctx context.Context, file []byte, filename string, contentType string) (string, error)
}

// CacheRepository is a JSON value cache keyed by string
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
