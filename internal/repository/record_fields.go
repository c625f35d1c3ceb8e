package repository

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mansoorceksport/gymcard/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Both stores hand back loosely typed documents: Firebase decodes JSON numbers as float64,
// Mongo as int32/int64/float64, and older records keep numbers as strings. These helpers
// read a field into the typed record, treating absence as the zero value.

func stringField(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	default:
		return ""
	}
}

func intField(raw map[string]interface{}, key string) *int {
	var n int
	switch v := raw[key].(type) {
	case float64:
		n = int(math.Round(v))
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case int:
		n = v
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func timeField(raw map[string]interface{}, key string) time.Time {
	switch v := raw[key].(type) {
	case primitive.DateTime:
		return v.Time()
	case time.Time:
		return v
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}
		}
		return t
	default:
		return time.Time{}
	}
}

// fieldNames maps record attributes to the document keys of one store.
type fieldNames struct {
	firstName, lastName, status, duration, price, photo, registerDate, remaining, createdAt, updatedAt string
}

// firebaseFields matches the shape written by the original web admin.
var firebaseFields = fieldNames{
	firstName:    "firstName",
	lastName:     "lastName",
	status:       "status",
	duration:     "duration",
	price:        "price",
	photo:        "profileImageUrl",
	registerDate: "registerDate",
	remaining:    "remaining",
	createdAt:    "createdAt",
	updatedAt:    "updatedAt",
}

var mongoFields = fieldNames{
	firstName:    "first_name",
	lastName:     "last_name",
	status:       "status",
	duration:     "duration",
	price:        "price",
	photo:        "profile_image_url",
	registerDate: "register_date",
	remaining:    "remaining",
	createdAt:    "created_at",
	updatedAt:    "updated_at",
}

func mapToMember(id string, raw map[string]interface{}, f fieldNames) *domain.MemberRecord {
	return &domain.MemberRecord{
		ID:              id,
		FirstName:       stringField(raw, f.firstName),
		LastName:        stringField(raw, f.lastName),
		Status:          stringField(raw, f.status),
		Duration:        stringField(raw, f.duration),
		Price:           stringField(raw, f.price),
		ProfileImageURL: stringField(raw, f.photo),
		RegisterDate:    stringField(raw, f.registerDate),
		Remaining:       intField(raw, f.remaining),
		CreatedAt:       timeField(raw, f.createdAt),
		UpdatedAt:       timeField(raw, f.updatedAt),
	}
}

// memberToMap is the inverse of mapToMember for the mutable attributes.
func memberToMap(m *domain.MemberRecord, f fieldNames) map[string]interface{} {
	doc := map[string]interface{}{
		f.firstName:    m.FirstName,
		f.lastName:     m.LastName,
		f.status:       m.Status,
		f.duration:     m.Duration,
		f.price:        m.Price,
		f.photo:        m.ProfileImageURL,
		f.registerDate: m.RegisterDate,
	}
	if m.Remaining != nil {
		doc[f.remaining] = *m.Remaining
	}
	return doc
}
