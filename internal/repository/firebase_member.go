package repository

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	appConfig "github.com/mansoorceksport/gymcard/internal/config"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"google.golang.org/api/option"
)

const membersPath = "members"

// RTDB keys cannot contain these; "/" would address a nested node instead of a member.
const illegalKeyChars = ".#$[]/"

// FirebaseMemberRepository implements domain.MemberRepository on the Realtime Database,
// one node per member under members/{id}.
type FirebaseMemberRepository struct {
	client *db.Client
}

// NewFirebaseApp initializes the Firebase Admin SDK from a base64 encoded service account key
func NewFirebaseApp(ctx context.Context, cfg appConfig.FirebaseConfig) (*firebase.App, error) {
	privateKey, err := base64.StdEncoding.DecodeString(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("decode firebase private key: %w", err)
	}

	credentials, err := json.Marshal(map[string]interface{}{
		"type":         "service_account",
		"project_id":   cfg.ProjectID,
		"private_key":  string(privateKey),
		"client_email": cfg.ClientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:   cfg.ProjectID,
		DatabaseURL: cfg.DatabaseURL,
	}, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	return app, nil
}

// NewFirebaseMemberRepository creates a repository backed by the app's default database
func NewFirebaseMemberRepository(ctx context.Context, app *firebase.App) (*FirebaseMemberRepository, error) {
	client, err := app.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase database client: %w", err)
	}
	return &FirebaseMemberRepository{client: client}, nil
}

func (r *FirebaseMemberRepository) ref(id string) *db.Ref {
	return r.client.NewRef(membersPath).Child(id)
}

// validKey reports whether id can name a member node at all
func validKey(id string) bool {
	return strings.TrimSpace(id) != "" && !strings.ContainsAny(id, illegalKeyChars)
}

func (r *FirebaseMemberRepository) GetByID(ctx context.Context, id string) (*domain.MemberRecord, error) {
	if !validKey(id) {
		return nil, domain.ErrMemberNotFound
	}
	var raw map[string]interface{}
	if err := r.ref(id).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if raw == nil {
		return nil, domain.ErrMemberNotFound
	}
	return mapToMember(id, raw, firebaseFields), nil
}

func (r *FirebaseMemberRepository) Create(ctx context.Context, member *domain.MemberRecord) error {
	if !validKey(member.ID) {
		return fmt.Errorf("failed to create member: invalid id %q", member.ID)
	}
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt

	doc := memberToMap(member, firebaseFields)
	doc[firebaseFields.createdAt] = member.CreatedAt.Format(time.RFC3339)
	doc[firebaseFields.updatedAt] = member.UpdatedAt.Format(time.RFC3339)

	if err := r.ref(member.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (r *FirebaseMemberRepository) Update(ctx context.Context, member *domain.MemberRecord) error {
	if err := r.exists(ctx, member.ID); err != nil {
		return err
	}
	member.UpdatedAt = time.Now()

	doc := memberToMap(member, firebaseFields)
	doc[firebaseFields.updatedAt] = member.UpdatedAt.Format(time.RFC3339)
	if member.Remaining == nil {
		// A null child removes the key.
		doc[firebaseFields.remaining] = nil
	}

	if err := r.ref(member.ID).Update(ctx, doc); err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	return nil
}

func (r *FirebaseMemberRepository) UpdateRemaining(ctx context.Context, id string, remaining *int) error {
	if err := r.exists(ctx, id); err != nil {
		return err
	}

	update := map[string]interface{}{
		firebaseFields.remaining: nil,
		firebaseFields.updatedAt: time.Now().Format(time.RFC3339),
	}
	if remaining != nil {
		update[firebaseFields.remaining] = *remaining
	}

	if err := r.ref(id).Update(ctx, update); err != nil {
		return fmt.Errorf("failed to update remaining: %w", err)
	}
	return nil
}

func (r *FirebaseMemberRepository) List(ctx context.Context) ([]*domain.MemberRecord, error) {
	var raw map[string]map[string]interface{}
	if err := r.client.NewRef(membersPath).Get(ctx, &raw); err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	members := make([]*domain.MemberRecord, 0, len(ids))
	for _, id := range ids {
		members = append(members, mapToMember(id, raw[id], firebaseFields))
	}
	return members, nil
}

func (r *FirebaseMemberRepository) exists(ctx context.Context, id string) error {
	if !validKey(id) {
		return domain.ErrMemberNotFound
	}
	var node interface{}
	if err := r.ref(id).Get(ctx, &node); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
	}
	if node == nil {
		return domain.ErrMemberNotFound
	}
	return nil
}
