package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/paylinkr/gatekeeper/core"
	"github.com/paylinkr/gatekeeper/ports"
)

// AccountService manages the profile and merchant sub-records of an
// identity.
type AccountService struct {
	identities ports.IdentityStore
}

func NewAccountService(identities ports.IdentityStore) *AccountService {
	return &AccountService{identities: identities}
}

// ProfileUpdate is the user-editable slice of an identity.
type ProfileUpdate struct {
	Email         string                        `json:"email"`
	Username      string                        `json:"username"`
	AvatarURL     string                        `json:"avatarUrl"`
	Bio           string                        `json:"bio"`
	Notifications *core.NotificationPreferences `json:"notificationPreferences"`
}

func (s *AccountService) UpdateProfile(ctx context.Context, address string, update ProfileUpdate) (*core.Identity, error) {
	profile := &core.Profile{
		Username:  update.Username,
		AvatarURL: update.AvatarURL,
		Bio:       update.Bio,
	}
	if update.Notifications != nil {
		profile.Notifications = *update.Notifications
	}
	return s.identities.UpdateProfile(ctx, address, update.Email, profile)
}

// MerchantUpdate carries the business metadata of a merchant upgrade.
type MerchantUpdate struct {
	BusinessName  string `json:"businessName"`
	BusinessEmail string `json:"businessEmail"`
	Website       string `json:"website"`
}

// UpsertMerchant upgrades a personal account to merchant, or updates an
// existing merchant's metadata. New merchants start in "pending" review
// state; review fields on an existing record are preserved.
func (s *AccountService) UpsertMerchant(ctx context.Context, address string, update MerchantUpdate) (*core.Identity, error) {
	if update.BusinessName == "" || update.BusinessEmail == "" {
		return nil, core.E(core.KindInvalidInput, "business name and email are required")
	}

	ident, err := s.identities.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	merchant := ident.Merchant
	if merchant == nil {
		merchant = &core.Merchant{
			Status:    core.MerchantPending,
			CreatedAt: now,
		}
	}
	merchant.BusinessName = update.BusinessName
	merchant.BusinessEmail = update.BusinessEmail
	merchant.Website = update.Website
	merchant.UpdatedAt = now

	return s.identities.SetMerchant(ctx, address, merchant)
}

// AddWebhook subscribes a merchant webhook to a set of events from the
// closed event list.
func (s *AccountService) AddWebhook(ctx context.Context, address, hookURL string, eventNames []string) (*core.Webhook, error) {
	if _, err := url.ParseRequestURI(hookURL); err != nil {
		return nil, core.E(core.KindInvalidInput, "valid webhook URL is required")
	}
	if len(eventNames) == 0 {
		return nil, core.E(core.KindInvalidInput, "at least one event is required")
	}
	for _, name := range eventNames {
		if !core.WebhookEvents[name] {
			return nil, core.E(core.KindInvalidInput, "unknown webhook event: "+name)
		}
	}

	ident, err := s.merchantIdentity(ctx, address)
	if err != nil {
		return nil, err
	}

	hook := core.Webhook{
		ID:        uuid.New().String(),
		URL:       hookURL,
		Events:    eventNames,
		CreatedAt: time.Now().UTC(),
	}
	ident.Merchant.Webhooks = append(ident.Merchant.Webhooks, hook)
	ident.Merchant.UpdatedAt = hook.CreatedAt

	if _, err := s.identities.SetMerchant(ctx, address, ident.Merchant); err != nil {
		return nil, err
	}
	return &hook, nil
}

func (s *AccountService) RemoveWebhook(ctx context.Context, address, hookID string) error {
	ident, err := s.merchantIdentity(ctx, address)
	if err != nil {
		return err
	}

	hooks := ident.Merchant.Webhooks
	for i, hook := range hooks {
		if hook.ID == hookID {
			ident.Merchant.Webhooks = append(hooks[:i], hooks[i+1:]...)
			ident.Merchant.UpdatedAt = time.Now().UTC()
			_, err := s.identities.SetMerchant(ctx, address, ident.Merchant)
			return err
		}
	}
	return core.E(core.KindNotFound, "webhook not found")
}

// CreatedAPIKey is returned once at creation; the secret is not
// recoverable afterwards.
type CreatedAPIKey struct {
	core.APIKey
	Secret string `json:"secret"`
}

func (s *AccountService) CreateAPIKey(ctx context.Context, address, name string) (*CreatedAPIKey, error) {
	ident, err := s.merchantIdentity(ctx, address)
	if err != nil {
		return nil, err
	}

	keyID, err := randomHex(16)
	if err != nil {
		return nil, core.Wrap(core.KindConfiguration, "failed to generate api key", err)
	}
	secret, err := randomHex(32)
	if err != nil {
		return nil, core.Wrap(core.KindConfiguration, "failed to generate api key secret", err)
	}

	hash := sha256.Sum256([]byte(secret))
	key := core.APIKey{
		ID:         uuid.New().String(),
		Key:        "plk_" + keyID,
		SecretHash: hex.EncodeToString(hash[:]),
		Name:       name,
		CreatedAt:  time.Now().UTC(),
	}
	ident.Merchant.APIKeys = append(ident.Merchant.APIKeys, key)
	ident.Merchant.UpdatedAt = key.CreatedAt

	if _, err := s.identities.SetMerchant(ctx, address, ident.Merchant); err != nil {
		return nil, err
	}
	return &CreatedAPIKey{APIKey: key, Secret: secret}, nil
}

func (s *AccountService) merchantIdentity(ctx context.Context, address string) (*core.Identity, error) {
	ident, err := s.identities.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if !ident.IsMerchant() {
		return nil, core.E(core.KindUnauthorized, "merchant account required")
	}
	return ident, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
