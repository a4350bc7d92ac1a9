package preview

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"propview-backend/internal/application/emails"
	"propview-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrListingIDRequired  = errors.New("listingId is required")
	ErrListingNotFound    = errors.New("Listing not found")
	ErrAgentNotFound      = errors.New("Agent not found")
	ErrAgentEmailMissing  = errors.New("Agent email missing")
	ErrAgentEmailRequired = errors.New("Agent email required")
	ErrSendFailed         = errors.New("Failed to send email")
	ErrInvalidToken       = errors.New("Invalid preview token")
)

// Service owns the Draft -> Published transition: slug assignment, preview
// token minting, and the agent email. Secrets and the client base URL are
// injected at construction, never read from the environment here.
type Service struct {
	DB         *gorm.DB
	Mailer     emails.Sender
	Secret     string
	ClientBase string
}

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]+`)

// SlugifyAddress turns an address into a URL slug, capped at 80 chars.
// Falls back to listing-{last 6 of fallback} when the address yields nothing.
func SlugifyAddress(address, fallback string) string {
	base := strings.ToLower(strings.TrimSpace(address))
	base = nonAlnumRe.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-")
	if len(base) > 80 {
		base = base[:80]
	}
	if base == "" {
		suffix := fallback
		if len(suffix) > 6 {
			suffix = suffix[len(suffix)-6:]
		}
		return "listing-" + suffix
	}
	return base
}

// EnsureSlug returns the listing's slug, generating and persisting one from
// the address if absent. Collisions get an incrementing numeric suffix.
// Once committed a slug is never regenerated.
func (s *Service) EnsureSlug(ctx context.Context, listing *models.Listing) (string, error) {
	if listing.Slug != nil && *listing.Slug != "" {
		return *listing.Slug, nil
	}
	base := SlugifyAddress(listing.Address, listing.ID.String())
	slug := base
	for n := 1; ; n++ {
		var count int64
		err := s.DB.WithContext(ctx).Model(&models.Listing{}).
			Where("slug = ? AND listing_id <> ?", slug, listing.ID).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			break
		}
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	if err := s.DB.WithContext(ctx).Model(listing).Update("slug", slug).Error; err != nil {
		return "", err
	}
	listing.Slug = &slug
	return slug, nil
}

// PreviewClaims is the payload of a preview token: a signed, unexpiring
// credential scoping access to one listing before publication.
type PreviewClaims struct {
	Scope     string `json:"scope"`
	ListingID string `json:"listingId"`
	AgentID   string `json:"agentId"`
}

// CreatePreviewToken mints an HS256 token with no expiry.
func (s *Service) CreatePreviewToken(listingID, agentID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"scope":     "preview",
		"listingId": listingID,
		"agentId":   agentID,
	})
	return token.SignedString([]byte(s.Secret))
}

// VerifyPreviewToken validates signature and scope.
func (s *Service) VerifyPreviewToken(tokenStr string) (*PreviewClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.Secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	scope, _ := claims["scope"].(string)
	if scope != "preview" {
		return nil, ErrInvalidToken
	}
	listingID, _ := claims["listingId"].(string)
	agentID, _ := claims["agentId"].(string)
	return &PreviewClaims{Scope: scope, ListingID: listingID, AgentID: agentID}, nil
}

type SendInput struct {
	ListingID uuid.UUID
	AgentID   *uuid.UUID
	Email     string // fallback recipient when no agentId is supplied
	AgentName string
}

type SendResult struct {
	URL  string `json:"url"`
	Slug string `json:"slug"`
}

// SendPreview ensures a slug, mints the token, emails the agent, and only
// then flips the listing to Published. A failed send aborts the publish; the
// slug, once committed, stays (a listing with a slug but still in Draft is an
// accepted minor inconsistency).
func (s *Service) SendPreview(ctx context.Context, in SendInput) (*SendResult, error) {
	var listing models.Listing
	if err := s.DB.WithContext(ctx).Where("listing_id = ?", in.ListingID).First(&listing).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	toEmail := in.Email
	toName := in.AgentName
	agentID := ""
	if in.AgentID != nil {
		var agent models.Agent
		if err := s.DB.WithContext(ctx).Where("agent_id = ?", *in.AgentID).First(&agent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAgentNotFound
			}
			return nil, err
		}
		if agent.Email == "" {
			return nil, ErrAgentEmailMissing
		}
		toEmail = agent.Email
		toName = agent.Name
		agentID = agent.ID.String()
	}
	if toEmail == "" {
		return nil, ErrAgentEmailRequired
	}

	slug, err := s.EnsureSlug(ctx, &listing)
	if err != nil {
		return nil, err
	}
	token, err := s.CreatePreviewToken(listing.ID.String(), agentID)
	if err != nil {
		return nil, err
	}
	previewURL := fmt.Sprintf("%s/%s?t=%s", s.ClientBase, slug, url.QueryEscape(token))

	if err := s.Mailer.SendPreview(ctx, toEmail, toName, listing.Title, previewURL); err != nil {
		log.Error().Err(err).Str("listing_id", listing.ID.String()).Msg("preview email send failed")
		return nil, ErrSendFailed
	}

	now := time.Now()
	err = s.DB.WithContext(ctx).Model(&listing).Updates(map[string]interface{}{
		"status":       models.StatusPublished,
		"published_at": now,
	}).Error
	if err != nil {
		return nil, err
	}

	return &SendResult{URL: previewURL, Slug: slug}, nil
}
