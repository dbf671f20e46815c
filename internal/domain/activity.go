package domain

import (
	"context"
	"time"
)

// SessionType discriminates live or recent activity projections.
type SessionType string

const (
	SessionStream      SessionType = "stream"
	SessionCall        SessionType = "call"
	SessionChat        SessionType = "chat"
	SessionBodyContact SessionType = "bodycontact"
	SessionContent     SessionType = "content"
)

// Valid reports whether t is one of the known session types.
func (t SessionType) Valid() bool {
	switch t {
	case SessionStream, SessionCall, SessionChat, SessionBodyContact, SessionContent:
		return true
	default:
		return false
	}
}

// ActivityClass selects which sources an aggregation pass reads.
type ActivityClass string

const (
	ClassAll         ActivityClass = "all"
	ClassStreams     ActivityClass = "streams"
	ClassCalls       ActivityClass = "calls"
	ClassChats       ActivityClass = "chats"
	ClassBodyContact ActivityClass = "bodycontact"
	ClassContent     ActivityClass = "content"
)

// ActivityClasses lists every concrete class, excluding ClassAll.
func ActivityClasses() []ActivityClass {
	return []ActivityClass{ClassStreams, ClassCalls, ClassChats, ClassBodyContact, ClassContent}
}

// Valid reports whether c is ClassAll or a concrete class.
func (c ActivityClass) Valid() bool {
	if c == ClassAll {
		return true
	}
	for _, known := range ActivityClasses() {
		if c == known {
			return true
		}
	}
	return false
}

// ContentKind identifies a stored content shape.
type ContentKind string

const (
	ContentPost  ContentKind = "post"
	ContentStory ContentKind = "story"
	ContentVideo ContentKind = "video"
	ContentAudio ContentKind = "audio"
	ContentAd    ContentKind = "ad"
)

// Valid reports whether k is a known content kind.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentPost, ContentStory, ContentVideo, ContentAudio, ContentAd:
		return true
	default:
		return false
	}
}

// Table names the table rows of kind are stored in.
func (k ContentKind) Table() string {
	switch k {
	case ContentStory:
		return "stories"
	case ContentAd:
		return "dating_ads"
	default:
		return string(k) + "s"
	}
}

// MediaKinds are the content kinds stored in visibility-based tables.
func MediaKinds() []ContentKind {
	return []ContentKind{ContentPost, ContentStory, ContentVideo, ContentAudio}
}

// Visibility is the audience state of a stored content row.
type Visibility string

const (
	VisibilityPublic          Visibility = "public"
	VisibilityPrivate         Visibility = "private"
	VisibilitySubscribersOnly Visibility = "subscribers_only"
	VisibilityDraft           Visibility = "draft"
	VisibilityDeleted         Visibility = "deleted"
	VisibilityShadowbanned    Visibility = "shadowbanned"
	VisibilityBanned          Visibility = "banned"
	VisibilityPaused          Visibility = "paused"
)

// Moderated reports whether v was set by a moderator rather than the owner.
func (v Visibility) Moderated() bool {
	switch v {
	case VisibilityDeleted, VisibilityShadowbanned, VisibilityBanned, VisibilityPaused:
		return true
	}
	return false
}

// Session is a normalized read projection of a live or recent activity instance.
// It is rebuilt on every fetch and never mutated in place.
type Session struct {
	ID        string      `json:"id"`
	Type      SessionType `json:"type"`
	UserID    string      `json:"user_id"`
	CreatorID string      `json:"creator_id,omitempty"`
	Username  string      `json:"username"`
	AvatarURL *string     `json:"avatar_url"`
	Content   string      `json:"content"`
	Media     []string    `json:"media"`
	Status    string      `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	StartedAt *time.Time  `json:"started_at,omitempty"`

	// ContentKind is set for SessionContent and SessionBodyContact projections.
	ContentKind ContentKind `json:"content_kind,omitempty"`

	ViewerCount       int      `json:"viewer_count,omitempty"`
	ParticipantCount  int      `json:"participant_count,omitempty"`
	RecipientID       string   `json:"recipient_id,omitempty"`
	RecipientUsername string   `json:"recipient_username,omitempty"`
	Location          string   `json:"location,omitempty"`
	Tags              []string `json:"tags,omitempty"`
}

// SortTime is StartedAt when present, CreatedAt otherwise.
func (s Session) SortTime() time.Time {
	if s.StartedAt != nil && !s.StartedAt.IsZero() {
		return *s.StartedAt
	}
	return s.CreatedAt
}

// ContentItem is a normalized read projection of stored, addressable content.
type ContentItem struct {
	ID              string      `json:"id"`
	Kind            ContentKind `json:"kind"`
	UserID          string      `json:"user_id"`
	CreatorID       string      `json:"creator_id,omitempty"`
	CreatorUsername string      `json:"creator_username"`
	AvatarURL       *string     `json:"avatar_url"`
	Content         string      `json:"content"`
	OriginalContent *string     `json:"original_content,omitempty"`
	Media           []string    `json:"media"`
	Visibility      Visibility  `json:"visibility"`
	IsPPV           bool        `json:"is_ppv"`
	PPVAmount       float64     `json:"ppv_amount,omitempty"`
	Views           int64       `json:"views"`
	Likes           int64       `json:"likes"`
	Comments        int64       `json:"comments"`
	Location        string      `json:"location,omitempty"`
	Tags            []string    `json:"tags,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
}

// AsSession projects the item into the activity feed shape.
func (c ContentItem) AsSession() Session {
	typ := SessionContent
	if c.Kind == ContentAd {
		typ = SessionBodyContact
	}
	return Session{
		ID:          c.ID,
		Type:        typ,
		UserID:      c.UserID,
		CreatorID:   c.CreatorID,
		Username:    c.CreatorUsername,
		AvatarURL:   c.AvatarURL,
		Content:     c.Content,
		Media:       c.Media,
		Status:      string(c.Visibility),
		CreatedAt:   c.CreatedAt,
		ContentKind: c.Kind,
		Location:    c.Location,
		Tags:        c.Tags,
	}
}

// ActivityFilter narrows what a source adapter reads.
type ActivityFilter struct {
	Since  time.Time
	Limit  int
	Search string
}

// Source row shapes as read from the platform tables. Owner profile fields
// are joined separately so a missing profile never hides the row.

type LiveStream struct {
	ID          string
	UserID      string
	Title       string
	Status      string // "live", "ended"
	ViewerCount int
	Thumbnail   *string
	StartedAt   *time.Time
	EndedAt     *time.Time
	CreatedAt   time.Time
}

type Call struct {
	ID               string
	CallerID         string
	RecipientID      string
	CallType         string // "audio", "video"
	Status           string // "ringing", "active", "ended"
	ParticipantCount int
	StartedAt        *time.Time
	EndedAt          *time.Time
	CreatedAt        time.Time
}

type DirectMessage struct {
	ID              string
	SenderID        string
	RecipientID     string
	Content         string
	OriginalContent *string
	Media           []string
	CreatedAt       time.Time
}

type DatingAd struct {
	ID                  string
	UserID              string
	Title               string
	Description         string
	OriginalDescription *string
	Location            string
	Tags                []string
	Photos              []string
	IsActive            bool
	ModerationStatus    string // "approved", "pending", "banned", "shadowbanned", "paused", "deleted"
	CreatedAt           time.Time

	// PreModerationStatus and PreModerationActive hold the owner-set state a
	// moderator hid, nil when the ad is not hidden.
	PreModerationStatus *string
	PreModerationActive *bool
}

type MediaContent struct {
	ID              string
	Kind            ContentKind
	UserID          string
	CreatorID       *string
	Content         string
	OriginalContent *string
	Media           []string
	Visibility      Visibility
	IsPPV           bool
	PPVAmount       float64
	Views           int64
	Likes           int64
	Comments        int64
	CreatedAt       time.Time

	// PreModerationVisibility is the owner-set visibility a moderator hid, nil
	// when the row is not hidden.
	PreModerationVisibility *Visibility
}

type LiveStreamRepository interface {
	ListRecent(ctx context.Context, f ActivityFilter) ([]*LiveStream, error)
	GetByID(ctx context.Context, id string) (*LiveStream, error)
	End(ctx context.Context, id string) error
	EndByOwner(ctx context.Context, userID string) (int64, error)
}

type CallRepository interface {
	ListRecent(ctx context.Context, f ActivityFilter) ([]*Call, error)
	GetByID(ctx context.Context, id string) (*Call, error)
	End(ctx context.Context, id string) error
}

type DirectMessageRepository interface {
	ListRecent(ctx context.Context, f ActivityFilter) ([]*DirectMessage, error)
	GetByID(ctx context.Context, id string) (*DirectMessage, error)
	// Redact replaces content, keeping the first original in original_content.
	Redact(ctx context.Context, id, replacement string) error
	RestoreOriginal(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type DatingAdRepository interface {
	ListRecent(ctx context.Context, f ActivityFilter) ([]*DatingAd, error)
	GetByID(ctx context.Context, id string) (*DatingAd, error)
	// Hide deactivates the ad under a moderated status. The owner-set state is
	// remembered unless the ad was already hidden.
	Hide(ctx context.Context, id, moderationStatus string) error
	// Reinstate returns the ad to its remembered owner-set state, approved and
	// active when none is remembered.
	Reinstate(ctx context.Context, id string) error
	// HideByOwner hides every ad of userID whose status is in from (any status
	// except deleted and moderationStatus itself when from is empty).
	HideByOwner(ctx context.Context, userID string, from []string, moderationStatus string) (int64, error)
	// ReinstateByOwner reinstates every ad of userID currently in status from.
	ReinstateByOwner(ctx context.Context, userID, from string) (int64, error)
	UpdateDescription(ctx context.Context, id, description string) error
	Delete(ctx context.Context, id string) error
}

type MediaContentRepository interface {
	ListRecent(ctx context.Context, kind ContentKind, f ActivityFilter) ([]*MediaContent, error)
	GetByID(ctx context.Context, kind ContentKind, id string) (*MediaContent, error)
	// Hide moves the row to a moderated visibility. The owner-set visibility is
	// remembered unless the row was already hidden.
	Hide(ctx context.Context, kind ContentKind, id string, v Visibility) error
	// Reinstate returns the row to its remembered visibility, public when none
	// is remembered.
	Reinstate(ctx context.Context, kind ContentKind, id string) error
	// HideByOwner hides every row of userID whose visibility is in from (any
	// visibility except deleted and v itself when from is empty).
	HideByOwner(ctx context.Context, kind ContentKind, userID string, from []Visibility, v Visibility) (int64, error)
	// ReinstateByOwner reinstates every row of userID currently at from.
	ReinstateByOwner(ctx context.Context, kind ContentKind, userID string, from Visibility) (int64, error)
	UpdateContent(ctx context.Context, kind ContentKind, id, content string) error
	Delete(ctx context.Context, kind ContentKind, id string) error
}

// Dating ad moderation statuses.
const (
	AdStatusApproved     = "approved"
	AdStatusPending      = "pending"
	AdStatusBanned       = "banned"
	AdStatusShadowbanned = "shadowbanned"
	AdStatusPaused       = "paused"
	AdStatusDeleted      = "deleted"
)

// AdStatusModerated reports whether status was set by a moderator.
func AdStatusModerated(status string) bool {
	switch status {
	case AdStatusBanned, AdStatusShadowbanned, AdStatusPaused, AdStatusDeleted:
		return true
	}
	return false
}

// AdVisibility maps a dating ad's activation state onto the content visibility scale.
func AdVisibility(active bool, moderationStatus string) Visibility {
	switch moderationStatus {
	case AdStatusBanned:
		return VisibilityBanned
	case AdStatusShadowbanned:
		return VisibilityShadowbanned
	case AdStatusPaused:
		return VisibilityPaused
	case AdStatusDeleted:
		return VisibilityDeleted
	}
	if !active {
		return VisibilityPrivate
	}
	return VisibilityPublic
}
