package domain

// UnknownOwner is the owner id assigned when neither creator nor user id is set.
const UnknownOwner = "unknown"

// DefaultUsername is shown when an owner profile could not be joined.
const DefaultUsername = "Unknown"

// TargetKind names the backing resource a moderation action touches.
type TargetKind string

const (
	TargetPost   TargetKind = "post"
	TargetStory  TargetKind = "story"
	TargetVideo  TargetKind = "video"
	TargetAudio  TargetKind = "audio"
	TargetAd     TargetKind = "ad"
	TargetStream TargetKind = "stream"
	TargetCall   TargetKind = "call"
	TargetChat   TargetKind = "chat"
)

// Valid reports whether k is a known target kind.
func (k TargetKind) Valid() bool {
	switch k {
	case TargetPost, TargetStory, TargetVideo, TargetAudio, TargetAd, TargetStream, TargetCall, TargetChat:
		return true
	default:
		return false
	}
}

// ContentKind maps a stored-content target kind back to its ContentKind.
// ok is false for live kinds (stream, call, chat).
func (k TargetKind) ContentKind() (ContentKind, bool) {
	switch k {
	case TargetPost:
		return ContentPost, true
	case TargetStory:
		return ContentStory, true
	case TargetVideo:
		return ContentVideo, true
	case TargetAudio:
		return ContentAudio, true
	case TargetAd:
		return ContentAd, true
	default:
		return "", false
	}
}

// Owner is the account a moderation target resolves to.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Known reports whether the owner resolved to a real account.
func (o Owner) Known() bool {
	return o.ID != "" && o.ID != UnknownOwner
}

// ResolveOwnerID applies the creator_id -> user_id -> "unknown" chain.
func ResolveOwnerID(creatorID, userID string) string {
	if creatorID != "" {
		return creatorID
	}
	if userID != "" {
		return userID
	}
	return UnknownOwner
}

// Target is a moderation target: either a Session or a ContentItem.
// The interface is sealed; add a new shape by adding a variant here.
type Target interface {
	TargetID() string
	TargetKind() TargetKind
	Owner() Owner
	// PriorVisibility is the audience state the target was read with, when known.
	PriorVisibility() (Visibility, bool)
	isTarget()
}

func (s Session) TargetID() string { return s.ID }

func (s Session) TargetKind() TargetKind {
	switch s.Type {
	case SessionStream:
		return TargetStream
	case SessionCall:
		return TargetCall
	case SessionChat:
		return TargetChat
	case SessionBodyContact:
		return TargetAd
	case SessionContent:
		if k := TargetKind(s.ContentKind); k.Valid() {
			return k
		}
		return TargetPost
	default:
		return TargetKind(s.Type)
	}
}

func (s Session) Owner() Owner {
	return Owner{ID: ResolveOwnerID(s.CreatorID, s.UserID), Username: usernameOrDefault(s.Username)}
}

func (s Session) PriorVisibility() (Visibility, bool) {
	switch s.Type {
	case SessionContent, SessionBodyContact:
		if s.Status != "" {
			return Visibility(s.Status), true
		}
	}
	return "", false
}

func (Session) isTarget() {}

func (c ContentItem) TargetID() string { return c.ID }

func (c ContentItem) TargetKind() TargetKind { return TargetKind(c.Kind) }

func (c ContentItem) Owner() Owner {
	return Owner{ID: ResolveOwnerID(c.CreatorID, c.UserID), Username: usernameOrDefault(c.CreatorUsername)}
}

func (c ContentItem) PriorVisibility() (Visibility, bool) {
	return c.Visibility, c.Visibility != ""
}

func (ContentItem) isTarget() {}

func usernameOrDefault(name string) string {
	if name == "" {
		return DefaultUsername
	}
	return name
}
