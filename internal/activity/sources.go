package activity

import (
	"context"
	"fmt"
	"sort"

	"github.com/gosuda/ghostmode/internal/domain"
)

// Source fetches one activity class and normalizes its rows into sessions.
// An empty result is a success.
type Source interface {
	Name() string
	Class() domain.ActivityClass
	// Tables lists the backing tables whose push signals invalidate this source.
	Tables() []string
	Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error)
}

// ---------------------------------------------------------------------------
// Live streams
// ---------------------------------------------------------------------------

type StreamSource struct {
	repo     domain.LiveStreamRepository
	profiles *ProfileDirectory
}

func NewStreamSource(repo domain.LiveStreamRepository, profiles *ProfileDirectory) *StreamSource {
	return &StreamSource{repo: repo, profiles: profiles}
}

func (s *StreamSource) Name() string                { return "streams" }
func (s *StreamSource) Class() domain.ActivityClass { return domain.ClassStreams }
func (s *StreamSource) Tables() []string            { return []string{"live_streams"} }

func (s *StreamSource) Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error) {
	rows, err := s.repo.ListRecent(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("activity.StreamSource.Fetch: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	profiles := s.profiles.Lookup(ctx, ids)

	out := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, streamSession(r, profiles))
	}
	return out, nil
}

func streamSession(r *domain.LiveStream, profiles map[string]domain.Profile) domain.Session {
	username, avatar := ownerFields(profiles, r.UserID)
	media := []string{}
	if r.Thumbnail != nil && *r.Thumbnail != "" {
		media = append(media, *r.Thumbnail)
	}
	return domain.Session{
		ID:          r.ID,
		Type:        domain.SessionStream,
		UserID:      r.UserID,
		Username:    username,
		AvatarURL:   avatar,
		Content:     r.Title,
		Media:       media,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		StartedAt:   r.StartedAt,
		ViewerCount: r.ViewerCount,
	}
}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

type CallSource struct {
	repo     domain.CallRepository
	profiles *ProfileDirectory
}

func NewCallSource(repo domain.CallRepository, profiles *ProfileDirectory) *CallSource {
	return &CallSource{repo: repo, profiles: profiles}
}

func (s *CallSource) Name() string                { return "calls" }
func (s *CallSource) Class() domain.ActivityClass { return domain.ClassCalls }
func (s *CallSource) Tables() []string            { return []string{"calls"} }

func (s *CallSource) Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error) {
	rows, err := s.repo.ListRecent(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("activity.CallSource.Fetch: %w", err)
	}

	ids := make([]string, 0, len(rows)*2)
	for _, r := range rows {
		ids = append(ids, r.CallerID, r.RecipientID)
	}
	profiles := s.profiles.Lookup(ctx, ids)

	out := make([]domain.Session, 0, len(rows))
	for _, r := range rows {
		out = append(out, callSession(r, profiles))
	}
	return out, nil
}

func callSession(r *domain.Call, profiles map[string]domain.Profile) domain.Session {
	username, avatar := ownerFields(profiles, r.CallerID)
	recipient, _ := ownerFields(profiles, r.RecipientID)
	return domain.Session{
		ID:                r.ID,
		Type:              domain.SessionCall,
		UserID:            r.CallerID,
		Username:          username,
		AvatarURL:         avatar,
		Content:           r.CallType,
		Media:             []string{},
		Status:            r.Status,
		CreatedAt:         r.CreatedAt,
		StartedAt:         r.StartedAt,
		ParticipantCount:  r.ParticipantCount,
		RecipientID:       r.RecipientID,
		RecipientUsername: recipient,
	}
}

// ---------------------------------------------------------------------------
// Direct messages
// ---------------------------------------------------------------------------

// chatScanFactor widens the raw message window so that collapsing messages
// into conversations still fills the requested limit.
const chatScanFactor = 4

// ChatSource emits one session per conversation: the latest message of each
// unordered participant pair.
type ChatSource struct {
	repo     domain.DirectMessageRepository
	profiles *ProfileDirectory
}

func NewChatSource(repo domain.DirectMessageRepository, profiles *ProfileDirectory) *ChatSource {
	return &ChatSource{repo: repo, profiles: profiles}
}

func (s *ChatSource) Name() string                { return "chats" }
func (s *ChatSource) Class() domain.ActivityClass { return domain.ClassChats }
func (s *ChatSource) Tables() []string            { return []string{"direct_messages"} }

func (s *ChatSource) Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error) {
	raw := f
	if raw.Limit > 0 {
		raw.Limit *= chatScanFactor
	}
	rows, err := s.repo.ListRecent(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("activity.ChatSource.Fetch: %w", err)
	}

	latest := LatestPerConversation(rows)
	if f.Limit > 0 && len(latest) > f.Limit {
		latest = latest[:f.Limit]
	}

	ids := make([]string, 0, len(latest)*2)
	for _, m := range latest {
		ids = append(ids, m.SenderID, m.RecipientID)
	}
	profiles := s.profiles.Lookup(ctx, ids)

	out := make([]domain.Session, 0, len(latest))
	for _, m := range latest {
		out = append(out, chatSession(m, profiles))
	}
	return out, nil
}

// ConversationKey is the unordered participant pair of a message.
func ConversationKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// LatestPerConversation keeps the most recent message of every participant
// pair, newest conversation first. Ties on created_at keep the first row seen.
func LatestPerConversation(rows []*domain.DirectMessage) []*domain.DirectMessage {
	byPair := make(map[string]*domain.DirectMessage, len(rows))
	for _, m := range rows {
		key := ConversationKey(m.SenderID, m.RecipientID)
		cur, ok := byPair[key]
		if !ok || m.CreatedAt.After(cur.CreatedAt) {
			byPair[key] = m
		}
	}

	out := make([]*domain.DirectMessage, 0, len(byPair))
	for _, m := range byPair {
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func chatSession(m *domain.DirectMessage, profiles map[string]domain.Profile) domain.Session {
	username, avatar := ownerFields(profiles, m.SenderID)
	recipient, _ := ownerFields(profiles, m.RecipientID)
	status := "active"
	if m.OriginalContent != nil {
		status = "redacted"
	}
	return domain.Session{
		ID:                m.ID,
		Type:              domain.SessionChat,
		UserID:            m.SenderID,
		Username:          username,
		AvatarURL:         avatar,
		Content:           m.Content,
		Media:             nonNilMedia(m.Media),
		Status:            status,
		CreatedAt:         m.CreatedAt,
		RecipientID:       m.RecipientID,
		RecipientUsername: recipient,
	}
}

// ---------------------------------------------------------------------------
// Dating ads
// ---------------------------------------------------------------------------

type BodyContactSource struct {
	repo     domain.DatingAdRepository
	profiles *ProfileDirectory
}

func NewBodyContactSource(repo domain.DatingAdRepository, profiles *ProfileDirectory) *BodyContactSource {
	return &BodyContactSource{repo: repo, profiles: profiles}
}

func (s *BodyContactSource) Name() string                { return "bodycontact" }
func (s *BodyContactSource) Class() domain.ActivityClass { return domain.ClassBodyContact }
func (s *BodyContactSource) Tables() []string            { return []string{"dating_ads"} }

func (s *BodyContactSource) Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error) {
	items, err := s.FetchItems(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Session, 0, len(items))
	for _, it := range items {
		out = append(out, it.AsSession())
	}
	return out, nil
}

func (s *BodyContactSource) FetchItems(ctx context.Context, f domain.ActivityFilter) ([]domain.ContentItem, error) {
	rows, err := s.repo.ListRecent(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("activity.BodyContactSource.Fetch: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	profiles := s.profiles.Lookup(ctx, ids)

	out := make([]domain.ContentItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, adItem(r, profiles))
	}
	return out, nil
}

func adItem(r *domain.DatingAd, profiles map[string]domain.Profile) domain.ContentItem {
	username, avatar := ownerFields(profiles, r.UserID)
	content := r.Description
	if r.Title != "" {
		content = r.Title + "\n" + r.Description
	}
	return domain.ContentItem{
		ID:              r.ID,
		Kind:            domain.ContentAd,
		UserID:          r.UserID,
		CreatorUsername: username,
		AvatarURL:       avatar,
		Content:         content,
		OriginalContent: r.OriginalDescription,
		Media:           nonNilMedia(r.Photos),
		Visibility:      domain.AdVisibility(r.IsActive, r.ModerationStatus),
		Location:        r.Location,
		Tags:            r.Tags,
		CreatedAt:       r.CreatedAt,
	}
}

// ---------------------------------------------------------------------------
// Posts, stories, videos and audios
// ---------------------------------------------------------------------------

type ContentSource struct {
	repo     domain.MediaContentRepository
	profiles *ProfileDirectory
}

func NewContentSource(repo domain.MediaContentRepository, profiles *ProfileDirectory) *ContentSource {
	return &ContentSource{repo: repo, profiles: profiles}
}

func (s *ContentSource) Name() string                { return "content" }
func (s *ContentSource) Class() domain.ActivityClass { return domain.ClassContent }
func (s *ContentSource) Tables() []string {
	kinds := domain.MediaKinds()
	out := make([]string, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, k.Table())
	}
	return out
}

// Fetch reads every media kind. A failing kind fails the whole source, since
// the aggregator already isolates sources from each other.
func (s *ContentSource) Fetch(ctx context.Context, f domain.ActivityFilter) ([]domain.Session, error) {
	var out []domain.Session
	for _, k := range domain.MediaKinds() {
		items, err := s.FetchItems(ctx, k, f)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			out = append(out, it.AsSession())
		}
	}
	if out == nil {
		out = []domain.Session{}
	}
	return out, nil
}

// FetchItems reads one media kind as content items.
func (s *ContentSource) FetchItems(ctx context.Context, kind domain.ContentKind, f domain.ActivityFilter) ([]domain.ContentItem, error) {
	rows, err := s.repo.ListRecent(ctx, kind, f)
	if err != nil {
		return nil, fmt.Errorf("activity.ContentSource.FetchItems(%s): %w", kind, err)
	}

	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, mediaOwner(r))
	}
	profiles := s.profiles.Lookup(ctx, ids)

	out := make([]domain.ContentItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, mediaItem(r, profiles))
	}
	return out, nil
}

func mediaOwner(r *domain.MediaContent) string {
	creator := ""
	if r.CreatorID != nil {
		creator = *r.CreatorID
	}
	return domain.ResolveOwnerID(creator, r.UserID)
}

func mediaItem(r *domain.MediaContent, profiles map[string]domain.Profile) domain.ContentItem {
	username, avatar := ownerFields(profiles, mediaOwner(r))
	creator := ""
	if r.CreatorID != nil {
		creator = *r.CreatorID
	}
	return domain.ContentItem{
		ID:              r.ID,
		Kind:            r.Kind,
		UserID:          r.UserID,
		CreatorID:       creator,
		CreatorUsername: username,
		AvatarURL:       avatar,
		Content:         r.Content,
		OriginalContent: r.OriginalContent,
		Media:           nonNilMedia(r.Media),
		Visibility:      r.Visibility,
		IsPPV:           r.IsPPV,
		PPVAmount:       r.PPVAmount,
		Views:           r.Views,
		Likes:           r.Likes,
		Comments:        r.Comments,
		CreatedAt:       r.CreatedAt,
	}
}
