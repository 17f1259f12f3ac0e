package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// ProfileResponse is the public slice of a directory user.
type ProfileResponse struct {
	ID           string          `json:"id"`
	FullName     string          `json:"full_name"`
	Email        string          `json:"email"`
	Username     string          `json:"username"`
	MobileNumber string          `json:"mobile_number"`
	Department   string          `json:"department"`
	Role         domain.UserRole `json:"role"`
}

// MediaResponse carries optional blob URLs.
type MediaResponse struct {
	VoiceNoteURL *string `json:"voice_note_url"`
	VideoURL     *string `json:"video_url"`
	ImageURL     *string `json:"image_url"`
}

// TicketBriefResponse is the reduced ticket shape joined into proofs and reminders.
type TicketBriefResponse struct {
	ID          string              `json:"id"`
	Type        domain.TicketType   `json:"type"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
}

// NewProfile maps a profile.
func NewProfile(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:           p.ID,
		FullName:     p.FullName,
		Email:        p.Email,
		Username:     p.Username,
		MobileNumber: p.MobileNumber,
		Department:   p.Department,
		Role:         p.Role,
	}
}

// NewProfilePtr maps an optional profile.
func NewProfilePtr(p *domain.Profile) *ProfileResponse {
	if p == nil {
		return nil
	}
	out := NewProfile(*p)
	return &out
}

// NewProfiles maps a list, never returning nil.
func NewProfiles(ps []domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProfile(p))
	}
	return out
}

func newMedia(m domain.MediaRefs) MediaResponse {
	return MediaResponse{VoiceNoteURL: m.VoiceNoteURL, VideoURL: m.VideoURL, ImageURL: m.ImageURL}
}

func newTicketBrief(b *service.TicketBrief) *TicketBriefResponse {
	if b == nil {
		return nil
	}
	return &TicketBriefResponse{ID: b.ID, Type: b.Type, Description: b.Description, Status: b.Status}
}
