package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/pkg/util/timeutil"
)

// WorkInstructionResponse is a standing order. The recording is exposed as
// audio_url.
type WorkInstructionResponse struct {
	ID           string               `json:"id"`
	CreatorID    string               `json:"user_id"`
	RecipientIDs []string             `json:"recipient_ids"`
	Type         *string              `json:"type"`
	Remarks      *string              `json:"remarks"`
	AudioURL     *string              `json:"audio_url"`
	VideoURL     *string              `json:"video_url"`
	ImageURL     *string              `json:"image_url"`
	ReviewTime   domain.ReviewCadence `json:"review_time"`
	OrderType    *domain.OrderType    `json:"order_type"`
	MediaSelect  []string             `json:"media_select"`
	SavedAt      time.Time            `json:"saved_time"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// WorkInstructionViewResponse joins the creator and recipients.
type WorkInstructionViewResponse struct {
	WorkInstructionResponse
	Creator    *ProfileResponse  `json:"creator"`
	Recipients []ProfileResponse `json:"recipients"`
}

// WorkInstructionBriefResponse is the reduced shape joined into proofs.
type WorkInstructionBriefResponse struct {
	ID   string  `json:"id"`
	Type *string `json:"type"`
}

// NewWorkInstructionResponse maps an instruction.
func NewWorkInstructionResponse(w *domain.WorkInstruction, zone timeutil.Zone) WorkInstructionResponse {
	recipients := w.RecipientIDs
	if recipients == nil {
		recipients = []string{}
	}
	selected := w.MediaSelect
	if selected == nil {
		selected = []string{}
	}
	return WorkInstructionResponse{
		ID:           w.ID,
		CreatorID:    w.CreatorID,
		RecipientIDs: recipients,
		Type:         w.Type,
		Remarks:      w.Remarks,
		AudioURL:     w.Media.VoiceNoteURL,
		VideoURL:     w.Media.VideoURL,
		ImageURL:     w.Media.ImageURL,
		ReviewTime:   w.ReviewTime,
		OrderType:    w.OrderType,
		MediaSelect:  selected,
		SavedAt:      zone.In(w.SavedAt),
		CreatedAt:    zone.In(w.CreatedAt),
		UpdatedAt:    zone.In(w.UpdatedAt),
	}
}

// NewWorkInstructionViews maps joined instructions.
func NewWorkInstructionViews(items []service.WorkInstructionView, zone timeutil.Zone) []WorkInstructionViewResponse {
	out := make([]WorkInstructionViewResponse, 0, len(items))
	for i := range items {
		out = append(out, WorkInstructionViewResponse{
			WorkInstructionResponse: NewWorkInstructionResponse(&items[i].Instruction, zone),
			Creator:                 NewProfilePtr(items[i].Creator),
			Recipients:              NewProfiles(items[i].Recipients),
		})
	}
	return out
}

func newWorkInstructionBrief(b *service.WorkInstructionBrief) *WorkInstructionBriefResponse {
	if b == nil {
		return nil
	}
	return &WorkInstructionBriefResponse{ID: b.ID, Type: b.Type}
}
