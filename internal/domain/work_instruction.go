package domain

import "time"

// ReviewCadence is how often a work instruction is reviewed.
type ReviewCadence string

const (
	ReviewDaily   ReviewCadence = "daily"
	ReviewWeekly  ReviewCadence = "weekly"
	ReviewMonthly ReviewCadence = "monthly"
	ReviewOneTime ReviewCadence = "onetime"
)

var reviewCadences = []ReviewCadence{ReviewDaily, ReviewWeekly, ReviewMonthly, ReviewOneTime}

// OrderType says whether recipients must follow an instruction to the letter.
type OrderType string

const (
	OrderStrict OrderType = "strict"
	OrderFollow OrderType = "Follow"
)

var orderTypes = []OrderType{OrderStrict, OrderFollow}

// WorkInstruction is a standing order from a creator to recipients. Proofs
// may reference it. Media carries the audio recording in the voice slot.
type WorkInstruction struct {
	ID           string
	CreatorID    string
	RecipientIDs []string
	Type         *string
	Remarks      *string
	Media        MediaRefs
	ReviewTime   ReviewCadence
	OrderType    *OrderType
	MediaSelect  []string
	SavedAt      time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRecipient reports whether userID is one of the instruction's recipients.
func (w *WorkInstruction) HasRecipient(userID string) bool {
	for _, id := range w.RecipientIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ParseReviewCadence matches v case-insensitively.
func ParseReviewCadence(v string) (ReviewCadence, bool) {
	return matchFold(v, reviewCadences)
}

// ParseOrderType matches v case-insensitively.
func ParseOrderType(v string) (OrderType, bool) {
	return matchFold(v, orderTypes)
}
