package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback is a client's rating of one order.
type Feedback struct {
	ID                    uuid.UUID  `json:"id" db:"id"`
	OrderID               uuid.UUID  `json:"order_id" db:"order_id"`
	ClientID              uuid.UUID  `json:"client_id" db:"client_id"`
	Rating                int        `json:"rating" db:"rating"`
	OrderingProcessRating *int       `json:"ordering_process_rating,omitempty" db:"ordering_process_rating"`
	ProductQualityRating  *int       `json:"product_quality_rating,omitempty" db:"product_quality_rating"`
	DeliverySpeedRating   *int       `json:"delivery_speed_rating,omitempty" db:"delivery_speed_rating"`
	CommunicationRating   *int       `json:"communication_rating,omitempty" db:"communication_rating"`
	WouldRecommend        bool       `json:"would_recommend" db:"would_recommend"`
	Comments              *string    `json:"comments,omitempty" db:"comments"`
	AdminResponse         *string    `json:"admin_response,omitempty" db:"admin_response"`
	AdminResponseAt       *time.Time `json:"admin_response_at,omitempty" db:"admin_response_at"`
	RespondedBy           *uuid.UUID `json:"responded_by,omitempty" db:"responded_by"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}

// Validate checks the overall rating and every sub-rating that is set.
func (f *Feedback) Validate() error {
	if !validRating(f.Rating) {
		return ErrInvalidRating
	}
	for _, sub := range []*int{f.OrderingProcessRating, f.ProductQualityRating, f.DeliverySpeedRating, f.CommunicationRating} {
		if sub != nil && !validRating(*sub) {
			return ErrInvalidRating
		}
	}
	return nil
}

// Stats aggregates all feedback. Averages are zero when there is none.
type Stats struct {
	Count                 int     `json:"count" db:"count"`
	AverageRating         float64 `json:"average_rating" db:"average_rating"`
	RecommendRate         float64 `json:"recommend_rate" db:"recommend_rate"`
	AverageOrdering       float64 `json:"average_ordering_process" db:"average_ordering"`
	AverageProductQuality float64 `json:"average_product_quality" db:"average_product_quality"`
	AverageDeliverySpeed  float64 `json:"average_delivery_speed" db:"average_delivery_speed"`
	AverageCommunication  float64 `json:"average_communication" db:"average_communication"`
	Responded             int     `json:"responded" db:"responded"`
}

type FeedbackFilter struct {
	ClientID  *uuid.UUID
	MinRating int
	Limit     int
	Offset    int
}

type FeedbackRepository interface {
	Create(ctx context.Context, f *Feedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*Feedback, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*Feedback, error)
	List(ctx context.Context, filter FeedbackFilter) ([]Feedback, error)
	Respond(ctx context.Context, id, adminID uuid.UUID, response string, at time.Time) error
	Stats(ctx context.Context) (*Stats, error)
}
