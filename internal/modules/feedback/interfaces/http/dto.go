package http

import (
	"github.com/google/uuid"
	"github.com/ltaportal/procurement/internal/modules/feedback/application"
	"github.com/ltaportal/procurement/internal/modules/feedback/domain"
)

type SubmitFeedbackRequest struct {
	OrderID               uuid.UUID `json:"order_id" validate:"required"`
	Rating                int       `json:"rating" validate:"required,min=1,max=5"`
	OrderingProcessRating *int      `json:"ordering_process_rating" validate:"omitempty,min=1,max=5"`
	ProductQualityRating  *int      `json:"product_quality_rating" validate:"omitempty,min=1,max=5"`
	DeliverySpeedRating   *int      `json:"delivery_speed_rating" validate:"omitempty,min=1,max=5"`
	CommunicationRating   *int      `json:"communication_rating" validate:"omitempty,min=1,max=5"`
	WouldRecommend        bool      `json:"would_recommend"`
	Comments              string    `json:"comments" validate:"max=4000"`
}

func (r SubmitFeedbackRequest) toInput() application.SubmitFeedback {
	return application.SubmitFeedback{
		OrderID:               r.OrderID,
		Rating:                r.Rating,
		OrderingProcessRating: r.OrderingProcessRating,
		ProductQualityRating:  r.ProductQualityRating,
		DeliverySpeedRating:   r.DeliverySpeedRating,
		CommunicationRating:   r.CommunicationRating,
		WouldRecommend:        r.WouldRecommend,
		Comments:              r.Comments,
	}
}

type RespondRequest struct {
	Response string `json:"response" validate:"required,max=4000"`
}

type ReportIssueRequest struct {
	OrderID     *uuid.UUID      `json:"order_id"`
	IssueType   string          `json:"issue_type" validate:"required,max=50"`
	Severity    domain.Severity `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Title       string          `json:"title" validate:"required,max=255"`
	Description string          `json:"description" validate:"required,max=8000"`
}

type UpdateIssueRequest struct {
	Status domain.IssueStatus `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}
