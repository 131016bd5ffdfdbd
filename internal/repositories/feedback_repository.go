package repositories

import (
	"context"
	"net/http"

	"kitchen_control/internal/models"
)

// FeedbackRepository defines the remote order-feedback calls.
type FeedbackRepository interface {
	List(ctx context.Context) ([]models.Feedback, error)
	Create(ctx context.Context, orderID int64, payload models.FeedbackPayload) (*models.Feedback, error)
}

type feedbackRepository struct {
	api *APIClient
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(api *APIClient) FeedbackRepository {
	return &feedbackRepository{api: api}
}

func (r *feedbackRepository) List(ctx context.Context) ([]models.Feedback, error) {
	return fetchList(ctx, r.api, "/feedbacks", nil, mapFeedback)
}

func (r *feedbackRepository) Create(ctx context.Context, orderID int64, payload models.FeedbackPayload) (*models.Feedback, error) {
	body := feedbackBody{OrderID: orderID, Rating: payload.Rating, Comment: payload.Comment}
	created, err := sendOptional(ctx, r.api, http.MethodPost, "/feedbacks", nil, body, mapFeedback)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return &models.Feedback{OrderID: orderID, Rating: payload.Rating, Comment: payload.Comment}, nil
	}
	return created, nil
}
