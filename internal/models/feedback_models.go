package models

import "time"

// Feedback left by a store on a completed order.
type Feedback struct {
	ID        int64     `json:"feedback_id,omitempty"`
	OrderID   int64     `json:"order_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// FeedbackPayload is the store's feedback form.
type FeedbackPayload struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
