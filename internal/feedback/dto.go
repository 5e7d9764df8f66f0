package feedback

type CreateFeedbackDTO struct {
	CompanyID string  `json:"companyId"`
	Rating    int     `json:"rating"`
	Comment   *string `json:"comment,omitempty"`
}

type UpdateFeedbackDTO struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

type FeedbackResponse struct {
	Feedback *Feedback `json:"feedback"`
}

type ConsumerResponse struct {
	Consumer *Consumer `json:"consumer"`
}
