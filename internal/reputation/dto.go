package reputation

import (
	"github.com/frahmantamala/reputation-management/internal"
	"github.com/frahmantamala/reputation-management/internal/core/common/validation"
)

type CalculateReputationDTO struct {
	CompanyID   string `json:"companyId"`
	SaveHistory *bool  `json:"saveHistory,omitempty"`
}

func (d *CalculateReputationDTO) Validate() *internal.AppError {
	validator := validation.NewValidator()
	validator.Field("companyId", d.CompanyID).Required()
	return validator.Validate()
}

// ToInput defaults SaveHistory to true.
func (d *CalculateReputationDTO) ToInput() CalculateInput {
	save := true
	if d.SaveHistory != nil {
		save = *d.SaveHistory
	}
	return CalculateInput{CompanyID: d.CompanyID, SaveHistory: save}
}

type CalculateResponse struct {
	Message string   `json:"message"`
	Metrics *Metrics `json:"metrics"`
}

type MetricsResponse struct {
	Metrics *MetricsView `json:"metrics"`
}
