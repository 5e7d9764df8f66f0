package company

type CreateCompanyDTO struct {
	CNPJ     string `json:"cnpj"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

type UpdateCompanyDTO struct {
	Name   *string `json:"name,omitempty"`
	Status *string `json:"status,omitempty"`
}

type CompanyResponse struct {
	Company *Company `json:"company"`
}
