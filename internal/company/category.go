package company

type Category string

const (
	CategoryFoodAndBeverage       Category = "FOOD_AND_BEVERAGE"
	CategoryRetail                Category = "RETAIL"
	CategoryServices              Category = "SERVICES"
	CategoryHealth                Category = "HEALTH"
	CategoryEducation             Category = "EDUCATION"
	CategoryTechnology            Category = "TECHNOLOGY"
	CategoryConstruction          Category = "CONSTRUCTION"
	CategoryTransport             Category = "TRANSPORT"
	CategoryTourismAndHospitality Category = "TOURISM_AND_HOSPITALITY"
	CategoryBeautyAndAesthetics   Category = "BEAUTY_AND_AESTHETICS"
	CategoryAutomotive            Category = "AUTOMOTIVE"
	CategoryRealEstate            Category = "REAL_ESTATE"
	CategoryFinancial             Category = "FINANCIAL"
	CategoryEntertainment         Category = "ENTERTAINMENT"
	CategoryFashionAndApparel     Category = "FASHION_AND_APPAREL"
	CategorySportsAndFitness      Category = "SPORTS_AND_FITNESS"
	CategoryPetServices           Category = "PET_SERVICES"
	CategoryLegal                 Category = "LEGAL"
	CategoryConsulting            Category = "CONSULTING"
	CategoryManufacturing         Category = "MANUFACTURING"
	CategoryAgriculture           Category = "AGRICULTURE"
	CategoryEnergy                Category = "ENERGY"
	CategoryTelecommunications    Category = "TELECOMMUNICATIONS"
	CategoryMediaAndAdvertising   Category = "MEDIA_AND_ADVERTISING"
	CategoryNonProfit             Category = "NON_PROFIT"
	CategoryOther                 Category = "OTHER"
)

var categories = []Category{
	CategoryFoodAndBeverage,
	CategoryRetail,
	CategoryServices,
	CategoryHealth,
	CategoryEducation,
	CategoryTechnology,
	CategoryConstruction,
	CategoryTransport,
	CategoryTourismAndHospitality,
	CategoryBeautyAndAesthetics,
	CategoryAutomotive,
	CategoryRealEstate,
	CategoryFinancial,
	CategoryEntertainment,
	CategoryFashionAndApparel,
	CategorySportsAndFitness,
	CategoryPetServices,
	CategoryLegal,
	CategoryConsulting,
	CategoryManufacturing,
	CategoryAgriculture,
	CategoryEnergy,
	CategoryTelecommunications,
	CategoryMediaAndAdvertising,
	CategoryNonProfit,
	CategoryOther,
}

func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func CategoryNames() []string {
	out := make([]string, len(categories))
	for i, c := range categories {
		out[i] = string(c)
	}
	return out
}

func IsValidCategory(s string) bool {
	for _, c := range categories {
		if string(c) == s {
			return true
		}
	}
	return false
}
