package swagger

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

const bearerAuth = "bearerAuth"

type endpoint struct {
	method      string
	path        string
	summary     string
	tag         string
	secured     bool
	status      int
	body        *openapi3.Schema
	queryParams []string
}

var (
	docOnce sync.Once
	doc     *openapi3.T
)

// Document returns the OpenAPI description of the /api/v1 surface.
func Document() *openapi3.T {
	docOnce.Do(func() {
		doc = buildDocument()
	})
	return doc
}

func DocumentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Document())
	}
}

func buildDocument() *openapi3.T {
	t := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "Reputation Management API",
			Description: "Companies, consumer feedback and reputation metrics",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{{URL: "/api/v1"}},
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerAuth: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	for _, e := range endpoints() {
		item := t.Paths.Value(e.path)
		if item == nil {
			item = &openapi3.PathItem{}
			t.Paths.Set(e.path, item)
		}
		item.SetOperation(e.method, e.operation())
	}
	return t
}

func (e endpoint) operation() *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Summary = e.summary
	op.Tags = []string{e.tag}
	op.OperationID = operationID(e.method, e.path)

	for _, name := range pathParams(e.path) {
		op.AddParameter(openapi3.NewPathParameter(name).WithSchema(openapi3.NewStringSchema()))
	}
	for _, name := range e.queryParams {
		op.AddParameter(openapi3.NewQueryParameter(name).WithSchema(openapi3.NewStringSchema()))
	}
	if e.body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(e.body),
		}
	}
	if e.secured {
		op.Security = &openapi3.SecurityRequirements{
			openapi3.NewSecurityRequirement().Authenticate(bearerAuth),
		}
	}

	status := e.status
	if status == 0 {
		status = http.StatusOK
	}
	op.Responses = &openapi3.Responses{}
	op.AddResponse(status, openapi3.NewResponse().WithDescription(http.StatusText(status)))
	op.AddResponse(http.StatusBadRequest, openapi3.NewResponse().WithDescription("Validation failed"))
	if e.secured {
		op.AddResponse(http.StatusUnauthorized, openapi3.NewResponse().WithDescription("Authentication required"))
		op.AddResponse(http.StatusForbidden, openapi3.NewResponse().WithDescription("Insufficient permissions"))
	}
	return op
}

func pathParams(path string) []string {
	var params []string
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			params = append(params, strings.Trim(segment, "{}"))
		}
	}
	return params
}

// operationID turns "GET /companies/{id}" into "getCompaniesId".
func operationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))
	for _, part := range strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '{' || r == '}' || r == '-'
	}) {
		b.WriteString(strings.ToUpper(part[:1]) + part[1:])
	}
	return b.String()
}

func object(required []string, props map[string]*openapi3.Schema) *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithProperties(props)
	s.Required = required
	return s
}

func endpoints() []endpoint {
	str := openapi3.NewStringSchema
	rating := openapi3.NewIntegerSchema().WithMin(1).WithMax(5)

	register := object([]string{"email", "password", "userType"}, map[string]*openapi3.Schema{
		"email":       openapi3.NewStringSchema().WithFormat("email"),
		"password":    str(),
		"name":        str(),
		"userType":    openapi3.NewStringSchema().WithEnum("consumer", "company"),
		"cnpj":        str(),
		"companyName": str(),
		"category":    str(),
	})
	login := object([]string{"email", "password"}, map[string]*openapi3.Schema{
		"email":    str(),
		"password": str(),
	})
	refresh := object(nil, map[string]*openapi3.Schema{"refresh_token": str()})
	createCompany := object([]string{"cnpj", "name", "category"}, map[string]*openapi3.Schema{
		"cnpj":     str(),
		"name":     str(),
		"category": str(),
	})
	updateCompany := object(nil, map[string]*openapi3.Schema{
		"name":   str(),
		"status": openapi3.NewStringSchema().WithEnum("ACTIVE", "INACTIVE"),
	})
	createFeedback := object([]string{"companyId", "rating"}, map[string]*openapi3.Schema{
		"companyId": str(),
		"rating":    rating,
		"comment":   str(),
	})
	updateFeedback := object(nil, map[string]*openapi3.Schema{
		"rating":  rating,
		"comment": str(),
	})
	calculate := object([]string{"companyId"}, map[string]*openapi3.Schema{
		"companyId":   str(),
		"saveHistory": openapi3.NewBoolSchema(),
	})
	assignRole := object([]string{"userId", "roleId"}, map[string]*openapi3.Schema{
		"userId": str(),
		"roleId": str(),
	})
	checkPermission := object([]string{"resource", "action"}, map[string]*openapi3.Schema{
		"resource":  str(),
		"action":    str(),
		"companyId": str(),
	})

	list := []string{"page", "limit", "search", "category"}

	return []endpoint{
		{method: http.MethodGet, path: "/health", summary: "Component health", tag: "health"},
		{method: http.MethodGet, path: "/ping", summary: "Liveness probe", tag: "health"},

		{method: http.MethodPost, path: "/auth/register", summary: "Register a consumer or company account", tag: "auth", status: http.StatusCreated, body: register},
		{method: http.MethodPost, path: "/auth/login", summary: "Log in with email and password", tag: "auth", body: login},
		{method: http.MethodPost, path: "/auth/refresh", summary: "Rotate the token pair", tag: "auth", body: refresh},
		{method: http.MethodPost, path: "/auth/logout", summary: "Revoke the refresh token", tag: "auth"},

		{method: http.MethodGet, path: "/users/me", summary: "Current user with permissions", tag: "users", secured: true},

		{method: http.MethodGet, path: "/companies", summary: "List companies", tag: "companies", queryParams: append(list, "status")},
		{method: http.MethodPost, path: "/companies", summary: "Create a company", tag: "companies", secured: true, status: http.StatusCreated, body: createCompany},
		{method: http.MethodGet, path: "/companies/mine", summary: "Company owned by the caller", tag: "companies", secured: true},
		{method: http.MethodGet, path: "/companies/{id}", summary: "Get a company", tag: "companies"},
		{method: http.MethodPut, path: "/companies/{id}", summary: "Update a company", tag: "companies", secured: true, body: updateCompany},

		{method: http.MethodGet, path: "/feedbacks", summary: "List active feedback", tag: "feedbacks", queryParams: append(list, "consumerId", "companyId")},
		{method: http.MethodPost, path: "/feedbacks", summary: "Submit feedback", tag: "feedbacks", secured: true, status: http.StatusCreated, body: createFeedback},
		{method: http.MethodGet, path: "/feedbacks/{id}", summary: "Get feedback", tag: "feedbacks"},
		{method: http.MethodPut, path: "/feedbacks/{id}", summary: "Update own feedback", tag: "feedbacks", secured: true, body: updateFeedback},
		{method: http.MethodDelete, path: "/feedbacks/{id}", summary: "Delete own feedback", tag: "feedbacks", secured: true, status: http.StatusNoContent},
		{method: http.MethodPost, path: "/consumers", summary: "Create the caller's consumer profile", tag: "feedbacks", secured: true, status: http.StatusCreated},
		{method: http.MethodGet, path: "/consumers/{id}", summary: "Get a consumer profile", tag: "feedbacks", secured: true},

		{method: http.MethodGet, path: "/reputation/companies/{companyId}", summary: "Reputation metrics of a company", tag: "reputation"},
		{method: http.MethodGet, path: "/reputation/companies/{companyId}/history", summary: "Metrics history with trend", tag: "reputation", queryParams: []string{"limit"}},
		{method: http.MethodGet, path: "/reputation/rankings", summary: "Companies ranked by average rating", tag: "reputation", queryParams: []string{"limit", "category"}},

		{method: http.MethodGet, path: "/admin/companies", summary: "List companies (admin)", tag: "admin", secured: true, queryParams: append(list, "status")},
		{method: http.MethodGet, path: "/admin/feedbacks", summary: "List feedback (admin)", tag: "admin", secured: true, queryParams: append(list, "consumerId", "companyId")},
		{method: http.MethodPost, path: "/admin/reputation/calculate", summary: "Recalculate reputation metrics", tag: "admin", secured: true, body: calculate},
		{method: http.MethodGet, path: "/admin/reputation/metrics", summary: "Reputation metrics (admin)", tag: "admin", secured: true, queryParams: []string{"companyId"}},
		{method: http.MethodGet, path: "/admin/reputation/history", summary: "Reputation history (admin)", tag: "admin", secured: true, queryParams: []string{"companyId", "limit"}},

		{method: http.MethodPost, path: "/admin/iam/roles", summary: "Assign a role", tag: "iam", secured: true, status: http.StatusCreated, body: assignRole},
		{method: http.MethodGet, path: "/admin/iam/roles", summary: "List roles", tag: "iam", secured: true},
		{method: http.MethodDelete, path: "/admin/iam/roles/{userId}/{roleId}", summary: "Remove a role", tag: "iam", secured: true},
		{method: http.MethodGet, path: "/admin/iam/permissions", summary: "List permissions", tag: "iam", secured: true},
		{method: http.MethodPost, path: "/admin/iam/permissions/check", summary: "Check a permission for the caller", tag: "iam", secured: true, body: checkPermission},
		{method: http.MethodGet, path: "/admin/iam/permissions/me", summary: "Permissions of the caller", tag: "iam", secured: true},
		{method: http.MethodGet, path: "/admin/iam/permissions/user/{userId}", summary: "Permissions of a user", tag: "iam", secured: true},
	}
}
