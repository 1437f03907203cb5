package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/utafrali/ecommerce-query/internal/service"
	"github.com/utafrali/ecommerce-query/pkg/httputil"
	"github.com/utafrali/ecommerce-query/pkg/pagination"
	"github.com/utafrali/ecommerce-query/pkg/validator"
)

// maxNameLen bounds free-text query parameters.
const maxNameLen = 256

// ECommerceHandler handles HTTP requests for the e-commerce query endpoints.
type ECommerceHandler struct {
	service *service.ECommerceService
	logger  *slog.Logger
}

// NewECommerceHandler creates a new e-commerce HTTP handler.
func NewECommerceHandler(svc *service.ECommerceService, logger *slog.Logger) *ECommerceHandler {
	return &ECommerceHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

type firstNameParams struct {
	CustomerFirstName string `param:"customer_first_name" validate:"required,max=256"`
}

type fullNameParams struct {
	CustomerFullName string `param:"customer_full_name" validate:"required,max=256"`
}

type customerNameParams struct {
	CustomerName string `param:"customer_name" validate:"required,max=256"`
}

type categoryParams struct {
	Category string `param:"category" validate:"required,max=256"`
}

// TermsRequest is the body of POST /terms. It is either
// {"customer_first_name":[...]} or a bare JSON array of names.
type TermsRequest struct {
	CustomerFirstName []string `json:"customer_first_name" validate:"required,min=1,max=100,dive,required,max=256"`
}

// UnmarshalJSON accepts both the object and the bare array form.
func (t *TermsRequest) UnmarshalJSON(b []byte) error {
	if trimmed := bytes.TrimSpace(b); len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &t.CustomerFirstName)
	}
	type plain TermsRequest
	return json.Unmarshal(b, (*plain)(t))
}

// --- Handlers ---

// Term handles GET /api/v1/ecommerce/term
func (h *ECommerceHandler) Term(w http.ResponseWriter, r *http.Request) {
	p := firstNameParams{CustomerFirstName: r.URL.Query().Get("customer_first_name")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.TermQuery(r.Context(), p.CustomerFirstName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Terms handles POST /api/v1/ecommerce/terms
func (h *ECommerceHandler) Terms(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req TermsRequest
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		httputil.WriteValidationError(w, r, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		httputil.WriteValidationError(w, r, errors.New("invalid request body: unexpected data after JSON value"))
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.TermsQuery(r.Context(), req.CustomerFirstName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Prefix handles GET /api/v1/ecommerce/prefix
func (h *ECommerceHandler) Prefix(w http.ResponseWriter, r *http.Request) {
	p := fullNameParams{CustomerFullName: r.URL.Query().Get("customer_full_name")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.PrefixQuery(r.Context(), p.CustomerFullName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Range handles GET /api/v1/ecommerce/range
func (h *ECommerceHandler) Range(w http.ResponseWriter, r *http.Request) {
	from, err := priceParam(r, "from_price")
	if err != nil {
		httputil.WriteInvalidParameter(w, r, err.Error())
		return
	}
	to, err := priceParam(r, "to_price")
	if err != nil {
		httputil.WriteInvalidParameter(w, r, err.Error())
		return
	}
	if from != nil && to != nil && *from > *to {
		httputil.WriteInvalidParameter(w, r, "from_price must not exceed to_price")
		return
	}

	records, err := h.service.RangeQuery(r.Context(), from, to)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// MatchAll handles GET /api/v1/ecommerce/match-all
func (h *ECommerceHandler) MatchAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.MatchAllQuery(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Pagination handles GET /api/v1/ecommerce/pagination
func (h *ECommerceHandler) Pagination(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteInvalidParameter(w, r, err.Error())
		return
	}

	res, err := h.service.PaginationQuery(r.Context(), p.Page, p.PageSize)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.NewPaginatedResponse(res.Records, res.Total, p.Page, p.PageSize))
}

// Wildcard handles GET /api/v1/ecommerce/wildcard
func (h *ECommerceHandler) Wildcard(w http.ResponseWriter, r *http.Request) {
	p := fullNameParams{CustomerFullName: r.URL.Query().Get("customer_full_name")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.WildcardQuery(r.Context(), p.CustomerFullName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Fuzzy handles GET /api/v1/ecommerce/fuzzy
func (h *ECommerceHandler) Fuzzy(w http.ResponseWriter, r *http.Request) {
	p := customerNameParams{CustomerName: r.URL.Query().Get("customer_name")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.FuzzyQuery(r.Context(), p.CustomerName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// Match handles GET /api/v1/ecommerce/match
func (h *ECommerceHandler) Match(w http.ResponseWriter, r *http.Request) {
	p := categoryParams{Category: r.URL.Query().Get("category")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.MatchQueryFullText(r.Context(), p.Category)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

// MatchBoolPrefix handles GET /api/v1/ecommerce/match-bool-prefix
func (h *ECommerceHandler) MatchBoolPrefix(w http.ResponseWriter, r *http.Request) {
	p := fullNameParams{CustomerFullName: r.URL.Query().Get("customer_full_name")}
	if err := validator.Validate(p); err != nil {
		httputil.WriteValidationError(w, r, err)
		return
	}

	records, err := h.service.MatchBoolPrefixFullText(r.Context(), p.CustomerFullName)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: records})
}

var errNotFinite = errors.New("must be a finite number")

// priceParam parses an optional float query parameter. An absent parameter is nil.
func priceParam(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%s %w", name, errNotFinite)
	}
	return &v, nil
}
