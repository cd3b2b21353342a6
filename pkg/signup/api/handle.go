package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"
	apperrors "github.com/tendant/inspection-idm/pkg/errors"
	"github.com/tendant/inspection-idm/pkg/provisioning"
	"github.com/tendant/inspection-idm/pkg/session"
	"github.com/tendant/inspection-idm/pkg/signup"
	"github.com/tendant/inspection-idm/pkg/utils"
)

const CompanyIDParam = "companyId"

type Handle struct {
	service *signup.SignupService
	limiter func(http.Handler) http.Handler
}

type Option func(*Handle)

func WithLimiter(mw func(http.Handler) http.Handler) Option {
	return func(h *Handle) {
		h.limiter = mw
	}
}

func NewHandle(service *signup.SignupService, opts ...Option) Handle {
	h := Handle{
		service: service,
		limiter: func(next http.Handler) http.Handler { return next },
	}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// RegisterRoutes mounts the public sign-up endpoints.
func (h Handle) RegisterRoutes(r chi.Router) {
	r.With(h.limiter).Post("/signup/company", h.SignUpCompany)
	r.With(h.limiter).Post("/signup/inspector", h.SignUpInspector)
}

// RegisterCompanyRoutes mounts the invite endpoints under
// /companies/{companyId}. Callers must be signed in to the same company.
func (h Handle) RegisterCompanyRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(session.IsAuthorized)
		r.Use(session.OwnsCompany(CompanyIDParam))
		r.Post("/employees", h.InviteEmployee)
		r.Post("/inspectors", h.InviteInspector)
	})
}

// SignUpCompany handles POST /signup/company
func (h Handle) SignUpCompany(w http.ResponseWriter, r *http.Request) {
	var req SignUpCompanyRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	var in provisioning.CompanySignup
	if err := copier.Copy(&in, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	res, err := h.service.RegisterCompany(r.Context(), in)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatedResponse{ID: res.AccountID})
}

// SignUpInspector handles POST /signup/inspector
func (h Handle) SignUpInspector(w http.ResponseWriter, r *http.Request) {
	var req SignUpInspectorRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	var in provisioning.InspectorSignup
	if err := copier.Copy(&in, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	id, err := h.service.RegisterInspector(r.Context(), in)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, CreatedResponse{ID: id})
}

// InviteEmployee handles POST /companies/{companyId}/employees
func (h Handle) InviteEmployee(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromPath(w, r)
	if !ok {
		return
	}
	var req InviteEmployeeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	var in provisioning.EmployeeInvite
	if err := copier.Copy(&in, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	p, err := h.service.InviteEmployee(r.Context(), companyID, in)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}

	slog.Info("Employee invited", "company_id", companyID, "account_id", p.Identity().AccountID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

// InviteInspector handles POST /companies/{companyId}/inspectors
func (h Handle) InviteInspector(w http.ResponseWriter, r *http.Request) {
	companyID, ok := companyFromPath(w, r)
	if !ok {
		return
	}
	var req InviteInspectorRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}

	var in provisioning.InspectorInvite
	if err := copier.Copy(&in, &req); err != nil {
		apperrors.Write(w, r, err)
		return
	}
	p, err := h.service.InviteInspector(r.Context(), companyID, in)
	if err != nil {
		apperrors.Write(w, r, err)
		return
	}

	slog.Info("Inspector invited", "company_id", companyID, "account_id", p.Identity().AccountID)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func companyFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, CompanyIDParam), 10, 64)
	if err != nil {
		apperrors.Write(w, r, apperrors.InvalidInput(CompanyIDParam, "must be a number"))
		return 0, false
	}
	return id, true
}
