// Package http exposes the marketplace over a JSON HTTP API.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/mealgrid/mealgrid/internal/platform/errors"
	platformjwt "github.com/mealgrid/mealgrid/internal/platform/jwt"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/directory"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/identity"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/ledger"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/provisioning"
	"github.com/mealgrid/mealgrid/internal/services/marketplace/storage"
)

// Handler bundles the marketplace services behind HTTP endpoints.
type Handler struct {
	sequencer   *provisioning.Sequencer
	aggregator  *ledger.Aggregator
	directory   *directory.Service
	credentials storage.CredentialStore
	signer      *platformjwt.Signer
}

// NewHandler builds the HTTP handler over the given services.
func NewHandler(
	sequencer *provisioning.Sequencer,
	aggregator *ledger.Aggregator,
	dir *directory.Service,
	credentials storage.CredentialStore,
	signer *platformjwt.Signer,
) *Handler {
	return &Handler{
		sequencer:   sequencer,
		aggregator:  aggregator,
		directory:   dir,
		credentials: credentials,
		signer:      signer,
	}
}

// Router wires the public and admin-protected routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", h.handleHealth)
	r.Post("/v1/login", h.handleLogin)

	r.Group(func(admin chi.Router) {
		admin.Use(RequireRole(h.signer, string(identity.RoleAdmin)))
		admin.Post("/v1/identities", h.handleProvision)
		admin.Get("/v1/ledger/summary", h.handleBalanceSummary)
		admin.Get("/v1/ledger/transactions", h.handleListTransactions)
		admin.Get("/v1/directory/users", h.handleListUsers)
		admin.Get("/v1/directory/restaurants", h.handleListRestaurants)
		admin.Get("/v1/directory/couriers", h.handleListCouriers)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
	Role        string `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid login payload"))
		return
	}

	credential, err := h.credentials.GetCredentialByEmail(r.Context(), req.Email)
	if err != nil {
		writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid email or password"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "invalid email or password"))
		return
	}

	token, err := h.signer.SignAccess(platformjwt.Claims{
		IdentityID: credential.ID,
		Email:      credential.Email,
		Role:       string(credential.Role),
	})
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.CodeUnknown, "issue access token", err))
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, Role: string(credential.Role)})
}

type provisionRequest struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	DisplayName    string `json:"displayName"`
	Phone          string `json:"phone"`
	Role           string `json:"role"`
	Locale         string `json:"locale"`
	RestaurantName string `json:"restaurantName"`
	VehicleType    string `json:"vehicleType"`
}

type provisionResponse struct {
	Created    bool   `json:"created"`
	IdentityID string `json:"identityId,omitempty"`
	Message    string `json:"message"`
	FailedStep string `json:"failedStep,omitempty"`
}

func (h *Handler) handleProvision(w http.ResponseWriter, r *http.Request) {
	var req provisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.New(apperrors.CodeProvisionInvalidRole, "invalid provisioning payload"))
		return
	}

	result := h.sequencer.Provision(r.Context(), identity.ProvisionInput{
		Email:          req.Email,
		Password:       req.Password,
		DisplayName:    req.DisplayName,
		Phone:          req.Phone,
		Role:           identity.Role(req.Role),
		Locale:         req.Locale,
		RestaurantName: req.RestaurantName,
		VehicleType:    req.VehicleType,
	})

	if result.Created {
		writeJSON(w, http.StatusCreated, provisionResponse{
			Created:    true,
			IdentityID: result.IdentityID,
			Message:    result.Message,
		})
		return
	}

	status := apperrors.CodeOf(result.Err).HTTPStatus()
	response := provisionResponse{Created: false, Message: result.Message}
	if result.FailedStep != provisioning.StepNone {
		response.FailedStep = result.FailedStep.String()
	}
	writeJSON(w, status, response)
}

type balanceSummaryResponse struct {
	Restaurants    string `json:"restaurants"`
	DeliveryAgents string `json:"deliveryAgents"`
	Clients        string `json:"clients"`
	Platform       string `json:"platform"`
	Total          string `json:"total"`
}

func (h *Handler) handleBalanceSummary(w http.ResponseWriter, r *http.Request) {
	summary := h.aggregator.BalanceSummary(r.Context())
	writeJSON(w, http.StatusOK, balanceSummaryResponse{
		Restaurants:    summary.Restaurants.String(),
		DeliveryAgents: summary.DeliveryAgents.String(),
		Clients:        summary.Clients.String(),
		Platform:       summary.Platform.String(),
		Total:          summary.Total().String(),
	})
}

type transactionView struct {
	ID             string  `json:"id"`
	AccountID      string  `json:"accountId"`
	Amount         string  `json:"amount"`
	Type           string  `json:"type"`
	Description    string  `json:"description"`
	OrderRef       *string `json:"orderRef,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	AccountType    *string `json:"accountType"`
	OwnerName      *string `json:"ownerName"`
	RestaurantName *string `json:"restaurantName"`
}

type transactionPageResponse struct {
	Transactions []transactionView `json:"transactions"`
	Page         int               `json:"page"`
	PageSize     int               `json:"pageSize"`
	TotalCount   int64             `json:"totalCount"`
	TotalPages   int64             `json:"totalPages"`
}

func (h *Handler) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	query := ledger.ListQuery{
		Type:        strings.TrimSpace(r.URL.Query().Get("type")),
		AccountType: strings.TrimSpace(r.URL.Query().Get("accountType")),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeLedgerInvalidPage, "page must be an integer"))
			return
		}
		query.Page = page
	}
	if raw := r.URL.Query().Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeLedgerInvalidPage, "pageSize must be an integer"))
			return
		}
		query.PageSize = size
	}
	if raw := r.URL.Query().Get("start"); raw != "" {
		start, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeLedgerInvalidPage, "start must be RFC 3339"))
			return
		}
		query.Start = &start
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		end, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, apperrors.New(apperrors.CodeLedgerInvalidPage, "end must be RFC 3339"))
			return
		}
		query.End = &end
	}

	page, err := h.aggregator.ListTransactions(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]transactionView, 0, len(page.Transactions))
	for _, tx := range page.Transactions {
		views = append(views, transactionView{
			ID:             tx.ID,
			AccountID:      tx.AccountID,
			Amount:         tx.Amount,
			Type:           tx.Type,
			Description:    tx.Description,
			OrderRef:       tx.OrderRef,
			CreatedAt:      tx.CreatedAt.Format(time.RFC3339),
			AccountType:    tx.AccountType,
			OwnerName:      tx.OwnerName,
			RestaurantName: tx.RestaurantName,
		})
	}

	writeJSON(w, http.StatusOK, transactionPageResponse{
		Transactions: views,
		Page:         page.Page,
		PageSize:     page.PageSize,
		TotalCount:   page.TotalCount,
		TotalPages:   page.TotalPages,
	})
}

type userView struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
	CreatedAt   string `json:"createdAt"`
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := h.directory.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]userView, 0, len(records))
	for _, record := range records {
		views = append(views, userView{
			ID:          record.ID,
			DisplayName: record.DisplayName,
			Email:       record.Email,
			Phone:       record.Phone,
			Role:        string(record.Role),
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": views})
}

func (h *Handler) handleListRestaurants(w http.ResponseWriter, r *http.Request) {
	listings, err := h.directory.ListRestaurants(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []storage.RestaurantListing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"restaurants": listings})
}

func (h *Handler) handleListCouriers(w http.ResponseWriter, r *http.Request) {
	listings, err := h.directory.ListCouriers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if listings == nil {
		listings = []storage.CourierListing{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"couriers": listings})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), map[string]string{
		"error": err.Error(),
		"code":  string(code),
	})
}
