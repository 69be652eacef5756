package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"propertypal/internal/domain"
	"propertypal/internal/hierarchy"
	"propertypal/internal/members"
	"propertypal/internal/report"

	"go.uber.org/zap"
)

const (
	appPrefix        = "/app/api/v1"
	appProperties    = appPrefix + "/properties"
	appMembers       = appPrefix + "/members"
	appPayments      = appPrefix + "/payments"
	appOccupancySync = appPrefix + "/occupancy/sync"
)

// PaymentsAPI backend for rent payments, remote or local.
type PaymentsAPI interface {
	List(ctx context.Context, memberID string) ([]domain.Payment, error)
	Get(ctx context.Context, id string) (*domain.Payment, error)
	Create(ctx context.Context, in domain.PaymentInput) (*domain.Payment, error)
	Update(ctx context.Context, id string, patch domain.PaymentPatch) (*domain.Payment, error)
	Remove(ctx context.Context, id string) error
}

// AppHandler exposes the in-process hierarchy store and member roster.
// Responses use the Result envelope.
type AppHandler struct {
	store    *hierarchy.Store
	roster   *members.Roster
	payments PaymentsAPI
	logger   *zap.Logger
}

func NewAppHandler(store *hierarchy.Store, roster *members.Roster, payments PaymentsAPI, logger *zap.Logger) *AppHandler {
	return &AppHandler{store: store, roster: roster, payments: payments, logger: logger}
}

// ============================================
// Properties
// ============================================

// Properties handles everything under /app/api/v1/properties.
func (h *AppHandler) Properties(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, appProperties)
	rest = strings.TrimPrefix(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items":            h.store.Properties(),
			"activePropertyId": h.store.ActivePropertyID(),
		}))
	case rest == "reload" && r.Method == http.MethodPost:
		h.Reload(w, r)
	case rest == "active" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, Ok(h.store.ActiveProperty()))
	case rest == "active" && r.Method == http.MethodPost:
		h.SetActive(w, r)
	case rest == "" || rest == "reload" || rest == "active":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		id, sub, _ := strings.Cut(rest, "/")
		h.property(w, r, id, sub)
	}
}

// Reload refetches properties and members, then resyncs occupancy.
func (h *AppHandler) Reload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list := h.store.LoadProperties(ctx)
	h.roster.Load(ctx, "")
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":            list,
		"activePropertyId": h.store.ActivePropertyID(),
	}))
}

func (h *AppHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PropertyID string `json:"propertyId"`
	}
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}
	if req.PropertyID != "" {
		if _, ok := h.store.Property(req.PropertyID); !ok {
			writeJSON(w, http.StatusNotFound, Fail("property not found: "+req.PropertyID))
			return
		}
	}
	h.store.SetActiveProperty(req.PropertyID)
	writeJSON(w, http.StatusOK, Ok(h.store.ActiveProperty()))
}

func (h *AppHandler) property(w http.ResponseWriter, r *http.Request, id, sub string) {
	ctx := r.Context()

	p, ok := h.store.Property(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, Fail("property not found: "+id))
		return
	}

	switch {
	case sub == "" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, Ok(p))
	case sub == "" && r.Method == http.MethodPatch:
		var patch domain.PropertyPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		updated, err := h.store.UpdateProperty(ctx, id, patch)
		if err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(updated))
	case sub == "" && r.Method == http.MethodDelete:
		if err := h.store.RemoveProperty(ctx, id); err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
	case sub == "summary" && r.Method == http.MethodGet:
		summary, _ := h.store.Summary(id)
		writeJSON(w, http.StatusOK, Ok(summary))
	case sub == "available-beds" && r.Method == http.MethodGet:
		writeJSON(w, http.StatusOK, Ok(h.store.AvailableBeds(id)))
	case sub == "occupancy.xlsx" && r.Method == http.MethodGet:
		h.exportOccupancy(w, p)
	case sub == "payments" && r.Method == http.MethodGet:
		h.propertyPayments(w, r, id)
	case sub == "" || sub == "summary" || sub == "available-beds" || sub == "occupancy.xlsx" || sub == "payments":
		w.WriteHeader(http.StatusMethodNotAllowed)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AppHandler) exportOccupancy(w http.ResponseWriter, p domain.Property) {
	data, err := report.OccupancyWorkbook(p, h.roster.Members(p.ID))
	if err != nil {
		h.logger.Error("OccupancyWorkbook failed", zap.String("property_id", p.ID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, Fail(fmt.Sprintf("failed to export occupancy: %v", err)))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="occupancy_%s.xlsx"`, p.ID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// propertyPayments lists the payments of every member housed in the property.
func (h *AppHandler) propertyPayments(w http.ResponseWriter, r *http.Request, id string) {
	housed := map[string]bool{}
	for _, m := range h.roster.Members(id) {
		housed[m.ID] = true
	}
	all, err := h.payments.List(r.Context(), "")
	if err != nil {
		writeFail(w, err)
		return
	}
	out := make([]domain.Payment, 0, len(all))
	for _, p := range all {
		if housed[p.MemberID] {
			out = append(out, p)
		}
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// ============================================
// Members
// ============================================

// Members handles /app/api/v1/members and /app/api/v1/members/{id}.
func (h *AppHandler) Members(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Path == appMembers {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, Ok(h.roster.Members(r.URL.Query().Get("propertyId"))))
		case http.MethodPost:
			var in domain.MemberInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
				return
			}
			m, err := h.roster.AssignBed(ctx, in)
			if err != nil {
				writeFail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(m))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := pathID(r.URL.Path, appMembers+"/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		m, err := h.roster.Member(id)
		if err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(m))
	case http.MethodPut:
		var patch domain.MemberPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		m, err := h.roster.UpdateMember(ctx, id, patch)
		if err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(m))
	case http.MethodDelete:
		if err := h.roster.RemoveMember(ctx, id); err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SyncOccupancy refetches the roster and rebuilds the bed flags from it.
func (h *AppHandler) SyncOccupancy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	h.roster.Load(r.Context(), "")
	writeJSON(w, http.StatusOK, Ok(h.store.Properties()))
}

// ============================================
// Payments
// ============================================

// Payments handles /app/api/v1/payments and /app/api/v1/payments/{id}.
func (h *AppHandler) Payments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Path == appPayments {
		switch r.Method {
		case http.MethodGet:
			list, err := h.payments.List(ctx, r.URL.Query().Get("memberId"))
			if err != nil {
				writeFail(w, err)
				return
			}
			if list == nil {
				list = []domain.Payment{}
			}
			writeJSON(w, http.StatusOK, Ok(list))
		case http.MethodPost:
			var in domain.PaymentInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
				return
			}
			if _, err := h.roster.Member(in.MemberID); err != nil {
				writeFail(w, err)
				return
			}
			p, err := h.payments.Create(ctx, in)
			if err != nil {
				writeFail(w, err)
				return
			}
			writeJSON(w, http.StatusOK, Ok(p))
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := pathID(r.URL.Path, appPayments+"/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := h.payments.Get(ctx, id)
		if err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(p))
	case http.MethodPut:
		var patch domain.PaymentPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
			return
		}
		p, err := h.payments.Update(ctx, id, patch)
		if err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(p))
	case http.MethodDelete:
		if err := h.payments.Remove(ctx, id); err != nil {
			writeFail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"id": id}))
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
