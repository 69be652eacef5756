package httpapi

import (
	"context"
	"net/http"

	"propertypal/internal/domain"
	"propertypal/internal/service"

	"go.uber.org/zap"
)

// ContractHandler serves the properties/members/payments REST contract from
// the local backend. Errors use {"message": ...} bodies, not the Result envelope.
type ContractHandler struct {
	properties service.PropertyService
	members    service.MemberService
	payments   service.PaymentService
	afterWrite func(ctx context.Context)
	logger     *zap.Logger
}

// ContractOption configures a ContractHandler.
type ContractOption func(*ContractHandler)

// WithAfterWrite runs fn after every successful property or member write, so
// in-process views of the same data can refetch.
func WithAfterWrite(fn func(ctx context.Context)) ContractOption {
	return func(h *ContractHandler) { h.afterWrite = fn }
}

func NewContractHandler(properties service.PropertyService, members service.MemberService, payments service.PaymentService, logger *zap.Logger, opts ...ContractOption) *ContractHandler {
	h := &ContractHandler{
		properties: properties,
		members:    members,
		payments:   payments,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ============================================
// Properties
// ============================================

// Properties handles /properties and /properties/{id}.
func (h *ContractHandler) Properties(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Path == "/properties" {
		switch r.Method {
		case http.MethodGet:
			list, err := h.properties.List(ctx)
			if err != nil {
				h.fail(w, err)
				return
			}
			if list == nil {
				list = []domain.Property{}
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			var in domain.PropertyInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid body")
				return
			}
			p, err := h.properties.Create(ctx, in)
			if err != nil {
				h.fail(w, err)
				return
			}
			h.written(ctx)
			writeJSON(w, http.StatusCreated, p)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := pathID(r.URL.Path, "/properties/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := h.properties.Get(ctx, id)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPatch:
		var patch domain.PropertyPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid body")
			return
		}
		p, err := h.properties.Update(ctx, id, patch)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.written(ctx)
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := h.properties.Remove(ctx, id); err != nil {
			h.fail(w, err)
			return
		}
		h.written(ctx)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ============================================
// Members
// ============================================

// Members handles /members and /members/{id}.
func (h *ContractHandler) Members(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Path == "/members" {
		switch r.Method {
		case http.MethodGet:
			list, err := h.members.List(ctx, r.URL.Query().Get("propertyId"))
			if err != nil {
				h.fail(w, err)
				return
			}
			if list == nil {
				list = []domain.Member{}
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			var in domain.MemberInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid body")
				return
			}
			m, err := h.members.Create(ctx, in)
			if err != nil {
				h.fail(w, err)
				return
			}
			h.written(ctx)
			writeJSON(w, http.StatusCreated, m)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := pathID(r.URL.Path, "/members/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		m, err := h.members.Get(ctx, id)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodPut:
		var patch domain.MemberPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid body")
			return
		}
		m, err := h.members.Update(ctx, id, patch)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.written(ctx)
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := h.members.Remove(ctx, id); err != nil {
			h.fail(w, err)
			return
		}
		h.written(ctx)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// ============================================
// Payments
// ============================================

// Payments handles /payments and /payments/{id}.
func (h *ContractHandler) Payments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.URL.Path == "/payments" {
		switch r.Method {
		case http.MethodGet:
			list, err := h.payments.List(ctx, r.URL.Query().Get("memberId"))
			if err != nil {
				h.fail(w, err)
				return
			}
			if list == nil {
				list = []domain.Payment{}
			}
			writeJSON(w, http.StatusOK, list)
		case http.MethodPost:
			var in domain.PaymentInput
			if err := readBodyJSON(r, maxBodyBytes, &in); err != nil {
				writeMessage(w, http.StatusBadRequest, "invalid body")
				return
			}
			p, err := h.payments.Create(ctx, in)
			if err != nil {
				h.fail(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, p)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	id := pathID(r.URL.Path, "/payments/")
	if id == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		p, err := h.payments.Get(ctx, id)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodPut:
		var patch domain.PaymentPatch
		if err := readBodyJSON(r, maxBodyBytes, &patch); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid body")
			return
		}
		p, err := h.payments.Update(ctx, id, patch)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	case http.MethodDelete:
		if err := h.payments.Remove(ctx, id); err != nil {
			h.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *ContractHandler) written(ctx context.Context) {
	if h.afterWrite != nil {
		h.afterWrite(ctx)
	}
}

func (h *ContractHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", zap.Error(err))
	}
	writeMessage(w, status, err.Error())
}
