package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"propertypal/internal/client"
	"propertypal/internal/domain"
	"propertypal/internal/members"
	"propertypal/internal/repository"
	"propertypal/internal/service"
	"propertypal/internal/wizard"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage REST contract error body: {"message": "..."}
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

// writeFail app error body: Result envelope with the mapped status. The
// stores already wrap their errors with the failed operation.
func writeFail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	res := Fail(err.Error())
	if status == http.StatusUnauthorized {
		res.Code = ResultUnauthorized
	}
	writeJSON(w, status, res)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// pathID returns the single path segment after prefix, or "" when the rest
// is empty or nested.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == path || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func statusFor(err error) int {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, wizard.ErrValidation),
		errors.Is(err, wizard.ErrLastStep),
		errors.Is(err, members.ErrInvalidMember),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidShareType):
		return http.StatusBadRequest
	case errors.Is(err, wizard.ErrNotFound),
		errors.Is(err, members.ErrNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrBedNotFound):
		return http.StatusNotFound
	case errors.Is(err, wizard.ErrDuplicate),
		errors.Is(err, members.ErrBedUnavailable),
		errors.Is(err, service.ErrBedOccupied):
		return http.StatusConflict
	case errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500:
		return apiErr.Status
	default:
		return http.StatusInternalServerError
	}
}
