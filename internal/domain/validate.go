package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateDetails checks the first wizard step; returns one reason per failing field.
func ValidateDetails(d PropertyDetails) []string {
	trimmed := PropertyDetails{
		Name: strings.TrimSpace(d.Name),
		Type: d.Type,
		City: strings.TrimSpace(d.City),
		Area: d.Area,
	}
	return reasons(validate.Struct(trimmed))
}

// ValidateMemberInput checks a member create payload.
func ValidateMemberInput(in MemberInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	if rs := reasons(validate.Struct(in)); len(rs) > 0 {
		return fmt.Errorf("invalid member: %s", strings.Join(rs, "; "))
	}
	return nil
}

// ValidatePaymentInput checks a payment payload.
func ValidatePaymentInput(in PaymentInput) error {
	in.MemberID = strings.TrimSpace(in.MemberID)
	if rs := reasons(validate.Struct(in)); len(rs) > 0 {
		return fmt.Errorf("invalid payment: %s", strings.Join(rs, "; "))
	}
	return nil
}

// ValidateHierarchy reports empty buildings, floors and rooms.
func ValidateHierarchy(buildings []Building) []string {
	var out []string
	for _, b := range buildings {
		if strings.TrimSpace(b.Name) == "" {
			out = append(out, fmt.Sprintf("building %s has no name", b.ID))
		}
		if len(b.Floors) == 0 {
			out = append(out, fmt.Sprintf("building %q has no floors", b.Name))
		}
		for _, f := range b.Floors {
			if len(f.Rooms) == 0 {
				out = append(out, fmt.Sprintf("floor %s in %q has no rooms", f.Label, b.Name))
			}
			for _, r := range f.Rooms {
				if len(r.Beds) == 0 {
					out = append(out, fmt.Sprintf("room %s in %q floor %s has no beds", r.RoomNumber, b.Name, f.Label))
				}
			}
		}
	}
	return out
}

func reasons(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			out = append(out, field+" is required")
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "gt":
			out = append(out, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		default:
			out = append(out, fmt.Sprintf("%s failed %s", field, fe.Tag()))
		}
	}
	return out
}
