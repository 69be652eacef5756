package wizard

import (
	"errors"
	"fmt"
	"strings"

	"propertypal/internal/domain"
)

// Step wizard position, 1-based.
type Step int

const (
	StepPropertyDetails Step = iota + 1
	StepBuildings
	StepFloorsRooms
	StepShareTypes
	StepReview
	StepConfirm
)

const (
	firstStep = StepPropertyDetails
	lastStep  = StepConfirm

	minBedCount = 1
	maxBedCount = 7
)

func (s Step) String() string {
	switch s {
	case StepPropertyDetails:
		return "property details"
	case StepBuildings:
		return "buildings"
	case StepFloorsRooms:
		return "floors and rooms"
	case StepShareTypes:
		return "share types"
	case StepReview:
		return "review"
	case StepConfirm:
		return "confirm"
	default:
		return fmt.Sprintf("step %d", int(s))
	}
}

func clampStep(s Step) Step {
	if s < firstStep {
		return firstStep
	}
	if s > lastStep {
		return lastStep
	}
	return s
}

var (
	ErrNotFound   = errors.New("not found")
	ErrDuplicate  = errors.New("duplicate")
	ErrLastStep   = errors.New("already at the last step")
	ErrValidation = errors.New("validation failed")
)

// ValidationError a step gate that did not pass.
type ValidationError struct {
	Step    Step
	Reasons []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Step, strings.Join(e.Reasons, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// State the persisted draft.
type State struct {
	CurrentStep       Step                   `json:"currentStep"`
	PropertyDetails   domain.PropertyDetails `json:"propertyDetails"`
	Buildings         []domain.Building      `json:"buildings"`
	AllowedBedCounts  []int                  `json:"allowedBedCounts"`
	BedPricing        []domain.BedPricing    `json:"bedPricing"`
	EditingPropertyID string                 `json:"editingPropertyId,omitempty"`
}

func initialState() State {
	return State{
		CurrentStep:      firstStep,
		Buildings:        []domain.Building{},
		AllowedBedCounts: []int{},
		BedPricing:       []domain.BedPricing{},
	}
}

// Editing reports whether the draft edits an existing property.
func (s State) Editing() bool {
	return s.EditingPropertyID != ""
}

// Clone returns a deep copy.
func (s State) Clone() State {
	out := s
	out.Buildings = domain.CloneBuildings(s.Buildings)
	out.AllowedBedCounts = append([]int{}, s.AllowedBedCounts...)
	out.BedPricing = append([]domain.BedPricing{}, s.BedPricing...)
	return out
}

// PropertyDetailsPatch shallow merge into the draft details; nil fields are kept.
type PropertyDetailsPatch struct {
	Name *string              `json:"name,omitempty"`
	Type *domain.PropertyType `json:"type,omitempty"`
	City *string              `json:"city,omitempty"`
	Area *string              `json:"area,omitempty"`
}

func (s *State) applyDetails(p PropertyDetailsPatch) {
	if p.Name != nil {
		s.PropertyDetails.Name = *p.Name
	}
	if p.Type != nil {
		s.PropertyDetails.Type = domain.NormalizePropertyType(*p.Type)
	}
	if p.City != nil {
		s.PropertyDetails.City = *p.City
	}
	if p.Area != nil {
		s.PropertyDetails.Area = *p.Area
	}
}

// gate returns the reasons step cannot be left forward; nil means it passes.
func (s State) gate(step Step) []string {
	switch step {
	case StepPropertyDetails:
		return domain.ValidateDetails(s.PropertyDetails)
	case StepBuildings:
		if len(s.Buildings) == 0 {
			return []string{"at least one building is required"}
		}
		var out []string
		for i, b := range s.Buildings {
			if strings.TrimSpace(b.Name) == "" {
				out = append(out, fmt.Sprintf("building %d has no name", i+1))
			}
		}
		return out
	case StepFloorsRooms:
		if len(s.Buildings) == 0 {
			return []string{"at least one building is required"}
		}
		return domain.ValidateHierarchy(s.Buildings)
	case StepShareTypes:
		if len(s.AllowedBedCounts) == 0 {
			return []string{"select at least one share type"}
		}
		return nil
	case StepReview, StepConfirm:
		var out []string
		for st := StepPropertyDetails; st <= StepShareTypes; st++ {
			out = append(out, s.gate(st)...)
		}
		return out
	default:
		return nil
	}
}

func (s State) validate(step Step) error {
	if reasons := s.gate(step); len(reasons) > 0 {
		return &ValidationError{Step: step, Reasons: reasons}
	}
	return nil
}

// input converts a validated draft into a create payload with fresh totals.
func (s State) input() domain.PropertyInput {
	in := domain.PropertyInput{
		Name:       strings.TrimSpace(s.PropertyDetails.Name),
		Type:       domain.NormalizePropertyType(s.PropertyDetails.Type),
		City:       strings.TrimSpace(s.PropertyDetails.City),
		Area:       strings.TrimSpace(s.PropertyDetails.Area),
		Buildings:  domain.CloneBuildings(s.Buildings),
		BedPricing: append([]domain.BedPricing{}, s.BedPricing...),
	}
	in.TotalRooms, in.TotalBeds = domain.CountRoomsAndBeds(in.Buildings)
	return in
}

func (s State) patch() domain.PropertyPatch {
	in := s.input()
	return domain.PropertyPatch{
		Name:       &in.Name,
		Type:       &in.Type,
		City:       &in.City,
		Area:       &in.Area,
		Buildings:  &in.Buildings,
		BedPricing: &in.BedPricing,
	}
}

func (s *State) building(id string) (*domain.Building, error) {
	for i := range s.Buildings {
		if s.Buildings[i].ID == id {
			return &s.Buildings[i], nil
		}
	}
	return nil, fmt.Errorf("%w: building %s", ErrNotFound, id)
}

func (s *State) floor(buildingID, floorID string) (*domain.Floor, error) {
	b, err := s.building(buildingID)
	if err != nil {
		return nil, err
	}
	for i := range b.Floors {
		if b.Floors[i].ID == floorID {
			return &b.Floors[i], nil
		}
	}
	return nil, fmt.Errorf("%w: floor %s in building %s", ErrNotFound, floorID, buildingID)
}
