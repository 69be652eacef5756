package httpapi

import (
	"net/http"
	"strings"

	"propertypal/internal/domain"
	"propertypal/internal/wizard"

	"go.uber.org/zap"
)

const appWizard = appPrefix + "/wizard"

// PropertyLookup resolves the property an edit session starts from.
type PropertyLookup interface {
	Property(id string) (domain.Property, bool)
}

// WizardHandler drives the single property draft.
type WizardHandler struct {
	wizard     *wizard.Wizard
	properties PropertyLookup
	logger     *zap.Logger
}

func NewWizardHandler(w *wizard.Wizard, properties PropertyLookup, logger *zap.Logger) *WizardHandler {
	return &WizardHandler{wizard: w, properties: properties, logger: logger}
}

// wizardRequest union of every action's body; each action reads its own fields.
type wizardRequest struct {
	Step        int                         `json:"step"`
	Details     wizard.PropertyDetailsPatch `json:"details"`
	PropertyID  string                      `json:"propertyId"`
	BuildingID  string                      `json:"buildingId"`
	FloorID     string                      `json:"floorId"`
	RoomID      string                      `json:"roomId"`
	Name        string                      `json:"name"`
	Label       string                      `json:"label"`
	RoomNumber  string                      `json:"roomNumber"`
	RoomNumbers []string                    `json:"roomNumbers"`
	Start       string                      `json:"start"`
	Count       int                         `json:"count"`
	ShareType   domain.ShareType            `json:"shareType"`
	BedCount    int                         `json:"bedCount"`
	BedCounts   []int                       `json:"bedCounts"`
	BedPricing  []domain.BedPricing         `json:"bedPricing"`
}

// shareType the explicit shareType, else the one matching bedCount.
func (req wizardRequest) shareType() (domain.ShareType, error) {
	if req.ShareType != "" || req.BedCount == 0 {
		return req.ShareType, nil
	}
	return domain.ShareTypeForBedCount(req.BedCount)
}

// State GET /app/api/v1/wizard
func (h *WizardHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, Ok(h.wizard.State()))
}

// Action POST /app/api/v1/wizard/{action}
func (h *WizardHandler) Action(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	action := pathID(r.URL.Path, appWizard+"/")
	if action == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	var req wizardRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("invalid body"))
		return
	}

	ctx := r.Context()
	var (
		result any
		err    error
	)

	switch action {
	// navigation
	case "next":
		err = h.wizard.NextStep(ctx)
	case "previous":
		h.wizard.PreviousStep(ctx)
	case "step":
		if req.Step == 0 {
			req.Step = parseInt(r.URL.Query().Get("step"), 0)
		}
		h.wizard.SetCurrentStep(ctx, wizard.Step(req.Step))
	case "save":
		h.wizard.Save(ctx)
	case "reset":
		h.wizard.Reset(ctx)

	// details
	case "details":
		h.wizard.UpdatePropertyDetails(ctx, req.Details)

	// buildings and floors
	case "add-building":
		result, err = h.wizard.AddBuilding(ctx, req.Name)
	case "update-building":
		err = h.wizard.UpdateBuilding(ctx, req.BuildingID, req.Name)
	case "remove-building":
		err = h.wizard.RemoveBuilding(ctx, req.BuildingID)
	case "add-floor":
		result, err = h.wizard.AddFloor(ctx, req.BuildingID, req.Label)
	case "update-floor":
		err = h.wizard.UpdateFloor(ctx, req.BuildingID, req.FloorID, req.Label)
	case "remove-floor":
		err = h.wizard.RemoveFloor(ctx, req.BuildingID, req.FloorID)

	// rooms
	case "add-room":
		share, serr := req.shareType()
		if serr != nil {
			err = serr
			break
		}
		result, err = h.wizard.AddRoom(ctx, req.BuildingID, req.FloorID, req.RoomNumber, share)
	case "add-rooms":
		share, serr := req.shareType()
		if serr != nil {
			err = serr
			break
		}
		numbers := req.RoomNumbers
		if len(numbers) == 0 {
			numbers = wizard.GenerateRoomNumbers(strings.TrimSpace(req.Start), req.Count)
		}
		result, err = h.wizard.AddRooms(ctx, req.BuildingID, req.FloorID, numbers, share)
	case "rename-room":
		err = h.wizard.RenameRoom(ctx, req.BuildingID, req.FloorID, req.RoomID, req.RoomNumber)
	case "remove-room":
		err = h.wizard.RemoveRoom(ctx, req.BuildingID, req.FloorID, req.RoomID)

	// share types and pricing
	case "share-types":
		err = h.wizard.UpdateAllowedBedCounts(ctx, req.BedCounts)
	case "pricing":
		err = h.wizard.UpdateBedPricing(ctx, req.BedPricing)

	// lifecycle
	case "edit":
		p, ok := h.properties.Property(req.PropertyID)
		if !ok {
			writeJSON(w, http.StatusNotFound, Fail("property not found: "+req.PropertyID))
			return
		}
		h.wizard.EditProperty(ctx, p)
	case "commit":
		p, cerr := h.wizard.Commit(ctx)
		if cerr != nil {
			writeFail(w, cerr)
			return
		}
		writeJSON(w, http.StatusOK, Ok(p))
		return

	default:
		writeJSON(w, http.StatusNotFound, Fail("unknown wizard action: "+action))
		return
	}

	if err != nil {
		writeFail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"state":  h.wizard.State(),
		"result": result,
	}))
}
