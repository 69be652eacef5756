package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProperty() Property {
	return Property{
		ID:   "p1",
		Name: "Sunrise PG",
		Type: PropertyTypeHostel,
		City: "Pune",
		Buildings: []Building{{
			ID:   "b1",
			Name: "Block A",
			Floors: []Floor{{
				ID:    "f1",
				Label: "1",
				Rooms: []Room{
					{ID: "r1", RoomNumber: "101", ShareType: ShareDouble, Beds: []Bed{{ID: "B1"}, {ID: "B2"}}},
					{ID: "r2", RoomNumber: "102", ShareType: ShareSingle, Beds: []Bed{{ID: "B1", Occupied: true}}},
				},
			}},
		}},
	}
}

func TestGenerateBeds(t *testing.T) {
	beds, err := GenerateBeds(ShareDouble)
	require.NoError(t, err)
	assert.Equal(t, []Bed{{ID: "B1"}, {ID: "B2"}}, beds)

	beds, err = GenerateBeds(ShareTriple)
	require.NoError(t, err)
	assert.Len(t, beds, 3)
	assert.Equal(t, "B3", beds[2].ID)

	_, err = GenerateBeds("quad")
	assert.ErrorIs(t, err, ErrInvalidShareType)
}

func TestShareTypeForBedCount(t *testing.T) {
	st, err := ShareTypeForBedCount(1)
	require.NoError(t, err)
	assert.Equal(t, ShareSingle, st)

	st, err = ShareTypeForBedCount(5)
	require.NoError(t, err)
	assert.Equal(t, ShareTriple, st)

	_, err = ShareTypeForBedCount(0)
	assert.ErrorIs(t, err, ErrInvalidShareType)
}

func TestRecomputeAndSummarize(t *testing.T) {
	p := sampleProperty()
	p.TotalRooms, p.TotalBeds = 99, 99
	Recompute(&p)
	assert.Equal(t, 2, p.TotalRooms)
	assert.Equal(t, 3, p.TotalBeds)

	s := Summarize(&p)
	assert.Equal(t, 1, s.TotalBuildings)
	assert.Equal(t, 1, s.TotalFloors)
	assert.Equal(t, 1, s.OccupiedBeds)
	assert.Equal(t, 2, s.AvailableBeds)
}

func TestCloneIsDeep(t *testing.T) {
	p := sampleProperty()
	c := p.Clone()
	c.Buildings[0].Floors[0].Rooms[0].Beds[0].Occupied = true
	c.Buildings[0].Name = "changed"
	assert.False(t, p.Buildings[0].Floors[0].Rooms[0].Beds[0].Occupied)
	assert.Equal(t, "Block A", p.Buildings[0].Name)
}

func TestFindBed(t *testing.T) {
	p := sampleProperty()
	bed, ok := p.FindBed(BedPath{PropertyID: "p1", BuildingID: "b1", FloorID: "f1", RoomID: "r2", BedID: "B1"})
	require.True(t, ok)
	assert.True(t, bed.Occupied)

	_, ok = p.FindBed(BedPath{PropertyID: "p1", BuildingID: "b1", FloorID: "f1", RoomID: "r9", BedID: "B1"})
	assert.False(t, ok)
}

func TestApplyPatchKeepsIdentity(t *testing.T) {
	p := sampleProperty()
	p.CreatedAt = "2024-01-01T00:00:00Z"
	name := "Sunset PG"
	buildings := []Building{}
	p.Apply(PropertyPatch{Name: &name, Buildings: &buildings})
	assert.Equal(t, "Sunset PG", p.Name)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "2024-01-01T00:00:00Z", p.CreatedAt)
	assert.Zero(t, p.TotalRooms)
	assert.Zero(t, p.TotalBeds)
}

func TestPropertyUnmarshal_LegacyShapes(t *testing.T) {
	raw := `{
		"_id": "abc",
		"name": "Old Hostel",
		"type": "Hostel",
		"city": "Hyderabad",
		"buildings": ["North", "South"],
		"bedPricing": [
			{"bedCount": "2", "dailyPrice": "300", "monthlyPrice": "₹7,500.50"},
			{"bedCount": 1, "price": 9000, "period": "monthly"}
		],
		"totalRooms": "12",
		"totalBeds": "40"
	}`
	var p Property
	require.NoError(t, json.Unmarshal([]byte(raw), &p))

	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, PropertyTypeHostel, p.Type)
	require.Len(t, p.Buildings, 2)
	assert.Equal(t, Building{ID: "1", Name: "South", Floors: []Floor{}}, p.Buildings[1])
	assert.Zero(t, p.TotalRooms)
	assert.Zero(t, p.TotalBeds)

	require.Len(t, p.BedPricing, 2)
	assert.Equal(t, 2, p.BedPricing[0].BedCount)
	assert.Equal(t, Money(300), p.BedPricing[0].DailyPrice)
	assert.Equal(t, Money(7500.5), p.BedPricing[0].MonthlyPrice)
	assert.Equal(t, Money(9000), p.BedPricing[1].MonthlyPrice)
}

func TestPropertyUnmarshal_CurrentShapeRecomputesTotals(t *testing.T) {
	p := sampleProperty()
	p.TotalRooms = 0
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var decoded Property
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 2, decoded.TotalRooms)
	assert.Equal(t, 3, decoded.TotalBeds)
	assert.Equal(t, p.Buildings, decoded.Buildings)
}

func TestMemberAssignment(t *testing.T) {
	m := Member{ID: "m1", PropertyID: "p1", BuildingID: "b1", FloorID: "f1", RoomID: "r1"}
	_, ok := m.Assignment()
	assert.False(t, ok)

	m.BedID = "B1"
	path, ok := m.Assignment()
	require.True(t, ok)
	assert.Equal(t, "B1", path.BedID)
}

func TestValidateDetails(t *testing.T) {
	assert.Empty(t, ValidateDetails(PropertyDetails{Name: "Sunrise PG", Type: PropertyTypeHostel, City: "Pune"}))

	rs := ValidateDetails(PropertyDetails{Name: "  ", Type: "Castle", City: ""})
	assert.Contains(t, rs, "name is required")
	assert.Contains(t, rs, "city is required")
	assert.Contains(t, rs, "type must be one of [Hostel/PG Apartment]")
}

func TestValidateMemberInput(t *testing.T) {
	require.NoError(t, ValidateMemberInput(MemberInput{Name: "Asha", Phone: "9876543210"}))
	assert.Error(t, ValidateMemberInput(MemberInput{Name: "", Phone: "9876543210"}))
	assert.Error(t, ValidateMemberInput(MemberInput{Name: "Asha", Phone: "123"}))
}

func TestValidateHierarchy(t *testing.T) {
	assert.Empty(t, ValidateHierarchy(sampleProperty().Buildings))

	rs := ValidateHierarchy([]Building{{ID: "b1", Name: "Block A", Floors: []Floor{{ID: "f1", Label: "G"}}}})
	assert.Equal(t, []string{`floor G in "Block A" has no rooms`}, rs)
}

func TestValidatePaymentInput(t *testing.T) {
	require.NoError(t, ValidatePaymentInput(PaymentInput{MemberID: "m1", Amount: 8000, Status: "paid"}))

	err := ValidatePaymentInput(PaymentInput{MemberID: " ", Amount: 0, Status: "lost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memberid is required")
	assert.Contains(t, err.Error(), "amount must be greater than 0")
	assert.Contains(t, err.Error(), "status must be one of [paid pending overdue]")
}

func TestPaymentApply(t *testing.T) {
	p := Payment{ID: "p1", MemberID: "m1", Amount: 8000, Status: "pending"}
	amount := Money(8500)
	status := "paid"
	p.Apply(PaymentPatch{Amount: &amount, Status: &status})

	assert.Equal(t, Money(8500), p.Amount)
	assert.Equal(t, "paid", p.Status)
	assert.Equal(t, "m1", p.MemberID)
}
