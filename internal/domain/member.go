package domain

// Member a tenant, optionally assigned to one bed.
type Member struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	ProofID       string `json:"proofId,omitempty"`
	PropertyID    string `json:"propertyId,omitempty"`
	BuildingID    string `json:"buildingId,omitempty"`
	FloorID       string `json:"floorId,omitempty"`
	RoomID        string `json:"roomId,omitempty"`
	BedID         string `json:"bedId,omitempty"`
	BedAmount     Money  `json:"bedAmount,omitempty"`
	BillingPeriod string `json:"billingPeriod,omitempty"`
	CreatedAt     string `json:"createdAt"`
}

// Assignment returns the member's bed path; ok is false unless all five ids are set.
func (m Member) Assignment() (BedPath, bool) {
	p := BedPath{
		PropertyID: m.PropertyID,
		BuildingID: m.BuildingID,
		FloorID:    m.FloorID,
		RoomID:     m.RoomID,
		BedID:      m.BedID,
	}
	return p, p.Complete()
}

// MemberInput create payload
type MemberInput struct {
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone" validate:"required,min=10"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	Pincode       string `json:"pincode,omitempty"`
	ProofID       string `json:"proofId,omitempty"`
	PropertyID    string `json:"propertyId,omitempty"`
	BuildingID    string `json:"buildingId,omitempty"`
	FloorID       string `json:"floorId,omitempty"`
	RoomID        string `json:"roomId,omitempty"`
	BedID         string `json:"bedId,omitempty"`
	BedAmount     Money  `json:"bedAmount,omitempty"`
	BillingPeriod string `json:"billingPeriod,omitempty" validate:"omitempty,oneof=monthly weekly hourly yearly daily"`
}

// Assignment see Member.Assignment.
func (in MemberInput) Assignment() (BedPath, bool) {
	return in.ToMember().Assignment()
}

// ToMember copies the input into a Member without id/createdAt.
func (in MemberInput) ToMember() Member {
	return Member{
		Name:          in.Name,
		Phone:         in.Phone,
		Address:       in.Address,
		City:          in.City,
		Pincode:       in.Pincode,
		ProofID:       in.ProofID,
		PropertyID:    in.PropertyID,
		BuildingID:    in.BuildingID,
		FloorID:       in.FloorID,
		RoomID:        in.RoomID,
		BedID:         in.BedID,
		BedAmount:     in.BedAmount,
		BillingPeriod: in.BillingPeriod,
	}
}

// MemberPatch partial update; a non-nil Bed replaces the whole assignment
// (an empty BedPath clears it).
type MemberPatch struct {
	Name          *string  `json:"name,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Address       *string  `json:"address,omitempty"`
	City          *string  `json:"city,omitempty"`
	Pincode       *string  `json:"pincode,omitempty"`
	BedAmount     *Money   `json:"bedAmount,omitempty"`
	BillingPeriod *string  `json:"billingPeriod,omitempty"`
	Bed           *BedPath `json:"bed,omitempty"`
}

// Apply merges patch into m.
func (m *Member) Apply(patch MemberPatch) {
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Phone != nil {
		m.Phone = *patch.Phone
	}
	if patch.Address != nil {
		m.Address = *patch.Address
	}
	if patch.City != nil {
		m.City = *patch.City
	}
	if patch.Pincode != nil {
		m.Pincode = *patch.Pincode
	}
	if patch.BedAmount != nil {
		m.BedAmount = *patch.BedAmount
	}
	if patch.BillingPeriod != nil {
		m.BillingPeriod = *patch.BillingPeriod
	}
	if patch.Bed != nil {
		m.PropertyID = patch.Bed.PropertyID
		m.BuildingID = patch.Bed.BuildingID
		m.FloorID = patch.Bed.FloorID
		m.RoomID = patch.Bed.RoomID
		m.BedID = patch.Bed.BedID
	}
}
