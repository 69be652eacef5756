package domain

// PropertyType property category
type PropertyType string

const (
	PropertyTypeHostel    PropertyType = "Hostel/PG"
	PropertyTypeApartment PropertyType = "Apartment"
)

// Property a managed site and its full hierarchy.
// TotalRooms and TotalBeds are derived; call Recompute after any structural change.
type Property struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Type       PropertyType `json:"type"`
	City       string       `json:"city"`
	Area       string       `json:"area,omitempty"`
	Buildings  []Building   `json:"buildings"`
	BedPricing []BedPricing `json:"bedPricing"`
	TotalRooms int          `json:"totalRooms"`
	TotalBeds  int          `json:"totalBeds"`
	CreatedAt  string       `json:"createdAt"`
}

// Building belongs to exactly one property
type Building struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Floors []Floor `json:"floors"`
}

// Floor belongs to exactly one building
type Floor struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Rooms []Room `json:"rooms"`
}

// Room belongs to exactly one floor; its beds are fixed by ShareType at creation.
type Room struct {
	ID         string    `json:"id"`
	RoomNumber string    `json:"roomNumber"`
	ShareType  ShareType `json:"shareType"`
	Beds       []Bed     `json:"beds"`
}

// Bed ids are "B1".."Bn" within a room.
type Bed struct {
	ID       string `json:"id"`
	Occupied bool   `json:"occupied"`
}

// BedPricing price per share size
type BedPricing struct {
	BedCount     int   `json:"bedCount"`
	DailyPrice   Money `json:"dailyPrice"`
	MonthlyPrice Money `json:"monthlyPrice"`
}

// PropertyDetails first wizard step fields
type PropertyDetails struct {
	Name string       `json:"name" validate:"required"`
	Type PropertyType `json:"type" validate:"required,oneof=Hostel/PG Apartment"`
	City string       `json:"city" validate:"required"`
	Area string       `json:"area,omitempty"`
}

// PropertyInput create payload (a Property without id/createdAt).
type PropertyInput struct {
	Name       string       `json:"name"`
	Type       PropertyType `json:"type"`
	City       string       `json:"city"`
	Area       string       `json:"area,omitempty"`
	Buildings  []Building   `json:"buildings"`
	BedPricing []BedPricing `json:"bedPricing"`
	TotalRooms int          `json:"totalRooms"`
	TotalBeds  int          `json:"totalBeds"`
}

// PropertyPatch partial update; nil fields are left untouched.
type PropertyPatch struct {
	Name       *string       `json:"name,omitempty"`
	Type       *PropertyType `json:"type,omitempty"`
	City       *string       `json:"city,omitempty"`
	Area       *string       `json:"area,omitempty"`
	Buildings  *[]Building   `json:"buildings,omitempty"`
	BedPricing *[]BedPricing `json:"bedPricing,omitempty"`
}

// BedPath addresses one bed through the ownership chain.
type BedPath struct {
	PropertyID string `json:"propertyId"`
	BuildingID string `json:"buildingId"`
	FloorID    string `json:"floorId"`
	RoomID     string `json:"roomId"`
	BedID      string `json:"bedId"`
}

// Complete reports whether every id in the chain is set.
func (p BedPath) Complete() bool {
	return p.PropertyID != "" && p.BuildingID != "" && p.FloorID != "" && p.RoomID != "" && p.BedID != ""
}

// Details returns the first-step view of the property.
func (p *Property) Details() PropertyDetails {
	return PropertyDetails{Name: p.Name, Type: p.Type, City: p.City, Area: p.Area}
}

// Apply merges patch into p and recomputes totals. CreatedAt and ID are never touched.
func (p *Property) Apply(patch PropertyPatch) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Type != nil {
		p.Type = NormalizePropertyType(*patch.Type)
	}
	if patch.City != nil {
		p.City = *patch.City
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.Buildings != nil {
		p.Buildings = CloneBuildings(*patch.Buildings)
	}
	if patch.BedPricing != nil {
		p.BedPricing = append([]BedPricing{}, (*patch.BedPricing)...)
	}
	Recompute(p)
}

// Clone returns a deep copy.
func (p Property) Clone() Property {
	out := p
	out.Buildings = CloneBuildings(p.Buildings)
	out.BedPricing = append([]BedPricing{}, p.BedPricing...)
	return out
}

// CloneBuildings deep-copies a building list.
func CloneBuildings(in []Building) []Building {
	out := make([]Building, len(in))
	for i, b := range in {
		out[i] = b.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (b Building) Clone() Building {
	out := b
	out.Floors = make([]Floor, len(b.Floors))
	for i, f := range b.Floors {
		out.Floors[i] = f.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (f Floor) Clone() Floor {
	out := f
	out.Rooms = make([]Room, len(f.Rooms))
	for i, r := range f.Rooms {
		out.Rooms[i] = r.Clone()
	}
	return out
}

// Clone returns a deep copy.
func (r Room) Clone() Room {
	out := r
	out.Beds = append([]Bed{}, r.Beds...)
	return out
}

// FindBed walks the hierarchy along path.
func (p *Property) FindBed(path BedPath) (*Bed, bool) {
	if p.ID != path.PropertyID {
		return nil, false
	}
	for bi := range p.Buildings {
		b := &p.Buildings[bi]
		if b.ID != path.BuildingID {
			continue
		}
		for fi := range b.Floors {
			f := &b.Floors[fi]
			if f.ID != path.FloorID {
				continue
			}
			for ri := range f.Rooms {
				r := &f.Rooms[ri]
				if r.ID != path.RoomID {
					continue
				}
				for i := range r.Beds {
					if r.Beds[i].ID == path.BedID {
						return &r.Beds[i], true
					}
				}
			}
		}
	}
	return nil, false
}

// WalkBeds calls fn for every bed with its full path.
func (p *Property) WalkBeds(fn func(path BedPath, room *Room, bed *Bed)) {
	for bi := range p.Buildings {
		b := &p.Buildings[bi]
		for fi := range b.Floors {
			f := &b.Floors[fi]
			for ri := range f.Rooms {
				r := &f.Rooms[ri]
				for i := range r.Beds {
					fn(BedPath{
						PropertyID: p.ID,
						BuildingID: b.ID,
						FloorID:    f.ID,
						RoomID:     r.ID,
						BedID:      r.Beds[i].ID,
					}, r, &r.Beds[i])
				}
			}
		}
	}
}
