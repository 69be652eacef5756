package domain

// Recompute refreshes the derived totals of p from its hierarchy.
func Recompute(p *Property) {
	p.TotalRooms, p.TotalBeds = CountRoomsAndBeds(p.Buildings)
}

// CountRoomsAndBeds sums rooms and beds over buildings.
func CountRoomsAndBeds(buildings []Building) (rooms, beds int) {
	for _, b := range buildings {
		for _, f := range b.Floors {
			rooms += len(f.Rooms)
			for _, r := range f.Rooms {
				beds += len(r.Beds)
			}
		}
	}
	return rooms, beds
}

// Summary counts for one property
type Summary struct {
	PropertyID     string `json:"propertyId"`
	TotalBuildings int    `json:"totalBuildings"`
	TotalFloors    int    `json:"totalFloors"`
	TotalRooms     int    `json:"totalRooms"`
	TotalBeds      int    `json:"totalBeds"`
	OccupiedBeds   int    `json:"occupiedBeds"`
	AvailableBeds  int    `json:"availableBeds"`
}

// Summarize computes a Summary from the hierarchy, ignoring stored totals.
func Summarize(p *Property) Summary {
	s := Summary{PropertyID: p.ID, TotalBuildings: len(p.Buildings)}
	for _, b := range p.Buildings {
		s.TotalFloors += len(b.Floors)
	}
	s.TotalRooms, s.TotalBeds = CountRoomsAndBeds(p.Buildings)
	p.WalkBeds(func(_ BedPath, _ *Room, bed *Bed) {
		if bed.Occupied {
			s.OccupiedBeds++
		}
	})
	s.AvailableBeds = s.TotalBeds - s.OccupiedBeds
	return s
}
