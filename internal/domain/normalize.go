package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Money numeric amount that also decodes from legacy string values
// ("1500", "₹1,500.50"). Unparsable or null values decode as 0.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	*m = Money(parseLooseNumber(data))
	return nil
}

// NormalizePropertyType maps legacy backend spellings onto the two known types.
func NormalizePropertyType(t PropertyType) PropertyType {
	switch strings.ToLower(strings.TrimSpace(string(t))) {
	case "hostel/pg", "hostel", "pg":
		return PropertyTypeHostel
	case "apartment", "apartments":
		return PropertyTypeApartment
	default:
		return t
	}
}

// UnmarshalJSON decodes a bed pricing entry, accepting stringified numbers and
// the legacy {bedCount, price, period} shape.
func (bp *BedPricing) UnmarshalJSON(data []byte) error {
	var raw struct {
		BedCount     json.RawMessage `json:"bedCount"`
		DailyPrice   json.RawMessage `json:"dailyPrice"`
		MonthlyPrice json.RawMessage `json:"monthlyPrice"`
		Price        json.RawMessage `json:"price"`
		Period       string          `json:"period"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	bp.BedCount = int(parseLooseNumber(raw.BedCount))
	bp.DailyPrice = Money(parseLooseNumber(raw.DailyPrice))
	bp.MonthlyPrice = Money(parseLooseNumber(raw.MonthlyPrice))

	if len(raw.DailyPrice) == 0 && len(raw.MonthlyPrice) == 0 && len(raw.Price) > 0 {
		price := parseLooseNumber(raw.Price)
		switch strings.ToLower(raw.Period) {
		case "daily", "hourly":
			bp.DailyPrice = Money(price)
		case "weekly":
			bp.MonthlyPrice = Money(price * 52 / 12)
		case "yearly":
			bp.MonthlyPrice = Money(price / 12)
		default:
			bp.MonthlyPrice = Money(price)
		}
	}
	return nil
}

// UnmarshalJSON decodes a property from the API. It accepts the legacy shapes
// the backends have produced: buildings as plain name strings, "_id" instead of
// "id", stringified totals, and old type spellings. Totals are always recomputed.
func (p *Property) UnmarshalJSON(data []byte) error {
	type alias Property
	aux := struct {
		*alias
		MongoID    string            `json:"_id"`
		Buildings  []json.RawMessage `json:"buildings"`
		TotalRooms json.RawMessage   `json:"totalRooms"`
		TotalBeds  json.RawMessage   `json:"totalBeds"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.MongoID
	}
	p.Type = NormalizePropertyType(p.Type)

	p.Buildings = make([]Building, 0, len(aux.Buildings))
	for idx, rb := range aux.Buildings {
		trimmed := bytes.TrimSpace(rb)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var name string
			if err := json.Unmarshal(trimmed, &name); err != nil {
				return err
			}
			p.Buildings = append(p.Buildings, Building{ID: strconv.Itoa(idx), Name: name, Floors: []Floor{}})
			continue
		}
		var b Building
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return err
		}
		p.Buildings = append(p.Buildings, b)
	}
	if p.BedPricing == nil {
		p.BedPricing = []BedPricing{}
	}
	Recompute(p)
	return nil
}

func parseLooseNumber(data []byte) float64 {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return 0
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal([]byte(s), &str); err != nil {
			return 0
		}
		s = strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '-' {
				return r
			}
			return -1
		}, str)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
