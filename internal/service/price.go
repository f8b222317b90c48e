package service

import (
	"plantracker/internal/apperr"
	"plantracker/internal/model"
)

// validatePrice checks the NONE/EXACT/RANGE field combinations shared
// by product default prices and template item prices. An empty type is
// normalized to NONE.
func validatePrice(p *model.Price) error {
	if p.Type == "" {
		p.Type = model.PriceTypeNone
	}

	if p.Type != model.PriceTypeNone && p.Currency == nil {
		return apperr.BadRequest("Price currency is required")
	}

	switch p.Type {
	case model.PriceTypeNone:
		return nil
	case model.PriceTypeExact:
		if p.Min == nil {
			return apperr.BadRequest("EXACT price requires min")
		}
		if p.Max != nil && *p.Max != *p.Min {
			return apperr.BadRequest("EXACT price max must equal min")
		}
		return nil
	case model.PriceTypeRange:
		if p.Min == nil || p.Max == nil {
			return apperr.BadRequest("RANGE price requires min and max")
		}
		if *p.Min > *p.Max {
			return apperr.BadRequest("RANGE price requires min <= max")
		}
		return nil
	default:
		return apperr.BadRequest("Invalid price type")
	}
}
