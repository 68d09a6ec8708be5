package pricing

import (
	"github.com/shopspring/decimal"

	"marketplace/internal/domain"
)

type Route string

const (
	RouteIntraCity          Route = "intra_city"
	RouteCityToInterior     Route = "city_to_interior"
	RouteInteriorToInterior Route = "interior_to_interior"
)

type Tier string

const (
	TierStandard Tier = "standard"
	TierExpress  Tier = "express"
)

type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

var (
	routeBase = map[Route]int64{
		RouteIntraCity:          1500,
		RouteCityToInterior:     3500,
		RouteInteriorToInterior: 5000,
	}
	sizeFee = map[Size]int64{SizeS: 0, SizeM: 500, SizeL: 1500, SizeXL: 3000}
	perKg   = map[Tier]int64{TierStandard: 300, TierExpress: 650}
)

const (
	insuranceRate    = "0.01"
	insuranceCeiling = 10000
)

// Draft is the shipment form as typed by the operator.
type Draft struct {
	Route         Route    `json:"route"`
	Tier          Tier     `json:"tier"`
	Size          Size     `json:"size"`
	WeightKg      float64  `json:"weightKg"`
	DeclaredValue *float64 `json:"declaredValue,omitempty"`
}

type Estimate struct {
	Base      int64 `json:"base"`
	SizeFee   int64 `json:"sizeFee"`
	WeightFee int64 `json:"weightFee"`
	Insurance int64 `json:"insurance"`
	Total     int64 `json:"total"`
}

// EstimateShipment prices a draft. It is pure and cheap enough to run on
// every keystroke.
func EstimateShipment(d Draft) (Estimate, error) {
	base, ok := routeBase[d.Route]
	if !ok {
		return Estimate{}, domain.Invalidf("unknown route %q", d.Route)
	}
	rate, ok := perKg[d.Tier]
	if !ok {
		return Estimate{}, domain.Invalidf("unknown service tier %q", d.Tier)
	}
	size, ok := sizeFee[d.Size]
	if !ok {
		return Estimate{}, domain.Invalidf("unknown package size %q", d.Size)
	}
	if d.WeightKg <= 0 {
		return Estimate{}, domain.Invalidf("weight must be positive")
	}

	e := Estimate{Base: base, SizeFee: size}
	e.WeightFee = decimal.NewFromFloat(d.WeightKg).Mul(decimal.NewFromInt(rate)).Round(0).IntPart()

	if d.DeclaredValue != nil {
		if *d.DeclaredValue < 0 {
			return Estimate{}, domain.Invalidf("declared value must not be negative")
		}
		ins := decimal.NewFromFloat(*d.DeclaredValue).Mul(decimal.RequireFromString(insuranceRate)).Round(0)
		e.Insurance = decimal.Min(ins, decimal.NewFromInt(insuranceCeiling)).IntPart()
	}

	e.Total = e.Base + e.SizeFee + e.WeightFee + e.Insurance
	return e, nil
}
