package finance

import "github.com/shopspring/decimal"

// Region identifies the regulatory district a property belongs to.
// Regulated metropolitan districts carry a higher stress-rate add-on and
// tighter loan-to-value ceilings.
type Region string

const (
	RegionSeoul    Region = "SEOUL"
	RegionGwacheon Region = "GWACHEON"
	RegionSejong   Region = "SEJONG"
	RegionBundang  Region = "BUNDANG"
	RegionGyeonggi Region = "GYEONGGI"
	RegionIncheon  Region = "INCHEON"
	RegionOther    Region = "OTHER"
)

// HousingStatus is the ownership category of the borrower, used for
// loan-to-value ceiling lookup.
type HousingStatus string

const (
	StatusFirstTimeBuyer HousingStatus = "FIRST_TIME_BUYER"
	StatusNewlywed       HousingStatus = "NEWLYWED"
	StatusSingleOwner    HousingStatus = "SINGLE_OWNER"
	StatusMultiOwner     HousingStatus = "MULTI_OWNER"
)

// regulatedRegions is the fixed set of metropolitan districts under
// tightened lending regulation.
var regulatedRegions = map[Region]bool{
	RegionSeoul:    true,
	RegionGwacheon: true,
	RegionSejong:   true,
	RegionBundang:  true,
}

// Regulated reports whether the region is in the regulated district set.
func (r Region) Regulated() bool { return regulatedRegions[r] }

type ltvKey struct {
	regulated bool
	status    HousingStatus
}

// ltvTable holds loan-to-value ceilings in percent, keyed by region class
// and ownership status.
var ltvTable = map[ltvKey]decimal.Decimal{
	{true, StatusFirstTimeBuyer}:  decimal.NewFromInt(50),
	{true, StatusNewlywed}:        decimal.NewFromInt(60),
	{true, StatusSingleOwner}:     decimal.NewFromInt(40),
	{true, StatusMultiOwner}:      decimal.NewFromInt(30),
	{false, StatusFirstTimeBuyer}: decimal.NewFromInt(70),
	{false, StatusNewlywed}:       decimal.NewFromInt(70),
	{false, StatusSingleOwner}:    decimal.NewFromInt(60),
	{false, StatusMultiOwner}:     decimal.NewFromInt(40),
}

// defaultLTVLimitPct is the conservative fallback for combinations missing
// from the table.
var defaultLTVLimitPct = decimal.NewFromInt(40)

// Stress-rate add-ons in percentage points.
var (
	stressAddOnRegulated = decimal.RequireFromString("1.5")
	stressAddOnDefault   = decimal.RequireFromString("0.75")
)

// StressRate returns the stressed annual rate for a region: regulated
// districts add 1.5 percentage points, all others 0.75.
func StressRate(region Region, baseRatePct decimal.Decimal) decimal.Decimal {
	if region.Regulated() {
		return baseRatePct.Add(stressAddOnRegulated)
	}
	return baseRatePct.Add(stressAddOnDefault)
}

// LTVLimit returns the loan-to-value ceiling in percent for the given
// region and ownership status. Unknown combinations fall back to the
// conservative 40% default.
func LTVLimit(region Region, status HousingStatus) decimal.Decimal {
	if pct, ok := ltvTable[ltvKey{region.Regulated(), status}]; ok {
		return pct
	}
	return defaultLTVLimitPct
}
