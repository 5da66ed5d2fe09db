package models

// ServiceInfo describes one entry of the service catalog.
type ServiceInfo struct {
	Kind    string `json:"kind"`
	Label   string `json:"label"`
	PriceFt int    `json:"price_ft"`
}

// Catalog of bookable services with prices in forint. Kinds are the
// canonical codes used for pricing and reporting.
var serviceCatalog = []ServiceInfo{
	{Kind: "hajvagas", Label: "Hajvágás", PriceFt: 5500},
	{Kind: "szakall", Label: "Szakállvágás", PriceFt: 3500},
	{Kind: "kombinalt", Label: "Hajvágás + Szakáll", PriceFt: 8000},
}

// Services returns the service catalog in display order.
func Services() []ServiceInfo {
	out := make([]ServiceInfo, len(serviceCatalog))
	copy(out, serviceCatalog)
	return out
}

// ServiceByKind looks up a catalog entry by its canonical code.
func ServiceByKind(kind string) (ServiceInfo, bool) {
	for _, s := range serviceCatalog {
		if s.Kind == kind {
			return s, true
		}
	}
	return ServiceInfo{}, false
}

// ServicePrice returns the price for a service kind, 0 for unknown kinds.
func ServicePrice(kind string) int {
	s, ok := ServiceByKind(kind)
	if !ok {
		return 0
	}
	return s.PriceFt
}
