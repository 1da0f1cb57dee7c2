// Package geocode defines the normalized address suggestion shape shared by
// all geocoding providers.
package geocode

// Source identifies which provider produced a suggestion.
type Source string

const (
	SourceNominatim Source = "nominatim"
	SourcePhoton    Source = "photon"
)

// Address holds the structured address components a provider returned.
// Fields are normalized at the network boundary; downstream code never
// branches on provider identity.
type Address struct {
	HouseNumber  string `json:"house_number,omitempty"`
	Street       string `json:"street,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// Suggestion is one candidate address returned to the order-entry UI.
// It is ephemeral: built per provider response item, cached briefly, never
// persisted.
type Suggestion struct {
	Source        Source  `json:"source"`
	Label         string  `json:"label"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	Raw           Address `json:"raw"`
	DisplayName   string  `json:"display_name"`
	DistanceMiles float64 `json:"distance_mi"`
}
