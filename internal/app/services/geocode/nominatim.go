package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/brickoven/pos/internal/app/domain/geocode"
	"github.com/brickoven/pos/internal/geo"
	"github.com/brickoven/pos/pkg/logger"
)

// nominatimAddress mirrors the relevant parts of the OSM search payload.
// Nominatim names the locality field differently depending on place type.
type nominatimAddress struct {
	HouseNumber   string `json:"house_number"`
	Road          string `json:"road"`
	Pedestrian    string `json:"pedestrian"`
	Footway       string `json:"footway"`
	Neighbourhood string `json:"neighbourhood"`
	Suburb        string `json:"suburb"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Postcode      string `json:"postcode"`
}

type nominatimResult struct {
	DisplayName string           `json:"display_name"`
	Lat         string           `json:"lat"`
	Lon         string           `json:"lon"`
	Address     nominatimAddress `json:"address"`
}

// Nominatim is the primary provider. It supports a hard bounding box, so
// searches are restricted to the store's service area.
type Nominatim struct {
	client    *http.Client
	baseURL   string
	userAgent string
	contact   string
	country   string
	limit     int
	log       *logger.Logger
}

// NewNominatim constructs the primary provider. The contact address is sent
// on every request per the service's usage policy.
func NewNominatim(client *http.Client, baseURL, userAgent, contact string, log *logger.Logger) *Nominatim {
	if log == nil {
		log = logger.NewDefault("geocode-nominatim")
	}
	return &Nominatim{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		contact:   contact,
		country:   "us",
		limit:     10,
		log:       log,
	}
}

func (n *Nominatim) Source() geocode.Source {
	return geocode.SourceNominatim
}

func (n *Nominatim) Search(ctx context.Context, query string, _ geo.Point, box geo.BoundingBox) ([]geocode.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("addressdetails", "1")
	params.Set("limit", strconv.Itoa(n.limit))
	params.Set("countrycodes", n.country)
	// viewbox is lon,lat ordered: left,top,right,bottom.
	params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f", box.MinLon, box.MaxLat, box.MaxLon, box.MinLat))
	params.Set("bounded", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("From", n.contact)
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read nominatim response: %w", err)
	}

	var raw []nominatimResult
	if err := json.Unmarshal(body, &raw); err != nil {
		// Malformed payload counts as zero results, not a provider failure.
		n.log.WithError(err).Warn("nominatim returned malformed JSON")
		return nil, nil
	}

	suggestions := make([]geocode.Suggestion, 0, len(raw))
	for _, item := range raw {
		lat, errLat := strconv.ParseFloat(item.Lat, 64)
		lon, errLon := strconv.ParseFloat(item.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}

		addr := geocode.Address{
			HouseNumber:  item.Address.HouseNumber,
			Street:       firstNonEmpty(item.Address.Road, item.Address.Pedestrian, item.Address.Footway),
			Neighborhood: firstNonEmpty(item.Address.Neighbourhood, item.Address.Suburb),
			City:         firstNonEmpty(item.Address.City, item.Address.Town, item.Address.Village),
			State:        item.Address.State,
			PostalCode:   item.Address.Postcode,
		}
		suggestions = append(suggestions, geocode.Suggestion{
			Source:      geocode.SourceNominatim,
			Label:       buildLabel(addr),
			Lat:         lat,
			Lon:         lon,
			Raw:         addr,
			DisplayName: item.DisplayName,
		})
	}
	return suggestions, nil
}
