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

// photonFeature is one GeoJSON feature from the Photon search payload.
// Coordinates arrive [lon, lat] and are transposed during normalization.
type photonFeature struct {
	Geometry struct {
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Name        string `json:"name"`
		HouseNumber string `json:"housenumber"`
		Street      string `json:"street"`
		District    string `json:"district"`
		City        string `json:"city"`
		State       string `json:"state"`
		Postcode    string `json:"postcode"`
	} `json:"properties"`
}

type photonResponse struct {
	Features []photonFeature `json:"features"`
}

// Photon is the secondary provider. Its API has no hard bounding box; the
// store coordinates are passed as a soft bias instead.
type Photon struct {
	client  *http.Client
	baseURL string
	limit   int
	log     *logger.Logger
}

// NewPhoton constructs the fallback provider.
func NewPhoton(client *http.Client, baseURL string, log *logger.Logger) *Photon {
	if log == nil {
		log = logger.NewDefault("geocode-photon")
	}
	return &Photon{
		client:  client,
		baseURL: baseURL,
		limit:   10,
		log:     log,
	}
}

func (p *Photon) Source() geocode.Source {
	return geocode.SourcePhoton
}

func (p *Photon) Search(ctx context.Context, query string, ref geo.Point, _ geo.BoundingBox) ([]geocode.Suggestion, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(p.limit))
	params.Set("lat", strconv.FormatFloat(ref.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(ref.Lon, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build photon request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("photon request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("photon returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read photon response: %w", err)
	}

	var raw photonResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		p.log.WithError(err).Warn("photon returned malformed JSON")
		return nil, nil
	}

	suggestions := make([]geocode.Suggestion, 0, len(raw.Features))
	for _, feat := range raw.Features {
		if len(feat.Geometry.Coordinates) < 2 {
			continue
		}
		lon := feat.Geometry.Coordinates[0]
		lat := feat.Geometry.Coordinates[1]

		addr := geocode.Address{
			HouseNumber:  feat.Properties.HouseNumber,
			Street:       firstNonEmpty(feat.Properties.Street, feat.Properties.Name),
			Neighborhood: feat.Properties.District,
			City:         feat.Properties.City,
			State:        feat.Properties.State,
			PostalCode:   feat.Properties.Postcode,
		}
		label := buildLabel(addr)
		suggestions = append(suggestions, geocode.Suggestion{
			Source:      geocode.SourcePhoton,
			Label:       label,
			Lat:         lat,
			Lon:         lon,
			Raw:         addr,
			DisplayName: firstNonEmpty(label, feat.Properties.Name),
		})
	}
	return suggestions, nil
}
