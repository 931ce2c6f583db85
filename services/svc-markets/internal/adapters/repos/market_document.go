package repos

import (
	"fmt"
	"time"

	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// marketDocument is the stored shape of a market in the markets collection.
type marketDocument struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	LegacyIdentifier int                `bson:"legacyIdentifier"`
	Longitude        int64              `bson:"longitude"`
	Latitude         int64              `bson:"latitude"`
	SetCens          int64              `bson:"setCens"`
	Area             int64              `bson:"area"`
	DistrictCode     int                `bson:"districtCode"`
	District         string             `bson:"district"`
	TownCode         int                `bson:"townCode"`
	Town             string             `bson:"town"`
	FirstZone        string             `bson:"firstZone"`
	SecondZone       string             `bson:"secondZone"`
	Name             string             `bson:"name"`
	RegistryCode     string             `bson:"registryCode"`
	PublicArea       string             `bson:"publicArea"`
	Number           *string            `bson:"number,omitempty"`
	Neighborhood     string             `bson:"neighborhood"`
	Reference        *string            `bson:"reference,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt"`
	UpdatedAt        *time.Time         `bson:"updatedAt,omitempty"`
}

func toMarketDocument(market *model.Market) (marketDocument, error) {
	doc := marketDocument{
		LegacyIdentifier: market.LegacyIdentifier,
		Longitude:        market.Longitude,
		Latitude:         market.Latitude,
		SetCens:          market.SetCens,
		Area:             market.Area,
		DistrictCode:     market.DistrictCode,
		District:         market.District,
		TownCode:         market.TownCode,
		Town:             market.Town,
		FirstZone:        market.FirstZone,
		SecondZone:       market.SecondZone,
		Name:             market.Name,
		RegistryCode:     market.RegistryCode,
		PublicArea:       market.PublicArea,
		Number:           market.Number,
		Neighborhood:     market.Neighborhood,
		Reference:        market.Reference,
		CreatedAt:        market.CreatedAt,
		UpdatedAt:        market.UpdatedAt,
	}

	if !market.ID.IsZero() {
		oid, err := primitive.ObjectIDFromHex(market.ID.String())
		if err != nil {
			return marketDocument{}, fmt.Errorf("%w: %s", model.ErrInvalidMarketID, market.ID)
		}

		doc.ID = oid
	}

	return doc, nil
}

func (d marketDocument) toDomain() *model.Market {
	market := model.Market{
		ID:               model.MarketID(d.ID.Hex()),
		LegacyIdentifier: d.LegacyIdentifier,
		Longitude:        d.Longitude,
		Latitude:         d.Latitude,
		SetCens:          d.SetCens,
		Area:             d.Area,
		DistrictCode:     d.DistrictCode,
		District:         d.District,
		TownCode:         d.TownCode,
		Town:             d.Town,
		FirstZone:        d.FirstZone,
		SecondZone:       d.SecondZone,
		Name:             d.Name,
		RegistryCode:     d.RegistryCode,
		PublicArea:       d.PublicArea,
		Number:           d.Number,
		Neighborhood:     d.Neighborhood,
		Reference:        d.Reference,
		CreatedAt:        d.CreatedAt.UTC(),
	}

	if d.UpdatedAt != nil {
		updatedAt := d.UpdatedAt.UTC()
		market.UpdatedAt = &updatedAt
	}

	return &market
}

// parseObjectID maps malformed identifiers to ErrMarketNotFound: no stored
// market can carry them.
func parseObjectID(id model.MarketID) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id.String())
	if err != nil {
		return primitive.NilObjectID, model.ErrMarketNotFound
	}

	return oid, nil
}
