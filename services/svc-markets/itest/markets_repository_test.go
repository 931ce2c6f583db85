//go:build integration

package itest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/adapters/repos"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	infraMongo "github.com/architeacher/markets/services/svc-markets/internal/infrastructure/mongodb"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MarketsRepositoryIntegrationTestSuite struct {
	suite.Suite
	suiteCtx    context.Context
	suiteCancel context.CancelFunc
	container   *mongodb.MongoDBContainer
	client      *mongo.Client
	collection  *mongo.Collection
	repo        *repos.MarketsRepository
}

func TestMarketsRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MarketsRepositoryIntegrationTestSuite))
}

func (s *MarketsRepositoryIntegrationTestSuite) SetupSuite() {
	s.suiteCtx, s.suiteCancel = context.WithTimeout(context.Background(), 5*time.Minute)

	container, err := mongodb.Run(s.suiteCtx, "mongo:7.0")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(s.suiteCtx)
	s.Require().NoError(err)

	client, err := mongo.Connect(s.suiteCtx, options.Client().ApplyURI(uri))
	s.Require().NoError(err)
	s.client = client

	s.collection = client.Database("markets_test").Collection("markets")
	s.Require().NoError(infraMongo.EnsureIndexes(s.suiteCtx, s.collection))

	log := logger.NewTestLogger()
	s.repo = repos.NewMarketsRepository(s.collection, repos.NewCriteriaTranslator(&log), log)
}

func (s *MarketsRepositoryIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.suiteCtx)
	}
	if s.container != nil {
		_ = s.container.Terminate(s.suiteCtx)
	}
	if s.suiteCancel != nil {
		s.suiteCancel()
	}
}

func (s *MarketsRepositoryIntegrationTestSuite) SetupTest() {
	_, err := s.collection.DeleteMany(s.T().Context(), bson.D{})
	s.Require().NoError(err)
}

func newMarket(registryCode, firstZone, name string) *model.Market {
	number := "S/N"

	return &model.Market{
		LegacyIdentifier: 1,
		Longitude:        -46550164,
		Latitude:         -23558733,
		SetCens:          355030885000091,
		Area:             3550308005040,
		DistrictCode:     87,
		District:         "VILA FORMOSA",
		TownCode:         26,
		Town:             "ARICANDUVA-FORMOSA-CARRAO",
		FirstZone:        firstZone,
		SecondZone:       firstZone + " 1",
		Name:             name,
		RegistryCode:     registryCode,
		PublicArea:       "RUA MARAGOJIPE",
		Number:           &number,
		Neighborhood:     "VL FORMOSA",
	}
}

func (s *MarketsRepositoryIntegrationTestSuite) seed(ctx context.Context, markets ...*model.Market) []*model.Market {
	saved := make([]*model.Market, 0, len(markets))

	for _, market := range markets {
		created, err := s.repo.Save(ctx, market)
		s.Require().NoError(err)

		saved = append(saved, created)
	}

	return saved
}

func (s *MarketsRepositoryIntegrationTestSuite) TestSave_AssignsIdentity() {
	ctx := s.T().Context()

	created := s.seed(ctx, newMarket("4041-0", "Leste", "VILA FORMOSA"))[0]
	s.Require().Len(created.ID.String(), 24)
	s.Require().False(created.CreatedAt.IsZero())
	s.Require().Nil(created.UpdatedAt)
	s.Require().Nil(created.Reference)

	byID, err := s.repo.FetchByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Equal(created.RegistryCode, byID.RegistryCode)
	s.Require().Equal("S/N", *byID.Number)

	byCode, err := s.repo.FetchByRegistryCode(ctx, "4041-0")
	s.Require().NoError(err)
	s.Require().Equal(created.ID, byCode.ID)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestSave_DuplicateRegistryCode() {
	ctx := s.T().Context()

	s.seed(ctx, newMarket("4041-0", "Leste", "VILA FORMOSA"))

	_, err := s.repo.Save(ctx, newMarket("4041-0", "Oeste", "OTHER"))
	s.Require().ErrorIs(err, model.ErrDuplicateMarket)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestSave_ReplacesExisting() {
	ctx := s.T().Context()

	created := s.seed(ctx, newMarket("4041-0", "Leste", "VILA FORMOSA"))[0]

	changed := created.Clone()
	changed.Name = "FEIRA NOVA"
	changed.Number = nil

	updated, err := s.repo.Save(ctx, changed)
	s.Require().NoError(err)
	s.Require().NotNil(updated.UpdatedAt)

	stored, err := s.repo.FetchByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Require().Equal("FEIRA NOVA", stored.Name)
	s.Require().Nil(stored.Number)
	s.Require().WithinDuration(created.CreatedAt, stored.CreatedAt, time.Millisecond)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestFetch_NotFound() {
	ctx := s.T().Context()

	_, err := s.repo.FetchByID(ctx, "65f1c0a2b3d4e5f6a7b8c9d0")
	s.Require().ErrorIs(err, model.ErrMarketNotFound)

	_, err = s.repo.FetchByID(ctx, "not-an-object-id")
	s.Require().ErrorIs(err, model.ErrMarketNotFound)

	_, err = s.repo.FetchByRegistryCode(ctx, "9999-9")
	s.Require().ErrorIs(err, model.ErrMarketNotFound)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestDelete() {
	ctx := s.T().Context()

	created := s.seed(ctx, newMarket("4041-0", "Leste", "VILA FORMOSA"))[0]

	s.Require().NoError(s.repo.Delete(ctx, created.ID))
	s.Require().ErrorIs(s.repo.Delete(ctx, created.ID), model.ErrMarketNotFound)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestFind_Empty() {
	markets, total, err := s.repo.Find(
		s.T().Context(),
		model.FromSearchCriteria(model.SearchCriteria{}, model.DefaultPageRequest()),
	)
	s.Require().NoError(err)
	s.Require().Empty(markets)
	s.Require().Zero(total)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestFind_FiltersAndPages() {
	ctx := s.T().Context()

	for i := range 25 {
		zone := "Leste"
		if i%5 == 0 {
			zone = "Oeste"
		}

		s.seed(ctx, newMarket(fmt.Sprintf("%04d-0", i), zone, fmt.Sprintf("FEIRA %02d", i)))
	}

	zone := "Leste"
	blank := "  "

	cases := []struct {
		name          string
		criteria      model.SearchCriteria
		page          model.PageRequest
		expectedLen   int
		expectedTotal uint
	}{
		{
			name:          "first page of everything",
			page:          model.DefaultPageRequest(),
			expectedLen:   10,
			expectedTotal: 25,
		},
		{
			name:          "last partial page",
			page:          model.PageRequest{Number: 2, Size: 10},
			expectedLen:   5,
			expectedTotal: 25,
		},
		{
			name:          "filtered by zone",
			criteria:      model.SearchCriteria{FirstZone: &zone},
			page:          model.PageRequest{Number: 0, Size: 50},
			expectedLen:   20,
			expectedTotal: 20,
		},
		{
			name:          "blank filters are ignored",
			criteria:      model.SearchCriteria{Name: &blank},
			page:          model.PageRequest{Number: 0, Size: 50},
			expectedLen:   25,
			expectedTotal: 25,
		},
		{
			name:          "page past the end",
			page:          model.PageRequest{Number: 9, Size: 10},
			expectedLen:   0,
			expectedTotal: 25,
		},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			markets, total, err := s.repo.Find(ctx, model.FromSearchCriteria(tc.criteria, tc.page))
			s.Require().NoError(err)
			s.Require().Len(markets, tc.expectedLen)
			s.Require().Equal(tc.expectedTotal, total)
		})
	}
}

func (s *MarketsRepositoryIntegrationTestSuite) TestFind_Sorted() {
	ctx := s.T().Context()

	s.seed(ctx,
		newMarket("2-0", "Leste", "B"),
		newMarket("1-0", "Leste", "C"),
		newMarket("3-0", "Leste", "A"),
	)

	page := model.PageRequest{
		Size: 10,
		Sort: []model.SortField{{Field: model.FieldName, Direction: model.SortDesc}},
	}

	markets, _, err := s.repo.Find(ctx, model.FromSearchCriteria(model.SearchCriteria{}, page))
	s.Require().NoError(err)

	names := make([]string, 0, len(markets))
	for _, market := range markets {
		names = append(names, market.Name)
	}

	s.Require().Equal([]string{"C", "B", "A"}, names)
}

func (s *MarketsRepositoryIntegrationTestSuite) TestPing() {
	s.Require().NoError(s.repo.Ping(s.T().Context()))
}
