package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/architeacher/markets/pkg/logger"
	"github.com/architeacher/markets/services/svc-markets/internal/domain/model"
	"github.com/architeacher/markets/services/svc-markets/internal/usecases/commands"
)

const (
	columnID           = "ID"
	columnLongitude    = "LONG"
	columnLatitude     = "LAT"
	columnSetCens      = "SETCENS"
	columnArea         = "AREAP"
	columnDistrictCode = "CODDIST"
	columnDistrict     = "DISTRITO"
	columnTownCode     = "CODSUBPREF"
	columnTown         = "SUBPREFE"
	columnFirstZone    = "REGIAO5"
	columnSecondZone   = "REGIAO8"
	columnName         = "NOME_FEIRA"
	columnRegistryCode = "REGISTRO"
	columnPublicArea   = "LOGRADOURO"
	columnNumber       = "NUMERO"
	columnNeighborhood = "BAIRRO"
	columnReference    = "REFERENCIA"
)

var (
	ErrMissingColumn    = errors.New("feed header is missing a column")
	ErrInvalidSeparator = errors.New("feed separator must be a single character")

	requiredColumns = []string{
		columnID, columnLongitude, columnLatitude, columnSetCens, columnArea,
		columnDistrictCode, columnDistrict, columnTownCode, columnTown,
		columnFirstZone, columnSecondZone, columnName, columnRegistryCode,
		columnPublicArea, columnNumber, columnNeighborhood,
	}
)

type (
	// Report summarises one feed run. Skipped counts rows whose registry
	// code was already registered.
	Report struct {
		Read    int `json:"read"`
		Created int `json:"created"`
		Skipped int `json:"skipped"`
		Failed  int `json:"failed"`
	}

	// FeedLoader registers every row of the municipal markets feed through
	// the create market command. Re-running a feed is idempotent.
	FeedLoader struct {
		createMarket commands.CreateMarketCommandHandler
		separator    rune
		logger       logger.Logger
	}

	header map[string]int
)

func NewFeedLoader(
	createMarket commands.CreateMarketCommandHandler,
	separator string,
	log logger.Logger,
) (*FeedLoader, error) {
	if utf8.RuneCountInString(separator) != 1 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSeparator, separator)
	}

	sep, _ := utf8.DecodeRuneInString(separator)

	return &FeedLoader{
		createMarket: createMarket,
		separator:    sep,
		logger:       log.WithComponent("feed-loader"),
	}, nil
}

func (l *FeedLoader) LoadFile(ctx context.Context, path string) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, fmt.Errorf("opening feed %s: %w", path, err)
	}
	defer file.Close()

	return l.Load(ctx, file)
}

// Load reads the feed from r. Malformed rows and rejected markets are
// logged and counted; only unreadable input or cancellation stop the run.
func (l *FeedLoader) Load(ctx context.Context, r io.Reader) (Report, error) {
	reader := csv.NewReader(r)
	reader.Comma = l.separator
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	head, err := l.readHeader(reader)
	if err != nil {
		return Report{}, err
	}

	log := l.logger.WithContext(ctx)
	report := Report{}

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			report.Read++
			report.Failed++

			log.Warn().Err(err).Int("line", parseErr.Line).Msg("skipping unreadable feed row")

			continue
		}

		if err != nil {
			return report, fmt.Errorf("reading feed: %w", err)
		}

		report.Read++

		line, _ := reader.FieldPos(0)

		market, err := head.market(record)
		if err != nil {
			report.Failed++

			log.Warn().Err(err).Int("line", line).Msg("skipping malformed feed row")

			continue
		}

		result, err := l.createMarket.Handle(ctx, commands.CreateMarketCommand{Market: market})
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}

			report.Failed++

			log.Error().Err(err).
				Int("line", line).
				Str("registry_code", market.RegistryCode).
				Msg("failed to register feed market")

			continue
		}

		if result.Created {
			report.Created++
		} else {
			report.Skipped++
		}
	}

	log.Info().
		Int("read", report.Read).
		Int("created", report.Created).
		Int("skipped", report.Skipped).
		Int("failed", report.Failed).
		Msg("feed loaded")

	return report, nil
}

func (l *FeedLoader) readHeader(reader *csv.Reader) (header, error) {
	record, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feed header: %w", err)
	}

	head := make(header, len(record))
	for i, column := range record {
		head[strings.ToUpper(strings.TrimSpace(column))] = i
	}

	for _, column := range requiredColumns {
		if _, ok := head[column]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, column)
		}
	}

	return head, nil
}

func (h header) value(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

func (h header) optional(record []string, column string) *string {
	value := h.value(record, column)
	if value == "" {
		return nil
	}

	return &value
}

func (h header) market(record []string) (*model.Market, error) {
	p := rowParser{header: h, record: record}

	market := &model.Market{
		LegacyIdentifier: p.parseInt(columnID),
		Longitude:        p.parseInt64(columnLongitude),
		Latitude:         p.parseInt64(columnLatitude),
		SetCens:          p.parseInt64(columnSetCens),
		Area:             p.parseInt64(columnArea),
		DistrictCode:     p.parseInt(columnDistrictCode),
		District:         h.value(record, columnDistrict),
		TownCode:         p.parseInt(columnTownCode),
		Town:             h.value(record, columnTown),
		FirstZone:        h.value(record, columnFirstZone),
		SecondZone:       h.value(record, columnSecondZone),
		Name:             h.value(record, columnName),
		RegistryCode:     h.value(record, columnRegistryCode),
		PublicArea:       h.value(record, columnPublicArea),
		Number:           h.optional(record, columnNumber),
		Neighborhood:     h.value(record, columnNeighborhood),
		Reference:        h.optional(record, columnReference),
	}

	if p.err != nil {
		return nil, p.err
	}

	if market.RegistryCode == "" {
		return nil, fmt.Errorf("column %s: empty registry code", columnRegistryCode)
	}

	return market, nil
}

// rowParser keeps the first conversion error so a row is parsed in one pass.
type rowParser struct {
	header header
	record []string
	err    error
}

func (p *rowParser) parseInt64(column string) int64 {
	raw := p.header.value(p.record, column)

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("column %s: invalid integer %q", column, raw)
	}

	return value
}

func (p *rowParser) parseInt(column string) int {
	return int(p.parseInt64(column))
}
