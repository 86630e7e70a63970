package gameserver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Savegame file names read over FTP.
const (
	CareerFile   = "careerSavegame.xml"
	FarmlandFile = "farmland.xml"
	FarmsFile    = "farms.xml"
	VehiclesFile = "vehicles.xml"
)

// ServerSnapshot is the state shown on the status panel. Pointer fields
// are nil when the value is unknown.
type ServerSnapshot struct {
	Online          bool
	ServerName      *string
	MapName         *string
	SlotsUsed       *int
	SlotsMax        *int
	SaveDate        *string
	Money           *int
	LastMonthProfit *int
	FieldsOwned     *int
	FieldsTotal     *int
	Vehicles        *int
	Players         []string
	FetchedAt       time.Time

	// Nil when fields.xml or the vehicle list could not be read.
	Fields      []FieldStatus
	Maintenance *MaintenanceReport
}

type StatsSource interface {
	FetchServerStats(ctx context.Context) ([]byte, error)
	FetchAPIFile(ctx context.Context, name string) ([]byte, error)
}

type FileSource interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Collector gathers every file the status panel needs.
type Collector struct {
	api     StatsSource
	files   FileSource
	farmID  string
	catalog VehicleCatalog
	now     func() time.Time
}

// NewCollector builds a collector. catalog may be nil.
func NewCollector(api StatsSource, files FileSource, farmID string, catalog VehicleCatalog) *Collector {
	return &Collector{api: api, files: files, farmID: farmID, catalog: catalog, now: time.Now}
}

type rawFiles struct {
	stats, vehicles, career, farmland, farms []byte
}

// Snapshot fetches the stats feed and savegame files concurrently. When
// any required file is missing the server is reported offline and only
// the fetch time is set.
func (c *Collector) Snapshot(ctx context.Context) (ServerSnapshot, error) {
	out := ServerSnapshot{FetchedAt: c.now(), Players: []string{}}
	raw, err := c.fetchAll(ctx)
	if err != nil {
		log.Warn().Err(err).Str("task", "status").Msg("server_files_unavailable")
		return out, nil
	}
	out.Online = true

	info, err := ParseServerStats(raw.stats)
	if err != nil {
		return out, err
	}
	out.ServerName, out.MapName = info.Name, info.MapName
	out.SlotsUsed, out.SlotsMax = info.SlotsUsed, info.SlotsMax
	out.SaveDate = info.SaveDate
	if out.Players, err = ParsePlayersOnline(raw.stats); err != nil {
		return out, err
	}
	if out.Money, err = ParseFarmMoney(raw.career); err != nil {
		log.Warn().Err(err).Msg("career_parse_failed")
	}
	if owned, total, err := ParseFarmland(raw.farmland, c.farmID); err != nil {
		log.Warn().Err(err).Msg("farmland_parse_failed")
	} else {
		out.FieldsOwned, out.FieldsTotal = &owned, &total
	}
	if out.LastMonthProfit, err = ParseLastMonthProfit(raw.farms, c.farmID); err != nil {
		log.Warn().Err(err).Msg("farms_parse_failed")
	}
	vehicles := raw.vehicles
	if out.Vehicles, err = CountVehicles(vehicles, c.farmID); err != nil {
		log.Warn().Err(err).Msg("vehicles_parse_failed")
	}
	if out.Vehicles == nil {
		// the web feed omits farmId on some servers, the savegame copy has it
		if body, ferr := c.files.Fetch(ctx, VehiclesFile); ferr == nil {
			vehicles = body
			out.Vehicles, _ = CountVehicles(body, c.farmID)
		}
	}
	if list, err := ParseVehicleCondition(vehicles, c.farmID, c.catalog); err != nil {
		log.Warn().Err(err).Msg("vehicle_condition_parse_failed")
	} else {
		report := ClassifyVehicles(list)
		out.Maintenance = &report
	}
	out.Fields = c.fields(ctx)
	return out, nil
}

// fields reads fields.xml, which is not needed to call the server online.
func (c *Collector) fields(ctx context.Context) []FieldStatus {
	body, err := c.files.Fetch(ctx, FieldsFile)
	if err != nil {
		log.Warn().Err(err).Msg("fields_unavailable")
		return nil
	}
	list, err := ParseFieldStatuses(body)
	if err != nil {
		log.Warn().Err(err).Msg("fields_parse_failed")
		return nil
	}
	return list
}

func (c *Collector) fetchAll(ctx context.Context) (rawFiles, error) {
	var raw rawFiles
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		raw.stats, err = c.api.FetchServerStats(gctx)
		return err
	})
	g.Go(func() (err error) {
		raw.vehicles, err = c.api.FetchAPIFile(gctx, "vehicles")
		return err
	})
	for name, dst := range map[string]*[]byte{CareerFile: &raw.career, FarmlandFile: &raw.farmland, FarmsFile: &raw.farms} {
		g.Go(func() error {
			body, err := c.files.Fetch(gctx, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			*dst = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rawFiles{}, err
	}
	return raw, nil
}
