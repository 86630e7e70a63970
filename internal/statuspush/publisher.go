package statuspush

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/gameserver"
	"farmwatch/internal/stats"
	"farmwatch/internal/store"

	"github.com/rs/zerolog/log"
)

type StatusSource interface {
	Snapshot(ctx context.Context) (gameserver.ServerSnapshot, error)
}

type WeekLeaders interface {
	Top(ctx context.Context, limit int) (stats.WeekTop, error)
}

type ArchiveLeaders interface {
	Top(ctx context.Context, limit int) (*store.WeeklyArchive, error)
}

type TotalLeaders interface {
	Top(ctx context.Context, limit int) ([]activity.PlayerHours, int, error)
}

// PanelSink receives rendered panels; *Manager is the production sink.
type PanelSink interface {
	Publish(msg FormattedMessage) int
}

type PublisherLimits struct {
	Week     int
	LastWeek int
	Total    int
}

// Publisher renders every panel from current data and hands them to the
// sink. A nil source skips its panel.
type Publisher struct {
	sink     PanelSink
	status   StatusSource
	week     WeekLeaders
	archive  ArchiveLeaders
	totals   TotalLeaders
	limits   PublisherLimits
	chartURL string
	loc      *time.Location
}

func NewPublisher(sink PanelSink, status StatusSource, week WeekLeaders, archive ArchiveLeaders, totals TotalLeaders, limits PublisherLimits, publicBaseURL string, loc *time.Location) *Publisher {
	chartURL := ""
	if base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"); base != "" {
		chartURL = base + "/charts/daily.png"
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Publisher{
		sink:     sink,
		status:   status,
		week:     week,
		archive:  archive,
		totals:   totals,
		limits:   limits,
		chartURL: chartURL,
		loc:      loc,
	}
}

// Run publishes all panels once. A failing panel does not stop the others.
func (p *Publisher) Run(ctx context.Context) error {
	var errs []error
	publish := func(panel Panel, render func() (FormattedMessage, error)) {
		msg, err := render()
		if err != nil {
			log.Warn().Err(err).Str("panel", string(panel)).Msg("panel_render_failed")
			errs = append(errs, fmt.Errorf("%s: %w", panel, err))
			return
		}
		n := p.sink.Publish(msg)
		log.Debug().Str("panel", string(panel)).Int("targets", n).Msg("panel_published")
	}

	if p.status != nil {
		snap, err := p.status.Snapshot(ctx)
		if err != nil {
			// partially parsed files still render, as offline
			log.Warn().Err(err).Msg("server_snapshot_failed")
			snap.Online = false
		}
		publish(PanelServerStatus, func() (FormattedMessage, error) {
			return RenderServerStatus(snap, p.chartURL, p.loc), nil
		})
		// offline servers keep the last field and vehicle panels
		if snap.Online && snap.Fields != nil {
			publish(PanelFieldsStatus, func() (FormattedMessage, error) {
				return RenderFieldsStatus(snap.Fields, snap.FetchedAt, p.loc), nil
			})
		}
		if snap.Online && snap.Maintenance != nil {
			publish(PanelVehicleMaintenance, func() (FormattedMessage, error) {
				return RenderVehicleMaintenance(*snap.Maintenance, snap.FetchedAt, p.loc), nil
			})
		}
	}
	if p.week != nil {
		publish(PanelTopWeek, func() (FormattedMessage, error) {
			top, err := p.week.Top(ctx, p.limits.Week)
			if err != nil {
				return FormattedMessage{}, err
			}
			return RenderTopWeek(top.Items, p.limits.Week, top.AsOf, p.loc), nil
		})
	}
	if p.archive != nil {
		publish(PanelTopLastWeek, func() (FormattedMessage, error) {
			arch, err := p.archive.Top(ctx, p.limits.LastWeek)
			if err != nil {
				return FormattedMessage{}, err
			}
			if arch == nil {
				return RenderTopLastWeek(nil, p.limits.LastWeek, nil, nil, p.loc), nil
			}
			return RenderTopLastWeek(arch.Rows, p.limits.LastWeek, &arch.WeekStart, &arch.WeekEnd, p.loc), nil
		})
	}
	if p.totals != nil {
		publish(PanelTopTotal, func() (FormattedMessage, error) {
			items, total, err := p.totals.Top(ctx, p.limits.Total)
			if err != nil {
				return FormattedMessage{}, err
			}
			return RenderTopTotal(items, total, p.limits.Total), nil
		})
	}
	return errors.Join(errs...)
}
