package statuspush

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/gameserver"
)

const (
	colorStatus   = 0x00AAFF
	colorProfit   = 0x2ECC71
	colorLoss     = 0xE74C3C
	colorOffline  = 0x95A5A6
	colorTopWeek  = 0x5865F2
	colorTopLast  = 0xFEE75C
	colorTopTotal = 0xF1C40F
	colorFields   = 0x27AE60
	colorService  = 0xE67E22

	// maxFieldRows is the embed field limit of one chat message.
	maxFieldRows = 25

	dash         = "—"
	footerLayout = "2006-01-02 15:04:05"
)

// RenderServerStatus builds the server_status panel. chartURL may be
// empty when no public address is configured.
func RenderServerStatus(snap gameserver.ServerSnapshot, chartURL string, loc *time.Location) FormattedMessage {
	status := "🟢 Сервер работает"
	color := colorStatus
	if !snap.Online {
		status = "🔴 Сервер недоступен"
		color = colorOffline
	}

	money := formatMoney(snap.Money) + " / " + dash
	if snap.LastMonthProfit != nil {
		money = formatMoney(snap.Money) + " / " + formatProfit(*snap.LastMonthProfit) + " (за последний месяц)"
	}
	lines := []string{
		status,
		fmt.Sprintf("🧷 **Сервер:** %s | %s", strOr(snap.ServerName), strOr(snap.MapName)),
		fmt.Sprintf("👥 **Слоты:** %s / %s", intOr(snap.SlotsUsed), intOr(snap.SlotsMax)),
		"💰 **Деньги фермы:** " + money,
		fmt.Sprintf("🌾 **Поля во владении:** %s / %s", intOr(snap.FieldsOwned), intOr(snap.FieldsTotal)),
		fmt.Sprintf("🚜 **Техника:** %s единиц", intOr(snap.Vehicles)),
		"📅 **Обновлено:** " + strOr(snap.SaveDate),
	}

	players := dash
	if len(snap.Players) > 0 {
		players = strings.Join(snap.Players, ", ")
	}
	fields := []MessageField{
		{Name: fmt.Sprintf("👤 Игроки онлайн (%d)", len(snap.Players)), Value: players, Inline: false},
	}
	if snap.LastMonthProfit != nil {
		fields = append(fields, MessageField{Name: "📊 Доход за последний месяц", Value: "**" + formatProfit(*snap.LastMonthProfit) + "**", Inline: false})
		if snap.Online {
			color = colorProfit
			if *snap.LastMonthProfit < 0 {
				color = colorLoss
			}
		}
	}

	return FormattedMessage{
		Panel:       PanelServerStatus,
		Title:       "Состояние сервера Farming Simulator",
		Description: strings.Join(lines, "\n"),
		Color:       color,
		Timestamp:   snap.FetchedAt.UTC().Format(time.RFC3339),
		Footer:      "Последнее обновление: " + snap.FetchedAt.In(loc).Format(footerLayout),
		ImageURL:    chartURL,
		Fields:      fields,
	}
}

// RenderTopWeek builds the running week leaderboard.
func RenderTopWeek(items []activity.PlayerHours, limit int, asOf time.Time, loc *time.Location) FormattedMessage {
	msg := FormattedMessage{
		Panel:  PanelTopWeek,
		Title:  fmt.Sprintf("📊 ТОП %d игроков за неделю", limit),
		Color:  colorTopWeek,
		Footer: "Обновлено: " + asOf.In(loc).Format(footerLayout),
	}
	if len(items) == 0 {
		msg.Description = "Нет данных за неделю."
		return msg
	}
	msg.Description = rankLines(activity.Head(items, limit))
	return msg
}

// RenderTopLastWeek builds the archived week leaderboard. A nil start
// means nothing was archived yet.
func RenderTopLastWeek(items []activity.PlayerHours, limit int, weekStart, weekEnd *time.Time, loc *time.Location) FormattedMessage {
	shown := activity.Head(items, limit)
	msg := FormattedMessage{
		Panel: PanelTopLastWeek,
		Title: fmt.Sprintf("🕓 Топ %d игроков за прошлую неделю", len(shown)),
		Color: colorTopLast,
	}
	if weekStart != nil && weekEnd != nil {
		msg.Footer = fmt.Sprintf("Неделя: %s – %s", weekStart.In(loc).Format("02.01 15:04"), weekEnd.In(loc).Format("02.01 15:04"))
	}
	if len(shown) == 0 {
		msg.Title = "🕓 Топ игроков за прошлую неделю"
		msg.Description = "Нет данных за прошлую неделю."
		return msg
	}
	msg.Description = rankLines(shown)
	return msg
}

// RenderTopTotal builds the all-time leaderboard, noting truncation when
// more players are tracked than shown.
func RenderTopTotal(items []activity.PlayerHours, total, limit int) FormattedMessage {
	msg := FormattedMessage{
		Panel: PanelTopTotal,
		Title: "🏆 Топ игроков по общему времени",
		Color: colorTopTotal,
	}
	if len(items) == 0 {
		msg.Description = "Нет данных."
		return msg
	}
	msg.Description = rankLines(activity.Head(items, limit))
	if total > limit {
		msg.Footer = fmt.Sprintf("Показаны только первые %d игроков из %d.", limit, total)
	}
	return msg
}

// RenderFieldsStatus lists the crop state of up to maxFieldRows fields.
func RenderFieldsStatus(fields []gameserver.FieldStatus, asOf time.Time, loc *time.Location) FormattedMessage {
	msg := FormattedMessage{
		Panel:     PanelFieldsStatus,
		Title:     "🗺️ Статус полей",
		Color:     colorFields,
		Timestamp: asOf.UTC().Format(time.RFC3339),
		Footer:    "Обновлено: " + asOf.In(loc).Format(footerLayout),
	}
	if len(fields) == 0 {
		msg.Description = "Нет доступных полей."
		return msg
	}
	shown := fields
	if len(shown) > maxFieldRows {
		shown = shown[:maxFieldRows]
		msg.Footer = fmt.Sprintf("Показаны первые %d полей из %d. %s", maxFieldRows, len(fields), msg.Footer)
	}
	msg.Fields = make([]MessageField, 0, len(shown))
	for _, f := range shown {
		msg.Fields = append(msg.Fields, MessageField{Name: "\u200b", Value: fieldLine(f)})
	}
	return msg
}

func fieldLine(f gameserver.FieldStatus) string {
	if f.Empty() {
		return fmt.Sprintf("#%s 🟫 Пустое | можно сеять", f.ID)
	}
	stage := fmt.Sprintf("стадия: %d/%d", f.Growth, gameserver.MaxGrowth)
	if f.Harvestable() {
		stage = "🧺 Урожай готов"
	}
	return strings.Join([]string{
		fmt.Sprintf("#%s 🌾 %s", f.ID, f.Fruit),
		stage,
		fmt.Sprintf("💧 удобрение: %d%%", int(f.Spray*100)),
		"🌱 сорняки: " + mark(f.Weeds),
		"🧂 известь: " + mark(f.Lime),
		"🔨 вспашка: " + mark(f.Plowed),
	}, " | ")
}

// RenderVehicleMaintenance lists vehicles needing service, worst first.
func RenderVehicleMaintenance(report gameserver.MaintenanceReport, asOf time.Time, loc *time.Location) FormattedMessage {
	msg := FormattedMessage{
		Panel:     PanelVehicleMaintenance,
		Title:     "🚜 Обслуживание техники",
		Color:     colorService,
		Timestamp: asOf.UTC().Format(time.RFC3339),
		Footer:    "Обновлено: " + asOf.In(loc).Format(footerLayout),
	}
	if report.Empty() {
		msg.Description = "ℹ️ Нет техники для обслуживания"
		return msg
	}
	var sections []string
	add := func(title string, list []gameserver.VehicleCondition, parts func(gameserver.VehicleCondition) []string) {
		if len(list) == 0 {
			return
		}
		lines := []string{title}
		for _, v := range list {
			lines = append(lines, fmt.Sprintf("• %s — %s", v.Name, strings.Join(parts(v), ", ")))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	add("🛠️ **Повреждённая техника (низкое топливо + повреждение):**", report.Damaged, func(v gameserver.VehicleCondition) []string {
		parts := []string{fmt.Sprintf("поврежд. %d%%", int(v.Damage))}
		if v.UsesFuel {
			parts = append(parts, fmt.Sprintf("топливо: %d", int(v.Fuel)))
		}
		return parts
	})
	add("💩 **Сильно загрязнённая техника:**", report.Dirty, func(v gameserver.VehicleCondition) []string {
		parts := []string{fmt.Sprintf("грязь: %d%%", int(v.Dirt))}
		if v.Damage >= 5 {
			parts = append(parts, fmt.Sprintf("поврежд.: %d%%", int(v.Damage)))
		}
		return appendLowFuel(parts, v)
	})
	add("⚙️ **Остальная техника:**", report.Other, func(v gameserver.VehicleCondition) []string {
		var parts []string
		if v.Dirt > 5 {
			parts = append(parts, fmt.Sprintf("грязь: %d%%", int(v.Dirt)))
		}
		if v.Damage > 5 {
			parts = append(parts, fmt.Sprintf("поврежд.: %d%%", int(v.Damage)))
		}
		return appendLowFuel(parts, v)
	})
	msg.Description = strings.Join(sections, "\n\n")
	return msg
}

func appendLowFuel(parts []string, v gameserver.VehicleCondition) []string {
	if v.FuelBelow(0.8) {
		parts = append(parts, fmt.Sprintf("топливо: %d", int(v.Fuel)))
	}
	return parts
}

func mark(ok bool) string {
	if ok {
		return "✅"
	}
	return "❌"
}

func rankLines(items []activity.PlayerHours) string {
	lines := make([]string, 0, len(items))
	for i, it := range items {
		lines = append(lines, fmt.Sprintf("%d. %s — %d ч", i+1, it.Player, it.Hours))
	}
	return strings.Join(lines, "\n")
}

func formatMoney(v *int) string {
	if v == nil {
		return dash
	}
	return groupThousands(*v) + " $"
}

func formatProfit(v int) string {
	sign := "+"
	if v < 0 {
		sign = "−"
		v = -v
	}
	return sign + groupThousands(v) + " €"
}

// groupThousands writes n with a space between digit groups.
func groupThousands(n int) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.Itoa(n)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func strOr(v *string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return dash
	}
	return *v
}

func intOr(v *int) string {
	if v == nil {
		return dash
	}
	return strconv.Itoa(*v)
}
